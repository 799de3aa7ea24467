/*
 * Copyright (c) 2025, The Algafood Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package constants

import (
	"errors"
	"net/http"
)

// Token issuance failures. Handlers wrap these in an ErrorResponse so callers can match with errors.Is.
var (
	ErrUnknownClient               = errors.New("unknown client")
	ErrGrantNotAllowed             = errors.New("grant type not allowed for client")
	ErrScopeNotAllowed             = errors.New("requested scope not allowed for client")
	ErrRedirectURIMismatch         = errors.New("redirect uri does not match a registered redirect uri")
	ErrClientMismatch              = errors.New("grant was issued to another client")
	ErrUnsupportedGrantType        = errors.New("unsupported grant type")
	ErrInvalidCredentials          = errors.New("invalid resource owner credentials")
	ErrAuthorizationCodeNotFound   = errors.New("authorization code not found")
	ErrCodeExpired                 = errors.New("authorization code expired")
	ErrCodeAlreadyUsed             = errors.New("authorization code already used")
	ErrPkceMismatch                = errors.New("code verifier does not match code challenge")
	ErrRefreshTokenInvalidOrReused = errors.New("refresh token invalid or already used")
	// ErrCodeRedemptionBusy means another redemption of the same code held it for too long.
	// The code is untouched and the request may be retried.
	ErrCodeRedemptionBusy = errors.New("authorization code redemption in progress")
)

// StatusCodeFor returns the HTTP status for an OAuth error code.
func StatusCodeFor(errorCode string) int {
	switch errorCode {
	case ErrorInvalidClient:
		return http.StatusUnauthorized
	case ErrorServerError:
		return http.StatusInternalServerError
	case ErrorTemporarilyUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}
