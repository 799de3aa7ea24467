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

package granthandlers

import (
	"errors"

	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/model"
	"github.com/algafood/authserver/internal/system/jwt"
)

// ErrorResponseFor maps an issuance failure onto the OAuth error returned to the client.
// The original error is kept as the Reason.
func ErrorResponseFor(err error) *model.ErrorResponse {
	switch {
	case errors.Is(err, constants.ErrUnknownClient):
		return model.NewErrorResponse(constants.ErrorInvalidClient, "Client authentication failed", err)
	case errors.Is(err, constants.ErrGrantNotAllowed):
		return model.NewErrorResponse(constants.ErrorUnauthorizedClient,
			"The client is not authorized to use this grant type", err)
	case errors.Is(err, constants.ErrScopeNotAllowed):
		return model.NewErrorResponse(constants.ErrorInvalidScope, "Invalid scope", err)
	case errors.Is(err, constants.ErrUnsupportedGrantType):
		return model.NewErrorResponse(constants.ErrorUnsupportedGrantType, "Unsupported grant type", err)
	case errors.Is(err, constants.ErrInvalidCredentials):
		return model.NewErrorResponse(constants.ErrorInvalidGrant, "Bad credentials", err)
	case errors.Is(err, constants.ErrAuthorizationCodeNotFound):
		return model.NewErrorResponse(constants.ErrorInvalidGrant, "Invalid authorization code", err)
	case errors.Is(err, constants.ErrCodeExpired):
		return model.NewErrorResponse(constants.ErrorInvalidGrant, "Authorization code expired", err)
	case errors.Is(err, constants.ErrCodeAlreadyUsed):
		return model.NewErrorResponse(constants.ErrorInvalidGrant, "Authorization code already used", err)
	case errors.Is(err, constants.ErrCodeRedemptionBusy):
		return model.NewErrorResponse(constants.ErrorTemporarilyUnavailable,
			"Authorization code is being redeemed, retry the request", err)
	case errors.Is(err, constants.ErrPkceMismatch):
		return model.NewErrorResponse(constants.ErrorInvalidGrant, "Invalid code verifier", err)
	case errors.Is(err, constants.ErrRedirectURIMismatch):
		return model.NewErrorResponse(constants.ErrorInvalidGrant, "Redirect URI mismatch", err)
	case errors.Is(err, constants.ErrClientMismatch):
		return model.NewErrorResponse(constants.ErrorInvalidGrant, "Grant was issued to another client", err)
	case errors.Is(err, constants.ErrRefreshTokenInvalidOrReused):
		return model.NewErrorResponse(constants.ErrorInvalidGrant, "Invalid refresh token", err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return model.NewErrorResponse(constants.ErrorInvalidGrant, "Refresh token expired", err)
	case errors.Is(err, jwt.ErrInvalidSignature), errors.Is(err, jwt.ErrMalformedToken),
		errors.Is(err, jwt.ErrInvalidIssuer):
		return model.NewErrorResponse(constants.ErrorInvalidGrant, "Invalid refresh token", err)
	default:
		return model.NewErrorResponse(constants.ErrorServerError, "Failed to issue tokens", err)
	}
}
