/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
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

// Package store provides single-use storage for authorization codes.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/algafood/authserver/internal/oauth/oauth2/authz/model"
)

// ErrCodeExists is returned when inserting a code that is already stored.
var ErrCodeExists = errors.New("authorization code already exists")

// ValidateFunc inspects an active, unexpired code. The code is consumed only when it returns nil.
type ValidateFunc func(code model.AuthorizationCode) error

// AuthorizationCodeStoreInterface stores authorization codes and consumes them exactly once.
//
// ConsumeAuthorizationCode fails with ErrAuthorizationCodeNotFound for unknown codes,
// ErrCodeAlreadyUsed for codes that were consumed before, and ErrCodeExpired for codes past
// their expiry time, which are removed. Errors returned by validate leave the code untouched.
type AuthorizationCodeStoreInterface interface {
	InsertAuthorizationCode(ctx context.Context, code model.AuthorizationCode) error
	ConsumeAuthorizationCode(ctx context.Context, code string, validate ValidateFunc) (*model.AuthorizationCode, error)
}

// ttlFor returns how long the backing store should keep a code: until expiry plus the reuse window.
func ttlFor(code model.AuthorizationCode, now time.Time, retention time.Duration) time.Duration {
	ttl := code.ExpiryTime.Sub(now) + retention
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}
