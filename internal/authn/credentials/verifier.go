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

// Package credentials verifies client secrets and resource owner passwords.
package credentials

import (
	"context"
	"errors"
	"fmt"

	clientmodel "github.com/algafood/authserver/internal/client/model"
	oauth2const "github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/system/crypto/hash"
	"github.com/algafood/authserver/internal/system/log"
	userconst "github.com/algafood/authserver/internal/user/constants"
	usermodel "github.com/algafood/authserver/internal/user/model"
	"github.com/algafood/authserver/internal/user/store"
)

// CredentialVerifierInterface checks presented secrets against stored hashes.
type CredentialVerifierInterface interface {
	VerifyClientSecret(client *clientmodel.Client, presentedSecret string) bool
	VerifyUserPassword(ctx context.Context, username, password string) (*usermodel.UserIdentity, error)
}

// CredentialVerifier is the default CredentialVerifierInterface.
type CredentialVerifier struct {
	userStore store.UserStoreInterface
	hasher    hash.PasswordHasherInterface
}

// NewCredentialVerifier creates a verifier over the given user store and hasher.
func NewCredentialVerifier(userStore store.UserStoreInterface, hasher hash.PasswordHasherInterface) *CredentialVerifier {
	return &CredentialVerifier{
		userStore: userStore,
		hasher:    hasher,
	}
}

// VerifyClientSecret compares the presented secret with the client's stored hash.
func (v *CredentialVerifier) VerifyClientSecret(client *clientmodel.Client, presentedSecret string) bool {
	if client == nil || presentedSecret == "" {
		v.hasher.VerifyDummy(presentedSecret)
		return false
	}
	return v.hasher.Verify(presentedSecret, client.HashedClientSecret)
}

// VerifyUserPassword authenticates a resource owner. Unknown users and wrong passwords both
// yield ErrInvalidCredentials; store failures are returned wrapped.
func (v *CredentialVerifier) VerifyUserPassword(ctx context.Context, username,
	password string) (*usermodel.UserIdentity, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "CredentialVerifier"))

	if username == "" || password == "" {
		return nil, oauth2const.ErrInvalidCredentials
	}

	user, err := v.userStore.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userconst.ErrUserNotFound) {
			v.hasher.VerifyDummy(password)
			logger.Debug("Authentication failed for unknown user", log.String("username", log.MaskString(username)))
			return nil, oauth2const.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !v.hasher.Verify(password, user.PasswordHash) {
		logger.Debug("Authentication failed due to password mismatch",
			log.String("username", log.MaskString(username)))
		return nil, oauth2const.ErrInvalidCredentials
	}

	return user, nil
}
