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

package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/algafood/authserver/internal/authn/credentials"
	"github.com/algafood/authserver/internal/client"
	clientmodel "github.com/algafood/authserver/internal/client/model"
	approvalstore "github.com/algafood/authserver/internal/oauth/oauth2/approval/store"
	authzstore "github.com/algafood/authserver/internal/oauth/oauth2/authz/store"
	"github.com/algafood/authserver/internal/oauth/oauth2/enhancer"
	"github.com/algafood/authserver/internal/oauth/oauth2/granthandlers"
	"github.com/algafood/authserver/internal/oauth/oauth2/pkce"
	"github.com/algafood/authserver/internal/system/crypto/hash"
	"github.com/algafood/authserver/internal/system/jwt"
	"github.com/algafood/authserver/internal/system/metrics"
	usermodel "github.com/algafood/authserver/internal/user/model"
	"github.com/algafood/authserver/tests/mocks/user/storemock"
)

const (
	testIssuer      = "algafood-auth"
	testRedirectURI = "http://www.foodanalytics.local:8082"
	anaUsername     = "ana@algafood.com"
	anaPassword     = "123"
)

// tokenFixture wires a token service over real credentials, codec and in-memory stores. Only the
// user store is mocked.
type tokenFixture struct {
	registry  *client.ClientRegistry
	codec     *jwt.TokenCodec
	approvals *approvalstore.MemoryApprovalStore
	verifier  *pkce.Verifier
	userStore *storemock.UserStoreInterfaceMock
	metrics   *metrics.Metrics
	service   *TokenService
	ana       *usermodel.UserIdentity
}

func newTokenFixture(t *testing.T) *tokenFixture {
	hasher := hash.NewBcryptHasher(bcrypt.MinCost)
	secretHash := func(secret string) string {
		hashed, err := hasher.Hash(secret)
		require.NoError(t, err)
		return hashed
	}

	key, err := jwt.GenerateKey("RS256")
	require.NoError(t, err)
	keys, err := jwt.NewKeyPairProvider(&jwt.KeyPair{KeyID: "algafood", Algorithm: "RS256", PrivateKey: key}, nil)
	require.NoError(t, err)
	codec, err := jwt.NewTokenCodec(keys, testIssuer)
	require.NoError(t, err)

	registry, err := client.NewClientRegistryFromClients(
		&clientmodel.Client{
			ClientID:           "algafood-web",
			HashedClientSecret: secretHash("web123"),
			GrantTypes: []clientmodel.GrantType{
				clientmodel.GrantTypePassword, clientmodel.GrantTypeRefreshToken,
			},
			Scopes:               []string{"READ", "WRITE"},
			AccessTokenValidity:  6 * time.Hour,
			RefreshTokenValidity: 60 * 24 * time.Hour,
		},
		&clientmodel.Client{
			ClientID:             "aplicacao-backend",
			HashedClientSecret:   secretHash("backend123"),
			GrantTypes:           []clientmodel.GrantType{clientmodel.GrantTypeClientCredentials},
			Scopes:               []string{"READ"},
			AccessTokenValidity:  12 * time.Hour,
			RefreshTokenValidity: 30 * 24 * time.Hour,
		},
		&clientmodel.Client{
			ClientID:           "foodanalytics",
			HashedClientSecret: secretHash("food123"),
			GrantTypes: []clientmodel.GrantType{
				clientmodel.GrantTypeAuthorizationCode, clientmodel.GrantTypeRefreshToken,
			},
			Scopes:               []string{"READ", "WRITE"},
			RedirectURIs:         []string{testRedirectURI},
			AccessTokenValidity:  time.Hour,
			RefreshTokenValidity: 2 * time.Hour,
		},
	)
	require.NoError(t, err)

	f := &tokenFixture{
		registry:  registry,
		codec:     codec,
		approvals: approvalstore.NewMemoryApprovalStore(),
		verifier:  pkce.NewVerifier(authzstore.NewMemoryAuthorizationCodeStore()),
		userStore: storemock.NewUserStoreInterfaceMock(t),
		metrics:   metrics.New(),
	}
	verifier := credentials.NewCredentialVerifier(f.userStore, hasher)
	provider := granthandlers.NewDefaultGrantHandlerProvider(granthandlers.Dependencies{
		Registry:     registry,
		Credentials:  verifier,
		PKCEVerifier: f.verifier,
		UserStore:    f.userStore,
		Codec:        codec,
		Enhancer:     enhancer.Chain(enhancer.CustomClaimsEnhancer),
		Approvals:    f.approvals,
		Metrics:      f.metrics,
	})
	f.service = NewTokenService(registry, verifier, provider, codec, f.approvals, f.metrics)

	ana, err := hasher.Hash(anaPassword)
	require.NoError(t, err)
	f.ana = &usermodel.UserIdentity{
		ID:           7,
		Code:         "0c4a4d0e-6f1b-4b55-8d35-7b8b4d0b0a07",
		FullName:     "Ana Souza",
		Email:        anaUsername,
		PasswordHash: ana,
		Authorities:  []string{"EDITAR_COZINHAS", "CONSULTAR_PEDIDOS"},
	}
	return f
}
