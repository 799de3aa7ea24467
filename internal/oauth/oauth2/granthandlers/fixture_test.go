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
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/algafood/authserver/internal/client"
	clientmodel "github.com/algafood/authserver/internal/client/model"
	approvalmodel "github.com/algafood/authserver/internal/oauth/oauth2/approval/model"
	approvalstore "github.com/algafood/authserver/internal/oauth/oauth2/approval/store"
	authzconst "github.com/algafood/authserver/internal/oauth/oauth2/authz/constants"
	authzmodel "github.com/algafood/authserver/internal/oauth/oauth2/authz/model"
	authzstore "github.com/algafood/authserver/internal/oauth/oauth2/authz/store"
	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/enhancer"
	"github.com/algafood/authserver/internal/oauth/oauth2/model"
	"github.com/algafood/authserver/internal/oauth/oauth2/pkce"
	"github.com/algafood/authserver/internal/system/jwt"
	"github.com/algafood/authserver/internal/system/metrics"
	usermodel "github.com/algafood/authserver/internal/user/model"
	"github.com/algafood/authserver/tests/mocks/authn/credentialsmock"
	"github.com/algafood/authserver/tests/mocks/user/storemock"
)

const (
	testIssuer       = "algafood-auth"
	testRedirectURI  = "http://www.foodanalytics.local:8082"
	testCodeVerifier = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	testChallenge    = "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"
)

func anaIdentity() *usermodel.UserIdentity {
	return &usermodel.UserIdentity{
		ID:           7,
		Code:         "0c4a4d0e-6f1b-4b55-8d35-7b8b4d0b0a07",
		FullName:     "Ana Souza",
		Email:        "ana@algafood.com",
		PasswordHash: "$2a$10$hash",
		Authorities:  []string{"EDITAR_COZINHAS", "CONSULTAR_PEDIDOS"},
	}
}

func testClients() []*clientmodel.Client {
	return []*clientmodel.Client{
		{
			ClientID:           "mobile-app",
			HashedClientSecret: "$2a$10$secret",
			GrantTypes: []clientmodel.GrantType{
				clientmodel.GrantTypePassword, clientmodel.GrantTypeRefreshToken,
			},
			Scopes:               []string{"READ", "WRITE"},
			AccessTokenValidity:  time.Hour,
			RefreshTokenValidity: 2 * time.Hour,
		},
		{
			ClientID:           "algafood-web",
			HashedClientSecret: "$2a$10$secret",
			GrantTypes: []clientmodel.GrantType{
				clientmodel.GrantTypePassword, clientmodel.GrantTypeRefreshToken,
			},
			Scopes:               []string{"READ", "WRITE"},
			AccessTokenValidity:  6 * time.Hour,
			RefreshTokenValidity: 60 * 24 * time.Hour,
		},
		{
			ClientID:             "faturamento",
			HashedClientSecret:   "$2a$10$secret",
			GrantTypes:           []clientmodel.GrantType{clientmodel.GrantTypePassword},
			Scopes:               []string{"READ"},
			AccessTokenValidity:  time.Hour,
			RefreshTokenValidity: time.Hour,
		},
		{
			ClientID:             "aplicacao-backend",
			HashedClientSecret:   "$2a$10$secret",
			GrantTypes:           []clientmodel.GrantType{clientmodel.GrantTypeClientCredentials},
			Scopes:               []string{"READ"},
			AccessTokenValidity:  12 * time.Hour,
			RefreshTokenValidity: 30 * 24 * time.Hour,
		},
		{
			ClientID:           "foodanalytics",
			HashedClientSecret: "$2a$10$secret",
			GrantTypes: []clientmodel.GrantType{
				clientmodel.GrantTypeAuthorizationCode, clientmodel.GrantTypeRefreshToken,
			},
			Scopes:               []string{"READ", "WRITE"},
			RedirectURIs:         []string{testRedirectURI},
			AccessTokenValidity:  time.Hour,
			RefreshTokenValidity: 2 * time.Hour,
		},
	}
}

var (
	errSignerDown   = errors.New("signing key unavailable")
	errApprovalDown = errors.New("approval store unavailable")
	errCommitLost   = errors.New("code state change was not committed")
)

// faultyCodec signs through the real codec until failEncode is set.
type faultyCodec struct {
	jwt.TokenCodecInterface
	failEncode atomic.Bool
}

func (c *faultyCodec) Encode(record model.TokenRecord) (string, error) {
	if c.failEncode.Load() {
		return "", errSignerDown
	}
	return c.TokenCodecInterface.Encode(record)
}

// faultyApprovals stores through the real approval store until a failure is switched on.
type faultyApprovals struct {
	approvalstore.ApprovalStoreInterface
	failSave   atomic.Bool
	failRotate atomic.Bool

	mu    sync.Mutex
	saved []string
}

func (a *faultyApprovals) Save(ctx context.Context, entry approvalmodel.ApprovalEntry) error {
	if a.failSave.Load() {
		return errApprovalDown
	}
	if err := a.ApprovalStoreInterface.Save(ctx, entry); err != nil {
		return err
	}
	a.mu.Lock()
	a.saved = append(a.saved, entry.RefreshTokenID)
	a.mu.Unlock()
	return nil
}

func (a *faultyApprovals) savedIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.saved...)
}

// faultyCodeStore runs validate but, while failCommit is set, drops the state change the way a
// failed transaction would.
type faultyCodeStore struct {
	authzstore.AuthorizationCodeStoreInterface
	failCommit atomic.Bool
}

func (s *faultyCodeStore) ConsumeAuthorizationCode(ctx context.Context, code string,
	validate authzstore.ValidateFunc) (*authzmodel.AuthorizationCode, error) {
	if !s.failCommit.Load() {
		return s.AuthorizationCodeStoreInterface.ConsumeAuthorizationCode(ctx, code, validate)
	}
	_, err := s.AuthorizationCodeStoreInterface.ConsumeAuthorizationCode(ctx, code,
		func(c authzmodel.AuthorizationCode) error {
			if err := validate(c); err != nil {
				return err
			}
			return errCommitLost
		})
	return nil, err
}

func (a *faultyApprovals) RotateRefreshToken(ctx context.Context, oldRefreshTokenID string,
	next approvalmodel.ApprovalEntry) error {
	if a.failRotate.Load() {
		return errApprovalDown
	}
	return a.ApprovalStoreInterface.RotateRefreshToken(ctx, oldRefreshTokenID, next)
}

// grantFixture wires the built-in handlers over in-memory stores and a real codec.
type grantFixture struct {
	registry    *client.ClientRegistry
	codec       *jwt.TokenCodec
	signer      *faultyCodec
	approvals   *approvalstore.MemoryApprovalStore
	store       *faultyApprovals
	codeStore   *authzstore.MemoryAuthorizationCodeStore
	codes       *faultyCodeStore
	verifier    *pkce.Verifier
	credentials *credentialsmock.CredentialVerifierInterfaceMock
	userStore   *storemock.UserStoreInterfaceMock
	provider    *GrantHandlerProvider
}

func newGrantFixture(t *testing.T, reuse bool) *grantFixture {
	key, err := jwt.GenerateKey("ES256")
	require.NoError(t, err)
	keys, err := jwt.NewKeyPairProvider(&jwt.KeyPair{KeyID: "test", Algorithm: "ES256", PrivateKey: key}, nil)
	require.NoError(t, err)
	codec, err := jwt.NewTokenCodec(keys, testIssuer)
	require.NoError(t, err)
	registry, err := client.NewClientRegistryFromClients(testClients()...)
	require.NoError(t, err)

	f := &grantFixture{
		registry:    registry,
		codec:       codec,
		approvals:   approvalstore.NewMemoryApprovalStore(),
		codeStore:   authzstore.NewMemoryAuthorizationCodeStore(),
		credentials: credentialsmock.NewCredentialVerifierInterfaceMock(t),
		userStore:   storemock.NewUserStoreInterfaceMock(t),
	}
	f.codes = &faultyCodeStore{AuthorizationCodeStoreInterface: f.codeStore}
	f.verifier = pkce.NewVerifier(f.codes)
	f.signer = &faultyCodec{TokenCodecInterface: f.codec}
	f.store = &faultyApprovals{ApprovalStoreInterface: f.approvals}
	f.provider = NewDefaultGrantHandlerProvider(Dependencies{
		Registry:           f.registry,
		Credentials:        f.credentials,
		PKCEVerifier:       f.verifier,
		UserStore:          f.userStore,
		Codec:              f.signer,
		Enhancer:           enhancer.Chain(enhancer.CustomClaimsEnhancer),
		Approvals:          f.store,
		ReuseRefreshTokens: reuse,
		Metrics:            metrics.New(),
	})
	return f
}

func (f *grantFixture) client(t *testing.T, clientID string) *clientmodel.Client {
	c, err := f.registry.GetClient(clientID)
	require.NoError(t, err)
	return c
}

func (f *grantFixture) handle(t *testing.T, req *model.TokenRequest) (*model.TokenResponseDTO, *model.ErrorResponse) {
	handler, err := f.provider.GetGrantHandler(req.GrantType)
	require.NoError(t, err)
	c := f.client(t, req.ClientID)
	if errResp := handler.ValidateGrant(req, c); errResp != nil {
		return nil, errResp
	}
	return handler.HandleGrant(context.Background(), req, c)
}

func (f *grantFixture) registerCode(t *testing.T, code string, createdAgo time.Duration) {
	created := time.Now().Add(-createdAgo)
	require.NoError(t, f.verifier.Register(context.Background(), authzmodel.AuthorizationCode{
		Code:                code,
		ClientID:            "foodanalytics",
		RedirectURI:         testRedirectURI,
		AuthorizedUserID:    "7",
		Username:            "ana@algafood.com",
		Scopes:              []string{"READ"},
		CodeChallenge:       testChallenge,
		CodeChallengeMethod: constants.CodeChallengeMethodS256,
		TimeCreated:         created,
		ExpiryTime:          created.Add(authzconst.DefaultCodeValidity),
		State:               authzconst.AuthCodeStateActive,
	}))
}

func passwordRequest(clientID string) *model.TokenRequest {
	return &model.TokenRequest{
		GrantType: constants.GrantTypePassword,
		ClientID:  clientID,
		Username:  "ana@algafood.com",
		Password:  "123",
	}
}
