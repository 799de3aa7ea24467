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
	"github.com/algafood/authserver/internal/authn/credentials"
	"github.com/algafood/authserver/internal/client"
	approvalstore "github.com/algafood/authserver/internal/oauth/oauth2/approval/store"
	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/enhancer"
	"github.com/algafood/authserver/internal/oauth/oauth2/pkce"
	"github.com/algafood/authserver/internal/system/jwt"
	"github.com/algafood/authserver/internal/system/metrics"
	userstore "github.com/algafood/authserver/internal/user/store"
)

// Dependencies are the collaborators of the built-in grant handlers.
type Dependencies struct {
	Registry           client.ClientRegistryInterface
	Credentials        credentials.CredentialVerifierInterface
	PKCEVerifier       pkce.VerifierInterface
	UserStore          userstore.UserStoreInterface
	Codec              jwt.TokenCodecInterface
	Enhancer           enhancer.Enhancer
	Approvals          approvalstore.ApprovalStoreInterface
	ReuseRefreshTokens bool
	Metrics            *metrics.Metrics
}

// NewDefaultGrantHandlerProvider registers the password, client credentials, authorization code
// and refresh token handlers.
func NewDefaultGrantHandlerProvider(deps Dependencies) *GrantHandlerProvider {
	issuer := newTokenIssuer(deps.Codec, deps.Enhancer, deps.Approvals)

	provider := NewGrantHandlerProvider()
	provider.RegisterGrantHandler(constants.GrantTypePassword,
		newPasswordGrantHandler(deps.Registry, deps.Credentials, issuer))
	provider.RegisterGrantHandler(constants.GrantTypeClientCredentials,
		newClientCredentialsGrantHandler(deps.Registry, issuer))
	provider.RegisterGrantHandler(constants.GrantTypeAuthorizationCode,
		newAuthorizationCodeGrantHandler(deps.PKCEVerifier, deps.UserStore, issuer, deps.Metrics))
	provider.RegisterGrantHandler(constants.GrantTypeRefreshToken,
		newRefreshTokenGrantHandler(deps.Codec, deps.Approvals, deps.UserStore, issuer,
			deps.ReuseRefreshTokens, deps.Metrics))
	return provider
}
