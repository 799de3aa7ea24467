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

	"github.com/algafood/authserver/internal/authn/credentials"
	"github.com/algafood/authserver/internal/client"
	clientmodel "github.com/algafood/authserver/internal/client/model"
	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/model"
	"github.com/algafood/authserver/internal/system/log"
	"github.com/algafood/authserver/internal/system/utils"
)

// passwordGrantHandler handles the resource owner password credentials grant.
type passwordGrantHandler struct {
	registry    client.ClientRegistryInterface
	credentials credentials.CredentialVerifierInterface
	issuer      *tokenIssuer
}

func newPasswordGrantHandler(registry client.ClientRegistryInterface,
	verifier credentials.CredentialVerifierInterface, issuer *tokenIssuer) GrantHandlerInterface {
	return &passwordGrantHandler{
		registry:    registry,
		credentials: verifier,
		issuer:      issuer,
	}
}

// ValidateGrant validates the password grant request.
func (h *passwordGrantHandler) ValidateGrant(tokenRequest *model.TokenRequest,
	client *clientmodel.Client) *model.ErrorResponse {
	if tokenRequest.GrantType != constants.GrantTypePassword {
		return model.NewErrorResponse(constants.ErrorUnsupportedGrantType, "Unsupported grant type",
			constants.ErrUnsupportedGrantType)
	}
	if tokenRequest.Username == "" || tokenRequest.Password == "" {
		return model.NewErrorResponse(constants.ErrorInvalidRequest, "Username and password are required", nil)
	}
	return nil
}

// HandleGrant authenticates the resource owner and issues an access token, plus a refresh token
// when the client may use the refresh grant.
func (h *passwordGrantHandler) HandleGrant(ctx context.Context, tokenRequest *model.TokenRequest,
	client *clientmodel.Client) (*model.TokenResponseDTO, *model.ErrorResponse) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "PasswordGrantHandler"))

	scopes, err := h.registry.ResolveScopes(client, utils.ParseScopes(tokenRequest.Scope))
	if err != nil {
		return nil, ErrorResponseFor(err)
	}

	identity, err := h.credentials.VerifyUserPassword(ctx, tokenRequest.Username, tokenRequest.Password)
	if err != nil {
		errResp := ErrorResponseFor(err)
		if errResp.Error == constants.ErrorServerError {
			logger.Error("Failed to verify resource owner credentials", log.Error(err))
		}
		return nil, errResp
	}

	dto, err := h.issuer.issue(ctx, issueParams{
		client:      client,
		grantType:   constants.GrantTypePassword,
		scopes:      scopes,
		identity:    identity,
		withRefresh: client.IsAllowedGrantType(constants.GrantTypeRefreshToken),
	})
	if err != nil {
		logger.Error("Failed to issue tokens", log.String(log.LoggerKeyClientID, client.ClientID), log.Error(err))
		return nil, ErrorResponseFor(err)
	}
	return dto, nil
}
