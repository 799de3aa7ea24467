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

package granthandlers

import (
	"context"

	"github.com/algafood/authserver/internal/client"
	clientmodel "github.com/algafood/authserver/internal/client/model"
	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/model"
	"github.com/algafood/authserver/internal/system/log"
	"github.com/algafood/authserver/internal/system/utils"
)

// clientCredentialsGrantHandler handles the client credentials grant type.
type clientCredentialsGrantHandler struct {
	registry client.ClientRegistryInterface
	issuer   *tokenIssuer
}

func newClientCredentialsGrantHandler(registry client.ClientRegistryInterface,
	issuer *tokenIssuer) GrantHandlerInterface {
	return &clientCredentialsGrantHandler{
		registry: registry,
		issuer:   issuer,
	}
}

// ValidateGrant validates the client credentials grant request.
func (h *clientCredentialsGrantHandler) ValidateGrant(tokenRequest *model.TokenRequest,
	client *clientmodel.Client) *model.ErrorResponse {
	if tokenRequest.GrantType != constants.GrantTypeClientCredentials {
		return model.NewErrorResponse(constants.ErrorUnsupportedGrantType, "Unsupported grant type",
			constants.ErrUnsupportedGrantType)
	}
	return nil
}

// HandleGrant issues an access token for the client itself. There is no resource owner, so the
// token has no subject and no user claims, and no refresh token is issued.
func (h *clientCredentialsGrantHandler) HandleGrant(ctx context.Context, tokenRequest *model.TokenRequest,
	client *clientmodel.Client) (*model.TokenResponseDTO, *model.ErrorResponse) {
	scopes, err := h.registry.ResolveScopes(client, utils.ParseScopes(tokenRequest.Scope))
	if err != nil {
		return nil, ErrorResponseFor(err)
	}

	dto, err := h.issuer.issue(ctx, issueParams{
		client:    client,
		grantType: constants.GrantTypeClientCredentials,
		scopes:    scopes,
	})
	if err != nil {
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ClientCredentialsGrantHandler")).
			Error("Failed to issue access token", log.String(log.LoggerKeyClientID, client.ClientID), log.Error(err))
		return nil, ErrorResponseFor(err)
	}
	return dto, nil
}
