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

package introspect

import (
	"net/http"

	clientmodel "github.com/algafood/authserver/internal/client/model"
	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/model"
	oauthutils "github.com/algafood/authserver/internal/oauth/oauth2/utils"
	"github.com/algafood/authserver/internal/system/log"
)

// ClientAuthenticatorInterface authenticates the client calling the introspection endpoint.
type ClientAuthenticatorInterface interface {
	AuthenticateClient(clientID, clientSecret string) (*clientmodel.Client, *model.ErrorResponse)
}

// TokenIntrospectionHandler handles OAuth 2.0 token introspection requests.
type TokenIntrospectionHandler struct {
	service       TokenIntrospectionServiceInterface
	authenticator ClientAuthenticatorInterface
}

// NewTokenIntrospectionHandler creates a new token introspection handler.
func NewTokenIntrospectionHandler(introspectionService TokenIntrospectionServiceInterface,
	authenticator ClientAuthenticatorInterface) *TokenIntrospectionHandler {
	return &TokenIntrospectionHandler{
		service:       introspectionService,
		authenticator: authenticator,
	}
}

// HandleIntrospect handles token introspection requests. Only clients authenticated with HTTP
// Basic may introspect.
func (h *TokenIntrospectionHandler) HandleIntrospect(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "TokenIntrospectionHandler"))

	if err := r.ParseForm(); err != nil {
		oauthutils.WriteErrorResponse(w, model.NewErrorResponse(constants.ErrorInvalidRequest,
			"Failed to decode request body", err), false)
		return
	}

	creds, errResp := oauthutils.ExtractClientCredentials(r, false)
	if errResp != nil {
		oauthutils.WriteErrorResponse(w, errResp, true)
		return
	}
	if _, errResp := h.authenticator.AuthenticateClient(creds.ClientID, creds.ClientSecret); errResp != nil {
		oauthutils.WriteErrorResponse(w, errResp, true)
		return
	}

	token := r.PostForm.Get(constants.Token)
	if token == "" {
		oauthutils.WriteErrorResponse(w, model.NewErrorResponse(constants.ErrorInvalidRequest,
			"Token parameter is required", nil), false)
		return
	}

	response, err := h.service.IntrospectToken(r.Context(), token, r.PostForm.Get(constants.TokenTypeHint))
	if err != nil {
		logger.Error("Failed to introspect token", log.String(log.LoggerKeyClientID, creds.ClientID),
			log.Error(err))
		oauthutils.WriteErrorResponse(w, model.NewErrorResponse(constants.ErrorServerError,
			"Server error while introspecting token", err), false)
		return
	}

	oauthutils.WriteNoStoreJSON(w, response)
}
