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

package token

import (
	"net/http"

	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/model"
	oauthutils "github.com/algafood/authserver/internal/oauth/oauth2/utils"
	"github.com/algafood/authserver/internal/system/log"
)

// TokenHandler handles OAuth 2.0 token and revocation requests.
type TokenHandler struct {
	service TokenServiceInterface
}

// NewTokenHandler creates a handler over the token service.
func NewTokenHandler(service TokenServiceInterface) *TokenHandler {
	return &TokenHandler{service: service}
}

// HandleTokenRequest handles the token request for OAuth 2.0.
func (th *TokenHandler) HandleTokenRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "TokenHandler"))

	if err := r.ParseForm(); err != nil {
		oauthutils.WriteErrorResponse(w, model.NewErrorResponse(constants.ErrorInvalidRequest,
			"Failed to parse request body", err), false)
		return
	}

	grantType := r.PostForm.Get(constants.GrantType)
	if grantType == "" {
		oauthutils.WriteErrorResponse(w, model.NewErrorResponse(constants.ErrorInvalidRequest,
			"Missing grant_type parameter", nil), false)
		return
	}

	creds, errResp := oauthutils.ExtractClientCredentials(r, true)
	if errResp != nil {
		oauthutils.WriteErrorResponse(w, errResp, true)
		return
	}

	tokenRequest := &model.TokenRequest{
		GrantType:    grantType,
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Scope:        r.PostForm.Get(constants.Scope),
		Username:     r.PostForm.Get(constants.Username),
		Password:     r.PostForm.Get(constants.Password),
		RefreshToken: r.PostForm.Get(constants.RefreshToken),
		CodeVerifier: r.PostForm.Get(constants.CodeVerifier),
		Code:         r.PostForm.Get(constants.Code),
		RedirectURI:  r.PostForm.Get(constants.RedirectURI),
	}

	tokenResponse, errResp := th.service.IssueToken(r.Context(), tokenRequest)
	if errResp != nil {
		oauthutils.WriteErrorResponse(w, errResp, creds.FromHeader)
		return
	}

	oauthutils.WriteNoStoreJSON(w, tokenResponse)
	logger.Debug("Token response sent", log.String(log.LoggerKeyClientID, creds.ClientID))
}

// HandleRevokeRequest handles RFC 7009 token revocation. Any token the client presents is
// answered with 200 once the client is authenticated.
func (th *TokenHandler) HandleRevokeRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		oauthutils.WriteErrorResponse(w, model.NewErrorResponse(constants.ErrorInvalidRequest,
			"Failed to parse request body", err), false)
		return
	}

	creds, errResp := oauthutils.ExtractClientCredentials(r, true)
	if errResp != nil {
		oauthutils.WriteErrorResponse(w, errResp, true)
		return
	}
	c, errResp := th.service.AuthenticateClient(creds.ClientID, creds.ClientSecret)
	if errResp != nil {
		oauthutils.WriteErrorResponse(w, errResp, creds.FromHeader)
		return
	}

	token := r.PostForm.Get(constants.Token)
	if token == "" {
		oauthutils.WriteErrorResponse(w, model.NewErrorResponse(constants.ErrorInvalidRequest,
			"Missing token parameter", nil), false)
		return
	}

	if errResp := th.service.RevokeToken(r.Context(), c, token, r.PostForm.Get(constants.TokenTypeHint)); errResp != nil {
		oauthutils.WriteErrorResponse(w, errResp, false)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
}
