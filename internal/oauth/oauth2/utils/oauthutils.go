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

// Package utils provides utility functions for OAuth2 endpoints.
package utils

import (
	"net/http"
	"net/url"

	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/model"
	serverconst "github.com/algafood/authserver/internal/system/constants"
	"github.com/algafood/authserver/internal/system/utils"
)

// ClientCredentials are the client id and secret presented with a request.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
	// FromHeader is set when the credentials came from HTTP Basic authentication.
	FromHeader bool
}

// ExtractClientCredentials reads client credentials from HTTP Basic authentication or from the
// form body. Presenting them both ways is rejected. The form must already be parsed.
func ExtractClientCredentials(r *http.Request, allowBody bool) (*ClientCredentials, *model.ErrorResponse) {
	creds := &ClientCredentials{}
	if r.Header.Get(serverconst.AuthorizationHeaderName) != "" {
		clientID, clientSecret, err := utils.ExtractBasicAuthCredentials(r)
		if err != nil {
			return nil, model.NewErrorResponse(constants.ErrorInvalidClient, "Invalid client credentials", err)
		}
		creds.ClientID = clientID
		creds.ClientSecret = clientSecret
		creds.FromHeader = true
	}

	bodyID := r.PostForm.Get(constants.ClientID)
	bodySecret := r.PostForm.Get(constants.ClientSecret)
	if creds.FromHeader {
		if bodySecret != "" || (bodyID != "" && bodyID != creds.ClientID) {
			return nil, model.NewErrorResponse(constants.ErrorInvalidRequest,
				"Client credentials must not be provided in both header and body", nil)
		}
		return creds, nil
	}

	if !allowBody {
		return nil, model.NewErrorResponse(constants.ErrorInvalidClient, "Client authentication required", nil)
	}
	creds.ClientID = bodyID
	creds.ClientSecret = bodySecret
	return creds, nil
}

// WriteErrorResponse writes an OAuth error with the status its code maps to. Failed HTTP Basic
// authentication gets a WWW-Authenticate challenge.
func WriteErrorResponse(w http.ResponseWriter, errResp *model.ErrorResponse, basicChallenge bool) {
	status := constants.StatusCodeFor(errResp.Error)
	var headers []map[string]string
	if status == http.StatusUnauthorized && basicChallenge {
		headers = append(headers, map[string]string{serverconst.WWWAuthenticateHeaderName: `Basic realm="oauth2"`})
	}
	headers = append(headers, noStoreHeaders())
	utils.WriteJSONError(w, errResp.Error, errResp.ErrorDescription, status, headers)
}

// WriteNoStoreJSON writes a successful response that must not be cached.
func WriteNoStoreJSON(w http.ResponseWriter, body any) {
	utils.WriteJSON(w, http.StatusOK, body, []map[string]string{noStoreHeaders()})
}

func noStoreHeaders() map[string]string {
	return map[string]string{
		"Cache-Control": "no-store",
		"Pragma":        "no-cache",
	}
}

// AppendQuery adds the given parameters to a redirect URI, keeping its existing query.
func AppendQuery(redirectURI string, params map[string]string) (string, error) {
	parsed, err := url.Parse(redirectURI)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	for k, v := range params {
		if v != "" {
			query.Set(k, v)
		}
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
