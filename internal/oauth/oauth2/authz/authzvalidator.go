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

package authz

import (
	"github.com/algafood/authserver/internal/client"
	clientmodel "github.com/algafood/authserver/internal/client/model"
	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/pkce"
	"github.com/algafood/authserver/internal/system/log"
)

// AuthorizationRequest holds the parameters of an authorization request.
type AuthorizationRequest struct {
	ClientID            string
	RedirectURI         string
	ResponseType        string
	Scope               string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// AuthorizationValidatorInterface defines the interface for validating OAuth2 authorization requests.
type AuthorizationValidatorInterface interface {
	ValidateInitialAuthorizationRequest(req *AuthorizationRequest, oauthClient *clientmodel.Client) (
		bool, string, string)
}

// AuthorizationValidator implements the AuthorizationValidatorInterface for validating OAuth2 authorization requests.
type AuthorizationValidator struct {
	registry client.ClientRegistryInterface
}

// NewAuthorizationValidator creates a new instance of AuthorizationValidator.
func NewAuthorizationValidator(registry client.ClientRegistryInterface) AuthorizationValidatorInterface {
	return &AuthorizationValidator{registry: registry}
}

// ValidateInitialAuthorizationRequest validates the authorization request parameters. The first
// return value tells whether the error may be sent to the client's redirect URI.
func (av *AuthorizationValidator) ValidateInitialAuthorizationRequest(req *AuthorizationRequest,
	oauthClient *clientmodel.Client) (bool, string, string) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "AuthorizationValidator"))

	// The redirect URI must be trusted before any error is sent to it.
	if err := av.registry.ValidateRedirectURI(oauthClient, req.RedirectURI); err != nil {
		logger.Debug("Validation failed for redirect URI", log.String(log.LoggerKeyClientID, oauthClient.ClientID),
			log.Error(err))
		return false, constants.ErrorInvalidRequest, "Invalid redirect URI"
	}

	if err := av.registry.ValidateGrantType(oauthClient, constants.GrantTypeAuthorizationCode); err != nil {
		return true, constants.ErrorUnauthorizedClient,
			"Authorization code grant type is not allowed for the client"
	}

	if req.ResponseType == "" {
		return true, constants.ErrorInvalidRequest, "Missing response_type parameter"
	}
	if req.ResponseType != constants.ResponseTypeCode {
		return true, constants.ErrorUnsupportedResponseType, "Unsupported response type"
	}

	if req.CodeChallenge == "" {
		return true, constants.ErrorInvalidRequest, "PKCE code challenge is required"
	}
	method := req.CodeChallengeMethod
	if method == "" {
		method = constants.CodeChallengeMethodPlain
	}
	if err := pkce.ValidateCodeChallenge(req.CodeChallenge, method); err != nil {
		return true, constants.ErrorInvalidRequest, "Invalid PKCE code challenge"
	}

	return false, "", ""
}
