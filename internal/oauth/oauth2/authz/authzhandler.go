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

// Package authz provides the headless OAuth 2.0 authorization endpoint.
package authz

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/algafood/authserver/internal/authn/credentials"
	"github.com/algafood/authserver/internal/client"
	authzconst "github.com/algafood/authserver/internal/oauth/oauth2/authz/constants"
	authzmodel "github.com/algafood/authserver/internal/oauth/oauth2/authz/model"
	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/model"
	"github.com/algafood/authserver/internal/oauth/oauth2/pkce"
	oauthutils "github.com/algafood/authserver/internal/oauth/oauth2/utils"
	serverconst "github.com/algafood/authserver/internal/system/constants"
	"github.com/algafood/authserver/internal/system/log"
	"github.com/algafood/authserver/internal/system/utils"
)

const resourceOwnerRealm = `Basic realm="authorize"`

// AuthorizeHandler issues PKCE bound authorization codes. The resource owner authenticates with
// HTTP Basic and approval is implicit.
type AuthorizeHandler struct {
	registry      client.ClientRegistryInterface
	credentials   credentials.CredentialVerifierInterface
	verifier      pkce.VerifierInterface
	authValidator AuthorizationValidatorInterface
	codeValidity  time.Duration
	now           func() time.Time
}

// NewAuthorizeHandler creates an authorize handler. A zero codeValidity selects the default.
func NewAuthorizeHandler(registry client.ClientRegistryInterface, verifier credentials.CredentialVerifierInterface,
	pkceVerifier pkce.VerifierInterface, codeValidity time.Duration) *AuthorizeHandler {
	if codeValidity <= 0 {
		codeValidity = authzconst.DefaultCodeValidity
	}
	return &AuthorizeHandler{
		registry:      registry,
		credentials:   verifier,
		verifier:      pkceVerifier,
		authValidator: NewAuthorizationValidator(registry),
		codeValidity:  codeValidity,
		now:           time.Now,
	}
}

// HandleAuthorizeRequest handles the OAuth2 authorization request.
func (ah *AuthorizeHandler) HandleAuthorizeRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "AuthorizeHandler"))

	if err := r.ParseForm(); err != nil {
		oauthutils.WriteErrorResponse(w, model.NewErrorResponse(constants.ErrorInvalidRequest,
			"Invalid authorization request", err), false)
		return
	}
	req := &AuthorizationRequest{
		ClientID:            r.Form.Get(constants.ClientID),
		RedirectURI:         r.Form.Get(constants.RedirectURI),
		ResponseType:        r.Form.Get(constants.ResponseType),
		Scope:               r.Form.Get(constants.Scope),
		State:               r.Form.Get(constants.State),
		CodeChallenge:       r.Form.Get(constants.CodeChallenge),
		CodeChallengeMethod: r.Form.Get(constants.CodeChallengeMethod),
	}

	if req.ClientID == "" {
		oauthutils.WriteErrorResponse(w, model.NewErrorResponse(constants.ErrorInvalidRequest,
			"Missing client_id parameter", nil), false)
		return
	}
	oauthClient, err := ah.registry.GetClient(req.ClientID)
	if err != nil {
		oauthutils.WriteErrorResponse(w, model.NewErrorResponse(constants.ErrorInvalidRequest,
			"Invalid client_id parameter", err), false)
		return
	}

	sendErrorToApp, errorCode, errorMessage := ah.authValidator.ValidateInitialAuthorizationRequest(req, oauthClient)
	if errorCode != "" {
		if sendErrorToApp {
			ah.redirectWithError(w, r, req, errorCode, errorMessage)
			return
		}
		oauthutils.WriteErrorResponse(w, model.NewErrorResponse(errorCode, errorMessage, nil), false)
		return
	}

	scopes, err := ah.registry.ResolveScopes(oauthClient, utils.ParseScopes(req.Scope))
	if err != nil {
		ah.redirectWithError(w, r, req, constants.ErrorInvalidScope, "Invalid scope")
		return
	}

	// Resource owner passwords are sent as is, unlike form encoded client credentials.
	username, password, ok := r.BasicAuth()
	if !ok {
		ah.challenge(w)
		return
	}
	identity, err := ah.credentials.VerifyUserPassword(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, constants.ErrInvalidCredentials) {
			logger.Debug("Resource owner authentication failed", log.String(log.LoggerKeyClientID, req.ClientID))
			ah.challenge(w)
			return
		}
		logger.Error("Failed to authenticate resource owner", log.Error(err))
		ah.redirectWithError(w, r, req, constants.ErrorServerError, "Failed to authenticate the user")
		return
	}

	now := ah.now()
	code := authzmodel.AuthorizationCode{
		Code:                utils.GenerateUUID(),
		ClientID:            oauthClient.ClientID,
		RedirectURI:         req.RedirectURI,
		AuthorizedUserID:    strconv.FormatInt(identity.ID, 10),
		Username:            identity.Username(),
		Scopes:              scopes,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
		TimeCreated:         now,
		ExpiryTime:          now.Add(ah.codeValidity),
		State:               authzconst.AuthCodeStateActive,
	}
	if err := ah.verifier.Register(r.Context(), code); err != nil {
		logger.Error("Failed to register authorization code", log.String(log.LoggerKeyClientID, req.ClientID),
			log.Error(err))
		ah.redirectWithError(w, r, req, constants.ErrorServerError, "Failed to issue authorization code")
		return
	}

	redirectURI, err := oauthutils.AppendQuery(req.RedirectURI, map[string]string{
		constants.Code:  code.Code,
		constants.State: req.State,
	})
	if err != nil {
		logger.Error("Failed to construct redirect URI", log.Error(err))
		oauthutils.WriteErrorResponse(w, model.NewErrorResponse(constants.ErrorServerError,
			"Failed to redirect", err), false)
		return
	}
	logger.Debug("Authorization code issued", log.String(log.LoggerKeyClientID, req.ClientID))
	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// redirectWithError sends an error to the validated redirect URI of the client.
func (ah *AuthorizeHandler) redirectWithError(w http.ResponseWriter, r *http.Request, req *AuthorizationRequest,
	errorCode, errorMessage string) {
	redirectURI, err := oauthutils.AppendQuery(req.RedirectURI, map[string]string{
		constants.Error:            errorCode,
		constants.ErrorDescription: errorMessage,
		constants.State:            req.State,
	})
	if err != nil {
		oauthutils.WriteErrorResponse(w, model.NewErrorResponse(errorCode, errorMessage, err), false)
		return
	}
	http.Redirect(w, r, redirectURI, http.StatusFound)
}

func (ah *AuthorizeHandler) challenge(w http.ResponseWriter) {
	w.Header().Set(serverconst.WWWAuthenticateHeaderName, resourceOwnerRealm)
	utils.WriteJSONError(w, constants.ErrorAccessDenied, "Resource owner authentication required",
		http.StatusUnauthorized, nil)
}
