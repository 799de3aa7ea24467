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

package services

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/algafood/authserver/internal/authn/credentials"
	"github.com/algafood/authserver/internal/client"
	"github.com/algafood/authserver/internal/oauth/oauth2/authz"
	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/pkce"
)

// AuthorizationService defines the service for handling OAuth2 authorization requests.
type AuthorizationService struct {
	authHandler *authz.AuthorizeHandler
}

// NewAuthorizationService creates a new instance of AuthorizationService.
func NewAuthorizationService(router chi.Router, registry client.ClientRegistryInterface,
	verifier credentials.CredentialVerifierInterface, pkceVerifier pkce.VerifierInterface,
	codeValidity time.Duration) ServiceInterface {
	instance := &AuthorizationService{
		authHandler: authz.NewAuthorizeHandler(registry, verifier, pkceVerifier, codeValidity),
	}
	instance.RegisterRoutes(router)

	return instance
}

// RegisterRoutes registers the routes for the AuthorizationService.
func (s *AuthorizationService) RegisterRoutes(router chi.Router) {
	router.Get(constants.OAuth2AuthorizationEndpoint, s.authHandler.HandleAuthorizeRequest)
}
