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
	"github.com/go-chi/chi/v5"

	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/introspect"
)

// IntrospectionAPIService defines the API service for handling OAuth 2.0 token introspection
// requests.
type IntrospectionAPIService struct {
	introspectHandler *introspect.TokenIntrospectionHandler
}

// NewIntrospectionAPIService creates a new instance of IntrospectionAPIService.
func NewIntrospectionAPIService(router chi.Router, service introspect.TokenIntrospectionServiceInterface,
	authenticator introspect.ClientAuthenticatorInterface) ServiceInterface {
	instance := &IntrospectionAPIService{
		introspectHandler: introspect.NewTokenIntrospectionHandler(service, authenticator),
	}
	instance.RegisterRoutes(router)

	return instance
}

// RegisterRoutes registers the routes for the IntrospectionAPIService.
func (s *IntrospectionAPIService) RegisterRoutes(router chi.Router) {
	router.Post(constants.OAuth2IntrospectionEndpoint, s.introspectHandler.HandleIntrospect)
}
