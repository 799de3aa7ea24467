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

	"github.com/algafood/authserver/internal/oauth/jwks"
	"github.com/algafood/authserver/internal/oauth/jwks/handler"
	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
)

// JWKSAPIService defines the API service for the public signing keys.
type JWKSAPIService struct {
	jwksHandler *handler.JWKSHandler
}

// NewJWKSAPIService creates a new instance of JWKSAPIService.
func NewJWKSAPIService(router chi.Router, service jwks.JWKSServiceInterface) ServiceInterface {
	instance := &JWKSAPIService{
		jwksHandler: handler.NewJWKSHandler(service),
	}
	instance.RegisterRoutes(router)

	return instance
}

// RegisterRoutes registers the routes for the JWKSAPIService.
func (s *JWKSAPIService) RegisterRoutes(router chi.Router) {
	router.Get(constants.OAuth2JWKSEndpoint, s.jwksHandler.HandleJWKSRequest)
	router.Get(constants.OAuth2TokenKeyEndpoint, s.jwksHandler.HandleTokenKeyRequest)
}
