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
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/token"
	"github.com/algafood/authserver/internal/system/metrics"
	"github.com/algafood/authserver/internal/system/middleware"
)

// TokenService defines the service for handling OAuth2 token and revocation requests.
type TokenService struct {
	tokenHandler *token.TokenHandler
	rateLimit    func(http.Handler) http.Handler
}

// NewTokenService creates a new instance of TokenService. A nil limiter leaves the token endpoint
// unthrottled.
func NewTokenService(router chi.Router, tokenService token.TokenServiceInterface,
	limiter *middleware.RateLimiter, m *metrics.Metrics) ServiceInterface {
	instance := &TokenService{
		tokenHandler: token.NewTokenHandler(tokenService),
	}
	if limiter != nil {
		instance.rateLimit = middleware.RateLimit(limiter, m)
	}
	instance.RegisterRoutes(router)

	return instance
}

// RegisterRoutes registers the routes for the TokenService.
func (s *TokenService) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		if s.rateLimit != nil {
			r.Use(s.rateLimit)
		}
		r.Post(constants.OAuth2TokenEndpoint, s.tokenHandler.HandleTokenRequest)
	})
	router.Post(constants.OAuth2RevokeEndpoint, s.tokenHandler.HandleRevokeRequest)
}
