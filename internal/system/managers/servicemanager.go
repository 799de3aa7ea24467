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

// Package managers provides functionality for managing and registering system services.
package managers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/algafood/authserver/internal/system/log"
	"github.com/algafood/authserver/internal/system/middleware"
	"github.com/algafood/authserver/internal/system/services"
)

// ServiceManagerInterface defines the interface for managing services.
type ServiceManagerInterface interface {
	RegisterServices() error
}

// ServiceManager implements the ServiceManagerInterface and is responsible for registering services.
type ServiceManager struct {
	router     chi.Router
	components *Components
}

// NewServiceManager creates a new instance of ServiceManager.
func NewServiceManager(router chi.Router, components *Components) ServiceManagerInterface {
	return &ServiceManager{
		router:     router,
		components: components,
	}
}

// RegisterServices registers all the services with the provided router.
func (sm *ServiceManager) RegisterServices() error {
	c := sm.components

	// Register the health service.
	services.NewHealthCheckService(sm.router, c.HealthCheck)

	// Register the token service.
	var limiter *middleware.RateLimiter
	if c.Config.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(c.Config.RateLimit)
	}
	services.NewTokenService(sm.router, c.TokenService, limiter, c.Metrics)

	// Register the authorization service.
	services.NewAuthorizationService(sm.router, c.Registry, c.Credentials, c.PKCEVerifier, c.CodeValidity())

	// Register the JWKS service.
	services.NewJWKSAPIService(sm.router, c.JWKS)

	// Register the introspection service.
	services.NewIntrospectionAPIService(sm.router, c.Introspector, c.TokenService)

	// Register the metrics service.
	services.NewMetricsService(sm.router, c.Metrics)

	return nil
}

// NewRouter creates the root router with panic recovery and access logging. Forwarded client
// addresses are honoured only when trustProxyHeaders is set; otherwise the socket peer is used.
func NewRouter(logger *log.Logger, trustProxyHeaders bool) *chi.Mux {
	router := chi.NewRouter()
	if trustProxyHeaders {
		router.Use(chimiddleware.RealIP)
	}
	router.Use(func(next http.Handler) http.Handler {
		return log.AccessLogHandler(logger, next)
	})
	router.Use(chimiddleware.Recoverer)
	return router
}
