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

	"github.com/algafood/authserver/internal/system/healthcheck/handler"
	"github.com/algafood/authserver/internal/system/healthcheck/service"
)

// HealthCheckService defines the service for handling readiness and liveness checks.
type HealthCheckService struct {
	healthCheckHandler *handler.HealthCheckHandler
}

// NewHealthCheckService creates a new instance of HealthCheckService.
func NewHealthCheckService(router chi.Router, healthCheck service.HealthCheckServiceInterface) ServiceInterface {
	instance := &HealthCheckService{
		healthCheckHandler: handler.NewHealthCheckHandler(healthCheck),
	}
	instance.RegisterRoutes(router)

	return instance
}

// RegisterRoutes registers the routes for the HealthCheckService.
// GET /health answers like readiness.
func (h *HealthCheckService) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.healthCheckHandler.HandleReadinessRequest)
	router.Get("/health/liveness", h.healthCheckHandler.HandleLivenessRequest)
	router.Get("/health/readiness", h.healthCheckHandler.HandleReadinessRequest)
}
