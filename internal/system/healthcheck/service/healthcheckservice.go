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

// Package service provides health check-related business logic and operations.
package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/algafood/authserver/internal/system/database/provider"
	"github.com/algafood/authserver/internal/system/healthcheck/model"
	"github.com/algafood/authserver/internal/system/log"
)

const checkTimeout = 3 * time.Second

// HealthCheckServiceInterface defines the interface for the health check service.
type HealthCheckServiceInterface interface {
	CheckReadiness(ctx context.Context) model.ServerStatus
}

// HealthCheckService is the default implementation of the HealthCheckServiceInterface.
type HealthCheckService struct {
	DBProvider provider.DBProviderInterface
	// Redis is nil when token state is kept in memory.
	Redis redis.UniversalClient
}

// NewHealthCheckService creates a health check service over the server's dependencies.
func NewHealthCheckService(dbProvider provider.DBProviderInterface, rdb redis.UniversalClient) *HealthCheckService {
	return &HealthCheckService{
		DBProvider: dbProvider,
		Redis:      rdb,
	}
}

// CheckReadiness checks the readiness of the server and its dependencies.
func (hcs *HealthCheckService) CheckReadiness(ctx context.Context) model.ServerStatus {
	statuses := []model.ServiceStatus{{
		ServiceName: "IdentityDB",
		Status:      hcs.checkDatabaseStatus(ctx),
	}}
	if hcs.Redis != nil {
		statuses = append(statuses, model.ServiceStatus{
			ServiceName: "Cache",
			Status:      hcs.checkCacheStatus(ctx),
		})
	}

	status := model.StatusUp
	for _, s := range statuses {
		if s.Status == model.StatusDown {
			status = model.StatusDown
		}
	}
	return model.ServerStatus{
		Status:        status,
		ServiceStatus: statuses,
	}
}

// checkDatabaseStatus pings the identity database, then checks that the user table is readable.
func (hcs *HealthCheckService) checkDatabaseStatus(ctx context.Context) model.Status {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "HealthCheckService"))

	dbClient, err := hcs.DBProvider.GetDBClient()
	if err != nil {
		logger.Error("Failed to get database client", log.Error(err))
		return model.StatusDown
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := dbClient.Ping(ctx); err != nil {
		logger.Error("Database ping failed", log.Error(err))
		return model.StatusDown
	}
	if _, err := dbClient.Query(ctx, queryIdentityDBTable); err != nil {
		logger.Error("Failed to execute query", log.Error(err))
		return model.StatusDown
	}
	return model.StatusUp
}

func (hcs *HealthCheckService) checkCacheStatus(ctx context.Context) model.Status {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := hcs.Redis.Ping(ctx).Err(); err != nil {
		log.GetLogger().Error("Redis ping failed", log.String(log.LoggerKeyComponentName, "HealthCheckService"),
			log.Error(err))
		return model.StatusDown
	}
	return model.StatusUp
}
