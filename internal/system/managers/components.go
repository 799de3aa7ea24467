/*
 * Copyright (c) 2025, The Algafood Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
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

package managers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/algafood/authserver/internal/authn/credentials"
	"github.com/algafood/authserver/internal/client"
	"github.com/algafood/authserver/internal/oauth/jwks"
	approvalstore "github.com/algafood/authserver/internal/oauth/oauth2/approval/store"
	authzstore "github.com/algafood/authserver/internal/oauth/oauth2/authz/store"
	"github.com/algafood/authserver/internal/oauth/oauth2/enhancer"
	"github.com/algafood/authserver/internal/oauth/oauth2/granthandlers"
	"github.com/algafood/authserver/internal/oauth/oauth2/introspect"
	"github.com/algafood/authserver/internal/oauth/oauth2/pkce"
	"github.com/algafood/authserver/internal/oauth/oauth2/token"
	"github.com/algafood/authserver/internal/system/cache"
	"github.com/algafood/authserver/internal/system/config"
	"github.com/algafood/authserver/internal/system/crypto/hash"
	"github.com/algafood/authserver/internal/system/database/provider"
	healthservice "github.com/algafood/authserver/internal/system/healthcheck/service"
	"github.com/algafood/authserver/internal/system/jwt"
	"github.com/algafood/authserver/internal/system/log"
	"github.com/algafood/authserver/internal/system/metrics"
	userstore "github.com/algafood/authserver/internal/user/store"
)

// Components is the object graph behind the HTTP services. It is built once at startup and shared
// by every request.
type Components struct {
	Config       *config.Config
	ServerHome   string
	DBProvider   provider.DBProviderInterface
	Redis        *redis.Client
	Metrics      *metrics.Metrics
	Keys         jwt.KeyPairProviderInterface
	Codec        jwt.TokenCodecInterface
	Registry     client.ClientRegistryInterface
	Credentials  credentials.CredentialVerifierInterface
	PKCEVerifier pkce.VerifierInterface
	Approvals    approvalstore.ApprovalStoreInterface
	TokenService *token.TokenService
	Introspector introspect.TokenIntrospectionServiceInterface
	JWKS         jwks.JWKSServiceInterface
	HealthCheck  healthservice.HealthCheckServiceInterface
}

// NewComponents loads the signing keys, connects the configured stores and wires the services.
func NewComponents(ctx context.Context, serverHome string, cfg *config.Config) (*Components, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "Components"))

	keys, err := jwt.LoadKeyPairProvider(serverHome, cfg.Security.Signing)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing keys: %w", err)
	}
	return newComponents(ctx, logger, serverHome, cfg, keys)
}

// NewComponentsWithKeys is NewComponents with an already loaded key pair provider.
func NewComponentsWithKeys(ctx context.Context, serverHome string, cfg *config.Config,
	keys jwt.KeyPairProviderInterface) (*Components, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "Components"))
	return newComponents(ctx, logger, serverHome, cfg, keys)
}

func newComponents(ctx context.Context, logger *log.Logger, serverHome string, cfg *config.Config,
	keys jwt.KeyPairProviderInterface) (*Components, error) {
	codec, err := jwt.NewTokenCodec(keys, cfg.OAuth.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}

	registry, err := client.NewClientRegistry(cfg.OAuth)
	if err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}

	c := &Components{
		Config:     cfg,
		ServerHome: serverHome,
		DBProvider: provider.NewDBProvider(serverHome, cfg.Database.Identity),
		Metrics:    metrics.New(),
		Keys:       keys,
		Codec:      codec,
		Registry:   registry,
	}

	codeStore, err := c.initStores(ctx, logger)
	if err != nil {
		return nil, err
	}

	users := userstore.NewUserStore(c.DBProvider)
	c.Credentials = credentials.NewCredentialVerifier(users, hash.NewBcryptHasher(0))
	c.PKCEVerifier = pkce.NewVerifier(codeStore)

	handlers := granthandlers.NewDefaultGrantHandlerProvider(granthandlers.Dependencies{
		Registry:           registry,
		Credentials:        c.Credentials,
		PKCEVerifier:       c.PKCEVerifier,
		UserStore:          users,
		Codec:              codec,
		Enhancer:           enhancer.Chain(enhancer.CustomClaimsEnhancer),
		Approvals:          c.Approvals,
		ReuseRefreshTokens: cfg.OAuth.RefreshToken.Reuse,
		Metrics:            c.Metrics,
	})
	c.TokenService = token.NewTokenService(registry, c.Credentials, handlers, codec, c.Approvals, c.Metrics)
	c.Introspector = introspect.NewTokenIntrospectionService(codec, c.Approvals)
	c.JWKS = jwks.NewJWKSService(keys)
	if c.Redis != nil {
		c.HealthCheck = healthservice.NewHealthCheckService(c.DBProvider, c.Redis)
	} else {
		c.HealthCheck = healthservice.NewHealthCheckService(c.DBProvider, nil)
	}

	logger.Info("Components initialized", log.String("cacheType", cacheType(cfg.Cache)),
		log.String("signingKeyId", keys.CurrentKeyPair().KeyID),
		log.Bool("reuseRefreshTokens", cfg.OAuth.RefreshToken.Reuse))
	return c, nil
}

// initStores creates the authorization code and approval stores for the configured cache type.
func (c *Components) initStores(ctx context.Context,
	logger *log.Logger) (authzstore.AuthorizationCodeStoreInterface, error) {
	switch cacheType(c.Config.Cache) {
	case cache.TypeMemory:
		c.Approvals = approvalstore.NewMemoryApprovalStore()
		return authzstore.NewMemoryAuthorizationCodeStore(), nil
	case cache.TypeRedis:
		rdb, err := cache.NewRedisClient(ctx, c.Config.Cache.Redis)
		if err != nil {
			return nil, err
		}
		c.Redis = rdb
		prefix := c.Config.Cache.Redis.KeyPrefix
		c.Approvals = approvalstore.NewRedisApprovalStore(rdb, prefix)
		logger.Debug("Using Redis stores", log.String("address", c.Config.Cache.Redis.Address))
		return authzstore.NewRedisAuthorizationCodeStore(rdb, prefix), nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %q", c.Config.Cache.Type)
	}
}

// CodeValidity is the configured authorization code lifetime. Zero selects the default.
func (c *Components) CodeValidity() time.Duration {
	return time.Duration(c.Config.OAuth.AuthorizationCode.ValidityPeriod) * time.Second
}

// Close releases the database pool and the Redis connection.
func (c *Components) Close() error {
	var errs []error
	if err := c.DBProvider.Close(); err != nil {
		errs = append(errs, err)
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}
	return errors.Join(errs...)
}

func cacheType(cfg config.CacheConfig) string {
	if cfg.Type == "" {
		return cache.TypeMemory
	}
	return cfg.Type
}
