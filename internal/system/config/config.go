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

// Package config provides structures and functions for loading and managing server configurations.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v3"
)

// ServerConfig holds the server configuration details.
type ServerConfig struct {
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	HTTPOnly bool   `yaml:"http_only"`
	// TrustProxyHeaders takes the client address from X-Real-IP or X-Forwarded-For. Enable it
	// only behind a reverse proxy that overwrites those headers.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`
}

// SigningKeyConfig describes one generation of token signing keys.
// Retiring generations only need the public key file.
type SigningKeyConfig struct {
	KeyID          string `yaml:"kid"`
	PrivateKeyFile string `yaml:"private_key_file"`
	PublicKeyFile  string `yaml:"public_key_file"`
}

// SigningConfig holds the token signing configuration.
type SigningConfig struct {
	Algorithm   string             `yaml:"algorithm"`
	ActiveKeyID string             `yaml:"active_kid"`
	Keys        []SigningKeyConfig `yaml:"keys"`
}

// SecurityConfig holds the security configuration details.
type SecurityConfig struct {
	CertFile string        `yaml:"cert_file"`
	KeyFile  string        `yaml:"key_file"`
	Signing  SigningConfig `yaml:"signing"`
}

// DataSource holds the individual database connection details.
type DataSource struct {
	Type            string `yaml:"type"`
	Hostname        string `yaml:"hostname"`
	Port            int    `yaml:"port"`
	Name            string `yaml:"name"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	SSLMode         string `yaml:"sslmode"`
	Path            string `yaml:"path"`
	Options         string `yaml:"options"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"`
}

// DatabaseConfig holds the different database configuration details.
type DatabaseConfig struct {
	Identity DataSource `yaml:"identity"`
}

// RedisConfig holds the Redis connection details.
type RedisConfig struct {
	Address   string `yaml:"address"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// CacheConfig selects the backing store for authorization codes and refresh token approvals.
type CacheConfig struct {
	Type  string      `yaml:"type"`
	Redis RedisConfig `yaml:"redis"`
}

// AccessTokenConfig holds the access token configuration details.
type AccessTokenConfig struct {
	ValidityPeriod int64 `yaml:"validity_period"`
}

// RefreshTokenConfig holds the refresh token configuration details.
type RefreshTokenConfig struct {
	ValidityPeriod int64 `yaml:"validity_period"`
	Reuse          bool  `yaml:"reuse"`
}

// AuthorizationCodeConfig holds the authorization code configuration details.
type AuthorizationCodeConfig struct {
	ValidityPeriod int64 `yaml:"validity_period"`
}

// ClientConfig holds the registration of a single OAuth client.
type ClientConfig struct {
	ClientID             string   `yaml:"client_id"`
	ClientSecret         string   `yaml:"client_secret"`
	GrantTypes           []string `yaml:"grant_types"`
	Scopes               []string `yaml:"scopes"`
	RedirectURIs         []string `yaml:"redirect_uris"`
	AccessTokenValidity  int64    `yaml:"access_token_validity"`
	RefreshTokenValidity int64    `yaml:"refresh_token_validity"`
}

// OAuthConfig holds the OAuth configuration details.
type OAuthConfig struct {
	Issuer            string                  `yaml:"issuer"`
	AccessToken       AccessTokenConfig       `yaml:"access_token"`
	RefreshToken      RefreshTokenConfig      `yaml:"refresh_token"`
	AuthorizationCode AuthorizationCodeConfig `yaml:"authorization_code"`
	Clients           []ClientConfig          `yaml:"clients"`
}

// RateLimitConfig holds the token endpoint rate limit configuration.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// TracingConfig holds the OpenTelemetry trace export configuration.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	Insecure     bool    `yaml:"insecure"`
	ServiceName  string  `yaml:"service_name"`
	SampleRatio  float64 `yaml:"sample_ratio"`
}

// Config holds the complete configuration details of the server.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Security  SecurityConfig  `yaml:"security"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	OAuth     OAuthConfig     `yaml:"oauth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// LoadEnv loads a .env file from the given directory into the process environment.
// A missing file is not an error; variables already set in the environment win.
func LoadEnv(dir string) error {
	envPath := filepath.Join(dir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// LoadConfig loads the configurations from the specified YAML file.
// ${VAR} references are expanded from the environment before decoding.
func LoadConfig(path string) (*Config, error) {
	path = filepath.Clean(path)

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(content))), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
