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

// Package model defines the registered OAuth client.
package model

import (
	"slices"
	"time"

	oauth2const "github.com/algafood/authserver/internal/oauth/oauth2/constants"
)

// GrantType is an OAuth2 grant type a client may be registered for.
type GrantType string

// Supported grant types.
const (
	GrantTypePassword          GrantType = oauth2const.GrantTypePassword
	GrantTypeRefreshToken      GrantType = oauth2const.GrantTypeRefreshToken
	GrantTypeClientCredentials GrantType = oauth2const.GrantTypeClientCredentials
	GrantTypeAuthorizationCode GrantType = oauth2const.GrantTypeAuthorizationCode
)

// IsSupported reports whether the server implements the grant type.
func (g GrantType) IsSupported() bool {
	switch g {
	case GrantTypePassword, GrantTypeRefreshToken, GrantTypeClientCredentials, GrantTypeAuthorizationCode:
		return true
	}
	return false
}

// Client is a registered OAuth client. Instances held by the registry are shared and read-only.
type Client struct {
	ClientID             string
	HashedClientSecret   string
	GrantTypes           []GrantType
	Scopes               []string
	RedirectURIs         []string
	AccessTokenValidity  time.Duration
	RefreshTokenValidity time.Duration
}

// IsAllowedGrantType checks if the provided grant type is allowed.
func (c *Client) IsAllowedGrantType(grantType string) bool {
	return slices.Contains(c.GrantTypes, GrantType(grantType))
}

// HasScope checks if the client is registered for the given scope.
func (c *Client) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// HasRedirectURI checks for an exact match against the registered redirect URIs.
func (c *Client) HasRedirectURI(redirectURI string) bool {
	return slices.Contains(c.RedirectURIs, redirectURI)
}
