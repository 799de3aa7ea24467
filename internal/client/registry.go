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

// Package client provides the registry of OAuth clients allowed to request tokens.
package client

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/algafood/authserver/internal/client/constants"
	"github.com/algafood/authserver/internal/client/model"
	oauth2const "github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/system/config"
	"github.com/algafood/authserver/internal/system/log"
	"github.com/algafood/authserver/internal/system/utils"
)

// ClientRegistryInterface resolves clients and checks what they are allowed to request.
type ClientRegistryInterface interface {
	GetClient(clientID string) (*model.Client, error)
	ValidateGrantType(client *model.Client, grantType string) error
	ResolveScopes(client *model.Client, requested []string) ([]string, error)
	ValidateRedirectURI(client *model.Client, redirectURI string) error
}

// ClientRegistry is an immutable, configuration backed ClientRegistryInterface.
type ClientRegistry struct {
	clients map[string]*model.Client
}

// NewClientRegistry validates the configured clients and builds the registry.
// Global validity periods in seconds apply to clients that do not set their own.
func NewClientRegistry(oauthConfig config.OAuthConfig) (*ClientRegistry, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ClientRegistry"))

	accessDefault := secondsOr(oauthConfig.AccessToken.ValidityPeriod, constants.DefaultAccessTokenValidity)
	refreshDefault := secondsOr(oauthConfig.RefreshToken.ValidityPeriod, constants.DefaultRefreshTokenValidity)

	clients := make(map[string]*model.Client, len(oauthConfig.Clients))
	for _, cc := range oauthConfig.Clients {
		c, err := buildClient(cc, accessDefault, refreshDefault)
		if err != nil {
			return nil, err
		}
		if _, exists := clients[c.ClientID]; exists {
			return nil, fmt.Errorf("duplicate client id %q", c.ClientID)
		}
		clients[c.ClientID] = c
		logger.Debug("Registered client", log.String(log.LoggerKeyClientID, c.ClientID),
			log.Any("grantTypes", c.GrantTypes))
	}

	return &ClientRegistry{clients: clients}, nil
}

// NewClientRegistryFromClients builds a registry from already constructed clients.
func NewClientRegistryFromClients(clients ...*model.Client) (*ClientRegistry, error) {
	registry := &ClientRegistry{clients: make(map[string]*model.Client, len(clients))}
	for _, c := range clients {
		if err := validateClient(c); err != nil {
			return nil, err
		}
		if _, exists := registry.clients[c.ClientID]; exists {
			return nil, fmt.Errorf("duplicate client id %q", c.ClientID)
		}
		registry.clients[c.ClientID] = c
	}
	return registry, nil
}

// GetClient returns the client registered under clientID.
func (r *ClientRegistry) GetClient(clientID string) (*model.Client, error) {
	c, ok := r.clients[clientID]
	if !ok {
		return nil, oauth2const.ErrUnknownClient
	}
	return c, nil
}

// ValidateGrantType fails with ErrGrantNotAllowed when the client is not registered for the grant.
func (r *ClientRegistry) ValidateGrantType(client *model.Client, grantType string) error {
	if !client.IsAllowedGrantType(grantType) {
		return fmt.Errorf("%w: %s", oauth2const.ErrGrantNotAllowed, grantType)
	}
	return nil
}

// ResolveScopes returns the scopes to grant. An empty request resolves to every client scope;
// otherwise each requested scope must be registered for the client.
func (r *ClientRegistry) ResolveScopes(client *model.Client, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return utils.CopyStrings(client.Scopes), nil
	}
	for _, scope := range requested {
		if !client.HasScope(scope) {
			return nil, fmt.Errorf("%w: %s", oauth2const.ErrScopeNotAllowed, scope)
		}
	}
	return utils.CopyStrings(requested), nil
}

// ValidateRedirectURI requires an exact match with a registered redirect URI.
func (r *ClientRegistry) ValidateRedirectURI(client *model.Client, redirectURI string) error {
	if redirectURI == "" || !client.HasRedirectURI(redirectURI) {
		return oauth2const.ErrRedirectURIMismatch
	}
	return nil
}

func buildClient(cc config.ClientConfig, accessDefault, refreshDefault time.Duration) (*model.Client, error) {
	grantTypes := make([]model.GrantType, 0, len(cc.GrantTypes))
	for _, g := range cc.GrantTypes {
		grantTypes = append(grantTypes, model.GrantType(g))
	}

	c := &model.Client{
		ClientID:             cc.ClientID,
		HashedClientSecret:   cc.ClientSecret,
		GrantTypes:           grantTypes,
		Scopes:               utils.CopyStrings(cc.Scopes),
		RedirectURIs:         utils.CopyStrings(cc.RedirectURIs),
		AccessTokenValidity:  secondsOr(cc.AccessTokenValidity, accessDefault),
		RefreshTokenValidity: secondsOr(cc.RefreshTokenValidity, refreshDefault),
	}
	if err := validateClient(c); err != nil {
		return nil, err
	}
	return c, nil
}

func validateClient(c *model.Client) error {
	if c.ClientID == "" {
		return errors.New("client id must not be empty")
	}
	if c.HashedClientSecret == "" {
		return fmt.Errorf("client %q has no secret", c.ClientID)
	}
	if len(c.GrantTypes) == 0 {
		return fmt.Errorf("client %q has no grant types", c.ClientID)
	}
	for _, g := range c.GrantTypes {
		if !g.IsSupported() {
			return fmt.Errorf("client %q: unsupported grant type %q", c.ClientID, g)
		}
	}
	if c.IsAllowedGrantType(oauth2const.GrantTypeAuthorizationCode) && len(c.RedirectURIs) == 0 {
		return fmt.Errorf("client %q uses authorization_code but has no redirect uri", c.ClientID)
	}
	for _, uri := range c.RedirectURIs {
		parsed, err := url.Parse(uri)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("client %q: redirect uri %q is not fully qualified", c.ClientID, uri)
		}
		if parsed.Fragment != "" {
			return fmt.Errorf("client %q: redirect uri %q must not contain a fragment", c.ClientID, uri)
		}
	}
	if c.AccessTokenValidity <= 0 || c.RefreshTokenValidity <= 0 {
		return fmt.Errorf("client %q: token validity must be positive", c.ClientID)
	}
	return nil
}

func secondsOr(seconds int64, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
