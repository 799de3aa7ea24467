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

package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/algafood/authserver/internal/client/model"
	oauth2const "github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/system/config"
)

type ClientRegistryTestSuite struct {
	suite.Suite
	registry *ClientRegistry
}

func TestClientRegistrySuite(t *testing.T) {
	suite.Run(t, new(ClientRegistryTestSuite))
}

func (suite *ClientRegistryTestSuite) SetupTest() {
	var err error
	suite.registry, err = NewClientRegistry(config.OAuthConfig{
		Clients: []config.ClientConfig{
			{
				ClientID:             "algafood-web",
				ClientSecret:         "$2a$10$hash",
				GrantTypes:           []string{"password", "refresh_token"},
				Scopes:               []string{"READ", "WRITE"},
				AccessTokenValidity:  21600,
				RefreshTokenValidity: 5184000,
			},
			{
				ClientID:     "foodanalytics",
				ClientSecret: "$2a$10$hash",
				GrantTypes:   []string{"authorization_code"},
				Scopes:       []string{"READ", "WRITE"},
				RedirectURIs: []string{"http://www.foodanalytics.local:8082"},
			},
		},
	})
	suite.Require().NoError(err)
}

func (suite *ClientRegistryTestSuite) TestGetClient() {
	c, err := suite.registry.GetClient("algafood-web")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 6*time.Hour, c.AccessTokenValidity)
	assert.Equal(suite.T(), 60*24*time.Hour, c.RefreshTokenValidity)
}

func (suite *ClientRegistryTestSuite) TestDefaultValidities() {
	c, err := suite.registry.GetClient("foodanalytics")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 12*time.Hour, c.AccessTokenValidity)
	assert.Equal(suite.T(), 30*24*time.Hour, c.RefreshTokenValidity)
}

func (suite *ClientRegistryTestSuite) TestGlobalValidityOverridesDefault() {
	registry, err := NewClientRegistry(config.OAuthConfig{
		AccessToken: config.AccessTokenConfig{ValidityPeriod: 3600},
		Clients: []config.ClientConfig{{
			ClientID: "aplicacao-backend", ClientSecret: "$2a$10$hash",
			GrantTypes: []string{"client_credentials"}, Scopes: []string{"READ"},
		}},
	})
	suite.Require().NoError(err)

	c, err := registry.GetClient("aplicacao-backend")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), time.Hour, c.AccessTokenValidity)
}

func (suite *ClientRegistryTestSuite) TestUnknownClient() {
	c, err := suite.registry.GetClient("unknown")

	assert.ErrorIs(suite.T(), err, oauth2const.ErrUnknownClient)
	assert.Nil(suite.T(), c)
}

func (suite *ClientRegistryTestSuite) TestValidateGrantType() {
	c, _ := suite.registry.GetClient("algafood-web")

	assert.NoError(suite.T(), suite.registry.ValidateGrantType(c, "password"))
	assert.ErrorIs(suite.T(), suite.registry.ValidateGrantType(c, "client_credentials"),
		oauth2const.ErrGrantNotAllowed)
}

func (suite *ClientRegistryTestSuite) TestResolveScopes() {
	c, _ := suite.registry.GetClient("algafood-web")

	scopes, err := suite.registry.ResolveScopes(c, nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"READ", "WRITE"}, scopes)

	scopes[0] = "MUTATED"
	assert.Equal(suite.T(), "READ", c.Scopes[0])

	scopes, err = suite.registry.ResolveScopes(c, []string{"READ"})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"READ"}, scopes)

	_, err = suite.registry.ResolveScopes(c, []string{"READ", "ADMIN"})
	assert.ErrorIs(suite.T(), err, oauth2const.ErrScopeNotAllowed)
}

func (suite *ClientRegistryTestSuite) TestValidateRedirectURI() {
	c, _ := suite.registry.GetClient("foodanalytics")

	assert.NoError(suite.T(), suite.registry.ValidateRedirectURI(c, "http://www.foodanalytics.local:8082"))
	assert.ErrorIs(suite.T(), suite.registry.ValidateRedirectURI(c, "http://www.foodanalytics.local:8082/"),
		oauth2const.ErrRedirectURIMismatch)
	assert.ErrorIs(suite.T(), suite.registry.ValidateRedirectURI(c, ""), oauth2const.ErrRedirectURIMismatch)
}

func (suite *ClientRegistryTestSuite) TestInvalidRegistrations() {
	testCases := []struct {
		name   string
		client config.ClientConfig
	}{
		{"EmptyClientID", config.ClientConfig{ClientSecret: "x", GrantTypes: []string{"password"}}},
		{"NoSecret", config.ClientConfig{ClientID: "a", GrantTypes: []string{"password"}}},
		{"NoGrantTypes", config.ClientConfig{ClientID: "a", ClientSecret: "x"}},
		{"UnsupportedGrant", config.ClientConfig{ClientID: "a", ClientSecret: "x", GrantTypes: []string{"implicit"}}},
		{"AuthCodeWithoutRedirect", config.ClientConfig{ClientID: "a", ClientSecret: "x",
			GrantTypes: []string{"authorization_code"}}},
		{"RelativeRedirect", config.ClientConfig{ClientID: "a", ClientSecret: "x",
			GrantTypes: []string{"authorization_code"}, RedirectURIs: []string{"/callback"}}},
		{"FragmentRedirect", config.ClientConfig{ClientID: "a", ClientSecret: "x",
			GrantTypes: []string{"authorization_code"}, RedirectURIs: []string{"https://app.local/cb#frag"}}},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			_, err := NewClientRegistry(config.OAuthConfig{Clients: []config.ClientConfig{tc.client}})
			assert.Error(t, err)
		})
	}
}

func (suite *ClientRegistryTestSuite) TestDuplicateClientID() {
	c := config.ClientConfig{ClientID: "a", ClientSecret: "x", GrantTypes: []string{"password"}}

	_, err := NewClientRegistry(config.OAuthConfig{Clients: []config.ClientConfig{c, c}})
	assert.ErrorContains(suite.T(), err, "duplicate client id")
}

func (suite *ClientRegistryTestSuite) TestNewClientRegistryFromClients() {
	registry, err := NewClientRegistryFromClients(&model.Client{
		ClientID:             "mobile-app",
		HashedClientSecret:   "$2a$10$hash",
		GrantTypes:           []model.GrantType{model.GrantTypePassword},
		Scopes:               []string{"READ"},
		AccessTokenValidity:  time.Hour,
		RefreshTokenValidity: 24 * time.Hour,
	})
	suite.Require().NoError(err)

	c, err := registry.GetClient("mobile-app")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), c.IsAllowedGrantType("password"))
	assert.False(suite.T(), c.IsAllowedGrantType("refresh_token"))
}
