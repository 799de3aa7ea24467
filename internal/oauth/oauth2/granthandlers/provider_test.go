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

package granthandlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	clientmodel "github.com/algafood/authserver/internal/client/model"
	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/model"
)

type GrantHandlerProviderTestSuite struct {
	suite.Suite
	fixture *grantFixture
}

func TestGrantHandlerProviderSuite(t *testing.T) {
	suite.Run(t, new(GrantHandlerProviderTestSuite))
}

func (suite *GrantHandlerProviderTestSuite) SetupTest() {
	suite.fixture = newGrantFixture(suite.T(), false)
}

func (suite *GrantHandlerProviderTestSuite) TestDefaultHandlers() {
	for _, grantType := range []string{
		constants.GrantTypePassword,
		constants.GrantTypeClientCredentials,
		constants.GrantTypeAuthorizationCode,
		constants.GrantTypeRefreshToken,
	} {
		suite.T().Run(grantType, func(t *testing.T) {
			handler, err := suite.fixture.provider.GetGrantHandler(grantType)

			assert.NoError(t, err)
			assert.Implements(t, (*GrantHandlerInterface)(nil), handler)
		})
	}
}

func (suite *GrantHandlerProviderTestSuite) TestUnsupportedGrantType() {
	for _, grantType := range []string{"implicit", "urn:ietf:params:oauth:grant-type:device_code", ""} {
		handler, err := suite.fixture.provider.GetGrantHandler(grantType)

		assert.Nil(suite.T(), handler)
		assert.ErrorIs(suite.T(), err, constants.ErrUnsupportedGrantType)
	}
}

type staticGrantHandler struct{}

func (staticGrantHandler) ValidateGrant(*model.TokenRequest, *clientmodel.Client) *model.ErrorResponse {
	return nil
}

func (staticGrantHandler) HandleGrant(context.Context, *model.TokenRequest,
	*clientmodel.Client) (*model.TokenResponseDTO, *model.ErrorResponse) {
	return &model.TokenResponseDTO{AccessToken: model.IssuedToken{Token: "static"}}, nil
}

func (suite *GrantHandlerProviderTestSuite) TestRegisterGrantHandler() {
	provider := NewGrantHandlerProvider()
	provider.RegisterGrantHandler("urn:example:static", staticGrantHandler{})

	handler, err := provider.GetGrantHandler("urn:example:static")
	suite.Require().NoError(err)

	dto, errResp := handler.HandleGrant(context.Background(), &model.TokenRequest{}, &clientmodel.Client{})
	assert.Nil(suite.T(), errResp)
	assert.Equal(suite.T(), "static", dto.AccessToken.Token)
}
