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

package introspect

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	clientmodel "github.com/algafood/authserver/internal/client/model"
	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/model"
)

func jsonInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

type stubAuthenticator map[string]string

func (a stubAuthenticator) AuthenticateClient(clientID, clientSecret string) (*clientmodel.Client,
	*model.ErrorResponse) {
	if secret, ok := a[clientID]; ok && secret == clientSecret {
		return &clientmodel.Client{ClientID: clientID}, nil
	}
	return nil, model.NewErrorResponse(constants.ErrorInvalidClient, "Client authentication failed", nil)
}

type stubIntrospectionService struct {
	response *IntrospectResponse
	err      error
	gotToken string
	gotHint  string
}

func (s *stubIntrospectionService) IntrospectToken(_ context.Context, token,
	tokenTypeHint string) (*IntrospectResponse, error) {
	s.gotToken = token
	s.gotHint = tokenTypeHint
	return s.response, s.err
}

type TokenIntrospectionHandlerTestSuite struct {
	suite.Suite
	service *stubIntrospectionService
	handler *TokenIntrospectionHandler
}

func TestTokenIntrospectionHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TokenIntrospectionHandlerTestSuite))
}

func (s *TokenIntrospectionHandlerTestSuite) SetupTest() {
	s.service = &stubIntrospectionService{}
	s.handler = NewTokenIntrospectionHandler(s.service, stubAuthenticator{"faturamento": "faturamento123"})
}

func (s *TokenIntrospectionHandlerTestSuite) introspect(form url.Values,
	configure func(r *http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, constants.OAuth2IntrospectionEndpoint,
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if configure != nil {
		configure(req)
	}
	rr := httptest.NewRecorder()
	s.handler.HandleIntrospect(rr, req)
	return rr
}

func basic(clientID, secret string) func(r *http.Request) {
	return func(r *http.Request) { r.SetBasicAuth(clientID, secret) }
}

func (s *TokenIntrospectionHandlerTestSuite) TestHandleIntrospect_Active() {
	s.service.response = &IntrospectResponse{
		Active:   true,
		ClientID: "algafood-web",
		Extra:    map[string]interface{}{"usuario_id": int64(7)},
	}

	rr := s.introspect(url.Values{"token": {"abc"}, "token_type_hint": {"access_token"}},
		basic("faturamento", "faturamento123"))

	s.Equal(http.StatusOK, rr.Code)
	s.Equal("abc", s.service.gotToken)
	s.Equal("access_token", s.service.gotHint)
	var body map[string]interface{}
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &body))
	s.Equal(true, body["active"])
	s.Equal(float64(7), body["usuario_id"])
}

func (s *TokenIntrospectionHandlerTestSuite) TestHandleIntrospect_ClientAuthentication() {
	rr := s.introspect(url.Values{"token": {"abc"}}, basic("faturamento", "errada"))
	s.Equal(http.StatusUnauthorized, rr.Code)
	s.Equal(`Basic realm="oauth2"`, rr.Header().Get("WWW-Authenticate"))

	rr = s.introspect(url.Values{"token": {"abc"}, "client_id": {"faturamento"},
		"client_secret": {"faturamento123"}}, nil)
	s.Equal(http.StatusUnauthorized, rr.Code)
	s.Empty(s.service.gotToken)
}

func (s *TokenIntrospectionHandlerTestSuite) TestHandleIntrospect_MissingToken() {
	rr := s.introspect(url.Values{}, basic("faturamento", "faturamento123"))
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Contains(rr.Body.String(), constants.ErrorInvalidRequest)
}

func (s *TokenIntrospectionHandlerTestSuite) TestHandleIntrospect_ServerError() {
	s.service.err = errors.New("redis down")

	rr := s.introspect(url.Values{"token": {"abc"}}, basic("faturamento", "faturamento123"))
	s.Equal(http.StatusInternalServerError, rr.Code)
	s.Contains(rr.Body.String(), constants.ErrorServerError)
}
