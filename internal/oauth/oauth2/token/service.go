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

// Package token provides the OAuth 2.0 token and revocation endpoints.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/algafood/authserver/internal/authn/credentials"
	"github.com/algafood/authserver/internal/client"
	clientmodel "github.com/algafood/authserver/internal/client/model"
	approvalstore "github.com/algafood/authserver/internal/oauth/oauth2/approval/store"
	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/granthandlers"
	"github.com/algafood/authserver/internal/oauth/oauth2/model"
	"github.com/algafood/authserver/internal/system/jwt"
	"github.com/algafood/authserver/internal/system/log"
	"github.com/algafood/authserver/internal/system/metrics"
	"github.com/algafood/authserver/internal/system/tracing"
	"github.com/algafood/authserver/internal/system/utils"
)

// TokenServiceInterface issues and revokes tokens on behalf of authenticated clients.
type TokenServiceInterface interface {
	AuthenticateClient(clientID, clientSecret string) (*clientmodel.Client, *model.ErrorResponse)
	IssueToken(ctx context.Context, tokenRequest *model.TokenRequest) (*model.TokenResponse, *model.ErrorResponse)
	RevokeToken(ctx context.Context, client *clientmodel.Client, token, tokenTypeHint string) *model.ErrorResponse
}

// TokenService authenticates the client, checks the grant against its registration and hands the
// request to the grant handler for its grant type.
type TokenService struct {
	registry    client.ClientRegistryInterface
	credentials credentials.CredentialVerifierInterface
	handlers    granthandlers.GrantHandlerProviderInterface
	codec       jwt.TokenCodecInterface
	approvals   approvalstore.ApprovalStoreInterface
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewTokenService creates a token service.
func NewTokenService(registry client.ClientRegistryInterface, verifier credentials.CredentialVerifierInterface,
	handlers granthandlers.GrantHandlerProviderInterface, codec jwt.TokenCodecInterface,
	approvals approvalstore.ApprovalStoreInterface, m *metrics.Metrics) *TokenService {
	return &TokenService{
		registry:    registry,
		credentials: verifier,
		handlers:    handlers,
		codec:       codec,
		approvals:   approvals,
		metrics:     m,
		now:         time.Now,
	}
}

// AuthenticateClient checks the client secret. Unknown clients and wrong secrets are reported the
// same way.
func (s *TokenService) AuthenticateClient(clientID, clientSecret string) (*clientmodel.Client, *model.ErrorResponse) {
	if clientID == "" {
		return nil, model.NewErrorResponse(constants.ErrorInvalidClient, "Client authentication failed",
			constants.ErrUnknownClient)
	}
	c, err := s.registry.GetClient(clientID)
	if err != nil {
		s.credentials.VerifyClientSecret(nil, clientSecret)
		return nil, model.NewErrorResponse(constants.ErrorInvalidClient, "Client authentication failed", err)
	}
	if !s.credentials.VerifyClientSecret(c, clientSecret) {
		return nil, model.NewErrorResponse(constants.ErrorInvalidClient, "Client authentication failed",
			constants.ErrInvalidCredentials)
	}
	return c, nil
}

// IssueToken runs a token request end to end.
func (s *TokenService) IssueToken(ctx context.Context,
	tokenRequest *model.TokenRequest) (*model.TokenResponse, *model.ErrorResponse) {
	start := s.now()
	ctx, span := tracing.Tracer().Start(ctx, "oauth2.token")
	defer span.End()
	tracing.AddGrantAttributes(span, tokenRequest.ClientID, tokenRequest.GrantType)

	resp, errResp := s.issue(ctx, tokenRequest)
	if errResp != nil {
		tracing.SetSpanError(span, errResp.Error)
		result := metrics.ResultDenied
		if errResp.Error == constants.ErrorServerError {
			result = metrics.ResultError
			tracing.RecordError(span, errResp.Reason)
		}
		s.metrics.ObserveTokenRequest(tokenRequest.GrantType, result, errResp.Error, s.now().Sub(start))
		return nil, errResp
	}

	tracing.SetSpanSuccess(span)
	s.metrics.ObserveTokenRequest(tokenRequest.GrantType, metrics.ResultSuccess, "", s.now().Sub(start))
	return resp, nil
}

func (s *TokenService) issue(ctx context.Context,
	tokenRequest *model.TokenRequest) (*model.TokenResponse, *model.ErrorResponse) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "TokenService"))

	c, errResp := s.AuthenticateClient(tokenRequest.ClientID, tokenRequest.ClientSecret)
	if errResp != nil {
		logger.Debug("Client authentication failed", log.String(log.LoggerKeyClientID, tokenRequest.ClientID))
		return nil, errResp
	}

	handler, err := s.handlers.GetGrantHandler(tokenRequest.GrantType)
	if err != nil {
		return nil, granthandlers.ErrorResponseFor(err)
	}
	if err := s.registry.ValidateGrantType(c, tokenRequest.GrantType); err != nil {
		return nil, granthandlers.ErrorResponseFor(err)
	}
	if errResp := handler.ValidateGrant(tokenRequest, c); errResp != nil {
		return nil, errResp
	}
	if requested := utils.ParseScopes(tokenRequest.Scope); len(requested) > 0 {
		if _, err := s.registry.ResolveScopes(c, requested); err != nil {
			return nil, granthandlers.ErrorResponseFor(err)
		}
	}

	dto, errResp := handler.HandleGrant(ctx, tokenRequest, c)
	if errResp != nil {
		return nil, errResp
	}

	logger.Info("Token issued", log.String(log.LoggerKeyClientID, c.ClientID),
		log.String(log.LoggerKeyGrantType, tokenRequest.GrantType))
	return s.buildTokenResponse(dto), nil
}

func (s *TokenService) buildTokenResponse(dto *model.TokenResponseDTO) *model.TokenResponse {
	access := dto.AccessToken.Record
	resp := &model.TokenResponse{
		AccessToken:           dto.AccessToken.Token,
		TokenType:             constants.TokenTypeBearer,
		ExpiresIn:             access.ExpiresIn(s.now()),
		Scope:                 utils.JoinScopes(access.Scopes),
		JTI:                   access.ID,
		AdditionalInformation: utils.DeepCopyMap(access.AdditionalClaims),
	}
	if dto.RefreshToken != nil {
		resp.RefreshToken = dto.RefreshToken.Token
	}
	return resp
}

// RevokeToken revokes a refresh token and every token rotated from it. The type hint is only
// advisory. Undecodable tokens, access tokens and tokens of other clients are ignored.
func (s *TokenService) RevokeToken(ctx context.Context, c *clientmodel.Client, token,
	tokenTypeHint string) *model.ErrorResponse {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "TokenService"))

	logger.Debug("Revocation requested", log.String(log.LoggerKeyClientID, c.ClientID),
		log.String("tokenTypeHint", tokenTypeHint))

	record, err := s.codec.Decode(token)
	if err != nil {
		logger.Debug("Ignoring revocation of an undecodable token", log.Error(err))
		return nil
	}
	if record.Use != model.TokenUseRefresh || record.ClientID != c.ClientID {
		return nil
	}
	if err := s.approvals.Revoke(ctx, record.ID); err != nil && !errors.Is(err, approvalstore.ErrApprovalNotFound) {
		logger.Error("Failed to revoke refresh token", log.String(log.LoggerKeyClientID, c.ClientID), log.Error(err))
		return model.NewErrorResponse(constants.ErrorServerError, "Failed to revoke token", err)
	}
	logger.Info("Refresh token revoked", log.String(log.LoggerKeyClientID, c.ClientID))
	return nil
}
