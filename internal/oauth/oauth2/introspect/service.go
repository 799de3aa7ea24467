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

// Package introspect provides functionality for the OAuth2 token introspection endpoint.
package introspect

import (
	"context"
	"errors"
	"fmt"
	"time"

	approvalstore "github.com/algafood/authserver/internal/oauth/oauth2/approval/store"
	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/model"
	"github.com/algafood/authserver/internal/system/jwt"
	"github.com/algafood/authserver/internal/system/log"
	"github.com/algafood/authserver/internal/system/utils"
)

// TokenTypeRefresh is reported as token_type for refresh tokens.
const TokenTypeRefresh = "refresh_token"

// TokenIntrospectionServiceInterface defines the interface for OAuth 2.0 token introspection.
type TokenIntrospectionServiceInterface interface {
	IntrospectToken(ctx context.Context, token, tokenTypeHint string) (*IntrospectResponse, error)
}

// TokenIntrospectionService implements the TokenIntrospectionServiceInterface.
type TokenIntrospectionService struct {
	codec     jwt.TokenCodecInterface
	approvals approvalstore.ApprovalStoreInterface
	now       func() time.Time
}

// NewTokenIntrospectionService creates a new TokenIntrospectionService instance.
func NewTokenIntrospectionService(codec jwt.TokenCodecInterface,
	approvals approvalstore.ApprovalStoreInterface) *TokenIntrospectionService {
	return &TokenIntrospectionService{
		codec:     codec,
		approvals: approvals,
		now:       time.Now,
	}
}

// IntrospectToken validates and introspects the token. It only returns an error if a server error occurs.
// All other failures are treated as inactive token as defined in the RFC 7662. Refresh tokens are
// additionally checked against their approval so rotated and revoked ones are inactive.
func (s *TokenIntrospectionService) IntrospectToken(ctx context.Context, token,
	tokenTypeHint string) (*IntrospectResponse, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "TokenIntrospectionService"))

	if token == "" {
		return nil, errors.New("token is required")
	}

	record, err := s.codec.Decode(token)
	if err != nil {
		logger.Debug("Token is not valid", log.String("tokenTypeHint", tokenTypeHint), log.Error(err))
		return inactive(), nil
	}

	tokenType := constants.TokenTypeBearer
	if record.Use == model.TokenUseRefresh {
		tokenType = TokenTypeRefresh
		entry, err := s.approvals.Get(ctx, record.ID)
		if err != nil {
			if errors.Is(err, approvalstore.ErrApprovalNotFound) {
				return inactive(), nil
			}
			return nil, fmt.Errorf("failed to load refresh token approval: %w", err)
		}
		if !entry.IsActive(s.now()) {
			logger.Debug("Refresh token is no longer active", log.String("status", string(entry.Status)))
			return inactive(), nil
		}
	}

	return &IntrospectResponse{
		Active:      true,
		Scope:       utils.JoinScopes(record.Scopes),
		ClientID:    record.ClientID,
		Username:    record.Username,
		TokenType:   tokenType,
		Exp:         record.ExpiresAt.Unix(),
		Iat:         record.IssuedAt.Unix(),
		Nbf:         record.IssuedAt.Unix(),
		Sub:         record.Subject,
		Aud:         record.ClientID,
		Iss:         record.Issuer,
		Jti:         record.ID,
		Authorities: record.Authorities,
		Extra:       utils.DeepCopyMap(record.AdditionalClaims),
	}, nil
}
