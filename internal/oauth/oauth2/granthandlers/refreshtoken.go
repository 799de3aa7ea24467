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
	"errors"
	"fmt"

	clientmodel "github.com/algafood/authserver/internal/client/model"
	approvalmodel "github.com/algafood/authserver/internal/oauth/oauth2/approval/model"
	approvalstore "github.com/algafood/authserver/internal/oauth/oauth2/approval/store"
	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/model"
	"github.com/algafood/authserver/internal/system/jwt"
	"github.com/algafood/authserver/internal/system/log"
	"github.com/algafood/authserver/internal/system/metrics"
	"github.com/algafood/authserver/internal/system/utils"
	userconst "github.com/algafood/authserver/internal/user/constants"
	usermodel "github.com/algafood/authserver/internal/user/model"
	userstore "github.com/algafood/authserver/internal/user/store"
)

// refreshTokenGrantHandler handles the refresh token grant type.
type refreshTokenGrantHandler struct {
	codec     jwt.TokenCodecInterface
	approvals approvalstore.ApprovalStoreInterface
	userStore userstore.UserStoreInterface
	issuer    *tokenIssuer
	reuse     bool
	metrics   *metrics.Metrics
}

func newRefreshTokenGrantHandler(codec jwt.TokenCodecInterface, approvals approvalstore.ApprovalStoreInterface,
	userStore userstore.UserStoreInterface, issuer *tokenIssuer, reuse bool, m *metrics.Metrics) GrantHandlerInterface {
	return &refreshTokenGrantHandler{
		codec:     codec,
		approvals: approvals,
		userStore: userStore,
		issuer:    issuer,
		reuse:     reuse,
		metrics:   m,
	}
}

// ValidateGrant validates the refresh token grant request.
func (h *refreshTokenGrantHandler) ValidateGrant(tokenRequest *model.TokenRequest,
	client *clientmodel.Client) *model.ErrorResponse {
	if tokenRequest.GrantType != constants.GrantTypeRefreshToken {
		return model.NewErrorResponse(constants.ErrorUnsupportedGrantType, "Unsupported grant type",
			constants.ErrUnsupportedGrantType)
	}
	if tokenRequest.RefreshToken == "" {
		return model.NewErrorResponse(constants.ErrorInvalidRequest, "Refresh token is required", nil)
	}
	return nil
}

// HandleGrant exchanges a refresh token. Without reuse the presented token is rotated out and a
// new one is issued; the store's compare-and-swap makes sure only one exchange of a token wins.
func (h *refreshTokenGrantHandler) HandleGrant(ctx context.Context, tokenRequest *model.TokenRequest,
	client *clientmodel.Client) (*model.TokenResponseDTO, *model.ErrorResponse) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "RefreshTokenGrantHandler"))

	dto, err := h.exchange(ctx, tokenRequest, client)
	if err != nil {
		errResp := ErrorResponseFor(err)
		if errResp.Error == constants.ErrorServerError {
			logger.Error("Failed to exchange refresh token", log.String(log.LoggerKeyClientID, client.ClientID),
				log.Error(err))
			h.metrics.ObserveRefreshExchange(metrics.ResultError)
		} else {
			logger.Debug("Refresh token rejected", log.String(log.LoggerKeyClientID, client.ClientID),
				log.Error(err))
			h.metrics.ObserveRefreshExchange(metrics.ResultDenied)
		}
		return nil, errResp
	}

	h.metrics.ObserveRefreshExchange(metrics.ResultSuccess)
	return dto, nil
}

func (h *refreshTokenGrantHandler) exchange(ctx context.Context, tokenRequest *model.TokenRequest,
	client *clientmodel.Client) (*model.TokenResponseDTO, error) {
	presented, err := h.codec.Decode(tokenRequest.RefreshToken)
	if err != nil {
		return nil, err
	}
	if presented.Use != model.TokenUseRefresh {
		return nil, fmt.Errorf("%w: not a refresh token", constants.ErrRefreshTokenInvalidOrReused)
	}
	if presented.ClientID != client.ClientID {
		return nil, constants.ErrClientMismatch
	}

	entry, err := h.approvals.Get(ctx, presented.ID)
	if err != nil {
		if errors.Is(err, approvalstore.ErrApprovalNotFound) {
			return nil, fmt.Errorf("%w: no approval", constants.ErrRefreshTokenInvalidOrReused)
		}
		return nil, err
	}
	if entry.Status != approvalmodel.ApprovalStatusActive {
		return nil, fmt.Errorf("%w: approval is %s", constants.ErrRefreshTokenInvalidOrReused, entry.Status)
	}
	if entry.ClientID != client.ClientID {
		return nil, constants.ErrClientMismatch
	}

	scopes := entry.Scopes
	if requested := utils.ParseScopes(tokenRequest.Scope); len(requested) > 0 {
		if !utils.ContainsAll(entry.Scopes, requested) {
			return nil, fmt.Errorf("%w: scope exceeds the original grant", constants.ErrScopeNotAllowed)
		}
		scopes = requested
	}

	identity, err := h.loadIdentity(ctx, entry.Username)
	if err != nil {
		return nil, err
	}

	params := issueParams{
		client:        client,
		grantType:     entry.GrantType,
		scopes:        scopes,
		identity:      identity,
		refreshScopes: entry.Scopes,
	}

	var (
		dto  *model.TokenResponseDTO
		next approvalmodel.ApprovalEntry
	)
	if h.reuse {
		access, err := h.issuer.mintAccess(params)
		if err != nil {
			return nil, err
		}
		dto = &model.TokenResponseDTO{
			AccessToken:  access,
			RefreshToken: &model.IssuedToken{Token: tokenRequest.RefreshToken, Record: *presented},
		}
		next = entry.Clone()
		next.AccessTokenID = access.Record.ID
	} else {
		params.withRefresh = true
		minted, nextEntry, err := h.issuer.mint(params)
		if err != nil {
			return nil, err
		}
		dto = minted
		next = *nextEntry
	}

	if err := h.approvals.RotateRefreshToken(ctx, presented.ID, next); err != nil {
		return nil, err
	}
	return dto, nil
}

func (h *refreshTokenGrantHandler) loadIdentity(ctx context.Context, username string) (*usermodel.UserIdentity, error) {
	if username == "" {
		return nil, nil
	}
	identity, err := h.userStore.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userconst.ErrUserNotFound) {
			return nil, constants.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return identity, nil
}
