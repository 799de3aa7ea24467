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
	authzmodel "github.com/algafood/authserver/internal/oauth/oauth2/authz/model"
	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/model"
	"github.com/algafood/authserver/internal/oauth/oauth2/pkce"
	"github.com/algafood/authserver/internal/system/log"
	"github.com/algafood/authserver/internal/system/metrics"
	userconst "github.com/algafood/authserver/internal/user/constants"
	userstore "github.com/algafood/authserver/internal/user/store"
)

// authorizationCodeGrantHandler handles the authorization code grant with PKCE.
type authorizationCodeGrantHandler struct {
	verifier  pkce.VerifierInterface
	userStore userstore.UserStoreInterface
	issuer    *tokenIssuer
	metrics   *metrics.Metrics
}

func newAuthorizationCodeGrantHandler(verifier pkce.VerifierInterface, userStore userstore.UserStoreInterface,
	issuer *tokenIssuer, m *metrics.Metrics) GrantHandlerInterface {
	return &authorizationCodeGrantHandler{
		verifier:  verifier,
		userStore: userStore,
		issuer:    issuer,
		metrics:   m,
	}
}

// ValidateGrant validates the authorization code grant request.
func (h *authorizationCodeGrantHandler) ValidateGrant(tokenRequest *model.TokenRequest,
	client *clientmodel.Client) *model.ErrorResponse {
	if tokenRequest.GrantType != constants.GrantTypeAuthorizationCode {
		return model.NewErrorResponse(constants.ErrorUnsupportedGrantType, "Unsupported grant type",
			constants.ErrUnsupportedGrantType)
	}
	if tokenRequest.Code == "" {
		return model.NewErrorResponse(constants.ErrorInvalidRequest, "Authorization code is required", nil)
	}
	if tokenRequest.RedirectURI == "" {
		return model.NewErrorResponse(constants.ErrorInvalidRequest, "Redirect URI is required", nil)
	}
	if tokenRequest.CodeVerifier == "" {
		return model.NewErrorResponse(constants.ErrorInvalidRequest, "Code verifier is required", nil)
	}
	return nil
}

// HandleGrant redeems the code. Tokens are minted and the approval saved inside the redemption,
// so the code is consumed only when everything succeeded.
func (h *authorizationCodeGrantHandler) HandleGrant(ctx context.Context, tokenRequest *model.TokenRequest,
	client *clientmodel.Client) (*model.TokenResponseDTO, *model.ErrorResponse) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "AuthorizationCodeGrantHandler"))

	var dto *model.TokenResponseDTO
	_, err := h.verifier.Verify(ctx, tokenRequest.Code, tokenRequest.CodeVerifier,
		func(code authzmodel.AuthorizationCode) error {
			if code.ClientID != client.ClientID {
				return constants.ErrClientMismatch
			}
			if code.RedirectURI != tokenRequest.RedirectURI {
				return constants.ErrRedirectURIMismatch
			}

			identity, err := h.userStore.FindByUsername(ctx, code.Username)
			if err != nil {
				if errors.Is(err, userconst.ErrUserNotFound) {
					return constants.ErrInvalidCredentials
				}
				return fmt.Errorf("failed to load user: %w", err)
			}

			issued, err := h.issuer.issue(ctx, issueParams{
				client:      client,
				grantType:   constants.GrantTypeAuthorizationCode,
				scopes:      code.Scopes,
				identity:    identity,
				withRefresh: client.IsAllowedGrantType(constants.GrantTypeRefreshToken),
			})
			if err != nil {
				return err
			}
			dto = issued
			return nil
		})
	if err != nil {
		if dto != nil {
			// Tokens were issued but the code could not be marked as used.
			h.withdraw(ctx, logger, dto)
		}
		errResp := ErrorResponseFor(err)
		if errResp.Error == constants.ErrorServerError {
			logger.Error("Failed to redeem authorization code", log.String(log.LoggerKeyClientID, client.ClientID),
				log.Error(err))
			h.metrics.ObserveCodeRedemption(metrics.ResultError)
		} else {
			logger.Debug("Authorization code rejected", log.String(log.LoggerKeyClientID, client.ClientID),
				log.Error(err))
			h.metrics.ObserveCodeRedemption(metrics.ResultDenied)
		}
		return nil, errResp
	}

	h.metrics.ObserveCodeRedemption(metrics.ResultSuccess)
	return dto, nil
}

// withdraw revokes the approval saved for tokens that will never be delivered.
func (h *authorizationCodeGrantHandler) withdraw(ctx context.Context, logger *log.Logger,
	dto *model.TokenResponseDTO) {
	if dto.RefreshToken == nil {
		return
	}
	if err := h.issuer.approvals.Revoke(context.WithoutCancel(ctx), dto.RefreshToken.Record.ID); err != nil {
		logger.Error("Failed to revoke approval of undelivered tokens",
			log.String("refreshTokenId", dto.RefreshToken.Record.ID), log.Error(err))
	}
}
