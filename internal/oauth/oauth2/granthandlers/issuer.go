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

package granthandlers

import (
	"context"
	"fmt"
	"time"

	clientmodel "github.com/algafood/authserver/internal/client/model"
	approvalmodel "github.com/algafood/authserver/internal/oauth/oauth2/approval/model"
	approvalstore "github.com/algafood/authserver/internal/oauth/oauth2/approval/store"
	"github.com/algafood/authserver/internal/oauth/oauth2/enhancer"
	"github.com/algafood/authserver/internal/oauth/oauth2/model"
	"github.com/algafood/authserver/internal/system/jwt"
	"github.com/algafood/authserver/internal/system/utils"
	usermodel "github.com/algafood/authserver/internal/user/model"
)

// issueParams describes the tokens a grant produces.
type issueParams struct {
	client      *clientmodel.Client
	grantType   string
	scopes      []string
	identity    *usermodel.UserIdentity
	withRefresh bool

	// refreshScopes overrides the refresh token's scopes when the access token is narrowed.
	refreshScopes []string
}

// tokenIssuer builds, enhances and signs token records. It never persists anything itself
// except through issue, which saves the approval only after every token is signed.
type tokenIssuer struct {
	codec     jwt.TokenCodecInterface
	enhance   enhancer.Enhancer
	approvals approvalstore.ApprovalStoreInterface
	now       func() time.Time
}

func newTokenIssuer(codec jwt.TokenCodecInterface, enhance enhancer.Enhancer,
	approvals approvalstore.ApprovalStoreInterface) *tokenIssuer {
	if enhance == nil {
		enhance = enhancer.Chain()
	}
	return &tokenIssuer{
		codec:     codec,
		enhance:   enhance,
		approvals: approvals,
		now:       time.Now,
	}
}

// issue mints the tokens and records the approval for the refresh token, if any.
func (ti *tokenIssuer) issue(ctx context.Context, params issueParams) (*model.TokenResponseDTO, error) {
	dto, entry, err := ti.mint(params)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		if err := ti.approvals.Save(ctx, *entry); err != nil {
			return nil, fmt.Errorf("failed to save approval: %w", err)
		}
	}
	return dto, nil
}

// mint signs an access token and, when requested, a refresh token linked to it.
// The returned approval entry is not yet stored.
func (ti *tokenIssuer) mint(params issueParams) (*model.TokenResponseDTO, *approvalmodel.ApprovalEntry, error) {
	now := ti.now()
	access := ti.accessRecord(params, now)

	signedAccess, err := ti.codec.Encode(access)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	dto := &model.TokenResponseDTO{
		AccessToken: model.IssuedToken{Token: signedAccess, Record: access},
	}
	if !params.withRefresh {
		return dto, nil, nil
	}

	refresh := access.Clone()
	refresh.ID = utils.GenerateUUID()
	refresh.ExpiresAt = now.Add(params.client.RefreshTokenValidity)
	refresh.Use = model.TokenUseRefresh
	refresh.AccessTokenID = access.ID
	if params.refreshScopes != nil {
		refresh.Scopes = utils.CopyStrings(params.refreshScopes)
	}

	signedRefresh, err := ti.codec.Encode(refresh)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	dto.RefreshToken = &model.IssuedToken{Token: signedRefresh, Record: refresh}

	entry := &approvalmodel.ApprovalEntry{
		RefreshTokenID: refresh.ID,
		AccessTokenID:  access.ID,
		ClientID:       refresh.ClientID,
		Subject:        refresh.Subject,
		Username:       refresh.Username,
		Scopes:         utils.CopyStrings(refresh.Scopes),
		GrantType:      params.grantType,
		IssuedAt:       now,
		ExpiresAt:      refresh.ExpiresAt,
		Status:         approvalmodel.ApprovalStatusActive,
	}
	return dto, entry, nil
}

// mintAccess signs a new access token only.
func (ti *tokenIssuer) mintAccess(params issueParams) (model.IssuedToken, error) {
	access := ti.accessRecord(params, ti.now())
	signed, err := ti.codec.Encode(access)
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return model.IssuedToken{Token: signed, Record: access}, nil
}

func (ti *tokenIssuer) accessRecord(params issueParams, now time.Time) model.TokenRecord {
	record := model.TokenRecord{
		ID:        utils.GenerateUUID(),
		ClientID:  params.client.ClientID,
		Scopes:    utils.CopyStrings(params.scopes),
		GrantType: params.grantType,
		IssuedAt:  now,
		ExpiresAt: now.Add(params.client.AccessTokenValidity),
		Use:       model.TokenUseAccess,
	}
	if params.identity != nil {
		record.Subject = params.identity.Username()
		record.Username = params.identity.Username()
		record.Authorities = utils.CopyStrings(params.identity.Authorities)
	}
	return ti.enhance(record, params.identity)
}
