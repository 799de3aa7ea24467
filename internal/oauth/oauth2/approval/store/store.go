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

// Package store persists refresh token approvals and rotates them with compare-and-swap semantics.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/algafood/authserver/internal/oauth/oauth2/approval/model"
)

// Store errors.
var (
	ErrApprovalNotFound = errors.New("approval entry not found")
	ErrApprovalExists   = errors.New("approval entry already exists")
)

// ApprovalStoreInterface stores approval entries keyed by refresh token id.
//
// RotateRefreshToken replaces an ACTIVE entry with next in one step. When next carries the same
// refresh token id the entry is updated in place (refresh token reuse); otherwise the old entry is
// marked USED and next is stored as ACTIVE. It fails with ErrRefreshTokenInvalidOrReused when the
// old entry is missing, expired or no longer ACTIVE, so at most one of several concurrent
// rotations of the same token succeeds.
//
// Revoke marks the entry and every successor reachable through ReplacedBy as REVOKED. Unknown ids
// are ignored.
type ApprovalStoreInterface interface {
	Save(ctx context.Context, entry model.ApprovalEntry) error
	Get(ctx context.Context, refreshTokenID string) (*model.ApprovalEntry, error)
	RotateRefreshToken(ctx context.Context, oldRefreshTokenID string, next model.ApprovalEntry) error
	Revoke(ctx context.Context, refreshTokenID string) error
}

// ttlFor keeps an entry until its refresh token expires.
func ttlFor(entry model.ApprovalEntry, now time.Time) time.Duration {
	ttl := entry.ExpiresAt.Sub(now)
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}
