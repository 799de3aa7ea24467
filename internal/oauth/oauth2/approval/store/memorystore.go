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

package store

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/algafood/authserver/internal/oauth/oauth2/approval/model"
	oauth2const "github.com/algafood/authserver/internal/oauth/oauth2/constants"
)

// MemoryApprovalStore keeps approvals in process memory. A rotation touches two entries, so all
// writes go through one mutex.
type MemoryApprovalStore struct {
	mu    sync.Mutex
	cache *gocache.Cache
	now   func() time.Time
}

// NewMemoryApprovalStore creates an in-memory approval store.
func NewMemoryApprovalStore() *MemoryApprovalStore {
	return &MemoryApprovalStore{
		cache: gocache.New(gocache.NoExpiration, 5*time.Minute),
		now:   time.Now,
	}
}

// Save stores a new entry.
func (s *MemoryApprovalStore) Save(_ context.Context, entry model.ApprovalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cache.Add(entry.RefreshTokenID, entry.Clone(), ttlFor(entry, s.now())); err != nil {
		return ErrApprovalExists
	}
	return nil
}

// Get returns a copy of the entry.
func (s *MemoryApprovalStore) Get(_ context.Context, refreshTokenID string) (*model.ApprovalEntry, error) {
	value, found := s.cache.Get(refreshTokenID)
	if !found {
		return nil, ErrApprovalNotFound
	}
	entry := value.(model.ApprovalEntry).Clone()
	return &entry, nil
}

// RotateRefreshToken replaces the active entry with next.
func (s *MemoryApprovalStore) RotateRefreshToken(ctx context.Context, oldRefreshTokenID string,
	next model.ApprovalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	value, found := s.cache.Get(oldRefreshTokenID)
	if !found {
		return oauth2const.ErrRefreshTokenInvalidOrReused
	}
	old := value.(model.ApprovalEntry)
	now := s.now()
	if !old.IsActive(now) {
		return oauth2const.ErrRefreshTokenInvalidOrReused
	}

	next.Status = model.ApprovalStatusActive
	if next.RefreshTokenID == oldRefreshTokenID {
		s.cache.Set(next.RefreshTokenID, next.Clone(), ttlFor(next, now))
		return nil
	}
	if _, exists := s.cache.Get(next.RefreshTokenID); exists {
		return ErrApprovalExists
	}

	old.Status = model.ApprovalStatusUsed
	old.ReplacedBy = next.RefreshTokenID
	s.cache.Set(oldRefreshTokenID, old, ttlFor(old, now))
	s.cache.Set(next.RefreshTokenID, next.Clone(), ttlFor(next, now))
	return nil
}

// Revoke marks the entry and its successors as revoked.
func (s *MemoryApprovalStore) Revoke(_ context.Context, refreshTokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	seen := make(map[string]struct{})
	for id := refreshTokenID; id != ""; {
		if _, loop := seen[id]; loop {
			break
		}
		seen[id] = struct{}{}

		value, found := s.cache.Get(id)
		if !found {
			break
		}
		entry := value.(model.ApprovalEntry)
		entry.Status = model.ApprovalStatusRevoked
		s.cache.Set(id, entry, ttlFor(entry, now))
		id = entry.ReplacedBy
	}
	return nil
}
