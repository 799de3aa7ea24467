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

	authzconst "github.com/algafood/authserver/internal/oauth/oauth2/authz/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/authz/model"
	oauth2const "github.com/algafood/authserver/internal/oauth/oauth2/constants"
)

type memoryEntry struct {
	mu   sync.Mutex
	code model.AuthorizationCode
}

// MemoryAuthorizationCodeStore keeps codes in process memory. Each entry has its own mutex so
// concurrent redemptions of one code serialize while different codes proceed in parallel.
type MemoryAuthorizationCodeStore struct {
	cache     *gocache.Cache
	retention time.Duration
	now       func() time.Time
}

// NewMemoryAuthorizationCodeStore creates an in-memory store. Entries are purged by go-cache
// once expired and the reuse retention window has passed.
func NewMemoryAuthorizationCodeStore() *MemoryAuthorizationCodeStore {
	return &MemoryAuthorizationCodeStore{
		cache:     gocache.New(gocache.NoExpiration, time.Minute),
		retention: authzconst.ConsumedCodeRetention,
		now:       time.Now,
	}
}

// InsertAuthorizationCode stores a new code.
func (s *MemoryAuthorizationCodeStore) InsertAuthorizationCode(_ context.Context,
	code model.AuthorizationCode) error {
	entry := &memoryEntry{code: code.Clone()}
	if err := s.cache.Add(code.Code, entry, ttlFor(code, s.now(), s.retention)); err != nil {
		return ErrCodeExists
	}
	return nil
}

// ConsumeAuthorizationCode atomically validates and consumes a code.
func (s *MemoryAuthorizationCodeStore) ConsumeAuthorizationCode(ctx context.Context, code string,
	validate ValidateFunc) (*model.AuthorizationCode, error) {
	value, found := s.cache.Get(code)
	if !found {
		return nil, oauth2const.ErrAuthorizationCodeNotFound
	}
	entry := value.(*memoryEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if entry.code.State != authzconst.AuthCodeStateActive {
		return nil, oauth2const.ErrCodeAlreadyUsed
	}
	if entry.code.IsExpired(s.now()) {
		s.cache.Delete(code)
		return nil, oauth2const.ErrCodeExpired
	}

	if err := validate(entry.code.Clone()); err != nil {
		return nil, err
	}

	entry.code.State = authzconst.AuthCodeStateInactive
	consumed := entry.code.Clone()
	return &consumed, nil
}
