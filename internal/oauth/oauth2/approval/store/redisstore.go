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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/algafood/authserver/internal/oauth/oauth2/approval/model"
	oauth2const "github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/system/cache"
	"github.com/algafood/authserver/internal/system/crypto/hash"
)

const (
	redisApprovalKeyPart = "approval"
	maxRevokeChain       = 64
)

// RedisApprovalStore keeps approvals in Redis. Rotation watches the old entry so a concurrent
// rotation of the same refresh token aborts the slower transaction.
type RedisApprovalStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisApprovalStore creates a Redis backed approval store using the given key prefix.
func NewRedisApprovalStore(client redis.UniversalClient, prefix string) *RedisApprovalStore {
	return &RedisApprovalStore{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *RedisApprovalStore) key(refreshTokenID string) string {
	return cache.Key(s.prefix, redisApprovalKeyPart, hash.HashString(refreshTokenID))
}

// Save stores a new entry.
func (s *RedisApprovalStore) Save(ctx context.Context, entry model.ApprovalEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode approval entry: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.key(entry.RefreshTokenID), data, ttlFor(entry, s.now())).Result()
	if err != nil {
		return fmt.Errorf("failed to store approval entry: %w", err)
	}
	if !ok {
		return ErrApprovalExists
	}
	return nil
}

// Get returns the entry.
func (s *RedisApprovalStore) Get(ctx context.Context, refreshTokenID string) (*model.ApprovalEntry, error) {
	return s.read(ctx, s.client, s.key(refreshTokenID))
}

func (s *RedisApprovalStore) read(ctx context.Context, c redis.Cmdable, key string) (*model.ApprovalEntry, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrApprovalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read approval entry: %w", err)
	}
	var entry model.ApprovalEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode approval entry: %w", err)
	}
	return &entry, nil
}

// RotateRefreshToken replaces the active entry with next.
func (s *RedisApprovalStore) RotateRefreshToken(ctx context.Context, oldRefreshTokenID string,
	next model.ApprovalEntry) error {
	oldKey := s.key(oldRefreshTokenID)
	nextKey := s.key(next.RefreshTokenID)
	next.Status = model.ApprovalStatusActive

	txf := func(tx *redis.Tx) error {
		old, err := s.read(ctx, tx, oldKey)
		if errors.Is(err, ErrApprovalNotFound) {
			return oauth2const.ErrRefreshTokenInvalidOrReused
		}
		if err != nil {
			return err
		}
		now := s.now()
		if !old.IsActive(now) {
			return oauth2const.ErrRefreshTokenInvalidOrReused
		}

		nextData, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to encode approval entry: %w", err)
		}

		if next.RefreshTokenID == oldRefreshTokenID {
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, oldKey, nextData, ttlFor(next, now))
				return nil
			})
			return err
		}

		old.Status = model.ApprovalStatusUsed
		old.ReplacedBy = next.RefreshTokenID
		oldData, err := json.Marshal(old)
		if err != nil {
			return fmt.Errorf("failed to encode approval entry: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, oldKey, oldData, redis.KeepTTL)
			pipe.Set(ctx, nextKey, nextData, ttlFor(next, now))
			return nil
		})
		return err
	}

	if err := s.client.Watch(ctx, txf, oldKey); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return oauth2const.ErrRefreshTokenInvalidOrReused
		}
		return err
	}
	return nil
}

// Revoke marks the entry and its successors as revoked.
func (s *RedisApprovalStore) Revoke(ctx context.Context, refreshTokenID string) error {
	id := refreshTokenID
	for i := 0; id != "" && i < maxRevokeChain; i++ {
		key := s.key(id)
		var successor string
		txf := func(tx *redis.Tx) error {
			entry, err := s.read(ctx, tx, key)
			if err != nil {
				return err
			}
			successor = entry.ReplacedBy
			entry.Status = model.ApprovalStatusRevoked
			data, err := json.Marshal(entry)
			if err != nil {
				return fmt.Errorf("failed to encode approval entry: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, redis.KeepTTL)
				return nil
			})
			return err
		}

		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, ErrApprovalNotFound) {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// A concurrent rotation changed the entry; read it again.
			continue
		}
		if err != nil {
			return err
		}
		id = successor
	}
	return nil
}
