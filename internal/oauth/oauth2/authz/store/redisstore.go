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

	authzconst "github.com/algafood/authserver/internal/oauth/oauth2/authz/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/authz/model"
	oauth2const "github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/system/cache"
	"github.com/algafood/authserver/internal/system/crypto/hash"
)

const (
	redisCodeKeyPart = "authz_code"
	redisLockKeyPart = "authz_code_lock"
	redisLockTTL     = 30 * time.Second

	// defaultLockWait bounds how long a redemption waits for a concurrent one on the same code.
	defaultLockWait = 2 * time.Second
	lockPollDelay   = 20 * time.Millisecond
)

// RedisAuthorizationCodeStore keeps codes in Redis so several server instances share them.
// Keys are derived from the SHA-256 of the code so raw codes never reach the cache.
//
// A short lived lock key keeps a second redeemer from running validate while the first one is
// in flight; the second one waits for the lock, and the final state change runs in a WATCH
// transaction.
type RedisAuthorizationCodeStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
	lockWait  time.Duration
	now       func() time.Time
}

// NewRedisAuthorizationCodeStore creates a Redis backed store using the given key prefix.
func NewRedisAuthorizationCodeStore(client redis.UniversalClient, prefix string) *RedisAuthorizationCodeStore {
	return &RedisAuthorizationCodeStore{
		client:    client,
		prefix:    prefix,
		retention: authzconst.ConsumedCodeRetention,
		lockWait:  defaultLockWait,
		now:       time.Now,
	}
}

func (s *RedisAuthorizationCodeStore) codeKey(code string) string {
	return cache.Key(s.prefix, redisCodeKeyPart, hash.HashString(code))
}

func (s *RedisAuthorizationCodeStore) lockKey(code string) string {
	return cache.Key(s.prefix, redisLockKeyPart, hash.HashString(code))
}

// InsertAuthorizationCode stores a new code.
func (s *RedisAuthorizationCodeStore) InsertAuthorizationCode(ctx context.Context,
	code model.AuthorizationCode) error {
	data, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("failed to encode authorization code: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.codeKey(code.Code), data, ttlFor(code, s.now(), s.retention)).Result()
	if err != nil {
		return fmt.Errorf("failed to store authorization code: %w", err)
	}
	if !ok {
		return ErrCodeExists
	}
	return nil
}

// ConsumeAuthorizationCode atomically validates and consumes a code.
func (s *RedisAuthorizationCodeStore) ConsumeAuthorizationCode(ctx context.Context, code string,
	validate ValidateFunc) (*model.AuthorizationCode, error) {
	lockKey := s.lockKey(code)
	if err := s.acquireLock(ctx, lockKey); err != nil {
		return nil, err
	}
	defer s.client.Del(context.WithoutCancel(ctx), lockKey)

	key := s.codeKey(code)
	var consumed *model.AuthorizationCode

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return oauth2const.ErrAuthorizationCodeNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read authorization code: %w", err)
		}

		var stored model.AuthorizationCode
		if err := json.Unmarshal(raw, &stored); err != nil {
			return fmt.Errorf("failed to decode authorization code: %w", err)
		}

		if stored.State != authzconst.AuthCodeStateActive {
			return oauth2const.ErrCodeAlreadyUsed
		}
		if stored.IsExpired(s.now()) {
			if err := tx.Del(ctx, key).Err(); err != nil {
				return fmt.Errorf("failed to purge expired authorization code: %w", err)
			}
			return oauth2const.ErrCodeExpired
		}

		if err := validate(stored.Clone()); err != nil {
			return err
		}

		stored.State = authzconst.AuthCodeStateInactive
		data, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("failed to encode authorization code: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}
		consumed = &stored
		return nil
	}

	if err := s.client.Watch(ctx, txf, key); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, fmt.Errorf("%w: code changed during redemption", oauth2const.ErrCodeAlreadyUsed)
		}
		return nil, err
	}
	return consumed, nil
}

// acquireLock takes the per-code lock, polling while another redemption holds it. Once lockWait
// has passed it gives up with ErrCodeRedemptionBusy and the code is left as it was.
func (s *RedisAuthorizationCodeStore) acquireLock(ctx context.Context, lockKey string) error {
	deadline := time.Now().Add(s.lockWait)
	for {
		locked, err := s.client.SetNX(ctx, lockKey, "1", redisLockTTL).Result()
		if err != nil {
			return fmt.Errorf("failed to lock authorization code: %w", err)
		}
		if locked {
			return nil
		}
		if !time.Now().Before(deadline) {
			return oauth2const.ErrCodeRedemptionBusy
		}

		timer := time.NewTimer(lockPollDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
