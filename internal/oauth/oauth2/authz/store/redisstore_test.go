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
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	authzconst "github.com/algafood/authserver/internal/oauth/oauth2/authz/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/authz/model"
	oauth2const "github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/system/utils"
)

// RedisLockTestSuite covers the per-code lock of the Redis store.
type RedisLockTestSuite struct {
	suite.Suite
	client *redis.Client
	store  *RedisAuthorizationCodeStore
	code   model.AuthorizationCode
}

func TestRedisLockSuite(t *testing.T) {
	addr := os.Getenv(redisAddrEnv)
	if addr == "" {
		t.Skipf("%s not set", redisAddrEnv)
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	suite.Run(t, &RedisLockTestSuite{client: client})
}

func (suite *RedisLockTestSuite) SetupTest() {
	suite.store = NewRedisAuthorizationCodeStore(suite.client, "authserver-test-"+utils.GenerateUUID())
	suite.store.lockWait = 200 * time.Millisecond

	now := time.Now()
	suite.code = model.AuthorizationCode{
		Code:                utils.GenerateUUID(),
		ClientID:            "foodanalytics",
		RedirectURI:         "http://www.foodanalytics.local:8082",
		Username:            "ana@algafood.com",
		Scopes:              []string{"READ"},
		CodeChallenge:       "challenge",
		CodeChallengeMethod: "S256",
		TimeCreated:         now,
		ExpiryTime:          now.Add(10 * time.Minute),
		State:               authzconst.AuthCodeStateActive,
	}
	suite.Require().NoError(suite.store.InsertAuthorizationCode(context.Background(), suite.code))
}

func (suite *RedisLockTestSuite) holdLock() {
	ok, err := suite.client.SetNX(context.Background(), suite.store.lockKey(suite.code.Code), "1", time.Minute).Result()
	suite.Require().NoError(err)
	suite.Require().True(ok)
}

func (suite *RedisLockTestSuite) releaseLock() {
	suite.Require().NoError(suite.client.Del(context.Background(), suite.store.lockKey(suite.code.Code)).Err())
}

func (suite *RedisLockTestSuite) TestHeldLockIsRetryableAndLeavesCodeActive() {
	suite.holdLock()

	called := false
	_, err := suite.store.ConsumeAuthorizationCode(context.Background(), suite.code.Code,
		func(model.AuthorizationCode) error {
			called = true
			return nil
		})

	assert.ErrorIs(suite.T(), err, oauth2const.ErrCodeRedemptionBusy)
	assert.NotErrorIs(suite.T(), err, oauth2const.ErrCodeAlreadyUsed)
	assert.False(suite.T(), called)

	suite.releaseLock()
	consumed, err := suite.store.ConsumeAuthorizationCode(context.Background(), suite.code.Code, accept)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), authzconst.AuthCodeStateInactive, consumed.State)
}

func (suite *RedisLockTestSuite) TestWaitsForConcurrentRedemptionToFinish() {
	suite.holdLock()
	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = suite.client.Del(context.Background(), suite.store.lockKey(suite.code.Code)).Err()
	}()

	consumed, err := suite.store.ConsumeAuthorizationCode(context.Background(), suite.code.Code, accept)

	suite.Require().NoError(err)
	assert.Equal(suite.T(), suite.code.ClientID, consumed.ClientID)
}

func (suite *RedisLockTestSuite) TestFailedRedemptionDoesNotBlockTheRightVerifier() {
	entered := make(chan struct{})
	proceed := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := suite.store.ConsumeAuthorizationCode(context.Background(), suite.code.Code,
			func(model.AuthorizationCode) error {
				close(entered)
				<-proceed
				return oauth2const.ErrPkceMismatch
			})
		done <- err
	}()
	<-entered

	result := make(chan error, 1)
	go func() {
		_, err := suite.store.ConsumeAuthorizationCode(context.Background(), suite.code.Code, accept)
		result <- err
	}()
	time.Sleep(30 * time.Millisecond)
	close(proceed)

	assert.ErrorIs(suite.T(), <-done, oauth2const.ErrPkceMismatch)
	assert.NoError(suite.T(), <-result)
}

func (suite *RedisLockTestSuite) TestCancelledWhileWaiting() {
	suite.holdLock()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.store.ConsumeAuthorizationCode(ctx, suite.code.Code, accept)

	assert.ErrorIs(suite.T(), err, context.Canceled)
}
