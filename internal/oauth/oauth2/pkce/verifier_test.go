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

package pkce

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	authzconst "github.com/algafood/authserver/internal/oauth/oauth2/authz/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/authz/model"
	"github.com/algafood/authserver/internal/oauth/oauth2/authz/store"
	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
)

type VerifierTestSuite struct {
	suite.Suite
	verifier *Verifier
}

func TestVerifierSuite(t *testing.T) {
	suite.Run(t, new(VerifierTestSuite))
}

func (suite *VerifierTestSuite) SetupTest() {
	suite.verifier = NewVerifier(store.NewMemoryAuthorizationCodeStore())
}

func (suite *VerifierTestSuite) register(code string, createdAgo time.Duration, method, challenge string) {
	created := time.Now().Add(-createdAgo)
	err := suite.verifier.Register(context.Background(), model.AuthorizationCode{
		Code:                code,
		ClientID:            "foodanalytics",
		RedirectURI:         "http://www.foodanalytics.local:8082",
		Username:            "ana@algafood.com",
		Scopes:              []string{"READ"},
		CodeChallenge:       challenge,
		CodeChallengeMethod: method,
		TimeCreated:         created,
		ExpiryTime:          created.Add(authzconst.DefaultCodeValidity),
		State:               authzconst.AuthCodeStateActive,
	})
	suite.Require().NoError(err)
}

func noop(model.AuthorizationCode) error { return nil }

func (suite *VerifierTestSuite) TestVerifyS256() {
	suite.register("code-1", 0, constants.CodeChallengeMethodS256, rfcChallenge)

	var issuedFor string
	code, err := suite.verifier.Verify(context.Background(), "code-1", rfcVerifier,
		func(c model.AuthorizationCode) error {
			issuedFor = c.Username
			return nil
		})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "ana@algafood.com", issuedFor)
	assert.Equal(suite.T(), "foodanalytics", code.ClientID)
}

func (suite *VerifierTestSuite) TestVerifyMismatchDoesNotConsume() {
	suite.register("code-2", 0, constants.CodeChallengeMethodS256, rfcChallenge)

	issued := false
	_, err := suite.verifier.Verify(context.Background(), "code-2", strings.Repeat("b", 43),
		func(model.AuthorizationCode) error {
			issued = true
			return nil
		})
	assert.ErrorIs(suite.T(), err, constants.ErrPkceMismatch)
	assert.False(suite.T(), issued)

	_, err = suite.verifier.Verify(context.Background(), "code-2", rfcVerifier, noop)
	assert.NoError(suite.T(), err)
}

func (suite *VerifierTestSuite) TestMalformedVerifierIsMismatch() {
	suite.register("code-3", 0, constants.CodeChallengeMethodS256, rfcChallenge)

	_, err := suite.verifier.Verify(context.Background(), "code-3", "short", noop)

	assert.ErrorIs(suite.T(), err, constants.ErrPkceMismatch)
	assert.ErrorIs(suite.T(), err, ErrInvalidCodeVerifier)
}

func (suite *VerifierTestSuite) TestSecondRedemptionFails() {
	suite.register("code-4", 0, constants.CodeChallengeMethodS256, rfcChallenge)

	_, err := suite.verifier.Verify(context.Background(), "code-4", rfcVerifier, noop)
	suite.Require().NoError(err)

	_, err = suite.verifier.Verify(context.Background(), "code-4", rfcVerifier, noop)
	assert.ErrorIs(suite.T(), err, constants.ErrCodeAlreadyUsed)
}

func (suite *VerifierTestSuite) TestElevenMinuteOldCodeIsExpired() {
	suite.register("code-5", 11*time.Minute, constants.CodeChallengeMethodS256, rfcChallenge)

	_, err := suite.verifier.Verify(context.Background(), "code-5", rfcVerifier, noop)

	assert.ErrorIs(suite.T(), err, constants.ErrCodeExpired)
}

func (suite *VerifierTestSuite) TestIssueFailureLeavesCodeRedeemable() {
	suite.register("code-6", 0, constants.CodeChallengeMethodS256, rfcChallenge)
	signErr := errors.New("signing failed")

	_, err := suite.verifier.Verify(context.Background(), "code-6", rfcVerifier,
		func(model.AuthorizationCode) error { return signErr })
	assert.ErrorIs(suite.T(), err, signErr)

	_, err = suite.verifier.Verify(context.Background(), "code-6", rfcVerifier, noop)
	assert.NoError(suite.T(), err)
}

func (suite *VerifierTestSuite) TestConcurrentRedemption() {
	suite.register("code-7", 0, constants.CodeChallengeMethodS256, rfcChallenge)

	var (
		wg      sync.WaitGroup
		issued  atomic.Int32
		winners atomic.Int32
		losers  atomic.Int32
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.verifier.Verify(context.Background(), "code-7", rfcVerifier,
				func(model.AuthorizationCode) error {
					issued.Add(1)
					return nil
				})
			if err == nil {
				winners.Add(1)
			} else if errors.Is(err, constants.ErrCodeAlreadyUsed) {
				losers.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(suite.T(), int32(1), winners.Load())
	assert.Equal(suite.T(), int32(1), losers.Load())
	assert.Equal(suite.T(), int32(1), issued.Load())
}

func (suite *VerifierTestSuite) TestRegisterDefaultsToPlain() {
	verifier := strings.Repeat("v", 50)
	suite.register("code-8", 0, "", verifier)

	_, err := suite.verifier.Verify(context.Background(), "code-8", verifier, noop)
	assert.NoError(suite.T(), err)
}

func (suite *VerifierTestSuite) TestRegisterRejectsBadChallenge() {
	err := suite.verifier.Register(context.Background(), model.AuthorizationCode{
		Code:                "code-9",
		CodeChallenge:       "too-short",
		CodeChallengeMethod: constants.CodeChallengeMethodS256,
		ExpiryTime:          time.Now().Add(time.Minute),
		State:               authzconst.AuthCodeStateActive,
	})

	assert.ErrorIs(suite.T(), err, ErrInvalidCodeChallenge)
}

func (suite *VerifierTestSuite) TestUnknownCode() {
	_, err := suite.verifier.Verify(context.Background(), "nope", rfcVerifier, noop)
	assert.ErrorIs(suite.T(), err, constants.ErrAuthorizationCodeNotFound)
}
