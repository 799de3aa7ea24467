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
	"fmt"

	"github.com/algafood/authserver/internal/oauth/oauth2/authz/model"
	"github.com/algafood/authserver/internal/oauth/oauth2/authz/store"
	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
)

// IssueFunc mints whatever the redeemed code entitles the client to. The code is consumed
// only when it returns nil.
type IssueFunc func(code model.AuthorizationCode) error

// VerifierInterface registers PKCE bound authorization codes and redeems them exactly once.
type VerifierInterface interface {
	Register(ctx context.Context, code model.AuthorizationCode) error
	Verify(ctx context.Context, code, codeVerifier string, issue IssueFunc) (*model.AuthorizationCode, error)
}

// Verifier is the default VerifierInterface over an authorization code store.
type Verifier struct {
	store store.AuthorizationCodeStoreInterface
}

// NewVerifier creates a verifier backed by the given store.
func NewVerifier(codeStore store.AuthorizationCodeStoreInterface) *Verifier {
	return &Verifier{store: codeStore}
}

// Register validates the code's challenge and stores it. The method defaults to plain.
func (v *Verifier) Register(ctx context.Context, code model.AuthorizationCode) error {
	if code.CodeChallengeMethod == "" {
		code.CodeChallengeMethod = constants.CodeChallengeMethodPlain
	}
	if err := ValidateCodeChallenge(code.CodeChallenge, code.CodeChallengeMethod); err != nil {
		return err
	}
	if err := v.store.InsertAuthorizationCode(ctx, code); err != nil {
		return fmt.Errorf("failed to store authorization code: %w", err)
	}
	return nil
}

// Verify redeems a code. Under the store's per-code exclusion it checks the verifier against
// the stored challenge and then runs issue; a mismatch changes nothing, and a failing issue
// leaves the code redeemable.
func (v *Verifier) Verify(ctx context.Context, code, codeVerifier string,
	issue IssueFunc) (*model.AuthorizationCode, error) {
	return v.store.ConsumeAuthorizationCode(ctx, code, func(stored model.AuthorizationCode) error {
		if err := ValidatePKCE(stored.CodeChallenge, stored.CodeChallengeMethod, codeVerifier); err != nil {
			if errors.Is(err, ErrInvalidCodeVerifier) {
				return fmt.Errorf("%w: %w", constants.ErrPkceMismatch, err)
			}
			return err
		}
		return issue(stored)
	})
}
