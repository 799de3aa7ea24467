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

// Package hash provides hashing utilities for secrets and sensitive identifiers.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasherInterface hashes and verifies user passwords and client secrets.
type PasswordHasherInterface interface {
	Hash(secret string) (string, error)
	Verify(secret, hashed string) bool
	// VerifyDummy burns the same amount of work as Verify for callers that found no stored hash.
	VerifyDummy(secret string)
}

// BcryptHasher is the bcrypt backed implementation of PasswordHasherInterface.
type BcryptHasher struct {
	cost      int
	dummyOnce sync.Once
	dummyHash []byte
}

// NewBcryptHasher creates a hasher with the given cost. Zero selects bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt hash of the secret.
func (h *BcryptHasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("secret must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether the secret matches the bcrypt hash. Malformed hashes never match.
func (h *BcryptHasher) Verify(secret, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(secret)) == nil
}

// VerifyDummy compares the secret against a throwaway hash of the same cost.
func (h *BcryptHasher) VerifyDummy(secret string) {
	h.dummyOnce.Do(func() {
		h.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-secret"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(secret))
}

// HashString returns the hex encoded SHA-256 hash of the input string.
func HashString(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
