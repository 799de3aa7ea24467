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

// Package pkce provides PKCE (Proof Key for Code Exchange) validation and the authorization
// code verifier built on it.
package pkce

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"

	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
)

// PKCE validation errors.
var (
	ErrInvalidCodeVerifier    = errors.New("invalid code verifier")
	ErrInvalidCodeChallenge   = errors.New("invalid code challenge")
	ErrInvalidChallengeMethod = errors.New("invalid code challenge method")
)

const (
	minVerifierLength = 43
	maxVerifierLength = 128
	s256ChallengeLen  = 43
)

// isValidASCIIUnreserved validates that a character is in the unreserved set.
func isValidASCIIUnreserved(c rune) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.' || c == '~'
}

// isValidBase64URLChar validates that a character is in the base64url alphabet.
func isValidBase64URLChar(c rune) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_'
}

// ValidatePKCE checks the code verifier against the stored code challenge.
// A well formed verifier that does not match fails with ErrPkceMismatch.
func ValidatePKCE(codeChallenge, codeChallengeMethod, codeVerifier string) error {
	if codeChallengeMethod == "" {
		codeChallengeMethod = constants.CodeChallengeMethodPlain
	}

	if err := validateCodeVerifier(codeVerifier); err != nil {
		return err
	}
	if codeChallenge == "" {
		return ErrInvalidCodeChallenge
	}

	expected, err := deriveChallenge(codeVerifier, codeChallengeMethod)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(codeChallenge), []byte(expected)) != 1 {
		return constants.ErrPkceMismatch
	}
	return nil
}

// GenerateCodeChallenge generates a code challenge from a code verifier using the specified method.
func GenerateCodeChallenge(codeVerifier, method string) (string, error) {
	if err := validateCodeVerifier(codeVerifier); err != nil {
		return "", err
	}
	return deriveChallenge(codeVerifier, method)
}

// ValidateCodeChallenge validates the format of a code challenge according to RFC 7636.
func ValidateCodeChallenge(codeChallenge, codeChallengeMethod string) error {
	if codeChallengeMethod == "" {
		codeChallengeMethod = constants.CodeChallengeMethodPlain
	}

	switch codeChallengeMethod {
	case constants.CodeChallengeMethodPlain:
		if len(codeChallenge) < minVerifierLength || len(codeChallenge) > maxVerifierLength {
			return ErrInvalidCodeChallenge
		}
		for _, c := range codeChallenge {
			if !isValidASCIIUnreserved(c) {
				return ErrInvalidCodeChallenge
			}
		}
		return nil
	case constants.CodeChallengeMethodS256:
		if len(codeChallenge) != s256ChallengeLen {
			return ErrInvalidCodeChallenge
		}
		for _, c := range codeChallenge {
			if !isValidBase64URLChar(c) {
				return ErrInvalidCodeChallenge
			}
		}
		return nil
	default:
		return ErrInvalidChallengeMethod
	}
}

// validateCodeVerifier validates the format of a code verifier according to RFC 7636.
func validateCodeVerifier(codeVerifier string) error {
	if len(codeVerifier) < minVerifierLength || len(codeVerifier) > maxVerifierLength {
		return ErrInvalidCodeVerifier
	}
	for _, c := range codeVerifier {
		if !isValidASCIIUnreserved(c) {
			return ErrInvalidCodeVerifier
		}
	}
	return nil
}

func deriveChallenge(codeVerifier, method string) (string, error) {
	switch method {
	case constants.CodeChallengeMethodPlain:
		return codeVerifier, nil
	case constants.CodeChallengeMethodS256:
		sum := sha256.Sum256([]byte(codeVerifier))
		return base64.RawURLEncoding.EncodeToString(sum[:]), nil
	default:
		return "", ErrInvalidChallengeMethod
	}
}
