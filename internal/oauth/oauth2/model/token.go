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

// Package model defines the data structures used in the OAuth2 module.
package model

import (
	"encoding/json"
	"errors"
	"time"
)

// TokenRequest represents the OAuth2 token request.
type TokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Scope        string `json:"scope,omitempty"`
	Username     string `json:"username,omitempty"`
	Password     string `json:"password,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	CodeVerifier string `json:"code_verifier,omitempty"`
	Code         string `json:"code,omitempty"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
}

// TokenResponse represents the OAuth2 token response.
// AdditionalInformation entries are rendered as top level members next to the standard fields.
type TokenResponse struct {
	AccessToken           string                 `json:"access_token"`
	TokenType             string                 `json:"token_type"`
	ExpiresIn             int64                  `json:"expires_in"`
	RefreshToken          string                 `json:"refresh_token,omitempty"`
	Scope                 string                 `json:"scope,omitempty"`
	JTI                   string                 `json:"jti,omitempty"`
	AdditionalInformation map[string]interface{} `json:"-"`
}

// MarshalJSON flattens AdditionalInformation into the response object.
func (tr TokenResponse) MarshalJSON() ([]byte, error) {
	type plain TokenResponse
	return MarshalWithAdditional(plain(tr), tr.AdditionalInformation)
}

// MarshalWithAdditional encodes v as a JSON object and adds the additional entries as top level
// members. Members of v always win over additional entries of the same name.
func MarshalWithAdditional(v any, additional map[string]interface{}) ([]byte, error) {
	standard, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(additional) == 0 {
		return standard, nil
	}

	merged := make(map[string]json.RawMessage, len(additional)+8)
	for k, val := range additional {
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		merged[k] = raw
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(standard, &fields); err != nil {
		return nil, err
	}
	for k, val := range fields {
		merged[k] = val
	}
	return json.Marshal(merged)
}

// TokenUse distinguishes access tokens from refresh tokens.
type TokenUse string

const (
	// TokenUseAccess marks an access token.
	TokenUseAccess TokenUse = "access"
	// TokenUseRefresh marks a refresh token.
	TokenUseRefresh TokenUse = "refresh"
)

// TokenRecord is the unsigned content of a token. It is never mutated after issuance;
// enhancers return modified copies.
type TokenRecord struct {
	ID               string
	Issuer           string
	Subject          string
	Username         string
	ClientID         string
	Scopes           []string
	Authorities      []string
	GrantType        string
	IssuedAt         time.Time
	ExpiresAt        time.Time
	Use              TokenUse
	AccessTokenID    string
	AdditionalClaims map[string]interface{}
}

// Clone returns a copy of the record that shares no mutable state with the original.
func (r TokenRecord) Clone() TokenRecord {
	c := r
	if r.Scopes != nil {
		c.Scopes = append([]string(nil), r.Scopes...)
	}
	if r.Authorities != nil {
		c.Authorities = append([]string(nil), r.Authorities...)
	}
	if r.AdditionalClaims != nil {
		c.AdditionalClaims = make(map[string]interface{}, len(r.AdditionalClaims))
		for k, v := range r.AdditionalClaims {
			c.AdditionalClaims[k] = v
		}
	}
	return c
}

// ExpiresIn returns the remaining lifetime in whole seconds relative to now, never negative.
func (r TokenRecord) ExpiresIn(now time.Time) int64 {
	remaining := int64(r.ExpiresAt.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IssuedToken pairs a signed token with the record it was produced from.
type IssuedToken struct {
	Token  string
	Record TokenRecord
}

// TokenResponseDTO represents the data transfer object for token responses.
type TokenResponseDTO struct {
	AccessToken  IssuedToken
	RefreshToken *IssuedToken
}

// ErrorResponse is an OAuth2 error returned to the client.
// Reason keeps the underlying cause for errors.Is and is never serialized.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	Reason           error  `json:"-"`
}

// NewErrorResponse creates an ErrorResponse carrying the given cause.
func NewErrorResponse(code, description string, reason error) *ErrorResponse {
	return &ErrorResponse{
		Error:            code,
		ErrorDescription: description,
		Reason:           reason,
	}
}

// Is reports whether the cause of the denial matches target.
func (e *ErrorResponse) Is(target error) bool {
	return e != nil && errors.Is(e.Reason, target)
}
