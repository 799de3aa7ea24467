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

// Package model defines the refresh token approval records.
package model

import "time"

// ApprovalStatus is the lifecycle state of an approval entry.
type ApprovalStatus string

// Approval entry states.
const (
	ApprovalStatusActive  ApprovalStatus = "ACTIVE"
	ApprovalStatusUsed    ApprovalStatus = "USED"
	ApprovalStatusRevoked ApprovalStatus = "REVOKED"
)

// ApprovalEntry links an issued refresh token to the grant it came from. Only an ACTIVE entry can
// be exchanged; a rotated entry is USED and points at its successor through ReplacedBy.
type ApprovalEntry struct {
	RefreshTokenID string         `json:"refresh_token_id"`
	AccessTokenID  string         `json:"access_token_id"`
	ClientID       string         `json:"client_id"`
	Subject        string         `json:"subject,omitempty"`
	Username       string         `json:"username,omitempty"`
	Scopes         []string       `json:"scopes"`
	GrantType      string         `json:"grant_type"`
	IssuedAt       time.Time      `json:"issued_at"`
	ExpiresAt      time.Time      `json:"expires_at"`
	Status         ApprovalStatus `json:"status"`
	ReplacedBy     string         `json:"replaced_by,omitempty"`
}

// IsActive reports whether the entry can still be exchanged at the given instant.
func (e ApprovalEntry) IsActive(now time.Time) bool {
	return e.Status == ApprovalStatusActive && now.Before(e.ExpiresAt)
}

// Clone returns a copy that shares no slices with the original.
func (e ApprovalEntry) Clone() ApprovalEntry {
	c := e
	if e.Scopes != nil {
		c.Scopes = append([]string(nil), e.Scopes...)
	}
	return c
}
