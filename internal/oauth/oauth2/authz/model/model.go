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

// Package model defines the data structures for OAuth2 authorization.
package model

import "time"

// AuthorizationCode represents an issued authorization code bound to a PKCE challenge.
type AuthorizationCode struct {
	Code                string    `json:"code"`
	ClientID            string    `json:"client_id"`
	RedirectURI         string    `json:"redirect_uri"`
	AuthorizedUserID    string    `json:"authorized_user_id"`
	Username            string    `json:"username"`
	Scopes              []string  `json:"scopes"`
	CodeChallenge       string    `json:"code_challenge"`
	CodeChallengeMethod string    `json:"code_challenge_method"`
	TimeCreated         time.Time `json:"time_created"`
	ExpiryTime          time.Time `json:"expiry_time"`
	State               string    `json:"state"`
}

// IsExpired reports whether the code is past its expiry time at the given instant.
func (c AuthorizationCode) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiryTime)
}

// Clone returns a copy that shares no slices with the original.
func (c AuthorizationCode) Clone() AuthorizationCode {
	cp := c
	if c.Scopes != nil {
		cp.Scopes = append([]string(nil), c.Scopes...)
	}
	return cp
}
