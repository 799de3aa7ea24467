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

package jwt

// Registered and server defined claim names.
const (
	ClaimIssuer        = "iss"
	ClaimSubject       = "sub"
	ClaimAudience      = "aud"
	ClaimExpiresAt     = "exp"
	ClaimIssuedAt      = "iat"
	ClaimNotBefore     = "nbf"
	ClaimJWTID         = "jti"
	ClaimClientID      = "client_id"
	ClaimScope         = "scope"
	ClaimUserName      = "user_name"
	ClaimAuthorities   = "authorities"
	ClaimGrantType     = "grant_type"
	ClaimTokenUse      = "token_use"
	ClaimAccessTokenID = "ati"
)

// reservedClaims may only be written from TokenRecord fields.
var reservedClaims = map[string]struct{}{
	ClaimIssuer:        {},
	ClaimSubject:       {},
	ClaimAudience:      {},
	ClaimExpiresAt:     {},
	ClaimIssuedAt:      {},
	ClaimNotBefore:     {},
	ClaimJWTID:         {},
	ClaimClientID:      {},
	ClaimScope:         {},
	ClaimUserName:      {},
	ClaimAuthorities:   {},
	ClaimGrantType:     {},
	ClaimTokenUse:      {},
	ClaimAccessTokenID: {},
}

// IsReservedClaim reports whether name is produced from a standard token field.
func IsReservedClaim(name string) bool {
	_, ok := reservedClaims[name]
	return ok
}
