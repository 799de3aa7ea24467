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

package introspect

import "github.com/algafood/authserver/internal/oauth/oauth2/model"

// IntrospectResponse is the RFC 7662 introspection response. Custom token claims are rendered
// as top level members.
type IntrospectResponse struct {
	Active      bool                   `json:"active"`
	Scope       string                 `json:"scope,omitempty"`
	ClientID    string                 `json:"client_id,omitempty"`
	Username    string                 `json:"username,omitempty"`
	TokenType   string                 `json:"token_type,omitempty"`
	Exp         int64                  `json:"exp,omitempty"`
	Iat         int64                  `json:"iat,omitempty"`
	Nbf         int64                  `json:"nbf,omitempty"`
	Sub         string                 `json:"sub,omitempty"`
	Aud         string                 `json:"aud,omitempty"`
	Iss         string                 `json:"iss,omitempty"`
	Jti         string                 `json:"jti,omitempty"`
	Authorities []string               `json:"authorities,omitempty"`
	Extra       map[string]interface{} `json:"-"`
}

// MarshalJSON flattens the custom claims into the response.
func (r IntrospectResponse) MarshalJSON() ([]byte, error) {
	type plain IntrospectResponse
	return model.MarshalWithAdditional(plain(r), r.Extra)
}

// inactive is the only answer given for tokens that are not usable.
func inactive() *IntrospectResponse {
	return &IntrospectResponse{Active: false}
}
