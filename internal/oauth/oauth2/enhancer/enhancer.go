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

// Package enhancer adds claims to token records before they are signed.
package enhancer

import (
	"github.com/algafood/authserver/internal/oauth/oauth2/model"
	usermodel "github.com/algafood/authserver/internal/user/model"
)

// Custom claim names.
const (
	ClaimFullName = "nome_completo"
	ClaimUserID   = "usuario_id"
)

// Enhancer returns a copy of the record with extra claims. It must not change standard fields.
// identity is nil for grants without a resource owner.
type Enhancer func(record model.TokenRecord, identity *usermodel.UserIdentity) model.TokenRecord

// Chain applies the enhancers in order.
func Chain(enhancers ...Enhancer) Enhancer {
	return func(record model.TokenRecord, identity *usermodel.UserIdentity) model.TokenRecord {
		for _, e := range enhancers {
			if e == nil {
				continue
			}
			record = e(record, identity)
		}
		return record
	}
}

// CustomClaimsEnhancer adds the user's full name and numeric id.
func CustomClaimsEnhancer(record model.TokenRecord, identity *usermodel.UserIdentity) model.TokenRecord {
	if identity == nil {
		return record
	}

	enhanced := record.Clone()
	if enhanced.AdditionalClaims == nil {
		enhanced.AdditionalClaims = make(map[string]interface{}, 2)
	}
	enhanced.AdditionalClaims[ClaimFullName] = identity.FullName
	enhanced.AdditionalClaims[ClaimUserID] = identity.ID
	return enhanced
}
