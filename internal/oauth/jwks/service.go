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

// Package jwks provides the implementation for retrieving JSON Web Key Sets (JWKS).
package jwks

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"encoding/base64"
	"math/big"
	"sort"

	"github.com/algafood/authserver/internal/oauth/jwks/constants"
	"github.com/algafood/authserver/internal/oauth/jwks/model"
	"github.com/algafood/authserver/internal/system/error/serviceerror"
	"github.com/algafood/authserver/internal/system/jwt"
	"github.com/algafood/authserver/internal/system/log"
)

// JWKSServiceInterface defines the interface for JWKS service.
type JWKSServiceInterface interface {
	GetJWKS() (*model.JWKSResponse, *serviceerror.ServiceError)
	GetTokenKey() (*model.TokenKeyResponse, *serviceerror.ServiceError)
}

// JWKSService implements the JWKSServiceInterface.
type JWKSService struct {
	keys jwt.KeyPairProviderInterface
}

// NewJWKSService creates a new instance of JWKSService.
func NewJWKSService(keys jwt.KeyPairProviderInterface) *JWKSService {
	return &JWKSService{keys: keys}
}

// GetJWKS returns the verification keys of every key generation, the active one first.
func (s *JWKSService) GetJWKS() (*model.JWKSResponse, *serviceerror.ServiceError) {
	current := s.keys.CurrentKeyPair()
	if current == nil {
		return nil, constants.ErrorNoSigningKey
	}

	generations := s.keys.PublicKeysByGeneration()
	kids := make([]string, 0, len(generations))
	for kid := range generations {
		if kid != current.KeyID {
			kids = append(kids, kid)
		}
	}
	sort.Strings(kids)
	kids = append([]string{current.KeyID}, kids...)

	response := &model.JWKSResponse{Keys: make([]model.JWKS, 0, len(kids))}
	for _, kid := range kids {
		pub, ok := generations[kid]
		if !ok {
			pub = current.PublicKey
		}
		key, svcErr := toJWK(kid, current.Algorithm, pub)
		if svcErr != nil {
			return nil, svcErr
		}
		response.Keys = append(response.Keys, *key)
	}
	return response, nil
}

// GetTokenKey returns the active verification key as PEM.
func (s *JWKSService) GetTokenKey() (*model.TokenKeyResponse, *serviceerror.ServiceError) {
	current := s.keys.CurrentKeyPair()
	if current == nil {
		return nil, constants.ErrorNoSigningKey
	}
	encoded, err := jwt.EncodePublicKeyPEM(current.PublicKey)
	if err != nil {
		log.GetLogger().Error("Failed to encode the active public key", log.Error(err))
		return nil, constants.ErrorWhileEncodingPublicKey
	}
	return &model.TokenKeyResponse{
		Alg:   current.Algorithm,
		Value: string(encoded),
	}, nil
}

func toJWK(kid, alg string, pub crypto.PublicKey) (*model.JWKS, *serviceerror.ServiceError) {
	switch key := pub.(type) {
	case *rsa.PublicKey:
		return &model.JWKS{
			Kid: kid,
			Kty: "RSA",
			Use: constants.KeyUseSignature,
			Alg: alg,
			N:   encodeBase64URL(key.N.Bytes()),
			E:   encodeBase64URL(big.NewInt(int64(key.E)).Bytes()),
		}, nil
	case *ecdsa.PublicKey:
		size := (key.Curve.Params().BitSize + 7) / 8
		return &model.JWKS{
			Kid: kid,
			Kty: "EC",
			Use: constants.KeyUseSignature,
			Alg: alg,
			Crv: key.Curve.Params().Name,
			X:   encodeBase64URL(key.X.FillBytes(make([]byte, size))),
			Y:   encodeBase64URL(key.Y.FillBytes(make([]byte, size))),
		}, nil
	default:
		return nil, constants.ErrorUnsupportedPublicKeyType
	}
}

func encodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
