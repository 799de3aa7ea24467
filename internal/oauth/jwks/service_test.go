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

package jwks

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/algafood/authserver/internal/oauth/jwks/constants"
	"github.com/algafood/authserver/internal/system/jwt"
)

type JWKSServiceTestSuite struct {
	suite.Suite
}

func TestJWKSServiceSuite(t *testing.T) {
	suite.Run(t, new(JWKSServiceTestSuite))
}

func (suite *JWKSServiceTestSuite) provider(alg, kid string, retired map[string]crypto.PublicKey) *jwt.KeyPairProvider {
	key, err := jwt.GenerateKey(alg)
	suite.Require().NoError(err)
	keys, err := jwt.NewKeyPairProvider(&jwt.KeyPair{KeyID: kid, Algorithm: alg, PrivateKey: key}, retired)
	suite.Require().NoError(err)
	return keys
}

func decodeInt(s string) *big.Int {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return new(big.Int).SetBytes(b)
}

func (suite *JWKSServiceTestSuite) TestGetJWKS_RSAWithRetiredGeneration() {
	retiredKey, err := jwt.GenerateKey("RS256")
	suite.Require().NoError(err)
	keys := suite.provider("RS256", "2026-10", map[string]crypto.PublicKey{"2026-04": retiredKey.Public()})

	response, svcErr := NewJWKSService(keys).GetJWKS()
	suite.Require().Nil(svcErr)
	suite.Require().Len(response.Keys, 2)

	active := response.Keys[0]
	suite.Equal("2026-10", active.Kid)
	suite.Equal("RSA", active.Kty)
	suite.Equal("sig", active.Use)
	suite.Equal("RS256", active.Alg)
	rebuilt := &rsa.PublicKey{N: decodeInt(active.N), E: int(decodeInt(active.E).Int64())}
	suite.True(rebuilt.Equal(keys.CurrentKeyPair().PublicKey))
	suite.Equal("AQAB", active.E)

	suite.Equal("2026-04", response.Keys[1].Kid)
	retired := &rsa.PublicKey{N: decodeInt(response.Keys[1].N), E: int(decodeInt(response.Keys[1].E).Int64())}
	suite.True(retired.Equal(retiredKey.Public()))
}

func (suite *JWKSServiceTestSuite) TestGetJWKS_EC() {
	keys := suite.provider("ES256", "ec-1", nil)

	response, svcErr := NewJWKSService(keys).GetJWKS()
	suite.Require().Nil(svcErr)
	suite.Require().Len(response.Keys, 1)

	key := response.Keys[0]
	suite.Equal("EC", key.Kty)
	suite.Equal("P-256", key.Crv)
	suite.Equal("ES256", key.Alg)
	suite.Empty(key.N)
	x, _ := base64.RawURLEncoding.DecodeString(key.X)
	suite.Len(x, 32)
	rebuilt := &ecdsa.PublicKey{Curve: elliptic.P256(), X: decodeInt(key.X), Y: decodeInt(key.Y)}
	suite.True(rebuilt.Equal(keys.CurrentKeyPair().PublicKey))
}

func (suite *JWKSServiceTestSuite) TestGetTokenKey() {
	keys := suite.provider("RS256", "k", nil)

	response, svcErr := NewJWKSService(keys).GetTokenKey()
	suite.Require().Nil(svcErr)
	suite.Equal("RS256", response.Alg)
	suite.Contains(response.Value, "-----BEGIN PUBLIC KEY-----")

	parsed, err := jwt.ParsePublicKeyPEM([]byte(response.Value))
	suite.Require().NoError(err)
	suite.True(parsed.(*rsa.PublicKey).Equal(keys.CurrentKeyPair().PublicKey))
}

type emptyKeys struct{}

func (emptyKeys) CurrentKeyPair() *jwt.KeyPair { return nil }
func (emptyKeys) PublicKeysByGeneration() map[string]crypto.PublicKey { return nil }

func (suite *JWKSServiceTestSuite) TestNoSigningKey() {
	service := NewJWKSService(emptyKeys{})

	_, svcErr := service.GetJWKS()
	suite.Equal(constants.ErrorNoSigningKey, svcErr)
	_, svcErr = service.GetTokenKey()
	suite.Equal(constants.ErrorNoSigningKey, svcErr)
}
