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

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/algafood/authserver/internal/oauth/oauth2/model"
	"github.com/algafood/authserver/internal/system/utils"
)

// Codec failures.
var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrTokenExpired     = errors.New("token is expired")
	ErrMalformedToken   = errors.New("token is malformed")
	ErrInvalidIssuer    = errors.New("token issuer is not trusted")
	ErrReservedClaim    = errors.New("additional claim collides with a reserved claim")
)

// TokenCodecInterface signs token records and restores them from their compact form.
type TokenCodecInterface interface {
	Encode(record model.TokenRecord) (string, error)
	Decode(token string) (*model.TokenRecord, error)
}

// TokenCodec is the golang-jwt backed TokenCodecInterface.
type TokenCodec struct {
	keys   KeyPairProviderInterface
	method jwtv5.SigningMethod
	issuer string
	now    func() time.Time
}

// NewTokenCodec creates a codec signing with the provider's active key. When issuer is set,
// records without an issuer are stamped with it and decoded tokens must carry it.
func NewTokenCodec(keys KeyPairProviderInterface, issuer string) (*TokenCodec, error) {
	current := keys.CurrentKeyPair()
	if current == nil {
		return nil, errors.New("no active signing key")
	}
	method := jwtv5.GetSigningMethod(current.Algorithm)
	if method == nil {
		return nil, fmt.Errorf("unsupported signing algorithm %q", current.Algorithm)
	}
	return &TokenCodec{
		keys:   keys,
		method: method,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// Encode signs the record with the active key and returns the compact JWT.
func (c *TokenCodec) Encode(record model.TokenRecord) (string, error) {
	for name := range record.AdditionalClaims {
		if IsReservedClaim(name) {
			return "", fmt.Errorf("%w: %s", ErrReservedClaim, name)
		}
	}

	claims := jwtv5.MapClaims{}
	for name, value := range record.AdditionalClaims {
		claims[name] = encodeClaimValue(value)
	}

	issuer := record.Issuer
	if issuer == "" {
		issuer = c.issuer
	}
	if issuer != "" {
		claims[ClaimIssuer] = issuer
	}
	if record.Subject != "" {
		claims[ClaimSubject] = record.Subject
	}
	if record.ClientID != "" {
		claims[ClaimAudience] = record.ClientID
		claims[ClaimClientID] = record.ClientID
	}
	claims[ClaimExpiresAt] = record.ExpiresAt.Unix()
	claims[ClaimIssuedAt] = record.IssuedAt.Unix()
	claims[ClaimNotBefore] = record.IssuedAt.Unix()
	claims[ClaimJWTID] = record.ID
	claims[ClaimScope] = utils.JoinScopes(record.Scopes)
	if record.Username != "" {
		claims[ClaimUserName] = record.Username
	}
	if len(record.Authorities) > 0 {
		claims[ClaimAuthorities] = record.Authorities
	}
	if record.GrantType != "" {
		claims[ClaimGrantType] = record.GrantType
	}
	claims[ClaimTokenUse] = string(record.Use)
	if record.AccessTokenID != "" {
		claims[ClaimAccessTokenID] = record.AccessTokenID
	}

	current := c.keys.CurrentKeyPair()
	token := jwtv5.NewWithClaims(c.method, claims)
	token.Header["kid"] = current.KeyID

	signed, err := token.SignedString(current.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the token against the key generation named by its kid and restores the record.
func (c *TokenCodec) Decode(token string) (*model.TokenRecord, error) {
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{c.method.Alg()}),
		jwtv5.WithJSONNumber(),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwtv5.WithIssuer(c.issuer))
	}

	parsed, err := jwtv5.Parse(token, c.keyFunc, opts...)
	if err != nil {
		return nil, mapParseError(err)
	}

	claims, ok := parsed.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrMalformedToken
	}
	return recordFromClaims(claims)
}

func (c *TokenCodec) keyFunc(token *jwtv5.Token) (interface{}, error) {
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return nil, errors.New("token header has no kid")
	}
	pub, ok := c.keys.PublicKeysByGeneration()[kid]
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	return pub, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwtv5.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	case errors.Is(err, jwtv5.ErrTokenSignatureInvalid), errors.Is(err, jwtv5.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	case errors.Is(err, jwtv5.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %w", ErrInvalidIssuer, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
}

func recordFromClaims(claims jwtv5.MapClaims) (*model.TokenRecord, error) {
	record := &model.TokenRecord{}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrMalformedToken
	}
	record.ExpiresAt = exp.Time
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		record.IssuedAt = iat.Time
	}

	var additional map[string]interface{}
	for name, value := range claims {
		switch name {
		case ClaimIssuer:
			record.Issuer, _ = value.(string)
		case ClaimSubject:
			record.Subject, _ = value.(string)
		case ClaimJWTID:
			record.ID, _ = value.(string)
		case ClaimClientID:
			record.ClientID, _ = value.(string)
		case ClaimScope:
			scope, _ := value.(string)
			record.Scopes = utils.ParseScopes(scope)
		case ClaimUserName:
			record.Username, _ = value.(string)
		case ClaimAuthorities:
			authorities, err := toStringSlice(value)
			if err != nil {
				return nil, ErrMalformedToken
			}
			record.Authorities = authorities
		case ClaimGrantType:
			record.GrantType, _ = value.(string)
		case ClaimTokenUse:
			use, _ := value.(string)
			record.Use = model.TokenUse(use)
		case ClaimAccessTokenID:
			record.AccessTokenID, _ = value.(string)
		case ClaimAudience, ClaimExpiresAt, ClaimIssuedAt, ClaimNotBefore:
		default:
			if additional == nil {
				additional = make(map[string]interface{})
			}
			additional[name] = normalizeNumber(value)
		}
	}
	if record.ClientID == "" {
		if aud, err := claims.GetAudience(); err == nil && len(aud) > 0 {
			record.ClientID = aud[0]
		}
	}
	record.AdditionalClaims = additional

	return record, nil
}

func toStringSlice(value interface{}) ([]string, error) {
	items, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", value)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected string element, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}

// encodeClaimValue writes floats with a fraction or exponent so they decode as float64 even when
// integral. Nested arrays and objects are walked.
func encodeClaimValue(value interface{}) interface{} {
	switch v := value.(type) {
	case float64:
		return floatNumber(v, 64)
	case float32:
		return floatNumber(float64(v), 32)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = encodeClaimValue(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			out[k] = encodeClaimValue(item)
		}
		return out
	default:
		return v
	}
}

func floatNumber(f float64, bitSize int) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		// Left as is so the JSON encoder reports the unsupported value.
		return f
	}
	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return json.Number(s)
}

// normalizeNumber turns integer literals into int64 (uint64 above the int64 range) and every
// other number into float64. Nested values are normalized too.
func normalizeNumber(value interface{}) interface{} {
	switch v := value.(type) {
	case json.Number:
		s := v.String()
		if !strings.ContainsAny(s, ".eE") {
			if i, err := v.Int64(); err == nil {
				return i
			}
			if u, err := strconv.ParseUint(s, 10, 64); err == nil {
				return u
			}
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return s
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = normalizeNumber(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			out[k] = normalizeNumber(item)
		}
		return out
	default:
		return v
	}
}
