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

// Package jwt provides signing key management and the JWT token codec.
package jwt

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/algafood/authserver/internal/system/config"
)

// DefaultAlgorithm is used when no signing algorithm is configured.
const DefaultAlgorithm = "RS256"

const rsaKeyBits = 2048

// KeyPair is one generation of signing key material. It is immutable once loaded.
type KeyPair struct {
	KeyID      string
	Algorithm  string
	PrivateKey crypto.Signer
	PublicKey  crypto.PublicKey
}

// KeyPairProviderInterface exposes the active signing key and the verification keys of every generation.
type KeyPairProviderInterface interface {
	CurrentKeyPair() *KeyPair
	PublicKeysByGeneration() map[string]crypto.PublicKey
}

// KeyPairProvider holds the active key pair plus the public keys of retiring generations.
type KeyPairProvider struct {
	current    *KeyPair
	publicKeys map[string]crypto.PublicKey
}

// NewKeyPairProvider builds a provider from an active key pair and optional retired public keys.
func NewKeyPairProvider(current *KeyPair, retired map[string]crypto.PublicKey) (*KeyPairProvider, error) {
	if current == nil || current.PrivateKey == nil {
		return nil, errors.New("an active signing key is required")
	}
	if current.Algorithm == "" {
		current.Algorithm = DefaultAlgorithm
	}
	if current.PublicKey == nil {
		current.PublicKey = current.PrivateKey.Public()
	}
	if err := checkAlgorithm(current.Algorithm, current.PublicKey); err != nil {
		return nil, err
	}
	if current.KeyID == "" {
		kid, err := Thumbprint(current.PublicKey)
		if err != nil {
			return nil, err
		}
		current.KeyID = kid
	}

	publicKeys := make(map[string]crypto.PublicKey, len(retired)+1)
	for kid, pub := range retired {
		if kid == current.KeyID {
			return nil, fmt.Errorf("duplicate key id %q", kid)
		}
		if err := checkAlgorithm(current.Algorithm, pub); err != nil {
			return nil, fmt.Errorf("key %q: %w", kid, err)
		}
		publicKeys[kid] = pub
	}
	publicKeys[current.KeyID] = current.PublicKey

	return &KeyPairProvider{current: current, publicKeys: publicKeys}, nil
}

// LoadKeyPairProvider loads every configured key generation from PEM files.
// Relative paths are resolved against serverHome. The generation named by active_kid signs;
// without active_kid the first generation that has a private key signs.
func LoadKeyPairProvider(serverHome string, cfg config.SigningConfig) (*KeyPairProvider, error) {
	algorithm := cfg.Algorithm
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	if len(cfg.Keys) == 0 {
		return nil, errors.New("no signing keys configured")
	}

	var current *KeyPair
	retired := make(map[string]crypto.PublicKey)

	for _, keyCfg := range cfg.Keys {
		isActive := keyCfg.PrivateKeyFile != "" &&
			(cfg.ActiveKeyID == keyCfg.KeyID || (cfg.ActiveKeyID == "" && current == nil))

		if isActive {
			data, err := readKeyFile(serverHome, keyCfg.PrivateKeyFile)
			if err != nil {
				return nil, err
			}
			signer, err := ParsePrivateKeyPEM(data)
			if err != nil {
				return nil, fmt.Errorf("failed to parse private key %s: %w", keyCfg.PrivateKeyFile, err)
			}
			current = &KeyPair{
				KeyID:      keyCfg.KeyID,
				Algorithm:  algorithm,
				PrivateKey: signer,
				PublicKey:  signer.Public(),
			}
			continue
		}

		publicFile := keyCfg.PublicKeyFile
		if publicFile == "" {
			return nil, fmt.Errorf("key %q has no public key file", keyCfg.KeyID)
		}
		data, err := readKeyFile(serverHome, publicFile)
		if err != nil {
			return nil, err
		}
		pub, err := ParsePublicKeyPEM(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse public key %s: %w", publicFile, err)
		}
		kid := keyCfg.KeyID
		if kid == "" {
			if kid, err = Thumbprint(pub); err != nil {
				return nil, err
			}
		}
		if _, exists := retired[kid]; exists {
			return nil, fmt.Errorf("duplicate key id %q", kid)
		}
		retired[kid] = pub
	}

	if current == nil {
		return nil, fmt.Errorf("active signing key %q not found among keys with a private key file", cfg.ActiveKeyID)
	}
	return NewKeyPairProvider(current, retired)
}

// CurrentKeyPair returns the key pair used for signing new tokens.
func (p *KeyPairProvider) CurrentKeyPair() *KeyPair {
	return p.current
}

// PublicKeysByGeneration returns a copy of the verification keys indexed by key id.
func (p *KeyPairProvider) PublicKeysByGeneration() map[string]crypto.PublicKey {
	keys := make(map[string]crypto.PublicKey, len(p.publicKeys))
	for kid, pub := range p.publicKeys {
		keys[kid] = pub
	}
	return keys
}

func readKeyFile(serverHome, file string) ([]byte, error) {
	if !filepath.IsAbs(file) {
		file = filepath.Join(serverHome, file)
	}
	file = filepath.Clean(file)

	if _, err := os.Stat(file); os.IsNotExist(err) {
		return nil, errors.New("key file not found at " + file)
	}
	return os.ReadFile(file)
}

// ParsePrivateKeyPEM decodes an RSA or EC private key in PKCS1, SEC1 or PKCS8 form.
func ParsePrivateKeyPEM(data []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("failed to decode PEM block containing private key")
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		switch k := key.(type) {
		case *rsa.PrivateKey:
			return k, nil
		case *ecdsa.PrivateKey:
			return k, nil
		default:
			return nil, fmt.Errorf("unsupported private key type %T", key)
		}
	default:
		return nil, errors.New("unsupported private key type: " + block.Type)
	}
}

// ParsePublicKeyPEM decodes a PKIX or PKCS1 public key, or the key of an X.509 certificate.
func ParsePublicKeyPEM(data []byte) (crypto.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("failed to decode PEM block containing public key")
	}

	switch block.Type {
	case "PUBLIC KEY":
		return x509.ParsePKIXPublicKey(block.Bytes)
	case "RSA PUBLIC KEY":
		return x509.ParsePKCS1PublicKey(block.Bytes)
	case "CERTIFICATE":
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		return cert.PublicKey, nil
	default:
		return nil, errors.New("unsupported public key type: " + block.Type)
	}
}

// EncodePublicKeyPEM renders a public key as a PKIX PEM block.
func EncodePublicKeyPEM(pub crypto.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// EncodePrivateKeyPEM renders a private key as a PKCS8 PEM block.
func EncodePrivateKeyPEM(key crypto.Signer) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// Thumbprint returns the base64url SHA-256 digest of the DER encoded public key.
func Thumbprint(pub crypto.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	sum := sha256.Sum256(der)
	return base64.RawURLEncoding.EncodeToString(sum[:]), nil
}

// GenerateKey creates a fresh private key suitable for the given algorithm.
func GenerateKey(algorithm string) (crypto.Signer, error) {
	switch algorithm {
	case "RS256", "RS384", "RS512", "PS256":
		return rsa.GenerateKey(rand.Reader, rsaKeyBits)
	case "ES256":
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	case "ES384":
		return ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
}

// checkAlgorithm verifies that the key type matches the signing algorithm.
func checkAlgorithm(algorithm string, pub crypto.PublicKey) error {
	switch algorithm {
	case "RS256", "RS384", "RS512", "PS256":
		if _, ok := pub.(*rsa.PublicKey); !ok {
			return fmt.Errorf("algorithm %s requires an RSA key, got %T", algorithm, pub)
		}
	case "ES256", "ES384":
		ecKey, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return fmt.Errorf("algorithm %s requires an EC key, got %T", algorithm, pub)
		}
		want := elliptic.P256()
		if algorithm == "ES384" {
			want = elliptic.P384()
		}
		if ecKey.Curve != want {
			return fmt.Errorf("algorithm %s requires curve %s", algorithm, want.Params().Name)
		}
	default:
		return fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return nil
}
