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

package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/algafood/authserver/internal/system/config"
	"github.com/algafood/authserver/internal/system/constants"
	"github.com/algafood/authserver/internal/system/jwt"
	"github.com/algafood/authserver/internal/system/log"
)

type CommandTestSuite struct {
	suite.Suite
	home string
}

func TestCommandSuite(t *testing.T) {
	suite.Run(t, new(CommandTestSuite))
}

func nopLogger() *log.Logger {
	return log.NewLogger(zap.NewNop())
}

func (suite *CommandTestSuite) SetupTest() {
	suite.home = suite.T().TempDir()
}

func (suite *CommandTestSuite) run(stdin string, args ...string) (string, error) {
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--home", suite.home}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (suite *CommandTestSuite) TestKeysGenerate() {
	out, err := suite.run("", "keys", "generate", "--alg", "ES256", "--out", "keys")
	suite.Require().NoError(err)
	assert.Contains(suite.T(), out, "thumbprint:")

	privatePEM, err := os.ReadFile(filepath.Join(suite.home, "keys", "signing.key"))
	suite.Require().NoError(err)
	key, err := jwt.ParsePrivateKeyPEM(privatePEM)
	suite.Require().NoError(err)

	keys, err := jwt.LoadKeyPairProvider(suite.home, config.SigningConfig{
		Algorithm:   "ES256",
		ActiveKeyID: "k1",
		Keys: []config.SigningKeyConfig{{
			KeyID:          "k1",
			PrivateKeyFile: "keys/signing.key",
			PublicKeyFile:  "keys/signing.pub",
		}},
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), key.Public(), keys.CurrentKeyPair().PrivateKey.Public())

	info, err := os.Stat(filepath.Join(suite.home, "keys", "signing.key"))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), os.FileMode(0o600), info.Mode().Perm())
}

func (suite *CommandTestSuite) TestKeysGenerateRefusesOverwrite() {
	_, err := suite.run("", "keys", "generate", "--alg", "ES256")
	suite.Require().NoError(err)

	_, err = suite.run("", "keys", "generate", "--alg", "ES256")
	assert.ErrorContains(suite.T(), err, "already exists")

	_, err = suite.run("", "keys", "generate", "--alg", "ES256", "--force")
	assert.NoError(suite.T(), err)
}

func (suite *CommandTestSuite) TestKeysGenerateUnsupportedAlgorithm() {
	_, err := suite.run("", "keys", "generate", "--alg", "HS256")

	assert.ErrorContains(suite.T(), err, "unsupported signing algorithm")
}

func (suite *CommandTestSuite) TestHashSecret() {
	out, err := suite.run("", "hash-secret", "--cost", "4", "290587")
	suite.Require().NoError(err)
	hashed := strings.TrimSpace(out)
	assert.NoError(suite.T(), bcrypt.CompareHashAndPassword([]byte(hashed), []byte("290587")))

	out, err = suite.run("s3cr3t+/=\n", "hash-secret", "--cost", "4")
	suite.Require().NoError(err)
	assert.NoError(suite.T(), bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("s3cr3t+/=")))
}

func (suite *CommandTestSuite) TestHashSecretErrors() {
	_, err := suite.run("", "hash-secret", "--cost", "99", "x")
	assert.ErrorContains(suite.T(), err, "cost must be between")

	_, err = suite.run("", "hash-secret", "--cost", "4")
	assert.ErrorContains(suite.T(), err, "no secret given")
}

func (suite *CommandTestSuite) TestResolveHome() {
	suite.T().Setenv(constants.ServerHomeEnvironmentVariable, "/srv/authserver")

	home, err := resolveHome("/opt/authserver")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "/opt/authserver", home)

	home, err = resolveHome("")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "/srv/authserver", home)

	suite.T().Setenv(constants.ServerHomeEnvironmentVariable, "")
	wd, err := os.Getwd()
	suite.Require().NoError(err)
	home, err = resolveHome("")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), wd, home)
}

func (suite *CommandTestSuite) TestCreateServerHTTPOnly() {
	cfg := &config.Config{Server: config.ServerConfig{Hostname: "127.0.0.1", Port: 0, HTTPOnly: true}}

	server, ln, err := createServer(cfg, suite.home, http.NotFoundHandler())
	suite.Require().NoError(err)
	defer func() { _ = ln.Close() }()

	assert.NotEmpty(suite.T(), ln.Addr().String())
	assert.Equal(suite.T(), "127.0.0.1:0", server.Addr)
}

func (suite *CommandTestSuite) TestCreateServerTLSWithoutCertificate() {
	cfg := &config.Config{Server: config.ServerConfig{Hostname: "127.0.0.1", Port: 0}}

	_, _, err := createServer(cfg, suite.home, http.NotFoundHandler())

	assert.ErrorContains(suite.T(), err, "failed to load TLS configuration")
}

func (suite *CommandTestSuite) TestInitServerConfigurations() {
	suite.T().Setenv("TEST_AUTH_ISSUER", "algafood-auth")
	confDir := filepath.Join(suite.home, "repository", "conf")
	suite.Require().NoError(os.MkdirAll(confDir, 0o750))
	suite.Require().NoError(os.WriteFile(filepath.Join(confDir, "deployment.yaml"),
		[]byte("server:\n  port: 8081\noauth:\n  issuer: \"${TEST_AUTH_ISSUER}\"\n"), 0o600))
	config.ResetServerRuntime()
	defer config.ResetServerRuntime()

	cfg, err := initServerConfigurations(nopLogger(), &rootOptions{home: suite.home,
		configFile: constants.DefaultConfigFile})

	suite.Require().NoError(err)
	assert.Equal(suite.T(), 8081, cfg.Server.Port)
	assert.Equal(suite.T(), "algafood-auth", cfg.OAuth.Issuer)
	assert.Equal(suite.T(), suite.home, config.GetServerRuntime().ServerHome)
}

func (suite *CommandTestSuite) TestRunServeReleasesResourcesOnStartupFailure() {
	_, err := suite.run("", "keys", "generate", "--alg", "ES256")
	suite.Require().NoError(err)

	confDir := filepath.Join(suite.home, "repository", "conf")
	suite.Require().NoError(os.MkdirAll(confDir, 0o750))
	deployment := `server:
  hostname: "127.0.0.1"
  port: 0
security:
  signing:
    algorithm: "ES256"
    active_kid: "algafood"
    keys:
      - kid: "algafood"
        private_key_file: "repository/resources/security/signing.key"
        public_key_file: "repository/resources/security/signing.pub"
database:
  identity:
    type: "sqlite"
    path: "identity.db"
cache:
  type: "memory"
oauth:
  issuer: "algafood-auth"
tracing:
  enabled: true
  otlp_endpoint: "127.0.0.1:4318"
  insecure: true
`
	suite.Require().NoError(os.WriteFile(filepath.Join(confDir, "deployment.yaml"), []byte(deployment), 0o600))
	config.ResetServerRuntime()
	defer config.ResetServerRuntime()

	// TLS is on and no certificate exists, so the listener cannot be created.
	err = runServe(context.Background(), &rootOptions{home: suite.home, configFile: constants.DefaultConfigFile})

	suite.Require().Error(err)
	assert.Contains(suite.T(), err.Error(), "failed to load TLS configuration")

	// The global tracer provider was shut down, so it hands out non-recording spans.
	_, span := otel.Tracer("startup-failure").Start(context.Background(), "after-startup-failure")
	defer span.End()
	assert.False(suite.T(), span.IsRecording())
}

func (suite *CommandTestSuite) TestReleaseSkipsMissingResources() {
	assert.NoError(suite.T(), release(context.Background(), nil, nil))

	tp := sdktrace.NewTracerProvider()
	suite.Require().NoError(release(context.Background(), tp, nil))

	_, span := tp.Tracer("released").Start(context.Background(), "after-release")
	defer span.End()
	assert.False(suite.T(), span.IsRecording())
}
