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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/algafood/authserver/internal/system/jwt"
)

const defaultKeyDir = "repository/resources/security"

type keysGenerateOptions struct {
	algorithm string
	dir       string
	name      string
	force     bool
}

func newKeysCommand(opts *rootOptions) *cobra.Command {
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage token signing keys",
	}

	genOpts := &keysGenerateOptions{}
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a signing key pair as PEM files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := genOpts.dir
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(opts.home, dir)
			}
			return generateKeyPair(cmd, genOpts, dir)
		},
	}
	generateCmd.Flags().StringVar(&genOpts.algorithm, "alg", "RS256",
		"Signing algorithm: RS256|RS384|RS512|PS256|ES256|ES384")
	generateCmd.Flags().StringVar(&genOpts.dir, "out", defaultKeyDir,
		"Output directory, relative to the home directory")
	generateCmd.Flags().StringVar(&genOpts.name, "name", "signing",
		"File name prefix for <name>.key and <name>.pub")
	generateCmd.Flags().BoolVar(&genOpts.force, "force", false, "Overwrite existing key files")

	keysCmd.AddCommand(generateCmd)
	return keysCmd
}

// generateKeyPair writes <name>.key (PKCS8) and <name>.pub (PKIX) and prints the key thumbprint,
// which can serve as the kid.
func generateKeyPair(cmd *cobra.Command, opts *keysGenerateOptions, dir string) error {
	privatePath := filepath.Join(dir, opts.name+".key")
	publicPath := filepath.Join(dir, opts.name+".pub")
	if !opts.force {
		for _, p := range []string{privatePath, publicPath} {
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", p)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return err
			}
		}
	}

	key, err := jwt.GenerateKey(opts.algorithm)
	if err != nil {
		return err
	}
	privatePEM, err := jwt.EncodePrivateKeyPEM(key)
	if err != nil {
		return fmt.Errorf("failed to encode private key: %w", err)
	}
	publicPEM, err := jwt.EncodePublicKeyPEM(key.Public())
	if err != nil {
		return fmt.Errorf("failed to encode public key: %w", err)
	}
	kid, err := jwt.Thumbprint(key.Public())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := os.WriteFile(privatePath, privatePEM, 0o600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(publicPath, publicPEM, 0o644); err != nil { // #nosec G306
		return fmt.Errorf("failed to write public key: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "private key: %s\n", privatePath)
	_, _ = fmt.Fprintf(out, "public key:  %s\n", publicPath)
	_, _ = fmt.Fprintf(out, "algorithm:   %s\n", opts.algorithm)
	_, _ = fmt.Fprintf(out, "thumbprint:  %s\n", kid)
	return nil
}
