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

// Package main is the entry point for the algafood authorization server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/algafood/authserver/internal/system/config"
	"github.com/algafood/authserver/internal/system/constants"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	home       string
	configFile string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "authserver",
		Short:         "OAuth 2.0 authorization server for the algafood API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			home, err := resolveHome(opts.home)
			if err != nil {
				return err
			}
			opts.home = home
			// .env must be loaded before the logger reads LOG_LEVEL.
			return config.LoadEnv(home)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.home, "home", "",
		"Server home directory (env "+constants.ServerHomeEnvironmentVariable+", default: working directory)")
	root.PersistentFlags().StringVar(&opts.configFile, "config", constants.DefaultConfigFile,
		"Configuration file, relative to the home directory")

	root.AddCommand(newServeCommand(opts), newKeysCommand(opts), newHashSecretCommand())
	return root
}

// resolveHome picks the flag value, then the environment, then the working directory.
func resolveHome(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv(constants.ServerHomeEnvironmentVariable); env != "" {
		return env, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}
	return dir, nil
}
