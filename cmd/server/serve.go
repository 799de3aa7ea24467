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

package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"github.com/algafood/authserver/internal/system/cert"
	"github.com/algafood/authserver/internal/system/config"
	"github.com/algafood/authserver/internal/system/log"
	"github.com/algafood/authserver/internal/system/managers"
	"github.com/algafood/authserver/internal/system/tracing"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the authorization server (default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

// runServe loads the configuration, wires the services and serves until SIGINT or SIGTERM.
func runServe(parent context.Context, opts *rootOptions) (err error) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.GetLogger()
	defer logger.Sync()

	var (
		tp         *sdktrace.TracerProvider
		components *managers.Components
	)
	// Runs after the server has stopped, or on any startup failure.
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if releaseErr := release(releaseCtx, tp, components); releaseErr != nil {
			logger.Error("Failed to release server resources", log.Error(releaseErr))
			err = errors.Join(err, releaseErr)
		}
	}()

	cfg, err := initServerConfigurations(logger, opts)
	if err != nil {
		return err
	}

	tp, err = tracing.NewTracerProvider(ctx, cfg.Tracing)
	if err != nil {
		return err
	}

	components, err = managers.NewComponents(ctx, opts.home, cfg)
	if err != nil {
		return err
	}

	router := managers.NewRouter(logger, cfg.Server.TrustProxyHeaders)
	if err := managers.NewServiceManager(router, components).RegisterServices(); err != nil {
		return fmt.Errorf("failed to register the services: %w", err)
	}

	server, ln, err := createServer(cfg, opts.home, router)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Authorization server started", log.String("address", ln.Addr().String()),
			log.Bool("tls", !cfg.Server.HTTPOnly))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve requests: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down authorization server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Authorization server stopped with error", log.Error(err))
		return err
	}
	logger.Info("Authorization server stopped")
	return nil
}

// release flushes the tracer provider and closes the components. Either may be nil when startup
// stopped before it was created.
func release(ctx context.Context, tp *sdktrace.TracerProvider, components *managers.Components) error {
	var errs []error
	if tp != nil {
		errs = append(errs, tp.Shutdown(ctx))
	}
	if components != nil {
		errs = append(errs, components.Close())
	}
	return errors.Join(errs...)
}

// initServerConfigurations loads the configuration file and initializes the runtime.
func initServerConfigurations(logger *log.Logger, opts *rootOptions) (*config.Config, error) {
	configFilePath := opts.configFile
	if !filepath.IsAbs(configFilePath) {
		configFilePath = filepath.Join(opts.home, configFilePath)
	}

	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configurations: %w", err)
	}
	if err := config.InitializeServerRuntime(opts.home, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize server runtime: %w", err)
	}

	logger.Debug("Configurations loaded", log.String("path", configFilePath),
		log.String("serverHome", opts.home))
	return cfg, nil
}

// createServer creates the HTTP server and its listener, wrapping the listener in TLS unless the
// server runs in HTTP only mode.
func createServer(cfg *config.Config, serverHome string, handler http.Handler) (*http.Server, net.Listener, error) {
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Server.Port)

	server := &http.Server{
		Addr:              serverAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if cfg.Server.HTTPOnly {
		ln, err := net.Listen("tcp", serverAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start listener: %w", err)
		}
		return server, ln, nil
	}

	tlsConfig, err := cert.GetTLSConfig(cfg.Security, serverHome)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load TLS configuration: %w", err)
	}
	ln, err := tls.Listen("tcp", serverAddr, tlsConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start TLS listener: %w", err)
	}
	return server, ln, nil
}
