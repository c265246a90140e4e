package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/minutegen/internal/drive"
	"github.com/teemow/minutegen/internal/instrumentation"
	"github.com/teemow/minutegen/internal/logging"
	"github.com/teemow/minutegen/internal/server"
)

func newServeCmd() *cobra.Command {
	var listenAddr string
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the application HTTP server.

The server hosts the Google OAuth callback, a JSON API for authorization
and Drive browsing, and the pipeline endpoint that streams progress updates
while a recording is transcribed and summarized. Prometheus metrics are
served on a dedicated port.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), listenAddr, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address for the application server. Defaults to LISTEN_ADDR.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Listen address for the metrics server. Defaults to METRICS_ADDR.")

	return cmd
}

func runServe(ctx context.Context, listenAddr, metricsAddr string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if listenAddr == "" {
		listenAddr = cfg.ListenAddr
	}
	if metricsAddr == "" {
		metricsAddr = cfg.MetricsAddr
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := instrumentation.NewProvider(shutdownCtx, instrumentation.ConfigFromEnv(version))
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	authorizer, err := newAuthorizer(cfg, logger)
	if err != nil {
		return err
	}
	authorizer.SetRefreshRecorder(provider.Metrics())

	session := drive.NewSession(authorizer, logger)
	orchestrator, err := newOrchestrator(shutdownCtx, cfg, session, provider.Metrics(), logger)
	if err != nil {
		return err
	}

	appServer := server.New(authorizer, session, orchestrator, provider.Metrics(), logger)

	errCh := make(chan error, 2)

	if provider.Enabled() {
		metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsAddr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server failed: %w", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	go func() {
		if err := appServer.Start(listenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("application server failed: %w", err)
		}
	}()

	logger.Info("server started",
		"addr", listenAddr,
		"base_url", cfg.BaseURL,
		"version", version)

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer stopCancel()
	if err := appServer.Shutdown(stopCtx); err != nil {
		return fmt.Errorf("application server shutdown failed: %w", err)
	}
	return nil
}
