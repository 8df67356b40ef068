// Package main is the entry point for the ksbridge tool server.
// It wires all dependencies together and starts the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/trustgate/ksbridge/internal/cckm"
	"github.com/trustgate/ksbridge/internal/cckm/aws"
	"github.com/trustgate/ksbridge/internal/cckm/google"
	"github.com/trustgate/ksbridge/internal/cckm/oci"
	"github.com/trustgate/ksbridge/internal/config"
	"github.com/trustgate/ksbridge/internal/ksctl"
	"github.com/trustgate/ksbridge/internal/observability"
	"github.com/trustgate/ksbridge/internal/tools"
	"github.com/trustgate/ksbridge/internal/tools/cluster"
	"github.com/trustgate/ksbridge/internal/tools/services"
	"github.com/trustgate/ksbridge/internal/transport"
)

// Build-time variables set via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc1234"
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	observability.Version = version
	observability.Commit = commit

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	tracingShutdown, err := observability.InitTracing(ctx, cfg.Observability.Tracing, "ksbridge", version)
	if err != nil {
		logger.Error("tracing initialization failed", zap.Error(err))
		return 1
	}

	var metrics *observability.Metrics
	if cfg.Observability.Metrics.Enabled {
		metrics = observability.InitMetrics(prometheus.DefaultRegisterer)
	}

	// ksctl execution stack: settings → CLI executor → domain-scoped runner.
	settings := ksctl.NewSettings(
		cfg.Ksctl.Binary,
		cfg.Ksctl.URL,
		cfg.Ksctl.User,
		cfg.Ksctl.Password(),
		cfg.Ksctl.Domain,
		cfg.Ksctl.AuthDomain,
		cfg.Ksctl.Timeout,
	)
	settings.NoSSLVerify = cfg.Ksctl.NoSSLVerify

	var recorder ksctl.MetricsRecorder
	if metrics != nil {
		recorder = metrics
	}
	cli := ksctl.NewCLI(settings, logger, recorder)
	runner := ksctl.NewRunner(cli, settings, recorder)

	// Tool registry: the multi-provider CCKM dispatcher plus the
	// global-scoped administrative tools.
	cckmTool := cckm.NewRegistry(logger,
		aws.NewDispatcher(runner),
		oci.NewDispatcher(runner),
		google.NewDispatcher(runner),
	)
	registry := tools.NewRegistry(
		cckmTool,
		cluster.NewTool(runner),
		services.NewTool(runner),
	)

	// Authentication is optional; local agent deployments bind loopback
	// and run open.
	var authenticate func(http.Handler) http.Handler
	if cfg.Identity.Enabled {
		jwks := transport.NewJWKSClient(cfg.Identity.JWKSURL, cfg.Identity.JWKSCacheTTL, logger)
		authenticate = transport.JWTAuthenticator(cfg.Identity, jwks)
	}

	descriptors := registry.Descriptors()
	router := transport.NewRouter(transport.Dependencies{
		Config:       cfg,
		Logger:       logger,
		Metrics:      metrics,
		Tools:        registry,
		Authenticate: authenticate,
		Ready: observability.ReadinessChecks{
			ToolsLoaded: func() bool { return len(descriptors) > 0 },
			Ksctl:       cli,
		},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("server started",
		zap.Int("port", cfg.Server.Port),
		zap.String("version", version),
		zap.String("commit", commit),
		zap.Int("tools", len(descriptors)),
		zap.String("ksctl_url", cfg.Ksctl.URL),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info("shutdown initiated")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		return 1
	}

	// Graceful shutdown sequence.
	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Stop accepting new connections and drain in-flight requests. Tool
	// executions already running hold the ksctl subprocess until their
	// own context deadline.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := tracingShutdown(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return 0
}
