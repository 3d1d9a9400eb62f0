package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rezkam/almanac/internal/calendar"
	"github.com/rezkam/almanac/internal/config"
	apihttp "github.com/rezkam/almanac/internal/infrastructure/http"
	"github.com/rezkam/almanac/internal/infrastructure/http/handler"
	"github.com/rezkam/almanac/pkg/observability"
)

func main() {
	if err := run(); err != nil {
		// slog may not be initialized if config loading fails, print to stderr
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Root context for all normal operations, cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Configuration via OTEL_* env vars (endpoint, headers, resource attributes)
	lp, logger, err := observability.InitLogger(ctx, cfg.Observability.ServiceName, cfg.Observability.OTelEnabled)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() {
		// Use a timeout to prevent hanging if collector is unreachable
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lp.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "failed to shutdown logger provider", "error", err)
		}
	}()
	slog.SetDefault(logger)

	slog.InfoContext(ctx, "starting almanac service",
		"recurrence_horizon_years", cfg.Engine.RecurrenceHorizonYears)

	manager := calendar.NewManager(calendar.Config{
		HorizonYears: cfg.Engine.RecurrenceHorizonYears,
	})

	server := apihttp.NewAPIServer(handler.NewRouter(manager), cfg.HTTP)

	errResult := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errResult <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutting down")

		// Fresh context for shutdown, the main one is already cancelled
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.WarnContext(shutdownCtx, "HTTP server shutdown timed out", "error", err)
			return err
		}

		slog.InfoContext(shutdownCtx, "HTTP server shutdown complete")
		return nil
	case err := <-errResult:
		return err
	}
}
