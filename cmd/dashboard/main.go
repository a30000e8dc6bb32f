// Command dashboard serves the read-only weather dashboard over the
// forecast_data and alerts_data relations, plus /healthz, /readyz, and
// /metrics.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/weather-automation/internal/adapter/httpadapter"
	"github.com/couchcryptid/weather-automation/internal/config"
	"github.com/couchcryptid/weather-automation/internal/dashboard"
	"github.com/couchcryptid/weather-automation/internal/observability"
	"github.com/couchcryptid/weather-automation/internal/store"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.LoadDashboard()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	w, closer, err := observability.LogWriter(cfg.Logging)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer closer.Close() //nolint:errcheck // process exit

	logger := observability.NewLogger(cfg.Logging, w)
	slog.SetDefault(logger)
	metrics := observability.NewDashboardMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.OpenPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database pool", "error", err)
		os.Exit(1) //nolint:gocritic // nothing to clean up yet
	}
	defer pool.Close()

	// Shared Redis when configured, otherwise a per-process LRU.
	var backend store.Backend
	if cfg.RedisURL != "" {
		r, err := store.NewRedis(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1) //nolint:gocritic // pool close is best effort
		}
		defer r.Close() //nolint:errcheck // process exit
		backend = r
		logger.Info("query cache", "backend", "redis", "available", r.Available())
	} else {
		backend = store.NewMemory(cfg.CacheSize, clock)
		logger.Info("query cache", "backend", "memory", "size", cfg.CacheSize)
	}

	reader := store.NewCached(
		store.NewPostgres(pool, cfg.QueryTimeout, metrics, logger),
		backend,
		cfg.ForecastCacheTTL,
		cfg.AlertCacheTTL,
		metrics,
		logger,
	)
	svc := dashboard.NewService(reader, cfg.AlertWindow, clock, metrics, logger)
	handler := httpadapter.NewDashboardHandler(svc, clock, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger, handler.RegisterRoutes)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
