package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	storefront "github.com/eugener/storefront/internal"
	"github.com/eugener/storefront/internal/app"
	"github.com/eugener/storefront/internal/cache"
	"github.com/eugener/storefront/internal/config"
	"github.com/eugener/storefront/internal/ratelimit"
	"github.com/eugener/storefront/internal/server"
	"github.com/eugener/storefront/internal/storage/sqlite"
	"github.com/eugener/storefront/internal/telemetry"
	"github.com/eugener/storefront/internal/worker"
)

func run(configPath string) error {
	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(cfg.Log, os.Stderr))

	slog.Info("starting storefront", "version", version, "addr", cfg.Server.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Metrics
	var (
		metrics        *telemetry.Metrics
		metricsHandler http.Handler
		storeOpts      []sqlite.Option
	)
	if cfg.Telemetry.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = telemetry.NewMetrics(reg)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
		storeOpts = append(storeOpts, sqlite.WithQueryObserver(func(op string, d time.Duration) {
			metrics.DBQueryDuration.WithLabelValues(op).Observe(d.Seconds())
		}))
	}

	// Tracing
	if cfg.Telemetry.Tracing.Enabled {
		shutdown, err := telemetry.SetupTracing(ctx, telemetry.TracingOptions{
			Endpoint:   cfg.Telemetry.Tracing.Endpoint,
			SampleRate: cfg.Telemetry.Tracing.SampleRate,
			Version:    version,
		})
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				slog.Warn("tracing shutdown", "error", err)
			}
		}()
	}

	// Open database
	store, err := sqlite.New(cfg.Database.DSN, storeOpts...)
	if err != nil {
		return err
	}
	defer store.Close()

	// Bootstrap from config
	if err := config.Bootstrap(ctx, cfg, store); err != nil {
		return err
	}

	// Response cache
	respCache, err := newCache(cfg.Cache)
	if err != nil {
		return err
	}

	adminKey := cfg.Auth.AdminKey
	if adminKey == "" {
		adminKey = config.GenerateAdminKey()
		slog.Warn("no admin key configured, generated one for this process", "admin_key", adminKey)
	}

	var limiter *ratelimit.Registry
	if cfg.RateLimits.RPM > 0 {
		limiter = ratelimit.NewRegistry(cfg.RateLimits.RPM, nil)
	}

	// Wire services
	catalog := app.NewCatalogService(store)
	deps := server.Deps{
		Settings:       app.NewSettingsService(store, store),
		Catalog:        catalog,
		Sections:       app.NewSectionService(store, catalog),
		Cart:           app.NewCartService(store),
		Addresses:      app.NewAddressService(store),
		Tickets:        app.NewTicketService(store),
		FAQs:           app.NewFAQService(store),
		DefaultTTL:     cfg.Cache.DefaultTTL,
		EndpointTTLs:   cfg.Cache.EndpointTTLs,
		AdminKeyHash:   storefront.HashKey(adminKey),
		RateLimiter:    limiter,
		ReadyCheck:     store.Ping,
		Metrics:        metrics,
		MetricsHandler: metricsHandler,
		Cache:          respCache,
	}

	// Background workers
	var workers []worker.Worker
	if respCache != nil {
		var (
			entries prometheus.Gauge
			swept   prometheus.Counter
		)
		if metrics != nil {
			entries, swept = metrics.CacheEntries, metrics.CacheSwept
		}
		workers = append(workers, worker.NewCacheSweeper(respCache, cfg.Cache.SweepInterval, entries, swept))
	}
	if limiter != nil {
		workers = append(workers, worker.NewLimiterJanitor(limiter))
	}
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()
	workerErr := make(chan error, 1)
	go func() {
		if err := worker.NewRunner(workers...).Run(workerCtx); err != nil {
			workerErr <- err
		}
	}()

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.New(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("storefront ready", "addr", cfg.Server.Addr, "cache", respCache != nil)

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		return err
	case err := <-workerErr:
		return err
	}

	// Shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	cancelWorkers()
	if respCache != nil {
		respCache.Purge(shutdownCtx)
	}

	slog.Info("storefront stopped")
	return nil
}

// newLogger builds the process logger from the log section.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// newCache returns the configured response cache, or nil when caching is off.
func newCache(cfg config.CacheConfig) (cache.Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	opts := cache.Options{
		MaxSize:       cfg.MaxSize,
		MaxTTL:        maxTTL(cfg),
		SweepInterval: cfg.SweepInterval,
	}
	switch cfg.Backend {
	case config.BackendGoCache:
		return cache.NewGoCache(opts), nil
	default:
		return cache.NewMemory(opts)
	}
}

// maxTTL is the longest lifetime any endpoint is configured for. The
// backend's own expiry is set to it so no configured TTL gets cut short.
func maxTTL(cfg config.CacheConfig) time.Duration {
	longest := cfg.DefaultTTL
	for _, d := range cfg.EndpointTTLs {
		longest = max(longest, d)
	}
	return longest
}
