package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JonMunkholm/csvgrid/internal/config"
	"github.com/JonMunkholm/csvgrid/internal/core"
	"github.com/JonMunkholm/csvgrid/internal/fetch"
	"github.com/JonMunkholm/csvgrid/internal/logging"
	"github.com/JonMunkholm/csvgrid/internal/metrics"
	"github.com/JonMunkholm/csvgrid/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"fetch_max_bytes", cfg.Fetch.MaxBytes,
		"proxy_prefix", cfg.Fetch.ProxyPrefix,
		"grid_max_concurrent", cfg.Grid.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("configuration", "config", cfg.String())

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	fetcher := fetch.New(fetch.Options{
		MaxBytes:      cfg.Fetch.MaxBytes,
		Timeout:       cfg.Fetch.Timeout,
		UserAgent:     cfg.Fetch.UserAgent,
		RatePerSecond: cfg.Fetch.RatePerSecond,
	})

	service := core.NewService(fetcher, core.Options{
		CacheMaxEntries: cfg.Cache.MaxEntries,
		MaxConcurrent:   cfg.Grid.MaxConcurrent,
		MaxWait:         cfg.Grid.MaxWaitTime,
		ViewTTL:         cfg.Grid.ViewTTL,
		LoadTimeout:     cfg.Grid.LoadTimeout,
		Metrics:         metrics.New(reg),
	})

	server := web.NewServer(service, cfg, reg)

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if n := service.ActiveViews(); n > 0 {
			slog.Info("waiting for views to finish", "active", n)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
