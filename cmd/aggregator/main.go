package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tokenpulse/tokenpulse/internal/cache"
	"github.com/tokenpulse/tokenpulse/internal/config"
	"github.com/tokenpulse/tokenpulse/internal/fetch"
	"github.com/tokenpulse/tokenpulse/internal/gateway"
	"github.com/tokenpulse/tokenpulse/internal/query"
	"github.com/tokenpulse/tokenpulse/internal/scheduler"
	"github.com/tokenpulse/tokenpulse/internal/server"
	"github.com/tokenpulse/tokenpulse/internal/version"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "configs/aggregator.local.yaml", "path to config file")
	flag.Parse()

	// Load configuration first so logging honors the configured level
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Logging.Level),
	}))
	slog.SetDefault(logger)

	logger.Info("starting aggregator",
		"version", version.Version,
		"commit", version.Commit,
		"instance_id", cfg.Instance.ID,
		"config", *configPath,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to the cache store
	logger.Info("connecting to redis", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)

	store, err := cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	logger.Info("redis connected")

	// Create the upstream fetch stack
	client := fetch.NewClient(
		cfg.Sources.APIKey,
		fetch.WithLogger(logger),
		fetch.WithTimeout(cfg.Sources.Timeout),
		fetch.WithRetries(cfg.Sources.MaxRetries, time.Second),
	)
	sources := fetch.NewSources(client, cfg.Sources.DexScreenerURL, cfg.Sources.JupiterURL)

	// Start the broadcast gateway before any publisher runs
	gw := gateway.New(gateway.DefaultConfig(), store, logger)
	if err := gw.Start(ctx); err != nil {
		logger.Error("failed to start gateway", "error", err)
		os.Exit(1)
	}

	// Aggregation runner first so the catalog seeds immediately
	aggregate := scheduler.NewAggregateJob(scheduler.AggregateConfig{
		Symbols:     cfg.Symbols,
		Concurrency: cfg.Scheduler.Concurrency,
	}, sources, store, logger)
	aggregateRunner := scheduler.NewRunner(aggregate, cfg.Scheduler.AggregateInterval, logger)
	if err := aggregateRunner.Start(ctx); err != nil {
		logger.Error("failed to start aggregation runner", "error", err)
		os.Exit(1)
	}

	ticker := scheduler.NewTickerJob(scheduler.TickerConfig{
		Symbols:   cfg.RealtimeSymbols(),
		Threshold: cfg.Scheduler.TickerThreshold,
	}, sources, store, logger)
	tickerRunner := scheduler.NewRunner(ticker, cfg.Scheduler.TickerInterval, logger)
	if err := tickerRunner.Start(ctx); err != nil {
		logger.Error("failed to start ticker runner", "error", err)
		os.Exit(1)
	}

	// HTTP surface
	queries := query.New(store, logger)
	srv := server.New(cfg.Server.Port, store, queries, gw, logger)

	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	logger.Info("aggregator running",
		"instance_id", cfg.Instance.ID,
		"port", cfg.Server.Port,
		"symbols", len(cfg.Symbols),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := tickerRunner.Stop(shutdownCtx); err != nil {
		logger.Error("ticker runner stop error", "error", err)
	}
	if err := aggregateRunner.Stop(shutdownCtx); err != nil {
		logger.Error("aggregation runner stop error", "error", err)
	}
	if err := gw.Stop(shutdownCtx); err != nil {
		logger.Error("gateway stop error", "error", err)
	}

	logger.Info("aggregator stopped")
}

// logLevel maps the configured level name to a slog level.
func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
