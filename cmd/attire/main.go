package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kjstillabower/attire-decider/internal/cache"
	"github.com/kjstillabower/attire-decider/internal/client"
	"github.com/kjstillabower/attire-decider/internal/config"
	"github.com/kjstillabower/attire-decider/internal/extract"
	"github.com/kjstillabower/attire-decider/internal/observability"
	"github.com/kjstillabower/attire-decider/internal/report"
	"github.com/kjstillabower/attire-decider/internal/service"
)

func main() {
	dotenvErr := godotenv.Load()

	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	if dotenvErr != nil {
		logger.Debug("no .env file, using process environment")
	}

	err = func() error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		return run(context.Background(), cfg, os.Args[1:], os.Stdout, logger)
	}()
	if err != nil {
		logger.Error("attire failed", zap.Error(err))
	}
	_ = observability.FlushTelemetry(context.Background(), logger)
	if err != nil {
		os.Exit(1)
	}
}

// run decides attire for args and writes the report to out. The record store is closed
// before run returns, on every path.
func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer, logger *zap.Logger) error {
	inv, err := parseArgs(args, cfg.Thresholds)
	if err != nil {
		return fmt.Errorf("arguments: %w", err)
	}
	if err := inv.Thresholds.Validate(); err != nil {
		logger.Warn("thresholds out of order, using as given", zap.Any("thresholds", inv.Thresholds), zap.Error(err))
	}
	if inv.Custom {
		if err := report.Thresholds(out, inv.Thresholds); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	store, err := cache.Open(cache.Options{
		Backend:               cfg.CacheBackend,
		Dir:                   cfg.CacheDir,
		SQLitePath:            cfg.SQLitePath,
		MemcachedAddrs:        cfg.MemcachedAddrs,
		MemcachedTimeout:      cfg.MemcachedTimeout,
		MemcachedMaxIdleConns: cfg.MemcachedMaxIdleConns,
		MemcachedRetention:    cfg.MemcachedRetention,
	})
	if err != nil {
		return fmt.Errorf("record store %s: %w", cfg.CacheBackend, err)
	}
	defer func() {
		if err := cache.Close(store); err != nil {
			logger.Warn("close record store", zap.Error(err))
		}
	}()

	pageClient, err := client.NewPageClient(cfg.WeatherPageURL, cfg.WeatherPageTimeout)
	if err != nil {
		return fmt.Errorf("page client: %w", err)
	}
	svc := service.NewAdviceService(pageClient, extract.WundergroundParser{}, store, cfg.FreshnessWindow, logger)

	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	result, err := svc.Advise(ctx, inv.Zip, inv.Thresholds)
	if err != nil {
		return fmt.Errorf("advice for %s: %w", inv.Zip, err)
	}
	if err := report.Write(out, result.Record, result.Recommendation); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
