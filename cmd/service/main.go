package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/attire-decider/internal/cache"
	"github.com/kjstillabower/attire-decider/internal/client"
	"github.com/kjstillabower/attire-decider/internal/config"
	"github.com/kjstillabower/attire-decider/internal/extract"
	httphandler "github.com/kjstillabower/attire-decider/internal/http"
	"github.com/kjstillabower/attire-decider/internal/lifecycle"
	"github.com/kjstillabower/attire-decider/internal/observability"
	"github.com/kjstillabower/attire-decider/internal/service"
)

func main() {
	dotenvErr := godotenv.Load()

	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	if dotenvErr != nil {
		logger.Info("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		logger.Warn("configured thresholds out of order, using as given", zap.Any("thresholds", cfg.Thresholds), zap.Error(err))
	}

	pageClient, err := client.NewPageClient(cfg.WeatherPageURL, cfg.WeatherPageTimeout)
	if err != nil {
		logger.Fatal("page client", zap.Error(err))
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
		logger.Fatal("record store", zap.String("backend", cfg.CacheBackend), zap.Error(err))
	}
	logger.Info("record store ready", zap.String("backend", cfg.CacheBackend))

	adviceService := service.NewAdviceService(pageClient, extract.WundergroundParser{}, store, cfg.FreshnessWindow, logger)

	state := lifecycle.New(time.Now())
	healthConfig := &httphandler.HealthConfig{
		State:     state,
		Backend:   cfg.CacheBackend,
		StorePing: func() error { return cache.Ping(store) },
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	if len(cfg.TrackedLocations) > 0 {
		observability.SetTrackedLocations(cfg.TrackedLocations)
	}

	handler := httphandler.NewHandler(adviceService, cfg.Thresholds, healthConfig, logger)
	router := httphandler.NewRouter(handler, httphandler.RouterConfig{
		Limiter:        limiter,
		RequestTimeout: cfg.RequestTimeout,
	}, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	state.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	logger.Info("waiting for in-flight requests", zap.Int64("count", httphandler.InFlightCount()))
	if err := httphandler.WaitForInFlight(shutdownCtx, 50*time.Millisecond); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := cache.Close(store); err != nil {
		logger.Error("record store close", zap.Error(err))
	}
	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
