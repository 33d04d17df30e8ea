package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/attire-decider/internal/observability"
)

// RouterConfig holds the middleware settings for the advice routes.
type RouterConfig struct {
	// Limiter throttles /advice; nil disables rate limiting.
	Limiter        *rate.Limiter
	RequestTimeout time.Duration
}

// NewRouter wires /health, /metrics and /advice/{zip} behind the correlation-ID and metrics
// middleware. Rate limiting and the request deadline apply to /advice only.
func NewRouter(h *Handler, cfg RouterConfig, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler())

	adviceRouter := router.PathPrefix("/advice").Subrouter()
	adviceRouter.Use(RateLimitMiddleware(cfg.Limiter))
	if cfg.RequestTimeout > 0 {
		adviceRouter.Use(TimeoutMiddleware(cfg.RequestTimeout))
	}
	adviceRouter.HandleFunc("/{zip}", h.GetAdvice).Methods(http.MethodGet)
	return router
}
