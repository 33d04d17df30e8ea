package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/attire-decider/internal/advice"
	"github.com/kjstillabower/attire-decider/internal/lifecycle"
	"github.com/kjstillabower/attire-decider/internal/observability"
	"github.com/kjstillabower/attire-decider/internal/service"
	"github.com/kjstillabower/attire-decider/internal/validation"
)

// Advisor produces a recommendation for a location. Implemented by *service.AdviceService.
type Advisor interface {
	Advise(ctx context.Context, location string, thresholds advice.Thresholds) (service.Result, error)
}

// HealthConfig holds the inputs for the health handler.
type HealthConfig struct {
	State *lifecycle.State
	// Backend names the record store in health output.
	Backend string
	// StorePing, when set, is called to check store reachability.
	StorePing func() error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	advisor          Advisor
	thresholds       advice.Thresholds
	healthConfig     *HealthConfig
	logger           *zap.Logger
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler. thresholds apply when a request does not supply both
// cold and warm.
func NewHandler(advisor Advisor, thresholds advice.Thresholds, healthConfig *HealthConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		advisor:      advisor,
		thresholds:   thresholds,
		healthConfig: healthConfig,
		logger:       logger,
	}
}

type adviceResponse struct {
	Location string `json:"location"`
	service.Result
	Custom  bool   `json:"customThresholds"`
	Warning string `json:"warning,omitempty"`
}

// GetAdvice handles GET /advice/{zip}?cold=&warm=. Custom thresholds are derived only when
// both cold and warm are present; otherwise the configured thresholds apply.
func (h *Handler) GetAdvice(w http.ResponseWriter, r *http.Request) {
	zip, err := validation.ValidatePostalCode(mux.Vars(r)["zip"])
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_LOCATION", err.Error())
		return
	}

	thresholds, custom, err := h.thresholdsFor(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_THRESHOLDS", err.Error())
		return
	}
	resp := adviceResponse{Custom: custom}
	if err := thresholds.Validate(); err != nil {
		requestLogger(r, h.logger).Warn("thresholds out of order, using as given",
			zap.Any("thresholds", thresholds), zap.Error(err))
		resp.Warning = err.Error()
	}

	result, err := h.advisor.Advise(r.Context(), zip, thresholds)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp.Location = result.Record.Location()
	resp.Result = result
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) thresholdsFor(r *http.Request) (advice.Thresholds, bool, error) {
	q := r.URL.Query()
	cold, warm := strings.TrimSpace(q.Get("cold")), strings.TrimSpace(q.Get("warm"))
	if cold == "" || warm == "" {
		return h.thresholds, false, nil
	}
	c, err := validation.ParseTemperature(cold)
	if err != nil {
		return advice.Thresholds{}, false, err
	}
	wm, err := validation.ParseTemperature(warm)
	if err != nil {
		return advice.Thresholds{}, false, err
	}
	return advice.Derive(c, wm), true, nil
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result, checks := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	now := time.Now()
	resp := map[string]interface{}{
		"status":    result.status,
		"service":   "attire-decider",
		"version":   "dev",
		"checks":    checks,
		"timestamp": now.UTC().Format(time.RFC3339),
	}
	if h.healthConfig != nil && h.healthConfig.State != nil {
		resp["uptime"] = h.healthConfig.State.Uptime(now).Round(time.Second).String()
	}
	writeJSON(w, result.statusCode, resp)
}

// computeHealthStatus evaluates conditions in priority order: shutting-down > store
// unreachable > healthy.
func (h *Handler) computeHealthStatus() (healthResult, map[string]string) {
	checks := make(map[string]string)
	if h.healthConfig == nil {
		return healthResult{"healthy", http.StatusOK, ""}, checks
	}
	if h.healthConfig.State != nil && h.healthConfig.State.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}, checks
	}
	name := h.healthConfig.Backend
	if name == "" {
		name = "store"
	}
	if h.healthConfig.StorePing != nil {
		if err := h.healthConfig.StorePing(); err != nil {
			checks[name] = "unhealthy"
			return healthResult{"degraded", http.StatusServiceUnavailable, "store_unreachable"}, checks
		}
	}
	checks[name] = "healthy"
	return healthResult{"healthy", http.StatusOK, ""}, checks
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code, message,
// and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID, _ := r.Context().Value("correlation_id").(string)
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}

// writeServiceError categorizes err, counts it and writes the matching status.
// The underlying error is logged at DEBUG; clients see only the code.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	category := CategorizeError(err)
	observability.AdviceErrorsTotal.WithLabelValues(string(category)).Inc()
	status, code := errorResponse(category)
	writeError(w, r, status, code, "Unable to produce advice")
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
		logger.Debug("advice error", zap.String("category", string(category)), zap.Error(err))
	}
}

// requestLogger returns the request-scoped logger set by CorrelationIDMiddleware, or fallback.
func requestLogger(r *http.Request, fallback *zap.Logger) *zap.Logger {
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
		return logger
	}
	return fallback
}
