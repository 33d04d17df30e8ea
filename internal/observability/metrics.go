package observability

import (
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// Weather page fetches by status. Watch for: error vs success ratio.
	PageFetchCallsTotal *prometheus.CounterVec

	// Weather page latency. The page is large HTML; p95 > 5s means the source is struggling.
	PageFetchDuration *prometheus.HistogramVec

	// Cache lookups by outcome: hit, miss, stale, mismatch. Every non-hit triggers a refresh.
	CacheLookupsTotal *prometheus.CounterVec

	// Failed refreshes. Any increase means users are getting errors, never stale data.
	RefreshFailuresTotal prometheus.Counter

	// Record store latency by operation (read, write) and result.
	StoreOperationDurationSeconds *prometheus.HistogramVec

	// Record store errors by operation.
	StoreErrorsTotal *prometheus.CounterVec

	// Advisory bands served.
	AdviceBandsTotal *prometheus.CounterVec

	// Total advice lookups.
	AdviceQueriesTotal prometheus.Counter

	// Per-location advice count (allow-list; others go to "other").
	AdviceQueriesByLocationTotal *prometheus.CounterVec

	// Failed advice requests by error category.
	AdviceErrorsTotal *prometheus.CounterVec

	// Rate limit denials.
	RateLimitDeniedTotal prometheus.Counter

	trackedLocationsMu sync.RWMutex
	trackedLocations   map[string]struct{}
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	PageFetchCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pageFetchCallsTotal",
			Help: "Total number of weather page fetches",
		},
		[]string{"status"},
	)
	PageFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pageFetchDurationSeconds",
			Help:    "Weather page fetch latency in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheLookupsTotal",
			Help: "Cached record lookups by outcome (hit, miss, stale, mismatch)",
		},
		[]string{"outcome"},
	)
	RefreshFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "refreshFailuresTotal",
			Help: "Total number of failed fetch-extract-persist cycles",
		},
	)
	StoreOperationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storeOperationDurationSeconds",
			Help:    "Record store operation latency in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"operation", "result"},
	)
	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storeErrorsTotal",
			Help: "Record store errors by operation",
		},
		[]string{"operation"},
	)
	AdviceBandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adviceBandsTotal",
			Help: "Advisory bands served",
		},
		[]string{"band"},
	)
	AdviceQueriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adviceQueriesTotal",
			Help: "Total number of advice lookups",
		},
	)
	AdviceQueriesByLocationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adviceQueriesByLocationTotal",
			Help: "Advice lookups by location (allow-list; others use location=other)",
		},
		[]string{"location"},
	)
	AdviceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adviceErrorsTotal",
			Help: "Failed advice lookups by error category",
		},
		[]string{"category"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		PageFetchCallsTotal, PageFetchDuration,
		CacheLookupsTotal, RefreshFailuresTotal,
		StoreOperationDurationSeconds, StoreErrorsTotal,
		AdviceBandsTotal, AdviceQueriesTotal, AdviceQueriesByLocationTotal, AdviceErrorsTotal,
		RateLimitDeniedTotal,
	)
}

// SetTrackedLocations sets the allow-list for location metrics. Non-tracked locations increment "other".
func SetTrackedLocations(locations []string) {
	trackedLocationsMu.Lock()
	defer trackedLocationsMu.Unlock()
	trackedLocations = make(map[string]struct{}, len(locations))
	for _, loc := range locations {
		trackedLocations[strings.TrimSpace(loc)] = struct{}{}
	}
}

// MetricLocationLabel returns location if it is tracked, otherwise "other".
func MetricLocationLabel(location string) string {
	loc := strings.TrimSpace(location)
	trackedLocationsMu.RLock()
	_, ok := trackedLocations[loc] // nil map read is safe in Go
	trackedLocationsMu.RUnlock()
	if ok {
		return loc
	}
	return "other"
}

// RecordAdviceQuery records an advice lookup for the given location key.
func RecordAdviceQuery(location string) {
	AdviceQueriesTotal.Inc()
	AdviceQueriesByLocationTotal.WithLabelValues(MetricLocationLabel(location)).Inc()
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
