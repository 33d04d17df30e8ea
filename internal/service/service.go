package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/attire-decider/internal/advice"
	"github.com/kjstillabower/attire-decider/internal/cache"
	"github.com/kjstillabower/attire-decider/internal/client"
	"github.com/kjstillabower/attire-decider/internal/extract"
	"github.com/kjstillabower/attire-decider/internal/models"
	"github.com/kjstillabower/attire-decider/internal/observability"
)

// ErrRefreshFailed is returned when a fetch-extract-persist cycle does not complete.
// The underlying cause is wrapped alongside it.
var ErrRefreshFailed = errors.New("refresh failed")

// ErrStore is returned when the record store fails a read or write.
var ErrStore = errors.New("record store failure")

// DefaultFreshnessWindow is how long a cached record is served before it is refetched.
const DefaultFreshnessWindow = 30 * time.Minute

// Lookup outcomes, also used as metric labels.
const (
	outcomeHit      = "hit"
	outcomeMiss     = "miss"
	outcomeStale    = "stale"
	outcomeMismatch = "mismatch"
)

// AdviceService owns the cached-record policy: it serves a stored record while it is fresh
// and for the requested location, and otherwise refetches the page, re-extracts it and
// overwrites the slot before answering.
type AdviceService struct {
	fetcher client.PageFetcher
	parser  extract.PageParser
	store   cache.Store
	window  time.Duration
	logger  *zap.Logger
	now     func() time.Time

	// mu serializes lookups so a slot has one writer at a time.
	mu sync.Mutex
}

// NewAdviceService creates an AdviceService. A window <= 0 uses DefaultFreshnessWindow;
// a nil logger discards output.
func NewAdviceService(fetcher client.PageFetcher, parser extract.PageParser, store cache.Store, window time.Duration, logger *zap.Logger) *AdviceService {
	if window <= 0 {
		window = DefaultFreshnessWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdviceService{
		fetcher: fetcher,
		parser:  parser,
		store:   store,
		window:  window,
		logger:  logger,
		now:     time.Now,
	}
}

// Result is a record together with the advice derived from it.
type Result struct {
	Record         models.WeatherRecord  `json:"record"`
	Recommendation advice.Recommendation `json:"recommendation"`
}

// loggerFromContext returns the request-scoped logger if present, else the service logger.
func (s *AdviceService) loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return s.logger
}

// Advise loads the record for location (refreshing it if needed) and classifies it.
func (s *AdviceService) Advise(ctx context.Context, location string, thresholds advice.Thresholds) (Result, error) {
	rec, err := s.LoadOrRefresh(ctx, location)
	if err != nil {
		return Result{}, err
	}
	observability.RecordAdviceQuery(rec.LocationKey)

	rcm := advice.Recommend(rec.Temperature, rec.Precipitation, rec.Sky, thresholds)
	observability.AdviceBandsTotal.WithLabelValues(rcm.Band.String()).Inc()
	s.loggerFromContext(ctx).Debug("advice served",
		zap.String("location", rec.LocationKey),
		zap.Float64("temperature", rec.Temperature),
		zap.Stringer("band", rcm.Band))
	return Result{Record: rec, Recommendation: rcm}, nil
}

// LoadOrRefresh returns the cached record for location, refreshing it first when there is
// no entry, when the entry belongs to another location, or when it is older than the
// freshness window. A failed refresh is an error; stale data is never returned.
func (s *AdviceService) LoadOrRefresh(ctx context.Context, location string) (models.WeatherRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeLocation(location)
	logger := s.loggerFromContext(ctx)

	blob, ok, err := s.read(ctx, key)
	if err != nil {
		return models.WeatherRecord{}, err
	}
	if !ok {
		observability.CacheLookupsTotal.WithLabelValues(outcomeMiss).Inc()
		logger.Debug("no cached record, fetching", zap.String("location", key))
		if blob, err = s.refreshAndRead(ctx, key); err != nil {
			return models.WeatherRecord{}, err
		}
	}

	report, err := extract.DecodeReport(blob)
	if err != nil {
		return models.WeatherRecord{}, fmt.Errorf("decode record for %s: %w", key, err)
	}
	captured, err := extract.ParseTime(report.Time)
	if err != nil {
		return models.WeatherRecord{}, fmt.Errorf("decode record for %s: %w", key, err)
	}

	if reason := s.staleness(report.Zip, key, captured); reason != "" {
		observability.CacheLookupsTotal.WithLabelValues(reason).Inc()
		logger.Debug("cached record unusable, fetching",
			zap.String("location", key),
			zap.String("reason", reason),
			zap.String("cached_location", report.Zip),
			zap.Time("captured_at", captured))
		if blob, err = s.refreshAndRead(ctx, key); err != nil {
			return models.WeatherRecord{}, err
		}
		if report, err = extract.DecodeReport(blob); err != nil {
			return models.WeatherRecord{}, fmt.Errorf("decode record for %s: %w", key, err)
		}
	} else if ok {
		observability.CacheLookupsTotal.WithLabelValues(outcomeHit).Inc()
		logger.Debug("cache hit", zap.String("location", key), zap.Time("captured_at", captured))
	}

	rec, err := extract.ParseRecord(report)
	if err != nil {
		return models.WeatherRecord{}, fmt.Errorf("decode record for %s: %w", key, err)
	}
	return rec, nil
}

// staleness returns the reason a cached record must be replaced, or "" if it can be served.
// A location mismatch wins over age.
func (s *AdviceService) staleness(cachedKey, key string, captured time.Time) string {
	if cachedKey != key {
		return outcomeMismatch
	}
	if s.now().Sub(captured) > s.window {
		return outcomeStale
	}
	return ""
}

// Refresh fetches the page for location, extracts a record stamped with the current time
// and overwrites the stored entry.
func (s *AdviceService) Refresh(ctx context.Context, location string) error {
	key := normalizeLocation(location)
	logger := s.loggerFromContext(ctx)
	start := time.Now()

	err := s.refresh(ctx, key, logger)
	if err != nil {
		observability.RefreshFailuresTotal.Inc()
		logger.Warn("refresh failed", zap.String("location", key), zap.Error(err))
		return err
	}
	logger.Info("record refreshed", zap.String("location", key), zap.Duration("duration", time.Since(start)))
	return nil
}

func (s *AdviceService) refresh(ctx context.Context, key string, logger *zap.Logger) error {
	page, err := s.fetcher.FetchPage(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: fetch %s: %w", ErrRefreshFailed, key, err)
	}
	report, err := s.parser.Parse(page)
	if err != nil {
		return fmt.Errorf("%w: extract %s: %w", ErrRefreshFailed, key, err)
	}
	if report.Zip != key {
		logger.Debug("page reports a different postal code",
			zap.String("location", key), zap.String("page_location", report.Zip))
	}
	report.Zip = key
	report.Time = extract.FormatTime(s.now())

	if err := s.write(ctx, key, extract.EncodeReport(report)); err != nil {
		return fmt.Errorf("%w: persist: %w", ErrRefreshFailed, err)
	}
	return nil
}

// refreshAndRead refreshes key and reads the new entry back from the store.
func (s *AdviceService) refreshAndRead(ctx context.Context, key string) ([]byte, error) {
	if err := s.Refresh(ctx, key); err != nil {
		return nil, err
	}
	blob, ok, err := s.read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: record for %s missing after write", ErrRefreshFailed, key)
	}
	return blob, nil
}

func (s *AdviceService) read(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	blob, ok, err := s.store.Read(ctx, key)
	duration := time.Since(start).Seconds()
	if err != nil {
		observability.StoreErrorsTotal.WithLabelValues("read").Inc()
		observability.StoreOperationDurationSeconds.WithLabelValues("read", "error").Observe(duration)
		return nil, false, fmt.Errorf("%w: read %s: %w", ErrStore, key, err)
	}
	observability.StoreOperationDurationSeconds.WithLabelValues("read", "success").Observe(duration)
	return blob, ok, nil
}

func (s *AdviceService) write(ctx context.Context, key string, blob []byte) error {
	start := time.Now()
	err := s.store.Write(ctx, key, blob)
	duration := time.Since(start).Seconds()
	if err != nil {
		observability.StoreErrorsTotal.WithLabelValues("write").Inc()
		observability.StoreOperationDurationSeconds.WithLabelValues("write", "error").Observe(duration)
		return fmt.Errorf("%w: write %s: %w", ErrStore, key, err)
	}
	observability.StoreOperationDurationSeconds.WithLabelValues("write", "success").Observe(duration)
	return nil
}

// normalizeLocation trims whitespace so " 08540" and "08540" share a slot.
func normalizeLocation(location string) string {
	return strings.TrimSpace(location)
}
