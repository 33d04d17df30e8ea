package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/attire-decider/internal/advice"
	"github.com/kjstillabower/attire-decider/internal/client"
	"github.com/kjstillabower/attire-decider/internal/config"
	"github.com/kjstillabower/attire-decider/internal/testhelpers"
	"github.com/kjstillabower/attire-decider/internal/validation"
)

func testConfig(t *testing.T, pageURL string) *config.Config {
	t.Helper()
	return &config.Config{
		WeatherPageURL:     pageURL,
		WeatherPageTimeout: 2 * time.Second,
		RequestTimeout:     5 * time.Second,
		CacheBackend:       "sqlite",
		SQLitePath:         filepath.Join(t.TempDir(), "records.db"),
		FreshnessWindow:    30 * time.Minute,
		Thresholds:         advice.DefaultThresholds(),
	}
}

// TestRun_ReusesStoreAcrossRuns verifies a run releases the store so the next run can
// reopen it and answer from the saved record once the site is gone.
func TestRun_ReusesStoreAcrossRuns(t *testing.T) {
	pages := testhelpers.NewPageServer(t, testhelpers.Princeton)
	cfg := testConfig(t, pages.URL)

	var out bytes.Buffer
	if err := run(context.Background(), cfg, []string{"08540"}, &out, zap.NewNop()); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Current Temperature is: 72 degrees Fahrenheit") {
		t.Errorf("output = %q, want current temperature line", out.String())
	}

	pages.Close()
	out.Reset()
	if err := run(context.Background(), cfg, []string{"08540"}, &out, zap.NewNop()); err != nil {
		t.Fatalf("second run() error = %v", err)
	}
	if got := pages.Hits("08540"); got != 1 {
		t.Errorf("page fetches = %d, want 1", got)
	}
	if !strings.Contains(out.String(), "Current Temperature is: 72 degrees Fahrenheit") {
		t.Errorf("second output = %q, want current temperature line", out.String())
	}
}

func TestRun_Errors(t *testing.T) {
	pages := testhelpers.NewPageServer(t, testhelpers.Princeton)

	tests := []struct {
		name    string
		args    []string
		backend string
		wantErr error
	}{
		{"invalid location", []string{"../etc"}, "sqlite", validation.ErrLocationInvalidChars},
		{"unknown location", []string{"99999"}, "sqlite", client.ErrLocationNotFound},
		{"unknown backend", []string{"08540"}, "redis", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, pages.URL)
			cfg.CacheBackend = tt.backend

			var out bytes.Buffer
			err := run(context.Background(), cfg, tt.args, &out, zap.NewNop())
			if err == nil {
				t.Fatal("run() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("run() error = %v, want %v", err, tt.wantErr)
			}
			if strings.Contains(out.String(), "Consider wearing") {
				t.Errorf("output = %q, want no recommendation on error", out.String())
			}
		})
	}
}
