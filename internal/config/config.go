package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kjstillabower/attire-decider/internal/advice"
	"github.com/kjstillabower/attire-decider/internal/client"
	"github.com/kjstillabower/attire-decider/internal/service"
)

// Cache backends accepted by cache.backend and CACHE_BACKEND.
const (
	BackendFile      = "file"
	BackendSQLite    = "sqlite"
	BackendMemcached = "memcached"
	BackendInMemory  = "in_memory"
)

// Config holds configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	WeatherPageURL     string
	WeatherPageTimeout time.Duration

	RequestTimeout  time.Duration
	CacheBackend    string
	FreshnessWindow time.Duration
	CacheDir        string
	SQLitePath      string

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int
	MemcachedRetention    time.Duration

	Thresholds advice.Thresholds

	RateLimitRPS   int
	RateLimitBurst int

	ShutdownTimeout time.Duration

	TrackedLocations []string
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	WeatherPage struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"weather_page"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Cache struct {
		Backend         string `yaml:"backend"`
		FreshnessWindow string `yaml:"freshness_window"`
		Dir             string `yaml:"dir"`
		SQLitePath      string `yaml:"sqlite_path"`
		Memcached       struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
			Retention    string `yaml:"retention"`
		} `yaml:"memcached"`
	} `yaml:"cache"`

	// Pointers so an explicit 0 is kept.
	Thresholds struct {
		Hot      *float64 `yaml:"hot"`
		Warm     *float64 `yaml:"warm"`
		Cool     *float64 `yaml:"cool"`
		Cold     *float64 `yaml:"cold"`
		Freezing *float64 `yaml:"freezing"`
	} `yaml:"thresholds"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"shutdown"`

	Metrics struct {
		TrackedLocations []string `yaml:"tracked_locations"`
	} `yaml:"metrics"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) relative to the working
// directory. A missing file leaves every setting at its default, so the CLI runs anywhere.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	return LoadFile(filepath.Join(cwd, "config", env+".yaml"))
}

// LoadFile reads configuration from path, applying env overrides and defaults.
func LoadFile(path string) (*Config, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = envOr("SERVER_PORT", fc.Server.Port)
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.WeatherPageURL = envOr("WEATHER_PAGE_URL", fc.WeatherPage.URL)
	if cfg.WeatherPageURL == "" {
		cfg.WeatherPageURL = client.DefaultPageURL
	}
	cfg.WeatherPageTimeout = parseDurationOrZero(fc.WeatherPage.Timeout, 10*time.Second)
	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 15*time.Second)

	cfg.CacheBackend = strings.ToLower(envOr("CACHE_BACKEND", fc.Cache.Backend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = BackendFile
	}
	cfg.FreshnessWindow = parseDuration(fc.Cache.FreshnessWindow, service.DefaultFreshnessWindow)
	cfg.CacheDir = envOr("CACHE_DIR", fc.Cache.Dir)
	if cfg.CacheDir == "" {
		cfg.CacheDir = "data"
	}
	cfg.SQLitePath = envOr("SQLITE_PATH", fc.Cache.SQLitePath)
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join(cfg.CacheDir, "attire.db")
	}

	cfg.MemcachedAddrs = envOr("MEMCACHED_ADDRS", fc.Cache.Memcached.Addrs)
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = "localhost:11211"
	}
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Cache.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}
	cfg.MemcachedRetention = parseDuration(fc.Cache.Memcached.Retention, 24*time.Hour)

	cfg.Thresholds = advice.DefaultThresholds()
	overrideFloat(&cfg.Thresholds.Hot, fc.Thresholds.Hot)
	overrideFloat(&cfg.Thresholds.Warm, fc.Thresholds.Warm)
	overrideFloat(&cfg.Thresholds.Cool, fc.Thresholds.Cool)
	overrideFloat(&cfg.Thresholds.Cold, fc.Thresholds.Cold)
	overrideFloat(&cfg.Thresholds.Freezing, fc.Thresholds.Freezing)

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 10
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 20
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.TrackedLocations = fc.Metrics.TrackedLocations

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envOr(key, fileVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return strings.TrimSpace(fileVal)
}

func overrideFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Returns zero or negative durations as-is (caller should handle fallback).
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load validation. RequestTimeout is raised above WeatherPageTimeout
// so a page fetch can finish inside a request. Threshold ordering is not checked here; callers
// warn via advice.Thresholds.Validate and use the values as given.
func validate(cfg *Config) error {
	if cfg.WeatherPageTimeout <= 0 {
		return fmt.Errorf("weather_page.timeout must be positive")
	}
	if cfg.RequestTimeout <= cfg.WeatherPageTimeout {
		cfg.RequestTimeout = cfg.WeatherPageTimeout + time.Second
	}
	switch cfg.CacheBackend {
	case BackendFile, BackendSQLite, BackendMemcached, BackendInMemory:
		// valid
	default:
		return fmt.Errorf("cache.backend must be file, sqlite, memcached or in_memory, got %q", cfg.CacheBackend)
	}
	return nil
}
