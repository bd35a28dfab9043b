package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/i474232898/surf-forecast/internal/forecast"
	"github.com/i474232898/surf-forecast/internal/forecast/stormglass"
)

type AppConfig struct {
	StormGlassAPIURL   string
	StormGlassAPIToken string
	StormGlassSource   string

	HTTPTimeout time.Duration

	// Client-side limit towards StormGlass.
	RateLimitRPS   float64
	RateLimitBurst int

	// FetchInterval controls how often the scheduler aggregates all beaches.
	FetchInterval time.Duration

	DatabasePath string

	// BeachesFile optionally seeds the beach repository.
	BeachesFile string
	Beaches     []forecast.Beach

	// Run history retention.
	RunMaxHistory int           // max number of runs kept (0 = unlimited)
	RunMaxAge     time.Duration // max age of runs (0 = unlimited)

	Port     string
	LogLevel string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	// A missing .env is fine; a malformed one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg := &AppConfig{}

	cfg.StormGlassAPIURL = getenvDefault("STORMGLASS_API_URL", "https://api.stormglass.io/v2")
	cfg.StormGlassAPIToken = os.Getenv("STORMGLASS_API_TOKEN")
	if cfg.StormGlassAPIToken == "" {
		return nil, fmt.Errorf("STORMGLASS_API_TOKEN is required")
	}
	cfg.StormGlassSource = getenvDefault("STORMGLASS_SOURCE", stormglass.DefaultSource)

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	rps, err := strconv.ParseFloat(getenvDefault("STORMGLASS_RATE_LIMIT_RPS", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid STORMGLASS_RATE_LIMIT_RPS: %w", err)
	}
	cfg.RateLimitRPS = rps
	if cfg.RateLimitBurst, err = getenvInt("STORMGLASS_RATE_LIMIT_BURST", 1); err != nil {
		return nil, err
	}

	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "1h"); err != nil {
		return nil, err
	}

	cfg.DatabasePath = getenvDefault("DATABASE_PATH", "./data/surf-forecast.db")

	// two days of hourly runs
	if cfg.RunMaxHistory, err = getenvInt("RUN_MAX_HISTORY", 48); err != nil {
		return nil, err
	}
	if cfg.RunMaxAge, err = getenvDuration("RUN_MAX_AGE", "48h"); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	cfg.BeachesFile = os.Getenv("BEACHES_FILE")
	if cfg.BeachesFile != "" {
		beaches, err := LoadBeaches(cfg.BeachesFile)
		if err != nil {
			return nil, err
		}
		cfg.Beaches = beaches
	}

	return cfg, nil
}

// LoadBeaches reads a list of beaches from a YAML, JSON or TOML file with a
// top-level "beaches" key. Every entry is validated.
func LoadBeaches(path string) ([]forecast.Beach, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read beaches file: %w", err)
	}

	var file struct {
		Beaches []forecast.Beach `mapstructure:"beaches"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal beaches file: %w", err)
	}

	for i, b := range file.Beaches {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("invalid beach #%d (%s): %w", i, b.Name, err)
		}
	}

	return file.Beaches, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
