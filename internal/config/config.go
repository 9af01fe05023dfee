// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the server settings.
type Config struct {
	Addr            string        // ADDR, listen address
	DBPath          string        // DB_PATH, SQLite database file
	LogLevel        string        // LOG_LEVEL: debug, info, warn, error
	LogFormat       string        // LOG_FORMAT: text or json
	MetricsPath     string        // METRICS_PATH, empty disables /metrics
	ShutdownTimeout time.Duration // SHUTDOWN_TIMEOUT, e.g. "10s"
}

// Load reads the configuration from environment variables, falling back to
// defaults for unset ones.
func Load() (Config, error) {
	cfg := Config{
		Addr:        getEnv("ADDR", ":8080"),
		DBPath:      getEnv("DB_PATH", "./data/ledger.db"),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "text")),
		MetricsPath: os.Getenv("METRICS_PATH"),
	}
	if _, set := os.LookupEnv("METRICS_PATH"); !set {
		cfg.MetricsPath = "/metrics"
	}

	timeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %s must be positive", timeout)
	}
	cfg.ShutdownTimeout = timeout

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("invalid LOG_FORMAT %q: want text or json", cfg.LogFormat)
	}
	if cfg.MetricsPath != "" && !strings.HasPrefix(cfg.MetricsPath, "/") {
		return Config{}, fmt.Errorf("invalid METRICS_PATH %q: must start with /", cfg.MetricsPath)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
