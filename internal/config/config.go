// Package config loads service configuration from an optional TOML file
// with environment variables taking precedence. Defaults work out of the
// box for local development (in-memory backend on :8080).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds everything the binary needs at startup.
type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string `toml:"addr"`
	// Currency is the deployment currency for amounts (ISO 4217).
	Currency string `toml:"currency"`
	// Backend selects the record store: memory, sqlite or postgres.
	Backend string `toml:"backend"`
	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string `toml:"sqlite_path"`
	// DatabaseURL is the DSN used by the postgres backend.
	DatabaseURL string `toml:"database_url"`
	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`
	// DevSeed inserts a throwaway user on startup for local testing.
	DevSeed bool `toml:"dev_seed"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:       ":8080",
		Currency:   "INR",
		Backend:    "memory",
		SQLitePath: "./data/fintrack.db",
		LogLevel:   "info",
		LogFormat:  "json",
	}
}

// Load builds the effective configuration: defaults, then the TOML file at
// path (if non-empty and present), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	if cfg.Backend != "memory" && cfg.Backend != "sqlite" && cfg.Backend != "postgres" {
		return Config{}, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := getEnv("PORT", ""); v != "" {
		c.Addr = ":" + v
	}
	if v := getEnv("ADDR", ""); v != "" {
		c.Addr = v
	}
	c.Currency = getEnv("CURRENCY", c.Currency)
	c.Backend = getEnv("DATA_BACKEND", c.Backend)
	c.SQLitePath = getEnv("SQLITE_DB_PATH", c.SQLitePath)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	if v := strings.ToLower(getEnv("DEV_SEED", "")); v == "1" || v == "true" || v == "yes" {
		c.DevSeed = true
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
