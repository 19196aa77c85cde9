// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, NATS) via constructors.
  - Zero Hidden State: No global variables are used to store config.

Every binary (api, importer, scraper, catalogctl) reads the same schema, so a
single .env file drives the whole toolchain.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported values of DATABASE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// # Configuration Schema

// Config holds all runtime configuration for the catalogue binaries.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"3000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational store. DatabaseURL is a file path for sqlite and a DSN for postgres.
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL"    envDefault:"manga.db"`

	// MigrationPath overrides the embedded SQL migrations when set.
	MigrationPath string `env:"MIGRATION_PATH"`

	// Optional page cache (Redis)
	RedisURL      string        `env:"REDIS_URL"`
	QueryCacheTTL time.Duration `env:"QUERY_CACHE_TTL" envDefault:"30s"`

	// Optional domain events (NATS)
	NATSURL string `env:"NATS_URL"`

	// Admin routes are disabled when the secret is empty.
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET"`

	// Logging
	LogFile      string `env:"LOG_FILE"`
	LogMaxSizeMB int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`

	// Scraper pacing and identity
	ScrapeRPS       float64 `env:"SCRAPE_RPS"        envDefault:"1"`
	ScrapeUserAgent string  `env:"SCRAPE_USER_AGENT" envDefault:"comicvault-scraper/1.0"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config: DATABASE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DatabaseDriver)
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("config: DATABASE_URL must not be empty")
	}

	if c.QueryCacheTTL <= 0 {
		return fmt.Errorf("config: QUERY_CACHE_TTL must be positive")
	}

	if c.ScrapeRPS <= 0 {
		return fmt.Errorf("config: SCRAPE_RPS must be positive")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the comma-separated EXTRA_ORIGINS as a list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// AdminEnabled reports whether admin routes should be mounted.
func (c *Config) AdminEnabled() bool {
	return c.AdminJWTSecret != ""
}
