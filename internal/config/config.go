// Package config loads server settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store drivers accepted by STORE_DRIVER
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds every server setting
type Config struct {
	Port            int           `env:"PORT" envDefault:"8080"`
	StoreDriver     string        `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"sentest.db"`
	PublicURL       string        `env:"PUBLIC_URL"`
	RulesFile       string        `env:"REGISTRATION_RULES_FILE"`
	AuditTTL        time.Duration `env:"SCENARIO_AUDIT_TTL" envDefault:"30m"`
	AuditMaxEntries int           `env:"SCENARIO_AUDIT_MAX" envDefault:"10000"`
	RandomSeed      int64         `env:"RANDOM_SEED" envDefault:"0"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Load parses the environment and validates the result
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.PublicURL = strings.TrimRight(strings.TrimSpace(cfg.PublicURL), "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that cannot be defaulted
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}

	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORE_DRIVER=sqlite")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want postgres, sqlite or memory)", c.StoreDriver)
	}

	if c.AuditMaxEntries < 0 {
		return fmt.Errorf("invalid SCENARIO_AUDIT_MAX: %d", c.AuditMaxEntries)
	}
	if c.AuditTTL < 0 {
		return fmt.Errorf("invalid SCENARIO_AUDIT_TTL: %s", c.AuditTTL)
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
