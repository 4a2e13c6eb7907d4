// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20 // 1048576 bytes

	// DefaultPerPage is the default page size for quote listings.
	DefaultPerPage = 20

	// MaxPerPage is the upper clamp for requested page sizes.
	MaxPerPage = 100

	// DefaultSeedRetryMaxAttempts is the default number of attempts when
	// fetching a remote seed source.
	DefaultSeedRetryMaxAttempts = 3

	// DefaultSeedRetryMultiplier is the default exponential backoff multiplier.
	DefaultSeedRetryMultiplier = 2.0

	// DefaultSeedRetryJitterFactor is the default jitter percentage (±25%).
	DefaultSeedRetryJitterFactor = 0.25

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28
)

// Config is the root configuration structure.
type Config struct {
	App        AppConfig        `koanf:"app"        validate:"required"`
	Server     ServerConfig     `koanf:"server"     validate:"required"`
	Database   DatabaseConfig   `koanf:"database"   validate:"required"`
	Pagination PaginationConfig `koanf:"pagination" validate:"required"`
	Seed       SeedConfig       `koanf:"seed"`
	Log        LogConfig        `koanf:"log"        validate:"required"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
	StaticDir       string        `koanf:"static_dir"`
}

// DatabaseConfig contains storage settings.
// The sqlite driver backs local development and tests; deployments run
// postgres with the DSN injected through DATABASE_URL.
type DatabaseConfig struct {
	Driver             string        `koanf:"driver"               validate:"required,oneof=postgres sqlite"`
	DSN                string        `koanf:"dsn"                  validate:"required"`
	MaxOpenConns       int           `koanf:"max_open_conns"       validate:"omitempty,min=1"`
	MaxIdleConns       int           `koanf:"max_idle_conns"       validate:"omitempty,min=1"`
	ConnMaxLifetime    time.Duration `koanf:"conn_max_lifetime"    validate:"omitempty,min=1s"`
	SlowQueryThreshold time.Duration `koanf:"slow_query_threshold" validate:"omitempty,min=1ms"`
}

// PaginationConfig contains listing page-size settings.
type PaginationConfig struct {
	DefaultPerPage int `koanf:"default_per_page" validate:"required,min=1"`
	MaxPerPage     int `koanf:"max_per_page"     validate:"required,min=1"`
}

// SeedConfig contains bulk-load settings.
type SeedConfig struct {
	// Source is the default quote source: a local path, or an http(s) URL.
	Source  string        `koanf:"source"`
	Timeout time.Duration `koanf:"timeout" validate:"omitempty,min=100ms"`
	Retry   RetryConfig   `koanf:"retry"`
}

// RetryConfig contains retry settings for remote seed fetches.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"       validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"   validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"    validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quote-machine",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,
		"server.static_dir":       "./static",

		"database.driver":               "sqlite",
		"database.dsn":                  "./data/quotes.db",
		"database.max_open_conns":       10,
		"database.max_idle_conns":       5,
		"database.conn_max_lifetime":    "30m",
		"database.slow_query_threshold": "200ms",

		"pagination.default_per_page": DefaultPerPage,
		"pagination.max_per_page":     MaxPerPage,

		"seed.source":                 "db/seeds/futurama_quotes.txt",
		"seed.timeout":                "30s",
		"seed.retry.max_attempts":     DefaultSeedRetryMaxAttempts,
		"seed.retry.initial_interval": "100ms",
		"seed.retry.max_interval":     "5s",
		"seed.retry.multiplier":       DefaultSeedRetryMultiplier,
		"seed.retry.jitter_factor":    DefaultSeedRetryJitterFactor,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "quote-machine",
		"telemetry.sampling_rate": 1.0,
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. DATABASE_URL (implies the postgres driver, PaaS convention)
//  2. Environment variables (APP_ prefix)
//  3. Profile config file (configs/{profile}.yaml)
//  4. Base config file (configs/base.yaml)
//  5. Default values
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// 2. Load base config file if it exists
	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	// 3. Load profile config file if it exists
	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	// 4. Load environment variables with APP_ prefix
	err = k.Load(env.Provider("APP_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "APP_")),
			"_",
			".",
		)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	// 5. DATABASE_URL wins over everything else for the storage DSN
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		err = k.Load(confmap.Provider(map[string]any{
			"database.driver": "postgres",
			"database.dsn":    dsn,
		}, "."), nil)
		if err != nil {
			return nil, fmt.Errorf("loading DATABASE_URL: %w", err)
		}
	}

	// Unmarshal into Config struct
	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil // File doesn't exist, that's fine
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
