// Package config provides centralized configuration management for the
// extractor. It loads configuration from environment variables with sensible
// defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import "time"

// Config holds all extractor configuration.
// All settings can be configured via environment variables; the input file
// and output directory are positional command-line arguments, not env vars.
type Config struct {
	Layouts  LayoutsConfig
	Output   OutputConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// LayoutsConfig holds settings for the record-layout descriptions.
type LayoutsConfig struct {
	// Dir is the directory containing one layout CSV per record type
	// (default: layouts)
	Dir string `env:"LAYOUTS_DIR" default:"layouts"`
}

// OutputConfig holds settings for the output destinations.
type OutputConfig struct {
	// Compress enables gzip compression of the output CSVs (default: true)
	Compress bool `env:"OUTPUT_COMPRESS" default:"true"`

	// ProgressInterval is how many input lines to process between progress
	// log entries (default: 100000)
	ProgressInterval int `env:"PROGRESS_INTERVAL" default:"100000"`
}

// DatabaseConfig holds optional PostgreSQL loading settings.
// When URL is empty the extractor writes CSV files only.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (optional)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// BatchSize is the number of records per COPY batch (default: 1000)
	BatchSize int `env:"DB_BATCH_SIZE" default:"1000"`

	// ConnectTimeout is the maximum duration for the initial connection and
	// ping (default: 10s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"10s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Enabled reports whether direct-to-PostgreSQL loading is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}
