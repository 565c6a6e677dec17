// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Compare   CompareConfig
	Extract   ExtractConfig
	Normalize NormalizeConfig
	History   HistoryConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing response (default: 2m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 90s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// DatabaseConfig holds the optional run history database. Without a URL the
// run history is kept in memory.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 5)
	MaxConns int `env:"DB_MAX_CONNS" default:"5"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// CompareConfig holds comparison request settings.
type CompareConfig struct {
	// MaxFileSize is the maximum allowed document size in bytes (default: 50MB)
	MaxFileSize int64 `env:"COMPARE_MAX_FILE_SIZE" default:"52428800"`

	// MaxConcurrent is the maximum number of parallel comparisons (default: 4)
	MaxConcurrent int `env:"COMPARE_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for a comparison slot (default: 30s)
	MaxWaitTime time.Duration `env:"COMPARE_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration of a single comparison (default: 60s)
	Timeout time.Duration `env:"COMPARE_TIMEOUT" default:"60s"`
}

// ExtractConfig tunes PDF table extraction.
type ExtractConfig struct {
	// RowTolerance is the max vertical distance, in points, between glyphs of one line (default: 2)
	RowTolerance float64 `env:"EXTRACT_ROW_TOLERANCE" default:"2"`

	// CellGap is the horizontal gap, in ems, that starts a new cell (default: 1)
	CellGap float64 `env:"EXTRACT_CELL_GAP" default:"1"`

	// MinColumns is the number of cells a line needs to be part of the table (default: 3)
	MinColumns int `env:"EXTRACT_MIN_COLUMNS" default:"3"`
}

// NormalizeConfig holds record normalization settings.
type NormalizeConfig struct {
	// MinIdentifierDigits rejects shorter identifiers (default: 4)
	MinIdentifierDigits int `env:"NORMALIZE_MIN_ID_DIGITS" default:"4"`

	// MaxIdentifierDigits rejects longer identifiers (default: 7)
	MaxIdentifierDigits int `env:"NORMALIZE_MAX_ID_DIGITS" default:"7"`

	// DuplicatePolicy is keep_all, first or last (default: keep_all)
	DuplicatePolicy string `env:"NORMALIZE_DUPLICATE_POLICY" default:"keep_all"`
}

// HistoryConfig holds run history settings.
type HistoryConfig struct {
	// Retention is how long run summaries are kept (default: 2160h, 90 days)
	Retention time.Duration `env:"HISTORY_RETENTION" default:"2160h"`

	// PruneInterval is how often old runs are deleted (default: 24h)
	PruneInterval time.Duration `env:"HISTORY_PRUNE_INTERVAL" default:"24h"`

	// MemoryCapacity bounds the in-memory history (default: 1000)
	MemoryCapacity int `env:"HISTORY_MEMORY_CAPACITY" default:"1000"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// CompareLimit is requests per minute for document endpoints (default: 10)
	CompareLimit int `env:"RATE_LIMIT_COMPARE" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
