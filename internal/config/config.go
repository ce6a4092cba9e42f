// Package config provides centralized configuration management for the viewer.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"

	"github.com/JonMunkholm/porelog/internal/porelog"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Upload    UploadConfig
	Session   SessionConfig
	Transform TransformConfig
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

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// UploadConfig holds log file load settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 50MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"52428800"`

	// MaxConcurrent is the maximum number of parallel loads (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for a load slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration for a single load operation (default: 2m)
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"2m"`
}

// SessionConfig holds viewer session settings.
type SessionConfig struct {
	// TTL is how long an idle session is kept (default: 2h)
	TTL time.Duration `env:"SESSION_TTL" default:"2h"`

	// SweepInterval is how often idle sessions are evicted (default: 5m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"5m"`

	// CookieSecure sets the Secure flag on the session cookie (default: false)
	CookieSecure bool `env:"SESSION_COOKIE_SECURE" default:"false"`
}

// TransformConfig holds table and export settings.
type TransformConfig struct {
	// Missing is the missing-value policy: absent or falsy (default: absent)
	Missing string `env:"TRANSFORM_MISSING" default:"absent"`

	// CSVMode is the export format: quoted or raw (default: quoted)
	CSVMode string `env:"EXPORT_CSV_MODE" default:"quoted"`
}

// HistoryConfig holds load history storage settings.
type HistoryConfig struct {
	// Driver is the backend: memory, postgres or sqlite (default: memory)
	Driver string `env:"HISTORY_DRIVER" default:"memory"`

	// DSN is the connection string or database file for SQL backends.
	// DATABASE_URL is accepted for compatibility.
	DSN string `env:"HISTORY_DSN" envAlt:"DATABASE_URL"`

	// MaxConns is the maximum number of pooled postgres connections (default: 10)
	MaxConns int `env:"HISTORY_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of pooled postgres connections (default: 1)
	MinConns int `env:"HISTORY_MIN_CONNS" default:"1"`

	// Retention is how long history entries are kept (default: 720h)
	Retention time.Duration `env:"HISTORY_RETENTION" default:"720h"`

	// MemorySize is the ring capacity of the memory backend (default: 1000)
	MemorySize int `env:"HISTORY_MEMORY_SIZE" default:"1000"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for the load endpoint (default: 20)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey enables X-API-Key authentication on /api (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
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

// MissingPolicy returns the parsed missing-value policy.
// Invalid values are rejected by Validate; here they fall back to absent.
func (c *TransformConfig) MissingPolicy() porelog.MissingPolicy {
	p, _ := porelog.ParseMissingPolicy(c.Missing)
	return p
}

// ExportMode returns the parsed CSV export mode.
func (c *TransformConfig) ExportMode() porelog.CSVMode {
	m, _ := porelog.ParseCSVMode(c.CSVMode)
	return m
}
