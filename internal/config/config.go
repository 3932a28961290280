// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package config

import (
	"time"
)

// Config is the root configuration for Pulse.
// Loaded via Koanf with layered sources: defaults, YAML file, environment.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Poller     PollerConfig     `koanf:"poller"`
	Checkpoint CheckpointConfig `koanf:"checkpoint"`
	NATS       NATSConfig       `koanf:"nats"`
	Security   SecurityConfig   `koanf:"security"`
	Webhook    WebhookConfig    `koanf:"webhook"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the bind address.
	Host string `koanf:"host"`

	// Port is the HTTP listen port.
	Port int `koanf:"port"`

	// Timeout is the read/write timeout for non-streaming endpoints.
	// Streaming endpoints (/ws, /events) manage their own deadlines.
	Timeout time.Duration `koanf:"timeout"`

	// Environment is "development" or "production". Production tightens
	// validation (JWT secret strength, CORS origins).
	Environment string `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. ":memory:" for ephemeral storage.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB memory usage (e.g. "512MB").
	MaxMemory string `koanf:"max_memory"`

	// Threads limits DuckDB worker threads. 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// PollerConfig holds change detection settings.
type PollerConfig struct {
	// Interval is the poll tick. New records are detected at most this
	// far behind their insert time.
	Interval time.Duration `koanf:"interval"`

	// HeartbeatInterval is the keepalive tick for connected clients.
	HeartbeatInterval time.Duration `koanf:"heartbeat_interval"`

	// QueryTimeout bounds each poll query.
	QueryTimeout time.Duration `koanf:"query_timeout"`

	// BacklogSize is the number of recent records sent to a client on
	// connect as the initial snapshot.
	BacklogSize int `koanf:"backlog_size"`
}

// CheckpointConfig holds watermark persistence settings.
type CheckpointConfig struct {
	// Enabled persists the poller watermark to BadgerDB so a restart
	// resumes from the last delivered timestamp.
	Enabled bool `koanf:"enabled"`

	// Path is the BadgerDB directory.
	Path string `koanf:"path"`
}

// NATSConfig holds the optional event bus fast path settings.
type NATSConfig struct {
	// Enabled turns on the NATS fast path. When disabled, delivery
	// relies on polling alone.
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server URL. Ignored when EmbeddedServer is true.
	URL string `koanf:"url"`

	// EmbeddedServer runs an in-process NATS server with JetStream.
	EmbeddedServer bool `koanf:"embedded_server"`

	// StoreDir is the JetStream storage directory for the embedded server.
	StoreDir string `koanf:"store_dir"`

	// MaxMemory caps JetStream memory storage in bytes.
	MaxMemory int64 `koanf:"max_memory"`

	// MaxStore caps JetStream disk storage in bytes.
	MaxStore int64 `koanf:"max_store"`
}

// SecurityConfig holds authentication and rate limit settings.
type SecurityConfig struct {
	// AuthMode selects the authenticator: "jwt", "basic", or "none".
	AuthMode string `koanf:"auth_mode"`

	// JWTSecret signs HS256 tokens. Required for jwt mode.
	JWTSecret string `koanf:"jwt_secret"`

	// SessionTimeout is the JWT token lifetime.
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// AdminUsername and AdminPassword bootstrap the admin account.
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`

	// RateLimitReqs requests per RateLimitWindow per client IP.
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// CORSOrigins lists allowed origins for browser clients.
	CORSOrigins []string `koanf:"cors_origins"`
}

// WebhookConfig holds webhook ingest settings.
type WebhookConfig struct {
	// Secret is the HMAC-SHA256 key for signature verification.
	// The webhook endpoint is disabled when empty.
	Secret string `koanf:"secret"`

	// RatePerSecond is the token bucket refill rate for webhook requests.
	RatePerSecond float64 `koanf:"rate_per_second"`

	// Burst is the token bucket size.
	Burst int `koanf:"burst"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
