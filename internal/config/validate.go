// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package config

import (
	"fmt"
	"time"
)

// minJWTSecretLength is enforced in production mode. Shorter secrets make
// HS256 tokens brute-forceable offline.
const minJWTSecretLength = 32

// Validate checks the configuration for invalid or unsafe values.
// It returns the first error found.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validatePoller(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	if err := c.validateWebhook(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("server.environment must be development or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database.threads must not be negative, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validatePoller() error {
	if c.Poller.Interval < 100*time.Millisecond {
		return fmt.Errorf("poller.interval must be at least 100ms, got %v", c.Poller.Interval)
	}
	if c.Poller.HeartbeatInterval < c.Poller.Interval {
		return fmt.Errorf("poller.heartbeat_interval %v must not be shorter than poller.interval %v",
			c.Poller.HeartbeatInterval, c.Poller.Interval)
	}
	if c.Poller.QueryTimeout <= 0 {
		return fmt.Errorf("poller.query_timeout must be positive, got %v", c.Poller.QueryTimeout)
	}
	if c.Poller.BacklogSize < 1 || c.Poller.BacklogSize > 500 {
		return fmt.Errorf("poller.backlog_size must be between 1 and 500, got %d", c.Poller.BacklogSize)
	}
	if c.Checkpoint.Enabled && c.Checkpoint.Path == "" {
		return fmt.Errorf("checkpoint.path must not be empty when checkpoint.enabled is true")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "jwt":
		if c.Security.JWTSecret == "" {
			return fmt.Errorf("security.jwt_secret is required when auth_mode is jwt")
		}
		if c.IsProduction() && len(c.Security.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("security.jwt_secret must be at least %d characters in production", minJWTSecretLength)
		}
		if c.Security.AdminUsername == "" || c.Security.AdminPassword == "" {
			return fmt.Errorf("security.admin_username and security.admin_password are required when auth_mode is jwt")
		}
	case "basic":
		if c.Security.AdminUsername == "" || c.Security.AdminPassword == "" {
			return fmt.Errorf("security.admin_username and security.admin_password are required when auth_mode is basic")
		}
	case "none":
		if c.IsProduction() {
			return fmt.Errorf("security.auth_mode none is not allowed in production")
		}
	default:
		return fmt.Errorf("security.auth_mode must be jwt, basic, or none, got %q", c.Security.AuthMode)
	}

	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("security.session_timeout must be positive, got %v", c.Security.SessionTimeout)
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %v", c.Security.RateLimitWindow)
		}
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if !c.NATS.EmbeddedServer && c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when nats.enabled is true and nats.embedded_server is false")
	}
	if c.NATS.EmbeddedServer && c.NATS.StoreDir == "" {
		return fmt.Errorf("nats.store_dir is required for the embedded NATS server")
	}
	return nil
}

func (c *Config) validateWebhook() error {
	if c.Webhook.Secret == "" {
		// Webhook ingest is disabled without a secret; nothing to validate.
		return nil
	}
	if c.Webhook.RatePerSecond <= 0 {
		return fmt.Errorf("webhook.rate_per_second must be positive, got %v", c.Webhook.RatePerSecond)
	}
	if c.Webhook.Burst < 1 {
		return fmt.Errorf("webhook.burst must be at least 1, got %d", c.Webhook.Burst)
	}
	return nil
}
