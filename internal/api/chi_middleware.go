// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/pulse/internal/config"
)

// RateLimitConfig defines rate limit parameters for an endpoint tier.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Endpoint tier rate limits. Health is permissive so monitoring can
// poll freely; login is strict against credential stuffing; write
// protects the store from floods.
var (
	rateLimitAuth   = RateLimitConfig{Requests: 5, Window: time.Minute}
	rateLimitLogin  = RateLimitConfig{Requests: 5, Window: 5 * time.Minute}
	rateLimitWrite  = RateLimitConfig{Requests: 30, Window: time.Minute}
	rateLimitHealth = RateLimitConfig{Requests: 1000, Window: time.Minute}
)

// ChiMiddleware provides Chi-compatible middleware factories built on
// the go-chi ecosystem (cors, httprate).
type ChiMiddleware struct {
	corsHandler func(http.Handler) http.Handler
	defaultTier RateLimitConfig
	disabled    bool
}

// NewChiMiddleware builds the middleware factories from the security config.
func NewChiMiddleware(sec config.SecurityConfig) *ChiMiddleware {
	requests := sec.RateLimitReqs
	if requests <= 0 {
		requests = 100
	}
	window := sec.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   sec.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	})

	return &ChiMiddleware{
		corsHandler: corsHandler,
		defaultTier: RateLimitConfig{Requests: requests, Window: window},
		disabled:    sec.RateLimitDisabled,
	}
}

// CORS returns the CORS middleware. Must be global so OPTIONS preflight
// requests reach it before routing.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.corsHandler
}

// RateLimit returns the default per-IP rate limiter.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.rateLimitCustom(m.defaultTier)
}

// RateLimitAuth returns the strict limiter for auth endpoints.
func (m *ChiMiddleware) RateLimitAuth() func(http.Handler) http.Handler {
	return m.rateLimitCustom(rateLimitAuth)
}

// RateLimitLogin returns the very strict limiter for login attempts.
func (m *ChiMiddleware) RateLimitLogin() func(http.Handler) http.Handler {
	return m.rateLimitCustom(rateLimitLogin)
}

// RateLimitWrite returns the limiter for write endpoints.
func (m *ChiMiddleware) RateLimitWrite() func(http.Handler) http.Handler {
	return m.rateLimitCustom(rateLimitWrite)
}

// RateLimitHealth returns the permissive limiter for health probes.
func (m *ChiMiddleware) RateLimitHealth() func(http.Handler) http.Handler {
	return m.rateLimitCustom(rateLimitHealth)
}

func (m *ChiMiddleware) rateLimitCustom(tier RateLimitConfig) func(http.Handler) http.Handler {
	if m.disabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.LimitByIP(tier.Requests, tier.Window)
}

// APISecurityHeaders adds standard security headers to API responses.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
