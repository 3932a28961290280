// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSanitizeToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"short", "abc123", "***"},
		{"boundary", "123456789012", "***"},
		{"long", "eyJhbGciOiJSUzI1NiIs", "eyJh...I1Is"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeToken(tt.input); got != tt.expected {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"ab", "***"},
		{"johndoe", "jo***"},
	}

	for _, tt := range tests {
		if got := SanitizeUsername(tt.input); got != tt.expected {
			t.Errorf("SanitizeUsername(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	if got := SanitizeError("invalid password for user"); got != "authentication error" {
		t.Errorf("expected generic message for sensitive error, got %q", got)
	}

	if got := SanitizeError("connection refused"); got != "connection refused" {
		t.Errorf("expected passthrough for benign error, got %q", got)
	}

	long := strings.Repeat("x", 300)
	if got := SanitizeError(long); len(got) != 203 {
		t.Errorf("expected truncation to 200 chars plus ellipsis, got len %d", len(got))
	}
}

func TestSanitizeValue(t *testing.T) {
	t.Parallel()

	if got := SanitizeValue("signature", "sha256=abcdef1234567890"); strings.Contains(got, "1234567890") {
		t.Errorf("expected masked signature, got %q", got)
	}

	if got := SanitizeValue("path", "/api/v1/webhooks/orders"); got != "/api/v1/webhooks/orders" {
		t.Errorf("expected passthrough for benign key, got %q", got)
	}
}

func TestSecurityLoggerLoginEvents(t *testing.T) {
	var buf bytes.Buffer

	logger := NewSecurityLoggerWithLogger(zerolog.New(&buf))
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger.LogLoginSuccess("alice", "jwt", "10.0.0.1", "curl/8.0")

	output := buf.String()
	if !strings.Contains(output, `"event":"login_success"`) {
		t.Errorf("expected login_success event, got: %s", output)
	}
	if !strings.Contains(output, `"username":"al***"`) {
		t.Errorf("expected sanitized username, got: %s", output)
	}
	if !strings.Contains(output, `"status":"success"`) {
		t.Errorf("expected success status, got: %s", output)
	}

	buf.Reset()
	logger.LogLoginFailure("alice", "basic", "10.0.0.1", "curl/8.0", "wrong password")

	output = buf.String()
	if !strings.Contains(output, `"event":"login_failed"`) {
		t.Errorf("expected login_failed event, got: %s", output)
	}
	if !strings.Contains(output, `"error":"authentication error"`) {
		t.Errorf("expected sanitized error, got: %s", output)
	}
}

func TestSecurityLoggerWebhookRejected(t *testing.T) {
	var buf bytes.Buffer

	logger := NewSecurityLoggerWithLogger(zerolog.New(&buf))
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger.LogWebhookRejected("10.0.0.2", "/api/v1/webhooks/orders", "signature mismatch")

	output := buf.String()
	if !strings.Contains(output, `"event":"webhook_rejected"`) {
		t.Errorf("expected webhook_rejected event, got: %s", output)
	}
	if !strings.Contains(output, `"path":"/api/v1/webhooks/orders"`) {
		t.Errorf("expected path detail, got: %s", output)
	}
}
