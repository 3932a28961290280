// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newBufferedSlogLogger(buf *bytes.Buffer) *slog.Logger {
	handler := &SlogHandler{logger: zerolog.New(buf)}
	return slog.New(handler)
}

func TestSlogHandlerLevels(t *testing.T) {
	var buf bytes.Buffer

	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	logger := newBufferedSlogLogger(&buf)

	tests := []struct {
		name    string
		logFunc func()
		level   string
	}{
		{"Debug", func() { logger.Debug("debug msg") }, "debug"},
		{"Info", func() { logger.Info("info msg") }, "info"},
		{"Warn", func() { logger.Warn("warn msg") }, "warn"},
		{"Error", func() { logger.Error("error msg") }, "error"},
	}

	for _, tt := range tests {
		buf.Reset()
		tt.logFunc()
		if !strings.Contains(buf.String(), `"level":"`+tt.level+`"`) {
			t.Errorf("%s: expected level %q in output: %s", tt.name, tt.level, buf.String())
		}
	}
}

func TestSlogHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer

	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	logger := newBufferedSlogLogger(&buf)

	logger.Info("message",
		slog.String("service", "pulse"),
		slog.Int("count", 3),
		slog.Bool("ok", true),
	)

	output := buf.String()
	for _, want := range []string{`"service":"pulse"`, `"count":3`, `"ok":true`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestSlogHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer

	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	logger := newBufferedSlogLogger(&buf).With(slog.String("supervisor", "root"))

	logger.Info("service started")

	if !strings.Contains(buf.String(), `"supervisor":"root"`) {
		t.Errorf("expected pre-configured attr in output: %s", buf.String())
	}
}

func TestSlogHandlerWithGroup(t *testing.T) {
	var buf bytes.Buffer

	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	logger := newBufferedSlogLogger(&buf).WithGroup("suture")

	logger.Info("event", slog.String("service", "hub"))

	if !strings.Contains(buf.String(), `"suture.service":"hub"`) {
		t.Errorf("expected group-prefixed key in output: %s", buf.String())
	}
}

func TestSlogHandlerEnabled(t *testing.T) {
	handler := &SlogHandler{logger: zerolog.New(bytes.NewBuffer(nil)).Level(zerolog.WarnLevel)}

	if handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug to be disabled at warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled at warn level")
	}
}

func TestNewSlogLogger(t *testing.T) {
	logger := NewSlogLogger()
	if logger == nil {
		t.Fatal("expected non-nil slog logger")
	}
}
