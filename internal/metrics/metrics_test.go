// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordDBQuery tests database query metric recording
func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		duration  time.Duration
		err       error
	}{
		{
			name:      "successful SELECT query",
			operation: "SELECT",
			table:     "notifications",
			duration:  10 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "successful INSERT query",
			operation: "INSERT",
			table:     "notifications",
			duration:  5 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "failed query",
			operation: "SELECT",
			table:     "notifications",
			duration:  100 * time.Millisecond,
			err:       errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table))

			RecordDBQuery(tt.operation, tt.table, tt.duration, tt.err)

			after := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table))
			if tt.err != nil && after != before+1 {
				t.Errorf("expected error counter to increment, got %v -> %v", before, after)
			}
			if tt.err == nil && after != before {
				t.Errorf("expected error counter unchanged, got %v -> %v", before, after)
			}
		})
	}
}

func TestRecordPollCycle(t *testing.T) {
	cyclesBefore := testutil.ToFloat64(PollCycles)
	errorsBefore := testutil.ToFloat64(PollErrors)
	detectedBefore := testutil.ToFloat64(PollRecordsDetected)

	RecordPollCycle(5*time.Millisecond, 3, nil)

	if got := testutil.ToFloat64(PollCycles); got != cyclesBefore+1 {
		t.Errorf("expected poll cycles %v, got %v", cyclesBefore+1, got)
	}
	if got := testutil.ToFloat64(PollRecordsDetected); got != detectedBefore+3 {
		t.Errorf("expected detected %v, got %v", detectedBefore+3, got)
	}

	RecordPollCycle(5*time.Millisecond, 0, errors.New("query timeout"))

	if got := testutil.ToFloat64(PollErrors); got != errorsBefore+1 {
		t.Errorf("expected poll errors %v, got %v", errorsBefore+1, got)
	}
	// A failed cycle must not count as completed.
	if got := testutil.ToFloat64(PollCycles); got != cyclesBefore+1 {
		t.Errorf("expected poll cycles unchanged after error, got %v", got)
	}
}

func TestSetWatermarkAge(t *testing.T) {
	SetWatermarkAge(time.Now().Add(-10 * time.Second))

	age := testutil.ToFloat64(WatermarkAge)
	if age < 9.5 || age > 11 {
		t.Errorf("expected watermark age near 10s, got %v", age)
	}
}

func TestRecordBroadcast(t *testing.T) {
	before := testutil.ToFloat64(BroadcastsTotal.WithLabelValues("new"))

	RecordBroadcast("new")
	RecordBroadcast("heartbeat")

	if got := testutil.ToFloat64(BroadcastsTotal.WithLabelValues("new")); got != before+1 {
		t.Errorf("expected new broadcast counter %v, got %v", before+1, got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/notifications", "200"))

	RecordAPIRequest("GET", "/api/v1/notifications", "200", 20*time.Millisecond)

	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/notifications", "200")); got != before+1 {
		t.Errorf("expected counter %v, got %v", before+1, got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("expected active requests %v, got %v", before+1, got)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("expected active requests %v, got %v", before, got)
	}
}

func TestRecordWebhook(t *testing.T) {
	before := testutil.ToFloat64(WebhooksReceived.WithLabelValues("accepted"))

	RecordWebhook("accepted")
	RecordWebhook("invalid_signature")

	if got := testutil.ToFloat64(WebhooksReceived.WithLabelValues("accepted")); got != before+1 {
		t.Errorf("expected accepted counter %v, got %v", before+1, got)
	}
}

func TestCircuitBreakerMetrics(t *testing.T) {
	before := testutil.ToFloat64(CircuitBreakerRequests.WithLabelValues("nats-publisher", "success"))

	RecordCircuitBreakerResult("nats-publisher", "success")
	SetCircuitBreakerState("nats-publisher", 2)

	if got := testutil.ToFloat64(CircuitBreakerRequests.WithLabelValues("nats-publisher", "success")); got != before+1 {
		t.Errorf("expected breaker counter %v, got %v", before+1, got)
	}
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("nats-publisher")); got != 2 {
		t.Errorf("expected breaker state 2, got %v", got)
	}
}
