// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package api

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pulse/internal/models"
)

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func orderBody(t *testing.T) []byte {
	t.Helper()

	body, err := json.Marshal(models.OrderWebhookPayload{
		OrderID:      "gid://shop/Order/1001",
		OrderNumber:  "#1001",
		CustomerName: "Jane",
		TotalPrice:   59.90,
		Currency:     "USD",
		ItemCount:    2,
	})
	if err != nil {
		t.Fatalf("failed to marshal order: %v", err)
	}
	return body
}

func TestOrderWebhookAccepted(t *testing.T) {
	t.Parallel()

	h, fs, rb := newTestHandler(t)
	body := orderBody(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/orders", bytes.NewBuffer(body))
	req.Header.Set(webhookSignatureHeader, signBody(body, "webhook-test-secret"))
	rec := httptest.NewRecorder()
	h.OrderWebhook(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fs.notifications) != 1 {
		t.Fatalf("expected 1 stored notification, got %d", len(fs.notifications))
	}
	n := fs.notifications[0]
	if n.Kind != models.KindOrder {
		t.Errorf("expected order kind, got %q", n.Kind)
	}
	if n.Source != "webhook" {
		t.Errorf("expected webhook source, got %q", n.Source)
	}
	if !strings.Contains(n.Message, "#1001") || !strings.Contains(n.Message, "Jane") {
		t.Errorf("unexpected message: %q", n.Message)
	}
	if rb.batchCount() != 1 {
		t.Errorf("expected fast-path broadcast, got %d batches", rb.batchCount())
	}
}

func TestOrderWebhookSignatureChecks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		signature string
	}{
		{"missing signature", ""},
		{"wrong signature", "deadbeef"},
		{"signature for different body", signBody([]byte(`{"other":"body"}`), "webhook-test-secret")},
		{"signature with wrong secret", ""},
	}
	tests[3].signature = signBody([]byte(`{}`), "another-secret")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, fs, _ := newTestHandler(t)
			body := orderBody(t)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/orders", bytes.NewBuffer(body))
			if tt.signature != "" {
				req.Header.Set(webhookSignatureHeader, tt.signature)
			}
			rec := httptest.NewRecorder()
			h.OrderWebhook(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			fs.mu.Lock()
			stored := len(fs.notifications)
			fs.mu.Unlock()
			if stored != 0 {
				t.Errorf("rejected webhook must not persist, got %d records", stored)
			}
		})
	}
}

func TestOrderWebhookDisabledWithoutSecret(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)
	h.config.Webhook.Secret = ""

	body := orderBody(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/orders", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	h.OrderWebhook(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when webhooks disabled, got %d", rec.Code)
	}
}

func TestOrderWebhookInvalidPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"order_id":`},
		{"missing order number", `{"order_id":"o-1"}`},
		{"negative price", `{"order_id":"o-1","order_number":"#1","total_price":-5}`},
		{"bad currency length", `{"order_id":"o-1","order_number":"#1","currency":"EURO"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, _, _ := newTestHandler(t)
			body := []byte(tt.body)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/orders", bytes.NewBuffer(body))
			req.Header.Set(webhookSignatureHeader, signBody(body, "webhook-test-secret"))
			rec := httptest.NewRecorder()
			h.OrderWebhook(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestOrderWebhookThrottled(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Webhook.RatePerSecond = 0.001
	cfg.Webhook.Burst = 1
	h := NewHandler(HandlerDeps{Config: cfg, Store: &fakeStore{}})

	// First request drains the single-token bucket.
	if !h.webhookLimiter.Allow() {
		t.Fatal("expected first token available")
	}

	body := orderBody(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/orders", bytes.NewBuffer(body))
	req.Header.Set(webhookSignatureHeader, signBody(body, "webhook-test-secret"))
	rec := httptest.NewRecorder()
	h.OrderWebhook(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestOrderMessageRendering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		order models.OrderWebhookPayload
		want  string
	}{
		{
			"full order",
			models.OrderWebhookPayload{OrderNumber: "#1001", CustomerName: "Jane", TotalPrice: 59.90, Currency: "USD", ItemCount: 2},
			"New order #1001 from Jane (2 items, 59.90 USD)",
		},
		{
			"anonymous single item",
			models.OrderWebhookPayload{OrderNumber: "#7", TotalPrice: 10, ItemCount: 1},
			"New order #7 from a customer (1 item, 10.00 USD)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := orderMessage(tt.order); got != tt.want {
				t.Errorf("orderMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
