// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pulse/internal/logging"
	"github.com/tomtom215/pulse/internal/metrics"
	"github.com/tomtom215/pulse/internal/models"
)

// webhookSignatureHeader carries the hex-encoded HMAC-SHA256 of the
// raw request body, keyed with the configured webhook secret.
const webhookSignatureHeader = "X-Pulse-Signature"

// maxWebhookBody bounds the request body read. Order payloads are small;
// anything larger is hostile.
const maxWebhookBody = 64 * 1024

// OrderWebhook ingests order-created webhooks
//
// @Summary Ingest an order-created webhook
// @Description Verifies the HMAC-SHA256 signature, builds an order notification, persists it, and delivers it to connected clients. The endpoint is public; the signature is the authentication.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param X-Pulse-Signature header string true "Hex-encoded HMAC-SHA256 of the request body"
// @Param order body models.OrderWebhookPayload true "Order payload"
// @Success 201 {object} models.APIResponse{data=models.Notification} "Order notification created"
// @Failure 400 {object} models.APIResponse "Invalid payload"
// @Failure 401 {object} models.APIResponse "Signature verification failed"
// @Failure 404 {object} models.APIResponse "Webhooks disabled"
// @Failure 429 {object} models.APIResponse "Throttled"
// @Router /webhooks/orders [post]
func (h *Handler) OrderWebhook(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || !h.requireStore(w) {
		return
	}

	start := time.Now()

	if h.config == nil || h.config.Webhook.Secret == "" {
		respondError(w, http.StatusNotFound, "WEBHOOKS_DISABLED", "Webhook ingest is not enabled", nil)
		return
	}

	if !h.webhookLimiter.Allow() {
		metrics.RecordWebhook("throttled")
		respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Webhook rate limit exceeded", nil)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read request body", err)
		return
	}
	defer func() { _ = r.Body.Close() }()

	signature := r.Header.Get(webhookSignatureHeader)
	if signature == "" {
		h.rejectWebhook(w, r, "missing signature")
		return
	}
	if !verifyWebhookSignature(body, signature, h.config.Webhook.Secret) {
		h.rejectWebhook(w, r, "signature mismatch")
		return
	}

	var order models.OrderWebhookPayload
	if err := json.Unmarshal(body, &order); err != nil {
		metrics.RecordWebhook("invalid")
		respondError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Failed to parse webhook JSON", err)
		return
	}
	if apiErr := validateRequest(&order); apiErr != nil {
		metrics.RecordWebhook("invalid")
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	saved, err := h.store.Insert(r.Context(), models.Notification{
		Kind:    models.KindOrder,
		Message: orderMessage(order),
		Payload: body,
		Source:  "webhook",
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to persist order notification", err)
		return
	}

	metrics.RecordWebhook("accepted")
	logging.Info().
		Str("order_id", sanitizeLogValue(order.OrderID)).
		Str("order_number", sanitizeLogValue(order.OrderNumber)).
		Str("notification_id", saved.ID.String()).
		Msg("Order webhook accepted")

	h.fastPath(r.Context(), saved)

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   saved,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// rejectWebhook logs and responds to a failed signature check.
func (h *Handler) rejectWebhook(w http.ResponseWriter, r *http.Request, reason string) {
	metrics.RecordWebhook("rejected")
	h.securityLog.LogWebhookRejected(remoteIP(r), r.URL.Path, reason)
	respondError(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "Webhook signature verification failed", nil)
}

// verifyWebhookSignature checks the hex HMAC-SHA256 of the body in
// constant time.
func verifyWebhookSignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

// orderMessage renders the human-readable notification text for an order.
func orderMessage(order models.OrderWebhookPayload) string {
	who := order.CustomerName
	if who == "" {
		who = "a customer"
	}

	items := "item"
	if order.ItemCount != 1 {
		items = "items"
	}

	currency := order.Currency
	if currency == "" {
		currency = "USD"
	}

	return fmt.Sprintf("New order %s from %s (%d %s, %.2f %s)",
		order.OrderNumber, who, order.ItemCount, items, order.TotalPrice, currency)
}
