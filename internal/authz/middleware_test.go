// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package authz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/pulse/internal/auth"
	"github.com/tomtom215/pulse/internal/models"
)

func requestWithRole(method, path, role string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if role == "" {
		return req
	}
	ctx := context.WithValue(req.Context(), auth.ClaimsContextKey, &auth.Claims{
		Username: "test",
		Role:     role,
	})
	return req.WithContext(ctx)
}

func TestRequireEnforcesPolicy(t *testing.T) {
	t.Parallel()

	m := NewMiddleware(newTestEnforcer(t))
	handler := m.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name     string
		method   string
		path     string
		role     string
		wantCode int
	}{
		{"viewer reads", http.MethodGet, "/api/v1/notifications", models.RoleViewer, http.StatusOK},
		{"viewer cannot write", http.MethodPost, "/api/v1/notifications", models.RoleViewer, http.StatusForbidden},
		{"editor writes", http.MethodPost, "/api/v1/notifications", models.RoleEditor, http.StatusOK},
		{"admin deletes", http.MethodDelete, "/api/v1/notifications", models.RoleAdmin, http.StatusOK},
		{"no claims", http.MethodGet, "/api/v1/notifications", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, requestWithRole(tt.method, tt.path, tt.role))
			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
		})
	}
}
