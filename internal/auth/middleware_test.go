// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/pulse/internal/models"
)

// claimsProbe records the claims the middleware injected.
func claimsProbe(got **Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := ClaimsFromContext(r.Context()); ok {
			*got = claims
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestNoneModePassesWithAdminClaims(t *testing.T) {
	t.Parallel()

	m := NewMiddleware(nil, nil, ModeNone, "")

	var claims *Claims
	rec := httptest.NewRecorder()
	m.Authenticate(claimsProbe(&claims)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if claims == nil || claims.Role != models.RoleAdmin {
		t.Errorf("expected admin claims in none mode, got %+v", claims)
	}
}

func TestJWTModeAcceptsBearerToken(t *testing.T) {
	t.Parallel()

	jwtManager := newTestJWTManager(t, time.Hour)
	m := NewMiddleware(jwtManager, nil, ModeJWT, "")

	token, _, err := jwtManager.GenerateToken("alice", models.RoleEditor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var claims *Claims
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	m.Authenticate(claimsProbe(&claims)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if claims == nil || claims.Username != "alice" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestJWTModeAcceptsQueryParamToken(t *testing.T) {
	t.Parallel()

	jwtManager := newTestJWTManager(t, time.Hour)
	m := NewMiddleware(jwtManager, nil, ModeJWT, "")

	token, _, err := jwtManager.GenerateToken("alice", models.RoleViewer)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var claims *Claims
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events?token="+token, nil)
	rec := httptest.NewRecorder()
	m.Authenticate(claimsProbe(&claims)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if claims == nil || claims.Username != "alice" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestJWTModeAcceptsCookieToken(t *testing.T) {
	t.Parallel()

	jwtManager := newTestJWTManager(t, time.Hour)
	m := NewMiddleware(jwtManager, nil, ModeJWT, "")

	token, _, err := jwtManager.GenerateToken("alice", models.RoleViewer)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var claims *Claims
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	m.Authenticate(claimsProbe(&claims)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if claims == nil {
		t.Error("expected claims from cookie token")
	}
}

func TestJWTModeRejectsMissingAndInvalidTokens(t *testing.T) {
	t.Parallel()

	jwtManager := newTestJWTManager(t, time.Hour)
	m := NewMiddleware(jwtManager, nil, ModeJWT, "")

	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for unauthenticated request")
	}))

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"no token", func(r *http.Request) {}},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", "Token abc") }},
		{"invalid token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestBasicModeMapsRoles(t *testing.T) {
	t.Parallel()

	basicManager, err := NewBasicAuthManager("admin", "correct-horse")
	if err != nil {
		t.Fatalf("new basic manager: %v", err)
	}
	m := NewMiddleware(nil, basicManager, ModeBasic, "admin")

	var claims *Claims
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", basicHeader("admin", "correct-horse"))
	rec := httptest.NewRecorder()
	m.Authenticate(claimsProbe(&claims)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if claims == nil || claims.Role != models.RoleAdmin {
		t.Errorf("expected admin role for configured admin, got %+v", claims)
	}
}

func TestBasicModeSendsChallenge(t *testing.T) {
	t.Parallel()

	basicManager, err := NewBasicAuthManager("admin", "correct-horse")
	if err != nil {
		t.Fatalf("new basic manager: %v", err)
	}
	m := NewMiddleware(nil, basicManager, ModeBasic, "admin")

	rec := httptest.NewRecorder()
	m.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("expected WWW-Authenticate challenge header")
	}
}
