// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package auth

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/tomtom215/pulse/internal/logging"
	"github.com/tomtom215/pulse/internal/models"
)

type contextKey string

// ClaimsContextKey is the request context key holding *Claims after
// authentication.
const ClaimsContextKey contextKey = "claims"

// Auth modes accepted by security.auth_mode.
const (
	ModeNone  = "none"
	ModeBasic = "basic"
	ModeJWT   = "jwt"
)

// Middleware enforces authentication on HTTP handlers.
type Middleware struct {
	jwtManager       *JWTManager
	basicAuthManager *BasicAuthManager
	authMode         string
	adminUsername    string
	securityLog      *logging.SecurityLogger
}

// NewMiddleware creates authentication middleware for the configured
// mode. Managers not needed by the mode may be nil.
func NewMiddleware(jwtManager *JWTManager, basicAuthManager *BasicAuthManager, authMode, adminUsername string) *Middleware {
	return &Middleware{
		jwtManager:       jwtManager,
		basicAuthManager: basicAuthManager,
		authMode:         authMode,
		adminUsername:    adminUsername,
		securityLog:      logging.NewSecurityLogger(),
	}
}

// Authenticate wraps a handler with authentication. In "none" mode every
// request passes with admin claims, which keeps downstream role checks
// uniform.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.authMode == ModeNone {
			ctx := context.WithValue(r.Context(), ClaimsContextKey, &Claims{
				Username: "anonymous",
				Role:     models.RoleAdmin,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		authHeader := r.Header.Get("Authorization")

		if m.authMode == ModeBasic {
			m.handleBasicAuth(w, r, next, authHeader)
			return
		}

		m.handleJWTAuth(w, r, next, authHeader)
	})
}

func (m *Middleware) handleBasicAuth(w http.ResponseWriter, r *http.Request, next http.Handler, authHeader string) {
	if authHeader == "" {
		m.sendBasicAuthChallenge(w, "Unauthorized: authentication required")
		return
	}

	username, err := m.basicAuthManager.ValidateCredentials(authHeader)
	if err != nil {
		m.securityLog.LogLoginFailure("", "basic", clientIP(r), r.UserAgent(), err.Error())
		m.sendBasicAuthChallenge(w, "Unauthorized: invalid credentials")
		return
	}

	ctx := context.WithValue(r.Context(), ClaimsContextKey, m.basicAuthClaims(username))
	next.ServeHTTP(w, r.WithContext(ctx))
}

func (m *Middleware) sendBasicAuthChallenge(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", m.basicAuthManager.GetWWWAuthenticateHeader())
	http.Error(w, message, http.StatusUnauthorized)
}

// basicAuthClaims maps the configured admin account to the admin role;
// anyone else a basic setup lets in is a viewer.
func (m *Middleware) basicAuthClaims(username string) *Claims {
	role := models.RoleViewer
	if m.adminUsername != "" && username == m.adminUsername {
		role = models.RoleAdmin
	}
	return &Claims{Username: username, Role: role}
}

func (m *Middleware) handleJWTAuth(w http.ResponseWriter, r *http.Request, next http.Handler, authHeader string) {
	token, ok := m.extractJWTToken(r, authHeader)
	if !ok {
		http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
		return
	}

	claims, err := m.jwtManager.ValidateToken(token)
	if err != nil {
		m.securityLog.LogEvent(&logging.SecurityEvent{
			Event:     "token_rejected",
			Provider:  "jwt",
			IPAddress: clientIP(r),
			UserAgent: r.UserAgent(),
			Error:     err.Error(),
		})
		http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
		return
	}

	ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// extractJWTToken looks for the token in the Authorization header, then
// the token cookie, then the token query parameter. The query parameter
// exists for the stream endpoints: browser WebSocket and EventSource
// APIs cannot set request headers.
func (m *Middleware) extractJWTToken(r *http.Request, authHeader string) (string, bool) {
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", false
		}
		return parts[1], true
	}

	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}

	return "", false
}

// ClaimsFromContext retrieves the authenticated claims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok
}

// clientIP strips the port from RemoteAddr. Pulse sits behind at most
// one reverse proxy in supported deployments; proxy header parsing is
// left to that proxy's access logs.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
