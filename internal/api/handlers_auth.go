// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package api

import (
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pulse/internal/models"
)

// Login authenticates a user and issues a JWT token
//
// @Summary Authenticate user
// @Description Verifies username and password against the configured admin account and returns a JWT token, also set as an HTTP-only cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.APIResponse{data=models.LoginResponse} "Authentication successful"
// @Failure 400 {object} models.APIResponse "Invalid request body"
// @Failure 401 {object} models.APIResponse "Invalid credentials"
// @Failure 403 {object} models.APIResponse "JWT authentication disabled"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if !h.loginConfigured(w) {
		return
	}

	if err := h.basicAuth.ValidatePassword(req.Username, req.Password); err != nil {
		h.securityLog.LogLoginFailure(req.Username, "jwt", remoteIP(r), r.UserAgent(), "invalid credentials")
		respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
		return
	}

	token, expiresAt, err := h.jwtManager.GenerateToken(req.Username, models.RoleAdmin)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "TOKEN_GENERATION_FAILED", "Failed to generate authentication token", err)
		return
	}

	h.securityLog.LogLoginSuccess(req.Username, "jwt", remoteIP(r), r.UserAgent())
	h.setAuthCookie(w, r, token, expiresAt)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.LoginResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			Username:  req.Username,
			Role:      models.RoleAdmin,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// loginConfigured checks that JWT login is enabled and wired, and
// reports whether the request may proceed.
func (h *Handler) loginConfigured(w http.ResponseWriter) bool {
	if h.config == nil || h.config.Security.AuthMode != "jwt" {
		respondError(w, http.StatusForbidden, "AUTH_DISABLED", "JWT authentication is disabled", nil)
		return false
	}
	if h.jwtManager == nil || h.basicAuth == nil {
		respondError(w, http.StatusInternalServerError, "AUTH_NOT_CONFIGURED", "Authentication is not configured", nil)
		return false
	}
	return true
}

// setAuthCookie sets the authentication cookie so browser clients can
// open /ws and /events without attaching headers.
func (h *Handler) setAuthCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// remoteIP extracts the client IP without the port.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
