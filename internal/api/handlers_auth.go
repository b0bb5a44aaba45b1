// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/campaignwatch/internal/auth"
	"github.com/tomtom215/campaignwatch/internal/logging"
)

// Login exchanges a username and password for a bearer token.
//
// POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.config.AuthMode != auth.ModeJWT || h.deps.JWT == nil || h.deps.Credentials == nil {
		respondError(w, http.StatusForbidden, CodeAuthDisabled, "Authentication is disabled", nil)
		return
	}

	var req LoginRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	role, err := h.deps.Credentials.Verify(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logging.Ctx(r.Context()).Warn().
				Str("username", sanitizeLogValue(req.Username)).
				Str("remote_addr", r.RemoteAddr).
				Msg("Failed login attempt")
			respondError(w, http.StatusUnauthorized, CodeAuthentication, "Invalid username or password", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, CodeInternal, "Login failed", err)
		return
	}

	token, expires, err := h.deps.JWT.GenerateToken(req.Username, role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "Failed to issue token", err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("username", req.Username).Str("role", role).Msg("User logged in")
	respondSuccess(w, start, LoginResponse{
		Token:     token,
		ExpiresAt: expires.UTC().Format(time.RFC3339),
		Username:  req.Username,
		Role:      role,
	})
}
