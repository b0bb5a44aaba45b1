// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/campaignwatch/internal/logging"
)

type contextKey string

// ClaimsContextKey holds the request's *Claims.
const ClaimsContextKey contextKey = "claims"

// Auth modes.
const (
	ModeNone = "none"
	ModeJWT  = "jwt"
)

// anonymous is attached in ModeNone so handlers always see claims.
var anonymous = &Claims{Username: "anonymous", Role: RoleAdmin}

// ContextWithClaims returns ctx carrying claims.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// GetClaims returns the request claims, or nil.
func GetClaims(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*Claims)
	return claims
}

// Middleware authenticates bearer tokens.
type Middleware struct {
	jwtManager *JWTManager
	mode       string
}

// NewMiddleware creates the authentication middleware. jwtManager may be
// nil in ModeNone.
func NewMiddleware(jwtManager *JWTManager, mode string) *Middleware {
	if mode == "" {
		mode = ModeNone
	}
	return &Middleware{jwtManager: jwtManager, mode: mode}
}

// Enabled reports whether requests must carry a token.
func (m *Middleware) Enabled() bool {
	return m.mode == ModeJWT
}

// Authenticate rejects requests without a valid token and stores the
// claims in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() {
			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), anonymous)))
			return
		}

		token, ok := extractToken(r)
		if !ok {
			writeUnauthorized(w, "missing or malformed bearer token")
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Token validation failed")
			writeUnauthorized(w, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

// extractToken reads the token from the Authorization header, or from the
// "token" query parameter for websocket upgrades that cannot set headers.
func extractToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		if t := r.URL.Query().Get("token"); t != "" {
			return t, true
		}
	}
	return "", false
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="campaignwatch"`)
	http.Error(w, "Unauthorized: "+msg, http.StatusUnauthorized)
}
