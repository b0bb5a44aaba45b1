// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package api

import (
	"context"
	"net/http"
	"runtime"
	"time"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	GoVersion     string            `json:"go_version"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	AuthMode      string            `json:"auth_mode"`
	Components    map[string]string `json:"components"`
	WSClients     int               `json:"websocket_clients"`
}

const healthCheckTimeout = 2 * time.Second

// Health reports process and dependency health. Any failing check marks
// the service degraded and answers 503.
//
// GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := HealthStatus{
		Status:        "healthy",
		Version:       h.config.Version,
		GoVersion:     runtime.Version(),
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		AuthMode:      h.config.AuthMode,
		Components:    make(map[string]string, len(h.deps.Checks)),
	}
	if h.deps.Hub != nil {
		status.WSClients = h.deps.Hub.GetClientCount()
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()
	for _, c := range h.deps.Checks {
		if err := c.Check(ctx); err != nil {
			status.Components[c.Name] = "unhealthy: " + err.Error()
			status.Status = "degraded"
			continue
		}
		status.Components[c.Name] = "healthy"
	}

	if status.Status != "healthy" {
		respondJSON(w, http.StatusServiceUnavailable, successEnvelope(start, status))
		return
	}
	respondSuccess(w, start, status)
}

// HealthLive is the liveness probe. It never touches dependencies.
//
// GET /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, time.Now(), map[string]string{"status": "alive"})
}

// HealthLatency returns per-route latency percentiles over the recent
// request window.
//
// GET /api/v1/health/latency
func (h *Handler) HealthLatency(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.deps.Latency == nil {
		respondError(w, http.StatusServiceUnavailable, CodeUnavailable, "Latency monitoring is disabled", nil)
		return
	}
	respondSuccess(w, start, h.deps.Latency.Stats())
}
