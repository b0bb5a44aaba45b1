// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/campaignwatch/internal/auth"
	"github.com/tomtom215/campaignwatch/internal/database"
	"github.com/tomtom215/campaignwatch/internal/logging"
)

// AlertsResponse is returned by GET /alerts.
type AlertsResponse struct {
	Alerts []database.AlertRecord `json:"alerts"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

// ListAlerts returns raised alerts with optional filters.
//
// GET /api/v1/alerts?campaign_id=&type=a,b&severity=high,critical&acknowledged=false&limit=&offset=&order_by=&direction=
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.deps.History == nil {
		respondError(w, http.StatusServiceUnavailable, CodeUnavailable, "Alert history is disabled", nil)
		return
	}

	q := r.URL.Query()
	limit, err := queryInt(q, "limit", 100)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}
	offset, err := queryInt(q, "offset", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}
	acked, err := queryBool(q, "acknowledged")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}

	query := ListAlertsQuery{
		CampaignID:   q.Get("campaign_id"),
		Types:        splitList(q.Get("type")),
		Severities:   splitList(q.Get("severity")),
		Acknowledged: acked,
		Limit:        limit,
		Offset:       offset,
		OrderBy:      q.Get("order_by"),
		Direction:    q.Get("direction"),
	}
	if !validateQuery(w, &query) {
		return
	}

	filter := database.AlertFilter{
		CampaignID:     query.CampaignID,
		Types:          query.Types,
		Severities:     query.Severities,
		Acknowledged:   query.Acknowledged,
		Limit:          query.Limit,
		Offset:         query.Offset,
		OrderBy:        query.OrderBy,
		OrderDirection: query.Direction,
	}
	alerts, err := h.deps.History.ListAlerts(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeDatabase, "Failed to list alerts", err)
		return
	}
	total, err := h.deps.History.CountAlerts(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeDatabase, "Failed to count alerts", err)
		return
	}

	respondSuccess(w, start, AlertsResponse{Alerts: alerts, Total: total, Limit: query.Limit, Offset: query.Offset})
}

// AcknowledgeAlert marks an alert as reviewed by the caller.
//
// POST /api/v1/alerts/{id}/acknowledge
func (h *Handler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.deps.History == nil {
		respondError(w, http.StatusServiceUnavailable, CodeUnavailable, "Alert history is disabled", nil)
		return
	}

	id := chi.URLParam(r, "id")
	by := "anonymous"
	if claims := auth.GetClaims(r.Context()); claims != nil && claims.Username != "" {
		by = claims.Username
	}

	if err := h.deps.History.AcknowledgeAlert(r.Context(), id, by); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, CodeNotFound, "Alert not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, CodeDatabase, "Failed to acknowledge alert", err)
		return
	}

	alert, err := h.deps.History.GetAlert(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeDatabase, "Failed to load alert", err)
		return
	}
	logging.Ctx(r.Context()).Info().
		Str("alert_id", id).
		Str("campaign_id", alert.CampaignID).
		Str("acknowledged_by", by).
		Msg("Alert acknowledged")
	respondSuccess(w, start, alert)
}
