// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/campaignwatch/internal/campaign"
	"github.com/tomtom215/campaignwatch/internal/database"
	"github.com/tomtom215/campaignwatch/internal/logging"
	"github.com/tomtom215/campaignwatch/internal/store"
)

// BatchResponse is returned by POST /campaigns/batch.
type BatchResponse struct {
	Results []campaign.Result `json:"results"`
	Count   int               `json:"count"`
}

// ScoreCampaign scores one campaign and records the result.
//
// POST /api/v1/campaigns/score
func (h *Handler) ScoreCampaign(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req ScoreRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	ctx := logging.ContextWithCampaignID(r.Context(), req.ID)
	res := h.deps.Scorer.ScoreCampaign(ctx, req.Campaign())
	h.record(ctx, res)

	respondSuccess(w, start, res)
}

// ScoreBatch scores several campaigns concurrently. Results keep request
// order; campaigns without an ID are named campaign_<index>.
//
// POST /api/v1/campaigns/batch
func (h *Handler) ScoreBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req BatchRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if len(req.Campaigns) > h.config.MaxBatchSize {
		respondError(w, http.StatusBadRequest, CodeValidation,
			fmt.Sprintf("campaigns must contain at most %d items", h.config.MaxBatchSize), nil)
		return
	}

	campaigns := make([]campaign.Campaign, len(req.Campaigns))
	for i := range req.Campaigns {
		campaigns[i] = req.Campaigns[i].Campaign()
	}

	results := h.deps.Scorer.ScoreBatch(r.Context(), campaigns)
	for i := range results {
		h.record(logging.ContextWithCampaignID(r.Context(), results[i].CampaignID), results[i])
	}

	respondSuccess(w, start, BatchResponse{Results: results, Count: len(results)})
}

// GetCampaign returns the latest full result from the snapshot store, or
// the latest history row when the snapshot has expired.
//
// GET /api/v1/campaigns/{id}
func (h *Handler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	if !campaignIDValid(id) {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid campaign id", nil)
		return
	}
	if h.deps.Snapshots == nil && h.deps.History == nil {
		respondError(w, http.StatusServiceUnavailable, CodeUnavailable, "Campaign storage is disabled", nil)
		return
	}

	if h.deps.Snapshots != nil {
		res, err := h.deps.Snapshots.Get(r.Context(), id)
		switch {
		case err == nil:
			respondSuccess(w, start, res)
			return
		case !errors.Is(err, store.ErrNotFound):
			logging.Ctx(r.Context()).Warn().Err(err).Str("campaign_id", id).Msg("Snapshot lookup failed")
		}
	}

	if h.deps.History != nil {
		rec, err := h.deps.History.LatestScore(r.Context(), id)
		switch {
		case err == nil:
			respondSuccess(w, start, rec)
			return
		case !errors.Is(err, database.ErrNotFound):
			respondError(w, http.StatusInternalServerError, CodeDatabase, "Failed to load campaign", err)
			return
		}
	}

	respondError(w, http.StatusNotFound, CodeNotFound, "Campaign not found", nil)
}

// ListCampaigns returns scoring history, newest first.
//
// GET /api/v1/campaigns?campaign_id=&severity=&limit=&offset=
func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.deps.History == nil {
		respondError(w, http.StatusServiceUnavailable, CodeUnavailable, "Score history is disabled", nil)
		return
	}

	q := r.URL.Query()
	limit, err := queryInt(q, "limit", 50)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}
	offset, err := queryInt(q, "offset", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}
	query := ListCampaignsQuery{
		CampaignID: q.Get("campaign_id"),
		Severity:   q.Get("severity"),
		Limit:      limit,
		Offset:     offset,
	}
	if !validateQuery(w, &query) {
		return
	}

	records, err := h.deps.History.ListScores(r.Context(), database.ScoreFilter{
		CampaignID: query.CampaignID,
		Severity:   query.Severity,
		Limit:      query.Limit,
		Offset:     query.Offset,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeDatabase, "Failed to list campaigns", err)
		return
	}
	respondSuccess(w, start, records)
}

// CampaignSummary returns campaign counts per severity and alert totals.
//
// GET /api/v1/campaigns/summary
func (h *Handler) CampaignSummary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.deps.History == nil {
		respondError(w, http.StatusServiceUnavailable, CodeUnavailable, "Score history is disabled", nil)
		return
	}
	summary, err := h.deps.History.Summary(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeDatabase, "Failed to build summary", err)
		return
	}
	respondSuccess(w, start, summary)
}

func campaignIDValid(id string) bool {
	probe := struct {
		ID string `json:"id" validate:"required,campaign_id"`
	}{ID: id}
	return validationOK(&probe)
}
