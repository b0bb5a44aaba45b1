// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/campaignwatch/internal/campaign"
	"github.com/tomtom215/campaignwatch/internal/detection"
	"github.com/tomtom215/campaignwatch/internal/metrics"
)

// AnalyzeBursts runs burst detection over the posts. window_hours
// defaults to the detector's configured window; hashtag restricts the
// analysis to posts carrying it.
//
// POST /api/v1/analysis/bursts?window_hours=24&hashtag=
func (h *Handler) AnalyzeBursts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()
	window, err := queryInt(q, "window_hours", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}
	query := BurstQuery{WindowHours: window, Hashtag: q.Get("hashtag")}
	if !validateQuery(w, &query) {
		return
	}

	var req PostsRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	var res detection.BurstResult
	if query.Hashtag != "" {
		res = h.deps.Burst.DetectHashtagBursts(req.Posts, query.Hashtag, query.WindowHours)
	} else {
		res = h.deps.Burst.DetectBursts(req.Posts, query.WindowHours)
	}
	metrics.RecordAnalysis(campaign.StepBurst, time.Since(start))
	respondSuccess(w, start, res)
}

// AnalyzeCoordination runs the coordination detector. Authors are derived
// from the posts when omitted.
//
// POST /api/v1/analysis/coordination
func (h *Handler) AnalyzeCoordination(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req PostsRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	res := h.deps.Coordination.DetectCoordination(req.Posts, req.Authors)
	metrics.RecordAnalysis(campaign.StepCoordination, time.Since(start))
	respondSuccess(w, start, res)
}

// AnalyzeBot scores one author's bot likelihood from the profile and posts.
//
// POST /api/v1/analysis/bots
func (h *Handler) AnalyzeBot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req BotRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	res := h.deps.Bots.CalculateBotLikelihood(&req.Author, req.Posts)
	metrics.RecordAnalysis("bot", time.Since(start))
	respondSuccess(w, start, res)
}

// AnalyzeBotNetwork scores every author and looks for a coordinated bot
// network.
//
// POST /api/v1/analysis/bots/network
func (h *Handler) AnalyzeBotNetwork(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req PostsRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	res := h.deps.Bots.AnalyzeNetwork(req.Authors, req.Posts)
	metrics.RecordAnalysis(campaign.StepBotNetwork, time.Since(start))
	respondSuccess(w, start, res)
}
