// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

// Package api serves the campaign scoring HTTP API with the chi router.
//
// Routes (all under /api/v1):
//
//	POST /campaigns/score            score one campaign
//	POST /campaigns/batch            score many campaigns, order preserved
//	GET  /campaigns                  scoring history (campaign_id, severity, limit, offset)
//	GET  /campaigns/summary          counts per severity and alert totals
//	GET  /campaigns/{id}             latest result (snapshot, then history)
//	POST /analysis/bursts            burst detection (window_hours, hashtag)
//	POST /analysis/coordination      coordination detection
//	POST /analysis/bots              one author's bot likelihood
//	POST /analysis/bots/network      bot network analysis
//	GET  /alerts                     alert history
//	POST /alerts/{id}/acknowledge    mark an alert reviewed
//	GET  /ws                         live alert stream
//	POST /auth/login                 issue a bearer token
//	GET  /health, /health/live, /health/latency
//
// Prometheus metrics are served at /metrics.
//
// Every JSON response uses models.APIResponse. Scoring responses never
// fail because persistence or delivery failed; those errors are logged and
// counted by the sinks.
package api
