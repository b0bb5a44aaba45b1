// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

// Package middleware provides HTTP instrumentation shared by the API
// router: Prometheus request metrics and a sliding-window latency monitor
// served at /api/v1/health/latency.
//
// Both label requests by chi route pattern ("/api/v1/campaigns/{id}"),
// never by raw path.
package middleware
