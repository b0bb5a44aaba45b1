// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

// Package database keeps the scoring history in DuckDB.
//
// Every scoring run appends a row to campaign_scores; alerts are upserted
// into campaign_alerts by their stable ID, so rescoring the same campaign
// refreshes an alert instead of duplicating it and never clears its
// acknowledgement. DB implements campaign.Sink.
//
// Queries use parameterized values; ORDER BY columns are whitelisted.
//
// The driver is CGO-based (github.com/duckdb/duckdb-go/v2). Tests use
// ":memory:" databases.
package database
