// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/campaignwatch/internal/logging"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// Tables:
//   - campaign_scores: one row per scoring run (history, never updated)
//   - campaign_alerts: one row per alert ID; rescoring refreshes the row
//     but keeps acknowledgement
func schemaQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS campaign_scores (
			campaign_id TEXT NOT NULL,
			score DOUBLE NOT NULL,
			severity TEXT NOT NULL,
			human_review_required BOOLEAN NOT NULL,
			post_count INTEGER NOT NULL,
			author_count INTEGER NOT NULL,
			alert_count INTEGER NOT NULL,
			component_scores TEXT NOT NULL,
			degraded_steps TEXT NOT NULL,
			scored_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS campaign_alerts (
			id TEXT PRIMARY KEY,
			campaign_id TEXT NOT NULL,
			alert_type TEXT NOT NULL,
			severity TEXT NOT NULL,
			component TEXT NOT NULL,
			score DOUBLE NOT NULL,
			message TEXT NOT NULL,
			evidence TEXT NOT NULL,
			acknowledged BOOLEAN DEFAULT false,
			acknowledged_by TEXT,
			acknowledged_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_scores_campaign_id ON campaign_scores(campaign_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_severity ON campaign_scores(severity)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_scored_at ON campaign_scores(scored_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_campaign_id ON campaign_alerts(campaign_id)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_type ON campaign_alerts(alert_type)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON campaign_alerts(created_at DESC)`,
	}
}

// initSchema creates the history tables if they don't exist.
func (db *DB) initSchema(ctx context.Context) error {
	for _, query := range schemaQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}

	// Flush the WAL so a crash right after startup replays nothing.
	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint after schema initialization")
	}
	return nil
}
