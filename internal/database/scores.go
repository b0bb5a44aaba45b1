// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/campaignwatch/internal/campaign"
	"github.com/tomtom215/campaignwatch/internal/logging"
	"github.com/tomtom215/campaignwatch/internal/metrics"
)

// ScoreRecord is one row of scoring history.
type ScoreRecord struct {
	CampaignID          string             `json:"campaign_id"`
	Score               float64            `json:"campaign_score"`
	Severity            campaign.Severity  `json:"severity"`
	HumanReviewRequired bool               `json:"human_review_required"`
	PostCount           int                `json:"post_count"`
	AuthorCount         int                `json:"author_count"`
	AlertCount          int                `json:"alert_count"`
	ComponentScores     map[string]float64 `json:"component_scores"`
	DegradedSteps       []string           `json:"degraded_steps,omitempty"`
	ScoredAt            time.Time          `json:"timestamp"`
}

// ScoreFilter narrows ListScores.
type ScoreFilter struct {
	CampaignID string
	Severity   string
	Limit      int // default 100
	Offset     int
}

// Summary aggregates the history. BySeverity counts each campaign once,
// by the severity of its latest run.
type Summary struct {
	Campaigns            int64            `json:"campaigns"`
	ScoringRuns          int64            `json:"scoring_runs"`
	AverageScore         float64          `json:"average_score"`
	BySeverity           map[string]int64 `json:"by_severity"`
	Alerts               int64            `json:"alerts"`
	UnacknowledgedAlerts int64            `json:"unacknowledged_alerts"`
	HumanReviewPending   int64            `json:"human_review_required"`
}

const scoreSelectColumns = `campaign_id, score, severity, human_review_required, post_count,
	author_count, alert_count, component_scores, degraded_steps, scored_at`

// Record appends res to the history and upserts its alerts in one
// transaction. Results without a campaign ID are skipped.
func (db *DB) Record(ctx context.Context, res campaign.Result) error {
	if res.CampaignID == "" {
		logging.Ctx(ctx).Debug().Msg("Skipping history row without campaign ID")
		return nil
	}

	components, err := json.Marshal(res.ComponentScores)
	if err != nil {
		return fmt.Errorf("marshal component scores: %w", err)
	}
	steps := res.DegradedSteps
	if steps == nil {
		steps = []string{}
	}
	degraded, err := json.Marshal(steps)
	if err != nil {
		return fmt.Errorf("marshal degraded steps: %w", err)
	}

	start := time.Now()
	err = db.withRetry(ctx, func() error {
		return db.recordTx(ctx, res, string(components), string(degraded))
	})
	metrics.RecordDBQuery("insert", "campaign_scores", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("record campaign %s: %w", res.CampaignID, err)
	}
	return nil
}

func (db *DB) recordTx(ctx context.Context, res campaign.Result, components, degraded string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT INTO campaign_scores
		(campaign_id, score, severity, human_review_required, post_count, author_count,
		 alert_count, component_scores, degraded_steps, scored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.CampaignID,
		res.Score,
		string(res.Severity),
		res.HumanReviewRequired,
		res.PostCount,
		res.AuthorCount,
		len(res.Alerts),
		components,
		degraded,
		res.ScoredAt.UTC(),
	); err != nil {
		return fmt.Errorf("insert score: %w", err)
	}

	// Indexed columns are never updated; DuckDB rewrites those as
	// delete+insert, which trips the primary key inside a transaction.
	for i := range res.Alerts {
		a := &res.Alerts[i]
		if _, err := tx.ExecContext(ctx, `INSERT INTO campaign_alerts
			(id, campaign_id, alert_type, severity, component, score, message, evidence, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				severity = EXCLUDED.severity,
				score = EXCLUDED.score,
				message = EXCLUDED.message,
				evidence = EXCLUDED.evidence`,
			a.ID,
			res.CampaignID,
			a.Type,
			string(a.Severity),
			a.Component,
			a.Score,
			a.Message,
			a.Evidence,
			a.CreatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("upsert alert %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// ListScores returns history rows, newest first.
func (db *DB) ListScores(ctx context.Context, filter ScoreFilter) ([]ScoreRecord, error) {
	query := `SELECT ` + scoreSelectColumns + ` FROM campaign_scores WHERE 1=1`
	args := make([]interface{}, 0, 4)

	if filter.CampaignID != "" {
		query += " AND campaign_id = ?"
		args = append(args, filter.CampaignID)
	}
	if filter.Severity != "" {
		if !campaign.Severity(filter.Severity).Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSeverity, filter.Severity)
		}
		query += " AND severity = ?"
		args = append(args, filter.Severity)
	}

	query += " ORDER BY scored_at DESC, campaign_id"
	query, args = applyPagination(query, args, filter.Limit, filter.Offset)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("select", "campaign_scores", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	records := make([]ScoreRecord, 0)
	for rows.Next() {
		var r ScoreRecord
		if err := scanScoreRow(rows, &r); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// LatestScore returns the most recent history row for a campaign.
func (db *DB) LatestScore(ctx context.Context, campaignID string) (*ScoreRecord, error) {
	query := `SELECT ` + scoreSelectColumns + ` FROM campaign_scores
		WHERE campaign_id = ? ORDER BY scored_at DESC LIMIT 1`

	var r ScoreRecord
	err := scanScoreRow(db.conn.QueryRowContext(ctx, query, campaignID), &r)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest score: %w", err)
	}
	return &r, nil
}

// Summary aggregates the whole history.
func (db *DB) Summary(ctx context.Context) (*Summary, error) {
	s := &Summary{BySeverity: make(map[string]int64, 4)}
	for _, sev := range []campaign.Severity{
		campaign.SeverityLow, campaign.SeverityMedium, campaign.SeverityHigh, campaign.SeverityCritical,
	} {
		s.BySeverity[string(sev)] = 0
	}

	start := time.Now()
	err := db.summary(ctx, s)
	metrics.RecordDBQuery("summary", "campaign_scores", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (db *DB) summary(ctx context.Context, s *Summary) error {
	var avg sql.NullFloat64
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT campaign_id), COUNT(*), AVG(score) FROM campaign_scores`,
	).Scan(&s.Campaigns, &s.ScoringRuns, &avg); err != nil {
		return fmt.Errorf("failed to count scores: %w", err)
	}
	if avg.Valid {
		s.AverageScore = avg.Float64
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT severity, COUNT(*), COUNT(*) FILTER (WHERE review) FROM (
			SELECT campaign_id,
				arg_max(severity, scored_at) AS severity,
				arg_max(human_review_required, scored_at) AS review
			FROM campaign_scores GROUP BY campaign_id
		) GROUP BY severity`)
	if err != nil {
		return fmt.Errorf("failed to group severities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			sev    string
			n      int64
			review int64
		)
		if err := rows.Scan(&sev, &n, &review); err != nil {
			return fmt.Errorf("failed to scan severity count: %w", err)
		}
		s.BySeverity[sev] = n
		s.HumanReviewPending += review
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT acknowledged) FROM campaign_alerts`,
	).Scan(&s.Alerts, &s.UnacknowledgedAlerts); err != nil {
		return fmt.Errorf("failed to count alerts: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScoreRow(scanner rowScanner, r *ScoreRecord) error {
	var (
		severity   string
		components string
		degraded   string
	)
	if err := scanner.Scan(
		&r.CampaignID,
		&r.Score,
		&severity,
		&r.HumanReviewRequired,
		&r.PostCount,
		&r.AuthorCount,
		&r.AlertCount,
		&components,
		&degraded,
		&r.ScoredAt,
	); err != nil {
		return err
	}
	r.Severity = campaign.Severity(severity)
	if err := json.Unmarshal([]byte(components), &r.ComponentScores); err != nil {
		return fmt.Errorf("decode component scores: %w", err)
	}
	if err := json.Unmarshal([]byte(degraded), &r.DegradedSteps); err != nil {
		return fmt.Errorf("decode degraded steps: %w", err)
	}
	if len(r.DegradedSteps) == 0 {
		r.DegradedSteps = nil
	}
	return nil
}

// applyPagination adds LIMIT and OFFSET clauses.
func applyPagination(query string, args []interface{}, limit, offset int) (string, []interface{}) {
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	} else {
		query += " LIMIT 100"
	}
	if offset > 0 {
		query += " OFFSET ?"
		args = append(args, offset)
	}
	return query, args
}
