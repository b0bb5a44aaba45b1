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
	"strings"
	"time"

	"github.com/tomtom215/campaignwatch/internal/campaign"
	"github.com/tomtom215/campaignwatch/internal/metrics"
)

// AlertRecord is a stored alert with its review state.
type AlertRecord struct {
	campaign.Alert
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedBy string     `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
}

// AlertFilter narrows ListAlerts and CountAlerts.
type AlertFilter struct {
	CampaignID     string
	Types          []string
	Severities     []string
	Acknowledged   *bool
	Limit          int
	Offset         int
	OrderBy        string
	OrderDirection string
}

const alertSelectColumns = `id, campaign_id, alert_type, severity, component, score, message,
	evidence, acknowledged, acknowledged_by, acknowledged_at, created_at`

// validAlertOrderColumns whitelists ORDER BY columns.
var validAlertOrderColumns = map[string]bool{
	"created_at":  true,
	"score":       true,
	"severity":    true,
	"alert_type":  true,
	"campaign_id": true,
}

// GetAlert returns one alert by ID.
func (db *DB) GetAlert(ctx context.Context, id string) (*AlertRecord, error) {
	query := `SELECT ` + alertSelectColumns + ` FROM campaign_alerts WHERE id = ?`

	var a AlertRecord
	err := scanAlertRow(db.conn.QueryRowContext(ctx, query, id), &a)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return &a, nil
}

// ListAlerts returns alerts matching filter, newest first by default.
func (db *DB) ListAlerts(ctx context.Context, filter AlertFilter) ([]AlertRecord, error) {
	query := `SELECT ` + alertSelectColumns + ` FROM campaign_alerts WHERE 1=1`
	query, args, err := applyAlertFilters(query, make([]interface{}, 0), filter)
	if err != nil {
		return nil, err
	}
	query = applyAlertOrdering(query, filter)
	query, args = applyPagination(query, args, filter.Limit, filter.Offset)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("select", "campaign_alerts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]AlertRecord, 0)
	for rows.Next() {
		var a AlertRecord
		if err := scanAlertRow(rows, &a); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// CountAlerts returns the number of alerts matching filter.
func (db *DB) CountAlerts(ctx context.Context, filter AlertFilter) (int, error) {
	query, args, err := applyAlertFilters(`SELECT COUNT(*) FROM campaign_alerts WHERE 1=1`, make([]interface{}, 0), filter)
	if err != nil {
		return 0, err
	}
	var count int
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}

// AcknowledgeAlert marks an alert as reviewed.
func (db *DB) AcknowledgeAlert(ctx context.Context, id, acknowledgedBy string) error {
	if _, err := db.GetAlert(ctx, id); err != nil {
		return err
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `UPDATE campaign_alerts
		SET acknowledged = true, acknowledged_by = ?, acknowledged_at = ?
		WHERE id = ?`, acknowledgedBy, time.Now().UTC(), id)
	metrics.RecordDBQuery("update", "campaign_alerts", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}
	return nil
}

func applyAlertFilters(query string, args []interface{}, filter AlertFilter) (string, []interface{}, error) {
	if filter.CampaignID != "" {
		query += " AND campaign_id = ?"
		args = append(args, filter.CampaignID)
	}
	if len(filter.Types) > 0 {
		query += fmt.Sprintf(" AND alert_type IN (%s)", buildPlaceholders(len(filter.Types)))
		for _, t := range filter.Types {
			args = append(args, t)
		}
	}
	if len(filter.Severities) > 0 {
		query += fmt.Sprintf(" AND severity IN (%s)", buildPlaceholders(len(filter.Severities)))
		for _, sev := range filter.Severities {
			if !campaign.Severity(sev).Valid() {
				return "", nil, fmt.Errorf("%w: %q", ErrInvalidSeverity, sev)
			}
			args = append(args, sev)
		}
	}
	if filter.Acknowledged != nil {
		query += " AND acknowledged = ?"
		args = append(args, *filter.Acknowledged)
	}
	return query, args, nil
}

func applyAlertOrdering(query string, filter AlertFilter) string {
	orderBy := "created_at"
	if filter.OrderBy != "" && validAlertOrderColumns[filter.OrderBy] {
		orderBy = filter.OrderBy
	}
	orderDir := "DESC"
	if dir := strings.ToUpper(filter.OrderDirection); dir == "ASC" || dir == "DESC" {
		orderDir = dir
	}
	return query + fmt.Sprintf(" ORDER BY %s %s, id", orderBy, orderDir)
}

// buildPlaceholders creates a comma-separated string of ? placeholders.
func buildPlaceholders(count int) string {
	if count == 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}

func scanAlertRow(scanner rowScanner, a *AlertRecord) error {
	var (
		severity       string
		acknowledgedBy sql.NullString
		acknowledgedAt sql.NullTime
	)
	if err := scanner.Scan(
		&a.ID,
		&a.CampaignID,
		&a.Type,
		&severity,
		&a.Component,
		&a.Score,
		&a.Message,
		&a.Evidence,
		&a.Acknowledged,
		&acknowledgedBy,
		&acknowledgedAt,
		&a.CreatedAt,
	); err != nil {
		return err
	}
	a.Severity = campaign.Severity(severity)
	if acknowledgedBy.Valid {
		a.AcknowledgedBy = acknowledgedBy.String
	}
	if acknowledgedAt.Valid {
		t := acknowledgedAt.Time
		a.AcknowledgedAt = &t
	}
	return nil
}
