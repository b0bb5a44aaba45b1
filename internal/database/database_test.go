// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/campaignwatch/internal/campaign"
)

// testDBSemaphore serializes DuckDB CGO usage across parallel tests.
var testDBSemaphore = make(chan struct{}, 1)

var baseTime = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := New(Config{Path: MemoryPath, MaxMemory: "512MB", Threads: 2})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func result(id string, score float64, at time.Time, alerts ...campaign.Alert) campaign.Result {
	for i := range alerts {
		alerts[i].CampaignID = id
		if alerts[i].CreatedAt.IsZero() {
			alerts[i].CreatedAt = at
		}
	}
	return campaign.Result{
		CampaignID:          id,
		Score:               score,
		Severity:            campaign.SeverityFor(score),
		HumanReviewRequired: score > 70,
		ComponentScores:     map[string]float64{campaign.ComponentToxicity: score, campaign.ComponentStance: 10},
		Alerts:              alerts,
		PostCount:           5,
		AuthorCount:         3,
		ScoredAt:            at,
	}
}

func alert(id, typ string, sev campaign.Severity, score float64) campaign.Alert {
	return campaign.Alert{
		ID:        id,
		Type:      typ,
		Severity:  sev,
		Component: campaign.ComponentToxicity,
		Score:     score,
		Message:   "message " + id,
		Evidence:  "evidence",
	}
}

func TestNew_RequiresPath(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("New() with empty path should fail")
	}
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestRecord_AppendsHistory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := result("c1", 20, baseTime)
	second := result("c1", 75, baseTime.Add(time.Hour))
	second.DegradedSteps = []string{"narrative"}

	for _, r := range []campaign.Result{first, second} {
		if err := db.Record(ctx, r); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	rows, err := db.ListScores(ctx, ScoreFilter{CampaignID: "c1"})
	if err != nil {
		t.Fatalf("ListScores() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ListScores() returned %d rows, want 2", len(rows))
	}
	if rows[0].Score != 75 || rows[1].Score != 20 {
		t.Errorf("scores = %v, %v; want newest first 75, 20", rows[0].Score, rows[1].Score)
	}
	if rows[0].Severity != campaign.SeverityHigh || !rows[0].HumanReviewRequired {
		t.Errorf("latest row = %+v", rows[0])
	}
	if rows[0].ComponentScores[campaign.ComponentToxicity] != 75 {
		t.Errorf("component scores = %v", rows[0].ComponentScores)
	}
	if len(rows[0].DegradedSteps) != 1 || rows[0].DegradedSteps[0] != "narrative" {
		t.Errorf("DegradedSteps = %v, want [narrative]", rows[0].DegradedSteps)
	}
	if rows[1].DegradedSteps != nil {
		t.Errorf("DegradedSteps = %v, want nil", rows[1].DegradedSteps)
	}
	if !rows[0].ScoredAt.Equal(baseTime.Add(time.Hour)) {
		t.Errorf("ScoredAt = %v", rows[0].ScoredAt)
	}

	latest, err := db.LatestScore(ctx, "c1")
	if err != nil {
		t.Fatalf("LatestScore() error = %v", err)
	}
	if latest.Score != 75 {
		t.Errorf("LatestScore().Score = %v, want 75", latest.Score)
	}
}

func TestRecord_SkipsMissingID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Record(ctx, result("", 50, baseTime)); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	rows, err := db.ListScores(ctx, ScoreFilter{})
	if err != nil {
		t.Fatalf("ListScores() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("ListScores() = %d rows, want 0", len(rows))
	}
}

func TestLatestScore_NotFound(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.LatestScore(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LatestScore() error = %v, want ErrNotFound", err)
	}
}

func TestListScores_Filters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i, score := range []float64{10, 45, 65, 90, 15} {
		id := string(rune('a' + i))
		if err := db.Record(ctx, result(id, score, baseTime.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	tests := []struct {
		name   string
		filter ScoreFilter
		want   []string
	}{
		{"all", ScoreFilter{}, []string{"e", "d", "c", "b", "a"}},
		{"low", ScoreFilter{Severity: "low"}, []string{"e", "a"}},
		{"critical", ScoreFilter{Severity: "critical"}, []string{"d"}},
		{"limit", ScoreFilter{Limit: 2}, []string{"e", "d"}},
		{"offset", ScoreFilter{Limit: 2, Offset: 3}, []string{"b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := db.ListScores(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListScores() error = %v", err)
			}
			got := make([]string, len(rows))
			for i, r := range rows {
				got[i] = r.CampaignID
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ListScores() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ListScores() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}

	if _, err := db.ListScores(ctx, ScoreFilter{Severity: "extreme"}); !errors.Is(err, ErrInvalidSeverity) {
		t.Errorf("ListScores(extreme) error = %v, want ErrInvalidSeverity", err)
	}
}

func TestSummary(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	empty, err := db.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() on empty db error = %v", err)
	}
	if empty.Campaigns != 0 || empty.AverageScore != 0 || len(empty.BySeverity) != 4 {
		t.Errorf("empty Summary() = %+v", empty)
	}

	records := []campaign.Result{
		result("a", 20, baseTime),
		result("a", 90, baseTime.Add(time.Hour), alert("a-1", campaign.AlertHighToxicity, campaign.SeverityHigh, 90)),
		result("b", 40, baseTime),
		result("c", 10, baseTime, alert("c-1", campaign.AlertHighToxicity, campaign.SeverityHigh, 10)),
	}
	for _, r := range records {
		if err := db.Record(ctx, r); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	if err := db.AcknowledgeAlert(ctx, "c-1", "analyst"); err != nil {
		t.Fatalf("AcknowledgeAlert() error = %v", err)
	}

	s, err := db.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if s.Campaigns != 3 || s.ScoringRuns != 4 {
		t.Errorf("Campaigns/ScoringRuns = %d/%d, want 3/4", s.Campaigns, s.ScoringRuns)
	}
	if s.AverageScore != 40 {
		t.Errorf("AverageScore = %v, want 40", s.AverageScore)
	}
	want := map[string]int64{"low": 1, "medium": 1, "high": 0, "critical": 1}
	for sev, n := range want {
		if s.BySeverity[sev] != n {
			t.Errorf("BySeverity[%s] = %d, want %d", sev, s.BySeverity[sev], n)
		}
	}
	if s.HumanReviewPending != 1 {
		t.Errorf("HumanReviewPending = %d, want 1", s.HumanReviewPending)
	}
	if s.Alerts != 2 || s.UnacknowledgedAlerts != 1 {
		t.Errorf("Alerts/Unacknowledged = %d/%d, want 2/1", s.Alerts, s.UnacknowledgedAlerts)
	}
}

func TestAlerts_UpsertKeepsAcknowledgement(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := result("c1", 70, baseTime, alert("alert-1", campaign.AlertHighToxicity, campaign.SeverityHigh, 70))
	if err := db.Record(ctx, first); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := db.AcknowledgeAlert(ctx, "alert-1", "admin"); err != nil {
		t.Fatalf("AcknowledgeAlert() error = %v", err)
	}

	again := result("c1", 95, baseTime.Add(time.Hour), alert("alert-1", campaign.AlertHighToxicity, campaign.SeverityCritical, 95))
	if err := db.Record(ctx, again); err != nil {
		t.Fatalf("second Record() error = %v", err)
	}

	a, err := db.GetAlert(ctx, "alert-1")
	if err != nil {
		t.Fatalf("GetAlert() error = %v", err)
	}
	if a.Score != 95 || a.Severity != campaign.SeverityCritical {
		t.Errorf("alert = %v/%s, want refreshed 95/critical", a.Score, a.Severity)
	}
	if !a.Acknowledged || a.AcknowledgedBy != "admin" || a.AcknowledgedAt == nil {
		t.Errorf("acknowledgement lost: %+v", a)
	}
	if !a.CreatedAt.Equal(baseTime) {
		t.Errorf("CreatedAt = %v, want first raised %v", a.CreatedAt, baseTime)
	}

	n, err := db.CountAlerts(ctx, AlertFilter{})
	if err != nil {
		t.Fatalf("CountAlerts() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CountAlerts() = %d, want 1", n)
	}
}

func TestListAlerts_Filters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Record(ctx, result("c1", 80, baseTime,
		alert("t1", campaign.AlertHighToxicity, campaign.SeverityHigh, 80),
		alert("b1", campaign.AlertBotNetwork, campaign.SeverityMedium, 60),
	)); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := db.Record(ctx, result("c2", 50, baseTime.Add(time.Minute),
		alert("t2", campaign.AlertHighToxicity, campaign.SeverityHigh, 50),
	)); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := db.AcknowledgeAlert(ctx, "t1", "analyst"); err != nil {
		t.Fatalf("AcknowledgeAlert() error = %v", err)
	}

	no := false
	tests := []struct {
		name   string
		filter AlertFilter
		want   []string
	}{
		{"all newest first", AlertFilter{}, []string{"t2", "b1", "t1"}},
		{"campaign", AlertFilter{CampaignID: "c1", OrderBy: "score"}, []string{"t1", "b1"}},
		{"type", AlertFilter{Types: []string{campaign.AlertHighToxicity}}, []string{"t2", "t1"}},
		{"severity", AlertFilter{Severities: []string{"medium"}}, []string{"b1"}},
		{"unacknowledged", AlertFilter{Acknowledged: &no, OrderBy: "score", OrderDirection: "asc"}, []string{"t2", "b1"}},
		{"unknown order column falls back", AlertFilter{OrderBy: "id; DROP TABLE x"}, []string{"t2", "b1", "t1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts, err := db.ListAlerts(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListAlerts() error = %v", err)
			}
			got := make([]string, len(alerts))
			for i, a := range alerts {
				got[i] = a.ID
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ListAlerts() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ListAlerts() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}

	if _, err := db.ListAlerts(ctx, AlertFilter{Severities: []string{"bogus"}}); !errors.Is(err, ErrInvalidSeverity) {
		t.Errorf("ListAlerts(bogus) error = %v, want ErrInvalidSeverity", err)
	}
}

func TestAcknowledgeAlert_NotFound(t *testing.T) {
	db := setupTestDB(t)
	if err := db.AcknowledgeAlert(context.Background(), "missing", "admin"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AcknowledgeAlert() error = %v, want ErrNotFound", err)
	}
}

func TestBuildPlaceholders(t *testing.T) {
	tests := map[int]string{0: "", 1: "?", 3: "?, ?, ?"}
	for n, want := range tests {
		if got := buildPlaceholders(n); got != want {
			t.Errorf("buildPlaceholders(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestIsTransactionConflict(t *testing.T) {
	if isTransactionConflict(nil) {
		t.Error("nil should not be a conflict")
	}
	if !isTransactionConflict(errors.New("TransactionContext Error: Transaction conflict: cannot update")) {
		t.Error("conflict message not detected")
	}
	if isTransactionConflict(errors.New("syntax error")) {
		t.Error("syntax error detected as conflict")
	}
}
