// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package metrics

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

// TestRecordDBQuery tests database query metric recording
func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		duration  time.Duration
		err       error
	}{
		{
			name:      "successful SELECT query",
			operation: "SELECT",
			table:     "campaign_scores",
			duration:  10 * time.Millisecond,
		},
		{
			name:      "successful INSERT query",
			operation: "INSERT",
			table:     "campaign_alerts",
			duration:  5 * time.Millisecond,
		},
		{
			name:      "failed query",
			operation: "UPDATE",
			table:     "campaign_scores",
			duration:  100 * time.Millisecond,
			err:       errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordDBQuery(tt.operation, tt.table, tt.duration, tt.err)
		})
	}

	got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("UPDATE", "campaign_scores", "connection refused"))
	if got < 1 {
		t.Errorf("DBQueryErrors = %v, want >= 1", got)
	}
}

func TestRecordDBQuery_ErrorTruncation(t *testing.T) {
	long := errors.New(strings.Repeat("c", 100))
	RecordDBQuery("SELECT", "truncation", time.Millisecond, long)

	got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("SELECT", "truncation", strings.Repeat("c", 50)))
	if got != 1 {
		t.Errorf("truncated error label count = %v, want 1", got)
	}
}

func TestRecordCampaignScore(t *testing.T) {
	before := testutil.ToFloat64(CampaignsScored.WithLabelValues("critical"))
	RecordCampaignScore(91.5, "critical", 40)
	after := testutil.ToFloat64(CampaignsScored.WithLabelValues("critical"))

	if after-before != 1 {
		t.Errorf("CampaignsScored delta = %v, want 1", after-before)
	}
}

func TestRecordComponentScores(t *testing.T) {
	RecordComponentScores(map[string]float64{"toxicity": 42, "stance": 7})

	if got := testutil.ToFloat64(ComponentScore.WithLabelValues("toxicity")); got != 42 {
		t.Errorf("toxicity gauge = %v, want 42", got)
	}
	if got := testutil.ToFloat64(ComponentScore.WithLabelValues("stance")); got != 7 {
		t.Errorf("stance gauge = %v, want 7", got)
	}
}

func TestRecordDegradedSteps(t *testing.T) {
	RecordDegradedSteps("coordination", []string{"network", "timing"})
	RecordDegradedSteps("coordination", nil)

	if got := testutil.ToFloat64(DegradedSteps.WithLabelValues("coordination", "network")); got != 1 {
		t.Errorf("network degraded count = %v, want 1", got)
	}
}

func TestRecordAlert(t *testing.T) {
	RecordAlert("bot_network", "high")
	RecordAlert("bot_network", "high")

	if got := testutil.ToFloat64(AlertsRaised.WithLabelValues("bot_network", "high")); got != 2 {
		t.Errorf("alerts = %v, want 2", got)
	}
}

func TestRecordAnalysis_Histogram(t *testing.T) {
	RecordAnalysis("burst_histogram_test", 20*time.Millisecond)
	RecordAnalysis("burst_histogram_test", 2*time.Second)

	m := &dto.Metric{}
	observer, err := AnalysisDuration.GetMetricWithLabelValues("burst_histogram_test")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	if err := observer.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := m.GetHistogram().GetSampleCount(); got != 2 {
		t.Errorf("sample count = %d, want 2", got)
	}
	if got := m.GetHistogram().GetSampleSum(); got < 2.0 {
		t.Errorf("sample sum = %v, want >= 2.0", got)
	}
}

func TestRecordSnapshot(t *testing.T) {
	RecordSnapshot("put", nil)
	RecordSnapshot("get", errors.New("not found"))

	if got := testutil.ToFloat64(SnapshotOperations.WithLabelValues("get", "error")); got < 1 {
		t.Errorf("get errors = %v, want >= 1", got)
	}
}

func TestRecordEvents(t *testing.T) {
	RecordEventPublished("campaign.alerts")
	RecordEventProcessed("poison")

	if got := testutil.ToFloat64(EventsPublished.WithLabelValues("campaign.alerts")); got < 1 {
		t.Errorf("published = %v, want >= 1", got)
	}
	if got := testutil.ToFloat64(EventsProcessed.WithLabelValues("poison")); got < 1 {
		t.Errorf("processed = %v, want >= 1", got)
	}
}

func TestRecordNotificationAndCache(t *testing.T) {
	before := testutil.ToFloat64(NotificationsSent.WithLabelValues("webhook", "error"))
	RecordNotification("webhook", errors.New("status 502"))
	RecordNotification("webhook", nil)
	if got := testutil.ToFloat64(NotificationsSent.WithLabelValues("webhook", "error")); got-before != 1 {
		t.Errorf("webhook errors delta = %v, want 1", got-before)
	}

	hits := testutil.ToFloat64(CollaboratorCache.WithLabelValues("stance", "hit"))
	RecordCollaboratorCache("stance", true)
	RecordCollaboratorCache("stance", false)
	if got := testutil.ToFloat64(CollaboratorCache.WithLabelValues("stance", "hit")); got-hits != 1 {
		t.Errorf("cache hits delta = %v, want 1", got-hits)
	}
}

// TestTrackActiveRequest_RequestLifecycle simulates a request lifecycle
func TestTrackActiveRequest_RequestLifecycle(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)
	for i := 0; i < 10; i++ {
		TrackActiveRequest(true)
	}
	for i := 0; i < 10; i++ {
		TrackActiveRequest(false)
	}
	if got := testutil.ToFloat64(APIActiveRequests); got != start {
		t.Errorf("active requests = %v, want %v", got, start)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RecordAPIRequest("POST", "/api/v1/campaigns/score", "200", time.Millisecond)
			RecordCollaboratorFailure("toxicity")
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(CollaboratorFailures.WithLabelValues("toxicity")); got < 20 {
		t.Errorf("collaborator failures = %v, want >= 20", got)
	}
}

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		AnalysisDuration,
		AnalysisPosts,
		DegradedSteps,
		CampaignScore,
		CampaignsScored,
		ComponentScore,
		AlertsRaised,
		CollaboratorFailures,
		CollaboratorDuration,
		APIRequestsTotal,
		APIRequestDuration,
		APIActiveRequests,
		APIRateLimitHits,
		DBQueryDuration,
		DBQueryErrors,
		SnapshotOperations,
		WSConnections,
		WSMessagesSent,
		WSErrors,
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerTransitions,
		EventsPublished,
		EventsProcessed,
		AppInfo,
	}

	for _, m := range collectors {
		ch := make(chan *prometheus.Desc, 10)
		m.Describe(ch)
		close(ch)

		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("Metric has no descriptors")
		}
	}
}

// TestMetricGathering tests that metrics can be gathered using testutil
func TestMetricGathering(t *testing.T) {
	RecordDBQuery("TEST", "test_table", time.Millisecond, nil)
	RecordAPIRequest("GET", "/test", "200", time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}

func BenchmarkRecordAPIRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordAPIRequest("GET", "/api/v1/campaigns", "200", 25*time.Millisecond)
	}
}
