// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Detection Metrics
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campaignwatch_analysis_duration_seconds",
			Help:    "Duration of a single detector run in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"detector"}, // "burst", "coordination", "bot", "bot_network", "narrative"
	)

	AnalysisPosts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "campaignwatch_analysis_posts",
			Help:    "Number of posts per scoring request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 .. 16384
		},
	)

	DegradedSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaignwatch_degraded_steps_total",
			Help: "Sub-analyses that failed and fell back to a neutral result",
		},
		[]string{"component", "step"},
	)

	// Scoring Metrics
	CampaignScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "campaignwatch_campaign_score",
			Help:    "Distribution of final campaign threat scores (0-100)",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 85, 100},
		},
	)

	CampaignsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaignwatch_campaigns_scored_total",
			Help: "Total number of scored campaigns by severity",
		},
		[]string{"severity"},
	)

	ComponentScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "campaignwatch_component_score",
			Help: "Most recent component score (0-100)",
		},
		[]string{"component"},
	)

	AlertsRaised = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaignwatch_alerts_total",
			Help: "Total number of alerts raised by type and severity",
		},
		[]string{"type", "severity"},
	)

	// Collaborator Metrics
	CollaboratorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaignwatch_collaborator_failures_total",
			Help: "Failed collaborator calls (classifier, clusterer) by step",
		},
		[]string{"step"},
	)

	CollaboratorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campaignwatch_collaborator_duration_seconds",
			Help:    "Duration of remote collaborator calls in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"endpoint"},
	)

	CollaboratorCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaignwatch_collaborator_cache_total",
			Help: "Remote classifier cache lookups by endpoint and result",
		},
		[]string{"endpoint", "result"}, // result: "hit", "miss"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Storage Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	SnapshotOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badger_snapshot_operations_total",
			Help: "Snapshot store operations by result",
		},
		[]string{"operation", "result"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaignwatch_events_published_total",
			Help: "Events published to the message bus by topic",
		},
		[]string{"topic"},
	)

	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaignwatch_events_processed_total",
			Help: "Scoring requests consumed from the message bus by result",
		},
		[]string{"result"}, // "scored", "poison", "error"
	)

	// Notification Metrics
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaignwatch_notifications_total",
			Help: "Alert notifications by notifier and result",
		},
		[]string{"notifier", "result"}, // result: "sent", "error"
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAnalysis records the duration of one detector run.
func RecordAnalysis(detector string, duration time.Duration) {
	AnalysisDuration.WithLabelValues(detector).Observe(duration.Seconds())
}

// RecordDegradedSteps counts each failed sub-analysis of component.
func RecordDegradedSteps(component string, steps []string) {
	for _, step := range steps {
		DegradedSteps.WithLabelValues(component, step).Inc()
	}
}

// RecordCampaignScore records a final campaign score and its severity.
func RecordCampaignScore(score float64, severity string, posts int) {
	CampaignScore.Observe(score)
	CampaignsScored.WithLabelValues(severity).Inc()
	AnalysisPosts.Observe(float64(posts))
}

// RecordComponentScores sets the component score gauges.
func RecordComponentScores(scores map[string]float64) {
	for name, v := range scores {
		ComponentScore.WithLabelValues(name).Set(v)
	}
}

// RecordAlert counts a raised alert.
func RecordAlert(alertType, severity string) {
	AlertsRaised.WithLabelValues(alertType, severity).Inc()
}

// RecordCollaboratorFailure counts a failed collaborator step.
func RecordCollaboratorFailure(step string) {
	CollaboratorFailures.WithLabelValues(step).Inc()
}

// RecordCollaboratorCache counts a classifier cache lookup.
func RecordCollaboratorCache(endpoint string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CollaboratorCache.WithLabelValues(endpoint, result).Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordSnapshot records a snapshot store operation.
func RecordSnapshot(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	SnapshotOperations.WithLabelValues(operation, result).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordEventPublished counts a published event.
func RecordEventPublished(topic string) {
	EventsPublished.WithLabelValues(topic).Inc()
}

// RecordEventProcessed counts a consumed scoring request.
func RecordEventProcessed(result string) {
	EventsProcessed.WithLabelValues(result).Inc()
}

// RecordNotification counts one alert delivery attempt.
func RecordNotification(notifier string, err error) {
	result := "sent"
	if err != nil {
		result = "error"
	}
	NotificationsSent.WithLabelValues(notifier, result).Inc()
}
