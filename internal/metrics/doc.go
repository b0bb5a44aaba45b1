// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Detection and scoring:
  - campaignwatch_analysis_duration_seconds: detector run time (histogram)
    Labels: detector
  - campaignwatch_analysis_posts: posts per scoring request (histogram)
  - campaignwatch_degraded_steps_total: sub-analyses that fell back to neutral
    Labels: component, step
  - campaignwatch_campaign_score: final score distribution (histogram)
  - campaignwatch_campaigns_scored_total: scored campaigns
    Labels: severity
  - campaignwatch_component_score: latest component score (gauge)
    Labels: component
  - campaignwatch_alerts_total: raised alerts
    Labels: type, severity

Collaborators:
  - campaignwatch_collaborator_failures_total: failed classifier/clusterer calls
    Labels: step
  - campaignwatch_collaborator_duration_seconds: remote classifier latency
    Labels: endpoint
  - campaignwatch_collaborator_cache_total: classifier cache lookups
    Labels: endpoint, result
  - circuit_breaker_state, circuit_breaker_requests_total,
    circuit_breaker_state_transitions_total
    Labels: name (and result, from_state, to_state)

HTTP, storage and delivery:
  - api_requests_total, api_request_duration_seconds, api_active_requests,
    api_rate_limit_hits_total
  - duckdb_query_duration_seconds, duckdb_query_errors_total
  - badger_snapshot_operations_total
  - websocket_connections, websocket_messages_sent_total, websocket_errors_total
  - campaignwatch_events_published_total, campaignwatch_events_processed_total
  - campaignwatch_notifications_total: webhook and Discord deliveries
    Labels: notifier, result

# Usage

	start := time.Now()
	res := detector.DetectBursts(posts, 24)
	metrics.RecordAnalysis("burst", time.Since(start))
	metrics.RecordDegradedSteps("burst", res.DegradedSteps)

# Thread Safety

All collectors are safe for concurrent use.
*/
package metrics
