// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

/*
Package config provides centralized configuration management for CampaignWatch.

Configuration is layered with Koanf v2:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, ./config.yaml or /etc/campaignwatch/config.yaml
 3. Environment variables, through an explicit mapping table

Later layers override earlier ones. Unmapped environment variables are
ignored so unrelated process environment never leaks into the config.

# Sections

  - server: HTTP listener, body and batch limits
  - logging: zerolog level and format
  - security: auth mode (none or jwt), admin credentials, rate limits, CORS, casbin
  - detection: burst, coordination and bot detector settings
  - scoring: component weights, alert thresholds, per-post thresholds, concurrency
  - collaborators: optional remote classifier and narrative clustering
  - store: Badger snapshot store
  - database: DuckDB score history
  - nats: event-driven scoring over JetStream
  - websocket: live alert stream
  - notify: webhook and Discord alert delivery

# Environment Variables (selection)

  - HTTP_PORT, HTTP_HOST, ENVIRONMENT
  - LOG_LEVEL, LOG_FORMAT
  - AUTH_MODE, JWT_SECRET, ADMIN_USERNAME, ADMIN_PASSWORD, CORS_ORIGINS (comma-separated)
  - BURST_WINDOW_HOURS, COORDINATION_TEXT_THRESHOLD, BOT_THRESHOLD
  - NLP_REMOTE_URL, NLP_TIMEOUT
  - BADGER_PATH, STORE_TTL, DUCKDB_PATH
  - NATS_ENABLED, NATS_URL, NATS_EMBEDDED
  - NOTIFY_WEBHOOK_URL, NOTIFY_DISCORD_URL, NOTIFY_MIN_SEVERITY

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	scorer := campaign.NewScorer(cfg.ScorerConfig(), classifier, clusterer)

Validate rejects weight sets that do not sum to 1, thresholds outside their
range, short JWT secrets and incomplete NATS settings.
*/
package config
