// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

/*
Command server runs the campaignwatch scoring service.

Startup order:

 1. Configuration: koanf (defaults, then config.yaml, then environment)
 2. Logging: zerolog, JSON or console
 3. Scorer: local classifiers, or the remote classifier when NLP_REMOTE_URL is set
 4. Storage: Badger snapshots (STORE_ENABLED) and DuckDB history (DATABASE_ENABLED)
 5. Events: NATS JetStream request consumer and result publisher (NATS_ENABLED),
    webhook and Discord alert notifications (NOTIFY_*_URL)
 6. Authentication: JWT with the bootstrap admin account, Casbin RBAC
 7. Supervisor tree: storage, messaging and API layers under suture v4

Core environment variables:

	HTTP_PORT=8090
	LOG_LEVEL=info
	LOG_FORMAT=json

	AUTH_MODE=jwt                # jwt or none
	JWT_SECRET=<32+ chars>
	ADMIN_USERNAME=admin
	ADMIN_PASSWORD=<12+ chars>
	CASBIN_POLICY_PATH=/etc/campaignwatch/policy.csv

	STORE_ENABLED=true
	BADGER_PATH=/data/snapshots
	DATABASE_ENABLED=true
	DUCKDB_PATH=/data/campaignwatch.duckdb

	NATS_ENABLED=true
	NATS_EMBEDDED=true

	WEBSOCKET_ENABLED=true
	NOTIFY_WEBHOOK_URL=https://hooks.example/alerts
	NOTIFY_MIN_SEVERITY=high

SIGINT and SIGTERM cancel the root context. Every service gets the
configured shutdown timeout, then the stores are closed.
*/
package main
