// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

// Package eventprocessor provides event-driven campaign scoring over NATS
// JetStream using Watermill.
//
// # Data Flow
//
//	campaign.requests ──► Router (Recoverer → Retry → PoisonQueue)
//	                        └─► ScoringHandler ──► CampaignScorer
//	                                 └─► campaign.Sink (store, database, ResultPublisher)
//	ResultPublisher ──► campaign.scored (one message per result)
//	                └─► campaign.alerts (one message per alert)
//	campaign.alerts ──► PayloadSource ──► websocket bridge
//
// Requests are JSON {"id", "posts", "authors"}. A request without an ID
// is scored under the message UUID. Malformed requests are acked and
// counted as poison; they never reach the poison queue because retrying
// cannot fix them.
//
// An embedded NATS server can be started for single-instance
// deployments. Tests run the same Router and handlers over Watermill's
// gochannel Pub/Sub.
package eventprocessor
