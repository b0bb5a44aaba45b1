// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

/*
Package websocket streams campaign results and alerts to dashboards.

A single Hub owns the set of connected clients. Scored results reach it in
one of two ways:

  - directly, as a campaign.Sink, when the service runs standalone
  - through a Bridge subscribed to the alerts topic, when results are
    published on NATS and several instances share one stream

Each Client runs a read pump (pings and subscribe messages) and a write
pump (queued messages and keepalive pings).

# Message Types

  - campaign_scored: summary of a scored campaign (ScoredData)
  - campaign_alert: one campaign.Alert
  - subscribe: sent by a client, {"min_severity": "high"} hides lower bands
  - ping / pong: application-level liveness

Delivery never blocks scoring: a full broadcast queue drops the message, and
a client whose send buffer is full is disconnected. Both cases are counted
in websocket_errors_total.
*/
package websocket
