// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

/*
Package supervisor runs the long-lived services of campaignwatch under a
suture v4 supervisor tree.

The tree has three layers that restart independently:

	RootSupervisor ("campaignwatch")
	├── "storage-layer"
	│   └── snapshot store value-log GC
	├── "messaging-layer"
	│   ├── websocket hub
	│   ├── alert bridge (NATS alerts to websocket clients)
	│   └── event router (scoring requests from NATS)
	└── "api-layer"
	    └── HTTP server

A crash in the messaging layer leaves the API serving. Supervisor events
(restarts, backoff, timeouts) are logged through sutureslog into the
zerolog logger.

Any type with Serve(ctx) error is a suture.Service. HubService and
HTTPServerService adapt the two components whose lifecycle is not already
shaped that way.
*/
package supervisor
