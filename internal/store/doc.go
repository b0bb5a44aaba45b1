// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

// Package store keeps the most recent scored snapshot of each campaign in
// BadgerDB so API clients can fetch a result by campaign ID after scoring.
//
// Snapshots are stored as JSON under "campaign:<id>" keys and expire after
// the configured TTL using Badger's native entry TTL. Store implements
// campaign.Sink, and its Serve method runs value log GC under the
// supervisor tree.
package store
