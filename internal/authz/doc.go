// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

// Package authz implements role-based access control with Casbin.
//
// Three roles are defined in the embedded policy: viewer reads scores,
// alerts and the alert stream; analyst inherits viewer and may submit
// campaigns, run analyses and acknowledge alerts; admin inherits analyst
// and may do anything under /api/v1. Paths are matched with keyMatch2 so
// rules may use "/*" suffixes and ":param" segments.
package authz
