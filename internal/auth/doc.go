// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

// Package auth provides bearer-token authentication for the API.
//
// In "jwt" mode, POST /auth/login checks credentials against bcrypt
// hashes and issues an HS256 token carrying the user's role; Middleware
// validates the token on every protected request and stores the Claims
// in the request context for the authz package. In "none" mode every
// request is treated as an anonymous admin.
package auth
