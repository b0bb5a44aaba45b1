// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

/*
Package models defines the data structures shared across CampaignWatch.

Key Components:

  - Post: A single social-media post as delivered by a collector. Posts are
    immutable once ingested; every detector treats them as read-only.
  - Author: Account profile data, either supplied alongside the posts or
    derived from them (first-seen-wins per platform and user ID).
  - Timestamp: A JSON-tolerant timestamp. Unparseable values decode to an
    invalid Timestamp instead of failing the whole request, so the owning
    post is simply excluded from time-dependent analysis.
  - TimeSeriesBucket: One hour of a zero-filled activity histogram.
  - APIResponse: The standard HTTP response envelope.

Example:

	posts := []models.Post{{
	    Platform:  "twitter",
	    PostID:    "1",
	    AuthorRef: "user123abc",
	    Text:      "India's economy is failing #IndiaFailing",
	    PostedAt:  models.NewTimestamp(time.Now()),
	}}
	authors := models.DeriveAuthors(posts)
*/
package models
