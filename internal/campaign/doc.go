// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

/*
Package campaign scores influence campaigns.

A Scorer fans out over four independent analyses of the same posts:

  - per-post toxicity and stance classification (TextClassifier), followed
    by narrative clustering (NarrativeClusterer)
  - coordination detection
  - per-account and network bot detection
  - burst detection

Each analysis runs behind its own error boundary. A failing collaborator or
a panicking detector zeroes only its own component and is listed in
Result.DegradedSteps. Collaborator calls additionally pass through circuit
breakers so a dead classifier is skipped quickly.

The six component scores (0-100) are combined with Weights into the final
score, which maps to a Severity band:

	low      [0, 30)
	medium   [30, 60)
	high     [60, 85)
	critical [85, 100]

Alerts are raised per component threshold and carry IDs derived from the
campaign ID, so rescoring a campaign yields the same alert IDs.
*/
package campaign
