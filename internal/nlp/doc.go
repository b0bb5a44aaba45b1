// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

/*
Package nlp provides the text collaborators used by campaign scoring.

The default implementations are deterministic rule sets:

  - ToxicityClassifier: multilingual word lists (English, Hindi, Urdu,
    Hinglish) plus hate, insult and threat patterns.
  - StanceDetector: India relevance by topic keywords, anti/pro indicator
    phrases and context patterns, normalised to four stance scores.
  - LanguageDetector: script ratios (Devanagari, Arabic, Latin) with
    Hinglish marker words.
  - NarrativeClusterer: assigns posts to predefined narratives by keyword
    overlap and summarises each cluster.

RemoteClassifier calls an external HTTP inference service for toxicity and
stance. It is rate limited, guarded by a circuit breaker and falls back to
the local Classifier whenever the remote call fails.

All types are safe for concurrent use.
*/
package nlp
