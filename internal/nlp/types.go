// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package nlp

import (
	"time"

	"github.com/tomtom215/campaignwatch/internal/models"
)

// Toxicity severity levels.
const (
	SeverityNone   = "none"
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
	SeveritySevere = "severe"
)

// Toxicity categories.
const (
	CategoryOffensive  = "offensive_language"
	CategoryHateSpeech = "hate_speech"
	CategoryInsult     = "insult"
	CategoryThreat     = "threat"
)

// Stance labels.
const (
	StanceAntiIndia   = "anti_india"
	StanceProIndia    = "pro_india"
	StanceNeutral     = "neutral"
	StanceNotRelevant = "not_relevant"
)

// Language codes produced by LanguageDetector.
const (
	LanguageEnglish  = "en"
	LanguageHindi    = "hi"
	LanguageUrdu     = "ur"
	LanguageHinglish = "hi-en"
	LanguageUnknown  = "unknown"
)

// ToxicityResult is the toxicity classification of one text.
type ToxicityResult struct {
	Score      float64  `json:"toxicity_score"`
	Severity   string   `json:"severity_level"`
	Confidence float64  `json:"confidence"`
	Categories []string `json:"toxic_categories"`
	Model      string   `json:"model_used"`
}

// StanceScores holds the per-label stance probabilities.
type StanceScores struct {
	AntiIndia   float64 `json:"anti_india"`
	ProIndia    float64 `json:"pro_india"`
	Neutral     float64 `json:"neutral"`
	NotRelevant float64 `json:"not_relevant"`
}

// Sentiment is a coarse lexicon sentiment split.
type Sentiment struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// StanceResult is the stance classification of one text.
type StanceResult struct {
	Scores     StanceScores `json:"stance_scores"`
	Primary    string       `json:"primary_stance"`
	Confidence float64      `json:"confidence"`
	Topics     []string     `json:"relevant_topics"`
	Indicators []string     `json:"stance_indicators"`
	Sentiment  Sentiment    `json:"sentiment_scores"`
}

// Polarity returns pro minus anti, in [-1, 1].
func (r StanceResult) Polarity() float64 {
	return r.Scores.ProIndia - r.Scores.AntiIndia
}

// LanguageResult is the detected language of one text.
type LanguageResult struct {
	Language       string   `json:"primary_language"`
	Confidence     float64  `json:"confidence"`
	IsMixed        bool     `json:"is_mixed"`
	MixedLanguages []string `json:"mixed_languages"`
}

// ClassifiedPost pairs a post with its per-post classifications.
type ClassifiedPost struct {
	Post     models.Post
	Toxicity ToxicityResult
	Stance   StanceResult
}

// TimeSpan bounds the timestamps of a cluster.
type TimeSpan struct {
	Start         time.Time `json:"start_time"`
	End           time.Time `json:"end_time"`
	DurationHours float64   `json:"duration_hours"`
}

// ClusterStats summarises the posts of one narrative cluster.
type ClusterStats struct {
	AvgToxicity          float64        `json:"avg_toxicity"`
	AvgStance            float64        `json:"avg_stance"`
	AvgEngagement        float64        `json:"avg_engagement"`
	LanguageDistribution map[string]int `json:"language_distribution"`
	PlatformDistribution map[string]int `json:"platform_distribution"`
	TimeSpan             *TimeSpan      `json:"time_span,omitempty"`
}

// NarrativeCluster is one group of posts sharing a narrative.
type NarrativeCluster struct {
	Narrative           string       `json:"narrative"`
	Description         string       `json:"description"`
	Size                int          `json:"size"`
	PostIDs             []string     `json:"post_ids"`
	Keywords            []string     `json:"keywords"`
	RepresentativeTexts []string     `json:"representative_texts"`
	Statistics          ClusterStats `json:"statistics"`
}

// NarrativeResult is the output of narrative clustering. Clusters is keyed
// by narrative name.
type NarrativeResult struct {
	TotalPosts     int                         `json:"total_posts"`
	ClusteredPosts int                         `json:"clustered_posts"`
	NumClusters    int                         `json:"num_clusters"`
	NoisePosts     int                         `json:"noise_posts"`
	Clusters       map[string]NarrativeCluster `json:"clusters"`
}
