// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package campaign

import (
	"time"

	"github.com/tomtom215/campaignwatch/internal/detection"
	"github.com/tomtom215/campaignwatch/internal/models"
	"github.com/tomtom215/campaignwatch/internal/nlp"
)

// Severity is the band of a final campaign score.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists the bands from lowest to highest.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Valid reports whether s is a known band.
func (s Severity) Valid() bool {
	for _, v := range Severities {
		if s == v {
			return true
		}
	}
	return false
}

// Rank orders the bands from 0 (low) to 3 (critical); unknown values rank -1.
func (s Severity) Rank() int {
	for i, v := range Severities {
		if s == v {
			return i
		}
	}
	return -1
}

// Component names used as keys of Result.ComponentScores.
const (
	ComponentToxicity        = "toxicity"
	ComponentStance          = "stance"
	ComponentCoordination    = "coordination"
	ComponentBotNetwork      = "bot_network"
	ComponentBurstActivity   = "burst_activity"
	ComponentNarrativeThreat = "narrative_threat"
)

// Components lists the component names in reporting order.
var Components = []string{
	ComponentToxicity,
	ComponentStance,
	ComponentCoordination,
	ComponentBotNetwork,
	ComponentBurstActivity,
	ComponentNarrativeThreat,
}

// Alert types.
const (
	AlertHighToxicity        = "high_toxicity"
	AlertAntiIndiaNarrative  = "anti_india_narrative"
	AlertCoordinatedBehavior = "coordinated_behavior"
	AlertBotNetwork          = "bot_network"
	AlertBurstActivity       = "burst_activity"
)

// Pipeline step names, reported in Result.DegradedSteps.
const (
	StepClassification = "classification"
	StepCoordination   = "coordination"
	StepBotNetwork     = "bot_network"
	StepBurst          = "burst"
	StepNarrative      = "narrative"
)

// NoDataRecommendation is the only recommendation for an empty campaign.
const NoDataRecommendation = "No data to analyze"

// Campaign is one unit of batch scoring.
type Campaign struct {
	ID      string          `json:"id,omitempty" validate:"omitempty,max=128"`
	Posts   []models.Post   `json:"posts" validate:"dive"`
	Authors []models.Author `json:"authors,omitempty" validate:"omitempty,dive"`
}

// Alert is a threshold crossing of one component.
type Alert struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id,omitempty"`
	Type       string    `json:"type"`
	Severity   Severity  `json:"severity"`
	Component  string    `json:"component"`
	Score      float64   `json:"score"`
	Message    string    `json:"message"`
	Evidence   string    `json:"evidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// PostClassification is the per-post collaborator output kept in the result.
type PostClassification struct {
	PostID           string   `json:"post_id"`
	Platform         string   `json:"platform,omitempty"`
	Language         string   `json:"language,omitempty"`
	ToxicityScore    float64  `json:"toxicity_score"`
	ToxicitySeverity string   `json:"toxicity_severity"`
	ToxicCategories  []string `json:"toxic_categories"`
	Stance           string   `json:"primary_stance"`
	AntiIndiaScore   float64  `json:"anti_india_score"`
}

// Analysis holds the raw detector and collaborator outputs.
type Analysis struct {
	Burst        *detection.BurstResult        `json:"burst_detection,omitempty"`
	Coordination *detection.CoordinationResult `json:"coordination,omitempty"`
	BotNetwork   *detection.BotNetworkResult   `json:"bot_network,omitempty"`
	Narrative    *nlp.NarrativeResult          `json:"narrative_clustering,omitempty"`
}

// Result is the scored snapshot of one campaign.
type Result struct {
	CampaignID          string               `json:"campaign_id,omitempty"`
	Score               float64              `json:"campaign_score"`
	Severity            Severity             `json:"severity"`
	ComponentScores     map[string]float64   `json:"component_scores"`
	Alerts              []Alert              `json:"alerts"`
	Recommendations     []string             `json:"recommendations"`
	HumanReviewRequired bool                 `json:"human_review_required"`
	PostCount           int                  `json:"post_count"`
	AuthorCount         int                  `json:"author_count"`
	Classifications     []PostClassification `json:"classifications"`
	Analysis            Analysis             `json:"analysis_results"`
	DegradedSteps       []string             `json:"degraded_steps,omitempty"`
	ScoredAt            time.Time            `json:"timestamp"`
}
