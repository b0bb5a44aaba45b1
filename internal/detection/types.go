// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package detection

// RiskLevel grades a detection finding.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// BurstMethod names the technique that produced a BurstEvent.
type BurstMethod string

const (
	// MethodDPState is the state-sequence burst model (primary signal).
	MethodDPState BurstMethod = "dp_state"

	// MethodZScore is the rolling z-score anomaly detector.
	MethodZScore BurstMethod = "zscore"

	// MethodPeak is peak detection with non-maximum suppression.
	MethodPeak BurstMethod = "peak"
)

// GroupType names how a CoordinatedGroup was found.
type GroupType string

const (
	GroupTextSimilarity     GroupType = "text_similarity"
	GroupTimingCoordination GroupType = "timing_coordination"
)

// BotClassification is the verdict for a single account.
type BotClassification string

const (
	ClassLikelyBot   BotClassification = "likely_bot"
	ClassSuspicious  BotClassification = "suspicious"
	ClassLikelyHuman BotClassification = "likely_human"
	ClassUnknown     BotClassification = "unknown"
)

// Sub-analysis step names, reported in DegradedSteps when a step fails.
const (
	StepTimeSeries      = "time_series"
	StepStateModel      = "state_model"
	StepZScore          = "zscore"
	StepPeaks           = "peaks"
	StepCharacterize    = "characterize"
	StepBurstIndicators = "burst_indicators"
	StepTextSimilarity  = "text_similarity"
	StepTiming          = "timing"
	StepBehavioral      = "behavioral"
	StepNetwork         = "network"
	StepAmplification   = "amplification"
	StepBotAccounts     = "bot_accounts"
	StepCreationTimes   = "creation_times"
	StepBotSimilarity   = "bot_similarity"
)
