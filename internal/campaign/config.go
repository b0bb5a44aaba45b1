// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package campaign

import (
	"github.com/tomtom215/campaignwatch/internal/breaker"
	"github.com/tomtom215/campaignwatch/internal/detection"
)

// Weights are the component weights of the final score.
type Weights struct {
	Toxicity        float64 `koanf:"toxicity" json:"toxicity"`
	Stance          float64 `koanf:"stance" json:"stance"`
	Coordination    float64 `koanf:"coordination" json:"coordination"`
	BotNetwork      float64 `koanf:"bot_network" json:"bot_network"`
	BurstActivity   float64 `koanf:"burst_activity" json:"burst_activity"`
	NarrativeThreat float64 `koanf:"narrative_threat" json:"narrative_threat"`
}

// DefaultWeights returns the standard component weights.
func DefaultWeights() Weights {
	return Weights{
		Toxicity:        0.20,
		Stance:          0.25,
		Coordination:    0.25,
		BotNetwork:      0.15,
		BurstActivity:   0.10,
		NarrativeThreat: 0.05,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Toxicity + w.Stance + w.Coordination + w.BotNetwork + w.BurstActivity + w.NarrativeThreat
}

// AlertThresholds are the component scores (0-100) above which an alert is
// raised.
type AlertThresholds struct {
	Toxicity      float64 `koanf:"toxicity" json:"toxicity"`
	Stance        float64 `koanf:"stance" json:"stance"`
	Coordination  float64 `koanf:"coordination" json:"coordination"`
	BotNetwork    float64 `koanf:"bot_network" json:"bot_network"`
	BurstActivity float64 `koanf:"burst_activity" json:"burst_activity"`
}

// DefaultAlertThresholds returns the standard alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		Toxicity:      70,
		Stance:        60,
		Coordination:  60,
		BotNetwork:    50,
		BurstActivity: 50,
	}
}

// Config configures a Scorer.
type Config struct {
	Weights Weights         `koanf:"weights" json:"weights"`
	Alerts  AlertThresholds `koanf:"alerts" json:"alerts"`

	// Per-post thresholds used by the component formulas.
	HighToxicity float64 `koanf:"high_toxicity" json:"high_toxicity"`
	AntiStance   float64 `koanf:"anti_stance" json:"anti_stance"`
	HighBot      float64 `koanf:"high_bot" json:"high_bot"`

	// A narrative cluster is threatening above NarrativeToxicity or below
	// NarrativeStance.
	NarrativeToxicity float64 `koanf:"narrative_toxicity" json:"narrative_toxicity"`
	NarrativeStance   float64 `koanf:"narrative_stance" json:"narrative_stance"`

	// ReviewScore forces human review above this final score.
	ReviewScore float64 `koanf:"review_score" json:"review_score"`

	BatchConcurrency    int `koanf:"batch_concurrency" json:"batch_concurrency"`
	ClassifyConcurrency int `koanf:"classify_concurrency" json:"classify_concurrency"`

	Burst        detection.BurstConfig        `koanf:"burst" json:"burst"`
	Coordination detection.CoordinationConfig `koanf:"coordination" json:"coordination"`
	Bot          detection.BotConfig          `koanf:"bot" json:"bot"`

	ClassifierBreaker breaker.Config `koanf:"classifier_breaker" json:"classifier_breaker"`
	NarrativeBreaker  breaker.Config `koanf:"narrative_breaker" json:"narrative_breaker"`
}

// DefaultConfig returns the standard scorer configuration.
func DefaultConfig() Config {
	return Config{
		Weights:             DefaultWeights(),
		Alerts:              DefaultAlertThresholds(),
		HighToxicity:        0.7,
		AntiStance:          0.6,
		HighBot:             0.7,
		NarrativeToxicity:   0.6,
		NarrativeStance:     -0.6,
		ReviewScore:         70,
		BatchConcurrency:    4,
		ClassifyConcurrency: 8,
		Burst:               detection.DefaultBurstConfig(),
		Coordination:        detection.DefaultCoordinationConfig(),
		Bot:                 detection.DefaultBotConfig(),
		ClassifierBreaker:   breaker.DefaultConfig("classifier"),
		NarrativeBreaker:    breaker.DefaultConfig("narrative"),
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Weights == (Weights{}) {
		c.Weights = def.Weights
	}
	if c.Alerts == (AlertThresholds{}) {
		c.Alerts = def.Alerts
	}
	if c.HighToxicity == 0 {
		c.HighToxicity = def.HighToxicity
	}
	if c.AntiStance == 0 {
		c.AntiStance = def.AntiStance
	}
	if c.HighBot == 0 {
		c.HighBot = def.HighBot
	}
	if c.NarrativeToxicity == 0 {
		c.NarrativeToxicity = def.NarrativeToxicity
	}
	if c.NarrativeStance == 0 {
		c.NarrativeStance = def.NarrativeStance
	}
	if c.ReviewScore == 0 {
		c.ReviewScore = def.ReviewScore
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = def.BatchConcurrency
	}
	if c.ClassifyConcurrency <= 0 {
		c.ClassifyConcurrency = def.ClassifyConcurrency
	}
	if c.ClassifierBreaker.Name == "" {
		c.ClassifierBreaker = def.ClassifierBreaker
	}
	if c.NarrativeBreaker.Name == "" {
		c.NarrativeBreaker = def.NarrativeBreaker
	}
	return c
}
