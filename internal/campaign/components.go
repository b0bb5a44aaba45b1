// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package campaign

import (
	"math"

	"github.com/tomtom215/campaignwatch/internal/detection"
	"github.com/tomtom215/campaignwatch/internal/nlp"
)

func clamp100(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(100, v)
}

// toxicityComponent = avg_score*60 + high_ratio*40.
func toxicityComponent(posts []nlp.ClassifiedPost, high float64) float64 {
	if len(posts) == 0 {
		return 0
	}
	var sum float64
	var highCount int
	for i := range posts {
		score := posts[i].Toxicity.Score
		sum += score
		if score > high {
			highCount++
		}
	}
	n := float64(len(posts))
	return clamp100(sum/n*60 + float64(highCount)/n*40)
}

// stanceComponent = avg_anti*70 + anti_ratio*30.
func stanceComponent(posts []nlp.ClassifiedPost, anti float64) float64 {
	if len(posts) == 0 {
		return 0
	}
	var sum float64
	var antiCount int
	for i := range posts {
		score := posts[i].Stance.Scores.AntiIndia
		sum += score
		if score > anti {
			antiCount++
		}
	}
	n := float64(len(posts))
	return clamp100(sum/n*70 + float64(antiCount)/n*30)
}

func coordinationComponent(r *detection.CoordinationResult) float64 {
	if r == nil {
		return 0
	}
	return clamp100(r.Score * 100)
}

// botNetworkComponent = network_score*60 + high_bot_ratio*40.
func botNetworkComponent(r *detection.BotNetworkResult, high float64) float64 {
	if r == nil || len(r.Accounts) == 0 {
		return 0
	}
	var highCount int
	for _, a := range r.Accounts {
		if a.Score > high {
			highCount++
		}
	}
	return clamp100(r.Score*60 + float64(highCount)/float64(len(r.Accounts))*40)
}

// burstComponent = burst_coordination*70 + min(30, 10 per state-model burst).
func burstComponent(r *detection.BurstResult) float64 {
	if r == nil {
		return 0
	}
	return clamp100(r.Coordination.Score*70 + math.Min(30, float64(len(r.StateBursts))*10))
}

// narrativeComponent is the percentage of threatening clusters.
func narrativeComponent(r *nlp.NarrativeResult, toxicity, stance float64) float64 {
	if r == nil || len(r.Clusters) == 0 {
		return 0
	}
	var threatening int
	for _, c := range r.Clusters {
		if c.Statistics.AvgToxicity > toxicity || c.Statistics.AvgStance < stance {
			threatening++
		}
	}
	return clamp100(float64(threatening) / float64(len(r.Clusters)) * 100)
}

// FinalScore is the weighted sum of the component scores, clamped to [0, 100].
func FinalScore(w Weights, comps map[string]float64) float64 {
	return clamp100(w.Toxicity*comps[ComponentToxicity] +
		w.Stance*comps[ComponentStance] +
		w.Coordination*comps[ComponentCoordination] +
		w.BotNetwork*comps[ComponentBotNetwork] +
		w.BurstActivity*comps[ComponentBurstActivity] +
		w.NarrativeThreat*comps[ComponentNarrativeThreat])
}

// SeverityFor maps a score to low [0,30), medium [30,60), high [60,85) or
// critical [85,100].
func SeverityFor(score float64) Severity {
	switch {
	case score < 30:
		return SeverityLow
	case score < 60:
		return SeverityMedium
	case score < 85:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

// Recommendations returns the tiered actions for a final score followed by
// component-specific actions.
func Recommendations(score float64, comps map[string]float64) []string {
	recs := make([]string, 0, 8)
	switch {
	case score > 85:
		recs = append(recs,
			"CRITICAL: Immediate human expert review required",
			"Consider escalating to security team",
			"Monitor for continued activity")
	case score > 60:
		recs = append(recs,
			"HIGH: Schedule expert review within 24 hours",
			"Increase monitoring frequency")
	case score > 30:
		recs = append(recs,
			"MEDIUM: Review during next analysis cycle",
			"Continue automated monitoring")
	}
	if comps[ComponentCoordination] > 70 {
		recs = append(recs,
			"Investigate coordination patterns for legal violations",
			"Cross-reference with known influence operations")
	}
	if comps[ComponentBotNetwork] > 60 {
		recs = append(recs,
			"Report bot network to platform administrators",
			"Analyze bot creation patterns")
	}
	if comps[ComponentToxicity] > 60 {
		recs = append(recs,
			"Flag toxic content for content moderation",
			"Analyze toxicity trends over time")
	}
	return recs
}
