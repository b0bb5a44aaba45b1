// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package campaign

import (
	"reflect"
	"testing"

	"github.com/tomtom215/campaignwatch/internal/detection"
	"github.com/tomtom215/campaignwatch/internal/nlp"
)

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Severity
	}{
		{0, SeverityLow},
		{29.9, SeverityLow},
		{30.0, SeverityMedium},
		{59.9, SeverityMedium},
		{60, SeverityHigh},
		{84.99, SeverityHigh},
		{85.0, SeverityCritical},
		{100, SeverityCritical},
	}
	for _, tt := range tests {
		if got := SeverityFor(tt.score); got != tt.want {
			t.Errorf("SeverityFor(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func classifiedWith(toxicity, anti []float64) []nlp.ClassifiedPost {
	n := max(len(toxicity), len(anti))
	out := make([]nlp.ClassifiedPost, n)
	for i := range out {
		if i < len(toxicity) {
			out[i].Toxicity.Score = toxicity[i]
		}
		if i < len(anti) {
			out[i].Stance.Scores.AntiIndia = anti[i]
		}
	}
	return out
}

func TestComponentFormulas(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"toxicity", toxicityComponent(classifiedWith([]float64{0.8, 0.8, 0.2, 0.2}, nil), 0.7), 50},
		{"toxicity empty", toxicityComponent(nil, 0.7), 0},
		{"stance", stanceComponent(classifiedWith(nil, []float64{0.9, 0.3}), 0.6), 57},
		{"coordination", coordinationComponent(&detection.CoordinationResult{Score: 0.75}), 75},
		{"coordination failed", coordinationComponent(nil), 0},
		{"bot network", botNetworkComponent(&detection.BotNetworkResult{
			Score: 0.5,
			Accounts: []detection.BotResult{
				{Score: 0.8}, {Score: 0.2}, {Score: 0.9}, {Score: 0.1},
			},
		}, 0.7), 50},
		{"bot network no accounts", botNetworkComponent(&detection.BotNetworkResult{Score: 1}, 0.7), 0},
		{"burst", burstComponent(&detection.BurstResult{
			Coordination: detection.BurstCoordination{Score: 0.5},
			StateBursts:  make([]detection.BurstEvent, 4),
		}), 65},
		{"burst single", burstComponent(&detection.BurstResult{StateBursts: make([]detection.BurstEvent, 1)}), 10},
		{"narrative", narrativeComponent(&nlp.NarrativeResult{Clusters: map[string]nlp.NarrativeCluster{
			"a": {Statistics: nlp.ClusterStats{AvgToxicity: 0.7}},
			"b": {Statistics: nlp.ClusterStats{AvgStance: -0.7}},
			"c": {Statistics: nlp.ClusterStats{AvgToxicity: 0.6, AvgStance: -0.6}},
		}}, 0.6, -0.6), 200.0 / 3},
		{"narrative none", narrativeComponent(&nlp.NarrativeResult{}, 0.6, -0.6), 0},
	}
	for _, tt := range tests {
		if !approxEqual(tt.got, tt.want) {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestFinalScore(t *testing.T) {
	w := DefaultWeights()
	if !approxEqual(w.Sum(), 1) {
		t.Fatalf("default weights sum = %v, want 1", w.Sum())
	}

	all := map[string]float64{}
	for _, c := range Components {
		all[c] = 100
	}
	if got := FinalScore(w, all); got != 100 {
		t.Errorf("FinalScore(all 100) = %v, want 100", got)
	}

	mixed := map[string]float64{ComponentToxicity: 50, ComponentStance: 40}
	if got := FinalScore(w, mixed); !approxEqual(got, 20) {
		t.Errorf("FinalScore(mixed) = %v, want 20", got)
	}

	heavy := Weights{Toxicity: 2}
	if got := FinalScore(heavy, all); got != 100 {
		t.Errorf("FinalScore clamps to %v, want 100", got)
	}
}

func TestRecommendations(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		comps map[string]float64
		want  []string
	}{
		{"critical", 90, nil, []string{
			"CRITICAL: Immediate human expert review required",
			"Consider escalating to security team",
			"Monitor for continued activity",
		}},
		{"high", 61, nil, []string{
			"HIGH: Schedule expert review within 24 hours",
			"Increase monitoring frequency",
		}},
		{"medium", 31, nil, []string{
			"MEDIUM: Review during next analysis cycle",
			"Continue automated monitoring",
		}},
		{"quiet", 30, nil, []string{}},
		{"component actions", 10, map[string]float64{
			ComponentCoordination: 71,
			ComponentBotNetwork:   61,
			ComponentToxicity:     61,
		}, []string{
			"Investigate coordination patterns for legal violations",
			"Cross-reference with known influence operations",
			"Report bot network to platform administrators",
			"Analyze bot creation patterns",
			"Flag toxic content for content moderation",
			"Analyze toxicity trends over time",
		}},
	}
	for _, tt := range tests {
		if got := Recommendations(tt.score, tt.comps); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: Recommendations = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBuildAlerts(t *testing.T) {
	res := &Result{
		CampaignID: "camp-1",
		ScoredAt:   testEpoch,
		ComponentScores: map[string]float64{
			ComponentToxicity:      70, // not strictly above
			ComponentStance:        60.04,
			ComponentCoordination:  75,
			ComponentBotNetwork:    50,
			ComponentBurstActivity: 65,
		},
		Analysis: Analysis{
			Coordination: &detection.CoordinationResult{Groups: make([]detection.CoordinatedGroup, 2)},
			Burst:        &detection.BurstResult{StateBursts: make([]detection.BurstEvent, 3)},
		},
	}
	alerts := buildAlerts(DefaultAlertThresholds(), res)

	var types []string
	for _, a := range alerts {
		types = append(types, a.Type)
	}
	want := []string{AlertAntiIndiaNarrative, AlertCoordinatedBehavior, AlertBurstActivity}
	if !reflect.DeepEqual(types, want) {
		t.Fatalf("alert types = %v, want %v", types, want)
	}

	stance := alerts[0]
	if stance.Message != "Anti-India narrative detected (score: 60.0)" || stance.Severity != SeverityHigh {
		t.Errorf("stance alert = %+v", stance)
	}
	coord := alerts[1]
	if coord.Message != "Coordinated inauthentic behavior detected (2 groups)" ||
		coord.Evidence != "Coordination score: 75.0" || coord.Severity != SeverityCritical {
		t.Errorf("coordination alert = %+v", coord)
	}
	burst := alerts[2]
	if burst.Message != "Suspicious burst activity detected (3 bursts)" || burst.Severity != SeverityMedium {
		t.Errorf("burst alert = %+v", burst)
	}
	for _, a := range alerts {
		if a.ID != AlertID("camp-1", a.Type) || a.CampaignID != "camp-1" || !a.CreatedAt.Equal(testEpoch) {
			t.Errorf("alert identity = %+v", a)
		}
	}
}

func TestAlertID(t *testing.T) {
	a := AlertID("camp-1", AlertBotNetwork)
	if a != AlertID("camp-1", AlertBotNetwork) {
		t.Error("AlertID is not stable")
	}
	if a == AlertID("camp-2", AlertBotNetwork) || a == AlertID("camp-1", AlertBurstActivity) {
		t.Error("AlertID collides across campaigns or types")
	}
}

func TestSeverityValid(t *testing.T) {
	for _, s := range Severities {
		if !s.Valid() {
			t.Errorf("%q.Valid() = false", s)
		}
	}
	if Severity("extreme").Valid() {
		t.Error(`"extreme".Valid() = true`)
	}
}
