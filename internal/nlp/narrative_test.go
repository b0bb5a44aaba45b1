// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package nlp

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/campaignwatch/internal/models"
)

var narrativeEpoch = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func classified(id, text, lang string, at time.Duration, likes int, toxicity, anti float64) ClassifiedPost {
	return ClassifiedPost{
		Post: models.Post{
			Platform:  "twitter",
			PostID:    id,
			AuthorRef: "author-" + id,
			Text:      text,
			PostedAt:  models.Timestamp{Time: narrativeEpoch.Add(at), Valid: true},
			Likes:     likes,
			Language:  lang,
		},
		Toxicity: ToxicityResult{Score: toxicity},
		Stance:   StanceResult{Scores: StanceScores{AntiIndia: anti}},
	}
}

func narrativeFixture() []ClassifiedPost {
	return []ClassifiedPost{
		classified("p1", "The economy is in crisis and unemployment keeps rising", "en", 0, 3, 0.2, 0.9),
		classified("p2", "Economy will collapse, gdp numbers fail", "en", time.Hour, 6, 0.4, 0.9),
		classified("p3", "Recession and unemployment crisis everywhere", "", 3*time.Hour, 9, 0.6, 0.9),
		classified("p4", "Proud of our space technology achievement", "en", 0, 0, 0, 0),
		classified("p5", "Huge success for space technology growth", "en", 0, 0, 0, 0),
		classified("p6", "Lovely weather today at the beach", "en", 0, 0, 0, 0),
		classified("p7", "   ", "en", 0, 0, 0, 0),
	}
}

func TestNarrativeClusterer_Cluster(t *testing.T) {
	c := NewNarrativeClusterer(NarrativeConfig{})
	res, err := c.Cluster(context.Background(), narrativeFixture())
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}

	if res.TotalPosts != 7 || res.ClusteredPosts != 6 {
		t.Errorf("TotalPosts, ClusteredPosts = %d, %d; want 7, 6", res.TotalPosts, res.ClusteredPosts)
	}
	if res.NumClusters != 1 {
		t.Fatalf("NumClusters = %d, want 1 (%v)", res.NumClusters, res.Clusters)
	}
	// Two achievement posts fall below the minimum cluster size.
	if res.NoisePosts != 3 {
		t.Errorf("NoisePosts = %d, want 3", res.NoisePosts)
	}

	cl, ok := res.Clusters[NarrativeEconomicDoom]
	if !ok {
		t.Fatalf("missing %s cluster: %v", NarrativeEconomicDoom, res.Clusters)
	}
	if cl.Size != 3 || !reflect.DeepEqual(cl.PostIDs, []string{"p1", "p2", "p3"}) {
		t.Errorf("cluster = size %d ids %v", cl.Size, cl.PostIDs)
	}

	stats := cl.Statistics
	if math.Abs(stats.AvgToxicity-0.4) > 1e-9 {
		t.Errorf("AvgToxicity = %v, want 0.4", stats.AvgToxicity)
	}
	if math.Abs(stats.AvgStance-(-0.9)) > 1e-9 {
		t.Errorf("AvgStance = %v, want -0.9", stats.AvgStance)
	}
	if stats.AvgEngagement != 6 {
		t.Errorf("AvgEngagement = %v, want 6", stats.AvgEngagement)
	}
	if !reflect.DeepEqual(stats.LanguageDistribution, map[string]int{"en": 2, "unknown": 1}) {
		t.Errorf("LanguageDistribution = %v", stats.LanguageDistribution)
	}
	if !reflect.DeepEqual(stats.PlatformDistribution, map[string]int{"twitter": 3}) {
		t.Errorf("PlatformDistribution = %v", stats.PlatformDistribution)
	}
	if stats.TimeSpan == nil || stats.TimeSpan.DurationHours != 3 {
		t.Errorf("TimeSpan = %+v, want 3 hours", stats.TimeSpan)
	}
	if len(cl.Keywords) < 3 || !reflect.DeepEqual(cl.Keywords[:3], []string{"crisis", "economy", "unemployment"}) {
		t.Errorf("Keywords = %v, want crisis, economy, unemployment first", cl.Keywords)
	}
	if len(cl.RepresentativeTexts) != 3 {
		t.Errorf("RepresentativeTexts = %d, want 3", len(cl.RepresentativeTexts))
	}
}

func TestNarrativeClusterer_TooFewPosts(t *testing.T) {
	posts := narrativeFixture()[:4]
	res, err := NewNarrativeClusterer(DefaultNarrativeConfig()).Cluster(context.Background(), posts)
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}
	if res.TotalPosts != 4 || res.ClusteredPosts != 0 || res.NumClusters != 0 || len(res.Clusters) != 0 {
		t.Errorf("result = %+v, want empty clustering", res)
	}
}

func TestNarrativeClusterer_SmallerMinimum(t *testing.T) {
	c := NewNarrativeClusterer(NarrativeConfig{MinClusterSize: 2})
	res, err := c.Cluster(context.Background(), narrativeFixture())
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}
	if _, ok := res.Clusters[NarrativeAchievementCelebration]; !ok || res.NumClusters != 2 {
		t.Errorf("Clusters = %v, want economic and achievement clusters", res.Clusters)
	}
	if res.NoisePosts != 1 {
		t.Errorf("NoisePosts = %d, want 1", res.NoisePosts)
	}
}

func TestNarrativeClusterer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewNarrativeClusterer(NarrativeConfig{}).Cluster(ctx, narrativeFixture())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBestNarrative(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"kashmir human rights violation", 2},
		{"nothing to see here", -1},
		// violence appears in two narratives; the earlier one wins the tie.
		{"violence", 1},
	}
	for _, tt := range tests {
		if got := bestNarrative(tt.text); got != tt.want {
			t.Errorf("bestNarrative(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
