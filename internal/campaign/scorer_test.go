// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package campaign

import (
	"context"
	"reflect"
	"slices"
	"testing"

	"github.com/tomtom215/campaignwatch/internal/detection"
	"github.com/tomtom215/campaignwatch/internal/models"
	"github.com/tomtom215/campaignwatch/internal/nlp"
)

func testConfig(name string) Config {
	cfg := DefaultConfig()
	cfg.ClassifierBreaker.Name = name + "-classifier"
	cfg.NarrativeBreaker.Name = name + "-narrative"
	return cfg
}

func TestScorer_EmptyInput(t *testing.T) {
	s := NewScorer(testConfig("empty"), nil, nil, WithClock(fixedClock))
	res := s.Score(context.Background(), nil, nil)

	if res.Score != 0 || res.Severity != SeverityLow {
		t.Errorf("Score, Severity = %v, %q; want 0, low", res.Score, res.Severity)
	}
	if len(res.Alerts) != 0 {
		t.Errorf("Alerts = %v, want none", res.Alerts)
	}
	if !reflect.DeepEqual(res.Recommendations, []string{NoDataRecommendation}) {
		t.Errorf("Recommendations = %v", res.Recommendations)
	}
	if res.HumanReviewRequired {
		t.Error("HumanReviewRequired = true for empty input")
	}
	if len(res.ComponentScores) != len(Components) {
		t.Errorf("ComponentScores = %v, want every component at zero", res.ComponentScores)
	}
	if !res.ScoredAt.Equal(fixedClock()) {
		t.Errorf("ScoredAt = %v, want %v", res.ScoredAt, fixedClock())
	}
}

func TestScorer_ComponentsMatchDetectors(t *testing.T) {
	classifier := &stubClassifier{toxicity: 0.8, anti: 0.9}
	clusterer := &stubClusterer{result: twoClusterResult()}
	cfg := testConfig("components")
	s := NewScorer(cfg, classifier, clusterer, WithClock(fixedClock))

	posts := rallyPosts()
	res := s.Score(context.Background(), posts, nil)

	authors := models.DeriveAuthors(posts)
	coord := detection.NewCoordinationDetector(cfg.Coordination).DetectCoordination(posts, authors)
	network := detection.NewBotDetector(cfg.Bot).AnalyzeNetwork(authors, posts)
	bursts := detection.NewBurstDetector(cfg.Burst).DetectBursts(posts, cfg.Burst.WindowHours)

	want := map[string]float64{
		ComponentToxicity:        88,
		ComponentStance:          93,
		ComponentCoordination:    coordinationComponent(&coord),
		ComponentBotNetwork:      botNetworkComponent(&network, cfg.HighBot),
		ComponentBurstActivity:   burstComponent(&bursts),
		ComponentNarrativeThreat: 50,
	}
	for name, v := range want {
		if !approxEqual(res.ComponentScores[name], v) {
			t.Errorf("component %s = %v, want %v", name, res.ComponentScores[name], v)
		}
	}
	if got := FinalScore(cfg.Weights, want); !approxEqual(res.Score, got) {
		t.Errorf("Score = %v, want %v", res.Score, got)
	}
	if res.Severity != SeverityFor(res.Score) {
		t.Errorf("Severity = %q, want %q", res.Severity, SeverityFor(res.Score))
	}
	if got := classifier.calls.Load(); got != int64(len(posts)) {
		t.Errorf("classifier calls = %d, want one per post (%d)", got, len(posts))
	}
	if res.PostCount != len(posts) || res.AuthorCount != len(authors) {
		t.Errorf("PostCount, AuthorCount = %d, %d", res.PostCount, res.AuthorCount)
	}
	if len(res.Classifications) != len(posts) || res.Classifications[0].PostID != "rally-0" {
		t.Errorf("Classifications = %d entries", len(res.Classifications))
	}
	if len(res.DegradedSteps) != 0 {
		t.Errorf("DegradedSteps = %v, want none", res.DegradedSteps)
	}

	var types []string
	for _, a := range res.Alerts {
		types = append(types, a.Type)
	}
	for _, want := range []string{AlertHighToxicity, AlertAntiIndiaNarrative} {
		if !slices.Contains(types, want) {
			t.Errorf("alerts %v missing %s", types, want)
		}
	}
	if !res.HumanReviewRequired && (res.Score > 70 || res.Severity == SeverityHigh || res.Severity == SeverityCritical) {
		t.Error("HumanReviewRequired = false for a high score")
	}
}

func TestScorer_Idempotent(t *testing.T) {
	s := NewScorer(testConfig("idempotent"), nil, nil, WithClock(fixedClock))
	posts := rallyPosts()

	first := s.Score(context.Background(), posts, nil)
	second := s.Score(context.Background(), posts, nil)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Score is not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestScorer_DoesNotMutateInput(t *testing.T) {
	s := NewScorer(testConfig("mutate"), nil, nil, WithClock(fixedClock))
	posts := rallyPosts()
	for i := range posts {
		posts[i].Language = ""
	}
	res := s.Score(context.Background(), posts, nil)

	for i := range posts {
		if posts[i].Language != "" {
			t.Fatalf("input post %d language changed to %q", i, posts[i].Language)
		}
	}
	if got := res.Classifications[0].Language; got != nlp.LanguageEnglish {
		t.Errorf("detected language = %q, want en", got)
	}
}

func TestScorer_ClassifierFailureDegrades(t *testing.T) {
	classifier := &stubClassifier{err: errClassifierDown}
	s := NewScorer(testConfig("classifier-down"), classifier, &stubClusterer{}, WithClock(fixedClock))
	res := s.Score(context.Background(), rallyPosts(), nil)

	if !slices.Contains(res.DegradedSteps, StepClassification) {
		t.Errorf("DegradedSteps = %v, want %s", res.DegradedSteps, StepClassification)
	}
	if res.ComponentScores[ComponentToxicity] != 0 || res.ComponentScores[ComponentStance] != 0 {
		t.Errorf("toxicity, stance = %v, %v; want 0, 0",
			res.ComponentScores[ComponentToxicity], res.ComponentScores[ComponentStance])
	}
	for _, c := range res.Classifications {
		if c.Stance != nlp.StanceNotRelevant {
			t.Fatalf("classification %s stance = %q, want neutral fallback", c.PostID, c.Stance)
		}
	}
	if res.Analysis.Coordination == nil || res.Analysis.BotNetwork == nil || res.Analysis.Burst == nil {
		t.Error("detector results missing after classifier failure")
	}
}

func TestScorer_ClustererPanicDegrades(t *testing.T) {
	classifier := &stubClassifier{toxicity: 0.8, anti: 0.9}
	s := NewScorer(testConfig("clusterer-panic"), classifier, &stubClusterer{panicMsg: "boom"}, WithClock(fixedClock))
	res := s.Score(context.Background(), rallyPosts(), nil)

	if !reflect.DeepEqual(res.DegradedSteps, []string{StepNarrative}) {
		t.Errorf("DegradedSteps = %v, want [%s]", res.DegradedSteps, StepNarrative)
	}
	if res.Analysis.Narrative != nil || res.ComponentScores[ComponentNarrativeThreat] != 0 {
		t.Errorf("narrative = %v / %v, want nil / 0", res.Analysis.Narrative, res.ComponentScores[ComponentNarrativeThreat])
	}
	if !approxEqual(res.ComponentScores[ComponentToxicity], 88) {
		t.Errorf("toxicity = %v, want 88 despite clusterer failure", res.ComponentScores[ComponentToxicity])
	}
}

func TestScorer_Range(t *testing.T) {
	s := NewScorer(testConfig("range"), nil, nil, WithClock(fixedClock))
	inputs := [][]models.Post{
		rallyPosts(),
		rallyPosts()[:1],
		{{PostID: "x", AuthorRef: "a", Text: "I hate this stupid policy, india corrupt"}},
	}
	for i, posts := range inputs {
		res := s.Score(context.Background(), posts, nil)
		if res.Score < 0 || res.Score > 100 {
			t.Errorf("input %d: Score = %v out of range", i, res.Score)
		}
		for name, v := range res.ComponentScores {
			if v < 0 || v > 100 {
				t.Errorf("input %d: %s = %v out of range", i, name, v)
			}
		}
	}
}

func TestScorer_DefaultCollaborators(t *testing.T) {
	s := NewScorer(testConfig("defaults"), nil, nil, WithClock(fixedClock))
	posts := []models.Post{
		{PostID: "1", AuthorRef: "a", Text: "kill murder bomb"},
		{PostID: "2", AuthorRef: "b", Text: "hate india, india corrupt regime"},
	}
	res := s.Score(context.Background(), posts, nil)

	if res.Classifications[0].ToxicitySeverity != nlp.SeverityHigh {
		t.Errorf("post 1 toxicity = %+v, want high", res.Classifications[0])
	}
	if res.Classifications[1].Stance != nlp.StanceAntiIndia {
		t.Errorf("post 2 stance = %q, want anti_india", res.Classifications[1].Stance)
	}
	if res.ComponentScores[ComponentToxicity] <= 0 || res.ComponentScores[ComponentStance] <= 0 {
		t.Errorf("ComponentScores = %v, want toxicity and stance above zero", res.ComponentScores)
	}
}

func TestScorer_ScoreBatch(t *testing.T) {
	s := NewScorer(testConfig("batch"), &stubClassifier{toxicity: 0.1}, &stubClusterer{}, WithClock(fixedClock))
	campaigns := []Campaign{
		{Posts: rallyPosts()},
		{ID: "named", Posts: rallyPosts()[:3]},
		{},
	}
	results := s.ScoreBatch(context.Background(), campaigns)

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	wantIDs := []string{"campaign_0", "named", "campaign_2"}
	for i, r := range results {
		if r.CampaignID != wantIDs[i] {
			t.Errorf("results[%d].CampaignID = %q, want %q", i, r.CampaignID, wantIDs[i])
		}
	}
	if results[0].PostCount != 12 || results[1].PostCount != 3 {
		t.Errorf("PostCounts = %d, %d; want 12, 3", results[0].PostCount, results[1].PostCount)
	}
	if !reflect.DeepEqual(results[2].Recommendations, []string{NoDataRecommendation}) {
		t.Errorf("empty campaign recommendations = %v", results[2].Recommendations)
	}

	// Batch results equal individually scored campaigns.
	single := s.ScoreCampaign(context.Background(), Campaign{ID: "campaign_0", Posts: rallyPosts()})
	if !reflect.DeepEqual(results[0], single) {
		t.Error("batch result differs from ScoreCampaign")
	}
}

func TestScorer_AlertIDsStableAcrossRescoring(t *testing.T) {
	s := NewScorer(testConfig("alert-ids"), &stubClassifier{toxicity: 0.9, anti: 0.9}, &stubClusterer{}, WithClock(fixedClock))
	c := Campaign{ID: "camp-7", Posts: rallyPosts()}
	a := s.ScoreCampaign(context.Background(), c)
	b := s.ScoreCampaign(context.Background(), c)
	if len(a.Alerts) == 0 {
		t.Fatal("expected alerts for a toxic campaign")
	}
	for i := range a.Alerts {
		if a.Alerts[i].ID != b.Alerts[i].ID || a.Alerts[i].CampaignID != "camp-7" {
			t.Errorf("alert %d IDs = %q, %q", i, a.Alerts[i].ID, b.Alerts[i].ID)
		}
	}
}
