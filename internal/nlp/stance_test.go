// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package nlp

import (
	"math"
	"testing"
)

func TestStanceDetector_Detect(t *testing.T) {
	d := NewStanceDetector()
	tests := []struct {
		name     string
		text     string
		language string
		primary  string
		anti     float64
		pro      float64
		neutral  float64
	}{
		{"neutral mention", "India is a great country with rich culture and heritage", "en",
			StanceNeutral, 0, 0, 1},
		{"anti indicators", "hate india, india corrupt regime", "en",
			StanceAntiIndia, 0.6, 0, 0.4},
		{"pro indicators", "Jai Hind! India great nation, love india", "en",
			StanceProIndia, 0, 0.9, 0.1},
		{"hindi indicator", "भारत महान है", LanguageHindi,
			StanceNeutral, 0, 0.3, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.text, tt.language)
			if got.Primary != tt.primary {
				t.Errorf("Primary = %q, want %q", got.Primary, tt.primary)
			}
			checks := []struct {
				label     string
				got, want float64
			}{
				{"anti", got.Scores.AntiIndia, tt.anti},
				{"pro", got.Scores.ProIndia, tt.pro},
				{"neutral", got.Scores.Neutral, tt.neutral},
				{"not_relevant", got.Scores.NotRelevant, 0},
			}
			for _, c := range checks {
				if math.Abs(c.got-c.want) > 1e-9 {
					t.Errorf("%s = %v, want %v", c.label, c.got, c.want)
				}
			}
			if len(got.Topics) == 0 {
				t.Error("Topics is empty for a relevant text")
			}
		})
	}
}

func TestStanceDetector_NotRelevant(t *testing.T) {
	d := NewStanceDetector()
	for _, text := range []string{"The weather is nice today", "ok", ""} {
		got := d.Detect(text, "en")
		if got.Primary != StanceNotRelevant {
			t.Errorf("Detect(%q).Primary = %q, want not_relevant", text, got.Primary)
		}
		if got.Scores.NotRelevant != 1 || got.Polarity() != 0 {
			t.Errorf("Detect(%q).Scores = %+v, want only not_relevant", text, got.Scores)
		}
	}
}

func TestStanceDetector_Indicators(t *testing.T) {
	got := NewStanceDetector().Detect("hate india, india corrupt regime", "en")
	want := map[string]bool{"anti: india corrupt": true, "anti: hate india": true}
	if len(got.Indicators) != len(want) {
		t.Fatalf("Indicators = %v, want %d entries", got.Indicators, len(want))
	}
	for _, ind := range got.Indicators {
		if !want[ind] {
			t.Errorf("unexpected indicator %q", ind)
		}
	}
	if got.Sentiment.Negative == 0 {
		t.Errorf("Sentiment = %+v, want negative share", got.Sentiment)
	}
}

func TestStanceResult_Polarity(t *testing.T) {
	r := StanceResult{Scores: StanceScores{AntiIndia: 0.7, ProIndia: 0.1}}
	if got := r.Polarity(); math.Abs(got-(-0.6)) > 1e-9 {
		t.Errorf("Polarity = %v, want -0.6", got)
	}
}

func TestStanceContext_Capped(t *testing.T) {
	anti, pro := stanceContext("recession inflation economic crisis gdp falling unemployment high")
	if anti != 0.5 {
		t.Errorf("anti = %v, want 0.5", anti)
	}
	if pro != 0 {
		t.Errorf("pro = %v, want 0", pro)
	}
}
