// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package campaign

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/tomtom215/campaignwatch/internal/models"
	"github.com/tomtom215/campaignwatch/internal/nlp"
)

var testEpoch = time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testEpoch.Add(48 * time.Hour) }

func approxEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// stubClassifier returns fixed results, or err when set.
type stubClassifier struct {
	toxicity float64
	anti     float64
	err      error
	calls    atomic.Int64
}

func (s *stubClassifier) Toxicity(_ context.Context, _, _ string) (nlp.ToxicityResult, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nlp.ToxicityResult{}, s.err
	}
	return nlp.ToxicityResult{
		Score:      s.toxicity,
		Severity:   nlp.ToxicitySeverity(s.toxicity),
		Categories: []string{},
		Model:      "stub",
	}, nil
}

func (s *stubClassifier) Stance(_ context.Context, _, _ string) (nlp.StanceResult, error) {
	if s.err != nil {
		return nlp.StanceResult{}, s.err
	}
	return nlp.StanceResult{
		Scores:  nlp.StanceScores{AntiIndia: s.anti, Neutral: 1 - s.anti},
		Primary: nlp.StanceAntiIndia,
	}, nil
}

func (s *stubClassifier) Language(string) nlp.LanguageResult {
	return nlp.LanguageResult{Language: nlp.LanguageEnglish}
}

// stubClusterer returns a fixed result, or panics when panicMsg is set.
type stubClusterer struct {
	result   nlp.NarrativeResult
	err      error
	panicMsg string
}

func (s *stubClusterer) Cluster(_ context.Context, posts []nlp.ClassifiedPost) (nlp.NarrativeResult, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	res := s.result
	res.TotalPosts = len(posts)
	return res, s.err
}

func twoClusterResult() nlp.NarrativeResult {
	return nlp.NarrativeResult{
		NumClusters: 2,
		Clusters: map[string]nlp.NarrativeCluster{
			nlp.NarrativeEconomicDoom: {
				Narrative:  nlp.NarrativeEconomicDoom,
				Size:       6,
				Statistics: nlp.ClusterStats{AvgToxicity: 0.8, AvgStance: -0.2},
			},
			nlp.NarrativeLegitimateCriticism: {
				Narrative:  nlp.NarrativeLegitimateCriticism,
				Size:       3,
				Statistics: nlp.ClusterStats{AvgToxicity: 0.1, AvgStance: 0.1},
			},
		},
	}
}

// rallyPosts is four accounts posting the same text minutes apart, followed
// by unrelated chatter.
func rallyPosts() []models.Post {
	posts := make([]models.Post, 0, 12)
	for i := 0; i < 8; i++ {
		author := fmt.Sprintf("user%dabc", i%4)
		posts = append(posts, models.Post{
			Platform:  "twitter",
			PostID:    fmt.Sprintf("rally-%d", i),
			AuthorRef: author,
			Text:      "Everyone must join the rally against the new policy #rally",
			PostedAt:  models.Timestamp{Time: testEpoch.Add(time.Duration(i) * 2 * time.Minute), Valid: true},
			Hashtags:  []string{"rally"},
			Mentions:  []string{"user0abc"},
			Shares:    i,
			Language:  "en",
		})
	}
	for i := 0; i < 4; i++ {
		posts = append(posts, models.Post{
			Platform:  "twitter",
			PostID:    fmt.Sprintf("chat-%d", i),
			AuthorRef: fmt.Sprintf("person_%d", i),
			Text:      fmt.Sprintf("Lunch plans for day %d are still open", i),
			PostedAt:  models.Timestamp{Time: testEpoch.Add(time.Duration(i+2) * 5 * time.Hour), Valid: true},
			Likes:     3 + i,
			Language:  "en",
		})
	}
	return posts
}

var errClassifierDown = errors.New("classifier unavailable")
