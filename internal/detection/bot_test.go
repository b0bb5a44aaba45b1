// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package detection

import (
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/campaignwatch/internal/models"
)

func botAuthor(id, username string) models.Author {
	return models.Author{
		Platform:       "twitter",
		UserID:         id,
		Username:       username,
		FollowersCount: 50,
		FollowingCount: 2000,
	}
}

// burstOfCopies returns 10 identical posts 5 seconds apart inside one minute.
func burstOfCopies(author string, start time.Time) []models.Post {
	posts := make([]models.Post, 0, 10)
	for i := 0; i < 10; i++ {
		posts = append(posts, testPost(
			fmt.Sprintf("%s-%d", author, i),
			author,
			"Check out this amazing deal right now",
			start.Add(time.Duration(i*5)*time.Second),
		))
	}
	return posts
}

func TestCalculateBotLikelihood_BotScenario(t *testing.T) {
	d := NewBotDetector(DefaultBotConfig())
	author := botAuthor("u1", "user123abc")
	posts := burstOfCopies("u1", testEpoch.Add(10*time.Hour))

	res := d.CalculateBotLikelihood(&author, posts)

	if res.Classification != ClassLikelyBot {
		t.Errorf("Classification = %s, want %s (score %v)", res.Classification, ClassLikelyBot, res.Score)
	}
	if res.RiskLevel != RiskHigh {
		t.Errorf("RiskLevel = %s, want %s", res.RiskLevel, RiskHigh)
	}
	if !approxEqual(res.Score, 0.715) {
		t.Errorf("Score = %v, want 0.715", res.Score)
	}

	want := BotComponentScores{
		UsernamePattern:     0.9,
		ProfileCompleteness: 1.0,
		PostingFrequency:    1.0,
		TemporalPatterns:    0.9,
		ContentDiversity:    0.7,
		EngagementPatterns:  0.4,
		NetworkBehavior:     0,
	}
	got := res.ComponentScores
	checks := []struct {
		name      string
		got, want float64
	}{
		{"username_pattern", got.UsernamePattern, want.UsernamePattern},
		{"profile_completeness", got.ProfileCompleteness, want.ProfileCompleteness},
		{"posting_frequency", got.PostingFrequency, want.PostingFrequency},
		{"temporal_patterns", got.TemporalPatterns, want.TemporalPatterns},
		{"content_diversity", got.ContentDiversity, want.ContentDiversity},
		{"engagement_patterns", got.EngagementPatterns, want.EngagementPatterns},
		{"network_behavior", got.NetworkBehavior, want.NetworkBehavior},
	}
	for _, c := range checks {
		if !approxEqual(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	found := false
	for _, ind := range res.Indicators {
		if ind == IndicatorSuspiciousUsername {
			found = true
		}
	}
	if !found {
		t.Errorf("Indicators = %v, missing %s", res.Indicators, IndicatorSuspiciousUsername)
	}
	if res.Features.PostsInDataset != 10 {
		t.Errorf("PostsInDataset = %d, want 10", res.Features.PostsInDataset)
	}
	if !approxEqual(res.Features.FollowerFollowingRatio, 0.025) {
		t.Errorf("FollowerFollowingRatio = %v, want 0.025", res.Features.FollowerFollowingRatio)
	}
}

func TestCalculateBotLikelihood_Human(t *testing.T) {
	author := models.Author{
		Platform:        "twitter",
		UserID:          "42",
		Username:        "maria_sanchez",
		FollowersCount:  800,
		FollowingCount:  400,
		Bio:             "Journalist covering South Asian politics and economics for two decades.",
		Location:        "Mumbai",
		URL:             "https://example.org/maria",
		ProfileImageURL: "https://example.org/maria.png",
	}
	offsets := []time.Duration{
		9 * time.Hour,
		26*time.Hour + 13*time.Minute,
		50*time.Hour + 47*time.Minute,
		53*time.Hour + 2*time.Minute,
		97*time.Hour + 31*time.Minute,
		130*time.Hour + 8*time.Minute,
	}
	texts := []string{
		"Budget session starts today with heated debate",
		"Interviewed farmers about the new irrigation scheme",
		"Rupee closes slightly stronger against the dollar",
		"Long read on coastal erosion is finally out",
		"Election commission announces revised schedule",
		"Weekend reading list for policy nerds",
	}
	posts := make([]models.Post, len(offsets))
	for i := range offsets {
		posts[i] = testPost(fmt.Sprintf("h%d", i), "42", texts[i], testEpoch.Add(offsets[i]))
		posts[i].Likes, posts[i].Shares, posts[i].Replies = 5, 3, 2
	}

	res := NewBotDetector(DefaultBotConfig()).CalculateBotLikelihood(&author, posts)

	if res.Classification != ClassLikelyHuman {
		t.Errorf("Classification = %s, want %s (score %v, components %+v)",
			res.Classification, ClassLikelyHuman, res.Score, res.ComponentScores)
	}
	if res.RiskLevel != RiskLow {
		t.Errorf("RiskLevel = %s, want %s", res.RiskLevel, RiskLow)
	}
	if len(res.Indicators) != 0 {
		t.Errorf("Indicators = %v, want none", res.Indicators)
	}
}

func TestCalculateBotLikelihood_MissingAuthor(t *testing.T) {
	d := NewBotDetector(BotConfig{})
	for name, author := range map[string]*models.Author{
		"nil":   nil,
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			res := d.CalculateBotLikelihood(author, nil)
			if res.Classification != ClassUnknown || res.RiskLevel != RiskLow || res.Score != 0 {
				t.Errorf("got %+v, want unknown/low", res)
			}
		})
	}
}

func TestUsernamePatternScore(t *testing.T) {
	tests := []struct {
		name string
		want float64
	}{
		{"", 0.5},
		{"user123abc", 0.9},
		{"12345678", 0.3},
		{"aaaaaa", 0.2},
		{"officialnews", 0.2},
		{"maria_sanchez", 0},
	}
	for _, tt := range tests {
		if got := usernamePatternScore(tt.name); !approxEqual(got, tt.want) {
			t.Errorf("usernamePatternScore(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPostingFrequencyScore(t *testing.T) {
	spread := func(n int, span time.Duration) []models.Post {
		posts := make([]models.Post, n)
		step := span / time.Duration(n-1)
		for i := range posts {
			posts[i] = testPost(fmt.Sprint(i), "u", "x", testEpoch.Add(time.Duration(i)*step))
		}
		return posts
	}
	day := 24 * time.Hour

	tests := []struct {
		name  string
		posts []models.Post
		want  float64
	}{
		{"single post", spread(2, day)[:1], 0},
		{"same instant", []models.Post{testPost("a", "u", "x", testEpoch), testPost("b", "u", "x", testEpoch)}, 1},
		{"over 50 a day", spread(101, 2*day), 1},
		{"over 20 a day", spread(51, 2*day), 0.8},
		{"over 10 a day", spread(31, 2*day), 0.6},
		{"normal", spread(10, 2*day), 0},
		{"dormant", spread(2, 30*day), 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := postingFrequencyScore(tt.posts); got != tt.want {
				t.Errorf("postingFrequencyScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProfileCompletenessScore(t *testing.T) {
	full := &models.Author{
		Bio:             "Writer, runner and amateur photographer based on the western coast.",
		Location:        "Goa",
		URL:             "https://example.org",
		ProfileImageURL: "https://example.org/a.png",
	}
	if got := profileCompletenessScore(full); !approxEqual(got, 0) {
		t.Errorf("full profile = %v, want 0", got)
	}
	if got := profileCompletenessScore(&models.Author{}); got != 1 {
		t.Errorf("empty profile = %v, want 1", got)
	}
	promo := &models.Author{Bio: "click the link"}
	if got := profileCompletenessScore(promo); !approxEqual(got, 1-1/4.8) {
		t.Errorf("promotional bio = %v, want %v", got, 1-1/4.8)
	}
}

func TestNetworkBehaviorScore(t *testing.T) {
	tests := []struct {
		name   string
		author models.Author
		want   float64
	}{
		{"balanced", models.Author{FollowersCount: 100, FollowingCount: 100}, 0},
		{"celebrity ratio", models.Author{FollowersCount: 50000, FollowingCount: 10}, 0.3},
		{"follow spam", models.Author{FollowersCount: 10, FollowingCount: 3000}, 0.8},
		{"no following", models.Author{FollowersCount: 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := networkBehaviorScore(&tt.author, nil); !approxEqual(got, tt.want) {
				t.Errorf("networkBehaviorScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func botRing(n int) ([]models.Author, []models.Post) {
	names := []string{"user123abc", "user456def", "user789ghi", "user321jkl", "user654mno"}
	ref := testEpoch.Add(10 * time.Hour)
	authors := make([]models.Author, 0, n)
	posts := make([]models.Post, 0, n*10)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("bot%d", i)
		a := botAuthor(id, names[i%len(names)])
		a.AccountCreatedAt = models.NewTimestamp(ref.Add(-time.Duration(100+3*i) * 24 * time.Hour))
		authors = append(authors, a)
		posts = append(posts, burstOfCopies(id, ref.Add(time.Duration(i)*time.Minute))...)
	}
	return authors, posts
}

func TestAnalyzeNetwork_DetectsRing(t *testing.T) {
	authors, posts := botRing(4)
	res := NewBotDetector(DefaultBotConfig()).AnalyzeNetwork(authors, posts)

	if !res.Detected {
		t.Errorf("Detected = false, want true (score %v)", res.Score)
	}
	if res.Score != 1 {
		t.Errorf("Score = %v, want 1", res.Score)
	}
	if res.PotentialBotsCount != 4 || res.TotalAnalyzed != 4 {
		t.Errorf("potential/total = %d/%d, want 4/4", res.PotentialBotsCount, res.TotalAnalyzed)
	}
	if len(res.Accounts) != 4 {
		t.Fatalf("Accounts = %d, want 4", len(res.Accounts))
	}
	for i, acc := range res.Accounts {
		if acc.AuthorID != authors[i].UserID {
			t.Errorf("Accounts[%d].AuthorID = %s, want %s", i, acc.AuthorID, authors[i].UserID)
		}
		if acc.Features.PostsInDataset != 10 {
			t.Errorf("Accounts[%d] saw %d posts, want 10", i, acc.Features.PostsInDataset)
		}
	}
	if res.CreationSpanDays == nil || *res.CreationSpanDays != 9 {
		t.Errorf("CreationSpanDays = %v, want 9", res.CreationSpanDays)
	}
	if res.SimilarPairRatio != 1 {
		t.Errorf("SimilarPairRatio = %v, want 1", res.SimilarPairRatio)
	}
}

func TestAnalyzeNetwork_TooFewAccounts(t *testing.T) {
	authors, posts := botRing(2)
	res := NewBotDetector(DefaultBotConfig()).AnalyzeNetwork(authors, posts)

	if res.Detected || res.Score != 0 {
		t.Errorf("got detected=%v score=%v, want no network", res.Detected, res.Score)
	}
	if len(res.Accounts) != 2 {
		t.Errorf("Accounts = %d, want 2", len(res.Accounts))
	}
	if res.PotentialBotsCount != 2 {
		t.Errorf("PotentialBotsCount = %d, want 2", res.PotentialBotsCount)
	}
}

func TestAnalyzeNetwork_DerivesAuthors(t *testing.T) {
	posts := copyPastePosts()
	res := NewBotDetector(DefaultBotConfig()).AnalyzeNetwork(nil, posts)

	if res.TotalAnalyzed != 3 || len(res.Accounts) != 3 {
		t.Errorf("analyzed %d accounts (%d results), want 3", res.TotalAnalyzed, len(res.Accounts))
	}
	for _, acc := range res.Accounts {
		if !inUnitRange(acc.Score) {
			t.Errorf("score %v out of range", acc.Score)
		}
	}
}
