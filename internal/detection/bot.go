// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package detection

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/tomtom215/campaignwatch/internal/models"
)

// BotWeights weights the seven per-account bot signals.
type BotWeights struct {
	UsernamePattern     float64 `koanf:"username_pattern" json:"username_pattern"`
	ProfileCompleteness float64 `koanf:"profile_completeness" json:"profile_completeness"`
	PostingFrequency    float64 `koanf:"posting_frequency" json:"posting_frequency"`
	TemporalPatterns    float64 `koanf:"temporal_patterns" json:"temporal_patterns"`
	ContentDiversity    float64 `koanf:"content_diversity" json:"content_diversity"`
	EngagementPatterns  float64 `koanf:"engagement_patterns" json:"engagement_patterns"`
	NetworkBehavior     float64 `koanf:"network_behavior" json:"network_behavior"`
}

// DefaultBotWeights returns 0.15/0.10/0.20/0.15/0.15/0.10/0.15.
func DefaultBotWeights() BotWeights {
	return BotWeights{
		UsernamePattern:     0.15,
		ProfileCompleteness: 0.10,
		PostingFrequency:    0.20,
		TemporalPatterns:    0.15,
		ContentDiversity:    0.15,
		EngagementPatterns:  0.10,
		NetworkBehavior:     0.15,
	}
}

// Sum returns the total weight.
func (w BotWeights) Sum() float64 {
	return w.UsernamePattern + w.ProfileCompleteness + w.PostingFrequency + w.TemporalPatterns +
		w.ContentDiversity + w.EngagementPatterns + w.NetworkBehavior
}

// BotConfig configures the bot detector.
type BotConfig struct {
	BotThreshold        float64    `koanf:"bot_threshold" json:"bot_threshold"`
	SuspiciousThreshold float64    `koanf:"suspicious_threshold" json:"suspicious_threshold"`
	MinNetworkAccounts  int        `koanf:"min_network_accounts" json:"min_network_accounts"`
	NetworkThreshold    float64    `koanf:"network_threshold" json:"network_threshold"`
	CreationWindowDays  float64    `koanf:"creation_window_days" json:"creation_window_days"`
	PairSimilarity      float64    `koanf:"pair_similarity" json:"pair_similarity"`
	Weights             BotWeights `koanf:"weights" json:"weights"`
}

// DefaultBotConfig returns the standard bot settings.
func DefaultBotConfig() BotConfig {
	return BotConfig{
		BotThreshold:        0.7,
		SuspiciousThreshold: 0.5,
		MinNetworkAccounts:  3,
		NetworkThreshold:    0.6,
		CreationWindowDays:  30,
		PairSimilarity:      0.7,
		Weights:             DefaultBotWeights(),
	}
}

// BotComponentScores holds the seven signal scores, each in [0,1].
type BotComponentScores struct {
	UsernamePattern     float64 `json:"username_pattern"`
	ProfileCompleteness float64 `json:"profile_completeness"`
	PostingFrequency    float64 `json:"posting_frequency"`
	TemporalPatterns    float64 `json:"temporal_patterns"`
	ContentDiversity    float64 `json:"content_diversity"`
	EngagementPatterns  float64 `json:"engagement_patterns"`
	NetworkBehavior     float64 `json:"network_behavior"`
}

// BotFeatures are the raw account features behind a bot score.
type BotFeatures struct {
	AccountAgeDays         float64 `json:"account_age_days"`
	Followers              int     `json:"followers_count"`
	Following              int     `json:"following_count"`
	PostsCount             int     `json:"posts_count"`
	Verified               bool    `json:"verified"`
	HasProfileImage        bool    `json:"has_profile_image"`
	HasBio                 bool    `json:"has_bio"`
	BioLength              int     `json:"bio_length"`
	UsernameLength         int     `json:"username_length"`
	PostsInDataset         int     `json:"posts_in_dataset"`
	FollowerFollowingRatio float64 `json:"follower_following_ratio"`
}

// Bot indicators.
const (
	IndicatorSuspiciousUsername  = "suspicious_username_pattern"
	IndicatorIncompleteProfile   = "incomplete_profile"
	IndicatorUnusualFrequency    = "unusual_posting_frequency"
	IndicatorAutomatedTiming     = "automated_timing_patterns"
	IndicatorLowContentDiversity = "low_content_diversity"
	IndicatorUnusualEngagement   = "unusual_engagement_patterns"
	IndicatorSuspiciousNetwork   = "suspicious_network_behavior"
)

// BotResult is the bot assessment of one account.
type BotResult struct {
	AuthorID        string             `json:"author_id,omitempty"`
	Score           float64            `json:"bot_likelihood_score"`
	Classification  BotClassification  `json:"classification"`
	RiskLevel       RiskLevel          `json:"risk_level"`
	ComponentScores BotComponentScores `json:"component_scores"`
	Features        BotFeatures        `json:"features"`
	Indicators      []string           `json:"indicators"`
}

func unknownBotResult() BotResult {
	return BotResult{
		Classification: ClassUnknown,
		RiskLevel:      RiskLow,
		Indicators:     []string{},
	}
}

var (
	genericUserPattern = regexp.MustCompile(`user\d+[a-z]*$`)
	mixedTokenPattern  = regexp.MustCompile(`[a-z]{2}\d+[a-z]{2}`)
	promotionalPattern = regexp.MustCompile(`follow|subscribe|link|click`)
	placeholderWords   = []string{"account", "user", "person", "real", "official"}
)

// BotDetector scores accounts for automation likelihood.
type BotDetector struct {
	config BotConfig
}

// NewBotDetector creates a bot detector. Zero fields fall back to defaults.
func NewBotDetector(cfg BotConfig) *BotDetector {
	def := DefaultBotConfig()
	if cfg.BotThreshold <= 0 {
		cfg.BotThreshold = def.BotThreshold
	}
	if cfg.SuspiciousThreshold <= 0 {
		cfg.SuspiciousThreshold = def.SuspiciousThreshold
	}
	if cfg.MinNetworkAccounts <= 0 {
		cfg.MinNetworkAccounts = def.MinNetworkAccounts
	}
	if cfg.NetworkThreshold <= 0 {
		cfg.NetworkThreshold = def.NetworkThreshold
	}
	if cfg.CreationWindowDays <= 0 {
		cfg.CreationWindowDays = def.CreationWindowDays
	}
	if cfg.PairSimilarity <= 0 {
		cfg.PairSimilarity = def.PairSimilarity
	}
	if cfg.Weights.Sum() <= 0 {
		cfg.Weights = def.Weights
	}
	return &BotDetector{config: cfg}
}

// Config returns the effective configuration.
func (d *BotDetector) Config() BotConfig {
	return d.config
}

// CalculateBotLikelihood scores author using posts (the author's own posts).
// A nil author or one without a user ID yields an unknown/low result.
// Account age is measured against the newest post.
func (d *BotDetector) CalculateBotLikelihood(author *models.Author, posts []models.Post) BotResult {
	return d.score(author, posts, models.LatestTimestamp(posts))
}

func (d *BotDetector) score(author *models.Author, posts []models.Post, ref time.Time) BotResult {
	if author == nil || (author.UserID == "" && author.Username == "") {
		return unknownBotResult()
	}

	scores := BotComponentScores{
		UsernamePattern:     usernamePatternScore(author.Handle()),
		ProfileCompleteness: profileCompletenessScore(author),
		PostingFrequency:    postingFrequencyScore(posts),
		TemporalPatterns:    temporalPatternScore(posts),
		ContentDiversity:    contentDiversityScore(posts),
		EngagementPatterns:  engagementPatternScore(posts),
		NetworkBehavior:     networkBehaviorScore(author, posts),
	}

	w := d.config.Weights
	total := clamp01(scores.UsernamePattern*w.UsernamePattern +
		scores.ProfileCompleteness*w.ProfileCompleteness +
		scores.PostingFrequency*w.PostingFrequency +
		scores.TemporalPatterns*w.TemporalPatterns +
		scores.ContentDiversity*w.ContentDiversity +
		scores.EngagementPatterns*w.EngagementPatterns +
		scores.NetworkBehavior*w.NetworkBehavior)

	res := BotResult{
		AuthorID:        author.UserID,
		Score:           total,
		ComponentScores: scores,
		Features:        extractBotFeatures(author, posts, ref),
		Indicators:      botIndicators(scores),
	}
	switch {
	case total >= d.config.BotThreshold:
		res.Classification, res.RiskLevel = ClassLikelyBot, RiskHigh
	case total >= d.config.SuspiciousThreshold:
		res.Classification, res.RiskLevel = ClassSuspicious, RiskMedium
	default:
		res.Classification, res.RiskLevel = ClassLikelyHuman, RiskLow
	}
	return res
}

func extractBotFeatures(a *models.Author, posts []models.Post, ref time.Time) BotFeatures {
	ratio := 0.0
	if a.FollowingCount > 0 {
		ratio = float64(a.FollowersCount) / float64(a.FollowingCount)
	}
	return BotFeatures{
		AccountAgeDays:         a.AccountAgeDays(ref),
		Followers:              a.FollowersCount,
		Following:              a.FollowingCount,
		PostsCount:             a.PostsCount,
		Verified:               a.Verified,
		HasProfileImage:        a.ProfileImageURL != "",
		HasBio:                 a.Bio != "",
		BioLength:              len([]rune(a.Bio)),
		UsernameLength:         len([]rune(a.Handle())),
		PostsInDataset:         len(posts),
		FollowerFollowingRatio: ratio,
	}
}

func usernamePatternScore(username string) float64 {
	name := strings.ToLower(username)
	runes := []rune(name)
	if len(runes) == 0 {
		return 0.5
	}

	score := 0.0
	if genericUserPattern.MatchString(name) {
		score += 0.4
	}
	digits := 0
	unique := make(map[rune]struct{}, len(runes))
	for _, r := range runes {
		if unicode.IsDigit(r) {
			digits++
		}
		unique[r] = struct{}{}
	}
	if float64(digits)/float64(len(runes)) > 0.5 {
		score += 0.3
	}
	if mixedTokenPattern.MatchString(name) {
		score += 0.3
	}
	if float64(len(unique)) < float64(len(runes))*0.6 {
		score += 0.2
	}
	for _, w := range placeholderWords {
		if strings.Contains(name, w) {
			score += 0.2
			break
		}
	}
	return math.Min(1, score)
}

// profileCompletenessScore is 1 - completeness/4.8, where completeness counts
// populated bio/location/url/avatar plus up to 0.8 for bio quality.
func profileCompletenessScore(a *models.Author) float64 {
	completeness := 0.0
	for _, field := range []string{a.Bio, a.Location, a.URL, a.ProfileImageURL} {
		if field != "" {
			completeness++
		}
	}
	if a.Bio != "" {
		if len([]rune(a.Bio)) > 50 {
			completeness += 0.5
		}
		if !promotionalPattern.MatchString(strings.ToLower(a.Bio)) {
			completeness += 0.3
		}
	}
	return clamp01(1 - completeness/4.8)
}

func sortedTimestamps(posts []models.Post) []time.Time {
	times := make([]time.Time, 0, len(posts))
	for i := range posts {
		if posts[i].HasTimestamp() {
			times = append(times, posts[i].PostedAt.Time)
		}
	}
	sortTimes(times)
	return times
}

func postingFrequencyScore(posts []models.Post) float64 {
	times := sortedTimestamps(posts)
	if len(times) < 2 {
		return 0
	}
	days := times[len(times)-1].Sub(times[0]).Hours() / 24
	if days == 0 {
		return 1
	}
	perDay := float64(len(times)) / days
	switch {
	case perDay > 50:
		return 1
	case perDay > 20:
		return 0.8
	case perDay > 10:
		return 0.6
	case perDay < 0.1:
		return 0.3
	default:
		return 0
	}
}

func temporalPatternScore(posts []models.Post) float64 {
	if len(posts) < 5 {
		return 0
	}
	times := sortedTimestamps(posts)
	if len(times) < 5 {
		return 0
	}

	score := 0.0
	intervals := gaps(times, time.Second)
	if m := mean(intervals); m > 0 && stdDev(intervals)/m < 0.1 {
		score += 0.5
	}

	minutes := make(map[int]struct{})
	night := 0
	for _, t := range times {
		t = t.UTC()
		minutes[t.Minute()] = struct{}{}
		if t.Hour() <= 6 {
			night++
		}
	}
	if len(minutes) == 1 {
		score += 0.4
	}
	if night == 0 && len(times) > 10 {
		score += 0.3
	}
	return math.Min(1, score)
}

func contentDiversityScore(posts []models.Post) float64 {
	texts := make([]string, 0, len(posts))
	for i := range posts {
		if strings.TrimSpace(posts[i].Text) != "" {
			texts = append(texts, posts[i].Text)
		}
	}
	if len(texts) < 2 {
		return 0
	}

	score := 0.0
	unique := make(map[string]struct{}, len(texts))
	for _, t := range texts {
		unique[t] = struct{}{}
	}
	if float64(len(unique))/float64(len(texts)) < 0.5 {
		score += 0.4
	}

	words := strings.Fields(strings.ToLower(strings.Join(texts, " ")))
	if len(words) > 0 {
		uniqueWords := make(map[string]struct{}, len(words))
		for _, w := range words {
			uniqueWords[w] = struct{}{}
		}
		if float64(len(uniqueWords))/float64(len(words)) < 0.3 {
			score += 0.3
		}
	}

	tags := 0
	for i := range posts {
		tags += len(posts[i].Hashtags)
	}
	if float64(tags)/float64(len(posts)) > 5 {
		score += 0.3
	}
	return math.Min(1, score)
}

// engagementPatternScore averages total engagement over every post and the
// like share over posts that received any engagement.
func engagementPatternScore(posts []models.Post) float64 {
	if len(posts) == 0 {
		return 0
	}
	total := 0
	likeRatios := make([]float64, 0, len(posts))
	for i := range posts {
		e := posts[i].Engagement()
		total += e
		if e > 0 {
			likeRatios = append(likeRatios, float64(posts[i].Likes)/float64(e))
		}
	}

	score := 0.0
	if float64(total)/float64(len(posts)) < 1 {
		score += 0.4
	}
	if len(likeRatios) > 0 && mean(likeRatios) > 0.9 {
		score += 0.3
	}
	return math.Min(1, score)
}

func networkBehaviorScore(a *models.Author, posts []models.Post) float64 {
	score := 0.0
	if a.FollowingCount > 0 {
		ratio := float64(a.FollowersCount) / float64(a.FollowingCount)
		switch {
		case ratio > 100:
			score += 0.3
		case ratio < 0.01:
			score += 0.4
		}
	}
	if a.FollowingCount > 2000 && a.FollowersCount < 100 {
		score += 0.4
	}
	if len(posts) > 0 {
		mentions := 0
		for i := range posts {
			mentions += len(posts[i].Mentions)
		}
		if float64(mentions)/float64(len(posts)) > 3 {
			score += 0.3
		}
	}
	return math.Min(1, score)
}

func botIndicators(s BotComponentScores) []string {
	indicators := []string{}
	if s.UsernamePattern > 0.5 {
		indicators = append(indicators, IndicatorSuspiciousUsername)
	}
	if s.ProfileCompleteness > 0.7 {
		indicators = append(indicators, IndicatorIncompleteProfile)
	}
	if s.PostingFrequency > 0.6 {
		indicators = append(indicators, IndicatorUnusualFrequency)
	}
	if s.TemporalPatterns > 0.5 {
		indicators = append(indicators, IndicatorAutomatedTiming)
	}
	if s.ContentDiversity > 0.5 {
		indicators = append(indicators, IndicatorLowContentDiversity)
	}
	if s.EngagementPatterns > 0.5 {
		indicators = append(indicators, IndicatorUnusualEngagement)
	}
	if s.NetworkBehavior > 0.5 {
		indicators = append(indicators, IndicatorSuspiciousNetwork)
	}
	return indicators
}
