// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package detection

import (
	"math"
	"time"

	"github.com/tomtom215/campaignwatch/internal/logging"
	"github.com/tomtom215/campaignwatch/internal/models"
)

// Bot network indicators.
const (
	IndicatorCreationClustering = "clustered_account_creation"
	IndicatorSimilarProfiles    = "similar_bot_profiles"
)

// BotNetworkResult is the network-level bot assessment over a set of accounts.
type BotNetworkResult struct {
	Detected           bool        `json:"network_detected"`
	Score              float64     `json:"network_score"`
	PotentialBotsCount int         `json:"potential_bots_count"`
	TotalAnalyzed      int         `json:"total_analyzed"`
	PotentialBots      []string    `json:"potential_bots"`
	CreationSpanDays   *float64    `json:"creation_span_days,omitempty"`
	SimilarPairRatio   float64     `json:"similar_pair_ratio"`
	Indicators         []string    `json:"indicators"`
	Accounts           []BotResult `json:"accounts"`
	DegradedSteps      []string    `json:"degraded_steps,omitempty"`
}

func emptyBotNetworkResult() BotNetworkResult {
	return BotNetworkResult{
		PotentialBots: []string{},
		Indicators:    []string{},
		Accounts:      []BotResult{},
	}
}

// AnalyzeNetwork scores every author and looks for a network among the
// potential bots. When authors is nil they are derived from posts.
// Accounts always holds one result per author, in author order.
func (d *BotDetector) AnalyzeNetwork(authors []models.Author, posts []models.Post) BotNetworkResult {
	if authors == nil {
		authors = models.DeriveAuthors(posts)
	}
	res := emptyBotNetworkResult()
	res.TotalAnalyzed = len(authors)
	if len(authors) == 0 {
		return res
	}

	steps := newStepLog("bot")
	ref := models.LatestTimestamp(posts)
	idx := newAuthorIndex(authors, posts)

	res.Accounts = runStep(steps, StepBotAccounts, []BotResult{}, func() []BotResult {
		out := make([]BotResult, len(authors))
		for i := range authors {
			out[i] = d.score(&authors[i], idx.posts[i], ref)
		}
		return out
	})

	var bots []*models.Author
	for i := range res.Accounts {
		if res.Accounts[i].Score > d.config.SuspiciousThreshold {
			bots = append(bots, &authors[i])
			res.PotentialBots = append(res.PotentialBots, authors[i].UserID)
		}
	}
	res.PotentialBotsCount = len(bots)

	if len(authors) < d.config.MinNetworkAccounts || len(bots) < d.config.MinNetworkAccounts {
		res.DegradedSteps = steps.degraded()
		return res
	}

	score := 0.0
	res.CreationSpanDays = runStep(steps, StepCreationTimes, (*float64)(nil), func() *float64 {
		return creationSpanDays(bots, d.config.MinNetworkAccounts)
	})
	if res.CreationSpanDays != nil && *res.CreationSpanDays < d.config.CreationWindowDays {
		score += 0.4
		res.Indicators = append(res.Indicators, IndicatorCreationClustering)
	}

	res.SimilarPairRatio = runStep(steps, StepBotSimilarity, 0.0, func() float64 {
		return similarPairRatio(bots, ref, d.config.PairSimilarity)
	})
	if res.SimilarPairRatio > 0 {
		score += res.SimilarPairRatio * 0.6
		res.Indicators = append(res.Indicators, IndicatorSimilarProfiles)
	}

	res.Score = math.Min(1, score)
	res.Detected = res.Score > d.config.NetworkThreshold
	res.DegradedSteps = steps.degraded()

	logging.Debug().
		Int("accounts", len(authors)).
		Int("potential_bots", len(bots)).
		Float64("score", res.Score).
		Bool("detected", res.Detected).
		Msg("bot network analysis complete")
	return res
}

// creationSpanDays returns the spread of known creation times, or nil when
// fewer than minValid accounts carry one.
func creationSpanDays(bots []*models.Author, minValid int) *float64 {
	times := make([]time.Time, 0, len(bots))
	for _, b := range bots {
		if b.AccountCreatedAt.Valid {
			times = append(times, b.AccountCreatedAt.Time)
		}
	}
	if len(times) < minValid {
		return nil
	}
	sortTimes(times)
	span := times[len(times)-1].Sub(times[0]).Hours() / 24
	return &span
}

func similarPairRatio(bots []*models.Author, ref time.Time, threshold float64) float64 {
	pairs := pairCount(len(bots))
	if pairs == 0 {
		return 0
	}
	similar := 0
	for i := 0; i < len(bots); i++ {
		for j := i + 1; j < len(bots); j++ {
			if profileSimilarity(bots[i], bots[j], ref) > threshold {
				similar++
			}
		}
	}
	return float64(similar) / pairs
}

// profileSimilarity averages 1-|a-b|/max(a,b,1) over followers, following
// and account age.
func profileSimilarity(a, b *models.Author, ref time.Time) float64 {
	closeness := func(x, y float64) float64 {
		return 1 - math.Abs(x-y)/math.Max(math.Max(x, y), 1)
	}
	return (closeness(float64(a.FollowersCount), float64(b.FollowersCount)) +
		closeness(float64(a.FollowingCount), float64(b.FollowingCount)) +
		closeness(a.AccountAgeDays(ref), b.AccountAgeDays(ref))) / 3
}
