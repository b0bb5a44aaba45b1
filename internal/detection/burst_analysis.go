// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package detection

import (
	"strings"
	"time"

	"github.com/tomtom215/campaignwatch/internal/models"
)

// Burst-derived coordination indicators.
const (
	IndicatorSynchronizedTiming    = "synchronized_timing"
	IndicatorRepetitiveHashtags    = "repetitive_hashtags"
	IndicatorHyperactiveAuthors    = "hyperactive_authors"
	IndicatorExtremeBurstIntensity = "extreme_burst_intensity"
)

const topEntries = 10

func normalizeHashtag(h string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(h), "#"))
}

func characterizeBursts(posts []models.Post, bursts []BurstEvent, zscoreCount, peakCount int) BurstAnalysis {
	analysis := BurstAnalysis{
		StateBursts: len(bursts),
		ZScoreCount: zscoreCount,
		PeakCount:   peakCount,
	}
	if len(bursts) == 0 {
		return analysis
	}

	intensities := make([]float64, len(bursts))
	levels := make(map[string]int)
	starts := make([]time.Time, len(bursts))
	for i, b := range bursts {
		intensities[i] = b.Intensity
		levels[IntensityLevel(b.Intensity)]++
		starts[i] = b.StartTime
	}
	_, maxIntensity := minMax(intensities)
	analysis.Intensity = &IntensityDistribution{
		Mean:   mean(intensities),
		Max:    maxIntensity,
		Std:    stdDev(intensities),
		Levels: levels,
	}

	sortTimes(starts)
	analysis.Temporal = &BurstTemporalPatterns{
		TemporalDistribution: temporalDistribution(starts),
		IntervalHours:        intervalStats(gaps(starts, time.Hour)),
	}
	analysis.Content = burstContent(posts, bursts)
	return analysis
}

// burstContent summarises posts whose timestamp falls in any burst window.
func burstContent(posts []models.Post, bursts []BurstEvent) BurstContent {
	content := BurstContent{}
	hashtags := make(map[string]int)
	authors := make(map[string]int)
	platforms := make(map[string]int)
	languages := make(map[string]int)

	for i := range posts {
		p := &posts[i]
		if !p.HasTimestamp() || !inAnyBurst(p.PostedAt.Time, bursts) {
			continue
		}
		content.Posts++
		for _, h := range p.Hashtags {
			if tag := normalizeHashtag(h); tag != "" {
				hashtags[tag]++
				content.HashtagUses++
			}
		}
		authors[orUnknown(p.AuthorRef)]++
		platforms[orUnknown(p.Platform)]++
		languages[orUnknown(p.Language)]++
	}
	if content.Posts == 0 {
		return content
	}

	content.UniqueHashtags = len(hashtags)
	if len(hashtags) > 0 {
		content.TopHashtags = topCounts(hashtags, topEntries)
	}
	content.UniqueAuthors = len(authors)
	content.TopAuthors = topCounts(authors, topEntries)
	content.PostsPerAuthor = float64(content.Posts) / float64(len(authors))
	content.Platforms = platforms
	content.Languages = languages
	return content
}

func inAnyBurst(t time.Time, bursts []BurstEvent) bool {
	for _, b := range bursts {
		if !t.Before(b.StartTime) && t.Before(burstWindowEnd(b)) {
			return true
		}
	}
	return false
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// burstCoordination derives the weighted coordination indicators
// (0.3/0.2/0.3/0.2) from a burst analysis.
func burstCoordination(a *BurstAnalysis) BurstCoordination {
	indicators := []string{}
	score := 0.0

	if a.Temporal != nil && a.Temporal.IntervalHours != nil && a.Temporal.IntervalHours.Std < 1.0 {
		indicators = append(indicators, IndicatorSynchronizedTiming)
		score += 0.3
	}
	if len(a.Content.TopHashtags) > 0 && float64(a.Content.TopHashtags[0].Count) > 0.5*float64(a.Content.Posts) {
		indicators = append(indicators, IndicatorRepetitiveHashtags)
		score += 0.2
	}
	if a.Content.PostsPerAuthor > 5 {
		indicators = append(indicators, IndicatorHyperactiveAuthors)
		score += 0.3
	}
	// Unreachable from dp_state bursts unless MaxIntensity exceeds 4.
	if a.Intensity != nil && a.Intensity.Max > 4.0 {
		indicators = append(indicators, IndicatorExtremeBurstIntensity)
		score += 0.2
	}

	score = clamp01(score)
	return BurstCoordination{
		Suspected:  score > 0.5,
		Score:      score,
		Indicators: indicators,
	}
}
