// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package nlp

import (
	"context"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tomtom215/campaignwatch/internal/detection"
	"github.com/tomtom215/campaignwatch/internal/logging"
)

// Narrative names.
const (
	NarrativeEconomicDoom           = "economic_doom"
	NarrativeTerrorismAccusations   = "terrorism_accusations"
	NarrativeKashmirConflict        = "kashmir_conflict"
	NarrativeInternationalIsolation = "international_isolation"
	NarrativeReligiousDivision      = "religious_division"
	NarrativeAchievementCelebration = "achievement_celebration"
	NarrativeLegitimateCriticism    = "legitimate_criticism"
)

type narrative struct {
	name        string
	description string
	keywords    []string
}

// narratives are tried in order; the first with the largest overlap wins.
var narratives = []narrative{
	{NarrativeEconomicDoom, "Narratives about economic failure and crisis",
		[]string{"economy", "unemployment", "gdp", "recession", "crisis", "collapse", "fail"}},
	{NarrativeTerrorismAccusations, "Accusations of terrorism or violent activities",
		[]string{"terror", "terrorist", "attack", "bomb", "violence", "threat"}},
	{NarrativeKashmirConflict, "Content about Kashmir conflict and human rights",
		[]string{"kashmir", "occupation", "human rights", "violation", "oppression"}},
	{NarrativeInternationalIsolation, "Narratives about international isolation",
		[]string{"isolated", "alone", "enemy", "sanctions", "boycott", "international"}},
	{NarrativeReligiousDivision, "Content promoting religious division",
		[]string{"hindu", "muslim", "religious", "communal", "riot", "violence"}},
	{NarrativeAchievementCelebration, "Positive narratives about achievements",
		[]string{"proud", "achievement", "success", "space", "technology", "growth"}},
	{NarrativeLegitimateCriticism, "Legitimate policy criticism and analysis",
		[]string{"policy", "government", "reform", "improvement", "analysis"}},
}

// NarrativeConfig tunes narrative clustering.
type NarrativeConfig struct {
	MinPosts          int `koanf:"min_posts" json:"min_posts"`
	MinClusterSize    int `koanf:"min_cluster_size" json:"min_cluster_size"`
	MaxKeywords       int `koanf:"max_keywords" json:"max_keywords"`
	MaxRepresentative int `koanf:"max_representative" json:"max_representative"`
}

// DefaultNarrativeConfig returns the default clustering settings.
func DefaultNarrativeConfig() NarrativeConfig {
	return NarrativeConfig{
		MinPosts:          5,
		MinClusterSize:    3,
		MaxKeywords:       10,
		MaxRepresentative: 3,
	}
}

// NarrativeClusterer groups posts into predefined narratives by keyword
// overlap.
type NarrativeClusterer struct {
	config NarrativeConfig
}

// NewNarrativeClusterer creates a clusterer; zero fields take defaults.
func NewNarrativeClusterer(cfg NarrativeConfig) *NarrativeClusterer {
	def := DefaultNarrativeConfig()
	if cfg.MinPosts <= 0 {
		cfg.MinPosts = def.MinPosts
	}
	if cfg.MinClusterSize <= 0 {
		cfg.MinClusterSize = def.MinClusterSize
	}
	if cfg.MaxKeywords <= 0 {
		cfg.MaxKeywords = def.MaxKeywords
	}
	if cfg.MaxRepresentative <= 0 {
		cfg.MaxRepresentative = def.MaxRepresentative
	}
	return &NarrativeClusterer{config: cfg}
}

// Cluster assigns each post with text to a narrative. Posts matching no
// narrative, or landing in a cluster below the minimum size, are noise.
func (c *NarrativeClusterer) Cluster(ctx context.Context, posts []ClassifiedPost) (NarrativeResult, error) {
	res := NarrativeResult{TotalPosts: len(posts), Clusters: map[string]NarrativeCluster{}}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	withText := make([]int, 0, len(posts))
	for i := range posts {
		if strings.TrimSpace(posts[i].Post.Text) != "" {
			withText = append(withText, i)
		}
	}
	if len(withText) < c.config.MinPosts {
		return res, nil
	}
	res.ClusteredPosts = len(withText)

	members := make([][]int, len(narratives))
	for _, i := range withText {
		n := bestNarrative(fold(cleanText(posts[i].Post.Text)))
		if n < 0 {
			res.NoisePosts++
			continue
		}
		members[n] = append(members[n], i)
	}

	for n, idx := range members {
		if len(idx) == 0 {
			continue
		}
		if len(idx) < c.config.MinClusterSize {
			res.NoisePosts += len(idx)
			continue
		}
		res.Clusters[narratives[n].name] = c.buildCluster(narratives[n], posts, idx)
	}
	res.NumClusters = len(res.Clusters)

	logging.Debug().
		Str("component", "narrative").
		Int("posts", res.ClusteredPosts).
		Int("clusters", res.NumClusters).
		Int("noise", res.NoisePosts).
		Msg("Narrative clustering completed")
	return res, nil
}

// bestNarrative returns the index of the narrative with the largest keyword
// overlap, or -1 when nothing matches.
func bestNarrative(folded string) int {
	best, bestOverlap := -1, 0
	for i, n := range narratives {
		overlap := 0
		for _, kw := range n.keywords {
			if hasPhrase(folded, kw, true) {
				overlap++
			}
		}
		if overlap > bestOverlap {
			best, bestOverlap = i, overlap
		}
	}
	return best
}

func (c *NarrativeClusterer) buildCluster(n narrative, posts []ClassifiedPost, idx []int) NarrativeCluster {
	cl := NarrativeCluster{
		Narrative:   n.name,
		Description: n.description,
		Size:        len(idx),
		PostIDs:     make([]string, 0, len(idx)),
		Statistics: ClusterStats{
			LanguageDistribution: map[string]int{},
			PlatformDistribution: map[string]int{},
		},
	}

	var toxicity, stance, engagement float64
	texts := make([]string, 0, len(idx))
	var first, last *ClassifiedPost
	for _, i := range idx {
		p := &posts[i]
		cl.PostIDs = append(cl.PostIDs, p.Post.PostID)
		texts = append(texts, p.Post.Text)
		if len(cl.RepresentativeTexts) < c.config.MaxRepresentative {
			cl.RepresentativeTexts = append(cl.RepresentativeTexts, p.Post.Text)
		}

		toxicity += p.Toxicity.Score
		stance += p.Stance.Polarity()
		engagement += float64(p.Post.Engagement())
		cl.Statistics.LanguageDistribution[orUnknown(p.Post.Language)]++
		cl.Statistics.PlatformDistribution[orUnknown(p.Post.Platform)]++

		if !p.Post.HasTimestamp() {
			continue
		}
		if first == nil || p.Post.PostedAt.Time.Before(first.Post.PostedAt.Time) {
			first = p
		}
		if last == nil || p.Post.PostedAt.Time.After(last.Post.PostedAt.Time) {
			last = p
		}
	}

	size := float64(len(idx))
	cl.Statistics.AvgToxicity = toxicity / size
	cl.Statistics.AvgStance = stance / size
	cl.Statistics.AvgEngagement = engagement / size
	if first != nil {
		span := last.Post.PostedAt.Time.Sub(first.Post.PostedAt.Time)
		cl.Statistics.TimeSpan = &TimeSpan{
			Start:         first.Post.PostedAt.Time,
			End:           last.Post.PostedAt.Time,
			DurationHours: span.Hours(),
		}
	}
	cl.Keywords = topKeywords(texts, c.config.MaxKeywords)
	return cl
}

// topKeywords returns the most frequent non-stop words of three or more
// runes, ties broken lexically.
func topKeywords(texts []string, limit int) []string {
	counts := make(map[string]int)
	for _, t := range texts {
		for _, w := range words(fold(cleanText(t))) {
			if utf8.RuneCountInString(w) < 3 || detection.IsStopWord(w) || isNumeric(w) {
				continue
			}
			counts[w]++
		}
	}
	keys := make([]string, 0, len(counts))
	for w := range counts {
		keys = append(keys, w)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func isNumeric(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
