// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package detection

import (
	"fmt"
	"time"

	"github.com/tomtom215/campaignwatch/internal/logging"
	"github.com/tomtom215/campaignwatch/internal/models"
)

// CoordinationWeights weights the five coordination signals.
type CoordinationWeights struct {
	TextSimilarity     float64 `koanf:"text_similarity" json:"text_similarity"`
	TimingCoordination float64 `koanf:"timing_coordination" json:"timing_coordination"`
	BehavioralPatterns float64 `koanf:"behavioral_patterns" json:"behavioral_patterns"`
	NetworkStructure   float64 `koanf:"network_structure" json:"network_structure"`
	Amplification      float64 `koanf:"amplification_patterns" json:"amplification_patterns"`
}

// DefaultCoordinationWeights returns 0.30/0.25/0.20/0.15/0.10.
func DefaultCoordinationWeights() CoordinationWeights {
	return CoordinationWeights{
		TextSimilarity:     0.30,
		TimingCoordination: 0.25,
		BehavioralPatterns: 0.20,
		NetworkStructure:   0.15,
		Amplification:      0.10,
	}
}

// Sum returns the total weight.
func (w CoordinationWeights) Sum() float64 {
	return w.TextSimilarity + w.TimingCoordination + w.BehavioralPatterns + w.NetworkStructure + w.Amplification
}

// CoordinationConfig configures the coordination detector.
type CoordinationConfig struct {
	TextSimilarityThreshold       float64             `koanf:"text_similarity_threshold" json:"text_similarity_threshold"`
	TimingThresholdMinutes        int                 `koanf:"timing_threshold_minutes" json:"timing_threshold_minutes"`
	BehavioralSimilarityThreshold float64             `koanf:"behavioral_similarity_threshold" json:"behavioral_similarity_threshold"`
	MinAccounts                   int                 `koanf:"min_accounts" json:"min_accounts"`
	MinCoordinationScore          float64             `koanf:"min_coordination_score" json:"min_coordination_score"`
	MaxNGram                      int                 `koanf:"max_ngram" json:"max_ngram"`
	MaxFeatures                   int                 `koanf:"max_features" json:"max_features"`
	AmplificationMinPosts         int                 `koanf:"amplification_min_posts" json:"amplification_min_posts"`
	AmplificationWindowHours      float64             `koanf:"amplification_window_hours" json:"amplification_window_hours"`
	Weights                       CoordinationWeights `koanf:"weights" json:"weights"`
}

// DefaultCoordinationConfig returns the standard coordination settings.
func DefaultCoordinationConfig() CoordinationConfig {
	return CoordinationConfig{
		TextSimilarityThreshold:       0.8,
		TimingThresholdMinutes:        30,
		BehavioralSimilarityThreshold: 0.7,
		MinAccounts:                   3,
		MinCoordinationScore:          0.6,
		MaxNGram:                      3,
		MaxFeatures:                   1000,
		AmplificationMinPosts:         5,
		AmplificationWindowHours:      2,
		Weights:                       DefaultCoordinationWeights(),
	}
}

// SimilarPair is a pair of posts whose text similarity exceeded the threshold.
type SimilarPair struct {
	PostA      string  `json:"post_a"`
	PostB      string  `json:"post_b"`
	AuthorA    string  `json:"author_a"`
	AuthorB    string  `json:"author_b"`
	Similarity float64 `json:"similarity"`
}

// ContentGroup is a transitive group of near-duplicate posts.
type ContentGroup struct {
	PostIDs       []string `json:"post_ids"`
	Authors       []string `json:"authors"`
	Size          int      `json:"size"`
	AvgSimilarity float64  `json:"avg_similarity"`
}

// TextCoordination is the text-similarity signal.
type TextCoordination struct {
	Groups   []ContentGroup `json:"similar_content_groups"`
	Pairs    []SimilarPair  `json:"copy_paste_evidence"`
	Strength float64        `json:"coordination_strength"`
}

// TimingCluster is a run of posts with consecutive gaps under the threshold.
type TimingCluster struct {
	PostIDs         []string  `json:"post_ids"`
	Authors         []string  `json:"authors"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes float64   `json:"duration_minutes"`
	Size            int       `json:"size"`
	UniqueAuthors   int       `json:"unique_authors"`
}

// TimingPatterns describes posting times across the whole input.
type TimingPatterns struct {
	TemporalDistribution
	AvgIntervalMinutes float64 `json:"avg_interval_minutes"`
	StdIntervalMinutes float64 `json:"std_interval_minutes"`
	MinIntervalMinutes float64 `json:"min_interval_minutes"`
}

// TimingCoordination is the timing-synchrony signal.
type TimingCoordination struct {
	Clusters []TimingCluster `json:"timing_clusters"`
	Strength float64         `json:"coordination_strength"`
	Patterns *TimingPatterns `json:"temporal_patterns,omitempty"`
}

// ProfilePair is a pair of authors with similar behavior.
type ProfilePair struct {
	AuthorA    string  `json:"author_a"`
	AuthorB    string  `json:"author_b"`
	Similarity float64 `json:"similarity"`
}

// BehavioralCoordination is the behavioral-similarity signal.
type BehavioralCoordination struct {
	SimilarProfiles []ProfilePair `json:"similar_profiles"`
	Strength        float64       `json:"coordination_strength"`
}

// Network structure patterns.
const (
	PatternHighClusteringLowDensity = "high_clustering_low_density"
	PatternStarNetwork              = "star_network_structure"
)

// NetworkAnalysis describes the mention graph between authors.
type NetworkAnalysis struct {
	NodeCount           int         `json:"node_count"`
	EdgeCount           int         `json:"edge_count"`
	Density             float64     `json:"density"`
	Clustering          float64     `json:"clustering_coefficient"`
	ConnectedComponents int         `json:"connected_components"`
	DegreeDistribution  map[int]int `json:"degree_distribution,omitempty"`
	MaxDegree           int         `json:"max_degree"`
	AvgDegree           float64     `json:"avg_degree"`
	Hubs                []string    `json:"hubs,omitempty"`
	SuspiciousPatterns  []string    `json:"suspicious_patterns"`
	Strength            float64     `json:"strength"`
}

// AmplificationEvent is a hashtag pushed by many posts in a short span.
type AmplificationEvent struct {
	Hashtag       string  `json:"hashtag"`
	PostCount     int     `json:"post_count"`
	TimeSpanHours float64 `json:"time_span_hours"`
	Rate          float64 `json:"amplification_rate"`
}

// Amplification is the amplification-burst signal.
type Amplification struct {
	Events        []AmplificationEvent `json:"rapid_amplification_events"`
	HashtagGroups int                  `json:"hashtag_groups"`
	Strength      float64              `json:"amplification_strength"`
}

// CoordinatedGroup is a set of accounts acting together.
type CoordinatedGroup struct {
	Type      GroupType `json:"type"`
	MemberIDs []string  `json:"member_ids"`
	PostIDs   []string  `json:"post_ids"`
	Size      int       `json:"size"`
	Evidence  string    `json:"evidence"`
	Strength  float64   `json:"strength"`
	RiskLevel RiskLevel `json:"risk_level"`
}

// Coordination risk indicators.
const (
	RiskExtremelyHighCoordination = "extremely_high_coordination"
	RiskHighCoordination          = "high_coordination"
	RiskHighRiskGroups            = "high_risk_coordinated_groups"
	RiskCopyPasteBehavior         = "copy_paste_behavior"
	RiskSynchronizedPosting       = "synchronized_posting"
)

// CoordinationResult is the output of DetectCoordination.
type CoordinationResult struct {
	TotalPosts     int                    `json:"total_posts"`
	TotalAuthors   int                    `json:"total_authors"`
	Score          float64                `json:"coordination_score"`
	Suspected      bool                   `json:"suspected_coordination"`
	Text           TextCoordination       `json:"text_coordination"`
	Timing         TimingCoordination     `json:"timing_coordination"`
	Behavioral     BehavioralCoordination `json:"behavioral_coordination"`
	Network        NetworkAnalysis        `json:"network_analysis"`
	Amplification  Amplification          `json:"amplification_patterns"`
	Groups         []CoordinatedGroup     `json:"coordinated_groups"`
	RiskIndicators []string               `json:"risk_indicators"`
	DegradedSteps  []string               `json:"degraded_steps,omitempty"`
}

func emptyTextCoordination() TextCoordination {
	return TextCoordination{Groups: []ContentGroup{}, Pairs: []SimilarPair{}}
}

func emptyTimingCoordination() TimingCoordination {
	return TimingCoordination{Clusters: []TimingCluster{}}
}

func emptyBehavioralCoordination() BehavioralCoordination {
	return BehavioralCoordination{SimilarProfiles: []ProfilePair{}}
}

func emptyNetworkAnalysis() NetworkAnalysis {
	return NetworkAnalysis{SuspiciousPatterns: []string{}}
}

func emptyAmplification() Amplification {
	return Amplification{Events: []AmplificationEvent{}}
}

func emptyCoordinationResult() CoordinationResult {
	return CoordinationResult{
		Text:           emptyTextCoordination(),
		Timing:         emptyTimingCoordination(),
		Behavioral:     emptyBehavioralCoordination(),
		Network:        emptyNetworkAnalysis(),
		Amplification:  emptyAmplification(),
		Groups:         []CoordinatedGroup{},
		RiskIndicators: []string{},
	}
}

// CoordinationDetector detects coordinated inauthentic behavior.
type CoordinationDetector struct {
	config CoordinationConfig
}

// NewCoordinationDetector creates a coordination detector. Zero fields fall
// back to defaults; an all-zero weight set uses the default weights.
func NewCoordinationDetector(cfg CoordinationConfig) *CoordinationDetector {
	def := DefaultCoordinationConfig()
	if cfg.TextSimilarityThreshold <= 0 {
		cfg.TextSimilarityThreshold = def.TextSimilarityThreshold
	}
	if cfg.TimingThresholdMinutes <= 0 {
		cfg.TimingThresholdMinutes = def.TimingThresholdMinutes
	}
	if cfg.BehavioralSimilarityThreshold <= 0 {
		cfg.BehavioralSimilarityThreshold = def.BehavioralSimilarityThreshold
	}
	if cfg.MinAccounts <= 0 {
		cfg.MinAccounts = def.MinAccounts
	}
	if cfg.MinCoordinationScore <= 0 {
		cfg.MinCoordinationScore = def.MinCoordinationScore
	}
	if cfg.MaxNGram <= 0 {
		cfg.MaxNGram = def.MaxNGram
	}
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = def.MaxFeatures
	}
	if cfg.AmplificationMinPosts <= 0 {
		cfg.AmplificationMinPosts = def.AmplificationMinPosts
	}
	if cfg.AmplificationWindowHours <= 0 {
		cfg.AmplificationWindowHours = def.AmplificationWindowHours
	}
	if cfg.Weights.Sum() <= 0 {
		cfg.Weights = def.Weights
	}
	return &CoordinationDetector{config: cfg}
}

// Config returns the effective configuration.
func (d *CoordinationDetector) Config() CoordinationConfig {
	return d.config
}

// DetectCoordination computes the five coordination signals over posts and
// fuses them into one score. When authors is nil they are derived from
// posts. Fewer than MinAccounts posts yields an empty result.
func (d *CoordinationDetector) DetectCoordination(posts []models.Post, authors []models.Author) CoordinationResult {
	if len(posts) < d.config.MinAccounts {
		return emptyCoordinationResult()
	}
	if authors == nil {
		authors = models.DeriveAuthors(posts)
	}

	steps := newStepLog("coordination")
	idx := newAuthorIndex(authors, posts)

	res := emptyCoordinationResult()
	res.TotalPosts = len(posts)
	res.TotalAuthors = len(authors)

	res.Text = runStep(steps, StepTextSimilarity, emptyTextCoordination(), func() TextCoordination {
		return d.textCoordination(posts)
	})
	res.Timing = runStep(steps, StepTiming, emptyTimingCoordination(), func() TimingCoordination {
		return d.timingCoordination(posts)
	})
	res.Behavioral = runStep(steps, StepBehavioral, emptyBehavioralCoordination(), func() BehavioralCoordination {
		return d.behavioralCoordination(idx, models.LatestTimestamp(posts))
	})
	res.Network = runStep(steps, StepNetwork, emptyNetworkAnalysis(), func() NetworkAnalysis {
		return analyzeNetwork(buildMentionGraph(idx))
	})
	res.Amplification = runStep(steps, StepAmplification, emptyAmplification(), func() Amplification {
		return d.amplification(posts)
	})

	w := d.config.Weights
	res.Score = clamp01(
		clamp01(res.Text.Strength)*w.TextSimilarity +
			clamp01(res.Timing.Strength)*w.TimingCoordination +
			clamp01(res.Behavioral.Strength)*w.BehavioralPatterns +
			clamp01(res.Network.Strength)*w.NetworkStructure +
			clamp01(res.Amplification.Strength)*w.Amplification,
	)
	res.Suspected = res.Score > d.config.MinCoordinationScore && distinctAuthorRefs(posts) >= d.config.MinAccounts
	res.Groups = d.coordinatedGroups(&res.Text, &res.Timing)
	res.RiskIndicators = d.riskIndicators(res.Score, res.Groups)
	res.DegradedSteps = steps.degraded()

	logging.Debug().
		Int("posts", len(posts)).
		Int("authors", len(authors)).
		Float64("score", res.Score).
		Int("groups", len(res.Groups)).
		Msg("coordination detection complete")

	return res
}

func distinctAuthorRefs(posts []models.Post) int {
	seen := make(map[string]struct{}, len(posts))
	for i := range posts {
		if posts[i].AuthorRef != "" {
			seen[models.PostAuthorKey(&posts[i])] = struct{}{}
		}
	}
	return len(seen)
}

func (d *CoordinationDetector) coordinatedGroups(text *TextCoordination, timing *TimingCoordination) []CoordinatedGroup {
	groups := []CoordinatedGroup{}
	for _, g := range text.Groups {
		if g.Size < d.config.MinAccounts {
			continue
		}
		risk := RiskMedium
		if g.AvgSimilarity > 0.9 {
			risk = RiskHigh
		}
		groups = append(groups, CoordinatedGroup{
			Type:      GroupTextSimilarity,
			MemberIDs: g.Authors,
			PostIDs:   g.PostIDs,
			Size:      g.Size,
			Evidence:  fmt.Sprintf("Similar content (avg similarity: %.2f)", g.AvgSimilarity),
			Strength:  g.AvgSimilarity,
			RiskLevel: risk,
		})
	}
	for _, c := range timing.Clusters {
		if c.Size < d.config.MinAccounts {
			continue
		}
		risk := RiskMedium
		if c.DurationMinutes < 5 {
			risk = RiskHigh
		}
		groups = append(groups, CoordinatedGroup{
			Type:      GroupTimingCoordination,
			MemberIDs: c.Authors,
			PostIDs:   c.PostIDs,
			Size:      c.Size,
			Evidence:  fmt.Sprintf("Synchronized posting within %.1f minutes", c.DurationMinutes),
			Strength:  float64(c.UniqueAuthors) / float64(c.Size),
			RiskLevel: risk,
		})
	}
	return groups
}

func (d *CoordinationDetector) riskIndicators(score float64, groups []CoordinatedGroup) []string {
	indicators := []string{}
	switch {
	case score > 0.8:
		indicators = append(indicators, RiskExtremelyHighCoordination)
	case score > d.config.MinCoordinationScore:
		indicators = append(indicators, RiskHighCoordination)
	}

	var highRisk, text, timing bool
	for _, g := range groups {
		highRisk = highRisk || g.RiskLevel == RiskHigh
		text = text || g.Type == GroupTextSimilarity
		timing = timing || g.Type == GroupTimingCoordination
	}
	if highRisk {
		indicators = append(indicators, RiskHighRiskGroups)
	}
	if text {
		indicators = append(indicators, RiskCopyPasteBehavior)
	}
	if timing {
		indicators = append(indicators, RiskSynchronizedPosting)
	}
	return indicators
}
