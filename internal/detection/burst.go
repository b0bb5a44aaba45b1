// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package detection

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/campaignwatch/internal/logging"
	"github.com/tomtom215/campaignwatch/internal/models"
)

// BurstConfig configures the burst detector.
type BurstConfig struct {
	// States is the number of activity states in the state model.
	States int `koanf:"states" json:"states"`

	// GrowthFactor is the rate multiplier between adjacent states.
	GrowthFactor float64 `koanf:"growth_factor" json:"growth_factor"`

	// TransitionCost is the per-level cost of escalating to a higher state.
	TransitionCost float64 `koanf:"transition_cost" json:"transition_cost"`

	// WindowHours is the default rolling z-score window.
	WindowHours int `koanf:"window_hours" json:"window_hours"`

	// ZScoreThreshold flags hours whose z-score exceeds it.
	ZScoreThreshold float64 `koanf:"zscore_threshold" json:"zscore_threshold"`

	// MinPeakDistance is the minimum separation in hours between peaks.
	MinPeakDistance int `koanf:"min_peak_distance" json:"min_peak_distance"`

	// MinPosts is the minimum number of timestamped posts analysed.
	MinPosts int `koanf:"min_posts" json:"min_posts"`

	// MaxSpanHours caps the hourly series. Wider inputs degrade to the
	// empty result.
	MaxSpanHours int `koanf:"max_span_hours" json:"max_span_hours"`
}

// MaxIntensity is the largest dp_state intensity the config can produce,
// GrowthFactor^(States-1).
func (c BurstConfig) MaxIntensity() float64 {
	return math.Pow(c.GrowthFactor, float64(c.States-1))
}

// ErrSpanTooLarge is returned by BuildHourlySeries when the posts cover more
// hours than the limit.
var ErrSpanTooLarge = errors.New("post time span exceeds the hourly series limit")

// DefaultBurstConfig returns the standard burst settings.
func DefaultBurstConfig() BurstConfig {
	return BurstConfig{
		States:          3,
		GrowthFactor:    2.0,
		TransitionCost:  1.0,
		WindowHours:     24,
		ZScoreThreshold: 2.5,
		MinPeakDistance: 2,
		MinPosts:        3,
		MaxSpanHours:    366 * 24,
	}
}

// BurstEvent is one flagged window of abnormal activity.
//
// For dp_state events Intensity is the mean rate multiplier over the run and
// Level its band. For zscore events Score is the z-score and Expected the
// rolling mean; for peak events Score is the prominence.
type BurstEvent struct {
	Method        BurstMethod `json:"method"`
	StartTime     time.Time   `json:"start_time"`
	EndTime       time.Time   `json:"end_time"`
	DurationHours int         `json:"duration_hours"`
	Intensity     float64     `json:"intensity"`
	Level         string      `json:"level,omitempty"`
	TotalPosts    int         `json:"total_posts"`
	Score         float64     `json:"score,omitempty"`
	Expected      float64     `json:"expected,omitempty"`
}

// IntensityDistribution summarises state-model burst intensities.
type IntensityDistribution struct {
	Mean   float64        `json:"mean_intensity"`
	Max    float64        `json:"max_intensity"`
	Std    float64        `json:"std_intensity"`
	Levels map[string]int `json:"burst_levels"`
}

// BurstTemporalPatterns describes when state-model bursts start.
type BurstTemporalPatterns struct {
	TemporalDistribution
	IntervalHours *IntervalStats `json:"interval_statistics,omitempty"`
}

// BurstContent describes the posts that fall inside burst windows.
type BurstContent struct {
	Posts          int            `json:"posts"`
	TopHashtags    []CountEntry   `json:"top_hashtags,omitempty"`
	UniqueHashtags int            `json:"unique_hashtags"`
	HashtagUses    int            `json:"total_hashtag_uses"`
	UniqueAuthors  int            `json:"unique_authors"`
	TopAuthors     []CountEntry   `json:"top_authors,omitempty"`
	PostsPerAuthor float64        `json:"posts_per_author"`
	Platforms      map[string]int `json:"platforms,omitempty"`
	Languages      map[string]int `json:"languages,omitempty"`
}

// BurstAnalysis characterises the detected bursts.
type BurstAnalysis struct {
	StateBursts int                    `json:"dp_bursts"`
	ZScoreCount int                    `json:"zscore_anomalies"`
	PeakCount   int                    `json:"peak_bursts"`
	Intensity   *IntensityDistribution `json:"intensity_distribution,omitempty"`
	Temporal    *BurstTemporalPatterns `json:"temporal_patterns,omitempty"`
	Content     BurstContent           `json:"content_analysis"`
}

// BurstCoordination is the coordination signal derived from bursts.
type BurstCoordination struct {
	Suspected  bool     `json:"suspected_coordination"`
	Score      float64  `json:"coordination_score"`
	Indicators []string `json:"indicators"`
}

// BurstResult is the output of DetectBursts.
type BurstResult struct {
	TotalPosts      int                       `json:"total_posts"`
	AnalyzedPosts   int                       `json:"analyzed_posts"`
	TimeSpanHours   int                       `json:"time_span_hours"`
	WindowHours     int                       `json:"window_hours"`
	StateBursts     []BurstEvent              `json:"dp_bursts"`
	ZScoreAnomalies []BurstEvent              `json:"zscore_anomalies"`
	PeakBursts      []BurstEvent              `json:"peak_bursts"`
	Analysis        BurstAnalysis             `json:"burst_analysis"`
	Coordination    BurstCoordination         `json:"coordination_indicators"`
	Series          []models.TimeSeriesBucket `json:"time_series"`
	DegradedSteps   []string                  `json:"degraded_steps,omitempty"`
}

func emptyBurstResult(totalPosts, window int) BurstResult {
	return BurstResult{
		TotalPosts:      totalPosts,
		WindowHours:     window,
		StateBursts:     []BurstEvent{},
		ZScoreAnomalies: []BurstEvent{},
		PeakBursts:      []BurstEvent{},
		Coordination:    BurstCoordination{Indicators: []string{}},
		Series:          []models.TimeSeriesBucket{},
	}
}

// Intensity band names.
const (
	IntensityLow     = "low"
	IntensityMedium  = "medium"
	IntensityHigh    = "high"
	IntensityExtreme = "extreme"
)

// IntensityLevel bands an intensity: low [2,3) medium [3,4) high [4,6)
// extreme [6,∞). Values below 2 are low.
//
// A dp_state intensity is a mean of GrowthFactor^state, so it never exceeds
// BurstConfig.MaxIntensity. With the defaults that is 4.0: dp_state bursts
// top out at high, and extreme_burst_intensity needs States >= 4 or a
// larger GrowthFactor.
func IntensityLevel(intensity float64) string {
	switch {
	case intensity >= 6:
		return IntensityExtreme
	case intensity >= 4:
		return IntensityHigh
	case intensity >= 3:
		return IntensityMedium
	default:
		return IntensityLow
	}
}

// BurstDetector flags abnormal-intensity windows in a post stream.
type BurstDetector struct {
	config BurstConfig
}

// NewBurstDetector creates a burst detector. Zero fields fall back to defaults.
func NewBurstDetector(cfg BurstConfig) *BurstDetector {
	def := DefaultBurstConfig()
	if cfg.States < 2 {
		cfg.States = def.States
	}
	if cfg.GrowthFactor <= 1 {
		cfg.GrowthFactor = def.GrowthFactor
	}
	if cfg.TransitionCost < 0 {
		cfg.TransitionCost = def.TransitionCost
	}
	if cfg.WindowHours <= 0 {
		cfg.WindowHours = def.WindowHours
	}
	if cfg.ZScoreThreshold <= 0 {
		cfg.ZScoreThreshold = def.ZScoreThreshold
	}
	if cfg.MinPeakDistance < 1 {
		cfg.MinPeakDistance = def.MinPeakDistance
	}
	if cfg.MinPosts < 3 {
		cfg.MinPosts = def.MinPosts
	}
	if cfg.MaxSpanHours < 1 {
		cfg.MaxSpanHours = def.MaxSpanHours
	}
	return &BurstDetector{config: cfg}
}

// Config returns the effective configuration.
func (d *BurstDetector) Config() BurstConfig {
	return d.config
}

// DetectBursts builds the hourly series for posts and runs the state model,
// rolling z-score and peak detection over it. windowHours <= 0 uses the
// configured window.
func (d *BurstDetector) DetectBursts(posts []models.Post, windowHours int) BurstResult {
	if windowHours <= 0 {
		windowHours = d.config.WindowHours
	}

	steps := newStepLog("burst")
	series := runStep(steps, StepTimeSeries, []models.TimeSeriesBucket(nil), func() []models.TimeSeriesBucket {
		s, err := BuildHourlySeries(posts, d.config.MaxSpanHours)
		if err != nil {
			steps.record(StepTimeSeries, err)
			return nil
		}
		return s
	})

	analyzed := countTimestamped(posts)
	if analyzed < d.config.MinPosts || len(series) < 3 {
		res := emptyBurstResult(len(posts), windowHours)
		res.AnalyzedPosts = analyzed
		res.DegradedSteps = steps.degraded()
		return res
	}

	counts := make([]float64, len(series))
	for i, b := range series {
		counts[i] = float64(b.Count)
	}

	res := emptyBurstResult(len(posts), windowHours)
	res.AnalyzedPosts = analyzed
	res.Series = series
	res.TimeSpanHours = len(series)

	res.StateBursts = runStep(steps, StepStateModel, []BurstEvent{}, func() []BurstEvent {
		return d.stateModelBursts(series, counts)
	})
	res.ZScoreAnomalies = runStep(steps, StepZScore, []BurstEvent{}, func() []BurstEvent {
		return d.zscoreAnomalies(series, counts, windowHours)
	})
	res.PeakBursts = runStep(steps, StepPeaks, []BurstEvent{}, func() []BurstEvent {
		return d.peakBursts(series, counts)
	})
	res.Analysis = runStep(steps, StepCharacterize, BurstAnalysis{}, func() BurstAnalysis {
		return characterizeBursts(posts, res.StateBursts, len(res.ZScoreAnomalies), len(res.PeakBursts))
	})
	res.Coordination = runStep(steps, StepBurstIndicators, BurstCoordination{Indicators: []string{}}, func() BurstCoordination {
		return burstCoordination(&res.Analysis)
	})
	res.DegradedSteps = steps.degraded()

	logging.Debug().
		Int("posts", len(posts)).
		Int("hours", len(series)).
		Int("dp_bursts", len(res.StateBursts)).
		Int("zscore_anomalies", len(res.ZScoreAnomalies)).
		Int("peaks", len(res.PeakBursts)).
		Msg("burst detection complete")

	return res
}

// DetectHashtagBursts runs DetectBursts over posts carrying hashtag
// (case-insensitive, leading '#' ignored).
func (d *BurstDetector) DetectHashtagBursts(posts []models.Post, hashtag string, windowHours int) BurstResult {
	want := normalizeHashtag(hashtag)
	filtered := make([]models.Post, 0)
	for i := range posts {
		for _, h := range posts[i].Hashtags {
			if normalizeHashtag(h) == want {
				filtered = append(filtered, posts[i])
				break
			}
		}
	}
	return d.DetectBursts(filtered, windowHours)
}

func countTimestamped(posts []models.Post) int {
	n := 0
	for i := range posts {
		if posts[i].HasTimestamp() {
			n++
		}
	}
	return n
}

// BuildHourlySeries buckets timestamped posts into UTC hours and zero-fills
// every hour between the first and last bucket inclusive. maxHours <= 0
// disables the length check.
func BuildHourlySeries(posts []models.Post, maxHours int) ([]models.TimeSeriesBucket, error) {
	counts := make(map[int64]int)
	var first, last int64
	seen := false
	for i := range posts {
		if !posts[i].HasTimestamp() {
			continue
		}
		h := hourIndex(posts[i].PostedAt.Time)
		counts[h]++
		if !seen || h < first {
			first = h
		}
		if !seen || h > last {
			last = h
		}
		seen = true
	}
	if !seen {
		return []models.TimeSeriesBucket{}, nil
	}

	// Unix hours, not time.Duration, which saturates near 292 years.
	span := last - first + 1
	if maxHours > 0 && span > int64(maxHours) {
		return nil, fmt.Errorf("%w: %d hours, limit %d", ErrSpanTooLarge, span, maxHours)
	}

	series := make([]models.TimeSeriesBucket, span)
	for i := range series {
		h := first + int64(i)
		series[i] = models.TimeSeriesBucket{Timestamp: time.Unix(h*3600, 0).UTC(), Count: counts[h]}
	}
	return series, nil
}

// hourIndex returns the UTC hour number of t since the Unix epoch, rounding
// towards negative infinity.
func hourIndex(t time.Time) int64 {
	sec := t.Unix()
	h := sec / 3600
	if sec%3600 < 0 {
		h--
	}
	return h
}
