// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package detection

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/campaignwatch/internal/models"
)

func recallCounts() []int {
	counts := make([]int, 48)
	for h := range counts {
		counts[h] = 2
		if h >= 12 && h <= 15 {
			counts[h] = 15
		}
	}
	return counts
}

func TestDetectBursts_RecallScenario(t *testing.T) {
	d := NewBurstDetector(DefaultBurstConfig())
	res := d.DetectBursts(hourlyPosts(recallCounts()), 24)

	if res.TimeSpanHours != 48 {
		t.Fatalf("TimeSpanHours = %d, want 48", res.TimeSpanHours)
	}
	if len(res.StateBursts) == 0 {
		t.Fatal("expected at least one dp_state burst")
	}

	windowStart := testEpoch.Add(12 * time.Hour)
	windowEnd := testEpoch.Add(15 * time.Hour)
	found := false
	for _, b := range res.StateBursts {
		if b.Method != MethodDPState {
			t.Errorf("Method = %s, want %s", b.Method, MethodDPState)
		}
		overlaps := !b.EndTime.Before(windowStart) && !b.StartTime.After(windowEnd)
		if overlaps && b.Intensity >= 3.0 {
			found = true
		}
	}
	if !found {
		t.Errorf("no dp_state burst with intensity >= 3 overlaps hours 12-15: %+v", res.StateBursts)
	}

	b := res.StateBursts[0]
	if !b.StartTime.Equal(windowStart) || !b.EndTime.Equal(windowEnd) {
		t.Errorf("burst = [%v, %v], want [%v, %v]", b.StartTime, b.EndTime, windowStart, windowEnd)
	}
	if b.TotalPosts != 60 {
		t.Errorf("TotalPosts = %d, want 60", b.TotalPosts)
	}
	if b.Level != IntensityHigh {
		t.Errorf("Level = %s, want %s", b.Level, IntensityHigh)
	}
	if res.Analysis.Content.Posts != 60 {
		t.Errorf("in-burst posts = %d, want 60", res.Analysis.Content.Posts)
	}

	if len(res.PeakBursts) != 1 {
		t.Fatalf("PeakBursts = %d, want 1", len(res.PeakBursts))
	}
	if want := testEpoch.Add(13 * time.Hour); !res.PeakBursts[0].StartTime.Equal(want) {
		t.Errorf("peak at %v, want %v", res.PeakBursts[0].StartTime, want)
	}
	if len(res.DegradedSteps) != 0 {
		t.Errorf("DegradedSteps = %v, want none", res.DegradedSteps)
	}
}

func TestDetectBursts_TooFewPosts(t *testing.T) {
	d := NewBurstDetector(BurstConfig{})
	posts := []models.Post{
		testPost("a", "u1", "one", testEpoch),
		testPost("b", "u2", "two", testEpoch.Add(time.Hour)),
		{PostID: "c", AuthorRef: "u3", Text: "no timestamp"},
		{PostID: "d", AuthorRef: "u4", Text: "also none"},
	}

	res := d.DetectBursts(posts, 24)

	if res.TotalPosts != 4 {
		t.Errorf("TotalPosts = %d, want 4", res.TotalPosts)
	}
	if res.AnalyzedPosts != 2 {
		t.Errorf("AnalyzedPosts = %d, want 2", res.AnalyzedPosts)
	}
	if res.StateBursts == nil || len(res.StateBursts) != 0 {
		t.Errorf("StateBursts = %v, want empty non-nil", res.StateBursts)
	}
	if len(res.ZScoreAnomalies) != 0 || len(res.PeakBursts) != 0 {
		t.Error("expected no anomalies or peaks")
	}
	if res.Coordination.Score != 0 || res.Coordination.Suspected {
		t.Errorf("Coordination = %+v, want zero", res.Coordination)
	}
}

func TestDetectBursts_Idempotent(t *testing.T) {
	d := NewBurstDetector(DefaultBurstConfig())
	posts := hourlyPosts(recallCounts())

	first := d.DetectBursts(posts, 24)
	second := d.DetectBursts(posts, 24)
	if !reflect.DeepEqual(first, second) {
		t.Error("DetectBursts returned different results for identical input")
	}
}

func TestDetectBursts_ZScoreSpike(t *testing.T) {
	counts := make([]int, 60)
	for i := range counts {
		counts[i] = 1
	}
	counts[30] = 40

	d := NewBurstDetector(DefaultBurstConfig())
	res := d.DetectBursts(hourlyPosts(counts), 24)

	if len(res.ZScoreAnomalies) != 1 {
		t.Fatalf("ZScoreAnomalies = %d, want 1", len(res.ZScoreAnomalies))
	}
	a := res.ZScoreAnomalies[0]
	if want := testEpoch.Add(30 * time.Hour); !a.StartTime.Equal(want) {
		t.Errorf("anomaly at %v, want %v", a.StartTime, want)
	}
	if a.Score <= 2.5 {
		t.Errorf("z = %v, want > 2.5", a.Score)
	}
	if a.TotalPosts != 40 {
		t.Errorf("TotalPosts = %d, want 40", a.TotalPosts)
	}
}

func TestDetectHashtagBursts_FiltersByTag(t *testing.T) {
	posts := hourlyPosts(recallCounts())
	for i := range posts {
		if i%10 == 0 {
			posts[i].Hashtags = []string{"#Boycott"}
		}
	}

	d := NewBurstDetector(DefaultBurstConfig())
	res := d.DetectHashtagBursts(posts, "boycott", 24)

	want := 0
	for i := range posts {
		if i%10 == 0 {
			want++
		}
	}
	if res.TotalPosts != want {
		t.Errorf("TotalPosts = %d, want %d", res.TotalPosts, want)
	}
}

func TestBuildHourlySeries_ZeroFill(t *testing.T) {
	posts := []models.Post{
		testPost("a", "u1", "x", testEpoch.Add(10*time.Hour+15*time.Minute)),
		testPost("b", "u1", "y", testEpoch.Add(13*time.Hour+40*time.Minute)),
		testPost("c", "u2", "z", testEpoch.Add(13*time.Hour+59*time.Minute)),
		{PostID: "d", Text: "untimed"},
	}

	series, err := BuildHourlySeries(posts, 0)
	if err != nil {
		t.Fatalf("BuildHourlySeries() error = %v", err)
	}

	want := []int{1, 0, 0, 2}
	if len(series) != len(want) {
		t.Fatalf("len(series) = %d, want %d", len(series), len(want))
	}
	for i, b := range series {
		if b.Count != want[i] {
			t.Errorf("series[%d].Count = %d, want %d", i, b.Count, want[i])
		}
		if wantTS := testEpoch.Add(time.Duration(10+i) * time.Hour); !b.Timestamp.Equal(wantTS) {
			t.Errorf("series[%d].Timestamp = %v, want %v", i, b.Timestamp, wantTS)
		}
	}
}

func TestBuildHourlySeries_SpanLimit(t *testing.T) {
	posts := []models.Post{
		testPost("a", "u1", "x", testEpoch),
		testPost("b", "u1", "y", testEpoch.Add(47*time.Hour+30*time.Minute)),
	}

	series, err := BuildHourlySeries(posts, 48)
	if err != nil {
		t.Fatalf("BuildHourlySeries(48) error = %v", err)
	}
	if len(series) != 48 {
		t.Errorf("len(series) = %d, want 48", len(series))
	}

	if _, err := BuildHourlySeries(posts, 47); !errors.Is(err, ErrSpanTooLarge) {
		t.Errorf("BuildHourlySeries(47) error = %v, want ErrSpanTooLarge", err)
	}
}

func TestBuildHourlySeries_BeyondDurationRange(t *testing.T) {
	// 500 years is past what time.Duration can hold.
	far := time.Date(2526, 1, 5, 0, 0, 0, 0, time.UTC)
	posts := []models.Post{
		testPost("a", "u1", "x", testEpoch),
		testPost("b", "u1", "y", testEpoch.Add(time.Minute)),
		testPost("c", "u2", "z", far),
	}

	_, err := BuildHourlySeries(posts, DefaultBurstConfig().MaxSpanHours)
	if !errors.Is(err, ErrSpanTooLarge) {
		t.Fatalf("error = %v, want ErrSpanTooLarge", err)
	}
	wantHours := (far.Unix()-testEpoch.Unix())/3600 + 1
	if !strings.Contains(err.Error(), strconv.FormatInt(wantHours, 10)) {
		t.Errorf("error = %q, want it to report %d hours", err, wantHours)
	}
}

func TestDetectBursts_SpanTooLargeDegrades(t *testing.T) {
	posts := []models.Post{
		testPost("a", "u1", "x", testEpoch),
		testPost("b", "u1", "y", testEpoch.Add(time.Minute)),
		testPost("c", "u2", "z", time.Date(2526, 1, 5, 0, 0, 0, 0, time.UTC)),
	}

	res := NewBurstDetector(DefaultBurstConfig()).DetectBursts(posts, 24)

	if len(res.Series) != 0 {
		t.Errorf("len(Series) = %d, want 0", len(res.Series))
	}
	if len(res.StateBursts) != 0 || len(res.PeakBursts) != 0 {
		t.Errorf("bursts = %d state / %d peak, want none", len(res.StateBursts), len(res.PeakBursts))
	}
	if !reflect.DeepEqual(res.DegradedSteps, []string{StepTimeSeries}) {
		t.Errorf("DegradedSteps = %v, want [%s]", res.DegradedSteps, StepTimeSeries)
	}
}

func TestNewBurstDetector_DefaultsMaxSpan(t *testing.T) {
	cfg := DefaultBurstConfig()
	cfg.MaxSpanHours = 0
	d := NewBurstDetector(cfg)
	if d.config.MaxSpanHours != DefaultBurstConfig().MaxSpanHours {
		t.Errorf("MaxSpanHours = %d, want %d", d.config.MaxSpanHours, DefaultBurstConfig().MaxSpanHours)
	}
}

func TestInferStates(t *testing.T) {
	t.Run("flat series stays in base state", func(t *testing.T) {
		path := inferStates([]float64{2, 2, 2, 2, 2, 2}, 3, 2.0, 1.0)
		for i, s := range path {
			if s != 0 {
				t.Errorf("path[%d] = %d, want 0", i, s)
			}
		}
	})

	t.Run("zero series has no path", func(t *testing.T) {
		if path := inferStates([]float64{0, 0, 0}, 3, 2.0, 1.0); path != nil {
			t.Errorf("path = %v, want nil", path)
		}
	})

	t.Run("spike escalates", func(t *testing.T) {
		counts := []float64{2, 2, 2, 2, 20, 20, 2, 2, 2, 2}
		path := inferStates(counts, 3, 2.0, 1.0)
		if path[4] == 0 || path[5] == 0 {
			t.Errorf("path = %v, want escalation at indices 4 and 5", path)
		}
		if path[0] != 0 || path[9] != 0 {
			t.Errorf("path = %v, want base state at the edges", path)
		}
	})
}

func TestEmissionCost_ZeroCount(t *testing.T) {
	if got := emissionCost(0, 3.5); got != 3.5 {
		t.Errorf("emissionCost(0, 3.5) = %v, want 3.5", got)
	}
}

func TestLocalMaxima(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		want []int
	}{
		{"plateau and spike", []float64{0, 1, 3, 3, 3, 1, 0, 5, 0}, []int{3, 7}},
		{"monotonic", []float64{1, 2, 3, 4}, []int{}},
		{"edge peak ignored", []float64{5, 1, 1}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := localMaxima(tt.x)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("localMaxima(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestProminence(t *testing.T) {
	x := []float64{0, 2, 1, 5, 0}
	if got := prominence(x, 1); got != 1 {
		t.Errorf("prominence(1) = %v, want 1", got)
	}
	if got := prominence(x, 3); got != 5 {
		t.Errorf("prominence(3) = %v, want 5", got)
	}
}

func TestSuppressByDistance(t *testing.T) {
	x := []float64{0, 5, 0, 4, 0, 0, 3, 0}
	got := suppressByDistance(x, []int{1, 3, 6}, 3)
	want := []int{1, 6}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("suppressByDistance = %v, want %v", got, want)
	}
}

func TestIntensityLevel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.5, IntensityLow},
		{2.5, IntensityLow},
		{3.0, IntensityMedium},
		{4.0, IntensityHigh},
		{5.9, IntensityHigh},
		{6.0, IntensityExtreme},
	}
	for _, tt := range tests {
		if got := IntensityLevel(tt.in); got != tt.want {
			t.Errorf("IntensityLevel(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func spikeCounts() []int {
	counts := make([]int, 48)
	for h := range counts {
		counts[h] = 1
		if h >= 20 && h < 24 {
			counts[h] = 60
		}
	}
	return counts
}

func TestBurstConfig_MaxIntensity(t *testing.T) {
	if got := DefaultBurstConfig().MaxIntensity(); got != 4 {
		t.Errorf("default MaxIntensity() = %v, want 4", got)
	}
	cfg := DefaultBurstConfig()
	cfg.States = 4
	if got := cfg.MaxIntensity(); got != 8 {
		t.Errorf("States=4 MaxIntensity() = %v, want 8", got)
	}
}

func TestDetectBursts_IntensityCeiling(t *testing.T) {
	posts := hourlyPosts(spikeCounts())

	t.Run("defaults stop at high", func(t *testing.T) {
		cfg := DefaultBurstConfig()
		res := NewBurstDetector(cfg).DetectBursts(posts, 24)
		if len(res.StateBursts) == 0 {
			t.Fatal("expected a dp_state burst")
		}
		for _, b := range res.StateBursts {
			if b.Intensity > cfg.MaxIntensity() {
				t.Errorf("Intensity = %v, above ceiling %v", b.Intensity, cfg.MaxIntensity())
			}
			if b.Level == IntensityExtreme {
				t.Errorf("Level = %s with default config", b.Level)
			}
		}
	})

	t.Run("four states reach extreme", func(t *testing.T) {
		cfg := DefaultBurstConfig()
		cfg.States = 4
		res := NewBurstDetector(cfg).DetectBursts(posts, 24)
		var peak float64
		for _, b := range res.StateBursts {
			peak = max(peak, b.Intensity)
		}
		if peak <= 4.0 {
			t.Errorf("max Intensity = %v, want above 4", peak)
		}
	})
}

func TestBurstCoordination_AllIndicators(t *testing.T) {
	a := BurstAnalysis{
		Intensity: &IntensityDistribution{Max: 5},
		Temporal:  &BurstTemporalPatterns{IntervalHours: &IntervalStats{Std: 0.5}},
		Content: BurstContent{
			Posts:          10,
			TopHashtags:    []CountEntry{{Value: "boycott", Count: 6}},
			PostsPerAuthor: 6,
		},
	}

	got := burstCoordination(&a)

	if !approxEqual(got.Score, 1.0) {
		t.Errorf("Score = %v, want 1.0", got.Score)
	}
	if !got.Suspected {
		t.Error("Suspected = false, want true")
	}
	want := []string{
		IndicatorSynchronizedTiming,
		IndicatorRepetitiveHashtags,
		IndicatorHyperactiveAuthors,
		IndicatorExtremeBurstIntensity,
	}
	if !reflect.DeepEqual(got.Indicators, want) {
		t.Errorf("Indicators = %v, want %v", got.Indicators, want)
	}
}

func TestBurstCoordination_Empty(t *testing.T) {
	got := burstCoordination(&BurstAnalysis{})
	if got.Score != 0 || got.Suspected || len(got.Indicators) != 0 {
		t.Errorf("burstCoordination(empty) = %+v, want zero", got)
	}
}
