// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package detection

import (
	"math"
	"sort"
	"time"
)

// floatEpsilon guards divisions by a standard deviation.
const floatEpsilon = 1e-8

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation (ddof=0).
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)))
}

// sampleStdDev is the sample standard deviation (ddof=1).
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

func minMax(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func pairCount(n int) float64 {
	if n < 2 {
		return 0
	}
	return float64(n) * float64(n-1) / 2
}

// IntervalStats summarises gaps between consecutive events.
type IntervalStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

func intervalStats(gaps []float64) *IntervalStats {
	if len(gaps) == 0 {
		return nil
	}
	lo, hi := minMax(gaps)
	return &IntervalStats{Mean: mean(gaps), Std: stdDev(gaps), Min: lo, Max: hi}
}

// gaps returns consecutive differences of sorted times in the given unit.
func gaps(sorted []time.Time, unit time.Duration) []float64 {
	if len(sorted) < 2 {
		return nil
	}
	out := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		out = append(out, float64(sorted[i].Sub(sorted[i-1]))/float64(unit))
	}
	return out
}

// TemporalDistribution is an hour-of-day and day-of-week histogram.
type TemporalDistribution struct {
	HourDistribution map[int]int    `json:"hour_distribution"`
	DayDistribution  map[string]int `json:"day_distribution"`
}

func temporalDistribution(times []time.Time) TemporalDistribution {
	dist := TemporalDistribution{
		HourDistribution: make(map[int]int),
		DayDistribution:  make(map[string]int),
	}
	for _, t := range times {
		t = t.UTC()
		dist.HourDistribution[t.Hour()]++
		dist.DayDistribution[t.Weekday().String()]++
	}
	return dist
}

// CountEntry is one row of a top-N frequency table.
type CountEntry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// topCounts returns the n most frequent entries, ties broken alphabetically.
func topCounts(counts map[string]int, n int) []CountEntry {
	entries := make([]CountEntry, 0, len(counts))
	for v, c := range counts {
		entries = append(entries, CountEntry{Value: v, Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Value < entries[j].Value
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func sortTimes(times []time.Time) {
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
}
