// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package detection

import (
	"math"
	"sort"
	"time"

	"github.com/tomtom215/campaignwatch/internal/models"
)

// emissionCost is the Poisson-style cost of rate generating count c.
// For c == 0 only the bare rate term remains.
func emissionCost(c, rate float64) float64 {
	if c > 0 {
		return -c*math.Log(rate) + rate
	}
	return rate
}

// inferStates solves for the minimum-cost state sequence over counts.
// State i has rate base*s^i. Escalating by k states costs k*gamma and
// de-escalating is free. Returns nil when the base rate is zero.
func inferStates(counts []float64, states int, s, gamma float64) []int {
	n := len(counts)
	if n == 0 || states < 1 {
		return nil
	}
	var total float64
	for _, c := range counts {
		total += c
	}
	base := total / float64(n)
	if base <= 0 {
		return nil
	}

	rates := make([]float64, states)
	for i := range rates {
		rates[i] = base * math.Pow(s, float64(i))
	}

	cost := make([][]float64, n)
	back := make([][]int, n)
	for t := range n {
		cost[t] = make([]float64, states)
		back[t] = make([]int, states)
	}
	for i := range states {
		cost[0][i] = emissionCost(counts[0], rates[i])
	}

	for t := 1; t < n; t++ {
		for cur := range states {
			emit := emissionCost(counts[t], rates[cur])
			best := math.Inf(1)
			bestPrev := 0
			for prev := range states {
				trans := 0.0
				if cur > prev {
					trans = float64(cur-prev) * gamma
				}
				if c := cost[t-1][prev] + trans; c < best {
					best = c
					bestPrev = prev
				}
			}
			cost[t][cur] = best + emit
			back[t][cur] = bestPrev
		}
	}

	path := make([]int, n)
	last := 0
	for i := 1; i < states; i++ {
		if cost[n-1][i] < cost[n-1][last] {
			last = i
		}
	}
	path[n-1] = last
	for t := n - 2; t >= 0; t-- {
		path[t] = back[t+1][path[t+1]]
	}
	return path
}

// stateModelBursts emits a dp_state BurstEvent for every run of states > 0.
func (d *BurstDetector) stateModelBursts(series []models.TimeSeriesBucket, counts []float64) []BurstEvent {
	path := inferStates(counts, d.config.States, d.config.GrowthFactor, d.config.TransitionCost)
	bursts := []BurstEvent{}
	if path == nil {
		return bursts
	}

	emit := func(start, end int) {
		var multiplier float64
		posts := 0
		for i := start; i < end; i++ {
			multiplier += math.Pow(d.config.GrowthFactor, float64(path[i]))
			posts += series[i].Count
		}
		intensity := multiplier / float64(end-start)
		bursts = append(bursts, BurstEvent{
			Method:        MethodDPState,
			StartTime:     series[start].Timestamp,
			EndTime:       series[end-1].Timestamp,
			DurationHours: end - start,
			Intensity:     intensity,
			Level:         IntensityLevel(intensity),
			TotalPosts:    posts,
		})
	}

	start := -1
	for i, st := range path {
		switch {
		case st > 0 && start < 0:
			start = i
		case st == 0 && start >= 0:
			emit(start, i)
			start = -1
		}
	}
	if start >= 0 {
		emit(start, len(path))
	}
	return bursts
}

// rollingWindow returns the inclusive index range of the centered window of
// size w at i, and whether it lies fully within n values.
func rollingWindow(i, w, n int) (lo, hi int, ok bool) {
	offset := (w - 1) / 2
	hi = i + offset
	lo = hi - w + 1
	return lo, hi, lo >= 0 && hi < n
}

// zscoreAnomalies flags hours whose centered rolling z-score exceeds the
// threshold. Hours whose window runs past either edge use the global mean
// and population std instead.
func (d *BurstDetector) zscoreAnomalies(series []models.TimeSeriesBucket, counts []float64, windowHours int) []BurstEvent {
	n := len(counts)
	w := min(windowHours, n/2)
	if w < 2 {
		w = 2
	}
	globalMean := mean(counts)
	globalStd := stdDev(counts)

	anomalies := []BurstEvent{}
	for i := range n {
		m, s := globalMean, globalStd
		if lo, hi, ok := rollingWindow(i, w, n); ok {
			window := counts[lo : hi+1]
			m, s = mean(window), sampleStdDev(window)
		}
		z := math.Abs(counts[i]-m) / (s + floatEpsilon)
		if z <= d.config.ZScoreThreshold {
			continue
		}
		anomalies = append(anomalies, BurstEvent{
			Method:        MethodZScore,
			StartTime:     series[i].Timestamp,
			EndTime:       series[i].Timestamp,
			DurationHours: 1,
			Intensity:     ratioToBaseline(counts[i], globalMean),
			TotalPosts:    series[i].Count,
			Score:         z,
			Expected:      m,
		})
	}
	return anomalies
}

func ratioToBaseline(count, baseline float64) float64 {
	if baseline <= 0 {
		return 0
	}
	return count / baseline
}

// localMaxima returns the indices of strict local maxima. For flat peaks
// the middle sample (rounded down) is reported. Edges never qualify.
func localMaxima(x []float64) []int {
	peaks := []int{}
	n := len(x)
	i := 1
	for i < n-1 {
		if x[i-1] < x[i] {
			ahead := i + 1
			for ahead < n-1 && x[ahead] == x[i] {
				ahead++
			}
			if x[ahead] < x[i] {
				peaks = append(peaks, (i+ahead-1)/2)
				i = ahead
				continue
			}
		}
		i++
	}
	return peaks
}

// prominence of the peak at p: its height above the higher of the lowest
// points reached on each side before meeting a strictly higher sample.
func prominence(x []float64, p int) float64 {
	leftMin := x[p]
	for i := p - 1; i >= 0 && x[i] <= x[p]; i-- {
		leftMin = math.Min(leftMin, x[i])
	}
	rightMin := x[p]
	for i := p + 1; i < len(x) && x[i] <= x[p]; i++ {
		rightMin = math.Min(rightMin, x[i])
	}
	return x[p] - math.Max(leftMin, rightMin)
}

// suppressByDistance keeps the highest peaks first and drops any peak
// closer than distance samples to an already kept one.
func suppressByDistance(x []float64, peaks []int, distance int) []int {
	if distance <= 1 || len(peaks) < 2 {
		return peaks
	}
	order := make([]int, len(peaks))
	copy(order, peaks)
	sort.SliceStable(order, func(i, j int) bool { return x[order[i]] > x[order[j]] })

	kept := make(map[int]bool, len(peaks))
	for _, p := range order {
		ok := true
		for q := range kept {
			if abs(p-q) < distance {
				ok = false
				break
			}
		}
		if ok {
			kept[p] = true
		}
	}
	out := make([]int, 0, len(kept))
	for _, p := range peaks {
		if kept[p] {
			out = append(out, p)
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// peakBursts flags local maxima at least max(mean+2·std, 0.3·max) high,
// separated by MinPeakDistance hours, with prominence >= global std.
func (d *BurstDetector) peakBursts(series []models.TimeSeriesBucket, counts []float64) []BurstEvent {
	m := mean(counts)
	s := stdDev(counts)
	_, maxCount := minMax(counts)
	minHeight := math.Max(m+2*s, 0.3*maxCount)

	candidates := make([]int, 0)
	for _, p := range localMaxima(counts) {
		if counts[p] >= minHeight {
			candidates = append(candidates, p)
		}
	}
	candidates = suppressByDistance(counts, candidates, d.config.MinPeakDistance)

	peaks := []BurstEvent{}
	for _, p := range candidates {
		prom := prominence(counts, p)
		if prom < s {
			continue
		}
		peaks = append(peaks, BurstEvent{
			Method:        MethodPeak,
			StartTime:     series[p].Timestamp,
			EndTime:       series[p].Timestamp,
			DurationHours: 1,
			Intensity:     ratioToBaseline(counts[p], m),
			TotalPosts:    series[p].Count,
			Score:         prom,
		})
	}
	return peaks
}

// burstWindowEnd is the exclusive end of a burst: one hour after the start
// of its last bucket.
func burstWindowEnd(b BurstEvent) time.Time {
	return b.EndTime.Add(time.Hour)
}
