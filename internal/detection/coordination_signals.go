// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package detection

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tomtom215/campaignwatch/internal/models"
)

// textCoordination finds near-duplicate posts by TF-IDF cosine similarity
// and merges matching pairs transitively into groups.
func (d *CoordinationDetector) textCoordination(posts []models.Post) TextCoordination {
	out := emptyTextCoordination()

	texts := make([]string, 0, len(posts))
	owners := make([]*models.Post, 0, len(posts))
	for i := range posts {
		if t := strings.TrimSpace(posts[i].Text); t != "" {
			texts = append(texts, t)
			owners = append(owners, &posts[i])
		}
	}
	if len(texts) < 2 {
		return out
	}

	vectors := newTFIDFVectorizer(d.config.MaxNGram, d.config.MaxFeatures).fitTransform(texts)

	type match struct {
		i, j int
		sim  float64
	}
	matches := make([]match, 0)
	uf := newUnionFind(len(texts))
	for i := 0; i < len(texts); i++ {
		for j := i + 1; j < len(texts); j++ {
			sim := cosine(vectors[i], vectors[j])
			if sim <= d.config.TextSimilarityThreshold {
				continue
			}
			matches = append(matches, match{i: i, j: j, sim: sim})
			uf.union(i, j)
			out.Pairs = append(out.Pairs, SimilarPair{
				PostA:      owners[i].PostID,
				PostB:      owners[j].PostID,
				AuthorA:    owners[i].AuthorRef,
				AuthorB:    owners[j].AuthorRef,
				Similarity: sim,
			})
		}
	}

	simSum := make(map[int]float64)
	simN := make(map[int]int)
	for _, m := range matches {
		root := uf.find(m.i)
		simSum[root] += m.sim
		simN[root]++
	}

	for _, members := range uf.components(2) {
		root := uf.find(members[0])
		group := ContentGroup{Size: len(members), AvgSimilarity: simSum[root] / float64(simN[root])}
		seen := make(map[string]struct{})
		for _, m := range members {
			group.PostIDs = append(group.PostIDs, owners[m].PostID)
			if _, dup := seen[owners[m].AuthorRef]; !dup {
				seen[owners[m].AuthorRef] = struct{}{}
				group.Authors = append(group.Authors, owners[m].AuthorRef)
			}
		}
		out.Groups = append(out.Groups, group)
	}
	sort.SliceStable(out.Groups, func(i, j int) bool { return out.Groups[i].Size > out.Groups[j].Size })

	out.Strength = clamp01(float64(len(matches)) / pairCount(len(texts)))
	return out
}

// timingCoordination clusters posts whose consecutive gaps stay within the
// timing threshold and keeps clusters spanning enough distinct authors.
func (d *CoordinationDetector) timingCoordination(posts []models.Post) TimingCoordination {
	out := emptyTimingCoordination()

	stamped := make([]*models.Post, 0, len(posts))
	for i := range posts {
		if posts[i].HasTimestamp() {
			stamped = append(stamped, &posts[i])
		}
	}
	if len(stamped) < 2 {
		return out
	}
	sort.SliceStable(stamped, func(i, j int) bool {
		return stamped[i].PostedAt.Time.Before(stamped[j].PostedAt.Time)
	})

	gap := time.Duration(d.config.TimingThresholdMinutes) * time.Minute
	coordinated := 0
	flush := func(run []*models.Post) {
		if len(run) < d.config.MinAccounts {
			return
		}
		cluster := TimingCluster{
			StartTime: run[0].PostedAt.Time,
			EndTime:   run[len(run)-1].PostedAt.Time,
			Size:      len(run),
		}
		cluster.DurationMinutes = cluster.EndTime.Sub(cluster.StartTime).Minutes()
		seen := make(map[string]struct{})
		for _, p := range run {
			cluster.PostIDs = append(cluster.PostIDs, p.PostID)
			if _, dup := seen[p.AuthorRef]; !dup {
				seen[p.AuthorRef] = struct{}{}
				cluster.Authors = append(cluster.Authors, p.AuthorRef)
			}
		}
		cluster.UniqueAuthors = len(cluster.Authors)
		if cluster.UniqueAuthors < d.config.MinAccounts {
			return
		}
		coordinated += cluster.Size
		out.Clusters = append(out.Clusters, cluster)
	}

	run := []*models.Post{stamped[0]}
	for _, p := range stamped[1:] {
		if p.PostedAt.Time.Sub(run[len(run)-1].PostedAt.Time) <= gap {
			run = append(run, p)
			continue
		}
		flush(run)
		run = []*models.Post{p}
	}
	flush(run)

	out.Strength = clamp01(float64(coordinated) / float64(len(stamped)))

	times := make([]time.Time, len(stamped))
	for i, p := range stamped {
		times[i] = p.PostedAt.Time
	}
	patterns := &TimingPatterns{TemporalDistribution: temporalDistribution(times)}
	if intervals := gaps(times, time.Minute); len(intervals) > 0 {
		lo, _ := minMax(intervals)
		patterns.AvgIntervalMinutes = mean(intervals)
		patterns.StdIntervalMinutes = stdDev(intervals)
		patterns.MinIntervalMinutes = lo
	}
	out.Patterns = patterns
	return out
}

// BehavioralFeatures is the per-author feature set compared for
// behavioral coordination.
type BehavioralFeatures struct {
	Followers      int     `json:"followers_count"`
	Following      int     `json:"following_count"`
	PostsCount     int     `json:"posts_count"`
	AccountAgeDays float64 `json:"account_age_days"`
	PostsInDataset int     `json:"posts_in_dataset"`
	AvgPostLength  float64 `json:"avg_post_length"`
	HashtagRate    float64 `json:"hashtag_usage_rate"`
	MentionRate    float64 `json:"mention_usage_rate"`
	URLRate        float64 `json:"url_sharing_rate"`
	AvgEngagement  float64 `json:"avg_engagement"`
}

func extractBehavioralFeatures(a *models.Author, posts []models.Post, ref time.Time) BehavioralFeatures {
	f := BehavioralFeatures{
		Followers:      a.FollowersCount,
		Following:      a.FollowingCount,
		PostsCount:     a.PostsCount,
		AccountAgeDays: a.AccountAgeDays(ref),
		PostsInDataset: len(posts),
	}
	if len(posts) == 0 {
		return f
	}
	var length, tags, mentions, urls, engagement float64
	for i := range posts {
		length += float64(utf8.RuneCountInString(posts[i].Text))
		tags += float64(len(posts[i].Hashtags))
		mentions += float64(len(posts[i].Mentions))
		urls += float64(len(posts[i].URLs))
		engagement += float64(posts[i].Engagement())
	}
	n := float64(len(posts))
	f.AvgPostLength = length / n
	f.HashtagRate = tags / n
	f.MentionRate = mentions / n
	f.URLRate = urls / n
	f.AvgEngagement = engagement / n
	return f
}

// vector log-scales the heavy-tailed fields.
func (f BehavioralFeatures) vector() []float64 {
	return []float64{
		math.Log1p(float64(f.Followers)),
		math.Log1p(float64(f.Following)),
		math.Log1p(float64(f.PostsCount)),
		f.AccountAgeDays,
		f.AvgPostLength,
		f.HashtagRate,
		f.MentionRate,
		f.URLRate,
		math.Log1p(f.AvgEngagement),
	}
}

func (d *CoordinationDetector) behavioralCoordination(idx *authorIndex, ref time.Time) BehavioralCoordination {
	out := emptyBehavioralCoordination()
	n := len(idx.authors)
	if n < 2 {
		return out
	}
	vectors := make([][]float64, n)
	for i := range idx.authors {
		vectors[i] = extractBehavioralFeatures(&idx.authors[i], idx.posts[i], ref).vector()
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := denseCosine(vectors[i], vectors[j])
			if sim > d.config.BehavioralSimilarityThreshold {
				out.SimilarProfiles = append(out.SimilarProfiles, ProfilePair{
					AuthorA:    idx.authors[i].UserID,
					AuthorB:    idx.authors[j].UserID,
					Similarity: sim,
				})
			}
		}
	}
	out.Strength = clamp01(float64(len(out.SimilarProfiles)) / pairCount(n))
	return out
}

// buildMentionGraph links authors that mention each other; edge weight is
// the mention count.
func buildMentionGraph(idx *authorIndex) *interactionGraph {
	g := newInteractionGraph()
	for _, key := range idx.keys {
		g.addNode(key)
	}
	for ai, posts := range idx.posts {
		for pi := range posts {
			for _, m := range posts[pi].Mentions {
				if target := idx.resolveMention(m); target >= 0 {
					g.addInteraction(idx.keys[ai], idx.keys[target])
				}
			}
		}
	}
	return g
}

func analyzeNetwork(g *interactionGraph) NetworkAnalysis {
	out := emptyNetworkAnalysis()
	out.NodeCount = g.nodeCount()
	out.EdgeCount = g.edgeCount()
	if out.NodeCount < 2 {
		return out
	}

	out.Density = g.density()
	out.Clustering = g.averageClustering()
	out.ConnectedComponents = g.connectedComponents()
	out.DegreeDistribution = g.degreeDistribution()

	var degreeSum int
	for _, id := range g.nodes {
		deg := g.degree(id)
		degreeSum += deg
		out.MaxDegree = max(out.MaxDegree, deg)
	}
	out.AvgDegree = float64(degreeSum) / float64(out.NodeCount)
	if out.EdgeCount > 0 {
		out.Hubs = g.topNodes(5)
	}

	if out.Clustering > 0.7 && out.Density < 0.3 {
		out.SuspiciousPatterns = append(out.SuspiciousPatterns, PatternHighClusteringLowDensity)
	}
	if float64(out.MaxDegree) > 3*out.AvgDegree && out.MaxDegree > 10 {
		out.SuspiciousPatterns = append(out.SuspiciousPatterns, PatternStarNetwork)
	}
	out.Strength = math.Min(1, float64(len(out.SuspiciousPatterns))/3)
	return out
}

// amplification records hashtags whose posts all land inside a short window.
func (d *CoordinationDetector) amplification(posts []models.Post) Amplification {
	out := emptyAmplification()

	groups := make(map[string][]*models.Post)
	order := make([]string, 0)
	for i := range posts {
		seen := make(map[string]struct{}, len(posts[i].Hashtags))
		for _, h := range posts[i].Hashtags {
			tag := normalizeHashtag(h)
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			if _, ok := groups[tag]; !ok {
				order = append(order, tag)
			}
			groups[tag] = append(groups[tag], &posts[i])
		}
	}
	out.HashtagGroups = len(groups)
	if len(groups) == 0 {
		return out
	}

	for _, tag := range order {
		group := groups[tag]
		if len(group) < d.config.AmplificationMinPosts {
			continue
		}
		times := make([]time.Time, 0, len(group))
		for _, p := range group {
			if p.HasTimestamp() {
				times = append(times, p.PostedAt.Time)
			}
		}
		if len(times) < d.config.AmplificationMinPosts {
			continue
		}
		sortTimes(times)
		span := times[len(times)-1].Sub(times[0]).Hours()
		if span >= d.config.AmplificationWindowHours {
			continue
		}
		out.Events = append(out.Events, AmplificationEvent{
			Hashtag:       tag,
			PostCount:     len(group),
			TimeSpanHours: span,
			Rate:          float64(len(group)) / math.Max(1, span),
		})
	}
	out.Strength = clamp01(float64(len(out.Events)) / float64(len(groups)))
	return out
}
