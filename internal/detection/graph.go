// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package detection

import (
	"sort"
)

// interactionGraph is an undirected weighted graph over author keys,
// stored as node -> neighbor -> weight. Self loops are never stored.
type interactionGraph struct {
	adj   map[string]map[string]int
	nodes []string
}

func newInteractionGraph() *interactionGraph {
	return &interactionGraph{adj: make(map[string]map[string]int)}
}

func (g *interactionGraph) addNode(id string) {
	if _, ok := g.adj[id]; ok {
		return
	}
	g.adj[id] = make(map[string]int)
	g.nodes = append(g.nodes, id)
}

func (g *interactionGraph) hasNode(id string) bool {
	_, ok := g.adj[id]
	return ok
}

// addInteraction increments the edge weight between a and b.
func (g *interactionGraph) addInteraction(a, b string) {
	if a == b || !g.hasNode(a) || !g.hasNode(b) {
		return
	}
	g.adj[a][b]++
	g.adj[b][a]++
}

func (g *interactionGraph) nodeCount() int { return len(g.nodes) }

func (g *interactionGraph) edgeCount() int {
	total := 0
	for _, nbrs := range g.adj {
		total += len(nbrs)
	}
	return total / 2
}

func (g *interactionGraph) degree(id string) int { return len(g.adj[id]) }

func (g *interactionGraph) density() float64 {
	n := g.nodeCount()
	if n < 2 {
		return 0
	}
	return float64(g.edgeCount()) / pairCount(n)
}

// localClustering is the unweighted clustering coefficient of id: the
// fraction of neighbor pairs that are themselves connected.
func (g *interactionGraph) localClustering(id string) float64 {
	nbrs := g.adj[id]
	k := len(nbrs)
	if k < 2 {
		return 0
	}
	ids := make([]string, 0, k)
	for n := range nbrs {
		ids = append(ids, n)
	}
	links := 0
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if _, ok := g.adj[ids[i]][ids[j]]; ok {
				links++
			}
		}
	}
	return float64(links) / pairCount(k)
}

// averageClustering averages localClustering over all nodes, counting
// nodes of degree < 2 as zero.
func (g *interactionGraph) averageClustering() float64 {
	if g.nodeCount() == 0 {
		return 0
	}
	var sum float64
	for _, id := range g.nodes {
		sum += g.localClustering(id)
	}
	return sum / float64(g.nodeCount())
}

func (g *interactionGraph) connectedComponents() int {
	index := make(map[string]int, len(g.nodes))
	for i, id := range g.nodes {
		index[id] = i
	}
	uf := newUnionFind(len(g.nodes))
	for a, nbrs := range g.adj {
		for b := range nbrs {
			uf.union(index[a], index[b])
		}
	}
	return len(uf.components(1))
}

// degreeDistribution maps degree -> number of nodes with that degree.
func (g *interactionGraph) degreeDistribution() map[int]int {
	dist := make(map[int]int)
	for _, id := range g.nodes {
		dist[g.degree(id)]++
	}
	return dist
}

// topNodes returns up to n node IDs ordered by descending degree.
func (g *interactionGraph) topNodes(n int) []string {
	ids := make([]string, len(g.nodes))
	copy(ids, g.nodes)
	sort.SliceStable(ids, func(i, j int) bool {
		di, dj := g.degree(ids[i]), g.degree(ids[j])
		if di != dj {
			return di > dj
		}
		return ids[i] < ids[j]
	})
	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}
