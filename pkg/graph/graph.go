// Package graph builds the undirected token-adjacency structure over a
// persisted token graph and enumerates bounded-length simple paths
// between two tokens, the way original_source/quote-engine/src/core/graph.py
// builds a networkx Graph and calls all_simple_paths.
package graph

import (
	"sort"
	"strings"

	"github.com/solana-zh/dlmm-quote-engine/pkg/store"
)

// TokenGraph is an undirected adjacency structure: each edge {A, B}
// carries the deduplicated union of pool ids trading that pair, taken
// from whichever of "A->B"/"B->A" is populated in the persisted data.
type TokenGraph struct {
	adjacency map[string]map[string][]string // token -> neighbor -> pool ids
}

// Build constructs a TokenGraph from the raw persisted pair->pools map.
// Pool id order within an edge preserves first-seen insertion order
// across both key directions, matching the dedup rule of the source.
func Build(data *store.TokenGraphData) *TokenGraph {
	g := &TokenGraph{adjacency: make(map[string]map[string][]string)}
	if data == nil {
		return g
	}
	keys := make([]string, 0, len(data.TokenPairs))
	for k := range data.TokenPairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, pair := range keys {
		a, b, ok := splitPair(pair)
		if !ok {
			continue
		}
		pools := data.TokenPairs[pair]
		if len(pools) == 0 {
			continue
		}
		g.addEdge(a, b, pools)
	}
	return g
}

func splitPair(pair string) (string, string, bool) {
	parts := strings.SplitN(pair, "->", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (g *TokenGraph) addEdge(a, b string, pools []string) {
	g.ensureVertex(a)
	g.ensureVertex(b)
	g.adjacency[a][b] = dedupeAppend(g.adjacency[a][b], pools)
	g.adjacency[b][a] = dedupeAppend(g.adjacency[b][a], pools)
}

func (g *TokenGraph) ensureVertex(token string) {
	if _, ok := g.adjacency[token]; !ok {
		g.adjacency[token] = make(map[string][]string)
	}
}

func dedupeAppend(existing, additions []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		seen[id] = struct{}{}
	}
	out := existing
	for _, id := range additions {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// HasVertex reports whether token appears in the graph.
func (g *TokenGraph) HasVertex(token string) bool {
	_, ok := g.adjacency[token]
	return ok
}

// EdgePools returns the pool ids trading the unordered pair (a, b), in
// the graph's stored (first-seen) order. Returns nil if no such edge.
func (g *TokenGraph) EdgePools(a, b string) []string {
	neighbors, ok := g.adjacency[a]
	if !ok {
		return nil
	}
	return neighbors[b]
}

// neighborsSorted returns a's neighbor tokens in a deterministic
// (lexical) order, which is what makes EnumeratePaths's DFS order
// reproducible given the same graph.
func (g *TokenGraph) neighborsSorted(a string) []string {
	neighbors := g.adjacency[a]
	out := make([]string, 0, len(neighbors))
	for t := range neighbors {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// EnumeratePaths returns every simple path from input to output with at
// most maxHops edges, as vertex sequences, in a deterministic order (DFS
// over lexically sorted adjacency). A path of a single vertex (input ==
// output) is never produced; callers reject that case one layer up.
func (g *TokenGraph) EnumeratePaths(input, output string, maxHops int) [][]string {
	if !g.HasVertex(input) || !g.HasVertex(output) || input == output || maxHops < 1 {
		return nil
	}
	var paths [][]string
	visited := map[string]bool{input: true}
	path := []string{input}
	var dfs func(current string)
	dfs = func(current string) {
		if len(path)-1 >= maxHops {
			return
		}
		for _, next := range g.neighborsSorted(current) {
			if visited[next] {
				continue
			}
			path = append(path, next)
			if next == output {
				paths = append(paths, append([]string(nil), path...))
			} else {
				visited[next] = true
				dfs(next)
				visited[next] = false
			}
			path = path[:len(path)-1]
		}
	}
	dfs(input)
	return paths
}
