package network

import "errors"

// ErrInvalidParameter marks malformed construction parameters. Failures
// surface at construction time, never mid-run.
var ErrInvalidParameter = errors.New("invalid parameter")

// Graph is an undirected simple graph with a fixed node set. The topology is
// immutable once built; nodes are indexed 0..n-1.
type Graph struct {
	adj [][]int
}

func (g *Graph) NodeCount() int {
	return len(g.adj)
}

func (g *Graph) EdgeCount() int {
	total := 0
	for _, neighbors := range g.adj {
		total += len(neighbors)
	}
	return total / 2
}

func (g *Graph) Degree(node int) int {
	if node < 0 || node >= len(g.adj) {
		return 0
	}
	return len(g.adj[node])
}

// Neighbors returns the adjacency list of node in ascending order. The
// returned slice is owned by the graph and must not be mutated.
func (g *Graph) Neighbors(node int) []int {
	if node < 0 || node >= len(g.adj) {
		return nil
	}
	return g.adj[node]
}

func (g *Graph) HasEdge(u, v int) bool {
	if u < 0 || u >= len(g.adj) {
		return false
	}
	for _, w := range g.adj[u] {
		if w == v {
			return true
		}
	}
	return false
}
