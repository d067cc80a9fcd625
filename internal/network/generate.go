package network

import (
	"fmt"
	"math/rand"
	"sort"
)

// Generate builds a Watts-Strogatz small-world graph: a ring lattice where
// every node is connected to its kDegree nearest neighbors (kDegree/2 on each
// side), with each lattice edge independently rewired with probability
// rewiringProb to a uniformly random target. Self-loops and parallel edges are
// never produced. The result is deterministic for a given rng state.
func Generate(n, kDegree int, rewiringProb float64, rng *rand.Rand) (*Graph, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: node count must be > 0, got %d", ErrInvalidParameter, n)
	}
	if kDegree < 0 || kDegree%2 != 0 {
		return nil, fmt.Errorf("%w: k degree must be even and >= 0, got %d", ErrInvalidParameter, kDegree)
	}
	if kDegree >= n {
		return nil, fmt.Errorf("%w: k degree must be < node count, got k=%d n=%d", ErrInvalidParameter, kDegree, n)
	}
	if n < kDegree+1 {
		return nil, fmt.Errorf("%w: node count must be >= k degree + 1, got k=%d n=%d", ErrInvalidParameter, kDegree, n)
	}
	if rewiringProb < 0 || rewiringProb > 1 {
		return nil, fmt.Errorf("%w: rewiring probability must be in [0,1], got %g", ErrInvalidParameter, rewiringProb)
	}

	edges := make([]map[int]struct{}, n)
	for i := range edges {
		edges[i] = make(map[int]struct{}, kDegree)
	}
	addEdge := func(u, v int) {
		edges[u][v] = struct{}{}
		edges[v][u] = struct{}{}
	}
	removeEdge := func(u, v int) {
		delete(edges[u], v)
		delete(edges[v], u)
	}

	// Ring lattice: node i connects to i+1..i+k/2 (mod n).
	for j := 1; j <= kDegree/2; j++ {
		for i := 0; i < n; i++ {
			addEdge(i, (i+j)%n)
		}
	}

	// Rewire each lattice edge (i, i+j) with probability p, keeping i as one
	// endpoint and redrawing the other uniformly. A node already connected to
	// every other node keeps its edge as is.
	for j := 1; j <= kDegree/2; j++ {
		for i := 0; i < n; i++ {
			if rng.Float64() >= rewiringProb {
				continue
			}
			if len(edges[i]) >= n-1 {
				continue
			}
			target := rng.Intn(n)
			for target == i || hasEdge(edges, i, target) {
				target = rng.Intn(n)
			}
			removeEdge(i, (i+j)%n)
			addEdge(i, target)
		}
	}

	adj := make([][]int, n)
	for i := range edges {
		neighbors := make([]int, 0, len(edges[i]))
		for v := range edges[i] {
			neighbors = append(neighbors, v)
		}
		sort.Ints(neighbors)
		adj[i] = neighbors
	}
	return &Graph{adj: adj}, nil
}

func hasEdge(edges []map[int]struct{}, u, v int) bool {
	_, ok := edges[u][v]
	return ok
}
