// Package graph holds the read-only adjacency structures the rest of the
// engine searches over: a directed NeighborList and its bidirectional
// pairing, BiGraph, used by bidirectional search.
package graph

import (
	"iter"

	"spalgo/pkg/dimacs"
)

// Graph is an immutable, slot-indexed adjacency list. Slot i holds the neighbors of vertex i+1: Graph.Build
// preserves, within each source vertex's bucket, the insertion order of
// the input edge stream. Built once from an edge stream via Build, then
// read-only for the lifetime of every search over it.
type Graph struct {
	n        int // vertex count; valid vertices are 1..n, slots 0..n-1
	firstOut []uint32
	head     []dimacs.Vertex
	weight   []uint32
}

// Build constructs a Graph over n vertices from an edge stream in O(n+m).
// Parallel edges are preserved; self-loops are kept (Dijkstra ignores them
// naturally since a self-loop can never improve a tentative distance).
func Build(n int, edges []dimacs.Edge) *Graph {
	firstOut := make([]uint32, n+1)
	for _, e := range edges {
		firstOut[e.From.Slot()+1]++
	}
	for i := 1; i <= n; i++ {
		firstOut[i] += firstOut[i-1]
	}

	numEdges := len(edges)
	head := make([]dimacs.Vertex, numEdges)
	weight := make([]uint32, numEdges)

	pos := make([]uint32, n)
	copy(pos, firstOut[:n])
	for _, e := range edges {
		s := e.From.Slot()
		idx := pos[s]
		head[idx] = e.To
		weight[idx] = e.Weight
		pos[s]++
	}

	return &Graph{n: n, firstOut: firstOut, head: head, weight: weight}
}

// NumVertices returns n, the highest valid vertex id.
func (g *Graph) NumVertices() int { return g.n }

// NumEdges returns the total edge count.
func (g *Graph) NumEdges() int { return len(g.head) }

// Neighbors iterates the out-edges of u in their original insertion order.
func (g *Graph) Neighbors(u dimacs.Vertex) iter.Seq[dimacs.Neighbor] {
	s := u.Slot()
	start, end := g.firstOut[s], g.firstOut[s+1]
	head, weight := g.head, g.weight
	return func(yield func(dimacs.Neighbor) bool) {
		for i := start; i < end; i++ {
			if !yield(dimacs.Neighbor{To: head[i], Weight: weight[i]}) {
				return
			}
		}
	}
}

// Bounds returns the [start, end) index range into the flat edge arrays
// for u's out-edges, for callers that want direct array access instead of
// the iterator.
func (g *Graph) Bounds(u dimacs.Vertex) (start, end uint32) {
	s := u.Slot()
	return g.firstOut[s], g.firstOut[s+1]
}

// HeadAt and WeightAt give direct access to edge i's endpoint and weight,
// for use alongside Bounds.
func (g *Graph) HeadAt(i uint32) dimacs.Vertex { return g.head[i] }
func (g *Graph) WeightAt(i uint32) uint32      { return g.weight[i] }

// Reversed builds a new Graph with every edge (u, v, w) replaced by (v, u, w).
func (g *Graph) Reversed() *Graph {
	edges := make([]dimacs.Edge, 0, len(g.head))
	for s := 0; s < g.n; s++ {
		u := dimacs.FromSlot(s)
		start, end := g.firstOut[s], g.firstOut[s+1]
		for i := start; i < end; i++ {
			edges = append(edges, dimacs.Edge{From: g.head[i], To: u, Weight: g.weight[i]})
		}
	}
	return Build(g.n, edges)
}
