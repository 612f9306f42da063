package graph

import "spalgo/pkg/dimacs"

// BiGraph pairs a Graph with its edge-reversed twin, used by bidirectional
// search (SP_bi): Forward explores from the source, Backward explores from
// the target along reversed edges.
type BiGraph struct {
	Forward  *Graph
	Backward *Graph
}

// BuildBi constructs both directions from a single edge stream.
func BuildBi(n int, edges []dimacs.Edge) *BiGraph {
	forward := Build(n, edges)
	return &BiGraph{Forward: forward, Backward: forward.Reversed()}
}
