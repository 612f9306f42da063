package dijkstra

import "spalgo/pkg/dimacs"

// Route is a reconstructed sequence of vertices in traversal order: the
// vertex GetPath was called with comes first, the shell's source comes
// last.
type Route struct {
	vertices []dimacs.Vertex
}

// Vertices returns the route's vertices in traversal order. The caller
// must not mutate the returned slice.
func (r *Route) Vertices() []dimacs.Vertex {
	return r.vertices
}

func (r *Route) Len() int {
	if r == nil {
		return 0
	}
	return len(r.vertices)
}

// Reverse returns a new Route with vertices in the opposite order.
func (r *Route) Reverse() *Route {
	out := make([]dimacs.Vertex, len(r.vertices))
	n := len(r.vertices)
	for i, v := range r.vertices {
		out[n-1-i] = v
	}
	return &Route{vertices: out}
}

// DropLeading returns a new Route with its first vertex removed. Used
// when joining two routes that both name the bridge vertex, so the
// concatenation doesn't repeat it.
func (r *Route) DropLeading() *Route {
	if len(r.vertices) == 0 {
		return &Route{}
	}
	out := make([]dimacs.Vertex, len(r.vertices)-1)
	copy(out, r.vertices[1:])
	return &Route{vertices: out}
}

// Concat returns a new Route with other's vertices appended after r's.
func (r *Route) Concat(other *Route) *Route {
	out := make([]dimacs.Vertex, 0, len(r.vertices)+len(other.vertices))
	out = append(out, r.vertices...)
	out = append(out, other.vertices...)
	return &Route{vertices: out}
}
