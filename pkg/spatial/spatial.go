// Package spatial answers nearest-vertex queries over DIMACS
// coordinates: every vertex's planar (x, y) position is indexed in a 2D
// R-tree (github.com/tidwall/rtree) and queried with an expanding-box
// nearest-neighbor search.
package spatial

import (
	"math"

	"github.com/tidwall/rtree"

	"spalgo/pkg/dimacs"
)

// initialSearchRadius is the starting half-width of the expanding-box
// nearest-neighbor search, in the same units as the DIMACS coordinates.
const initialSearchRadius = 1 << 10

// maxDoublings bounds the expanding-box search so a malformed or empty
// index can't loop forever; DIMACS coordinate ranges fit comfortably
// within this many doublings of initialSearchRadius.
const maxDoublings = 64

// Index is a built, queryable nearest-vertex spatial index.
type Index struct {
	tree *rtree.RTreeG[dimacs.Vertex]
	n    int
}

// Build indexes every coordinate in coords. Each vertex is inserted as a
// degenerate (point) rectangle, so a Search hit's bounding box is the
// vertex's own coordinate — no separate coordinate lookup is needed to
// recover it.
func Build(coords []dimacs.Coordinate) *Index {
	tree := &rtree.RTreeG[dimacs.Vertex]{}
	for _, c := range coords {
		p := [2]float64{float64(c.X), float64(c.Y)}
		tree.Insert(p, p, c.Vertex)
	}
	return &Index{tree: tree, n: len(coords)}
}

// Nearest returns the vertex closest to (x, y) by Euclidean distance.
// ok is false iff the index holds no coordinates.
func (idx *Index) Nearest(x, y int64) (vertex dimacs.Vertex, ok bool) {
	if idx.n == 0 {
		return dimacs.UNDEFINED, false
	}

	qx, qy := float64(x), float64(y)
	var best dimacs.Vertex
	bestDistSq := math.Inf(1)
	found := false

	radius := float64(initialSearchRadius)
	for i := 0; i < maxDoublings; i++ {
		min := [2]float64{qx - radius, qy - radius}
		max := [2]float64{qx + radius, qy + radius}

		idx.tree.Search(min, max, func(bmin, _ [2]float64, v dimacs.Vertex) bool {
			dx, dy := bmin[0]-qx, bmin[1]-qy
			d := dx*dx + dy*dy
			if d < bestDistSq {
				bestDistSq = d
				best = v
				found = true
			}
			return true
		})

		// A box of half-width radius guarantees completeness once the
		// best candidate found is no farther than radius: any point
		// outside the box is at least radius away on some axis, so it
		// cannot be closer than what's already been found.
		if found && math.Sqrt(bestDistSq) <= radius {
			return best, true
		}
		radius *= 2
	}
	return best, found
}
