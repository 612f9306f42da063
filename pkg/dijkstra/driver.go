// Package dijkstra implements the generic main loop and the three query
// entry points that consume a search.Shell: all-targets (SSSP),
// early-terminating single-pair (SPNaiv), and bidirectional single-pair
// (SPBi), plus predecessor-chain path reconstruction.
package dijkstra

import (
	"errors"

	"spalgo/pkg/dimacs"
	"spalgo/pkg/graph"
	"spalgo/pkg/search"
)

// ErrNoRoute is returned by callers that need an error rather than a
// plain not-found bool, in the errors.New sentinel-error style.
var ErrNoRoute = errors.New("dijkstra: no route found")

// maxKey is the saturating-arithmetic "infinity" sentinel, and also the
// lower-bound proxy used once a bidirectional search side's queue empties.
const maxKey = ^uint32(0)

// SSSP drains shell to completion, exploring every popped vertex's
// outgoing edges in g. The result lives in shell's own meta, queryable
// via shell.Dist and shell.Prev (or GetPath).
func SSSP(shell search.Shell, g *graph.Graph) {
	for {
		item, ok := shell.PopMin()
		if !ok {
			return
		}
		for n := range g.Neighbors(item.Value) {
			shell.Explore(item.Value, item.Key, n)
		}
	}
}

// SPNaiv runs shell exactly like SSSP but stops at target's first pop,
// returning its route. ok is false if target is unreachable (the queue
// emptied first).
func SPNaiv(shell search.Shell, target dimacs.Vertex, g *graph.Graph) (*Route, bool) {
	for {
		item, ok := shell.PopMin()
		if !ok {
			return nil, false
		}
		if item.Value == target {
			route, _ := GetPath(shell, target)
			return route, true
		}
		for n := range g.Neighbors(item.Value) {
			shell.Explore(item.Value, item.Key, n)
		}
	}
}

// GetPath walks predecessor links from target until it reaches a vertex
// that is its own predecessor (the shell's source). ok is
// false if target has no recorded distance.
func GetPath(shell search.Shell, target dimacs.Vertex) (*Route, bool) {
	if _, ok := shell.Dist(target); !ok {
		return nil, false
	}
	vertices := []dimacs.Vertex{target}
	cur := target
	for {
		prev, ok := shell.Prev(cur)
		if !ok {
			return nil, false
		}
		if prev == cur {
			break
		}
		vertices = append(vertices, prev)
		cur = prev
	}
	return &Route{vertices: vertices}, true
}

// SPBi runs two shells concurrently against bg's two directions (one
// from the source over bg.Forward, one from the target over
// bg.Backward), alternating pops and checking for a meeting point after
// every relaxation. It stops once each side's last-popped key on its own
// has reached the best candidate found so far (which also puts their sum
// at or above it) — the last-popped key is a safe lower bound for every
// key still in that side's queue, since extraction is monotone.
func SPBi(sourceShell, targetShell search.Shell, bg *graph.BiGraph) (uint32, *Route, bool) {
	bestLen := maxKey
	bridge := dimacs.UNDEFINED

	relax := func(thisShell, otherShell search.Shell, g *graph.Graph, key uint32, u dimacs.Vertex) {
		if otherDist, ok := otherShell.Dist(u); ok {
			if candidate := dimacs.AddSat(key, otherDist); candidate < bestLen {
				bestLen = candidate
				bridge = u
			}
		}
		for n := range g.Neighbors(u) {
			thisShell.Explore(u, key, n)
			if otherDist, ok := otherShell.Dist(n.To); ok {
				candidate := dimacs.AddSat(dimacs.AddSat(key, n.Weight), otherDist)
				if candidate < bestLen {
					bestLen = candidate
					bridge = n.To
				}
			}
		}
	}

	var lastFwd, lastBwd uint32
	var fwdDone, bwdDone bool

	for !(fwdDone && bwdDone) {
		if lastFwd >= bestLen && lastBwd >= bestLen {
			break
		}
		if !fwdDone {
			item, ok := sourceShell.PopMin()
			if !ok {
				fwdDone = true
				lastFwd = maxKey
			} else {
				lastFwd = item.Key
				relax(sourceShell, targetShell, bg.Forward, item.Key, item.Value)
			}
		}
		if !bwdDone {
			item, ok := targetShell.PopMin()
			if !ok {
				bwdDone = true
				lastBwd = maxKey
			} else {
				lastBwd = item.Key
				relax(targetShell, sourceShell, bg.Backward, item.Key, item.Value)
			}
		}
	}

	if bridge == dimacs.UNDEFINED && bestLen == maxKey {
		return 0, nil, false
	}

	forwardRoute, ok := GetPath(sourceShell, bridge)
	if !ok {
		return 0, nil, false
	}
	backwardRoute, ok := GetPath(targetShell, bridge)
	if !ok {
		return 0, nil, false
	}
	path := forwardRoute.Reverse().Concat(backwardRoute.DropLeading())
	return bestLen, path, true
}
