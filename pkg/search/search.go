// Package search implements the three composable policies around
// any priority queue: Search and OwnedLookup enforce true decrease-key,
// NoLookup trades memory for lazy deletion. Each wraps a pqueue value and
// a vertex meta map behind the uniform Shell interface the Dijkstra driver
// (pkg/dijkstra) consumes.
package search

import (
	"spalgo/pkg/dimacs"
	"spalgo/pkg/pqueue"
)

// defaultMetaCapacity pre-sizes a shell's meta map, mirroring the
// addressable heap's defaultLookupCapacity so typical DIMACS-sized
// searches don't churn the map mid-run.
const defaultMetaCapacity = 1 << 12

// Shell is the uniform contract the Dijkstra driver runs against,
// satisfied by Search, OwnedLookup, and NoLookup regardless of which
// queue flavor backs them.
type Shell interface {
	// PopMin extracts and settles the next vertex. ok is false once the
	// underlying queue (and, for NoLookup, every stale duplicate in it)
	// is exhausted.
	PopMin() (pqueue.Item, bool)
	// Explore relaxes the edge (from, e.To) given from's settled key.
	Explore(from dimacs.Vertex, keyFrom uint32, e dimacs.Neighbor)
	// Dist reports v's distance: for Search and OwnedLookup the current
	// best-known (eventually final) key; for NoLookup only once v is
	// settled, with ok false while v is still tentative.
	Dist(v dimacs.Vertex) (uint32, bool)
	// Prev reports v's predecessor on its shortest path from the source.
	// Prev(source) == source.
	Prev(v dimacs.Vertex) (dimacs.Vertex, bool)
}

// searchEntry is Search's meta record: (handle, dist, prev).
type searchEntry struct {
	ref  pqueue.Ref
	dist uint32
	prev dimacs.Vertex
}

// Search is the shell for queues with true decrease-key where the shell
// itself holds the handle external to the queue. The handle is
// nulled on pop so a later DecreaseKey on an already-settled vertex is a
// no-op rather than resurrecting a popped node.
type Search[Q pqueue.DecreaseKey] struct {
	q    Q
	meta map[dimacs.Vertex]*searchEntry
}

// NewSearch wraps q (already constructed via its own From-equivalent
// constructor, preloaded with (key=0, source)) in a Search shell.
func NewSearch[Q pqueue.DecreaseKey](source dimacs.Vertex, q Q) *Search[Q] {
	s := &Search[Q]{q: q, meta: make(map[dimacs.Vertex]*searchEntry, defaultMetaCapacity)}
	// NullRef doubles as "already settled": a self-loop or an edge back
	// into the source can never relax it, so marking it pre-invalidated
	// up front needs no special case in Explore or PopMin.
	s.meta[source] = &searchEntry{ref: pqueue.NullRef, dist: 0, prev: source}
	return s
}

func (s *Search[Q]) Explore(from dimacs.Vertex, keyFrom uint32, e dimacs.Neighbor) {
	alt := dimacs.AddSat(keyFrom, e.Weight)
	entry, ok := s.meta[e.To]
	if !ok {
		ref := s.q.Push(alt, e.To)
		s.meta[e.To] = &searchEntry{ref: ref, dist: alt, prev: from}
		return
	}
	if entry.ref == pqueue.NullRef {
		return
	}
	if alt < entry.dist {
		s.q.DecreaseKey(entry.ref, alt)
		entry.dist = alt
		entry.prev = from
	}
}

func (s *Search[Q]) PopMin() (pqueue.Item, bool) {
	item, ok := s.q.Pop()
	if !ok {
		return pqueue.Item{}, false
	}
	if entry, exists := s.meta[item.Value]; exists {
		entry.ref = pqueue.NullRef
	}
	return item, true
}

func (s *Search[Q]) Dist(v dimacs.Vertex) (uint32, bool) {
	entry, ok := s.meta[v]
	if !ok {
		return 0, false
	}
	return entry.dist, true
}

func (s *Search[Q]) Prev(v dimacs.Vertex) (dimacs.Vertex, bool) {
	entry, ok := s.meta[v]
	if !ok {
		return 0, false
	}
	return entry.prev, true
}

// ownedEntry is OwnedLookup's meta record: (dist, prev) — no handle, since
// the queue addresses its own items by vertex.
type ownedEntry struct {
	dist uint32
	prev dimacs.Vertex
}

// OwnedLookup is the shell for queues whose own vertex->position lookup
// doubles as the decrease-key handle: DecreaseKey is called with
// the vertex itself, so the shell never tracks a separate Ref.
type OwnedLookup[Q pqueue.DecreaseKey] struct {
	q    Q
	meta map[dimacs.Vertex]*ownedEntry
}

// NewOwnedLookup wraps q, already preloaded with (key=0, source).
func NewOwnedLookup[Q pqueue.DecreaseKey](source dimacs.Vertex, q Q) *OwnedLookup[Q] {
	o := &OwnedLookup[Q]{q: q, meta: make(map[dimacs.Vertex]*ownedEntry, defaultMetaCapacity)}
	o.meta[source] = &ownedEntry{dist: 0, prev: source}
	return o
}

func (o *OwnedLookup[Q]) Explore(from dimacs.Vertex, keyFrom uint32, e dimacs.Neighbor) {
	alt := dimacs.AddSat(keyFrom, e.Weight)
	entry, ok := o.meta[e.To]
	if !ok {
		o.q.Push(alt, e.To)
		o.meta[e.To] = &ownedEntry{dist: alt, prev: from}
		return
	}
	if alt < entry.dist {
		o.q.DecreaseKey(pqueue.Ref(e.To), alt)
		entry.dist = alt
		entry.prev = from
	}
}

func (o *OwnedLookup[Q]) PopMin() (pqueue.Item, bool) {
	return o.q.Pop()
}

func (o *OwnedLookup[Q]) Dist(v dimacs.Vertex) (uint32, bool) {
	entry, ok := o.meta[v]
	if !ok {
		return 0, false
	}
	return entry.dist, true
}

func (o *OwnedLookup[Q]) Prev(v dimacs.Vertex) (dimacs.Vertex, bool) {
	entry, ok := o.meta[v]
	if !ok {
		return 0, false
	}
	return entry.prev, true
}

// noLookupEntry is NoLookup's meta record. settled is nil until the
// vertex's first accepted pop; best is the cheapest key pushed so far,
// tracked so only improving relaxations enqueue (and re-point prev).
type noLookupEntry struct {
	settled *uint32
	best    uint32
	prev    dimacs.Vertex
}

// NoLookup is the shell for any queue, decrease-key-capable or not: it
// never removes a superseded entry, it pushes every improving relaxation
// and filters stale pops by consulting meta (lazy deletion).
type NoLookup[Q pqueue.PriorityQueue] struct {
	q    Q
	meta map[dimacs.Vertex]*noLookupEntry
}

// NewNoLookup wraps q, already preloaded with (key=0, source).
func NewNoLookup[Q pqueue.PriorityQueue](source dimacs.Vertex, q Q) *NoLookup[Q] {
	n := &NoLookup[Q]{q: q, meta: make(map[dimacs.Vertex]*noLookupEntry, defaultMetaCapacity)}
	n.meta[source] = &noLookupEntry{prev: source}
	return n
}

func (n *NoLookup[Q]) Explore(from dimacs.Vertex, keyFrom uint32, e dimacs.Neighbor) {
	alt := dimacs.AddSat(keyFrom, e.Weight)
	entry, ok := n.meta[e.To]
	if !ok {
		n.q.Push(alt, e.To)
		n.meta[e.To] = &noLookupEntry{best: alt, prev: from}
		return
	}
	if entry.settled != nil || alt >= entry.best {
		return
	}
	n.q.Push(alt, e.To)
	entry.best = alt
	entry.prev = from
}

func (n *NoLookup[Q]) PopMin() (pqueue.Item, bool) {
	for {
		item, ok := n.q.Pop()
		if !ok {
			return pqueue.Item{}, false
		}
		entry, exists := n.meta[item.Value]
		if !exists {
			// Every pushed vertex has a meta entry by construction; this
			// only guards a queue implementation bug.
			entry = &noLookupEntry{prev: item.Value}
			n.meta[item.Value] = entry
		}
		if entry.settled != nil {
			continue // stale duplicate, already settled
		}
		key := item.Key
		entry.settled = &key
		return item, true
	}
}

func (n *NoLookup[Q]) Dist(v dimacs.Vertex) (uint32, bool) {
	entry, ok := n.meta[v]
	if !ok || entry.settled == nil {
		return 0, false
	}
	return *entry.settled, true
}

func (n *NoLookup[Q]) Prev(v dimacs.Vertex) (dimacs.Vertex, bool) {
	entry, ok := n.meta[v]
	if !ok {
		return 0, false
	}
	return entry.prev, true
}
