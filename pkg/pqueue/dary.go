package pqueue

import "spalgo/pkg/dimacs"

// DaryHeapSimple is a lookup-free d-ary implicit binary-array heap: the
// NoLookup shell's queue. It never looks up a vertex's position, so pushing
// a vertex already present just adds a duplicate entry; stale duplicates
// are filtered by the shell on pop. Push's returned Ref is degenerate — the
// vertex value itself — since this flavor has no DecreaseKey.
type DaryHeapSimple struct {
	arity int
	items []Item
}

func newDaryHeapSimple(arity int, source dimacs.Vertex) *DaryHeapSimple {
	return &DaryHeapSimple{arity: arity, items: []Item{{Key: 0, Value: source}}}
}

// NewBinaryHeapSimple, NewQuaternaryHeapSimple, NewOctaryHeapSimple, and
// NewHexadecimaryHeapSimple construct the lookup-free d-ary queue at
// arity 2, 4, 8, and 16 respectively.
func NewBinaryHeapSimple(source dimacs.Vertex) *DaryHeapSimple {
	return newDaryHeapSimple(2, source)
}
func NewQuaternaryHeapSimple(source dimacs.Vertex) *DaryHeapSimple {
	return newDaryHeapSimple(4, source)
}
func NewOctaryHeapSimple(source dimacs.Vertex) *DaryHeapSimple {
	return newDaryHeapSimple(8, source)
}
func NewHexadecimaryHeapSimple(source dimacs.Vertex) *DaryHeapSimple {
	return newDaryHeapSimple(16, source)
}

func (h *DaryHeapSimple) IsEmpty() bool { return len(h.items) == 0 }

func (h *DaryHeapSimple) Push(key uint32, value dimacs.Vertex) Ref {
	h.items = append(h.items, Item{Key: key, Value: value})
	h.bubbleUp(len(h.items) - 1)
	return Ref(value)
}

func (h *DaryHeapSimple) Pop() (Item, bool) {
	n := len(h.items)
	if n == 0 {
		return Item{}, false
	}
	min := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.bubbleDown(0)
	}
	return min, true
}

func (h *DaryHeapSimple) bubbleUp(i int) {
	for i > 0 {
		parent := (i - 1) / h.arity
		if h.items[parent].Key <= h.items[i].Key {
			return
		}
		h.items[parent], h.items[i] = h.items[i], h.items[parent]
		i = parent
	}
}

func (h *DaryHeapSimple) bubbleDown(i int) {
	n := len(h.items)
	for {
		base := i*h.arity + 1
		if base >= n {
			return
		}
		end := base + h.arity
		if end > n {
			end = n
		}
		smallest := base
		for c := base + 1; c < end; c++ {
			if h.items[c].Key < h.items[smallest].Key {
				smallest = c
			}
		}
		if h.items[smallest].Key >= h.items[i].Key {
			return
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// defaultLookupCapacity pre-sizes an addressable heap's vertex->index
// lookup to a sensible default, avoiding growth churn mid-search for
// typical DIMACS road instances without requiring callers to pass n.
const defaultLookupCapacity = 1 << 12

// DaryHeapAddressable is the decrease-key-capable d-ary heap: the
// Search/OwnedLookup shells' queue. It keeps a vertex->array-index map
// alongside the implicit heap so DecreaseKey can locate and re-sift an
// item in O(log n) instead of needing a linear scan.
type DaryHeapAddressable struct {
	arity  int
	items  []Item
	lookup map[dimacs.Vertex]int
}

func newDaryHeapAddressable(arity int, source dimacs.Vertex) *DaryHeapAddressable {
	h := &DaryHeapAddressable{
		arity:  arity,
		items:  []Item{{Key: 0, Value: source}},
		lookup: make(map[dimacs.Vertex]int, defaultLookupCapacity),
	}
	h.lookup[source] = 0
	return h
}

// NewBinaryHeap, NewQuaternaryHeap, NewOctaryHeap, and NewHexadecimaryHeap
// construct the addressable d-ary queue at arity 2, 4, 8, and 16
// respectively.
func NewBinaryHeap(source dimacs.Vertex) *DaryHeapAddressable {
	return newDaryHeapAddressable(2, source)
}
func NewQuaternaryHeap(source dimacs.Vertex) *DaryHeapAddressable {
	return newDaryHeapAddressable(4, source)
}
func NewOctaryHeap(source dimacs.Vertex) *DaryHeapAddressable {
	return newDaryHeapAddressable(8, source)
}
func NewHexadecimaryHeap(source dimacs.Vertex) *DaryHeapAddressable {
	return newDaryHeapAddressable(16, source)
}

func (h *DaryHeapAddressable) IsEmpty() bool { return len(h.items) == 0 }

func (h *DaryHeapAddressable) Push(key uint32, value dimacs.Vertex) Ref {
	h.items = append(h.items, Item{Key: key, Value: value})
	idx := len(h.items) - 1
	h.lookup[value] = idx
	h.bubbleUp(idx)
	return Ref(value)
}

// DecreaseKey relocates the item named by ref (a vertex id) to newKey and
// re-sifts it upward. A ref naming a vertex no longer in the heap — already
// popped, or pqueue.NullRef — is a safe no-op.
func (h *DaryHeapAddressable) DecreaseKey(ref Ref, newKey uint32) {
	idx, ok := h.lookup[dimacs.Vertex(ref)]
	if !ok {
		return
	}
	h.items[idx].Key = newKey
	h.bubbleUp(idx)
}

func (h *DaryHeapAddressable) Pop() (Item, bool) {
	n := len(h.items)
	if n == 0 {
		return Item{}, false
	}
	min := h.items[0]
	delete(h.lookup, min.Value)
	last := h.items[n-1]
	h.items[0] = last
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.lookup[last.Value] = 0
		h.bubbleDown(0)
	}
	return min, true
}

func (h *DaryHeapAddressable) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.lookup[h.items[i].Value] = i
	h.lookup[h.items[j].Value] = j
}

func (h *DaryHeapAddressable) bubbleUp(i int) {
	for i > 0 {
		parent := (i - 1) / h.arity
		if h.items[parent].Key <= h.items[i].Key {
			return
		}
		h.swap(parent, i)
		i = parent
	}
}

func (h *DaryHeapAddressable) bubbleDown(i int) {
	n := len(h.items)
	for {
		base := i*h.arity + 1
		if base >= n {
			return
		}
		end := base + h.arity
		if end > n {
			end = n
		}
		smallest := base
		for c := base + 1; c < end; c++ {
			if h.items[c].Key < h.items[smallest].Key {
				smallest = c
			}
		}
		if h.items[smallest].Key >= h.items[i].Key {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}
