package pqueue

import "spalgo/pkg/dimacs"

// noRef is the pairing heap's internal "no node" sentinel, distinct from
// (but numerically compatible with) the public NullRef: truncating
// NullRef's all-ones 64 bits to 32 bits yields exactly noRef, so a
// DecreaseKey call carrying NullRef is rejected by the same check that
// rejects an index past the end of the arena. Arena slots are never freed.
const noRef = ^uint32(0)

// pairingNode is one arena slot: a heap-ordered multiway tree node
// addressed by index instead of pointer, so decrease-key's splice-and-
// reattach is plain index surgery with no shared node ownership.
type pairingNode struct {
	value               dimacs.Vertex
	key                 uint32
	parent, child, next uint32
}

// PairingHeap is the addressable pairing heap: O(1) push via
// auxiliary-list prepend, pop amortized O(log n) via a two-stage pairing
// pass. It keeps two root lists instead of one — main, the heap proper,
// and aux, vertices pushed or decrease-keyed since the last pop — so that
// push never touches main's tree, and decrease-key only unlinks the node
// from its parent's child list before moving it to aux.
type PairingHeap struct {
	arena     []pairingNode
	main, aux uint32
}

// NewPairingHeap constructs a pairing heap preloaded with (key=0, source).
func NewPairingHeap(source dimacs.Vertex) *PairingHeap {
	h := &PairingHeap{main: noRef, aux: noRef}
	h.main = h.alloc(source, 0)
	return h
}

func (h *PairingHeap) alloc(v dimacs.Vertex, key uint32) uint32 {
	h.arena = append(h.arena, pairingNode{value: v, key: key, parent: noRef, child: noRef, next: noRef})
	return uint32(len(h.arena) - 1)
}

// IsEmpty consults both root lists: aux holds items pushed or
// decrease-keyed since the last pop, not yet folded into main.
func (h *PairingHeap) IsEmpty() bool { return h.main == noRef && h.aux == noRef }

func (h *PairingHeap) Push(key uint32, value dimacs.Vertex) Ref {
	idx := h.alloc(value, key)
	h.arena[idx].next = h.aux
	h.aux = idx
	return Ref(idx)
}

// DecreaseKey splices the node named by ref out of its parent's child list
// (a linear walk over its siblings, matching the singly linked sibling
// chain) and prepends it to aux, unless it is already a root — of main or
// of aux — in which case lowering its key in place cannot violate heap
// order, since a root was already <= every one of its descendants.
func (h *PairingHeap) DecreaseKey(ref Ref, newKey uint32) {
	target := uint32(ref)
	if target == noRef || int(target) >= len(h.arena) {
		return
	}
	if parent := h.arena[target].parent; parent != noRef {
		siblings := h.arena[target].next
		h.arena[target].parent = noRef
		if h.arena[parent].child == target {
			h.arena[parent].child = siblings
		} else {
			curr := h.arena[parent].child
			for h.arena[curr].next != target {
				curr = h.arena[curr].next
			}
			h.arena[curr].next = siblings
		}
		h.arena[target].next = h.aux
		h.aux = target
	}
	h.arena[target].key = newKey
}

// Pop folds aux into main and extracts the new minimum's root.
//
// Per pop: fold aux into a single tree via multipass, then combine it with
// main as one more pairing step. The popped root's children scatter into
// their own list, which becomes the new main via a two-pass (front-to-back
// second round) reduction — the other valid reduction order, back-to-front,
// would do just as well; front-to-back is the one implemented here.
func (h *PairingHeap) Pop() (Item, bool) {
	auxJoined := h.multipass(h.aux)
	h.aux = noRef

	var combine uint32
	if h.main != noRef {
		h.arena[h.main].next = auxJoined
		combine, _ = h.mergePair(h.main)
	} else {
		combine = auxJoined
	}

	if combine == noRef {
		h.main = noRef
		return Item{}, false
	}

	top := h.arena[combine]
	scattered := top.child
	h.arena[combine].child = noRef
	for c := scattered; c != noRef; c = h.arena[c].next {
		h.arena[c].parent = noRef
	}

	h.main = h.twoPass(scattered)
	return Item{Key: top.key, Value: top.value}, true
}

// mergePair merges the first two trees of the sibling list headed by
// first, attaching the larger-keyed root as the new leftmost child of the
// smaller-keyed one. It returns the merged root and the unconsumed
// remainder of the list (first.next.next), or (first, noRef) if first has
// no sibling to pair with.
func (h *PairingHeap) mergePair(first uint32) (merged, remainder uint32) {
	if first == noRef {
		return noRef, noRef
	}
	a := first
	if h.arena[a].next == noRef {
		return a, noRef
	}
	b := h.arena[a].next
	remainder = h.arena[b].next
	if h.arena[a].key < h.arena[b].key {
		child := h.arena[a].child
		h.arena[b].next = child
		h.arena[b].parent = a
		h.arena[a].child = b
		h.arena[a].next = remainder
		return a, remainder
	}
	child := h.arena[b].child
	h.arena[a].next = child
	h.arena[a].parent = b
	h.arena[b].child = a
	return b, remainder
}

// multipass reduces a sibling list to one tree by repeatedly pairing
// consecutive siblings into a smaller "next round" list, looping until a
// round consumes the whole list in one pair (or the list was empty).
func (h *PairingHeap) multipass(start uint32) uint32 {
	current := start
	nextRound := noRef
	for {
		merged, remainder := h.mergePair(current)
		if merged == noRef {
			return noRef
		}
		if remainder == noRef {
			if nextRound == noRef {
				return merged
			}
			h.arena[merged].next = nextRound
			current = merged
			nextRound = noRef
			continue
		}
		h.arena[merged].next = nextRound
		nextRound = merged
		current = remainder
	}
}

// twoPass runs one left-to-right pairing round collecting merged roots
// into a second-round list, then reduces that second round strictly
// front-to-back via mergeFrontToBack.
func (h *PairingHeap) twoPass(start uint32) uint32 {
	current := start
	secondRound := noRef
	for {
		merged, remainder := h.mergePair(current)
		if merged == noRef {
			return noRef
		}
		if remainder == noRef {
			if secondRound == noRef {
				return merged
			}
			h.arena[merged].next = secondRound
			return h.mergeFrontToBack(merged)
		}
		h.arena[merged].next = secondRound
		secondRound = merged
		current = remainder
	}
}

// mergeFrontToBack reduces a sibling list to one tree by always merging
// the current head with its immediate neighbor, left to right.
func (h *PairingHeap) mergeFrontToBack(start uint32) uint32 {
	current := start
	for {
		merged, remainder := h.mergePair(current)
		current = merged
		if remainder == noRef {
			return current
		}
	}
}
