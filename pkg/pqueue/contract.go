// Package pqueue implements the priority-queue family the Dijkstra driver
// runs over: a uniform push/pop/is_empty contract, an optional in-place
// DecreaseKey capability, and interchangeable backing structures: d-ary
// implicit heaps at arity 2/4/8/16, each in a lookup-free "simple" flavor
// and a decrease-key-capable "addressable" flavor, plus an addressable
// pairing heap and a lookup-free sorted list.
package pqueue

import "spalgo/pkg/dimacs"

// Ref is an opaque handle to a pushed item, issued by Push and later
// consumed by DecreaseKey. Its internal meaning (a vertex id, an array
// index, an arena slot) is a property of the concrete queue; callers must
// treat it as opaque.
type Ref uint64

// NullRef is the sentinel "no handle" ref: never issued by a real Push.
// The Search shell stores NullRef in place of a popped vertex's handle so a
// later DecreaseKey attempt on an already-settled vertex is a safe no-op.
const NullRef Ref = ^Ref(0)

// Item is a (key, value) pair as extracted by Pop.
type Item struct {
	Key   uint32
	Value dimacs.Vertex
}

// PriorityQueue is the contract every queue flavor satisfies.
type PriorityQueue interface {
	// IsEmpty reports whether the queue holds no items.
	IsEmpty() bool
	// Push inserts (key, value) and returns a handle usable with
	// DecreaseKey. Queues without decrease-key support still return a
	// Ref — a degenerate one the caller never uses.
	Push(key uint32, value dimacs.Vertex) Ref
	// Pop extracts and returns the minimum-key item. Ties are broken
	// arbitrarily but deterministically within one queue's lifetime. ok
	// is false iff the queue was empty.
	Pop() (item Item, ok bool)
}

// DecreaseKey is the optional capability addressable queues add: lowering
// an in-queue item's key without a remove-then-reinsert.
//
// Precondition: newKey <= the current key named by ref. Violating it is
// undefined behavior: an implementation may silently ignore the
// call or corrupt its internal ordering; it is not required to detect the
// violation.
type DecreaseKey interface {
	PriorityQueue
	DecreaseKey(ref Ref, newKey uint32)
}
