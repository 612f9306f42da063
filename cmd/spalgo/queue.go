package main

import (
	"fmt"

	"spalgo/pkg/dimacs"
	"spalgo/pkg/pqueue"
	"spalgo/pkg/search"
)

// newDecreaseKeyQueue constructs the addressable queue flavor named by
// name, preloaded at source. Used by the Search and OwnedLookup shells,
// both of which require DecreaseKey.
func newDecreaseKeyQueue(name string, source dimacs.Vertex) (pqueue.DecreaseKey, error) {
	switch name {
	case "binary":
		return pqueue.NewBinaryHeap(source), nil
	case "quaternary":
		return pqueue.NewQuaternaryHeap(source), nil
	case "octary":
		return pqueue.NewOctaryHeap(source), nil
	case "hexadecimary":
		return pqueue.NewHexadecimaryHeap(source), nil
	case "pairing":
		return pqueue.NewPairingHeap(source), nil
	default:
		return nil, fmt.Errorf("unknown decrease-key queue %q (want binary, quaternary, octary, hexadecimary, pairing)", name)
	}
}

// newAnyQueue constructs any queue flavor named by name, preloaded at
// source. Used by the NoLookup shell, which imposes no DecreaseKey
// requirement.
func newAnyQueue(name string, source dimacs.Vertex) (pqueue.PriorityQueue, error) {
	switch name {
	case "binary":
		return pqueue.NewBinaryHeapSimple(source), nil
	case "quaternary":
		return pqueue.NewQuaternaryHeapSimple(source), nil
	case "octary":
		return pqueue.NewOctaryHeapSimple(source), nil
	case "hexadecimary":
		return pqueue.NewHexadecimaryHeapSimple(source), nil
	case "sorted":
		return pqueue.NewSortedList(source), nil
	default:
		return nil, fmt.Errorf("unknown queue %q (want binary, quaternary, octary, hexadecimary, sorted)", name)
	}
}

// newShell builds a search.Shell of the given shellName ("search",
// "owned", or "nolookup") backed by the queue flavor queueName.
func newShell(shellName, queueName string, source dimacs.Vertex) (search.Shell, error) {
	switch shellName {
	case "search":
		q, err := newDecreaseKeyQueue(queueName, source)
		if err != nil {
			return nil, err
		}
		return search.NewSearch(source, q), nil
	case "owned":
		q, err := newDecreaseKeyQueue(queueName, source)
		if err != nil {
			return nil, err
		}
		return search.NewOwnedLookup(source, q), nil
	case "nolookup":
		q, err := newAnyQueue(queueName, source)
		if err != nil {
			return nil, err
		}
		return search.NewNoLookup(source, q), nil
	default:
		return nil, fmt.Errorf("unknown shell %q (want search, owned, nolookup)", shellName)
	}
}
