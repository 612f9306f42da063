package pqueue

import (
	"sort"

	"spalgo/pkg/dimacs"
)

// SortedList is the NoLookup shell's simplest queue: a slice kept sorted
// descending by key, so Pop is a tail truncation and Push is an O(n)
// insertion-sort step located by binary search. Like DaryHeapSimple it has
// no decrease-key; stale duplicates are filtered by the shell on pop.
type SortedList struct {
	items []Item
}

// NewSortedList constructs a sorted-list queue preloaded with (key=0, source).
func NewSortedList(source dimacs.Vertex) *SortedList {
	return &SortedList{items: []Item{{Key: 0, Value: source}}}
}

func (s *SortedList) IsEmpty() bool { return len(s.items) == 0 }

func (s *SortedList) Push(key uint32, value dimacs.Vertex) Ref {
	i := sort.Search(len(s.items), func(i int) bool { return s.items[i].Key <= key })
	s.items = append(s.items, Item{})
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = Item{Key: key, Value: value}
	return Ref(value)
}

func (s *SortedList) Pop() (Item, bool) {
	n := len(s.items)
	if n == 0 {
		return Item{}, false
	}
	min := s.items[n-1]
	s.items = s.items[:n-1]
	return min, true
}
