package search_test

import (
	"testing"

	"spalgo/pkg/dimacs"
	"spalgo/pkg/pqueue"
	"spalgo/pkg/search"
)

// shellUnderTest names a shell+queue composition so each scenario can run
// against every combination without duplicating the test body.
type shellUnderTest struct {
	name string
	new  func(source dimacs.Vertex) search.Shell
}

func allShells() []shellUnderTest {
	return []shellUnderTest{
		{"Search/BinaryHeap", func(s dimacs.Vertex) search.Shell { return search.NewSearch(s, pqueue.NewBinaryHeap(s)) }},
		{"Search/QuaternaryHeap", func(s dimacs.Vertex) search.Shell { return search.NewSearch(s, pqueue.NewQuaternaryHeap(s)) }},
		{"Search/OctaryHeap", func(s dimacs.Vertex) search.Shell { return search.NewSearch(s, pqueue.NewOctaryHeap(s)) }},
		{"Search/HexadecimaryHeap", func(s dimacs.Vertex) search.Shell { return search.NewSearch(s, pqueue.NewHexadecimaryHeap(s)) }},
		{"Search/PairingHeap", func(s dimacs.Vertex) search.Shell { return search.NewSearch(s, pqueue.NewPairingHeap(s)) }},
		{"OwnedLookup/BinaryHeap", func(s dimacs.Vertex) search.Shell { return search.NewOwnedLookup(s, pqueue.NewBinaryHeap(s)) }},
		{"OwnedLookup/QuaternaryHeap", func(s dimacs.Vertex) search.Shell { return search.NewOwnedLookup(s, pqueue.NewQuaternaryHeap(s)) }},
		{"OwnedLookup/PairingHeap", func(s dimacs.Vertex) search.Shell { return search.NewOwnedLookup(s, pqueue.NewPairingHeap(s)) }},
		{"NoLookup/BinaryHeapSimple", func(s dimacs.Vertex) search.Shell { return search.NewNoLookup(s, pqueue.NewBinaryHeapSimple(s)) }},
		{"NoLookup/OctaryHeapSimple", func(s dimacs.Vertex) search.Shell { return search.NewNoLookup(s, pqueue.NewOctaryHeapSimple(s)) }},
		{"NoLookup/SortedList", func(s dimacs.Vertex) search.Shell { return search.NewNoLookup(s, pqueue.NewSortedList(s)) }},
	}
}

// driveRelaxation replays the scenario with edges (1,2,5), (1,3,1),
// (3,2,1): a later, cheaper path to vertex 2 must supersede the earlier
// expensive one, whether by decrease-key or by lazy duplicate filtering.
func driveRelaxation(t *testing.T, shell search.Shell) []pqueue.Item {
	t.Helper()
	var popped []pqueue.Item

	item, ok := shell.PopMin()
	if !ok || item.Value != 1 || item.Key != 0 {
		t.Fatalf("first PopMin = %+v, %v; want (0, 1)", item, ok)
	}
	popped = append(popped, item)
	shell.Explore(1, 0, dimacs.Neighbor{To: 2, Weight: 5})
	shell.Explore(1, 0, dimacs.Neighbor{To: 3, Weight: 1})

	item, ok = shell.PopMin()
	if !ok || item.Value != 3 || item.Key != 1 {
		t.Fatalf("second PopMin = %+v, %v; want (1, 3)", item, ok)
	}
	popped = append(popped, item)
	shell.Explore(3, 1, dimacs.Neighbor{To: 2, Weight: 1})

	for {
		item, ok := shell.PopMin()
		if !ok {
			break
		}
		popped = append(popped, item)
	}
	return popped
}

func TestShellSettlesEachVertexOnceWithBestKey(t *testing.T) {
	for _, sc := range allShells() {
		t.Run(sc.name, func(t *testing.T) {
			shell := sc.new(1)
			popped := driveRelaxation(t, shell)

			if len(popped) != 3 {
				t.Fatalf("settled %d vertices, want 3: %+v", len(popped), popped)
			}
			seen := map[dimacs.Vertex]bool{}
			var lastKey uint32
			for i, item := range popped {
				if seen[item.Value] {
					t.Errorf("vertex %d emitted twice", item.Value)
				}
				seen[item.Value] = true
				if item.Key < lastKey {
					t.Errorf("pop %d key %d below previous %d", i, item.Key, lastKey)
				}
				lastKey = item.Key
			}
			if popped[2].Value != 2 || popped[2].Key != 2 {
				t.Errorf("third pop = %+v, want vertex 2 at key 2", popped[2])
			}
		})
	}
}

func TestShellMetaAfterRun(t *testing.T) {
	for _, sc := range allShells() {
		t.Run(sc.name, func(t *testing.T) {
			shell := sc.new(1)
			driveRelaxation(t, shell)

			wantDist := map[dimacs.Vertex]uint32{1: 0, 2: 2, 3: 1}
			for v, want := range wantDist {
				got, ok := shell.Dist(v)
				if !ok || got != want {
					t.Errorf("Dist(%d) = %d, %v; want %d", v, got, ok, want)
				}
			}
			if _, ok := shell.Dist(99); ok {
				t.Error("Dist(99) reported a distance for an unseen vertex")
			}

			wantPrev := map[dimacs.Vertex]dimacs.Vertex{1: 1, 2: 3, 3: 1}
			for v, want := range wantPrev {
				got, ok := shell.Prev(v)
				if !ok || got != want {
					t.Errorf("Prev(%d) = %d, %v; want %d", v, got, ok, want)
				}
			}
		})
	}
}

func TestSearchShellIgnoresRelaxationOfSettledVertex(t *testing.T) {
	shell := search.NewSearch(1, pqueue.NewBinaryHeap(1))
	driveRelaxation(t, shell)

	// Vertex 2 is settled at key 2; its handle is nulled, so even an
	// (artificially) improving relaxation must leave the meta untouched.
	shell.Explore(1, 0, dimacs.Neighbor{To: 2, Weight: 1})
	if got, _ := shell.Dist(2); got != 2 {
		t.Fatalf("Dist(2) = %d after post-settlement explore, want 2", got)
	}
	if prev, _ := shell.Prev(2); prev != 3 {
		t.Fatalf("Prev(2) = %d after post-settlement explore, want 3", prev)
	}
	if _, ok := shell.PopMin(); ok {
		t.Fatal("post-settlement explore re-queued a settled vertex")
	}
}

func TestNoLookupTracksTentativePredecessorUntilSettled(t *testing.T) {
	shell := search.NewNoLookup(1, pqueue.NewBinaryHeapSimple(1))
	shell.PopMin() // settle source
	shell.Explore(1, 0, dimacs.Neighbor{To: 2, Weight: 5})
	shell.Explore(1, 0, dimacs.Neighbor{To: 3, Weight: 1})

	// Tentative vertices expose no distance yet.
	if _, ok := shell.Dist(2); ok {
		t.Fatal("Dist(2) reported a distance before settlement")
	}

	shell.PopMin() // settles 3 at key 1
	shell.Explore(3, 1, dimacs.Neighbor{To: 2, Weight: 1})
	if prev, _ := shell.Prev(2); prev != 3 {
		t.Fatalf("Prev(2) = %d while tentative, want 3 (improving relaxation)", prev)
	}

	item, ok := shell.PopMin()
	if !ok || item.Value != 2 || item.Key != 2 {
		t.Fatalf("PopMin = %+v, want (2, 2)", item)
	}

	// The stale (5, 2) duplicate is still queued; it must be filtered,
	// not re-emitted, and must not disturb the settled meta.
	if _, ok := shell.PopMin(); ok {
		t.Fatal("stale duplicate emitted after settlement")
	}
	if got, _ := shell.Dist(2); got != 2 {
		t.Fatalf("Dist(2) = %d, want 2", got)
	}
}
