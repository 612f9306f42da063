// Package apsp computes all-pairs shortest paths via repeated single-source
// Dijkstra, one row per source vertex, fanned out across a persistent
// worker pool. Each worker's per-row Dijkstra runs over a concrete,
// non-generic heap and a touched-list-reset distance array rather than
// the generic pqueue/search abstraction, keeping the hot loop monomorphic
// and allocation-free across rows.
package apsp

import (
	"context"
	"log"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"spalgo/pkg/dimacs"
	"spalgo/pkg/graph"
	"spalgo/pkg/matrix"
)

const maxUint32 = ^uint32(0)

// rowItem is an entry in a row worker's min-heap: a graph slot and its
// tentative distance from the row's source.
type rowItem struct {
	slot uint32
	dist uint32
}

// rowHeap is a concrete-typed binary min-heap using hole-sift (one
// assignment per level instead of a swap).
type rowHeap struct {
	items []rowItem
}

func (h *rowHeap) Len() int { return len(h.items) }

func (h *rowHeap) Push(slot, dist uint32) {
	h.items = append(h.items, rowItem{slot, dist})
	h.siftUp(len(h.items) - 1)
}

func (h *rowHeap) Pop() rowItem {
	top := h.items[0]
	n := len(h.items) - 1
	h.items[0] = h.items[n]
	h.items = h.items[:n]
	if n > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *rowHeap) siftUp(i int) {
	item := h.items[i]
	for i > 0 {
		parent := (i - 1) / 2
		if item.dist >= h.items[parent].dist {
			break
		}
		h.items[i] = h.items[parent]
		i = parent
	}
	h.items[i] = item
}

func (h *rowHeap) siftDown(i int) {
	n := len(h.items)
	item := h.items[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && h.items[right].dist < h.items[child].dist {
			child = right
		}
		if item.dist <= h.items[child].dist {
			break
		}
		h.items[i] = h.items[child]
		i = child
	}
	h.items[i] = item
}

func (h *rowHeap) Reset() { h.items = h.items[:0] }

// rowState is one worker's reusable scratch: a touched-list-reset
// distance array plus its heap, allocated once per worker and reused
// across every row that worker handles.
type rowState struct {
	dist    []uint32
	touched []uint32
	heap    rowHeap
}

func newRowState(n uint32) *rowState {
	dist := make([]uint32, n)
	for i := range dist {
		dist[i] = maxUint32
	}
	return &rowState{dist: dist, heap: rowHeap{items: make([]rowItem, 0, 256)}}
}

func (rs *rowState) reset() {
	for _, s := range rs.touched {
		rs.dist[s] = maxUint32
	}
	rs.touched = rs.touched[:0]
	rs.heap.Reset()
}

// computeRow runs Dijkstra from the vertex at srcSlot over g and copies
// the resulting distance vector (one entry per slot, maxUint32 if
// unreachable) into out.
func computeRow(rs *rowState, g *graph.Graph, srcSlot uint32, out []uint32) {
	rs.reset()
	rs.dist[srcSlot] = 0
	rs.touched = append(rs.touched, srcSlot)
	rs.heap.Push(srcSlot, 0)

	for rs.heap.Len() > 0 {
		cur := rs.heap.Pop()
		if cur.dist > rs.dist[cur.slot] {
			continue // stale entry, a better key already settled this slot
		}
		u := dimacs.FromSlot(int(cur.slot))
		for nb := range g.Neighbors(u) {
			toSlot := uint32(nb.To.Slot())
			alt := dimacs.AddSat(cur.dist, nb.Weight)
			if alt < rs.dist[toSlot] {
				if rs.dist[toSlot] == maxUint32 {
					rs.touched = append(rs.touched, toSlot)
				}
				rs.dist[toSlot] = alt
				rs.heap.Push(toSlot, alt)
			}
		}
	}

	copy(out, rs.dist)
}

// progressInterval controls how often Run logs a progress line.
const progressInterval = 1000

// Run computes the first rows source rows of g's cost matrix (rows == n
// for a full, un-nerfed run) and writes them to path. Rows are fanned
// out across a persistent pool of runtime.GOMAXPROCS(0) workers, each
// allocating its rowState once and reusing it across every row it is
// handed.
func Run(ctx context.Context, g *graph.Graph, path string, rows uint32) error {
	n := uint32(g.NumVertices())
	w, err := matrix.Create(path, n)
	if err != nil {
		return err
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if rows > 0 && uint32(numWorkers) > rows {
		numWorkers = int(rows)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	rowCh := make(chan uint32)
	var completed int64

	eg, egCtx := errgroup.WithContext(ctx)

	for i := 0; i < numWorkers; i++ {
		eg.Go(func() error {
			rs := newRowState(n)
			out := make([]uint32, n)
			for {
				select {
				case <-egCtx.Done():
					return egCtx.Err()
				case row, ok := <-rowCh:
					if !ok {
						return nil
					}
					computeRow(rs, g, row, out)
					if err := w.WriteRow(row, out); err != nil {
						return err
					}
					done := atomic.AddInt64(&completed, 1)
					if done%progressInterval == 0 || uint32(done) == rows {
						log.Printf("apsp: %d/%d rows done", done, rows)
					}
				}
			}
		})
	}

	eg.Go(func() error {
		defer close(rowCh)
		for r := uint32(0); r < rows; r++ {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			case rowCh <- r:
			}
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		w.Abort()
		return err
	}
	return w.Commit(rows)
}
