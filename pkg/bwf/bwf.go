// Package bwf implements blocked out-of-core Floyd-Warshall: the dense
// triple loop run in fixed-side tiles, each tile backed by its own
// anonymous temp file, for graphs too large for pkg/apsp's repeated-SSSP
// approach. Tile fan-out within a k-phase uses golang.org/x/sync/errgroup.
package bwf

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sync/errgroup"

	"spalgo/pkg/dimacs"
	"spalgo/pkg/graph"
	"spalgo/pkg/matrix"
)

const maxUint32 = ^uint32(0)

// DefaultBlockSize is the tile side for out-of-core runs.
const DefaultBlockSize = 4096 * 3

// tile is one (row-block, col-block) cell of the cost matrix: a
// B*B-uint32 body in its own anonymous temp file (unlinked immediately
// after creation, per the Unix idiom, so the space is reclaimed on close
// with no path left behind) guarded by its own mutex.
type tile struct {
	mu sync.Mutex
	f  *os.File
}

func newTileFile() (*tile, error) {
	f, err := os.CreateTemp("", "spalgo-bwf-tile-*")
	if err != nil {
		return nil, fmt.Errorf("bwf: create tile file: %w", err)
	}
	name := f.Name()
	if err := os.Remove(name); err != nil {
		f.Close()
		return nil, fmt.Errorf("bwf: unlink tile file: %w", err)
	}
	return &tile{f: f}, nil
}

// read fills out (length B*B) from the tile's body. It explicitly seeks
// to the start before every read rather than relying on a sequential
// cursor carried over from the previous access.
func (t *tile) read(out []uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&out[0])), len(out)*4)
	_, err := io.ReadFull(t.f, b)
	return err
}

func (t *tile) write(data []uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*4)
	_, err := t.f.Write(b)
	return err
}

func (t *tile) close() error { return t.f.Close() }

// seedTile builds the initial (rowBlock, colBlock) tile: MAX everywhere,
// 0 on the true diagonal (only meaningful when rowBlock==colBlock — a
// local index i only names the same global vertex on both axes when the
// two blocks start at the same offset), and each edge weight projected
// into range.
func seedTile(g *graph.Graph, n uint32, blockSize, rowBlock, colBlock int) []uint32 {
	data := make([]uint32, blockSize*blockSize)
	for i := range data {
		data[i] = maxUint32
	}

	rowStart := uint32(rowBlock * blockSize)
	colStart := uint32(colBlock * blockSize)
	rowEnd := rowStart + uint32(blockSize)
	colEnd := colStart + uint32(blockSize)

	if rowBlock == colBlock {
		limit := blockSize
		if rowStart+uint32(limit) > n {
			limit = int(n - rowStart)
		}
		for i := 0; i < limit; i++ {
			data[i*blockSize+i] = 0
		}
	}

	for localU := 0; localU < blockSize; localU++ {
		u := rowStart + uint32(localU)
		if u >= n || u >= rowEnd {
			break
		}
		uv := dimacs.FromSlot(int(u))
		for nb := range g.Neighbors(uv) {
			v := uint32(nb.To.Slot())
			if v < colStart || v >= colEnd || v >= n {
				continue
			}
			idx := localU*blockSize + int(v-colStart)
			if nb.Weight < data[idx] {
				data[idx] = nb.Weight
			}
		}
	}
	return data
}

// fwTile runs the classic Floyd-Warshall triple loop entirely inside
// one tile, in place: w[i,j] = min(w[i,j], w[i,k] + w[k,j]) for k,i,j in
// [0,blockSize). Saturating addition treats MAX as infinity so a path
// through an unreachable hop can never look shorter than one that
// doesn't exist.
func fwTile(w []uint32, blockSize int) {
	for k := 0; k < blockSize; k++ {
		krow := k * blockSize
		for i := 0; i < blockSize; i++ {
			wik := w[i*blockSize+k]
			if wik == maxUint32 {
				continue
			}
			irow := i * blockSize
			for j := 0; j < blockSize; j++ {
				wkj := w[krow+j]
				if wkj == maxUint32 {
					continue
				}
				if alt := dimacs.AddSat(wik, wkj); alt < w[irow+j] {
					w[irow+j] = alt
				}
			}
		}
	}
}

// minPlus folds the tropical (min, +) product of A and B into C in
// place: c[i,j] = min(c[i,j], a[i,k] + b[k,j]). The left operand is
// passed transposed (at[k,i] = a[i,k]) so all three inner-loop reads
// walk rows contiguously. Aliasing c with b is sound provided A is
// transitively closed: a candidate built from an already-lowered b entry
// is still a valid path length, and never beats what the closed A row
// already yields.
func minPlus(c, at, b []uint32, blockSize int) {
	for k := 0; k < blockSize; k++ {
		krow := k * blockSize
		for i := 0; i < blockSize; i++ {
			aik := at[krow+i]
			if aik == maxUint32 {
				continue
			}
			irow := i * blockSize
			for j := 0; j < blockSize; j++ {
				bkj := b[krow+j]
				if bkj == maxUint32 {
					continue
				}
				if alt := dimacs.AddSat(aik, bkj); alt < c[irow+j] {
					c[irow+j] = alt
				}
			}
		}
	}
}

func transposeBlock(a []uint32, blockSize int) []uint32 {
	out := make([]uint32, len(a))
	for i := 0; i < blockSize; i++ {
		for j := 0; j < blockSize; j++ {
			out[j*blockSize+i] = a[i*blockSize+j]
		}
	}
	return out
}

// Run computes the full cost matrix for g via blocked Floyd-Warshall and
// writes it to path, tiling the N×N matrix into blockSize-wide square
// temp files (blockSize <= 0 selects DefaultBlockSize).
func Run(ctx context.Context, g *graph.Graph, path string, blockSize int) error {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	n := uint32(g.NumVertices())
	numBlocks := int(n) / blockSize
	if int(n)%blockSize != 0 {
		numBlocks++
	}
	if numBlocks == 0 {
		numBlocks = 1
	}

	tiles := make([]*tile, numBlocks*numBlocks)
	for i := range tiles {
		t, err := newTileFile()
		if err != nil {
			for _, prev := range tiles[:i] {
				prev.close()
			}
			return err
		}
		tiles[i] = t
	}
	defer func() {
		for _, t := range tiles {
			t.close()
		}
	}()

	at := func(r, c int) *tile { return tiles[r*numBlocks+c] }
	tileBufSize := blockSize * blockSize

	seedGroup, seedCtx := errgroup.WithContext(ctx)
	for r := 0; r < numBlocks; r++ {
		for c := 0; c < numBlocks; c++ {
			r, c := r, c
			seedGroup.Go(func() error {
				if err := seedCtx.Err(); err != nil {
					return err
				}
				return at(r, c).write(seedTile(g, n, blockSize, r, c))
			})
		}
	}
	if err := seedGroup.Wait(); err != nil {
		return err
	}

	for k := 0; k < numBlocks; k++ {
		log.Printf("bwf: k-block %d/%d", k+1, numBlocks)

		wkk := make([]uint32, tileBufSize)
		if err := at(k, k).read(wkk); err != nil {
			return err
		}
		fwTile(wkk, blockSize)
		if err := at(k, k).write(wkk); err != nil {
			return err
		}
		wkkT := transposeBlock(wkk, blockSize)

		// Row panel: W[k,j] folds in paths that enter the k-block, move
		// within it, and leave toward the j-block.
		jGroup, jCtx := errgroup.WithContext(ctx)
		for j := 0; j < numBlocks; j++ {
			if j == k {
				continue
			}
			j := j
			jGroup.Go(func() error {
				if err := jCtx.Err(); err != nil {
					return err
				}
				wkj := make([]uint32, tileBufSize)
				if err := at(k, j).read(wkj); err != nil {
					return err
				}
				minPlus(wkj, wkkT, wkj, blockSize)
				return at(k, j).write(wkj)
			})
		}
		if err := jGroup.Wait(); err != nil {
			return err
		}

		// Barrier: every (k, j) row-panel tile must be final before the
		// column and interior updates below read it.
		iGroup, iCtx := errgroup.WithContext(ctx)
		for i := 0; i < numBlocks; i++ {
			if i == k {
				continue
			}
			i := i
			iGroup.Go(func() error {
				if err := iCtx.Err(); err != nil {
					return err
				}
				wik := make([]uint32, tileBufSize)
				if err := at(i, k).read(wik); err != nil {
					return err
				}
				// Column panel: the left operand is snapshot-transposed
				// before the fold so in-place lowering of W[i,k] cannot
				// feed back into the same fold.
				wikT := transposeBlock(wik, blockSize)
				minPlus(wik, wikT, wkk, blockSize)
				if err := at(i, k).write(wik); err != nil {
					return err
				}
				wikT = transposeBlock(wik, blockSize)

				// Interior: W[i,j] = min(W[i,j], W[i,k] (x) W[k,j]).
				wij := make([]uint32, tileBufSize)
				wkj := make([]uint32, tileBufSize)
				for j := 0; j < numBlocks; j++ {
					if j == k {
						continue
					}
					if err := at(k, j).read(wkj); err != nil {
						return err
					}
					if err := at(i, j).read(wij); err != nil {
						return err
					}
					minPlus(wij, wikT, wkj, blockSize)
					if err := at(i, j).write(wij); err != nil {
						return err
					}
				}
				return nil
			})
		}
		if err := iGroup.Wait(); err != nil {
			return err
		}
	}

	w, err := matrix.Create(path, n)
	if err != nil {
		return err
	}
	if err := mergeTiles(tiles, numBlocks, blockSize, n, w); err != nil {
		w.Abort()
		return err
	}
	return w.Commit(n)
}

// mergeTiles reads every tile row by row and writes it into w in
// canonical row-major layout.
func mergeTiles(tiles []*tile, numBlocks, blockSize int, n uint32, w *matrix.Writer) error {
	rowBuf := make([]uint32, n)
	for rb := 0; rb < numBlocks; rb++ {
		rowStart := uint32(rb * blockSize)
		if rowStart >= n {
			break
		}
		colData := make([][]uint32, numBlocks)
		for cb := 0; cb < numBlocks; cb++ {
			data := make([]uint32, blockSize*blockSize)
			if err := tiles[rb*numBlocks+cb].read(data); err != nil {
				return err
			}
			colData[cb] = data
		}

		limit := blockSize
		if rowStart+uint32(limit) > n {
			limit = int(n - rowStart)
		}
		for lr := 0; lr < limit; lr++ {
			for cb := 0; cb < numBlocks; cb++ {
				colStart := cb * blockSize
				copyLen := blockSize
				if colStart+copyLen > int(n) {
					copyLen = int(n) - colStart
				}
				if copyLen <= 0 {
					continue
				}
				copy(rowBuf[colStart:colStart+copyLen], colData[cb][lr*blockSize:lr*blockSize+copyLen])
			}
			if err := w.WriteRow(rowStart+uint32(lr), rowBuf); err != nil {
				return err
			}
		}
	}
	return nil
}
