package apsp_test

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"spalgo/pkg/apsp"
	"spalgo/pkg/dimacs"
	"spalgo/pkg/graph"
	"spalgo/pkg/matrix"
)

const inf = ^uint32(0)

func randomEdges(rng *rand.Rand, n, m int) []dimacs.Edge {
	edges := make([]dimacs.Edge, 0, m)
	for i := 0; i < m; i++ {
		edges = append(edges, dimacs.Edge{
			From:   dimacs.Vertex(rng.Intn(n) + 1),
			To:     dimacs.Vertex(rng.Intn(n) + 1),
			Weight: uint32(rng.Intn(50) + 1),
		})
	}
	return edges
}

// referenceDistances is an O(n^3) Floyd-Warshall oracle over int64.
func referenceDistances(n int, edges []dimacs.Edge) [][]int64 {
	const far = int64(1) << 60
	d := make([][]int64, n)
	for i := range d {
		d[i] = make([]int64, n)
		for j := range d[i] {
			d[i][j] = far
		}
		d[i][i] = 0
	}
	for _, e := range edges {
		if w := int64(e.Weight); w < d[e.From.Slot()][e.To.Slot()] {
			d[e.From.Slot()][e.To.Slot()] = w
		}
	}
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if alt := d[i][k] + d[k][j]; alt < d[i][j] {
					d[i][j] = alt
				}
			}
		}
	}
	for i := range d {
		for j := range d[i] {
			if d[i][j] >= far {
				d[i][j] = -1
			}
		}
	}
	return d
}

func TestRunMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const n = 17
	edges := randomEdges(rng, n, 70)
	g := graph.Build(n, edges)
	ref := referenceDistances(n, edges)

	path := filepath.Join(t.TempDir(), "costmatrix.bin")
	if err := apsp.Run(context.Background(), g, path, n); err != nil {
		t.Fatalf("Run: %v", err)
	}

	m, err := matrix.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	if m.N() != n {
		t.Fatalf("N = %d, want %d", m.N(), n)
	}
	if m.RowsComputed() != n {
		t.Fatalf("RowsComputed = %d, want %d", m.RowsComputed(), n)
	}

	for s := dimacs.Vertex(1); s <= n; s++ {
		for target := dimacs.Vertex(1); target <= n; target++ {
			got, err := m.Get(s, target)
			if err != nil {
				t.Fatalf("Get(%d, %d): %v", s, target, err)
			}
			want := ref[s.Slot()][target.Slot()]
			if want < 0 {
				if got != inf {
					t.Fatalf("Get(%d, %d) = %d for unreachable pair, want MAX", s, target, got)
				}
				continue
			}
			if int64(got) != want {
				t.Fatalf("Get(%d, %d) = %d, want %d", s, target, got, want)
			}
		}
	}
}

func TestRunPartialRows(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	const n = 9
	edges := randomEdges(rng, n, 30)
	g := graph.Build(n, edges)
	ref := referenceDistances(n, edges)

	path := filepath.Join(t.TempDir(), "costmatrix.bin")
	const rows = 3
	if err := apsp.Run(context.Background(), g, path, rows); err != nil {
		t.Fatalf("Run: %v", err)
	}

	m, err := matrix.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	if m.RowsComputed() != rows {
		t.Fatalf("RowsComputed = %d, want %d", m.RowsComputed(), rows)
	}

	// Only the computed leading rows hold valid distances.
	for s := dimacs.Vertex(1); s.Slot() < rows; s++ {
		for target := dimacs.Vertex(1); target <= n; target++ {
			got, err := m.Get(s, target)
			if err != nil {
				t.Fatalf("Get(%d, %d): %v", s, target, err)
			}
			want := ref[s.Slot()][target.Slot()]
			if want < 0 {
				if got != inf {
					t.Fatalf("Get(%d, %d) = %d for unreachable pair, want MAX", s, target, got)
				}
				continue
			}
			if int64(got) != want {
				t.Fatalf("Get(%d, %d) = %d, want %d", s, target, got, want)
			}
		}
	}
}

func TestRunCancelledContext(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	const n = 64
	g := graph.Build(n, randomEdges(rng, n, 200))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "costmatrix.bin")
	if err := apsp.Run(ctx, g, path, n); err == nil {
		t.Fatal("Run with cancelled context returned nil error")
	}
	if _, err := matrix.Open(path); err == nil {
		t.Fatal("aborted run still published a matrix file")
	}
}
