package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"spalgo/pkg/apsp"
	"spalgo/pkg/bwf"
	"spalgo/pkg/dijkstra"
	"spalgo/pkg/dimacs"
	"spalgo/pkg/graph"
	"spalgo/pkg/matrix"
	"spalgo/pkg/spatial"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: spalgo <command> [flags]

Commands:
  sssp     single-source shortest paths to every reachable vertex
  sp       single-pair shortest path, unidirectional with early termination
  bisp     single-pair shortest path, bidirectional
  apsp     all-pairs shortest paths via repeated SSSP (writes a cost matrix)
  bwf      all-pairs shortest paths via blocked Floyd-Warshall (writes a cost matrix)
  query    read one distance out of a cost matrix file
  nearest  nearest vertex to a coordinate (DIMACS .co file)

Run 'spalgo <command> -h' for command flags.`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "sssp":
		err = runSSSP(args)
	case "sp":
		err = runSP(args)
	case "bisp":
		err = runBiSP(args)
	case "apsp":
		err = runAPSP(args)
	case "bwf":
		err = runBWF(args)
	case "query":
		err = runQuery(args)
	case "nearest":
		err = runNearest(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

// loadGraph reads a DIMACS edge file and builds the adjacency list. The
// vertex count is the highest id seen in the edge stream.
func loadGraph(path string) (*graph.Graph, error) {
	log.Printf("Loading edges from %s...", path)
	edges, err := dimacs.LoadEdges(path)
	if err != nil {
		return nil, err
	}
	n := maxVertex(edges)
	log.Printf("Loaded %d edges, %d vertices", len(edges), n)
	return graph.Build(n, edges), nil
}

func loadBiGraph(path string) (*graph.BiGraph, error) {
	log.Printf("Loading edges from %s...", path)
	edges, err := dimacs.LoadEdges(path)
	if err != nil {
		return nil, err
	}
	n := maxVertex(edges)
	log.Printf("Loaded %d edges, %d vertices", len(edges), n)
	return graph.BuildBi(n, edges), nil
}

func maxVertex(edges []dimacs.Edge) int {
	var max dimacs.Vertex
	for _, e := range edges {
		if e.From > max {
			max = e.From
		}
		if e.To > max {
			max = e.To
		}
	}
	return int(max)
}

func formatRoute(r *dijkstra.Route) string {
	vs := r.Vertices()
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, " -> ")
}

func runSSSP(args []string) error {
	fs := flag.NewFlagSet("sssp", flag.ExitOnError)
	graphPath := fs.String("graph", "", "Path to DIMACS edge file (*-d.gr)")
	source := fs.Uint("source", 1, "Source vertex id")
	shellName := fs.String("shell", "owned", "Search shell: search, owned, nolookup")
	queueName := fs.String("queue", "quaternary", "Queue flavor: binary, quaternary, octary, hexadecimary, pairing, sorted")
	target := fs.Uint("target", 0, "Optional target vertex: print its distance and path after the run")
	fs.Parse(args)

	if *graphPath == "" {
		fs.Usage()
		os.Exit(1)
	}
	g, err := loadGraph(*graphPath)
	if err != nil {
		return err
	}

	shell, err := newShell(*shellName, *queueName, dimacs.Vertex(*source))
	if err != nil {
		return err
	}

	start := time.Now()
	dijkstra.SSSP(shell, g)
	log.Printf("SSSP from %d done in %v (%s shell, %s queue)", *source, time.Since(start), *shellName, *queueName)

	if *target != 0 {
		t := dimacs.Vertex(*target)
		dist, ok := shell.Dist(t)
		if !ok {
			return fmt.Errorf("vertex %d: %w", t, dijkstra.ErrNoRoute)
		}
		route, _ := dijkstra.GetPath(shell, t)
		log.Printf("dist(%d, %d) = %d", *source, t, dist)
		fmt.Println(formatRoute(route.Reverse()))
	}
	return nil
}

func runSP(args []string) error {
	fs := flag.NewFlagSet("sp", flag.ExitOnError)
	graphPath := fs.String("graph", "", "Path to DIMACS edge file (*-d.gr)")
	source := fs.Uint("source", 1, "Source vertex id")
	target := fs.Uint("target", 0, "Target vertex id")
	shellName := fs.String("shell", "owned", "Search shell: search, owned, nolookup")
	queueName := fs.String("queue", "quaternary", "Queue flavor: binary, quaternary, octary, hexadecimary, pairing, sorted")
	fs.Parse(args)

	if *graphPath == "" || *target == 0 {
		fs.Usage()
		os.Exit(1)
	}
	g, err := loadGraph(*graphPath)
	if err != nil {
		return err
	}

	shell, err := newShell(*shellName, *queueName, dimacs.Vertex(*source))
	if err != nil {
		return err
	}

	start := time.Now()
	route, ok := dijkstra.SPNaiv(shell, dimacs.Vertex(*target), g)
	elapsed := time.Since(start)
	if !ok {
		return fmt.Errorf("%d -> %d: %w", *source, *target, dijkstra.ErrNoRoute)
	}
	dist, _ := shell.Dist(dimacs.Vertex(*target))
	log.Printf("dist(%d, %d) = %d in %v", *source, *target, dist, elapsed)
	fmt.Println(formatRoute(route.Reverse()))
	return nil
}

func runBiSP(args []string) error {
	fs := flag.NewFlagSet("bisp", flag.ExitOnError)
	graphPath := fs.String("graph", "", "Path to DIMACS edge file (*-d.gr)")
	source := fs.Uint("source", 1, "Source vertex id")
	target := fs.Uint("target", 0, "Target vertex id")
	queueName := fs.String("queue", "quaternary", "Queue flavor: binary, quaternary, octary, hexadecimary, pairing")
	fs.Parse(args)

	if *graphPath == "" || *target == 0 {
		fs.Usage()
		os.Exit(1)
	}
	bg, err := loadBiGraph(*graphPath)
	if err != nil {
		return err
	}

	// Bidirectional search reconstructs the path through a bridge vertex
	// that may still be tentative on one side, so both sides run a
	// decrease-key shell whose meta tracks tentative distances.
	sourceShell, err := newShell("owned", *queueName, dimacs.Vertex(*source))
	if err != nil {
		return err
	}
	targetShell, err := newShell("owned", *queueName, dimacs.Vertex(*target))
	if err != nil {
		return err
	}

	start := time.Now()
	dist, route, ok := dijkstra.SPBi(sourceShell, targetShell, bg)
	elapsed := time.Since(start)
	if !ok {
		return fmt.Errorf("%d -> %d: %w", *source, *target, dijkstra.ErrNoRoute)
	}
	log.Printf("dist(%d, %d) = %d in %v", *source, *target, dist, elapsed)
	fmt.Println(formatRoute(route))
	return nil
}

func runAPSP(args []string) error {
	fs := flag.NewFlagSet("apsp", flag.ExitOnError)
	graphPath := fs.String("graph", "", "Path to DIMACS edge file (*-d.gr)")
	out := fs.String("out", "costmatrix.bin", "Output cost matrix file path")
	rows := fs.Uint("rows", 0, "Only compute the first N rows (0 = all); partial runs are recorded in the file header")
	fs.Parse(args)

	if *graphPath == "" {
		fs.Usage()
		os.Exit(1)
	}
	g, err := loadGraph(*graphPath)
	if err != nil {
		return err
	}

	r := uint32(*rows)
	if r == 0 || r > uint32(g.NumVertices()) {
		r = uint32(g.NumVertices())
	}

	start := time.Now()
	if err := apsp.Run(context.Background(), g, *out, r); err != nil {
		return err
	}
	log.Printf("APSP: %d rows written to %s in %v", r, *out, time.Since(start))
	return nil
}

func runBWF(args []string) error {
	fs := flag.NewFlagSet("bwf", flag.ExitOnError)
	graphPath := fs.String("graph", "", "Path to DIMACS edge file (*-d.gr)")
	out := fs.String("out", "costmatrix.bin", "Output cost matrix file path")
	block := fs.Int("block", bwf.DefaultBlockSize, "Tile side length")
	fs.Parse(args)

	if *graphPath == "" {
		fs.Usage()
		os.Exit(1)
	}
	g, err := loadGraph(*graphPath)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := bwf.Run(context.Background(), g, *out, *block); err != nil {
		return err
	}
	log.Printf("BWF: cost matrix written to %s in %v", *out, time.Since(start))
	return nil
}

func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	path := fs.String("matrix", "", "Path to a cost matrix file written by apsp or bwf")
	source := fs.Uint("source", 1, "Source vertex id")
	target := fs.Uint("target", 1, "Target vertex id")
	fs.Parse(args)

	if *path == "" {
		fs.Usage()
		os.Exit(1)
	}
	m, err := matrix.Open(*path)
	if err != nil {
		return err
	}
	defer m.Close()

	s, t := dimacs.Vertex(*source), dimacs.Vertex(*target)
	if uint32(s.Slot()) >= m.RowsComputed() {
		return fmt.Errorf("row %d not computed (matrix holds %d of %d rows)", s, m.RowsComputed(), m.N())
	}
	dist, err := m.Get(s, t)
	if err != nil {
		return err
	}
	if dist == ^uint32(0) {
		return fmt.Errorf("%d -> %d: %w", s, t, dijkstra.ErrNoRoute)
	}
	fmt.Printf("dist(%d, %d) = %d\n", s, t, dist)
	return nil
}

func runNearest(args []string) error {
	fs := flag.NewFlagSet("nearest", flag.ExitOnError)
	coordsPath := fs.String("coords", "", "Path to DIMACS coordinate file (*.co)")
	x := fs.Int64("x", 0, "Query x coordinate")
	y := fs.Int64("y", 0, "Query y coordinate")
	fs.Parse(args)

	if *coordsPath == "" {
		fs.Usage()
		os.Exit(1)
	}
	log.Printf("Loading coordinates from %s...", *coordsPath)
	coords, err := dimacs.LoadCoordinates(*coordsPath)
	if err != nil {
		return err
	}
	log.Printf("Indexing %d coordinates...", len(coords))
	idx := spatial.Build(coords)

	v, ok := idx.Nearest(*x, *y)
	if !ok {
		return fmt.Errorf("no coordinates in %s", *coordsPath)
	}
	fmt.Printf("nearest(%d, %d) = vertex %d\n", *x, *y, v)
	return nil
}
