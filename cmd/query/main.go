// Command query loads a binary graph and answers the batch query text
// protocol on stdin, one result line per query on stdout.
//
// Input: a line holding an integer N, followed by N lines each
// "cx cy radius s0 z0 s1 z1 ... sk zk" (a query center, search radius,
// and target elevation profile). Output: one line per query,
// "<start_fraction> <end_fraction> <edge_id_1> <edge_id_2> ..." in
// traversal order, or the token NONE if no route was found.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"elevroute/pkg/beam"
	"elevroute/pkg/config"
	"elevroute/pkg/graph"
	"elevroute/pkg/logging"
	"elevroute/pkg/profile"
	"elevroute/pkg/route"
	"elevroute/pkg/seed"
	"elevroute/pkg/spatial"
)

func main() {
	input := flag.String("input", "", "Path to binary graph file")
	configPath := flag.String("config", "", "Path to routefinder.yaml (optional)")
	debug := flag.Bool("debug", false, "Enable development logging")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: query -input <graph.bin> [-config routefinder.yaml]")
		os.Exit(1)
	}

	log, err := logging.New(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	g, err := graph.ReadBinary(*input)
	if err != nil {
		log.Fatal("read binary", zap.Error(err))
	}
	log.Info("graph loaded", zap.Int("nodes", g.NumNodes()), zap.Int("edges", g.NumEdges()))

	idx, err := spatial.Build(g)
	if err != nil {
		log.Fatal("build spatial index", zap.Error(err))
	}

	if err := runQueries(os.Stdin, os.Stdout, g, idx, cfg, log); err != nil {
		log.Fatal("run queries", zap.Error(err))
	}
}

func runQueries(r *os.File, w *os.File, g *graph.Graph, idx *spatial.Index, cfg config.Search, log *zap.Logger) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	if !scanner.Scan() {
		return fmt.Errorf("query: missing count line")
	}
	n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("query: invalid count line: %w", err)
	}

	for i := 0; i < n; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("query: expected %d queries, got %d", n, i)
		}
		line, err := answerQuery(scanner.Text(), g, idx, cfg)
		if err != nil {
			log.Warn("query failed", zap.Int("index", i), zap.Error(err))
			fmt.Fprintln(bw, "NONE")
			continue
		}
		fmt.Fprintln(bw, line)
	}
	return scanner.Err()
}

func answerQuery(line string, g *graph.Graph, idx *spatial.Index, cfg config.Search) (string, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 || len(fields)%2 != 1 {
		return "", fmt.Errorf("malformed query line: %q", line)
	}
	nums := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return "", fmt.Errorf("malformed number %q: %w", f, err)
		}
		nums[i] = v
	}
	cx, cy, radius := nums[0], nums[1], nums[2]
	if math.IsNaN(cx) || math.IsInf(cx, 0) || math.IsNaN(cy) || math.IsInf(cy, 0) {
		return "", fmt.Errorf("malformed query line: non-finite center: %q", line)
	}
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return "", fmt.Errorf("malformed query line: radius must be positive: %q", line)
	}

	profilePts := make([]profile.Point, 0, (len(nums)-3)/2)
	for i := 3; i+1 < len(nums); i += 2 {
		profilePts = append(profilePts, profile.Point{S: nums[i], Z: nums[i+1]})
	}
	target, err := profile.New(profilePts)
	if err != nil {
		return "", err
	}

	seeds := seed.Generate(g, idx, cx, cy, radius)
	opts := beam.Options{
		BeamWidth:      cfg.BeamWidth,
		SampleStep:     cfg.SampleStepM,
		RevisitPenalty: cfg.RevisitPenalty,
	}
	result, err := beam.Search(context.Background(), g, seeds, target, opts)
	if err != nil {
		return "", err
	}
	rt, err := route.Assemble(g, result, target.TotalLength())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%.6f %.6f", rt.StartFraction, rt.EndFraction)
	for _, id := range rt.EdgeIDs {
		fmt.Fprintf(&sb, " %d", id)
	}
	return sb.String(), nil
}
