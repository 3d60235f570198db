// Command preprocess converts a JSONL road-graph export into the
// binary graph format cmd/query, cmd/interactive, cmd/visualize, and
// cmd/serve all load.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"elevroute/pkg/graph"
	"elevroute/pkg/ingest"
	"elevroute/pkg/logging"
)

func main() {
	input := flag.String("input", "", "Path to input JSONL graph file")
	output := flag.String("output", "graph.bin", "Output binary graph file path")
	debug := flag.Bool("debug", false, "Enable development logging")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: preprocess -input <file.jsonl> [-output graph.bin]")
		os.Exit(1)
	}

	log, err := logging.New(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	start := time.Now()

	log.Info("opening input", zap.String("path", *input))
	f, err := os.Open(*input)
	if err != nil {
		log.Fatal("open input", zap.Error(err))
	}
	defer f.Close()

	log.Info("parsing jsonl")
	g, err := ingest.Parse(f)
	if err != nil {
		log.Fatal("parse jsonl", zap.Error(err))
	}
	log.Info("parsed graph", zap.Int("nodes", g.NumNodes()), zap.Int("edges", g.NumEdges()))

	log.Info("writing binary", zap.String("path", *output))
	if err := graph.WriteBinary(*output, g); err != nil {
		log.Fatal("write binary", zap.Error(err))
	}

	info, _ := os.Stat(*output)
	log.Info("done",
		zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
		zap.String("output", *output),
		zap.Int64("bytes", info.Size()),
	)
}
