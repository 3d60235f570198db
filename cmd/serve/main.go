// Command serve loads a binary graph and exposes route matching over
// HTTP via the pkg/api server/handler/middleware stack.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"elevroute/pkg/api"
	"elevroute/pkg/beam"
	"elevroute/pkg/config"
	"elevroute/pkg/graph"
	"elevroute/pkg/logging"
	"elevroute/pkg/profile"
	"elevroute/pkg/route"
	"elevroute/pkg/seed"
	"elevroute/pkg/spatial"
)

// graphMatcher implements api.Matcher over a loaded graph and spatial
// index, using the beam search engine configured from cfg.
type graphMatcher struct {
	g   *graph.Graph
	idx *spatial.Index
	cfg config.Search
}

func (m *graphMatcher) Match(ctx context.Context, cx, cy, radius float64, target *profile.Profile) (*route.Route, error) {
	seeds := seed.Generate(m.g, m.idx, cx, cy, radius)
	opts := beam.Options{BeamWidth: m.cfg.BeamWidth, SampleStep: m.cfg.SampleStepM, RevisitPenalty: m.cfg.RevisitPenalty}
	result, err := beam.Search(ctx, m.g, seeds, target, opts)
	if err != nil {
		return nil, err
	}
	return route.Assemble(m.g, result, target.TotalLength())
}

func main() {
	graphPath := flag.String("graph", "", "Path to binary graph file")
	port := flag.Int("port", 8080, "HTTP port to serve on")
	configPath := flag.String("config", "", "Path to routefinder.yaml (optional)")
	debug := flag.Bool("debug", false, "Enable development logging")
	flag.Parse()

	if *graphPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: serve -graph <graph.bin> [-port 8080] [-config routefinder.yaml]")
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

	g, err := graph.ReadBinary(*graphPath)
	if err != nil {
		log.Fatal("read binary", zap.Error(err))
	}
	log.Info("graph loaded", zap.Int("nodes", g.NumNodes()), zap.Int("edges", g.NumEdges()))

	idx, err := spatial.Build(g)
	if err != nil {
		log.Fatal("build spatial index", zap.Error(err))
	}

	matcher := &graphMatcher{g: g, idx: idx, cfg: cfg}
	handlers := api.NewHandlers(matcher, api.StatsResponse{NumNodes: g.NumNodes(), NumEdges: g.NumEdges()})

	requestTimeout := time.Duration(cfg.RequestTimeoutS * float64(time.Second))
	srvCfg := api.DefaultConfigFromSearch(fmt.Sprintf(":%d", *port), requestTimeout)
	srv := api.NewServer(srvCfg, handlers, log)

	if err := api.ListenAndServe(srv, srvCfg.ShutdownTimeout, log); err != nil {
		log.Fatal("serve", zap.Error(err))
	}
}
