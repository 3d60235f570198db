// Command visualize loads a binary graph, runs a single route match,
// and renders a map PNG and an elevation-profile-comparison PNG.
// Grounded on original_source/src/bin/visualize.rs, with plotters
// replaced by the elevroute/pkg/visualize stdlib rasterizer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"elevroute/pkg/beam"
	"elevroute/pkg/config"
	"elevroute/pkg/graph"
	"elevroute/pkg/profile"
	"elevroute/pkg/route"
	"elevroute/pkg/seed"
	"elevroute/pkg/spatial"
	"elevroute/pkg/visualize"
)

func main() {
	input := flag.String("input", "", "Path to binary graph file")
	cx := flag.Float64("cx", 0, "Search center X")
	cy := flag.Float64("cy", 0, "Search center Y")
	distance := flag.Float64("distance", 0, "Search radius in meters (0 uses routefinder.yaml's default_radius_m)")
	profileCSV := flag.String("profile", "", "Profile points as comma-separated pairs: s1,z1,s2,z2,...")
	mapOutput := flag.String("map-output", "route_map.png", "Output map PNG path")
	profileOutput := flag.String("profile-output", "elevation_profile.png", "Output profile comparison PNG path")
	configPath := flag.String("config", "", "Path to routefinder.yaml (optional)")
	flag.Parse()

	if *input == "" || *profileCSV == "" {
		fmt.Fprintln(os.Stderr, "Usage: visualize -input <graph.bin> -cx <x> -cy <y> -distance <m> -profile <s1,z1,s2,z2,...> [-map-output out.png] [-profile-output out.png]")
		os.Exit(1)
	}

	target, err := parseProfileCSV(*profileCSV)
	if err != nil {
		fmt.Fprintf(os.Stderr, "profile: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *distance <= 0 {
		*distance = cfg.DefaultRadiusM
	}

	g, err := graph.ReadBinary(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read binary: %v\n", err)
		os.Exit(1)
	}

	idx, err := spatial.Build(g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build spatial index: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Searching for route near (%.1f, %.1f) within %.1fm radius\n", *cx, *cy, *distance)
	fmt.Printf("Target profile length: %.1fm\n", target.TotalLength())

	seeds := seed.Generate(g, idx, *cx, *cy, *distance)
	opts := beam.Options{BeamWidth: cfg.BeamWidth, SampleStep: cfg.SampleStepM, RevisitPenalty: cfg.RevisitPenalty}
	result, err := beam.Search(context.Background(), g, seeds, target, opts)
	if err != nil {
		fmt.Println("No feasible route found within tolerance")
		if err := visualize.RenderMap(g, *cx, *cy, *distance, nil, *mapOutput); err != nil {
			fmt.Fprintf(os.Stderr, "render map: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Search area map saved to: %s\n", *mapOutput)
		return
	}

	rt, err := route.Assemble(g, result, target.TotalLength())
	if err != nil {
		fmt.Fprintf(os.Stderr, "assemble route: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found route with %d edges\n", len(rt.EdgeIDs))
	fmt.Printf("Route segments: start=%.3f, end=%.3f, edges: %v\n", rt.StartFraction, rt.EndFraction, rt.EdgeIDs)

	if err := visualize.RenderMap(g, *cx, *cy, *distance, rt.EdgeIDs, *mapOutput); err != nil {
		fmt.Fprintf(os.Stderr, "render map: %v\n", err)
		os.Exit(1)
	}
	if err := visualize.RenderProfileComparison(target, rt.Profile, *profileOutput); err != nil {
		fmt.Fprintf(os.Stderr, "render profile: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Map saved to: %s\n", *mapOutput)
	fmt.Printf("Profile comparison saved to: %s\n", *profileOutput)
}

func parseProfileCSV(csv string) (*profile.Profile, error) {
	parts := strings.Split(csv, ",")
	if len(parts)%2 != 0 {
		return nil, fmt.Errorf("profile points must be in pairs (distance, elevation)")
	}
	points := make([]profile.Point, 0, len(parts)/2)
	for i := 0; i+1 < len(parts); i += 2 {
		s, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return nil, err
		}
		z, err := strconv.ParseFloat(strings.TrimSpace(parts[i+1]), 64)
		if err != nil {
			return nil, err
		}
		points = append(points, profile.Point{S: s, Z: z})
	}
	return profile.New(points)
}
