// Command interactive is a REPL for exploring route matches: it prompts
// for a search center, radius, and target elevation profile, runs the
// match, and offers to render PNGs of the result. Grounded on
// original_source/src/bin/interactive.rs, with the original's broken
// `cargo run --bin visualize` subprocess hand-off (flagged in its own
// source as "this is wrong, but we'll fix it") replaced by a direct
// in-process call into elevroute/pkg/visualize.
package main

import (
	"bufio"
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
	configPath := flag.String("config", "", "Path to routefinder.yaml (optional)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: interactive -input <graph.bin> [-config routefinder.yaml]")
		os.Exit(1)
	}

	fmt.Printf("Loading data from %s...\n", *input)
	g, err := graph.ReadBinary(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read binary: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Data loaded successfully!")
	fmt.Printf("Graph has %d nodes and %d edges\n", g.NumNodes(), g.NumEdges())

	idx, err := spatial.Build(g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build spatial index: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	in := bufio.NewReader(os.Stdin)
	for {
		fmt.Println("\nRoute Finder - Interactive Mode")
		fmt.Println("===============================")

		cx, cy := promptCoordinates(in)
		radius := promptRadius(in, cfg.DefaultRadiusM)
		target := promptProfile(in)

		fmt.Println("\nQuery Summary:")
		fmt.Printf("   Center: (%.1f, %.1f)\n", cx, cy)
		fmt.Printf("   Search radius: %.1fm\n", radius)
		fmt.Printf("   Profile length: %.1fm\n", target.TotalLength())

		fmt.Print("\nSearching for matching route... ")
		seeds := seed.Generate(g, idx, cx, cy, radius)
		opts := beam.Options{BeamWidth: cfg.BeamWidth, SampleStep: cfg.SampleStepM, RevisitPenalty: cfg.RevisitPenalty}
		result, err := beam.Search(context.Background(), g, seeds, target, opts)
		if err != nil {
			fmt.Println("no feasible route found within tolerance")
			fmt.Println("Try:")
			fmt.Println("   - Increasing the search radius")
			fmt.Println("   - Modifying the elevation profile")
			fmt.Println("   - Moving the center point")

			if askYesNo(in, "\nShow search area visualization? (y/n): ") {
				if err := visualize.RenderMap(g, cx, cy, radius, nil, "search_area.png"); err != nil {
					fmt.Fprintf(os.Stderr, "render map: %v\n", err)
				} else {
					fmt.Println("Search area saved to: search_area.png")
				}
			}
		} else {
			rt, err := route.Assemble(g, result, target.TotalLength())
			if err != nil {
				fmt.Fprintf(os.Stderr, "assemble route: %v\n", err)
			} else {
				fmt.Println("found!")
				fmt.Println("\nRoute Details:")
				fmt.Printf("   Segments: %d edges\n", len(rt.EdgeIDs))
				fmt.Printf("   Start fraction: %.3f\n", rt.StartFraction)
				fmt.Printf("   End fraction: %.3f\n", rt.EndFraction)
				fmt.Printf("   Edge IDs: %v\n", rt.EdgeIDs)

				if askYesNo(in, "\nWould you like to create visualizations? (y/n): ") {
					if err := visualize.RenderMap(g, cx, cy, radius, rt.EdgeIDs, "route_map.png"); err != nil {
						fmt.Fprintf(os.Stderr, "render map: %v\n", err)
					} else if err := visualize.RenderProfileComparison(target, rt.Profile, "elevation_profile.png"); err != nil {
						fmt.Fprintf(os.Stderr, "render profile: %v\n", err)
					} else {
						fmt.Println("Visualizations created: route_map.png, elevation_profile.png")
					}
				}
			}
		}

		if !askYesNo(in, "\nSearch for another route? (y/n): ") {
			break
		}
	}

	fmt.Println("\nThanks for using the route finder!")
}

func promptCoordinates(in *bufio.Reader) (float64, float64) {
	for {
		fmt.Print("Enter center coordinates (x y): ")
		line, _ := in.ReadString('\n')
		fields := strings.Fields(line)
		if len(fields) != 2 {
			fmt.Println("Please enter exactly two numbers (x y)")
			continue
		}
		x, err1 := strconv.ParseFloat(fields[0], 64)
		y, err2 := strconv.ParseFloat(fields[1], 64)
		if err1 != nil || err2 != nil {
			fmt.Println("Please enter valid numbers")
			continue
		}
		return x, y
	}
}

func promptRadius(in *bufio.Reader, defaultRadius float64) float64 {
	for {
		fmt.Printf("Enter search radius in meters (blank for default %.0f): ", defaultRadius)
		line, _ := in.ReadString('\n')
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			return defaultRadius
		}
		d, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || d <= 0 {
			fmt.Println("Please enter a positive number")
			continue
		}
		return d
	}
}

func promptProfile(in *bufio.Reader) *profile.Profile {
	fmt.Println("\nDefine your elevation profile:")
	fmt.Println("   Enter pairs of (distance, elevation_gain), cumulative from start")
	fmt.Println("   Example: '0 0 100 10 200 5'")
	for {
		fmt.Print("Enter profile points: ")
		line, _ := in.ReadString('\n')
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields)%2 != 0 {
			fmt.Println("Please enter an even number of values (distance, elevation pairs)")
			continue
		}
		points := make([]profile.Point, 0, len(fields)/2)
		ok := true
		for i := 0; i+1 < len(fields); i += 2 {
			s, err1 := strconv.ParseFloat(fields[i], 64)
			z, err2 := strconv.ParseFloat(fields[i+1], 64)
			if err1 != nil || err2 != nil {
				fmt.Println("Please enter valid numbers")
				ok = false
				break
			}
			points = append(points, profile.Point{S: s, Z: z})
		}
		if !ok {
			continue
		}
		p, err := profile.New(points)
		if err != nil {
			fmt.Printf("Invalid profile: %v\n", err)
			continue
		}
		return p
	}
}

func askYesNo(in *bufio.Reader, prompt string) bool {
	for {
		fmt.Print(prompt)
		line, _ := in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		default:
			fmt.Println("Please enter 'y' or 'n'")
		}
	}
}
