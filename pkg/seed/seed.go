// Package seed generates the beam search engine's starting states: every
// edge within the search disk, paired with the point on that edge
// closest to the disk's center.
package seed

import (
	"sort"

	"elevroute/pkg/graph"
	"elevroute/pkg/spatial"
)

// Seed is a candidate starting point for the beam search: a position
// partway along an edge, at distance DistToCenter from the query center.
type Seed struct {
	EdgeID        uint64
	StartFraction float64 // fraction along the edge where the route begins, [0,1]
	DistToCenter  float64
}

// Generate queries the spatial index for every edge intersecting the
// disk of the given radius around (cx, cy), filters to those genuinely
// within radius, and returns one Seed per surviving edge ordered by
// ascending distance to the center — the order the beam search engine
// expands seeds in, so closer starts are tried first when two seeds tie
// on both heuristic score and length.
func Generate(g *graph.Graph, idx *spatial.Index, cx, cy, radius float64) []Seed {
	candidates := idx.QueryDisk(cx, cy, radius)

	seeds := make([]Seed, 0, len(candidates))
	for _, id := range candidates {
		e, ok := g.Edge(id)
		if !ok {
			continue
		}
		within, dist, t := spatial.IntersectsDisk(g, e, cx, cy, radius)
		if !within {
			continue
		}
		seeds = append(seeds, Seed{EdgeID: id, StartFraction: t, DistToCenter: dist})
	}

	sort.Slice(seeds, func(i, j int) bool {
		if seeds[i].DistToCenter != seeds[j].DistToCenter {
			return seeds[i].DistToCenter < seeds[j].DistToCenter
		}
		return seeds[i].EdgeID < seeds[j].EdgeID
	})
	return seeds
}
