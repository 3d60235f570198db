// Package route assembles a beam.Result into a validated Route: it
// recomputes the path's own length and elevation profile from the
// graph, checks them against the original query, and rejects anything
// that fails to reconcile — a defensive check against a bug upstream in
// beam or profile rather than an expected runtime condition.
package route

import (
	"errors"
	"fmt"
	"math"

	"elevroute/pkg/beam"
	"elevroute/pkg/graph"
	"elevroute/pkg/profile"
)

// ErrInconsistent is returned when a beam.Result's recomputed length or
// profile does not reconcile with the graph and edge list it claims to
// describe.
var ErrInconsistent = errors.New("route: inconsistent result")

// Route is a fully assembled, graph-verified route match.
type Route struct {
	StartEdgeID   uint64
	StartFraction float64
	EdgeIDs       []uint64
	EndFraction   float64
	Length        float64
	Offset        float64
	Cost          float64
	Profile       *profile.Profile // the route's own actual elevation profile
}

// Assemble rebuilds the actual profile for a beam.Result by walking its
// edge list, verifies the recomputed length matches the result's own
// reported length within float tolerance, and separately verifies that
// length against the query's target length and tolerance epsilon
// (max(5m, 5% of target length)) before returning the finished Route.
// Either check failing indicates a bug upstream in beam or seed, not a
// user error, so both report ErrInconsistent.
func Assemble(g *graph.Graph, r *beam.Result, targetLength float64) (*Route, error) {
	if len(r.EdgeIDs) == 0 {
		return nil, fmt.Errorf("%w: empty edge list", ErrInconsistent)
	}

	points := []profile.Point{{S: 0, Z: 0}}
	var cumLength, cumElev float64

	for i, id := range r.EdgeIDs {
		e, ok := g.Edge(id)
		if !ok {
			return nil, fmt.Errorf("%w: edge %d not found in graph", ErrInconsistent, id)
		}

		fraction := 1.0
		switch {
		case len(r.EdgeIDs) == 1:
			fraction = r.EndFraction - r.StartFraction
		case i == 0:
			fraction = 1.0 - r.StartFraction
		case i == len(r.EdgeIDs)-1:
			fraction = r.EndFraction
		}
		if fraction < 0 {
			return nil, fmt.Errorf("%w: negative traversal fraction on edge %d", ErrInconsistent, id)
		}

		cumLength += fraction * e.Length
		cumElev += fraction * e.Climb
		points = append(points, profile.Point{S: cumLength, Z: cumElev})
	}

	if math.Abs(cumLength-r.Length) > 1e-6*math.Max(1, cumLength) {
		return nil, fmt.Errorf("%w: recomputed length %.3f does not match reported length %.3f", ErrInconsistent, cumLength, r.Length)
	}

	eps := math.Max(5, 0.05*targetLength)
	if math.Abs(cumLength-targetLength) > eps {
		return nil, fmt.Errorf("%w: length %.3f falls outside tolerance %.3f of target %.3f", ErrInconsistent, cumLength, eps, targetLength)
	}

	actual, err := profile.New(points)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInconsistent, err)
	}

	return &Route{
		StartEdgeID:   r.StartEdgeID,
		StartFraction: r.StartFraction,
		EdgeIDs:       r.EdgeIDs,
		EndFraction:   r.EndFraction,
		Length:        cumLength,
		Offset:        r.Offset,
		Cost:          r.Cost,
		Profile:       actual,
	}, nil
}
