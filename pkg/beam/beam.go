// Package beam implements the route matching search: a beam search over
// partial paths through the road graph, scored against a target
// elevation profile by the area-L1 dissimilarity measure in
// elevroute/pkg/profile.
//
// States are kept in a flat arena addressed by parent pointers, so
// extending a path never copies the edge list that led to it — only the
// final accepted path is ever materialized into a slice.
package beam

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"elevroute/pkg/graph"
	"elevroute/pkg/profile"
	"elevroute/pkg/seed"
)

// ErrNoFeasiblePath is returned when no path within the length tolerance
// was found before the frontier was exhausted or the step budget ran out.
var ErrNoFeasiblePath = errors.New("beam: no feasible path")

// ErrCancelled is returned when ctx is cancelled mid-search.
var ErrCancelled = errors.New("beam: cancelled")

// Options configures the search. Zero values fall back to defaults.
type Options struct {
	BeamWidth      int     // max states kept per depth layer; default 64
	SampleStep     float64 // profile sampling step in meters; default derived from segment length
	Tolerance      float64 // absolute length tolerance in meters; default max(5, 0.05*targetLength)
	RevisitPenalty float64 // additive cost per repeat visit to the same edge; default 0 (off)
	MaxSteps       int     // safety cap on expansion depth; default derived from target length
}

// Result is the raw output of a single Search call: the edge sequence
// of the best-scoring path found, with its start/end fractions and
// final cost. pkg/route turns this into a validated Route.
type Result struct {
	StartEdgeID   uint64
	StartFraction float64
	EdgeIDs       []uint64
	EndFraction   float64
	Length        float64
	Offset        float64
	Cost          float64
}

// arenaNode is one state in the search: a position reached by traversing
// one edge (or, for a seed root, the remainder of the seed's own edge)
// from a parent state. parent == -1 marks a seed root.
type arenaNode struct {
	parent  int32
	edgeID  uint64
	endNode uint64
	length  float64
	elev    float64
	depth   int
	h       float64 // admissible heuristic, computed once at creation

	startFraction float64 // meaningful only when parent == -1
}

// Search runs the beam search over seeds until it exhausts the frontier,
// runs out of step budget, or ctx is cancelled. It returns the single
// best-scoring acceptance-eligible path, or ErrNoFeasiblePath if none was
// ever found.
func Search(ctx context.Context, g *graph.Graph, seeds []seed.Seed, target *profile.Profile, opts Options) (*Result, error) {
	if len(seeds) == 0 {
		return nil, ErrNoFeasiblePath
	}

	beamWidth := opts.BeamWidth
	if beamWidth <= 0 {
		beamWidth = 64
	}
	targetLength := target.TotalLength()
	tolerance := opts.Tolerance
	if tolerance <= 0 {
		tolerance = math.Max(5.0, 0.05*targetLength)
	}
	lMin := targetLength - tolerance
	lMax := targetLength + tolerance
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = int(2 * targetLength / 50)
		if maxSteps < 64 {
			maxSteps = 64
		}
	}

	s := &search{
		g:         g,
		target:    target,
		step:      opts.SampleStep,
		penalty:   opts.RevisitPenalty,
		bestCost:  math.Inf(1),
	}

	frontier := make([]int32, 0, len(seeds))
	for _, sd := range seeds {
		e, ok := g.Edge(sd.EdgeID)
		if !ok {
			continue
		}
		remaining := 1 - sd.StartFraction
		n := arenaNode{
			parent:        -1,
			edgeID:        sd.EdgeID,
			endNode:       e.To,
			length:        remaining * e.Length,
			elev:          remaining * e.Climb,
			depth:         0,
			startFraction: sd.StartFraction,
		}
		idx := s.push(n)
		s.arena[idx].h = s.heuristic(idx)
		frontier = append(frontier, idx)

		// A single-edge route is acceptance-eligible directly off the
		// seed: the route never leaves the edge it started on.
		s.considerAcceptance(-1, sd.StartFraction, sd.StartFraction, 1.0, e, 0, 0, sd.StartFraction, lMin, lMax)
	}
	frontier = s.pruneFrontier(frontier, beamWidth)

	for step := 0; step < maxSteps && len(frontier) > 0; step++ {
		var next []int32
		for _, idx := range frontier {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCancelled, err)
			}
			n := s.arena[idx]
			if n.h > s.bestCost {
				continue // admissible heuristic already exceeds the best known complete cost
			}

			for _, eid := range g.Outgoing(n.endNode) {
				e, _ := g.Edge(eid)
				childLength := n.length + e.Length
				if childLength > lMax {
					continue // overshoot: this edge alone blows the tolerance window
				}

				child := arenaNode{
					parent:  idx,
					edgeID:  eid,
					endNode: e.To,
					length:  childLength,
					elev:    n.elev + e.Climb,
					depth:   n.depth + 1,
				}
				cidx := s.push(child)
				s.arena[cidx].h = s.heuristic(cidx)

				if childLength >= lMin && childLength <= lMax {
					s.considerAcceptance(idx, 0, 0, 1.0, e, n.length, n.elev, 0, lMin, lMax)
				}

				next = append(next, cidx)
			}
		}
		frontier = s.pruneFrontier(next, beamWidth)
	}

	if s.best == nil {
		return nil, ErrNoFeasiblePath
	}
	return s.best, nil
}

// search carries the arena and best-result state threaded through one
// Search call. It is not reused across queries — a fresh search starts
// with an empty arena, so arena indices from one query can never be
// mistaken for another's.
type search struct {
	g       *graph.Graph
	target  *profile.Profile
	step    float64
	penalty float64

	arena []arenaNode

	best     *Result
	bestCost float64
}

func (s *search) push(n arenaNode) int32 {
	s.arena = append(s.arena, n)
	return int32(len(s.arena) - 1)
}

// breakpoints reconstructs the (s, z) profile of the path ending at
// arena index idx, walking the parent chain back to its seed root. This
// is the one place the implementation pays an O(depth) cost per state
// instead of O(1): the admissible heuristic needs the whole visited
// profile, not just the current endpoint.
func (s *search) breakpoints(idx int32) []profile.Point {
	if idx < 0 {
		return []profile.Point{{S: 0, Z: 0}}
	}
	var chain []int32
	for i := idx; i != -1; i = s.arena[i].parent {
		chain = append(chain, i)
	}
	pts := make([]profile.Point, 0, len(chain)+1)
	pts = append(pts, profile.Point{S: 0, Z: 0})
	for i := len(chain) - 1; i >= 0; i-- {
		n := s.arena[chain[i]]
		pts = append(pts, profile.Point{S: n.length, Z: n.elev})
	}
	return pts
}

func (s *search) heuristic(idx int32) float64 {
	pts := s.breakpoints(idx)
	actual, err := profile.New(pts)
	if err != nil {
		return math.Inf(1)
	}
	cost := profile.AreaL1(actual, s.target, actual.TotalLength(), s.step)
	if s.penalty > 0 {
		cost += s.penalty * float64(revisitCount(s.arena, idx))
	}
	return cost
}

func revisitCount(arena []arenaNode, idx int32) int {
	if idx < 0 {
		return 0
	}
	target := arena[idx].edgeID
	count := 0
	for i := arena[idx].parent; i != -1; i = arena[i].parent {
		if arena[i].edgeID == target {
			count++
		}
	}
	return count
}

// considerAcceptance checks whether ending the route partway through
// edge e — at some end fraction t in [tMinBound, tMaxBound], with the
// edge traversal itself starting at fraction startT — can land the
// total route length within [lMin, lMax]. If so it searches that
// feasible sub-interval for the end fraction minimizing the offset-
// optimal area_l1 cost, updating s.best if it improves on s.bestCost.
// Among end fractions of equal cost, the one whose total route length is
// closest to the target length wins.
//
// lengthPrev and elevPrev are the cumulative length and elevation at
// the start of this edge traversal (i.e. at fraction startT), not at
// the edge's own t=0. For an ordinary child edge startT is 0 and
// lengthPrev/elevPrev come from the parent state; for a seed's own
// edge startT is the seed's start fraction and lengthPrev/elevPrev are
// both 0, since the route begins partway into that edge.
//
// parentIdx is the state reached just before entering e (-1 for a seed's
// own edge). rootStartFraction is only used when parentIdx == -1, to
// record the route's starting fraction in the result.
func (s *search) considerAcceptance(parentIdx int32, startT, tMinBound, tMaxBound float64, e graph.Edge, lengthPrev, elevPrev, rootStartFraction, lMin, lMax float64) {
	lo, hi := tMinBound, tMaxBound
	if e.Length > 0 {
		feasibleLo := startT + (lMin-lengthPrev)/e.Length
		feasibleHi := startT + (lMax-lengthPrev)/e.Length
		if feasibleLo > lo {
			lo = feasibleLo
		}
		if feasibleHi < hi {
			hi = feasibleHi
		}
	}
	if lo > hi {
		return
	}

	prefix := s.breakpoints(parentIdx)

	const steps = 32
	bestT := lo
	bestCost := math.Inf(1)
	bestOffset := 0.0
	bestDev := math.Inf(1)
	targetLength := s.target.TotalLength()
	for i := 0; i <= steps; i++ {
		t := lo + (hi-lo)*float64(i)/steps
		length := lengthPrev + (t-startT)*e.Length
		elev := elevPrev + (t-startT)*e.Climb
		pts := append(append([]profile.Point{}, prefix...), profile.Point{S: length, Z: elev})
		actual, err := profile.New(pts)
		if err != nil {
			continue
		}
		cost, offset := profile.AreaL1Offset(actual, s.target, s.target.TotalLength(), s.step)
		dev := math.Abs(length - targetLength)
		if cost < bestCost || (cost == bestCost && dev < bestDev) {
			bestCost = cost
			bestT = t
			bestOffset = offset
			bestDev = dev
		}
	}
	if bestCost >= s.bestCost {
		return
	}

	var startEdgeID uint64
	var startFraction float64
	var edgeIDs []uint64
	if parentIdx == -1 {
		startEdgeID = e.ID
		startFraction = rootStartFraction
		edgeIDs = []uint64{e.ID}
	} else {
		edgeIDs = s.reconstructPath(parentIdx)
		root := s.arena[rootOf(s.arena, parentIdx)]
		startEdgeID = root.edgeID
		startFraction = root.startFraction
		edgeIDs = append(edgeIDs, e.ID)
	}

	s.bestCost = bestCost
	s.best = &Result{
		StartEdgeID:   startEdgeID,
		StartFraction: startFraction,
		EdgeIDs:       edgeIDs,
		EndFraction:   bestT,
		Length:        lengthPrev + (bestT-startT)*e.Length,
		Offset:        bestOffset,
		Cost:          bestCost,
	}
}

func rootOf(arena []arenaNode, idx int32) int32 {
	for arena[idx].parent != -1 {
		idx = arena[idx].parent
	}
	return idx
}

func (s *search) reconstructPath(idx int32) []uint64 {
	var chain []uint64
	for i := idx; i != -1; i = s.arena[i].parent {
		chain = append(chain, s.arena[i].edgeID)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// pruneFrontier sorts by heuristic ascending, ties broken by shorter
// length then insertion order, and truncates to beamWidth.
func (s *search) pruneFrontier(idxs []int32, beamWidth int) []int32 {
	sort.SliceStable(idxs, func(i, j int) bool {
		a, b := s.arena[idxs[i]], s.arena[idxs[j]]
		if a.h != b.h {
			return a.h < b.h
		}
		return a.length < b.length
	})
	if len(idxs) > beamWidth {
		idxs = idxs[:beamWidth]
	}
	return idxs
}
