// Package profile implements the piecewise-linear elevation profile
// model: construction, sampling, and the two dissimilarity measures the
// beam search engine uses to score candidate routes against a target
// profile (area_l1 and its offset-optimal variant).
package profile

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrMalformedProfile is returned when a profile's points do not form a
// valid strictly-increasing, origin-anchored sequence.
var ErrMalformedProfile = errors.New("profile: malformed profile")

// Point is one (cumulative distance, elevation gain) breakpoint.
type Point struct {
	S float64 // cumulative distance along the route, meters
	Z float64 // elevation relative to the route's start, meters
}

// Profile is a piecewise-linear function z(s) defined by an ordered,
// strictly increasing sequence of breakpoints anchored at (0, 0).
type Profile struct {
	Points []Point
}

// New validates points and returns a Profile. The first point must be
// (0, 0) and S must strictly increase; a caller holding points that
// merely starts near the origin should normalize before calling New —
// this constructor does not silently patch the input.
func New(points []Point) (*Profile, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points", ErrMalformedProfile)
	}
	for i, p := range points {
		if math.IsNaN(p.S) || math.IsInf(p.S, 0) || math.IsNaN(p.Z) || math.IsInf(p.Z, 0) {
			return nil, fmt.Errorf("%w: non-finite value at index %d", ErrMalformedProfile, i)
		}
	}
	if points[0].S != 0 || points[0].Z != 0 {
		return nil, fmt.Errorf("%w: first point must be (0,0), got (%g,%g)", ErrMalformedProfile, points[0].S, points[0].Z)
	}
	for i := 1; i < len(points); i++ {
		if points[i].S <= points[i-1].S {
			return nil, fmt.Errorf("%w: S must strictly increase at index %d", ErrMalformedProfile, i)
		}
	}
	cp := make([]Point, len(points))
	copy(cp, points)
	return &Profile{Points: cp}, nil
}

// TotalLength returns the S value of the last breakpoint.
func (p *Profile) TotalLength() float64 {
	return p.Points[len(p.Points)-1].S
}

// Interpolate returns z(s). s is clamped to [0, TotalLength()] — past
// the end of the profile the value holds constant at the last
// breakpoint, which is the convention the beam search engine and area_l1
// rely on when comparing partial routes against the full target.
func (p *Profile) Interpolate(s float64) float64 {
	if s <= 0 {
		return p.Points[0].Z
	}
	last := p.Points[len(p.Points)-1]
	if s >= last.S {
		return last.Z
	}
	// First breakpoint with S > s; the segment ending there contains s.
	i := sort.Search(len(p.Points), func(i int) bool { return p.Points[i].S > s })
	a, b := p.Points[i-1], p.Points[i]
	frac := (s - a.S) / (b.S - a.S)
	return a.Z + frac*(b.Z-a.Z)
}

// sampleStep picks a default sampling resolution for a domain of length
// domainEnd: coarse enough to keep the per-expansion heuristic cost
// bounded, fine enough that a few-meter elevation feature isn't averaged
// away.
func sampleStep(domainEnd float64) float64 {
	if domainEnd <= 0 {
		return 1
	}
	step := domainEnd / 256
	if step < 1 {
		step = 1
	}
	return step
}

// Sample returns z(s) at a uniform grid of points from 0 to domainEnd
// inclusive, spaced by step (or a sensible default if step <= 0).
func Sample(p *Profile, domainEnd, step float64) []Point {
	if step <= 0 {
		step = sampleStep(domainEnd)
	}
	var out []Point
	for s := 0.0; s < domainEnd; s += step {
		out = append(out, Point{S: s, Z: p.Interpolate(s)})
	}
	out = append(out, Point{S: domainEnd, Z: p.Interpolate(domainEnd)})
	return out
}

// AreaL1 returns the L1 (area-between-curves) dissimilarity between two
// profiles over the common domain [0, domainEnd], via trapezoidal
// integration of |f(s) - g(s)| on a uniform sampling grid.
func AreaL1(f, g *Profile, domainEnd float64, step float64) float64 {
	if domainEnd <= 0 {
		return 0
	}
	fs := Sample(f, domainEnd, step)
	gs := Sample(g, domainEnd, step)

	var area float64
	for i := 1; i < len(fs); i++ {
		width := fs[i].S - fs[i-1].S
		d0 := abs(fs[i-1].Z - gs[i-1].Z)
		d1 := abs(fs[i].Z - gs[i].Z)
		area += 0.5 * (d0 + d1) * width
	}
	return area
}

// AreaL1Offset returns the minimal area_l1 between f shifted by a
// constant vertical offset and g, along with the offset that achieves
// it. Minimizing mean absolute shifted error is equivalent to taking the
// weighted median of the residuals g(s)-f(s), weighted by each sample's
// local segment width — not the mean of the residuals, which the
// vertical-shift minimizer of squared error would use instead.
func AreaL1Offset(f, g *Profile, domainEnd float64, step float64) (area float64, offset float64) {
	if domainEnd <= 0 {
		return 0, 0
	}
	fs := Sample(f, domainEnd, step)
	gs := Sample(g, domainEnd, step)

	n := len(fs)
	weights := segmentWeights(fs)

	type weighted struct {
		residual float64
		weight   float64
	}
	ws := make([]weighted, n)
	for i := 0; i < n; i++ {
		ws[i] = weighted{residual: gs[i].Z - fs[i].Z, weight: weights[i]}
	}
	sort.Slice(ws, func(i, j int) bool { return ws[i].residual < ws[j].residual })

	var total float64
	for _, w := range ws {
		total += w.weight
	}
	target := total / 2
	var cum float64
	offset = ws[len(ws)-1].residual
	for _, w := range ws {
		cum += w.weight
		if cum >= target {
			offset = w.residual
			break
		}
	}

	for i := 0; i < n; i++ {
		area += abs(gs[i].Z-(fs[i].Z+offset)) * weights[i]
	}
	return area, offset
}

// segmentWeights returns, for each sample point, half the width of its
// neighboring segments — the trapezoidal quadrature weight at that
// point, used so the offset minimizer treats points at wide spacing
// the same way the area integral does.
func segmentWeights(samples []Point) []float64 {
	n := len(samples)
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	w[0] = (samples[1].S - samples[0].S) / 2
	w[n-1] = (samples[n-1].S - samples[n-2].S) / 2
	for i := 1; i < n-1; i++ {
		w[i] = (samples[i+1].S - samples[i-1].S) / 2
	}
	return w
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
