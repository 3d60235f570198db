package geo

import (
	"math"
	"testing"
)

func TestDist(t *testing.T) {
	tests := []struct {
		name           string
		ax, ay, bx, by float64
		want           float64
	}{
		{"same point", 10, 10, 10, 10, 0},
		{"horizontal", 0, 0, 100, 0, 100},
		{"3-4-5 triangle", 0, 0, 3, 4, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dist(tt.ax, tt.ay, tt.bx, tt.by)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Dist = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPointToSegmentDist(t *testing.T) {
	tests := []struct {
		name       string
		px, py     float64
		ax, ay     float64
		bx, by     float64
		wantDist   float64
		wantRatio  float64
	}{
		{
			name: "point at start of segment",
			px:   0, py: 0,
			ax: 0, ay: 0,
			bx: 100, by: 0,
			wantDist: 0, wantRatio: 0,
		},
		{
			name: "point at end of segment",
			px:   100, py: 0,
			ax: 0, ay: 0,
			bx: 100, by: 0,
			wantDist: 0, wantRatio: 1,
		},
		{
			name: "perpendicular at midpoint",
			px:   50, py: 10,
			ax: 0, ay: 0,
			bx: 100, by: 0,
			wantDist: 10, wantRatio: 0.5,
		},
		{
			name: "projection clamps before A",
			px:   -10, py: 5,
			ax: 0, ay: 0,
			bx: 100, by: 0,
			wantDist: math.Hypot(10, 5), wantRatio: 0,
		},
		{
			name: "projection clamps past B",
			px:   110, py: 5,
			ax: 0, ay: 0,
			bx: 100, by: 0,
			wantDist: math.Hypot(10, 5), wantRatio: 1,
		},
		{
			name: "degenerate segment (A == B)",
			px:   3, py: 4,
			ax: 0, ay: 0,
			bx: 0, by: 0,
			wantDist: 5, wantRatio: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist, ratio := PointToSegmentDist(tt.px, tt.py, tt.ax, tt.ay, tt.bx, tt.by)
			if math.Abs(dist-tt.wantDist) > 1e-9 {
				t.Errorf("dist = %v, want %v", dist, tt.wantDist)
			}
			if math.Abs(ratio-tt.wantRatio) > 1e-9 {
				t.Errorf("ratio = %v, want %v", ratio, tt.wantRatio)
			}
		})
	}
}
