package route_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"elevroute/pkg/beam"
	"elevroute/pkg/graph"
	"elevroute/pkg/profile"
	"elevroute/pkg/route"
	"elevroute/pkg/seed"
)

func buildTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	nodes := []graph.Node{{ID: 1}, {ID: 2}, {ID: 3}}
	edges := []graph.Edge{
		{ID: 1, From: 1, To: 2, Length: 100, Climb: 5},
		{ID: 2, From: 2, To: 3, Length: 100, Climb: -5},
	}
	g, err := graph.Build(nodes, edges)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestAssembleSingleEdge(t *testing.T) {
	g := buildTestGraph(t)
	r := &beam.Result{
		StartEdgeID:   1,
		StartFraction: 0,
		EdgeIDs:       []uint64{1},
		EndFraction:   1,
		Length:        100,
	}
	rt, err := route.Assemble(g, r, 100)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if rt.Length != 100 {
		t.Errorf("Length = %v, want 100", rt.Length)
	}
	if rt.Profile.Interpolate(100) != 5 {
		t.Errorf("final elevation = %v, want 5", rt.Profile.Interpolate(100))
	}
}

func TestAssembleMultiEdge(t *testing.T) {
	g := buildTestGraph(t)
	r := &beam.Result{
		StartEdgeID:   1,
		StartFraction: 0,
		EdgeIDs:       []uint64{1, 2},
		EndFraction:   0.5,
		Length:        150,
	}
	rt, err := route.Assemble(g, r, 150)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if rt.Length != 150 {
		t.Errorf("Length = %v, want 150", rt.Length)
	}
	if rt.Profile.Interpolate(150) != 5-2.5 {
		t.Errorf("final elevation = %v, want 2.5", rt.Profile.Interpolate(150))
	}
}

func TestAssembleRejectsUnknownEdge(t *testing.T) {
	g := buildTestGraph(t)
	r := &beam.Result{EdgeIDs: []uint64{999}, EndFraction: 1}
	_, err := route.Assemble(g, r, 100)
	if !errors.Is(err, route.ErrInconsistent) {
		t.Errorf("expected ErrInconsistent, got %v", err)
	}
}

func TestAssembleRejectsLengthMismatch(t *testing.T) {
	g := buildTestGraph(t)
	r := &beam.Result{
		StartEdgeID: 1,
		EdgeIDs:     []uint64{1},
		EndFraction: 1,
		Length:      999, // doesn't match the actual 100m edge
	}
	_, err := route.Assemble(g, r, 999)
	if !errors.Is(err, route.ErrInconsistent) {
		t.Errorf("expected ErrInconsistent, got %v", err)
	}
}

// TestAssembleRejectsLengthOutsideTargetTolerance checks that a
// self-consistent beam.Result (its own reported length matches the
// recomputed one) is still rejected when it falls outside the target
// length's tolerance epsilon.
func TestAssembleRejectsLengthOutsideTargetTolerance(t *testing.T) {
	g := buildTestGraph(t)
	r := &beam.Result{
		StartEdgeID: 1,
		EdgeIDs:     []uint64{1},
		EndFraction: 1,
		Length:      100,
	}
	_, err := route.Assemble(g, r, 300)
	if !errors.Is(err, route.ErrInconsistent) {
		t.Errorf("expected ErrInconsistent, got %v", err)
	}
}

// TestAssembleFromBeamSearchEndToEnd runs beam.Search directly against
// Assemble, checking the assembled Route's own recomputed profile
// agrees with the target it was matched against.
func TestAssembleFromBeamSearchEndToEnd(t *testing.T) {
	g := buildTestGraph(t)
	target, err := profile.New([]profile.Point{{S: 0, Z: 0}, {S: 100, Z: 5}})
	require.NoError(t, err)

	seeds := []seed.Seed{{EdgeID: 1, StartFraction: 0, DistToCenter: 0}}
	result, err := beam.Search(context.Background(), g, seeds, target, beam.Options{})
	require.NoError(t, err)

	rt, err := route.Assemble(g, result, target.TotalLength())
	require.NoError(t, err)
	require.Equal(t, uint64(1), rt.StartEdgeID)
	require.InDelta(t, 100.0, rt.Length, 5.0)
	require.InDelta(t, 5.0, rt.Profile.Interpolate(rt.Length), 1.0)
}
