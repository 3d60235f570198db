package beam_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"elevroute/pkg/beam"
	"elevroute/pkg/graph"
	"elevroute/pkg/profile"
	"elevroute/pkg/seed"
)

// buildFlatLoop builds a square loop of four 100m edges with no climb,
// so a 100m-long flat target profile should match a single edge almost
// exactly, starting at fraction 0.
func buildFlatLoop(t *testing.T) *graph.Graph {
	t.Helper()
	nodes := []graph.Node{
		{ID: 1, X: 0, Y: 0},
		{ID: 2, X: 100, Y: 0},
		{ID: 3, X: 100, Y: 100},
		{ID: 4, X: 0, Y: 100},
	}
	edges := []graph.Edge{
		{ID: 1, From: 1, To: 2, Length: 100},
		{ID: 2, From: 2, To: 3, Length: 100},
		{ID: 3, From: 3, To: 4, Length: 100},
		{ID: 4, From: 4, To: 1, Length: 100},
	}
	g, err := graph.Build(nodes, edges)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestSearchFindsFlatSingleEdgeMatch(t *testing.T) {
	g := buildFlatLoop(t)
	target, err := profile.New([]profile.Point{{S: 0, Z: 0}, {S: 100, Z: 0}})
	if err != nil {
		t.Fatalf("profile.New: %v", err)
	}

	seeds := []seed.Seed{{EdgeID: 1, StartFraction: 0, DistToCenter: 0}}
	result, err := beam.Search(context.Background(), g, seeds, target, beam.Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.StartEdgeID != 1 {
		t.Errorf("StartEdgeID = %d, want 1", result.StartEdgeID)
	}
	if len(result.EdgeIDs) != 1 {
		t.Errorf("EdgeIDs = %v, want a single edge", result.EdgeIDs)
	}
	if result.EndFraction < 0.95 {
		t.Errorf("EndFraction = %v, want ~1.0", result.EndFraction)
	}
}

func TestSearchReturnsNoFeasiblePathWithoutSeeds(t *testing.T) {
	g := buildFlatLoop(t)
	target, _ := profile.New([]profile.Point{{S: 0, Z: 0}, {S: 100, Z: 0}})
	_, err := beam.Search(context.Background(), g, nil, target, beam.Options{})
	if !errors.Is(err, beam.ErrNoFeasiblePath) {
		t.Errorf("expected ErrNoFeasiblePath, got %v", err)
	}
}

func TestSearchRespectsCancellation(t *testing.T) {
	g := buildFlatLoop(t)
	target, _ := profile.New([]profile.Point{{S: 0, Z: 0}, {S: 10000, Z: 0}})
	seeds := []seed.Seed{{EdgeID: 1, StartFraction: 0}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := beam.Search(ctx, g, seeds, target, beam.Options{BeamWidth: 4, MaxSteps: 100000})
	if err == nil {
		t.Fatal("expected an error for a pre-cancelled context on a long search")
	}
}

// TestSearchExtendsAcrossEdgesForLongerTarget end-to-end checks that a
// target longer than any single edge forces the search to chain edges
// together, walking the full 400m loop back to its start.
func TestSearchExtendsAcrossEdgesForLongerTarget(t *testing.T) {
	g := buildFlatLoop(t)
	target, err := profile.New([]profile.Point{{S: 0, Z: 0}, {S: 400, Z: 0}})
	require.NoError(t, err)

	seeds := []seed.Seed{{EdgeID: 1, StartFraction: 0, DistToCenter: 0}}
	result, err := beam.Search(context.Background(), g, seeds, target, beam.Options{BeamWidth: 16})
	require.NoError(t, err)
	require.Len(t, result.EdgeIDs, 4)
	require.Equal(t, uint64(1), result.StartEdgeID)
	require.InDelta(t, 400.0, result.Length, 5.0)
}
