package spatial_test

import (
	"errors"
	"sort"
	"testing"

	"elevroute/pkg/graph"
	"elevroute/pkg/spatial"
)

func buildGridGraph(t *testing.T) *graph.Graph {
	t.Helper()
	var nodes []graph.Node
	id := uint64(1)
	coord := map[[2]int]uint64{}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			nodes = append(nodes, graph.Node{ID: id, X: float64(x * 160), Y: float64(y * 160)})
			coord[[2]int{x, y}] = id
			id++
		}
	}
	var edges []graph.Edge
	eid := uint64(1)
	addEdge := func(a, b [2]int) {
		edges = append(edges, graph.Edge{ID: eid, From: coord[a], To: coord[b], Length: 160})
		eid++
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if x < 2 {
				addEdge([2]int{x, y}, [2]int{x + 1, y})
				addEdge([2]int{x + 1, y}, [2]int{x, y})
			}
			if y < 2 {
				addEdge([2]int{x, y}, [2]int{x, y + 1})
				addEdge([2]int{x, y + 1}, [2]int{x, y})
			}
		}
	}
	g, err := graph.Build(nodes, edges)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestBuildRejectsEmptyGraph(t *testing.T) {
	g, err := graph.Build(nil, nil)
	if err != nil {
		t.Fatalf("graph.Build: %v", err)
	}
	if _, err := spatial.Build(g); !errors.Is(err, spatial.ErrEmptyGraph) {
		t.Errorf("expected ErrEmptyGraph, got %v", err)
	}
}

func TestQueryDiskFindsNearbyEdges(t *testing.T) {
	g := buildGridGraph(t)
	idx, err := spatial.Build(g)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	ids := idx.QueryDisk(0, 0, 50)
	if len(ids) == 0 {
		t.Fatal("expected at least one candidate edge near origin")
	}

	var found bool
	for _, id := range ids {
		e, _ := g.Edge(id)
		ok, dist, _ := spatial.IntersectsDisk(g, e, 0, 0, 50)
		if ok && dist <= 50 {
			found = true
		}
	}
	if !found {
		t.Error("expected at least one candidate to pass the exact distance filter")
	}
}

func TestQueryDiskExcludesFarEdges(t *testing.T) {
	g := buildGridGraph(t)
	idx, err := spatial.Build(g)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	ids := idx.QueryDisk(0, 0, 10)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		e, _ := g.Edge(id)
		fx, fy, tx, ty := g.Endpoints(e)
		if fx > 170 || tx > 170 || fy > 170 || ty > 170 {
			t.Errorf("edge %d far outside query box leaked into candidates: (%v,%v)-(%v,%v)", id, fx, fy, tx, ty)
		}
	}
}
