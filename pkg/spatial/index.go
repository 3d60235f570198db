// Package spatial provides an R-tree index over edge bounding boxes so a
// disk query (center, radius) returns only the edges that could plausibly
// intersect it, instead of scanning every edge in the graph.
package spatial

import (
	"errors"

	"github.com/tidwall/rtree"

	"elevroute/pkg/geo"
	"elevroute/pkg/graph"
)

// ErrEmptyGraph is returned by Build when the graph has no edges to index.
var ErrEmptyGraph = errors.New("spatial: empty graph")

// Index is an R-tree of edge axis-aligned bounding boxes, keyed by edge
// id. It is read-only after Build.
type Index struct {
	tr *rtree.RTreeG[uint64]
}

// Build bulk-inserts every edge's bounding box into a fresh R-tree.
func Build(g *graph.Graph) (*Index, error) {
	if g.NumEdges() == 0 {
		return nil, ErrEmptyGraph
	}

	var tr rtree.RTreeG[uint64]
	for _, id := range g.EdgeIDs() {
		e, _ := g.Edge(id)
		fx, fy, tx, ty := g.Endpoints(e)

		minX, maxX := fx, tx
		if minX > maxX {
			minX, maxX = maxX, minX
		}
		minY, maxY := fy, ty
		if minY > maxY {
			minY, maxY = maxY, minY
		}

		tr.Insert([2]float64{minX, minY}, [2]float64{maxX, maxY}, id)
	}

	return &Index{tr: &tr}, nil
}

// QueryDisk returns the ids of every edge whose bounding box intersects
// the axis-aligned square enclosing the disk of the given radius around
// (cx, cy). The caller is expected to apply an exact point-to-segment
// distance filter afterward — this is a coarse candidate pass, not an
// exact disk-intersection test.
func (x *Index) QueryDisk(cx, cy, radius float64) []uint64 {
	min := [2]float64{cx - radius, cy - radius}
	max := [2]float64{cx + radius, cy + radius}

	var ids []uint64
	x.tr.Search(min, max, func(_, _ [2]float64, id uint64) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}

// IntersectsDisk reports whether edge e (looked up from g) actually
// comes within radius of (cx, cy) — the exact filter QueryDisk's
// candidates must still pass.
func IntersectsDisk(g *graph.Graph, e graph.Edge, cx, cy, radius float64) (bool, float64, float64) {
	fx, fy, tx, ty := g.Endpoints(e)
	dist, t := geo.PointToSegmentDist(cx, cy, fx, fy, tx, ty)
	return dist <= radius, dist, t
}
