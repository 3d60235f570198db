package graph

import (
	"errors"
	"fmt"
)

// ErrCorruptGraph is returned for any structural inconsistency in a
// graph: a binary file that fails its checksum, an edge referencing an
// unknown node, a duplicate id, or any other invariant violation.
var ErrCorruptGraph = errors.New("graph: corrupt graph")

// ErrEmptyGraph is returned when an operation requires at least one node
// or edge and the graph has none.
var ErrEmptyGraph = errors.New("graph: empty graph")

// Build validates a raw node and edge set and assembles the adjacency
// index. Edges are kept in the order given; that order is preserved by
// EdgeIDs and drives spatial index bulk-load order and binary
// serialization order. Nodes are stored by id, without an order.
func Build(nodes []Node, edges []Edge) (*Graph, error) {
	g := &Graph{
		nodes:     make(map[uint64]Node, len(nodes)),
		edges:     make(map[uint64]Edge, len(edges)),
		edgeOrder: make([]uint64, 0, len(edges)),
		adjacency: make(map[uint64][]uint64, len(nodes)),
	}

	for _, n := range nodes {
		if _, dup := g.nodes[n.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate node id %d", ErrCorruptGraph, n.ID)
		}
		g.nodes[n.ID] = n
	}

	for _, e := range edges {
		if _, dup := g.edges[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate edge id %d", ErrCorruptGraph, e.ID)
		}
		if _, ok := g.nodes[e.From]; !ok {
			return nil, fmt.Errorf("%w: edge %d references unknown node %d", ErrCorruptGraph, e.ID, e.From)
		}
		if _, ok := g.nodes[e.To]; !ok {
			return nil, fmt.Errorf("%w: edge %d references unknown node %d", ErrCorruptGraph, e.ID, e.To)
		}
		if e.Length < 0 {
			return nil, fmt.Errorf("%w: edge %d has negative length %g", ErrCorruptGraph, e.ID, e.Length)
		}
		g.edges[e.ID] = e
		g.edgeOrder = append(g.edgeOrder, e.ID)
		g.adjacency[e.From] = append(g.adjacency[e.From], e.ID)
	}

	return g, nil
}
