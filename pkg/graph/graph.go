// Package graph holds the immutable in-memory road graph: nodes carry a
// planar position and elevation, edges are directed and carry length and
// signed climb. The graph is read-only after construction; concurrent
// reads require no synchronization.
package graph

import "fmt"

// Node is a graph vertex with a planar position and elevation.
type Node struct {
	ID   uint64
	X    float64
	Y    float64
	Elev float64
}

// Edge is a directed arc between two nodes. Climb is signed: elev(To) -
// elev(From) measured along this edge, not necessarily matching a
// straight-line elevation delta if the edge carries intermediate relief.
type Edge struct {
	ID     uint64
	From   uint64
	To     uint64
	Length float64
	Climb  float64
}

// Graph is the immutable directed road graph. Build with Build; do not
// construct a zero Graph and assign fields directly, the adjacency index
// is private and must be derived from the edge set.
type Graph struct {
	nodes     map[uint64]Node
	edges     map[uint64]Edge
	edgeOrder []uint64            // insertion order, used by spatial index and binary codec
	adjacency map[uint64][]uint64 // node id -> outgoing edge ids, in insertion order
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumEdges returns the number of edges in the graph.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Node looks up a node by id.
func (g *Graph) Node(id uint64) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge looks up an edge by id.
func (g *Graph) Edge(id uint64) (Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// Outgoing returns the outgoing edge ids for a node, in the order the
// edges were added to the graph. Returns nil for an unknown node.
func (g *Graph) Outgoing(nodeID uint64) []uint64 {
	return g.adjacency[nodeID]
}

// EdgeIDs returns every edge id in insertion order. Used to bulk-load the
// spatial index and to serialize the graph deterministically.
func (g *Graph) EdgeIDs() []uint64 {
	return g.edgeOrder
}

// Endpoints returns the (x,y) of an edge's from and to nodes. Panics if
// the edge references a node not present in the graph — Build already
// rejects that at construction time, so this indicates a bug, not a
// user error.
func (g *Graph) Endpoints(e Edge) (fx, fy, tx, ty float64) {
	from, ok := g.nodes[e.From]
	if !ok {
		panic(fmt.Sprintf("graph: edge %d references missing node %d", e.ID, e.From))
	}
	to, ok := g.nodes[e.To]
	if !ok {
		panic(fmt.Sprintf("graph: edge %d references missing node %d", e.ID, e.To))
	}
	return from.X, from.Y, to.X, to.Y
}
