// Package ingest parses the JSONL road-graph input format into a
// elevroute/pkg/graph.Graph. Parsing is two-pass: a first pass collects
// every node and edge record into memory, and a second pass
// (graph.Build) resolves edges against the node set and builds the
// adjacency index. A true streaming single-pass parser isn't possible
// here since an edge record can reference a node that appears later in
// the file.
package ingest

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"elevroute/pkg/graph"
)

// ErrMalformedInput is returned for any JSONL record that fails to
// parse or is missing required fields.
var ErrMalformedInput = errors.New("ingest: malformed input")

// record is the union of the three JSONL record shapes. Slope is parsed
// but discarded: it is derivable from length and climb, carried in the
// wire format only for forward compatibility with producers that
// compute it themselves.
type record struct {
	Type string `json:"type"`

	// node fields
	ID   *uint64  `json:"id"`
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
	Elev *float64 `json:"elev"`

	// edge fields
	From   *uint64  `json:"u"`
	To     *uint64  `json:"v"`
	Length *float64 `json:"length_m"`
	Climb  *float64 `json:"climb_m"`
	Slope  *float64 `json:"slope"`
}

// Parse reads newline-delimited JSON records and builds a Graph. Unknown
// record types are rejected; a "meta" record is accepted and ignored
// (reserved for a producer-supplied description/version, not consumed
// by the matcher).
func Parse(r io.Reader) (*graph.Graph, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var nodes []graph.Node
	var edges []graph.Edge

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, lineNo, err)
		}

		switch rec.Type {
		case "meta":
			continue
		case "node":
			n, err := toNode(rec, lineNo)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case "edge":
			e, err := toEdge(rec, lineNo)
			if err != nil {
				return nil, err
			}
			edges = append(edges, e)
		default:
			return nil, fmt.Errorf("%w: line %d: unknown record type %q", ErrMalformedInput, lineNo, rec.Type)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	g, err := graph.Build(nodes, edges)
	if err != nil {
		if errors.Is(err, graph.ErrCorruptGraph) {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		return nil, err
	}
	return g, nil
}

func toNode(rec record, lineNo int) (graph.Node, error) {
	if rec.ID == nil || rec.X == nil || rec.Y == nil {
		return graph.Node{}, fmt.Errorf("%w: line %d: node record missing id/x/y", ErrMalformedInput, lineNo)
	}
	if nonFinite(*rec.X, *rec.Y) || (rec.Elev != nil && nonFinite(*rec.Elev)) {
		return graph.Node{}, fmt.Errorf("%w: line %d: node record has NaN/Inf field", ErrMalformedInput, lineNo)
	}
	n := graph.Node{ID: *rec.ID, X: *rec.X, Y: *rec.Y}
	if rec.Elev != nil {
		n.Elev = *rec.Elev
	}
	return n, nil
}

func toEdge(rec record, lineNo int) (graph.Edge, error) {
	if rec.ID == nil || rec.From == nil || rec.To == nil || rec.Length == nil {
		return graph.Edge{}, fmt.Errorf("%w: line %d: edge record missing id/u/v/length_m", ErrMalformedInput, lineNo)
	}
	if nonFinite(*rec.Length) || (rec.Climb != nil && nonFinite(*rec.Climb)) {
		return graph.Edge{}, fmt.Errorf("%w: line %d: edge record has NaN/Inf field", ErrMalformedInput, lineNo)
	}
	e := graph.Edge{ID: *rec.ID, From: *rec.From, To: *rec.To, Length: *rec.Length}
	if rec.Climb != nil {
		e.Climb = *rec.Climb
	}
	return e, nil
}

// nonFinite reports whether any of vs is NaN or infinite.
func nonFinite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
