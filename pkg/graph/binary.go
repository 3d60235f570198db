package graph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"sort"
	"unsafe"
)

const (
	magicBytes = "ELEVPROF"
	version    = uint32(1)
	maxNodes   = 10_000_000
	maxEdges   = 50_000_000
)

// fileHeader is the binary header. NumEdges follows NumNodes; the rest
// of the file is nine parallel columns (four node columns, then five
// edge columns; structure-of-arrays, not an array of node/edge structs)
// followed by a CRC32 trailer, so the bulk arrays can be read and
// written with unsafe.Slice instead of one binary.Read call per field.
type fileHeader struct {
	Magic    [8]byte
	Version  uint32
	NumNodes uint32
	NumEdges uint32
}

// WriteBinary serializes a Graph to path. The write goes to a temp file
// in the same directory and is renamed into place once the CRC32
// trailer is written, so a crash mid-write never leaves a truncated
// file at path.
func WriteBinary(path string, g *Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	crcWriter := crc32Writer{w: f, hash: crc32.NewIEEE()}
	w := &crcWriter

	hdr := fileHeader{
		Version:  version,
		NumNodes: uint32(len(g.nodes)),
		NumEdges: uint32(len(g.edgeOrder)),
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	nodeIDs := make([]uint64, 0, len(g.nodes))
	for id := range g.nodes {
		nodeIDs = append(nodeIDs, id)
	}
	// Deterministic output: sort node ids ascending. Edge order is
	// already deterministic (insertion order from Build).
	sort.Slice(nodeIDs, func(i, j int) bool { return nodeIDs[i] < nodeIDs[j] })

	nodeX := make([]float64, len(nodeIDs))
	nodeY := make([]float64, len(nodeIDs))
	nodeElev := make([]float64, len(nodeIDs))
	for i, id := range nodeIDs {
		n := g.nodes[id]
		nodeX[i] = n.X
		nodeY[i] = n.Y
		nodeElev[i] = n.Elev
	}

	edgeID := make([]uint64, len(g.edgeOrder))
	edgeFrom := make([]uint64, len(g.edgeOrder))
	edgeTo := make([]uint64, len(g.edgeOrder))
	edgeLength := make([]float64, len(g.edgeOrder))
	edgeClimb := make([]float64, len(g.edgeOrder))
	for i, id := range g.edgeOrder {
		e := g.edges[id]
		edgeID[i] = e.ID
		edgeFrom[i] = e.From
		edgeTo[i] = e.To
		edgeLength[i] = e.Length
		edgeClimb[i] = e.Climb
	}

	for _, step := range []struct {
		name string
		fn   func() error
	}{
		{"NodeID", func() error { return writeUint64Slice(w, nodeIDs) }},
		{"NodeX", func() error { return writeFloat64Slice(w, nodeX) }},
		{"NodeY", func() error { return writeFloat64Slice(w, nodeY) }},
		{"NodeElev", func() error { return writeFloat64Slice(w, nodeElev) }},
		{"EdgeID", func() error { return writeUint64Slice(w, edgeID) }},
		{"EdgeFrom", func() error { return writeUint64Slice(w, edgeFrom) }},
		{"EdgeTo", func() error { return writeUint64Slice(w, edgeTo) }},
		{"EdgeLength", func() error { return writeFloat64Slice(w, edgeLength) }},
		{"EdgeClimb", func() error { return writeFloat64Slice(w, edgeClimb) }},
	} {
		if err := step.fn(); err != nil {
			return fmt.Errorf("write %s: %w", step.name, err)
		}
	}

	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ReadBinary deserializes a Graph from path, validating the magic,
// version, and CRC32 trailer before returning it.
func ReadBinary(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	crcReader := crc32Reader{r: f, hash: crc32.NewIEEE()}
	r := &crcReader

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrCorruptGraph, err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("%w: invalid magic bytes %q", ErrCorruptGraph, hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptGraph, hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("%w: NumNodes %d exceeds limit %d", ErrCorruptGraph, hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("%w: NumEdges %d exceeds limit %d", ErrCorruptGraph, hdr.NumEdges, maxEdges)
	}

	nodeIDs, err := readUint64Slice(r, int(hdr.NumNodes))
	if err != nil {
		return nil, fmt.Errorf("%w: read NodeID: %v", ErrCorruptGraph, err)
	}
	nodeX, err := readFloat64Slice(r, int(hdr.NumNodes))
	if err != nil {
		return nil, fmt.Errorf("%w: read NodeX: %v", ErrCorruptGraph, err)
	}
	nodeY, err := readFloat64Slice(r, int(hdr.NumNodes))
	if err != nil {
		return nil, fmt.Errorf("%w: read NodeY: %v", ErrCorruptGraph, err)
	}
	nodeElev, err := readFloat64Slice(r, int(hdr.NumNodes))
	if err != nil {
		return nil, fmt.Errorf("%w: read NodeElev: %v", ErrCorruptGraph, err)
	}

	edgeID, err := readUint64Slice(r, int(hdr.NumEdges))
	if err != nil {
		return nil, fmt.Errorf("%w: read EdgeID: %v", ErrCorruptGraph, err)
	}
	edgeFrom, err := readUint64Slice(r, int(hdr.NumEdges))
	if err != nil {
		return nil, fmt.Errorf("%w: read EdgeFrom: %v", ErrCorruptGraph, err)
	}
	edgeTo, err := readUint64Slice(r, int(hdr.NumEdges))
	if err != nil {
		return nil, fmt.Errorf("%w: read EdgeTo: %v", ErrCorruptGraph, err)
	}
	edgeLength, err := readFloat64Slice(r, int(hdr.NumEdges))
	if err != nil {
		return nil, fmt.Errorf("%w: read EdgeLength: %v", ErrCorruptGraph, err)
	}
	edgeClimb, err := readFloat64Slice(r, int(hdr.NumEdges))
	if err != nil {
		return nil, fmt.Errorf("%w: read EdgeClimb: %v", ErrCorruptGraph, err)
	}

	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("%w: read CRC32: %v", ErrCorruptGraph, err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("%w: CRC32 mismatch: stored=%08x computed=%08x", ErrCorruptGraph, storedCRC, expectedCRC)
	}

	nodes := make([]Node, hdr.NumNodes)
	for i := range nodeIDs {
		nodes[i] = Node{ID: nodeIDs[i], X: nodeX[i], Y: nodeY[i], Elev: nodeElev[i]}
	}
	edges := make([]Edge, hdr.NumEdges)
	for i := range edgeID {
		edges[i] = Edge{ID: edgeID[i], From: edgeFrom[i], To: edgeTo[i], Length: edgeLength[i], Climb: edgeClimb[i]}
	}

	g, err := Build(nodes, edges)
	if err != nil {
		return nil, err
	}
	if g.NumNodes() == 0 {
		return nil, ErrEmptyGraph
	}
	return g, nil
}

// Zero-copy I/O helpers using unsafe.Slice.

func writeUint64Slice(w io.Writer, s []uint64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func readUint64Slice(r io.Reader, n int) ([]uint64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat64Slice(r io.Reader, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
