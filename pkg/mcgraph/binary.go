package mcgraph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"
)

// Binary persistence for an augmented graph, adapted from the teacher's
// pkg/graph/binary.go: same magic-bytes header, CRC32 trailer, and
// unsafe.Slice zero-copy array I/O. The cost vector is no longer a single
// uint32 weight per edge, so it is stored as one flat Dim*NumEdges float64
// block (edge i's vector occupies Cost[i*Dim:(i+1)*Dim]) rather than the
// teacher's per-edge scalar array.
const (
	magicBytes = "MCCHGRPH"
	version    = uint32(1)
	maxNodes   = 10_000_000
	maxEdges   = 50_000_000
)

type fileHeader struct {
	Magic    [8]byte
	Version  uint32
	Dim      uint32
	NumNodes uint32
	NumEdges uint32
}

// WriteBinary serializes g to a binary file, writing to a temp path and
// renaming into place so a crash mid-write never leaves a truncated file
// at the destination path.
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

	cw := &crc32Writer{w: f, hash: crc32.NewIEEE()}

	hdr := fileHeader{
		Version:  version,
		Dim:      uint32(g.Dim),
		NumNodes: g.NumNodes,
		NumEdges: g.NumEdges,
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(cw, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if err := writeFloat64Slice(cw, g.NodeLat); err != nil {
		return fmt.Errorf("write NodeLat: %w", err)
	}
	if err := writeFloat64Slice(cw, g.NodeLon); err != nil {
		return fmt.Errorf("write NodeLon: %w", err)
	}

	if err := writeUint32Slice(cw, g.FirstOut); err != nil {
		return fmt.Errorf("write FirstOut: %w", err)
	}
	if err := writeUint32Slice(cw, g.Head); err != nil {
		return fmt.Errorf("write Head: %w", err)
	}
	if err := writeUint32Slice(cw, g.EdgeID); err != nil {
		return fmt.Errorf("write EdgeID: %w", err)
	}
	if err := writeFloat64Slice(cw, flattenCost(g.Cost, g.Dim)); err != nil {
		return fmt.Errorf("write Cost: %w", err)
	}

	if err := writeUint32Slice(cw, g.FirstIn); err != nil {
		return fmt.Errorf("write FirstIn: %w", err)
	}
	if err := writeUint32Slice(cw, g.Tail); err != nil {
		return fmt.Errorf("write Tail: %w", err)
	}
	if err := writeUint32Slice(cw, g.InEdge); err != nil {
		return fmt.Errorf("write InEdge: %w", err)
	}

	checksum := cw.hash.Sum32()
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

// ReadBinary deserializes a Graph written by WriteBinary.
func ReadBinary(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	cr := &crc32Reader{r: f, hash: crc32.NewIEEE()}

	var hdr fileHeader
	if err := binary.Read(cr, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("NumEdges %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}

	g := &Graph{Dim: int(hdr.Dim), NumNodes: hdr.NumNodes, NumEdges: hdr.NumEdges}

	if g.NodeLat, err = readFloat64Slice(cr, int(hdr.NumNodes)); err != nil {
		return nil, fmt.Errorf("read NodeLat: %w", err)
	}
	if g.NodeLon, err = readFloat64Slice(cr, int(hdr.NumNodes)); err != nil {
		return nil, fmt.Errorf("read NodeLon: %w", err)
	}

	if g.FirstOut, err = readUint32Slice(cr, int(hdr.NumNodes+1)); err != nil {
		return nil, fmt.Errorf("read FirstOut: %w", err)
	}
	if g.Head, err = readUint32Slice(cr, int(hdr.NumEdges)); err != nil {
		return nil, fmt.Errorf("read Head: %w", err)
	}
	if g.EdgeID, err = readUint32Slice(cr, int(hdr.NumEdges)); err != nil {
		return nil, fmt.Errorf("read EdgeID: %w", err)
	}
	flatCost, err := readFloat64Slice(cr, int(hdr.NumEdges)*int(hdr.Dim))
	if err != nil {
		return nil, fmt.Errorf("read Cost: %w", err)
	}
	g.Cost = unflattenCost(flatCost, int(hdr.NumEdges), int(hdr.Dim))

	if g.FirstIn, err = readUint32Slice(cr, int(hdr.NumNodes+1)); err != nil {
		return nil, fmt.Errorf("read FirstIn: %w", err)
	}
	if g.Tail, err = readUint32Slice(cr, int(hdr.NumEdges)); err != nil {
		return nil, fmt.Errorf("read Tail: %w", err)
	}
	if g.InEdge, err = readUint32Slice(cr, int(hdr.NumEdges)); err != nil {
		return nil, fmt.Errorf("read InEdge: %w", err)
	}

	expectedCRC := cr.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	if err := validateCSR(g.FirstOut, g.Head, g.NumNodes); err != nil {
		return nil, fmt.Errorf("forward CSR invalid: %w", err)
	}

	return g, nil
}

func validateCSR(firstOut, head []uint32, numNodes uint32) error {
	if uint32(len(firstOut)) != numNodes+1 {
		return fmt.Errorf("FirstOut length %d != NumNodes+1 %d", len(firstOut), numNodes+1)
	}
	for i := uint32(1); i <= numNodes; i++ {
		if firstOut[i] < firstOut[i-1] {
			return fmt.Errorf("FirstOut not monotonic at %d: %d < %d", i, firstOut[i], firstOut[i-1])
		}
	}
	for i, h := range head {
		if h >= numNodes {
			return fmt.Errorf("Head[%d]=%d >= NumNodes=%d", i, h, numNodes)
		}
	}
	return nil
}

func flattenCost(cost [][]float64, dim int) []float64 {
	flat := make([]float64, len(cost)*dim)
	for i, c := range cost {
		copy(flat[i*dim:(i+1)*dim], c)
	}
	return flat
}

func unflattenCost(flat []float64, numEdges, dim int) [][]float64 {
	if dim == 0 {
		return make([][]float64, numEdges)
	}
	cost := make([][]float64, numEdges)
	for i := 0; i < numEdges; i++ {
		cost[i] = append([]float64(nil), flat[i*dim:(i+1)*dim]...)
	}
	return cost
}

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
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

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
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

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
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
