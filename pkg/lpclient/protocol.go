package lpclient

import (
	"encoding/binary"
	"math"
)

// Request control bytes, written to the solver child's stdin.
const (
	reqReset          byte = 0x00
	reqAddConstraint  byte = 0x01
	reqSolveFast      byte = 0x02
	reqSolveExact     byte = 0x03
)

// Response control bytes, read from the solver child's stdout. Only solve
// requests produce a response; reset and add-constraint are fire-and-forget.
const (
	respFeasible   byte = 0x00
	respInfeasible byte = 0x01
)

// floatSize is the wire width of one float64: 8 bytes, little-endian.
//
// The original protocol this is modeled on uses host-native byte order,
// which only works because both ends of the pipe are built by the same
// toolchain for the same host. That is fragile across a cross-compiled
// solver binary or a different architecture, so this client and
// cmd/lppref-solver both pin little-endian explicitly.
const floatSize = 8

func putFloat64(buf []byte, v float64) {
	binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
}

func getFloat64(buf []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(buf))
}

// encodeFloats serializes vals as consecutive little-endian float64s.
func encodeFloats(vals []float64) []byte {
	buf := make([]byte, floatSize*len(vals))
	for i, v := range vals {
		putFloat64(buf[i*floatSize:], v)
	}
	return buf
}

// decodeFloats parses buf as consecutive little-endian float64s.
func decodeFloats(buf []byte) []float64 {
	n := len(buf) / floatSize
	out := make([]float64, n)
	for i := range out {
		out[i] = getFloat64(buf[i*floatSize:])
	}
	return out
}
