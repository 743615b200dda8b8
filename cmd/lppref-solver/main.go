// Command lppref-solver is the external LP oracle process spec.md §6
// describes: it maintains a set of linear constraints over a preference
// vector on the simplex and answers feasibility/slack queries over a
// small binary stdio protocol.
//
// It is launched with the objective dimension as its sole argument and
// talks to its parent contractor exactly as pkg/lpclient expects: one
// control byte per request, little-endian float64 payloads, and a
// feasible/infeasible response only for solve requests.
package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"syscall"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const floatSize = 8

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: lppref-solver <dimension>")
		os.Exit(2)
	}
	dim, err := strconv.Atoi(os.Args[1])
	if err != nil || dim <= 0 {
		fmt.Fprintf(os.Stderr, "lppref-solver: invalid dimension %q\n", os.Args[1])
		os.Exit(2)
	}

	protoOut := silenceStdoutDiagnostics()

	in := bufio.NewReader(os.Stdin)
	out := bufio.NewWriter(protoOut)

	s := newSolverState(dim)

	if err := s.run(in, out); err != nil && err != io.EOF {
		fmt.Fprintf(os.Stderr, "lppref-solver: %v\n", err)
		os.Exit(1)
	}
}

// silenceStdoutDiagnostics duplicates the process's real stdout file
// descriptor aside, then redirects fd 1 onto stderr for the rest of the
// process's life. The vendored LP solver prints trace lines to
// os.Stdout on every iteration; after this call those lines land on
// stderr instead of corrupting the binary protocol, and the returned
// *os.File is the only remaining way to write to the original stdout
// pipe the parent contractor reads.
func silenceStdoutDiagnostics() *os.File {
	savedFD, err := syscall.Dup(int(os.Stdout.Fd()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "lppref-solver: dup stdout: %v\n", err)
		os.Exit(1)
	}
	if err := syscall.Dup2(int(os.Stderr.Fd()), int(os.Stdout.Fd())); err != nil {
		fmt.Fprintf(os.Stderr, "lppref-solver: redirect stdout to stderr: %v\n", err)
		os.Exit(1)
	}
	return os.NewFile(uintptr(savedFD), "lppref-solver-proto-stdout")
}

// Request control bytes, mirrored from pkg/lpclient/protocol.go. Kept as a
// second, independent definition rather than a shared package: the wire
// protocol is the contract between two separately-built binaries, not
// library surface to share.
const (
	reqReset         byte = 0x00
	reqAddConstraint byte = 0x01
	reqSolveFast     byte = 0x02
	reqSolveExact    byte = 0x03
)

const (
	respFeasible   byte = 0x00
	respInfeasible byte = 0x01
)

// solverState holds the constraint set accumulated since the last reset.
type solverState struct {
	dim         int
	constraints [][]float64 // each row: c_j, interpreted as c_j . alpha >= 0
}

func newSolverState(dim int) *solverState {
	return &solverState{dim: dim}
}

func (s *solverState) run(in *bufio.Reader, out *bufio.Writer) error {
	buf := make([]byte, floatSize*s.dim)
	for {
		control, err := in.ReadByte()
		if err != nil {
			return err
		}

		switch control {
		case reqReset:
			s.constraints = s.constraints[:0]

		case reqAddConstraint:
			if _, err := io.ReadFull(in, buf); err != nil {
				return fmt.Errorf("read add_constraint payload: %w", err)
			}
			s.constraints = append(s.constraints, decodeFloats(buf))

		case reqSolveFast, reqSolveExact:
			pref, delta, feasible := s.solve(control == reqSolveExact)
			if err := writeSolveResponse(out, pref, delta, feasible); err != nil {
				return fmt.Errorf("write solve response: %w", err)
			}
			if err := out.Flush(); err != nil {
				return fmt.Errorf("flush solve response: %w", err)
			}

		default:
			return fmt.Errorf("unknown request control byte 0x%02x", control)
		}
	}
}

func writeSolveResponse(out *bufio.Writer, pref []float64, delta float64, feasible bool) error {
	if !feasible {
		return out.WriteByte(respInfeasible)
	}
	if err := out.WriteByte(respFeasible); err != nil {
		return err
	}
	payload := make([]byte, floatSize*(len(pref)+1))
	for i, v := range pref {
		putFloat64(payload[i*floatSize:], v)
	}
	putFloat64(payload[len(pref)*floatSize:], delta)
	_, err := out.Write(payload)
	return err
}

// solve builds the Chebyshev-style LP described in SPEC_FULL.md §4.9 and
// hands it to gonum's affine-scaling solver: maximize the slack delta
// subject to the simplex (sum alpha_i == 1, alpha_i >= 0) and one row per
// accumulated constraint c_j . alpha - delta >= 0.
//
// The LP is well-posed only once at least one constraint has been added
// (otherwise delta is unbounded above); the necessity engine never calls
// solve before its first add_constraint, so this is not a runtime check,
// only a documented precondition matching spec.md §4.2's iteration order.
func (s *solverState) solve(exact bool) (pref []float64, delta float64, feasible bool) {
	d := s.dim
	m := len(s.constraints)

	// Variables: alpha (d), deltaPlus, deltaMinus, slack_1..slack_m.
	n := d + 2 + m
	rows := 1 + m

	data := make([]float64, rows*n)
	row := func(r int) []float64 { return data[r*n : (r+1)*n] }

	// Row 0: sum_i alpha_i == 1.
	r0 := row(0)
	for i := 0; i < d; i++ {
		r0[i] = 1
	}

	// Row j+1: c_j . alpha - deltaPlus + deltaMinus - slack_j == 0.
	for j, c := range s.constraints {
		rj := row(1 + j)
		copy(rj[:d], c)
		rj[d] = -1   // deltaPlus
		rj[d+1] = 1  // deltaMinus
		rj[d+2+j] = -1
	}

	b := make([]float64, rows)
	b[0] = 1

	// Objective: minimize -deltaPlus + deltaMinus, i.e. maximize delta.
	obj := make([]float64, n)
	obj[d] = -1
	obj[d+1] = 1

	A := mat.NewDense(rows, n, data)

	tol := 1e-7
	maxIter := 400
	if exact {
		tol = 1e-10
		maxIter = 2000
	}

	optX, feasible := runAffineScaling(obj, A, b, tol, maxIter)
	if !feasible {
		return nil, 0, false
	}

	pref = make([]float64, d)
	copy(pref, optX[:d])
	for i := range pref {
		if pref[i] < 0 {
			pref[i] = 0
		}
	}
	delta = optX[d] - optX[d+1]

	// A best slack below zero means no alpha on the simplex satisfies every
	// c_j . alpha >= 0, so the constraint set itself is infeasible.
	const infeasibleSlack = 1e-6
	if delta < -infeasibleSlack {
		return nil, 0, false
	}
	return pref, delta, true
}

// runAffineScaling wraps lp.AffineScaling, treating both a returned error
// and the recoverable panic its reference initial-point search can raise
// on a genuinely infeasible system as the single "infeasible" outcome
// spec.md §7 reserves for the LP oracle.
func runAffineScaling(c []float64, A mat.Matrix, b []float64, tol float64, maxIter int) (x []float64, feasible bool) {
	defer func() {
		if r := recover(); r != nil {
			feasible = false
		}
	}()

	_, optX, err := lp.AffineScaling(c, A, b, tol, nil, maxIter, 0.5, 0.1, 2.0)
	if err != nil {
		return nil, false
	}
	return optX, true
}

func putFloat64(buf []byte, v float64) {
	binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
}

func getFloat64(buf []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(buf))
}

func decodeFloats(buf []byte) []float64 {
	n := len(buf) / floatSize
	out := make([]float64, n)
	for i := range out {
		out[i] = getFloat64(buf[i*floatSize:])
	}
	return out
}
