// Package witness implements the shortcut necessity engine: the
// cutting-plane search over the preference simplex that decides, for a
// single candidate shortcut, whether some linear preference makes it the
// unique (or tied) cheapest path — and the node-contraction driver that
// runs that decision over every pair of edges incident at a node.
package witness

import "fmt"

// Edge is an identified directed link carrying a cost vector. Edges are
// immutable inputs to the engine; shortcuts are its output.
type Edge[EID comparable, NID comparable] struct {
	ID     EID
	From   NID
	To     NID
	Cost   []float64
}

// Shortcut is a proposed new edge representing the concatenation of two
// existing edges e1 -> e2, where e1.To == e2.From.
type Shortcut[EID comparable, NID comparable] struct {
	From          NID
	To            NID
	Cost          []float64
	ReplacedEdges [2]EID
}

// PathOracle returns the cost vector of the shortest path from "from" to
// "to" under the weighted-sum objective Σ alpha_i * cost_i. It must return
// exact cost vectors, not approximations — the engine's equality tests
// depend on that.
type PathOracle[NID comparable] func(from, to NID, alpha []float64) ([]float64, error)

// AdjacencyOracle returns all edges incident at v in one direction
// (to_edges or from_edges, per spec.md §6).
type AdjacencyOracle[EID comparable, NID comparable] func(v NID) ([]Edge[EID, NID], error)

// LPOracle is the minimal surface the engine needs from the LP oracle
// client (pkg/lpclient.Client satisfies this).
type LPOracle interface {
	Reset() error
	AddConstraint(coeffs []float64) error
	Solve(exact bool) (pref []float64, delta float64, ok bool, err error)
}

// invariantViolation panics with a message identifying the broken
// invariant. Per spec.md §7, invariant violations are programming bugs:
// surfaced immediately, never recovered from.
func invariantViolation(format string, args ...any) {
	panic(fmt.Sprintf("witness: invariant violation: "+format, args...))
}
