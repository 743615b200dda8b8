package witness

import (
	"fmt"

	"mcch/pkg/costvec"
)

// Decide runs the cutting-plane necessity test for the candidate shortcut
// e1 . e2 and reports whether it must exist. lp is reset at the start and
// owned exclusively for the duration of the call; path is invoked once per
// iteration with the current preference.
//
// Returns (shortcut, true, nil) when necessary, (Shortcut{}, false, nil)
// when not, and a non-nil error only for a transport failure surfaced by
// lp or path — per spec.md §7 that is the only error class this function
// propagates; oracle infeasibility is encoded as the boolean result, not
// an error.
func Decide[EID comparable, NID comparable](
	e1, e2 Edge[EID, NID],
	dim int,
	lp LPOracle,
	path PathOracle[NID],
) (Shortcut[EID, NID], bool, error) {
	if e1.To != e2.From {
		invariantViolation("e1.To (%v) != e2.From (%v)", e1.To, e2.From)
	}
	if len(e1.Cost) != dim || len(e2.Cost) != dim {
		invariantViolation("edge cost length mismatch: want %d, got %d and %d", dim, len(e1.Cost), len(e2.Cost))
	}

	if e1.From == e2.To {
		return Shortcut[EID, NID]{}, false, nil
	}

	if err := lp.Reset(); err != nil {
		return Shortcut[EID, NID]{}, false, fmt.Errorf("witness: reset LP state: %w", err)
	}

	shortcutCost := costvec.Sum(e1.Cost, e2.Cost)
	alpha := costvec.EqualWeights(dim)
	exact := false

	for {
		p, err := path(e1.From, e2.To, alpha)
		if err != nil {
			return Shortcut[EID, NID]{}, false, fmt.Errorf("witness: path oracle: %w", err)
		}
		if len(p) != dim {
			invariantViolation("path oracle returned cost vector of length %d, want %d", len(p), dim)
		}

		if costvec.IsDominated(p, shortcutCost) {
			return Shortcut[EID, NID]{}, false, nil
		}
		if costvec.SameArray(p, shortcutCost) {
			return makeShortcut(e1, e2, shortcutCost), true, nil
		}

		constraint := make([]float64, dim)
		for i := range constraint {
			d := p[i] - shortcutCost[i]
			if d > -costvec.Epsilon && d < costvec.Epsilon {
				d = 0
			}
			constraint[i] = d
		}
		if err := lp.AddConstraint(constraint); err != nil {
			return Shortcut[EID, NID]{}, false, fmt.Errorf("witness: add constraint: %w", err)
		}

		alphaNext, delta, ok, err := lp.Solve(exact)
		if err != nil {
			return Shortcut[EID, NID]{}, false, fmt.Errorf("witness: solve: %w", err)
		}
		if !ok {
			return Shortcut[EID, NID]{}, false, nil
		}
		if delta+costvec.Epsilon <= 0 {
			return Shortcut[EID, NID]{}, false, nil
		}

		if costvec.SameArray(alphaNext, alpha) {
			if exact {
				return makeShortcut(e1, e2, shortcutCost), true, nil
			}
			exact = true
			continue
		}

		alpha = alphaNext
		exact = false
	}
}

func makeShortcut[EID comparable, NID comparable](e1, e2 Edge[EID, NID], shortcutCost []float64) Shortcut[EID, NID] {
	return Shortcut[EID, NID]{
		From:          e1.From,
		To:            e2.To,
		Cost:          shortcutCost,
		ReplacedEdges: [2]EID{e1.ID, e2.ID},
	}
}
