package witness

import "fmt"

// Contract produces every necessary shortcut whose two replaced edges meet
// at node. For each pair (toEdge, fromEdge) with toEdge.To == node ==
// fromEdge.From, it asserts the connection invariant and invokes Decide.
// Pairs are independent — the engine resets its LP state per pair — so no
// particular iteration order is required; any failure from either adjacency
// oracle or from Decide itself aborts the whole call immediately.
func Contract[EID comparable, NID comparable](
	node NID,
	toEdges, fromEdges AdjacencyOracle[EID, NID],
	dim int,
	lp LPOracle,
	path PathOracle[NID],
) ([]Shortcut[EID, NID], error) {
	in, err := toEdges(node)
	if err != nil {
		return nil, fmt.Errorf("witness: to_edges(%v): %w", node, err)
	}
	out, err := fromEdges(node)
	if err != nil {
		return nil, fmt.Errorf("witness: from_edges(%v): %w", node, err)
	}

	var shortcuts []Shortcut[EID, NID]
	for _, e1 := range in {
		if e1.To != node {
			invariantViolation("to_edges(%v) returned edge %v with To=%v", node, e1.ID, e1.To)
		}
		for _, e2 := range out {
			if e2.From != node {
				invariantViolation("from_edges(%v) returned edge %v with From=%v", node, e2.ID, e2.From)
			}

			sc, necessary, err := Decide(e1, e2, dim, lp, path)
			if err != nil {
				return nil, fmt.Errorf("witness: contracting %v: %w", node, err)
			}
			if necessary {
				shortcuts = append(shortcuts, sc)
			}
		}
	}
	return shortcuts, nil
}
