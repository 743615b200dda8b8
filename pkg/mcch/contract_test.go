package mcch_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"mcch/pkg/mcch"
	"mcch/pkg/mcdijkstra"
	"mcch/pkg/mcgraph"
)

// exactLP2D is a self-contained, exact D=2 LP oracle: it maximizes
// min_j(c_j . [a, 1-a]) over a in [0,1] by evaluating the finitely many
// candidate breakpoints (0, 1, and every pairwise constraint intersection),
// the same technique pkg/witness's own test double uses and for the same
// reason: a sampled grid would be coarser than costvec.Epsilon and the
// engine's fixed-point check would never converge.
type exactLP2D struct {
	constraints [][2]float64
}

func (l *exactLP2D) Reset() error {
	l.constraints = l.constraints[:0]
	return nil
}

func (l *exactLP2D) AddConstraint(c []float64) error {
	l.constraints = append(l.constraints, [2]float64{c[0], c[1]})
	return nil
}

func (l *exactLP2D) objective(a float64) float64 {
	best := a*l.constraints[0][0] + (1-a)*l.constraints[0][1]
	for _, c := range l.constraints[1:] {
		v := a*c[0] + (1-a)*c[1]
		if v < best {
			best = v
		}
	}
	return best
}

func (l *exactLP2D) Solve(exact bool) ([]float64, float64, bool, error) {
	if len(l.constraints) == 0 {
		return nil, 0, false, nil
	}
	candidates := []float64{0, 1}
	for i := 0; i < len(l.constraints); i++ {
		for j := i + 1; j < len(l.constraints); j++ {
			ci, cj := l.constraints[i], l.constraints[j]
			denom := (ci[0] - ci[1]) - (cj[0] - cj[1])
			if denom == 0 {
				continue
			}
			a := (cj[1] - ci[1]) / denom
			if a >= 0 && a <= 1 {
				candidates = append(candidates, a)
			}
		}
	}

	bestA, bestV := candidates[0], l.objective(candidates[0])
	for _, a := range candidates[1:] {
		v := l.objective(a)
		if v > bestV {
			bestV, bestA = v, a
		}
	}
	if bestV <= 0 {
		return nil, bestV, false, nil
	}
	return []float64{bestA, 1 - bestA}, bestV, true, nil
}

// buildDiamond is a small graph with two routes from source 0 to sink 3:
// via node 1 (cost [1,1]) and via node 2 (cost [1.2,1.2], dominated by the
// first). The edge-difference priority contracts the endpoints 0 and 3
// first, so the interior nodes are left with no uncontracted edge pairs.
func buildDiamond() *mcgraph.Graph {
	edges := []mcgraph.RawEdge{
		{From: 0, To: 1, Cost: []float64{1, 0}},
		{From: 1, To: 3, Cost: []float64{0, 1}},
		{From: 0, To: 2, Cost: []float64{0.6, 0.6}},
		{From: 2, To: 3, Cost: []float64{0.6, 0.6}},
	}
	g := mcgraph.Build(edges, 2)
	g.NodeLat = []float64{0, 0, 0, 0}
	g.NodeLon = []float64{0, 0, 0, 0}
	return g
}

func TestContractPreservesShortestPathDistances(t *testing.T) {
	g := buildDiamond()
	lp := &exactLP2D{}

	result, err := mcch.Contract(g, lp)
	require.NoError(t, err)
	require.Len(t, result.Rank, 4)

	augmented := result.AugmentedGraph(g)
	orig := mcdijkstra.New(g)
	aug := mcdijkstra.New(augmented)

	for _, alpha := range [][]float64{{1, 0}, {0, 1}, {0.5, 0.5}, {0.25, 0.75}} {
		wantCost, err := orig.ShortestPathCost(0, 3, alpha)
		require.NoError(t, err)
		gotCost, err := aug.ShortestPathCost(0, 3, alpha)
		require.NoError(t, err)

		wantWS := wantCost[0]*alpha[0] + wantCost[1]*alpha[1]
		gotWS := gotCost[0]*alpha[0] + gotCost[1]*alpha[1]
		require.InDelta(t, wantWS, gotWS, 1e-9, "alpha=%v", alpha)
	}
}

func TestContractAssignsDistinctRanks(t *testing.T) {
	g := buildDiamond()
	lp := &exactLP2D{}

	result, err := mcch.Contract(g, lp)
	require.NoError(t, err)

	seen := append([]uint32(nil), result.Rank...)
	sort.Slice(seen, func(i, j int) bool { return seen[i] < seen[j] })
	for i, r := range seen {
		require.Equal(t, uint32(i), r)
	}
}

func TestContractEmptyGraph(t *testing.T) {
	g := mcgraph.Build(nil, 2)
	lp := &exactLP2D{}

	result, err := mcch.Contract(g, lp)
	require.NoError(t, err)
	require.Empty(t, result.Rank)
	require.Empty(t, result.Shortcuts)
}
