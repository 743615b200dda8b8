package mcgraph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mcch/pkg/mcgraph"
)

func TestBuildAdjacency(t *testing.T) {
	edges := []mcgraph.RawEdge{
		{From: 0, To: 1, Cost: []float64{1, 2}},
		{From: 1, To: 2, Cost: []float64{3, 4}},
		{From: 0, To: 2, Cost: []float64{5, 6}},
	}
	g := mcgraph.Build(edges, 2)

	require.EqualValues(t, 3, g.NumNodes)
	require.EqualValues(t, 3, g.NumEdges)

	from0, err := g.FromEdges(0)
	require.NoError(t, err)
	require.Len(t, from0, 2)

	to2, err := g.ToEdges(2)
	require.NoError(t, err)
	require.Len(t, to2, 2)
	for _, e := range to2 {
		require.Equal(t, uint32(2), e.To)
	}

	from1, err := g.FromEdges(1)
	require.NoError(t, err)
	require.Len(t, from1, 1)
	require.Equal(t, []float64{3, 4}, from1[0].Cost)
	require.Equal(t, uint32(1), from1[0].From)
	require.Equal(t, uint32(2), from1[0].To)
}

func TestToEdgesRoundTripsSourceAndCost(t *testing.T) {
	edges := []mcgraph.RawEdge{
		{From: 0, To: 1, Cost: []float64{1}},
		{From: 2, To: 1, Cost: []float64{9}},
	}
	g := mcgraph.Build(edges, 1)

	to1, err := g.ToEdges(1)
	require.NoError(t, err)
	require.Len(t, to1, 2)

	bySource := map[uint32][]float64{}
	for _, e := range to1 {
		bySource[e.From] = e.Cost
	}
	require.Equal(t, []float64{1}, bySource[0])
	require.Equal(t, []float64{9}, bySource[2])
}

func TestLargestComponentAndFilter(t *testing.T) {
	// Two components: {0,1,2} and {3,4}.
	edges := []mcgraph.RawEdge{
		{From: 0, To: 1, Cost: []float64{1}},
		{From: 1, To: 2, Cost: []float64{1}},
		{From: 3, To: 4, Cost: []float64{1}},
	}
	g := mcgraph.Build(edges, 1)

	nodes := mcgraph.LargestComponent(g)
	require.ElementsMatch(t, []uint32{0, 1, 2}, nodes)

	filtered := mcgraph.FilterToComponent(g, nodes)
	require.EqualValues(t, 3, filtered.NumNodes)
	require.EqualValues(t, 2, filtered.NumEdges)
}

func TestBuildEmpty(t *testing.T) {
	g := mcgraph.Build(nil, 2)
	require.EqualValues(t, 0, g.NumNodes)
	require.Equal(t, 2, g.Dim)
}
