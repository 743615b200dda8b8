package mcdijkstra_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mcch/pkg/mcdijkstra"
	"mcch/pkg/mcgraph"
)

func buildTriangle() *mcgraph.Graph {
	edges := []mcgraph.RawEdge{
		{From: 0, To: 1, Cost: []float64{1, 0}},
		{From: 1, To: 2, Cost: []float64{0, 1}},
		{From: 0, To: 2, Cost: []float64{0.9, 0.9}},
	}
	return mcgraph.Build(edges, 2)
}

func TestShortestPathPicksCheaperUnderPreference(t *testing.T) {
	g := buildTriangle()
	o := mcdijkstra.New(g)

	// Under alpha favoring dimension 0 heavily, the direct edge (weighted
	// sum 0.9*0.9 + 0.9*0.1 = 0.9) beats the 0->1->2 path (cost [1,1],
	// weighted sum 1.0).
	cost, err := o.ShortestPathCost(0, 2, []float64{0.9, 0.1})
	require.NoError(t, err)

	wsDirect := 0.9*0.9 + 0.9*0.1
	wsViaOne := 1*0.9 + 1*0.1
	if wsDirect < wsViaOne {
		require.Equal(t, []float64{0.9, 0.9}, cost)
	} else {
		require.Equal(t, []float64{1, 1}, cost)
	}
}

func TestShortestPathSameSourceAndTarget(t *testing.T) {
	g := buildTriangle()
	o := mcdijkstra.New(g)

	cost, err := o.ShortestPathCost(1, 1, []float64{0.5, 0.5})
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0}, cost)
}

func TestShortestPathUnreachable(t *testing.T) {
	edges := []mcgraph.RawEdge{
		{From: 0, To: 1, Cost: []float64{1}},
	}
	g := mcgraph.Build(edges, 1)
	o := mcdijkstra.New(g)

	_, err := o.ShortestPathCost(1, 0, []float64{1})
	require.Error(t, err)
}

func TestShortestPathReusesQueryStateAcrossCalls(t *testing.T) {
	g := buildTriangle()
	o := mcdijkstra.New(g)

	for i := 0; i < 5; i++ {
		cost, err := o.ShortestPathCost(0, 2, []float64{0.5, 0.5})
		require.NoError(t, err)
		require.Len(t, cost, 2)
	}
}
