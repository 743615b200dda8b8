package snap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mcch/pkg/mcgraph"
	"mcch/pkg/snap"
)

// buildGridGraph makes two short segments near (1.30N, 103.80E) at
// roughly 100m spacing so the default search padding safely covers them.
func buildGridGraph() *mcgraph.Graph {
	edges := []mcgraph.RawEdge{
		{From: 0, To: 1, Cost: []float64{100, 10}},
		{From: 2, To: 3, Cost: []float64{100, 10}},
	}
	g := mcgraph.Build(edges, 2)
	g.NodeLat = []float64{1.300, 1.300, 1.301, 1.301}
	g.NodeLon = []float64{103.800, 103.801, 103.800, 103.801}
	return g
}

func TestSnapPicksNearestSegment(t *testing.T) {
	g := buildGridGraph()
	idx := snap.Build(g)

	res, err := idx.Snap(1.3000, 103.8005)
	require.NoError(t, err)
	require.Equal(t, uint32(0), res.NodeU)
	require.Equal(t, uint32(1), res.NodeV)
	require.InDelta(t, 0.5, res.Ratio, 0.05)
}

func TestSnapFavorsCloserOfTwoSegments(t *testing.T) {
	g := buildGridGraph()
	idx := snap.Build(g)

	res, err := idx.Snap(1.3009, 103.8005)
	require.NoError(t, err)
	require.Equal(t, uint32(2), res.NodeU)
	require.Equal(t, uint32(3), res.NodeV)
}

func TestSnapTooFarReturnsError(t *testing.T) {
	g := buildGridGraph()
	idx := snap.Build(g)

	_, err := idx.Snap(10.0, 10.0)
	require.ErrorIs(t, err, snap.ErrPointTooFar)
}

func TestSnapReportsEndpointRatios(t *testing.T) {
	g := buildGridGraph()
	idx := snap.Build(g)

	res, err := idx.Snap(1.300, 103.800)
	require.NoError(t, err)
	require.Equal(t, uint32(0), res.NodeU)
	require.InDelta(t, 0.0, res.Ratio, 1e-6)

	res, err = idx.Snap(1.300, 103.801)
	require.NoError(t, err)
	require.InDelta(t, 1.0, res.Ratio, 1e-6)
}
