package mcrouter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"mcch/pkg/mcgraph"
	"mcch/pkg/mcrouter"
	"mcch/pkg/snap"
)

func buildLineGraph() *mcgraph.Graph {
	edges := []mcgraph.RawEdge{
		{From: 0, To: 1, Cost: []float64{100, 10}},
		{From: 1, To: 2, Cost: []float64{100, 20}},
	}
	g := mcgraph.Build(edges, 2)
	g.NodeLat = []float64{1.300, 1.301, 1.302}
	g.NodeLon = []float64{103.800, 103.800, 103.800}
	return g
}

func TestRouteReturnsCostVector(t *testing.T) {
	g := buildLineGraph()
	e := mcrouter.NewEngine(g)

	res, err := e.Route(context.Background(), mcrouter.LatLng{Lat: 1.300, Lng: 103.800}, mcrouter.LatLng{Lat: 1.302, Lng: 103.800}, nil)
	require.NoError(t, err)
	require.Equal(t, []float64{200, 30}, res.Cost)
	require.Equal(t, []float64{0.5, 0.5}, res.Preference)
}

func TestRouteRejectsWrongDimPreference(t *testing.T) {
	g := buildLineGraph()
	e := mcrouter.NewEngine(g)

	_, err := e.Route(context.Background(), mcrouter.LatLng{Lat: 1.300, Lng: 103.800}, mcrouter.LatLng{Lat: 1.302, Lng: 103.800}, []float64{1})
	require.Error(t, err)
}

func TestRoutePointTooFar(t *testing.T) {
	g := buildLineGraph()
	e := mcrouter.NewEngine(g)

	_, err := e.Route(context.Background(), mcrouter.LatLng{Lat: 40, Lng: 40}, mcrouter.LatLng{Lat: 1.302, Lng: 103.800}, nil)
	require.ErrorIs(t, err, snap.ErrPointTooFar)
}
