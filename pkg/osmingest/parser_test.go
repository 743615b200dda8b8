package osmingest

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/require"
)

func TestIsCarAccessible(t *testing.T) {
	tests := []struct {
		name string
		tags osm.Tags
		want bool
	}{
		{"residential road", osm.Tags{{Key: "highway", Value: "residential"}}, true},
		{"motorway", osm.Tags{{Key: "highway", Value: "motorway"}}, true},
		{"footway", osm.Tags{{Key: "highway", Value: "footway"}}, false},
		{"private access", osm.Tags{
			{Key: "highway", Value: "residential"},
			{Key: "access", Value: "private"},
		}, false},
		{"area plaza", osm.Tags{
			{Key: "highway", Value: "residential"},
			{Key: "area", Value: "yes"},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, isCarAccessible(tt.tags))
		})
	}
}

func TestDirectionFlags(t *testing.T) {
	fwd, bwd := directionFlags(osm.Tags{{Key: "highway", Value: "residential"}})
	require.True(t, fwd)
	require.True(t, bwd)

	fwd, bwd = directionFlags(osm.Tags{{Key: "highway", Value: "motorway"}})
	require.True(t, fwd)
	require.False(t, bwd)

	fwd, bwd = directionFlags(osm.Tags{
		{Key: "highway", Value: "residential"},
		{Key: "oneway", Value: "-1"},
	})
	require.False(t, fwd)
	require.True(t, bwd)

	fwd, bwd = directionFlags(osm.Tags{
		{Key: "highway", Value: "residential"},
		{Key: "oneway", Value: "reversible"},
	})
	require.False(t, fwd)
	require.False(t, bwd)
}

func TestBuildEdgesProducesDistanceAndTime(t *testing.T) {
	ways := []wayInfo{
		{
			NodeIDs:  []osm.NodeID{1, 2},
			Highway:  "motorway",
			Forward:  true,
			Backward: false,
		},
	}
	nodeLat := map[osm.NodeID]float64{1: 1.30, 2: 1.31}
	nodeLon := map[osm.NodeID]float64{1: 103.80, 2: 103.80}

	edges, skipped, filtered := buildEdges(ways, nodeLat, nodeLon, false, BBox{})
	require.Zero(t, skipped)
	require.Zero(t, filtered)
	require.Len(t, edges, 1)

	e := edges[0]
	require.Equal(t, osm.NodeID(1), e.FromNodeID)
	require.Equal(t, osm.NodeID(2), e.ToNodeID)
	require.Greater(t, e.Cost[0], 0.0)
	require.Greater(t, e.Cost[1], 0.0)
	// motorway free-flow speed is faster than residential, so travel time
	// per meter should be lower than the residential default.
	residentialTimePerMeter := 1.0 / (freeFlowSpeedKPH["residential"] * 1000 / 3600)
	motorwayTimePerMeter := e.Cost[1] / e.Cost[0]
	require.Less(t, motorwayTimePerMeter, residentialTimePerMeter)
}

func TestBuildEdgesSkipsMissingCoordinates(t *testing.T) {
	ways := []wayInfo{{NodeIDs: []osm.NodeID{1, 2}, Highway: "residential", Forward: true, Backward: true}}
	nodeLat := map[osm.NodeID]float64{1: 1.30}
	nodeLon := map[osm.NodeID]float64{1: 103.80}

	edges, skipped, _ := buildEdges(ways, nodeLat, nodeLon, false, BBox{})
	require.Empty(t, edges)
	require.Equal(t, 1, skipped)
}

func TestBuildEdgesRespectsBBox(t *testing.T) {
	ways := []wayInfo{{NodeIDs: []osm.NodeID{1, 2}, Highway: "residential", Forward: true, Backward: true}}
	nodeLat := map[osm.NodeID]float64{1: 1.30, 2: 50.0}
	nodeLon := map[osm.NodeID]float64{1: 103.80, 2: 103.80}
	bbox := BBox{MinLat: 1.0, MaxLat: 2.0, MinLng: 103.0, MaxLng: 104.0}

	edges, _, filtered := buildEdges(ways, nodeLat, nodeLon, true, bbox)
	require.Empty(t, edges)
	require.Equal(t, 1, filtered) // one segment filtered, both of its directions dropped
}

func TestApplyTurnDelaysAddsPenaltyAtSharpIntersection(t *testing.T) {
	// A straight segment 1->2, then at node 2 (degree 3: also has 2->3 and
	// 2->4) a sharp turn onto 2->4 versus a continuation onto 2->3.
	edges := []RawEdge{
		{FromNodeID: 1, ToNodeID: 2, Cost: []float64{100, 10}, ShapeLats: []float64{0, 0}, ShapeLons: []float64{0, 0.001}},
		{FromNodeID: 2, ToNodeID: 3, Cost: []float64{100, 10}, ShapeLats: []float64{0, 0}, ShapeLons: []float64{0.001, 0.002}},
		{FromNodeID: 2, ToNodeID: 4, Cost: []float64{100, 10}, ShapeLats: []float64{0, 0.002}, ShapeLons: []float64{0.001, 0.001}},
	}
	applyTurnDelays(edges)

	// Edge 1->2 must have gained the turn delay: its continuation options
	// at node 2 include a sharp turn (due north instead of due east).
	require.Greater(t, edges[0].Cost[1], 10.0)
}

func TestApplyTurnDelaysSkipsLowDegreeNodes(t *testing.T) {
	edges := []RawEdge{
		{FromNodeID: 1, ToNodeID: 2, Cost: []float64{100, 10}, ShapeLats: []float64{0, 0}, ShapeLons: []float64{0, 0.001}},
		{FromNodeID: 2, ToNodeID: 3, Cost: []float64{100, 10}, ShapeLats: []float64{0, 0.002}, ShapeLons: []float64{0.001, 0.001}},
	}
	applyTurnDelays(edges)
	require.Equal(t, 10.0, edges[0].Cost[1])
}

func TestBearingDiff(t *testing.T) {
	require.InDelta(t, 0, bearingDiff(10, 10), 1e-9)
	require.InDelta(t, 90, bearingDiff(0, 90), 1e-9)
	require.InDelta(t, 10, bearingDiff(355, 5), 1e-9)
}
