package osmingest

import (
	"github.com/paulmach/osm"

	"mcch/pkg/mcgraph"
)

// BuildGraph compacts a ParseResult's sparse osm.NodeID space into the
// dense uint32 range mcgraph.Graph requires, adapted from the teacher's
// pkg/graph.Build node-compaction step.
func BuildGraph(result *ParseResult) *mcgraph.Graph {
	if len(result.Edges) == 0 {
		return &mcgraph.Graph{Dim: Dim}
	}

	nodeIndex := make(map[osm.NodeID]uint32)
	var nodeIDs []osm.NodeID
	compact := func(id osm.NodeID) uint32 {
		if idx, ok := nodeIndex[id]; ok {
			return idx
		}
		idx := uint32(len(nodeIDs))
		nodeIndex[id] = idx
		nodeIDs = append(nodeIDs, id)
		return idx
	}

	raw := make([]mcgraph.RawEdge, len(result.Edges))
	for i, e := range result.Edges {
		raw[i] = mcgraph.RawEdge{
			From: compact(e.FromNodeID),
			To:   compact(e.ToNodeID),
			Cost: e.Cost,
		}
	}

	g := mcgraph.Build(raw, Dim)
	g.NodeLat = make([]float64, len(nodeIDs))
	g.NodeLon = make([]float64, len(nodeIDs))
	for idx, id := range nodeIDs {
		g.NodeLat[idx] = result.NodeLat[id]
		g.NodeLon[idx] = result.NodeLon[id]
	}
	return g
}
