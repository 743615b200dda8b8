// Package osmingest builds a multi-criteria road graph from an OSM PBF
// extract, adapted from the teacher's single-objective pkg/osm parser. Each
// directed edge carries a 2-wide cost vector — distance and time, with a
// turn delay folded directly into the time component — instead of one
// millimeter distance, since a genuine multi-criteria router needs at
// least two non-collinear objectives or every shortcut decision degenerates
// to "one edge dominates everything."
package osmingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"mcch/pkg/geo"
)

// Dim is the fixed objective count this package produces: distance (m),
// time (s).
const Dim = 2

const timeIdx = 1

// turnDelaySeconds is the fixed penalty folded into an edge's time
// component when its way ends at an intersection and the next way's
// bearing diverges sharply, approximating the cost of slowing for a turn.
const turnDelaySeconds = 8.0

// turnBearingThresholdDeg is the minimum bearing change, in degrees,
// before a turn delay is charged. Below this, the maneuver reads as a
// gentle curve rather than a turn.
const turnBearingThresholdDeg = 30.0

// RawEdge is a directed edge parsed from OSM data, already carrying a
// resolved cost vector.
type RawEdge struct {
	FromNodeID osm.NodeID
	ToNodeID   osm.NodeID
	Cost       []float64 // [distance meters, time seconds]
	ShapeLats  []float64
	ShapeLons  []float64
}

// ParseResult holds the output of parsing an OSM PBF file.
type ParseResult struct {
	Edges   []RawEdge
	NodeLat map[osm.NodeID]float64
	NodeLon map[osm.NodeID]float64
}

// carHighways lists highway tag values accessible by car, kept identical
// to the teacher's vocabulary since the speed table below keys off the
// same tags.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// freeFlowSpeedKPH is a supplemented feature over the teacher's parser: a
// per-highway-class speed table turning distance into a second, genuinely
// distinct objective (time). Values are free-flow defaults, not measured.
var freeFlowSpeedKPH = map[string]float64{
	"motorway":       100,
	"motorway_link":  60,
	"trunk":          80,
	"trunk_link":     50,
	"primary":        60,
	"primary_link":   40,
	"secondary":      50,
	"secondary_link": 35,
	"tertiary":       40,
	"tertiary_link":  30,
	"unclassified":   30,
	"residential":    25,
	"living_street":  15,
	"service":        15,
}

func isCarAccessible(tags osm.Tags) bool {
	hw := tags.Find("highway")
	if !carHighways[hw] {
		return false
	}
	if tags.Find("area") == "yes" {
		return false
	}
	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	if tags.Find("motor_vehicle") == "no" {
		return false
	}
	return true
}

func directionFlags(tags osm.Tags) (forward, backward bool) {
	forward, backward = true, true
	hw := tags.Find("highway")
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}
	switch tags.Find("oneway") {
	case "yes", "true", "1":
		forward, backward = true, false
	case "-1", "reverse":
		forward, backward = false, true
	case "no":
		forward, backward = true, true
	case "reversible":
		forward, backward = false, false
	}
	return forward, backward
}

type wayInfo struct {
	NodeIDs  []osm.NodeID
	Highway  string
	Forward  bool
	Backward bool
}

// BBox filters edges to a geographic bounding box, kept from the teacher.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ParseOptions configures the parser.
type ParseOptions struct {
	BBox BBox
}

// Parse reads an OSM PBF file and returns directed multi-criteria edges
// for car routing. rs is scanned twice (ways, then nodes), so it must
// support seeking back to the start.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...ParseOptions) (*ParseResult, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	useBBox := !opt.BBox.IsZero()

	referencedNodes := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if !isCarAccessible(w.Tags) || len(w.Nodes) < 2 {
			continue
		}
		fwd, bwd := directionFlags(w.Tags)
		if !fwd && !bwd {
			continue
		}
		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referencedNodes[wn.ID] = struct{}{}
		}
		ways = append(ways, wayInfo{
			NodeIDs:  nodeIDs,
			Highway:  w.Tags.Find("highway"),
			Forward:  fwd,
			Backward: bwd,
		})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()
	log.Printf("osmingest: pass 1 complete: %d ways, %d referenced nodes", len(ways), len(referencedNodes))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	nodeLat := make(map[osm.NodeID]float64, len(referencedNodes))
	nodeLon := make(map[osm.NodeID]float64, len(referencedNodes))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}
		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()
	log.Printf("osmingest: pass 2 complete: %d node coordinates collected", len(nodeLat))

	edges, skipped, bboxFiltered := buildEdges(ways, nodeLat, nodeLon, useBBox, opt.BBox)
	if skipped > 0 {
		log.Printf("osmingest: warning: skipped %d edges due to missing node coordinates", skipped)
	}
	if bboxFiltered > 0 {
		log.Printf("osmingest: filtered %d edges outside bounding box", bboxFiltered)
	}
	applyTurnDelays(edges)
	log.Printf("osmingest: built %d directed edges", len(edges))

	return &ParseResult{Edges: edges, NodeLat: nodeLat, NodeLon: nodeLon}, nil
}

func buildEdges(ways []wayInfo, nodeLat, nodeLon map[osm.NodeID]float64, useBBox bool, bbox BBox) (edges []RawEdge, skipped, bboxFiltered int) {
	for _, w := range ways {
		speed := freeFlowSpeedKPH[w.Highway]
		if speed <= 0 {
			speed = freeFlowSpeedKPH["residential"]
		}
		for i := 0; i < len(w.NodeIDs)-1; i++ {
			fromID, toID := w.NodeIDs[i], w.NodeIDs[i+1]
			fromLat, fromOk := nodeLat[fromID]
			fromLon := nodeLon[fromID]
			toLat, toOk := nodeLat[toID]
			toLon := nodeLon[toID]
			if !fromOk || !toOk {
				skipped++
				continue
			}
			if useBBox && (!bbox.Contains(fromLat, fromLon) || !bbox.Contains(toLat, toLon)) {
				bboxFiltered++
				continue
			}

			dist := geo.Haversine(fromLat, fromLon, toLat, toLon)
			if dist <= 0 {
				dist = 0.1
			}
			timeSec := dist / (speed * 1000 / 3600)

			if w.Forward {
				edges = append(edges, RawEdge{
					FromNodeID: fromID,
					ToNodeID:   toID,
					Cost:       []float64{dist, timeSec},
					ShapeLats:  []float64{fromLat, toLat},
					ShapeLons:  []float64{fromLon, toLon},
				})
			}
			if w.Backward {
				edges = append(edges, RawEdge{
					FromNodeID: toID,
					ToNodeID:   fromID,
					Cost:       []float64{dist, timeSec},
					ShapeLats:  []float64{toLat, fromLat},
					ShapeLons:  []float64{toLon, fromLon},
				})
			}
		}
	}
	return edges, skipped, bboxFiltered
}

// applyTurnDelays folds a fixed time penalty into edges arriving at an
// intersection node whose next leg bears sharply away from the one just
// traveled. Degree is the number of distinct neighboring nodes in the final
// edge list, and the leg straight back to the node just left is not counted
// as a turn; bearing uses paulmach/orb over the edges' own endpoint
// coordinates, so no separate pass over raw ways is needed.
func applyTurnDelays(edges []RawEdge) {
	neighbors := make(map[osm.NodeID]map[osm.NodeID]struct{}, len(edges))
	addNeighbor := func(a, b osm.NodeID) {
		if neighbors[a] == nil {
			neighbors[a] = make(map[osm.NodeID]struct{})
		}
		neighbors[a][b] = struct{}{}
	}
	for _, e := range edges {
		addNeighbor(e.FromNodeID, e.ToNodeID)
		addNeighbor(e.ToNodeID, e.FromNodeID)
	}

	byFrom := make(map[osm.NodeID][]int, len(edges))
	for i, e := range edges {
		byFrom[e.FromNodeID] = append(byFrom[e.FromNodeID], i)
	}

	for i := range edges {
		nextIdxs := byFrom[edges[i].ToNodeID]
		if len(neighbors[edges[i].ToNodeID]) <= 2 || len(nextIdxs) == 0 {
			continue
		}
		inBearing := edges[i].bearing()
		worstDiff := 0.0
		for _, ni := range nextIdxs {
			if ni == i || edges[ni].ToNodeID == edges[i].FromNodeID {
				continue
			}
			diff := bearingDiff(inBearing, edges[ni].bearing())
			if diff > worstDiff {
				worstDiff = diff
			}
		}
		if worstDiff > turnBearingThresholdDeg {
			edges[i].Cost[timeIdx] += turnDelaySeconds
		}
	}
}

// bearing reports this edge's compass bearing in degrees, computed from the
// first to the last of its shape points. An edge with fewer than two shape
// points reports 0.
func (e RawEdge) bearing() float64 {
	lats, lons := e.ShapeLats, e.ShapeLons
	if len(lats) < 2 {
		return 0
	}
	from := orb.Point{lons[0], lats[0]}
	to := orb.Point{lons[len(lons)-1], lats[len(lats)-1]}
	return orbgeo.Bearing(from, to)
}

// bearingDiff returns the absolute difference between two bearings,
// normalized into [0, 180].
func bearingDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
