// Package mcrouter answers live preference-routing queries against an
// already-contracted graph, adapted from the teacher's pkg/routing.Engine:
// same snap-then-search shape, generalized so the search is scalarized by
// a caller-supplied preference vector instead of running over a single
// scalar weight.
package mcrouter

import (
	"context"
	"errors"
	"fmt"

	"mcch/pkg/costvec"
	"mcch/pkg/mcdijkstra"
	"mcch/pkg/mcgraph"
	"mcch/pkg/snap"
)

// ErrNoRoute is returned when no path exists between the snapped
// endpoints.
var ErrNoRoute = errors.New("mcrouter: no route found")

// LatLng is a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// RouteResult is the output of a route query: the full multi-criteria
// cost vector of the cheapest path under Preference, and the preference
// that was actually applied (equal weights, if the caller left it empty).
type RouteResult struct {
	Cost       []float64
	Preference []float64
}

// Router answers preference-routing queries.
type Router interface {
	Route(ctx context.Context, start, end LatLng, preference []float64) (*RouteResult, error)
}

// Engine implements Router over a graph (ordinarily one contraction has
// already augmented with shortcuts, via mcch.Result.AugmentedGraph).
type Engine struct {
	dim    int
	idx    *snap.Index
	oracle *mcdijkstra.Oracle
}

// NewEngine builds a routing engine over g, indexing it for spatial
// snapping and wrapping it with a shortest-path oracle.
func NewEngine(g *mcgraph.Graph) *Engine {
	return &Engine{
		dim:    g.Dim,
		idx:    snap.Build(g),
		oracle: mcdijkstra.New(g),
	}
}

// Route snaps start and end onto the graph and returns the cheapest
// path's cost vector under preference. Each point is routed from or to the
// end node of its snapped edge that lies nearer to it. An empty preference
// defaults to equal weights across all dimensions.
func (e *Engine) Route(ctx context.Context, start, end LatLng, preference []float64) (*RouteResult, error) {
	pref := preference
	if len(pref) == 0 {
		pref = costvec.EqualWeights(e.dim)
	} else if len(pref) != e.dim {
		return nil, fmt.Errorf("mcrouter: preference vector length %d, want %d", len(pref), e.dim)
	}

	startSnap, err := e.idx.Snap(start.Lat, start.Lng)
	if err != nil {
		return nil, fmt.Errorf("mcrouter: snap start point: %w", err)
	}
	endSnap, err := e.idx.Snap(end.Lat, end.Lng)
	if err != nil {
		return nil, fmt.Errorf("mcrouter: snap end point: %w", err)
	}

	from, to := startSnap.NodeU, endSnap.NodeU
	if startSnap.Ratio > 0.5 {
		from = startSnap.NodeV
	}
	if endSnap.Ratio > 0.5 {
		to = endSnap.NodeV
	}

	cost, err := e.oracle.ShortestPathCost(from, to, pref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoRoute, err)
	}

	return &RouteResult{Cost: cost, Preference: pref}, nil
}
