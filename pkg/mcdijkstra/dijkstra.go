// Package mcdijkstra implements the weighted-sum shortest-path oracle the
// necessity engine in pkg/witness calls once per cutting-plane iteration:
// plain Dijkstra over an mcgraph.Graph, scalarising each edge's cost vector
// by the caller's preference at relaxation time, then reconstructing the
// full cost vector of the winning path by retracing its predecessor chain.
package mcdijkstra

import (
	"fmt"
	"math"
	"sync"

	"mcch/pkg/costvec"
	"mcch/pkg/mcgraph"
)

const noEdge = ^uint32(0)

// pqItem is a priority queue entry: a node and its current scalarised
// tentative distance.
type pqItem struct {
	node uint32
	dist float64
}

// minHeap is a concrete-typed binary min-heap, avoiding the interface
// boxing container/heap would impose on a hot Dijkstra relaxation loop.
type minHeap struct {
	items []pqItem
}

func (h *minHeap) Len() int { return len(h.items) }

func (h *minHeap) Push(node uint32, dist float64) {
	h.items = append(h.items, pqItem{node, dist})
	h.siftUp(len(h.items) - 1)
}

func (h *minHeap) Pop() pqItem {
	top := h.items[0]
	n := len(h.items) - 1
	h.items[0] = h.items[n]
	h.items = h.items[:n]
	if n > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *minHeap) Reset() { h.items = h.items[:0] }

func (h *minHeap) siftUp(i int) {
	item := h.items[i]
	for i > 0 {
		parent := (i - 1) / 2
		if item.dist >= h.items[parent].dist {
			break
		}
		h.items[i] = h.items[parent]
		i = parent
	}
	h.items[i] = item
}

func (h *minHeap) siftDown(i int) {
	n := len(h.items)
	item := h.items[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && h.items[right].dist < h.items[child].dist {
			child = right
		}
		if item.dist <= h.items[child].dist {
			break
		}
		h.items[i] = h.items[child]
		i = child
	}
	h.items[i] = item
}

// queryState holds reusable per-query scratch space, reset via a
// touched-node list rather than a full-array clear between queries.
type queryState struct {
	dist     []float64
	predEdge []uint32 // forward-array index of the edge relaxed into this node
	touched  []uint32
	heap     minHeap
}

func newQueryState(numNodes uint32) *queryState {
	dist := make([]float64, numNodes)
	predEdge := make([]uint32, numNodes)
	for i := range dist {
		dist[i] = math.Inf(1)
		predEdge[i] = noEdge
	}
	return &queryState{dist: dist, predEdge: predEdge}
}

func (qs *queryState) reset() {
	for _, n := range qs.touched {
		qs.dist[n] = math.Inf(1)
		qs.predEdge[n] = noEdge
	}
	qs.touched = qs.touched[:0]
	qs.heap.Reset()
}

func (qs *queryState) touch(node uint32, dist float64, viaEdge uint32) {
	if math.IsInf(qs.dist[node], 1) {
		qs.touched = append(qs.touched, node)
	}
	qs.dist[node] = dist
	qs.predEdge[node] = viaEdge
}

// Oracle answers weighted-sum shortest-path queries over a single
// mcgraph.Graph, reusing query state across calls via a sync.Pool exactly
// as the teacher's routing.Engine reuses its own QueryState.
type Oracle struct {
	g    *mcgraph.Graph
	pool sync.Pool
}

// New builds an Oracle over g. g must outlive the Oracle.
func New(g *mcgraph.Graph) *Oracle {
	o := &Oracle{g: g}
	o.pool.New = func() any { return newQueryState(g.NumNodes) }
	return o
}

// ShortestPathCost implements witness.PathOracle: it returns the D-wide
// cost vector of the shortest path from -> to under the weighted-sum
// objective Σ alpha_i * cost_i. The returned vector is reconstructed from
// the original per-edge cost vectors along the winning path, not derived
// from the scalar distance, so the necessity engine's exact equality and
// dominance checks remain sound.
func (o *Oracle) ShortestPathCost(from, to uint32, alpha []float64) ([]float64, error) {
	if from == to {
		return make([]float64, o.g.Dim), nil
	}

	qs := o.pool.Get().(*queryState)
	defer func() {
		qs.reset()
		o.pool.Put(qs)
	}()

	qs.touch(from, 0, noEdge)
	qs.heap.Push(from, 0)

	for qs.heap.Len() > 0 {
		cur := qs.heap.Pop()
		if cur.dist > qs.dist[cur.node] {
			continue // stale entry
		}
		if cur.node == to {
			break
		}

		start, end := o.g.EdgesFrom(cur.node)
		for e := start; e < end; e++ {
			w := costvec.WeightedSum(o.g.Cost[e], alpha)
			next := cur.dist + w
			head := o.g.Head[e]
			if next < qs.dist[head] {
				qs.touch(head, next, e)
				qs.heap.Push(head, next)
			}
		}
	}

	if math.IsInf(qs.dist[to], 1) {
		return nil, fmt.Errorf("mcdijkstra: no path from %d to %d", from, to)
	}

	cost := make([]float64, o.g.Dim)
	node := to
	for node != from {
		e := qs.predEdge[node]
		costvec.Add(cost, o.g.Cost[e])
		node = sourceOfEdge(o.g, e)
	}
	return cost, nil
}

// sourceOfEdge recovers the source node of a forward-array edge index via
// binary search over FirstOut, mirroring mcgraph's own reverse-CSR
// construction helper since the Oracle only has the forward array handy
// during path reconstruction.
func sourceOfEdge(g *mcgraph.Graph, fwdIdx uint32) uint32 {
	lo, hi := uint32(0), g.NumNodes-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if g.FirstOut[mid] <= fwdIdx {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
