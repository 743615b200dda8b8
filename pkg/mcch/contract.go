// Package mcch orchestrates full-graph contraction hierarchy preprocessing
// on top of the per-node necessity engine in pkg/witness, adapted from the
// teacher's pkg/ch/contractor.go: a container/heap priority queue picks the
// next node to contract by an edge-difference heuristic, lazily
// re-prioritizing stale entries, while a bounded local witness search
// (pkg/ch/witness.go's batchWitnessSearch, generalized to cost vectors)
// serves as the witness.PathOracle during contraction.
package mcch

import (
	"container/heap"
	"fmt"
	"log"
	"math"

	"mcch/pkg/costvec"
	"mcch/pkg/mcgraph"
	"mcch/pkg/witness"
)

// maxShortcutsPerNode bounds how many shortcuts a single contraction may
// add before contraction gives up on that node and leaves it, and every
// node still uncontracted, in an uncontracted "core".
const maxShortcutsPerNode = 1000

// maxSettled and maxHops bound the local witness search run during
// contraction, the same way the teacher's batchWitnessSearch does: a
// witness only needs to be found within a small neighborhood of the
// contracted node, not searched for exhaustively.
const (
	maxSettled = 500
	maxHops    = 5
)

// unreachableCost stands in for "no witness path exists" in the local
// search: large enough that costvec.IsDominated never mistakes it for a
// real competing path, but finite so it stays safe to use in LP
// constraint arithmetic (an actual +Inf would poison the cutting-plane
// solve).
const unreachableCost = 1e15

// edgeRecord is a directed edge in the live contraction graph: either an
// original graph edge (middle == -1) or a shortcut created when middle was
// contracted.
type edgeRecord struct {
	from, to uint32
	cost     []float64
	middle   int32
}

// Result is the output of Contract: the shortcuts that survived the
// necessity engine, plus the rank (contraction order) of every node.
type Result struct {
	Dim       int
	Rank      []uint32
	Shortcuts []witness.Shortcut[uint32, uint32]
}

// AugmentedGraph rebuilds a query-ready graph containing every edge of
// orig plus every shortcut this contraction found necessary. Queries
// against it (e.g. via mcdijkstra.Oracle) see the same shortest-path
// distances as the original graph for any preference vector, since a
// shortcut is only ever added when the necessity engine proved no
// witness exists for it across the entire preference simplex.
func (r *Result) AugmentedGraph(orig *mcgraph.Graph) *mcgraph.Graph {
	raw := make([]mcgraph.RawEdge, 0, int(orig.NumEdges)+len(r.Shortcuts))
	for u := uint32(0); u < orig.NumNodes; u++ {
		start, end := orig.EdgesFrom(u)
		for e := start; e < end; e++ {
			raw = append(raw, mcgraph.RawEdge{From: u, To: orig.Head[e], Cost: orig.Cost[e]})
		}
	}
	for _, sc := range r.Shortcuts {
		raw = append(raw, mcgraph.RawEdge{From: sc.From, To: sc.To, Cost: sc.Cost})
	}
	g := mcgraph.Build(raw, r.Dim)
	g.NodeLat = orig.NodeLat
	g.NodeLon = orig.NodeLon
	return g
}

// contractionState holds the live, mutable adjacency used during
// contraction: a flat edge table plus per-node out/in edge-ID lists, so
// shortcuts can be appended without disturbing already-issued edge IDs.
type contractionState struct {
	dim      int
	numNodes uint32
	edges    []edgeRecord
	outAdj   [][]uint32
	inAdj    [][]uint32

	contracted []bool
	excluded   uint32 // node currently being contracted, skipped by the witness search

	dist     []float64
	pred     []uint32
	predEdge []uint32
	touched  []uint32
	heap     searchHeap
}

// Contract runs contraction hierarchy preprocessing over g, using lp as
// the (single, long-lived) LP oracle for every shortcut necessity
// decision per spec's one-process-per-contractor concurrency model.
func Contract(g *mcgraph.Graph, lp witness.LPOracle) (*Result, error) {
	n := g.NumNodes
	dim := g.Dim
	if n == 0 {
		return &Result{Dim: dim}, nil
	}

	cs := &contractionState{
		dim:        dim,
		numNodes:   n,
		outAdj:     make([][]uint32, n),
		inAdj:      make([][]uint32, n),
		contracted: make([]bool, n),
		dist:       make([]float64, n),
		pred:       make([]uint32, n),
		predEdge:   make([]uint32, n),
	}
	for i := range cs.dist {
		cs.dist[i] = math.Inf(1)
	}

	cs.edges = make([]edgeRecord, 0, g.NumEdges)
	for u := uint32(0); u < n; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			id := uint32(len(cs.edges))
			cs.edges = append(cs.edges, edgeRecord{from: u, to: g.Head[e], cost: g.Cost[e], middle: -1})
			cs.outAdj[u] = append(cs.outAdj[u], id)
			cs.inAdj[g.Head[e]] = append(cs.inAdj[g.Head[e]], id)
		}
	}

	contractedNeighbors := make([]int, n)
	level := make([]int, n)
	rank := make([]uint32, n)

	pq := make(priorityQueue, n)
	for i := uint32(0); i < n; i++ {
		pq[i] = &pqEntry{node: i, priority: computePriority(cs, i, contractedNeighbors[i], level[i]), index: int(i)}
	}
	heap.Init(&pq)

	toEdges := func(v uint32) ([]witness.Edge[uint32, uint32], error) {
		out := make([]witness.Edge[uint32, uint32], 0, len(cs.inAdj[v]))
		for _, eid := range cs.inAdj[v] {
			e := cs.edges[eid]
			if cs.contracted[e.from] {
				continue
			}
			out = append(out, witness.Edge[uint32, uint32]{ID: eid, From: e.from, To: v, Cost: e.cost})
		}
		return out, nil
	}
	fromEdges := func(v uint32) ([]witness.Edge[uint32, uint32], error) {
		out := make([]witness.Edge[uint32, uint32], 0, len(cs.outAdj[v]))
		for _, eid := range cs.outAdj[v] {
			e := cs.edges[eid]
			if cs.contracted[e.to] {
				continue
			}
			out = append(out, witness.Edge[uint32, uint32]{ID: eid, From: v, To: e.to, Cost: e.cost})
		}
		return out, nil
	}
	path := func(from, to uint32, alpha []float64) ([]float64, error) {
		return cs.search(from, to, alpha), nil
	}

	var totalShortcuts int
	order := uint32(0)
	logInterval := uint32(50000)

	for pq.Len() > 0 {
		entry := heap.Pop(&pq).(*pqEntry)
		node := entry.node
		if cs.contracted[node] {
			continue
		}

		newPriority := computePriority(cs, node, contractedNeighbors[node], level[node])
		if newPriority > entry.priority && pq.Len() > 0 && newPriority > pq[0].priority {
			entry.priority = newPriority
			heap.Push(&pq, entry)
			continue
		}

		cs.excluded = node
		shortcuts, err := witness.Contract(node, toEdges, fromEdges, dim, lp, path)
		if err != nil {
			return nil, fmt.Errorf("mcch: contracting node %d: %w", node, err)
		}

		if len(shortcuts) > maxShortcutsPerNode {
			log.Printf("mcch: stopping contraction at node %d (%d shortcuts, limit %d); %d nodes remain in core",
				node, len(shortcuts), maxShortcutsPerNode, n-order)
			break
		}

		cs.contracted[node] = true
		rank[node] = order
		order++
		totalShortcuts += len(shortcuts)

		for _, sc := range shortcuts {
			id := uint32(len(cs.edges))
			cs.edges = append(cs.edges, edgeRecord{from: sc.From, to: sc.To, cost: sc.Cost, middle: int32(node)})
			cs.outAdj[sc.From] = append(cs.outAdj[sc.From], id)
			cs.inAdj[sc.To] = append(cs.inAdj[sc.To], id)
		}

		for _, eid := range cs.outAdj[node] {
			e := cs.edges[eid]
			if !cs.contracted[e.to] {
				contractedNeighbors[e.to]++
				if level[node]+1 > level[e.to] {
					level[e.to] = level[node] + 1
				}
			}
		}
		for _, eid := range cs.inAdj[node] {
			e := cs.edges[eid]
			if !cs.contracted[e.from] {
				contractedNeighbors[e.from]++
				if level[node]+1 > level[e.from] {
					level[e.from] = level[node] + 1
				}
			}
		}

		remaining := n - order
		switch {
		case remaining < 1000:
			logInterval = 100
		case remaining < 10000:
			logInterval = 1000
		case remaining < 100000:
			logInterval = 10000
		default:
			logInterval = 50000
		}
		if order%logInterval == 0 {
			log.Printf("mcch: contracted %d/%d nodes, %d shortcuts so far", order, n, totalShortcuts)
		}
	}

	coreSize := uint32(0)
	var shortcuts []witness.Shortcut[uint32, uint32]
	for i := uint32(0); i < n; i++ {
		if !cs.contracted[i] {
			cs.contracted[i] = true
			rank[i] = order
			order++
			coreSize++
		}
	}
	for _, e := range cs.edges {
		if e.middle >= 0 {
			shortcuts = append(shortcuts, witness.Shortcut[uint32, uint32]{From: e.from, To: e.to, Cost: e.cost})
		}
	}

	log.Printf("mcch: contraction complete: %d shortcuts created, %d core nodes", totalShortcuts, coreSize)

	return &Result{Dim: dim, Rank: rank, Shortcuts: shortcuts}, nil
}

// computePriority scores a node for contraction ordering: fewer net edges
// added (edge difference), fewer already-contracted neighbors touched,
// and a lower hierarchy level are all preferred. This is strictly a
// heuristic for ordering, not a prediction used for correctness — the
// real shortcut count always comes from the necessity engine itself,
// which may decide "no shortcut" for a pair this estimate charged for.
func computePriority(cs *contractionState, node uint32, contractedNeighbors, level int) int {
	activeIn := 0
	for _, eid := range cs.inAdj[node] {
		if !cs.contracted[cs.edges[eid].from] {
			activeIn++
		}
	}
	activeOut := 0
	for _, eid := range cs.outAdj[node] {
		if !cs.contracted[cs.edges[eid].to] {
			activeOut++
		}
	}
	edgeDifference := activeIn*activeOut - (activeIn + activeOut)
	return edgeDifference + 2*contractedNeighbors + level
}

// search runs a bounded local Dijkstra over the live (uncontracted)
// adjacency, scalarized by alpha, excluding the node currently being
// contracted — this is the witness.PathOracle contraction uses. It
// returns the exact cost vector along the best path found, or a sentinel
// "unreachable" vector if none was found within the search bound.
func (cs *contractionState) search(from, to uint32, alpha []float64) []float64 {
	for _, nd := range cs.touched {
		cs.dist[nd] = math.Inf(1)
	}
	cs.touched = cs.touched[:0]
	cs.heap.reset()

	cs.dist[from] = 0
	cs.touched = append(cs.touched, from)
	cs.heap.push(from, 0, 0)

	settled := 0
	for cs.heap.len() > 0 {
		item := cs.heap.pop()
		if item.dist > cs.dist[item.node] {
			continue
		}
		if item.node == to {
			break
		}
		settled++
		if settled >= maxSettled {
			break
		}
		if item.hops >= maxHops {
			continue
		}

		for _, eid := range cs.outAdj[item.node] {
			e := cs.edges[eid]
			if e.to == cs.excluded || cs.contracted[e.to] {
				continue
			}
			nd := item.dist + costvec.WeightedSum(e.cost, alpha)
			if nd < cs.dist[e.to] {
				if math.IsInf(cs.dist[e.to], 1) {
					cs.touched = append(cs.touched, e.to)
				}
				cs.dist[e.to] = nd
				cs.pred[e.to] = item.node
				cs.predEdge[e.to] = eid
				cs.heap.push(e.to, nd, item.hops+1)
			}
		}
	}

	if math.IsInf(cs.dist[to], 1) {
		out := make([]float64, cs.dim)
		for i := range out {
			out[i] = unreachableCost
		}
		return out
	}

	vec := make([]float64, cs.dim)
	for node := to; node != from; {
		e := cs.edges[cs.predEdge[node]]
		costvec.Add(vec, e.cost)
		node = cs.pred[node]
	}
	return vec
}

// pqEntry/priorityQueue implement container/heap.Interface for the outer
// contraction-order queue, identical in shape to the teacher's own
// pqEntry/priorityQueue in pkg/ch/contractor.go.
type pqEntry struct {
	node     uint32
	priority int
	index    int
}

type priorityQueue []*pqEntry

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].priority < pq[j].priority }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i]; pq[i].index = i; pq[j].index = j }
func (pq *priorityQueue) Push(x any) {
	entry := x.(*pqEntry)
	entry.index = len(*pq)
	*pq = append(*pq, entry)
}
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*pq = old[:n-1]
	return entry
}

// searchHeap is a concrete-typed binary min-heap for the local witness
// search, adapted from the teacher's pkg/ch/witness.go witnessHeap
// (hole-sift siftUp/siftDown) with a float64 distance instead of uint32.
type searchHeapItem struct {
	node uint32
	dist float64
	hops int
}

type searchHeap struct {
	items []searchHeapItem
}

func (h *searchHeap) len() int { return len(h.items) }

func (h *searchHeap) push(node uint32, dist float64, hops int) {
	h.items = append(h.items, searchHeapItem{node, dist, hops})
	h.siftUp(len(h.items) - 1)
}

func (h *searchHeap) pop() searchHeapItem {
	top := h.items[0]
	n := len(h.items) - 1
	h.items[0] = h.items[n]
	h.items = h.items[:n]
	if n > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *searchHeap) reset() { h.items = h.items[:0] }

func (h *searchHeap) siftUp(i int) {
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

func (h *searchHeap) siftDown(i int) {
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
