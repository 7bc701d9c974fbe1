package csrgraph

import (
	"container/heap"
	"math"

	"github.com/talgya/citycore/internal/roads"
	"github.com/talgya/citycore/internal/traffic"
	"github.com/talgya/citycore/internal/worldgrid"
)

// BPRTravelTime models congestion nonlinearly:
//
//	travel_time = free_flow_time * (1 + alpha * (volume/capacity)^beta)
func BPRTravelTime(freeFlowTime, volume, capacity, alpha, beta float64) float64 {
	if capacity <= 0 {
		return freeFlowTime
	}
	vc := volume / capacity
	return freeFlowTime * (1 + alpha*math.Pow(vc, beta))
}

// manhattan is the A* heuristic: admissible because every edge costs >= 1.
func manhattan(a, b roads.Node) uint32 {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return uint32(dx + dy)
}

type pqItem struct {
	idx      uint32
	priority uint64
	index    int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].priority < pq[j].priority }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i]; pq[i].index, pq[j].index = i, j }
func (pq *priorityQueue) Push(x any) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

// edgeCostFn computes the cost of moving onto neighbour index nb from the
// current node.
type edgeCostFn func(cur, nb uint32) uint32

// astar runs a generic A* search over the CSR graph using edgeCost for edge
// weights. Returns the node-index path (inclusive of start and goal), or nil
// if unreachable.
func astar(g *Graph, startIdx, goalIdx uint32, edgeCost edgeCostFn) []uint32 {
	if startIdx == goalIdx {
		return []uint32{startIdx}
	}

	goalNode := g.Nodes[goalIdx]

	gScore := map[uint32]uint64{startIdx: 0}
	cameFrom := map[uint32]uint32{}
	closed := map[uint32]bool{}

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &pqItem{idx: startIdx, priority: uint64(manhattan(g.Nodes[startIdx], goalNode))})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*pqItem)
		if closed[cur.idx] {
			continue
		}
		if cur.idx == goalIdx {
			return reconstructPath(cameFrom, startIdx, goalIdx)
		}
		closed[cur.idx] = true

		for nb, weight := range g.NeighborWeights(cur.idx) {
			if closed[nb] {
				continue
			}
			cost := weight
			if edgeCost != nil {
				cost = edgeCost(cur.idx, nb)
			}
			tentative := gScore[cur.idx] + uint64(cost)
			if best, ok := gScore[nb]; !ok || tentative < best {
				gScore[nb] = tentative
				cameFrom[nb] = cur.idx
				priority := tentative + uint64(manhattan(g.Nodes[nb], goalNode))
				heap.Push(pq, &pqItem{idx: nb, priority: priority})
			}
		}
	}
	return nil
}

func reconstructPath(cameFrom map[uint32]uint32, start, goal uint32) []uint32 {
	path := []uint32{goal}
	cur := goal
	for cur != start {
		prev, ok := cameFrom[cur]
		if !ok {
			return nil
		}
		path = append(path, prev)
		cur = prev
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func idxPathToNodes(g *Graph, idxPath []uint32) []roads.Node {
	if idxPath == nil {
		return nil
	}
	out := make([]roads.Node, len(idxPath))
	for i, idx := range idxPath {
		out[i] = g.Nodes[idx]
	}
	return out
}

// FindPath runs A* between two road nodes using the graph's stored edge
// weights (1 unless raised by ApplyRoundaboutWeights).
func FindPath(g *Graph, start, goal roads.Node) []roads.Node {
	startIdx, ok1 := g.FindNodeIndex(start)
	goalIdx, ok2 := g.FindNodeIndex(goal)
	if !ok1 || !ok2 {
		return nil
	}
	return idxPathToNodes(g, astar(g, startIdx, goalIdx, nil))
}

// FindPathWithTraffic runs traffic-aware A* using BPR edge costs computed
// from the live grid (for road type / capacity) and traffic grid (volume).
func FindPathWithTraffic(g *Graph, start, goal roads.Node, grid *worldgrid.Grid, tg *traffic.Grid) []roads.Node {
	startIdx, ok1 := g.FindNodeIndex(start)
	goalIdx, ok2 := g.FindNodeIndex(goal)
	if !ok1 || !ok2 {
		return nil
	}

	cost := func(curIdx, nbIdx uint32) uint32 {
		cur := g.Nodes[curIdx]
		nb := g.Nodes[nbIdx]
		rt := grid.Get(nb.X, nb.Y).RoadType

		dx := float64(nb.X - cur.X)
		dy := float64(nb.Y - cur.Y)
		dist := math.Max(math.Hypot(dx, dy), 1)
		speed := rt.Speed()
		freeFlow := dist / speed * 100

		volume := float64(tg.Get(nb.X, nb.Y))
		capacity := rt.Capacity()

		travel := BPRTravelTime(freeFlow, volume, capacity, 0.15, 4.0)
		return uint32(travel) + 1
	}

	return idxPathToNodes(g, astar(g, startIdx, goalIdx, cost))
}
