// Package csrgraph builds a compressed-sparse-row mirror of the road
// network for cache-friendly, allocation-light A* search, and implements
// the traffic-aware BPR pathfinding used by citizen movement.
// See design doc Section 4.2 and Section 5 (pathfinding bundle).
package csrgraph

import (
	"sort"

	"github.com/talgya/citycore/internal/roads"
)

// Graph is the compressed-sparse-row mirror of a roads.Network.
//
// Determinism: nodes are sorted by (y, x); each node's neighbour indices are
// sorted and appended contiguously. Rebuilding from the same Network always
// yields byte-identical Nodes/NodeOffsets/Edges/Weights.
type Graph struct {
	Nodes       []roads.Node
	NodeOffsets []uint32 // len(Nodes)+1
	Edges       []uint32 // neighbour indices, grouped per node
	Weights     []uint32
}

// Build constructs a CSR graph from a road network, filtering edges that
// would traverse a one-way segment against its allowed direction.
//
// One-way filtering happens one level up, at Network.Rebuild time: the
// network's Edges adjacency already reflects one-way restrictions, so Build
// only needs to sort and flatten it.
func Build(net *roads.Network) *Graph {
	nodes := net.SortedNodes()

	index := make(map[roads.Node]uint32, len(nodes))
	for i, n := range nodes {
		index[n] = uint32(i)
	}

	offsets := make([]uint32, 0, len(nodes)+1)
	edges := make([]uint32, 0)
	weights := make([]uint32, 0)

	for _, n := range nodes {
		offsets = append(offsets, uint32(len(edges)))
		neighbors := net.Edges[n]
		idxs := make([]uint32, 0, len(neighbors))
		for _, nb := range neighbors {
			if i, ok := index[nb]; ok {
				idxs = append(idxs, i)
			}
		}
		sort.Slice(idxs, func(i, j int) bool { return idxs[i] < idxs[j] })
		for _, i := range idxs {
			edges = append(edges, i)
			weights = append(weights, 1)
		}
	}
	offsets = append(offsets, uint32(len(edges)))

	return &Graph{Nodes: nodes, NodeOffsets: offsets, Edges: edges, Weights: weights}
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of directed edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// Neighbors returns the neighbour indices of node idx.
func (g *Graph) Neighbors(idx uint32) []uint32 {
	start, end := g.NodeOffsets[idx], g.NodeOffsets[idx+1]
	return g.Edges[start:end]
}

// NeighborWeights returns (neighbourIdx, weight) pairs for node idx.
func (g *Graph) NeighborWeights(idx uint32) func(yield func(uint32, uint32) bool) {
	start, end := g.NodeOffsets[idx], g.NodeOffsets[idx+1]
	return func(yield func(uint32, uint32) bool) {
		for i := start; i < end; i++ {
			if !yield(g.Edges[i], g.Weights[i]) {
				return
			}
		}
	}
}

// FindNodeIndex binary-searches for node, relying on Nodes staying sorted by (y,x).
func (g *Graph) FindNodeIndex(node roads.Node) (uint32, bool) {
	i := sort.Search(len(g.Nodes), func(i int) bool {
		return !g.Nodes[i].Less(node)
	})
	if i < len(g.Nodes) && g.Nodes[i] == node {
		return uint32(i), true
	}
	return 0, false
}

// ApplyRoundaboutWeights increases the weight of ring-entry edges
// proportionally to current ring density (yield-on-entry), leaving
// ring-internal edges and edges between two outside nodes at default
// weight. ringCells is the set of nodes that form the roundabout ring;
// entryDensity maps a ring node to its current traffic density.
func (g *Graph) ApplyRoundaboutWeights(ringCells map[roads.Node]bool, entryDensity map[roads.Node]uint16) {
	for idx, node := range g.Nodes {
		if ringCells[node] {
			continue // iterate approach nodes, not ring nodes themselves
		}
		start, end := g.NodeOffsets[idx], g.NodeOffsets[idx+1]
		for e := start; e < end; e++ {
			neighborIdx := g.Edges[e]
			neighbor := g.Nodes[neighborIdx]
			if !ringCells[neighbor] {
				continue // not an entry edge: neighbor isn't in the ring
			}
			// This is an entry edge (from outside into the ring): scale by
			// the ring node's density, since that's the traffic the
			// entering vehicle yields to.
			density := uint32(entryDensity[neighbor])
			g.Weights[e] = 1 + density
		}
	}
}
