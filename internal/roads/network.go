package roads

import (
	"sort"

	"github.com/talgya/citycore/internal/worldgrid"
)

// Network owns all placed segments and the derived node adjacency. Adjacency
// is rebuilt from segments rather than maintained incrementally, matching
// the spec's "segment rasterisation is the single source of truth" rule.
type Network struct {
	Segments map[SegmentID]*Segment
	nextID   SegmentID

	// Edges is a deterministic-iteration adjacency: each node maps to a
	// sorted slice of neighbour nodes. Rebuilt by Rebuild().
	Edges map[Node][]Node

	// OneWay maps a segment to its allowed direction; absent means two-way.
	OneWay map[SegmentID]Direction

	// changed is set whenever a segment is added or removed, signalling
	// that CSR must be rebuilt before the next pathfinding pass.
	changed bool
}

// NewNetwork creates an empty road network.
func NewNetwork() *Network {
	return &Network{
		Segments: make(map[SegmentID]*Segment),
		Edges:    make(map[Node][]Node),
		OneWay:   make(map[SegmentID]Direction),
	}
}

// Changed reports whether the network has been mutated since the last
// ClearChanged call (consulted by the CSR rebuild system).
func (n *Network) Changed() bool { return n.changed }

// ClearChanged resets the changed flag after a CSR rebuild.
func (n *Network) ClearChanged() { n.changed = false }

// AddSegment rasterises seg against grid, marks its cells Road, registers it
// in the network, and marks the network changed.
func (n *Network) AddSegment(grid *worldgrid.Grid, seg *Segment) {
	seg.ID = n.nextID
	n.nextID++
	seg.Rasterize()
	n.Segments[seg.ID] = seg

	for _, cell := range seg.RasterizedCells {
		grid.Mutate(cell.X, cell.Y, func(c *worldgrid.Cell) {
			c.CellType = worldgrid.Road
			c.RoadType = seg.RoadType
		})
	}
	n.changed = true
}

// RemoveSegment clears the segment's cells back to Grass and removes it.
func (n *Network) RemoveSegment(grid *worldgrid.Grid, id SegmentID) bool {
	seg, ok := n.Segments[id]
	if !ok {
		return false
	}
	for _, cell := range seg.RasterizedCells {
		grid.Mutate(cell.X, cell.Y, func(c *worldgrid.Cell) {
			c.CellType = worldgrid.Grass
			c.RoadType = worldgrid.RoadNone
		})
	}
	delete(n.Segments, id)
	delete(n.OneWay, id)
	n.changed = true
	return true
}

// SegmentAt returns the segment whose rasterised footprint covers (x, y), if
// any. Cells are not reverse-indexed to their segment, so this scans every
// segment's RasterizedCells; fine at the action-queue rate bulldoze runs at.
func (n *Network) SegmentAt(x, y int) (SegmentID, bool) {
	target := Node{X: x, Y: y}
	for id, seg := range n.Segments {
		for _, cell := range seg.RasterizedCells {
			if cell == target {
				return id, true
			}
		}
	}
	return 0, false
}

// SetOneWay records a one-way restriction on a segment.
func (n *Network) SetOneWay(id SegmentID, dir Direction) {
	n.OneWay[id] = dir
	n.changed = true
}

// Rebuild recomputes node adjacency from scratch by walking every segment's
// rasterised cell list and connecting consecutive cells, filtering edges
// that run against a one-way restriction.
func (n *Network) Rebuild() {
	edges := make(map[Node][]Node)
	addEdge := func(a, b Node) {
		edges[a] = append(edges[a], b)
	}

	for _, seg := range n.Segments {
		dir, oneWay := n.OneWay[seg.ID]
		cells := seg.RasterizedCells
		for i := 0; i+1 < len(cells); i++ {
			a, b := cells[i], cells[i+1]
			if !oneWay {
				addEdge(a, b)
				addEdge(b, a)
				continue
			}
			if dir == Forward {
				addEdge(a, b)
			} else {
				addEdge(b, a)
			}
		}
	}

	for node, neighbors := range edges {
		uniq := dedupSorted(neighbors)
		edges[node] = uniq
	}

	n.Edges = edges
}

func dedupSorted(nodes []Node) []Node {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Less(nodes[j]) })
	out := nodes[:0:0]
	for i, nd := range nodes {
		if i == 0 || nd != nodes[i-1] {
			out = append(out, nd)
		}
	}
	return out
}

// SortedNodes returns all nodes in the network sorted by (y, x) — the order
// the CSR builder and every deterministic iteration require.
func (n *Network) SortedNodes() []Node {
	nodes := make([]Node, 0, len(n.Edges))
	for node := range n.Edges {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Less(nodes[j]) })
	return nodes
}

// NearestRoadNode returns the closest node in the network to (x,y), using a
// deterministic scan (ties broken by node ordering) — used by citizen
// path-planning to snap to the road graph.
func (n *Network) NearestRoadNode(x, y int) (Node, bool) {
	var best Node
	bestDist := -1
	found := false
	for _, node := range n.SortedNodes() {
		dx, dy := node.X-x, node.Y-y
		d := dx*dx + dy*dy
		if !found || d < bestDist {
			best, bestDist, found = node, d, true
		}
	}
	return best, found
}
