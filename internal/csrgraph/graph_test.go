package csrgraph

import (
	"testing"

	"github.com/talgya/citycore/internal/roads"
	"github.com/talgya/citycore/internal/worldgrid"
)

// buildLine constructs a three-node straight road a-b-c and its CSR graph.
func buildLine(t *testing.T) (*Graph, roads.Node, roads.Node, roads.Node) {
	t.Helper()
	grid := worldgrid.New(16, 16)
	net := roads.NewNetwork()
	net.AddSegment(grid, roads.NewStraight(0, roads.Node{X: 0, Y: 0}, roads.Node{X: 2, Y: 0}, worldgrid.Local))
	net.Rebuild()
	g := Build(net)
	return g, roads.Node{X: 0, Y: 0}, roads.Node{X: 1, Y: 0}, roads.Node{X: 2, Y: 0}
}

func TestApplyRoundaboutWeightsScalesEntryNotExitEdges(t *testing.T) {
	g, a, ring, c := buildLine(t)
	ringCells := map[roads.Node]bool{ring: true}
	density := map[roads.Node]uint16{ring: 40}

	g.ApplyRoundaboutWeights(ringCells, density)

	aIdx, _ := g.FindNodeIndex(a)
	ringIdx, _ := g.FindNodeIndex(ring)
	cIdx, _ := g.FindNodeIndex(c)

	entryWeight := weightBetween(t, g, aIdx, ringIdx)
	if entryWeight != 1+uint32(density[ring]) {
		t.Errorf("entry edge a->ring weight = %d, want %d", entryWeight, 1+uint32(density[ring]))
	}

	exitWeight := weightBetween(t, g, ringIdx, cIdx)
	if exitWeight != 1 {
		t.Errorf("exit edge ring->c weight = %d, want unscaled 1, got %d", exitWeight, exitWeight)
	}

	otherEntryWeight := weightBetween(t, g, cIdx, ringIdx)
	if otherEntryWeight != 1+uint32(density[ring]) {
		t.Errorf("entry edge c->ring weight = %d, want %d", otherEntryWeight, 1+uint32(density[ring]))
	}
}

func weightBetween(t *testing.T, g *Graph, fromIdx, toIdx uint32) uint32 {
	t.Helper()
	for nb, w := range g.NeighborWeights(fromIdx) {
		if nb == toIdx {
			return w
		}
	}
	t.Fatalf("no edge found from index %d to %d", fromIdx, toIdx)
	return 0
}
