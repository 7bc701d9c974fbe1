package roads

import (
	"testing"

	"github.com/talgya/citycore/internal/worldgrid"
)

func TestRasterizeStraightLineCoversEndpoints(t *testing.T) {
	seg := NewStraight(0, Node{10, 10}, Node{15, 10}, worldgrid.Local)

	if len(seg.RasterizedCells) == 0 {
		t.Fatal("expected non-empty rasterization")
	}
	first := seg.RasterizedCells[0]
	last := seg.RasterizedCells[len(seg.RasterizedCells)-1]
	if first.Y != 10 || last.Y != 10 {
		t.Fatalf("expected cells on y=10, got first=%v last=%v", first, last)
	}

	for i := 1; i < len(seg.RasterizedCells); i++ {
		if !seg.RasterizedCells[i-1].Less(seg.RasterizedCells[i]) {
			t.Fatalf("rasterized cells not strictly sorted at index %d", i)
		}
	}
}

func TestNetworkAddSegmentMarksGridRoad(t *testing.T) {
	grid := worldgrid.New(32, 32)
	net := NewNetwork()
	seg := NewStraight(0, Node{5, 5}, Node{10, 5}, worldgrid.Local)
	net.AddSegment(grid, seg)

	for _, c := range seg.RasterizedCells {
		cell := grid.Get(c.X, c.Y)
		if cell.CellType != worldgrid.Road {
			t.Fatalf("cell %v expected Road, got %v", c, cell.CellType)
		}
	}
	if !net.Changed() {
		t.Fatal("expected network changed after AddSegment")
	}
}

func TestNetworkRemoveSegmentClearsGrid(t *testing.T) {
	grid := worldgrid.New(32, 32)
	net := NewNetwork()
	seg := NewStraight(0, Node{5, 5}, Node{10, 5}, worldgrid.Local)
	net.AddSegment(grid, seg)
	net.ClearChanged()

	ok := net.RemoveSegment(grid, seg.ID)
	if !ok {
		t.Fatal("expected RemoveSegment to succeed")
	}
	for _, c := range seg.RasterizedCells {
		cell := grid.Get(c.X, c.Y)
		if cell.CellType == worldgrid.Road {
			t.Fatalf("cell %v still Road after removal", c)
		}
	}
	if !net.Changed() {
		t.Fatal("expected network changed after RemoveSegment")
	}
}

func TestNetworkSegmentAtFindsCoveringSegment(t *testing.T) {
	grid := worldgrid.New(32, 32)
	net := NewNetwork()
	seg := NewStraight(0, Node{5, 5}, Node{10, 5}, worldgrid.Local)
	net.AddSegment(grid, seg)

	id, ok := net.SegmentAt(7, 5)
	if !ok || id != seg.ID {
		t.Fatalf("SegmentAt(7,5) = (%v, %v), want (%v, true)", id, ok, seg.ID)
	}

	if _, ok := net.SegmentAt(7, 20); ok {
		t.Fatal("expected SegmentAt to miss a cell with no road")
	}
}

func TestRebuildProducesSortedAdjacency(t *testing.T) {
	grid := worldgrid.New(32, 32)
	net := NewNetwork()
	net.AddSegment(grid, NewStraight(0, Node{0, 0}, Node{5, 0}, worldgrid.Local))
	net.Rebuild()

	for node, neighbors := range net.Edges {
		for i := 1; i < len(neighbors); i++ {
			if !neighbors[i-1].Less(neighbors[i]) {
				t.Fatalf("neighbors of %v not sorted: %v", node, neighbors)
			}
		}
	}
}
