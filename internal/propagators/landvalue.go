package propagators

import (
	"github.com/talgya/citycore/internal/roads"
	"github.com/talgya/citycore/internal/worldgrid"
)

// ValueSource is a land-value contributor: a park, waterfront cell, transit
// stop, or similar amenity, with a base value and the cell radius it
// propagates over.
type ValueSource struct {
	Cell   roads.Node
	Value  uint8
	Radius int
}

// ValueGrid holds land value per cell, derived by BFS from amenity sources
// through Road+Grass cells, with higher-level sources overwriting lower.
type ValueGrid struct {
	Values []uint8
	Width  int
	Height int
}

// NewValueGrid creates a zeroed land-value grid.
func NewValueGrid(width, height int) *ValueGrid {
	return &ValueGrid{Values: make([]uint8, width*height), Width: width, Height: height}
}

// At returns the land value at (x,y), or 0 out of bounds.
func (v *ValueGrid) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= v.Width || y >= v.Height {
		return 0
	}
	return v.Values[y*v.Width+x]
}

// Recompute floods every source outward through Road and Grass cells
// (Water blocks), with each cell taking the maximum value any source's BFS
// front offers it — a later, stronger source always wins over a weaker one
// already in place.
func (v *ValueGrid) Recompute(grid *worldgrid.Grid, sources []ValueSource) {
	for i := range v.Values {
		v.Values[i] = 0
	}
	for _, src := range sources {
		floodMax(v, grid, src)
	}
}

func floodMax(v *ValueGrid, grid *worldgrid.Grid, src ValueSource) {
	visited := make(map[roads.Node]bool)
	type queued struct {
		n     roads.Node
		depth int
	}
	queue := []queued{{src.Cell, 0}}
	visited[src.Cell] = true

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !grid.InBounds(cur.n.X, cur.n.Y) {
			continue
		}
		falloff := 1.0 - float64(cur.depth)/float64(src.Radius+1)
		if falloff < 0 {
			falloff = 0
		}
		contributed := uint8(float64(src.Value) * falloff)
		idx := cur.n.Y*v.Width + cur.n.X
		if contributed > v.Values[idx] {
			v.Values[idx] = contributed
		}
		if cur.depth >= src.Radius {
			continue
		}
		for _, d := range [4]roads.Node{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
			nb := roads.Node{X: cur.n.X + d.X, Y: cur.n.Y + d.Y}
			if visited[nb] || !grid.InBounds(nb.X, nb.Y) {
				continue
			}
			if grid.Get(nb.X, nb.Y).CellType == worldgrid.Water {
				continue
			}
			visited[nb] = true
			queue = append(queue, queued{nb, cur.depth + 1})
		}
	}
}
