package needs

import (
	"github.com/talgya/citycore/internal/roads"
	"github.com/talgya/citycore/internal/worldgrid"
)

// ServiceKind enumerates the coverage layers service buildings provide.
type ServiceKind uint8

const (
	Fire ServiceKind = iota
	Police
	Health
	Education
	Parks
	Telecom
)

// ServiceBuilding is the minimal view of a building the coverage BFS needs:
// its kind, footprint origin, and a size-derived radius.
type ServiceBuilding struct {
	Kind   ServiceKind
	Origin roads.Node
	Radius int
}

// RadiusFromSize derives a coverage radius from a building's footprint size,
// larger service buildings reaching further.
func RadiusFromSize(width, height int) int {
	base := width
	if height > base {
		base = height
	}
	return 8 + base*3
}

// CoverageGrid holds one boolean layer per service kind, sized to the world
// grid, plus a dirty flag so the BFS only reruns when buildings change.
type CoverageGrid struct {
	Width, Height int
	Layers        map[ServiceKind][]bool
	Dirty         bool
}

// NewCoverageGrid creates an all-false coverage grid matching the world grid.
func NewCoverageGrid(width, height int) *CoverageGrid {
	layers := make(map[ServiceKind][]bool, 6)
	for _, k := range []ServiceKind{Fire, Police, Health, Education, Parks, Telecom} {
		layers[k] = make([]bool, width*height)
	}
	return &CoverageGrid{Width: width, Height: height, Layers: layers, Dirty: true}
}

// At reports whether (x,y) is covered by service kind k.
func (c *CoverageGrid) At(k ServiceKind, x, y int) bool {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return false
	}
	return c.Layers[k][y*c.Width+x]
}

// Recompute rebuilds every coverage layer from scratch. Telecom coverage
// ignores the road network and spreads by straight-line distance; every
// other service kind floods outward through Road and Grass cells only
// (Water blocks propagation).
func (c *CoverageGrid) Recompute(grid *worldgrid.Grid, buildings []ServiceBuilding) {
	for k := range c.Layers {
		for i := range c.Layers[k] {
			c.Layers[k][i] = false
		}
	}

	for _, b := range buildings {
		if b.Kind == Telecom {
			c.floodRadius(b)
			continue
		}
		c.floodBFS(grid, b)
	}
	c.Dirty = false
}

func (c *CoverageGrid) floodRadius(b ServiceBuilding) {
	layer := c.Layers[b.Kind]
	r2 := b.Radius * b.Radius
	for y := b.Origin.Y - b.Radius; y <= b.Origin.Y+b.Radius; y++ {
		if y < 0 || y >= c.Height {
			continue
		}
		for x := b.Origin.X - b.Radius; x <= b.Origin.X+b.Radius; x++ {
			if x < 0 || x >= c.Width {
				continue
			}
			dx, dy := x-b.Origin.X, y-b.Origin.Y
			if dx*dx+dy*dy <= r2 {
				layer[y*c.Width+x] = true
			}
		}
	}
}

func (c *CoverageGrid) floodBFS(grid *worldgrid.Grid, b ServiceBuilding) {
	layer := c.Layers[b.Kind]
	visited := make(map[roads.Node]bool)
	type queued struct {
		n     roads.Node
		depth int
	}
	queue := []queued{{b.Origin, 0}}
	visited[b.Origin] = true

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !grid.InBounds(cur.n.X, cur.n.Y) {
			continue
		}
		layer[cur.n.Y*c.Width+cur.n.X] = true
		if cur.depth >= b.Radius {
			continue
		}
		for _, d := range [4]roads.Node{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
			nb := roads.Node{X: cur.n.X + d.X, Y: cur.n.Y + d.Y}
			if visited[nb] || !grid.InBounds(nb.X, nb.Y) {
				continue
			}
			cell := grid.Get(nb.X, nb.Y)
			if cell.CellType == worldgrid.Water {
				continue
			}
			visited[nb] = true
			queue = append(queue, queued{nb, cur.depth + 1})
		}
	}
}
