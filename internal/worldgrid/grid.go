package worldgrid

import (
	"fmt"

	"github.com/ojrac/opensimplex-go"
)

// Grid holds the complete world grid state as a single flat Cell array,
// indexed y*Width+x. The grid itself is a derived view: road cells are set
// by segment rasterisation (see package roads), never placed directly.
type Grid struct {
	Cells  []Cell `json:"-"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// New creates an all-grass grid of the given dimensions.
func New(width, height int) *Grid {
	return &Grid{
		Cells:  make([]Cell, width*height),
		Width:  width,
		Height: height,
	}
}

// InBounds reports whether (x,y) lies within the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// Index returns the flat array index for (x,y). Caller must check InBounds.
func (g *Grid) Index(x, y int) int {
	return y*g.Width + x
}

// Get returns a copy of the cell at (x,y), or the zero Cell if out of bounds.
func (g *Grid) Get(x, y int) Cell {
	if !g.InBounds(x, y) {
		return Cell{}
	}
	return g.Cells[g.Index(x, y)]
}

// Set overwrites the cell at (x,y). No-op if out of bounds.
func (g *Grid) Set(x, y int, c Cell) {
	if !g.InBounds(x, y) {
		return
	}
	g.Cells[g.Index(x, y)] = c
}

// Mutate applies fn to the cell at (x,y) in place. No-op if out of bounds.
func (g *Grid) Mutate(x, y int, fn func(*Cell)) {
	if !g.InBounds(x, y) {
		return
	}
	fn(&g.Cells[g.Index(x, y)])
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d)", g.Width, g.Height)
}

// Generate produces a deterministic terrain field from seed: elevation via
// seeded simplex noise, with low elevation becoming Water. Zoning and roads
// are untouched (Grass/Water only) — this is the one procedural-generation
// step the spec allows ("deterministic seed" map generation).
func Generate(width, height int, seed int64) *Grid {
	g := New(width, height)
	noise := opensimplex.NewNormalized(seed)

	const scale = 0.02 // lower = larger landmasses
	const waterLevel = 0.32

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			e := noise.Eval2(float64(x)*scale, float64(y)*scale)
			c := Cell{Elevation: float32(e)}
			if e < waterLevel {
				c.CellType = Water
			} else {
				c.CellType = Grass
			}
			g.Set(x, y, c)
		}
	}
	return g
}
