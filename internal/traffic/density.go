// Package traffic tracks per-cell vehicle density and derives level-of-service
// grades from volume/capacity. See design doc Section 4.4.
package traffic

import "github.com/talgya/citycore/internal/worldgrid"

// Grid is the per-cell traffic density, cleared on a cadence and incremented
// by commuting citizens as they occupy waypoints.
type Grid struct {
	Density []uint16
	Width   int
	Height  int
}

// NewGrid creates a zeroed traffic grid matching the world grid dimensions.
func NewGrid(width, height int) *Grid {
	return &Grid{Density: make([]uint16, width*height), Width: width, Height: height}
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// Get returns the density at (x,y), or 0 if out of bounds.
func (g *Grid) Get(x, y int) uint16 {
	if !g.inBounds(x, y) {
		return 0
	}
	return g.Density[y*g.Width+x]
}

// Increment bumps the density at (x,y) by one, saturating at the uint16 max.
func (g *Grid) Increment(x, y int) {
	if !g.inBounds(x, y) {
		return
	}
	i := y*g.Width + x
	if g.Density[i] < 65535 {
		g.Density[i]++
	}
}

// Clear zeroes the entire grid.
func (g *Grid) Clear() {
	for i := range g.Density {
		g.Density[i] = 0
	}
}

// VCRatio returns volume/capacity for road type rt at (x,y).
func (g *Grid) VCRatio(x, y int, rt worldgrid.RoadType) float64 {
	cap := rt.Capacity()
	if cap <= 0 {
		return 0
	}
	return float64(g.Get(x, y)) / cap
}

// LOSGrade is the traffic level-of-service letter grade.
type LOSGrade uint8

const (
	LOSA LOSGrade = iota
	LOSB
	LOSC
	LOSD
	LOSE
	LOSF
)

// GradeFromVC derives an LOS grade from a volume/capacity ratio.
// Bands: A<=0.2, B<=0.4, C<=0.6, D<=0.8, E<=1.0, F>1.0.
func GradeFromVC(vc float64) LOSGrade {
	switch {
	case vc <= 0.2:
		return LOSA
	case vc <= 0.4:
		return LOSB
	case vc <= 0.6:
		return LOSC
	case vc <= 0.8:
		return LOSD
	case vc <= 1.0:
		return LOSE
	default:
		return LOSF
	}
}

func (g LOSGrade) String() string {
	return [...]string{"A", "B", "C", "D", "E", "F"}[g]
}
