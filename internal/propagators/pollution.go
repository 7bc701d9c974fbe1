// Package propagators holds the cadence-gated grid writers that spread
// pollution, noise, heat, crime, and land value across the city: each is a
// dedicated grid resource produced by one system and read by downstream
// systems (happiness, zone demand, AQI warnings) later the same tick. See
// design doc Section 4.8.
package propagators

import (
	"math"

	"github.com/talgya/citycore/internal/roads"
)

// Saturating8 accumulates into a byte without wraparound.
type Saturating8 []uint8

// Add increments i by delta, saturating at 255.
func (s Saturating8) Add(i int, delta uint8) {
	if i < 0 || i >= len(s) {
		return
	}
	v := int(s[i]) + int(delta)
	if v > 255 {
		v = 255
	}
	s[i] = uint8(v)
}

// PollutionSource is an emitter cell and its emission rate Q.
type PollutionSource struct {
	Cell roads.Node
	Q    float64
}

// Wind is the prevailing wind direction (unit vector) and speed used to pick
// between plume and isotropic dispersal.
type Wind struct {
	DX, DY float64
	Speed  float64
}

// PlumeWindThreshold is the minimum wind speed for Gaussian plume dispersal;
// below it, pollution spreads isotropically.
const PlumeWindThreshold = 2.0

// Grid is a pollution (or similarly dispersed) field over the world grid.
type Grid struct {
	Values Saturating8
	Width  int
	Height int
}

// NewGrid creates a zeroed pollution grid sized to the world grid.
func NewGrid(width, height int) *Grid {
	return &Grid{Values: make(Saturating8, width*height), Width: width, Height: height}
}

// Clear zeroes the grid before each recompute.
func (g *Grid) Clear() {
	for i := range g.Values {
		g.Values[i] = 0
	}
}

func (g *Grid) idx(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return 0, false
	}
	return y*g.Width + x, true
}

// At returns the field value at (x,y), or 0 out of bounds.
func (g *Grid) At(x, y int) uint8 {
	i, ok := g.idx(x, y)
	if !ok {
		return 0
	}
	return g.Values[i]
}

// radiusMax bounds how far any single source is evaluated, to keep
// per-source cost bounded regardless of grid size.
const radiusMax = 24

// RecomputePollution disperses every source's emission across the grid:
// Gaussian plume downwind when wind speed clears the threshold, isotropic
// decay otherwise. Values accumulate (saturating) so overlapping sources
// compound.
func RecomputePollution(g *Grid, sources []PollutionSource, wind Wind) {
	g.Clear()
	for _, src := range sources {
		if wind.Speed >= PlumeWindThreshold {
			plume(g, src, wind)
		} else {
			isotropic(g, src, radiusMax)
		}
	}
}

func isotropic(g *Grid, src PollutionSource, radius int) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			dist := math.Hypot(float64(dx), float64(dy))
			if dist > float64(radius) {
				continue
			}
			decay := math.Exp(-dist / 6.0)
			v := src.Q * decay
			if v < 1 {
				continue
			}
			i, ok := g.idx(src.Cell.X+dx, src.Cell.Y+dy)
			if !ok {
				continue
			}
			g.Values.Add(i, uint8(math.Min(v, 255)))
		}
	}
}

// plume disperses src downwind using a Gaussian crosswind profile whose
// spread widens with downwind distance (sigma_y = 1 + 0.4*downwind_dist),
// combined with exponential downwind decay.
func plume(g *Grid, src PollutionSource, wind Wind) {
	norm := math.Hypot(wind.DX, wind.DY)
	if norm == 0 {
		isotropic(g, src, radiusMax)
		return
	}
	ux, uy := wind.DX/norm, wind.DY/norm
	// Perpendicular (crosswind) unit vector.
	px, py := -uy, ux

	for downwind := 0.0; downwind <= radiusMax; downwind++ {
		sigmaY := 1 + 0.4*downwind
		for cross := -radiusMax; cross <= radiusMax; cross++ {
			fx := float64(src.Cell.X) + ux*downwind + px*float64(cross)
			fy := float64(src.Cell.Y) + uy*downwind + py*float64(cross)
			x, y := int(math.Round(fx)), int(math.Round(fy))

			crosswindFactor := math.Exp(-(float64(cross) * float64(cross)) / (2 * sigmaY * sigmaY))
			downwindDecay := math.Exp(-downwind / (8.0 * wind.Speed))
			v := src.Q * crosswindFactor * downwindDecay
			if v < 1 {
				continue
			}
			i, ok := g.idx(x, y)
			if !ok {
				continue
			}
			g.Values.Add(i, uint8(math.Min(v, 255)))
		}
	}
}
