package propagators

import (
	"math"

	"github.com/talgya/citycore/internal/roads"
)

// NoiseSource is an emitter cell, its base level, and its per-source decay
// radius (industrial sources carry farther than local roads).
type NoiseSource struct {
	Cell   roads.Node
	Level  float64
	Radius int
}

// RecomputeNoise disperses every source with isotropic decay out to its own
// radius, saturating-accumulating into g.
func RecomputeNoise(g *Grid, sources []NoiseSource) {
	g.Clear()
	for _, src := range sources {
		for dy := -src.Radius; dy <= src.Radius; dy++ {
			for dx := -src.Radius; dx <= src.Radius; dx++ {
				dist := math.Hypot(float64(dx), float64(dy))
				if dist > float64(src.Radius) {
					continue
				}
				decay := 1.0 - dist/float64(src.Radius)
				v := src.Level * decay
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
}
