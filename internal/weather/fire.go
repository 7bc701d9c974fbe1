package weather

import "github.com/talgya/citycore/internal/simrand"

// FireGrid holds per-cell fire intensity as a saturating byte: spread and
// extinguishing both use saturating arithmetic so intensity never wraps
// around at the boundaries.
type FireGrid struct {
	Intensity []uint8
	Width     int
	Height    int
}

// NewFireGrid creates a zeroed fire grid.
func NewFireGrid(width, height int) *FireGrid {
	return &FireGrid{Intensity: make([]uint8, width*height), Width: width, Height: height}
}

func (g *FireGrid) idx(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return 0, false
	}
	return y*g.Width + x, true
}

func saturatingAdd(v uint8, delta int) uint8 {
	r := int(v) + delta
	if r > 255 {
		return 255
	}
	if r < 0 {
		return 0
	}
	return uint8(r)
}

// Ignite starts a fire at (x,y) from source intensity.
func (g *FireGrid) Ignite(x, y int, intensity uint8) {
	i, ok := g.idx(x, y)
	if !ok {
		return
	}
	g.Intensity[i] = saturatingAdd(g.Intensity[i], int(intensity))
}

// SpreadParams bundles the environmental multipliers that scale spread
// probability: wind pushes spread downwind, temperature raises it,
// fireHazardMultiplier comes from the active policy set.
type SpreadParams struct {
	WindDX, WindDY        float64
	Temp                  float64
	FireHazardMultiplier  float64
}

// Step advances the fire grid by one tick: burning cells spread to their
// four neighbours with a probability scaled by wind alignment, temperature,
// and the hazard multiplier, then every burning cell's intensity decays by
// one (rain/storm call ExtinguishRain for a larger saturating decrement
// first).
func (g *FireGrid) Step(rng *simrand.Source, tick uint64, params SpreadParams) {
	next := make([]uint8, len(g.Intensity))
	copy(next, g.Intensity)

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			i, _ := g.idx(x, y)
			if g.Intensity[i] == 0 {
				continue
			}
			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, ny := x+d[0], y+d[1]
				ni, ok := g.idx(nx, ny)
				if !ok {
					continue
				}
				windAlign := 1.0
				if params.WindDX != 0 || params.WindDY != 0 {
					dot := float64(d[0])*params.WindDX + float64(d[1])*params.WindDY
					windAlign = 1 + dot*0.5
				}
				tempFactor := 1 + (params.Temp-20)/100
				p := 0.08 * windAlign * tempFactor * params.FireHazardMultiplier
				roll := rng.Float(tick, simrand.SubsystemFire, uint64(ni))
				if roll < p {
					next[ni] = saturatingAdd(next[ni], 40)
				}
			}
			next[i] = saturatingAdd(next[i], -1)
		}
	}
	g.Intensity = next
}

// ExtinguishRain reduces every burning cell's intensity by amount
// (saturating), applied when rain or storm conditions are active.
func (g *FireGrid) ExtinguishRain(amount uint8) {
	for i, v := range g.Intensity {
		if v == 0 {
			continue
		}
		g.Intensity[i] = saturatingAdd(v, -int(amount))
	}
}
