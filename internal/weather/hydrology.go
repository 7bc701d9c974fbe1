package weather

// StormwaterGrid accumulates runoff per cell during storms and drains it
// over subsequent ticks, flagging flood cells above a saturation threshold.
type StormwaterGrid struct {
	Level  []uint8 // 0..255 saturation
	Width  int
	Height int
}

// NewStormwaterGrid creates a zeroed stormwater grid.
func NewStormwaterGrid(width, height int) *StormwaterGrid {
	return &StormwaterGrid{Level: make([]uint8, width*height), Width: width, Height: height}
}

// FloodThreshold is the saturation level at which a cell is considered
// flooded for the observation layer.
const FloodThreshold = 200

// DrainRate is how much saturation drains per tick absent new rainfall.
const DrainRate = 3

// Accumulate adds rainfall intensity to every cell and subtracts DrainRate,
// clamping the result to [0, 255].
func (g *StormwaterGrid) Accumulate(rainIntensity uint8) {
	for i := range g.Level {
		v := int(g.Level[i]) + int(rainIntensity) - DrainRate
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		g.Level[i] = uint8(v)
	}
}

// Flooded reports whether (x,y) is currently flooded.
func (g *StormwaterGrid) Flooded(x, y int) bool {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return false
	}
	return g.Level[y*g.Width+x] >= FloodThreshold
}

// RainIntensityFor derives rainfall intensity from the day's conditions:
// storms produce heavy rainfall, plain rain produces moderate rainfall, dry
// days produce none.
func RainIntensityFor(c Conditions) uint8 {
	switch {
	case c.IsStorm:
		return 60
	case c.IsRain:
		return 20
	default:
		return 0
	}
}
