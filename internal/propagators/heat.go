package propagators

import "github.com/talgya/citycore/internal/worldgrid"

// SurfaceHeatFactor returns the baseline heat contribution of one cell from
// its terrain, zoning, and tree presence, before kernel dampening.
func SurfaceHeatFactor(cellType worldgrid.CellType, zone worldgrid.ZoneType, treePresent bool) float64 {
	var base float64
	switch cellType {
	case worldgrid.Water:
		base = 0.1
	case worldgrid.Road:
		base = 0.8
	default:
		switch {
		case zone.IsResidential():
			base = 0.4
		case zone.IsCommercial():
			base = 0.6
		case zone == worldgrid.Industrial:
			base = 0.9
		case zone == worldgrid.Office:
			base = 0.55
		default:
			base = 0.2
		}
	}
	if treePresent {
		base *= 0.6
	}
	return base
}

// HeatGrid is the per-cell heat-island intensity field, in the same
// saturating byte representation as pollution/noise.
type HeatGrid struct {
	Values Saturating8
	Width  int
	Height int
}

// NewHeatGrid creates a zeroed heat grid.
func NewHeatGrid(width, height int) *HeatGrid {
	return &HeatGrid{Values: make(Saturating8, width*height), Width: width, Height: height}
}

// NightAmplification scales heat intensity up during night hours, matching
// the urban heat-island effect's stronger nighttime signature.
const NightAmplification = 1.3

// greenFractionKernel is the radius of the 5x5 neighbourhood (2 cells each
// direction) used to dampen a cell's heat by nearby tree coverage.
const greenFractionKernel = 2

// Recompute derives the heat grid from per-cell terrain/zone/tree data,
// dampening each cell by the green fraction in its 5x5 neighbourhood and
// amplifying at night.
func (h *HeatGrid) Recompute(grid *worldgrid.Grid, treeAt func(x, y int) bool, night bool) {
	for y := 0; y < h.Height; y++ {
		for x := 0; x < h.Width; x++ {
			cell := grid.Get(x, y)
			base := SurfaceHeatFactor(cell.CellType, cell.Zone, treeAt(x, y))

			greenCount, total := 0, 0
			for dy := -greenFractionKernel; dy <= greenFractionKernel; dy++ {
				for dx := -greenFractionKernel; dx <= greenFractionKernel; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= h.Width || ny >= h.Height {
						continue
					}
					total++
					if treeAt(nx, ny) {
						greenCount++
					}
				}
			}
			greenFraction := 0.0
			if total > 0 {
				greenFraction = float64(greenCount) / float64(total)
			}
			intensity := base * (1 - greenFraction*0.5)
			if night {
				intensity *= NightAmplification
			}
			if intensity > 255 {
				intensity = 255
			}
			h.Values[y*h.Width+x] = uint8(intensity * 255 / 1.3)
		}
	}
}
