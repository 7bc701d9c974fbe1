package weather

import "github.com/talgya/citycore/internal/worldgrid"

// Climate tracks cumulative CO2 and the resulting warming tier. Sea-level
// rise fires once, at the +3F threshold, and never again.
type Climate struct {
	CO2Tonnes       float64
	SeaLevelTriggered bool
}

// CO2Thresholds gate each +1F warming tier, in cumulative tonnes.
var CO2Thresholds = [3]float64{5_000_000, 15_000_000, 35_000_000}

// WarmingTier returns how many +1F steps have been crossed (0..3).
func (c *Climate) WarmingTier() int {
	tier := 0
	for _, t := range CO2Thresholds {
		if c.CO2Tonnes >= t {
			tier++
		}
	}
	return tier
}

// WarmingOffsetC converts the warming tier to a Celsius offset applied to
// daily weather generation (each +1F tier is ~0.56C).
func (c *Climate) WarmingOffsetC() float64 {
	return float64(c.WarmingTier()) * 0.56
}

// DisasterFrequencyMultiplier and DroughtDurationMultiplier scale with
// warming tier, each tier compounding the last by 25%.
func (c *Climate) DisasterFrequencyMultiplier() float64 {
	mult := 1.0
	for i := 0; i < c.WarmingTier(); i++ {
		mult *= 1.25
	}
	return mult
}

func (c *Climate) DroughtDurationMultiplier() float64 {
	return c.DisasterFrequencyMultiplier()
}

// PowerPlantEmissionFactor and IndustrialBaseRate are the per-unit CO2
// contributions accumulated yearly.
const (
	PowerPlantEmissionFactor = 0.4 // tonnes CO2 per MWh
	IndustrialBaseRate       = 120 // tonnes CO2 per building level per year
)

// AccumulateYearly adds one year's emissions from power generation and
// industrial activity to the running CO2 total.
func (c *Climate) AccumulateYearly(powerPlantMWh float64, industrialLevelSum uint64) {
	c.CO2Tonnes += powerPlantMWh*PowerPlantEmissionFactor + float64(industrialLevelSum)*IndustrialBaseRate
}

// SeaLevelElevationPercentile is the elevation percentile below which
// coastal cells flood once the sea-level event triggers.
const SeaLevelElevationPercentile = 0.08

// MaybeTriggerSeaLevelRise floods coastal cells below the elevation
// percentile once the warming tier reaches 3, exactly once per city — a
// second call after the flag is set is a no-op even if CO2 keeps rising.
func (c *Climate) MaybeTriggerSeaLevelRise(grid *worldgrid.Grid, elevationThreshold float32) bool {
	if c.SeaLevelTriggered || c.WarmingTier() < 3 {
		return false
	}
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			cell := grid.Get(x, y)
			if cell.CellType != worldgrid.Water && cell.Elevation < elevationThreshold {
				grid.Mutate(x, y, func(c *worldgrid.Cell) {
					c.CellType = worldgrid.Water
				})
			}
		}
	}
	c.SeaLevelTriggered = true
	return true
}
