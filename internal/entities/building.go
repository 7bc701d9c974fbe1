package entities

import (
	"github.com/talgya/citycore/internal/roads"
	"github.com/talgya/citycore/internal/worldgrid"
)

// UnderConstruction tags a building that is not yet occupiable.
type UnderConstruction struct {
	TicksRemaining uint16
	TotalTicks     uint16
}

// Done reports whether construction has finished.
func (u UnderConstruction) Done() bool { return u.TicksRemaining == 0 }

// MixedUseCapacity splits a mixed commercial/residential building's capacity
// in half between the two uses.
type MixedUseCapacity struct {
	CommercialCapacity  uint16
	ResidentialCapacity uint16
}

// Building is a zoned structure occupying a rectangular footprint on the
// grid; footprint cells each carry this building's handle in
// worldgrid.Cell.BuildingID.
type Building struct {
	Zone      worldgrid.ZoneType
	Level     uint8 // 1..5
	X, Y      int   // top-left of footprint
	Width     int
	Height    int
	Capacity  uint16
	Occupants uint16

	MixedUse     *MixedUseCapacity
	Construction *UnderConstruction
}

// Occupiable reports whether the building currently accepts occupants.
func (b *Building) Occupiable() bool {
	return b.Construction == nil || b.Construction.Done()
}

// OccupancyRatio returns occupants/capacity, or 0 if capacity is 0.
func (b *Building) OccupancyRatio() float64 {
	if b.Capacity == 0 {
		return 0
	}
	return float64(b.Occupants) / float64(b.Capacity)
}

// Footprint returns every grid cell this building occupies, in row-major
// order, matching the cell ownership invariant: every footprint cell's
// BuildingID points back to this entity and no other cell's does.
func (b *Building) Footprint() []roads.Node {
	cells := make([]roads.Node, 0, b.Width*b.Height)
	for dy := 0; dy < b.Height; dy++ {
		for dx := 0; dx < b.Width; dx++ {
			cells = append(cells, roads.Node{X: b.X + dx, Y: b.Y + dy})
		}
	}
	return cells
}

// AdjacentToRoad reports whether any cell within a 2-cell Chebyshev radius
// of the footprint is a road cell, the adjacency test used for building
// spawn eligibility.
func (b *Building) AdjacentToRoad(grid *worldgrid.Grid) bool {
	const radius = 2
	for dy := -radius; dy < b.Height+radius; dy++ {
		for dx := -radius; dx < b.Width+radius; dx++ {
			x, y := b.X+dx, b.Y+dy
			if grid.Get(x, y).CellType == worldgrid.Road {
				return true
			}
		}
	}
	return false
}
