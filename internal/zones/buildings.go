package zones

import (
	"github.com/talgya/citycore/internal/entities"
	"github.com/talgya/citycore/internal/roads"
	"github.com/talgya/citycore/internal/simrand"
	"github.com/talgya/citycore/internal/worldgrid"
)

// SpawnThreshold is the minimum treasury balance required before a new
// level-1 building may spawn.
const SpawnThreshold = 1000

// DefaultConstructionTicks is how long a freshly spawned building takes to
// finish construction.
const DefaultConstructionTicks = 30

// MaxUpgradesPerSlowTick caps how many buildings may upgrade in one slow
// tick, bounding worst-case per-tick cost.
const MaxUpgradesPerSlowTick = 50

// UpgradeOccupancyThreshold and UpgradeHappinessThreshold gate upgrades.
const (
	UpgradeOccupancyThreshold = 0.75
	UpgradeHappinessThreshold = 45.0
	DowngradeHappinessCeiling = 30.0
	DowngradeChance           = 0.01
)

// ZoneMaxLevel is the structural maximum level per zone type, before policy
// or FAR caps are applied.
func ZoneMaxLevel(z worldgrid.ZoneType) uint8 {
	switch z {
	case worldgrid.ResidentialHigh, worldgrid.CommercialHigh, worldgrid.Office:
		return 5
	default:
		return 3
	}
}

// CapacityTable looks up occupant capacity from (zone, level).
func CapacityTable(z worldgrid.ZoneType, level uint8) uint16 {
	base := uint16(0)
	switch {
	case z.IsResidential():
		base = 4
	case z.IsCommercial():
		base = 6
	case z == worldgrid.Industrial:
		base = 10
	case z == worldgrid.Office:
		base = 8
	}
	return base * uint16(level) * uint16(level)
}

// SpawnCandidate is an eligible zoned cell with no building, ready to be
// evaluated for spawn.
type SpawnCandidate struct {
	Cell roads.Node
	Zone worldgrid.ZoneType
}

// TrySpawn places a level-1 under-construction building on candidate if the
// class has positive demand and treasury clears the threshold. Returns the
// new building's handle, or ok=false if no spawn occurred.
func TrySpawn(store *entities.Store, grid *worldgrid.Grid, net *roads.Network, demand *Demand, treasury int64, c SpawnCandidate) (entities.BuildingHandle, bool) {
	if treasury < SpawnThreshold {
		return 0, false
	}
	cls, ok := classOf(c.Zone)
	if !ok || demand.Live[cls] <= 0 {
		return 0, false
	}
	if grid.Get(c.Cell.X, c.Cell.Y).BuildingID != 0 {
		return 0, false
	}

	b := &entities.Building{
		Zone:     c.Zone,
		Level:    1,
		X:        c.Cell.X,
		Y:        c.Cell.Y,
		Width:    1,
		Height:   1,
		Capacity: CapacityTable(c.Zone, 1),
		Construction: &entities.UnderConstruction{
			TicksRemaining: DefaultConstructionTicks,
			TotalTicks:     DefaultConstructionTicks,
		},
	}
	if !b.AdjacentToRoad(grid) {
		return 0, false
	}

	h := store.SpawnBuilding(b)
	for _, cell := range b.Footprint() {
		grid.Mutate(cell.X, cell.Y, func(cell *worldgrid.Cell) {
			cell.BuildingID = h
		})
	}
	return h, true
}

// AdvanceConstruction decrements a building's construction timer by one
// tick, removing the tag once exhausted.
func AdvanceConstruction(b *entities.Building) {
	if b.Construction == nil {
		return
	}
	if b.Construction.TicksRemaining > 0 {
		b.Construction.TicksRemaining--
	}
	if b.Construction.Done() {
		b.Construction = nil
	}
}

// UpgradeEligible reports whether b qualifies for an upgrade this slow tick.
func UpgradeEligible(b *entities.Building, avgHappiness float64, policyMaxLevel, farCap uint8) bool {
	if b.Construction != nil {
		return false
	}
	if b.OccupancyRatio() < UpgradeOccupancyThreshold {
		return false
	}
	if avgHappiness < UpgradeHappinessThreshold {
		return false
	}
	maxLevel := ZoneMaxLevel(b.Zone)
	if policyMaxLevel < maxLevel {
		maxLevel = policyMaxLevel
	}
	if farCap < maxLevel {
		maxLevel = farCap
	}
	return b.Level < maxLevel
}

// Upgrade raises a building's level by one and refreshes its capacity from
// the capacity table.
func Upgrade(b *entities.Building) {
	b.Level++
	b.Capacity = CapacityTable(b.Zone, b.Level)
}

// UpgradeAll walks every eligible building in handle order, upgrading up to
// MaxUpgradesPerSlowTick of them.
func UpgradeAll(store *entities.Store, avgHappiness float64, policyMaxLevel, farCap uint8) int {
	upgraded := 0
	for _, h := range store.SortedBuildingHandles() {
		if upgraded >= MaxUpgradesPerSlowTick {
			break
		}
		b, _ := store.Building(h)
		if UpgradeEligible(b, avgHappiness, policyMaxLevel, farCap) {
			Upgrade(b)
			upgraded++
		}
	}
	return upgraded
}

// DowngradeEligible reports whether b is a downgrade candidate: average
// happiness at or below the ceiling and the per-tick random draw succeeds.
func DowngradeEligible(b *entities.Building, avgHappiness float64, roll float64) bool {
	if b.Construction != nil || b.Level <= 1 {
		return false
	}
	if avgHappiness > DowngradeHappinessCeiling {
		return false
	}
	return roll < DowngradeChance
}

// Downgrade lowers a building's level by one, evicting any occupants beyond
// the new, smaller capacity.
func Downgrade(b *entities.Building) {
	b.Level--
	b.Capacity = CapacityTable(b.Zone, b.Level)
	if b.Occupants > b.Capacity {
		b.Occupants = b.Capacity
	}
}

// DowngradeAll walks every building in handle order, downgrading those
// whose deterministic per-tick roll succeeds.
func DowngradeAll(store *entities.Store, rng *simrand.Source, tick uint64, avgHappiness float64) int {
	downgraded := 0
	for _, h := range store.SortedBuildingHandles() {
		b, _ := store.Building(h)
		roll := rng.Float(tick, simrand.SubsystemBuildingDowngrade, uint64(h))
		if DowngradeEligible(b, avgHappiness, roll) {
			Downgrade(b)
			downgraded++
		}
	}
	return downgraded
}
