package utilities

import "github.com/talgya/citycore/internal/roads"

// WaterSourceKind enumerates the ways a city can draw water.
type WaterSourceKind uint8

const (
	SourceWell WaterSourceKind = iota
	SourceSurfaceIntake
	SourceReservoir
	SourceDesal
)

// WaterSource is one supply point with its operating characteristics.
type WaterSource struct {
	Cell          roads.Node
	Kind          WaterSourceKind
	CapacityMGD   float64 // millions of gallons/day
	Quality       float64 // [0,1]
	OperatingCost float64 // per MGD
}

// WaterConsumer is one building or service's water draw, in MGD.
type WaterConsumer struct {
	Cell       roads.Node
	DemandMGD  float64
	Priority   Priority
}

// ReservoirState tracks standing storage for reservoir-backed supply.
type ReservoirState struct {
	CapacityMG float64 // total storage capacity, millions of gallons
	LevelMG    float64
	InflowMGD  float64
	OutflowMGD float64
	EvapRateMGD float64
}

// StorageTier classifies a reservoir's days-of-storage-remaining into a
// player-facing warning level.
type StorageTier uint8

const (
	StorageHealthy StorageTier = iota
	StorageWatch
	StorageWarning
	StorageCritical
)

// DaysOfStorageRemaining estimates how long current storage lasts at the
// current net drawdown rate. Returns +Inf (as a very large number) if the
// reservoir isn't net-draining.
func (r ReservoirState) DaysOfStorageRemaining() float64 {
	net := r.OutflowMGD + r.EvapRateMGD - r.InflowMGD
	if net <= 0 {
		return 9999
	}
	return r.LevelMG / net
}

// Tier classifies the reservoir's current days-of-storage-remaining.
func (r ReservoirState) Tier() StorageTier {
	days := r.DaysOfStorageRemaining()
	switch {
	case days < 7:
		return StorageCritical
	case days < 30:
		return StorageWarning
	case days < 90:
		return StorageWatch
	default:
		return StorageHealthy
	}
}

// Step advances one day of reservoir hydrology: inflow adds, outflow and
// evaporation subtract, clamped to [0, CapacityMG].
func (r *ReservoirState) Step() {
	r.LevelMG += r.InflowMGD - r.OutflowMGD - r.EvapRateMGD
	if r.LevelMG < 0 {
		r.LevelMG = 0
	}
	if r.LevelMG > r.CapacityMG {
		r.LevelMG = r.CapacityMG
	}
}

// WaterDispatchResult mirrors DispatchResult for the water network.
type WaterDispatchResult struct {
	TotalDemandMGD float64
	TotalSupplyMGD float64
	ReserveMargin  float64
	Deficit        bool
	SheddedCells   []roads.Node
}

// AggregateWaterDemand sums consumer demand, no time-of-day multiplier —
// unlike electrical load, municipal water demand is treated as flat across
// the day at this level of simulation fidelity.
func AggregateWaterDemand(consumers []WaterConsumer) float64 {
	total := 0.0
	for _, c := range consumers {
		total += c.DemandMGD
	}
	return total
}

// AggregateWaterSupply sums source capacity, weighted by quality — a source
// delivering contaminated water contributes less usable supply.
func AggregateWaterSupply(sources []WaterSource) float64 {
	total := 0.0
	for _, s := range sources {
		total += s.CapacityMGD * s.Quality
	}
	return total
}

// DispatchWater aggregates demand/supply and sheds deferable consumers first
// when supply falls short, mirroring Dispatch for power.
func DispatchWater(consumers []WaterConsumer, sources []WaterSource) WaterDispatchResult {
	demand := AggregateWaterDemand(consumers)
	supply := AggregateWaterSupply(sources)

	result := WaterDispatchResult{TotalDemandMGD: demand, TotalSupplyMGD: supply}
	if demand > 0 {
		result.ReserveMargin = supply/demand - 1
	}
	if supply >= demand {
		return result
	}
	result.Deficit = true

	byPriority := make([][]WaterConsumer, 3)
	for _, c := range consumers {
		byPriority[c.Priority] = append(byPriority[c.Priority], c)
	}

	remaining := supply
	for _, p := range []Priority{PriorityCritical, PriorityNormal, PriorityDeferable} {
		for _, c := range byPriority[p] {
			if remaining >= c.DemandMGD {
				remaining -= c.DemandMGD
				continue
			}
			result.SheddedCells = append(result.SheddedCells, c.Cell)
		}
	}
	return result
}
