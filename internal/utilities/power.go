// Package utilities aggregates power and water demand every few ticks and
// dispatches supply against it in merit order, the same way the teacher's
// settlement markets aggregate supply and demand before resolving a price:
// here the "price" is which consumers keep the lights on.
package utilities

import (
	"sort"

	"github.com/talgya/citycore/internal/roads"
)

// Priority governs load-shedding order when supply falls short of demand.
// Critical consumers (hospitals, police) are shed last.
type Priority uint8

const (
	PriorityCritical Priority = iota
	PriorityNormal
	PriorityDeferable
)

// EnergyConsumer is one building or service's electrical draw.
type EnergyConsumer struct {
	Cell          roads.Node
	BaseDemandKWh float64
	Priority      Priority
}

// timeOfDayMultiplier scales demand by hour-of-day, peaking morning and
// evening and troughing overnight.
func timeOfDayMultiplier(hour int) float64 {
	switch {
	case hour >= 6 && hour < 9:
		return 1.3
	case hour >= 17 && hour < 21:
		return 1.5
	case hour >= 0 && hour < 5:
		return 0.5
	default:
		return 1.0
	}
}

// PlantKind distinguishes dispatchable sources from intermittent ones.
type PlantKind uint8

const (
	PlantCoal PlantKind = iota
	PlantGas
	PlantNuclear
	PlantSolar
	PlantWind
)

// meritOrder ranks plant kinds by marginal cost, cheapest first:
// intermittent sources, whose output is free and otherwise wasted, then
// nuclear baseload, then gas peaking. No function in this package reads it.
var meritOrder = map[PlantKind]int{
	PlantSolar:   0,
	PlantWind:    1,
	PlantNuclear: 2,
	PlantCoal:    3,
	PlantGas:     4,
}

// PowerPlant is a dispatchable or intermittent generation source.
type PowerPlant struct {
	Cell         roads.Node
	Kind         PlantKind
	CapacityKW   float64
	Intermittency float64 // [0,1] fraction of capacity actually available this tick
}

// OutputKW returns the plant's available output this tick, after
// intermittency is applied.
func (p PowerPlant) OutputKW() float64 {
	return p.CapacityKW * (1 - p.Intermittency)
}

// DispatchResult summarizes one demand-aggregation tick's outcome.
type DispatchResult struct {
	TotalDemandKW float64
	TotalSupplyKW float64
	ReserveMargin float64 // supply/demand - 1
	Deficit       bool
	SheddedCells  []roads.Node
}

// AggregateDemand sums consumer demand scaled by time-of-day.
func AggregateDemand(consumers []EnergyConsumer, hour int) float64 {
	mult := timeOfDayMultiplier(hour)
	total := 0.0
	for _, c := range consumers {
		total += c.BaseDemandKWh * mult
	}
	return total
}

// AggregateSupply sums plant output in merit order (order doesn't affect the
// sum, only which plants would be curtailed first under a capacity cap —
// dispatch below handles shedding on the demand side instead).
func AggregateSupply(plants []PowerPlant) float64 {
	total := 0.0
	for _, p := range plants {
		total += p.OutputKW()
	}
	return total
}

// Dispatch aggregates demand and supply and, if supply falls short, sheds
// load starting from the lowest-priority consumers until demand fits supply.
// PowerPlants is accepted for symmetry with the merit-order naming even
// though total supply doesn't depend on dispatch order; grid topology
// (brownouts localized near shortfall) is future work, not modeled here.
func Dispatch(consumers []EnergyConsumer, plants []PowerPlant, hour int) DispatchResult {
	demand := AggregateDemand(consumers, hour)
	supply := AggregateSupply(plants)

	result := DispatchResult{TotalDemandKW: demand, TotalSupplyKW: supply}
	if demand > 0 {
		result.ReserveMargin = supply/demand - 1
	}

	if supply >= demand {
		return result
	}
	result.Deficit = true

	ordered := make([]EnergyConsumer, len(consumers))
	copy(ordered, consumers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority // critical served first
	})

	mult := timeOfDayMultiplier(hour)
	remaining := supply
	for _, c := range ordered {
		need := c.BaseDemandKWh * mult
		if remaining >= need {
			remaining -= need
			continue
		}
		result.SheddedCells = append(result.SheddedCells, c.Cell)
	}
	return result
}
