package utilities

import (
	"testing"

	"github.com/talgya/citycore/internal/roads"
)

func node(x, y int) roads.Node {
	return roads.Node{X: x, Y: y}
}

func TestDispatchNoDeficitWhenSupplyExceedsDemand(t *testing.T) {
	consumers := []EnergyConsumer{{BaseDemandKWh: 100, Priority: PriorityNormal}}
	plants := []PowerPlant{{Kind: PlantGas, CapacityKW: 500}}
	result := Dispatch(consumers, plants, 12)
	if result.Deficit {
		t.Fatalf("expected no deficit, got %+v", result)
	}
	if len(result.SheddedCells) != 0 {
		t.Errorf("expected no shedding, got %v", result.SheddedCells)
	}
}

func TestDispatchShedsDeferableBeforeCritical(t *testing.T) {
	consumers := []EnergyConsumer{
		{Cell: node(0, 0), BaseDemandKWh: 80, Priority: PriorityCritical},
		{Cell: node(1, 0), BaseDemandKWh: 80, Priority: PriorityDeferable},
	}
	plants := []PowerPlant{{Kind: PlantCoal, CapacityKW: 80}}
	result := Dispatch(consumers, plants, 12)
	if !result.Deficit {
		t.Fatalf("expected deficit")
	}
	if len(result.SheddedCells) != 1 || result.SheddedCells[0] != node(1, 0) {
		t.Errorf("expected only the deferable cell shed, got %v", result.SheddedCells)
	}
}

func TestTimeOfDayMultiplierPeaksEvening(t *testing.T) {
	if timeOfDayMultiplier(18) <= timeOfDayMultiplier(2) {
		t.Errorf("expected evening demand multiplier to exceed overnight")
	}
}

func TestPowerPlantIntermittencyReducesOutput(t *testing.T) {
	p := PowerPlant{Kind: PlantSolar, CapacityKW: 100, Intermittency: 0.6}
	if p.OutputKW() != 40 {
		t.Errorf("OutputKW() = %v, want 40", p.OutputKW())
	}
}

func TestReservoirTierWorsensWithDrawdown(t *testing.T) {
	healthy := ReservoirState{CapacityMG: 1000, LevelMG: 900, InflowMGD: 10, OutflowMGD: 10}
	if healthy.Tier() != StorageHealthy {
		t.Errorf("expected healthy tier with balanced flow, got %v", healthy.Tier())
	}

	critical := ReservoirState{CapacityMG: 1000, LevelMG: 50, InflowMGD: 2, OutflowMGD: 20}
	if critical.Tier() != StorageCritical {
		t.Errorf("expected critical tier under heavy drawdown, got %v", critical.Tier())
	}
}

func TestReservoirStepClampsToCapacity(t *testing.T) {
	r := &ReservoirState{CapacityMG: 100, LevelMG: 95, InflowMGD: 20, OutflowMGD: 1}
	r.Step()
	if r.LevelMG != 100 {
		t.Errorf("LevelMG = %v, want clamped to 100", r.LevelMG)
	}
}

func TestDispatchWaterShedsDeferableFirst(t *testing.T) {
	consumers := []WaterConsumer{
		{Cell: node(0, 0), DemandMGD: 5, Priority: PriorityCritical},
		{Cell: node(1, 0), DemandMGD: 5, Priority: PriorityDeferable},
	}
	sources := []WaterSource{{Kind: SourceReservoir, CapacityMGD: 5, Quality: 1.0}}
	result := DispatchWater(consumers, sources)
	if !result.Deficit {
		t.Fatalf("expected deficit")
	}
	if len(result.SheddedCells) != 1 || result.SheddedCells[0] != node(1, 0) {
		t.Errorf("expected only the deferable consumer shed, got %v", result.SheddedCells)
	}
}

func TestAggregateWaterSupplyWeightsByQuality(t *testing.T) {
	sources := []WaterSource{{CapacityMGD: 100, Quality: 0.5}}
	if got := AggregateWaterSupply(sources); got != 50 {
		t.Errorf("AggregateWaterSupply() = %v, want 50", got)
	}
}
