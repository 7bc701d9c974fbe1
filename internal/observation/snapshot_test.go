package observation

import (
	"testing"

	"github.com/talgya/citycore/internal/econz"
	"github.com/talgya/citycore/internal/entities"
	"github.com/talgya/citycore/internal/production"
	"github.com/talgya/citycore/internal/roads"
	"github.com/talgya/citycore/internal/utilities"
	"github.com/talgya/citycore/internal/weather"
	"github.com/talgya/citycore/internal/worldgrid"
)

func newTestWorld() *World {
	store := entities.NewStore()
	b := &entities.Building{Zone: worldgrid.ResidentialLow, Level: 1, Capacity: 10, Occupants: 4}
	store.SpawnBuilding(b)

	c1 := &entities.Citizen{}
	c1.Details.Happiness = 60
	c1.Needs = entities.Needs{Hunger: 80, Energy: 80, Social: 80, Fun: 80, Comfort: 80}
	c2 := &entities.Citizen{}
	c2.Details.Happiness = 40
	c2.Needs = entities.Needs{Hunger: 60, Energy: 60, Social: 60, Fun: 60, Comfort: 60}
	store.SpawnCitizen(c1)
	store.SpawnCitizen(c2)

	policies := econz.DefaultPolicies()
	chains := &production.ChainState{}

	return &World{
		Grid:     worldgrid.New(8, 8),
		Net:      roads.NewNetwork(),
		Store:    store,
		Budget:   econz.NewBudget(75000),
		Policies: &policies,
		Weather:  weather.Conditions{Temp: 20, IsRain: true},
		Chains:   chains,
		Power:    utilities.DispatchResult{ReserveMargin: 0.2},
		Water:    utilities.WaterDispatchResult{ReserveMargin: 0.1},
	}
}

func TestBuildPopulationAveragesAcrossCitizens(t *testing.T) {
	w := newTestWorld()
	snap := Build(w, 1440)

	if snap.Population != 2 {
		t.Fatalf("Population = %d, want 2", snap.Population)
	}
	if snap.AvgHappiness != 50 {
		t.Errorf("AvgHappiness = %v, want 50", snap.AvgHappiness)
	}
	if snap.AvgNeeds != 70 {
		t.Errorf("AvgNeeds = %v, want 70", snap.AvgNeeds)
	}
}

func TestBuildZonesAggregatesByZoneType(t *testing.T) {
	w := newTestWorld()
	snap := Build(w, 0)

	if len(snap.Zones) != 1 {
		t.Fatalf("expected 1 zone group, got %d", len(snap.Zones))
	}
	z := snap.Zones[0]
	if z.Zone != worldgrid.ResidentialLow || z.Buildings != 1 || z.Capacity != 10 || z.Occupants != 4 {
		t.Errorf("unexpected zone summary: %+v", z)
	}
}

func TestBuildCommoditiesListsAllCommoditiesWithStock(t *testing.T) {
	w := newTestWorld()
	w.Chains.Stock(production.Grain) // touch to ensure no panic on zero state
	snap := Build(w, 0)

	if len(snap.Commodities) != len(production.AllCommodities()) {
		t.Fatalf("expected %d commodities, got %d", len(production.AllCommodities()), len(snap.Commodities))
	}
}

func TestBuildReflectsTreasuryAndDispatchState(t *testing.T) {
	w := newTestWorld()
	snap := Build(w, 0)

	if snap.Treasury != 75000 {
		t.Errorf("Treasury = %d, want 75000", snap.Treasury)
	}
	if snap.PowerReserveMargin != 0.2 {
		t.Errorf("PowerReserveMargin = %v, want 0.2", snap.PowerReserveMargin)
	}
	if snap.WaterReserveMargin != 0.1 {
		t.Errorf("WaterReserveMargin = %v, want 0.1", snap.WaterReserveMargin)
	}
}

func TestBuildWithNoCitizensLeavesAveragesZero(t *testing.T) {
	w := newTestWorld()
	w.Store = entities.NewStore()
	snap := Build(w, 0)

	if snap.Population != 0 || snap.AvgHappiness != 0 || snap.AvgNeeds != 0 {
		t.Errorf("expected zero averages for empty population, got %+v", snap)
	}
}
