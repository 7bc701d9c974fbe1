package engine

import (
	"testing"

	"github.com/talgya/citycore/internal/config"
	"github.com/talgya/citycore/internal/entities"
	"github.com/talgya/citycore/internal/production"
	"github.com/talgya/citycore/internal/roads"
	"github.com/talgya/citycore/internal/save"
	"github.com/talgya/citycore/internal/worldgrid"
)

func TestSchedulerStepInvokesOnTick(t *testing.T) {
	s := NewScheduler()
	var got uint64
	s.OnTick = func(tick uint64) { got = tick }

	s.Step()
	s.Step()
	s.Step()

	if got != 3 || s.Tick != 3 {
		t.Fatalf("Tick = %d, OnTick last saw %d, want 3", s.Tick, got)
	}
}

func TestSchedulerSetSpeedClamps(t *testing.T) {
	s := NewScheduler()
	s.SetSpeed(-1)
	if s.Speed != 0 {
		t.Errorf("negative speed should clamp to 0, got %v", s.Speed)
	}
	s.SetSpeed(1000)
	if s.Speed != 16.0 {
		t.Errorf("oversized speed should clamp to MaxSpeed, got %v", s.Speed)
	}
}

func TestEventLogBroadcastsToSubscribers(t *testing.T) {
	l := NewEventLog()
	id, ch := l.Subscribe()
	defer l.Unsubscribe(id)

	l.Emit(Event{Tick: 1, Category: "economy", Description: "deficit"})

	select {
	case e := <-ch:
		if e.Description != "deficit" {
			t.Errorf("got %q, want %q", e.Description, "deficit")
		}
	default:
		t.Fatal("expected buffered event, got none")
	}
	if len(l.Recent(10)) != 1 {
		t.Errorf("Recent = %d entries, want 1", len(l.Recent(10)))
	}
}

func TestEventLogDropsOnFullSubscriberBuffer(t *testing.T) {
	l := NewEventLog()
	_, ch := l.Subscribe()
	for i := 0; i < 100; i++ {
		l.Emit(Event{Tick: uint64(i)})
	}
	if len(l.Recent(1000)) != 100 {
		t.Errorf("log should retain every event even if a subscriber drops some")
	}
	drained := 0
	for {
		select {
		case <-ch:
			drained++
			continue
		default:
		}
		break
	}
	if drained == 0 || drained > 64 {
		t.Errorf("subscriber drained %d, want between 1 and the channel capacity", drained)
	}
}

func newTestCity() *City {
	c := NewCity(42, "testville", 100000)

	// Carve a small road so citizens have somewhere to path; Net.Changed()
	// will be true, so the first Step rebuilds the CSR graph from it.
	c.Net.AddSegment(c.Grid, roads.NewStraight(1, roads.Node{X: 10, Y: 10}, roads.Node{X: 20, Y: 10}, worldgrid.Local))

	home := &entities.Building{
		Zone: worldgrid.ResidentialLow, Level: 1, X: 10, Y: 11, Width: 1, Height: 1,
		Capacity: 10, Occupants: 1,
	}
	homeH := c.Store.SpawnBuilding(home)
	c.Grid.Mutate(10, 11, func(cell *worldgrid.Cell) { cell.BuildingID = worldgrid.BuildingID(homeH) })

	work := &entities.Building{
		Zone: worldgrid.CommercialLow, Level: 1, X: 20, Y: 11, Width: 1, Height: 1,
		Capacity: 10, Occupants: 1,
	}
	workH := c.Store.SpawnBuilding(work)
	c.Grid.Mutate(20, 11, func(cell *worldgrid.Cell) { cell.BuildingID = worldgrid.BuildingID(workH) })

	cit := &entities.Citizen{
		Home: entities.HomeLocation{Building: homeH, Cell: roads.Node{X: 10, Y: 11}},
		Work: &entities.WorkLocation{Building: workH, Cell: roads.Node{X: 20, Y: 11}},
		Position: entities.Position{X: 10, Y: 11},
		Needs:    entities.Needs{Hunger: 80, Energy: 80, Social: 80, Fun: 80, Comfort: 80},
	}
	c.Store.SpawnCitizen(cit)
	return c
}

func TestCityStepAdvancesTickAndRunsWithoutPanicking(t *testing.T) {
	c := newTestCity()
	const ticks = config.TicksPerGameDay
	for i := uint64(1); i <= ticks; i++ {
		c.Step(i)
	}
	if c.Tick != ticks {
		t.Fatalf("Tick = %d, want %d", c.Tick, ticks)
	}
	if c.Stats.Population != 1 {
		t.Errorf("Population = %d, want 1", c.Stats.Population)
	}
}

func TestPostLoadResetsCommutingCitizens(t *testing.T) {
	c := newTestCity()
	h := c.Store.SortedCitizenHandles()[0]
	cit, _ := c.Store.Citizen(h)
	cit.State = entities.CommutingToWork
	cit.Path.Waypoints = []roads.Node{{X: 1, Y: 1}}

	c.PostLoad()

	if cit.State != entities.AtHome {
		t.Errorf("State = %v, want AtHome after PostLoad", cit.State)
	}
	if len(cit.Path.Waypoints) != 0 {
		t.Errorf("Path should be cleared by PostLoad")
	}
	if !c.Coverage.Dirty {
		t.Errorf("Coverage should be marked dirty by PostLoad")
	}
}

func TestServiceCoverageAtIsZeroWithNoServiceBuildings(t *testing.T) {
	c := newTestCity()
	if got := c.serviceCoverageAt(10, 11); got != 0 {
		t.Errorf("serviceCoverageAt = %v, want 0 (no service buildings placed)", got)
	}
}

func TestCitySaveLoadRoundTrip(t *testing.T) {
	c := newTestCity()
	for i := uint64(1); i <= 10; i++ {
		c.Step(i)
	}
	c.Chains.SetStock(production.IronOre, 42)
	c.Climate.CO2Tonnes = 1234

	d, err := c.ToSaveData()
	if err != nil {
		t.Fatalf("ToSaveData: %v", err)
	}
	data, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := save.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	loaded, err := LoadCity(decoded)
	if err != nil {
		t.Fatalf("LoadCity: %v", err)
	}
	if loaded.Tick != c.Tick {
		t.Errorf("Tick = %d, want %d", loaded.Tick, c.Tick)
	}
	if loaded.Store.BuildingCount() != c.Store.BuildingCount() {
		t.Errorf("BuildingCount = %d, want %d", loaded.Store.BuildingCount(), c.Store.BuildingCount())
	}
	if loaded.Chains.Stock(production.IronOre) != 42 {
		t.Errorf("IronOre stock = %v, want 42", loaded.Chains.Stock(production.IronOre))
	}
	if loaded.Climate.CO2Tonnes != 1234 {
		t.Errorf("CO2Tonnes = %v, want 1234", loaded.Climate.CO2Tonnes)
	}
	if len(loaded.Net.Segments) != len(c.Net.Segments) {
		t.Errorf("Segments = %d, want %d", len(loaded.Net.Segments), len(c.Net.Segments))
	}
}

func TestSimTimeFormatsDayAndClock(t *testing.T) {
	got := SimTime(1500)
	want := "Day 2, 01:00"
	if got != want {
		t.Errorf("SimTime(1500) = %q, want %q", got, want)
	}
}
