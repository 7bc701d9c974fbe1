package needs

import (
	"testing"

	"github.com/talgya/citycore/internal/entities"
	"github.com/talgya/citycore/internal/roads"
	"github.com/talgya/citycore/internal/worldgrid"
)

func TestUpdateAtHomeRestoresMoreAtNight(t *testing.T) {
	day := &entities.Citizen{State: entities.AtHome}
	night := &entities.Citizen{State: entities.AtHome}

	Update(day, false)
	Update(night, true)

	if night.Needs.Energy <= day.Needs.Energy {
		t.Fatalf("expected night AtHome to restore more energy: night=%f day=%f", night.Needs.Energy, day.Needs.Energy)
	}
}

func TestUpdateWorkingDrainsFun(t *testing.T) {
	c := &entities.Citizen{State: entities.Working, Needs: entities.Needs{Fun: 50}}
	Update(c, false)
	if c.Needs.Fun >= 50 {
		t.Fatalf("expected Working to drain fun, got %f", c.Needs.Fun)
	}
}

func TestHappinessClamped(t *testing.T) {
	c := &entities.Citizen{Needs: entities.Needs{}, Details: entities.Details{Health: 0}}
	score := Compute(c, HappinessInputs{Pollution: 1, Noise: 1, NIMBYOpposition: 1})
	if score < 0 || score > 100 {
		t.Fatalf("expected happiness in [0,100], got %f", score)
	}
}

func TestCoverageRecomputeBFSRespectsWater(t *testing.T) {
	grid := worldgrid.New(20, 20)
	for y := 0; y < 20; y++ {
		grid.Set(5, y, worldgrid.Cell{CellType: worldgrid.Water})
	}
	cov := NewCoverageGrid(20, 20)
	cov.Recompute(grid, []ServiceBuilding{{Kind: Fire, Origin: roads.Node{X: 0, Y: 10}, Radius: 20}})

	if cov.At(Fire, 0, 10) != true {
		t.Fatal("expected origin covered")
	}
	if cov.At(Fire, 10, 10) {
		t.Fatal("expected coverage blocked by water column at x=5")
	}
}

func TestTelecomCoverageIgnoresWater(t *testing.T) {
	grid := worldgrid.New(20, 20)
	for y := 0; y < 20; y++ {
		grid.Set(5, y, worldgrid.Cell{CellType: worldgrid.Water})
	}
	cov := NewCoverageGrid(20, 20)
	cov.Recompute(grid, []ServiceBuilding{{Kind: Telecom, Origin: roads.Node{X: 0, Y: 10}, Radius: 20}})

	if !cov.At(Telecom, 10, 10) {
		t.Fatal("expected telecom coverage to pass through water")
	}
}
