package movement

import (
	"github.com/talgya/citycore/internal/config"
	"github.com/talgya/citycore/internal/entities"
	"github.com/talgya/citycore/internal/roads"
)

// Destinations resolves citywide destinations that aren't fixed components
// on the citizen itself (shop, leisure venue, school), decoupling movement
// from the zones/services package that owns building placement.
type Destinations interface {
	NearestShop(from roads.Node) (entities.BuildingHandle, roads.Node, bool)
	NearestLeisure(from roads.Node) (entities.BuildingHandle, roads.Node, bool)
	NearestSchool(from roads.Node) (entities.BuildingHandle, roads.Node, bool)
}

// morningStart and morningEnd bound the fraction of a sim-day, starting at
// dawn, during which AtHome citizens plan their work commute.
const (
	morningStart = 0.25 // 06:00 on a 24h day mapped to [0,1)
	morningEnd   = 0.40 // 09:36
	nightStart   = 0.85
)

func timeOfDay(tick uint64) float64 {
	return float64(tick%config.TicksPerGameDay) / float64(config.TicksPerGameDay)
}

func inMorningCommuteWindow(tick uint64) bool {
	t := timeOfDay(tick)
	return t >= morningStart && t < morningEnd
}

func isNight(tick uint64) bool {
	t := timeOfDay(tick)
	return t >= nightStart || t < 0.10
}

// Decide evaluates the citizen's current state and chooses the next state
// plus, when a transition to a commuting state occurs, the planning
// destination to hand to Plan. It never mutates c; the caller applies the
// returned transition.
//
// Transition table (see design doc Section 4.2):
//   - AtHome: morning commute window + employed -> CommutingToWork;
//     low hunger/fun with a reachable shop -> CommutingToShop; else idle.
//   - CommutingToWork/CommutingHome/CommutingToShop/CommutingToLeisure/
//     CommutingToSchool: advance along PathCache, handled by Step, not here.
//   - Working: end of shift -> CommutingHome.
//   - Shopping/AtLeisure/AtSchool: bounded by ActivityTimer, handled by Step.
func Decide(tick uint64, c *entities.Citizen, dest Destinations) (next entities.CitizenState, planTo *roads.Node, planBuilding entities.BuildingHandle) {
	switch c.State {
	case entities.AtHome:
		if inMorningCommuteWindow(tick) && c.Work != nil {
			cell := c.Work.Cell
			return entities.CommutingToWork, &cell, c.Work.Building
		}
		if (c.Needs.Hunger < 35 || c.Needs.Fun < 35) && dest != nil {
			if bh, cell, ok := dest.NearestShop(c.Home.Cell); ok {
				return entities.CommutingToShop, &cell, bh
			}
		}
		return entities.AtHome, nil, 0
	case entities.Working:
		if !isNight(tick) && timeOfDay(tick) < 0.70 {
			return entities.Working, nil, 0
		}
		cell := c.Home.Cell
		return entities.CommutingHome, &cell, c.Home.Building
	default:
		return c.State, nil, 0
	}
}
