// Package movement drives the citizen commute state machine: deciding when
// to travel, planning traffic-aware paths, advancing along the path cache,
// and transitioning between activity states on arrival or timer expiry.
// See design doc Section 4.2.
package movement

import (
	"github.com/talgya/citycore/internal/entities"
)

// ArrivalToleranceCells is how close a citizen's position must be to its
// current waypoint to count as having reached it.
const ArrivalToleranceCells = 1.0

// PathPlanCooldownTicks is loaded into the ActivityTimer of a citizen whose
// Plan finds no path. Decide does not read that timer and Step does not
// count it down for AtHome citizens, so it does not delay the next planning
// attempt.
const PathPlanCooldownTicks = 20

// arrivalState returns the activity state a citizen enters once a commuting
// state's path completes.
func arrivalState(s entities.CitizenState) entities.CitizenState {
	switch s {
	case entities.CommutingToWork:
		return entities.Working
	case entities.CommutingHome:
		return entities.AtHome
	case entities.CommutingToShop:
		return entities.Shopping
	case entities.CommutingToLeisure:
		return entities.AtLeisure
	case entities.CommutingToSchool:
		return entities.AtSchool
	default:
		return s
	}
}

// isCommuting reports whether s is one of the path-advancing commute states.
func isCommuting(s entities.CitizenState) bool {
	switch s {
	case entities.CommutingToWork, entities.CommutingHome, entities.CommutingToShop, entities.CommutingToLeisure, entities.CommutingToSchool:
		return true
	default:
		return false
	}
}

// isActivity reports whether s is a stationary, timer-bounded activity.
func isActivity(s entities.CitizenState) bool {
	switch s {
	case entities.Shopping, entities.AtLeisure, entities.AtSchool:
		return true
	default:
		return false
	}
}
