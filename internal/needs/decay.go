// Package needs evaluates citizen need decay/restoration, aggregates
// happiness, and computes service/utility coverage via BFS from service
// buildings. See design doc Section 4.5.
package needs

import "github.com/talgya/citycore/internal/entities"

// DecayRates are the per-interval drain amounts applied while a need is not
// being actively restored by the citizen's current state.
type DecayRates struct {
	Hunger  float64
	Energy  float64
	Social  float64
	Fun     float64
	Comfort float64
}

// DefaultDecayRates are applied every needs-update interval.
var DefaultDecayRates = DecayRates{Hunger: 2, Energy: 1.5, Social: 1, Fun: 1.2, Comfort: 0.5}

// RestoreRates are the per-interval amounts a given state restores.
type RestoreRates struct {
	Hunger, Energy, Social, Fun, Comfort float64
}

func restoreFor(state entities.CitizenState, night bool) RestoreRates {
	switch state {
	case entities.AtHome:
		if night {
			return RestoreRates{Hunger: 6, Energy: 10}
		}
		return RestoreRates{Hunger: 3, Energy: 4}
	case entities.Shopping:
		return RestoreRates{Hunger: 8, Fun: 4}
	case entities.AtLeisure:
		return RestoreRates{Fun: 8, Social: 5}
	case entities.Working:
		return RestoreRates{Social: 1, Fun: -2}
	case entities.AtSchool:
		return RestoreRates{Social: 3}
	default:
		return RestoreRates{}
	}
}

// Update applies one interval's worth of decay and state-driven restoration
// to a citizen's needs. night indicates whether the current tick falls in
// the nighttime window (AtHome restores more at night).
func Update(c *entities.Citizen, night bool) {
	r := restoreFor(c.State, night)
	c.Needs.Hunger = clamp(c.Needs.Hunger + r.Hunger - DefaultDecayRates.Hunger)
	c.Needs.Energy = clamp(c.Needs.Energy + r.Energy - DefaultDecayRates.Energy)
	c.Needs.Social = clamp(c.Needs.Social + r.Social - DefaultDecayRates.Social)
	c.Needs.Fun = clamp(c.Needs.Fun + r.Fun - DefaultDecayRates.Fun)
	c.Needs.Comfort = clamp(c.Needs.Comfort + r.Comfort - DefaultDecayRates.Comfort)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// UpdateComfort sets comfort from housing utility access with low-pass
// smoothing toward the target value, avoiding step changes when power/water
// toggles on or off.
func UpdateComfort(c *entities.Citizen, hasPower, hasWater bool, smoothing float64) {
	target := 40.0
	if hasPower {
		target += 20
	}
	if hasWater {
		target += 20
	}
	c.Needs.Comfort = clamp(c.Needs.Comfort + (target-c.Needs.Comfort)*smoothing)
}
