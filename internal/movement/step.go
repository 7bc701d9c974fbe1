package movement

import (
	"math"

	"github.com/talgya/citycore/internal/csrgraph"
	"github.com/talgya/citycore/internal/entities"
	"github.com/talgya/citycore/internal/roads"
	"github.com/talgya/citycore/internal/traffic"
	"github.com/talgya/citycore/internal/worldgrid"
)

// World bundles the read-only state movement needs to plan and advance
// paths: the grid (for road adjacency/nearest-node lookup), the CSR graph
// (for A*), and the live traffic grid (for BPR edge costs).
type World struct {
	Grid    *worldgrid.Grid
	Graph   *csrgraph.Graph
	Traffic *traffic.Grid
	Net     *roads.Network
}

// Plan computes a fresh traffic-aware path from the citizen's current
// position to destCell and loads it into the path cache, pointing velocity
// at the first waypoint. If no path is found, the citizen falls back to
// AtHome with a planning cooldown recorded on its ActivityTimer.
func Plan(w *World, c *entities.Citizen, destCell roads.Node, next entities.CitizenState) {
	fromNode, ok1 := w.Net.NearestRoadNode(int(c.Position.X), int(c.Position.Y))
	toNode, ok2 := w.Net.NearestRoadNode(destCell.X, destCell.Y)
	if !ok1 || !ok2 {
		c.State = entities.AtHome
		c.Activity = entities.ActivityTimer{TicksRemaining: PathPlanCooldownTicks}
		return
	}

	path := csrgraph.FindPathWithTraffic(w.Graph, fromNode, toNode, w.Grid, w.Traffic)
	if path == nil {
		c.State = entities.AtHome
		c.Activity = entities.ActivityTimer{TicksRemaining: PathPlanCooldownTicks}
		return
	}

	c.Path.Reset(path)
	c.State = next
	pointVelocityAt(c, path[0])
}

func pointVelocityAt(c *entities.Citizen, target roads.Node) {
	dx := float64(target.X) - c.Position.X
	dy := float64(target.Y) - c.Position.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		c.Velocity = entities.Velocity{}
		return
	}
	c.Velocity = entities.Velocity{DX: dx / dist, DY: dy / dist}
}

// AdvanceSpeed is world units of travel per tick along the path cache.
const AdvanceSpeed = 1.0

// Advance moves a commuting citizen one tick along its path cache. When the
// final waypoint is reached within ArrivalToleranceCells, the citizen
// transitions to the commute's arrival state and the caller is responsible
// for starting any activity timer.
func Advance(c *entities.Citizen) {
	wp, ok := c.Path.Current()
	if !ok {
		c.State = arrivalState(c.State)
		c.Velocity = entities.Velocity{}
		return
	}

	dx := float64(wp.X) - c.Position.X
	dy := float64(wp.Y) - c.Position.Y
	dist := math.Hypot(dx, dy)

	if dist <= ArrivalToleranceCells {
		c.Position.X, c.Position.Y = float64(wp.X), float64(wp.Y)
		c.Path.Advance()
		if next, ok := c.Path.Current(); ok {
			pointVelocityAt(c, next)
		} else {
			c.State = arrivalState(c.State)
			c.Velocity = entities.Velocity{}
		}
		return
	}

	step := math.Min(AdvanceSpeed, dist)
	c.Position.X += dx / dist * step
	c.Position.Y += dy / dist * step
}

// Step advances one citizen by one tick: commuting citizens move along
// their path, activity-bound citizens count down their timer, AtHome/Working
// citizens are handled by Decide+Plan upstream. Returns true if the citizen
// just arrived (state transitioned out of a commuting state this tick).
func Step(c *entities.Citizen) (arrived bool) {
	if isCommuting(c.State) {
		before := c.State
		Advance(c)
		return c.State != before
	}
	if isActivity(c.State) {
		if c.Activity.TicksRemaining > 0 {
			c.Activity.TicksRemaining--
		}
		if c.Activity.Expired() {
			c.State = entities.CommutingHome
		}
	}
	return false
}
