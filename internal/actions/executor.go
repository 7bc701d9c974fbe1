package actions

import (
	"github.com/talgya/citycore/internal/econz"
	"github.com/talgya/citycore/internal/entities"
	"github.com/talgya/citycore/internal/roads"
	"github.com/talgya/citycore/internal/traffic"
	"github.com/talgya/citycore/internal/worldgrid"
)

// Cost constants for validated actions. Road pricing is per-cell but keyed
// off RoadType.Cost() rather than a flat rate, since the four road tiers
// price very differently; zoning and utility placement stay flat. Richer
// cost modeling (land value, terrain) belongs to the systems that own those
// grids, not the gate that admits actions into the simulation.
const (
	ZoneCostPerCell      = 10.0
	UtilityPlacementCost = 5000.0
)

// World bundles the mutable state an Executor needs to validate and apply
// actions, mirroring movement.World's "just the pointers this subsystem
// touches" shape.
type World struct {
	Grid        *worldgrid.Grid
	Net         *roads.Network
	Store       *entities.Store
	Budget      *econz.Budget
	Policies    *econz.Policies
	Roundabouts *traffic.Registry
}

// Executor drains an action queue at the start of each Simulation phase,
// validates and applies each action in order, and appends (action, result)
// pairs to a ResultLog.
type Executor struct {
	Log ResultLog
}

// Run drains queue, applies every action against w, and logs the outcome.
func (ex *Executor) Run(w *World, queue *Queue) {
	for _, qa := range queue.Drain() {
		result := ex.apply(w, qa.Action)
		ex.Log.Push(qa.Action, result)
	}
}

func (ex *Executor) apply(w *World, a GameAction) Result {
	switch a.Kind {
	case KindPlaceRoadLine:
		return applyPlaceRoadLine(w, a)
	case KindZoneRect:
		return applyZoneRect(w, a)
	case KindPlaceUtility:
		return applyPlaceUtility(w, a)
	case KindBulldoze:
		return applyBulldoze(w, a)
	case KindSetPaused, KindSetSpeed:
		// Clock control has no spatial or budget validation to fail.
		return Ok("")
	case KindTogglePolicy:
		return applyTogglePolicy(w, a)
	case KindTakeLoan:
		return applyTakeLoan(w, a)
	case KindPlaceRoundabout:
		return applyPlaceRoundabout(w, a)
	default:
		return Fail(ErrNotSupported)
	}
}

func inBounds(w *World, p Point) bool {
	return w.Grid.InBounds(p.X, p.Y)
}

func applyPlaceRoadLine(w *World, a GameAction) Result {
	if !inBounds(w, a.Start) || !inBounds(w, a.End) {
		return Fail(ErrOutOfBounds)
	}
	seg := &roads.Segment{
		StartNode: roads.Node{X: a.Start.X, Y: a.Start.Y},
		EndNode:   roads.Node{X: a.End.X, Y: a.End.Y},
		P0:        roads.Point{X: float64(a.Start.X), Y: float64(a.Start.Y)},
		P1:        roads.Point{X: float64(a.Start.X), Y: float64(a.Start.Y)},
		P2:        roads.Point{X: float64(a.End.X), Y: float64(a.End.Y)},
		P3:        roads.Point{X: float64(a.End.X), Y: float64(a.End.Y)},
		RoadType:  a.RoadType,
	}

	length := manhattan(a.Start, a.End)
	cost := float64(length) * float64(a.RoadType.Cost())
	if w.Budget.Treasury < int64(cost) {
		return Fail(ErrInsufficientFunds)
	}

	w.Net.AddSegment(w.Grid, seg)
	w.Budget.Treasury -= int64(cost)
	return Ok("")
}

func manhattan(a, b Point) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

func applyZoneRect(w *World, a GameAction) Result {
	if !inBounds(w, a.Min) || !inBounds(w, a.Max) {
		return Fail(ErrOutOfBounds)
	}
	minX, maxX := a.Min.X, a.Max.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := a.Min.Y, a.Max.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}

	zoned := 0
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			cell := w.Grid.Get(x, y)
			if cell.CellType == worldgrid.Road || cell.CellType == worldgrid.Water {
				continue
			}
			if !nearRoad(w.Grid, w.Net, x, y) {
				continue
			}
			zoned++
		}
	}
	if zoned == 0 {
		return Fail(ErrNoCellsZoned)
	}

	cost := float64(zoned) * ZoneCostPerCell
	if w.Budget.Treasury < int64(cost) {
		return Fail(ErrInsufficientFunds)
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			cell := w.Grid.Get(x, y)
			if cell.CellType == worldgrid.Road || cell.CellType == worldgrid.Water {
				continue
			}
			if !nearRoad(w.Grid, w.Net, x, y) {
				continue
			}
			w.Grid.Mutate(x, y, func(c *worldgrid.Cell) {
				c.Zone = a.ZoneType
			})
		}
	}
	w.Budget.Treasury -= int64(cost)
	return Ok("")
}

// nearRoad reports whether any cell within Chebyshev distance 1 is a road,
// matching the spec's "zoning a rect far from any road" rejection rule at
// per-cell granularity.
func nearRoad(grid *worldgrid.Grid, net *roads.Network, x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			c := grid.Get(x+dx, y+dy)
			if c.CellType == worldgrid.Road {
				return true
			}
		}
	}
	return false
}

func applyPlaceUtility(w *World, a GameAction) Result {
	if !inBounds(w, a.Pos) {
		return Fail(ErrOutOfBounds)
	}
	cell := w.Grid.Get(a.Pos.X, a.Pos.Y)
	if cell.CellType == worldgrid.Road {
		return Fail(ErrBlockedByRoad)
	}
	if cell.BuildingID != 0 {
		return Fail(ErrInvalidParameter)
	}
	if w.Budget.Treasury < int64(UtilityPlacementCost) {
		return Fail(ErrInsufficientFunds)
	}

	switch a.UtilityType {
	case UtilityPowerPlant:
		w.Grid.Mutate(a.Pos.X, a.Pos.Y, func(c *worldgrid.Cell) { c.HasPower = true })
	case UtilityWaterTower, UtilityWaterTreatment:
		w.Grid.Mutate(a.Pos.X, a.Pos.Y, func(c *worldgrid.Cell) { c.HasWater = true })
	default:
		return FailParam("utility_type")
	}

	w.Budget.Treasury -= int64(UtilityPlacementCost)
	return Ok("")
}

func applyBulldoze(w *World, a GameAction) Result {
	if !inBounds(w, a.Pos) {
		return Fail(ErrOutOfBounds)
	}
	cell := w.Grid.Get(a.Pos.X, a.Pos.Y)
	if cell.BuildingID == 0 {
		if cell.CellType == worldgrid.Road {
			return applyBulldozeRoad(w, a.Pos)
		}
		return Fail(ErrInvalidParameter)
	}

	handle := entities.BuildingHandle(cell.BuildingID)
	b, ok := w.Store.Building(handle)
	if !ok {
		return Fail(ErrInvalidParameter)
	}

	for _, n := range b.Footprint() {
		w.Grid.Mutate(n.X, n.Y, func(c *worldgrid.Cell) { c.BuildingID = 0 })
	}
	w.Store.RemoveBuilding(handle)

	refund := int64(ZoneCostPerCell * float64(b.Width*b.Height) * worldgrid.BulldozeRefundFraction)
	w.Budget.Treasury += refund
	return Ok("")
}

// applyBulldozeRoad removes the road segment covering pos and refunds
// BulldozeRefundFraction of the road type's per-cell cost for each of the
// segment's rasterized cells, the same fraction the building bulldoze uses.
func applyBulldozeRoad(w *World, pos Point) Result {
	id, ok := w.Net.SegmentAt(pos.X, pos.Y)
	if !ok {
		return Fail(ErrInvalidParameter)
	}
	seg, ok := w.Net.Segments[id]
	if !ok {
		return Fail(ErrInvalidParameter)
	}
	cellCount := len(seg.RasterizedCells)
	roadType := seg.RoadType

	w.Net.RemoveSegment(w.Grid, id)

	refund := int64(float64(roadType.Cost()) * float64(cellCount) * worldgrid.BulldozeRefundFraction)
	w.Budget.Treasury += refund
	return Ok("")
}

// applyPlaceRoundabout registers the road cells forming the Chebyshev ring
// of radius a.Radius around a.Pos as a yield-on-entry roundabout. It lays no
// road of its own — the ring must already exist — so it only succeeds if at
// least one road cell sits on that ring.
func applyPlaceRoundabout(w *World, a GameAction) Result {
	if !inBounds(w, a.Pos) {
		return Fail(ErrOutOfBounds)
	}
	if a.Radius <= 0 {
		return FailParam("radius")
	}

	var ring []roads.Node
	for dy := -a.Radius; dy <= a.Radius; dy++ {
		for dx := -a.Radius; dx <= a.Radius; dx++ {
			if abs(dx) != a.Radius && abs(dy) != a.Radius {
				continue // interior of the bounding square, not its ring
			}
			x, y := a.Pos.X+dx, a.Pos.Y+dy
			if !w.Grid.InBounds(x, y) {
				continue
			}
			if w.Grid.Get(x, y).CellType == worldgrid.Road {
				ring = append(ring, roads.Node{X: x, Y: y})
			}
		}
	}
	if len(ring) == 0 {
		return Fail(ErrInvalidParameter)
	}

	w.Roundabouts.Sites = append(w.Roundabouts.Sites, traffic.Roundabout{
		ID:        uint32(len(w.Roundabouts.Sites) + 1),
		RingCells: ring,
	})
	return Ok("")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func applyTogglePolicy(w *World, a GameAction) Result {
	switch a.PolicyField {
	case "free_parking_ban":
		w.Policies.Toggle(econz.FieldFreeParkingBan)
	case "curfew":
		w.Policies.Toggle(econz.FieldCurfewEnforced)
	case "green_building_codes":
		w.Policies.Toggle(econz.FieldGreenBuildingCodes)
	default:
		return FailParam("policy_field")
	}
	return Ok("")
}

func applyTakeLoan(w *World, a GameAction) Result {
	if a.Principal <= 0 || a.TermMonths <= 0 {
		return FailParam("principal_or_term")
	}
	w.Budget.TakeLoan(a.Principal, a.TermMonths)
	return Ok("")
}
