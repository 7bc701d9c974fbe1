// Package actions defines the single-pipe mutation path shared by player
// input, agent commands, and replay playback: every city mutation is a
// GameAction pushed onto an ActionQueue tagged with its source, drained and
// applied by an Executor at the start of the Simulation phase, with results
// appended to a fixed-size ActionResultLog. Grounded on the teacher's flat,
// discriminated JSON request structs (internal/api/server.go's
// handleIntervention) generalized into a queued, replayable action type.
package actions

import "github.com/talgya/citycore/internal/worldgrid"

// Source identifies who originated a queued action.
type Source uint8

const (
	SourcePlayer Source = iota
	SourceAgent
	SourceReplay
)

func (s Source) String() string {
	switch s {
	case SourcePlayer:
		return "player"
	case SourceAgent:
		return "agent"
	case SourceReplay:
		return "replay"
	default:
		return "unknown"
	}
}

// Kind discriminates which GameAction variant is populated.
type Kind uint8

const (
	KindPlaceRoadLine Kind = iota
	KindZoneRect
	KindPlaceUtility
	KindBulldoze
	KindSetPaused
	KindSetSpeed
	KindTogglePolicy
	KindTakeLoan
	KindPlaceRoundabout
)

// UtilityType enumerates the placeable utility buildings.
type UtilityType uint8

const (
	UtilityPowerPlant UtilityType = iota
	UtilityWaterTower
	UtilityWaterTreatment
)

// GameAction is a flat, tagged union: exactly the fields relevant to Kind
// are populated, mirroring the wire protocol's
// `{"PlaceUtility":{"pos":[x,y],...}}` shape but kept as a plain struct so
// it can be queued, replayed, and diffed without a parser per variant.
type GameAction struct {
	Kind Kind

	// PlaceRoadLine
	Start, End Point
	RoadType   worldgrid.RoadType

	// ZoneRect
	Min, Max Point
	ZoneType worldgrid.ZoneType

	// PlaceUtility / Bulldoze
	Pos         Point
	UtilityType UtilityType

	// SetPaused
	Paused bool

	// SetSpeed
	Speed uint8

	// TogglePolicy
	PolicyField string

	// TakeLoan
	Principal  int64
	TermMonths int

	// PlaceRoundabout: Pos is the ring centre, Radius its Chebyshev radius.
	// Registers the already-placed road cells at that radius as a
	// yield-on-entry ring; it does not lay new road.
	Radius int
}

// Point is a grid coordinate, kept local to this package so GameAction
// stays a leaf type any package can construct without pulling in the road
// graph.
type Point struct {
	X, Y int
}

// QueuedAction is one pending mutation with its tick and origin.
type QueuedAction struct {
	Tick   uint64
	Source Source
	Action GameAction
}

// Queue holds pending actions in FIFO order. Replay sources are pushed the
// same as any other; the recorder is responsible for skipping them when
// building its log, not the queue.
type Queue struct {
	pending []QueuedAction
}

// Push appends a new action to the queue.
func (q *Queue) Push(tick uint64, source Source, action GameAction) {
	q.pending = append(q.pending, QueuedAction{Tick: tick, Source: source, Action: action})
}

// PushQueued appends an already-constructed QueuedAction (used by replay
// playback to reinsert entries at their recorded tick).
func (q *Queue) PushQueued(qa QueuedAction) {
	q.pending = append(q.pending, qa)
}

// Drain removes and returns all pending actions in FIFO order.
func (q *Queue) Drain() []QueuedAction {
	out := q.pending
	q.pending = nil
	return out
}

// Len returns the number of pending actions.
func (q *Queue) Len() int { return len(q.pending) }

// IsEmpty reports whether the queue has no pending actions.
func (q *Queue) IsEmpty() bool { return len(q.pending) == 0 }
