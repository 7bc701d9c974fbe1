// Package config holds the tunable constants shared by every simulation
// subsystem — grid dimensions, tick cadences, and the few physical constants
// (BPR parameters, capacity tables) that several packages would otherwise
// each hardcode separately.
package config

import "time"

// Grid dimensions. The world is a single flat Cell array, width*height long,
// indexed y*Width+x.
const (
	GridWidth  = 256
	GridHeight = 256
	CellSize   = 8.0 // world units per cell edge, used by road rasterisation
)

// Tick cadence. One fixed tick equals one sim-minute of GameClock time.
const (
	BaseTickInterval = 100 * time.Millisecond // real-time period at speed=1
	MinSpeed         = 0.25
	MaxSpeed         = 16.0

	SlowTickInterval = 100 // fixed ticks between slow-tick system runs

	TrafficClearInterval = 5  // ticks between traffic density resets
	TrafficLOSInterval   = 10 // ticks between LOS recomputation
	HappinessInterval    = 20 // ticks between happiness recomputation
	DemandAggInterval    = 4  // ticks between energy/water demand aggregation

	TicksPerGameDay = 1440 // 24h * 60m, mirrors one full GameClock day

	DaysPerGameYear = 365 // days between yearly passes (aging, climate accumulation)
)

// BPR (Bureau of Public Roads) congestion function parameters.
const (
	BPRAlpha = 0.15
	BPRBeta  = 4.0
)

// Action result log capacity.
const ActionResultLogCapacity = 64

// Replay / save.
const (
	CurrentSaveVersion  = 1
	ReplayFormatVersion = 1
)

// MaxUpgradesPerSlowTick caps how many buildings can upgrade in a single
// slow-tick pass, bounding worst-case tick cost.
const MaxUpgradesPerSlowTick = 50

// JobMatchingCap bounds how many citizens the employment-matching pass will
// process in a single slow tick.
const JobMatchingCap = 200

// MaxHistory bounds the length of in-memory rolling series (LOS history,
// demand history) kept for the observation snapshot and telemetry layer.
const MaxHistory = 200
