// Package simrand provides deterministic, reproducible randomness for the
// simulation. Every draw is a pure function of (tick, subsystem_id,
// entity_index): given the same tick, the same subsystem, and the same
// entity, two runs always produce the same value. This is the replacement
// for a network-sourced entropy pool, which cannot satisfy the replay
// determinism contract. See design doc Section 4.1, Section 5, Section 8.
package simrand

import "math/rand/v2"

// SubsystemID tags which subsystem is drawing randomness, so two subsystems
// consuming the same (tick, entity_index) never derive the same seed.
type SubsystemID uint32

const (
	SubsystemLifecycle SubsystemID = iota
	SubsystemZoneDemand
	SubsystemBuildingDowngrade
	SubsystemImmigration
	SubsystemFire
	SubsystemWeather
	SubsystemCrime
	SubsystemDisaster
	SubsystemActivityChoice
)

// Source draws a deterministic float64 in [0,1) for a given tick,
// subsystem, and entity index. It holds no mutable state between draws —
// each call derives a fresh seed and constructs its own generator, so draws
// are safe to make concurrently and never depend on call order.
type Source struct {
	runSeed uint64
}

// NewSource creates a Source rooted at runSeed, the city's save-level seed.
// Two Sources created from the same runSeed always agree on every draw.
func NewSource(runSeed uint64) *Source {
	return &Source{runSeed: runSeed}
}

// seed64 mixes the run seed with the draw coordinates using SplitMix64,
// giving good avalanche behavior from small, correlated inputs like
// successive ticks or entity indices.
func (s *Source) seed64(tick uint64, subsystem SubsystemID, entityIndex uint64) uint64 {
	z := s.runSeed
	z = splitmix(z ^ tick)
	z = splitmix(z ^ uint64(subsystem)<<32)
	z = splitmix(z ^ entityIndex)
	return z
}

func splitmix(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

func (s *Source) gen(tick uint64, subsystem SubsystemID, entityIndex uint64) *rand.Rand {
	seed := s.seed64(tick, subsystem, entityIndex)
	return rand.New(rand.NewPCG(seed, seed^0xA5A5A5A5A5A5A5A5))
}

// Float returns a deterministic float64 in [0,1) for (tick, subsystem, entityIndex).
func (s *Source) Float(tick uint64, subsystem SubsystemID, entityIndex uint64) float64 {
	return s.gen(tick, subsystem, entityIndex).Float64()
}

// Bool returns a deterministic boolean draw that succeeds with probability p.
func (s *Source) Bool(tick uint64, subsystem SubsystemID, entityIndex uint64, p float64) bool {
	return s.Float(tick, subsystem, entityIndex) < p
}

// IntN returns a deterministic integer draw in [0, n).
func (s *Source) IntN(tick uint64, subsystem SubsystemID, entityIndex uint64, n int) int {
	if n <= 0 {
		return 0
	}
	return s.gen(tick, subsystem, entityIndex).IntN(n)
}
