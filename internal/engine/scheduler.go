// Package engine drives the fixed-tick simulation loop and ties every
// subsystem together into the ordered FixedUpdate pass each tick runs.
// See design doc Section 3.4 and Section 8.2.
package engine

import (
	"log/slog"
	"time"

	"github.com/talgya/citycore/internal/config"
)

// Scheduler drives the simulation forward at a fixed tick rate, speed-scaled
// against real time. Grounded on the teacher's Engine (internal/engine/tick.go),
// generalized to read cadence from internal/config instead of its own
// hardcoded hour/day/week/season constants.
type Scheduler struct {
	Tick     uint64        // monotonic tick counter, never resets
	Speed    float64       // 0 = paused, 1 = real-time, up to config.MaxSpeed
	Interval time.Duration // base tick interval at speed=1
	Running  bool

	// OnTick runs the full FixedUpdate pass, every tick.
	OnTick func(tick uint64)
}

// NewScheduler creates a Scheduler at speed 1 using config.BaseTickInterval.
func NewScheduler() *Scheduler {
	return &Scheduler{
		Speed:    1.0,
		Interval: config.BaseTickInterval,
	}
}

// SetSpeed clamps a positive speed to [config.MinSpeed, config.MaxSpeed];
// a speed of 0 or below sets 0, which pauses the scheduler without stopping
// Run's loop.
func (s *Scheduler) SetSpeed(speed float64) {
	switch {
	case speed <= 0:
		s.Speed = 0
	case speed < config.MinSpeed:
		s.Speed = config.MinSpeed
	case speed > config.MaxSpeed:
		s.Speed = config.MaxSpeed
	default:
		s.Speed = speed
	}
}

// Run blocks, stepping the simulation at Interval/Speed real-time cadence
// until Stop is called.
func (s *Scheduler) Run() {
	s.Running = true
	slog.Info("scheduler started", "tick", s.Tick, "speed", s.Speed)

	for s.Running {
		if s.Speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		s.Step()

		elapsed := time.Since(start)
		target := time.Duration(float64(s.Interval) / s.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("scheduler stopped", "tick", s.Tick)
}

// Stop halts Run's loop after its current sleep.
func (s *Scheduler) Stop() {
	s.Running = false
}

// Step advances the tick counter by one and invokes OnTick, the single entry
// point into the FixedUpdate pass. Exposed directly so callers that don't
// want Run's real-time pacing (tests, headless batch runs, replay scrubbing)
// can drive ticks themselves.
func (s *Scheduler) Step() {
	s.Tick++
	if s.OnTick != nil {
		s.OnTick(s.Tick)
	}
}
