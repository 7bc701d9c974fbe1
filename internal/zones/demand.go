// Package zones drives zone demand, building spawn/upgrade/downgrade, and
// citizen lifecycle (immigration, emigration, aging, death, family graph
// maintenance). Demand, building changes and deaths run on the slow-tick
// cadence; emigration runs every EmigrationInterval ticks and aging once per
// game-year. See design doc
// Section 4.6.
package zones

import (
	"github.com/talgya/citycore/internal/entities"
	"github.com/talgya/citycore/internal/worldgrid"
)

// Class groups the zone types demand is tracked per.
type Class uint8

const (
	ClassResidential Class = iota
	ClassCommercial
	ClassIndustrial
	ClassOffice
	classCount
)

func classOf(z worldgrid.ZoneType) (Class, bool) {
	switch {
	case z.IsResidential():
		return ClassResidential, true
	case z.IsCommercial():
		return ClassCommercial, true
	case z == worldgrid.Industrial:
		return ClassIndustrial, true
	case z == worldgrid.Office:
		return ClassOffice, true
	default:
		return 0, false
	}
}

// Demand holds the live, smoothed demand signal per zone class, in [-1,1].
type Demand struct {
	Live [classCount]float64
}

// DampingFactor controls how quickly live demand chases its target each
// slow tick.
const DampingFactor = 0.15

// Vacancy returns (vacant capacity, total capacity) across every building of
// class c.
func Vacancy(store *entities.Store, c Class) (vacant, total uint16) {
	for _, h := range store.SortedBuildingHandles() {
		b, _ := store.Building(h)
		cls, ok := classOf(b.Zone)
		if !ok || cls != c {
			continue
		}
		total += b.Capacity
		if b.Occupants < b.Capacity {
			vacant += b.Capacity - b.Occupants
		}
	}
	return vacant, total
}

// target computes the desired demand for class c from vacancy, job supply,
// and population, in [-1,1]: a fully vacant class has low demand, a fully
// occupied, high-job-supply class has high demand.
func target(c Class, vacant, total uint16, jobSupply, population uint32) float64 {
	if total == 0 {
		return 0.3 // no supply yet: mild positive demand to seed growth
	}
	occupancyRatio := 1 - float64(vacant)/float64(total)
	pressure := occupancyRatio*2 - 1 // -1 (empty) .. +1 (full)

	switch c {
	case ClassResidential:
		if jobSupply > population {
			pressure += 0.2
		}
	case ClassCommercial, ClassOffice:
		if population > 0 && float64(jobSupply)/float64(population) < 0.8 {
			pressure += 0.2
		}
	case ClassIndustrial:
		// Industrial demand tracks raw occupancy pressure unmodified.
	}

	if pressure > 1 {
		pressure = 1
	}
	if pressure < -1 {
		pressure = -1
	}
	return pressure
}

// Update recomputes demand targets from current occupancy and smooths live
// demand toward them with DampingFactor. Runs on the slow tick.
func Update(d *Demand, store *entities.Store, jobSupply, population uint32) {
	for c := Class(0); c < classCount; c++ {
		vacant, total := Vacancy(store, c)
		t := target(c, vacant, total, jobSupply, population)
		d.Live[c] += (t - d.Live[c]) * DampingFactor
	}
}
