package engine

import (
	"fmt"

	"github.com/talgya/citycore/internal/actions"
	"github.com/talgya/citycore/internal/config"
	"github.com/talgya/citycore/internal/csrgraph"
	"github.com/talgya/citycore/internal/econz"
	"github.com/talgya/citycore/internal/entities"
	"github.com/talgya/citycore/internal/movement"
	"github.com/talgya/citycore/internal/needs"
	"github.com/talgya/citycore/internal/production"
	"github.com/talgya/citycore/internal/propagators"
	"github.com/talgya/citycore/internal/roads"
	"github.com/talgya/citycore/internal/traffic"
	"github.com/talgya/citycore/internal/utilities"
	"github.com/talgya/citycore/internal/weather"
	"github.com/talgya/citycore/internal/worldgrid"
	"github.com/talgya/citycore/internal/zones"
)

const (
	monthlyBudgetTickInterval = config.TicksPerGameDay * 30
	maxSpawnCandidatesPerPass = 24
)

// Step runs one fixed tick of the three-phase FixedUpdate pass: PreSim
// (clock advance and action application), Simulation (movement, traffic,
// propagators, needs/happiness, economy, zone lifecycle, weather,
// production, utilities, in the order later phases depend on), and PostSim
// (aggregate stats, events). Grounded on the teacher's
// Simulation.TickMinute/TickHour/TickDay cascade, collapsed into a single
// ordered pass instead of layered callbacks since every system here runs on
// a tick-modulo cadence rather than a fixed hour/day/week hierarchy.
func (c *City) Step(tick uint64) {
	c.preSim(tick)
	c.simulate(tick)
	c.postSim(tick)
}

func (c *City) preSim(tick uint64) {
	c.Tick = tick
	if c.Net.Changed() {
		c.Net.Rebuild()
		c.Graph = csrgraph.Build(c.Net)
		c.applyRoundaboutWeights()
		c.Net.ClearChanged()
	}

	drained := c.Queue.Drain()
	c.Recorder.RecordQueued(tick, drained)
	pending := &actions.Queue{}
	for _, qa := range drained {
		pending.PushQueued(qa)
	}
	aw := &actions.World{Grid: c.Grid, Net: c.Net, Store: c.Store, Budget: c.Budget, Policies: c.Policies, Roundabouts: c.Roundabouts}
	c.Executor.Run(aw, pending)
}

// applyRoundaboutWeights re-scales the CSR graph's ring-entry edges for
// every registered roundabout, using current traffic density as the
// yield-on-entry penalty. Runs whenever the graph is rebuilt, since a fresh
// Build resets every edge weight to 1.
func (c *City) applyRoundaboutWeights() {
	if len(c.Roundabouts.Sites) == 0 {
		return
	}
	ringCells := c.Roundabouts.RingCellSet()
	density := make(map[roads.Node]uint16, len(ringCells))
	for cell := range ringCells {
		density[cell] = c.Traffic.Get(cell.X, cell.Y)
	}
	c.Graph.ApplyRoundaboutWeights(ringCells, density)
}

func (c *City) simulate(tick uint64) {
	mw := &movement.World{Grid: c.Grid, Graph: c.Graph, Traffic: c.Traffic, Net: c.Net}
	dest := destinations{store: c.Store, grid: c.Grid}

	if tick%config.TrafficClearInterval == 0 {
		c.Traffic.Clear()
	}
	for _, h := range c.Store.SortedCitizenHandles() {
		cit, _ := c.Store.Citizen(h)
		next, planTo, _ := movement.Decide(tick, cit, dest)
		if next != cit.State {
			cit.State = next
			if planTo != nil {
				movement.Plan(mw, cit, *planTo, next)
			}
		}
		movement.Step(cit)

		if isCommuting(cit.State) {
			c.Traffic.Increment(int(cit.Position.X), int(cit.Position.Y))
		}
	}

	if tick%config.TrafficLOSInterval == 0 {
		roadTypeAt := func(x, y int) (uint8, float64) {
			rt := c.Grid.Get(x, y).RoadType
			return uint8(rt), rt.Capacity()
		}
		traffic.UpdateLOSFromGrid(c.Traffic, roadTypeAt, c.Net)
	}

	// Coverage and land value must be current before happiness/zone demand
	// read them later this tick.
	if c.Coverage.Dirty {
		c.Coverage.Recompute(c.Grid, c.serviceBuildings())
		c.Coverage.Dirty = false
	}
	c.recomputePropagators()

	if tick%config.HappinessInterval == 0 {
		c.updateNeedsAndHappiness(tick)
	}

	if tick%zones.EmigrationInterval == 0 {
		zones.EvaluateEmigration(c.Store, c.Rng, tick)
	}

	if tick%config.DemandAggInterval == 0 {
		c.dispatchUtilities(tick)
	}

	if tick%config.SlowTickInterval == 0 {
		c.slowTick(tick)
	}

	if tick%config.TicksPerGameDay == 0 {
		c.dailyTick(tick)
	}

	if tick%monthlyBudgetTickInterval == 0 {
		c.monthlyBudgetTick()
	}
}

func (c *City) postSim(tick uint64) {
	var happinessSum, needsSum float64
	handles := c.Store.SortedCitizenHandles()
	for _, h := range handles {
		cit, _ := c.Store.Citizen(h)
		happinessSum += cit.Details.Happiness
		needsSum += cit.Needs.Average()
	}
	n := float64(len(handles))
	if n > 0 {
		c.avgHappiness = happinessSum / n
		c.Stats.AvgHappiness = happinessSum / n
		c.Stats.AvgNeeds = needsSum / n
	} else {
		c.avgHappiness = 0
		c.Stats.AvgHappiness = 0
		c.Stats.AvgNeeds = 0
	}
	c.Stats.Population = uint32(len(handles))
	c.Stats.BuildingCount = c.Store.BuildingCount()
	c.Stats.Treasury = c.Budget.Treasury
	c.Stats.DisruptedChains = c.Chains.DisruptedCount
	c.Stats.PowerDeficit = c.Power.Deficit
	c.Stats.WaterDeficit = c.Water.Deficit

	if c.Power.Deficit {
		c.Events.Emit(Event{Tick: tick, Category: "utility", Description: "power demand exceeds supply"})
	}
	if c.Water.Deficit {
		c.Events.Emit(Event{Tick: tick, Category: "utility", Description: "water demand exceeds supply"})
	}
}

func isCommuting(s entities.CitizenState) bool {
	switch s {
	case entities.CommutingToWork, entities.CommutingHome, entities.CommutingToShop,
		entities.CommutingToLeisure, entities.CommutingToSchool:
		return true
	default:
		return false
	}
}

// serviceBuildings returns the catalog needs.CoverageGrid.Recompute floods
// from. No action kind exists yet to place a dedicated fire/police/school
// building distinct from a zoned building (see DESIGN.md), so this returns
// an empty catalog: coverage reads honestly as zero everywhere until that
// feature lands, rather than faked at full coverage.
func (c *City) serviceBuildings() []needs.ServiceBuilding {
	return nil
}

// recomputePropagators rebuilds pollution, noise, heat, land value, and
// crime from the cheapest real signal already on the grid: occupied
// industrial buildings emit pollution and noise, waterfront cells anchor
// land value (a genuine amenity already modeled, unlike the unbuilt service
// building catalog), and crime follows land value with no police stations
// registered yet. Land value runs before crime, both before zone demand and
// happiness read them downstream this same tick.
func (c *City) recomputePropagators() {
	var pollutionSources []propagators.PollutionSource
	var noiseSources []propagators.NoiseSource
	for _, h := range c.Store.SortedBuildingHandles() {
		b, _ := c.Store.Building(h)
		if !b.Occupiable() {
			continue
		}
		cell := roads.Node{X: b.X, Y: b.Y}
		switch {
		case b.Zone == worldgrid.Industrial:
			pollutionSources = append(pollutionSources, propagators.PollutionSource{
				Cell: cell, Q: 40 * float64(b.Level),
			})
			noiseSources = append(noiseSources, propagators.NoiseSource{
				Cell: cell, Level: 30 * float64(b.Level), Radius: 6,
			})
		case b.Zone.IsCommercial() || b.Zone == worldgrid.Office:
			noiseSources = append(noiseSources, propagators.NoiseSource{
				Cell: cell, Level: 12 * float64(b.Level), Radius: 3,
			})
		}
	}

	wind := propagators.Wind{DX: 1, DY: 0, Speed: c.Weather.WindSpeed}
	propagators.RecomputePollution(c.Pollution, pollutionSources, wind)
	propagators.RecomputeNoise(c.Noise, noiseSources)

	c.Heat.Recompute(c.Grid, func(int, int) bool { return false }, false)

	var valueSources []propagators.ValueSource
	for y := 0; y < c.Grid.Height; y++ {
		for x := 0; x < c.Grid.Width; x++ {
			cell := c.Grid.Get(x, y)
			if cell.CellType == worldgrid.Water {
				continue
			}
			if adjacentToWater(c.Grid, x, y) {
				valueSources = append(valueSources, propagators.ValueSource{
					Cell: roads.Node{X: x, Y: y}, Value: waterfrontValue, Radius: waterfrontRadius,
				})
			}
		}
	}
	c.LandValue.Recompute(c.Grid, valueSources)
	c.Crime.Recompute(c.LandValue, nil, 0)
}

func adjacentToWater(grid *worldgrid.Grid, x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if grid.InBounds(x+dx, y+dy) && grid.Get(x+dx, y+dy).CellType == worldgrid.Water {
				return true
			}
		}
	}
	return false
}

func (c *City) updateNeedsAndHappiness(tick uint64) {
	night := tick%config.TicksPerGameDay < config.TicksPerGameDay/5
	for _, h := range c.Store.SortedCitizenHandles() {
		cit, _ := c.Store.Citizen(h)
		needs.Update(cit, night)

		hasPower, hasWater := true, true
		if hb, ok := c.Store.Building(cit.Home.Building); ok {
			cell := c.Grid.Get(hb.X, hb.Y)
			hasPower, hasWater = cell.HasPower, cell.HasWater
		}
		needs.UpdateComfort(cit, hasPower, hasWater, 0.2)

		in := needs.HappinessInputs{
			ServiceCoverage: c.serviceCoverageAt(cit.Home.Cell.X, cit.Home.Cell.Y),
			HomeCongestion:  c.congestionAt(cit.Home.Cell.X, cit.Home.Cell.Y),
			Pollution:       float64(c.Pollution.At(cit.Home.Cell.X, cit.Home.Cell.Y)) / 255,
			Noise:           float64(c.Noise.At(cit.Home.Cell.X, cit.Home.Cell.Y)) / 255,
		}
		if hasPower {
			in.UtilityCoverage += 0.5
		}
		if hasWater {
			in.UtilityCoverage += 0.5
		}
		if cit.Work != nil {
			in.WorkCongestion = c.congestionAt(cit.Work.Cell.X, cit.Work.Cell.Y)
		}
		in.DensityFit = c.densityFitFor(cit)
		in.CommuteLength = commuteLengthOf(cit)
		cit.Details.Happiness = needs.Compute(cit, in)
	}
}

// maxCommuteWaypoints normalises PathCache length into [0,1]; a path this
// long or longer spans most of the grid's diagonal.
const maxCommuteWaypoints = config.GridWidth + config.GridHeight

// commuteLengthOf reports a citizen's current in-flight path length,
// normalised to [0,1]. Zero for citizens not currently travelling, which
// happiness treats as "no commute penalty" rather than "unknown".
func commuteLengthOf(cit *entities.Citizen) float64 {
	if !isCommuting(cit.State) {
		return 0
	}
	n := len(cit.Path.Waypoints)
	if n == 0 {
		return 0
	}
	fit := float64(n) / float64(maxCommuteWaypoints)
	if fit > 1 {
		fit = 1
	}
	return fit
}

// densityFitFor scores how a citizen's home occupancy matches the
// preference implied by its zone tier: ResidentialHigh residents are priced
// for space and penalized by crowding, ResidentialLow residents tolerate it.
// Returns -1..1, negative meaning overcrowded for that tier.
func (c *City) densityFitFor(cit *entities.Citizen) float64 {
	b, ok := c.Store.Building(cit.Home.Building)
	if !ok {
		return 0
	}
	occupancy := b.OccupancyRatio()
	if b.Zone == worldgrid.ResidentialHigh {
		return 1 - 2*occupancy
	}
	return 0.5 - occupancy
}

func (c *City) serviceCoverageAt(x, y int) float64 {
	kinds := []needs.ServiceKind{needs.Fire, needs.Police, needs.Health, needs.Education, needs.Parks}
	covered := 0
	for _, k := range kinds {
		if c.Coverage.At(k, x, y) {
			covered++
		}
	}
	return float64(covered) / float64(len(kinds))
}

func (c *City) congestionAt(x, y int) float64 {
	rt := c.Grid.Get(x, y).RoadType
	if rt == worldgrid.RoadNone {
		return 0
	}
	vc := c.Traffic.VCRatio(x, y, rt)
	if vc > 1 {
		vc = 1
	}
	return vc
}

func (c *City) dispatchUtilities(tick uint64) {
	hour := int((tick / (config.TicksPerGameDay / 24)) % 24)

	var plants []utilities.PowerPlant
	var sources []utilities.WaterSource
	var econsumers []utilities.EnergyConsumer
	var wconsumers []utilities.WaterConsumer

	for y := 0; y < c.Grid.Height; y++ {
		for x := 0; x < c.Grid.Width; x++ {
			cell := c.Grid.Get(x, y)
			if cell.HasPower {
				plants = append(plants, utilities.PowerPlant{
					Cell: roads.Node{X: x, Y: y}, Kind: utilities.PlantGas, CapacityKW: placedPlantCapacityKW,
				})
			}
			if cell.HasWater {
				sources = append(sources, utilities.WaterSource{
					Cell: roads.Node{X: x, Y: y}, Kind: utilities.SourceWell,
					CapacityMGD: placedWaterCapacityMGD, Quality: 1,
				})
			}
		}
	}
	for _, h := range c.Store.SortedBuildingHandles() {
		b, _ := c.Store.Building(h)
		if !b.Occupiable() || b.Occupants == 0 {
			continue
		}
		cell := roads.Node{X: b.X, Y: b.Y}
		demand := float64(b.Occupants) * residentDemandKWh
		wdemand := float64(b.Occupants) * residentWaterDemandMGD
		econsumers = append(econsumers, utilities.EnergyConsumer{Cell: cell, BaseDemandKWh: demand, Priority: utilities.PriorityNormal})
		wconsumers = append(wconsumers, utilities.WaterConsumer{Cell: cell, DemandMGD: wdemand, Priority: utilities.PriorityNormal})
	}

	c.Power = utilities.Dispatch(econsumers, plants, hour)
	c.Water = utilities.DispatchWater(wconsumers, sources)
}

func (c *City) slowTick(tick uint64) {
	var jobSupply uint32
	occupants := econz.ZoneOccupants{}
	for _, h := range c.Store.SortedBuildingHandles() {
		b, _ := c.Store.Building(h)
		occupants[b.Zone] += uint32(b.Occupants)
		if b.Zone.IsCommercial() || b.Zone == worldgrid.Industrial || b.Zone == worldgrid.Office {
			jobSupply += uint32(b.Capacity)
		}
	}
	population := uint32(c.Store.CitizenCount())

	zones.Update(&c.Demand, c.Store, jobSupply, population)

	spawned := 0
	for y := 0; y < c.Grid.Height && spawned < maxSpawnCandidatesPerPass; y++ {
		for x := 0; x < c.Grid.Width && spawned < maxSpawnCandidatesPerPass; x++ {
			cell := c.Grid.Get(x, y)
			if cell.Zone == worldgrid.Unzoned || cell.BuildingID != 0 || cell.CellType != worldgrid.Grass {
				continue
			}
			cand := zones.SpawnCandidate{Cell: roads.Node{X: x, Y: y}, Zone: cell.Zone}
			if _, ok := zones.TrySpawn(c.Store, c.Grid, c.Net, &c.Demand, c.Budget.Treasury, cand); ok {
				spawned++
				c.Budget.Treasury -= int64(zones.SpawnThreshold)
			}
		}
	}

	for _, h := range c.Store.SortedBuildingHandles() {
		b, _ := c.Store.Building(h)
		zones.AdvanceConstruction(b)
	}

	zones.UpgradeAll(c.Store, c.avgHappiness, c.Policies.BuildingMaxLevel, 5)
	zones.DowngradeAll(c.Store, c.Rng, tick, c.avgHappiness)
	zones.EvaluateDeaths(c.Store, c.Rng, tick)
	zones.CheckReciprocity(c.Store)
}

func (c *City) dailyTick(tick uint64) {
	day := tick / config.TicksPerGameDay
	season := weather.SeasonForDay(day)
	c.Weather = weather.Generate(c.Rng, day, season, c.Climate.WarmingOffsetC())

	var industrialLevelSum uint64
	for _, h := range c.Store.SortedBuildingHandles() {
		b, _ := c.Store.Building(h)
		if b.Zone != worldgrid.Industrial || !b.Occupiable() {
			continue
		}
		industrialLevelSum += uint64(b.Level)
		cb, ok := c.ChainBuildings[h]
		if !ok {
			cb = production.NewChainBuilding(int(h)%len(production.AllChains()), 0)
			c.ChainBuildings[h] = cb
		}
		chain := production.AllChains()[cb.ChainIndex]
		stage := chain[cb.StageIndex]
		production.Produce(c.Chains, cb, stage, b.OccupancyRatio())
	}
	buildings := make([]*production.ChainBuilding, 0, len(c.ChainBuildings))
	for _, cb := range c.ChainBuildings {
		buildings = append(buildings, cb)
	}
	c.Chains.RefreshDisruption(buildings)

	for _, commodity := range production.AllCommodities() {
		if commodity.IsFinal() {
			production.Consume(c.Chains, commodity, float64(c.Store.CitizenCount())*0.05)
		}
	}
	production.SettleTrade(c.Chains, production.BuildingBuffer)

	wasteTons := float64(c.Store.CitizenCount()) * 0.01
	production.UpdateDaily(c.Recycling, c.RecyclingTier, wasteTons, uint32(c.Store.CitizenCount()), day)

	if day > 0 && day%config.DaysPerGameYear == 0 {
		powerPlantMWh := c.Power.TotalSupplyKW * hoursPerGameYear / 1000
		c.Climate.AccumulateYearly(powerPlantMWh, industrialLevelSum)
		c.Climate.MaybeTriggerSeaLevelRise(c.Grid, 0.05)
		zones.AgeOneYear(c.Store)
	}
}

// hoursPerGameYear converts the power grid's instantaneous kW dispatch,
// sampled on the one day per year AccumulateYearly runs, into the yearly
// MWh figure its CO2 formula expects.
const hoursPerGameYear = 24 * config.DaysPerGameYear

func (c *City) monthlyBudgetTick() {
	occupants := econz.ZoneOccupants{}
	for _, h := range c.Store.SortedBuildingHandles() {
		b, _ := c.Store.Building(h)
		occupants[b.Zone] += uint32(b.Occupants)
	}
	serviceCost := float64(c.Store.BuildingCount()) * 10
	roadMaintenance := float64(len(c.Net.Segments)) * 5
	policyCost := 0.0
	if c.Policies.CurfewEnforced {
		policyCost += 200
	}
	c.Budget.ApplyMonthlyTick(occupants, serviceCost, roadMaintenance, policyCost)
}

// SimTime formats a tick count as a human-readable in-city clock string.
func SimTime(tick uint64) string {
	minutes := tick % 60
	totalHours := tick / 60
	hours := totalHours % 24
	day := totalHours/24 + 1
	return fmt.Sprintf("Day %d, %02d:%02d", day, hours, minutes)
}
