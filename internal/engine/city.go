package engine

import (
	"math"

	"github.com/talgya/citycore/internal/actions"
	"github.com/talgya/citycore/internal/config"
	"github.com/talgya/citycore/internal/csrgraph"
	"github.com/talgya/citycore/internal/econz"
	"github.com/talgya/citycore/internal/entities"
	"github.com/talgya/citycore/internal/movement"
	"github.com/talgya/citycore/internal/needs"
	"github.com/talgya/citycore/internal/production"
	"github.com/talgya/citycore/internal/propagators"
	"github.com/talgya/citycore/internal/replay"
	"github.com/talgya/citycore/internal/roads"
	"github.com/talgya/citycore/internal/simrand"
	"github.com/talgya/citycore/internal/traffic"
	"github.com/talgya/citycore/internal/utilities"
	"github.com/talgya/citycore/internal/weather"
	"github.com/talgya/citycore/internal/worldgrid"
	"github.com/talgya/citycore/internal/zones"
)

// Local utility catalog constants. No action exists yet to place a named
// power plant or well with its own capacity — PlaceUtility only flags a
// single cell as powered/watered — so a placed utility cell is treated as
// one plant/source of this flat capacity, the simplest reading of "one
// utility placement improves the city's supply" consistent with the action
// vocabulary it actually has.
const (
	placedPlantCapacityKW  = 50_000.0
	placedWaterCapacityMGD = 8.0
	residentDemandKWh      = 6.0
	residentWaterDemandMGD = 0.12
	waterfrontValue        = 80
	waterfrontRadius       = 6
)

// City bundles every subsystem's live state: the grid, road network,
// pathfinding graph, entity store, and the per-tick derived grids each
// propagator writes and happiness/zone-demand read. Grounded on the
// teacher's Simulation struct, generalized from one flat agent/settlement
// model to the layered grid-and-entity-store shape this domain needs.
type City struct {
	Seed     uint64
	CityName string
	Tick     uint64

	Grid  *worldgrid.Grid
	Net   *roads.Network
	Graph *csrgraph.Graph
	Store *entities.Store

	Traffic     *traffic.Grid
	Roundabouts *traffic.Registry

	Budget   *econz.Budget
	Policies *econz.Policies

	Rng     *simrand.Source
	Weather weather.Conditions
	Climate *weather.Climate

	Chains         *production.ChainState
	ChainBuildings map[entities.BuildingHandle]*production.ChainBuilding
	Recycling      *production.Economics
	RecyclingTier  production.RecyclingTier

	Coverage  *needs.CoverageGrid
	Pollution *propagators.Grid
	Noise     *propagators.Grid
	Heat      *propagators.HeatGrid
	LandValue *propagators.ValueGrid
	Crime     *propagators.CrimeGrid

	Power utilities.DispatchResult
	Water utilities.WaterDispatchResult

	Demand zones.Demand

	Queue    *actions.Queue
	Executor actions.Executor

	Recorder *replay.Recorder
	Events   *EventLog

	Stats Stats

	avgHappiness float64
}

// Stats is the aggregate per-tick summary, grounded on the teacher's
// SimStats, narrowed to the quantities this domain's PostSim phase
// actually computes.
type Stats struct {
	Population      uint32
	BuildingCount   int
	AvgHappiness    float64
	AvgNeeds        float64
	Treasury        int64
	DisruptedChains int
	PowerDeficit    bool
	WaterDeficit    bool
}

// NewCity constructs a fresh city on a generated grid, ready to run from
// tick zero.
func NewCity(seed uint64, cityName string, startingTreasury int64) *City {
	grid := worldgrid.Generate(config.GridWidth, config.GridHeight, int64(seed))
	policies := econz.DefaultPolicies()
	c := &City{
		Seed:           seed,
		CityName:       cityName,
		Grid:           grid,
		Net:            roads.NewNetwork(),
		Store:          entities.NewStore(),
		Traffic:        traffic.NewGrid(config.GridWidth, config.GridHeight),
		Roundabouts:    &traffic.Registry{},
		Budget:         econz.NewBudget(startingTreasury),
		Policies:       &policies,
		Rng:            simrand.NewSource(seed),
		Climate:        &weather.Climate{},
		Chains:         &production.ChainState{},
		ChainBuildings: make(map[entities.BuildingHandle]*production.ChainBuilding),
		Recycling:      production.NewEconomics(),
		RecyclingTier:  production.CurbsideBasic,
		Coverage:       needs.NewCoverageGrid(config.GridWidth, config.GridHeight),
		Pollution:      propagators.NewGrid(config.GridWidth, config.GridHeight),
		Noise:          propagators.NewGrid(config.GridWidth, config.GridHeight),
		Heat:           propagators.NewHeatGrid(config.GridWidth, config.GridHeight),
		LandValue:      propagators.NewValueGrid(config.GridWidth, config.GridHeight),
		Crime:          propagators.NewCrimeGrid(config.GridWidth, config.GridHeight),
		Queue:          &actions.Queue{},
		Recorder:       &replay.Recorder{},
		Events:         NewEventLog(),
	}
	c.Net.Rebuild()
	c.Graph = csrgraph.Build(c.Net)
	c.applyRoundaboutWeights()
	return c
}

// PostLoad performs the one-time fix-up pass a freshly loaded save must run
// before its first Step: road-derived caches and in-memory grids are never
// persisted, so they're rebuilt from the state that was, and any citizen
// caught mid-commute is reset rather than trusted to resume a stale path.
func (c *City) PostLoad() {
	c.Net.Rebuild()
	c.Graph = csrgraph.Build(c.Net)
	c.applyRoundaboutWeights()
	c.Net.ClearChanged()
	c.Coverage.Dirty = true
	c.Traffic.Clear()

	for _, h := range c.Store.SortedCitizenHandles() {
		cit, _ := c.Store.Citizen(h)
		cit.Path = entities.PathCache{}
		if cit.State != entities.AtHome && cit.State != entities.Working &&
			cit.State != entities.Shopping && cit.State != entities.AtLeisure && cit.State != entities.AtSchool {
			cit.State = entities.AtHome
		}
	}
}

// destinations adapts the entity store to movement.Destinations: the
// nearest building of the right kind with free capacity becomes the
// commute target. There is no dedicated school/leisure zone type yet, so
// leisure destinations fall back to the same commercial catalog shops use
// and school destinations report none available — documented as an open
// question rather than invented.
type destinations struct {
	store *entities.Store
	grid  *worldgrid.Grid
}

func (d destinations) nearestCommercial(from roads.Node) (entities.BuildingHandle, roads.Node, bool) {
	best := entities.BuildingHandle(0)
	var bestCell roads.Node
	bestDist := math.MaxInt
	found := false
	for _, h := range d.store.SortedBuildingHandles() {
		b, _ := d.store.Building(h)
		if !b.Zone.IsCommercial() || !b.Occupiable() || b.Occupants >= b.Capacity {
			continue
		}
		dist := abs(b.X-from.X) + abs(b.Y-from.Y)
		if dist < bestDist {
			bestDist = dist
			best = h
			bestCell = roads.Node{X: b.X, Y: b.Y}
			found = true
		}
	}
	return best, bestCell, found
}

func (d destinations) NearestShop(from roads.Node) (entities.BuildingHandle, roads.Node, bool) {
	return d.nearestCommercial(from)
}

func (d destinations) NearestLeisure(from roads.Node) (entities.BuildingHandle, roads.Node, bool) {
	return d.nearestCommercial(from)
}

func (d destinations) NearestSchool(roads.Node) (entities.BuildingHandle, roads.Node, bool) {
	return 0, roads.Node{}, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
