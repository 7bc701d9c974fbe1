// Package observation builds read-only, per-tick summaries of live
// simulation state for API/agent consumers, the same "assemble a flat
// JSON-tagged struct from live resources" shape the teacher's query
// handlers use (internal/api/server.go's handleStatus/handleSettlements/
// handleEconomy), generalized into one Builder instead of one handler
// per view.
package observation

import (
	"sort"

	"github.com/talgya/citycore/internal/config"
	"github.com/talgya/citycore/internal/econz"
	"github.com/talgya/citycore/internal/entities"
	"github.com/talgya/citycore/internal/production"
	"github.com/talgya/citycore/internal/roads"
	"github.com/talgya/citycore/internal/utilities"
	"github.com/talgya/citycore/internal/weather"
	"github.com/talgya/citycore/internal/worldgrid"
)

// World bundles the pointers a Builder reads, never mutates, mirroring
// actions.World's "just the pointers this subsystem touches" shape.
type World struct {
	Grid      *worldgrid.Grid
	Net       *roads.Network
	Store     *entities.Store
	Budget    *econz.Budget
	Policies  *econz.Policies
	Weather   weather.Conditions
	Climate   *weather.Climate
	Chains    *production.ChainState
	Power     utilities.DispatchResult
	Water     utilities.WaterDispatchResult
}

// ZoneCount summarizes occupancy for one zone type.
type ZoneCount struct {
	Zone      worldgrid.ZoneType `json:"zone"`
	Buildings int                `json:"buildings"`
	Capacity  uint16             `json:"capacity"`
	Occupants uint16             `json:"occupants"`
}

// CommodityLevel summarizes one commodity's current stock and net flow.
type CommodityLevel struct {
	Commodity string  `json:"commodity"`
	Stock     float64 `json:"stock"`
	Net       float64 `json:"net"`
}

// Snapshot is the immutable, read-only view of the city at one tick,
// suitable for JSON serialization over HTTP or a websocket feed without
// exposing mutable pointers into live state.
type Snapshot struct {
	Tick uint64 `json:"tick"`

	Treasury        int64   `json:"treasury"`
	TaxRate         float64 `json:"tax_rate"`
	CreditRating    econz.CreditRating `json:"credit_rating"`
	OutstandingLoans int    `json:"outstanding_loans"`

	Population    int `json:"population"`
	BuildingCount int `json:"building_count"`
	AvgHappiness  float64 `json:"avg_happiness"`
	AvgNeeds      float64 `json:"avg_needs"`

	Zones []ZoneCount `json:"zones"`

	WeatherDescription string  `json:"weather_description"`
	Temperature        float64 `json:"temperature_c"`
	WarmingTier        int     `json:"warming_tier"`
	SeaLevelTriggered  bool    `json:"sea_level_triggered"`

	PowerDeficit     bool    `json:"power_deficit"`
	PowerReserveMargin float64 `json:"power_reserve_margin"`
	PowerShedCount   int     `json:"power_shed_count"`
	WaterDeficit     bool    `json:"water_deficit"`
	WaterReserveMargin float64 `json:"water_reserve_margin"`
	WaterShedCount   int     `json:"water_shed_count"`

	Commodities      []CommodityLevel `json:"commodities"`
	DisruptedChains  int              `json:"disrupted_chains"`
	TradeBalance     float64          `json:"trade_balance"`

	Policies econz.Policies `json:"policies"`
}

// Build assembles a Snapshot from w at the given tick. Every slice field
// is produced from a sorted-key walk of the underlying map/handle set so
// two builds of identical state always serialize identically, matching
// the determinism contract observed throughout this port.
func Build(w *World, tick uint64) Snapshot {
	s := Snapshot{
		Tick:               tick,
		Treasury:           w.Budget.Treasury,
		TaxRate:            w.Budget.TaxRate,
		CreditRating:       w.Budget.Credit,
		OutstandingLoans:   len(w.Budget.Loans),
		Policies:           *w.Policies,
		WeatherDescription: weather.MapToSim(w.Weather, weather.SeasonForDay(tick/config.TicksPerGameDay)).Description,
		Temperature:        w.Weather.Temp,
	}

	if w.Climate != nil {
		s.WarmingTier = w.Climate.WarmingTier()
		s.SeaLevelTriggered = w.Climate.SeaLevelTriggered
	}

	s.PowerDeficit = w.Power.Deficit
	s.PowerReserveMargin = w.Power.ReserveMargin
	s.PowerShedCount = len(w.Power.SheddedCells)
	s.WaterDeficit = w.Water.Deficit
	s.WaterReserveMargin = w.Water.ReserveMargin
	s.WaterShedCount = len(w.Water.SheddedCells)

	buildPopulation(w, &s)
	buildZones(w, &s)
	buildCommodities(w, &s)

	return s
}

func buildPopulation(w *World, s *Snapshot) {
	handles := w.Store.SortedCitizenHandles()
	s.Population = len(handles)
	s.BuildingCount = w.Store.BuildingCount()

	if len(handles) == 0 {
		return
	}
	var happinessSum, needsSum float64
	for _, h := range handles {
		c, ok := w.Store.Citizen(h)
		if !ok {
			continue
		}
		happinessSum += c.Details.Happiness
		needsSum += c.Needs.Average()
	}
	n := float64(len(handles))
	s.AvgHappiness = happinessSum / n
	s.AvgNeeds = needsSum / n
}

func buildZones(w *World, s *Snapshot) {
	counts := make(map[worldgrid.ZoneType]*ZoneCount)
	for _, h := range w.Store.SortedBuildingHandles() {
		b, ok := w.Store.Building(h)
		if !ok {
			continue
		}
		zc, ok := counts[b.Zone]
		if !ok {
			zc = &ZoneCount{Zone: b.Zone}
			counts[b.Zone] = zc
		}
		zc.Buildings++
		zc.Capacity += b.Capacity
		zc.Occupants += b.Occupants
	}

	zones := make([]worldgrid.ZoneType, 0, len(counts))
	for z := range counts {
		zones = append(zones, z)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i] < zones[j] })

	s.Zones = make([]ZoneCount, 0, len(zones))
	for _, z := range zones {
		s.Zones = append(s.Zones, *counts[z])
	}
}

func buildCommodities(w *World, s *Snapshot) {
	if w.Chains == nil {
		return
	}
	for _, c := range production.AllCommodities() {
		s.Commodities = append(s.Commodities, CommodityLevel{
			Commodity: c.Name(),
			Stock:     w.Chains.Stock(c),
			Net:       w.Chains.Net(c),
		})
	}
	s.DisruptedChains = w.Chains.DisruptedCount
	s.TradeBalance = w.Chains.TradeBalance
}
