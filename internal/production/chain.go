// Package production models multi-stage industrial supply chains and the
// city's recycling program, adapted from the teacher's resource-depletion
// work loop (internal/engine/production.go): there, an agent's work action
// draws from a depletable hex resource and converts it into a good; here a
// production stage draws from upstream commodity stock and converts it into
// downstream stock, three stages deep, across four parallel chains.
package production

// Commodity is one tradeable good in a production chain. Each chain has
// three stages: extraction (raw), processing (intermediate), manufacturing
// (final).
type Commodity uint8

const (
	Grain Commodity = iota
	Flour
	Bread

	Timber
	Lumber
	Furniture

	CrudeOil
	Petroleum
	Plastics

	IronOre
	Steel
	Machinery

	commodityCount
)

// IsRaw reports whether c is an extraction-stage commodity.
func (c Commodity) IsRaw() bool {
	return c == Grain || c == Timber || c == CrudeOil || c == IronOre
}

// IsProcessed reports whether c is a processing-stage commodity.
func (c Commodity) IsProcessed() bool {
	return c == Flour || c == Lumber || c == Petroleum || c == Steel
}

// IsFinal reports whether c is a manufacturing-stage (final) commodity.
func (c Commodity) IsFinal() bool {
	return c == Bread || c == Furniture || c == Plastics || c == Machinery
}

// ChainIndex identifies which of the four parallel chains c belongs to.
func (c Commodity) ChainIndex() int {
	switch c {
	case Grain, Flour, Bread:
		return 0
	case Timber, Lumber, Furniture:
		return 1
	case CrudeOil, Petroleum, Plastics:
		return 2
	case IronOre, Steel, Machinery:
		return 3
	default:
		return -1
	}
}

func (c Commodity) Name() string {
	switch c {
	case Grain:
		return "grain"
	case Flour:
		return "flour"
	case Bread:
		return "bread"
	case Timber:
		return "timber"
	case Lumber:
		return "lumber"
	case Furniture:
		return "furniture"
	case CrudeOil:
		return "crude oil"
	case Petroleum:
		return "petroleum"
	case Plastics:
		return "plastics"
	case IronOre:
		return "iron ore"
	case Steel:
		return "steel"
	case Machinery:
		return "machinery"
	default:
		return "unknown"
	}
}

// AllCommodities returns every commodity in declaration order.
func AllCommodities() []Commodity {
	out := make([]Commodity, 0, commodityCount)
	for c := Commodity(0); c < commodityCount; c++ {
		out = append(out, c)
	}
	return out
}

// exportPrice is the base per-unit price the city receives selling a
// commodity abroad; finished goods are worth more than raw inputs.
var exportPrice = map[Commodity]float64{
	Grain: 2, Flour: 5, Bread: 12,
	Timber: 3, Lumber: 7, Furniture: 20,
	CrudeOil: 4, Petroleum: 9, Plastics: 18,
	IronOre: 4, Steel: 10, Machinery: 25,
}

// ExportPrice returns the base export price for c.
func (c Commodity) ExportPrice() float64 {
	return exportPrice[c]
}

// ImportMarkup is applied on top of export price when the city must import
// a commodity it can't produce enough of.
const ImportMarkup = 1.4

// ImportPrice returns the price the city pays importing c.
func (c Commodity) ImportPrice() float64 {
	return c.ExportPrice() * ImportMarkup
}

// Stage is one step of a production chain: consumes Inputs in the given
// ratios and produces Commodity at up to OutputRate units per tick.
type Stage struct {
	Commodity  Commodity
	Inputs     map[Commodity]float64 // units of input per unit of output
	OutputRate float64                // base units/tick at full capacity
}

// Chain is an ordered, three-stage extraction -> processing -> manufacturing
// sequence.
type Chain []Stage

// AllChains returns the four parallel production chains.
func AllChains() []Chain {
	return []Chain{
		{
			{Commodity: Grain, Inputs: nil, OutputRate: 4},
			{Commodity: Flour, Inputs: map[Commodity]float64{Grain: 1.2}, OutputRate: 3},
			{Commodity: Bread, Inputs: map[Commodity]float64{Flour: 1.5}, OutputRate: 2},
		},
		{
			{Commodity: Timber, Inputs: nil, OutputRate: 4},
			{Commodity: Lumber, Inputs: map[Commodity]float64{Timber: 1.3}, OutputRate: 3},
			{Commodity: Furniture, Inputs: map[Commodity]float64{Lumber: 2.0}, OutputRate: 1.5},
		},
		{
			{Commodity: CrudeOil, Inputs: nil, OutputRate: 3},
			{Commodity: Petroleum, Inputs: map[Commodity]float64{CrudeOil: 1.5}, OutputRate: 2},
			{Commodity: Plastics, Inputs: map[Commodity]float64{Petroleum: 1.8}, OutputRate: 1.5},
		},
		{
			{Commodity: IronOre, Inputs: nil, OutputRate: 3},
			{Commodity: Steel, Inputs: map[Commodity]float64{IronOre: 1.6}, OutputRate: 2},
			{Commodity: Machinery, Inputs: map[Commodity]float64{Steel: 2.2}, OutputRate: 1},
		},
	}
}

// ChainState tracks per-commodity stock and the production/consumption
// imbalance for the whole city, plus chain-level disruption flags.
type ChainState struct {
	stock           [commodityCount]float64
	net             [commodityCount]float64
	ChainDisrupted  [4]bool
	DisruptedCount  int
	TradeBalance    float64
}

// Stock returns the current stockpile of c.
func (s *ChainState) Stock(c Commodity) float64 { return s.stock[c] }

// Net returns the last tick's production-minus-consumption delta for c.
func (s *ChainState) Net(c Commodity) float64 { return s.net[c] }

// SetStock overwrites the stockpile of c, used to restore state from a
// save file (normal production flow only ever adjusts stock by delta).
func (s *ChainState) SetStock(c Commodity, v float64) { s.stock[c] = v }

// SetNet overwrites the last-tick delta of c, used to restore state from a
// save file.
func (s *ChainState) SetNet(c Commodity, v float64) { s.net[c] = v }

// BuildingBuffer caps how much input/output stock a single production
// building can hold before the chain backs up.
const BuildingBuffer = 50.0

// ChainBuilding is one producing building's buffered state within a chain.
type ChainBuilding struct {
	StageIndex      int
	ChainIndex      int
	Disrupted       bool
	DisruptionTicks uint16
}

// NewChainBuilding creates a building producing the given chain/stage.
func NewChainBuilding(chainIndex, stageIndex int) *ChainBuilding {
	return &ChainBuilding{ChainIndex: chainIndex, StageIndex: stageIndex}
}

// Produce runs one tick of a stage: consumes available input stock up to the
// stage's ratio-scaled output rate, capped by a worker-availability fraction
// (e.g. occupancy), and adds the resulting output to city stock. Returns the
// units actually produced, which is less than the stage's nominal output
// rate when inputs or workers are short.
func Produce(s *ChainState, b *ChainBuilding, stage Stage, laborFraction float64) float64 {
	if laborFraction <= 0 {
		b.Disrupted = true
		b.DisruptionTicks++
		return 0
	}

	wanted := stage.OutputRate * laborFraction
	if len(stage.Inputs) == 0 {
		s.stock[stage.Commodity] += wanted
		s.net[stage.Commodity] += wanted
		b.Disrupted = false
		b.DisruptionTicks = 0
		return wanted
	}

	// Cap production by the scarcest input.
	produced := wanted
	for in, ratio := range stage.Inputs {
		available := s.stock[in] / ratio
		if available < produced {
			produced = available
		}
	}
	if produced < 0 {
		produced = 0
	}

	if produced <= 0 {
		b.Disrupted = true
		b.DisruptionTicks++
		return 0
	}

	for in, ratio := range stage.Inputs {
		s.stock[in] -= produced * ratio
		s.net[in] -= produced * ratio
	}
	s.stock[stage.Commodity] += produced
	s.net[stage.Commodity] += produced
	b.Disrupted = false
	b.DisruptionTicks = 0
	return produced
}

// Consume draws qty units of c from city stock for citizen/export
// consumption, capped at available stock. Returns units actually consumed.
func Consume(s *ChainState, c Commodity, qty float64) float64 {
	if qty > s.stock[c] {
		qty = s.stock[c]
	}
	if qty < 0 {
		qty = 0
	}
	s.stock[c] -= qty
	s.net[c] -= qty
	return qty
}

// RefreshDisruption recomputes per-chain disruption flags and the total
// disrupted-building count from a list of chain buildings.
func (s *ChainState) RefreshDisruption(buildings []*ChainBuilding) {
	var chainDisrupted [4]bool
	count := 0
	for _, b := range buildings {
		if b.Disrupted {
			count++
			if b.ChainIndex >= 0 && b.ChainIndex < 4 {
				chainDisrupted[b.ChainIndex] = true
			}
		}
	}
	s.ChainDisrupted = chainDisrupted
	s.DisruptedCount = count
}

// TradeDeficitCap is the floor of ChainState.TradeBalance, the running total
// of every SettleTrade step.
const TradeDeficitCap = -50000.0

// SettleTrade exports surplus stock above a holding threshold and imports to
// cover shortfalls for final commodities, adds the step's value to
// TradeBalance (floored at TradeDeficitCap), and returns the step's
// uncapped value. It does not change the city treasury.
func SettleTrade(s *ChainState, holdThreshold float64) float64 {
	delta := 0.0
	for _, c := range AllCommodities() {
		if !c.IsFinal() {
			continue
		}
		if s.stock[c] > holdThreshold {
			surplus := s.stock[c] - holdThreshold
			s.stock[c] = holdThreshold
			delta += surplus * c.ExportPrice()
		} else if s.stock[c] < 0 {
			shortfall := -s.stock[c]
			s.stock[c] = 0
			delta -= shortfall * c.ImportPrice()
		}
	}
	s.TradeBalance += delta
	if s.TradeBalance < TradeDeficitCap {
		s.TradeBalance = TradeDeficitCap
	}
	return delta
}
