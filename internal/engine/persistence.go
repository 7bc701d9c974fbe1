package engine

import (
	"bytes"
	"encoding/gob"

	"github.com/talgya/citycore/internal/production"
	"github.com/talgya/citycore/internal/roads"
	"github.com/talgya/citycore/internal/save"
	"github.com/talgya/citycore/internal/traffic"
	"github.com/talgya/citycore/internal/weather"
	"github.com/talgya/citycore/internal/zones"
)

// chainStateExtension adapts production.ChainState to save.Saveable: the
// type's stock/net arrays are unexported, so this walks the commodity
// table through its exported accessors instead of reaching into the
// struct directly.
type chainStateExtension struct{ chains *production.ChainState }

func (chainStateExtension) SaveKey() string { return "production_chains" }

type chainStateBlob struct {
	Stock, Net     map[production.Commodity]float64
	ChainDisrupted [4]bool
	DisruptedCount int
	TradeBalance   float64
}

func (e chainStateExtension) SaveExtension() ([]byte, error) {
	blob := chainStateBlob{
		Stock:          make(map[production.Commodity]float64),
		Net:            make(map[production.Commodity]float64),
		ChainDisrupted: e.chains.ChainDisrupted,
		DisruptedCount: e.chains.DisruptedCount,
		TradeBalance:   e.chains.TradeBalance,
	}
	for _, c := range production.AllCommodities() {
		blob.Stock[c] = e.chains.Stock(c)
		blob.Net[c] = e.chains.Net(c)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(blob); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e chainStateExtension) LoadExtension(b []byte) error {
	var blob chainStateBlob
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&blob); err != nil {
		return err
	}
	for c, v := range blob.Stock {
		e.chains.SetStock(c, v)
	}
	for c, v := range blob.Net {
		e.chains.SetNet(c, v)
	}
	e.chains.ChainDisrupted = blob.ChainDisrupted
	e.chains.DisruptedCount = blob.DisruptedCount
	e.chains.TradeBalance = blob.TradeBalance
	return nil
}

// valueExtension round-trips any gob-encodable value through a pointer,
// used for the plain-struct subsystems (climate, recycling economics,
// zone demand) that have no unexported fields standing in the way.
type valueExtension[T any] struct {
	key string
	ptr *T
}

func (v valueExtension[T]) SaveKey() string { return v.key }

func (v valueExtension[T]) SaveExtension() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(*v.ptr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v valueExtension[T]) LoadExtension(b []byte) error {
	return gob.NewDecoder(bytes.NewReader(b)).Decode(v.ptr)
}

// registry builds the extension registry for c's non-named-field
// subsystems, applied identically on both save and load.
func (c *City) registry() *save.Registry {
	reg := save.NewRegistry()
	reg.Register(chainStateExtension{chains: c.Chains})
	reg.Register(valueExtension[weather.Climate]{key: "climate", ptr: c.Climate})
	reg.Register(valueExtension[production.Economics]{key: "recycling_economics", ptr: c.Recycling})
	reg.Register(valueExtension[production.RecyclingTier]{key: "recycling_tier", ptr: &c.RecyclingTier})
	reg.Register(valueExtension[zones.Demand]{key: "zone_demand", ptr: &c.Demand})
	reg.Register(valueExtension[traffic.Registry]{key: "roundabouts", ptr: c.Roundabouts})
	return reg
}

// ToSaveData assembles the authoritative save-file representation of c at
// its current tick.
func (c *City) ToSaveData() (*save.SaveData, error) {
	d := save.NewSaveData(c.Seed, c.CityName)
	d.Grid = c.Grid
	d.Clock = save.SaveClock{Tick: c.Tick}
	d.Budget = *c.Budget
	d.Policies = *c.Policies
	d.Buildings = c.Store.Buildings()
	d.Citizens = c.Store.Citizens()

	for _, seg := range c.Net.Segments {
		d.Roads = append(d.Roads, save.SaveSegment{
			ID:        seg.ID,
			StartNode: seg.StartNode,
			EndNode:   seg.EndNode,
			P0:        seg.P0,
			P1:        seg.P1,
			P2:        seg.P2,
			P3:        seg.P3,
			RoadType:  seg.RoadType,
		})
	}

	if err := c.registry().SaveAll(d); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadCity reconstructs a City from save data, then runs PostLoad to
// rebuild every cache that is never persisted.
func LoadCity(d *save.SaveData) (*City, error) {
	c := NewCity(d.Seed, d.CityName, 0)
	c.Grid = d.Grid
	c.Tick = d.Clock.Tick
	*c.Budget = d.Budget
	*c.Policies = d.Policies
	c.Store.Restore(d.Buildings, d.Citizens)

	c.Net = roads.NewNetwork()
	for _, s := range d.Roads {
		c.Net.AddSegment(c.Grid, roads.NewSegment(s.ID, s.StartNode, s.EndNode, s.P0, s.P1, s.P2, s.P3, s.RoadType))
	}

	if err := c.registry().LoadAll(d); err != nil {
		return nil, err
	}

	c.PostLoad()
	return c, nil
}
