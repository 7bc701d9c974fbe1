// Package save implements the authoritative world-state file format: a
// single versioned SaveData struct with named fields for the core
// resources plus a generic extension map for everything else, written
// atomically and migrated forward on load. Grounded on
// original_source/crates/save/src/save_types/save_data.rs,
// save_types/version.rs, save_error.rs, and atomic_write.rs.
package save

import (
	"bytes"
	"encoding/gob"

	"github.com/talgya/citycore/internal/config"
	"github.com/talgya/citycore/internal/econz"
	"github.com/talgya/citycore/internal/entities"
	"github.com/talgya/citycore/internal/roads"
	"github.com/talgya/citycore/internal/worldgrid"
)

// CurrentSaveVersion is the save format version this build writes,
// sourced from config alongside the replay format version so both
// version numbers live in one place.
// v1 = initial format: grid, roads, clock, budget, buildings, citizens,
//
//	policies, extension map.
const CurrentSaveVersion uint32 = config.CurrentSaveVersion

// SaveSegment is a road segment stripped of its cached raster, which is
// recomputed by Network.AddSegment when the segment is re-added on load
// rather than persisted.
type SaveSegment struct {
	ID                     roads.SegmentID
	StartNode, EndNode     roads.Node
	P0, P1, P2, P3         roads.Point
	RoadType               worldgrid.RoadType
}

// SaveClock is the tick/calendar state needed to resume a paused city at
// exactly the tick it was saved on.
type SaveClock struct {
	Tick     uint64
	Day      uint32
	Paused   bool
	Speed    uint8
}

// SaveData is the top-level save file struct. New subsystems register an
// Extensions entry instead of adding a named field here, matching the
// original's BTreeMap<String, Vec<u8>> extension map exactly (Go's
// gob-encoded map here, iterated in sorted key order wherever order
// matters, per the determinism contract).
type SaveData struct {
	Version uint32

	Seed     uint64
	CityName string

	Grid   *worldgrid.Grid
	Roads  []SaveSegment
	Clock  SaveClock
	Budget econz.Budget

	Buildings map[entities.BuildingHandle]*entities.Building
	Citizens  map[entities.CitizenHandle]*entities.Citizen

	Policies econz.Policies

	// Extensions holds bitcode-equivalent (gob) encoded bytes for every
	// subsystem that doesn't warrant a named field: climate/weather
	// state, production chains, recycling economics, utility reservoir
	// levels, zone demand, and anything added later. Keyed by each
	// subsystem's SaveKey().
	Extensions map[string][]byte
}

// NewSaveData constructs an empty SaveData stamped with the current
// version, ready to have its fields populated from live simulation state.
func NewSaveData(seed uint64, cityName string) *SaveData {
	return &SaveData{
		Version:    CurrentSaveVersion,
		Seed:       seed,
		CityName:   cityName,
		Buildings:  make(map[entities.BuildingHandle]*entities.Building),
		Citizens:   make(map[entities.CitizenHandle]*entities.Citizen),
		Extensions: make(map[string][]byte),
	}
}

// Encode serializes d with encoding/gob. No library in the dependency pack
// offers a binary serialization format (the teacher's sqlx/sqlite stack is
// relational, not a payload codec), so this uses the standard library's
// own binary codec, the direct structural analogue of the original's
// bitcode encoder.
func (d *SaveData) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(d); err != nil {
		return nil, wrapEncode(err)
	}
	return buf.Bytes(), nil
}

// Decode deserializes bytes produced by Encode into d.
func Decode(data []byte) (*SaveData, error) {
	if len(data) == 0 {
		return nil, &Error{Kind: ErrNoData}
	}
	var d SaveData
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&d); err != nil {
		return nil, wrapDecode(err)
	}
	return &d, nil
}
