// Package replay records and plays back the exact sequence of GameActions
// applied to a city, so the same seed plus the same recorded inputs
// reproduces identical state. Grounded on
// original_source/crates/simulation/src/replay/recorder.rs.
package replay

import (
	"hash/fnv"

	"github.com/talgya/citycore/internal/actions"
	"github.com/talgya/citycore/internal/config"
)

// CurrentFormatVersion is bumped whenever Header, Entry, or Footer change
// shape in a way that breaks byte-for-byte decoding of older files.
// Sourced from config so the replay and save version numbers live in one
// place alongside the rest of the tunable constants.
const CurrentFormatVersion uint32 = config.ReplayFormatVersion

// Header identifies the run a replay file captures.
type Header struct {
	FormatVersion uint32
	Seed          uint64
	CityName      string
	StartTick     uint64
}

// Entry is one recorded action and the tick it was applied on.
type Entry struct {
	Tick   uint64
	Action actions.GameAction
	Source actions.Source
}

// Footer summarizes the recording for integrity checks on load.
type Footer struct {
	EndTick        uint64
	FinalStateHash uint64
	EntryCount     uint64
}

// File is a complete replay: header, the ordered entries, and a footer
// written once recording stops.
type File struct {
	Header  Header
	Entries []Entry
	Footer  Footer
}

// Validate checks the structural invariants a well-formed replay must
// satisfy, mirroring the original's validate(): entry_count must match the
// actual entry slice length, and the first entry (if any) may not precede
// the recorded start tick.
func (f *File) Validate() error {
	if f.Footer.EntryCount != uint64(len(f.Entries)) {
		return ErrEntryCountMismatch
	}
	if len(f.Entries) > 0 && f.Entries[0].Tick < f.Header.StartTick {
		return ErrEntryBeforeStart
	}
	if f.Header.FormatVersion != CurrentFormatVersion {
		return ErrUnsupportedVersion
	}
	return nil
}

// StateHash computes a deterministic FNV-1a hash over the fields that
// define reproducible simulation state. No library in the dependency pack
// offers a checksum primitive suited to this, so it uses the standard
// library's hash/fnv directly, the same way the original computes a hash
// over its serialized world snapshot.
func StateHash(seed uint64, tick uint64, treasury int64, population int64) uint64 {
	h := fnv.New64a()
	var buf [32]byte
	putUint64(buf[0:8], seed)
	putUint64(buf[8:16], tick)
	putUint64(buf[16:24], uint64(treasury))
	putUint64(buf[24:32], uint64(population))
	h.Write(buf[:])
	return h.Sum64()
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
