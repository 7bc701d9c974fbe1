package save

import (
	"sort"

	"golang.org/x/exp/maps"
)

// Saveable is implemented by any subsystem persisted through the
// extension map instead of a named SaveData field: production chains,
// recycling economics, reservoir levels, climate/weather accumulators,
// zone demand. Grounded on exclusive_load.rs's SaveableRegistry.load_all
// step, which applies every registered subsystem's bytes after the named
// fields are restored.
type Saveable interface {
	SaveKey() string
	SaveExtension() ([]byte, error)
	LoadExtension([]byte) error
}

// Registry holds every Saveable a running simulation has registered,
// applied in sorted-key order on both save and load so iteration order
// never depends on registration order.
type Registry struct {
	entries map[string]Saveable
}

// NewRegistry creates an empty extension registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Saveable)}
}

// Register adds s under its own SaveKey, overwriting any prior entry with
// the same key.
func (r *Registry) Register(s Saveable) {
	r.entries[s.SaveKey()] = s
}

// SaveAll collects every registered Saveable's bytes into d.Extensions.
func (r *Registry) SaveAll(d *SaveData) error {
	keys := maps.Keys(r.entries)
	sort.Strings(keys)
	for _, key := range keys {
		b, err := r.entries[key].SaveExtension()
		if err != nil {
			return wrapEncode(err)
		}
		d.Extensions[key] = b
	}
	return nil
}

// LoadAll applies every extension entry present in d to its matching
// registered Saveable. Extension keys with no matching registration are
// left untouched in d.Extensions (round-trip safety, §8) rather than
// erroring, so a save written by a newer build with subsystems this build
// doesn't know about still loads.
func (r *Registry) LoadAll(d *SaveData) error {
	keys := maps.Keys(d.Extensions)
	sort.Strings(keys)
	for _, key := range keys {
		s, ok := r.entries[key]
		if !ok {
			continue
		}
		if err := s.LoadExtension(d.Extensions[key]); err != nil {
			return wrapDecode(err)
		}
	}
	return nil
}
