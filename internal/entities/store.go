package entities

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Store is the entity store: the sole owner of building and citizen
// component data, addressed by opaque handles. Iteration methods always
// return handles in sorted order so every consumer walks entities in the
// same sequence every tick, per the determinism contract.
type Store struct {
	buildings   map[BuildingHandle]*Building
	citizens    map[CitizenHandle]*Citizen
	nextBuildID uint32
	nextCitID   uint32
}

// NewStore creates an empty entity store.
func NewStore() *Store {
	return &Store{
		buildings: make(map[BuildingHandle]*Building),
		citizens:  make(map[CitizenHandle]*Citizen),
	}
}

// SpawnBuilding allocates a new building handle and stores b under it.
func (s *Store) SpawnBuilding(b *Building) BuildingHandle {
	s.nextBuildID++
	h := BuildingHandle(s.nextBuildID)
	s.buildings[h] = b
	return h
}

// Building returns the building for h, and whether it exists.
func (s *Store) Building(h BuildingHandle) (*Building, bool) {
	b, ok := s.buildings[h]
	return b, ok
}

// RemoveBuilding deletes a building entity (bulldoze).
func (s *Store) RemoveBuilding(h BuildingHandle) {
	delete(s.buildings, h)
}

// SortedBuildingHandles returns every live building handle in ascending
// order.
func (s *Store) SortedBuildingHandles() []BuildingHandle {
	hs := maps.Keys(s.buildings)
	slices.Sort(hs)
	return hs
}

// BuildingCount returns the number of live buildings.
func (s *Store) BuildingCount() int { return len(s.buildings) }

// SpawnCitizen allocates a new citizen handle and stores c under it.
func (s *Store) SpawnCitizen(c *Citizen) CitizenHandle {
	s.nextCitID++
	h := CitizenHandle(s.nextCitID)
	s.citizens[h] = c
	return h
}

// Citizen returns the citizen for h, and whether it exists.
func (s *Store) Citizen(h CitizenHandle) (*Citizen, bool) {
	c, ok := s.citizens[h]
	return c, ok
}

// RemoveCitizen deletes a citizen entity (death, emigration).
func (s *Store) RemoveCitizen(h CitizenHandle) {
	delete(s.citizens, h)
}

// SortedCitizenHandles returns every live citizen handle in ascending order.
func (s *Store) SortedCitizenHandles() []CitizenHandle {
	hs := maps.Keys(s.citizens)
	slices.Sort(hs)
	return hs
}

// CitizenCount returns the number of live citizens.
func (s *Store) CitizenCount() int { return len(s.citizens) }

// Buildings returns the live building map directly, for bulk export by the
// save system. Callers must not mutate the returned map's membership.
func (s *Store) Buildings() map[BuildingHandle]*Building { return s.buildings }

// Citizens returns the live citizen map directly, for bulk export by the
// save system. Callers must not mutate the returned map's membership.
func (s *Store) Citizens() map[CitizenHandle]*Citizen { return s.citizens }

// Restore replaces the store's contents wholesale with buildings and
// citizens loaded from a save file, setting the handle allocators past the
// highest handle present so newly spawned entities never collide with a
// restored one.
func (s *Store) Restore(buildings map[BuildingHandle]*Building, citizens map[CitizenHandle]*Citizen) {
	if buildings == nil {
		buildings = make(map[BuildingHandle]*Building)
	}
	if citizens == nil {
		citizens = make(map[CitizenHandle]*Citizen)
	}
	s.buildings = buildings
	s.citizens = citizens

	for h := range buildings {
		if uint32(h) > s.nextBuildID {
			s.nextBuildID = uint32(h)
		}
	}
	for h := range citizens {
		if uint32(h) > s.nextCitID {
			s.nextCitID = uint32(h)
		}
	}
}
