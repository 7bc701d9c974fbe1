// Package entities holds the building/citizen entity store and their
// components. Entities are opaque integer handles; components are plain
// structs looked up by handle through the store rather than linked by
// pointer, so cyclic references (family graph, building-cell ownership)
// never need a parent pointer and are resolved fresh on every access.
// See design doc Section 4 and Section 9 ("Component composition over
// inheritance").
package entities

import "github.com/talgya/citycore/internal/worldgrid"

// BuildingHandle is an opaque building entity identifier, shared with
// worldgrid.Cell.BuildingID so cells can reference their owning building
// without importing the entities package back.
type BuildingHandle = worldgrid.BuildingID

// CitizenHandle is an opaque citizen entity identifier. The zero value
// never refers to a live citizen.
type CitizenHandle uint32
