package save

// migrationStep upgrades a SaveData in place from one version to the next.
// Kept as an ordered chain of small functions rather than one branching
// block, matching the original's per-version migration functions
// referenced by migrate_save() in exclusive_load.rs.
type migrationStep func(d *SaveData)

// migrations holds one entry per version transition, indexed by
// (fromVersion - 1). migrations[i] upgrades version i+1 to i+2.
var migrations = []migrationStep{
	// v1 is the first version; no migrations registered yet. Future
	// subsystems append here instead of changing SaveData's shape,
	// mirroring the original's v2..v32 additive history (see
	// save_types/version.rs) where every field added after v1 is
	// Option-wrapped with a migration step instead of breaking old saves.
}

// Migrate walks d.Version forward to CurrentSaveVersion, applying each
// registered step in order. Unknown extension keys are untouched by every
// step, so subsystems this build doesn't recognize round-trip safely.
// Returns the version the save was loaded at before migration.
func Migrate(d *SaveData) (uint32, error) {
	loadedVersion := d.Version
	if loadedVersion == 0 {
		// Zero predates versioning entirely for this format (there is no
		// v0), so treat it the same as a fresh v1 save rather than
		// indexing into migrations with a negative offset.
		loadedVersion = 1
		d.Version = 1
	}
	if loadedVersion > CurrentSaveVersion {
		return loadedVersion, versionMismatch(loadedVersion, CurrentSaveVersion)
	}
	for v := loadedVersion; v < CurrentSaveVersion; v++ {
		step := migrations[v-1]
		step(d)
		d.Version = v + 1
	}
	return loadedVersion, nil
}
