package save

import (
	"os"
	"path/filepath"
)

// atomicWrite writes data to path using the write-fsync-rename pattern:
// write to "{path}.tmp", fsync it, then rename over the final path. A
// crash during either step leaves the original file at path untouched.
// Ported directly from
// original_source/crates/save/src/atomic_write.rs, including its parent
// directory creation and leftover-.tmp-is-harmless behavior (a new write
// simply overwrites it).
func atomicWrite(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return wrapIO(err)
		}
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return wrapIO(err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return wrapIO(err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return wrapIO(err)
	}
	if err := f.Close(); err != nil {
		return wrapIO(err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return wrapIO(err)
	}
	return nil
}

// WriteFile encodes d and atomically writes it to path.
func WriteFile(path string, d *SaveData) error {
	data, err := d.Encode()
	if err != nil {
		return err
	}
	return atomicWrite(path, data)
}

// ReadFile reads path, decodes it, and migrates it forward to
// CurrentSaveVersion, applying reg's extensions afterward. Returns the
// save-file version the file was written at before migration.
func ReadFile(path string, reg *Registry) (*SaveData, uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, wrapIO(err)
	}
	d, err := Decode(data)
	if err != nil {
		return nil, 0, err
	}
	oldVersion, err := Migrate(d)
	if err != nil {
		return nil, 0, err
	}
	if reg != nil {
		if err := reg.LoadAll(d); err != nil {
			return nil, 0, err
		}
	}
	return d, oldVersion, nil
}
