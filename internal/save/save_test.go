package save

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/citycore/internal/econz"
	"github.com/talgya/citycore/internal/entities"
	"github.com/talgya/citycore/internal/worldgrid"
)

func newTestSaveData() *SaveData {
	d := NewSaveData(7, "Rivermouth")
	d.Grid = worldgrid.New(4, 4)
	d.Clock = SaveClock{Tick: 1000, Day: 41, Paused: false, Speed: 1}
	d.Budget = *econz.NewBudget(50000)
	d.Policies = econz.DefaultPolicies()
	h := d.Buildings
	h[1] = &entities.Building{Zone: worldgrid.ResidentialLow, Level: 2, X: 1, Y: 1, Width: 1, Height: 1, Capacity: 10}
	return d
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	d := newTestSaveData()
	data, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Seed != d.Seed || got.CityName != d.CityName || got.Clock.Tick != d.Clock.Tick {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Grid.Width != 4 || got.Grid.Height != 4 {
		t.Errorf("grid dimensions lost in round trip: %+v", got.Grid)
	}
	b, ok := got.Buildings[1]
	if !ok || b.Level != 2 {
		t.Errorf("building lost in round trip: %+v", got.Buildings)
	}
}

func TestDecodeEmptyBytesReturnsNoData(t *testing.T) {
	_, err := Decode(nil)
	var saveErr *Error
	if !errors.As(err, &saveErr) || saveErr.Kind != ErrNoData {
		t.Errorf("Decode(nil) error = %v, want ErrNoData", err)
	}
}

func TestDecodeGarbageReturnsDecodeError(t *testing.T) {
	_, err := Decode([]byte{0xff, 0x00, 0x01, 0x02})
	var saveErr *Error
	if !errors.As(err, &saveErr) || saveErr.Kind != ErrDecode {
		t.Errorf("Decode(garbage) error = %v, want ErrDecode", err)
	}
}

func TestMigrateRejectsFutureVersion(t *testing.T) {
	d := newTestSaveData()
	d.Version = CurrentSaveVersion + 1
	_, err := Migrate(d)
	var saveErr *Error
	if !errors.As(err, &saveErr) || saveErr.Kind != ErrVersionMismatch {
		t.Errorf("Migrate() error = %v, want ErrVersionMismatch", err)
	}
}

func TestMigrateTreatsLegacyZeroVersionAsV1(t *testing.T) {
	d := newTestSaveData()
	d.Version = 0
	old, err := Migrate(d)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if old != 1 || d.Version != CurrentSaveVersion {
		t.Errorf("got old=%d, version=%d, want old=1 version=%d", old, d.Version, CurrentSaveVersion)
	}
}

func TestAtomicWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "city.sav")

	d := newTestSaveData()
	if err := WriteFile(path, d); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if matches, _ := filepath.Glob(filepath.Join(dir, "*.tmp")); len(matches) != 0 {
		t.Errorf("expected no leftover .tmp file, found %v", matches)
	}

	got, oldVersion, err := ReadFile(path, nil)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if oldVersion != CurrentSaveVersion {
		t.Errorf("oldVersion = %d, want %d", oldVersion, CurrentSaveVersion)
	}
	if got.CityName != "Rivermouth" {
		t.Errorf("CityName = %q", got.CityName)
	}
}

func TestAtomicWriteOverwritesStaleTmp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "city.sav")
	if err := atomicWrite(path+".tmp", []byte("partial garbage")); err != nil {
		t.Fatalf("seed .tmp error = %v", err)
	}

	d := newTestSaveData()
	if err := WriteFile(path, d); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, _, err := ReadFile(path, nil)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got.CityName != "Rivermouth" {
		t.Errorf("expected fresh save to win over stale tmp, got %+v", got)
	}
}

// fakeClimateExtension is a minimal Saveable used only to exercise the
// registry's save/load wiring without depending on internal/weather.
type fakeClimateExtension struct {
	CO2Tonnes float64
}

func (f *fakeClimateExtension) SaveKey() string { return "climate" }

func (f *fakeClimateExtension) SaveExtension() ([]byte, error) {
	return json.Marshal(f)
}

func (f *fakeClimateExtension) LoadExtension(b []byte) error {
	return json.Unmarshal(b, f)
}

func TestRegistrySaveAllThenLoadAllRoundTrips(t *testing.T) {
	d := newTestSaveData()
	reg := NewRegistry()
	climate := &fakeClimateExtension{CO2Tonnes: 1234.5}
	reg.Register(climate)

	if err := reg.SaveAll(d); err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}
	if _, ok := d.Extensions["climate"]; !ok {
		t.Fatalf("expected climate extension key to be populated")
	}

	climate.CO2Tonnes = 0
	if err := reg.LoadAll(d); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if climate.CO2Tonnes != 1234.5 {
		t.Errorf("LoadAll did not restore extension state, got %v", climate.CO2Tonnes)
	}
}

func TestRegistryLoadAllIgnoresUnknownKeys(t *testing.T) {
	d := newTestSaveData()
	d.Extensions["some_future_subsystem"] = []byte("opaque bytes from a newer build")
	reg := NewRegistry()
	if err := reg.LoadAll(d); err != nil {
		t.Fatalf("LoadAll() error = %v, want nil (unknown keys pass through)", err)
	}
	if string(d.Extensions["some_future_subsystem"]) != "opaque bytes from a newer build" {
		t.Errorf("unknown extension bytes were mutated")
	}
}

func TestErrorMessagesIncludeContext(t *testing.T) {
	e := versionMismatch(99, 32)
	if got := e.Error(); !strings.Contains(got, "v99") || !strings.Contains(got, "v32") {
		t.Fatalf("Error() = %q, want both versions v99 and v32 named", got)
	}
}
