// Package telemetry provides a rolling SQLite store for observability data:
// per-tick stat snapshots, the event log, and action results. It is
// deliberately separate from the save package — this store can be deleted
// and rebuilt from nothing without losing any city state, where a save file
// is the authoritative record a city is restored from.
package telemetry

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/citycore/internal/actions"
	"github.com/talgya/citycore/internal/engine"
)

// Store wraps a SQLite connection used for telemetry only.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates a telemetry database at path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open telemetry db: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate telemetry db: %w", err)
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stats_history (
		tick INTEGER PRIMARY KEY,
		population INTEGER NOT NULL,
		building_count INTEGER NOT NULL,
		avg_happiness REAL NOT NULL,
		avg_needs REAL NOT NULL,
		treasury INTEGER NOT NULL,
		disrupted_chains INTEGER NOT NULL,
		power_deficit INTEGER NOT NULL,
		water_deficit INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS action_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		kind INTEGER NOT NULL,
		ok INTEGER NOT NULL,
		reason TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS telemetry_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_action_results_tick ON action_results(tick);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// RecordStats appends a stats snapshot, keyed by tick (replacing any prior
// snapshot for that tick — a re-run of the same tick after a rewind should
// overwrite, not duplicate).
func (s *Store) RecordStats(tick uint64, st engine.Stats) error {
	_, err := s.conn.Exec(
		`INSERT OR REPLACE INTO stats_history
		(tick, population, building_count, avg_happiness, avg_needs, treasury,
		 disrupted_chains, power_deficit, water_deficit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tick, st.Population, st.BuildingCount, st.AvgHappiness, st.AvgNeeds,
		st.Treasury, st.DisruptedChains, boolToInt(st.PowerDeficit), boolToInt(st.WaterDeficit),
	)
	return err
}

// StatsRow is a historical stats snapshot as stored.
type StatsRow struct {
	Tick            uint64  `json:"tick" db:"tick"`
	Population      uint32  `json:"population" db:"population"`
	BuildingCount   int     `json:"building_count" db:"building_count"`
	AvgHappiness    float64 `json:"avg_happiness" db:"avg_happiness"`
	AvgNeeds        float64 `json:"avg_needs" db:"avg_needs"`
	Treasury        int64   `json:"treasury" db:"treasury"`
	DisruptedChains int     `json:"disrupted_chains" db:"disrupted_chains"`
	PowerDeficit    bool    `json:"power_deficit" db:"-"`
	WaterDeficit    bool    `json:"water_deficit" db:"-"`
}

type statsRowRaw struct {
	StatsRow
	PowerDeficitInt int `db:"power_deficit"`
	WaterDeficitInt int `db:"water_deficit"`
}

// StatsHistory returns snapshots with tick in [fromTick, toTick], most
// recent first, capped at limit (default 30 when limit <= 0).
func (s *Store) StatsHistory(fromTick, toTick uint64, limit int) ([]StatsRow, error) {
	if limit <= 0 {
		limit = 30
	}
	var rows []statsRowRaw
	err := s.conn.Select(&rows,
		`SELECT tick, population, building_count, avg_happiness, avg_needs, treasury,
		 disrupted_chains, power_deficit, water_deficit
		 FROM stats_history WHERE tick >= ? AND tick <= ? ORDER BY tick DESC LIMIT ?`,
		fromTick, toTick, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load stats history: %w", err)
	}
	out := make([]StatsRow, len(rows))
	for i, r := range rows {
		r.StatsRow.PowerDeficit = r.PowerDeficitInt != 0
		r.StatsRow.WaterDeficit = r.WaterDeficitInt != 0
		out[i] = r.StatsRow
	}
	return out, nil
}

// RecordEvents appends events to the log.
func (s *Store) RecordEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex("INSERT INTO events (tick, category, description) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range events {
		if _, err := stmt.Exec(e.Tick, e.Category, e.Description); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecentEvents returns the most recent limit events, newest first.
func (s *Store) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := s.conn.Select(&events,
		"SELECT tick, category, description FROM events ORDER BY id DESC LIMIT ?", limit)
	return events, err
}

// TrimOldEvents removes events older than keepTicks relative to currentTick.
func (s *Store) TrimOldEvents(currentTick, keepTicks uint64) (int64, error) {
	if currentTick <= keepTicks {
		return 0, nil
	}
	cutoff := currentTick - keepTicks
	result, err := s.conn.Exec("DELETE FROM events WHERE tick < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ActionResult is one executed action's outcome, as recorded for telemetry.
type ActionResult struct {
	Tick   uint64
	Kind   actions.Kind
	OK     bool
	Reason string
}

// RecordActionResults appends a batch of action outcomes.
func (s *Store) RecordActionResults(results []ActionResult) error {
	if len(results) == 0 {
		return nil
	}
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex("INSERT INTO action_results (tick, kind, ok, reason) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range results {
		if _, err := stmt.Exec(r.Tick, r.Kind, boolToInt(r.OK), r.Reason); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// FailureCounts returns the number of failed action results per kind, over
// the trailing window [currentTick-window, currentTick] — useful for an
// agent oracle deciding whether a kind of action is worth retrying.
func (s *Store) FailureCounts(currentTick, window uint64) (map[actions.Kind]int, error) {
	from := uint64(0)
	if currentTick > window {
		from = currentTick - window
	}
	type row struct {
		Kind  actions.Kind `db:"kind"`
		Count int          `db:"count"`
	}
	var rows []row
	err := s.conn.Select(&rows,
		"SELECT kind, COUNT(*) as count FROM action_results WHERE tick >= ? AND tick <= ? AND ok = 0 GROUP BY kind",
		from, currentTick,
	)
	if err != nil {
		return nil, err
	}
	out := make(map[actions.Kind]int, len(rows))
	for _, r := range rows {
		out[r.Kind] = r.Count
	}
	return out, nil
}

// SaveMeta stores an arbitrary key-value pair, e.g. the tick telemetry was
// last flushed through.
func (s *Store) SaveMeta(key string, value any) error {
	buf, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.conn.Exec("INSERT OR REPLACE INTO telemetry_meta (key, value) VALUES (?, ?)", key, string(buf))
	return err
}

// GetMeta retrieves a metadata value into dst.
func (s *Store) GetMeta(key string, dst any) error {
	var raw string
	if err := s.conn.Get(&raw, "SELECT value FROM telemetry_meta WHERE key = ?", key); err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), dst)
}

// Flush is a convenience wrapper recording one tick's stats and any events
// that occurred alongside it, logging failures rather than propagating them
// — telemetry is best-effort and must never stall the sim loop.
func (s *Store) Flush(tick uint64, st engine.Stats, events []engine.Event) {
	if err := s.RecordStats(tick, st); err != nil {
		slog.Warn("telemetry: record stats failed", "tick", tick, "err", err)
	}
	if err := s.RecordEvents(events); err != nil {
		slog.Warn("telemetry: record events failed", "tick", tick, "err", err)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
