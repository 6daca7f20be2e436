// Package obslog is the durable observation log: an append-only SQLite
// record of every accepted quantity event, used for daily tallies,
// resync and audit.
package obslog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/emmett/conteo/internal/state"
	"github.com/emmett/conteo/internal/vocab"
)

const schema = `
CREATE TABLE IF NOT EXISTS observations (
	id      TEXT PRIMARY KEY,
	at      TEXT NOT NULL,
	finca   TEXT NOT NULL,
	bloque  TEXT NOT NULL,
	cama    TEXT NOT NULL,
	stage   TEXT NOT NULL,
	value   INTEGER NOT NULL,
	synced  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_observations_location
	ON observations (finca, bloque, cama);
`

// Store is the SQLite-backed observation log. Records are only ever
// inserted; an undo shows up as a compensating negative-value record.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the log database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsDuplicate reports whether err came from inserting an observation
// whose id is already present. Retried sync batches hit this path.
func IsDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// NormalizeCama zero-pads numeric cama identifiers to two digits so
// that "3" and "03" aggregate to the same bed. Letter suffixes are
// preserved ("3a" -> "03a"). Applied at the storage boundary only; the
// in-memory state keeps the value as spoken.
func NormalizeCama(cama string) string {
	digits := 0
	for digits < len(cama) && cama[digits] >= '0' && cama[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return cama
	}
	n, err := strconv.Atoi(cama[:digits])
	if err != nil {
		return cama
	}
	return fmt.Sprintf("%02d%s", n, cama[digits:])
}

// Append inserts one observation record. IDs are assigned here when the
// record does not carry one already (sync ingest keeps the origin ID).
func (s *Store) Append(ctx context.Context, o state.Observation) error {
	id := o.ID
	if id == "" {
		id = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO observations (id, at, finca, bloque, cama, stage, value)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		o.At.UTC().Format(time.RFC3339Nano),
		o.Finca, o.Bloque, NormalizeCama(o.Cama), o.Stage, o.Value,
	)
	if err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}
	return nil
}

// CountsForDay sums per-stage values for one bed on the day containing
// asOf, with the day boundary taken in tz (the timezone where the data
// was recorded, not wall-clock local time). Records with an unknown
// stage or an unparseable timestamp are skipped individually and
// reported in the skipped count rather than aborting the recomputation.
func (s *Store) CountsForDay(ctx context.Context, finca, bloque, cama string, asOf time.Time, tz *time.Location) (map[string]int, int, error) {
	local := asOf.In(tz)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tz)
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := s.db.QueryContext(ctx,
		`SELECT at, stage, value FROM observations
		 WHERE finca = ? AND bloque = ? AND cama = ?`,
		finca, bloque, NormalizeCama(cama),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int, len(vocab.Stages))
	for _, st := range vocab.Stages {
		counts[st] = 0
	}
	skipped := 0
	for rows.Next() {
		var at, stage string
		var value int
		if err := rows.Scan(&at, &stage, &value); err != nil {
			skipped++
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			skipped++
			continue
		}
		if ts.Before(dayStart) || !ts.Before(dayEnd) {
			continue
		}
		if _, ok := counts[stage]; !ok {
			skipped++
			continue
		}
		counts[stage] += value
	}
	if err := rows.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scan observations: %w", err)
	}
	// Compensating records can drive a stage below zero when the matching
	// positive record predates the window; clamp rather than report debt.
	for st, v := range counts {
		if v < 0 {
			counts[st] = 0
		}
	}
	return counts, skipped, nil
}

// List returns all observations, oldest first.
func (s *Store) List(ctx context.Context) ([]state.Observation, error) {
	return s.query(ctx, `SELECT id, at, finca, bloque, cama, stage, value FROM observations ORDER BY at`)
}

// Unsynced returns the observations not yet pushed to the sync server,
// oldest first.
func (s *Store) Unsynced(ctx context.Context) ([]state.Observation, error) {
	return s.query(ctx, `SELECT id, at, finca, bloque, cama, stage, value FROM observations WHERE synced = 0 ORDER BY at`)
}

// MarkSynced flags the given records as pushed.
func (s *Store) MarkSynced(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `UPDATE observations SET synced = 1 WHERE id = ?`, id); err != nil {
			return fmt.Errorf("mark synced %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]state.Observation, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var obs []state.Observation
	for rows.Next() {
		var o state.Observation
		var at string
		if err := rows.Scan(&o.ID, &at, &o.Finca, &o.Bloque, &o.Cama, &o.Stage, &o.Value); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			// Keep the record visible for audit even with a broken
			// timestamp; the zero time marks it.
			ts = time.Time{}
		}
		o.At = ts
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan observations: %w", err)
	}
	return obs, nil
}
