// Package journal persists geocoded entries as they are resolved, so an
// interrupted run can resume without re-querying the provider.
package journal

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/storegeo/internal/directory"
)

// Journal is a SQLite-backed append log of geocoded entries.
type Journal struct {
	db    *sql.DB
	runID string
}

// Open opens the journal database at path and configures WAL mode.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "journal: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "journal: exec %s", pragma)
		}
	}
	return &Journal{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL DEFAULT 'running',
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE TABLE IF NOT EXISTS entries (
	address      TEXT PRIMARY KEY,
	lat          REAL NOT NULL,
	lon          REAL NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	run_id       TEXT NOT NULL REFERENCES runs(id),
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_entries_run_id ON entries(run_id);
`

// Migrate creates the journal tables if they do not exist.
func (j *Journal) Migrate(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "journal: migrate")
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// RunID returns the ID of the current run, or "" before StartRun.
func (j *Journal) RunID() string {
	return j.runID
}

// StartRun registers a new run. Entries recorded afterwards are tagged
// with its ID.
func (j *Journal) StartRun(ctx context.Context) (string, error) {
	id := uuid.New().String()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, started_at) VALUES (?, 'running', ?)`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "journal: insert run")
	}
	j.runID = id
	return id, nil
}

// FinishRun marks the current run with status.
func (j *Journal) FinishRun(ctx context.Context, status string) error {
	if j.runID == "" {
		return eris.New("journal: no run started")
	}
	res, err := j.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`,
		status, time.Now().UTC(), j.runID,
	)
	if err != nil {
		return eris.Wrapf(err, "journal: finish run %s", j.runID)
	}
	return checkRowsAffected(res, "run", j.runID)
}

// Record stores the entry for address, replacing any earlier one.
func (j *Journal) Record(ctx context.Context, address string, e directory.Entry) error {
	if j.runID == "" {
		return eris.New("journal: no run started")
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO entries (address, lat, lon, display_name, run_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(address) DO UPDATE SET
			lat = excluded.lat,
			lon = excluded.lon,
			display_name = excluded.display_name,
			run_id = excluded.run_id,
			created_at = excluded.created_at`,
		address, e.Latitude, e.Longitude, e.DisplayName, j.runID, time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "journal: record %q", address)
	}
	return nil
}

// Load returns every journaled entry.
func (j *Journal) Load(ctx context.Context) (directory.Directory, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT address, lat, lon, display_name FROM entries ORDER BY address`)
	if err != nil {
		return nil, eris.Wrap(err, "journal: query entries")
	}
	defer rows.Close() //nolint:errcheck

	dir := directory.Directory{}
	for rows.Next() {
		var (
			address string
			e       directory.Entry
		)
		if err := rows.Scan(&address, &e.Latitude, &e.Longitude, &e.DisplayName); err != nil {
			return nil, eris.Wrap(err, "journal: scan entry")
		}
		dir[address] = e
	}
	return dir, eris.Wrap(rows.Err(), "journal: iterate entries")
}

// Clear deletes every journaled entry. Run history is kept.
func (j *Journal) Clear(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, `DELETE FROM entries`)
	return eris.Wrap(err, "journal: clear entries")
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "journal: rows affected")
	}
	if n == 0 {
		return eris.Errorf("journal: %s not found: %s", entity, id)
	}
	return nil
}
