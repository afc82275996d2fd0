// Package ledger records build history in a SQLite database kept under the
// project root. It replaces the sentinel-file memoization of the original
// shell tooling: provisioning is keyed by a content hash of the requirements
// manifest, so editing the manifest invalidates the memo without anyone
// having to remember to delete a marker file.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Ledger is the SQLite-backed build history store.
type Ledger struct {
	db   *sql.DB
	path string
}

// StageRecord is one stage outcome within a run.
type StageRecord struct {
	Stage    string
	Tool     string
	Status   string // "ok", "failed" or "skipped"
	Duration time.Duration
	Detail   string
}

// Run statuses.
const (
	RunRunning = "running"
	RunOK      = "ok"
	RunFailed  = "failed"
)

// Open creates (if needed) and opens the ledger database under dataDir.
func Open(dataDir string) (*Ledger, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "ledger.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	l := &Ledger{db: db, path: dbPath}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating ledger schema: %w", err)
	}
	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.path
}

func (l *Ledger) migrate() error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS provisions (
			manifest_hash  TEXT PRIMARY KEY,
			provisioned_at DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			project     TEXT NOT NULL,
			status      TEXT NOT NULL,
			started_at  DATETIME NOT NULL,
			finished_at DATETIME
		);
		CREATE TABLE IF NOT EXISTS stages (
			run_id      TEXT NOT NULL REFERENCES runs(id),
			seq         INTEGER NOT NULL,
			stage       TEXT NOT NULL,
			tool        TEXT NOT NULL,
			status      TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			detail      TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		);
	`)
	return err
}

// Provisioned reports whether a successful provision with this manifest hash
// has been recorded.
func (l *Ledger) Provisioned(ctx context.Context, manifestHash string) (bool, error) {
	var n int
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM provisions WHERE manifest_hash = ?`, manifestHash).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying provisions: %w", err)
	}
	return n > 0, nil
}

// RecordProvision stores a successful provision of the given manifest hash.
func (l *Ledger) RecordProvision(ctx context.Context, manifestHash string, at time.Time) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO provisions (manifest_hash, provisioned_at) VALUES (?, ?)
		 ON CONFLICT(manifest_hash) DO UPDATE SET provisioned_at = excluded.provisioned_at`,
		manifestHash, at.UTC())
	if err != nil {
		return fmt.Errorf("recording provision: %w", err)
	}
	return nil
}

// BeginRun opens a new run record.
func (l *Ledger) BeginRun(ctx context.Context, id, project string, at time.Time) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, project, status, started_at) VALUES (?, ?, ?, ?)`,
		id, project, RunRunning, at.UTC())
	if err != nil {
		return fmt.Errorf("beginning run: %w", err)
	}
	return nil
}

// RecordStage appends a stage outcome to a run.
func (l *Ledger) RecordStage(ctx context.Context, runID string, rec StageRecord) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO stages (run_id, seq, stage, tool, status, duration_ms, detail)
		 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM stages WHERE run_id = ?), ?, ?, ?, ?, ?)`,
		runID, runID, rec.Stage, rec.Tool, rec.Status, rec.Duration.Milliseconds(), rec.Detail)
	if err != nil {
		return fmt.Errorf("recording stage %q: %w", rec.Stage, err)
	}
	return nil
}

// FinishRun closes out a run with its final status.
func (l *Ledger) FinishRun(ctx context.Context, id, status string, at time.Time) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`, status, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

// LatestRun returns the ID and status of the most recently started run.
// sql.ErrNoRows is returned when the ledger holds no runs yet.
func (l *Ledger) LatestRun(ctx context.Context) (id, status string, err error) {
	err = l.db.QueryRowContext(ctx,
		`SELECT id, status FROM runs ORDER BY started_at DESC, id DESC LIMIT 1`).Scan(&id, &status)
	return id, status, err
}

// Stages returns the recorded stage outcomes of a run in order.
func (l *Ledger) Stages(ctx context.Context, runID string) ([]StageRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT stage, tool, status, duration_ms, detail FROM stages WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying stages: %w", err)
	}
	defer rows.Close()

	var records []StageRecord
	for rows.Next() {
		var rec StageRecord
		var ms int64
		if err := rows.Scan(&rec.Stage, &rec.Tool, &rec.Status, &ms, &rec.Detail); err != nil {
			return nil, fmt.Errorf("scanning stage row: %w", err)
		}
		rec.Duration = time.Duration(ms) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}
