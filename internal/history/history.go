// Package history stores the results of past runs in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/idelchi/dirsize/internal/dirsize"
)

// ErrRunNotFound is returned by Load when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// DB represents a history database connection.
type DB struct {
	*sql.DB
}

// Run summarizes one stored run.
type Run struct {
	ID        int64         `json:"id"`
	Root      string        `json:"root"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
	Size      int64         `json:"size"`
	FileCount int64         `json:"file_count"`
	Entries   int           `json:"entries"`
	Errors    int           `json:"errors"`
	Workers   int           `json:"workers"`
	Walker    string        `json:"walker"`
}

// Open opens or creates the database at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database %q: %w", path, err)
	}

	db := &DB{sqlDB}
	if err := db.initialize(); err != nil {
		sqlDB.Close()

		return nil, fmt.Errorf("initializing history database %q: %w", path, err)
	}

	return db, nil
}

// initialize creates the necessary tables if they don't exist.
func (db *DB) initialize() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			root TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			elapsed INTEGER NOT NULL,
			total_size INTEGER NOT NULL,
			total_files INTEGER NOT NULL,
			workers INTEGER NOT NULL,
			walker TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS entries (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			path TEXT NOT NULL,
			size INTEGER NOT NULL,
			file_count INTEGER NOT NULL,
			mod_time INTEGER NOT NULL,
			PRIMARY KEY (run_id, seq)
		);
		CREATE TABLE IF NOT EXISTS errors (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			path TEXT NOT NULL,
			description TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		);
		CREATE INDEX IF NOT EXISTS idx_runs_root ON runs(root, started_at);
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
	`)

	return err
}

// unixNano maps the zero time to 0 so it survives a round trip.
func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}

	return time.Unix(0, n)
}

// Save stores res in a single transaction and returns the new run id.
func (db *DB) Save(ctx context.Context, res *dirsize.Result) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	out, err := tx.ExecContext(ctx, `
		INSERT INTO runs (root, started_at, elapsed, total_size, total_files, workers, walker)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, res.Root, unixNano(res.StartedAt), int64(res.Totals.Elapsed),
		res.Totals.Size, res.Totals.FileCount, res.Workers, res.Walker)
	if err != nil {
		return 0, fmt.Errorf("saving run: %w", err)
	}

	id, err := out.LastInsertId()
	if err != nil {
		return 0, err
	}

	entryStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (run_id, seq, path, size, file_count, mod_time)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer entryStmt.Close()

	for i, e := range res.Entries {
		if _, err := entryStmt.ExecContext(ctx, id, i, e.Path, e.Size, e.FileCount, unixNano(e.ModTime)); err != nil {
			return 0, fmt.Errorf("saving entry %q: %w", e.Path, err)
		}
	}

	errStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO errors (run_id, seq, path, description)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer errStmt.Close()

	for i, e := range res.Errors {
		if _, err := errStmt.ExecContext(ctx, id, i, e.Path, e.Description); err != nil {
			return 0, fmt.Errorf("saving error for %q: %w", e.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return id, nil
}

// List returns the most recent runs, newest first. An empty root lists runs of
// every root; limit <= 0 means no limit.
func (db *DB) List(ctx context.Context, root string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.QueryContext(ctx, `
		SELECT r.id, r.root, r.started_at, r.elapsed, r.total_size, r.total_files, r.workers, r.walker,
			(SELECT COUNT(*) FROM entries e WHERE e.run_id = r.id),
			(SELECT COUNT(*) FROM errors x WHERE x.run_id = r.id)
		FROM runs r
		WHERE ? = '' OR r.root = ?
		ORDER BY r.started_at DESC, r.id DESC
		LIMIT ?
	`, root, root, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run

	for rows.Next() {
		var (
			run              Run
			started, elapsed int64
		)

		if err := rows.Scan(&run.ID, &run.Root, &started, &elapsed, &run.Size, &run.FileCount,
			&run.Workers, &run.Walker, &run.Entries, &run.Errors); err != nil {
			return nil, err
		}

		run.StartedAt = fromUnixNano(started)
		run.Elapsed = time.Duration(elapsed)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Load reconstructs the stored result of run id.
func (db *DB) Load(ctx context.Context, id int64) (*dirsize.Result, error) {
	var (
		res              dirsize.Result
		started, elapsed int64
	)

	err := db.QueryRowContext(ctx, `
		SELECT root, started_at, elapsed, total_size, total_files, workers, walker
		FROM runs WHERE id = ?
	`, id).Scan(&res.Root, &started, &elapsed, &res.Totals.Size, &res.Totals.FileCount, &res.Workers, &res.Walker)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("loading run %d: %w", id, err)
	}

	res.StartedAt = fromUnixNano(started)
	res.Totals.Elapsed = time.Duration(elapsed)

	if res.Entries, err = db.loadEntries(ctx, id); err != nil {
		return nil, err
	}

	if res.Errors, err = db.loadErrors(ctx, id); err != nil {
		return nil, err
	}

	return &res, nil
}

func (db *DB) loadEntries(ctx context.Context, id int64) ([]dirsize.Entry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT path, size, file_count, mod_time FROM entries WHERE run_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("loading entries of run %d: %w", id, err)
	}
	defer rows.Close()

	entries := []dirsize.Entry{}

	for rows.Next() {
		var (
			e       dirsize.Entry
			modTime int64
		)

		if err := rows.Scan(&e.Path, &e.Size, &e.FileCount, &modTime); err != nil {
			return nil, err
		}

		e.ModTime = fromUnixNano(modTime)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (db *DB) loadErrors(ctx context.Context, id int64) ([]dirsize.ErrorEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT path, description FROM errors WHERE run_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("loading errors of run %d: %w", id, err)
	}
	defer rows.Close()

	errs := []dirsize.ErrorEntry{}

	for rows.Next() {
		var e dirsize.ErrorEntry
		if err := rows.Scan(&e.Path, &e.Description); err != nil {
			return nil, err
		}

		errs = append(errs, e)
	}

	return errs, rows.Err()
}
