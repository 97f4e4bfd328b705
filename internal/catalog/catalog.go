// Package catalog keeps a sqlite ledger of conversion runs: which files
// each tool processed, how many points survived and what went wrong.
package catalog

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/splat-tools/internal/monitoring"
	"github.com/banshee-data/splat-tools/internal/splat"
	"github.com/banshee-data/splat-tools/internal/timeutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Catalog wraps the ledger database.
type Catalog struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Run is one invocation of a splat tool.
type Run struct {
	RunID        string
	Tool         string
	Ratio        float64
	MaxPoints    *int
	StartedAt    time.Time
	FinishedAt   *time.Time
	FilesFailed  int
	FilesTotal   int
	PointsKept   int64
	BytesWritten int64
}

// FileRecord is the outcome of one file within a run.
type FileRecord struct {
	FileID     int64
	RunID      string
	InputPath  string
	OutputPath string
	PointsIn   int
	PointsKept int
	BytesOut   int
	Error      string
	RecordedAt time.Time
}

// Open opens (creating if needed) the catalog at path and applies any
// pending migrations.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	c := &Catalog{db: db, clock: timeutil.RealClock{}}
	if err := c.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// SetClock replaces the clock used for run and file timestamps.
func (c *Catalog) SetClock(clock timeutil.Clock) { c.clock = clock }

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// MigrateUp runs all pending embedded migrations.
func (c *Catalog) MigrateUp() error {
	m, err := c.newMigrate()
	if err != nil {
		return err
	}
	// m is not closed: closing it would close the shared *sql.DB.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateVersion returns the applied schema version and dirty state.
func (c *Catalog) MigrateVersion() (uint, bool, error) {
	m, err := c.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (c *Catalog) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(c.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

// migrateLogger routes migrate output through monitoring.Logf.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Logf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }

// BeginRun records the start of a tool invocation and returns its run ID.
func (c *Catalog) BeginRun(tool string, lim splat.Limit) (string, error) {
	runID := uuid.New().String()
	var maxPoints interface{}
	if lim.MaxPoints != nil {
		maxPoints = *lim.MaxPoints
	}
	_, err := c.db.Exec(
		`INSERT INTO splat_runs (run_id, tool, ratio, max_points, started_unix_nanos) VALUES (?, ?, ?, ?, ?)`,
		runID, tool, lim.Ratio, maxPoints, c.clock.Now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return runID, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// RecordFile stores the outcome of one batch job outside of FinishRun.
func (c *Catalog) RecordFile(runID string, r splat.Result) error {
	return insertFile(c.db, runID, r, c.clock.Now().UnixNano())
}

func insertFile(db execer, runID string, r splat.Result, now int64) error {
	var errText, output interface{}
	if r.Err != nil {
		errText = r.Err.Error()
	}
	if r.Stats.Output != "" {
		output = r.Stats.Output
	}
	_, err := db.Exec(
		`INSERT INTO splat_files (run_id, input_path, output_path, points_in, points_kept, bytes_out, error_text, recorded_unix_nanos)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, r.Job.Input, output, r.Stats.Points, r.Stats.Kept, r.Stats.Bytes, errText, now,
	)
	if err != nil {
		return fmt.Errorf("insert file %s: %w", r.Job.Input, err)
	}
	return nil
}

// FinishRun records every result of a batch and closes the run in one
// transaction.
func (c *Catalog) FinishRun(runID string, results []splat.Result) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := c.clock.Now().UnixNano()
	for _, r := range results {
		if err := insertFile(tx, runID, r, now); err != nil {
			return err
		}
	}

	res, err := tx.Exec(
		`UPDATE splat_runs SET finished_unix_nanos = ?, files_failed = ? WHERE run_id = ?`,
		now, splat.Failed(results), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run: unknown run %s", runID)
	}
	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first, with per-run totals.
func (c *Catalog) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := c.db.Query(`
		SELECT r.run_id, r.tool, r.ratio, r.max_points, r.started_unix_nanos,
		       r.finished_unix_nanos, r.files_failed,
		       COUNT(f.file_id), COALESCE(SUM(f.points_kept), 0), COALESCE(SUM(f.bytes_out), 0)
		FROM splat_runs r
		LEFT JOIN splat_files f ON f.run_id = r.run_id
		GROUP BY r.run_id
		ORDER BY r.started_unix_nanos DESC, r.rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			maxPts   sql.NullInt64
			started  int64
			finished sql.NullInt64
		)
		if err := rows.Scan(&run.RunID, &run.Tool, &run.Ratio, &maxPts, &started,
			&finished, &run.FilesFailed, &run.FilesTotal, &run.PointsKept, &run.BytesWritten); err != nil {
			return nil, err
		}
		if maxPts.Valid {
			mp := int(maxPts.Int64)
			run.MaxPoints = &mp
		}
		run.StartedAt = time.Unix(0, started)
		if finished.Valid {
			ft := time.Unix(0, finished.Int64)
			run.FinishedAt = &ft
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FilesForRun returns the file records of a run in insertion order.
func (c *Catalog) FilesForRun(runID string) ([]FileRecord, error) {
	rows, err := c.db.Query(`
		SELECT file_id, run_id, input_path, output_path, points_in, points_kept,
		       bytes_out, error_text, recorded_unix_nanos
		FROM splat_files WHERE run_id = ? ORDER BY file_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var (
			f        FileRecord
			output   sql.NullString
			errText  sql.NullString
			recorded int64
		)
		if err := rows.Scan(&f.FileID, &f.RunID, &f.InputPath, &output, &f.PointsIn,
			&f.PointsKept, &f.BytesOut, &errText, &recorded); err != nil {
			return nil, err
		}
		f.OutputPath = output.String
		f.Error = errText.String
		f.RecordedAt = time.Unix(0, recorded)
		files = append(files, f)
	}
	return files, rows.Err()
}
