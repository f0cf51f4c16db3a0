package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
	"github.com/cognicore/catsuggest/pkg/catsuggest/jobs"
	"github.com/cognicore/catsuggest/pkg/catsuggest/progress"
	"github.com/cognicore/catsuggest/pkg/catsuggest/sample"
)

// sqliteStore implements jobs.Store using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// jobs table if needed.
func OpenSQLite(ctx context.Context, path string) (jobs.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection serializes progress writes from concurrent workers
	db.SetMaxOpenConns(1)

	// Enable WAL mode so status polling does not block workers
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	state TEXT NOT NULL,
	keywords TEXT NOT NULL,
	result_limit INTEGER NOT NULL,
	current INTEGER NOT NULL DEFAULT 0,
	total INTEGER NOT NULL DEFAULT 100,
	status TEXT NOT NULL DEFAULT '',
	result TEXT,
	dropped INTEGER NOT NULL DEFAULT 0,
	duplicates INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS jobs_state ON jobs(state);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Create inserts a pending job
func (s *sqliteStore) Create(ctx context.Context, id string, req jobs.Request) error {
	keywords, err := json.Marshal(req.Keywords)
	if err != nil {
		return err
	}
	ts := now()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO jobs (id, state, keywords, result_limit, total, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, string(jobs.StatePending), string(keywords), req.Limit, progress.Total, ts, ts)
	if err != nil {
		return fmt.Errorf("create job %s: %w", id, err)
	}
	return nil
}

// Get loads one job
func (s *sqliteStore) Get(ctx context.Context, id string) (jobs.Job, error) {
	const stmt = `
SELECT id, state, keywords, result_limit, current, total, status, result, dropped, duplicates, error, created_at, updated_at
FROM jobs WHERE id = ?`

	var (
		j                jobs.Job
		state, keywords  string
		result           sql.NullString
		created, updated string
	)
	err := s.db.QueryRowContext(ctx, stmt, id).Scan(
		&j.ID, &state, &keywords, &j.Request.Limit,
		&j.Progress.Current, &j.Progress.Total, &j.Progress.Status,
		&result, &j.Dropped, &j.Duplicates, &j.Error, &created, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return jobs.Job{}, fmt.Errorf("job %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return jobs.Job{}, err
	}

	j.State = jobs.State(state)
	if err := json.Unmarshal([]byte(keywords), &j.Request.Keywords); err != nil {
		return jobs.Job{}, fmt.Errorf("job %s keywords: %w", id, err)
	}
	if result.Valid && result.String != "" {
		if err := json.Unmarshal([]byte(result.String), &j.Result); err != nil {
			return jobs.Job{}, fmt.Errorf("job %s result: %w", id, err)
		}
	}
	j.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	j.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return j, nil
}

// Report stores progress unless the job already finished
func (s *sqliteStore) Report(ctx context.Context, id string, p progress.State) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE jobs SET state = ?, current = ?, total = ?, status = ?, updated_at = ?
WHERE id = ? AND state IN (?, ?)`,
		string(jobs.StateProgress), p.Current, p.Total, p.Status, now(),
		id, string(jobs.StatePending), string(jobs.StateProgress))
	if err != nil {
		return err
	}
	return s.checkExists(ctx, res, id)
}

// Complete stores the final result
func (s *sqliteStore) Complete(ctx context.Context, id string, result []sample.Entry, dropped, duplicates int, p progress.State) error {
	if result == nil {
		result = []sample.Entry{}
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE jobs SET state = ?, current = ?, total = ?, status = ?, result = ?, dropped = ?, duplicates = ?, updated_at = ?
WHERE id = ?`,
		string(jobs.StateSuccess), p.Current, p.Total, p.Status, string(data), dropped, duplicates, now(), id)
	if err != nil {
		return err
	}
	return s.checkExists(ctx, res, id)
}

// Fail marks the job failed with a readable cause
func (s *sqliteStore) Fail(ctx context.Context, id string, cause string) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE jobs SET state = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(jobs.StateFailure), cause, now(), id)
	if err != nil {
		return err
	}
	return s.checkExists(ctx, res, id)
}

// checkExists turns "no row updated" into ErrNotFound when the job is unknown.
// A finished job ignoring a progress report is not an error.
func (s *sqliteStore) checkExists(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil || n > 0 {
		return err
	}
	var one int
	err = s.db.QueryRowContext(ctx, "SELECT 1 FROM jobs WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("job %s: %w", id, internalerr.ErrNotFound)
	}
	return err
}
