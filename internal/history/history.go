// Package history archives finished jobs to SQLite. The archive is
// observability only: live job state stays in the in-memory store, and a
// disabled or broken archive never fails a render.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"slidecast/internal/jobs"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when schema.sql changes. Mismatched databases are
// rejected; delete the file to start fresh.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different version.
var ErrSchemaMismatch = errors.New("history schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Entry is one archived job.
type Entry struct {
	JobID        string
	Status       jobs.Status
	Message      string
	OutputPath   string
	ImageCount   int
	HasSubtitles bool
	SubmittedAt  time.Time
	FinishedAt   *time.Time
}

// Archive persists job submissions and outcomes.
type Archive struct {
	db   *sql.DB
	path string
}

// Open connects to (or creates) the archive database at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	archive := &Archive{db: db, path: path}
	if err := archive.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return archive, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// RecordSubmission inserts a new row when a job is accepted.
func (a *Archive) RecordSubmission(ctx context.Context, job *jobs.Job, imageCount int, hasSubtitles bool) error {
	return a.execWithRetry(ctx,
		`INSERT OR REPLACE INTO job_history
		   (job_id, status, message, output_path, image_count, has_subtitles, submitted_at, finished_at)
		 VALUES (?, ?, ?, '', ?, ?, ?, NULL)`,
		job.ID, string(job.Status), job.Message, imageCount, boolToInt(hasSubtitles),
		job.CreatedAt.UTC().Format(time.RFC3339Nano))
}

// RecordOutcome updates a row when its job reaches a terminal state.
func (a *Archive) RecordOutcome(ctx context.Context, job *jobs.Job) error {
	return a.execWithRetry(ctx,
		`UPDATE job_history
		    SET status = ?, message = ?, output_path = ?, finished_at = ?
		  WHERE job_id = ?`,
		string(job.Status), job.Message, job.OutputPath,
		job.UpdatedAt.UTC().Format(time.RFC3339Nano), job.ID)
}

// List returns archived jobs newest first, at most limit rows. limit <= 0
// returns everything.
func (a *Archive) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT job_id, status, message, output_path, image_count, has_subtitles, submitted_at, finished_at
	            FROM job_history ORDER BY submitted_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	ctx = ensureContext(ctx)
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry      Entry
			status     string
			hasSubs    int
			submitted  string
			finishedAt sql.NullString
		)
		if err := rows.Scan(&entry.JobID, &status, &entry.Message, &entry.OutputPath,
			&entry.ImageCount, &hasSubs, &submitted, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entry.Status = jobs.Status(status)
		entry.HasSubtitles = hasSubs != 0
		if ts, err := time.Parse(time.RFC3339Nano, submitted); err == nil {
			entry.SubmittedAt = ts
		}
		if finishedAt.Valid {
			if ts, err := time.Parse(time.RFC3339Nano, finishedAt.String); err == nil {
				entry.FinishedAt = &ts
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (a *Archive) initSchema(ctx context.Context) error {
	var tableExists int
	err := a.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return a.createSchema(ctx)
	}

	var version int
	if err := a.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, a.path)
	}
	return nil
}

func (a *Archive) createSchema(ctx context.Context) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

func (a *Archive) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := a.db.ExecContext(ctx, query, args...)
		return err
	})
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
