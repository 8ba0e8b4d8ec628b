package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/hrmcheck/api/schemas"
	"github.com/xkilldash9x/hrmcheck/internal/observability"
)

// ErrRunNotFound is returned by GetRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Schema creates the run history tables. It is safe to apply repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    target      TEXT NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL,
    total       INTEGER NOT NULL,
    passed      INTEGER NOT NULL,
    failed      INTEGER NOT NULL,
    errors      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS outcomes (
    run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    position    INTEGER NOT NULL,
    scenario    TEXT NOT NULL,
    description TEXT NOT NULL,
    status      TEXT NOT NULL,
    condition   TEXT NOT NULL,
    message     TEXT NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL,
    duration_ns BIGINT NOT NULL,
    screenshot  BYTEA,
    PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS runs_started_at_idx ON runs (started_at DESC);
`

var outcomeColumns = []string{"run_id", "position", "scenario", "description", "status", "condition", "message", "started_at", "duration_ns", "screenshot"}

// Store persists runs and their outcomes in PostgreSQL.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if logger == nil {
		logger = observability.GetLogger()
	}
	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// Connect opens a pool for url, applies the schema and returns the store with
// a cleanup function that closes the pool.
func Connect(ctx context.Context, url string, logger *zap.Logger) (*Store, func(), error) {
	if url == "" {
		return nil, nil, fmt.Errorf("database URL is not configured (HRMCHECK_DATABASE_URL)")
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s, err := New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	cleanup := func() {
		pool.Close()
		s.log.Debug("Database connection pool closed.")
	}
	return s, cleanup, nil
}

// Migrate applies Schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// SaveRun writes the run and all of its outcomes in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *schemas.Run) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("cannot save a run without an ID")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback after Commit returns ErrTxClosed, which is expected.
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	sum := run.Summary()
	_, err = tx.Exec(ctx, `
        INSERT INTO runs (id, target, started_at, finished_at, total, passed, failed, errors)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
    `, run.ID, run.Target, run.StartedAt.UTC(), run.FinishedAt.UTC(), sum.Total, sum.Passed, sum.Failed, sum.Errors)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	if len(run.Outcomes) > 0 {
		if err := s.persistOutcomes(ctx, tx, run); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.log.Debug("Saved run.", zap.String(observability.KeyRunID, run.ID), zap.Int("outcomes", len(run.Outcomes)))
	return nil
}

func (s *Store) persistOutcomes(ctx context.Context, tx pgx.Tx, run *schemas.Run) error {
	rows := make([][]interface{}, len(run.Outcomes))
	for i, o := range run.Outcomes {
		var screenshot interface{}
		if len(o.Screenshot) > 0 {
			screenshot = o.Screenshot
		}
		rows[i] = []interface{}{
			run.ID, i, o.Scenario, o.Description,
			string(o.Status), o.Condition, o.Message,
			o.StartedAt.UTC(), int64(o.Duration),
			screenshot,
		}
	}

	copyCount, err := tx.CopyFrom(ctx, pgx.Identifier{"outcomes"}, outcomeColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy outcomes: %w", err)
	}
	if int(copyCount) != len(rows) {
		return fmt.Errorf("mismatch in copied outcomes count: expected %d, got %d", len(rows), copyCount)
	}
	return nil
}

// GetRun loads a stored run with its outcomes in execution order.
func (s *Store) GetRun(ctx context.Context, runID string) (*schemas.Run, error) {
	run := &schemas.Run{ID: runID}
	err := s.pool.QueryRow(ctx, `
        SELECT target, started_at, finished_at
        FROM runs
        WHERE id = $1;
    `, runID).Scan(&run.Target, &run.StartedAt, &run.FinishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
        SELECT scenario, description, status, condition, message, started_at, duration_ns, screenshot
        FROM outcomes
        WHERE run_id = $1
        ORDER BY position ASC;
    `, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o schemas.Outcome
		var status string
		var durationNS int64
		if err := rows.Scan(&o.Scenario, &o.Description, &status, &o.Condition, &o.Message, &o.StartedAt, &durationNS, &o.Screenshot); err != nil {
			return nil, fmt.Errorf("failed to scan outcome row: %w", err)
		}
		o.Status = schemas.Status(status)
		o.Duration = time.Duration(durationNS)
		run.Outcomes = append(run.Outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]schemas.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
        SELECT id, target, started_at, finished_at, total, passed, failed, errors
        FROM runs
        ORDER BY started_at DESC
        LIMIT $1;
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []schemas.RunSummary
	for rows.Next() {
		var r schemas.RunSummary
		if err := rows.Scan(&r.ID, &r.Target, &r.StartedAt, &r.FinishedAt, &r.Total, &r.Passed, &r.Failed, &r.Errors); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return out, nil
}
