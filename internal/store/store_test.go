package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/hrmcheck/api/schemas"
)

// flexibleSQLMatcher creates a regex that is insensitive to whitespace for more robust SQL mock testing.
func flexibleSQLMatcher(sql string) string {
	trimmed := strings.TrimSpace(sql)
	return regexp.MustCompile(`\s+`).ReplaceAllString(regexp.QuoteMeta(trimmed), `\s+`)
}

const (
	sqlInsertRun = `
        INSERT INTO runs (id, target, started_at, finished_at, total, passed, failed, errors)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
    `
	sqlSelectRun = `
        SELECT target, started_at, finished_at
        FROM runs
        WHERE id = $1;
    `
	sqlSelectOutcomes = `
        SELECT scenario, description, status, condition, message, started_at, duration_ns, screenshot
        FROM outcomes
        WHERE run_id = $1
        ORDER BY position ASC;
    `
	sqlListRuns = `
        SELECT id, target, started_at, finished_at, total, passed, failed, errors
        FROM runs
        ORDER BY started_at DESC
        LIMIT $1;
    `
)

var (
	started  = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	finished = started.Add(30 * time.Second)
)

func testRun() *schemas.Run {
	return &schemas.Run{
		ID:         "run-1",
		Target:     "https://hrm.example/login",
		StartedAt:  started,
		FinishedAt: finished,
		Outcomes: []schemas.Outcome{
			{Scenario: "valid_login", Status: schemas.StatusPass, StartedAt: started, Duration: 2 * time.Second},
			{Scenario: "add_employee", Status: schemas.StatusFail, Condition: "success banner contains",
				Message: "nope", StartedAt: started, Duration: 5 * time.Second, Screenshot: []byte("png")},
		},
	}
}

func newMockStore(t *testing.T, logger *zap.Logger) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	mockPool.ExpectPing()
	s, err := New(context.Background(), mockPool, logger)
	require.NoError(t, err)
	return s, mockPool
}

// -- Test Cases --

func TestNewStore(t *testing.T) {
	t.Run("should return error if ping fails", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		pingErr := errors.New("database unavailable")
		mockPool.ExpectPing().WillReturnError(pingErr)

		_, err = New(context.Background(), mockPool, zap.NewNop())
		require.Error(t, err)
		assert.ErrorIs(t, err, pingErr, "Error from ping should be propagated")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestConnectRequiresURL(t *testing.T) {
	_, _, err := Connect(context.Background(), "", zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HRMCHECK_DATABASE_URL")
}

func TestMigrate(t *testing.T) {
	s, mockPool := newMockStore(t, zap.NewNop())
	mockPool.ExpectExec(flexibleSQLMatcher(Schema)).WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestSaveRun(t *testing.T) {
	ctx := context.Background()

	t.Run("should persist a run without rollback errors", func(t *testing.T) {
		observedZapCore, observedLogs := observer.New(zapcore.ErrorLevel)
		s, mockPool := newMockStore(t, zap.New(observedZapCore))
		run := testRun()

		mockPool.ExpectBegin()
		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertRun)).
			WithArgs(run.ID, run.Target, started, finished, 2, 1, 1, 0).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectCopyFrom(pgx.Identifier{"outcomes"}, outcomeColumns).WillReturnResult(2)
		mockPool.ExpectCommit()
		mockPool.ExpectRollback().WillReturnError(pgx.ErrTxClosed)

		require.NoError(t, s.SaveRun(ctx, run))
		assert.NoError(t, mockPool.ExpectationsWereMet())
		assert.Zero(t, observedLogs.Len(), "ErrTxClosed on rollback must not be logged")
	})

	t.Run("should roll back when the outcome copy fails", func(t *testing.T) {
		s, mockPool := newMockStore(t, zap.NewNop())

		mockPool.ExpectBegin()
		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertRun)).WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectCopyFrom(pgx.Identifier{"outcomes"}, outcomeColumns).WillReturnError(errors.New("disk full"))
		mockPool.ExpectRollback()

		err := s.SaveRun(ctx, testRun())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to copy outcomes")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should detect a short copy", func(t *testing.T) {
		s, mockPool := newMockStore(t, zap.NewNop())

		mockPool.ExpectBegin()
		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertRun)).WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectCopyFrom(pgx.Identifier{"outcomes"}, outcomeColumns).WillReturnResult(1)
		mockPool.ExpectRollback()

		err := s.SaveRun(ctx, testRun())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected 2, got 1")
	})

	t.Run("should reject a run without an ID", func(t *testing.T) {
		s, mockPool := newMockStore(t, zap.NewNop())
		assert.Error(t, s.SaveRun(ctx, &schemas.Run{}))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should fail when begin fails", func(t *testing.T) {
		s, mockPool := newMockStore(t, zap.NewNop())
		mockPool.ExpectBegin().WillReturnError(errors.New("conn reset"))
		err := s.SaveRun(ctx, testRun())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
	})
}

func TestGetRun(t *testing.T) {
	ctx := context.Background()

	t.Run("should load the run with ordered outcomes", func(t *testing.T) {
		s, mockPool := newMockStore(t, zap.NewNop())

		mockPool.ExpectQuery(flexibleSQLMatcher(sqlSelectRun)).WithArgs("run-1").
			WillReturnRows(pgxmock.NewRows([]string{"target", "started_at", "finished_at"}).
				AddRow("https://hrm.example/login", started, finished))
		mockPool.ExpectQuery(flexibleSQLMatcher(sqlSelectOutcomes)).WithArgs("run-1").
			WillReturnRows(pgxmock.NewRows([]string{"scenario", "description", "status", "condition", "message", "started_at", "duration_ns", "screenshot"}).
				AddRow("valid_login", "", "pass", "", "", started, int64(2*time.Second), []byte(nil)).
				AddRow("add_employee", "", "fail", "success banner contains", "nope", started, int64(5*time.Second), []byte("png")))

		run, err := s.GetRun(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, "https://hrm.example/login", run.Target)
		require.Len(t, run.Outcomes, 2)
		assert.Equal(t, schemas.StatusFail, run.Outcomes[1].Status)
		assert.Equal(t, 5*time.Second, run.Outcomes[1].Duration)
		assert.Equal(t, []byte("png"), run.Outcomes[1].Screenshot)
		assert.Equal(t, schemas.Summary{Total: 2, Passed: 1, Failed: 1}, run.Summary())
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should report unknown runs", func(t *testing.T) {
		s, mockPool := newMockStore(t, zap.NewNop())
		mockPool.ExpectQuery(flexibleSQLMatcher(sqlSelectRun)).WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		_, err := s.GetRun(ctx, "missing")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRunNotFound)
	})

	t.Run("should surface row errors", func(t *testing.T) {
		s, mockPool := newMockStore(t, zap.NewNop())
		mockPool.ExpectQuery(flexibleSQLMatcher(sqlSelectRun)).WithArgs("run-1").
			WillReturnRows(pgxmock.NewRows([]string{"target", "started_at", "finished_at"}).
				AddRow("t", started, finished))
		mockPool.ExpectQuery(flexibleSQLMatcher(sqlSelectOutcomes)).WithArgs("run-1").
			WillReturnRows(pgxmock.NewRows([]string{"scenario", "description", "status", "condition", "message", "started_at", "duration_ns", "screenshot"}).
				AddRow("x", "", "pass", "", "", started, int64(0), []byte(nil)).
				RowError(0, errors.New("connection lost")))

		_, err := s.GetRun(ctx, "run-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection lost")
	})
}

func TestListRuns(t *testing.T) {
	s, mockPool := newMockStore(t, zap.NewNop())
	mockPool.ExpectQuery(flexibleSQLMatcher(sqlListRuns)).WithArgs(20).
		WillReturnRows(pgxmock.NewRows([]string{"id", "target", "started_at", "finished_at", "total", "passed", "failed", "errors"}).
			AddRow("run-2", "t", finished, finished.Add(time.Minute), 5, 5, 0, 0).
			AddRow("run-1", "t", started, finished, 5, 3, 1, 1))

	runs, err := s.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, schemas.Summary{Total: 5, Passed: 3, Failed: 1, Errors: 1}, runs[1].Summary)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
