package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	errs "github.com/edgard/taskpilot/internal/errors"
)

// Store defines the interface for journal operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveReminderRun inserts a reminder cycle outcome.
	SaveReminderRun(ctx context.Context, run *ReminderRun) error

	// GetRecentReminderRuns returns the latest 'limit' runs, newest first.
	GetRecentReminderRuns(ctx context.Context, limit int) ([]ReminderRun, error)

	// PruneReminderRuns deletes runs older than before and returns the count.
	PruneReminderRuns(ctx context.Context, before time.Time) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveReminderRun inserts a new run record and sets its ID.
func (s *sqlxStore) SaveReminderRun(ctx context.Context, run *ReminderRun) error {
	if run == nil {
		return errs.New(errs.CodeDatabase, "cannot save nil reminder run")
	}
	if run.RunID == "" {
		return errs.New(errs.CodeDatabase, "reminder run must have a run_id")
	}
	if run.RunAt.IsZero() {
		return errs.New(errs.CodeDatabase, "reminder run must have a non-zero run_at")
	}

	run.RunAt = run.RunAt.UTC()
	run.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO reminder_runs (run_id, trigger_kind, channel_id, overdue, due_today, due_tomorrow,
                                   status, error_message, run_at, created_at)
        VALUES (:run_id, :trigger_kind, :channel_id, :overdue, :due_today, :due_tomorrow,
                :status, :error_message, :run_at, :created_at);
    `

	result, err := s.db.NamedExecContext(ctx, query, run)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving reminder run", "run_id", run.RunID, "error", err)
		return errs.Wrap(errs.CodeDatabase, fmt.Sprintf("failed to save reminder run %s", run.RunID), err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		//nolint:gosec // ids are positive and small
		run.ID = uint(id)
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving reminder run",
			"run_id", run.RunID, "error", err)
	}

	s.logger.DebugContext(ctx, "Reminder run saved", "run_id", run.RunID, "status", run.Status)
	return nil
}

// GetRecentReminderRuns returns the most recent runs, newest first.
func (s *sqlxStore) GetRecentReminderRuns(ctx context.Context, limit int) ([]ReminderRun, error) {
	if limit <= 0 {
		return nil, errs.Newf(errs.CodeDatabase, "invalid limit %d", limit)
	}

	query := `
        SELECT id, run_id, trigger_kind, channel_id, overdue, due_today, due_tomorrow,
               status, error_message, run_at, created_at
        FROM reminder_runs
        ORDER BY run_at DESC, id DESC
        LIMIT ?;
    `

	var runs []ReminderRun
	if err := s.db.SelectContext(ctx, &runs, query, limit); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []ReminderRun{}, nil
		}
		s.logger.ErrorContext(ctx, "Error fetching recent reminder runs", "limit", limit, "error", err)
		return nil, errs.Wrap(errs.CodeDatabase, "failed to fetch reminder runs", err)
	}
	return runs, nil
}

// PruneReminderRuns deletes runs recorded before the cutoff.
func (s *sqlxStore) PruneReminderRuns(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM reminder_runs WHERE run_at < ?;", before.UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error pruning reminder runs", "before", before, "error", err)
		return 0, errs.Wrap(errs.CodeDatabase, "failed to prune reminder runs", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not read affected rows after prune", "error", err)
		return 0, nil
	}
	if affected > 0 {
		s.logger.InfoContext(ctx, "Pruned reminder runs", "count", affected, "before", before)
	}
	return affected, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return errs.Wrap(errs.CodeDatabase, "failed to execute VACUUM", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}
