package tasks

import (
	"context"
	"fmt"
)

// newSQLMaintenanceTask prunes journal entries past the retention period and
// compacts the database.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "sql_maintenance")
	retention := deps.Config.Journal.Retention

	return func(ctx context.Context) error {
		startTime := deps.Clock.Now()

		if retention > 0 {
			cutoff := startTime.Add(-retention)
			pruned, err := deps.Store.PruneReminderRuns(ctx, cutoff)
			if err != nil {
				return fmt.Errorf("journal prune failed: %w", err)
			}
			log.InfoContext(ctx, "Journal pruned", "removed", pruned, "cutoff", cutoff)
		}

		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "SQL maintenance task failed", "error", err, "duration", deps.Clock.Since(startTime))
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled SQL maintenance task completed successfully", "duration", deps.Clock.Since(startTime))
		return nil
	}
}
