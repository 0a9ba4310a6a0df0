package tasks

import "context"

// newOverdueCleanupTask evicts tasks overdue by more than the configured
// number of days.
func newOverdueCleanupTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "overdue_cleanup")
	threshold := deps.Config.Cleanup.OverdueDays

	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		removed := deps.Registry.EvictOverdue(deps.Registry.Today(), threshold)
		log.InfoContext(ctx, "Overdue cleanup finished", "removed", removed, "threshold_days", threshold)
		return nil
	}
}
