// Package tasks implements the scheduled maintenance tasks: overdue task
// eviction and journal upkeep.
package tasks

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/edgard/taskpilot/internal/config"
	"github.com/edgard/taskpilot/internal/database"
)

// OverdueEvictor removes tasks that have been overdue for too long.
type OverdueEvictor interface {
	Today() time.Time
	EvictOverdue(today time.Time, thresholdDays int) int
}

// TaskDeps contains all dependencies required by scheduled tasks.
// Store may be nil when the journal is disabled.
type TaskDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Registry OverdueEvictor
	Store    database.Store
	Clock    clockwork.Clock
}
