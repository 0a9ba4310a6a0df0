package bot

import (
	"context"
	"time"

	"github.com/edgard/taskpilot/internal/health"
	"github.com/edgard/taskpilot/internal/reminder"
)

// TaskCounter reports the number of live tasks.
type TaskCounter interface {
	Count() int
}

// EngineState exposes what the reminder engine is doing.
type EngineState interface {
	State() reminder.State
	NextFire() time.Time
}

// ChannelReader returns the current reminder chat.
type ChannelReader interface {
	ReminderChannel() int64
}

// JournalPinger checks that the reminder journal is reachable.
type JournalPinger interface {
	Ping(ctx context.Context) error
}

const journalPingTimeout = 2 * time.Second

// NewStatusFunc gathers the live state reported by GET /status. journal and
// scheduler may be nil.
func NewStatusFunc(tasks TaskCounter, engine EngineState, channel ChannelReader, journal JournalPinger, scheduler *Scheduler) health.StatusFunc {
	return func(ctx context.Context) health.Status {
		st := health.Status{
			ActiveTasks:     tasks.Count(),
			ReminderEngine:  engine.State().String(),
			ReminderChannel: channel.ReminderChannel(),
		}
		if journal != nil {
			pingCtx, cancel := context.WithTimeout(ctx, journalPingTimeout)
			st.Journal = "ok"
			if err := journal.Ping(pingCtx); err != nil {
				st.Journal = "unavailable"
			}
			cancel()
		}
		if next := engine.NextFire(); !next.IsZero() {
			st.NextReminder = &next
		}
		if scheduler != nil {
			if runs := scheduler.NextRuns(); len(runs) > 0 {
				st.Maintenance = runs
			}
		}
		return st
	}
}
