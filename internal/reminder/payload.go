package reminder

import (
	"time"

	"github.com/edgard/taskpilot/internal/registry"
)

// Payload is a structured notification handed to a Sink. It is either a
// Summary or an Urgent list.
type Payload interface {
	payloadKind() string
}

// Entry is one task as it appears in a reminder payload.
type Entry struct {
	TaskID      int
	Description string
	CreatorID   int64
	CreatorName string
	Deadline    time.Time
	// DaysOverdue is positive for overdue tasks and zero otherwise.
	DaysOverdue int
}

// Summary is the daily report with every task needing attention, split into
// disjoint urgency buckets.
type Summary struct {
	Date        time.Time
	Overdue     []Entry
	DueToday    []Entry
	DueTomorrow []Entry
}

func (Summary) payloadKind() string { return "summary" }

// Len returns the number of tasks across all buckets.
func (s Summary) Len() int {
	return len(s.Overdue) + len(s.DueToday) + len(s.DueTomorrow)
}

// UrgentStatus tags an entry of the urgent list.
type UrgentStatus string

const (
	StatusOverdue  UrgentStatus = "OVERDUE"
	StatusDueToday UrgentStatus = "DUE_TODAY"
)

// UrgentEntry is an overdue or due-today task addressed to its creator.
type UrgentEntry struct {
	Entry
	Status UrgentStatus
}

// Urgent lists only overdue and due-today tasks. Tasks due tomorrow are
// informational and never appear here.
type Urgent struct {
	Date    time.Time
	Entries []UrgentEntry
}

func (Urgent) payloadKind() string { return "urgent" }

// Classify splits tasks into urgency buckets relative to today. Tasks more
// than one day out are ignored. The urgent list is nil when nothing is
// overdue or due today.
func Classify(today time.Time, tasks []registry.Task) (Summary, *Urgent) {
	summary := Summary{Date: today}
	for _, task := range tasks {
		days := task.DaysLeft(today)
		entry := Entry{
			TaskID:      task.ID,
			Description: task.Description,
			CreatorID:   task.CreatorID,
			CreatorName: task.CreatorName,
			Deadline:    task.Deadline,
		}
		switch {
		case days < 0:
			entry.DaysOverdue = -days
			summary.Overdue = append(summary.Overdue, entry)
		case days == 0:
			summary.DueToday = append(summary.DueToday, entry)
		case days == 1:
			summary.DueTomorrow = append(summary.DueTomorrow, entry)
		}
	}

	if len(summary.Overdue)+len(summary.DueToday) == 0 {
		return summary, nil
	}

	urgent := &Urgent{Date: today}
	for _, entry := range summary.Overdue {
		urgent.Entries = append(urgent.Entries, UrgentEntry{Entry: entry, Status: StatusOverdue})
	}
	for _, entry := range summary.DueToday {
		urgent.Entries = append(urgent.Entries, UrgentEntry{Entry: entry, Status: StatusDueToday})
	}
	return summary, urgent
}
