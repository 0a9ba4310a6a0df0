package registry

import (
	"fmt"
	"time"
)

// DateLayout is the only deadline format accepted by Add.
const DateLayout = "2006-01-02"

// Task is one tracked unit of work. Values handed out by the registry are
// copies; mutating them does not affect the stored record.
type Task struct {
	ID            int
	Description   string
	Deadline      time.Time // local midnight of the deadline date
	CreatorID     int64
	CreatorName   string
	OriginChannel int64
	CreatedAt     time.Time

	// Completed is only ever true on the copy returned by Complete; stored
	// records are always incomplete.
	Completed bool
}

// DeadlineString formats the deadline as YYYY-MM-DD.
func (t Task) DeadlineString() string {
	return t.Deadline.Format(DateLayout)
}

// AddedMessage is the confirmation shown after a successful Add.
func (t Task) AddedMessage() string {
	return fmt.Sprintf("Task #%d added successfully! Deadline: %s", t.ID, t.DeadlineString())
}

// CompletedMessage is the confirmation shown after a successful Complete.
func (t Task) CompletedMessage() string {
	return fmt.Sprintf("Task #%d '%s' marked as completed and removed!", t.ID, t.Description)
}

// DaysLeft returns the number of calendar days from today until the deadline.
// Negative values mean the task is overdue.
func (t Task) DaysLeft(today time.Time) int {
	return DaysUntil(t.Deadline, today)
}

// Status describes the urgency of the task relative to today.
func (t Task) Status(today time.Time) string {
	days := t.DaysLeft(today)
	switch {
	case days < 0:
		return fmt.Sprintf("Overdue by %d days", -days)
	case days == 0:
		return "Due today!"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}

// DateOf truncates t to midnight of its calendar date in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysUntil counts calendar days from today to deadline. Both dates are
// compared as civil dates so DST transitions do not skew the result.
func DaysUntil(deadline, today time.Time) int {
	dy, dm, dd := deadline.Date()
	ty, tm, td := today.Date()
	a := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

// ParseDeadline parses text as a YYYY-MM-DD date in the local location.
func ParseDeadline(text string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, text, time.Local)
}
