package database

import "time"

// ReminderRun is one journal entry describing the outcome of a reminder
// cycle. Tasks themselves are never stored.
type ReminderRun struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	RunID       string    `db:"run_id"`
	Trigger     string    `db:"trigger_kind"`
	ChannelID   int64     `db:"channel_id"`
	Overdue     int       `db:"overdue"`
	DueToday    int       `db:"due_today"`
	DueTomorrow int       `db:"due_tomorrow"`
	Status      string    `db:"status"`
	Error       string    `db:"error_message"`
	RunAt       time.Time `db:"run_at"`
}
