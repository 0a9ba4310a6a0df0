package database

import (
	"context"

	"github.com/edgard/taskpilot/internal/reminder"
)

// ReminderJournal stores reminder cycle outcomes through a Store.
type ReminderJournal struct {
	store Store
}

// NewReminderJournal returns a reminder.Journal backed by store.
func NewReminderJournal(store Store) *ReminderJournal {
	return &ReminderJournal{store: store}
}

// RecordRun saves run as a ReminderRun row.
func (j *ReminderJournal) RecordRun(ctx context.Context, run reminder.Run) error {
	return j.store.SaveReminderRun(ctx, &ReminderRun{
		RunID:       run.RunID,
		Trigger:     string(run.Trigger),
		ChannelID:   run.ChannelID,
		Overdue:     run.Overdue,
		DueToday:    run.DueToday,
		DueTomorrow: run.DueTomorrow,
		Status:      run.Status,
		Error:       run.Error,
		RunAt:       run.RunAt,
	})
}
