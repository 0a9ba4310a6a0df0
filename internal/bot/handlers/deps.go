package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/edgard/taskpilot/internal/config"
	"github.com/edgard/taskpilot/internal/database"
	"github.com/edgard/taskpilot/internal/registry"
	"github.com/edgard/taskpilot/internal/reminder"
)

// TaskRegistry is the part of the task registry the commands drive.
type TaskRegistry interface {
	Add(description, deadlineText string, creatorID int64, creatorName string, originChannel int64) (registry.Task, error)
	Complete(taskID int, requesterID int64) (registry.Task, error)
	ListActive() []registry.Task
	Today() time.Time
}

// ChannelSettings reads and changes the reminder chat.
type ChannelSettings interface {
	ReminderChannel() int64
	SetReminderChannel(chatID int64)
}

// ReminderSender runs a reminder cycle on demand.
type ReminderSender interface {
	SendDailyReminders(ctx context.Context) (reminder.Report, error)
}

// HandlerDeps provides dependencies for Telegram command handlers.
// Store may be nil, in which case /history reports that no journal is kept.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Registry  TaskRegistry
	Settings  ChannelSettings
	Reminders ReminderSender
	Store     database.Store
}
