package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for configuration.
const (
	DefaultLogLevel = "info"

	DefaultReminderHour    = 9
	DefaultReminderMinute  = 0
	DefaultReminderBackoff = time.Hour

	DefaultOverdueDays = 30

	DefaultDBPath              = "taskpilot.db"
	DefaultJournalRetention    = 30 * 24 * time.Hour
	DefaultJournalHistoryLimit = 10

	DefaultHTTPAddr = ":8080"

	// Maintenance task names, matching the keys of the task registry.
	TaskOverdueCleanup = "overdue_cleanup"
	TaskSQLMaintenance = "sql_maintenance"
)

// Default user-facing messages.
const (
	defaultWelcome = "👋 Hi! I track tasks with deadlines and remind this group when they are due. Send /help to see what I can do."
	defaultHelp    = "🤖 Task Bot Help\n\n" +
		"/addtask <description> | YYYY-MM-DD - add a new task\n" +
		"/listtasks - list all active tasks\n" +
		"/complete <id> - mark your task as completed\n" +
		"/setchannel - send daily reminders to this chat\n" +
		"/history - show recent reminder runs\n" +
		"/testping - create a test task due today\n" +
		"/testreminder - send the reminder now\n\n" +
		"🔔 Daily reminders go to the chosen chat, mentioning users with overdue or due tasks."
	defaultAddUsage         = "❌ Invalid format. Use: /addtask Task description | YYYY-MM-DD"
	defaultCompleteUsage    = "❌ Invalid task ID. Use: /complete <id>"
	defaultNoTasks          = "📝 No active tasks found."
	defaultChannelNotSet    = "❌ No reminder channel set! Use /setchannel first."
	defaultReminderSending  = "🔔 Sending test reminder now..."
	defaultNoHistory        = "📭 No reminders have been sent yet."
	defaultHistoryDisabled  = "📭 Reminder history is not available."
	defaultGeneralError     = "❌ An error occurred. Please try again later."
	defaultTestPingFollowUp = "🔔 Test setup complete! This task is due today and will trigger a ping. " +
		"Use /testreminder to send a reminder now or wait for the daily reminder."
)

// setDefaults registers default values for every key so that environment
// variables can override keys missing from the config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)

	v.SetDefault("telegram.token", "")

	v.SetDefault("reminder.hour", DefaultReminderHour)
	v.SetDefault("reminder.minute", DefaultReminderMinute)
	v.SetDefault("reminder.channel_id", 0)
	v.SetDefault("reminder.backoff", DefaultReminderBackoff)

	v.SetDefault("cleanup.overdue_days", DefaultOverdueDays)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("journal.retention", DefaultJournalRetention)
	v.SetDefault("journal.history_limit", DefaultJournalHistoryLimit)

	v.SetDefault("http.enabled", true)
	v.SetDefault("http.addr", DefaultHTTPAddr)

	v.SetDefault("scheduler.tasks."+TaskOverdueCleanup+".enabled", true)
	v.SetDefault("scheduler.tasks."+TaskOverdueCleanup+".schedule", "0 0 3 * * *")
	v.SetDefault("scheduler.tasks."+TaskSQLMaintenance+".enabled", true)
	v.SetDefault("scheduler.tasks."+TaskSQLMaintenance+".schedule", "0 30 4 * * 0")

	v.SetDefault("messages.welcome", defaultWelcome)
	v.SetDefault("messages.help", defaultHelp)
	v.SetDefault("messages.add_usage", defaultAddUsage)
	v.SetDefault("messages.complete_usage", defaultCompleteUsage)
	v.SetDefault("messages.no_tasks", defaultNoTasks)
	v.SetDefault("messages.channel_not_set", defaultChannelNotSet)
	v.SetDefault("messages.reminder_sending", defaultReminderSending)
	v.SetDefault("messages.no_history", defaultNoHistory)
	v.SetDefault("messages.history_disabled", defaultHistoryDisabled)
	v.SetDefault("messages.general_error", defaultGeneralError)
	v.SetDefault("messages.test_ping_follow_up", defaultTestPingFollowUp)
}
