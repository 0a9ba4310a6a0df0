// Package config loads, defaults and validates the Taskpilot configuration
// from config.yaml, TASKPILOT_* environment variables and an optional .env
// file. It also holds the runtime-mutable reminder settings.
package config

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// Config is the complete application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Reminder  ReminderConfig  `mapstructure:"reminder"`
	Cleanup   CleanupConfig   `mapstructure:"cleanup"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Journal   JournalConfig   `mapstructure:"journal"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credentials. BotInfo is filled at startup.
type TelegramConfig struct {
	Token   string       `mapstructure:"token" validate:"required"`
	BotInfo *models.User `mapstructure:"-"     validate:"-"`
}

// ReminderConfig controls the daily reminder loop.
type ReminderConfig struct {
	Hour      int           `mapstructure:"hour"       validate:"min=0,max=23"`
	Minute    int           `mapstructure:"minute"     validate:"min=0,max=59"`
	ChannelID int64         `mapstructure:"channel_id"`
	Backoff   time.Duration `mapstructure:"backoff"    validate:"min=1s"`
}

// CleanupConfig controls overdue task eviction.
type CleanupConfig struct {
	OverdueDays int `mapstructure:"overdue_days" validate:"min=0"`
}

// DatabaseConfig locates the reminder journal.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// JournalConfig controls reminder journal retention and display.
type JournalConfig struct {
	Retention    time.Duration `mapstructure:"retention"     validate:"min=0"`
	HistoryLimit int           `mapstructure:"history_limit" validate:"min=1,max=50"`
}

// HTTPConfig controls the keep-alive endpoint.
type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"    validate:"required_if=Enabled true"`
}

// SchedulerConfig maps maintenance task names to their schedule.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a maintenance task on a cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MessagesConfig holds user-facing texts sent by command handlers.
type MessagesConfig struct {
	Welcome          string `mapstructure:"welcome"           validate:"required"`
	Help             string `mapstructure:"help"              validate:"required"`
	AddUsage         string `mapstructure:"add_usage"         validate:"required"`
	CompleteUsage    string `mapstructure:"complete_usage"    validate:"required"`
	NoTasks          string `mapstructure:"no_tasks"          validate:"required"`
	ChannelNotSet    string `mapstructure:"channel_not_set"   validate:"required"`
	ReminderSending  string `mapstructure:"reminder_sending"  validate:"required"`
	NoHistory        string `mapstructure:"no_history"        validate:"required"`
	HistoryDisabled  string `mapstructure:"history_disabled"  validate:"required"`
	GeneralError     string `mapstructure:"general_error"     validate:"required"`
	TestPingFollowUp string `mapstructure:"test_ping_follow_up" validate:"required"`
}
