package config

import "sync/atomic"

// ReminderSettings is the runtime view of the reminder configuration. The
// reminder chat can be changed while the engine is running; the time of day
// is fixed at startup.
type ReminderSettings struct {
	channel atomic.Int64
	hour    int
	minute  int
}

// NewReminderSettings seeds runtime settings from the loaded configuration.
func NewReminderSettings(cfg ReminderConfig) *ReminderSettings {
	s := &ReminderSettings{hour: cfg.Hour, minute: cfg.Minute}
	s.channel.Store(cfg.ChannelID)
	return s
}

// ReminderChannel returns the chat receiving reminders, 0 when unset.
func (s *ReminderSettings) ReminderChannel() int64 {
	return s.channel.Load()
}

// SetReminderChannel changes the chat receiving reminders.
func (s *ReminderSettings) SetReminderChannel(chatID int64) {
	s.channel.Store(chatID)
}

// ReminderTime returns the configured time of day.
func (s *ReminderSettings) ReminderTime() (hour, minute int) {
	return s.hour, s.minute
}
