package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	errs "github.com/edgard/taskpilot/internal/errors"
	"github.com/edgard/taskpilot/internal/reminder"
)

// NewTestReminderHandler returns a handler that runs a reminder cycle now.
// It only works from the reminder chat itself.
func NewTestReminderHandler(deps HandlerDeps) bot.HandlerFunc {
	return testReminderHandler{deps}.Handle
}

type testReminderHandler struct {
	deps HandlerDeps
}

func (h testReminderHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "testreminder")
	chatID := update.Message.Chat.ID

	switch channel := h.deps.Settings.ReminderChannel(); channel {
	case reminder.UnsetChannel:
		reply(ctx, b, log, chatID, h.deps.Config.Messages.ChannelNotSet, "")
		return
	case chatID:
	default:
		reply(ctx, b, log, chatID, "❌ Reminders are sent to another chat. Use /setchannel here to change it.", "")
		return
	}

	reply(ctx, b, log, chatID, h.deps.Config.Messages.ReminderSending, "")

	report, err := h.deps.Reminders.SendDailyReminders(ctx)
	if err != nil {
		reply(ctx, b, log, chatID, "❌ Error sending test reminder: "+errs.UserMessage(err), "")
		return
	}
	if report.Status == reminder.RunStatusEmpty {
		reply(ctx, b, log, chatID, "📭 No tasks need a reminder today.", "")
	}
	log.InfoContext(ctx, "Manual reminder finished", "run_id", report.RunID, "status", report.Status)
}
