package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/taskpilot/internal/database"
	"github.com/edgard/taskpilot/internal/reminder"
)

// NewHistoryHandler returns a handler listing recent reminder cycles.
func NewHistoryHandler(deps HandlerDeps) bot.HandlerFunc {
	return historyHandler{deps}.Handle
}

type historyHandler struct {
	deps HandlerDeps
}

func (h historyHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "history")
	chatID := update.Message.Chat.ID

	if h.deps.Store == nil {
		reply(ctx, b, log, chatID, h.deps.Config.Messages.HistoryDisabled, "")
		return
	}

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	runs, err := h.deps.Store.GetRecentReminderRuns(queryCtx, h.deps.Config.Journal.HistoryLimit)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load reminder history", "error", err)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError, "")
		return
	}
	if len(runs) == 0 {
		reply(ctx, b, log, chatID, h.deps.Config.Messages.NoHistory, "")
		return
	}

	reply(ctx, b, log, chatID, formatHistory(runs), "")
}

func formatHistory(runs []database.ReminderRun) string {
	var sb strings.Builder
	sb.WriteString("🗂 Recent reminder runs\n")
	for _, run := range runs {
		fmt.Fprintf(&sb, "\n%s %s (%s): %s",
			historyIcon(run.Status), run.RunAt.Local().Format("2006-01-02 15:04"), run.Trigger, run.Status)
		if run.Overdue+run.DueToday+run.DueTomorrow > 0 {
			fmt.Fprintf(&sb, ", %d overdue / %d today / %d tomorrow", run.Overdue, run.DueToday, run.DueTomorrow)
		}
	}
	return sb.String()
}

func historyIcon(status string) string {
	switch status {
	case reminder.RunStatusSent:
		return "✅"
	case reminder.RunStatusEmpty:
		return "📭"
	default:
		return "❌"
	}
}
