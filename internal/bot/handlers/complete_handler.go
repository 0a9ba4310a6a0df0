package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	errs "github.com/edgard/taskpilot/internal/errors"
)

// NewCompleteHandler returns a handler for "/complete <id>".
func NewCompleteHandler(deps HandlerDeps) bot.HandlerFunc {
	return completeHandler{deps}.Handle
}

type completeHandler struct {
	deps HandlerDeps
}

func (h completeHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "complete")
	msg := update.Message
	chatID := msg.Chat.ID

	taskID, err := parseTaskID(commandArgs(msg.Text))
	if err != nil {
		log.DebugContext(ctx, "Invalid /complete arguments", "error", err)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.CompleteUsage, "")
		return
	}

	task, err := h.deps.Registry.Complete(taskID, msg.From.ID)
	if err != nil {
		log.InfoContext(ctx, "Completion rejected", "task_id", taskID, "user_id", msg.From.ID, "code", errs.Code(err))
		reply(ctx, b, log, chatID, "❌ "+errs.UserMessage(err), "")
		return
	}

	reply(ctx, b, log, chatID, "✅ "+task.CompletedMessage(), "")
}
