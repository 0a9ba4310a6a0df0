package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	errs "github.com/edgard/taskpilot/internal/errors"
)

// NewAddTaskHandler returns a handler for "/addtask <description> | YYYY-MM-DD".
func NewAddTaskHandler(deps HandlerDeps) bot.HandlerFunc {
	return addTaskHandler{deps}.Handle
}

type addTaskHandler struct {
	deps HandlerDeps
}

func (h addTaskHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "addtask")
	msg := update.Message
	chatID := msg.Chat.ID

	description, deadline, ok := parseAddTask(commandArgs(msg.Text))
	if !ok {
		reply(ctx, b, log, chatID, h.deps.Config.Messages.AddUsage, "")
		return
	}
	if description == "" {
		reply(ctx, b, log, chatID, "❌ Task description cannot be empty.", "")
		return
	}

	task, err := h.deps.Registry.Add(description, deadline, msg.From.ID, displayName(msg.From), chatID)
	if err != nil {
		log.InfoContext(ctx, "Task rejected", "chat_id", chatID, "user_id", msg.From.ID, "code", errs.Code(err))
		reply(ctx, b, log, chatID, "❌ "+errs.UserMessage(err), "")
		return
	}

	reply(ctx, b, log, chatID, "✅ "+task.AddedMessage(), "")
}
