package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSetChannelHandler returns a handler that makes the current chat the
// reminder chat.
func NewSetChannelHandler(deps HandlerDeps) bot.HandlerFunc {
	return setChannelHandler{deps}.Handle
}

type setChannelHandler struct {
	deps HandlerDeps
}

func (h setChannelHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "setchannel")
	chatID := update.Message.Chat.ID

	previous := h.deps.Settings.ReminderChannel()
	h.deps.Settings.SetReminderChannel(chatID)
	log.InfoContext(ctx, "Reminder channel changed", "chat_id", chatID, "previous", previous, "user_id", update.Message.From.ID)

	reply(ctx, b, log, chatID, "✅ Reminder channel set to this chat.", "")
}
