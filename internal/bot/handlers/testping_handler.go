package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	errs "github.com/edgard/taskpilot/internal/errors"
	"github.com/edgard/taskpilot/internal/registry"
)

// TestPingDescription is the description of tasks created by /testping.
const TestPingDescription = "Test ping task"

// NewTestPingHandler returns a handler that adds a task due today, so the
// next reminder cycle mentions the caller.
func NewTestPingHandler(deps HandlerDeps) bot.HandlerFunc {
	return testPingHandler{deps}.Handle
}

type testPingHandler struct {
	deps HandlerDeps
}

func (h testPingHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "testping")
	msg := update.Message
	chatID := msg.Chat.ID

	today := h.deps.Registry.Today().Format(registry.DateLayout)
	task, err := h.deps.Registry.Add(TestPingDescription, today, msg.From.ID, displayName(msg.From), chatID)
	if err != nil {
		log.WarnContext(ctx, "Failed to create test task", "error", err)
		reply(ctx, b, log, chatID, "❌ "+errs.UserMessage(err), "")
		return
	}

	reply(ctx, b, log, chatID, "✅ "+task.AddedMessage()+"\n\n"+h.deps.Config.Messages.TestPingFollowUp, "")
}
