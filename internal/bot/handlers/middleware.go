// Package handlers contains Telegram bot command handlers, along with their
// registration logic and middleware.
package handlers

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// RequireSender drops updates that are not messages from a known user.
// Every command needs the sender id for task ownership.
func RequireSender(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				deps.Logger.With("middleware", "RequireSender").
					DebugContext(ctx, "Ignoring update without message sender", "update_id", update.ID)
				return
			}
			next(ctx, bot, update)
		}
	}
}

// Recover turns a handler panic into a logged error and a generic reply so
// one bad command cannot take down the polling loop.
func Recover(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				log := deps.Logger.With("middleware", "Recover")
				log.ErrorContext(ctx, "Handler panicked", "update_id", update.ID, "panic", fmt.Sprint(r))
				if update.Message != nil {
					reply(ctx, bot, log, update.Message.Chat.ID, deps.Config.Messages.GeneralError, "")
				}
			}()
			next(ctx, bot, update)
		}
	}
}
