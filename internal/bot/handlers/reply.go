package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// reply sends text to chatID and logs delivery failures. Handlers have no
// caller to return an error to.
func reply(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string, parseMode models.ParseMode) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: parseMode,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}

// commandArgs returns the text after the leading /command token, which may
// carry a @botname suffix.
func commandArgs(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	if i := strings.IndexAny(text, " \t\n"); i >= 0 {
		return strings.TrimSpace(text[i+1:])
	}
	return ""
}

// parseAddTask splits "<description> | YYYY-MM-DD". ok is false unless there
// is exactly one separator. The description may come back empty.
func parseAddTask(args string) (description, deadline string, ok bool) {
	parts := strings.Split(args, "|")
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

// parseTaskID reads the task id argument of /complete.
func parseTaskID(args string) (int, error) {
	fields := strings.Fields(args)
	if len(fields) != 1 {
		return 0, fmt.Errorf("expected one task id, got %d arguments", len(fields))
	}
	id, err := strconv.Atoi(strings.TrimPrefix(fields[0], "#"))
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q: %w", fields[0], err)
	}
	return id, nil
}

// displayName picks the name shown for a Telegram user.
func displayName(u *models.User) string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName + " " + u.LastName))
	if name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return strconv.FormatInt(u.ID, 10)
}

func withBotName(text string, botInfo *models.User) string {
	if botInfo == nil || botInfo.Username == "" {
		return text
	}
	return strings.ReplaceAll(text, "@botname", "@"+botInfo.Username)
}
