package handlers

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/taskpilot/internal/registry"
)

// NewListTasksHandler returns a handler for the /listtasks command.
func NewListTasksHandler(deps HandlerDeps) bot.HandlerFunc {
	return listTasksHandler{deps}.Handle
}

type listTasksHandler struct {
	deps HandlerDeps
}

func (h listTasksHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "listtasks")
	chatID := update.Message.Chat.ID

	tasks := h.deps.Registry.ListActive()
	log.DebugContext(ctx, "Listing tasks", "chat_id", chatID, "count", len(tasks))
	if len(tasks) == 0 {
		reply(ctx, b, log, chatID, h.deps.Config.Messages.NoTasks, "")
		return
	}

	pages := formatTaskList(tasks, h.deps.Registry.Today())
	for _, page := range pages {
		reply(ctx, b, log, chatID, page, models.ParseModeHTML)
	}
}

// MaxMessageLength is the Bot API limit on message text, in UTF-16 units.
const MaxMessageLength = 4096

// maxFieldLength caps a single escaped description or creator name so one
// task always fits in a message.
const maxFieldLength = 3000

// formatTaskList renders tasks as one or more HTML messages. Pages break
// between tasks and never exceed MaxMessageLength.
func formatTaskList(tasks []registry.Task, today time.Time) []string {
	var pages []string
	var sb strings.Builder
	sb.WriteString("📋 <b>Active Tasks</b>\n")
	size := utf16Len(sb.String())

	for _, task := range tasks {
		block := fmt.Sprintf("\n<b>Task #%d</b>: %s\nCreated by: %s\nDeadline: %s\nStatus: %s %s\n",
			task.ID,
			clipEscaped(task.Description, maxFieldLength),
			clipEscaped(task.CreatorName, 256),
			task.DeadlineString(),
			statusIcon(task.DaysLeft(today)), task.Status(today))
		n := utf16Len(block)
		if size+n > MaxMessageLength && sb.Len() > 0 {
			pages = append(pages, sb.String())
			sb.Reset()
			size = 0
		}
		sb.WriteString(block)
		size += n
	}
	return append(pages, sb.String())
}

// clipEscaped HTML-escapes s, cutting it at a rune boundary so the escaped
// form stays within limit UTF-16 units. Cut text ends with "…".
func clipEscaped(s string, limit int) string {
	escaped := html.EscapeString(s)
	if utf16Len(escaped) <= limit {
		return escaped
	}
	var sb strings.Builder
	size := 0
	for _, r := range s {
		part := html.EscapeString(string(r))
		n := utf16Len(part)
		if size+n > limit-1 {
			break
		}
		sb.WriteString(part)
		size += n
	}
	sb.WriteString("…")
	return sb.String()
}

// utf16Len counts s the way the Bot API measures message length.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func statusIcon(daysLeft int) string {
	switch {
	case daysLeft < 0:
		return "⚠️"
	case daysLeft == 0:
		return "🔥"
	case daysLeft <= 3:
		return "⏰"
	default:
		return "📅"
	}
}
