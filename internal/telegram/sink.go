package telegram

import (
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/taskpilot/internal/reminder"
)

// MaxMessageLength is Telegram's limit for a single text message.
const MaxMessageLength = 4096

// Messenger is the subset of the Telegram Bot API the sink needs.
// *bot.Bot implements it.
type Messenger interface {
	GetChat(ctx context.Context, params *bot.GetChatParams) (*models.ChatFullInfo, error)
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Sink delivers reminder payloads to a Telegram chat as HTML messages.
type Sink struct {
	api    Messenger
	logger *slog.Logger
}

var _ reminder.Sink = (*Sink)(nil)

// NewSink creates a Sink sending through api.
func NewSink(api Messenger, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sink{api: api, logger: logger.With("component", "telegram_sink")}
}

// ResolveChannel checks that the bot can see the chat.
func (s *Sink) ResolveChannel(ctx context.Context, chatID int64) error {
	chat, err := s.api.GetChat(ctx, &bot.GetChatParams{ChatID: chatID})
	if err != nil {
		return fmt.Errorf("get chat %d: %w", chatID, err)
	}
	if chat == nil {
		return fmt.Errorf("get chat %d: empty response", chatID)
	}
	s.logger.DebugContext(ctx, "Reminder channel resolved", "chat_id", chatID, "title", chat.Title)
	return nil
}

// Deliver renders payload and sends it to chatID.
func (s *Sink) Deliver(ctx context.Context, chatID int64, payload reminder.Payload) error {
	var text string
	switch p := payload.(type) {
	case reminder.Summary:
		text = RenderSummary(p)
	case reminder.Urgent:
		text = RenderUrgent(p)
	default:
		return fmt.Errorf("unsupported payload type %T", payload)
	}

	_, err := s.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      Truncate(text, MaxMessageLength),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return nil
}

// RenderSummary formats the daily report.
func RenderSummary(s reminder.Summary) string {
	var sb strings.Builder
	sb.WriteString("📅 <b>Daily Task Reminders</b>\n")
	fmt.Fprintf(&sb, "Good morning! Here are your task reminders for %s\n", s.Date.Format("Monday, January 02, 2006"))

	section := func(title, icon string, entries []reminder.Entry, status func(reminder.Entry) string) {
		if len(entries) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n<b>%s</b>\n", title)
		for _, e := range entries {
			fmt.Fprintf(&sb, "%s <b>Task #%d</b>: %s\n", icon, e.TaskID, html.EscapeString(e.Description))
			fmt.Fprintf(&sb, "   👤 %s - %s\n", Mention(e.CreatorID, e.CreatorName), status(e))
		}
	}

	section("🚨 OVERDUE TASKS", "🚨", s.Overdue, func(e reminder.Entry) string {
		return fmt.Sprintf("Overdue by %d days", e.DaysOverdue)
	})
	section("🔥 DUE TODAY", "🔥", s.DueToday, func(reminder.Entry) string { return "Due TODAY!" })
	section("⏰ DUE TOMORROW", "⏰", s.DueTomorrow, func(reminder.Entry) string { return "Due tomorrow" })

	sb.WriteString("\n<i>Use /listtasks to see all tasks • /complete &lt;id&gt; to mark as done</i>")
	return sb.String()
}

// RenderUrgent formats the urgent list, one mention per task.
func RenderUrgent(u reminder.Urgent) string {
	var sb strings.Builder
	sb.WriteString("🔔 <b>URGENT TASK REMINDERS</b> 🔔\n")
	for _, e := range u.Entries {
		status := "DUE TODAY"
		if e.Status == reminder.StatusOverdue {
			status = "OVERDUE"
		}
		fmt.Fprintf(&sb, "%s - Task #%d: %s (%s)\n",
			Mention(e.CreatorID, e.CreatorName), e.TaskID, html.EscapeString(e.Description), status)
	}
	return sb.String()
}

// Mention returns an HTML link that notifies the user.
func Mention(userID int64, name string) string {
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("user %d", userID)
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, userID, html.EscapeString(name))
}

// Truncate shortens text to at most limit runes, ending with an ellipsis.
// It cuts at the last line break that fits so HTML tags, which never span
// lines here, stay balanced.
func Truncate(text string, limit int) string {
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	if limit <= 1 {
		return "…"
	}
	cut := string(r[:limit-1])
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		cut = cut[:i+1]
	}
	return cut + "…"
}
