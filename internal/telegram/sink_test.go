package telegram_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/taskpilot/internal/reminder"
	"github.com/edgard/taskpilot/internal/telegram"
)

type fakeMessenger struct {
	mu      sync.Mutex
	chats   map[int64]string
	sendErr error
	sent    []*bot.SendMessageParams
}

func (f *fakeMessenger) GetChat(_ context.Context, params *bot.GetChatParams) (*models.ChatFullInfo, error) {
	id, _ := params.ChatID.(int64)
	title, ok := f.chats[id]
	if !ok {
		return nil, errors.New("Bad Request: chat not found")
	}
	return &models.ChatFullInfo{ID: id, Title: title}, nil
}

func (f *fakeMessenger) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, params)
	return &models.Message{ID: len(f.sent)}, nil
}

var day = time.Date(2025, time.July, 15, 0, 0, 0, 0, time.Local)

func TestSink_ResolveChannel(t *testing.T) {
	t.Parallel()

	api := &fakeMessenger{chats: map[int64]string{-100: "team"}}
	sink := telegram.NewSink(api, nil)

	if err := sink.ResolveChannel(context.Background(), -100); err != nil {
		t.Errorf("known chat: unexpected error %v", err)
	}
	if err := sink.ResolveChannel(context.Background(), -200); err == nil {
		t.Error("unknown chat: expected error")
	}
}

func TestSink_DeliverSummary(t *testing.T) {
	t.Parallel()

	api := &fakeMessenger{}
	sink := telegram.NewSink(api, nil)

	summary := reminder.Summary{
		Date:        day,
		Overdue:     []reminder.Entry{{TaskID: 1, Description: "Pay <rent>", CreatorID: 7, CreatorName: "Ann", DaysOverdue: 3}},
		DueTomorrow: []reminder.Entry{{TaskID: 4, Description: "Call", CreatorID: 8, CreatorName: "Bo"}},
	}
	if err := sink.Deliver(context.Background(), -100, summary); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if len(api.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(api.sent))
	}
	msg := api.sent[0]
	if msg.ChatID != int64(-100) {
		t.Errorf("ChatID = %v, want -100", msg.ChatID)
	}
	if msg.ParseMode != models.ParseModeHTML {
		t.Errorf("ParseMode = %q, want HTML", msg.ParseMode)
	}
	for _, want := range []string{
		"Tuesday, July 15, 2025",
		"OVERDUE TASKS",
		"Task #1</b>: Pay &lt;rent&gt;",
		`<a href="tg://user?id=7">Ann</a> - Overdue by 3 days`,
		"DUE TOMORROW",
		"Due tomorrow",
	} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("summary missing %q:\n%s", want, msg.Text)
		}
	}
	if strings.Contains(msg.Text, "DUE TODAY") {
		t.Errorf("empty due-today section rendered:\n%s", msg.Text)
	}
}

func TestSink_DeliverUrgent(t *testing.T) {
	t.Parallel()

	api := &fakeMessenger{}
	sink := telegram.NewSink(api, nil)

	urgent := reminder.Urgent{Date: day, Entries: []reminder.UrgentEntry{
		{Entry: reminder.Entry{TaskID: 1, Description: "A", CreatorID: 7, CreatorName: "Ann"}, Status: reminder.StatusOverdue},
		{Entry: reminder.Entry{TaskID: 2, Description: "B", CreatorID: 8}, Status: reminder.StatusDueToday},
	}}
	if err := sink.Deliver(context.Background(), -100, urgent); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	text := api.sent[0].Text
	for _, want := range []string{
		"URGENT TASK REMINDERS",
		`<a href="tg://user?id=7">Ann</a> - Task #1: A (OVERDUE)`,
		`<a href="tg://user?id=8">user 8</a> - Task #2: B (DUE TODAY)`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("urgent missing %q:\n%s", want, text)
		}
	}
}

func TestSink_DeliverError(t *testing.T) {
	t.Parallel()

	api := &fakeMessenger{sendErr: errors.New("Forbidden: bot was kicked")}
	sink := telegram.NewSink(api, nil)

	err := sink.Deliver(context.Background(), -100, reminder.Summary{Date: day})
	if err == nil || !strings.Contains(err.Error(), "bot was kicked") {
		t.Errorf("Deliver() error = %v, want send failure", err)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := telegram.Truncate("short", 10); got != "short" {
		t.Errorf("Truncate(short) = %q", got)
	}

	long := strings.Repeat("line of text\n", 500)
	got := telegram.Truncate(long, telegram.MaxMessageLength)
	if n := len([]rune(got)); n > telegram.MaxMessageLength {
		t.Errorf("truncated length = %d, want <= %d", n, telegram.MaxMessageLength)
	}
	if !strings.HasSuffix(got, "\n…") {
		t.Errorf("expected cut at line boundary, got suffix %q", got[len(got)-20:])
	}

	if got := telegram.Truncate(strings.Repeat("x", 20), 10); got != strings.Repeat("x", 9)+"…" {
		t.Errorf("Truncate without newline = %q", got)
	}
}
