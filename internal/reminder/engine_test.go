package reminder_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	errs "github.com/edgard/taskpilot/internal/errors"
	"github.com/edgard/taskpilot/internal/registry"
	"github.com/edgard/taskpilot/internal/reminder"
)

const reminderChat = int64(-1001)

type reminderTime struct{ hour, minute int }

type fakeSettings struct {
	channel int64
	times   []reminderTime
	calls   atomic.Int32
}

func (s *fakeSettings) ReminderChannel() int64 { return s.channel }

func (s *fakeSettings) ReminderTime() (int, int) {
	n := int(s.calls.Add(1)) - 1
	if n >= len(s.times) {
		n = len(s.times) - 1
	}
	return s.times[n].hour, s.times[n].minute
}

type fakeSink struct {
	mu         sync.Mutex
	resolveErr error
	deliverErr error
	resolved   []int64
	payloads   []reminder.Payload
}

func (s *fakeSink) ResolveChannel(_ context.Context, channelID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolved = append(s.resolved, channelID)
	return s.resolveErr
}

func (s *fakeSink) Deliver(_ context.Context, _ int64, payload reminder.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deliverErr != nil {
		return s.deliverErr
	}
	s.payloads = append(s.payloads, payload)
	return nil
}

func (s *fakeSink) delivered() []reminder.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]reminder.Payload(nil), s.payloads...)
}

type fakeJournal struct {
	mu   sync.Mutex
	runs []reminder.Run
}

func (j *fakeJournal) RecordRun(_ context.Context, run reminder.Run) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs = append(j.runs, run)
	return nil
}

// start is a Tuesday morning, one hour before the default reminder time.
var start = time.Date(2025, time.July, 15, 8, 0, 0, 0, time.Local)

type fixture struct {
	clock    *clockwork.FakeClock
	registry *registry.Registry
	sink     *fakeSink
	settings *fakeSettings
	journal  *fakeJournal
	engine   *reminder.Engine
}

func newFixture(t *testing.T, opts ...reminder.Option) *fixture {
	t.Helper()
	f := &fixture{
		clock:    clockwork.NewFakeClockAt(start),
		sink:     &fakeSink{},
		settings: &fakeSettings{channel: reminderChat, times: []reminderTime{{9, 0}}},
		journal:  &fakeJournal{},
	}
	f.registry = registry.New(f.clock, nil)
	opts = append([]reminder.Option{reminder.WithClock(f.clock), reminder.WithJournal(f.journal)}, opts...)
	f.engine = reminder.NewEngine(f.registry, f.sink, f.settings, opts...)
	return f
}

// seed adds tasks due the given number of days after start. Overdue tasks are
// made by seeding first and advancing the clock afterwards.
func (f *fixture) seed(t *testing.T, days ...int) {
	t.Helper()
	for _, d := range days {
		deadline := start.AddDate(0, 0, d).Format(registry.DateLayout)
		if _, err := f.registry.Add("task", deadline, 7, "alice", 1); err != nil {
			t.Fatalf("seeding task due in %d days: %v", d, err)
		}
	}
}

func (f *fixture) runLoop(t *testing.T) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.engine.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel, done
}

func blockUntilWaiting(t *testing.T, clock *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("engine never started waiting: %v", err)
	}
}

func TestNextFireTime(t *testing.T) {
	t.Parallel()

	day := func(d, h, m int) time.Time { return time.Date(2025, time.July, d, h, m, 0, 0, time.Local) }
	tests := []struct {
		name         string
		now          time.Time
		hour, minute int
		want         time.Time
	}{
		{name: "later today", now: day(15, 8, 0), hour: 9, minute: 0, want: day(15, 9, 0)},
		{name: "exactly now rolls over", now: day(15, 9, 0), hour: 9, minute: 0, want: day(16, 9, 0)},
		{name: "just passed", now: day(15, 9, 1), hour: 9, minute: 0, want: day(16, 9, 0)},
		{name: "one second before", now: day(15, 8, 59).Add(59 * time.Second), hour: 9, minute: 0, want: day(15, 9, 0)},
		{name: "end of month", now: time.Date(2025, time.July, 31, 23, 0, 0, 0, time.Local), hour: 6, minute: 30,
			want: time.Date(2025, time.August, 1, 6, 30, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := reminder.NextFireTime(tt.now, tt.hour, tt.minute)
			if err != nil {
				t.Fatalf("NextFireTime() error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextFireTime() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := reminder.NextFireTime(day(15, 8, 0), 24, 0); !errors.Is(err, errs.ErrSchedulingTransient) {
		t.Errorf("hour 24 error = %v, want scheduling failure", err)
	}
}

func TestClassify_Buckets(t *testing.T) {
	t.Parallel()

	today := registry.DateOf(start)
	task := func(id, days int) registry.Task {
		return registry.Task{ID: id, Description: "t", CreatorID: int64(id), Deadline: today.AddDate(0, 0, days)}
	}
	summary, urgent := reminder.Classify(today, []registry.Task{task(1, -5), task(2, 0), task(3, 1)})

	if len(summary.Overdue) != 1 || len(summary.DueToday) != 1 || len(summary.DueTomorrow) != 1 {
		t.Fatalf("buckets = %d/%d/%d, want 1/1/1", len(summary.Overdue), len(summary.DueToday), len(summary.DueTomorrow))
	}
	if summary.Overdue[0].TaskID != 1 || summary.Overdue[0].DaysOverdue != 5 {
		t.Errorf("overdue entry = %+v, want task 1 overdue by 5", summary.Overdue[0])
	}
	if summary.DueToday[0].TaskID != 2 || summary.DueTomorrow[0].TaskID != 3 {
		t.Errorf("today/tomorrow = %d/%d, want 2/3", summary.DueToday[0].TaskID, summary.DueTomorrow[0].TaskID)
	}

	if urgent == nil || len(urgent.Entries) != 2 {
		t.Fatalf("urgent = %+v, want 2 entries", urgent)
	}
	if urgent.Entries[0].Status != reminder.StatusOverdue || urgent.Entries[1].Status != reminder.StatusDueToday {
		t.Errorf("urgent statuses = %s, %s", urgent.Entries[0].Status, urgent.Entries[1].Status)
	}

	if _, urgent := reminder.Classify(today, []registry.Task{task(4, 1)}); urgent != nil {
		t.Errorf("tomorrow-only urgent = %+v, want nil", urgent)
	}
}

func TestSendDailyReminders_NothingDue(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 3, 10)

	report, err := f.engine.SendDailyReminders(context.Background())
	if err != nil {
		t.Fatalf("SendDailyReminders() error: %v", err)
	}
	if report.Status != reminder.RunStatusEmpty {
		t.Errorf("status = %q, want empty", report.Status)
	}
	if len(f.sink.resolved) != 0 || len(f.sink.delivered()) != 0 {
		t.Errorf("sink was called: resolved=%v payloads=%d", f.sink.resolved, len(f.sink.delivered()))
	}
}

func TestSendDailyReminders_SummaryAndUrgent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 0, 1, 3)
	// Let the due-today task become one day overdue and the tomorrow task due today.
	f.clock.Advance(24 * time.Hour)
	f.seed(t, 1, 2)

	report, err := f.engine.SendDailyReminders(context.Background())
	if err != nil {
		t.Fatalf("SendDailyReminders() error: %v", err)
	}
	if report.Trigger != reminder.TriggerManual || report.Status != reminder.RunStatusSent {
		t.Errorf("report = %+v", report)
	}

	payloads := f.sink.delivered()
	if len(payloads) != 2 {
		t.Fatalf("delivered %d payloads, want 2", len(payloads))
	}
	summary, ok := payloads[0].(reminder.Summary)
	if !ok {
		t.Fatalf("first payload is %T, want Summary", payloads[0])
	}
	if len(summary.Overdue) != 1 || len(summary.DueToday) != 2 || len(summary.DueTomorrow) != 1 {
		t.Errorf("summary buckets = %d/%d/%d, want 1/2/1",
			len(summary.Overdue), len(summary.DueToday), len(summary.DueTomorrow))
	}
	urgent, ok := payloads[1].(reminder.Urgent)
	if !ok {
		t.Fatalf("second payload is %T, want Urgent", payloads[1])
	}
	if len(urgent.Entries) != 3 {
		t.Errorf("urgent has %d entries, want 3", len(urgent.Entries))
	}
	for _, entry := range urgent.Entries {
		if entry.Status != reminder.StatusOverdue && entry.Status != reminder.StatusDueToday {
			t.Errorf("unexpected urgent status %q", entry.Status)
		}
	}
}

func TestSendDailyReminders_TomorrowOnlySkipsUrgent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 1)

	if _, err := f.engine.SendDailyReminders(context.Background()); err != nil {
		t.Fatalf("SendDailyReminders() error: %v", err)
	}
	payloads := f.sink.delivered()
	if len(payloads) != 1 {
		t.Fatalf("delivered %d payloads, want only the summary", len(payloads))
	}
	if _, ok := payloads[0].(reminder.Summary); !ok {
		t.Errorf("payload is %T, want Summary", payloads[0])
	}
}

func TestSendDailyReminders_ChannelProblems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		channel    int64
		resolveErr error
	}{
		{name: "unset channel", channel: reminder.UnsetChannel},
		{name: "unresolvable channel", channel: reminderChat, resolveErr: errors.New("chat not found")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.settings.channel = tt.channel
			f.sink.resolveErr = tt.resolveErr
			f.seed(t, 0)

			report, err := f.engine.SendDailyReminders(context.Background())
			if !errors.Is(err, errs.ErrChannelUnresolved) {
				t.Fatalf("error = %v, want ChannelUnresolved", err)
			}
			if report.Status != reminder.RunStatusChannelUnresolved {
				t.Errorf("status = %q", report.Status)
			}
			if n := len(f.sink.delivered()); n != 0 {
				t.Errorf("delivered %d payloads, want none", n)
			}
		})
	}
}

func TestSendDailyReminders_DeliveryFailureIsReported(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.sink.deliverErr = errors.New("telegram is down")
	f.seed(t, 0)

	report, err := f.engine.SendDailyReminders(context.Background())
	if !errors.Is(err, errs.ErrDelivery) {
		t.Fatalf("error = %v, want delivery error", err)
	}
	if report.Status != reminder.RunStatusDeliveryFailed {
		t.Errorf("status = %q", report.Status)
	}

	f.journal.mu.Lock()
	defer f.journal.mu.Unlock()
	if len(f.journal.runs) != 1 {
		t.Fatalf("journal has %d runs, want 1", len(f.journal.runs))
	}
	run := f.journal.runs[0]
	if run.Status != reminder.RunStatusDeliveryFailed || run.DueToday != 1 || run.Error == "" || run.RunID != report.RunID {
		t.Errorf("journal run = %+v", run)
	}
}

func TestRun_FiresAtConfiguredTime(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 0)
	f.runLoop(t)

	blockUntilWaiting(t, f.clock)
	want := time.Date(2025, time.July, 15, 9, 0, 0, 0, time.Local)
	if got := f.engine.NextFire(); !got.Equal(want) {
		t.Fatalf("NextFire() = %v, want %v", got, want)
	}

	f.clock.Advance(59 * time.Minute)
	if n := len(f.sink.delivered()); n != 0 {
		t.Fatalf("delivered %d payloads before fire time", n)
	}

	f.clock.Advance(time.Minute)
	blockUntilWaiting(t, f.clock)
	if n := len(f.sink.delivered()); n != 2 {
		t.Fatalf("delivered %d payloads at fire time, want 2", n)
	}
	if got := f.engine.NextFire(); !got.Equal(want.AddDate(0, 0, 1)) {
		t.Errorf("NextFire() after cycle = %v, want next day", got)
	}

	f.journal.mu.Lock()
	defer f.journal.mu.Unlock()
	if len(f.journal.runs) != 1 || f.journal.runs[0].Trigger != reminder.TriggerScheduled {
		t.Errorf("journal runs = %+v", f.journal.runs)
	}
}

func TestRun_BacksOffAfterFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.settings.times = []reminderTime{{25, 0}, {9, 0}}
	f.runLoop(t)

	blockUntilWaiting(t, f.clock)
	if calls := f.settings.calls.Load(); calls != 1 {
		t.Fatalf("settings read %d times, want 1", calls)
	}
	if got, want := f.engine.NextFire(), start.Add(reminder.DefaultBackoff); !got.Equal(want) {
		t.Fatalf("NextFire() during backoff = %v, want end of backoff %v", got, want)
	}

	f.clock.Advance(reminder.DefaultBackoff - time.Minute)
	if calls := f.settings.calls.Load(); calls != 1 {
		t.Fatalf("retried before backoff elapsed (%d calls)", calls)
	}

	f.clock.Advance(time.Minute)
	blockUntilWaiting(t, f.clock)
	if calls := f.settings.calls.Load(); calls != 2 {
		t.Fatalf("settings read %d times after backoff, want 2", calls)
	}
	// The retry happens at 09:00 sharp, which is not strictly in the future.
	want := time.Date(2025, time.July, 16, 9, 0, 0, 0, time.Local)
	if got := f.engine.NextFire(); !got.Equal(want) {
		t.Errorf("NextFire() after retry = %v, want %v", got, want)
	}
	if f.engine.State() != reminder.StateIdle {
		t.Errorf("State() = %v, want idle", f.engine.State())
	}
}

func TestRun_StopEndsLoopWithoutReport(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 0)
	_, done := f.runLoop(t)

	blockUntilWaiting(t, f.clock)
	f.engine.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after Stop")
	}

	f.clock.Advance(2 * time.Hour)
	if n := len(f.sink.delivered()); n != 0 {
		t.Errorf("delivered %d payloads after Stop", n)
	}
	if f.engine.State() != reminder.StateStopped {
		t.Errorf("State() = %v, want stopped", f.engine.State())
	}
	if err := f.engine.Run(context.Background()); !errors.Is(err, reminder.ErrEngineStopped) {
		t.Errorf("Run() on stopped engine = %v, want ErrEngineStopped", err)
	}

	// Stop is idempotent.
	f.engine.Stop()
}

func TestRun_StopCutsBackoffShort(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.settings.times = []reminderTime{{25, 0}}
	_, done := f.runLoop(t)

	blockUntilWaiting(t, f.clock)
	f.engine.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() waited for the backoff to end after Stop")
	}
	if calls := f.settings.calls.Load(); calls != 1 {
		t.Errorf("settings read %d times, want 1", calls)
	}
}

func TestSendDailyReminders_DoesNotMoveTimer(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 0)
	f.runLoop(t)

	blockUntilWaiting(t, f.clock)
	before := f.engine.NextFire()

	if _, err := f.engine.SendDailyReminders(context.Background()); err != nil {
		t.Fatalf("SendDailyReminders() error: %v", err)
	}
	if got := f.engine.NextFire(); !got.Equal(before) {
		t.Errorf("NextFire() moved from %v to %v", before, got)
	}

	f.clock.Advance(time.Hour)
	blockUntilWaiting(t, f.clock)
	if n := len(f.sink.delivered()); n != 4 {
		t.Errorf("delivered %d payloads, want 2 manual + 2 scheduled", n)
	}
}
