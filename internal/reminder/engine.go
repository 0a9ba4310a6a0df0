// Package reminder implements the daily deadline reminder engine. The engine
// wakes once per day at the configured time, classifies due tasks by urgency
// and hands the resulting payloads to a notification sink.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	errs "github.com/edgard/taskpilot/internal/errors"
	"github.com/edgard/taskpilot/internal/registry"
)

// UnsetChannel is the reminder channel value meaning "not configured".
const UnsetChannel int64 = 0

// DefaultBackoff is the wait after a failed cycle before scheduling again.
const DefaultBackoff = time.Hour

// ErrEngineStopped is returned by Run on an engine that was already stopped.
var ErrEngineStopped = errors.New("reminder engine is stopped")

// TaskSource provides the tasks needing a reminder on a given day.
type TaskSource interface {
	DueForReminder(today time.Time) []registry.Task
}

// Sink delivers payloads to a chat. ResolveChannel must fail when the chat
// cannot be reached so that a cycle can be aborted before any delivery.
type Sink interface {
	ResolveChannel(ctx context.Context, channelID int64) error
	Deliver(ctx context.Context, channelID int64, payload Payload) error
}

// Settings exposes the runtime-mutable reminder configuration.
type Settings interface {
	ReminderChannel() int64
	ReminderTime() (hour, minute int)
}

// Run is the journal record of one reminder cycle.
type Run struct {
	RunID       string
	Trigger     Trigger
	ChannelID   int64
	Overdue     int
	DueToday    int
	DueTomorrow int
	Status      string
	Error       string
	RunAt       time.Time
}

// Journal records the outcome of every reminder cycle.
type Journal interface {
	RecordRun(ctx context.Context, run Run) error
}

// State is the engine lifecycle state.
type State int

const (
	StateIdle State = iota
	StateStopped
)

func (s State) String() string {
	if s == StateStopped {
		return "stopped"
	}
	return "idle"
}

// Trigger tells what started a reminder cycle.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// Report describes the outcome of one reminder cycle.
type Report struct {
	RunID     string
	Trigger   Trigger
	Date      time.Time
	ChannelID int64
	Status    string
	Summary   *Summary
	Urgent    *Urgent
}

// Engine runs the daily reminder loop. The zero value is not usable; create
// engines with NewEngine.
type Engine struct {
	source   TaskSource
	sink     Sink
	settings Settings
	journal  Journal
	clock    clockwork.Clock
	logger   *slog.Logger
	backoff  time.Duration

	stopped  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	nextFire time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for scheduling and for deciding "today".
func WithClock(clock clockwork.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithBackoff overrides DefaultBackoff.
func WithBackoff(d time.Duration) Option {
	return func(e *Engine) { e.backoff = d }
}

// WithJournal records every cycle in j.
func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// NewEngine creates an idle engine.
func NewEngine(source TaskSource, sink Sink, settings Settings, opts ...Option) *Engine {
	e := &Engine{
		source:   source,
		sink:     sink,
		settings: settings,
		clock:    clockwork.NewRealClock(),
		backoff:  DefaultBackoff,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e.logger = e.logger.With("component", "reminder_engine")
	return e
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	if e.stopped.Load() {
		return StateStopped
	}
	return StateIdle
}

// NextFire returns the instant the loop is currently waiting for, or the
// zero time if the loop has not scheduled anything yet. During a backoff it
// is the end of the backoff, when the next fire time is computed again.
func (e *Engine) NextFire() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nextFire
}

func (e *Engine) setNextFire(t time.Time) {
	e.mu.Lock()
	e.nextFire = t
	e.mu.Unlock()
}

// Stop moves the engine to the stopped state. Stopping is permanent. A
// pending wait, whether for the next fire time or a backoff, is cut short
// right away instead of running to its end; either way no report is sent
// afterwards.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.stopped.Store(true)
		close(e.stopCh)
		e.logger.Info("Daily reminder engine stopped")
	})
}

// Run executes the daily loop until Stop is called or ctx is cancelled.
// Failed cycles are retried after the backoff; they never end the loop.
func (e *Engine) Run(ctx context.Context) error {
	if e.stopped.Load() {
		return ErrEngineStopped
	}

	e.logger.Info("Daily reminder loop started", "backoff", e.backoff)
	for {
		if e.stopped.Load() || ctx.Err() != nil {
			e.logger.Info("Daily reminder loop exiting")
			return nil
		}

		if err := e.runCycle(ctx); err != nil {
			e.logger.Error("Error in reminder scheduler, backing off", "error", err, "backoff", e.backoff)
			e.setNextFire(e.clock.Now().Add(e.backoff))
			e.sleep(ctx, e.backoff)
		}
	}
}

// runCycle computes the next fire instant, waits for it and sends the
// report. Any failure, including a panic, comes back as a scheduling error.
func (e *Engine) runCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.Wrap(errs.CodeSchedulingFailure, "reminder cycle panicked", fmt.Errorf("%v", r))
		}
	}()

	hour, minute := e.settings.ReminderTime()
	now := e.clock.Now()
	next, err := NextFireTime(now, hour, minute)
	if err != nil {
		return err
	}
	e.setNextFire(next)

	wait := next.Sub(now)
	e.logger.Info("Next reminder scheduled",
		"at", next.Format("2006-01-02 15:04"),
		"sleep_hours", fmt.Sprintf("%.1f", wait.Hours()))

	if !e.sleep(ctx, wait) || e.stopped.Load() {
		return nil
	}

	// Report failures are logged and recorded by the report step itself and
	// do not delay the next cycle.
	_, _ = e.send(ctx, TriggerScheduled)
	return nil
}

// sleep waits for d on the engine clock. It returns false when the wait was
// cut short by Stop or ctx.
func (e *Engine) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := e.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.Chan():
		return true
	case <-e.stopCh:
		return false
	case <-ctx.Done():
		return false
	}
}

// SendDailyReminders runs one report cycle immediately. It can be called at
// any time and does not affect the loop's next fire instant.
func (e *Engine) SendDailyReminders(ctx context.Context) (Report, error) {
	return e.send(ctx, TriggerManual)
}

// Report statuses, as stored in the journal.
const (
	RunStatusSent              = "sent"
	RunStatusEmpty             = "empty"
	RunStatusChannelUnresolved = "channel_unresolved"
	RunStatusDeliveryFailed    = "delivery_failed"
)

func (e *Engine) send(ctx context.Context, trigger Trigger) (report Report, err error) {
	today := registry.DateOf(e.clock.Now())
	report = Report{
		RunID:     uuid.NewString(),
		Trigger:   trigger,
		Date:      today,
		ChannelID: e.settings.ReminderChannel(),
	}
	log := e.logger.With("run_id", report.RunID, "trigger", string(trigger), "channel_id", report.ChannelID)

	defer func() {
		if r := recover(); r != nil {
			err = errs.Wrap(errs.CodeSchedulingFailure, "reminder report panicked", fmt.Errorf("%v", r))
			report.Status = RunStatusDeliveryFailed
		}
		if err != nil {
			log.ErrorContext(ctx, "Error sending daily reminders", "error", err)
		}
		e.record(ctx, report, err)
	}()

	tasks := e.source.DueForReminder(today)
	if len(tasks) == 0 {
		log.InfoContext(ctx, "No tasks requiring reminders today")
		report.Status = RunStatusEmpty
		return report, nil
	}

	summary, urgent := Classify(today, tasks)
	report.Summary = &summary
	report.Urgent = urgent

	if report.ChannelID == UnsetChannel {
		report.Status = RunStatusChannelUnresolved
		return report, errs.New(errs.CodeChannelUnresolved, "No reminder channel set.")
	}
	if err := e.sink.ResolveChannel(ctx, report.ChannelID); err != nil {
		report.Status = RunStatusChannelUnresolved
		return report, errs.Wrap(errs.CodeChannelUnresolved,
			fmt.Sprintf("Reminder channel %d not found.", report.ChannelID), err)
	}

	if err := e.sink.Deliver(ctx, report.ChannelID, summary); err != nil {
		report.Status = RunStatusDeliveryFailed
		return report, errs.Wrap(errs.CodeDelivery, "failed to deliver reminder summary", err)
	}
	if urgent != nil {
		if err := e.sink.Deliver(ctx, report.ChannelID, *urgent); err != nil {
			report.Status = RunStatusDeliveryFailed
			return report, errs.Wrap(errs.CodeDelivery, "failed to deliver urgent reminders", err)
		}
	}

	report.Status = RunStatusSent
	urgentCount := 0
	if urgent != nil {
		urgentCount = len(urgent.Entries)
	}
	log.InfoContext(ctx, "Daily reminders sent",
		"overdue", len(summary.Overdue),
		"due_today", len(summary.DueToday),
		"due_tomorrow", len(summary.DueTomorrow),
		"urgent", urgentCount)
	return report, nil
}

func (e *Engine) record(ctx context.Context, report Report, cause error) {
	if e.journal == nil {
		return
	}

	run := Run{
		RunID:     report.RunID,
		Trigger:   report.Trigger,
		ChannelID: report.ChannelID,
		Status:    report.Status,
		RunAt:     e.clock.Now(),
	}
	if report.Summary != nil {
		run.Overdue = len(report.Summary.Overdue)
		run.DueToday = len(report.Summary.DueToday)
		run.DueTomorrow = len(report.Summary.DueTomorrow)
	}
	if cause != nil {
		run.Error = cause.Error()
	}

	if err := e.journal.RecordRun(ctx, run); err != nil {
		e.logger.WarnContext(ctx, "Failed to record reminder run", "run_id", report.RunID, "error", err)
	}
}
