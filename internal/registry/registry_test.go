package registry_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	errs "github.com/edgard/taskpilot/internal/errors"
	"github.com/edgard/taskpilot/internal/registry"
)

var now = time.Date(2025, time.July, 15, 10, 30, 0, 0, time.Local)

func newRegistry(t *testing.T) (*registry.Registry, *clockwork.FakeClock) {
	t.Helper()
	return newRegistryAt(t, now)
}

func newRegistryAt(t *testing.T, start time.Time) (*registry.Registry, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(start)
	return registry.New(clock, nil), clock
}

func dateIn(days int) string {
	return now.AddDate(0, 0, days).Format(registry.DateLayout)
}

func mustAdd(t *testing.T, r *registry.Registry, desc string, days int, creator int64) registry.Task {
	t.Helper()
	task, err := r.Add(desc, dateIn(days), creator, "user", 100)
	if err != nil {
		t.Fatalf("Add(%q, %d days) returned error: %v", desc, days, err)
	}
	return task
}

func TestAdd_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		description string
		deadline    string
		wantErr     error
	}{
		{name: "today is accepted", description: "ship it", deadline: dateIn(0)},
		{name: "future date", description: "ship it", deadline: dateIn(10)},
		{name: "surrounding whitespace", description: "ship it", deadline: "  " + dateIn(1) + " "},
		{name: "past deadline", description: "ship it", deadline: "2000-01-01", wantErr: errs.ErrPastDeadline},
		{name: "yesterday", description: "ship it", deadline: dateIn(-1), wantErr: errs.ErrPastDeadline},
		{name: "US format", description: "ship it", deadline: "07/30/2025", wantErr: errs.ErrInvalidDateFormat},
		{name: "single digit month", description: "ship it", deadline: "2025-7-30", wantErr: errs.ErrInvalidDateFormat},
		{name: "impossible date", description: "ship it", deadline: "2025-02-30", wantErr: errs.ErrInvalidDateFormat},
		{name: "with time of day", description: "ship it", deadline: "2025-07-30T10:00", wantErr: errs.ErrInvalidDateFormat},
		{name: "empty text", description: "ship it", deadline: "", wantErr: errs.ErrInvalidDateFormat},
		{name: "blank description", description: "   ", deadline: dateIn(1), wantErr: errs.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, _ := newRegistry(t)

			task, err := r.Add(tt.description, tt.deadline, 1, "alice", 100)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Add() error = %v, want %v", err, tt.wantErr)
				}
				if r.Count() != 0 {
					t.Errorf("Count() = %d after failed Add, want 0", r.Count())
				}
				return
			}
			if err != nil {
				t.Fatalf("Add() unexpected error: %v", err)
			}
			if task.ID != 1 {
				t.Errorf("task.ID = %d, want 1", task.ID)
			}
			if task.Completed {
				t.Error("new task is marked completed")
			}
		})
	}
}

func TestAdd_ErrorMessages(t *testing.T) {
	t.Parallel()
	r, _ := newRegistry(t)

	_, err := r.Add("x", "2000-01-01", 1, "a", 1)
	if got := errs.UserMessage(err); got != "Deadline cannot be in the past." {
		t.Errorf("past deadline message = %q", got)
	}
	_, err = r.Add("x", "07/30/2025", 1, "a", 1)
	if got := errs.UserMessage(err); got != "Invalid date format. Please use YYYY-MM-DD format." {
		t.Errorf("bad format message = %q", got)
	}
}

func TestAdd_IDsAreSequentialAndNeverReused(t *testing.T) {
	t.Parallel()
	r, _ := newRegistry(t)

	first := mustAdd(t, r, "one", 1, 1)
	if _, err := r.Add("bad", "nope", 1, "a", 1); err == nil {
		t.Fatal("expected invalid date error")
	}
	second := mustAdd(t, r, "two", 1, 1)
	if _, err := r.Complete(second.ID, 1); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if _, err := r.Complete(first.ID, 1); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	third := mustAdd(t, r, "three", 1, 1)

	got := []int{first.ID, second.ID, third.ID}
	want := []int{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v, want %v", got, want)
		}
	}
	if msg := third.AddedMessage(); msg != "Task #3 added successfully! Deadline: "+dateIn(1) {
		t.Errorf("AddedMessage() = %q", msg)
	}
}

func TestComplete_Authorization(t *testing.T) {
	t.Parallel()
	r, _ := newRegistry(t)
	const alice, bob = int64(10), int64(20)

	task := mustAdd(t, r, "write report", 2, alice)

	if _, err := r.Complete(task.ID, bob); !errors.Is(err, errs.ErrNotOwner) {
		t.Fatalf("Complete by non-owner error = %v, want NotOwner", err)
	}
	if active := r.ListActive(); len(active) != 1 || active[0].ID != task.ID {
		t.Fatalf("task missing after rejected completion: %+v", active)
	}

	done, err := r.Complete(task.ID, alice)
	if err != nil {
		t.Fatalf("Complete by owner error: %v", err)
	}
	if !done.Completed || done.Description != "write report" {
		t.Errorf("Complete() = %+v, want completed copy with description", done)
	}
	if msg := done.CompletedMessage(); msg != "Task #1 'write report' marked as completed and removed!" {
		t.Errorf("CompletedMessage() = %q", msg)
	}
	if n := len(r.ListActive()); n != 0 {
		t.Errorf("ListActive() has %d tasks after completion, want 0", n)
	}

	if _, err := r.Complete(task.ID, alice); !errors.Is(err, errs.ErrTaskNotFound) {
		t.Errorf("second Complete error = %v, want TaskNotFound", err)
	}
}

func TestComplete_UnknownID(t *testing.T) {
	t.Parallel()
	r, _ := newRegistry(t)

	_, err := r.Complete(42, 1)
	if !errors.Is(err, errs.ErrTaskNotFound) {
		t.Fatalf("error = %v, want TaskNotFound", err)
	}
	if got := errs.UserMessage(err); got != "Task #42 not found." {
		t.Errorf("message = %q", got)
	}
}

func TestListActive_ReturnsCopiesInIDOrder(t *testing.T) {
	t.Parallel()
	r, _ := newRegistry(t)

	for i := 0; i < 5; i++ {
		mustAdd(t, r, "task", i, 1)
	}
	list := r.ListActive()
	for i, task := range list {
		if task.ID != i+1 {
			t.Fatalf("list[%d].ID = %d, want %d", i, task.ID, i+1)
		}
	}

	list[0].Description = "mutated"
	if r.ListActive()[0].Description != "task" {
		t.Error("mutating a listed task changed the stored record")
	}
}

func TestDueForReminder_Threshold(t *testing.T) {
	t.Parallel()
	// Created on an earlier day so the overdue task passes the past-deadline check.
	r, clock := newRegistryAt(t, now.AddDate(0, 0, -5))
	overdue := mustAdd(t, r, "overdue", -5, 1)
	clock.Advance(5 * 24 * time.Hour)
	today := mustAdd(t, r, "today", 0, 1)
	tomorrow := mustAdd(t, r, "tomorrow", 1, 1)
	mustAdd(t, r, "later", 3, 1)

	due := r.DueForReminder(r.Today())
	if len(due) != 3 {
		t.Fatalf("DueForReminder returned %d tasks, want 3: %+v", len(due), due)
	}
	want := []int{overdue.ID, today.ID, tomorrow.ID}
	for i, id := range want {
		if due[i].ID != id {
			t.Errorf("due[%d].ID = %d, want %d", i, due[i].ID, id)
		}
	}
}

func TestEvictOverdue(t *testing.T) {
	t.Parallel()
	r, clock := newRegistryAt(t, now.AddDate(0, 0, -31))
	stale := mustAdd(t, r, "31 days overdue", -31, 1)
	clock.Advance(24 * time.Hour)
	kept := mustAdd(t, r, "30 days overdue", -30, 1)
	clock.Advance(30 * 24 * time.Hour)
	fresh := mustAdd(t, r, "due today", 0, 1)

	today := r.Today()
	if days := stale.DaysLeft(today); days != -31 {
		t.Fatalf("stale.DaysLeft = %d, want -31", days)
	}

	if removed := r.EvictOverdue(today, 30); removed != 1 {
		t.Fatalf("EvictOverdue removed %d, want 1", removed)
	}
	active := r.ListActive()
	if len(active) != 2 || active[0].ID != kept.ID || active[1].ID != fresh.ID {
		t.Fatalf("remaining tasks = %+v, want ids %d and %d", active, kept.ID, fresh.ID)
	}
	if removed := r.EvictOverdue(today, 30); removed != 0 {
		t.Errorf("second EvictOverdue removed %d, want 0", removed)
	}
}

func TestTaskStatus(t *testing.T) {
	t.Parallel()

	today := registry.DateOf(now)
	tests := []struct {
		days int
		want string
	}{
		{days: -3, want: "Overdue by 3 days"},
		{days: 0, want: "Due today!"},
		{days: 2, want: "2 days left"},
		{days: 12, want: "12 days left"},
	}
	for _, tt := range tests {
		task := registry.Task{Deadline: today.AddDate(0, 0, tt.days)}
		if got := task.Status(today); got != tt.want {
			t.Errorf("Status(%d days) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestDaysUntil_AcrossDST(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	before := time.Date(2025, time.March, 29, 0, 0, 0, 0, loc)
	after := time.Date(2025, time.March, 31, 0, 0, 0, 0, loc)
	if got := registry.DaysUntil(after, before); got != 2 {
		t.Errorf("DaysUntil across DST = %d, want 2", got)
	}
}
