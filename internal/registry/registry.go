// Package registry holds the in-memory task registry: the single, volatile
// store of active deadline tasks. It knows nothing about scheduling or
// notification delivery.
package registry

import (
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	errs "github.com/edgard/taskpilot/internal/errors"
)

// Registry owns every task record and the id counter. All mutation goes
// through its methods; each method runs as one critical section.
type Registry struct {
	mu     sync.RWMutex
	tasks  map[int]*Task
	nextID int

	clock  clockwork.Clock
	logger *slog.Logger
}

// New creates an empty registry. The clock decides what "today" is.
func New(clock clockwork.Clock, logger *slog.Logger) *Registry {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		tasks:  make(map[int]*Task),
		nextID: 1,
		clock:  clock,
		logger: logger.With("component", "registry"),
	}
}

// Today returns the current local date.
func (r *Registry) Today() time.Time {
	return DateOf(r.clock.Now())
}

// Add validates and stores a new task, assigning it the next sequential id.
// The id counter only advances on success and is never rewound.
func (r *Registry) Add(description, deadlineText string, creatorID int64, creatorName string, originChannel int64) (Task, error) {
	if strings.TrimSpace(description) == "" {
		return Task{}, errs.New(errs.CodeInvalidInput, "Task description cannot be empty.")
	}

	deadline, err := ParseDeadline(strings.TrimSpace(deadlineText))
	if err != nil {
		return Task{}, errs.Wrap(errs.CodeInvalidDateFormat, "Invalid date format. Please use YYYY-MM-DD format.", err)
	}

	now := r.clock.Now()
	if deadline.Before(DateOf(now)) {
		return Task{}, errs.New(errs.CodePastDeadline, "Deadline cannot be in the past.")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	task := &Task{
		ID:            r.nextID,
		Description:   description,
		Deadline:      deadline,
		CreatorID:     creatorID,
		CreatorName:   creatorName,
		OriginChannel: originChannel,
		CreatedAt:     now,
	}
	r.tasks[task.ID] = task
	r.nextID++

	r.logger.Info("Task added",
		"task_id", task.ID,
		"deadline", task.DeadlineString(),
		"creator_id", creatorID,
		"origin_channel", originChannel)

	return *task, nil
}

// Complete removes the task if requesterID is its creator and returns the
// removed record with Completed set. There is no "already completed" state:
// a second call for the same id reports the task as not found.
func (r *Registry) Complete(taskID int, requesterID int64) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok {
		return Task{}, errs.Newf(errs.CodeTaskNotFound, "Task #%d not found.", taskID)
	}
	if task.CreatorID != requesterID {
		r.logger.Warn("Completion rejected, requester is not the creator",
			"task_id", taskID, "requester_id", requesterID, "creator_id", task.CreatorID)
		return Task{}, errs.Newf(errs.CodeNotOwner, "Only the task creator can mark Task #%d as completed.", taskID)
	}

	delete(r.tasks, taskID)

	done := *task
	done.Completed = true
	r.logger.Info("Task completed", "task_id", taskID, "requester_id", requesterID)
	return done, nil
}

// ListActive returns every live task ordered by id.
func (r *Registry) ListActive() []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		out = append(out, *task)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of live tasks.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// DueForReminder returns tasks due today, tomorrow, or at any point in the
// past, ordered by deadline and then id. Tasks two or more days out are
// excluded.
func (r *Registry) DueForReminder(today time.Time) []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Task
	for _, task := range r.tasks {
		if DaysUntil(task.Deadline, today) <= 1 {
			out = append(out, *task)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Deadline.Equal(out[j].Deadline) {
			return out[i].Deadline.Before(out[j].Deadline)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// EvictOverdue deletes every task overdue by more than thresholdDays and
// returns how many were removed.
func (r *Registry) EvictOverdue(today time.Time, thresholdDays int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, task := range r.tasks {
		if -DaysUntil(task.Deadline, today) > thresholdDays {
			delete(r.tasks, id)
			removed++
		}
	}

	if removed > 0 {
		r.logger.Info("Evicted overdue tasks", "count", removed, "threshold_days", thresholdDays)
	}
	return removed
}
