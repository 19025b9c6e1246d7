package reminder

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mysimjee/ToDo/internal/models"
)

// Scheduler maps task due dates onto one-shot alarms. All state transitions
// happen under one mutex, so a Cancel racing a Fire for the same key settles
// on exactly one visible effect.
type Scheduler struct {
	alarms     AlarmService
	notifier   Notifier
	foreground *Foreground
	log        *slog.Logger

	mu      sync.Mutex
	entries map[int64]State
}

// NewScheduler wires a scheduler to its collaborators. All arguments are
// required; the logger is scoped to the component.
func NewScheduler(alarms AlarmService, notifier Notifier, foreground *Foreground, log *slog.Logger) *Scheduler {
	return &Scheduler{
		alarms:     alarms,
		notifier:   notifier,
		foreground: foreground,
		log:        log.With("component", "reminder"),
		entries:    make(map[int64]State),
	}
}

// Schedule arms a one-shot reminder at the task's due date. Tasks without a
// due date, or with one already in the past, are left unscheduled. A task
// that already has a pending reminder is rescheduled (cancel then schedule).
// The returned error is best-effort information; save/update flows log it
// and carry on.
func (s *Scheduler) Schedule(task models.Task) error {
	if !task.HasDueDate() {
		return nil
	}
	at := *task.CompletionDate
	if !at.After(time.Now()) {
		return nil
	}

	if !s.alarms.CanScheduleExact() {
		s.log.Warn("exact alarms not permitted, skipping reminder", "task_id", task.ID)
		return fmt.Errorf("task %d: %w", task.ID, models.ErrSchedulingUnavailable)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries[task.ID] == Scheduled {
		s.alarms.Cancel(task.ID)
	}

	id, name := task.ID, task.Name
	if err := s.alarms.Schedule(task.ID, at, func() { s.Fire(id, name) }); err != nil {
		s.log.Error("failed to arm reminder", "task_id", task.ID, "error", err)
		return fmt.Errorf("task %d: %w", task.ID, models.ErrSchedulingUnavailable)
	}

	s.entries[task.ID] = Scheduled
	s.log.Debug("reminder scheduled", "task_id", task.ID, "fire_at", at)
	return nil
}

// Cancel disarms any pending reminder for the task. Idempotent: cancelling
// an unknown or already-consumed key is a no-op. Once Cancel returns, no
// notification for that key will surface without a new Schedule.
func (s *Scheduler) Cancel(taskID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[taskID]; !ok {
		return
	}
	if s.entries[taskID] == Scheduled {
		s.alarms.Cancel(taskID)
	}
	s.entries[taskID] = Cancelled
	s.log.Debug("reminder cancelled", "task_id", taskID)
}

// Fire is invoked by the alarm service at the fire time. A fire while the
// application is in the foreground is suppressed but still consumes the
// reminder; replaying Fire for a consumed key does nothing.
func (s *Scheduler) Fire(taskID int64, taskName string) {
	s.mu.Lock()
	if s.entries[taskID] != Scheduled {
		s.mu.Unlock()
		return
	}
	s.entries[taskID] = Fired
	suppressed := s.foreground.Visible()
	s.mu.Unlock()

	if suppressed {
		s.log.Debug("app in foreground, reminder suppressed", "task_id", taskID)
		return
	}

	if taskName == "" {
		taskName = "Task"
	}
	s.notifier.Notify(taskID, "Task Reminder", "Reminder for: "+taskName)
}

// StateOf reports the current reminder state for a task id.
func (s *Scheduler) StateOf(taskID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[taskID]
}
