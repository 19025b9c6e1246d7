// Package repository is the sole access path to the store. Every call is
// funneled through a single goroutine dedicated to blocking storage I/O, so
// mutations issued by one caller apply in issuance order and the store never
// sees concurrent writers. Storage failures are converted into the shared
// error taxonomy and logged; they never escape as raw driver errors.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mysimjee/ToDo/internal/db"
	"github.com/mysimjee/ToDo/internal/models"
)

// ReminderScheduler is the slice of the reminder scheduler the repository
// drives on task mutations.
type ReminderScheduler interface {
	Schedule(task models.Task) error
	Cancel(taskID int64)
}

// Repository hides the store behind typed outcomes and owns the reminder
// bookkeeping tied to deletes and completion toggles. Construct one at
// startup with New and pass it by reference; there is no package-level
// instance.
type Repository struct {
	db    *db.DB
	sched ReminderScheduler
	log   *slog.Logger

	ops       chan func()
	closed    chan struct{}
	closeOnce sync.Once
}

// New starts the repository's storage lane.
func New(database *db.DB, sched ReminderScheduler, log *slog.Logger) *Repository {
	r := &Repository{
		db:     database,
		sched:  sched,
		log:    log.With("component", "repository"),
		ops:    make(chan func()),
		closed: make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *Repository) loop() {
	for {
		select {
		case op := <-r.ops:
			op()
		case <-r.closed:
			return
		}
	}
}

// Close stops the storage lane. In-flight operations complete; later calls
// fail with models.ErrNotInitialized. Safe to call more than once.
func (r *Repository) Close() {
	r.closeOnce.Do(func() { close(r.closed) })
}

// run executes fn on the storage lane and waits for its result. The caller's
// context only abandons the wait; an accepted operation still runs to
// completion so issuance order is preserved.
func (r *Repository) run(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-r.closed:
		return models.ErrNotInitialized
	default:
	}
	errc := make(chan error, 1)
	select {
	case r.ops <- func() { errc <- fn() }:
	case <-r.closed:
		return models.ErrNotInitialized
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// storeErr folds a raw storage error into the taxonomy, keeping NotFound
// distinct and wrapping everything else as a storage failure.
func (r *Repository) storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrNotFound) {
		r.log.Warn("record not found", "op", op, "error", err)
		return err
	}
	r.log.Error("storage operation failed", "op", op, "error", err)
	return fmt.Errorf("%s: %w: %w", op, models.ErrStorage, err)
}

// GetTask retrieves one task. A failed read yields nil plus the logged
// cause; callers render an empty state rather than crash.
func (r *Repository) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	var t *models.Task
	err := r.run(ctx, func() error {
		var err error
		t, err = r.db.GetTask(id)
		return err
	})
	if err != nil {
		return nil, r.storeErr("get task", err)
	}
	return t, nil
}

// GetSubTasks returns the stored subtasks of a task in insertion order.
func (r *Repository) GetSubTasks(ctx context.Context, taskID int64) ([]models.SubTask, error) {
	var subs []models.SubTask
	err := r.run(ctx, func() error {
		var err error
		subs, err = r.db.GetSubTasksForTask(taskID)
		return err
	})
	if err != nil {
		return nil, r.storeErr("get subtasks", err)
	}
	return subs, nil
}

// GetTasksWithSubTasks returns every task joined with its subtasks.
func (r *Repository) GetTasksWithSubTasks(ctx context.Context) ([]models.TaskWithSubTasks, error) {
	var tasks []models.TaskWithSubTasks
	err := r.run(ctx, func() error {
		var err error
		tasks, err = r.db.TasksWithSubTasks()
		return err
	})
	if err != nil {
		return nil, r.storeErr("get tasks with subtasks", err)
	}
	return tasks, nil
}

// GetTasksByCompletionStatus returns tasks matching the completion filter,
// joined with their subtasks, due-date ascending with undated tasks last.
func (r *Repository) GetTasksByCompletionStatus(ctx context.Context, isCompleted bool) ([]models.TaskWithSubTasks, error) {
	var tasks []models.TaskWithSubTasks
	err := r.run(ctx, func() error {
		var err error
		tasks, err = r.db.TasksByCompletionStatus(isCompleted)
		return err
	})
	if err != nil {
		return nil, r.storeErr("get tasks by completion status", err)
	}
	return tasks, nil
}

// InsertTask persists a task, replacing any row with the same id.
func (r *Repository) InsertTask(ctx context.Context, t models.Task) error {
	return r.storeErr("insert task", r.run(ctx, func() error { return r.db.InsertTask(t) }))
}

// InsertSubTask persists a subtask, replacing any row with the same id.
func (r *Repository) InsertSubTask(ctx context.Context, s models.SubTask) error {
	return r.storeErr("insert subtask", r.run(ctx, func() error { return r.db.InsertSubTask(s) }))
}

// UpdateTask replaces the full task row. A failed write leaves persisted
// state unknown; callers should re-query.
func (r *Repository) UpdateTask(ctx context.Context, t models.Task) error {
	return r.storeErr("update task", r.run(ctx, func() error { return r.db.UpdateTask(t) }))
}

// UpdateSubTask replaces the full subtask row.
func (r *Repository) UpdateSubTask(ctx context.Context, s models.SubTask) error {
	return r.storeErr("update subtask", r.run(ctx, func() error { return r.db.UpdateSubTask(s) }))
}

// DeleteSubTask removes one subtask row.
func (r *Repository) DeleteSubTask(ctx context.Context, id int64) error {
	return r.storeErr("delete subtask", r.run(ctx, func() error { return r.db.DeleteSubTask(id) }))
}

// DeleteTask removes the task and, through the cascade, all its subtasks,
// and cancels any pending reminder so no timer outlives its task.
func (r *Repository) DeleteTask(ctx context.Context, taskID int64) error {
	err := r.run(ctx, func() error { return r.db.DeleteTask(taskID) })
	if err != nil {
		return r.storeErr("delete task", err)
	}
	r.sched.Cancel(taskID)
	return nil
}

// UpdateTaskCompletionStatus flips one task's completion flag. Completing a
// task cancels its reminder; un-completing re-arms it from the stored due
// date. Scheduling problems are logged, never returned: the toggle already
// persisted.
func (r *Repository) UpdateTaskCompletionStatus(ctx context.Context, taskID int64, isCompleted bool) error {
	err := r.run(ctx, func() error { return r.db.UpdateTaskCompletionStatus(taskID, isCompleted) })
	if err != nil {
		return r.storeErr("update task completion", err)
	}

	r.sched.Cancel(taskID)
	if !isCompleted {
		t, err := r.GetTask(ctx, taskID)
		if err != nil {
			return nil
		}
		if err := r.sched.Schedule(*t); err != nil {
			r.log.Warn("could not reschedule reminder", "task_id", taskID, "error", err)
		}
	}
	return nil
}

// UpdateSubTaskCompletionStatus flips one subtask's completion flag.
func (r *Repository) UpdateSubTaskCompletionStatus(ctx context.Context, subTaskID int64, isCompleted bool) error {
	return r.storeErr("update subtask completion",
		r.run(ctx, func() error { return r.db.UpdateSubTaskCompletionStatus(subTaskID, isCompleted) }))
}

// UpdateSubTasksCompletionStatusByTaskID flips the completion flag of every
// subtask owned by a task, cascading the owner's checkbox.
func (r *Repository) UpdateSubTasksCompletionStatusByTaskID(ctx context.Context, taskID int64, isCompleted bool) error {
	return r.storeErr("update subtasks completion",
		r.run(ctx, func() error { return r.db.UpdateSubTasksCompletionStatusByTaskID(taskID, isCompleted) }))
}

// RescheduleAll re-arms reminders for every incomplete task with a future
// due date. Meant for process start, since in-process alarms do not survive
// a restart.
func (r *Repository) RescheduleAll(ctx context.Context) error {
	tasks, err := r.GetTasksByCompletionStatus(ctx, false)
	if err != nil {
		return err
	}
	for _, tws := range tasks {
		if err := r.sched.Schedule(tws.Task); err != nil {
			r.log.Warn("could not arm reminder", "task_id", tws.Task.ID, "error", err)
		}
	}
	return nil
}
