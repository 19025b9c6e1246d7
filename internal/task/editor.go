// Package task holds the editing invariants applied to a task and its
// subtask working collection before anything is persisted.
package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/mysimjee/ToDo/internal/models"
)

// Store is the slice of the repository the editor persists through.
type Store interface {
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	GetSubTasks(ctx context.Context, taskID int64) ([]models.SubTask, error)
	InsertTask(ctx context.Context, t models.Task) error
	InsertSubTask(ctx context.Context, s models.SubTask) error
	UpdateTask(ctx context.Context, t models.Task) error
	UpdateSubTask(ctx context.Context, s models.SubTask) error
	DeleteSubTask(ctx context.Context, id int64) error
}

// Reminders is the slice of the reminder scheduler the editor drives.
type Reminders interface {
	Schedule(task models.Task) error
	Cancel(taskID int64)
}

// Editor is the working copy of one task and its subtask collection. All
// mutators operate purely in memory; nothing reaches the store until Save
// (create path) or Update (edit path). Unmatched subtask operations are
// logged anomalies, never fatal.
type Editor struct {
	store     Store
	reminders Reminders
	log       *slog.Logger

	task      models.Task
	subtasks  []models.SubTask
	persisted bool
}

// NewEditor returns an editor initialized with a fresh working task.
func NewEditor(store Store, reminders Reminders, log *slog.Logger) *Editor {
	e := &Editor{
		store:     store,
		reminders: reminders,
		log:       log.With("component", "task_editor"),
	}
	e.Reset()
	return e
}

// Reset re-initializes the working copy with a new identity.
func (e *Editor) Reset() {
	e.task = models.Task{ID: models.NewID(), Priority: 1}
	e.subtasks = nil
	e.persisted = false
}

// Load populates the working copy from the store for the edit flow.
func (e *Editor) Load(ctx context.Context, taskID int64) error {
	t, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	subs, err := e.store.GetSubTasks(ctx, taskID)
	if err != nil {
		return err
	}
	e.task = *t
	e.subtasks = subs
	e.persisted = true
	return nil
}

// Task returns a copy of the working task.
func (e *Editor) Task() models.Task {
	t := e.task
	t.Tags = append([]string(nil), e.task.Tags...)
	return t
}

// SubTasks returns a copy of the working subtask collection.
func (e *Editor) SubTasks() []models.SubTask {
	return append([]models.SubTask(nil), e.subtasks...)
}

func (e *Editor) SetName(name string)         { e.task.Name = name }
func (e *Editor) SetPriority(priority int)    { e.task.Priority = priority }
func (e *Editor) SetCompleted(completed bool) { e.task.IsCompleted = completed }
func (e *Editor) SetDueDate(due *time.Time)   { e.task.CompletionDate = due }
func (e *Editor) AttachPhoto(uri string)      { e.task.PhotoAttachment = uri }
func (e *Editor) ClearPhoto()                 { e.task.PhotoAttachment = "" }

// AddSubTask appends a new subtask to the working collection and returns it.
// It is not persisted until the owning task is saved or updated.
func (e *Editor) AddSubTask(name string) models.SubTask {
	s := models.SubTask{ID: models.NewID(), TaskID: e.task.ID, Name: name}
	e.subtasks = append(e.subtasks, s)
	return s
}

// RemoveSubTask drops the matching entry from the working collection. When
// the task was loaded from the store, the row is deleted immediately; on the
// create path only the working collection changes.
func (e *Editor) RemoveSubTask(ctx context.Context, sub models.SubTask) {
	idx := e.indexOf(sub)
	if idx < 0 {
		e.log.Warn("subtask not found for removal", "subtask_id", sub.ID)
		return
	}
	e.subtasks = append(e.subtasks[:idx], e.subtasks[idx+1:]...)

	if e.persisted {
		if err := e.store.DeleteSubTask(ctx, sub.ID); err != nil {
			e.log.Warn("could not delete removed subtask", "subtask_id", sub.ID, "error", err)
		}
	}
}

// SetSubTaskCompleted updates the completion flag of the matching working
// entry. An unmatched subtask is a logged no-op.
func (e *Editor) SetSubTaskCompleted(sub models.SubTask, completed bool) {
	idx := e.indexOf(sub)
	if idx < 0 {
		e.log.Warn("subtask not found for completion update", "subtask_id", sub.ID)
		return
	}
	e.subtasks[idx].IsCompleted = completed
}

// AddTags unions the given tags into the working task's tag list. Existing
// tags keep their order; new tags are appended in the given order and
// duplicates are not added.
func (e *Editor) AddTags(newTags []string) {
	for _, tag := range newTags {
		if !containsTag(e.task.Tags, tag) {
			e.task.Tags = append(e.task.Tags, tag)
		}
	}
}

// RemoveTag removes all occurrences of tag; absent tags are a no-op.
func (e *Editor) RemoveTag(tag string) {
	kept := e.task.Tags[:0]
	for _, t := range e.task.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	e.task.Tags = kept
}

// Save persists the working task and every working subtask as new inserts
// (create path). A reminder is scheduled unless the task is completed;
// scheduling problems never fail the save. The editor resets afterwards and
// the saved task is returned.
func (e *Editor) Save(ctx context.Context) (models.Task, error) {
	saved := e.Task()

	if err := e.store.InsertTask(ctx, saved); err != nil {
		return saved, err
	}
	for _, sub := range e.subtasks {
		if err := e.store.InsertSubTask(ctx, sub); err != nil {
			return saved, err
		}
	}

	if !saved.IsCompleted {
		if err := e.reminders.Schedule(saved); err != nil {
			e.log.Warn("reminder not scheduled", "task_id", saved.ID, "error", err)
		}
	}

	e.Reset()
	return saved, nil
}

// Update persists the working task over its stored row and reconciles the
// stored subtasks to exactly match the working collection: entries in both
// are updated, working-only entries inserted, store-only entries deleted.
// The reminder is then cancelled and, if the due date is still ahead and the
// task incomplete, re-armed.
func (e *Editor) Update(ctx context.Context) error {
	updated := e.Task()

	if err := e.store.UpdateTask(ctx, updated); err != nil {
		return err
	}

	existing, err := e.store.GetSubTasks(ctx, updated.ID)
	if err != nil {
		return err
	}
	stored := make(map[int64]bool, len(existing))
	for _, sub := range existing {
		stored[sub.ID] = true
	}

	for _, sub := range e.subtasks {
		if stored[sub.ID] {
			delete(stored, sub.ID)
			if err := e.store.UpdateSubTask(ctx, sub); err != nil {
				return err
			}
		} else {
			if err := e.store.InsertSubTask(ctx, sub); err != nil {
				return err
			}
		}
	}
	for id := range stored {
		if err := e.store.DeleteSubTask(ctx, id); err != nil {
			return err
		}
	}

	e.syncReminder(updated)
	return nil
}

// syncReminder applies the update-path reminder policy: a due date already
// in the past or a completed task only cancels; otherwise the reminder is
// cancelled and re-armed at the current due date.
func (e *Editor) syncReminder(t models.Task) {
	e.reminders.Cancel(t.ID)

	if t.IsCompleted {
		return
	}
	if t.CompletionDate != nil && t.CompletionDate.Before(time.Now()) {
		return
	}
	if err := e.reminders.Schedule(t); err != nil {
		e.log.Warn("reminder not rescheduled", "task_id", t.ID, "error", err)
	}
}

func (e *Editor) indexOf(sub models.SubTask) int {
	for i, s := range e.subtasks {
		if s.Equal(sub) {
			return i
		}
	}
	return -1
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
