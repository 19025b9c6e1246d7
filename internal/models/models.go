package models

import "time"

// Task represents a single top-level to-do item
type Task struct {
	ID              int64
	Name            string
	PhotoAttachment string     // URI/path of a copied image, empty if none
	CompletionDate  *time.Time // due date; also the reminder fire time, nil if unset
	Priority        int        // 1-based index into the caller's priority labels
	IsCompleted     bool
	Tags            []string
}

// SubTask represents a checklist item owned by exactly one task
type SubTask struct {
	ID          int64
	TaskID      int64
	Name        string
	IsCompleted bool
}

// TaskWithSubTasks pairs a task with its current subtask list. It is a
// read-model assembled by the repository, never stored.
type TaskWithSubTasks struct {
	Task     Task
	SubTasks []SubTask
}

// HasDueDate reports whether the task has a due date set.
func (t Task) HasDueDate() bool {
	return t.CompletionDate != nil
}

// Equal reports whether two subtasks match on identity and all fields.
// The aggregate rules use it to locate working-copy entries.
func (s SubTask) Equal(o SubTask) bool {
	return s.ID == o.ID && s.TaskID == o.TaskID && s.Name == o.Name && s.IsCompleted == o.IsCompleted
}
