package db

import (
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/mysimjee/ToDo/internal/models"
)

// InsertSubTask inserts a subtask, replacing any existing row with the same
// id. The owning task must already exist or the foreign key rejects the row
// with models.ErrInvalidReference.
func (db *DB) InsertSubTask(s models.SubTask) error {
	_, err := db.Exec(`
		INSERT OR REPLACE INTO subtasks (id, task_id, name, is_completed)
		VALUES (?, ?, ?, ?)
	`, s.ID, s.TaskID, s.Name, s.IsCompleted)
	return subTaskRefErr(s, err)
}

// subTaskRefErr maps a foreign key violation onto the shared taxonomy.
func subTaskRefErr(s models.SubTask, err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return fmt.Errorf("subtask %d references task %d: %w", s.ID, s.TaskID, models.ErrInvalidReference)
	}
	return err
}

// GetSubTasksForTask returns the subtasks of a task in insertion order.
func (db *DB) GetSubTasksForTask(taskID int64) ([]models.SubTask, error) {
	rows, err := db.Query(`
		SELECT id, task_id, name, is_completed
		FROM subtasks WHERE task_id = ?
		ORDER BY rowid
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.SubTask
	for rows.Next() {
		var s models.SubTask
		if err := rows.Scan(&s.ID, &s.TaskID, &s.Name, &s.IsCompleted); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// UpdateSubTask replaces the full subtask row by id.
// Returns models.ErrNotFound if no row has that id.
func (db *DB) UpdateSubTask(s models.SubTask) error {
	result, err := db.Exec(`
		UPDATE subtasks SET task_id = ?, name = ?, is_completed = ? WHERE id = ?
	`, s.TaskID, s.Name, s.IsCompleted, s.ID)
	if err != nil {
		return subTaskRefErr(s, err)
	}
	return requireRow(result, "subtask", s.ID)
}

// DeleteSubTask deletes one subtask row by id.
func (db *DB) DeleteSubTask(id int64) error {
	_, err := db.Exec("DELETE FROM subtasks WHERE id = ?", id)
	return err
}

// DeleteSubTasksByTaskID deletes every subtask belonging to a task.
func (db *DB) DeleteSubTasksByTaskID(taskID int64) error {
	_, err := db.Exec("DELETE FROM subtasks WHERE task_id = ?", taskID)
	return err
}

// UpdateSubTaskCompletionStatus flips only the is_completed flag of one
// subtask.
func (db *DB) UpdateSubTaskCompletionStatus(subTaskID int64, isCompleted bool) error {
	result, err := db.Exec("UPDATE subtasks SET is_completed = ? WHERE id = ?", isCompleted, subTaskID)
	if err != nil {
		return err
	}
	return requireRow(result, "subtask", subTaskID)
}

// UpdateSubTasksCompletionStatusByTaskID flips the is_completed flag of every
// subtask belonging to a task, for the cascade when a task is checked off.
func (db *DB) UpdateSubTasksCompletionStatusByTaskID(taskID int64, isCompleted bool) error {
	_, err := db.Exec("UPDATE subtasks SET is_completed = ? WHERE task_id = ?", isCompleted, taskID)
	return err
}
