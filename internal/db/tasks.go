package db

import (
	"database/sql"
	"fmt"

	"github.com/mysimjee/ToDo/internal/models"
)

// InsertTask inserts a task, replacing any existing row with the same id.
func (db *DB) InsertTask(t models.Task) error {
	_, err := db.Exec(`
		INSERT OR REPLACE INTO tasks (id, name, photo_attachment, completion_date, priority, is_completed, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, nullable(t.PhotoAttachment), encodeTime(t.CompletionDate), t.Priority, t.IsCompleted, encodeTags(t.Tags))
	return err
}

// GetTask retrieves a task by id. Returns models.ErrNotFound if absent.
func (db *DB) GetTask(id int64) (*models.Task, error) {
	row := db.QueryRow(`
		SELECT id, name, photo_attachment, completion_date, priority, is_completed, tags
		FROM tasks WHERE id = ?
	`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTask replaces the full task row by id.
// Returns models.ErrNotFound if no row has that id.
func (db *DB) UpdateTask(t models.Task) error {
	result, err := db.Exec(`
		UPDATE tasks SET name = ?, photo_attachment = ?, completion_date = ?, priority = ?, is_completed = ?, tags = ?
		WHERE id = ?
	`, t.Name, nullable(t.PhotoAttachment), encodeTime(t.CompletionDate), t.Priority, t.IsCompleted, encodeTags(t.Tags), t.ID)
	if err != nil {
		return err
	}
	return requireRow(result, "task", t.ID)
}

// DeleteTask deletes the task row and, through the foreign key cascade, all
// subtask rows with a matching task_id in the same statement.
func (db *DB) DeleteTask(id int64) error {
	_, err := db.Exec("DELETE FROM tasks WHERE id = ?", id)
	return err
}

// UpdateTaskCompletionStatus flips only the is_completed flag, leaving the
// other columns untouched. Used by the checkbox hot path so a toggle cannot
// clobber a concurrent edit of other fields.
func (db *DB) UpdateTaskCompletionStatus(taskID int64, isCompleted bool) error {
	result, err := db.Exec("UPDATE tasks SET is_completed = ? WHERE id = ?", isCompleted, taskID)
	if err != nil {
		return err
	}
	return requireRow(result, "task", taskID)
}

// TasksByCompletionStatus returns all tasks whose is_completed flag matches,
// each joined with its subtasks. Tasks without a due date sort last,
// otherwise ascending by due date.
func (db *DB) TasksByCompletionStatus(isCompleted bool) ([]models.TaskWithSubTasks, error) {
	return db.queryTasksWithSubTasks(`
		SELECT id, name, photo_attachment, completion_date, priority, is_completed, tags
		FROM tasks WHERE is_completed = ?
		ORDER BY completion_date IS NULL, completion_date ASC
	`, isCompleted)
}

// TasksWithSubTasks returns every task joined with its subtasks, in the same
// due-date order as TasksByCompletionStatus.
func (db *DB) TasksWithSubTasks() ([]models.TaskWithSubTasks, error) {
	return db.queryTasksWithSubTasks(`
		SELECT id, name, photo_attachment, completion_date, priority, is_completed, tags
		FROM tasks
		ORDER BY completion_date IS NULL, completion_date ASC
	`)
}

func (db *DB) queryTasksWithSubTasks(query string, args ...interface{}) ([]models.TaskWithSubTasks, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.TaskWithSubTasks
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, models.TaskWithSubTasks{Task: *t})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Load subtasks for each task
	for i := range result {
		subs, err := db.GetSubTasksForTask(result[i].Task.ID)
		if err != nil {
			return nil, err
		}
		result[i].SubTasks = subs
	}

	return result, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(s scanner) (*models.Task, error) {
	var t models.Task
	var photo sql.NullString
	var due sql.NullString
	var tags string
	if err := s.Scan(&t.ID, &t.Name, &photo, &due, &t.Priority, &t.IsCompleted, &tags); err != nil {
		return nil, err
	}
	t.PhotoAttachment = photo.String
	completionDate, err := decodeTime(due)
	if err != nil {
		return nil, err
	}
	t.CompletionDate = completionDate
	t.Tags = decodeTags(tags)
	return &t, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireRow(result sql.Result, kind string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, models.ErrNotFound)
	}
	return nil
}
