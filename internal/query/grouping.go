// Package query reshapes repository output for the listing surface. It is a
// pure transform: no writes, no state of its own, re-derived after every
// mutation or filter toggle.
package query

import (
	"context"

	"github.com/mysimjee/ToDo/internal/models"
)

// dateLayout is the calendar-date key tasks are grouped under.
const dateLayout = "2006-01-02"

// NoDateKey is the sentinel group for tasks without a due date.
const NoDateKey = "No Date"

// Lister is the slice of the repository the grouping layer reads from.
type Lister interface {
	GetTasksByCompletionStatus(ctx context.Context, isCompleted bool) ([]models.TaskWithSubTasks, error)
}

// GroupByDueDate groups tasks by the calendar date of their due date,
// preserving the input order within each group. Tasks without a due date
// land under NoDateKey.
func GroupByDueDate(tasks []models.TaskWithSubTasks) map[string][]models.TaskWithSubTasks {
	grouped := make(map[string][]models.TaskWithSubTasks)
	for _, t := range tasks {
		key := NoDateKey
		if t.Task.CompletionDate != nil {
			key = t.Task.CompletionDate.Format(dateLayout)
		}
		grouped[key] = append(grouped[key], t)
	}
	return grouped
}

// Keys returns the group keys in first-appearance order of the input, so a
// caller iterating the grouped map renders deterministically. The input must
// be the same slice that was grouped.
func Keys(tasks []models.TaskWithSubTasks) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, t := range tasks {
		key := NoDateKey
		if t.Task.CompletionDate != nil {
			key = t.Task.CompletionDate.Format(dateLayout)
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// TasksGroupedByDueDate fetches tasks matching the completion filter and
// groups them by due date. Repository ordering (due date ascending, undated
// last) carries into each group.
func TasksGroupedByDueDate(ctx context.Context, lister Lister, isCompleted bool) (map[string][]models.TaskWithSubTasks, error) {
	tasks, err := lister.GetTasksByCompletionStatus(ctx, isCompleted)
	if err != nil {
		return nil, err
	}
	return GroupByDueDate(tasks), nil
}
