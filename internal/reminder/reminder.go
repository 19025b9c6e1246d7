// Package reminder schedules one-shot due-date notifications for tasks.
//
// The Scheduler keeps a per-task state machine and delegates actual timer
// arming to an AlarmService and user-visible alerts to a Notifier, so the
// timer mechanism and the presentation surface stay replaceable. Fires are
// suppressed while the application is in the foreground but still consume
// the reminder.
package reminder

import (
	"sync/atomic"
	"time"
)

// State is the lifecycle of one task's reminder.
type State int

const (
	Unscheduled State = iota
	Scheduled
	Fired
	Cancelled
)

func (s State) String() string {
	switch s {
	case Unscheduled:
		return "unscheduled"
	case Scheduled:
		return "scheduled"
	case Fired:
		return "fired"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// AlarmService arms and disarms one-shot timers keyed by task id.
// Implementations may require a runtime capability to fire at an exact
// instant, reported by CanScheduleExact.
type AlarmService interface {
	CanScheduleExact() bool
	Schedule(key int64, at time.Time, fn func()) error
	Cancel(key int64)
}

// Notifier displays a one-shot user-visible alert. It may fail silently if
// permission is withheld; failures never propagate to the scheduler's caller.
type Notifier interface {
	Notify(taskID int64, title, body string)
}

// Foreground is the process-wide "is the app visible" flag. The UI lifecycle
// collaborator is its only writer; the scheduler only reads it.
type Foreground struct {
	visible atomic.Bool
}

// Set records whether the application is currently in the foreground.
func (f *Foreground) Set(visible bool) {
	f.visible.Store(visible)
}

// Visible reports the current flag value.
func (f *Foreground) Visible() bool {
	return f.visible.Load()
}
