package reminder

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mysimjee/ToDo/internal/models"
)

// fakeAlarms records armed timers and lets tests trigger them manually.
type fakeAlarms struct {
	mu        sync.Mutex
	exact     bool
	armed     map[int64]func()
	fireTimes map[int64]time.Time
}

func newFakeAlarms() *fakeAlarms {
	return &fakeAlarms{
		exact:     true,
		armed:     make(map[int64]func()),
		fireTimes: make(map[int64]time.Time),
	}
}

func (f *fakeAlarms) CanScheduleExact() bool { return f.exact }

func (f *fakeAlarms) Schedule(key int64, at time.Time, fn func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed[key] = fn
	f.fireTimes[key] = at
	return nil
}

func (f *fakeAlarms) Cancel(key int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.armed, key)
	delete(f.fireTimes, key)
}

// trigger simulates the timer mechanism reaching the fire time for key.
func (f *fakeAlarms) trigger(key int64) bool {
	f.mu.Lock()
	fn, ok := f.armed[key]
	delete(f.armed, key)
	f.mu.Unlock()
	if ok {
		fn()
	}
	return ok
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeNotifier) Notify(taskID int64, title, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, body)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScheduler() (*Scheduler, *fakeAlarms, *fakeNotifier, *Foreground) {
	alarms := newFakeAlarms()
	notifier := &fakeNotifier{}
	fg := &Foreground{}
	return NewScheduler(alarms, notifier, fg, testLogger()), alarms, notifier, fg
}

func futureTask(id int64, name string, in time.Duration) models.Task {
	at := time.Now().Add(in)
	return models.Task{ID: id, Name: name, CompletionDate: &at}
}

func TestSchedule_ThenCancel_NoNotification(t *testing.T) {
	sched, alarms, notifier, _ := newTestScheduler()

	if err := sched.Schedule(futureTask(1, "water plants", time.Hour)); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	sched.Cancel(1)

	if alarms.trigger(1) {
		t.Fatalf("expected alarm to be disarmed after cancel")
	}
	if notifier.count() != 0 {
		t.Fatalf("expected zero notifications, got %d", notifier.count())
	}
	if got := sched.StateOf(1); got != Cancelled {
		t.Fatalf("expected Cancelled, got %s", got)
	}
}

func TestSchedule_Twice_FiresOnceAtNewTime(t *testing.T) {
	sched, alarms, notifier, _ := newTestScheduler()

	if err := sched.Schedule(futureTask(1, "call dentist", time.Hour)); err != nil {
		t.Fatalf("first schedule: %v", err)
	}
	rescheduled := futureTask(1, "call dentist", 2*time.Hour)
	if err := sched.Schedule(rescheduled); err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	alarms.mu.Lock()
	got := alarms.fireTimes[1]
	alarms.mu.Unlock()
	if !got.Equal(*rescheduled.CompletionDate) {
		t.Fatalf("expected fire time %v, got %v", rescheduled.CompletionDate, got)
	}

	alarms.trigger(1)
	alarms.trigger(1)
	if notifier.count() != 1 {
		t.Fatalf("expected exactly one notification, got %d", notifier.count())
	}
}

func TestFire_ForegroundSuppressedButConsumed(t *testing.T) {
	sched, alarms, notifier, fg := newTestScheduler()

	if err := sched.Schedule(futureTask(1, "stretch", time.Minute)); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	fg.Set(true)
	alarms.trigger(1)
	if notifier.count() != 0 {
		t.Fatalf("expected suppression in foreground, got %d notifications", notifier.count())
	}
	if got := sched.StateOf(1); got != Fired {
		t.Fatalf("expected reminder consumed (Fired), got %s", got)
	}

	// Replaying the fire in the background must not notify either.
	fg.Set(false)
	sched.Fire(1, "stretch")
	if notifier.count() != 0 {
		t.Fatalf("consumed reminder re-notified: %d", notifier.count())
	}
}

func TestFire_BackgroundNotifiesWithTaskName(t *testing.T) {
	sched, alarms, notifier, _ := newTestScheduler()

	if err := sched.Schedule(futureTask(9, "buy milk", time.Minute)); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	alarms.trigger(9)

	if notifier.count() != 1 {
		t.Fatalf("expected one notification, got %d", notifier.count())
	}
	if notifier.calls[0] != "Reminder for: buy milk" {
		t.Fatalf("unexpected notification body %q", notifier.calls[0])
	}
	if got := sched.StateOf(9); got != Fired {
		t.Fatalf("expected Fired, got %s", got)
	}
}

func TestSchedule_SkipsPastAndMissingDueDates(t *testing.T) {
	sched, alarms, _, _ := newTestScheduler()

	if err := sched.Schedule(models.Task{ID: 1, Name: "no date"}); err != nil {
		t.Fatalf("schedule undated: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	if err := sched.Schedule(models.Task{ID: 2, Name: "overdue", CompletionDate: &past}); err != nil {
		t.Fatalf("schedule overdue: %v", err)
	}

	alarms.mu.Lock()
	armed := len(alarms.armed)
	alarms.mu.Unlock()
	if armed != 0 {
		t.Fatalf("expected no alarms armed, got %d", armed)
	}
	if got := sched.StateOf(1); got != Unscheduled {
		t.Fatalf("expected Unscheduled, got %s", got)
	}
}

func TestSchedule_DegradesWhenExactAlarmsUnavailable(t *testing.T) {
	sched, alarms, notifier, _ := newTestScheduler()
	alarms.exact = false

	err := sched.Schedule(futureTask(1, "renew passport", time.Hour))
	if !errors.Is(err, models.ErrSchedulingUnavailable) {
		t.Fatalf("expected ErrSchedulingUnavailable, got %v", err)
	}
	if notifier.count() != 0 {
		t.Fatalf("expected no notifications, got %d", notifier.count())
	}
	if got := sched.StateOf(1); got != Unscheduled {
		t.Fatalf("expected Unscheduled, got %s", got)
	}
}

func TestCancel_IsIdempotentAndSafeWithoutSchedule(t *testing.T) {
	sched, _, notifier, _ := newTestScheduler()

	sched.Cancel(123)
	sched.Cancel(123)
	sched.Fire(123, "never scheduled")

	if notifier.count() != 0 {
		t.Fatalf("expected no notifications, got %d", notifier.count())
	}
}

func TestCancel_ConcurrentWithFire_AtMostOneEffect(t *testing.T) {
	for i := 0; i < 50; i++ {
		sched, alarms, notifier, _ := newTestScheduler()
		if err := sched.Schedule(futureTask(1, "race", time.Minute)); err != nil {
			t.Fatalf("schedule: %v", err)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			alarms.trigger(1)
		}()
		go func() {
			defer wg.Done()
			sched.Cancel(1)
		}()
		wg.Wait()

		// Once Cancel has returned, a replayed fire must stay silent.
		before := notifier.count()
		sched.Fire(1, "race")
		if notifier.count() != before {
			t.Fatalf("stray notification after cancel returned")
		}
		if n := notifier.count(); n > 1 {
			t.Fatalf("expected at most one visible effect, got %d notifications", n)
		}
	}
}
