package reminder

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// GocronAlarms is the production AlarmService: one-shot gocron jobs keyed by
// task id. Jobs are limited to a single run and removed after they fire.
type GocronAlarms struct {
	scheduler *gocron.Scheduler

	mu   sync.Mutex
	jobs map[int64]*gocron.Job
}

// NewGocronAlarms creates the alarm service and starts its scheduler loop.
func NewGocronAlarms() *GocronAlarms {
	s := gocron.NewScheduler(time.Local)
	s.StartAsync()
	return &GocronAlarms{
		scheduler: s,
		jobs:      make(map[int64]*gocron.Job),
	}
}

// CanScheduleExact reports whether exact one-shot timers are available.
// In-process timers always are; platform alarm backends may not be.
func (a *GocronAlarms) CanScheduleExact() bool {
	return true
}

// Schedule arms fn to run once at the given instant, replacing any pending
// job with the same key.
func (a *GocronAlarms) Schedule(key int64, at time.Time, fn func()) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if job, ok := a.jobs[key]; ok {
		a.scheduler.RemoveByReference(job)
		delete(a.jobs, key)
	}

	job, err := a.scheduler.Every(1).Day().StartAt(at).LimitRunsTo(1).Do(func() {
		fn()
		a.mu.Lock()
		delete(a.jobs, key)
		a.mu.Unlock()
	})
	if err != nil {
		return err
	}

	a.jobs[key] = job
	return nil
}

// Cancel disarms the job for key, if any.
func (a *GocronAlarms) Cancel(key int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	job, ok := a.jobs[key]
	if !ok {
		return
	}
	a.scheduler.RemoveByReference(job)
	delete(a.jobs, key)
}

// Stop halts the scheduler loop. Pending jobs will not fire afterwards.
func (a *GocronAlarms) Stop() {
	a.scheduler.Stop()
}
