package journal

import "time"

// Scheduler runs a task once after a delay. The returned cancel function
// stops the task if it has not fired yet; scheduling a replacement after
// cancelling is how the debounce and inactivity timers are reset on every
// edit.
type Scheduler interface {
	Schedule(d time.Duration, task func()) (cancel func())
}

type timerScheduler struct{}

// NewScheduler returns the real, time.AfterFunc-backed scheduler.
func NewScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) Schedule(d time.Duration, task func()) func() {
	t := time.AfterFunc(d, task)
	return func() { t.Stop() }
}
