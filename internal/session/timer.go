package session

import "time"

// CancelFunc stops a scheduled callback. It reports whether the callback
// was stopped before firing.
type CancelFunc func() bool

// Scheduler arms cancellable one-shot timers. The indirection lets tests
// drive expiry by hand instead of waiting out the inactivity window.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) CancelFunc
}

type timerScheduler struct{}

func (timerScheduler) Schedule(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return t.Stop
}

// NewScheduler returns a Scheduler backed by the runtime timer.
func NewScheduler() Scheduler {
	return timerScheduler{}
}
