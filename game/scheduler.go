package game

import "time"

// Scheduler abstracts one-shot timers so tests can fire them by hand. The
// returned stop function is a cancellation handle; stopping an
// already-fired timer is a no-op.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (stop func())
}

type realScheduler struct{}

func NewScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
