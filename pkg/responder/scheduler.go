package responder

import "time"

// Scheduler runs a function once after a delay. It exists so tests can
// fire pending tasks deterministically instead of sleeping.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

// TimerScheduler schedules on the runtime timer heap.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}
