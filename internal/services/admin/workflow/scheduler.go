package workflow

import "time"

// Task is a pending scheduled call. *time.Timer satisfies it.
type Task interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

// TimerScheduler schedules on the runtime timer heap.
type TimerScheduler struct{}

// AfterFunc wraps time.AfterFunc.
func (TimerScheduler) AfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}
