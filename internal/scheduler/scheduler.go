// Package scheduler runs one-shot deferred tasks such as role revocation,
// button deactivation and penalty resets.
package scheduler

import (
	"errors"
	"time"
)

var (
	// ErrCapacity is returned when too many tasks are already pending.
	ErrCapacity = errors.New("scheduler: too many pending tasks")
	// ErrStopped is returned after the scheduler has been closed.
	ErrStopped = errors.New("scheduler: stopped")
)

// Task is a handle to a scheduled callback.
type Task interface {
	ID() string
	// Stop prevents the callback from running. It reports false when the
	// task already fired or was stopped before.
	Stop() bool
}

// Scheduler runs fn once after delay without blocking the caller.
type Scheduler interface {
	Schedule(name string, delay time.Duration, fn func()) (Task, error)
}
