// Package penalty counts consecutive spins per user and scales the
// consolation hold once a user spins too often without a break.
package penalty

import (
	"sync"
	"time"

	"github.com/ichi0g0y/spin-the-wheel/internal/metrics"
	"github.com/ichi0g0y/spin-the-wheel/internal/scheduler"
	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"github.com/ichi0g0y/spin-the-wheel/internal/types"
	"go.uber.org/zap"
)

type state struct {
	username  string
	count     uint32
	extension time.Duration
	reset     scheduler.Task
	gen       uint64
}

// Tracker holds per-user penalty state. Counts only go up on spins and only
// return to zero when the reset timer fires.
type Tracker struct {
	mu        sync.Mutex
	sched     scheduler.Scheduler
	enabled   bool
	window    time.Duration
	threshold uint32
	users     map[int64]*state
}

func NewTracker(cfg types.PenaltyConfig, sched scheduler.Scheduler) *Tracker {
	return &Tracker{
		sched:     sched,
		enabled:   cfg.Enabled,
		window:    cfg.ResetTime,
		threshold: cfg.SpinsBeforePenalty,
		users:     make(map[int64]*state),
	}
}

func (t *Tracker) Enabled() bool {
	return t.enabled
}

// Window is the idle time after which a user's count resets.
func (t *Tracker) Window() time.Duration {
	return t.window
}

// Multiplier returns how many base holds a consolation is worth after count
// consecutive spins.
func Multiplier(count, threshold uint32) int {
	if count <= threshold {
		return 1
	}
	return int(count-threshold) + 1
}

// Record counts a spin and re-arms the user's reset timer. It returns the
// new count, or zero when the penalty is disabled.
func (t *Tracker) Record(userID int64, username string) uint32 {
	if !t.enabled {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.users[userID]
	if !ok {
		logger.Debug("Creating penalty state", zap.String("user", username))
		st = &state{}
		t.users[userID] = st
	}
	st.username = username
	st.count++
	t.arm(userID, st, t.window+st.extension)

	logger.Debug("Consecutive spin recorded",
		zap.String("user", username),
		zap.Uint32("count", st.count))
	return st.count
}

// Count returns the user's current consecutive spin count.
func (t *Tracker) Count(userID int64) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if st, ok := t.users[userID]; ok {
		return st.count
	}
	return 0
}

// Penalize scales delay by the multiplier for the given spin count. It does
// not touch the user's state; call Extend once the scaled hold is in place.
func (t *Tracker) Penalize(count uint32, delay time.Duration) (time.Duration, int) {
	if !t.enabled {
		return delay, 1
	}
	mult := Multiplier(count, t.threshold)
	if mult == 1 {
		return delay, 1
	}
	return delay * time.Duration(mult), mult
}

// Extend pushes the user's reset timer back by hold so the count cannot
// reset while the consolation is still held.
func (t *Tracker) Extend(userID int64, hold time.Duration) {
	if !t.enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.users[userID]
	if !ok {
		return
	}
	st.extension += hold
	t.arm(userID, st, t.window+st.extension)

	logger.Info("Spin penalty applied",
		zap.String("user", st.username),
		zap.Uint32("count", st.count),
		zap.Duration("hold", hold))
}

// Restart arms a fresh reset window once the consolation has been removed.
func (t *Tracker) Restart(userID int64) {
	if !t.enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.users[userID]
	if !ok {
		return
	}
	st.extension = 0
	t.arm(userID, st, t.window)
	logger.Debug("Starting spin penalty reset timer", zap.String("user", st.username))
}

// arm must be called with t.mu held. The previous timer is only replaced
// once the new one is scheduled.
func (t *Tracker) arm(userID int64, st *state, delay time.Duration) {
	gen := st.gen + 1
	task, err := t.sched.Schedule("penalty-reset", delay, func() {
		t.expire(userID, gen)
	})
	if err != nil {
		metrics.RecordSchedulingFailure()
		logger.Warn("Failed to arm penalty reset",
			zap.String("user", st.username),
			zap.Error(err))
		return
	}

	if st.reset != nil {
		st.reset.Stop()
	}
	st.gen = gen
	st.reset = task
}

func (t *Tracker) expire(userID int64, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.users[userID]
	if !ok || st.gen != gen {
		return
	}
	st.count = 0
	st.extension = 0
	st.reset = nil
	logger.Debug("Spin penalty reset", zap.String("user", st.username))
}
