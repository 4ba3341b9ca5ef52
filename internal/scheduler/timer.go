package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/ichi0g0y/spin-the-wheel/internal/metrics"
	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const DefaultLimit = 10000

// TimerScheduler backs every task with its own time.AfterFunc timer.
type TimerScheduler struct {
	mu      sync.Mutex
	limit   int
	pending map[string]*timerTask
	closed  bool
}

type timerTask struct {
	id    string
	name  string
	timer *time.Timer
	owner *TimerScheduler
}

func (t *timerTask) ID() string {
	return t.id
}

func (t *timerTask) Stop() bool {
	if !t.timer.Stop() {
		return false
	}
	t.owner.forget(t.id)
	return true
}

// NewTimerScheduler creates a scheduler allowing at most limit pending tasks.
// A non-positive limit falls back to DefaultLimit.
func NewTimerScheduler(limit int) *TimerScheduler {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &TimerScheduler{
		limit:   limit,
		pending: make(map[string]*timerTask),
	}
}

func (s *TimerScheduler) Schedule(name string, delay time.Duration, fn func()) (Task, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task id: %w", err)
	}
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStopped
	}
	if len(s.pending) >= s.limit {
		return nil, ErrCapacity
	}

	task := &timerTask{id: id, name: name, owner: s}
	task.timer = time.AfterFunc(delay, func() {
		if !s.forget(id) {
			return
		}
		run(name, fn)
	})
	s.pending[id] = task
	metrics.SetScheduledPending(len(s.pending))

	logger.Debug("Task scheduled",
		zap.String("id", id),
		zap.String("name", name),
		zap.Duration("delay", delay))
	return task, nil
}

// Pending returns the number of tasks that have not fired yet.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close stops every pending timer. Tasks scheduled afterwards fail with
// ErrStopped.
func (s *TimerScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, task := range s.pending {
		task.timer.Stop()
		delete(s.pending, id)
	}
	metrics.SetScheduledPending(0)
	logger.Info("Scheduler stopped")
}

func (s *TimerScheduler) forget(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[id]; !ok {
		return false
	}
	delete(s.pending, id)
	metrics.SetScheduledPending(len(s.pending))
	return true
}

// run executes fn and keeps a panicking callback from taking down the process.
func run(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Scheduled task panicked",
				zap.String("name", name),
				zap.Any("panic", r))
		}
	}()
	fn()
}
