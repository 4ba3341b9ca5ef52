// Package effects runs chat side effects on a background worker so core
// operations never wait on the network.
package effects

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ichi0g0y/spin-the-wheel/internal/metrics"
	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"github.com/ichi0g0y/spin-the-wheel/internal/wheel"
	"go.uber.org/zap"
)

const (
	DefaultQueueSize = 256
	DefaultTimeout   = 15 * time.Second
)

// ErrQueueFull is returned when an effect was dropped.
var ErrQueueFull = errors.New("effect queue is full")

type job struct {
	name string
	run  func(ctx context.Context) error
}

// Queue executes effects one at a time in FIFO order.
type Queue struct {
	jobs    chan job
	timeout time.Duration

	mu      sync.Mutex
	running bool
	done    chan struct{}
	stopped chan struct{}
}

func NewQueue(size int, timeout time.Duration) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Queue{
		jobs:    make(chan job, size),
		timeout: timeout,
	}
}

// Start launches the worker goroutine. Calling it twice is a no-op.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}
	q.running = true
	q.done = make(chan struct{})
	q.stopped = make(chan struct{})
	go q.process(q.done, q.stopped)
	logger.Info("Effect queue started", zap.Int("capacity", cap(q.jobs)))
}

// Stop runs whatever is already queued and then stops the worker.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.done)
	stopped := q.stopped
	q.mu.Unlock()

	<-stopped
	logger.Info("Effect queue stopped")
}

// Enqueue adds an effect without blocking. It reports false when the queue
// is full and the effect was dropped.
func (q *Queue) Enqueue(name string, fn func(ctx context.Context) error) bool {
	select {
	case q.jobs <- job{name: name, run: fn}:
		logger.Debug("Effect enqueued", zap.String("effect", name), zap.Int("queue_size", len(q.jobs)))
		return true
	default:
		metrics.RecordEffectDropped()
		logger.Warn("Effect queue is full, dropping effect", zap.String("effect", name))
		return false
	}
}

// Len returns the number of effects waiting to run.
func (q *Queue) Len() int {
	return len(q.jobs)
}

func (q *Queue) process(done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	for {
		select {
		case j := <-q.jobs:
			q.execute(j)
		case <-done:
			for {
				select {
				case j := <-q.jobs:
					q.execute(j)
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) execute(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	err := safeRun(ctx, j)
	metrics.RecordEffect(j.name, err)
	switch {
	case err == nil:
	case errors.Is(err, wheel.ErrDirectBlocked):
		logger.Info("User has DMs off, message will not be sent to them", zap.String("effect", j.name))
	default:
		logger.Warn("Effect failed", zap.String("effect", j.name), zap.Error(err))
	}
}

func safeRun(ctx context.Context, j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Effect panicked", zap.String("effect", j.name), zap.Any("panic", r))
			err = errors.New("effect panicked")
		}
	}()
	return j.run(ctx)
}
