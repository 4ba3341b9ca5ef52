package scheduler

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// Manual is a deterministic Scheduler driven by Advance. It is used by the
// test server and by tests that need to control time.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	tasks   map[int]*manualTask
	failure error
}

type manualTask struct {
	seq   int
	name  string
	due   time.Duration
	fn    func()
	owner *Manual
}

func (t *manualTask) ID() string {
	return "manual-" + strconv.Itoa(t.seq)
}

func (t *manualTask) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()

	if _, ok := t.owner.tasks[t.seq]; !ok {
		return false
	}
	delete(t.owner.tasks, t.seq)
	return true
}

func NewManual() *Manual {
	return &Manual{tasks: make(map[int]*manualTask)}
}

func (m *Manual) Schedule(name string, delay time.Duration, fn func()) (Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failure != nil {
		return nil, m.failure
	}
	if delay < 0 {
		delay = 0
	}
	m.seq++
	task := &manualTask{seq: m.seq, name: name, due: m.now + delay, fn: fn, owner: m}
	m.tasks[task.seq] = task
	return task, nil
}

// SetFailure makes every following Schedule call return err. Pass nil to
// schedule normally again.
func (m *Manual) SetFailure(err error) {
	m.mu.Lock()
	m.failure = err
	m.mu.Unlock()
}

// Advance moves the clock forward by d and runs every task that became due,
// earliest first. Tasks scheduled by a callback run in the same call when
// they fall inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		delete(m.tasks, next.seq)
		if next.due > m.now {
			m.now = next.due
		}
		m.mu.Unlock()

		run(next.name, next.fn)
	}
}

// Pending lists the names of the tasks that have not fired, in due order.
func (m *Manual) Pending() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := m.sorted()
	names := make([]string, 0, len(tasks))
	for _, t := range tasks {
		names = append(names, t.name)
	}
	return names
}

// Elapsed returns the simulated time since creation.
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) nextDue(target time.Duration) *manualTask {
	tasks := m.sorted()
	if len(tasks) == 0 || tasks[0].due > target {
		return nil
	}
	return tasks[0]
}

func (m *Manual) sorted() []*manualTask {
	tasks := make([]*manualTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].due != tasks[j].due {
			return tasks[i].due < tasks[j].due
		}
		return tasks[i].seq < tasks[j].seq
	})
	return tasks
}
