// Package schedule provides the cancellable deferred-task abstraction
// behind debounced persistence: each mutation cancels any pending task
// and schedules a new one, so at most one task runs per quiescent
// period.
package schedule

import (
	"sync"
	"time"
)

// Scheduler holds at most one pending deferred task.
type Scheduler interface {
	// Schedule cancels any pending task and defers fn by delay.
	Schedule(delay time.Duration, fn func())

	// CancelPending drops the pending task, if any.
	CancelPending()

	// Stop cancels the pending task and refuses further scheduling.
	// Safe to call on every exit path.
	Stop()
}

// Timer is the production Scheduler backed by time.AfterFunc.
type Timer struct {
	mu      sync.Mutex
	pending *time.Timer
	stopped bool
}

func NewTimer() *Timer {
	return &Timer{}
}

func (t *Timer) Schedule(delay time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	if t.pending != nil {
		t.pending.Stop()
	}
	t.pending = time.AfterFunc(delay, fn)
}

func (t *Timer) CancelPending() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.stopped = true
}

// Manual is a deterministic Scheduler for tests: nothing runs until the
// test calls Fire.
type Manual struct {
	mu        sync.Mutex
	fn        func()
	stopped   bool
	scheduled int
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Schedule(_ time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.fn = fn
	m.scheduled++
}

func (m *Manual) CancelPending() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = nil
}

func (m *Manual) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = nil
	m.stopped = true
}

// Fire runs the pending task, if any, and reports whether one ran.
func (m *Manual) Fire() bool {
	m.mu.Lock()
	fn := m.fn
	m.fn = nil
	m.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Pending reports whether a task is waiting.
func (m *Manual) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fn != nil
}

// Scheduled returns how many times Schedule was accepted.
func (m *Manual) Scheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scheduled
}
