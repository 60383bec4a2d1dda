package scheduler

import (
	"sync"

	"github.com/tejashwikalptaru/gopulse/internal/ports"
)

// Manual is a FrameScheduler that only runs frames when Step is called.
type Manual struct {
	mu       sync.Mutex
	pending  func()
	requests int
}

// NewManual creates a manual scheduler with nothing pending.
func NewManual() *Manual {
	return &Manual{}
}

// RequestFrame stores fn as the pending callback.
func (m *Manual) RequestFrame(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = fn
	m.requests++
}

// CancelFrame drops the pending callback.
func (m *Manual) CancelFrame() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
}

// Pending reports whether a callback is waiting.
func (m *Manual) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending != nil
}

// Requests returns how many times RequestFrame was called.
func (m *Manual) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

// Step runs the pending callback, if any, and reports whether one ran.
func (m *Manual) Step() bool {
	m.mu.Lock()
	fn := m.pending
	m.pending = nil
	m.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Drain steps until nothing is pending or max frames ran. Returns the number run.
func (m *Manual) Drain(max int) int {
	n := 0
	for n < max && m.Step() {
		n++
	}
	return n
}

var _ ports.FrameScheduler = (*Manual)(nil)
