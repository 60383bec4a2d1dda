// Package scheduler provides FrameScheduler implementations.
// The ticker scheduler drives the visualizer at a fixed frame rate; the manual
// scheduler lets tests step frames one at a time.
package scheduler

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tejashwikalptaru/gopulse/internal/ports"
)

// Dispatcher runs fn in the context that owns the drawing surface.
// For Fyne this is fyne.Do; tests use a direct call.
type Dispatcher func(fn func())

// Direct runs fn on the calling goroutine.
func Direct(fn func()) { fn() }

// Ticker is a FrameScheduler that fires the pending callback on every tick.
//
// At most one callback is pending and at most one is in flight: a tick that
// arrives while the previous frame is still running is skipped, so frames
// never overlap even when the dispatcher is asynchronous.
type Ticker struct {
	logger   *slog.Logger
	interval time.Duration
	dispatch Dispatcher

	mu       sync.Mutex
	pending  func()
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	inFlight atomic.Bool
	fired    atomic.Uint64
	skipped  atomic.Uint64
}

// NewTicker creates a scheduler firing fps times per second.
// fps <= 0 selects 60.
func NewTicker(logger *slog.Logger, fps int, dispatch Dispatcher) *Ticker {
	if fps <= 0 {
		fps = 60
	}
	if dispatch == nil {
		dispatch = Direct
	}
	return &Ticker{
		logger:   logger.With(slog.String("adapter", "scheduler")),
		interval: time.Second / time.Duration(fps),
		dispatch: dispatch,
	}
}

// Interval returns the time between ticks.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Start launches the tick goroutine. Calling Start twice is a no-op.
func (t *Ticker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}
	t.running = true
	t.stopChan = make(chan struct{})
	t.wg.Add(1)

	go t.loop(t.stopChan)
	t.logger.Debug("frame ticker started", slog.Duration("interval", t.interval))
}

// Stop halts the tick goroutine and waits for it to exit.
// A frame already handed to the dispatcher may still run.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	close(t.stopChan)
	t.pending = nil
	t.mu.Unlock()

	t.wg.Wait()
	t.logger.Debug("frame ticker stopped",
		slog.Uint64("frames", t.fired.Load()),
		slog.Uint64("skipped", t.skipped.Load()))
}

// RequestFrame schedules fn for the next tick, replacing any pending callback.
func (t *Ticker) RequestFrame(fn func()) {
	t.mu.Lock()
	t.pending = fn
	t.mu.Unlock()
}

// CancelFrame drops the pending callback.
func (t *Ticker) CancelFrame() {
	t.mu.Lock()
	t.pending = nil
	t.mu.Unlock()
}

// Frames returns how many callbacks were dispatched.
func (t *Ticker) Frames() uint64 {
	return t.fired.Load()
}

func (t *Ticker) loop(stop <-chan struct{}) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.tick()
		}
	}
}

func (t *Ticker) tick() {
	if t.inFlight.Load() {
		t.skipped.Add(1)
		return
	}

	t.mu.Lock()
	fn := t.pending
	t.pending = nil
	t.mu.Unlock()

	if fn == nil {
		return
	}

	t.inFlight.Store(true)
	t.fired.Add(1)
	t.dispatch(func() {
		defer t.inFlight.Store(false)
		fn()
	})
}

var _ ports.FrameScheduler = (*Ticker)(nil)
