package mock

import (
	"sync"

	"github.com/tejashwikalptaru/gopulse/internal/ports"
)

// Fixture is a SpectrumSource that replays scripted frames.
//
// Each SampleFrame pops the next queued frame; once the queue is empty the
// last frame keeps being returned. A fixture that is not ready, or has never
// had a frame, reports no data.
type Fixture struct {
	mu     sync.Mutex
	rate   float64
	bins   int
	queue  [][]float64
	last   []float64
	ready  bool
	served int
}

// NewFixture creates a ready fixture with no frames queued.
func NewFixture(sampleRate float64, binCount int) *Fixture {
	return &Fixture{rate: sampleRate, bins: binCount, ready: true}
}

// Fill returns a frame of n bins all set to v.
func Fill(n int, v float64) []float64 {
	frame := make([]float64, n)
	for i := range frame {
		frame[i] = v
	}
	return frame
}

// Push queues frames to be returned in order.
func (f *Fixture) Push(frames ...[]float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, frames...)
}

// SetReady toggles whether SampleFrame returns data.
func (f *Fixture) SetReady(ready bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ready = ready
}

// Served returns how many frames were handed out.
func (f *Fixture) Served() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.served
}

// SampleRate returns the configured sample rate.
func (f *Fixture) SampleRate() float64 { return f.rate }

// BinCount returns the configured bin count.
func (f *Fixture) BinCount() int { return f.bins }

// SampleFrame returns the next scripted frame.
func (f *Fixture) SampleFrame() ([]float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.ready {
		return nil, false
	}
	if len(f.queue) > 0 {
		f.last = f.queue[0]
		f.queue = f.queue[1:]
	}
	if f.last == nil {
		return nil, false
	}
	f.served++
	return f.last, true
}

var _ ports.SpectrumSource = (*Fixture)(nil)
