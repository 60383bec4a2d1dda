package live

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"

	"github.com/tejashwikalptaru/gopulse/internal/ports"
	"github.com/tejashwikalptaru/gopulse/internal/spectrum"
)

// Tap wraps a beep.Streamer and records the samples it passes, mixed down to
// mono, into a ring buffer for analysis. Audio passes through unchanged.
//
// The speaker pulls audio in chunks well ahead of the listener. Tap remembers
// when the last chunk was pulled so Window can pick the samples that are
// audible right now instead of the newest ones.
type Tap struct {
	Source beep.Streamer

	mu     sync.RWMutex
	ring   []float64
	total  uint64
	filled int

	chunkStart uint64
	chunkAt    time.Time
	latency    time.Duration
	now        func() time.Time

	written atomic.Uint64
}

// NewTap creates a tap keeping the last size mono samples.
func NewTap(src beep.Streamer, size int) *Tap {
	if size <= 0 {
		size = 1
	}
	return &Tap{Source: src, ring: make([]float64, size), now: time.Now}
}

// SetLatency sets how long a pulled chunk waits in the output buffer before
// it is heard.
func (t *Tap) SetLatency(d time.Duration) {
	t.mu.Lock()
	t.latency = max(d, 0)
	t.mu.Unlock()
}

// Stream implements beep.Streamer.
func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	at := t.now()
	n, ok := t.Source.Stream(samples)
	if n <= 0 {
		return n, ok
	}

	t.mu.Lock()
	t.chunkStart = t.total
	t.chunkAt = at
	for i := 0; i < n; i++ {
		t.ring[t.total%uint64(len(t.ring))] = (samples[i][0] + samples[i][1]) / 2
		t.total++
	}
	t.filled = min(t.filled+n, len(t.ring))
	t.mu.Unlock()

	t.written.Add(uint64(n))
	return n, ok
}

// Err implements beep.Streamer.
func (t *Tap) Err() error { return t.Source.Err() }

// Written returns the total number of samples that went through the tap.
func (t *Tap) Written() uint64 { return t.written.Load() }

// Snapshot returns up to n of the most recent mono samples, oldest first.
func (t *Tap) Snapshot(n int) []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.windowLocked(n, t.total)
}

// Window returns up to n mono samples ending at the current playhead, oldest
// first. The playhead advances through the last chunk at rate samples per
// second, delayed by the output latency, and is held inside the ring.
func (t *Tap) Window(n int, rate float64) []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.filled == 0 || n <= 0 {
		return nil
	}

	elapsed := t.now().Sub(t.chunkAt) - t.latency
	head := math.Round(float64(t.chunkStart) + elapsed.Seconds()*rate)

	oldest := t.total - uint64(t.filled)
	lo := float64(oldest + uint64(min(n, t.filled)))
	head = math.Max(lo, math.Min(head, float64(t.total)))

	return t.windowLocked(n, uint64(head))
}

// windowLocked copies up to n samples ending before sample number end.
// Caller must hold t.mu.
func (t *Tap) windowLocked(n int, end uint64) []float64 {
	oldest := t.total - uint64(t.filled)
	n = min(n, int(end-oldest))
	if n <= 0 {
		return nil
	}

	out := make([]float64, n)
	size := uint64(len(t.ring))
	start := end - uint64(n)
	for i := range out {
		out[i] = t.ring[(start+uint64(i))%size]
	}
	return out
}

// TapSource analyses a Tap with a spectrum.Analyser.
type TapSource struct {
	tap  *Tap
	rate float64

	mu       sync.Mutex
	analyser *spectrum.Analyser
}

// NewTapSource creates a spectrum source over tap for audio at sampleRate.
func NewTapSource(tap *Tap, sampleRate float64, binCount int) (*TapSource, error) {
	a, err := spectrum.NewAnalyser(binCount)
	if err != nil {
		return nil, err
	}
	return &TapSource{tap: tap, rate: sampleRate, analyser: a}, nil
}

// SampleRate returns the sample rate of the tapped stream.
func (s *TapSource) SampleRate() float64 { return s.rate }

// BinCount returns the number of bins per frame.
func (s *TapSource) BinCount() int { return s.analyser.BinCount() }

// SampleFrame analyses the samples being heard at the moment of the call. It
// reports no data until audio has flowed through the tap.
func (s *TapSource) SampleFrame() ([]float64, bool) {
	if s.tap.Written() == 0 {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyser.Process(s.tap.Window(s.analyser.FFTSize(), s.rate)), true
}

var _ ports.SpectrumSource = (*TapSource)(nil)
