package spectrum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/gopulse/internal/logger"
)

type fakeSource struct {
	rate  float64
	bins  []float64
	ready bool
	calls int
}

func (f *fakeSource) SampleRate() float64 { return f.rate }
func (f *fakeSource) BinCount() int       { return len(f.bins) }
func (f *fakeSource) SampleFrame() ([]float64, bool) {
	f.calls++
	return f.bins, f.ready
}

func TestSamplerNilSourceIsNoop(t *testing.T) {
	s := NewSampler(logger.NewTestLogger())
	s.Start(nil)

	assert.False(t, s.Ready())
	_, ok := s.SampleFrame()
	assert.False(t, ok)
	assert.Zero(t, s.BinWidth())
}

func TestSamplerReadsShapeOnStart(t *testing.T) {
	s := NewSampler(logger.NewTestLogger())
	src := &fakeSource{rate: 44100, bins: make([]float64, 64), ready: true}

	s.Start(src)
	require.True(t, s.Ready())
	assert.Equal(t, 44100.0, s.SampleRate())
	assert.Equal(t, 64, s.BinCount())
	assert.InDelta(t, 44100.0/128, s.BinWidth(), 1e-9)

	// reattach after a reload at a different rate
	s.Start(&fakeSource{rate: 48000, bins: make([]float64, 32), ready: true})
	assert.Equal(t, 48000.0, s.SampleRate())
	assert.Equal(t, 32, s.BinCount())
	assert.InDelta(t, 750.0, s.BinWidth(), 1e-9)
}

func TestSamplerRejectsInvalidSource(t *testing.T) {
	s := NewSampler(logger.NewTestLogger())
	s.Start(&fakeSource{rate: 44100, bins: make([]float64, 64), ready: true})

	s.Start(&fakeSource{rate: 0, bins: make([]float64, 64), ready: true})
	assert.False(t, s.Ready())

	s.Start(&fakeSource{rate: 44100, bins: nil, ready: true})
	assert.False(t, s.Ready())
}

func TestSamplerNotReadySource(t *testing.T) {
	s := NewSampler(logger.NewTestLogger())
	src := &fakeSource{rate: 44100, bins: make([]float64, 64)}
	s.Start(src)

	_, ok := s.SampleFrame()
	assert.False(t, ok)
	assert.Equal(t, 1, src.calls)

	src.ready = true
	snap, ok := s.SampleFrame()
	require.True(t, ok)
	assert.Len(t, snap.Bins, 64)
	assert.Equal(t, 44100.0, snap.SampleRate)
}

func TestSamplerSnapshotOwnsBins(t *testing.T) {
	s := NewSampler(logger.NewTestLogger())
	src := &fakeSource{rate: 44100, bins: []float64{0.5, 0.25}, ready: true}
	s.Start(src)

	snap, ok := s.SampleFrame()
	require.True(t, ok)

	src.bins[0] = 1
	assert.Equal(t, 0.5, snap.Bins[0])
}

func TestSamplerStop(t *testing.T) {
	s := NewSampler(logger.NewTestLogger())
	s.Start(&fakeSource{rate: 44100, bins: make([]float64, 64), ready: true})
	s.Stop()

	assert.False(t, s.Ready())
	assert.Zero(t, s.SampleRate())
	_, ok := s.SampleFrame()
	assert.False(t, ok)
}
