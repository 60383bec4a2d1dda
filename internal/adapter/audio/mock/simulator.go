package mock

import (
	"math"
	"math/rand"
	"sync"

	"github.com/tejashwikalptaru/gopulse/internal/ports"
	"github.com/tejashwikalptaru/gopulse/internal/spectrum"
)

// FrameStep is how far the simulated clock advances per SampleFrame call.
const FrameStep = 1.0 / 60

// Simulator is a SpectrumSource that synthesizes music-like PCM on the fly
// and runs it through a spectrum.Analyser.
//
// The signal mixes a bass, a mid and a high sine whose pitch and level drift
// slowly, two bass harmonics, a little noise and occasional transients.
type Simulator struct {
	mu       sync.Mutex
	rate     float64
	analyser *spectrum.Analyser
	rng      *rand.Rand
	clock    float64
	samples  []float64
	gate     func() bool
}

// NewSimulator creates a simulator for the given sample rate and bin count.
// seed makes the noise and transients reproducible.
func NewSimulator(sampleRate float64, binCount int, seed int64) (*Simulator, error) {
	a, err := spectrum.NewAnalyser(binCount)
	if err != nil {
		return nil, err
	}
	return &Simulator{
		rate:     sampleRate,
		analyser: a,
		rng:      rand.New(rand.NewSource(seed)),
		samples:  make([]float64, a.FFTSize()),
	}, nil
}

// SetGate installs a check run before each frame; frames are only produced
// while it returns true.
func (s *Simulator) SetGate(gate func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = gate
}

// SampleRate returns the simulated sample rate in Hz.
func (s *Simulator) SampleRate() float64 { return s.rate }

// BinCount returns the number of bins per frame.
func (s *Simulator) BinCount() int { return s.analyser.BinCount() }

// Clock returns the simulated time in seconds.
func (s *Simulator) Clock() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

// SampleFrame advances the clock by one frame and analyses the new signal.
func (s *Simulator) SampleFrame() ([]float64, bool) {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()

	if gate != nil && !gate() {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock += FrameStep
	s.synthesize()
	return s.analyser.Process(s.samples), true
}

func (s *Simulator) synthesize() {
	for i := range s.samples {
		t := s.clock + float64(i)/s.rate
		w := 2 * math.Pi * t

		bassFreq := 60 + 20*math.Sin(0.1*w)
		midFreq := 800 + 200*math.Sin(0.15*w)
		highFreq := 3000 + 1000*math.Sin(0.2*w)

		bass := math.Sin(bassFreq*w) * (0.4 + 0.2*math.Sin(0.5*w))
		mids := math.Sin(midFreq*w) * (0.3 + 0.15*math.Sin(0.7*w))
		highs := math.Sin(highFreq*w) * (0.2 + 0.1*math.Sin(1.2*w))
		harmonics := 0.1*math.Sin(2*bassFreq*w) + 0.05*math.Sin(3*bassFreq*w)

		noise := (s.rng.Float64() - 0.5) * 0.05
		transient := 0.0
		if s.rng.Float64() > 0.95 {
			transient = (s.rng.Float64() - 0.5) * 0.3
		}

		s.samples[i] = bass + mids + highs + harmonics + noise + transient
	}
}

var _ ports.SpectrumSource = (*Simulator)(nil)
