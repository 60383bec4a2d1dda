// Package spectrum turns raw PCM into normalized magnitude-per-bin frames and
// hands them to the visualizer one frame at a time.
package spectrum

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
)

// Analyser defaults. They reproduce the usual browser analyser node settings
// so live and simulated sources look the same on screen.
const (
	DefaultBinCount   = 64
	DefaultSmoothing  = 0.8
	DefaultMinDecibel = -100.0
	DefaultMaxDecibel = -30.0
)

// Analyser converts a window of mono samples into BinCount magnitudes in [0,1].
//
// Each call to Process applies a Blackman window over the last 2N samples,
// runs a real FFT, blends the linear magnitudes with the previous frame
// (time smoothing), converts to decibels and maps [MinDecibel, MaxDecibel]
// onto 0..255 before dividing by 255.
//
// An Analyser keeps scratch buffers and smoothing state; it is not safe for
// concurrent use.
type Analyser struct {
	binCount  int
	fftSize   int
	smoothing float64
	minDB     float64
	maxDB     float64

	window   []float64
	frame    []float64
	mags     []float64
	smoothed []float64
}

// NewAnalyser creates an analyser producing binCount bins (fftSize = 2*binCount).
// Returns domain.ErrInvalidBinCount unless binCount is a positive power of two.
func NewAnalyser(binCount int) (*Analyser, error) {
	if binCount <= 0 || binCount&(binCount-1) != 0 {
		return nil, fmt.Errorf("new analyser with %d bins: %w", binCount, domain.ErrInvalidBinCount)
	}

	size := binCount * 2
	return &Analyser{
		binCount:  binCount,
		fftSize:   size,
		smoothing: DefaultSmoothing,
		minDB:     DefaultMinDecibel,
		maxDB:     DefaultMaxDecibel,
		window:    window.Blackman(size),
		frame:     make([]float64, size),
		mags:      make([]float64, binCount),
		smoothed:  make([]float64, binCount),
	}, nil
}

// BinCount returns the number of bins Process produces.
func (a *Analyser) BinCount() int { return a.binCount }

// FFTSize returns the number of samples consumed per frame.
func (a *Analyser) FFTSize() int { return a.fftSize }

// SetSmoothing sets the time smoothing constant, clamped to [0,1).
func (a *Analyser) SetSmoothing(s float64) {
	a.smoothing = math.Max(0, math.Min(s, 0.99))
}

// Reset clears the smoothing memory.
func (a *Analyser) Reset() {
	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
}

// Process analyses the most recent FFTSize samples and returns a fresh slice
// of BinCount magnitudes. Shorter input is zero padded at the front.
func (a *Analyser) Process(samples []float64) []float64 {
	for i := range a.frame {
		a.frame[i] = 0
	}
	if len(samples) > a.fftSize {
		samples = samples[len(samples)-a.fftSize:]
	}
	copy(a.frame[a.fftSize-len(samples):], samples)
	floats.Mul(a.frame, a.window)

	spectrum := fft.FFTReal(a.frame)
	scale := 1 / float64(a.fftSize)
	for k := 0; k < a.binCount; k++ {
		m := cmplx.Abs(spectrum[k]) * scale
		if math.IsNaN(m) || math.IsInf(m, 0) {
			m = 0
		}
		a.mags[k] = m
	}

	floats.Scale(a.smoothing, a.smoothed)
	floats.AddScaled(a.smoothed, 1-a.smoothing, a.mags)

	out := make([]float64, a.binCount)
	rangeScale := 255 / (a.maxDB - a.minDB)
	for k, m := range a.smoothed {
		if m <= 0 {
			continue
		}
		db := 20 * math.Log10(m)
		b := math.Floor(rangeScale * (db - a.minDB))
		out[k] = math.Max(0, math.Min(b, 255)) / 255
	}
	return out
}
