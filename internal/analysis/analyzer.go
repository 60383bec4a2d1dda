package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
)

// Analyzer converts snapshots into BandState values.
//
// The three band values are recomputed from scratch on every frame. Only the
// peak carries over: it jumps to any louder high-frequency bin and otherwise
// decays by PeakDecay per analysed frame.
//
// An Analyzer is owned by the frame loop and is not safe for concurrent use.
type Analyzer struct {
	state    domain.BandState
	binCount int
	policy   domain.IdlePolicy

	scratch []float64
}

// New creates an analyzer with a zero state that accepts snapshots of any length.
func New() *Analyzer {
	return &Analyzer{}
}

// SetBinCount sets the snapshot length the attached source promised.
// Snapshots of any other length are treated as malformed. Zero accepts any length.
func (a *Analyzer) SetBinCount(n int) {
	if n < 0 {
		n = 0
	}
	a.binCount = n
}

// SetIdlePolicy selects what Idle does with the peak.
func (a *Analyzer) SetIdlePolicy(p domain.IdlePolicy) {
	a.policy = p
}

// State returns the most recent output.
func (a *Analyzer) State() domain.BandState {
	return a.state
}

// Reset forgets the peak and returns the analyzer to the zero state.
func (a *Analyzer) Reset() {
	a.state = domain.BandState{}
}

// Idle produces the state for a frame without a snapshot: the three bands are
// zero and the peak decays (IdleDecay) or holds (IdleHold).
func (a *Analyzer) Idle() domain.BandState {
	peak := a.state.Peak
	if a.policy == domain.IdleDecay {
		peak *= PeakDecay
	}
	a.state = domain.BandState{Peak: peak}
	return a.state
}

// Analyze computes the BandState for one snapshot.
//
// A snapshot with the wrong length or an unusable sample rate yields zero
// bands. A non-finite bin zeroes only the windows that contain it. Finite
// values outside [0,1] are clamped. Analyze never panics.
func (a *Analyzer) Analyze(snap domain.FrequencySnapshot) domain.BandState {
	n := len(snap.Bins)
	bw := snap.BinWidth()
	if n == 0 || (a.binCount > 0 && n != a.binCount) || !(bw > 0) || math.IsInf(bw, 0) {
		return a.decayOnly()
	}

	bins := a.sanitize(snap.Bins)

	var next domain.BandState
	next.Lows = meanRoot(window(bins, LowsWindow, bw))
	next.Mids = meanRoot(window(bins, MidsWindow, bw))
	next.Highs = meanRoot(window(bins, HighsWindow, bw))

	current := 0.0
	if hi := window(bins, PeakWindow, bw); len(hi) > 0 && !floats.HasNaN(hi) {
		current = floats.Max(hi)
	}
	next.Peak = math.Min(1, math.Max(current, a.state.Peak*PeakDecay))

	a.state = next
	return next
}

func (a *Analyzer) decayOnly() domain.BandState {
	a.state = domain.BandState{Peak: a.state.Peak * PeakDecay}
	return a.state
}

// sanitize copies bins into the scratch buffer, clamping finite values to
// [0,1] and marking infinities as NaN so window checks only look for NaN.
func (a *Analyzer) sanitize(bins []float64) []float64 {
	if cap(a.scratch) < len(bins) {
		a.scratch = make([]float64, len(bins))
	}
	out := a.scratch[:len(bins)]
	for i, v := range bins {
		switch {
		case math.IsNaN(v), math.IsInf(v, 0):
			out[i] = math.NaN()
		case v < 0:
			out[i] = 0
		case v > 1:
			out[i] = 1
		default:
			out[i] = v
		}
	}
	return out
}

func window(bins []float64, w Window, binWidth float64) []float64 {
	start, end := w.BinRange(binWidth, len(bins))
	return bins[start:end]
}

// meanRoot returns sqrt(mean(values)), or 0 for an empty or tainted window.
func meanRoot(values []float64) float64 {
	if len(values) == 0 || floats.HasNaN(values) {
		return 0
	}
	return math.Sqrt(floats.Sum(values) / float64(len(values)))
}
