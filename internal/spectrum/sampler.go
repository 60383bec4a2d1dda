package spectrum

import (
	"log/slog"
	"math"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
	"github.com/tejashwikalptaru/gopulse/internal/ports"
)

// Sampler reads one FrequencySnapshot per frame from the attached source.
//
// The sample rate, bin count and bin width are read from the source on every
// Start, so reattaching after a reload keeps them valid. A Sampler is owned by
// the frame loop and is not safe for concurrent use.
type Sampler struct {
	logger *slog.Logger

	source     ports.SpectrumSource
	sampleRate float64
	binCount   int
}

// NewSampler creates a detached sampler.
func NewSampler(logger *slog.Logger) *Sampler {
	return &Sampler{
		logger: logger.With(slog.String("component", "sampler")),
	}
}

// Start attaches the sampler to source.
// A nil source, or one reporting a non-positive sample rate or bin count,
// leaves the sampler detached; callers skip analysis until a later Start.
func (s *Sampler) Start(source ports.SpectrumSource) {
	if source == nil {
		return
	}

	rate, n := source.SampleRate(), source.BinCount()
	if !(rate > 0) || math.IsInf(rate, 0) || n <= 0 {
		s.logger.Warn("ignoring spectrum source with invalid shape",
			slog.Float64("sample_rate", rate),
			slog.Int("bins", n))
		s.Stop()
		return
	}

	s.source = source
	s.sampleRate = rate
	s.binCount = n

	s.logger.Debug("sampler attached",
		slog.Float64("sample_rate", rate),
		slog.Int("bins", n),
		slog.Float64("bin_width", s.BinWidth()))
}

// Stop detaches the current source, if any.
func (s *Sampler) Stop() {
	s.source = nil
	s.sampleRate = 0
	s.binCount = 0
}

// Ready reports whether a source is attached.
func (s *Sampler) Ready() bool {
	return s.source != nil
}

// SampleRate returns the sample rate read at the last Start (0 when detached).
func (s *Sampler) SampleRate() float64 { return s.sampleRate }

// BinCount returns the bin count read at the last Start (0 when detached).
func (s *Sampler) BinCount() int { return s.binCount }

// BinWidth returns sampleRate / (2N), or 0 when detached.
func (s *Sampler) BinWidth() float64 {
	if s.binCount == 0 {
		return 0
	}
	return s.sampleRate / float64(2*s.binCount)
}

// SampleFrame returns a snapshot of the bins available right now.
// It never blocks; false means no data is available this frame.
// The returned snapshot owns its Bins slice.
func (s *Sampler) SampleFrame() (domain.FrequencySnapshot, bool) {
	if s.source == nil {
		return domain.FrequencySnapshot{}, false
	}

	bins, ok := s.source.SampleFrame()
	if !ok || len(bins) == 0 {
		return domain.FrequencySnapshot{}, false
	}

	snap := domain.FrequencySnapshot{
		Bins:       make([]float64, len(bins)),
		SampleRate: s.sampleRate,
	}
	copy(snap.Bins, bins)
	return snap, true
}
