package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tejashwikalptaru/gopulse/internal/analysis"
	"github.com/tejashwikalptaru/gopulse/internal/domain"
	"github.com/tejashwikalptaru/gopulse/internal/pointfield"
	"github.com/tejashwikalptaru/gopulse/internal/ports"
	"github.com/tejashwikalptaru/gopulse/internal/spectrum"
)

// DefaultBinCount is the number of frequency bins requested from analysis taps.
const DefaultBinCount = 64

// VisualizerConfig holds the visualizer's startup settings.
type VisualizerConfig struct {
	BinCount   int
	Palette    pointfield.Palette
	IdlePolicy domain.IdlePolicy
}

// DefaultVisualizerConfig returns 64 bins, the default palette and a decaying idle peak.
func DefaultVisualizerConfig() VisualizerConfig {
	return VisualizerConfig{
		BinCount:   DefaultBinCount,
		Palette:    pointfield.DefaultPalette(),
		IdlePolicy: domain.IdleDecay,
	}
}

// VisualizerService runs the per-frame pipeline: sample the spectrum, analyse
// it into bands, displace the point field and draw it.
//
// The sampler, analyzer and field are owned by the frame callback and never
// touched from anywhere else. Other goroutines only flip atomic flags, queue
// settings under pendingMu and ask the scheduler for a frame.
type VisualizerService struct {
	// Dependencies (injected)
	logger    *slog.Logger
	playback  ports.PlaybackState
	taps      ports.TapProvider
	scheduler ports.FrameScheduler
	bus       ports.EventBus

	// Frame-loop state
	sampler     *spectrum.Sampler
	analyzer    *analysis.Analyzer
	field       *pointfield.Field
	binCount    int
	tapFailures int

	// Cross-context signals
	reattach atomic.Bool
	closed   atomic.Bool

	pendingMu sync.Mutex
	pending   pendingSettings
	surface   ports.Surface

	stateMu sync.RWMutex
	bands   domain.BandState
	state   domain.VisualizerState

	subscriptions []domain.SubscriptionID
}

type pendingSettings struct {
	resize  bool
	width   int
	height  int
	palette *pointfield.Palette
	policy  *domain.IdlePolicy
}

// NewVisualizerService creates the visualizer and subscribes it to playback events.
// The loop stays Idle until a surface is attached, sized and audio plays.
func NewVisualizerService(
	logger *slog.Logger,
	playback ports.PlaybackState,
	taps ports.TapProvider,
	scheduler ports.FrameScheduler,
	bus ports.EventBus,
	cfg VisualizerConfig,
) (*VisualizerService, error) {
	if cfg.BinCount <= 0 {
		return nil, domain.NewValidationError("bin_count", cfg.BinCount, "must be positive")
	}

	field, err := pointfield.NewField(cfg.Palette)
	if err != nil {
		return nil, err
	}

	analyzer := analysis.New()
	analyzer.SetIdlePolicy(cfg.IdlePolicy)

	s := &VisualizerService{
		logger:    logger.With(slog.String("service", "visualizer")),
		playback:  playback,
		taps:      taps,
		scheduler: scheduler,
		bus:       bus,
		sampler:   spectrum.NewSampler(logger),
		analyzer:  analyzer,
		field:     field,
		binCount:  cfg.BinCount,
		state:     domain.StateIdle,
	}

	kick := func(domain.Event) { s.kick() }
	reattach := func(domain.Event) {
		s.reattach.Store(true)
		s.kick()
	}

	s.subscriptions = []domain.SubscriptionID{
		bus.Subscribe(domain.EventTrackLoaded, reattach),
		bus.Subscribe(domain.EventTrackStarted, reattach),
		bus.Subscribe(domain.EventTrackPaused, kick),
		bus.Subscribe(domain.EventTrackStopped, kick),
		bus.Subscribe(domain.EventTrackCompleted, kick),
	}

	s.logger.Debug("visualizer service initialized", slog.Int("bins", cfg.BinCount))
	return s, nil
}

// AttachSurface sets the drawing target. The first frame is drawn once its
// size is known through OnSurfaceResize.
func (s *VisualizerService) AttachSurface(surface ports.Surface) {
	s.pendingMu.Lock()
	s.surface = surface
	s.pendingMu.Unlock()
	s.kick()
}

// OnSurfaceResize queues a geometry rebuild for the next frame.
// Later calls before that frame replace earlier ones.
func (s *VisualizerService) OnSurfaceResize(width, height int) {
	s.pendingMu.Lock()
	s.pending.resize = true
	s.pending.width, s.pending.height = width, height
	s.pendingMu.Unlock()
	s.kick()
}

// SetPalette queues new ring and background colors for the next frame.
func (s *VisualizerService) SetPalette(p pointfield.Palette) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.pendingMu.Lock()
	s.pending.palette = &p
	s.pendingMu.Unlock()
	s.kick()
	return nil
}

// SetIdlePolicy queues the peak behavior for frames without a spectrum.
func (s *VisualizerService) SetIdlePolicy(policy domain.IdlePolicy) {
	s.pendingMu.Lock()
	s.pending.policy = &policy
	s.pendingMu.Unlock()
}

// GetBandState returns the band values of the most recent frame.
func (s *VisualizerService) GetBandState() domain.BandState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.bands
}

// State returns whether frames are currently being scheduled.
func (s *VisualizerService) State() domain.VisualizerState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Shutdown stops scheduling frames and drops the event subscriptions.
func (s *VisualizerService) Shutdown() error {
	if s.closed.Swap(true) {
		return nil
	}
	for _, id := range s.subscriptions {
		s.bus.Unsubscribe(id)
	}
	s.subscriptions = nil
	s.scheduler.CancelFrame()
	s.setState(domain.StateIdle)
	return nil
}

// kick asks for one frame. The frame itself decides whether to keep running.
func (s *VisualizerService) kick() {
	if s.closed.Load() {
		return
	}
	s.scheduler.RequestFrame(s.frame)
}

// frame runs one iteration to completion and reschedules itself only while
// audio is playing.
func (s *VisualizerService) frame() {
	if s.closed.Load() {
		s.setState(domain.StateIdle)
		return
	}

	surface := s.applyPending()

	if !s.playback.IsAudioActive() {
		// stopped or finished: forget everything and draw the resting rings
		s.analyzer.Reset()
		s.sampler.Stop()
		s.storeBands(domain.BandState{})
		s.field.Update(domain.BandState{})
		s.renderIfReady(surface)
		s.setState(domain.StateIdle)
		return
	}

	if !s.playback.IsAudioPlaying() || !s.field.Built() || surface == nil {
		// paused: keep the last frame on screen
		s.renderIfReady(surface)
		s.setState(domain.StateIdle)
		return
	}

	if s.reattach.Swap(false) || !s.sampler.Ready() {
		s.attach()
	}

	var bands domain.BandState
	if snap, ok := s.sampler.SampleFrame(); ok {
		bands = s.analyzer.Analyze(snap)
	} else {
		bands = s.analyzer.Idle()
	}
	s.storeBands(bands)

	s.field.Update(bands)
	s.field.Render(surface)

	s.setState(domain.StateActive)
	s.scheduler.RequestFrame(s.frame)
}

// attach fetches a fresh tap and re-reads its sample rate and bin count.
func (s *VisualizerService) attach() {
	src, err := s.taps.AnalysisTap(s.binCount)
	if err != nil {
		s.sampler.Stop()
		if s.tapFailures == 0 {
			level := slog.LevelWarn
			if errors.Is(err, domain.ErrTapNotReady) {
				level = slog.LevelDebug
			}
			s.logger.Log(context.Background(), level, "analysis tap unavailable", slog.Any("error", err))
		}
		s.tapFailures++
		return
	}

	s.tapFailures = 0
	s.sampler.Start(src)
	s.analyzer.SetBinCount(s.sampler.BinCount())
}

// applyPending applies queued settings and returns the current surface.
func (s *VisualizerService) applyPending() ports.Surface {
	s.pendingMu.Lock()
	p := s.pending
	s.pending = pendingSettings{}
	surface := s.surface
	s.pendingMu.Unlock()

	if p.policy != nil {
		s.analyzer.SetIdlePolicy(*p.policy)
	}
	if p.palette != nil {
		if err := s.field.SetPalette(*p.palette); err != nil {
			s.logger.Warn("palette rejected", slog.Any("error", err))
		}
	}
	if p.resize {
		s.rebuild(p.width, p.height)
	}
	return surface
}

func (s *VisualizerService) rebuild(width, height int) {
	if w, h := s.field.Size(); s.field.Built() && w == width && h == height {
		return
	}
	if err := s.field.Rebuild(width, height); err != nil {
		s.logger.Debug("ignoring resize", slog.Any("error", err))
		return
	}

	// fresh geometry starts from the last known bands so a paused frame stays put
	s.field.Update(s.GetBandState())

	s.logger.Debug("point field rebuilt",
		slog.Int("width", width),
		slog.Int("height", height),
		slog.Int("points", s.field.PointCount()))
	s.bus.Publish(domain.NewSurfaceResizedEvent(width, height))
}

func (s *VisualizerService) renderIfReady(surface ports.Surface) {
	if surface != nil && s.field.Built() {
		s.field.Render(surface)
	}
}

func (s *VisualizerService) storeBands(b domain.BandState) {
	s.stateMu.Lock()
	s.bands = b
	s.stateMu.Unlock()
}

func (s *VisualizerService) setState(next domain.VisualizerState) {
	s.stateMu.Lock()
	prev := s.state
	s.state = next
	s.stateMu.Unlock()

	if prev == next {
		return
	}
	s.logger.Debug("visualizer state changed", slog.String("from", prev.String()), slog.String("to", next.String()))
	s.bus.Publish(domain.NewVisualizerStateChangedEvent(prev, next))
}
