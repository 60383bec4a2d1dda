// Package service provides business logic for the GoPulse visualizer.
package service

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
	"github.com/tejashwikalptaru/gopulse/internal/ports"
)

// PlaybackService orchestrates audio playback of a single track.
// It owns the current track handle and exposes the active/playing flags the
// frame loop reads on every iteration.
// All operations are thread-safe via sync.RWMutex; the flags are atomic.
type PlaybackService struct {
	// Dependencies (injected)
	logger *slog.Logger
	engine ports.AudioEngine
	bus    ports.EventBus

	// State
	currentTrack   *domain.MusicTrack
	currentHandle  domain.TrackHandle
	isLooping      bool
	updateInterval time.Duration

	// Read lock-free by the frame loop
	active  atomic.Bool
	playing atomic.Bool

	// Concurrency control
	mu            sync.RWMutex
	stopUpdate    chan struct{}
	updateRunning bool
	updateWg      sync.WaitGroup // WaitGroup to wait for update goroutine to exit
	manualStop    bool           // True if the user explicitly stopped playback
	hasPlayed     bool           // True if the current track has been played
}

// NewPlaybackService creates a new playback service. Tracks loop by default.
func NewPlaybackService(
	logger *slog.Logger,
	engine ports.AudioEngine,
	bus ports.EventBus,
) *PlaybackService {
	service := &PlaybackService{
		logger:         logger.With(slog.String("service", "playback")),
		engine:         engine,
		bus:            bus,
		currentHandle:  domain.InvalidTrackHandle,
		isLooping:      true,
		updateInterval: 100 * time.Millisecond,
		stopUpdate:     make(chan struct{}),
	}

	service.logger.Debug("playback service initialized")

	// Start update routine
	service.startUpdateRoutine()

	return service
}

// OpenFile reads the metadata of filePath and loads it for playback.
func (s *PlaybackService) OpenFile(filePath string) (domain.MusicTrack, error) {
	meta, err := s.engine.GetMetadata(filePath)
	if err != nil {
		track := domain.MusicTrack{FilePath: filePath}
		s.bus.Publish(domain.NewTrackErrorEvent(track, err))
		return track, err
	}
	return *meta, s.LoadTrack(*meta)
}

// LoadTrack loads a track for playback.
// This stops any currently loaded track and leaves the new one paused.
func (s *PlaybackService) LoadTrack(track domain.MusicTrack) error {
	s.mu.Lock()

	s.logger.Debug("loading track", slog.String("file_path", track.FilePath))

	// Stop the current track if any
	var stopped *domain.MusicTrack
	if s.currentHandle != domain.InvalidTrackHandle {
		var err error
		if stopped, err = s.stopInternal(); err != nil {
			s.logger.Warn("failed to stop current track", slog.Any("error", err))
		}
	}

	handle, err := s.engine.Load(track.FilePath, s.isLooping)
	if err != nil {
		s.mu.Unlock()
		s.publishStopped(stopped)
		s.logger.Debug("failed to load track", slog.Any("error", err))
		s.bus.Publish(domain.NewTrackErrorEvent(track, err))
		return err
	}

	duration, err := s.engine.Duration(handle)
	if err != nil {
		if unloadErr := s.engine.Unload(handle); unloadErr != nil {
			s.logger.Warn("failed to unload track after duration error", slog.Any("error", unloadErr))
		}
		s.mu.Unlock()
		s.publishStopped(stopped)
		s.bus.Publish(domain.NewTrackErrorEvent(track, err))
		return err
	}
	track.Duration = duration

	// Update state
	s.currentTrack = &track
	s.currentHandle = handle
	s.manualStop = false
	s.hasPlayed = false
	s.active.Store(true)
	s.playing.Store(false)
	looping := s.isLooping

	s.mu.Unlock()

	s.logger.Info("track loaded",
		slog.String("track", track.DisplayName()),
		slog.Duration("duration", duration),
		slog.Bool("loop", looping))

	s.publishStopped(stopped)
	s.bus.Publish(domain.NewTrackLoadedEvent(track, handle, duration))
	return nil
}

// Play starts or resumes playback of the current track.
// A track that ran to its end starts over.
func (s *PlaybackService) Play() error {
	s.mu.Lock()

	if s.currentHandle == domain.InvalidTrackHandle {
		s.mu.Unlock()
		return domain.ErrNoTrackLoaded
	}

	status, err := s.engine.Status(s.currentHandle)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	// Already playing
	if status == domain.StatusPlaying {
		s.mu.Unlock()
		return nil
	}

	if err := s.engine.Play(s.currentHandle); err != nil {
		s.playing.Store(false)
		track := *s.currentTrack
		s.mu.Unlock()
		s.logger.Warn("play failed", slog.Any("error", err))
		s.bus.Publish(domain.NewTrackErrorEvent(track, err))
		return domain.NewServiceError("PlaybackService", "Play", "engine refused to play", err)
	}

	s.manualStop = false
	s.hasPlayed = true
	s.active.Store(true)
	s.playing.Store(true)
	track, handle := *s.currentTrack, s.currentHandle

	s.mu.Unlock()

	s.bus.Publish(domain.NewTrackStartedEvent(track, handle))
	return nil
}

// Pause pauses playback of the current track.
func (s *PlaybackService) Pause() error {
	s.mu.Lock()

	if s.currentHandle == domain.InvalidTrackHandle {
		s.mu.Unlock()
		return domain.ErrNoTrackLoaded
	}

	// Get the current position before pausing
	position, err := s.engine.Position(s.currentHandle)
	if err != nil {
		position = 0 // Default to 0 if position unavailable
	}

	if err := s.engine.Pause(s.currentHandle); err != nil {
		s.mu.Unlock()
		return err
	}
	s.playing.Store(false)
	track := *s.currentTrack

	s.mu.Unlock()

	s.bus.Publish(domain.NewTrackPausedEvent(track, position))
	return nil
}

// TogglePlayback pauses a playing track and plays anything else.
func (s *PlaybackService) TogglePlayback() error {
	if s.IsAudioPlaying() {
		return s.Pause()
	}
	return s.Play()
}

// Stop stops playback and unloads the current track.
func (s *PlaybackService) Stop() error {
	s.mu.Lock()
	stopped, err := s.stopInternal()
	s.mu.Unlock()

	s.publishStopped(stopped)
	return err
}

// stopInternal stops playback without locking (caller must hold lock).
// It returns the stopped track so the caller can publish after unlocking.
func (s *PlaybackService) stopInternal() (*domain.MusicTrack, error) {
	if s.currentHandle == domain.InvalidTrackHandle {
		return nil, nil
	}

	s.manualStop = true
	s.hasPlayed = false
	s.active.Store(false)
	s.playing.Store(false)

	track := s.currentTrack
	err := s.engine.Stop(s.currentHandle)

	// Even if stop fails, clear our state
	s.currentHandle = domain.InvalidTrackHandle
	s.currentTrack = nil

	return track, err
}

func (s *PlaybackService) publishStopped(track *domain.MusicTrack) {
	if track != nil {
		s.bus.Publish(domain.NewTrackStoppedEvent(*track))
	}
}

// SetLoop sets whether tracks loaded from now on repeat forever.
func (s *PlaybackService) SetLoop(loop bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLooping = loop
}

// IsLooping returns true if newly loaded tracks loop.
func (s *PlaybackService) IsLooping() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLooping
}

// IsAudioActive returns true while a track is loaded and has not stopped or
// run to its end.
func (s *PlaybackService) IsAudioActive() bool {
	return s.active.Load()
}

// IsAudioPlaying returns true while audio is audibly playing.
func (s *PlaybackService) IsAudioPlaying() bool {
	return s.playing.Load()
}

// AnalysisTap attaches a fresh analysis tap to the current track.
func (s *PlaybackService) AnalysisTap(binCount int) (ports.SpectrumSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.currentHandle == domain.InvalidTrackHandle {
		return nil, domain.ErrTapNotReady
	}

	src, err := s.engine.AttachAnalysisTap(s.currentHandle, binCount)
	if err != nil {
		return nil, domain.NewServiceError("PlaybackService", "AnalysisTap", "attach failed", err)
	}
	return src, nil
}

// GetState returns the current playback state.
func (s *PlaybackService) GetState() domain.PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := domain.PlaybackState{
		IsLooping: s.isLooping,
		Status:    domain.StatusStopped,
	}

	if s.currentTrack != nil {
		track := *s.currentTrack
		state.CurrentTrack = &track
	}

	// Get status and position if the track is loaded
	if s.currentHandle != domain.InvalidTrackHandle {
		if status, err := s.engine.Status(s.currentHandle); err == nil {
			state.Status = status
		}
		if position, err := s.engine.Position(s.currentHandle); err == nil {
			state.Position = position
		}
		if duration, err := s.engine.Duration(s.currentHandle); err == nil {
			state.Duration = duration
		}
	}

	return state
}

// Shutdown stops playback and cleans up resources.
func (s *PlaybackService) Shutdown() error {
	s.mu.Lock()

	// Stop update routine
	if s.updateRunning {
		close(s.stopUpdate)
		s.updateRunning = false
	}

	// Release lock before waiting for goroutine to exit (to avoid deadlock)
	s.mu.Unlock()

	// Wait for the update goroutine to finish
	s.updateWg.Wait()

	s.mu.Lock()
	stopped, err := s.stopInternal()
	s.mu.Unlock()

	s.publishStopped(stopped)
	return err
}

// startUpdateRoutine starts a goroutine that watches the engine for tracks
// that ended on their own.
func (s *PlaybackService) startUpdateRoutine() {
	s.mu.Lock()
	if s.updateRunning {
		s.mu.Unlock()
		return
	}
	s.updateRunning = true
	s.updateWg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.updateWg.Done()
		ticker := time.NewTicker(s.updateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopUpdate:
				return

			case <-ticker.C:
				s.checkProgress()
			}
		}
	}()
}

// checkProgress syncs the playing flag with the engine and publishes
// TrackCompleted once when a non-looping track reaches its end.
func (s *PlaybackService) checkProgress() {
	s.mu.Lock()

	// Nothing to update if no track loaded
	if s.currentHandle == domain.InvalidTrackHandle || s.currentTrack == nil {
		s.mu.Unlock()
		return
	}

	status, err := s.engine.Status(s.currentHandle)
	if err != nil {
		// engine failures surface only as "not playing"
		s.playing.Store(false)
		s.mu.Unlock()
		return
	}
	s.playing.Store(status == domain.StatusPlaying)

	finished := status == domain.StatusStopped && !s.manualStop && s.hasPlayed
	track := *s.currentTrack
	if finished {
		s.hasPlayed = false
		s.active.Store(false)
	}

	s.mu.Unlock()

	if finished {
		s.logger.Debug("track completed", slog.String("track", track.DisplayName()))
		s.bus.Publish(domain.NewTrackCompletedEvent(track))
	}
}

// Verify that PlaybackService implements the ports the visualizer consumes
var (
	_ ports.PlaybackState = (*PlaybackService)(nil)
	_ ports.TapProvider   = (*PlaybackService)(nil)
)
