// Package mock provides in-memory audio backends.
// Engine implements AudioEngine without touching an output device; Simulator
// and Fixture implement SpectrumSource with synthesized or scripted frames.
package mock

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
	"github.com/tejashwikalptaru/gopulse/internal/logger"
	"github.com/tejashwikalptaru/gopulse/internal/ports"
)

// DefaultTrackDuration is the length of every mock track.
const DefaultTrackDuration = 3 * time.Minute

// Engine is a mock implementation of the AudioEngine interface.
// It simulates playback in memory; analysis taps are Simulators that only
// produce frames while their track is playing.
//
// Thread-safety: This implementation is thread-safe.
type Engine struct {
	logger *slog.Logger

	initialized bool
	frequency   int

	tracks     map[domain.TrackHandle]*mockTrack
	nextHandle domain.TrackHandle
	mu         sync.RWMutex

	// tapSource replaces the simulator for every tap when set
	tapSource ports.SpectrumSource
	taps      int

	// Behavior configuration (for testing error scenarios)
	failInitialize bool
	failLoad       bool
	failPlay       bool
	failTap        bool
}

type mockTrack struct {
	filePath string
	duration time.Duration
	position time.Duration
	status   domain.PlaybackStatus
	loop     bool
}

// NewEngine creates a new mock audio engine.
func NewEngine() *Engine {
	return &Engine{
		logger:     logger.NewDiscardLogger(),
		tracks:     make(map[domain.TrackHandle]*mockTrack),
		nextHandle: 1,
	}
}

// SetLogger sets the logger for this engine.
// This should be called after construction before using the engine.
func (m *Engine) SetLogger(logger *slog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger.With(slog.String("adapter", "mock-engine"))
}

// SetFailInitialize configures the mock to fail initialization (for testing).
func (m *Engine) SetFailInitialize(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failInitialize = fail
}

// SetFailLoad configures the mock to fail loading tracks (for testing).
func (m *Engine) SetFailLoad(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLoad = fail
}

// SetFailPlay configures the mock to fail playback (for testing).
func (m *Engine) SetFailPlay(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPlay = fail
}

// SetFailTap configures the mock to refuse analysis taps (for testing).
func (m *Engine) SetFailTap(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failTap = fail
}

// SetTapSource makes every AttachAnalysisTap return src instead of a Simulator.
// Pass nil to go back to simulated taps.
func (m *Engine) SetTapSource(src ports.SpectrumSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tapSource = src
}

// Initialize initializes the mock audio engine.
func (m *Engine) Initialize(frequency int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failInitialize {
		return domain.NewAudioEngineError("initialize", "", "mock initialization failed", nil)
	}
	if m.initialized {
		return domain.ErrAlreadyInitialized
	}
	if frequency <= 0 {
		return domain.NewValidationError("frequency", frequency, "sample rate must be positive")
	}

	m.initialized = true
	m.frequency = frequency
	return nil
}

// Shutdown shuts down the mock audio engine.
func (m *Engine) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return domain.ErrNotInitialized
	}

	m.initialized = false
	m.tracks = make(map[domain.TrackHandle]*mockTrack)
	return nil
}

// IsInitialized returns true if the engine is initialized.
func (m *Engine) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// Load registers a paused mock track and returns its handle.
func (m *Engine) Load(filePath string, loop bool) (domain.TrackHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return domain.InvalidTrackHandle, domain.ErrNotInitialized
	}
	if m.failLoad {
		return domain.InvalidTrackHandle, domain.NewAudioEngineError("load", filePath, "mock load failed", nil)
	}
	if filePath == "" {
		return domain.InvalidTrackHandle, domain.ErrInvalidFilePath
	}

	handle := m.nextHandle
	m.nextHandle++

	m.tracks[handle] = &mockTrack{
		filePath: filePath,
		duration: DefaultTrackDuration,
		status:   domain.StatusPaused,
		loop:     loop,
	}

	m.logger.Debug("mock track loaded", slog.Int64("handle", int64(handle)), slog.Bool("loop", loop))
	return handle, nil
}

// Unload unloads a previously loaded track.
func (m *Engine) Unload(handle domain.TrackHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.trackLocked(handle); err != nil {
		return err
	}
	delete(m.tracks, handle)
	return nil
}

// Play starts or resumes playback.
func (m *Engine) Play(handle domain.TrackHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized && m.failPlay {
		return domain.ErrPlaybackFailed
	}

	track, err := m.trackLocked(handle)
	if err != nil {
		return err
	}

	// a finished track starts over
	if track.status == domain.StatusStopped {
		track.position = 0
	}
	track.status = domain.StatusPlaying
	return nil
}

// Pause pauses playback.
func (m *Engine) Pause(handle domain.TrackHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	track, err := m.trackLocked(handle)
	if err != nil {
		return err
	}
	if track.status == domain.StatusPlaying {
		track.status = domain.StatusPaused
	}
	return nil
}

// Stop stops playback and unloads the track.
func (m *Engine) Stop(handle domain.TrackHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.trackLocked(handle); err != nil {
		return err
	}
	delete(m.tracks, handle)
	return nil
}

// Status returns the playback status.
func (m *Engine) Status(handle domain.TrackHandle) (domain.PlaybackStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	track, err := m.trackLocked(handle)
	if err != nil {
		return domain.StatusStopped, err
	}
	return track.status, nil
}

// Position returns the current playback position.
func (m *Engine) Position(handle domain.TrackHandle) (time.Duration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	track, err := m.trackLocked(handle)
	if err != nil {
		return 0, err
	}
	return track.position, nil
}

// Duration returns the total track duration.
func (m *Engine) Duration(handle domain.TrackHandle) (time.Duration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	track, err := m.trackLocked(handle)
	if err != nil {
		return 0, err
	}
	return track.duration, nil
}

// trackLocked looks up a track. Caller must hold m.mu.
func (m *Engine) trackLocked(handle domain.TrackHandle) (*mockTrack, error) {
	if !m.initialized {
		return nil, domain.ErrNotInitialized
	}
	track, exists := m.tracks[handle]
	if !exists {
		return nil, domain.ErrInvalidTrackHandle
	}
	return track, nil
}

// GetMetadata derives mock metadata from a file path.
func (m *Engine) GetMetadata(filePath string) (*domain.MusicTrack, error) {
	if filePath == "" {
		return nil, domain.ErrInvalidFilePath
	}

	filename := filepath.Base(filePath)
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)

	m.mu.RLock()
	rate := m.frequency
	m.mu.RUnlock()

	return &domain.MusicTrack{
		ID:         fmt.Sprintf("mock-%s", name),
		FilePath:   filePath,
		Title:      name,
		Artist:     "Mock Artist",
		Album:      "Mock Album",
		Duration:   DefaultTrackDuration,
		FileFormat: strings.TrimPrefix(strings.ToLower(ext), "."),
		SampleRate: rate,
	}, nil
}

// AttachAnalysisTap returns a spectrum source for the track. Unless a source
// was injected with SetTapSource, it is a Simulator that stays silent while
// the track is not playing.
func (m *Engine) AttachAnalysisTap(handle domain.TrackHandle, binCount int) (ports.SpectrumSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.trackLocked(handle); err != nil {
		return nil, err
	}
	if m.failTap {
		return nil, domain.NewAudioEngineError("attach tap", "", "mock tap failed", domain.ErrTapNotReady)
	}

	m.taps++
	if m.tapSource != nil {
		return m.tapSource, nil
	}

	sim, err := NewSimulator(float64(m.frequency), binCount, int64(handle))
	if err != nil {
		return nil, err
	}
	sim.SetGate(func() bool {
		status, err := m.Status(handle)
		return err == nil && status == domain.StatusPlaying
	})
	return sim, nil
}

// TapCount returns how many taps were attached (for testing).
func (m *Engine) TapCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.taps
}

// GetLoadedTracks returns the number of currently loaded tracks (for testing).
func (m *Engine) GetLoadedTracks() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tracks)
}

// SimulateProgress advances a playing track by delta (for testing).
// Looping tracks wrap around; others stop at the end.
func (m *Engine) SimulateProgress(handle domain.TrackHandle, delta time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	track, err := m.trackLocked(handle)
	if err != nil {
		return err
	}
	if track.status != domain.StatusPlaying {
		return fmt.Errorf("track %d is %s, not playing", handle, track.status)
	}

	track.position += delta
	if track.position >= track.duration {
		if track.loop {
			track.position %= track.duration
			return nil
		}
		track.position = track.duration
		track.status = domain.StatusStopped
	}
	return nil
}

// Verify that Engine implements the AudioEngine interface
var _ ports.AudioEngine = (*Engine)(nil)
