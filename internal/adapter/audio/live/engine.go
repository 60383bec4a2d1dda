// Package live implements AudioEngine on top of beep: files are decoded in
// process, resampled to the output rate and mixed into the speaker, with a
// Tap in the chain feeding the visualizer.
package live

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
	"github.com/tejashwikalptaru/gopulse/internal/logger"
	"github.com/tejashwikalptaru/gopulse/internal/ports"
)

const (
	// TapSize is how many mono samples each track's tap keeps. It must hold
	// the chunk being heard, the one queued behind it and an analysis window.
	TapSize = 8192

	resampleQuality = 4
	bufferDuration  = time.Second / 20
)

// output is the part of the beep speaker the engine drives.
type output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Clear()
	Close()
	Lock()
	Unlock()
}

type speakerOutput struct{}

func (speakerOutput) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}
func (speakerOutput) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (speakerOutput) Clear() { speaker.Clear() }
func (speakerOutput) Close() { speaker.Close() }
func (speakerOutput) Lock() { speaker.Lock() }
func (speakerOutput) Unlock() { speaker.Unlock() }

// Engine plays audio files through the beep speaker.
//
// Thread-safety: This implementation is thread-safe. Track state touched by
// the speaker goroutine is only changed while holding the speaker lock.
type Engine struct {
	logger *slog.Logger
	out    output

	mu          sync.RWMutex
	initialized bool
	rate        beep.SampleRate
	tracks      map[domain.TrackHandle]*track
	nextHandle  domain.TrackHandle
}

type track struct {
	path   string
	stream beep.StreamSeekCloser
	format beep.Format
	tap    *Tap
	ctrl   *beep.Ctrl
	loop   bool

	// finished is set by the speaker when a non-looping track runs out
	finished atomic.Bool
}

// NewEngine creates an uninitialized engine playing through the speaker.
func NewEngine() *Engine {
	return newEngine(speakerOutput{})
}

func newEngine(out output) *Engine {
	return &Engine{
		logger:     logger.NewDiscardLogger(),
		out:        out,
		tracks:     make(map[domain.TrackHandle]*track),
		nextHandle: 1,
	}
}

// SetLogger sets the logger for this engine.
// This should be called after construction before using the engine.
func (e *Engine) SetLogger(logger *slog.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logger = logger.With(slog.String("adapter", "live-engine"))
}

// Initialize opens the output device at frequency Hz.
func (e *Engine) Initialize(frequency int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return domain.ErrAlreadyInitialized
	}
	if frequency <= 0 {
		return domain.NewValidationError("frequency", frequency, "sample rate must be positive")
	}

	rate := beep.SampleRate(frequency)
	if err := e.out.Init(rate, rate.N(bufferDuration)); err != nil {
		return domain.NewAudioEngineError("initialize", "", "speaker init failed", err)
	}

	e.rate = rate
	e.initialized = true
	e.logger.Info("audio output initialized", slog.Int("sample_rate", frequency))
	return nil
}

// Shutdown stops every track and closes the output device.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return domain.ErrNotInitialized
	}

	e.out.Clear()
	for handle, t := range e.tracks {
		e.closeTrack(handle, t)
	}
	e.out.Close()

	e.initialized = false
	return nil
}

// IsInitialized returns true once Initialize succeeded.
func (e *Engine) IsInitialized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.initialized
}

// Load decodes filePath and queues it on the speaker, paused.
func (e *Engine) Load(filePath string, loop bool) (domain.TrackHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return domain.InvalidTrackHandle, domain.ErrNotInitialized
	}

	stream, format, err := decodeFile(filePath)
	if err != nil {
		return domain.InvalidTrackHandle, err
	}

	var src beep.Streamer = stream
	if loop {
		src = beep.Loop(-1, stream)
	}
	if format.SampleRate != e.rate {
		src = beep.Resample(resampleQuality, format.SampleRate, e.rate, src)
	}

	t := &track{
		path:   filePath,
		stream: stream,
		format: format,
		loop:   loop,
	}
	t.tap = NewTap(src, TapSize)
	t.tap.SetLatency(bufferDuration)
	t.ctrl = &beep.Ctrl{Streamer: t.tap, Paused: true}

	handle := e.nextHandle
	e.nextHandle++
	e.tracks[handle] = t

	e.out.Play(t.sequence())

	e.logger.Debug("track loaded",
		slog.Int64("handle", int64(handle)),
		slog.String("file_path", filePath),
		slog.Int("sample_rate", int(format.SampleRate)),
		slog.Bool("loop", loop))
	return handle, nil
}

func (t *track) sequence() beep.Streamer {
	return beep.Seq(t.ctrl, beep.Callback(func() {
		t.finished.Store(true)
	}))
}

// Unload releases resources for a previously loaded track.
func (e *Engine) Unload(handle domain.TrackHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.trackLocked(handle)
	if err != nil {
		return err
	}
	e.closeTrack(handle, t)
	return nil
}

// Play starts or resumes playback. A finished track starts over.
func (e *Engine) Play(handle domain.TrackHandle) error {
	e.mu.RLock()
	t, err := e.trackLocked(handle)
	e.mu.RUnlock()
	if err != nil {
		return err
	}

	restart := t.finished.Load()

	e.out.Lock()
	if restart {
		err = t.stream.Seek(0)
		t.finished.Store(false)
	}
	t.ctrl.Paused = false
	e.out.Unlock()

	if err != nil {
		return domain.NewAudioEngineError("play", t.path, "rewind failed", err)
	}
	if restart {
		e.out.Play(t.sequence())
	}
	return nil
}

// Pause pauses playback, keeping the position.
func (e *Engine) Pause(handle domain.TrackHandle) error {
	e.mu.RLock()
	t, err := e.trackLocked(handle)
	e.mu.RUnlock()
	if err != nil {
		return err
	}

	e.out.Lock()
	t.ctrl.Paused = true
	e.out.Unlock()
	return nil
}

// Stop stops playback and unloads the track.
func (e *Engine) Stop(handle domain.TrackHandle) error {
	return e.Unload(handle)
}

// closeTrack detaches the track from the speaker and closes its decoder.
// Caller must hold e.mu.
func (e *Engine) closeTrack(handle domain.TrackHandle, t *track) {
	e.out.Lock()
	t.ctrl.Streamer = nil
	t.ctrl.Paused = true
	e.out.Unlock()

	if err := t.stream.Close(); err != nil {
		e.logger.Warn("failed to close decoder", slog.String("file_path", t.path), slog.Any("error", err))
	}
	delete(e.tracks, handle)
}

// Status returns the playback status of the track.
func (e *Engine) Status(handle domain.TrackHandle) (domain.PlaybackStatus, error) {
	e.mu.RLock()
	t, err := e.trackLocked(handle)
	e.mu.RUnlock()
	if err != nil {
		return domain.StatusStopped, err
	}

	if t.finished.Load() {
		return domain.StatusStopped, nil
	}

	e.out.Lock()
	paused := t.ctrl.Paused
	e.out.Unlock()

	if paused {
		return domain.StatusPaused, nil
	}
	return domain.StatusPlaying, nil
}

// Position returns the playback position within the track.
func (e *Engine) Position(handle domain.TrackHandle) (time.Duration, error) {
	e.mu.RLock()
	t, err := e.trackLocked(handle)
	e.mu.RUnlock()
	if err != nil {
		return 0, err
	}

	e.out.Lock()
	pos := t.stream.Position()
	e.out.Unlock()
	return t.format.SampleRate.D(pos), nil
}

// Duration returns the total duration of the track.
func (e *Engine) Duration(handle domain.TrackHandle) (time.Duration, error) {
	e.mu.RLock()
	t, err := e.trackLocked(handle)
	e.mu.RUnlock()
	if err != nil {
		return 0, err
	}
	return t.format.SampleRate.D(t.stream.Len()), nil
}

// GetMetadata reads tags from filePath without loading it for playback.
func (e *Engine) GetMetadata(filePath string) (*domain.MusicTrack, error) {
	return extractMetadata(filePath)
}

// AttachAnalysisTap returns a fresh spectrum source over the track's tap.
// The sample rate is the output rate, since the tap sits after resampling.
func (e *Engine) AttachAnalysisTap(handle domain.TrackHandle, binCount int) (ports.SpectrumSource, error) {
	e.mu.RLock()
	t, err := e.trackLocked(handle)
	rate := float64(e.rate)
	e.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	return NewTapSource(t.tap, rate, binCount)
}

// trackLocked looks up a track. Caller must hold e.mu.
func (e *Engine) trackLocked(handle domain.TrackHandle) (*track, error) {
	if !e.initialized {
		return nil, domain.ErrNotInitialized
	}
	t, ok := e.tracks[handle]
	if !ok {
		return nil, domain.ErrInvalidTrackHandle
	}
	return t, nil
}

// Verify that Engine implements the AudioEngine interface
var _ ports.AudioEngine = (*Engine)(nil)
