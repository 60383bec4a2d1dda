// Package ports define interfaces for dependency inversion.
// These interfaces allow the visualizer core to remain independent of audio
// backends, UI toolkits, and rendering surfaces.
package ports

import (
	"time"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
)

// SpectrumSource is the capability every analysis backend provides: a live
// tap on a playing engine, a simulated generator, or a test fixture.
//
// SampleFrame must never block. It returns the magnitudes available at the
// moment of the call (len == BinCount(), each in [0,1]) or false when the
// source has nothing to offer yet.
type SpectrumSource interface {
	// SampleRate returns the sample rate of the analysed signal in Hz.
	SampleRate() float64

	// BinCount returns the fixed number of frequency bins N.
	BinCount() int

	// SampleFrame returns the current bin magnitudes.
	SampleFrame() ([]float64, bool)
}

// PlaybackState gates frame-loop scheduling.
type PlaybackState interface {
	// IsAudioActive returns true while a track is loaded and not stopped.
	IsAudioActive() bool

	// IsAudioPlaying returns true while audio is audibly playing.
	IsAudioPlaying() bool
}

// TapProvider hands out an analysis tap for the currently playing track.
type TapProvider interface {
	// AnalysisTap attaches (or re-attaches) a tap with binCount bins to the
	// current track. Returns domain.ErrTapNotReady when nothing is loaded yet.
	AnalysisTap(binCount int) (SpectrumSource, error)
}

// AudioEngine is the interface for audio playback engines.
// This abstracts the underlying decoder/output library and allows for testing with mocks.
//
// Implementations must be thread-safe as they may be called from multiple goroutines.
type AudioEngine interface {
	// Lifecycle methods

	// Initialize opens the output device at the given sample rate in Hz.
	//
	// Returns an error if initialization fails.
	Initialize(frequency int) error

	// Shutdown releases all audio engine resources.
	Shutdown() error

	// IsInitialized returns true if the engine has been successfully initialized.
	IsInitialized() bool

	// Track loading methods

	// Load decodes an audio file and returns a handle to it.
	// The track is paused until Play is called. When loop is true the track
	// repeats forever.
	Load(filePath string, loop bool) (domain.TrackHandle, error)

	// Unload releases resources for a previously loaded track.
	Unload(handle domain.TrackHandle) error

	// Playback control methods

	// Play starts or resumes playback of the specified track.
	Play(handle domain.TrackHandle) error

	// Pause pauses playback, keeping the position.
	Pause(handle domain.TrackHandle) error

	// Stop stops playback and unloads the track.
	Stop(handle domain.TrackHandle) error

	// State query methods

	// Status returns the current playback status of the specified track.
	Status(handle domain.TrackHandle) (domain.PlaybackStatus, error)

	// Position returns the current playback position within the track.
	Position(handle domain.TrackHandle) (time.Duration, error)

	// Duration returns the total duration of the specified track.
	Duration(handle domain.TrackHandle) (time.Duration, error)

	// Metadata methods

	// GetMetadata reads tag metadata from a file without loading it for playback.
	GetMetadata(filePath string) (*domain.MusicTrack, error)

	// Visualization methods

	// AttachAnalysisTap returns a spectrum source observing the audio of the
	// given track as it is played. binCount is the number of frequency bins
	// (a power of two, commonly 64). Each call returns a fresh source so the
	// caller re-reads SampleRate and BinCount on every reattach.
	AttachAnalysisTap(handle domain.TrackHandle, binCount int) (SpectrumSource, error)
}
