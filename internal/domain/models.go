// Package domain contains core models and logic with no external dependencies.
// This package defines the fundamental entities of the GoPulse visualizer.
package domain

import (
	"time"
)

// Band identifies one of the three analysed frequency windows.
// Each band drives exactly one ring of the point field.
type Band int

const (
	// BandLows covers 0 Hz to 1 kHz
	BandLows Band = iota

	// BandMids covers 500 Hz to 1.5 kHz
	BandMids

	// BandHighs covers 1.5 kHz to 2 kHz
	BandHighs

	// BandCount is the number of bands; used to size per-band arrays.
	BandCount int = iota
)

// Bands lists every band in draw order (lows first, highs on top).
var Bands = [BandCount]Band{BandLows, BandMids, BandHighs}

// String returns the band name as used in logs and preferences keys.
func (b Band) String() string {
	switch b {
	case BandLows:
		return "lows"
	case BandMids:
		return "mids"
	case BandHighs:
		return "highs"
	default:
		return "unknown"
	}
}

// Valid reports whether b is one of the three known bands.
func (b Band) Valid() bool {
	return b >= BandLows && int(b) < BandCount
}

// FrequencySnapshot is one frame of magnitude-per-bin data.
//
// Bin i covers [i*BinWidth, (i+1)*BinWidth). Magnitudes are normalized to
// [0,1]. A snapshot is produced fresh each frame and never mutated after.
type FrequencySnapshot struct {
	// Bins holds one magnitude per frequency bin
	Bins []float64

	// SampleRate is the sample rate of the analysed signal in Hz
	SampleRate float64
}

// BinWidth returns the width of one bin in Hz: sampleRate / (2N).
// Returns 0 for an empty snapshot.
func (s FrequencySnapshot) BinWidth() float64 {
	if len(s.Bins) == 0 {
		return 0
	}
	return s.SampleRate / float64(2*len(s.Bins))
}

// BandState holds the per-frame analysis output. All values are in [0,1].
// Only Peak carries memory across frames.
type BandState struct {
	Lows  float64
	Mids  float64
	Highs float64
	Peak  float64
}

// Value returns the intensity for the given band.
func (s BandState) Value(b Band) float64 {
	switch b {
	case BandLows:
		return s.Lows
	case BandMids:
		return s.Mids
	case BandHighs:
		return s.Highs
	default:
		return 0
	}
}

// VisualizerState is the state of the drawing loop.
type VisualizerState int

const (
	// StateIdle means no frames are scheduled
	StateIdle VisualizerState = iota

	// StateActive means the frame loop is running
	StateActive
)

// String returns a human-readable representation of the loop state.
func (s VisualizerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// MusicTrack represents a single audio file loaded for playback.
type MusicTrack struct {
	// ID is a unique identifier for the track
	ID string

	// FilePath is the absolute path to the audio file on the filesystem
	FilePath string

	// Title is the song title (from metadata or filename)
	Title string

	// Artist is the performing artist name
	Artist string

	// Album is the album name
	Album string

	// Duration is the total length of the track
	Duration time.Duration

	// FileFormat is the file extension (mp3, flac, ogg, wav)
	FileFormat string

	// SampleRate is the native sample rate of the file in Hz
	SampleRate int
}

// DisplayName returns "Artist - Title", or just the title when no artist is known.
func (t MusicTrack) DisplayName() string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}

// PlaybackState is a snapshot of the playback service.
type PlaybackState struct {
	// CurrentTrack is the currently loaded track (nil if none)
	CurrentTrack *MusicTrack

	// Status is the current playback status
	Status PlaybackStatus

	// Position is the current playback position within the track
	Position time.Duration

	// Duration is the length of the current track
	Duration time.Duration

	// IsLooping indicates if the current track loops
	IsLooping bool
}

// PlaybackStatus represents the current playback state.
type PlaybackStatus int

const (
	// StatusStopped indicates playback is stopped
	StatusStopped PlaybackStatus = iota

	// StatusPlaying indicates playback is active
	StatusPlaying

	// StatusPaused indicates playback is paused
	StatusPaused
)

// String returns a human-readable representation of the playback status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// TrackHandle is an opaque reference to a track loaded in the audio engine.
type TrackHandle int64

const (
	// InvalidTrackHandle represents an invalid or uninitialized track handle
	InvalidTrackHandle TrackHandle = 0
)

// IdlePolicy decides what the peak value does on frames where the loop is
// running but no spectrum is available yet.
type IdlePolicy int

const (
	// IdleDecay keeps decaying the peak by the usual factor (default)
	IdleDecay IdlePolicy = iota

	// IdleHold freezes the peak until data arrives
	IdleHold
)

// String returns the policy name as stored in preferences.
func (p IdlePolicy) String() string {
	if p == IdleHold {
		return "hold"
	}
	return "decay"
}

// ParseIdlePolicy converts a stored policy name back to an IdlePolicy.
// Unknown names map to IdleDecay.
func ParseIdlePolicy(s string) IdlePolicy {
	if s == "hold" {
		return IdleHold
	}
	return IdleDecay
}
