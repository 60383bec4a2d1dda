// Package ports define repository interfaces for data persistence abstraction.
package ports

import (
	"image/color"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
)

// PreferencesRepository handles the persistence of visualizer preferences.
// This abstracts the Fyne preferences storage.
//
// Thread-safety: Implementations must be thread-safe.
type PreferencesRepository interface {
	// SaveRingColor persists the color of one ring.
	SaveRingColor(band domain.Band, c color.RGBA) error

	// LoadRingColor retrieves the color of one ring.
	// Returns (fallback, nil) when nothing was saved.
	LoadRingColor(band domain.Band, fallback color.RGBA) (color.RGBA, error)

	// SaveBackground persists the background color.
	SaveBackground(c color.RGBA) error

	// LoadBackground retrieves the background color, or fallback when unset.
	LoadBackground(fallback color.RGBA) (color.RGBA, error)

	// SaveIdlePolicy persists what the peak does while no spectrum is available.
	SaveIdlePolicy(policy domain.IdlePolicy) error

	// LoadIdlePolicy retrieves the idle policy (domain.IdleDecay when unset).
	LoadIdlePolicy() (domain.IdlePolicy, error)

	// SaveShowMeters persists whether the level meters are visible.
	SaveShowMeters(show bool) error

	// LoadShowMeters retrieves the meter visibility (true when unset).
	LoadShowMeters() (bool, error)

	// Clear removes all saved preferences.
	Clear() error
}
