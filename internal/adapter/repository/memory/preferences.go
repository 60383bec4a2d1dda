// Package memory provides repository implementations backed by Fyne's
// preferences store.
package memory

import (
	"fmt"
	"image/color"
	"strings"
	"sync"

	"fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
	"github.com/tejashwikalptaru/gopulse/internal/ports"
)

const (
	keyRingColorPrefix = "preferences.ring_color."
	keyBackground      = "preferences.background"
	keyIdlePolicy      = "preferences.idle_policy"
	keyShowMeters      = "preferences.show_meters"
)

// PreferencesRepository implements ports.PreferencesRepository using Fyne preferences.
// Colors are stored as "#rrggbbaa" strings.
//
// Thread-safe: All operations protected by sync.RWMutex.
type PreferencesRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewPreferencesRepository creates a new preferences' repository.
// The preferences parameter should be obtained from fyne.CurrentApp().Preferences().
func NewPreferencesRepository(prefs fyne.Preferences) *PreferencesRepository {
	return &PreferencesRepository{
		prefs: prefs,
	}
}

// SaveRingColor persists the color of one ring.
func (r *PreferencesRepository) SaveRingColor(band domain.Band, c color.RGBA) error {
	if !band.Valid() {
		return domain.NewValidationError("band", band, "unknown band")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetString(keyRingColorPrefix+band.String(), formatColor(c))
	return nil
}

// LoadRingColor retrieves the color of one ring, or fallback when unset.
func (r *PreferencesRepository) LoadRingColor(band domain.Band, fallback color.RGBA) (color.RGBA, error) {
	if !band.Valid() {
		return fallback, domain.NewValidationError("band", band, "unknown band")
	}
	return r.loadColor("LoadRingColor", keyRingColorPrefix+band.String(), fallback)
}

// SaveBackground persists the background color.
func (r *PreferencesRepository) SaveBackground(c color.RGBA) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetString(keyBackground, formatColor(c))
	return nil
}

// LoadBackground retrieves the background color, or fallback when unset.
func (r *PreferencesRepository) LoadBackground(fallback color.RGBA) (color.RGBA, error) {
	return r.loadColor("LoadBackground", keyBackground, fallback)
}

func (r *PreferencesRepository) loadColor(op, key string, fallback color.RGBA) (color.RGBA, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	raw := r.prefs.String(key)
	if raw == "" {
		return fallback, nil
	}
	c, err := parseColor(raw)
	if err != nil {
		return fallback, domain.NewRepositoryError(op, "preferences", fmt.Sprintf("bad color %q", raw), err)
	}
	return c, nil
}

// SaveIdlePolicy persists the idle peak policy.
func (r *PreferencesRepository) SaveIdlePolicy(policy domain.IdlePolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetString(keyIdlePolicy, policy.String())
	return nil
}

// LoadIdlePolicy retrieves the idle peak policy (decay when unset).
func (r *PreferencesRepository) LoadIdlePolicy() (domain.IdlePolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return domain.ParseIdlePolicy(r.prefs.StringWithFallback(keyIdlePolicy, domain.IdleDecay.String())), nil
}

// SaveShowMeters persists whether the level meters are visible.
func (r *PreferencesRepository) SaveShowMeters(show bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetBool(keyShowMeters, show)
	return nil
}

// LoadShowMeters retrieves the meter visibility (shown when unset).
func (r *PreferencesRepository) LoadShowMeters() (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.BoolWithFallback(keyShowMeters, true), nil
}

// Clear removes all saved preferences.
func (r *PreferencesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range domain.Bands {
		r.prefs.RemoveValue(keyRingColorPrefix + b.String())
	}
	r.prefs.RemoveValue(keyBackground)
	r.prefs.RemoveValue(keyIdlePolicy)
	r.prefs.RemoveValue(keyShowMeters)
	return nil
}

func formatColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// parseColor accepts "#rrggbb" (opaque) and "#rrggbbaa".
func parseColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")

	var c color.RGBA
	switch len(s) {
	case 6:
		c.A = 0xff
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
			return color.RGBA{}, err
		}
	case 8:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A); err != nil {
			return color.RGBA{}, err
		}
	default:
		return color.RGBA{}, fmt.Errorf("want 6 or 8 hex digits, got %d", len(s))
	}
	return c, nil
}

// Verify interface implementation
var _ ports.PreferencesRepository = (*PreferencesRepository)(nil)
