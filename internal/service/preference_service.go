package service

import (
	"image/color"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
	"github.com/tejashwikalptaru/gopulse/internal/pointfield"
	"github.com/tejashwikalptaru/gopulse/internal/ports"
)

// PreferenceService manages the visualizer's persisted settings.
// All operations are thread-safe via sync.RWMutex.
type PreferenceService struct {
	// Dependencies (injected)
	logger     *slog.Logger
	repository ports.PreferencesRepository

	// Cached preferences
	palette    pointfield.Palette
	idlePolicy domain.IdlePolicy
	showMeters bool

	// Concurrency control
	mu sync.RWMutex
}

// NewPreferenceService creates a new preference service and loads the saved
// values. Unreadable values fall back to the defaults.
func NewPreferenceService(
	logger *slog.Logger,
	repository ports.PreferencesRepository,
) *PreferenceService {
	service := &PreferenceService{
		logger:     logger.With(slog.String("service", "preferences")),
		repository: repository,
		palette:    pointfield.DefaultPalette(),
		idlePolicy: domain.IdleDecay,
		showMeters: true,
	}

	service.loadPreferences()
	service.logger.Debug("preference service initialized")

	return service
}

// loadPreferences loads all preferences from repository into cache.
func (s *PreferenceService) loadPreferences() {
	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := pointfield.DefaultPalette()
	loaded := defaults

	if bg, err := s.repository.LoadBackground(defaults.Background); err == nil {
		loaded.Background = bg
	} else {
		s.logger.Warn("failed to load background", slog.Any("error", err))
	}
	for _, b := range domain.Bands {
		c, err := s.repository.LoadRingColor(b, defaults.Rings[b])
		if err != nil {
			s.logger.Warn("failed to load ring color", slog.String("band", b.String()), slog.Any("error", err))
			continue
		}
		loaded.Rings[b] = c
	}
	if err := loaded.Validate(); err != nil {
		s.logger.Warn("saved palette rejected", slog.Any("error", err))
		loaded = defaults
	}
	s.palette = loaded

	if policy, err := s.repository.LoadIdlePolicy(); err == nil {
		s.idlePolicy = policy
	}
	if show, err := s.repository.LoadShowMeters(); err == nil {
		s.showMeters = show
	}
}

// Palette returns the saved ring and background colors.
func (s *PreferenceService) Palette() pointfield.Palette {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.palette
}

// SetRingColor saves the color of one ring and returns the resulting palette.
func (s *PreferenceService) SetRingColor(band domain.Band, c color.RGBA) (pointfield.Palette, error) {
	if !band.Valid() {
		return s.Palette(), domain.NewValidationError("band", band, "unknown band")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.palette
	next.Rings[band] = c
	if err := next.Validate(); err != nil {
		return s.palette, err
	}
	if err := s.repository.SaveRingColor(band, c); err != nil {
		return s.palette, err
	}
	s.palette = next
	return next, nil
}

// SetBackground saves the background color and returns the resulting palette.
func (s *PreferenceService) SetBackground(c color.RGBA) (pointfield.Palette, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repository.SaveBackground(c); err != nil {
		return s.palette, err
	}
	s.palette.Background = c
	return s.palette, nil
}

// IdlePolicy returns what the peak does on frames without a spectrum.
func (s *PreferenceService) IdlePolicy() domain.IdlePolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idlePolicy
}

// SetIdlePolicy saves the idle peak policy.
func (s *PreferenceService) SetIdlePolicy(policy domain.IdlePolicy) error {
	if policy != domain.IdleDecay && policy != domain.IdleHold {
		return domain.NewValidationError("idle_policy", policy, "must be decay or hold")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repository.SaveIdlePolicy(policy); err != nil {
		return err
	}
	s.idlePolicy = policy
	return nil
}

// ShowMeters returns whether the level meters are visible.
func (s *PreferenceService) ShowMeters() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showMeters
}

// SetShowMeters saves the level meter visibility.
func (s *PreferenceService) SetShowMeters(show bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repository.SaveShowMeters(show); err != nil {
		return err
	}
	s.showMeters = show
	return nil
}

// ResetToDefaults clears the saved preferences and restores the defaults.
func (s *PreferenceService) ResetToDefaults() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repository.Clear(); err != nil {
		return domain.NewServiceError("PreferenceService", "ResetToDefaults", "clear failed", err)
	}

	s.palette = pointfield.DefaultPalette()
	s.idlePolicy = domain.IdleDecay
	s.showMeters = true
	return nil
}

// Shutdown cleans up resources.
func (s *PreferenceService) Shutdown() error {
	// No cleanup needed for preference service
	return nil
}
