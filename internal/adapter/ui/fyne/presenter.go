// Package fyne provides Fyne UI adapter implementations.
// This package implements the UI layer using the Fyne toolkit.
package fyne

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/gopulse/internal/adapter/scheduler"
	"github.com/tejashwikalptaru/gopulse/internal/domain"
	"github.com/tejashwikalptaru/gopulse/internal/pointfield"
	"github.com/tejashwikalptaru/gopulse/internal/ports"
	"github.com/tejashwikalptaru/gopulse/internal/service"
)

// DefaultMeterInterval is how often the level meters are refreshed.
const DefaultMeterInterval = time.Second / 30

// UIView defines the interface for UI updates.
// The actual UI implementation (MainWindow) must implement this interface.
type UIView interface {
	// Playback state updates
	SetPlayState(playing bool)

	// Track information updates
	SetTrackInfo(title, artist string)
	ClearTrackInfo()

	// Visualizer updates
	SetMeters(state domain.BandState)
	SetMetersVisible(visible bool)
	SetVisualizerActive(active bool)

	// Notifications
	ShowNotification(title, message string)
}

// Presenter coordinates between the services and the window.
//
// Responsibilities:
// - Subscribe to events from the event bus
// - Map domain events to UI updates
// - Translate UI commands to service method calls
// - Feed the level meters from the analyzer
//
// View calls are routed through the dispatcher so they land on the UI thread
// no matter which goroutine published the event.
type Presenter struct {
	// Dependencies
	logger *slog.Logger

	// Services (injected)
	playbackService   *service.PlaybackService
	preferenceService *service.PreferenceService
	visualizerService *service.VisualizerService

	eventBus      ports.EventBus
	subscriptions []domain.SubscriptionID

	// UI view
	view     UIView
	dispatch scheduler.Dispatcher

	// Presentation state
	currentTrack  *domain.MusicTrack
	isPlaying     bool
	meterInterval time.Duration
	meterTicker   *time.Ticker
	stopMeters    chan struct{}
	meterWg       sync.WaitGroup

	// Concurrency control
	mu           sync.RWMutex
	shutdownOnce sync.Once
}

// NewPresenter creates a new presenter and starts the meter updates.
// A nil dispatch runs view updates on the calling goroutine.
func NewPresenter(
	logger *slog.Logger,
	playbackService *service.PlaybackService,
	preferenceService *service.PreferenceService,
	visualizerService *service.VisualizerService,
	eventBus ports.EventBus,
	view UIView,
	dispatch scheduler.Dispatcher,
	meterInterval time.Duration,
) *Presenter {
	if dispatch == nil {
		dispatch = scheduler.Direct
	}
	if meterInterval <= 0 {
		meterInterval = DefaultMeterInterval
	}

	p := &Presenter{
		logger:            logger.With(slog.String("adapter", "presenter")),
		playbackService:   playbackService,
		preferenceService: preferenceService,
		visualizerService: visualizerService,
		eventBus:          eventBus,
		view:              view,
		dispatch:          dispatch,
		meterInterval:     meterInterval,
		stopMeters:        make(chan struct{}),
	}

	p.subscribeToEvents()
	p.syncInitialState()
	p.startMeterUpdates()

	return p
}

// subscribeToEvents subscribes to all relevant events from the event bus.
func (p *Presenter) subscribeToEvents() {
	subscriptions := map[domain.EventType]domain.EventHandler{
		domain.EventTrackLoaded:    p.onTrackLoaded,
		domain.EventTrackStarted:   p.onTrackStarted,
		domain.EventTrackPaused:    p.onPlaybackHalted,
		domain.EventTrackStopped:   p.onTrackStopped,
		domain.EventTrackCompleted: p.onPlaybackHalted,
		domain.EventTrackError:     p.onTrackError,

		domain.EventVisualizerStateChange: p.onVisualizerStateChanged,
	}

	for eventType, handler := range subscriptions {
		p.subscriptions = append(p.subscriptions, p.eventBus.Subscribe(eventType, handler))
	}
}

// syncInitialState synchronizes the UI with the current application state.
func (p *Presenter) syncInitialState() {
	state := p.playbackService.GetState()
	showMeters := p.preferenceService.ShowMeters()
	active := p.visualizerService.State() == domain.StateActive

	p.dispatch(func() {
		if state.CurrentTrack != nil {
			p.view.SetTrackInfo(state.CurrentTrack.Title, state.CurrentTrack.Artist)
		} else {
			p.view.ClearTrackInfo()
		}
		p.view.SetPlayState(state.Status == domain.StatusPlaying)
		p.view.SetMetersVisible(showMeters)
		p.view.SetVisualizerActive(active)
	})
}

// Event handlers

func (p *Presenter) onTrackLoaded(event domain.Event) {
	e, ok := event.(domain.TrackLoadedEvent)
	if !ok {
		return
	}

	p.mu.Lock()
	p.currentTrack = &e.Track
	p.isPlaying = false
	p.mu.Unlock()

	p.dispatch(func() {
		p.view.SetTrackInfo(e.Track.Title, e.Track.Artist)
		p.view.SetPlayState(false)
	})
}

func (p *Presenter) onTrackStarted(domain.Event) {
	p.mu.Lock()
	p.isPlaying = true
	p.mu.Unlock()

	p.dispatch(func() { p.view.SetPlayState(true) })
}

func (p *Presenter) onPlaybackHalted(domain.Event) {
	p.mu.Lock()
	p.isPlaying = false
	p.mu.Unlock()

	p.dispatch(func() { p.view.SetPlayState(false) })
}

// onTrackStopped clears the title; a stopped track is unloaded.
func (p *Presenter) onTrackStopped(domain.Event) {
	p.mu.Lock()
	p.currentTrack = nil
	p.isPlaying = false
	p.mu.Unlock()

	p.dispatch(func() {
		p.view.SetPlayState(false)
		p.view.ClearTrackInfo()
	})
}

func (p *Presenter) onTrackError(event domain.Event) {
	e, ok := event.(domain.TrackErrorEvent)
	if !ok {
		return
	}

	name := e.Track.DisplayName()
	if name == "" {
		name = e.Track.FilePath
	}
	p.notify("Playback Error", fmt.Sprintf("%s: %v", name, e.Error))
}

func (p *Presenter) onVisualizerStateChanged(event domain.Event) {
	e, ok := event.(domain.VisualizerStateChangedEvent)
	if !ok {
		return
	}

	active := e.To == domain.StateActive
	p.dispatch(func() { p.view.SetVisualizerActive(active) })
}

func (p *Presenter) startMeterUpdates() {
	p.meterTicker = time.NewTicker(p.meterInterval)

	p.meterWg.Add(1)
	go func() {
		defer p.meterWg.Done()
		for {
			select {
			case <-p.meterTicker.C:
				p.updateMeters()
			case <-p.stopMeters:
				return
			}
		}
	}()
}

func (p *Presenter) updateMeters() {
	if !p.preferenceService.ShowMeters() {
		return
	}

	bands := p.visualizerService.GetBandState()
	p.dispatch(func() { p.view.SetMeters(bands) })
}

func (p *Presenter) notify(title, message string) {
	p.dispatch(func() { p.view.ShowNotification(title, message) })
}

// IsPlaying reports the last play state shown to the user.
func (p *Presenter) IsPlaying() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isPlaying
}

// CurrentTrack returns the loaded track, if any.
func (p *Presenter) CurrentTrack() *domain.MusicTrack {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.currentTrack
}

// UI Command handlers (called by UI)

// OnFileOpened loads the file and starts playing it.
func (p *Presenter) OnFileOpened(filePath string) error {
	if _, err := p.playbackService.OpenFile(filePath); err != nil {
		p.logger.Error("open failed", slog.String("path", filePath), slog.Any("error", err))
		return err
	}
	return p.playbackService.Play()
}

// OnPlayClicked handles the play button click.
func (p *Presenter) OnPlayClicked() {
	err := p.playbackService.TogglePlayback()
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNoTrackLoaded):
		p.notify("Nothing to play", "Open an audio file first")
	default:
		// engine failures already reached the user as a track error
		p.logger.Error("play/pause failed", slog.Any("error", err))
	}
}

// OnStopClicked handles the stop button click.
func (p *Presenter) OnStopClicked() {
	if err := p.playbackService.Stop(); err != nil {
		p.logger.Error("stop failed", slog.Any("error", err))
		p.notify("Playback Error", fmt.Sprintf("Failed to stop playback: %v", err))
	}
}

// OnRingColorChosen saves a ring color and applies it to the point field.
func (p *Presenter) OnRingColorChosen(band domain.Band, c color.Color) {
	palette, err := p.preferenceService.SetRingColor(band, color.RGBAModel.Convert(c).(color.RGBA))
	if err != nil {
		p.logger.Warn("ring color rejected", slog.String("band", band.String()), slog.Any("error", err))
		p.notify("Preferences", fmt.Sprintf("Could not use that color: %v", err))
		return
	}
	p.applyPalette(palette)
}

// OnBackgroundChosen saves the background color and applies it.
func (p *Presenter) OnBackgroundChosen(c color.Color) {
	palette, err := p.preferenceService.SetBackground(color.RGBAModel.Convert(c).(color.RGBA))
	if err != nil {
		p.logger.Warn("background rejected", slog.Any("error", err))
		return
	}
	p.applyPalette(palette)
}

func (p *Presenter) applyPalette(palette pointfield.Palette) {
	if err := p.visualizerService.SetPalette(palette); err != nil {
		p.logger.Error("palette not applied", slog.Any("error", err))
	}
}

// Palette returns the saved colors.
func (p *Presenter) Palette() pointfield.Palette {
	return p.preferenceService.Palette()
}

// IdleHold reports whether the peak is held on frames without a spectrum.
func (p *Presenter) IdleHold() bool {
	return p.preferenceService.IdlePolicy() == domain.IdleHold
}

// OnIdleHoldToggled switches between holding and decaying the idle peak.
func (p *Presenter) OnIdleHoldToggled(hold bool) {
	policy := domain.IdleDecay
	if hold {
		policy = domain.IdleHold
	}
	if err := p.preferenceService.SetIdlePolicy(policy); err != nil {
		p.logger.Warn("idle policy not saved", slog.Any("error", err))
	}
	p.visualizerService.SetIdlePolicy(policy)
}

// ShowMeters reports whether the level meters are visible.
func (p *Presenter) ShowMeters() bool {
	return p.preferenceService.ShowMeters()
}

// OnMetersToggled shows or hides the level meters.
func (p *Presenter) OnMetersToggled(show bool) {
	if err := p.preferenceService.SetShowMeters(show); err != nil {
		p.logger.Warn("meter visibility not saved", slog.Any("error", err))
	}
	p.dispatch(func() { p.view.SetMetersVisible(show) })
}

// OnResetPreferences restores the default colors and settings.
func (p *Presenter) OnResetPreferences() {
	if err := p.preferenceService.ResetToDefaults(); err != nil {
		p.logger.Error("reset failed", slog.Any("error", err))
		p.notify("Preferences", fmt.Sprintf("Failed to reset: %v", err))
		return
	}

	p.applyPalette(p.preferenceService.Palette())
	p.visualizerService.SetIdlePolicy(p.preferenceService.IdlePolicy())
	show := p.preferenceService.ShowMeters()
	p.dispatch(func() { p.view.SetMetersVisible(show) })
}

// Shutdown cleans up resources.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		for _, id := range p.subscriptions {
			p.eventBus.Unsubscribe(id)
		}

		// Stop the ticker first to prevent new iterations
		if p.meterTicker != nil {
			p.meterTicker.Stop()
		}

		// Close channel to signal goroutine to exit
		close(p.stopMeters)
		p.meterWg.Wait()
	})
}
