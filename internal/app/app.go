// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/tejashwikalptaru/gopulse/internal/adapter/audio/live"
	"github.com/tejashwikalptaru/gopulse/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/gopulse/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/gopulse/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/gopulse/internal/adapter/scheduler"
	fyneui "github.com/tejashwikalptaru/gopulse/internal/adapter/ui/fyne"
	"github.com/tejashwikalptaru/gopulse/internal/logger"
	"github.com/tejashwikalptaru/gopulse/internal/ports"
	"github.com/tejashwikalptaru/gopulse/internal/service"
)

// EnvMockAudio selects the simulated audio engine when set to "1".
const EnvMockAudio = "GOPULSE_MOCK_AUDIO"

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	// Core dependencies
	logger  *slog.Logger
	fyneApp fyne.App

	// Infrastructure
	eventBus    ports.EventBus
	audioEngine ports.AudioEngine
	frames      *scheduler.Ticker

	// Repositories
	preferencesRepo ports.PreferencesRepository

	// Services
	playbackService   *service.PlaybackService
	preferenceService *service.PreferenceService
	visualizerService *service.VisualizerService

	// UI
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow

	shutdownOnce sync.Once
	shutdownErr  error
}

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier
	AppID string

	// AppName is the display name
	AppName string

	// SampleRate is the audio output sample rate
	SampleRate int

	// BinCount is the number of frequency bins per snapshot
	BinCount int

	// FrameRate is the visualizer frame rate
	FrameRate int

	// MeterRate is how many times per second the level meters move
	MeterRate int

	// UseMockAudio selects the simulated engine instead of the speaker
	UseMockAudio bool

	// LogLevel controls logging verbosity
	LogLevel slog.Level

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	return Config{
		AppID:        "com.gopulse.app",
		AppName:      "GoPulse",
		SampleRate:   44100,
		BinCount:     service.DefaultBinCount,
		FrameRate:    60,
		MeterRate:    30,
		UseMockAudio: os.Getenv(EnvMockAudio) == "1",
		LogLevel:     loggerCfg.Level,
	}
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(config Config) (*Application, error) {
	app := &Application{}

	// Step 1: Create Fyne application
	if config.TestFyneApp != nil {
		app.fyneApp = config.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(config.AppID)
	}

	// Step 1.5: Create logger
	loggerCfg := logger.DefaultConfig()
	loggerCfg.Level = config.LogLevel
	app.logger = logger.NewLogger(loggerCfg)
	app.logger.Info("initializing application",
		slog.String("app_id", config.AppID),
		slog.String("app_name", config.AppName),
		slog.String("version", GetVersionInfo().FullString()))

	// Step 2: Create an event bus
	syncBus := eventbus.NewSyncEventBus()
	syncBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))
	app.eventBus = syncBus

	// Step 3: Create an audio engine
	engine, err := newAudioEngine(app.logger, config)
	if err != nil {
		return nil, err
	}
	app.audioEngine = engine

	// Step 4: Create repositories
	app.preferencesRepo = memory.NewPreferencesRepository(app.fyneApp.Preferences())

	// Step 5: Create services (with dependency injection)
	app.playbackService = service.NewPlaybackService(app.logger, app.audioEngine, app.eventBus)
	app.preferenceService = service.NewPreferenceService(app.logger, app.preferencesRepo)

	app.frames = scheduler.NewTicker(app.logger, config.FrameRate, fyne.Do)

	visCfg := service.DefaultVisualizerConfig()
	visCfg.BinCount = config.BinCount
	visCfg.Palette = app.preferenceService.Palette()
	visCfg.IdlePolicy = app.preferenceService.IdlePolicy()
	app.visualizerService, err = service.NewVisualizerService(
		app.logger,
		app.playbackService,
		app.playbackService,
		app.frames,
		app.eventBus,
		visCfg,
	)
	if err != nil {
		_ = app.playbackService.Shutdown()
		_ = app.releaseAudio()
		return nil, fmt.Errorf("failed to create visualizer: %w", err)
	}

	// Step 6: Create UI and attach the surface
	app.mainWindow = fyneui.NewMainWindow(app.fyneApp, app.logger, visCfg.Palette.Background, config.MeterRate)
	app.mainWindow.SetVersion(GetVersionInfo().String())
	surface := app.mainWindow.Surface()
	surface.SetOnResize(app.visualizerService.OnSurfaceResize)
	app.visualizerService.AttachSurface(surface)

	// Step 7: Create Presenter and wire with UI
	app.presenter = fyneui.NewPresenter(
		app.logger,
		app.playbackService,
		app.preferenceService,
		app.visualizerService,
		app.eventBus,
		app.mainWindow,
		fyne.Do,
		0,
	)
	app.mainWindow.SetPresenter(app.presenter)

	app.frames.Start()
	return app, nil
}

// newAudioEngine creates and initializes the configured engine.
func newAudioEngine(log *slog.Logger, config Config) (ports.AudioEngine, error) {
	if config.UseMockAudio {
		engine := mock.NewEngine()
		engine.SetLogger(log)
		if err := engine.Initialize(config.SampleRate); err != nil {
			return nil, fmt.Errorf("failed to initialize audio engine: %w", err)
		}
		return engine, nil
	}

	engine := live.NewEngine()
	engine.SetLogger(log)
	if err := engine.Initialize(config.SampleRate); err != nil {
		return nil, fmt.Errorf("failed to initialize audio engine: %w", err)
	}
	return engine, nil
}

// Run starts the application.
// This is called from main.go after the application is created.
func (a *Application) Run() error {
	a.logger.Info("GoPulse started")

	// Show and run UI (blocks until the window is closed)
	a.mainWindow.ShowAndRun()
	return nil
}

// Shutdown gracefully shuts down the application.
// It's safe to call multiple times; later calls return the first result.
func (a *Application) Shutdown() error {
	a.shutdownOnce.Do(func() {
		a.shutdownErr = a.shutdown()
	})
	return a.shutdownErr
}

func (a *Application) shutdown() error {
	a.logger.Info("shutting down application")

	// Shutdown UI and presenter
	if a.presenter != nil {
		a.presenter.Shutdown()
	}

	// Stop drawing before the audio goes away
	if a.visualizerService != nil {
		if err := a.visualizerService.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown visualizer service", slog.Any("error", err))
		}
	}
	if a.frames != nil {
		a.frames.Stop()
	}

	if a.preferenceService != nil {
		if err := a.preferenceService.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown preference service", slog.Any("error", err))
		}
	}

	if a.playbackService != nil {
		if err := a.playbackService.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown playback service", slog.Any("error", err))
		}
	}

	err := a.releaseAudio()

	if a.eventBus != nil {
		if cerr := a.eventBus.Close(); cerr != nil {
			a.logger.Warn("failed to close event bus", slog.Any("error", cerr))
		}
	}

	a.logger.Info("application shutdown complete")
	return err
}

func (a *Application) releaseAudio() error {
	if a.audioEngine == nil || !a.audioEngine.IsInitialized() {
		return nil
	}
	if err := a.audioEngine.Shutdown(); err != nil {
		a.logger.Warn("failed to shutdown audio engine", slog.Any("error", err))
		return fmt.Errorf("audio engine shutdown: %w", err)
	}
	return nil
}

// GetServices returns the application services.
func (a *Application) GetServices() (*service.PlaybackService, *service.VisualizerService, *service.PreferenceService) {
	return a.playbackService, a.visualizerService, a.preferenceService
}

// GetEventBus returns the event bus.
func (a *Application) GetEventBus() ports.EventBus {
	return a.eventBus
}

// GetFyneApp returns the Fyne application.
func (a *Application) GetFyneApp() fyne.App {
	return a.fyneApp
}

// GetMainWindow returns the main window.
func (a *Application) GetMainWindow() *fyneui.MainWindow {
	return a.mainWindow
}
