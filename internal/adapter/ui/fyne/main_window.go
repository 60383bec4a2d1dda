package fyne

import (
	"fmt"
	"image/color"
	"log/slog"
	"sync"
	"time"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/gopulse/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/gopulse/internal/adapter/ui/fyne/widgets/visualizer"
	"github.com/tejashwikalptaru/gopulse/internal/domain"
	"github.com/tejashwikalptaru/gopulse/res"
)

const (
	APPNAME string  = "GoPulse"
	WIDTH   float32 = 640
	HEIGHT  float32 = 520

	titleWidth    = 48
	titleInterval = 300 * time.Millisecond
)

// MainWindow is the main UI window implementing the UIView interface.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All business logic is in the Presenter
// - User interactions are forwarded to the Presenter
//
// UIView methods must be called on the UI thread.
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window
	logger *slog.Logger

	// UI components
	openButton *widget.Button
	playButton *widget.Button
	stopButton *widget.Button
	songInfo   *widget.Label
	status     *widget.Label
	field      *visualizer.PointField
	meter      *visualizer.LevelMeter
	stage      *widgets.TappableStack

	// State
	rotatorMu  sync.Mutex
	rotator    *widgets.Rotator
	stopScroll chan struct{}
	scrollWg   sync.WaitGroup

	// Lifecycle management
	closeOnce sync.Once

	// Presenter (set after construction)
	presenter *Presenter

	version string
}

// NewMainWindow creates a new main window. background is the color the
// point field shows before the first frame.
func NewMainWindow(app fyneapp.App, logger *slog.Logger, background color.Color, meterFPS int) *MainWindow {
	w := &MainWindow{
		app:        app,
		logger:     logger.With(slog.String("adapter", "window")),
		rotator:    widgets.NewRotator(APPNAME, titleWidth),
		stopScroll: make(chan struct{}),
	}

	w.window = app.NewWindow(APPNAME)
	w.buildUI(background, meterFPS)

	w.window.Resize(fyneapp.Size{
		Width:  WIDTH,
		Height: HEIGHT,
	})

	return w
}

// Surface returns the surface the visualizer draws into.
func (w *MainWindow) Surface() *visualizer.RasterSurface {
	return w.field.Surface()
}

// SetVersion sets the version line shown in the About dialog.
func (w *MainWindow) SetVersion(version string) {
	w.version = version
}

// AboutText returns the Markdown shown in the About dialog.
func (w *MainWindow) AboutText() string {
	return res.About(w.version)
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.wirePresenterHandlers()
	w.addShortcuts()
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI(background color.Color, meterFPS int) {
	w.field = visualizer.NewPointField(background)
	w.meter = visualizer.NewLevelMeter(meterFPS)
	w.stage = widgets.NewTappableStack(w.field, w.onStageTapped, w.contextMenu)

	w.openButton = widget.NewButtonWithIcon("", theme.FolderOpenIcon(), nil)
	w.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil)
	w.stopButton = widget.NewButtonWithIcon("", theme.MediaStopIcon(), nil)

	w.songInfo = widget.NewLabel(APPNAME)
	w.songInfo.Truncation = fyneapp.TextTruncateClip
	w.songInfo.TextStyle = fyneapp.TextStyle{
		Bold:   true,
		Italic: true,
	}
	w.status = widget.NewLabel("")

	buttons := container.NewHBox(w.openButton, w.playButton, w.stopButton)
	controls := container.NewBorder(nil, nil, buttons, w.status, w.songInfo)

	body := container.NewBorder(nil, nil, nil, w.meter, w.stage)
	w.window.SetContent(container.NewPadded(container.NewBorder(nil, controls, nil, nil, body)))

	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

// wirePresenterHandlers connects UI events to presenter handlers.
func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}

	w.openButton.OnTapped = w.handleOpenFile
	w.playButton.OnTapped = func() {
		w.presenter.OnPlayClicked()
	}
	w.stopButton.OnTapped = func() {
		w.presenter.OnStopClicked()
	}
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	separator := fyneapp.NewMenuItemSeparator()

	openFile := fyneapp.NewMenuItem("Open", w.handleOpenFile)
	exitMenu := fyneapp.NewMenuItem("Exit", func() {
		w.window.Close()
	})
	about := fyneapp.NewMenuItem("About", w.showAbout)

	return []*fyneapp.Menu{
		fyneapp.NewMenu("File", openFile, separator, exitMenu),
		fyneapp.NewMenu("Help", about),
	}
}

// contextMenu builds the visualizer's right-click menu from the current
// preferences.
func (w *MainWindow) contextMenu() *fyneapp.Menu {
	if w.presenter == nil {
		return nil
	}

	items := make([]*fyneapp.MenuItem, 0, domain.BandCount+6)
	palette := w.presenter.Palette()
	for _, band := range domain.Bands {
		items = append(items, fyneapp.NewMenuItem(fmt.Sprintf("%s ring color...", bandTitle(band)), func() {
			NewColorDialog(w.window, bandTitle(band)+" ring", palette.Rings[band], func(c color.Color) {
				w.presenter.OnRingColorChosen(band, c)
			}).Show()
		}))
	}
	items = append(items, fyneapp.NewMenuItem("Background color...", func() {
		NewColorDialog(w.window, "Background", palette.Background, w.presenter.OnBackgroundChosen).Show()
	}))
	items = append(items, fyneapp.NewMenuItemSeparator())

	hold := fyneapp.NewMenuItem("Hold peak when idle", func() {
		w.presenter.OnIdleHoldToggled(!w.presenter.IdleHold())
	})
	hold.Checked = w.presenter.IdleHold()

	meters := fyneapp.NewMenuItem("Show level meters", func() {
		w.presenter.OnMetersToggled(!w.presenter.ShowMeters())
	})
	meters.Checked = w.presenter.ShowMeters()

	reset := fyneapp.NewMenuItem("Reset to defaults", w.presenter.OnResetPreferences)

	items = append(items, hold, meters, fyneapp.NewMenuItemSeparator(), reset)
	return fyneapp.NewMenu("", items...)
}

func (w *MainWindow) onStageTapped() {
	if w.presenter != nil {
		w.presenter.OnPlayClicked()
	}
}

// handleOpenFile handles the "Open" menu action.
func (w *MainWindow) handleOpenFile() {
	if w.presenter == nil {
		return
	}

	NewFileDialog(w.window, func(filePath string) {
		if err := w.presenter.OnFileOpened(filePath); err != nil {
			w.ShowNotification("Error", fmt.Sprintf("Failed to open file: %v", err))
		}
	}, w.logger).Show()
}

func (w *MainWindow) showAbout() {
	content := widget.NewRichTextFromMarkdown(w.AboutText())
	content.Wrapping = fyneapp.TextWrapWord
	d := dialog.NewCustom(fmt.Sprintf("About %s", APPNAME), "Close", content, w.window)
	d.Resize(fyneapp.NewSize(WIDTH*0.7, HEIGHT*0.6))
	d.Show()
}

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyO,
		Modifier: fyneapp.KeyModifierShortcutDefault,
	}, func(fyneapp.Shortcut) {
		w.handleOpenFile()
	})

	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeySpace,
		Modifier: desktop.AltModifier,
	}, func(fyneapp.Shortcut) {
		w.presenter.OnPlayClicked()
	})
}

// startScrollInfoRoutine scrolls long titles in the song info label.
func (w *MainWindow) startScrollInfoRoutine() {
	w.scrollWg.Add(1)
	go func() {
		defer w.scrollWg.Done()
		ticker := time.NewTicker(titleInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				w.rotatorMu.Lock()
				text := w.rotator.Rotate()
				w.rotatorMu.Unlock()
				fyneapp.Do(func() { w.songInfo.SetText(text) })
			case <-w.stopScroll:
				return
			}
		}
	}()
}

// ShowAndRun shows the window and runs the application.
func (w *MainWindow) ShowAndRun() {
	w.startScrollInfoRoutine()
	w.window.ShowAndRun()
}

// SetOnClosed registers a callback run when the window is closed.
func (w *MainWindow) SetOnClosed(fn func()) {
	w.window.SetOnClosed(fn)
}

// Close closes the window and stops the scrolling animation.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		close(w.stopScroll)
		w.scrollWg.Wait()
		w.window.Close()
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// UIView interface implementation

// SetPlayState updates the play/pause button state.
func (w *MainWindow) SetPlayState(playing bool) {
	if playing {
		w.playButton.SetIcon(theme.MediaPauseIcon())
	} else {
		w.playButton.SetIcon(theme.MediaPlayIcon())
	}
}

// SetTrackInfo updates the displayed track information.
func (w *MainWindow) SetTrackInfo(title, artist string) {
	// Format: "Artist - Title"
	text := domain.MusicTrack{Title: title, Artist: artist}.DisplayName()
	if text == "" {
		text = "Unknown track"
	}
	w.setTitle(text)
}

// ClearTrackInfo shows the application name instead of a track.
func (w *MainWindow) ClearTrackInfo() {
	w.setTitle(APPNAME)
}

func (w *MainWindow) setTitle(text string) {
	w.rotatorMu.Lock()
	w.rotator = widgets.NewRotator(text, titleWidth)
	w.rotatorMu.Unlock()
	w.songInfo.SetText(text)
}

// SetMeters moves the level meters toward the band values.
func (w *MainWindow) SetMeters(state domain.BandState) {
	w.meter.SetLevels(state)
}

// SetMetersVisible shows or hides the level meters.
func (w *MainWindow) SetMetersVisible(visible bool) {
	if visible {
		w.meter.Show()
	} else {
		w.meter.Hide()
	}
}

// SetVisualizerActive shows whether the point field is animating.
func (w *MainWindow) SetVisualizerActive(active bool) {
	if active {
		w.status.SetText("")
	} else {
		w.status.SetText("idle")
	}
}

// ShowNotification displays a system notification.
func (w *MainWindow) ShowNotification(title, message string) {
	w.app.SendNotification(fyneapp.NewNotification(title, message))
}

func bandTitle(b domain.Band) string {
	switch b {
	case domain.BandLows:
		return "Lows"
	case domain.BandMids:
		return "Mids"
	case domain.BandHighs:
		return "Highs"
	default:
		return b.String()
	}
}

// Verify UIView implementation
var _ UIView = (*MainWindow)(nil)
