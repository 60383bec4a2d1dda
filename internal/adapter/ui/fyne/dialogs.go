package fyne

import (
	"image/color"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"github.com/tejashwikalptaru/gopulse/internal/adapter/audio/live"
)

// FileDialog is a helper for creating audio file open dialogs.
type FileDialog struct {
	window   fyne.Window
	callback func(string)
	logger   *slog.Logger
}

// NewFileDialog creates a new file dialog.
func NewFileDialog(window fyne.Window, callback func(string), logger *slog.Logger) *FileDialog {
	return &FileDialog{
		window:   window,
		callback: callback,
		logger:   logger,
	}
}

// Show displays the file dialog, listing only decodable formats.
func (d *FileDialog) Show() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			d.logger.Error("file dialog error", slog.Any("error", err))
			return
		}
		if reader == nil {
			return // User cancelled
		}
		defer reader.Close()

		filePath := reader.URI().Path()
		if d.callback != nil {
			d.callback(filePath)
		}
	}, d.window)
	fd.SetFilter(storage.NewExtensionFileFilter(live.SupportedExtensions))
	fd.Show()
}

// ColorDialog asks for a color with the advanced picker.
type ColorDialog struct {
	window   fyne.Window
	title    string
	initial  color.Color
	callback func(color.Color)
}

// NewColorDialog creates a color dialog preselecting initial.
func NewColorDialog(window fyne.Window, title string, initial color.Color, callback func(color.Color)) *ColorDialog {
	return &ColorDialog{
		window:   window,
		title:    title,
		initial:  initial,
		callback: callback,
	}
}

// Show displays the color picker.
func (d *ColorDialog) Show() {
	picker := dialog.NewColorPicker(d.title, "", func(c color.Color) {
		if d.callback != nil {
			d.callback(c)
		}
	}, d.window)
	picker.Advanced = true
	if d.initial != nil {
		picker.SetColor(d.initial)
	}
	picker.Show()
}
