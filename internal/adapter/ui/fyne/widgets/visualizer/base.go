// Package visualizer provides the drawing widgets for the GoPulse window.
package visualizer

import (
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/gopulse/internal/ports"
)

// PointField is the widget showing the point field.
type PointField struct {
	widget.BaseWidget

	Raster  *canvas.Raster
	surface *RasterSurface
}

// NewPointField creates an empty field filled with background.
func NewPointField(background color.Color) *PointField {
	v := &PointField{surface: &RasterSurface{background: background}}
	v.Raster = canvas.NewRaster(v.surface.generate)
	v.surface.refresh = v.Raster.Refresh
	v.ExtendBaseWidget(v)
	return v
}

// Surface returns the drawing target behind the raster.
func (v *PointField) Surface() *RasterSurface {
	return v.surface
}

// CreateRenderer implements fyne.Widget.
func (v *PointField) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.Raster)
}

// MinSize returns the minimum size of the visualizer.
func (v *PointField) MinSize() fyne.Size {
	return fyne.NewSize(120, 120)
}

// RasterSurface is a double-buffered ports.Surface.
//
// Frames are drawn into a back buffer and shown by Present, which swaps it
// with the buffer the raster displays. The pixel size is learned from the
// raster generator; every change is reported through the resize callback.
type RasterSurface struct {
	Mu sync.Mutex

	back, front   *image.RGBA
	width, height int
	background    color.Color
	presented     uint64

	draw     DrawingUtils
	onResize func(width, height int)
	refresh  func()
}

// SetOnResize registers the callback that receives pixel size changes.
func (s *RasterSurface) SetOnResize(fn func(width, height int)) {
	s.Mu.Lock()
	s.onResize = fn
	s.Mu.Unlock()
}

// generate hands the front buffer to the raster. A size change reallocates
// both buffers and is reported after the lock is released.
func (s *RasterSurface) generate(w, h int) image.Image {
	s.Mu.Lock()
	changed := s.resizeLocked(w, h)
	img := s.front
	fn := s.onResize
	s.Mu.Unlock()

	if changed && fn != nil {
		fn(w, h)
	}
	return img
}

// SetPixelSize sets the surface size directly, as the raster would.
func (s *RasterSurface) SetPixelSize(w, h int) {
	s.generate(w, h)
}

func (s *RasterSurface) resizeLocked(w, h int) bool {
	w, h = max(w, 0), max(h, 0)
	if w == s.width && h == s.height && s.front != nil {
		return false
	}

	s.width, s.height = w, h
	s.back = image.NewRGBA(image.Rect(0, 0, w, h))
	s.front = image.NewRGBA(image.Rect(0, 0, w, h))
	if s.background != nil {
		s.draw.FillBackground(s.front, s.background)
	}
	return true
}

// Size returns the drawable size in pixels.
func (s *RasterSurface) Size() (width, height int) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.width, s.height
}

// Clear fills the back buffer with c.
func (s *RasterSurface) Clear(c color.Color) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	s.background = c
	if s.back != nil {
		s.draw.FillBackground(s.back, c)
	}
}

// FillCircle draws a filled circle into the back buffer.
func (s *RasterSurface) FillCircle(cx, cy, radius float64, c color.Color) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if s.back != nil {
		s.draw.DrawFilledCircle(s.back, cx, cy, radius, c)
	}
}

// Present swaps the buffers and repaints the raster.
func (s *RasterSurface) Present() {
	s.Mu.Lock()
	if s.back == nil {
		s.Mu.Unlock()
		return
	}
	s.back, s.front = s.front, s.back
	s.presented++
	refresh := s.refresh
	s.Mu.Unlock()

	if refresh != nil {
		refresh()
	}
}

// Presented returns how many frames have been shown.
func (s *RasterSurface) Presented() uint64 {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.presented
}

// Snapshot returns a copy of the image currently on screen.
func (s *RasterSurface) Snapshot() *image.RGBA {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if s.front == nil {
		return nil
	}
	img := image.NewRGBA(s.front.Bounds())
	copy(img.Pix, s.front.Pix)
	return img
}

var _ ports.Surface = (*RasterSurface)(nil)
