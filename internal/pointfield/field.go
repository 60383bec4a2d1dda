package pointfield

import (
	"fmt"
	"image/color"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
	"github.com/tejashwikalptaru/gopulse/internal/ports"
)

// Palette holds the ring colors and the background.
type Palette struct {
	Background color.RGBA
	Rings      [domain.BandCount]color.RGBA
}

// DefaultPalette returns the muted green-blue rings on white.
func DefaultPalette() Palette {
	return Palette{
		Background: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Rings: [domain.BandCount]color.RGBA{
			domain.BandLows:  {R: 0x3e, G: 0x68, B: 0x53, A: 0xff},
			domain.BandMids:  {R: 0x3e, G: 0x68, B: 0x68, A: 0xff},
			domain.BandHighs: {R: 0x3e, G: 0x53, B: 0x68, A: 0xff},
		},
	}
}

// Validate rejects palettes with a fully transparent ring.
func (p Palette) Validate() error {
	for _, b := range domain.Bands {
		if p.Rings[b].A == 0 {
			return domain.NewValidationError("palette."+b.String(), p.Rings[b], "ring color is fully transparent")
		}
	}
	return nil
}

// Field is the set of three rings around the surface center.
//
// Geometry is replaced wholesale by Rebuild; Update only writes displacement.
// A Field is owned by the frame loop and is not safe for concurrent use.
type Field struct {
	palette Palette
	rings   [domain.BandCount]Ring

	width, height int
	cx, cy        float64
	built         bool
}

// NewField creates an empty field. Call Rebuild before Update or Draw.
func NewField(palette Palette) (*Field, error) {
	if err := palette.Validate(); err != nil {
		return nil, fmt.Errorf("new point field: %w", err)
	}
	return &Field{palette: palette}, nil
}

// Rebuild discards all points and lays out the rings for a width x height
// surface: center (w/2, h/2), lows radius w/4, mids 1.25x, highs 1.5x, and
// floor(radius) points per ring.
func (f *Field) Rebuild(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("rebuild %dx%d: %w", width, height, domain.ErrInvalidSurfaceSize)
	}

	f.width, f.height = width, height
	f.cx, f.cy = float64(width)/2, float64(height)/2
	base := float64(width) / 4
	for _, b := range domain.Bands {
		f.rings[b] = newRing(b, f.cx, f.cy, base)
	}
	f.built = true
	return nil
}

// Built reports whether Rebuild has succeeded at least once.
func (f *Field) Built() bool {
	return f.built
}

// Size returns the surface size of the last successful Rebuild.
func (f *Field) Size() (width, height int) {
	return f.width, f.height
}

// Center returns the ring center.
func (f *Field) Center() (x, y float64) {
	return f.cx, f.cy
}

// Ring returns the ring driven by band b. Callers must not modify its points.
func (f *Field) Ring(b domain.Band) Ring {
	return f.rings[b]
}

// PointCount returns the number of points across all rings.
func (f *Field) PointCount() int {
	n := 0
	for _, r := range f.rings {
		n += len(r.Points)
	}
	return n
}

// Palette returns the colors used by Draw.
func (f *Field) Palette() Palette {
	return f.palette
}

// SetPalette replaces the colors used by Draw.
func (f *Field) SetPalette(p Palette) error {
	if err := p.Validate(); err != nil {
		return err
	}
	f.palette = p
	return nil
}

// Update recomputes every point's displacement from the band values.
// The result depends only on the state and the geometry.
func (f *Field) Update(state domain.BandState) {
	for _, b := range domain.Bands {
		f.rings[b].update(state.Value(b))
	}
}

// Draw renders every point as a filled circle in its ring color,
// lows first and highs last.
func (f *Field) Draw(s ports.Surface) {
	for _, b := range domain.Bands {
		c := f.palette.Rings[b]
		for _, p := range f.rings[b].Points {
			x, y := p.Position()
			s.FillCircle(x, y, PointRadius, c)
		}
	}
}

// Render clears the surface to the background, draws the field and presents it.
func (f *Field) Render(s ports.Surface) {
	s.Clear(f.palette.Background)
	f.Draw(s)
	s.Present()
}
