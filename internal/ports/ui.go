// Package ports define the rendering and scheduling abstractions used by the frame loop.
package ports

import (
	"image/color"
)

// Surface is a drawing target for the point field.
// Implementations only need to support the primitives the visualizer uses.
//
// Thread-safety: A Surface is only touched from the frame-loop context.
type Surface interface {
	// Size returns the drawable size in pixels.
	Size() (width, height int)

	// Clear fills the whole surface with a solid color.
	Clear(c color.Color)

	// FillCircle draws a filled circle centered at (cx, cy).
	FillCircle(cx, cy, radius float64, c color.Color)

	// Present makes the frame drawn since the last Clear visible.
	Present()
}

// FrameScheduler runs a callback before the next repaint.
//
// RequestFrame keeps at most one pending callback; a second request before
// the first has run replaces it. Callbacks run one at a time.
type FrameScheduler interface {
	// RequestFrame schedules fn for the next frame.
	RequestFrame(fn func())

	// CancelFrame drops the pending callback, if any.
	CancelFrame()
}
