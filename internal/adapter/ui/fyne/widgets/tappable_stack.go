// Package widgets provides custom Fyne widgets for the GoPulse window.
package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// TappableStack wraps content and opens a context menu on secondary taps.
// A primary tap runs onTap.
type TappableStack struct {
	widget.BaseWidget

	content fyne.CanvasObject
	onTap   func()
	menu    func() *fyne.Menu
}

// NewTappableStack creates a new tappable stack. menu is called on every
// secondary tap so the items can reflect the current settings.
func NewTappableStack(content fyne.CanvasObject, onTap func(), menu func() *fyne.Menu) *TappableStack {
	t := &TappableStack{
		content: content,
		onTap:   onTap,
		menu:    menu,
	}
	t.ExtendBaseWidget(t)
	return t
}

// CreateRenderer implements fyne.Widget.
func (t *TappableStack) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.content)
}

// Tapped implements fyne.Tappable.
func (t *TappableStack) Tapped(*fyne.PointEvent) {
	if t.onTap != nil {
		t.onTap()
	}
}

// TappedSecondary implements fyne.SecondaryTappable (right-click).
func (t *TappableStack) TappedSecondary(pe *fyne.PointEvent) {
	if t.menu == nil {
		return
	}
	menu := t.menu()
	if menu == nil || len(menu.Items) == 0 {
		return
	}
	c := fyne.CurrentApp().Driver().CanvasForObject(t)
	if c == nil {
		return
	}
	widget.ShowPopUpMenuAtPosition(menu, c, pe.AbsolutePosition)
}

// MouseIn implements desktop.Hoverable.
func (t *TappableStack) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (t *TappableStack) MouseMoved(*desktop.MouseEvent) {}

// MouseOut implements desktop.Hoverable.
func (t *TappableStack) MouseOut() {}

var _ fyne.Tappable = (*TappableStack)(nil)
var _ fyne.SecondaryTappable = (*TappableStack)(nil)
var _ desktop.Hoverable = (*TappableStack)(nil)
