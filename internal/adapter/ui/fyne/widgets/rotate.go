package widgets

import "strings"

// Rotator scrolls text that does not fit in maxLength runes.
type Rotator struct {
	runes []rune
	len   int
}

// NewRotator creates a rotator for text. Short text is returned unchanged.
func NewRotator(text string, maxLength int) *Rotator {
	return &Rotator{runes: []rune(strings.Repeat(" ", 4) + text), len: maxLength}
}

// Rotate moves the first rune to the end and returns the visible window.
func (r *Rotator) Rotate() string {
	if len(r.runes) <= r.len {
		// do not rotate
		return strings.TrimLeft(string(r.runes), " ")
	}
	r.runes = append(r.runes[1:], r.runes[0])
	return string(r.runes[:r.len])
}
