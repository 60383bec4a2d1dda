package visualizer

import (
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/harmonica"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
)

// MeterCount is the number of bars: the three bands plus the peak.
const MeterCount = domain.BandCount + 1

var meterLabels = [MeterCount]string{"L", "M", "H", "P"}

// springField eases each bar toward its target level.
type springField struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

func newSpringField(fps int, frequency, damping float64, n int) springField {
	return springField{
		spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping),
		pos:    make([]float64, n),
		vel:    make([]float64, n),
	}
}

func (s *springField) step(i int, target float64) float64 {
	p, v := s.spring.Update(s.pos[i], s.vel[i], target)
	s.pos[i] = p
	s.vel[i] = v
	return p
}

// LevelMeter shows the band values as four sprung bars.
type LevelMeter struct {
	widget.BaseWidget

	mu      sync.Mutex
	springs springField
	levels  [MeterCount]float64
}

// NewLevelMeter creates a meter stepped fps times per second.
func NewLevelMeter(fps int) *LevelMeter {
	if fps <= 0 {
		fps = 30
	}
	m := &LevelMeter{springs: newSpringField(fps, 8.0, 0.9, MeterCount)}
	m.ExtendBaseWidget(m)
	return m
}

// SetLevels advances the springs one step toward state and repaints.
func (m *LevelMeter) SetLevels(state domain.BandState) {
	targets := [MeterCount]float64{state.Lows, state.Mids, state.Highs, state.Peak}

	m.mu.Lock()
	for i, t := range targets {
		m.levels[i] = clamp01(m.springs.step(i, clamp01(t)))
	}
	m.mu.Unlock()

	m.Refresh()
}

// Levels returns the displayed bar heights in [0,1].
func (m *LevelMeter) Levels() [MeterCount]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.levels
}

// CreateRenderer implements fyne.Widget.
func (m *LevelMeter) CreateRenderer() fyne.WidgetRenderer {
	r := &meterRenderer{meter: m}
	for i := range r.bars {
		r.bars[i] = canvas.NewRectangle(theme.Color(theme.ColorNamePrimary))
		r.labels[i] = canvas.NewText(meterLabels[i], theme.Color(theme.ColorNameForeground))
		r.labels[i].Alignment = fyne.TextAlignCenter
		r.labels[i].TextSize = theme.CaptionTextSize()
	}
	r.Refresh()
	return r
}

type meterRenderer struct {
	meter  *LevelMeter
	bars   [MeterCount]*canvas.Rectangle
	labels [MeterCount]*canvas.Text
	draw   DrawingUtils
}

func (r *meterRenderer) Layout(size fyne.Size) {
	levels := r.meter.Levels()

	pad := theme.Padding()
	labelH := r.labels[0].MinSize().Height
	slot := size.Width / float32(MeterCount)
	track := size.Height - labelH - pad

	for i := range r.bars {
		x := float32(i) * slot
		h := float32(levels[i]) * track
		r.bars[i].Move(fyne.NewPos(x+pad/2, track-h))
		r.bars[i].Resize(fyne.NewSize(slot-pad, h))

		r.labels[i].Move(fyne.NewPos(x, track+pad))
		r.labels[i].Resize(fyne.NewSize(slot, labelH))
	}
}

func (r *meterRenderer) MinSize() fyne.Size {
	labelH := r.labels[0].MinSize().Height
	return fyne.NewSize(float32(MeterCount)*16, labelH+60)
}

func (r *meterRenderer) Refresh() {
	levels := r.meter.Levels()
	for i, bar := range r.bars {
		bar.FillColor = r.draw.GetGradientColor(levels[i])
		bar.Refresh()
	}
	r.Layout(r.meter.Size())
}

func (r *meterRenderer) Objects() []fyne.CanvasObject {
	objects := make([]fyne.CanvasObject, 0, 2*MeterCount)
	for i := range r.bars {
		objects = append(objects, r.bars[i], r.labels[i])
	}
	return objects
}

func (r *meterRenderer) Destroy() {}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
