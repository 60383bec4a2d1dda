// Package pointfield owns the three rings of points, maps band intensities to
// radial wave displacement and draws the points onto a surface.
package pointfield

import (
	"fmt"
	"math"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
)

// PointRadius is the radius of every drawn point in pixels.
const PointRadius = 4.0

// Beat boost tiers. Thresholds are strict: a value equal to a threshold
// falls in the lower tier.
const (
	StrongBeatThreshold = 0.6
	StrongBeatBoost     = 1.5
	BeatThreshold       = 0.3
	BeatBoost           = 1.2

	// OffsetExponent shapes the band value before it scales the wave
	OffsetExponent = 0.7
)

// RingSpec holds the per-ring motion constants.
type RingSpec struct {
	// WaveFrequency is the number of full oscillations around the ring
	WaveFrequency float64

	// BeatMultiplier is the displacement in pixels at full intensity (before boost)
	BeatMultiplier float64

	// RadiusScale multiplies the lows radius (width/4)
	RadiusScale float64
}

var ringSpecs = [domain.BandCount]RingSpec{
	domain.BandLows:  {WaveFrequency: 2, BeatMultiplier: 120, RadiusScale: 1},
	domain.BandMids:  {WaveFrequency: 6, BeatMultiplier: 100, RadiusScale: 1.25},
	domain.BandHighs: {WaveFrequency: 10, BeatMultiplier: 80, RadiusScale: 1.5},
}

func init() {
	for _, b := range domain.Bands {
		if err := ringSpecs[b].validate(); err != nil {
			panic(fmt.Sprintf("pointfield: ring %s: %v", b, err))
		}
	}
}

func (r RingSpec) validate() error {
	switch {
	case !(r.WaveFrequency > 0):
		return fmt.Errorf("wave frequency %v must be positive", r.WaveFrequency)
	case !(r.BeatMultiplier > 0):
		return fmt.Errorf("beat multiplier %v must be positive", r.BeatMultiplier)
	case !(r.RadiusScale > 0):
		return fmt.Errorf("radius scale %v must be positive", r.RadiusScale)
	}
	return nil
}

// Spec returns the motion constants for band b.
// It panics for bands outside domain.Bands.
func Spec(b domain.Band) RingSpec {
	return ringSpecs[b]
}

// Point is one drawn particle. X and Y are the anchor on the ring and never
// change between rebuilds; Offset, DX and DY are rewritten on every update.
type Point struct {
	X, Y   float64
	Offset float64
	DX, DY float64
}

// Position returns where the point is drawn.
func (p Point) Position() (x, y float64) {
	return p.X + p.DX, p.Y + p.DY
}

// Ring is one circle of evenly spaced points driven by a single band.
type Ring struct {
	Band   domain.Band
	Radius float64
	Spec   RingSpec
	Points []Point
}

func newRing(b domain.Band, cx, cy, baseRadius float64) Ring {
	spec := ringSpecs[b]
	radius := baseRadius * spec.RadiusScale
	count := int(math.Floor(radius))
	if count < 0 {
		count = 0
	}

	points := make([]Point, count)
	for i := range points {
		theta := angle(i, count)
		points[i] = Point{
			X: cx + radius*math.Cos(theta),
			Y: cy + radius*math.Sin(theta),
		}
	}
	return Ring{Band: b, Radius: radius, Spec: spec, Points: points}
}

// update rewrites the displacement of every point for band value v.
func (r *Ring) update(v float64) {
	n := len(r.Points)
	scaled := ScaledOffset(v, r.Spec)
	for i := range r.Points {
		p := &r.Points[i]
		p.Offset, p.DX, p.DY = Displacement(i, n, scaled, r.Spec.WaveFrequency)
	}
}

func angle(i, n int) float64 {
	return 2 * math.Pi * float64(i) / float64(n)
}

// Boost returns the tiered amplification for band value v.
func Boost(v float64) float64 {
	switch {
	case v > StrongBeatThreshold:
		return StrongBeatBoost
	case v > BeatThreshold:
		return BeatBoost
	default:
		return 1
	}
}

// ScaledOffset returns v^0.7 * beatMultiplier * boost.
// v is clamped to [0,1]; NaN counts as 0.
func ScaledOffset(v float64, spec RingSpec) float64 {
	if !(v > 0) {
		return 0
	}
	v = math.Min(v, 1)
	return math.Pow(v, OffsetExponent) * spec.BeatMultiplier * Boost(v)
}

// Displacement returns the radial offset of point i of n and its x/y parts:
// offset = scaled * sin(wave * 2πi/n), dx = offset*cos(2πi/n), dy = offset*sin(2πi/n).
func Displacement(i, n int, scaled, wave float64) (offset, dx, dy float64) {
	if n <= 0 {
		return 0, 0, 0
	}
	theta := angle(i, n)
	offset = scaled * math.Sin(wave*theta)
	return offset, offset * math.Cos(theta), offset * math.Sin(theta)
}
