// Package analysis reduces a frequency snapshot to the three band intensities
// and the leaky high-frequency peak that drive the point field.
package analysis

import (
	"sort"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
)

// PeakDecay is the factor the peak is multiplied by on every analysed frame.
const PeakDecay = 0.95

// Window is a half-open frequency range [Lo, Hi) in Hz.
type Window struct {
	Lo float64
	Hi float64
}

// Frequency windows. Mids overlaps the upper half of lows.
var (
	LowsWindow  = Window{Lo: 0, Hi: 1000}
	MidsWindow  = Window{Lo: 500, Hi: 1500}
	HighsWindow = Window{Lo: 1500, Hi: 2000}
	PeakWindow  = Window{Lo: 2000, Hi: 20000}
)

var bandWindows = [domain.BandCount]Window{
	domain.BandLows:  LowsWindow,
	domain.BandMids:  MidsWindow,
	domain.BandHighs: HighsWindow,
}

// BandWindow returns the window analysed for band b.
// It panics for bands outside domain.Bands.
func BandWindow(b domain.Band) Window {
	return bandWindows[b]
}

// BinRange returns the half-open index range [start, end) of the bins whose
// lower edge i*binWidth lies in the window, for a snapshot of n bins.
// The range is empty when no bin qualifies.
func (w Window) BinRange(binWidth float64, n int) (start, end int) {
	if !(binWidth > 0) || n <= 0 {
		return 0, 0
	}
	start = sort.Search(n, func(i int) bool { return float64(i)*binWidth >= w.Lo })
	end = sort.Search(n, func(i int) bool { return float64(i)*binWidth >= w.Hi })
	if end < start {
		end = start
	}
	return start, end
}
