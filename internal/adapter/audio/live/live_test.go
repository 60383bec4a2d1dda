package live

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
)

func constStreamer(l, r float64) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{l, r}
		}
		return len(samples), true
	})
}

func countingStreamer() beep.Streamer {
	n := 0.0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{n, n}
			n++
		}
		return len(samples), true
	})
}

// splitTone plays 300 Hz in the first half of every chunk-sized block and
// 5 kHz in the second half.
func splitTone(rate float64, chunk int) beep.Streamer {
	i := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for j := range samples {
			f := 300.0
			if i%chunk >= chunk/2 {
				f = 5000
			}
			v := 0.5 * math.Sin(2*math.Pi*f*float64(i)/rate)
			samples[j] = [2]float64{v, v}
			i++
		}
		return len(samples), true
	})
}

type fakeClock struct{ at time.Time }

func (c *fakeClock) now() time.Time { return c.at }
func (c *fakeClock) advance(d time.Duration) { c.at = c.at.Add(d) }

func peak(bins []float64) float64 {
	p := 0.0
	for _, b := range bins {
		p = math.Max(p, b)
	}
	return p
}

func writeWAV(t *testing.T, rate beep.SampleRate, d float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	i := 0
	tone := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for j := range samples {
			v := 0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(rate))
			samples[j] = [2]float64{v, v}
			i++
		}
		return len(samples), true
	})

	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Take(int(d*float64(rate)), tone), format); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func TestTapMixesToMono(t *testing.T) {
	tap := NewTap(constStreamer(1, 0), 8)
	buf := make([][2]float64, 4)

	n, ok := tap.Stream(buf)
	if n != 4 || !ok {
		t.Fatalf("Stream returned %d, %v", n, ok)
	}
	if buf[0] != [2]float64{1, 0} {
		t.Errorf("Audio must pass through unchanged, got %v", buf[0])
	}

	got := tap.Snapshot(10)
	if len(got) != 4 {
		t.Fatalf("Expected 4 samples, got %d", len(got))
	}
	for _, v := range got {
		if v != 0.5 {
			t.Errorf("Expected mono 0.5, got %v", v)
		}
	}
	if tap.Written() != 4 {
		t.Errorf("Expected 4 written, got %d", tap.Written())
	}
}

func TestTapKeepsMostRecent(t *testing.T) {
	tap := NewTap(countingStreamer(), 5)
	buf := make([][2]float64, 3)
	for i := 0; i < 4; i++ {
		tap.Stream(buf)
	}

	// 12 samples 0..11 went through; the ring holds 7..11
	got := tap.Snapshot(5)
	want := []float64{7, 8, 9, 10, 11}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Snapshot = %v, want %v", got, want)
		}
	}

	last := tap.Snapshot(2)
	if last[0] != 10 || last[1] != 11 {
		t.Errorf("Expected [10 11], got %v", last)
	}
}

func TestTapEmpty(t *testing.T) {
	tap := NewTap(constStreamer(0, 0), 16)
	if got := tap.Snapshot(8); got != nil {
		t.Errorf("Expected nil snapshot, got %v", got)
	}
	if err := tap.Err(); err != nil {
		t.Errorf("Unexpected error %v", err)
	}
}

func TestTapSource(t *testing.T) {
	tap := NewTap(constStreamer(0.5, 0.5), TapSize)
	src, err := NewTapSource(tap, 44100, 64)
	if err != nil {
		t.Fatalf("NewTapSource failed: %v", err)
	}
	if src.SampleRate() != 44100 || src.BinCount() != 64 {
		t.Error("Unexpected source shape")
	}

	if _, ok := src.SampleFrame(); ok {
		t.Error("Source should not be ready before audio flows")
	}

	tap.Stream(make([][2]float64, 256))

	bins, ok := src.SampleFrame()
	if !ok || len(bins) != 64 {
		t.Fatalf("Expected 64 bins, got %d (ok=%v)", len(bins), ok)
	}
	// a constant signal lands in the lowest bins
	if bins[0] == 0 {
		t.Error("Expected DC energy in bin 0")
	}

	if _, err := NewTapSource(tap, 44100, 50); !errors.Is(err, domain.ErrInvalidBinCount) {
		t.Errorf("Expected ErrInvalidBinCount, got %v", err)
	}
}

func TestTapWindowFollowsPlayhead(t *testing.T) {
	clock := &fakeClock{at: time.Unix(100, 0)}
	tap := NewTap(countingStreamer(), TapSize)
	tap.now = clock.now

	// one speaker pull: samples 0..4409
	tap.Stream(make([][2]float64, 4410))

	steps := []struct {
		after time.Duration
		last  float64
	}{
		{0, 127},
		{10 * time.Millisecond, 440},
		{10 * time.Millisecond, 881},
		{30 * time.Millisecond, 2204},
		{time.Second, 4409},
	}
	for _, step := range steps {
		clock.advance(step.after)
		w := tap.Window(128, 44100)
		if len(w) != 128 {
			t.Fatalf("Expected 128 samples, got %d", len(w))
		}
		if got := w[len(w)-1]; got != step.last {
			t.Errorf("After %v: window ends at %v, want %v", step.after, got, step.last)
		}
		if w[0] != w[len(w)-1]-127 {
			t.Errorf("Window is not contiguous: %v .. %v", w[0], w[len(w)-1])
		}
	}

	if got := tap.Snapshot(2); got[1] != 4409 {
		t.Errorf("Snapshot must still return the newest samples, got %v", got)
	}
}

func TestTapWindowHonoursLatency(t *testing.T) {
	clock := &fakeClock{at: time.Unix(100, 0)}
	tap := NewTap(countingStreamer(), TapSize)
	tap.now = clock.now
	tap.SetLatency(50 * time.Millisecond)

	tap.Stream(make([][2]float64, 2205))
	clock.advance(50 * time.Millisecond)
	tap.Stream(make([][2]float64, 2205))

	// the second chunk is still queued behind the first
	clock.advance(20 * time.Millisecond)
	if got := tap.Window(128, 44100); got[len(got)-1] != 881 {
		t.Errorf("Expected 20ms into the first chunk, got %v", got[len(got)-1])
	}

	clock.advance(40 * time.Millisecond)
	if got := tap.Window(128, 44100); got[len(got)-1] != 2205+441-1 {
		t.Errorf("Expected 10ms into the second chunk, got %v", got[len(got)-1])
	}
}

func TestTapWindowEmpty(t *testing.T) {
	tap := NewTap(constStreamer(0, 0), 16)
	if got := tap.Window(8, 44100); got != nil {
		t.Errorf("Expected nil window, got %v", got)
	}
}

func TestTapSourceAnalysesAudibleSamples(t *testing.T) {
	const rate, chunk = 44100, 4410

	clock := &fakeClock{at: time.Unix(100, 0)}
	tap := NewTap(splitTone(rate, chunk), TapSize)
	tap.now = clock.now

	src, err := NewTapSource(tap, rate, 64)
	if err != nil {
		t.Fatalf("NewTapSource failed: %v", err)
	}
	src.analyser.SetSmoothing(0)

	for c := 0; c < 2; c++ {
		tap.Stream(make([][2]float64, chunk))

		// 25ms in: the 300 Hz half
		clock.advance(25 * time.Millisecond)
		bins, ok := src.SampleFrame()
		if !ok {
			t.Fatal("Expected a frame")
		}
		lows, highs := peak(bins[0:3]), peak(bins[12:18])
		if lows <= highs {
			t.Errorf("Chunk %d first half: lows %.2f should beat highs %.2f", c, lows, highs)
		}

		// 75ms in: the 5 kHz half
		clock.advance(50 * time.Millisecond)
		bins, _ = src.SampleFrame()
		lows, highs = peak(bins[0:3]), peak(bins[12:18])
		if highs <= lows {
			t.Errorf("Chunk %d second half: highs %.2f should beat lows %.2f", c, highs, lows)
		}

		clock.advance(25 * time.Millisecond)
	}
}

func TestIsSupported(t *testing.T) {
	tests := map[string]bool{
		"a.mp3":  true,
		"b.WAV":  true,
		"c.flac": true,
		"d.ogg":  true,
		"e.aac":  false,
		"noext":  false,
	}
	for path, want := range tests {
		if got := IsSupported(path); got != want {
			t.Errorf("IsSupported(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestDecodeFileErrors(t *testing.T) {
	if _, _, err := decodeFile(""); !errors.Is(err, domain.ErrInvalidFilePath) {
		t.Errorf("Expected ErrInvalidFilePath, got %v", err)
	}
	if _, _, err := decodeFile("/music/a.aac"); !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
	if _, _, err := decodeFile(filepath.Join(t.TempDir(), "missing.mp3")); !errors.Is(err, domain.ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}

	bogus := filepath.Join(t.TempDir(), "bogus.wav")
	if err := os.WriteFile(bogus, []byte("not a wave file"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, _, err := decodeFile(bogus)
	var aerr *domain.AudioEngineError
	if !errors.As(err, &aerr) || !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Errorf("Expected wrapped decode error, got %v", err)
	}
}

func TestDecodeWAV(t *testing.T) {
	path := writeWAV(t, 22050, 0.5)

	stream, format, err := decodeFile(path)
	if err != nil {
		t.Fatalf("decodeFile failed: %v", err)
	}
	defer stream.Close()

	if format.SampleRate != 22050 {
		t.Errorf("Expected 22050 Hz, got %d", format.SampleRate)
	}
	if stream.Len() != 11025 {
		t.Errorf("Expected 11025 samples, got %d", stream.Len())
	}

	tap := NewTap(stream, 1024)
	buf := make([][2]float64, 512)
	if n, _ := tap.Stream(buf); n != 512 {
		t.Fatalf("Expected 512 samples, got %d", n)
	}
	peak := 0.0
	for _, v := range tap.Snapshot(512) {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak < 0.4 || peak > 0.6 {
		t.Errorf("Expected decoded amplitude near 0.5, got %v", peak)
	}
}

func TestExtractMetadataFallsBackToFilename(t *testing.T) {
	path := writeWAV(t, 8000, 0.1)

	track, err := extractMetadata(path)
	if err != nil {
		t.Fatalf("extractMetadata failed: %v", err)
	}
	if track.Title != "tone" {
		t.Errorf("Expected title 'tone', got %q", track.Title)
	}
	if track.FileFormat != "wav" {
		t.Errorf("Expected format wav, got %q", track.FileFormat)
	}
	if track.ID == "" {
		t.Error("Expected a generated ID")
	}

	if _, err := extractMetadata(filepath.Join(t.TempDir(), "nope.mp3")); !errors.Is(err, domain.ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
}

func TestEngineRequiresInitialize(t *testing.T) {
	engine := NewEngine()

	if engine.IsInitialized() {
		t.Error("New engine should not be initialized")
	}
	if _, err := engine.Load("/a.mp3", true); !errors.Is(err, domain.ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
	if _, err := engine.AttachAnalysisTap(1, 64); !errors.Is(err, domain.ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
	if err := engine.Shutdown(); !errors.Is(err, domain.ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}

	var verr *domain.ValidationError
	if err := engine.Initialize(-1); !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError, got %v", err)
	}
}
