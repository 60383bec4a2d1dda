package mock

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
)

func newInitializedEngine(t *testing.T) *Engine {
	t.Helper()
	engine := NewEngine()
	if err := engine.Initialize(44100); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return engine
}

// TestNewMockEngine tests creating a new mock engine.
func TestNewMockEngine(t *testing.T) {
	engine := NewEngine()

	if engine == nil {
		t.Fatal("NewEngine returned nil")
	}
	if engine.IsInitialized() {
		t.Error("New engine should not be initialized")
	}
	if engine.GetLoadedTracks() != 0 {
		t.Errorf("Expected 0 loaded tracks, got %d", engine.GetLoadedTracks())
	}
}

// TestInitialize tests engine initialization and its failure modes.
func TestInitialize(t *testing.T) {
	engine := newInitializedEngine(t)

	if !engine.IsInitialized() {
		t.Error("Engine should be initialized")
	}
	if err := engine.Initialize(44100); !errors.Is(err, domain.ErrAlreadyInitialized) {
		t.Errorf("Expected ErrAlreadyInitialized, got %v", err)
	}

	var verr *domain.ValidationError
	if err := NewEngine().Initialize(0); !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for zero rate, got %v", err)
	}

	failing := NewEngine()
	failing.SetFailInitialize(true)
	var aerr *domain.AudioEngineError
	if err := failing.Initialize(44100); !errors.As(err, &aerr) {
		t.Errorf("Expected AudioEngineError, got %v", err)
	}
}

// TestShutdown tests shutting down the engine.
func TestShutdown(t *testing.T) {
	engine := newInitializedEngine(t)
	if _, err := engine.Load("/music/a.mp3", true); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := engine.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if engine.GetLoadedTracks() != 0 {
		t.Error("Shutdown should drop all tracks")
	}
	if err := engine.Shutdown(); !errors.Is(err, domain.ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}

// TestLoadStartsPaused tests that a loaded track waits for Play.
func TestLoadStartsPaused(t *testing.T) {
	engine := newInitializedEngine(t)

	handle, err := engine.Load("/music/a.mp3", false)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if handle == domain.InvalidTrackHandle {
		t.Fatal("Load returned invalid handle")
	}

	status, err := engine.Status(handle)
	if err != nil || status != domain.StatusPaused {
		t.Errorf("Expected paused status, got %v (%v)", status, err)
	}
	if d, _ := engine.Duration(handle); d != DefaultTrackDuration {
		t.Errorf("Expected default duration, got %v", d)
	}
}

// TestLoadErrors tests the load failure modes.
func TestLoadErrors(t *testing.T) {
	if _, err := NewEngine().Load("/a.mp3", false); !errors.Is(err, domain.ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}

	engine := newInitializedEngine(t)
	if _, err := engine.Load("", false); !errors.Is(err, domain.ErrInvalidFilePath) {
		t.Errorf("Expected ErrInvalidFilePath, got %v", err)
	}

	engine.SetFailLoad(true)
	if _, err := engine.Load("/a.mp3", false); err == nil {
		t.Error("Expected load failure")
	}
}

// TestPlayPauseStop tests the playback state transitions.
func TestPlayPauseStop(t *testing.T) {
	engine := newInitializedEngine(t)
	handle, _ := engine.Load("/music/a.mp3", false)

	if err := engine.Play(handle); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if status, _ := engine.Status(handle); status != domain.StatusPlaying {
		t.Errorf("Expected playing, got %v", status)
	}

	if err := engine.Pause(handle); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if status, _ := engine.Status(handle); status != domain.StatusPaused {
		t.Errorf("Expected paused, got %v", status)
	}

	if err := engine.Stop(handle); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if _, err := engine.Status(handle); !errors.Is(err, domain.ErrInvalidTrackHandle) {
		t.Errorf("Stop should unload the track, got %v", err)
	}
	if err := engine.Play(handle); !errors.Is(err, domain.ErrInvalidTrackHandle) {
		t.Errorf("Expected ErrInvalidTrackHandle, got %v", err)
	}
}

// TestFailPlay tests the configured play failure.
func TestFailPlay(t *testing.T) {
	engine := newInitializedEngine(t)
	handle, _ := engine.Load("/music/a.mp3", false)
	engine.SetFailPlay(true)

	if err := engine.Play(handle); !errors.Is(err, domain.ErrPlaybackFailed) {
		t.Errorf("Expected ErrPlaybackFailed, got %v", err)
	}
}

// TestSimulateProgress tests completion and looping.
func TestSimulateProgress(t *testing.T) {
	engine := newInitializedEngine(t)

	once, _ := engine.Load("/music/once.mp3", false)
	if err := engine.SimulateProgress(once, time.Second); err == nil {
		t.Error("Progress on a paused track should fail")
	}
	_ = engine.Play(once)
	_ = engine.SimulateProgress(once, DefaultTrackDuration+time.Second)
	if status, _ := engine.Status(once); status != domain.StatusStopped {
		t.Errorf("Non-looping track should stop at the end, got %v", status)
	}
	if pos, _ := engine.Position(once); pos != DefaultTrackDuration {
		t.Errorf("Expected position at end, got %v", pos)
	}

	// playing a finished track starts over
	_ = engine.Play(once)
	if pos, _ := engine.Position(once); pos != 0 {
		t.Errorf("Expected restart at 0, got %v", pos)
	}

	looped, _ := engine.Load("/music/loop.mp3", true)
	_ = engine.Play(looped)
	_ = engine.SimulateProgress(looped, DefaultTrackDuration+5*time.Second)
	if status, _ := engine.Status(looped); status != domain.StatusPlaying {
		t.Errorf("Looping track should keep playing, got %v", status)
	}
	if pos, _ := engine.Position(looped); pos != 5*time.Second {
		t.Errorf("Expected wrapped position 5s, got %v", pos)
	}
}

// TestGetMetadata tests mock metadata extraction.
func TestGetMetadata(t *testing.T) {
	engine := newInitializedEngine(t)

	track, err := engine.GetMetadata("/music/Song Name.FLAC")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if track.Title != "Song Name" {
		t.Errorf("Expected title 'Song Name', got %q", track.Title)
	}
	if track.FileFormat != "flac" {
		t.Errorf("Expected format flac, got %q", track.FileFormat)
	}
	if track.SampleRate != 44100 {
		t.Errorf("Expected sample rate 44100, got %d", track.SampleRate)
	}
	if _, err := engine.GetMetadata(""); !errors.Is(err, domain.ErrInvalidFilePath) {
		t.Errorf("Expected ErrInvalidFilePath, got %v", err)
	}
}

// TestAttachAnalysisTapSimulator tests that the default tap follows playback.
func TestAttachAnalysisTapSimulator(t *testing.T) {
	engine := newInitializedEngine(t)
	handle, _ := engine.Load("/music/a.mp3", true)

	src, err := engine.AttachAnalysisTap(handle, 64)
	if err != nil {
		t.Fatalf("AttachAnalysisTap failed: %v", err)
	}
	if src.SampleRate() != 44100 || src.BinCount() != 64 {
		t.Errorf("Unexpected tap shape: %v Hz, %d bins", src.SampleRate(), src.BinCount())
	}

	if _, ok := src.SampleFrame(); ok {
		t.Error("Tap should be silent while paused")
	}

	_ = engine.Play(handle)
	bins, ok := src.SampleFrame()
	if !ok || len(bins) != 64 {
		t.Fatalf("Expected 64 bins while playing, got %d (ok=%v)", len(bins), ok)
	}
	if engine.TapCount() != 1 {
		t.Errorf("Expected 1 tap, got %d", engine.TapCount())
	}
}

// TestAttachAnalysisTapErrors tests tap failure modes.
func TestAttachAnalysisTapErrors(t *testing.T) {
	engine := newInitializedEngine(t)

	if _, err := engine.AttachAnalysisTap(42, 64); !errors.Is(err, domain.ErrInvalidTrackHandle) {
		t.Errorf("Expected ErrInvalidTrackHandle, got %v", err)
	}

	handle, _ := engine.Load("/music/a.mp3", true)
	if _, err := engine.AttachAnalysisTap(handle, 48); !errors.Is(err, domain.ErrInvalidBinCount) {
		t.Errorf("Expected ErrInvalidBinCount, got %v", err)
	}

	engine.SetFailTap(true)
	if _, err := engine.AttachAnalysisTap(handle, 64); !errors.Is(err, domain.ErrTapNotReady) {
		t.Errorf("Expected ErrTapNotReady, got %v", err)
	}
}

// TestSetTapSource tests injecting a scripted source.
func TestSetTapSource(t *testing.T) {
	engine := newInitializedEngine(t)
	handle, _ := engine.Load("/music/a.mp3", true)

	fixture := NewFixture(48000, 32)
	engine.SetTapSource(fixture)

	src, err := engine.AttachAnalysisTap(handle, 64)
	if err != nil {
		t.Fatalf("AttachAnalysisTap failed: %v", err)
	}
	if src != fixture {
		t.Error("Expected the injected fixture")
	}
}

// TestConcurrentAccess tests concurrent status queries and playback control.
func TestConcurrentAccess(t *testing.T) {
	engine := newInitializedEngine(t)
	handle, _ := engine.Load("/music/a.mp3", true)
	src, _ := engine.AttachAnalysisTap(handle, 64)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = engine.Play(handle)
				_ = engine.Pause(handle)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, _ = engine.Status(handle)
				_, _ = src.SampleFrame()
			}
		}()
	}
	wg.Wait()
}
