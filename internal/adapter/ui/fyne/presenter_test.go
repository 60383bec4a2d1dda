package fyne

import (
	"errors"
	"image/color"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/gopulse/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/gopulse/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/gopulse/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/gopulse/internal/adapter/scheduler"
	"github.com/tejashwikalptaru/gopulse/internal/domain"
	"github.com/tejashwikalptaru/gopulse/internal/logger"
	"github.com/tejashwikalptaru/gopulse/internal/pointfield"
	"github.com/tejashwikalptaru/gopulse/internal/service"
	"github.com/tejashwikalptaru/gopulse/internal/testutil"
)

type notification struct {
	title, message string
}

// fakeView records what the presenter shows.
type fakeView struct {
	mu            sync.Mutex
	playing       bool
	title         string
	cleared       int
	meterUpdates  int
	lastMeters    domain.BandState
	metersVisible bool
	active        bool
	notifications []notification
}

func (v *fakeView) SetPlayState(playing bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = playing
}

func (v *fakeView) SetTrackInfo(title, artist string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.title = artist + " - " + title
}

func (v *fakeView) ClearTrackInfo() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.title = ""
	v.cleared++
}

func (v *fakeView) SetMeters(state domain.BandState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.meterUpdates++
	v.lastMeters = state
}

func (v *fakeView) SetMetersVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.metersVisible = visible
}

func (v *fakeView) SetVisualizerActive(active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.active = active
}

func (v *fakeView) ShowNotification(title, message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notifications = append(v.notifications, notification{title, message})
}

func (v *fakeView) snapshot() fakeView {
	v.mu.Lock()
	defer v.mu.Unlock()
	return fakeView{
		playing:       v.playing,
		title:         v.title,
		cleared:       v.cleared,
		meterUpdates:  v.meterUpdates,
		lastMeters:    v.lastMeters,
		metersVisible: v.metersVisible,
		active:        v.active,
		notifications: append([]notification(nil), v.notifications...),
	}
}

type presenterHarness struct {
	presenter  *Presenter
	view       *fakeView
	bus        *eventbus.SyncEventBus
	engine     *mock.Engine
	playback   *service.PlaybackService
	prefs      *service.PreferenceService
	visualizer *service.VisualizerService
	frames     *scheduler.Manual
}

func newPresenterHarness(t *testing.T) *presenterHarness {
	t.Helper()

	log := logger.NewTestLogger()
	h := &presenterHarness{
		view:   &fakeView{},
		bus:    eventbus.NewSyncEventBus(),
		engine: mock.NewEngine(),
		frames: scheduler.NewManual(),
	}
	require.NoError(t, h.engine.Initialize(44100))

	h.playback = service.NewPlaybackService(log, h.engine, h.bus)
	h.prefs = service.NewPreferenceService(log, memory.NewPreferencesRepository(test.NewApp().Preferences()))

	vis, err := service.NewVisualizerService(log, h.playback, h.playback, h.frames, h.bus, service.DefaultVisualizerConfig())
	require.NoError(t, err)
	h.visualizer = vis

	h.presenter = NewPresenter(log, h.playback, h.prefs, h.visualizer, h.bus, h.view, nil, 5*time.Millisecond)

	t.Cleanup(func() {
		h.presenter.Shutdown()
		_ = h.visualizer.Shutdown()
		_ = h.playback.Shutdown()
		_ = h.engine.Shutdown()
	})
	return h
}

func TestPresenter_SyncsInitialState(t *testing.T) {
	h := newPresenterHarness(t)

	v := h.view.snapshot()
	assert.False(t, v.playing)
	assert.Equal(t, 1, v.cleared)
	assert.True(t, v.metersVisible)
	assert.False(t, v.active)
}

func TestPresenter_OpenFilePlays(t *testing.T) {
	h := newPresenterHarness(t)

	require.NoError(t, h.presenter.OnFileOpened("/music/song.mp3"))

	v := h.view.snapshot()
	assert.Equal(t, "Mock Artist - song", v.title)
	assert.True(t, v.playing)
	assert.True(t, h.presenter.IsPlaying())
	require.NotNil(t, h.presenter.CurrentTrack())
	assert.Equal(t, "/music/song.mp3", h.presenter.CurrentTrack().FilePath)
}

func TestPresenter_OpenFileFailure(t *testing.T) {
	h := newPresenterHarness(t)
	h.engine.SetFailLoad(true)

	assert.Error(t, h.presenter.OnFileOpened("/music/song.mp3"))
	assert.False(t, h.view.snapshot().playing)
}

func TestPresenter_PlayClickedToggles(t *testing.T) {
	h := newPresenterHarness(t)
	require.NoError(t, h.presenter.OnFileOpened("/music/song.mp3"))

	h.presenter.OnPlayClicked()
	assert.False(t, h.view.snapshot().playing)

	h.presenter.OnPlayClicked()
	assert.True(t, h.view.snapshot().playing)
}

func TestPresenter_PlayWithoutTrackNotifies(t *testing.T) {
	h := newPresenterHarness(t)

	h.presenter.OnPlayClicked()

	v := h.view.snapshot()
	require.Len(t, v.notifications, 1)
	assert.Equal(t, "Nothing to play", v.notifications[0].title)
}

func TestPresenter_EngineFailureNotifiesOnce(t *testing.T) {
	h := newPresenterHarness(t)
	_, err := h.playback.OpenFile("/music/song.mp3")
	require.NoError(t, err)
	h.engine.SetFailPlay(true)

	h.presenter.OnPlayClicked()

	v := h.view.snapshot()
	require.Len(t, v.notifications, 1)
	assert.Equal(t, "Playback Error", v.notifications[0].title)
	assert.Contains(t, v.notifications[0].message, "song")
}

func TestPresenter_StopClearsTrack(t *testing.T) {
	h := newPresenterHarness(t)
	require.NoError(t, h.presenter.OnFileOpened("/music/song.mp3"))

	h.presenter.OnStopClicked()

	v := h.view.snapshot()
	assert.False(t, v.playing)
	assert.Empty(t, v.title)
	assert.Nil(t, h.presenter.CurrentTrack())
}

func TestPresenter_ReflectsVisualizerState(t *testing.T) {
	h := newPresenterHarness(t)

	h.bus.Publish(domain.NewVisualizerStateChangedEvent(domain.StateIdle, domain.StateActive))
	assert.True(t, h.view.snapshot().active)

	h.bus.Publish(domain.NewVisualizerStateChangedEvent(domain.StateActive, domain.StateIdle))
	assert.False(t, h.view.snapshot().active)
}

func TestPresenter_TrackErrorNotifies(t *testing.T) {
	h := newPresenterHarness(t)

	h.bus.Publish(domain.NewTrackErrorEvent(domain.MusicTrack{FilePath: "/bad.ogg"}, errors.New("corrupt stream")))

	v := h.view.snapshot()
	require.Len(t, v.notifications, 1)
	assert.Contains(t, v.notifications[0].message, "/bad.ogg")
	assert.Contains(t, v.notifications[0].message, "corrupt stream")
}

func TestPresenter_MetersFollowAnalyzer(t *testing.T) {
	h := newPresenterHarness(t)

	assert.True(t, testutil.Eventually(time.Second, func() bool {
		return h.view.snapshot().meterUpdates >= 3
	}))
}

func TestPresenter_HiddenMetersStopUpdating(t *testing.T) {
	h := newPresenterHarness(t)

	h.presenter.OnMetersToggled(false)
	assert.False(t, h.view.snapshot().metersVisible)
	assert.False(t, h.presenter.ShowMeters())

	// let an in-flight tick land before sampling
	time.Sleep(20 * time.Millisecond)
	before := h.view.snapshot().meterUpdates
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, before, h.view.snapshot().meterUpdates)
}

func TestPresenter_RingColorChosen(t *testing.T) {
	h := newPresenterHarness(t)
	pink := color.RGBA{R: 0xff, G: 0x66, B: 0xaa, A: 0xff}

	h.presenter.OnRingColorChosen(domain.BandMids, pink)

	assert.Equal(t, pink, h.presenter.Palette().Rings[domain.BandMids])
	assert.Empty(t, h.view.snapshot().notifications)
}

func TestPresenter_TransparentRingRejected(t *testing.T) {
	h := newPresenterHarness(t)

	h.presenter.OnRingColorChosen(domain.BandLows, color.Transparent)

	assert.Equal(t, pointfield.DefaultPalette(), h.presenter.Palette())
	assert.Len(t, h.view.snapshot().notifications, 1)
}

func TestPresenter_BackgroundChosen(t *testing.T) {
	h := newPresenterHarness(t)

	h.presenter.OnBackgroundChosen(color.Black)

	assert.Equal(t, color.RGBA{A: 0xff}, h.presenter.Palette().Background)
}

func TestPresenter_IdleHoldToggled(t *testing.T) {
	h := newPresenterHarness(t)
	assert.False(t, h.presenter.IdleHold())

	h.presenter.OnIdleHoldToggled(true)
	assert.True(t, h.presenter.IdleHold())

	h.presenter.OnIdleHoldToggled(false)
	assert.False(t, h.presenter.IdleHold())
}

func TestPresenter_ResetPreferences(t *testing.T) {
	h := newPresenterHarness(t)

	h.presenter.OnRingColorChosen(domain.BandHighs, color.RGBA{B: 0xff, A: 0xff})
	h.presenter.OnIdleHoldToggled(true)
	h.presenter.OnMetersToggled(false)

	h.presenter.OnResetPreferences()

	assert.Equal(t, pointfield.DefaultPalette(), h.presenter.Palette())
	assert.False(t, h.presenter.IdleHold())
	assert.True(t, h.view.snapshot().metersVisible)
}

func TestPresenter_ShutdownIsIdempotent(t *testing.T) {
	defer testutil.VerifyNoLeaks(t, testutil.IgnoreFyneGoroutines()...)

	h := newPresenterHarness(t)
	subscribed := h.bus.SubscriberCount()

	h.presenter.Shutdown()
	h.presenter.Shutdown()

	assert.Less(t, h.bus.SubscriberCount(), subscribed)

	// events after shutdown no longer reach the view
	h.bus.Publish(domain.NewVisualizerStateChangedEvent(domain.StateIdle, domain.StateActive))
	assert.False(t, h.view.snapshot().active)

	_ = h.visualizer.Shutdown()
	_ = h.playback.Shutdown()
}
