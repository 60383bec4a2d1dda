package memory

import (
	"image/color"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
)

// Helper to create a test preferences repository
func newTestPreferencesRepository() *PreferencesRepository {
	app := test.NewApp()
	return NewPreferencesRepository(app.Preferences())
}

var (
	green = color.RGBA{R: 0x3e, G: 0x68, B: 0x53, A: 0xff}
	pink  = color.RGBA{R: 0xff, G: 0x66, B: 0xaa, A: 0x80}
)

func TestPreferencesRepository_RingColorRoundTrip(t *testing.T) {
	repo := newTestPreferencesRepository()

	require.NoError(t, repo.SaveRingColor(domain.BandMids, pink))

	got, err := repo.LoadRingColor(domain.BandMids, green)
	require.NoError(t, err)
	assert.Equal(t, pink, got)

	// other rings are untouched
	got, err = repo.LoadRingColor(domain.BandLows, green)
	require.NoError(t, err)
	assert.Equal(t, green, got)
}

func TestPreferencesRepository_RingColorInvalidBand(t *testing.T) {
	repo := newTestPreferencesRepository()

	var verr *domain.ValidationError
	assert.ErrorAs(t, repo.SaveRingColor(domain.Band(7), pink), &verr)

	got, err := repo.LoadRingColor(domain.Band(-1), green)
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, green, got)
}

func TestPreferencesRepository_BackgroundDefault(t *testing.T) {
	repo := newTestPreferencesRepository()

	got, err := repo.LoadBackground(color.RGBA{R: 1, G: 2, B: 3, A: 4})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 4}, got)

	require.NoError(t, repo.SaveBackground(green))
	got, err = repo.LoadBackground(color.RGBA{})
	require.NoError(t, err)
	assert.Equal(t, green, got)
}

func TestPreferencesRepository_CorruptColor(t *testing.T) {
	app := test.NewApp()
	repo := NewPreferencesRepository(app.Preferences())
	app.Preferences().SetString(keyBackground, "#zzz")

	got, err := repo.LoadBackground(green)
	var rerr *domain.RepositoryError
	assert.ErrorAs(t, err, &rerr)
	assert.Equal(t, green, got)
}

func TestPreferencesRepository_ShortHexIsOpaque(t *testing.T) {
	app := test.NewApp()
	repo := NewPreferencesRepository(app.Preferences())
	app.Preferences().SetString(keyBackground, "#3e6868")

	got, err := repo.LoadBackground(color.RGBA{})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x3e, G: 0x68, B: 0x68, A: 0xff}, got)
}

func TestPreferencesRepository_IdlePolicy(t *testing.T) {
	repo := newTestPreferencesRepository()

	policy, err := repo.LoadIdlePolicy()
	require.NoError(t, err)
	assert.Equal(t, domain.IdleDecay, policy)

	require.NoError(t, repo.SaveIdlePolicy(domain.IdleHold))
	policy, err = repo.LoadIdlePolicy()
	require.NoError(t, err)
	assert.Equal(t, domain.IdleHold, policy)
}

func TestPreferencesRepository_ShowMeters(t *testing.T) {
	repo := newTestPreferencesRepository()

	show, err := repo.LoadShowMeters()
	require.NoError(t, err)
	assert.True(t, show)

	require.NoError(t, repo.SaveShowMeters(false))
	show, err = repo.LoadShowMeters()
	require.NoError(t, err)
	assert.False(t, show)
}

func TestPreferencesRepository_Clear(t *testing.T) {
	repo := newTestPreferencesRepository()

	require.NoError(t, repo.SaveRingColor(domain.BandHighs, pink))
	require.NoError(t, repo.SaveBackground(pink))
	require.NoError(t, repo.SaveIdlePolicy(domain.IdleHold))
	require.NoError(t, repo.SaveShowMeters(false))

	require.NoError(t, repo.Clear())

	c, _ := repo.LoadRingColor(domain.BandHighs, green)
	assert.Equal(t, green, c)
	bg, _ := repo.LoadBackground(green)
	assert.Equal(t, green, bg)
	policy, _ := repo.LoadIdlePolicy()
	assert.Equal(t, domain.IdleDecay, policy)
	show, _ := repo.LoadShowMeters()
	assert.True(t, show)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#3e6853", color.RGBA{0x3e, 0x68, 0x53, 0xff}, false},
		{"3e685380", color.RGBA{0x3e, 0x68, 0x53, 0x80}, false},
		{" #FFFFFF ", color.RGBA{0xff, 0xff, 0xff, 0xff}, false},
		{"#fff", color.RGBA{}, true},
		{"#gg0000", color.RGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, formatColor(got)))
		})
	}
}

func mustParse(t *testing.T, s string) color.RGBA {
	t.Helper()
	c, err := parseColor(s)
	require.NoError(t, err)
	return c
}
