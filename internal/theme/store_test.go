package theme

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldlab/foldpipe/internal/models"
)

type memPersister struct {
	theme   models.Theme
	ok      bool
	loadErr error
	saveErr error
	saves   []models.Theme
}

func (m *memPersister) Load() (models.Theme, bool, error) {
	return m.theme, m.ok, m.loadErr
}

func (m *memPersister) Save(t models.Theme) error {
	m.saves = append(m.saves, t)
	return m.saveErr
}

type recordingIndicator struct {
	themes []models.Theme
	icons  []string
}

func (r *recordingIndicator) ShowTheme(t models.Theme, icon string) {
	r.themes = append(r.themes, t)
	r.icons = append(r.icons, icon)
}

func always(v bool) func() bool { return func() bool { return v } }

func TestNewStoreResolutionOrder(t *testing.T) {
	tests := []struct {
		name      string
		persister *memPersister
		dark      func() bool
		want      models.Theme
	}{
		{"persisted wins over signal", &memPersister{theme: models.ThemeLight, ok: true}, always(true), models.ThemeLight},
		{"signal when nothing persisted", &memPersister{}, always(true), models.ThemeDark},
		{"light by default", &memPersister{}, always(false), models.ThemeLight},
		{"unreadable preference falls through", &memPersister{loadErr: errors.New("corrupt")}, always(true), models.ThemeDark},
		{"no signal at all", &memPersister{}, nil, models.ThemeLight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(tt.persister, tt.dark, nil, nil)
			assert.Equal(t, tt.want, s.Get())
			assert.Empty(t, tt.persister.saves, "resolution must not write the preference")
		})
	}
}

func TestStoreToggleWritesThroughAndUpdatesIndicator(t *testing.T) {
	p := &memPersister{}
	ind := &recordingIndicator{}
	s := NewStore(p, always(false), ind, nil)

	require.Equal(t, []models.Theme{models.ThemeLight}, ind.themes, "indicator shows the initial theme")

	assert.Equal(t, models.ThemeDark, s.Toggle())
	assert.Equal(t, models.ThemeLight, s.Toggle())

	assert.Equal(t, []models.Theme{models.ThemeDark, models.ThemeLight}, p.saves)
	assert.Equal(t, []string{"☾", "☀", "☾"}, ind.icons)
}

func TestStoreSetIgnoresPersistFailure(t *testing.T) {
	p := &memPersister{saveErr: errors.New("read-only filesystem")}
	s := NewStore(p, nil, nil, nil)

	s.Set(models.ThemeDark)
	assert.Equal(t, models.ThemeDark, s.Get())
}

func TestTOMLFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "preferences.toml")
	f := NewTOMLFile(path)

	_, ok, err := f.Load()
	require.NoError(t, err)
	assert.False(t, ok, "missing file means no preference")

	require.NoError(t, f.Save(models.ThemeDark))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `theme = "dark"`)

	got, ok, err := f.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.ThemeDark, got)
}

func TestTOMLFileRejectsUnknownTheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.toml")
	require.NoError(t, os.WriteFile(path, []byte(`theme = "sepia"`), 0o600))

	_, ok, err := NewTOMLFile(path).Load()
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestStoreWithTOMLFilePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.toml")

	first := NewStore(NewTOMLFile(path), always(false), nil, nil)
	first.Toggle()

	second := NewStore(NewTOMLFile(path), always(false), nil, nil)
	assert.Equal(t, models.ThemeDark, second.Get())
}

func TestPaletteFor(t *testing.T) {
	assert.NotEqual(t, PaletteFor(models.ThemeLight), PaletteFor(models.ThemeDark))
	assert.Equal(t, PaletteFor(models.ThemeLight), PaletteFor("unknown"))
}
