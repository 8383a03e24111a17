package settings

import (
	"os"
	"path/filepath"
	"testing"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
)

func settingsTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestGetPaths_RespectsXDG(t *testing.T) {
	dir := settingsTestEnv(t)

	paths := GetPaths()
	assert.Equal(t, filepath.Join(dir, "kanso"), paths.ConfigDir)
	assert.Equal(t, filepath.Join(dir, "kanso", "config.toml"), paths.ConfigFile)
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	settingsTestEnv(t)

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, s.APIURL)
	assert.Equal(t, *domain.DefaultPreferences(), s.Preferences)
	assert.False(t, s.LoggedIn())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	settingsTestEnv(t)

	s := Default()
	s.Token = "tok"
	s.Email = "me@example.com"
	require.NoError(t, s.Set(domain.PrefWeekStartsOn, "Sunday"))
	require.NoError(t, s.Set(domain.PrefGridWeeks, "12"))
	require.NoError(t, Save(s))

	info, err := os.Stat(GetPaths().ConfigFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
	assert.True(t, loaded.LoggedIn())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	settingsTestEnv(t)
	paths := GetPaths()
	require.NoError(t, os.MkdirAll(paths.ConfigDir, 0o700))
	require.NoError(t, os.WriteFile(paths.ConfigFile, []byte("[preferences]\ngrid_weeks = 8\n"), 0o600))

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, s.Preferences.GridWeeks)
	assert.Equal(t, "monday", s.Preferences.WeekStartsOn)
	assert.Equal(t, DefaultAPIURL, s.APIURL)
}

func TestLoad_RejectsInvalidPreferences(t *testing.T) {
	settingsTestEnv(t)
	paths := GetPaths()
	require.NoError(t, os.MkdirAll(paths.ConfigDir, 0o700))
	require.NoError(t, os.WriteFile(paths.ConfigFile, []byte("[preferences]\ngrid_weeks = 99\n"), 0o600))

	_, err := Load()
	assert.ErrorIs(t, err, domain.ErrInvalidPreference)
}

func TestSettings_GetSet(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		want    string
		wantErr bool
	}{
		{"API URL", KeyAPIURL, "https://kanso.example.com/api/v1", "https://kanso.example.com/api/v1", false},
		{"API URL without scheme", KeyAPIURL, "kanso.example.com", "", true},
		{"Week start is lowercased", domain.PrefWeekStartsOn, "Saturday", "saturday", false},
		{"Unknown weekday", domain.PrefWeekStartsOn, "someday", "", true},
		{"Highlight", domain.PrefHighlightCurrentDay, "false", "false", false},
		{"Highlight not a bool", domain.PrefHighlightCurrentDay, "nope", "", true},
		{"Grid weeks", domain.PrefGridWeeks, "53", "53", false},
		{"Grid weeks out of range", domain.PrefGridWeeks, "0", "", true},
		{"View", domain.PrefView, "calendar", "calendar", false},
		{"Unknown view", domain.PrefView, "carousel", "", true},
		{"Timezone", domain.PrefTimezone, "Europe/Rome", "Europe/Rome", false},
		{"Unknown timezone", domain.PrefTimezone, "Mars/Olympus", "", true},
		{"Unknown key", "colour", "red", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			before := *s

			err := s.Set(tt.key, tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, before, *s, "failed sets leave the settings untouched")
				return
			}
			require.NoError(t, err)

			got, err := s.Get(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettings_GetUnknownKey(t *testing.T) {
	_, err := Default().Get("colour")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestKeys(t *testing.T) {
	keys := Keys()
	require.NotEmpty(t, keys)
	assert.Equal(t, KeyAPIURL, keys[0])
	assert.Len(t, keys, len(domain.PreferenceKeys)+1)
	assert.IsIncreasing(t, keys[1:])
	assert.Equal(t, domain.PrefWeekStartsOn, domain.PreferenceKeys[0], "domain order is not changed")
}
