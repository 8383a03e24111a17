package domain_test

import (
	"testing"
	"time"

	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPreferences(t *testing.T) {
	p := domain.DefaultPreferences()

	require.NoError(t, p.Validate())
	assert.Equal(t, "monday", p.WeekStartsOn)
	assert.Equal(t, time.Monday, p.WeekStart())
	assert.True(t, p.HighlightCurrentDay)
	assert.Equal(t, domain.ViewGrid, p.View)
	assert.Equal(t, domain.DefaultGridWeeks, p.GridWeeks)
	assert.Equal(t, time.UTC, p.Location())
}

func TestPreferences_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *domain.Preferences)
		valid  bool
	}{
		{"Sunday start", func(p *domain.Preferences) { p.WeekStartsOn = "sunday" }, true},
		{"Short weekday", func(p *domain.Preferences) { p.WeekStartsOn = "sat" }, true},
		{"Unknown weekday", func(p *domain.Preferences) { p.WeekStartsOn = "funday" }, false},
		{"Calendar view", func(p *domain.Preferences) { p.View = domain.ViewCalendar }, true},
		{"Unknown view", func(p *domain.Preferences) { p.View = "table" }, false},
		{"Dark theme", func(p *domain.Preferences) { p.Theme = domain.ThemeDark }, true},
		{"Unknown theme", func(p *domain.Preferences) { p.Theme = "neon" }, false},
		{"Zero weeks", func(p *domain.Preferences) { p.GridWeeks = 0 }, false},
		{"Max weeks", func(p *domain.Preferences) { p.GridWeeks = domain.MaxGridWeeks }, true},
		{"Too many weeks", func(p *domain.Preferences) { p.GridWeeks = domain.MaxGridWeeks + 1 }, false},
		{"Bad timezone", func(p *domain.Preferences) { p.Timezone = "Mars/Olympus" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := domain.DefaultPreferences()
			tt.mutate(p)

			err := p.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidPreference)
			}
		})
	}
}

func TestPreferences_ValuesRoundTrip(t *testing.T) {
	p := domain.DefaultPreferences()
	require.NoError(t, p.Set(domain.PrefWeekStartsOn, "Sunday"))
	require.NoError(t, p.Set(domain.PrefHighlightCurrentDay, "false"))
	require.NoError(t, p.Set(domain.PrefGridWeeks, "12"))

	values := p.Values()
	assert.Len(t, values, len(domain.PreferenceKeys))
	assert.Equal(t, "sunday", values[domain.PrefWeekStartsOn])

	back := domain.PreferencesFromValues(values)
	assert.Equal(t, p, back)
	assert.Equal(t, time.Sunday, back.WeekStart())

	assert.ErrorIs(t, p.Set(domain.PrefGridWeeks, "many"), domain.ErrInvalidPreference)
	assert.ErrorIs(t, p.Set("colour", "red"), domain.ErrInvalidPreference)
}

func TestPreferencePatch_Apply(t *testing.T) {
	p := domain.DefaultPreferences()
	weeks := 8
	start := " Saturday "

	domain.PreferencePatch{GridWeeks: &weeks, WeekStartsOn: &start}.Apply(p)

	assert.Equal(t, 8, p.GridWeeks)
	assert.Equal(t, "saturday", p.WeekStartsOn)
	assert.Equal(t, domain.ViewGrid, p.View, "untouched fields keep their value")
}
