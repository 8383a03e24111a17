package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-grid/internal/core/calendar"
)

var (
	ErrPreferencesNotFound = errors.New("preferences not found")
	ErrInvalidPreference   = errors.New("invalid preference")
)

const (
	ViewGrid     = "grid"
	ViewCalendar = "calendar"
	ViewList     = "list"
	ViewSquare   = "square"

	ThemeLight = "light"
	ThemeDark  = "dark"

	SortNameAsc = "name_asc"

	DefaultGridWeeks = 20
	MaxGridWeeks     = 53
)

// Preference keys, shared by the JSON API, the redis hash and the CLI config.
const (
	PrefWeekStartsOn        = "week_starts_on"
	PrefHighlightCurrentDay = "highlight_current_day"
	PrefView                = "view"
	PrefSortOrder           = "sort_order"
	PrefTheme               = "theme"
	PrefGridWeeks           = "grid_weeks"
	PrefTimezone            = "timezone"
)

var PreferenceKeys = []string{
	PrefWeekStartsOn,
	PrefHighlightCurrentDay,
	PrefView,
	PrefSortOrder,
	PrefTheme,
	PrefGridWeeks,
	PrefTimezone,
}

type Preferences struct {
	WeekStartsOn        string `json:"week_starts_on" toml:"week_starts_on" yaml:"week_starts_on"`
	HighlightCurrentDay bool   `json:"highlight_current_day" toml:"highlight_current_day" yaml:"highlight_current_day"`
	View                string `json:"view" toml:"view" yaml:"view"`
	SortOrder           string `json:"sort_order" toml:"sort_order" yaml:"sort_order"`
	Theme               string `json:"theme" toml:"theme" yaml:"theme"`
	GridWeeks           int    `json:"grid_weeks" toml:"grid_weeks" yaml:"grid_weeks"`
	Timezone            string `json:"timezone" toml:"timezone" yaml:"timezone"`
}

func DefaultPreferences() *Preferences {
	return &Preferences{
		WeekStartsOn:        calendar.WeekdayName(calendar.DefaultWeekStart),
		HighlightCurrentDay: true,
		View:                ViewGrid,
		SortOrder:           SortNameAsc,
		Theme:               ThemeLight,
		GridWeeks:           DefaultGridWeeks,
		Timezone:            "UTC",
	}
}

func (p *Preferences) Validate() error {
	if !calendar.IsWeekdayName(p.WeekStartsOn) {
		return fmt.Errorf("%w: %s %q", ErrInvalidPreference, PrefWeekStartsOn, p.WeekStartsOn)
	}
	switch p.View {
	case ViewGrid, ViewCalendar, ViewList, ViewSquare:
	default:
		return fmt.Errorf("%w: %s %q", ErrInvalidPreference, PrefView, p.View)
	}
	switch p.Theme {
	case ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("%w: %s %q", ErrInvalidPreference, PrefTheme, p.Theme)
	}
	if p.GridWeeks < 1 || p.GridWeeks > MaxGridWeeks {
		return fmt.Errorf("%w: %s must be between 1 and %d", ErrInvalidPreference, PrefGridWeeks, MaxGridWeeks)
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return fmt.Errorf("%w: %s %q", ErrInvalidPreference, PrefTimezone, p.Timezone)
	}
	return nil
}

func (p *Preferences) WeekStart() time.Weekday {
	return calendar.ParseWeekday(p.WeekStartsOn)
}

// Location falls back to UTC when the stored zone cannot be loaded.
func (p *Preferences) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Values flattens the preferences into string fields.
func (p *Preferences) Values() map[string]string {
	return map[string]string{
		PrefWeekStartsOn:        p.WeekStartsOn,
		PrefHighlightCurrentDay: strconv.FormatBool(p.HighlightCurrentDay),
		PrefView:                p.View,
		PrefSortOrder:           p.SortOrder,
		PrefTheme:               p.Theme,
		PrefGridWeeks:           strconv.Itoa(p.GridWeeks),
		PrefTimezone:            p.Timezone,
	}
}

// Set assigns one field from its string form. It does not validate the
// resulting document; call Validate afterwards.
func (p *Preferences) Set(key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case PrefWeekStartsOn:
		p.WeekStartsOn = strings.ToLower(value)
	case PrefHighlightCurrentDay:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s %q", ErrInvalidPreference, key, value)
		}
		p.HighlightCurrentDay = b
	case PrefView:
		p.View = strings.ToLower(value)
	case PrefSortOrder:
		p.SortOrder = value
	case PrefTheme:
		p.Theme = strings.ToLower(value)
	case PrefGridWeeks:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s %q", ErrInvalidPreference, key, value)
		}
		p.GridWeeks = n
	case PrefTimezone:
		p.Timezone = value
	default:
		return fmt.Errorf("%w: unknown key %q", ErrInvalidPreference, key)
	}
	return nil
}

// PreferencesFromValues rebuilds preferences from a flattened hash. Missing
// or unreadable fields keep their defaults.
func PreferencesFromValues(values map[string]string) *Preferences {
	p := DefaultPreferences()
	for key, value := range values {
		_ = p.Set(key, value)
	}
	return p
}

// PreferencePatch is a partial update; nil fields are left untouched.
type PreferencePatch struct {
	WeekStartsOn        *string `json:"week_starts_on"`
	HighlightCurrentDay *bool   `json:"highlight_current_day"`
	View                *string `json:"view"`
	SortOrder           *string `json:"sort_order"`
	Theme               *string `json:"theme"`
	GridWeeks           *int    `json:"grid_weeks"`
	Timezone            *string `json:"timezone"`
}

func (pp PreferencePatch) Apply(p *Preferences) {
	if pp.WeekStartsOn != nil {
		p.WeekStartsOn = strings.ToLower(strings.TrimSpace(*pp.WeekStartsOn))
	}
	if pp.HighlightCurrentDay != nil {
		p.HighlightCurrentDay = *pp.HighlightCurrentDay
	}
	if pp.View != nil {
		p.View = strings.ToLower(*pp.View)
	}
	if pp.SortOrder != nil {
		p.SortOrder = *pp.SortOrder
	}
	if pp.Theme != nil {
		p.Theme = strings.ToLower(*pp.Theme)
	}
	if pp.GridWeeks != nil {
		p.GridWeeks = *pp.GridWeeks
	}
	if pp.Timezone != nil {
		p.Timezone = strings.TrimSpace(*pp.Timezone)
	}
}
