// Package calendar turns a habit's completion log into calendar-aligned
// grids, month calendars and streak counts. Every function is pure: the
// reference "now" is always passed in by the caller.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DateKeyLayout    = "2006-01-02"
	DaysPerWeek      = 7
	DefaultWeekStart = time.Monday
)

var ErrInvalidDateKey = errors.New("invalid date key (must be YYYY-MM-DD)")

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ToLocalDateKey formats the year, month and day of t, as seen in t's own
// location, as a zero-padded YYYY-MM-DD key. It is the only date-to-string
// conversion in this module; convert with t.In(loc) first to key a
// different zone.
func ToLocalDateKey(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// ParseDateKey returns the start of the given day in loc: local midnight,
// or the first instant after it where a clock change skips midnight. Keys
// that are not exactly YYYY-MM-DD or that name a day the calendar does not
// have are rejected.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if len(key) != len(DateKeyLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}

	civil, err := time.Parse(DateKeyLayout, key)
	if err != nil || ToLocalDateKey(civil) != key {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}

	y, m, d := civil.Date()
	return dayStart(y, m, d, loc), nil
}

// AddDays moves a date key by n calendar days. Malformed keys yield "".
func AddDays(key string, n int) string {
	civil, err := time.Parse(DateKeyLayout, key)
	if err != nil || ToLocalDateKey(civil) != key {
		return ""
	}
	return ToLocalDateKey(civil.AddDate(0, 0, n))
}

// WeekdayOf returns the weekday of a date key. ok is false for malformed
// keys.
func WeekdayOf(key string) (wd time.Weekday, ok bool) {
	civil, err := time.Parse(DateKeyLayout, key)
	if err != nil || ToLocalDateKey(civil) != key {
		return time.Sunday, false
	}
	return civil.Weekday(), true
}

// IsDateKey reports whether key is a well-formed, existing calendar day.
func IsDateKey(key string) bool {
	_, err := ParseDateKey(key, time.UTC)
	return err == nil
}

// ParseWeekday maps a weekday name ("sunday", "Mon", ...) to time.Weekday.
// Unknown names fall back to DefaultWeekStart.
func ParseWeekday(name string) time.Weekday {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultWeekStart
	}
	if wd, ok := weekdayNames[name]; ok {
		return wd
	}
	if len(name) >= 3 {
		for full, wd := range weekdayNames {
			if strings.HasPrefix(full, name) {
				return wd
			}
		}
	}
	return DefaultWeekStart
}

// IsWeekdayName reports whether ParseWeekday recognises name without falling
// back to the default.
func IsWeekdayName(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := weekdayNames[name]; ok {
		return true
	}
	if len(name) < 3 {
		return false
	}
	for full := range weekdayNames {
		if strings.HasPrefix(full, name) {
			return true
		}
	}
	return false
}

// WeekdayName is the lower-case English name used in preferences.
func WeekdayName(wd time.Weekday) string {
	return strings.ToLower(NormalizeWeekStart(wd).String())
}

// NormalizeWeekStart replaces an out-of-range weekday with DefaultWeekStart.
func NormalizeWeekStart(wd time.Weekday) time.Weekday {
	if wd < time.Sunday || wd > time.Saturday {
		return DefaultWeekStart
	}
	return wd
}

// StartOfWeek returns the start of the most recent day on or before t whose
// weekday is weekStart.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	weekStart = NormalizeWeekStart(weekStart)
	back := (int(t.Weekday()) - int(weekStart) + DaysPerWeek) % DaysPerWeek
	y, m, d := shiftDays(t, -back).Date()
	return dayStart(y, m, d, t.Location())
}

// civilNoon anchors a calendar day at 12:00 in loc. Clock changes happen at
// night, so noon always exists and always belongs to that day.
func civilNoon(y int, m time.Month, d int, loc *time.Location) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, loc)
}

// dayStart is the first instant of a calendar day in loc. Where a clock
// change skips midnight, time.Date normalises into the previous day, so
// walk forward until the date matches.
func dayStart(y int, m time.Month, d int, loc *time.Location) time.Time {
	noon := civilNoon(y, m, d, loc)
	key := ToLocalDateKey(noon)
	y, m, d = noon.Date()

	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	for ToLocalDateKey(t) != key && t.Before(noon) {
		t = t.Add(15 * time.Minute)
	}
	return t
}

// shiftDays moves by whole calendar days and lands on civil noon, so each
// step is exactly one date whatever the zone does with its clocks.
func shiftDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return civilNoon(y, m, d+n, t.Location())
}
