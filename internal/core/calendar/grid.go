package calendar

import "time"

// DayCell is one classified day of a grid or month view.
type DayCell struct {
	Date      string       `json:"date" yaml:"date"`
	Day       int          `json:"day" yaml:"day"`
	Weekday   time.Weekday `json:"weekday" yaml:"weekday"`
	Completed bool         `json:"completed" yaml:"completed"`
	IsFuture  bool         `json:"is_future" yaml:"is_future"`
	IsToday   bool         `json:"is_today" yaml:"is_today"`
	// InWindow is always true in a grid. In a month view it is false for the
	// padding days borrowed from the adjacent months.
	InWindow bool `json:"in_window" yaml:"in_window"`
}

// Toggleable reports whether a user may flip the completion of this day.
// Padding days only navigate, future days are locked.
func (c DayCell) Toggleable() bool {
	return c.InWindow && !c.IsFuture
}

type Week [DaysPerWeek]DayCell

// Grid is a sequence of weeks, oldest first.
type Grid []Week

func (g Grid) Cells() []DayCell {
	cells := make([]DayCell, 0, len(g)*DaysPerWeek)
	for _, w := range g {
		cells = append(cells, w[:]...)
	}
	return cells
}

// CompletedCount counts completed in-window cells.
func (g Grid) CompletedCount() int {
	n := 0
	for _, w := range g {
		for _, c := range w {
			if c.InWindow && c.Completed {
				n++
			}
		}
	}
	return n
}

func (g Grid) Today() (DayCell, bool) {
	for _, w := range g {
		for _, c := range w {
			if c.IsToday {
				return c, true
			}
		}
	}
	return DayCell{}, false
}

type classifier struct {
	today     string
	completed map[string]struct{}
}

func newClassifier(log []CompletionEvent, ref time.Time) classifier {
	return classifier{
		today:     ToLocalDateKey(ref),
		completed: completedKeys(log),
	}
}

func (c classifier) cell(day time.Time, inWindow bool) DayCell {
	key := ToLocalDateKey(day)
	_, done := c.completed[key]
	return DayCell{
		Date:      key,
		Day:       day.Day(),
		Weekday:   day.Weekday(),
		Completed: done,
		IsFuture:  key > c.today,
		IsToday:   key == c.today,
		InWindow:  inWindow,
	}
}

// BuildGrid lays out the last `weeks` weeks ending with the week that
// contains ref. Rows start on weekStart (Monday when out of range). "Today"
// is the calendar day of ref in ref's own location. A non-positive week
// count yields an empty grid.
func BuildGrid(log []CompletionEvent, ref time.Time, weeks int, weekStart time.Weekday) Grid {
	if weeks < 1 {
		return Grid{}
	}
	weekStart = NormalizeWeekStart(weekStart)

	c := newClassifier(log, ref)
	first := gridStart(ref, weeks, weekStart)

	grid := make(Grid, weeks)
	for w := range grid {
		for d := 0; d < DaysPerWeek; d++ {
			grid[w][d] = c.cell(shiftDays(first, w*DaysPerWeek+d), true)
		}
	}
	return grid
}

func gridStart(ref time.Time, weeks int, weekStart time.Weekday) time.Time {
	return shiftDays(StartOfWeek(ref, NormalizeWeekStart(weekStart)), -DaysPerWeek*(weeks-1))
}

// GridRange returns the first and last date keys BuildGrid would lay out for
// the same arguments, so callers can load just that slice of the log.
func GridRange(ref time.Time, weeks int, weekStart time.Weekday) (from, to string) {
	if weeks < 1 {
		return "", ""
	}
	first := gridStart(ref, weeks, weekStart)
	return ToLocalDateKey(first), ToLocalDateKey(shiftDays(first, DaysPerWeek*weeks-1))
}
