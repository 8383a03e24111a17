package calendar

import (
	"errors"
	"fmt"
	"time"
)

const yearMonthLayout = "2006-01"

var ErrInvalidYearMonth = errors.New("invalid month (must be YYYY-MM)")

type YearMonth struct {
	Year  int
	Month time.Month
}

func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse(yearMonthLayout, s)
	if err != nil || len(s) != len(yearMonthLayout) {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidYearMonth, s)
	}
	return YearMonthOf(t), nil
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

func (ym YearMonth) MarshalText() ([]byte, error) {
	return []byte(ym.String()), nil
}

func (ym *YearMonth) UnmarshalText(b []byte) error {
	parsed, err := ParseYearMonth(string(b))
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}

func (ym YearMonth) Next() YearMonth {
	return YearMonthOf(time.Date(ym.Year, ym.Month+1, 1, 0, 0, 0, 0, time.UTC))
}

func (ym YearMonth) Prev() YearMonth {
	return YearMonthOf(time.Date(ym.Year, ym.Month-1, 1, 0, 0, 0, 0, time.UTC))
}

// Days is the number of days in the month.
func (ym YearMonth) Days() int {
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (ym YearMonth) Contains(t time.Time) bool {
	return t.Year() == ym.Year && t.Month() == ym.Month
}

// Month is a navigable calendar page.
type Month struct {
	Month YearMonth `json:"month" yaml:"month"`
	Weeks Grid      `json:"weeks" yaml:"weeks"`
	Prev  YearMonth `json:"prev" yaml:"prev"`
	Next  YearMonth `json:"next" yaml:"next"`
}

// BuildMonth lays out ym as whole weeks starting on weekStart, padding the
// first and last rows with days of the neighbouring months. Padding cells
// are classified like any other day but carry InWindow=false. Dates are
// built in ref's location.
func BuildMonth(log []CompletionEvent, ref time.Time, ym YearMonth, weekStart time.Weekday) Month {
	start, rows := monthLayout(ref.Location(), ym, weekStart)
	c := newClassifier(log, ref)

	weeks := make(Grid, rows)
	for w := range weeks {
		for d := 0; d < DaysPerWeek; d++ {
			day := shiftDays(start, w*DaysPerWeek+d)
			weeks[w][d] = c.cell(day, ym.Contains(day))
		}
	}

	return Month{
		Month: ym,
		Weeks: weeks,
		Prev:  ym.Prev(),
		Next:  ym.Next(),
	}
}

// monthLayout returns the first padded day and the number of rows of ym.
func monthLayout(loc *time.Location, ym YearMonth, weekStart time.Weekday) (time.Time, int) {
	weekStart = NormalizeWeekStart(weekStart)

	first := civilNoon(ym.Year, ym.Month, 1, loc)
	leading := (int(first.Weekday()) - int(weekStart) + DaysPerWeek) % DaysPerWeek
	total := leading + ym.Days()
	rows := (total + DaysPerWeek - 1) / DaysPerWeek

	return shiftDays(first, -leading), rows
}

// MonthRange returns the first and last date keys of the padded page of ym.
func MonthRange(ym YearMonth, weekStart time.Weekday) (from, to string) {
	start, rows := monthLayout(time.UTC, ym, weekStart)
	return ToLocalDateKey(start), ToLocalDateKey(shiftDays(start, rows*DaysPerWeek-1))
}

// Navigate returns the month a tap on cell should open: the neighbouring
// month for padding days, the current one otherwise.
func (m Month) Navigate(cell DayCell) YearMonth {
	if cell.InWindow {
		return m.Month
	}
	t, err := ParseDateKey(cell.Date, time.UTC)
	if err != nil {
		return m.Month
	}
	return YearMonthOf(t)
}
