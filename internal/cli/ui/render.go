package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-grid/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
)

func weekdayLabel(wd time.Weekday) string {
	return wd.String()[:2]
}

func highlightToday(c calendar.DayCell, highlight bool, text string, base func(...string) string) string {
	if highlight && c.IsToday {
		return Title.Underline(true).Render(text)
	}
	return base(text)
}

func gridCell(c calendar.DayCell, highlight bool) string {
	switch {
	case c.IsFuture:
		return Muted.Render(SymbolFuture)
	case c.Completed:
		return highlightToday(c, highlight, SymbolDone, Done.Render)
	default:
		return highlightToday(c, highlight, SymbolMissed, Missed.Render)
	}
}

// RenderGrid draws one row per weekday and one column per week, oldest week
// on the left, the way contribution graphs do.
func RenderGrid(g calendar.Grid, highlight bool) string {
	if len(g) == 0 {
		return ""
	}

	rows := make([]string, 0, calendar.DaysPerWeek)
	for d := 0; d < calendar.DaysPerWeek; d++ {
		cols := make([]string, 0, len(g))
		for _, week := range g {
			cols = append(cols, gridCell(week[d], highlight))
		}
		rows = append(rows, Muted.Render(weekdayLabel(g[0][d].Weekday))+" "+strings.Join(cols, " "))
	}
	return strings.Join(rows, "\n")
}

func monthCell(c calendar.DayCell, highlight bool) string {
	text := fmt.Sprintf("%2d", c.Day)
	switch {
	case !c.InWindow, c.IsFuture:
		return Muted.Render(text)
	case c.Completed:
		return highlightToday(c, highlight, text, Done.Render)
	default:
		return highlightToday(c, highlight, text, Missed.Render)
	}
}

// RenderMonth draws a month page with its padding days dimmed and the
// neighbouring months as a navigation hint.
func RenderMonth(m calendar.Month, highlight bool) string {
	lines := []string{
		Title.Render(time.Date(m.Month.Year, m.Month.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")),
	}

	if len(m.Weeks) > 0 {
		labels := make([]string, 0, calendar.DaysPerWeek)
		for _, c := range m.Weeks[0] {
			labels = append(labels, weekdayLabel(c.Weekday))
		}
		lines = append(lines, Muted.Render(strings.Join(labels, " ")))
	}

	for _, week := range m.Weeks {
		cells := make([]string, 0, calendar.DaysPerWeek)
		for _, c := range week {
			cells = append(cells, monthCell(c, highlight))
		}
		lines = append(lines, strings.Join(cells, " "))
	}

	lines = append(lines, Muted.Render(fmt.Sprintf("‹ %s   %s ›", m.Prev, m.Next)))
	return strings.Join(lines, "\n")
}

// HabitLine is one row of the habit list.
func HabitLine(h *domain.Habit, streak int, doneToday bool) string {
	mark := Missed.Render(SymbolMissed)
	if doneToday {
		mark = Done.Render(SymbolDone)
	}

	line := fmt.Sprintf("%s %-24s %3d %s  %s", mark, h.Title, streak, IconFire, Muted.Render(h.ID))
	if h.IsArchived() {
		line += " " + Muted.Render("(archived)")
	}
	if doneToday {
		line += " " + Badge.Render("done")
	}
	return line
}
