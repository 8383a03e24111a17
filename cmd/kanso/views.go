package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-grid/internal/cli/ui"
	"github.com/comitanigiacomo/kanso-grid/internal/client"
	"github.com/comitanigiacomo/kanso-grid/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
)

type gridReport struct {
	HabitID   string        `json:"habit_id" yaml:"habit_id"`
	Title     string        `json:"title" yaml:"title"`
	Today     string        `json:"today" yaml:"today"`
	WeekStart string        `json:"week_start" yaml:"week_start"`
	Current   int           `json:"current_streak" yaml:"current_streak"`
	Longest   int           `json:"longest_streak" yaml:"longest_streak"`
	Completed int           `json:"completed" yaml:"completed"`
	Grid      calendar.Grid `json:"grid" yaml:"grid"`
}

type calendarReport struct {
	HabitID string         `json:"habit_id" yaml:"habit_id"`
	Title   string         `json:"title" yaml:"title"`
	Today   string         `json:"today" yaml:"today"`
	Month   calendar.Month `json:"calendar" yaml:"calendar"`
}

// habitLog fetches a habit and its log between two date keys.
func habitLog(ctx context.Context, c *client.Client, habitID, from, to string) (*domain.Habit, []calendar.CompletionEvent, error) {
	habit, err := c.Habit(ctx, habitID)
	if err != nil {
		return nil, nil, err
	}
	entries, err := c.Logs(ctx, habitID, from, to)
	if err != nil {
		return nil, nil, err
	}
	return habit, domain.Events(entries), nil
}

// weekStartFlag resolves --week-start against the local preference.
func (s *session) weekStartFlag(cmd *cobra.Command, value string) (time.Weekday, error) {
	if !cmd.Flags().Changed("week-start") {
		return s.settings.Preferences.WeekStart(), nil
	}
	if !calendar.IsWeekdayName(value) {
		return 0, fmt.Errorf("%w: week start %q", domain.ErrInvalidPreference, value)
	}
	return calendar.ParseWeekday(value), nil
}

func newGridCmd(s *session) *cobra.Command {
	var (
		weeks     int
		weekStart string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "grid <habit-id>",
		Short: "Show the rolling week grid of a habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			if !cmd.Flags().Changed("weeks") {
				weeks = s.settings.Preferences.GridWeeks
			}
			if weeks < 1 || weeks > domain.MaxGridWeeks {
				return fmt.Errorf("%w: weeks must be between 1 and %d", domain.ErrInvalidPreference, domain.MaxGridWeeks)
			}
			ws, err := s.weekStartFlag(cmd, weekStart)
			if err != nil {
				return err
			}

			c, err := s.authed()
			if err != nil {
				return err
			}

			now := s.clock()
			today := calendar.ToLocalDateKey(now)

			// Streaks need the whole history, not only the visible weeks.
			habit, log, err := habitLog(cmd.Context(), c, args[0], "", today)
			if err != nil {
				return err
			}

			grid := calendar.BuildGrid(log, now, weeks, ws)
			report := gridReport{
				HabitID:   habit.ID,
				Title:     habit.Title,
				Today:     today,
				WeekStart: calendar.WeekdayName(ws),
				Current:   calendar.CurrentStreak(log),
				Longest:   calendar.LongestStreak(log),
				Completed: grid.CompletedCount(),
				Grid:      grid,
			}

			out := cmd.OutOrStdout()
			if output != outputText {
				return writeStructured(out, output, report)
			}

			ui.Header(out, habit.Title)
			fmt.Fprintln(out, ui.RenderGrid(grid, s.settings.Preferences.HighlightCurrentDay))
			fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("%d done in %d weeks · current %d · longest %d",
				report.Completed, weeks, report.Current, report.Longest)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&weeks, "weeks", "w", 0, "number of weeks (1-53), defaults to grid_weeks")
	cmd.Flags().StringVar(&weekStart, "week-start", "", "first day of the week, defaults to week_starts_on")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json or yaml")
	return cmd
}

func newCalendarCmd(s *session) *cobra.Command {
	var (
		month     string
		weekStart string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "calendar <habit-id>",
		Short: "Show one month of a habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			ws, err := s.weekStartFlag(cmd, weekStart)
			if err != nil {
				return err
			}

			now := s.clock()
			ym := calendar.YearMonthOf(now)
			if month != "" {
				if ym, err = calendar.ParseYearMonth(month); err != nil {
					return err
				}
			}

			c, err := s.authed()
			if err != nil {
				return err
			}

			from, to := calendar.MonthRange(ym, ws)
			habit, log, err := habitLog(cmd.Context(), c, args[0], from, to)
			if err != nil {
				return err
			}

			page := calendar.BuildMonth(log, now, ym, ws)

			out := cmd.OutOrStdout()
			if output != outputText {
				return writeStructured(out, output, calendarReport{
					HabitID: habit.ID,
					Title:   habit.Title,
					Today:   calendar.ToLocalDateKey(now),
					Month:   page,
				})
			}

			ui.Header(out, habit.Title)
			fmt.Fprintln(out, ui.RenderMonth(page, s.settings.Preferences.HighlightCurrentDay))
			return nil
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "month to show as YYYY-MM, defaults to the current one")
	cmd.Flags().StringVar(&weekStart, "week-start", "", "first day of the week, defaults to week_starts_on")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json or yaml")
	return cmd
}

func newStreakCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "streak <habit-id>",
		Short: "Show the current and longest streak of a habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.authed()
			if err != nil {
				return err
			}

			today := calendar.ToLocalDateKey(s.clock())
			habit, log, err := habitLog(cmd.Context(), c, args[0], "", today)
			if err != nil {
				return err
			}

			last, ok := calendar.LastCompleted(log)
			if !ok {
				last = "never"
			}
			doneToday := "no"
			if calendar.CompletedOn(log, today) {
				doneToday = "yes"
			}

			out := cmd.OutOrStdout()
			ui.Header(out, habit.Title)
			ui.Kv(out, "current", fmt.Sprintf("%d %s", calendar.CurrentStreak(log), ui.IconFire))
			ui.Kv(out, "longest", fmt.Sprint(calendar.LongestStreak(log)))
			ui.Kv(out, "last completed", last)
			ui.Kv(out, "done today", doneToday)
			return nil
		},
	}
}

func newToggleCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <habit-id> [YYYY-MM-DD]",
		Short: "Flip the completion of a day, today by default",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := s.clock()
			date := calendar.ToLocalDateKey(now)
			if len(args) == 2 {
				if _, err := calendar.ParseDateKey(args[1], now.Location()); err != nil {
					return err
				}
				if args[1] > date {
					return fmt.Errorf("%w: %s", domain.ErrFutureDate, args[1])
				}
				date = args[1]
			}

			c, err := s.authed()
			if err != nil {
				return err
			}

			res, err := c.Toggle(cmd.Context(), args[0], date, s.settings.Preferences.Timezone)
			if err != nil {
				return err
			}

			if res.Completed {
				ui.Ok(cmd.OutOrStdout(), res.Date+" marked as done")
			} else {
				ui.Ok(cmd.OutOrStdout(), res.Date+" cleared")
			}
			return nil
		},
	}
}
