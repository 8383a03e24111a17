package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-grid/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
)

// ViewOptions override the user's stored preferences for one request. Zero
// values mean "use the preference".
type ViewOptions struct {
	Weeks     int
	WeekStart string
	Timezone  string
	// Month selects the calendar page as YYYY-MM; empty is the current month.
	Month string
}

// ViewService builds the grid, calendar and streak views of habits from
// their stored logs.
type ViewService struct {
	habits  domain.HabitRepository
	entries domain.HabitEntryRepository
	prefs   *PreferenceService
	now     func() time.Time
}

func NewViewService(habits domain.HabitRepository, entries domain.HabitEntryRepository, prefs *PreferenceService) *ViewService {
	return &ViewService{
		habits:  habits,
		entries: entries,
		prefs:   prefs,
		now:     time.Now,
	}
}

// WithClock replaces the wall clock, mostly for tests.
func (s *ViewService) WithClock(now func() time.Time) *ViewService {
	s.now = now
	return s
}

type viewSettings struct {
	now       time.Time
	today     string
	weekStart time.Weekday
	weeks     int
}

// resolve merges request overrides with stored preferences and reads the
// clock exactly once.
func (s *ViewService) resolve(ctx context.Context, userID string, opts ViewOptions) (viewSettings, error) {
	prefs := domain.DefaultPreferences()
	if s.prefs != nil {
		prefs = s.prefs.Get(ctx, userID)
	}

	loc := prefs.Location()
	if tz := strings.TrimSpace(opts.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return viewSettings{}, fmt.Errorf("%w: %s %q", domain.ErrInvalidPreference, domain.PrefTimezone, tz)
		}
		loc = l
	}

	weeks := prefs.GridWeeks
	if opts.Weeks != 0 {
		if opts.Weeks < 1 || opts.Weeks > domain.MaxGridWeeks {
			return viewSettings{}, fmt.Errorf("%w: %s must be between 1 and %d", domain.ErrInvalidPreference, domain.PrefGridWeeks, domain.MaxGridWeeks)
		}
		weeks = opts.Weeks
	}

	weekStart := prefs.WeekStart()
	if opts.WeekStart != "" {
		weekStart = calendar.ParseWeekday(opts.WeekStart)
	}

	now := s.now().In(loc)
	return viewSettings{
		now:       now,
		today:     calendar.ToLocalDateKey(now),
		weekStart: weekStart,
		weeks:     weeks,
	}, nil
}

func (s *ViewService) ownedHabit(ctx context.Context, habitID, userID string) (*domain.Habit, error) {
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *ViewService) log(ctx context.Context, habitID, from, to string) ([]calendar.CompletionEvent, error) {
	entries, err := s.entries.ListByHabitID(ctx, habitID, from, to)
	if err != nil {
		return nil, err
	}
	return domain.Events(entries), nil
}

func habitGrid(habit *domain.Habit, log []calendar.CompletionEvent, vs viewSettings) domain.HabitGrid {
	grid := calendar.BuildGrid(log, vs.now, vs.weeks, vs.weekStart)
	return domain.HabitGrid{
		Habit:          habit,
		Grid:           grid,
		Completed:      grid.CompletedCount(),
		Streak:         calendar.CurrentStreak(log),
		LongestStreak:  calendar.LongestStreak(log),
		CompletedToday: calendar.CompletedOn(log, vs.today),
	}
}

// Grid returns the rolling week grid of one habit ending with the current week.
func (s *ViewService) Grid(ctx context.Context, habitID, userID string, opts ViewOptions) (*domain.HabitGrid, error) {
	vs, err := s.resolve(ctx, userID, opts)
	if err != nil {
		return nil, err
	}

	habit, err := s.ownedHabit(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	// Streaks need the whole history up to today, not only the visible window.
	log, err := s.log(ctx, habitID, "", vs.today)
	if err != nil {
		return nil, err
	}

	view := habitGrid(habit, log, vs)
	return &view, nil
}

// Calendar returns one month page of a habit, padded to whole weeks.
func (s *ViewService) Calendar(ctx context.Context, habitID, userID string, opts ViewOptions) (*domain.HabitCalendar, error) {
	vs, err := s.resolve(ctx, userID, opts)
	if err != nil {
		return nil, err
	}

	ym := calendar.YearMonthOf(vs.now)
	if opts.Month != "" {
		ym, err = calendar.ParseYearMonth(opts.Month)
		if err != nil {
			return nil, err
		}
	}

	habit, err := s.ownedHabit(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	from, to := calendar.MonthRange(ym, vs.weekStart)
	log, err := s.log(ctx, habitID, from, to)
	if err != nil {
		return nil, err
	}

	return &domain.HabitCalendar{
		Habit: habit,
		Month: calendar.BuildMonth(log, vs.now, ym, vs.weekStart),
	}, nil
}

func (s *ViewService) Streak(ctx context.Context, habitID, userID string, opts ViewOptions) (*domain.StreakSummary, error) {
	vs, err := s.resolve(ctx, userID, opts)
	if err != nil {
		return nil, err
	}

	if _, err := s.ownedHabit(ctx, habitID, userID); err != nil {
		return nil, err
	}

	log, err := s.log(ctx, habitID, "", vs.today)
	if err != nil {
		return nil, err
	}

	last, _ := calendar.LastCompleted(log)
	return &domain.StreakSummary{
		HabitID:        habitID,
		Current:        calendar.CurrentStreak(log),
		Longest:        calendar.LongestStreak(log),
		LastCompleted:  last,
		CompletedToday: calendar.CompletedOn(log, vs.today),
	}, nil
}

// Overview builds a grid for every active habit of the user. All grids share
// one clock reading, so they agree on "today".
func (s *ViewService) Overview(ctx context.Context, userID string, opts ViewOptions) (*domain.Overview, error) {
	vs, err := s.resolve(ctx, userID, opts)
	if err != nil {
		return nil, err
	}

	habits, err := s.habits.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.entries.ListByUserIDAndDateRange(ctx, userID, "", vs.today)
	if err != nil {
		return nil, err
	}

	byHabit := make(map[string][]*domain.HabitEntry)
	for _, e := range entries {
		byHabit[e.HabitID] = append(byHabit[e.HabitID], e)
	}

	overview := &domain.Overview{
		Today:     vs.today,
		WeekStart: calendar.WeekdayName(vs.weekStart),
		Weeks:     vs.weeks,
		Habits:    make([]domain.HabitGrid, 0, len(habits)),
	}

	for _, h := range habits {
		if h.IsArchived() {
			continue
		}
		overview.Habits = append(overview.Habits, habitGrid(h, domain.Events(byHabit[h.ID]), vs))
	}

	return overview, nil
}

// Now is the current instant in the user's zone, for callers that record
// completions against "today".
func (s *ViewService) Now(ctx context.Context, userID string, timezone string) (time.Time, error) {
	vs, err := s.resolve(ctx, userID, ViewOptions{Timezone: timezone})
	if err != nil {
		return time.Time{}, err
	}
	return vs.now, nil
}
