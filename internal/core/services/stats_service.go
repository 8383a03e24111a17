package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-grid/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
)

const (
	maxStatsDays = 366
	progressDays = 30
)

type StatsService struct {
	habitRepo domain.HabitRepository
	entryRepo domain.HabitEntryRepository
}

func NewStatsService(habitRepo domain.HabitRepository, entryRepo domain.HabitEntryRepository) *StatsService {
	return &StatsService{
		habitRepo: habitRepo,
		entryRepo: entryRepo,
	}
}

type dayTotal struct {
	value     int
	completed bool
}

// achieved reports whether a day counts as done: an explicit completion, or
// enough value logged on a measured habit.
func (d *dayTotal) achieved(h *domain.Habit) bool {
	if d == nil {
		return false
	}
	return d.completed || (h.Type != domain.HabitTypeBoolean && d.value >= h.TargetValue)
}

// dayTotals folds live, non-skipped entries into per-habit, per-day totals.
func dayTotals(entries []*domain.HabitEntry) map[string]map[string]*dayTotal {
	totals := make(map[string]map[string]*dayTotal)
	for _, e := range entries {
		if e.DeletedAt != nil || e.Status == calendar.StatusSkipped {
			continue
		}
		if _, exists := totals[e.HabitID]; !exists {
			totals[e.HabitID] = make(map[string]*dayTotal)
		}
		day, ok := totals[e.HabitID][e.Date]
		if !ok {
			day = &dayTotal{}
			totals[e.HabitID][e.Date] = day
		}
		day.value += e.Value
		if e.Status == calendar.StatusCompleted {
			day.completed = true
		}
	}
	return totals
}

// dayKeys lists the keys from start to end inclusive, at most limit of them.
func dayKeys(start, end string, limit int) []string {
	keys := make([]string, 0)
	for key := start; key != "" && key <= end && len(keys) < limit; key = calendar.AddDays(key, 1) {
		keys = append(keys, key)
	}
	return keys
}

func emptyWeekdayCounts() map[string]int {
	counts := make(map[string]int, calendar.DaysPerWeek)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		counts[calendar.WeekdayName(wd)] = 0
	}
	return counts
}

// GetWeeklyStats aggregates the entries of every active habit between the
// local days of StartDate and EndDate, both inclusive.
func (s *StatsService) GetWeeklyStats(ctx context.Context, input domain.StatsInput) (*domain.WeeklyStats, error) {
	loc := input.Location
	if loc == nil {
		loc = time.UTC
	}

	startKey := calendar.ToLocalDateKey(input.StartDate.In(loc))
	endKey := calendar.ToLocalDateKey(input.EndDate.In(loc))
	if endKey < startKey {
		startKey, endKey = endKey, startKey
	}

	allHabits, err := s.habitRepo.ListByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	habits := make([]*domain.Habit, 0, len(allHabits))
	for _, h := range allHabits {
		if !h.IsArchived() {
			habits = append(habits, h)
		}
	}

	entries, err := s.entryRepo.ListByUserIDAndDateRange(ctx, input.UserID, startKey, endKey)
	if err != nil {
		return nil, err
	}

	entriesMap := dayTotals(entries)
	days := dayKeys(startKey, endKey, maxStatsDays)

	stats := &domain.WeeklyStats{
		StartDate:          startKey,
		EndDate:            endKey,
		TotalHabits:        len(habits),
		WeekdayCompletions: emptyWeekdayCounts(),
		HabitStats:         make([]domain.HabitStat, 0, len(habits)),
	}

	totalDaysPossible := 0
	totalDaysCompleted := 0

	for _, h := range habits {
		hStat := domain.HabitStat{
			HabitID:          h.ID,
			HabitTitle:       h.Title,
			Color:            h.Color,
			Icon:             h.Icon,
			TargetValue:      h.TargetValue,
			Unit:             h.Unit,
			DailyProgress:    make([]int, 0, len(days)),
			CurrentStreak:    h.CurrentStreak,
			LongestStreak:    h.LongestStreak,
			TotalCompletions: h.TotalCompletions,
			TotalSkips:       h.TotalSkips,
			LifetimeRate:     h.CompletionRate(),
		}

		daysAchieved := 0

		for _, dateKey := range days {
			day := entriesMap[h.ID][dateKey]

			val := 0
			if day != nil {
				val = day.value
			}
			hStat.TotalValue += val
			hStat.DailyProgress = append(hStat.DailyProgress, val)

			if day.achieved(h) {
				daysAchieved++
				totalDaysCompleted++
				if wd, ok := calendar.WeekdayOf(dateKey); ok {
					stats.WeekdayCompletions[calendar.WeekdayName(wd)]++
				}
			}
			totalDaysPossible++
		}

		hStat.DaysCompleted = daysAchieved
		if len(days) > 0 {
			hStat.CompletionRate = float64(daysAchieved) / float64(len(days)) * 100
		}

		stats.HabitStats = append(stats.HabitStats, hStat)
	}

	if totalDaysPossible > 0 {
		stats.OverallRate = float64(totalDaysCompleted) / float64(totalDaysPossible) * 100
	}
	stats.TotalCompletions = totalDaysCompleted
	if len(days) > 0 {
		stats.AveragePerDay = domain.Round2(float64(totalDaysCompleted) / float64(len(days)))
	}

	return stats, nil
}

// HabitProgress summarizes the progressDays days ending on today, a date key
// in the user's zone.
func (s *StatsService) HabitProgress(ctx context.Context, userID, habitID, today string) (*domain.HabitProgress, error) {
	if !calendar.IsDateKey(today) {
		return nil, domain.ErrInvalidDate
	}

	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	startKey := calendar.AddDays(today, -(progressDays - 1))
	entries, err := s.entryRepo.ListByHabitID(ctx, habitID, startKey, today)
	if err != nil {
		return nil, err
	}

	totals := dayTotals(entries)[habitID]

	progress := &domain.HabitProgress{
		HabitID:          habit.ID,
		HabitTitle:       habit.Title,
		StartDate:        startKey,
		EndDate:          today,
		Days:             progressDays,
		DailyProgress:    make(map[string]int, len(totals)),
		CurrentStreak:    habit.CurrentStreak,
		LongestStreak:    habit.LongestStreak,
		TotalCompletions: habit.TotalCompletions,
		TotalSkips:       habit.TotalSkips,
		LifetimeRate:     habit.CompletionRate(),
	}

	for _, dateKey := range dayKeys(startKey, today, progressDays) {
		day, ok := totals[dateKey]
		if !ok {
			continue
		}
		progress.DailyProgress[dateKey] = day.value
		if day.achieved(habit) {
			progress.DaysCompleted++
		}
	}
	progress.CompletionRate = domain.Round2(float64(progress.DaysCompleted) / float64(progressDays) * 100)

	return progress, nil
}
