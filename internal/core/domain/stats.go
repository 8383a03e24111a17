package domain

import (
	"time"

	"github.com/comitanigiacomo/kanso-grid/internal/core/calendar"
)

// WeeklyStats aggregates a range of days. WeekdayCompletions is keyed by
// lower-case weekday name with all seven days present.
type WeeklyStats struct {
	StartDate          string         `json:"start_date"`
	EndDate            string         `json:"end_date"`
	TotalHabits        int            `json:"total_habits"`
	OverallRate        float64        `json:"overall_completion_rate"`
	TotalCompletions   int            `json:"total_completions"`
	AveragePerDay      float64        `json:"average_per_day"`
	WeekdayCompletions map[string]int `json:"weekday_completions"`
	HabitStats         []HabitStat    `json:"habits"`
}

type HabitStat struct {
	HabitID        string  `json:"habit_id"`
	HabitTitle     string  `json:"habit_title"`
	Color          string  `json:"color"`
	Icon           string  `json:"icon"`
	TargetValue    int     `json:"target_value"`
	Unit           string  `json:"unit"`
	TotalValue     int     `json:"total_value"`
	CompletionRate float64 `json:"completion_rate"`
	DaysCompleted  int     `json:"days_completed"`
	DailyProgress  []int   `json:"daily_progress"`
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`

	// Lifetime counters, independent of the requested range.
	TotalCompletions int     `json:"total_completions"`
	TotalSkips       int     `json:"total_skips"`
	LifetimeRate     float64 `json:"lifetime_completion_rate"`
}

// HabitProgress is the trailing window of one habit, ending today.
type HabitProgress struct {
	HabitID          string         `json:"habit_id"`
	HabitTitle       string         `json:"habit_title"`
	StartDate        string         `json:"start_date"`
	EndDate          string         `json:"end_date"`
	Days             int            `json:"days"`
	DaysCompleted    int            `json:"days_completed"`
	CompletionRate   float64        `json:"completion_rate"`
	DailyProgress    map[string]int `json:"daily_progress"`
	CurrentStreak    int            `json:"current_streak"`
	LongestStreak    int            `json:"longest_streak"`
	TotalCompletions int            `json:"total_completions"`
	TotalSkips       int            `json:"total_skips"`
	LifetimeRate     float64        `json:"lifetime_completion_rate"`
}

type StatsInput struct {
	UserID    string
	StartDate time.Time
	EndDate   time.Time
	Location  *time.Location
}

// StreakSummary is the streak view of one habit's full log.
type StreakSummary struct {
	HabitID        string `json:"habit_id"`
	Current        int    `json:"current"`
	Longest        int    `json:"longest"`
	LastCompleted  string `json:"last_completed,omitempty"`
	CompletedToday bool   `json:"completed_today"`
}

// HabitGrid pairs a habit with its rolling grid.
type HabitGrid struct {
	Habit          *Habit        `json:"habit"`
	Grid           calendar.Grid `json:"grid"`
	Completed      int           `json:"completed"`
	Streak         int           `json:"streak"`
	LongestStreak  int           `json:"longest_streak"`
	CompletedToday bool          `json:"completed_today"`
}

// HabitCalendar pairs a habit with one month page.
type HabitCalendar struct {
	Habit *Habit         `json:"habit"`
	Month calendar.Month `json:"calendar"`
}

// Overview is the dashboard: one grid per active habit, sharing a week start
// and a single "today".
type Overview struct {
	Today     string      `json:"today"`
	WeekStart string      `json:"week_start"`
	Weeks     int         `json:"weeks"`
	Habits    []HabitGrid `json:"habits"`
}
