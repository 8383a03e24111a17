package http_test

import (
	"context"
	"net/http"
	"testing"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-grid/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
	"github.com/comitanigiacomo/kanso-grid/internal/core/services"
)

func TestViewHandler_Grid(t *testing.T) {
	app := newTestApp(t)
	h := app.seedHabit(t, "user-1", "Meditate")
	app.seedEntry(t, h, "2025-01-13", calendar.StatusCompleted)
	app.seedEntry(t, h, "2025-01-14", calendar.StatusCompleted)
	app.seedEntry(t, h, "2025-01-15", calendar.StatusCompleted)
	app.seedEntry(t, h, "2025-01-10", calendar.StatusSkipped)

	t.Run("Builds the requested window", func(t *testing.T) {
		w := app.do(http.MethodGet, "/habits/"+h.ID+"/grid?weeks=2", "user-1", nil)
		assertStatus(t, w, http.StatusOK)

		view := decode[domain.HabitGrid](t, w)
		require.Len(t, view.Grid, 2)
		assert.Equal(t, "2025-01-06", view.Grid[0][0].Date)
		assert.Equal(t, "2025-01-19", view.Grid[1][6].Date)
		assert.Equal(t, 3, view.Completed)
		assert.Equal(t, 3, view.Streak)
		assert.True(t, view.CompletedToday)

		today, ok := view.Grid.Today()
		require.True(t, ok)
		assert.Equal(t, "2025-01-15", today.Date)
		assert.True(t, view.Grid[1][3].IsFuture)
	})

	t.Run("Week start override", func(t *testing.T) {
		w := app.do(http.MethodGet, "/habits/"+h.ID+"/grid?weeks=1&week_start=sunday", "user-1", nil)
		assertStatus(t, w, http.StatusOK)

		view := decode[domain.HabitGrid](t, w)
		require.Len(t, view.Grid, 1)
		assert.Equal(t, "2025-01-12", view.Grid[0][0].Date)
	})

	t.Run("Stored preference applies without overrides", func(t *testing.T) {
		app := newTestApp(t)
		h := app.seedHabit(t, "user-1", "Prefs")
		assertStatus(t, app.do(http.MethodPut, "/preferences", "user-1", `{"grid_weeks": 4}`), http.StatusOK)

		view := decode[domain.HabitGrid](t, app.do(http.MethodGet, "/habits/"+h.ID+"/grid", "user-1", nil))
		assert.Len(t, view.Grid, 4)
	})

	t.Run("Rejects bad overrides", func(t *testing.T) {
		for _, query := range []string{"weeks=abc", "weeks=99", "weeks=-1", "weeks=0", "weeks=00", "tz=Mars/Olympus"} {
			w := app.do(http.MethodGet, "/habits/"+h.ID+"/grid?"+query, "user-1", nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, query)
		}
	})

	t.Run("An explicit zero is rejected, not read as unset", func(t *testing.T) {
		w := app.do(http.MethodGet, "/habits/"+h.ID+"/grid?weeks=0", "user-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "weeks must be at least 1")

		w = app.do(http.MethodGet, "/overview?weeks=0", "user-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Other users get 404", func(t *testing.T) {
		w := app.do(http.MethodGet, "/habits/"+h.ID+"/grid", "user-2", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestViewHandler_Calendar(t *testing.T) {
	app := newTestApp(t)
	h := app.seedHabit(t, "user-1", "Journal")
	app.seedEntry(t, h, "2024-12-31", calendar.StatusCompleted)
	app.seedEntry(t, h, "2025-01-01", calendar.StatusCompleted)

	t.Run("Current month by default", func(t *testing.T) {
		w := app.do(http.MethodGet, "/habits/"+h.ID+"/calendar", "user-1", nil)
		assertStatus(t, w, http.StatusOK)

		page := decode[domain.HabitCalendar](t, w)
		assert.Equal(t, "2025-01", page.Month.Month.String())
		assert.Equal(t, "2024-12", page.Month.Prev.String())
		assert.Equal(t, "2025-02", page.Month.Next.String())

		first := page.Month.Weeks[0]
		assert.Equal(t, "2024-12-30", first[0].Date)
		assert.False(t, first[1].InWindow, "December padding is outside the month")
		assert.True(t, first[1].Completed)
		assert.True(t, first[2].InWindow)
		assert.True(t, first[2].Completed)
	})

	t.Run("Explicit month", func(t *testing.T) {
		w := app.do(http.MethodGet, "/habits/"+h.ID+"/calendar?month=2024-12", "user-1", nil)
		assertStatus(t, w, http.StatusOK)
		assert.Equal(t, "2024-12", decode[domain.HabitCalendar](t, w).Month.Month.String())
	})

	t.Run("Malformed month", func(t *testing.T) {
		w := app.do(http.MethodGet, "/habits/"+h.ID+"/calendar?month=2025-13", "user-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestViewHandler_Streak(t *testing.T) {
	app := newTestApp(t)
	h := app.seedHabit(t, "user-1", "Walk")
	for _, d := range []string{"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-04", "2025-01-13", "2025-01-14"} {
		app.seedEntry(t, h, d, calendar.StatusCompleted)
	}

	w := app.do(http.MethodGet, "/habits/"+h.ID+"/streak", "user-1", nil)
	assertStatus(t, w, http.StatusOK)

	summary := decode[domain.StreakSummary](t, w)
	assert.Equal(t, 2, summary.Current)
	assert.Equal(t, 4, summary.Longest)
	assert.Equal(t, "2025-01-14", summary.LastCompleted)
	assert.False(t, summary.CompletedToday)
}

func TestViewHandler_Toggle(t *testing.T) {
	app := newTestApp(t)
	h := app.seedHabit(t, "user-1", "Stretch")

	t.Run("Flips a past day on and off", func(t *testing.T) {
		w := app.do(http.MethodPost, "/habits/"+h.ID+"/toggle", "user-1", `{"date": "2025-01-10"}`)
		assertStatus(t, w, http.StatusOK)
		result := decode[services.ToggleResult](t, w)
		assert.True(t, result.Completed)
		assert.Equal(t, "2025-01-10", result.Date)
		assert.True(t, app.completed(t, h, "2025-01-10"))

		w = app.do(http.MethodPost, "/habits/"+h.ID+"/toggle", "user-1", `{"date": "2025-01-10"}`)
		assertStatus(t, w, http.StatusOK)
		assert.False(t, decode[services.ToggleResult](t, w).Completed)
		assert.False(t, app.completed(t, h, "2025-01-10"))
	})

	t.Run("No body toggles today", func(t *testing.T) {
		w := app.do(http.MethodPost, "/habits/"+h.ID+"/toggle", "user-1", nil)
		assertStatus(t, w, http.StatusOK)
		assert.Equal(t, "2025-01-15", decode[services.ToggleResult](t, w).Date)
		assert.True(t, app.completed(t, h, "2025-01-15"))
	})

	t.Run("Today follows the requested zone", func(t *testing.T) {
		// 12:00 UTC is already the 16th in Auckland.
		w := app.do(http.MethodPost, "/habits/"+h.ID+"/toggle?tz=Pacific/Auckland", "user-1", nil)
		assertStatus(t, w, http.StatusOK)
		assert.Equal(t, "2025-01-16", decode[services.ToggleResult](t, w).Date)
	})

	t.Run("Future days are refused", func(t *testing.T) {
		w := app.do(http.MethodPost, "/habits/"+h.ID+"/toggle", "user-1", `{"date": "2025-01-17"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.False(t, app.completed(t, h, "2025-01-17"))
	})

	t.Run("Malformed days are refused", func(t *testing.T) {
		for _, body := range []string{`{"date": "15/01/2025"}`, `{"date": "2025-02-30"}`, `{"date": 5}`} {
			w := app.do(http.MethodPost, "/habits/"+h.ID+"/toggle", "user-1", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
		}
	})

	t.Run("Other users are refused", func(t *testing.T) {
		w := app.do(http.MethodPost, "/habits/"+h.ID+"/toggle", "user-2", `{"date": "2025-01-10"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestViewHandler_Complete(t *testing.T) {
	app := newTestApp(t)
	h := app.seedHabit(t, "user-1", "Water")

	for i := 0; i < 2; i++ {
		w := app.do(http.MethodPost, "/habits/"+h.ID+"/complete", "user-1", nil)
		assertStatus(t, w, http.StatusOK)
		result := decode[services.ToggleResult](t, w)
		assert.True(t, result.Completed)
		assert.Equal(t, "2025-01-15", result.Date)
	}

	w := app.do(http.MethodGet, "/habits/"+h.ID+"/logs?from=2025-01-15&to=2025-01-15", "user-1", nil)
	assertStatus(t, w, http.StatusOK)
	assert.Len(t, decode[[]domain.HabitEntry](t, w), 1, "completing twice records one entry")
}

func TestViewHandler_Logs(t *testing.T) {
	app := newTestApp(t)
	h := app.seedHabit(t, "user-1", "Read")
	app.seedEntry(t, h, "2025-01-02", calendar.StatusCompleted)
	app.seedEntry(t, h, "2025-01-09", calendar.StatusPartial)

	t.Run("Whole log", func(t *testing.T) {
		list := decode[[]domain.HabitEntry](t, app.do(http.MethodGet, "/habits/"+h.ID+"/logs", "user-1", nil))
		require.Len(t, list, 2)
		assert.Equal(t, "2025-01-02", list[0].Date)
	})

	t.Run("Bounded", func(t *testing.T) {
		list := decode[[]domain.HabitEntry](t, app.do(http.MethodGet, "/habits/"+h.ID+"/logs?from=2025-01-05", "user-1", nil))
		require.Len(t, list, 1)
		assert.Equal(t, calendar.StatusPartial, list[0].Status)
	})

	t.Run("Bad bound", func(t *testing.T) {
		w := app.do(http.MethodGet, "/habits/"+h.ID+"/logs?from=last-week", "user-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestViewHandler_Overview(t *testing.T) {
	app := newTestApp(t)
	active := app.seedHabit(t, "user-1", "Active")
	app.seedEntry(t, active, "2025-01-14", calendar.StatusCompleted)
	app.seedEntry(t, active, "2025-01-15", calendar.StatusCompleted)

	archived, err := domain.NewHabit("Old", "user-1")
	require.NoError(t, err)
	archived.Archive()
	require.NoError(t, app.habits.Create(context.Background(), archived))

	app.seedHabit(t, "user-2", "Someone else")

	w := app.do(http.MethodGet, "/overview?weeks=3&week_start=sunday", "user-1", nil)
	assertStatus(t, w, http.StatusOK)

	overview := decode[domain.Overview](t, w)
	assert.Equal(t, "2025-01-15", overview.Today)
	assert.Equal(t, "sunday", overview.WeekStart)
	assert.Equal(t, 3, overview.Weeks)
	require.Len(t, overview.Habits, 1)

	grid := overview.Habits[0]
	assert.Equal(t, active.ID, grid.Habit.ID)
	assert.Len(t, grid.Grid, 3)
	assert.Equal(t, 2, grid.Streak)
	assert.True(t, grid.CompletedToday)
}
