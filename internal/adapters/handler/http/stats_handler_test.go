package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-grid/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-grid/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-grid/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
	"github.com/comitanigiacomo/kanso-grid/internal/core/services"
)

type MockHabitRepoForStats struct {
	mock.Mock
}

func (m *MockHabitRepoForStats) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Habit), args.Error(1)
}

func (m *MockHabitRepoForStats) Create(ctx context.Context, h *domain.Habit) error { return nil }
func (m *MockHabitRepoForStats) Update(ctx context.Context, h *domain.Habit) error { return nil }
func (m *MockHabitRepoForStats) Delete(ctx context.Context, id string) error       { return nil }
func (m *MockHabitRepoForStats) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return nil, domain.ErrHabitNotFound
}
func (m *MockHabitRepoForStats) GetChanges(ctx context.Context, u string, t time.Time) ([]*domain.Habit, error) {
	return nil, nil
}
func (m *MockHabitRepoForStats) UpdateCounters(ctx context.Context, id string, c domain.HabitCounters) error {
	return nil
}

func setupStatsRouter() (*gin.Engine, *MockHabitRepoForStats) {
	gin.SetMode(gin.TestMode)

	habitRepo := new(MockHabitRepoForStats)
	entryRepo := repository.NewInMemoryEntryRepository()

	views := services.NewViewService(habitRepo, entryRepo, nil).WithClock(func() time.Time { return testNow })
	handler := adapterHTTP.NewStatsHandler(services.NewStatsService(habitRepo, entryRepo), views)

	r := gin.New()
	r.Use(headerAuth())
	handler.RegisterRoutes(r.Group("/api/v1"))

	return r, habitRepo
}

func TestGetWeeklyStats(t *testing.T) {
	app := newTestApp(t)
	h := app.seedHabit(t, "user-1", "Floss")
	for _, d := range []string{"2025-01-08", "2025-01-13", "2025-01-14", "2025-01-15"} {
		app.seedEntry(t, h, d, calendar.StatusCompleted)
	}

	t.Run("Success: Defaults to the last seven days", func(t *testing.T) {
		w := app.do(http.MethodGet, "/stats/weekly", "user-1", nil)
		assertStatus(t, w, http.StatusOK)

		stats := decode[domain.WeeklyStats](t, w)
		assert.Equal(t, "2025-01-09", stats.StartDate)
		assert.Equal(t, "2025-01-15", stats.EndDate)
		assert.Equal(t, 1, stats.TotalHabits)
		require.Len(t, stats.HabitStats, 1)
		assert.Equal(t, 3, stats.HabitStats[0].DaysCompleted)
		assert.Len(t, stats.HabitStats[0].DailyProgress, 7)
		assert.Equal(t, 3, stats.TotalCompletions)
		assert.Equal(t, 0.43, stats.AveragePerDay)
		assert.Equal(t, 1, stats.WeekdayCompletions["monday"])
		assert.Equal(t, 1, stats.WeekdayCompletions["wednesday"])
		assert.Equal(t, 0, stats.WeekdayCompletions["sunday"])
	})

	t.Run("Success: A full year is counted in calendar days", func(t *testing.T) {
		w := app.do(http.MethodGet, "/stats/weekly?start_date=2024-01-16", "user-1", nil)
		assertStatus(t, w, http.StatusOK)

		stats := decode[domain.WeeklyStats](t, w)
		assert.Equal(t, "2024-01-16", stats.StartDate)
		assert.Equal(t, "2025-01-15", stats.EndDate)
		require.Len(t, stats.HabitStats, 1)
		assert.Len(t, stats.HabitStats[0].DailyProgress, 366)

		w = app.do(http.MethodGet, "/stats/weekly?start_date=2024-01-15", "user-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "367 days is over the limit")
	})

	t.Run("Success: A day that starts after a skipped midnight", func(t *testing.T) {
		w := app.do(http.MethodGet, "/stats/weekly?start_date=2025-03-08&end_date=2025-03-09&tz=America/Havana", "user-1", nil)
		assertStatus(t, w, http.StatusOK)

		stats := decode[domain.WeeklyStats](t, w)
		assert.Equal(t, "2025-03-08", stats.StartDate)
		assert.Equal(t, "2025-03-09", stats.EndDate)
		require.Len(t, stats.HabitStats, 1)
		assert.Len(t, stats.HabitStats[0].DailyProgress, 2)
	})

	t.Run("Success: Explicit range", func(t *testing.T) {
		w := app.do(http.MethodGet, "/stats/weekly?start_date=2025-01-08&end_date=2025-01-14", "user-1", nil)
		assertStatus(t, w, http.StatusOK)

		stats := decode[domain.WeeklyStats](t, w)
		assert.Equal(t, "2025-01-08", stats.StartDate)
		require.Len(t, stats.HabitStats, 1)
		assert.Equal(t, 3, stats.HabitStats[0].DaysCompleted)
	})

	t.Run("Fail: Bad parameters", func(t *testing.T) {
		queries := map[string]string{
			"bad end":          "end_date=15-01-2025",
			"bad start":        "start_date=2025/01/01",
			"start after end":  "start_date=2025-01-10&end_date=2025-01-01",
			"range too large":  "start_date=2023-01-01&end_date=2025-01-01",
			"unknown timezone": "tz=Atlantis/Capital",
		}
		for name, q := range queries {
			w := app.do(http.MethodGet, "/stats/weekly?"+q, "user-1", nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, name)
		}
	})

	t.Run("Fail: 401 without user", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodGet, "/stats/weekly", "", nil).Code)
	})
}

func TestHabitProgress(t *testing.T) {
	app := newTestApp(t)
	h := app.seedHabit(t, "user-1", "Floss")
	for _, d := range []string{"2024-12-16", "2024-12-17", "2025-01-15"} {
		app.seedEntry(t, h, d, calendar.StatusCompleted)
	}
	app.seedEntry(t, h, "2025-01-14", calendar.StatusSkipped)
	require.NoError(t, app.habits.UpdateCounters(context.Background(), h.ID,
		domain.HabitCounters{CurrentStreak: 1, LongestStreak: 2, TotalCompletions: 3, TotalSkips: 1}))

	t.Run("Success: Thirty days ending today", func(t *testing.T) {
		w := app.do(http.MethodGet, "/habits/"+h.ID+"/progress", "user-1", nil)
		assertStatus(t, w, http.StatusOK)

		progress := decode[domain.HabitProgress](t, w)
		assert.Equal(t, "Floss", progress.HabitTitle)
		assert.Equal(t, "2024-12-17", progress.StartDate)
		assert.Equal(t, "2025-01-15", progress.EndDate)
		assert.Equal(t, map[string]int{"2024-12-17": 1, "2025-01-15": 1}, progress.DailyProgress)
		assert.Equal(t, 2, progress.DaysCompleted)
		assert.Equal(t, 6.67, progress.CompletionRate)
		assert.Equal(t, 3, progress.TotalCompletions)
		assert.Equal(t, 1, progress.TotalSkips)
		assert.Equal(t, 75.0, progress.LifetimeRate)
	})

	t.Run("Fail: 404 for another user's habit", func(t *testing.T) {
		w := app.do(http.MethodGet, "/habits/"+h.ID+"/progress", "user-2", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Fail: 404 for an unknown habit", func(t *testing.T) {
		w := app.do(http.MethodGet, "/habits/missing/progress", "user-1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Fail: 400 for an unknown timezone", func(t *testing.T) {
		w := app.do(http.MethodGet, "/habits/"+h.ID+"/progress?tz=Atlantis/Capital", "user-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetWeeklyStats_RepositoryFailure(t *testing.T) {
	r, habitRepo := setupStatsRouter()
	habitRepo.On("ListByUserID", mock.Anything, "user-1").Return(nil, errors.New("db down"))

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/stats/weekly?start_date=2024-01-01&end_date=2024-01-07", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
	habitRepo.AssertExpectations(t)
}
