package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-grid/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-grid/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-grid/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-grid/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
	"github.com/comitanigiacomo/kanso-grid/internal/core/services"
)

// testNow is a Wednesday.
var testNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

type testApp struct {
	router  *gin.Engine
	habits  *repository.InMemoryHabitRepository
	entries *repository.InMemoryEntryRepository
	groups  *repository.InMemoryGroupRepository
	prefs   *repository.InMemoryPreferenceRepository
}

// headerAuth stands in for the JWT middleware: the caller picks its user
// with X-User-ID.
func headerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader("X-User-ID"); id != "" {
			middleware.SetUserID(c, id)
		}
		c.Next()
	}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := &testApp{
		habits:  repository.NewInMemoryHabitRepository(),
		entries: repository.NewInMemoryEntryRepository(),
		prefs:   repository.NewInMemoryPreferenceRepository(),
	}
	app.groups = repository.NewInMemoryGroupRepository(app.habits)

	prefSvc := services.NewPreferenceService(app.prefs)
	viewSvc := services.NewViewService(app.habits, app.entries, prefSvc).WithClock(func() time.Time { return testNow })
	entrySvc := services.NewEntryService(app.entries, app.habits, nil)

	app.router = gin.New()
	api := app.router.Group("/api/v1")
	api.Use(headerAuth())

	adapterHTTP.NewHabitHandler(services.NewHabitService(app.habits, app.groups)).RegisterRoutes(api)
	adapterHTTP.NewViewHandler(viewSvc, entrySvc).RegisterRoutes(api)
	adapterHTTP.NewEntryHandler(entrySvc).RegisterRoutes(api)
	adapterHTTP.NewStatsHandler(services.NewStatsService(app.habits, app.entries), viewSvc).RegisterRoutes(api)
	adapterHTTP.NewPreferenceHandler(prefSvc).RegisterRoutes(api)
	adapterHTTP.NewGroupHandler(services.NewGroupService(app.groups)).RegisterRoutes(api)

	return app
}

func (a *testApp) do(method, path, userID string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (a *testApp) seedHabit(t *testing.T, userID, title string) *domain.Habit {
	t.Helper()
	h, err := domain.NewHabit(title, userID)
	require.NoError(t, err)
	require.NoError(t, a.habits.Create(context.Background(), h))
	return h
}

func (a *testApp) seedEntry(t *testing.T, h *domain.Habit, date string, status calendar.Status) *domain.HabitEntry {
	t.Helper()
	e := domain.NewHabitEntry(h.ID, h.UserID, date, status, 1)
	require.NoError(t, a.entries.Create(context.Background(), e))
	return e
}

func (a *testApp) completed(t *testing.T, h *domain.Habit, date string) bool {
	t.Helper()
	list, err := a.entries.ListByHabitID(context.Background(), h.ID, date, date)
	require.NoError(t, err)
	for _, e := range list {
		if e.IsCompleted() {
			return true
		}
	}
	return false
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, code int) {
	t.Helper()
	require.Equal(t, code, w.Code, w.Body.String())
}

