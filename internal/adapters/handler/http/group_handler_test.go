package http_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
)

func TestGroupHandler(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/groups", "user-1", `{"name": "Health", "color": "#00AA00", "icon": "heart"}`)
	assertStatus(t, w, http.StatusCreated)
	group := decode[domain.Group](t, w)
	require.NotEmpty(t, group.ID)

	t.Run("List only shows own groups", func(t *testing.T) {
		list := decode[[]domain.Group](t, app.do(http.MethodGet, "/groups", "user-1", nil))
		require.Len(t, list, 1)
		assert.Equal(t, "Health", list[0].Name)

		assert.Empty(t, decode[[]domain.Group](t, app.do(http.MethodGet, "/groups", "user-2", nil)))
	})

	t.Run("Validation", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, app.do(http.MethodPost, "/groups", "user-1", `{}`).Code)
		assert.Equal(t, http.StatusBadRequest, app.do(http.MethodPost, "/groups", "user-1", `{"name": "X", "color": "green"}`).Code)
	})

	t.Run("Update", func(t *testing.T) {
		w := app.do(http.MethodPut, "/groups/"+group.ID, "user-1", `{"name": "Body"}`)
		assertStatus(t, w, http.StatusOK)
		assert.Equal(t, "Body", decode[domain.Group](t, w).Name)

		assert.Equal(t, http.StatusNotFound, app.do(http.MethodPut, "/groups/"+group.ID, "user-2", `{"name": "Mine"}`).Code)
	})

	t.Run("Delete detaches habits", func(t *testing.T) {
		w := app.do(http.MethodPost, "/habits", "user-1", map[string]any{"title": "Yoga", "group_id": group.ID})
		assertStatus(t, w, http.StatusCreated)
		habit := decode[domain.Habit](t, w)
		require.NotNil(t, habit.GroupID)

		assert.Equal(t, http.StatusNotFound, app.do(http.MethodDelete, "/groups/"+group.ID, "user-2", nil).Code)
		assert.Equal(t, http.StatusNoContent, app.do(http.MethodDelete, "/groups/"+group.ID, "user-1", nil).Code)

		stored, err := app.habits.GetByID(context.Background(), habit.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.GroupID)
		assert.Empty(t, decode[[]domain.Group](t, app.do(http.MethodGet, "/groups", "user-1", nil)))
	})
}
