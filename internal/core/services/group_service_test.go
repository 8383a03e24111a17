package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-grid/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
	"github.com/comitanigiacomo/kanso-grid/internal/core/services"
)

func TestGroupService(t *testing.T) {
	ctx := context.Background()

	habits := repository.NewInMemoryHabitRepository()
	groups := repository.NewInMemoryGroupRepository(habits)
	svc := services.NewGroupService(groups)
	habitSvc := services.NewHabitService(habits, groups)

	health, err := svc.Create(ctx, services.GroupInput{UserID: "user-1", Name: "  Health "})
	require.NoError(t, err)
	assert.Equal(t, "Health", health.Name)
	assert.Equal(t, domain.DefaultColor, health.Color)

	_, err = svc.Create(ctx, services.GroupInput{UserID: "user-1", Name: "Work", Color: "#123456"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, services.GroupInput{UserID: "user-2", Name: "Theirs"})
	require.NoError(t, err)

	t.Run("List is scoped to the user", func(t *testing.T) {
		list, err := svc.List(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Health", list[0].Name)
		assert.Equal(t, "Work", list[1].Name)
	})

	t.Run("Fail: invalid input", func(t *testing.T) {
		_, err := svc.Create(ctx, services.GroupInput{UserID: "user-1", Name: " "})
		assert.ErrorIs(t, err, domain.ErrGroupNameEmpty)

		_, err = svc.Create(ctx, services.GroupInput{UserID: "user-1", Name: "X", Color: "red"})
		assert.ErrorIs(t, err, domain.ErrInvalidColor)
	})

	t.Run("Update keeps unset fields", func(t *testing.T) {
		updated, err := svc.Update(ctx, health.ID, services.GroupInput{UserID: "user-1", Icon: "heart"})
		require.NoError(t, err)
		assert.Equal(t, "Health", updated.Name)
		assert.Equal(t, "heart", updated.Icon)

		_, err = svc.Update(ctx, health.ID, services.GroupInput{UserID: "user-2", Name: "Stolen"})
		assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	})

	t.Run("Delete ungroups habits", func(t *testing.T) {
		h, err := habitSvc.Create(ctx, services.CreateHabitInput{UserID: "user-1", Title: "Run", GroupID: &health.ID})
		require.NoError(t, err)
		require.NotNil(t, h.GroupID)

		assert.ErrorIs(t, svc.Delete(ctx, health.ID, "user-2"), domain.ErrGroupNotFound)
		require.NoError(t, svc.Delete(ctx, health.ID, "user-1"))

		stored, err := habits.GetByID(ctx, h.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.GroupID)
		assert.Equal(t, 2, stored.Version)

		assert.ErrorIs(t, svc.Delete(ctx, health.ID, "user-1"), domain.ErrGroupNotFound)
	})
}
