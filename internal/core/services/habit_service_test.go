package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/comitanigiacomo/kanso-grid/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
	"github.com/comitanigiacomo/kanso-grid/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

type habitFixture struct {
	repo   *repository.InMemoryHabitRepository
	groups *repository.InMemoryGroupRepository
	svc    *services.HabitService
}

func newHabitFixture() habitFixture {
	repo := repository.NewInMemoryHabitRepository()
	groups := repository.NewInMemoryGroupRepository(repo)
	return habitFixture{
		repo:   repo,
		groups: groups,
		svc:    services.NewHabitService(repo, groups),
	}
}

// failingHabitRepo answers every call with err.
type failingHabitRepo struct {
	domain.HabitRepository
	err error
}

func (f failingHabitRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return nil, f.err
}

func TestHabitService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Should create and persist a valid habit (Auto-ID)", func(t *testing.T) {
		f := newHabitFixture()

		created, err := f.svc.Create(ctx, services.CreateHabitInput{
			UserID: "user-1",
			Title:  "Read Book",
			Type:   domain.HabitTypeNumeric,
			Unit:   "pages",
		})

		require.NoError(t, err)
		assert.Equal(t, "Read Book", created.Title)
		assert.Equal(t, 1, created.Version)
		assert.Equal(t, 1, created.TargetValue, "target is raised to at least 1")
		assert.NotEmpty(t, created.ID)

		stored, err := f.repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "pages", stored.Unit)
	})

	t.Run("Idempotency: Should return existing habit if ID exists (Sync Retry)", func(t *testing.T) {
		f := newHabitFixture()
		input := services.CreateHabitInput{ID: "retry-id", UserID: "user-1", Title: "Retry Habit"}

		first, err := f.svc.Create(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, "retry-id", first.ID)

		second, err := f.svc.Create(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, first.CreatedAt, second.CreatedAt)
	})

	t.Run("Security: ID owned by another user is a conflict", func(t *testing.T) {
		f := newHabitFixture()
		_, _ = f.svc.Create(ctx, services.CreateHabitInput{ID: "shared", UserID: "user-1", Title: "Mine"})

		_, err := f.svc.Create(ctx, services.CreateHabitInput{ID: "shared", UserID: "user-2", Title: "Theirs"})
		assert.ErrorIs(t, err, domain.ErrHabitConflict)
	})

	t.Run("Fail: Domain Validation Error (Blocked BEFORE DB)", func(t *testing.T) {
		f := newHabitFixture()

		_, err := f.svc.Create(ctx, services.CreateHabitInput{UserID: "user-1", Title: ""})
		assert.ErrorIs(t, err, domain.ErrHabitTitleEmpty)

		list, _ := f.repo.ListByUserID(ctx, "user-1")
		assert.Empty(t, list)
	})

	t.Run("Groups: must belong to the same user", func(t *testing.T) {
		f := newHabitFixture()
		g, _ := domain.NewGroup("user-2", "Other", "", "")
		require.NoError(t, f.groups.Create(ctx, g))

		_, err := f.svc.Create(ctx, services.CreateHabitInput{UserID: "user-1", Title: "Run", GroupID: &g.ID})
		assert.ErrorIs(t, err, domain.ErrGroupNotFound)

		_, err = f.svc.Create(ctx, services.CreateHabitInput{UserID: "user-1", Title: "Run", GroupID: ptr("missing")})
		assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	})

	t.Run("Fail: storage errors are returned", func(t *testing.T) {
		boom := errors.New("db down")
		svc := services.NewHabitService(failingHabitRepo{err: boom}, nil)

		_, err := svc.Create(ctx, services.CreateHabitInput{ID: "x", UserID: "user-1", Title: "T"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestHabitService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Should merge partial update and bump version", func(t *testing.T) {
		f := newHabitFixture()
		existing, _ := f.svc.Create(ctx, services.CreateHabitInput{UserID: "user-1", Title: "Old Title", Color: "#000000"})

		updated, err := f.svc.Update(ctx, services.UpdateHabitInput{
			ID:           existing.ID,
			UserID:       "user-1",
			Title:        "New Title",
			ReminderTime: ptr("07:00"),
			SortOrder:    ptr(4),
			Version:      1,
		})

		require.NoError(t, err)
		assert.Equal(t, "New Title", updated.Title)
		assert.Equal(t, "#000000", updated.Color, "unset fields keep their value")
		assert.Equal(t, "07:00", *updated.ReminderTime)
		assert.Equal(t, 4, updated.SortOrder)
		assert.Equal(t, 2, updated.Version)
	})

	t.Run("Success: empty reminder clears it", func(t *testing.T) {
		f := newHabitFixture()
		existing, _ := f.svc.Create(ctx, services.CreateHabitInput{UserID: "user-1", Title: "Wake", ReminderTime: "06:00"})

		updated, err := f.svc.Update(ctx, services.UpdateHabitInput{ID: existing.ID, UserID: "user-1", ReminderTime: ptr("")})
		require.NoError(t, err)
		assert.Nil(t, updated.ReminderTime)
	})

	t.Run("Fail: Security - Cannot update other user's habit (IDOR)", func(t *testing.T) {
		f := newHabitFixture()
		existing, _ := f.svc.Create(ctx, services.CreateHabitInput{UserID: "user-1", Title: "Secret Habit"})

		_, err := f.svc.Update(ctx, services.UpdateHabitInput{ID: existing.ID, UserID: "user-2", Title: "Hacked Title"})
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})

	t.Run("Optimistic Locking: Should fail if client has old version", func(t *testing.T) {
		f := newHabitFixture()
		existing, _ := f.svc.Create(ctx, services.CreateHabitInput{UserID: "user-1", Title: "V1"})
		_, err := f.svc.Update(ctx, services.UpdateHabitInput{ID: existing.ID, UserID: "user-1", Title: "V2"})
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, services.UpdateHabitInput{ID: existing.ID, UserID: "user-1", Title: "Override attempt", Version: 1})
		assert.ErrorIs(t, err, domain.ErrHabitConflict)
	})

	t.Run("Fail: Archived habits are read-only", func(t *testing.T) {
		f := newHabitFixture()
		existing, _ := f.svc.Create(ctx, services.CreateHabitInput{UserID: "user-1", Title: "Paused"})
		_, err := f.svc.Archive(ctx, existing.ID, "user-1")
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, services.UpdateHabitInput{ID: existing.ID, UserID: "user-1", Title: "Again"})
		assert.ErrorIs(t, err, domain.ErrHabitArchived)
	})
}

func TestHabitService_ArchiveRestore(t *testing.T) {
	ctx := context.Background()
	f := newHabitFixture()
	h, _ := f.svc.Create(ctx, services.CreateHabitInput{UserID: "user-1", Title: "Cycle"})

	archived, err := f.svc.Archive(ctx, h.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, archived.IsArchived())

	again, err := f.svc.Archive(ctx, h.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, archived.Version, again.Version, "archiving twice is a no-op")

	restored, err := f.svc.Restore(ctx, h.ID, "user-1")
	require.NoError(t, err)
	assert.False(t, restored.IsArchived())

	_, err = f.svc.Archive(ctx, h.ID, "user-2")
	assert.ErrorIs(t, err, domain.ErrHabitNotFound)
}

func TestHabitService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Should soft-delete", func(t *testing.T) {
		f := newHabitFixture()
		h, _ := f.svc.Create(ctx, services.CreateHabitInput{UserID: "user-1", Title: "To Delete"})

		require.NoError(t, f.svc.Delete(ctx, h.ID, "user-1"))

		_, err := f.repo.GetByID(ctx, h.ID)
		assert.Equal(t, domain.ErrHabitNotFound, err)

		changes, _ := f.svc.GetDelta(ctx, "user-1", time.Time{})
		require.Len(t, changes, 1)
		assert.NotNil(t, changes[0].DeletedAt)
	})

	t.Run("Fail: Security - Cannot delete other user's habit (IDOR)", func(t *testing.T) {
		f := newHabitFixture()
		h, _ := f.svc.Create(ctx, services.CreateHabitInput{UserID: "user-1", Title: "Don't Touch"})

		assert.ErrorIs(t, f.svc.Delete(ctx, h.ID, "user-2"), domain.ErrHabitNotFound)
	})

	t.Run("Fail: Delete non-existent habit", func(t *testing.T) {
		f := newHabitFixture()
		assert.ErrorIs(t, f.svc.Delete(ctx, "ghost-id", "user-1"), domain.ErrHabitNotFound)
	})
}

func TestHabitService_ListByUserID(t *testing.T) {
	ctx := context.Background()
	f := newHabitFixture()

	h1, _ := f.svc.Create(ctx, services.CreateHabitInput{UserID: "user-1", Title: "H1"})
	h2, _ := f.svc.Create(ctx, services.CreateHabitInput{UserID: "user-1", Title: "H2"})
	h3, _ := f.svc.Create(ctx, services.CreateHabitInput{UserID: "user-2", Title: "H3"})

	list, err := f.svc.ListByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	ids := map[string]bool{}
	for _, h := range list {
		ids[h.ID] = true
	}
	assert.True(t, ids[h1.ID])
	assert.True(t, ids[h2.ID])
	assert.False(t, ids[h3.ID])

	empty, err := f.svc.ListByUserID(ctx, "user-999")
	require.NoError(t, err)
	assert.Len(t, empty, 0)
}
