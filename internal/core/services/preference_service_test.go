package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-grid/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
	"github.com/comitanigiacomo/kanso-grid/internal/core/services"
)

type brokenPreferenceRepo struct {
	err error
}

func (b brokenPreferenceRepo) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	return nil, b.err
}

func (b brokenPreferenceRepo) Save(ctx context.Context, userID string, prefs *domain.Preferences) error {
	return b.err
}

func TestPreferenceService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults for a new user", func(t *testing.T) {
		svc := services.NewPreferenceService(repository.NewInMemoryPreferenceRepository())
		assert.Equal(t, domain.DefaultPreferences(), svc.Get(ctx, "user-1"))
	})

	t.Run("Fail-open when the store is down", func(t *testing.T) {
		svc := services.NewPreferenceService(brokenPreferenceRepo{err: errors.New("redis down")})
		assert.Equal(t, domain.DefaultPreferences(), svc.Get(ctx, "user-1"))
	})
}

func TestPreferenceService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: patch merges into stored values", func(t *testing.T) {
		svc := services.NewPreferenceService(repository.NewInMemoryPreferenceRepository())

		_, err := svc.Update(ctx, "user-1", domain.PreferencePatch{Theme: ptr("dark")})
		require.NoError(t, err)

		prefs, err := svc.Update(ctx, "user-1", domain.PreferencePatch{WeekStartsOn: ptr("Sunday")})
		require.NoError(t, err)

		assert.Equal(t, "dark", prefs.Theme)
		assert.Equal(t, "sunday", prefs.WeekStartsOn)
		assert.Equal(t, prefs, svc.Get(ctx, "user-1"))
	})

	t.Run("Fail: invalid values are not saved", func(t *testing.T) {
		svc := services.NewPreferenceService(repository.NewInMemoryPreferenceRepository())

		_, err := svc.Update(ctx, "user-1", domain.PreferencePatch{GridWeeks: ptr(0)})
		assert.ErrorIs(t, err, domain.ErrInvalidPreference)

		_, err = svc.Update(ctx, "user-1", domain.PreferencePatch{Timezone: ptr("Nowhere/Town")})
		assert.ErrorIs(t, err, domain.ErrInvalidPreference)

		assert.Equal(t, domain.DefaultPreferences(), svc.Get(ctx, "user-1"))
	})

	t.Run("Fail: store errors surface on write paths", func(t *testing.T) {
		boom := errors.New("redis down")
		svc := services.NewPreferenceService(brokenPreferenceRepo{err: boom})

		_, err := svc.Update(ctx, "user-1", domain.PreferencePatch{Theme: ptr("dark")})
		assert.ErrorIs(t, err, boom)
	})
}

func TestPreferenceService_Reset(t *testing.T) {
	ctx := context.Background()
	svc := services.NewPreferenceService(repository.NewInMemoryPreferenceRepository())

	_, err := svc.Update(ctx, "user-1", domain.PreferencePatch{View: ptr("calendar")})
	require.NoError(t, err)

	prefs, err := svc.Reset(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ViewGrid, prefs.View)
	assert.Equal(t, domain.DefaultPreferences(), svc.Get(ctx, "user-1"))
}
