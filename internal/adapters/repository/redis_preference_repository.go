package repository

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

var _ domain.PreferenceRepository = (*RedisPreferenceRepository)(nil)

// RedisPreferenceRepository stores each user's preferences as one hash,
// prefs:<user>, with the flattened preference keys as fields. Preferences
// have no expiry.
type RedisPreferenceRepository struct {
	rdb *redis.Client
}

func NewRedisPreferenceRepository(rdb *redis.Client) *RedisPreferenceRepository {
	return &RedisPreferenceRepository{rdb: rdb}
}

func preferenceKey(userID string) string {
	return fmt.Sprintf("prefs:%s", userID)
}

func (r *RedisPreferenceRepository) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	values, err := r.rdb.HGetAll(ctx, preferenceKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("preferences read failed: %w", err)
	}
	if len(values) == 0 {
		return nil, domain.ErrPreferencesNotFound
	}
	return domain.PreferencesFromValues(values), nil
}

func (r *RedisPreferenceRepository) Save(ctx context.Context, userID string, prefs *domain.Preferences) error {
	fields := make(map[string]interface{}, len(domain.PreferenceKeys))
	for k, v := range prefs.Values() {
		fields[k] = v
	}

	if err := r.rdb.HSet(ctx, preferenceKey(userID), fields).Err(); err != nil {
		return fmt.Errorf("preferences write failed: %w", err)
	}
	return nil
}
