package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

const DefaultHabitCacheTTL = 30 * time.Minute

var (
	_ domain.HabitRepository = (*CachedHabitRepository)(nil)
	_ domain.GroupRepository = (*CachedGroupRepository)(nil)
)

// CachedHabitRepository keeps each user's habit list in redis. Redis
// failures are logged and fall through to next.
type CachedHabitRepository struct {
	next  domain.HabitRepository
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedHabitRepository(next domain.HabitRepository, cache *redis.Client, ttl time.Duration) *CachedHabitRepository {
	if ttl <= 0 {
		ttl = DefaultHabitCacheTTL
	}
	return &CachedHabitRepository{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

func habitListKey(userID string) string {
	return fmt.Sprintf("habits:%s", userID)
}

// Invalidate drops the cached list of userID.
func (r *CachedHabitRepository) Invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, habitListKey(userID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate for user %s: %v", userID, err)
	}
}

func (r *CachedHabitRepository) invalidateOwner(ctx context.Context, id string) {
	habit, err := r.next.GetByID(ctx, id)
	if err == nil {
		r.Invalidate(ctx, habit.UserID)
	}
}

func (r *CachedHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	key := habitListKey(userID)

	val, err := r.cache.Get(ctx, key).Bytes()
	if err == nil {
		var habits []*domain.Habit
		if err := json.Unmarshal(val, &habits); err == nil {
			return habits, nil
		}

		log.Printf("[CACHE] Corrupted data for user %s, cleaning up key", userID)
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	habits, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(habits); err == nil {
		if setErr := r.cache.Set(ctx, key, data, r.ttl).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return habits, nil
}

func (r *CachedHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	return r.next.GetChanges(ctx, userID, since)
}

func (r *CachedHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Create(ctx, habit); err != nil {
		return err
	}
	r.Invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Update(ctx, habit); err != nil {
		return err
	}
	r.Invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Delete(ctx context.Context, id string) error {
	habit, err := r.next.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.Invalidate(ctx, habit.UserID)
	return nil
}

// UpdateCounters invalidates as well: cached lists carry the counters the
// overview shows.
func (r *CachedHabitRepository) UpdateCounters(ctx context.Context, id string, c domain.HabitCounters) error {
	if err := r.next.UpdateCounters(ctx, id, c); err != nil {
		return err
	}
	r.invalidateOwner(ctx, id)
	return nil
}

// CachedGroupRepository invalidates the owner's habit list when a group
// delete detaches habits behind the habit cache's back.
type CachedGroupRepository struct {
	domain.GroupRepository
	habits *CachedHabitRepository
}

func NewCachedGroupRepository(next domain.GroupRepository, habits *CachedHabitRepository) *CachedGroupRepository {
	return &CachedGroupRepository{GroupRepository: next, habits: habits}
}

func (r *CachedGroupRepository) Delete(ctx context.Context, id string) error {
	g, err := r.GroupRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.GroupRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.habits.Invalidate(ctx, g.UserID)
	return nil
}
