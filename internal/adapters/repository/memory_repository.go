package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
	"github.com/google/uuid"
)

// The in-memory repositories back STORAGE=memory and the service tests.
// They follow the same versioning and soft-delete rules as the Postgres ones
// and hand out copies so callers never share state with the store.

type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func copyHabit(h *domain.Habit) *domain.Habit {
	c := *h
	if h.Weekdays != nil {
		c.Weekdays = append([]int(nil), h.Weekdays...)
	}
	return &c
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit.Version = 1
	r.store[habit.ID] = copyHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return nil, domain.ErrHabitNotFound
	}
	return copyHabit(habit), nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.store {
		if h.UserID == userID && h.DeletedAt == nil {
			habits = append(habits, copyHabit(h))
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		if habits[i].SortOrder != habits[j].SortOrder {
			return habits[i].SortOrder < habits[j].SortOrder
		}
		return habits[i].CreatedAt.After(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.store[habit.ID]
	if !ok || existing.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}
	if existing.Version != habit.Version {
		return domain.ErrHabitConflict
	}

	habit.Version++
	habit.UpdatedAt = time.Now().UTC()
	habit.CurrentStreak = existing.CurrentStreak
	habit.LongestStreak = existing.LongestStreak
	habit.TotalCompletions = existing.TotalCompletions
	habit.TotalSkips = existing.TotalSkips
	r.store[habit.ID] = copyHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}

	now := time.Now().UTC()
	habit.DeletedAt = &now
	habit.UpdatedAt = now
	habit.Version++
	return nil
}

func (r *InMemoryHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	changes := []*domain.Habit{}
	for _, h := range r.store {
		if h.UserID == userID && h.UpdatedAt.After(since) {
			changes = append(changes, copyHabit(h))
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].UpdatedAt.Before(changes[j].UpdatedAt)
	})
	return changes, nil
}

func (r *InMemoryHabitRepository) UpdateCounters(ctx context.Context, id string, c domain.HabitCounters) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}

	habit.CurrentStreak = c.CurrentStreak
	habit.LongestStreak = c.LongestStreak
	habit.TotalCompletions = c.TotalCompletions
	habit.TotalSkips = c.TotalSkips
	return nil
}

type InMemoryEntryRepository struct {
	entries map[string]*domain.HabitEntry

	mu sync.RWMutex
}

func NewInMemoryEntryRepository() *InMemoryEntryRepository {
	return &InMemoryEntryRepository{
		entries: make(map[string]*domain.HabitEntry),
	}
}

func copyEntry(e *domain.HabitEntry) *domain.HabitEntry {
	c := *e
	return &c
}

func (r *InMemoryEntryRepository) Create(ctx context.Context, entry *domain.HabitEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if _, exists := r.entries[entry.ID]; exists {
		return domain.ErrEntryConflict
	}
	if entry.Version == 0 {
		entry.Version = 1
	}

	r.entries[entry.ID] = copyEntry(entry)
	return nil
}

func (r *InMemoryEntryRepository) GetByID(ctx context.Context, id string) (*domain.HabitEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[id]
	if !exists || entry.DeletedAt != nil {
		return nil, domain.ErrEntryNotFound
	}
	return copyEntry(entry), nil
}

func (r *InMemoryEntryRepository) Update(ctx context.Context, entry *domain.HabitEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.entries[entry.ID]
	if !exists || existing.DeletedAt != nil {
		return domain.ErrEntryNotFound
	}
	if entry.Version != existing.Version {
		return domain.ErrEntryConflict
	}

	entry.Version++
	entry.UpdatedAt = time.Now().UTC()
	r.entries[entry.ID] = copyEntry(entry)
	return nil
}

func (r *InMemoryEntryRepository) Delete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[id]
	if !exists || entry.UserID != userID || entry.DeletedAt != nil {
		return domain.ErrEntryNotFound
	}

	now := time.Now().UTC()
	entry.DeletedAt = &now
	entry.UpdatedAt = now
	entry.Version++

	return nil
}

// inRange compares date keys lexically, which matches calendar order for
// zero-padded YYYY-MM-DD.
func inRange(date, from, to string) bool {
	if from != "" && strings.Compare(date, from) < 0 {
		return false
	}
	if to != "" && strings.Compare(date, to) > 0 {
		return false
	}
	return true
}

func (r *InMemoryEntryRepository) list(match func(e *domain.HabitEntry) bool) []*domain.HabitEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := []*domain.HabitEntry{}
	for _, e := range r.entries {
		if e.DeletedAt == nil && match(e) {
			list = append(list, copyEntry(e))
		}
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

func (r *InMemoryEntryRepository) ListByHabitID(ctx context.Context, habitID string, from, to string) ([]*domain.HabitEntry, error) {
	return r.list(func(e *domain.HabitEntry) bool {
		return e.HabitID == habitID && inRange(e.Date, from, to)
	}), nil
}

func (r *InMemoryEntryRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to string) ([]*domain.HabitEntry, error) {
	return r.list(func(e *domain.HabitEntry) bool {
		return e.UserID == userID && inRange(e.Date, from, to)
	}), nil
}

func (r *InMemoryEntryRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.HabitEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	changes := []*domain.HabitEntry{}
	for _, e := range r.entries {
		if e.UserID == userID && e.UpdatedAt.After(since) {
			changes = append(changes, copyEntry(e))
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].UpdatedAt.Before(changes[j].UpdatedAt)
	})
	return changes, nil
}

type InMemoryUserRepository struct {
	byID    map[string]*domain.User
	byEmail map[string]string

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, taken := r.byEmail[email]; taken {
		return domain.ErrEmailAlreadyExists
	}

	c := *user
	r.byID[user.ID] = &c
	r.byEmail[email] = user.ID
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *r.byID[id]
	return &c, nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

type InMemoryGroupRepository struct {
	groups map[string]*domain.Group
	habits *InMemoryHabitRepository

	mu sync.RWMutex
}

// NewInMemoryGroupRepository detaches habits from deleted groups through
// habits when it is non-nil.
func NewInMemoryGroupRepository(habits *InMemoryHabitRepository) *InMemoryGroupRepository {
	return &InMemoryGroupRepository{
		groups: make(map[string]*domain.Group),
		habits: habits,
	}
}

func (r *InMemoryGroupRepository) Create(ctx context.Context, group *domain.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *group
	r.groups[group.ID] = &c
	return nil
}

func (r *InMemoryGroupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.groups[id]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	c := *g
	return &c, nil
}

func (r *InMemoryGroupRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := []*domain.Group{}
	for _, g := range r.groups {
		if g.UserID == userID {
			c := *g
			groups = append(groups, &c)
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Name < groups[j].Name
	})
	return groups, nil
}

func (r *InMemoryGroupRepository) Update(ctx context.Context, group *domain.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.groups[group.ID]; !ok {
		return domain.ErrGroupNotFound
	}
	c := *group
	r.groups[group.ID] = &c
	return nil
}

func (r *InMemoryGroupRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.groups[id]; !ok {
		return domain.ErrGroupNotFound
	}
	delete(r.groups, id)

	if r.habits != nil {
		r.habits.mu.Lock()
		now := time.Now().UTC()
		for _, h := range r.habits.store {
			if h.GroupID != nil && *h.GroupID == id {
				h.GroupID = nil
				h.UpdatedAt = now
				h.Version++
			}
		}
		r.habits.mu.Unlock()
	}
	return nil
}

type InMemoryPreferenceRepository struct {
	prefs map[string]domain.Preferences

	mu sync.RWMutex
}

func NewInMemoryPreferenceRepository() *InMemoryPreferenceRepository {
	return &InMemoryPreferenceRepository{
		prefs: make(map[string]domain.Preferences),
	}
}

func (r *InMemoryPreferenceRepository) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prefs[userID]
	if !ok {
		return nil, domain.ErrPreferencesNotFound
	}
	return &p, nil
}

func (r *InMemoryPreferenceRepository) Save(ctx context.Context, userID string, prefs *domain.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs[userID] = *prefs
	return nil
}
