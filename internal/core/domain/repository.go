package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrHabitConflict = errors.New("habit version conflict")
	ErrEntryNotFound = errors.New("habit entry not found")
	ErrEntryConflict = errors.New("habit entry version conflict")
	ErrGroupNotFound = errors.New("group not found")
	ErrUnauthorized  = errors.New("unauthorized access to resource")
)

// Live rows are the ones without a DeletedAt. Deletes leave tombstones that
// only GetChanges returns, so sync clients learn about them.

type HabitRepository interface {
	Create(ctx context.Context, habit *Habit) error

	// GetByID returns ErrHabitNotFound for unknown and deleted habits.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID includes archived habits.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// Update is a compare-and-set on habit.Version; a stale version is
	// ErrHabitConflict.
	Update(ctx context.Context, habit *Habit) error

	Delete(ctx context.Context, id string) error

	// GetChanges returns every habit touched after since, tombstones included.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*Habit, error)

	// UpdateCounters writes the derived counters and leaves the version
	// alone, so it never conflicts with a client edit.
	UpdateCounters(ctx context.Context, id string, c HabitCounters) error
}

type HabitEntryRepository interface {
	// Create fails with ErrEntryConflict when the id is taken.
	Create(ctx context.Context, entry *HabitEntry) error

	// Update is a compare-and-set on entry.Version.
	Update(ctx context.Context, entry *HabitEntry) error

	// Delete tombstones an entry owned by userID.
	Delete(ctx context.Context, id string, userID string) error

	GetByID(ctx context.Context, id string) (*HabitEntry, error)

	// ListByHabitID returns live entries with from <= Date <= to, oldest
	// first. Bounds are date keys and an empty one is open.
	ListByHabitID(ctx context.Context, habitID string, from, to string) ([]*HabitEntry, error)

	// ListByUserIDAndDateRange is ListByHabitID over all habits of a user.
	ListByUserIDAndDateRange(ctx context.Context, userID string, from, to string) ([]*HabitEntry, error)

	GetChanges(ctx context.Context, userID string, since time.Time) ([]*HabitEntry, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

type GroupRepository interface {
	Create(ctx context.Context, group *Group) error
	GetByID(ctx context.Context, id string) (*Group, error)
	ListByUserID(ctx context.Context, userID string) ([]*Group, error)
	Update(ctx context.Context, group *Group) error

	// Delete removes the group and detaches its habits.
	Delete(ctx context.Context, id string) error
}

// PreferenceRepository stores one Preferences document per user.
// Get returns ErrPreferencesNotFound when the user never saved any.
type PreferenceRepository interface {
	Get(ctx context.Context, userID string) (*Preferences, error)
	Save(ctx context.Context, userID string, prefs *Preferences) error
}
