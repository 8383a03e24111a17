package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-grid/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
)

// StreakQueue receives the id of every habit whose log changed.
type StreakQueue interface {
	Enqueue(habitID string)
}

type EntryService struct {
	repo      domain.HabitEntryRepository
	habitRepo domain.HabitRepository
	queue     StreakQueue
}

func NewEntryService(repo domain.HabitEntryRepository, habitRepo domain.HabitRepository, queue StreakQueue) *EntryService {
	return &EntryService{
		repo:      repo,
		habitRepo: habitRepo,
		queue:     queue,
	}
}

type CreateEntryInput struct {
	HabitID string
	UserID  string
	Date    string
	Status  calendar.Status
	Value   int
	Notes   string
}

type UpdateEntryInput struct {
	ID      string
	UserID  string
	Status  calendar.Status
	Value   int
	Notes   string
	Version int
}

// ToggleResult reports the state of the day after a toggle.
type ToggleResult struct {
	HabitID   string             `json:"habit_id"`
	Date      string             `json:"date"`
	Completed bool               `json:"completed"`
	Entry     *domain.HabitEntry `json:"entry,omitempty"`
}

func (s *EntryService) enqueue(habitID string) {
	if s.queue != nil {
		s.queue.Enqueue(habitID)
	}
}

func (s *EntryService) ownedHabit(ctx context.Context, habitID, userID string) (*domain.Habit, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return habit, nil
}

func (s *EntryService) Create(ctx context.Context, input CreateEntryInput) (*domain.HabitEntry, error) {
	entry := domain.NewHabitEntry(input.HabitID, input.UserID, input.Date, input.Status, input.Value)
	entry.Notes = input.Notes

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.ownedHabit(ctx, entry.HabitID, entry.UserID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.enqueue(entry.HabitID)

	return entry, nil
}

func (s *EntryService) Update(ctx context.Context, input UpdateEntryInput) (*domain.HabitEntry, error) {
	existing, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && existing.Version != input.Version {
		return nil, domain.ErrEntryConflict
	}

	if input.Status != "" {
		existing.Status = input.Status
	}
	existing.Value = input.Value
	existing.Notes = input.Notes

	if err := existing.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.enqueue(existing.HabitID)

	return existing, nil
}

func (s *EntryService) GetByID(ctx context.Context, id string, userID string) (*domain.HabitEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return entry, nil
}

// ListByHabitID returns the habit's entries between two date keys, both
// inclusive. Empty bounds are open.
func (s *EntryService) ListByHabitID(ctx context.Context, habitID string, userID string, from, to string) ([]*domain.HabitEntry, error) {
	if _, err := s.ownedHabit(ctx, habitID, userID); err != nil {
		return nil, err
	}

	for _, bound := range []string{from, to} {
		if bound != "" && !calendar.IsDateKey(bound) {
			return nil, domain.ErrInvalidDate
		}
	}

	return s.repo.ListByHabitID(ctx, habitID, from, to)
}

func (s *EntryService) Delete(ctx context.Context, id string, userID string) error {
	entry, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.enqueue(entry.HabitID)

	return nil
}

func (s *EntryService) GetDelta(ctx context.Context, userID string, since time.Time) ([]*domain.HabitEntry, error) {
	return s.repo.GetChanges(ctx, userID, since)
}

// checkDay validates a toggle target against today, where now is already
// expressed in the user's location.
func checkDay(date string, now time.Time) error {
	if !calendar.IsDateKey(date) {
		return domain.ErrInvalidDate
	}
	if date > calendar.ToLocalDateKey(now) {
		return domain.ErrFutureDate
	}
	return nil
}

func (s *EntryService) dayEntries(ctx context.Context, habit *domain.Habit, date string) ([]*domain.HabitEntry, error) {
	if habit.IsArchived() {
		return nil, domain.ErrHabitArchived
	}
	return s.repo.ListByHabitID(ctx, habit.ID, date, date)
}

// completionValue is the value a one-tap completion records: the habit's
// target, at least 1.
func completionValue(habit *domain.Habit) int {
	if habit.TargetValue > 0 {
		return habit.TargetValue
	}
	return 1
}

// markCompleted promotes a skipped or partial entry of the day, or records a
// new completed one. Either way the entry ends up with completionValue.
func (s *EntryService) markCompleted(ctx context.Context, habit *domain.Habit, userID, date string, existing []*domain.HabitEntry) (*domain.HabitEntry, error) {
	if len(existing) > 0 {
		entry := existing[0]
		entry.Status = calendar.StatusCompleted
		entry.Value = completionValue(habit)
		if err := s.repo.Update(ctx, entry); err != nil {
			return nil, err
		}
		return entry, nil
	}

	entry := domain.NewHabitEntry(habit.ID, userID, date, calendar.StatusCompleted, completionValue(habit))
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Toggle flips the completion of one day: completed entries of that day are
// removed, otherwise the day is marked completed.
func (s *EntryService) Toggle(ctx context.Context, habitID, userID, date string, now time.Time) (*ToggleResult, error) {
	if err := checkDay(date, now); err != nil {
		return nil, err
	}

	habit, err := s.ownedHabit(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.dayEntries(ctx, habit, date)
	if err != nil {
		return nil, err
	}

	result := &ToggleResult{HabitID: habitID, Date: date}

	var completed []*domain.HabitEntry
	for _, e := range existing {
		if e.IsCompleted() {
			completed = append(completed, e)
		}
	}

	if len(completed) > 0 {
		for _, e := range completed {
			if err := s.repo.Delete(ctx, e.ID, userID); err != nil {
				return nil, err
			}
		}
	} else {
		entry, err := s.markCompleted(ctx, habit, userID, date, existing)
		if err != nil {
			return nil, err
		}
		result.Completed = true
		result.Entry = entry
	}

	s.enqueue(habitID)

	return result, nil
}

// CompleteToday marks today completed and is a no-op when it already is.
func (s *EntryService) CompleteToday(ctx context.Context, habitID, userID string, now time.Time) (*ToggleResult, error) {
	today := calendar.ToLocalDateKey(now)

	habit, err := s.ownedHabit(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.dayEntries(ctx, habit, today)
	if err != nil {
		return nil, err
	}

	for _, e := range existing {
		if e.IsCompleted() {
			return &ToggleResult{HabitID: habitID, Date: today, Completed: true, Entry: e}, nil
		}
	}

	entry, err := s.markCompleted(ctx, habit, userID, today, existing)
	if err != nil {
		return nil, err
	}

	s.enqueue(habitID)

	return &ToggleResult{HabitID: habitID, Date: today, Completed: true, Entry: entry}, nil
}
