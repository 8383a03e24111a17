package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
)

type HabitService struct {
	repo   domain.HabitRepository
	groups domain.GroupRepository
}

// NewHabitService wires the habit store; groups may be nil, in which case
// group ids are accepted unchecked.
func NewHabitService(repo domain.HabitRepository, groups domain.GroupRepository) *HabitService {
	return &HabitService{
		repo:   repo,
		groups: groups,
	}
}

type CreateHabitInput struct {
	ID           string
	UserID       string
	GroupID      *string
	Title        string
	Description  string
	Color        string
	Icon         string
	Type         string
	ReminderTime string
	Unit         string
	TargetValue  int
	Interval     int
	Weekdays     []int
	SortOrder    int
}

type UpdateHabitInput struct {
	ID           string
	UserID       string
	GroupID      *string
	Title        string
	Description  string
	Color        string
	Icon         string
	Type         string
	ReminderTime *string
	Unit         string
	TargetValue  int
	Interval     int
	Weekdays     []int
	SortOrder    *int
	Version      int
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func (s *HabitService) checkGroup(ctx context.Context, groupID *string, userID string) error {
	if groupID == nil || *groupID == "" || s.groups == nil {
		return nil
	}
	g, err := s.groups.GetByID(ctx, *groupID)
	if err != nil {
		return err
	}
	if g.UserID != userID {
		return domain.ErrGroupNotFound
	}
	return nil
}

// Create accepts a client-generated ID so offline clients can retry; a retry
// of an ID the user already owns returns the stored habit.
func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	if input.ID != "" {
		existing, err := s.repo.GetByID(ctx, input.ID)
		if err == nil {
			if existing.UserID != input.UserID {
				return nil, domain.ErrHabitConflict
			}
			return existing, nil
		}
		if !errors.Is(err, domain.ErrHabitNotFound) {
			return nil, err
		}
	}

	habit, err := domain.NewHabit(input.Title, input.UserID)
	if err != nil {
		return nil, err
	}
	if input.ID != "" {
		habit.ID = input.ID
	}

	if input.Interval < 1 {
		input.Interval = 1
	}
	if input.TargetValue < 1 {
		input.TargetValue = 1
	}

	err = habit.Update(domain.HabitAttributes{
		Title:       input.Title,
		Description: input.Description,
		Color:       input.Color,
		Icon:        input.Icon,
		Type:        mergeString(input.Type, habit.Type),
		Reminder:    input.ReminderTime,
		Unit:        input.Unit,
		Target:      input.TargetValue,
		Interval:    input.Interval,
		Weekdays:    input.Weekdays,
	})
	if err != nil {
		return nil, err
	}

	if err := s.checkGroup(ctx, input.GroupID, input.UserID); err != nil {
		return nil, err
	}
	habit.AssignGroup(input.GroupID)
	habit.SortOrder = input.SortOrder

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

// GetByID hides habits of other users behind ErrHabitNotFound.
func (s *HabitService) GetByID(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *HabitService) GetDelta(ctx context.Context, userID string, lastSync time.Time) ([]*domain.Habit, error) {
	return s.repo.GetChanges(ctx, userID, lastSync)
}

func (s *HabitService) ownedVersion(ctx context.Context, id, userID string, version int) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if version > 0 && habit.Version != version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, version, habit.Version)
	}
	return habit, nil
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.ownedVersion(ctx, input.ID, input.UserID, input.Version)
	if err != nil {
		return nil, err
	}

	attrs := habit.Attributes()
	attrs.Title = mergeString(input.Title, attrs.Title)
	attrs.Description = mergeString(input.Description, attrs.Description)
	attrs.Color = mergeString(input.Color, attrs.Color)
	attrs.Icon = mergeString(input.Icon, attrs.Icon)
	attrs.Type = mergeString(input.Type, attrs.Type)
	attrs.Unit = mergeString(input.Unit, attrs.Unit)

	if input.ReminderTime != nil {
		attrs.Reminder = *input.ReminderTime
	}
	if input.TargetValue > 0 {
		attrs.Target = input.TargetValue
	}
	if input.Interval > 0 {
		attrs.Interval = input.Interval
	}
	if input.Weekdays != nil {
		attrs.Weekdays = input.Weekdays
	}

	if err := habit.Update(attrs); err != nil {
		return nil, err
	}

	if input.GroupID != nil {
		if err := s.checkGroup(ctx, input.GroupID, input.UserID); err != nil {
			return nil, err
		}
		habit.AssignGroup(input.GroupID)
	}
	if input.SortOrder != nil {
		if err := habit.ChangePosition(*input.SortOrder); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Archive(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if habit.IsArchived() {
		return habit, nil
	}

	habit.Archive()
	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Restore(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !habit.IsArchived() {
		return habit, nil
	}

	habit.Restore()
	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Delete(ctx context.Context, id string, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
