package services

import (
	"context"

	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
)

type GroupService struct {
	repo domain.GroupRepository
}

func NewGroupService(repo domain.GroupRepository) *GroupService {
	return &GroupService{repo: repo}
}

type GroupInput struct {
	UserID string
	Name   string
	Color  string
	Icon   string
}

func (s *GroupService) Create(ctx context.Context, input GroupInput) (*domain.Group, error) {
	g, err := domain.NewGroup(input.UserID, input.Name, input.Color, input.Icon)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GroupService) List(ctx context.Context, userID string) ([]*domain.Group, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *GroupService) owned(ctx context.Context, id, userID string) (*domain.Group, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.UserID != userID {
		return nil, domain.ErrGroupNotFound
	}
	return g, nil
}

func (s *GroupService) Update(ctx context.Context, id string, input GroupInput) (*domain.Group, error) {
	g, err := s.owned(ctx, id, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := g.Update(input.Name, input.Color, input.Icon); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Delete removes the group; its habits stay, ungrouped.
func (s *GroupService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
