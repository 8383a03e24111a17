package services

import (
	"context"
	"errors"
	"log"

	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
)

type PreferenceService struct {
	repo domain.PreferenceRepository
}

func NewPreferenceService(repo domain.PreferenceRepository) *PreferenceService {
	return &PreferenceService{repo: repo}
}

// Get never fails: users without saved preferences, and reads that hit a
// broken store, get the defaults.
func (s *PreferenceService) Get(ctx context.Context, userID string) *domain.Preferences {
	prefs, err := s.repo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrPreferencesNotFound) {
			log.Printf("[PREFS] read failed for %s, using defaults: %v", userID, err)
		}
		return domain.DefaultPreferences()
	}
	return prefs
}

// Update applies a partial patch on top of the stored document and saves the
// result once it validates.
func (s *PreferenceService) Update(ctx context.Context, userID string, patch domain.PreferencePatch) (*domain.Preferences, error) {
	prefs, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrPreferencesNotFound) {
		prefs = domain.DefaultPreferences()
	} else if err != nil {
		return nil, err
	}

	patch.Apply(prefs)
	if err := prefs.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, userID, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *PreferenceService) Reset(ctx context.Context, userID string) (*domain.Preferences, error) {
	prefs := domain.DefaultPreferences()
	if err := s.repo.Save(ctx, userID, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}
