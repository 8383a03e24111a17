package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
)

// Credentials is what a client sends to register or log in.
type Credentials struct {
	Email    string
	Password string
}

type AuthService struct {
	repo domain.UserRepository

	decoyOnce sync.Once
	decoy     *domain.User
}

func NewAuthService(repo domain.UserRepository) *AuthService {
	return &AuthService{repo: repo}
}

// Register creates an account. Duplicate emails surface as
// domain.ErrEmailAlreadyExists from the repository.
func (s *AuthService) Register(ctx context.Context, creds Credentials) (*domain.User, error) {
	user, err := domain.NewUser("", creds.Email)
	if err != nil {
		return nil, err
	}
	if err := user.SetPassword(creds.Password); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth service: failed to create user %s: %w", user.Email, err)
	}
	return user, nil
}

// Login answers domain.ErrInvalidCredentials for both an unknown email and a
// wrong password, and spends one bcrypt comparison either way.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*domain.User, error) {
	user, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(creds.Email))
	if errors.Is(err, domain.ErrUserNotFound) {
		_ = s.decoyUser().CheckPassword(creds.Password)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("auth service: failed to load user: %w", err)
	}

	if err := user.CheckPassword(creds.Password); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) decoyUser() *domain.User {
	s.decoyOnce.Do(func() {
		s.decoy = &domain.User{}
		_ = s.decoy.SetPassword("decoy-password-never-matches")
	})
	return s.decoy
}
