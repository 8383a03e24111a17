package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrGroupNameEmpty   = errors.New("group name cannot be empty")
	ErrGroupNameTooLong = errors.New("group name is too long (max 100 chars)")
)

// Group is a user-defined category that habits can be filed under.
type Group struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	Icon      string    `json:"icon" db:"icon"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func validateGroup(name, color string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrGroupNameEmpty
	}
	if len(name) > MaxTitleLen {
		return "", ErrGroupNameTooLong
	}
	if color != "" && !colorRegex.MatchString(color) {
		return "", ErrInvalidColor
	}
	return name, nil
}

func NewGroup(userID, name, color, icon string) (*Group, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	cleanName, err := validateGroup(name, color)
	if err != nil {
		return nil, err
	}

	if color == "" {
		color = DefaultColor
	}

	now := time.Now().UTC()
	return &Group{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      cleanName,
		Color:     color,
		Icon:      icon,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (g *Group) Update(name, color, icon string) error {
	if name == "" {
		name = g.Name
	}
	if color == "" {
		color = g.Color
	}

	cleanName, err := validateGroup(name, color)
	if err != nil {
		return err
	}

	g.Name = cleanName
	g.Color = color
	if icon != "" {
		g.Icon = icon
	}
	g.UpdatedAt = time.Now().UTC()
	return nil
}
