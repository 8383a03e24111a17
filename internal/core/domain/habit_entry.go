package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-grid/internal/core/calendar"
)

var (
	ErrInvalidEntry  = errors.New("invalid habit entry data")
	ErrInvalidDate   = errors.New("invalid date (must be YYYY-MM-DD)")
	ErrInvalidStatus = errors.New("invalid status (must be completed, skipped or partial)")
	ErrFutureDate    = errors.New("cannot record a completion in the future")
)

// HabitEntry is one persisted record of a habit's log. Date is the user's
// local calendar day, never an instant.
type HabitEntry struct {
	ID      string `json:"id" db:"id"`
	HabitID string `json:"habit_id" db:"habit_id"`
	UserID  string `json:"user_id" db:"user_id"`

	Date   string          `json:"date" db:"entry_date"`
	Status calendar.Status `json:"status" db:"status"`
	Value  int             `json:"value" db:"value"`
	Notes  string          `json:"notes" db:"notes"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func NewHabitEntry(habitID, userID, date string, status calendar.Status, value int) *HabitEntry {
	now := time.Now().UTC()

	if status == "" {
		status = calendar.StatusCompleted
	}

	return &HabitEntry{
		HabitID: habitID,
		UserID:  userID,
		Date:    strings.TrimSpace(date),
		Status:  status,
		Value:   value,

		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (e *HabitEntry) Validate() error {
	if strings.TrimSpace(e.HabitID) == "" {
		return fmt.Errorf("%w: habit_id is required", ErrInvalidEntry)
	}
	if strings.TrimSpace(e.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidEntry)
	}
	if e.Value < 0 {
		return fmt.Errorf("%w: value cannot be negative", ErrInvalidEntry)
	}
	if !calendar.IsDateKey(e.Date) {
		return ErrInvalidDate
	}
	if !e.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func (e *HabitEntry) IsCompleted() bool {
	return e.DeletedAt == nil && e.Status == calendar.StatusCompleted
}

func (e *HabitEntry) Event() calendar.CompletionEvent {
	return calendar.CompletionEvent{Date: e.Date, Status: e.Status}
}

// Events converts live entries to the log shape the calendar package reads.
func Events(entries []*HabitEntry) []calendar.CompletionEvent {
	log := make([]calendar.CompletionEvent, 0, len(entries))
	for _, e := range entries {
		if e == nil || e.DeletedAt != nil {
			continue
		}
		log = append(log, e.Event())
	}
	return log
}
