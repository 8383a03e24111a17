package domain

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitTitleEmpty    = errors.New("habit title cannot be empty")
	ErrHabitTitleTooLong  = errors.New("habit title is too long (max 100 chars)")
	ErrHabitDescTooLong   = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidColor       = errors.New("invalid color format (must be #RRGGBB)")
	ErrInvalidWeekdays    = errors.New("invalid weekdays (must be 0-6)")
	ErrInvalidTarget      = errors.New("target cannot be negative")
	ErrInvalidInterval    = errors.New("interval cannot be negative")
	ErrHabitArchived      = errors.New("cannot update an archived habit")
	ErrInvalidHabitType   = errors.New("invalid habit type (must be boolean, numeric, or timer)")
	ErrInvalidReminder    = errors.New("invalid reminder format (must be HH:MM 24h)")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)
var reminderRegex = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)

const (
	HabitTypeBoolean      = "boolean"
	HabitTypeNumeric      = "numeric"
	HabitTypeTimer        = "timer"
	HabitFreqDaily        = "daily"
	HabitFreqSpecificDays = "specific_days"
	HabitFreqInterval     = "interval"
	DefaultIcon           = "default_icon"
	DefaultColor          = "#3B82F6"
	MaxTitleLen           = 100
	MaxDescLen            = 500
)

type Habit struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	GroupID          *string    `json:"group_id,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Color            string     `json:"color"`
	Icon             string     `json:"icon"`
	SortOrder        int        `json:"sort_order"`
	Type             string     `json:"type"`
	ReminderTime     *string    `json:"reminder_time,omitempty"`
	FrequencyType    string     `json:"frequency_type"`
	Weekdays         []int      `json:"weekdays,omitempty"`
	Interval         int        `json:"interval,omitempty"`
	TargetValue      int        `json:"target_value"`
	Unit             string     `json:"unit"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	TotalCompletions int        `json:"total_completions"`
	TotalSkips       int        `json:"total_skips"`
	Version          int        `json:"version"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	ArchivedAt       *time.Time `json:"archived_at,omitempty"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          *time.Time `json:"end_date,omitempty"`
}

// HabitCounters are the values derived from a habit's log. They are
// recomputed in the background and never bump the habit version.
type HabitCounters struct {
	CurrentStreak    int
	LongestStreak    int
	TotalCompletions int
	TotalSkips       int
}

// HabitAttributes is the mutable part of a habit, as sent by clients.
type HabitAttributes struct {
	Title       string
	Description string
	Color       string
	Icon        string
	Type        string
	Reminder    string
	Unit        string
	Target      int
	Interval    int
	Weekdays    []int
}

func normalizeWeekdays(days []int) []int {
	if len(days) == 0 {
		return nil
	}

	uniqueMap := make(map[int]bool)
	var uniqueDays []int
	for _, d := range days {
		if !uniqueMap[d] {
			uniqueMap[d] = true
			uniqueDays = append(uniqueDays, d)
		}
	}

	sort.Ints(uniqueDays)
	return uniqueDays
}

func validateAndNormalize(a HabitAttributes) (string, int, int, error) {
	trimmedTitle := strings.TrimSpace(a.Title)
	if trimmedTitle == "" {
		return "", 0, 0, ErrHabitTitleEmpty
	}
	if len(trimmedTitle) > MaxTitleLen {
		return "", 0, 0, ErrHabitTitleTooLong
	}

	if len(strings.TrimSpace(a.Description)) > MaxDescLen {
		return "", 0, 0, ErrHabitDescTooLong
	}

	switch a.Type {
	case HabitTypeBoolean, HabitTypeNumeric, HabitTypeTimer:
	default:
		return "", 0, 0, ErrInvalidHabitType
	}

	finalTarget := a.Target
	if a.Type == HabitTypeBoolean {
		finalTarget = 1
	} else if a.Target < 0 {
		return "", 0, 0, ErrInvalidTarget
	}

	if a.Reminder != "" && !reminderRegex.MatchString(a.Reminder) {
		return "", 0, 0, ErrInvalidReminder
	}

	if a.Interval < 0 {
		return "", 0, 0, ErrInvalidInterval
	}

	for _, day := range a.Weekdays {
		if day < 0 || day > 6 {
			return "", 0, 0, ErrInvalidWeekdays
		}
	}

	if a.Color != "" && !colorRegex.MatchString(a.Color) {
		return "", 0, 0, ErrInvalidColor
	}

	freqType := HabitFreqDaily
	if len(a.Weekdays) > 0 {
		freqType = HabitFreqSpecificDays
	} else if a.Interval > 1 {
		freqType = HabitFreqInterval
	}

	safeInterval := a.Interval
	if safeInterval < 1 {
		safeInterval = 1
	}

	return freqType, safeInterval, finalTarget, nil
}

// NewHabit creates a daily boolean habit; richer attributes are applied
// afterwards with Update.
func NewHabit(title, userID string) (*Habit, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil, ErrHabitTitleEmpty
	}
	if len(trimmed) > MaxTitleLen {
		return nil, ErrHabitTitleTooLong
	}

	now := time.Now().UTC()

	return &Habit{
		ID:            uuid.New().String(),
		UserID:        userID,
		Title:         trimmed,
		Color:         DefaultColor,
		Icon:          DefaultIcon,
		Type:          HabitTypeBoolean,
		FrequencyType: HabitFreqDaily,
		Interval:      1,
		TargetValue:   1,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
		StartDate:     now,
	}, nil
}

func (h *Habit) Update(a HabitAttributes) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	a.Description = strings.TrimSpace(a.Description)

	freqType, safeInterval, safeTarget, err := validateAndNormalize(a)
	if err != nil {
		return err
	}

	if a.Icon == "" {
		a.Icon = DefaultIcon
	}
	if a.Color == "" {
		a.Color = h.Color
	}

	var remPtr *string
	if a.Reminder != "" {
		rem := a.Reminder
		remPtr = &rem
	}

	h.Title = strings.TrimSpace(a.Title)
	h.Description = a.Description
	h.Color = a.Color
	h.Icon = a.Icon
	h.Type = a.Type
	h.ReminderTime = remPtr
	h.Unit = a.Unit
	h.TargetValue = safeTarget
	h.Weekdays = normalizeWeekdays(a.Weekdays)
	h.Interval = safeInterval
	h.FrequencyType = freqType

	h.UpdatedAt = time.Now().UTC()

	return nil
}

// Attributes returns the current mutable state, ready to be merged with a
// partial client update.
func (h *Habit) Attributes() HabitAttributes {
	reminder := ""
	if h.ReminderTime != nil {
		reminder = *h.ReminderTime
	}
	return HabitAttributes{
		Title:       h.Title,
		Description: h.Description,
		Color:       h.Color,
		Icon:        h.Icon,
		Type:        h.Type,
		Reminder:    reminder,
		Unit:        h.Unit,
		Target:      h.TargetValue,
		Interval:    h.Interval,
		Weekdays:    h.Weekdays,
	}
}

func (h *Habit) ChangePosition(newOrder int) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	h.SortOrder = newOrder
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) AssignGroup(groupID *string) {
	if groupID != nil && *groupID == "" {
		groupID = nil
	}
	h.GroupID = groupID
	h.UpdatedAt = time.Now().UTC()
}

func (h *Habit) UpdateStreak(current, longest int) {
	if longest < current {
		longest = current
	}
	h.CurrentStreak = current
	h.LongestStreak = longest
	h.UpdatedAt = time.Now().UTC()
}

func (h *Habit) Counters() HabitCounters {
	return HabitCounters{
		CurrentStreak:    h.CurrentStreak,
		LongestStreak:    h.LongestStreak,
		TotalCompletions: h.TotalCompletions,
		TotalSkips:       h.TotalSkips,
	}
}

// CompletionRate is the share of decided days that were completed, as a
// percentage rounded to two decimals. Days with no entry are not decided.
func (h *Habit) CompletionRate() float64 {
	return CompletionRate(h.TotalCompletions, h.TotalSkips)
}

// MarshalJSON adds the derived completion_rate to the stored fields.
func (h Habit) MarshalJSON() ([]byte, error) {
	type habitFields Habit
	return json.Marshal(struct {
		habitFields
		CompletionRate float64 `json:"completion_rate"`
	}{habitFields(h), h.CompletionRate()})
}

func CompletionRate(completions, skips int) float64 {
	total := completions + skips
	if total <= 0 {
		return 0
	}
	return Round2(float64(completions) / float64(total) * 100)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (h *Habit) IsArchived() bool {
	return h.ArchivedAt != nil
}

func (h *Habit) Archive() {
	if h.ArchivedAt != nil {
		return
	}

	now := time.Now().UTC()
	h.ArchivedAt = &now
	h.UpdatedAt = now
}

func (h *Habit) Restore() {
	if h.ArchivedAt == nil {
		return
	}
	h.ArchivedAt = nil
	h.UpdatedAt = time.Now().UTC()
}
