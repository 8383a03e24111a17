package calendar

import "slices"

type Status string

const (
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusPartial   Status = "partial"
)

func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusSkipped, StatusPartial:
		return true
	}
	return false
}

// CompletionEvent is one dated record of a habit's log. Date is the
// backend's YYYY-MM-DD key and is never rewritten here.
type CompletionEvent struct {
	Date   string `json:"date" yaml:"date"`
	Status Status `json:"status" yaml:"status"`
}

// completedKeys is the set of well-formed dates that have at least one
// completed event.
func completedKeys(log []CompletionEvent) map[string]struct{} {
	keys := make(map[string]struct{}, len(log))
	for _, ev := range log {
		if ev.Status != StatusCompleted {
			continue
		}
		if !IsDateKey(ev.Date) {
			continue
		}
		keys[ev.Date] = struct{}{}
	}
	return keys
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// CompletedOn reports whether the log has a completed event on key.
func CompletedOn(log []CompletionEvent, key string) bool {
	for _, ev := range log {
		if ev.Status == StatusCompleted && ev.Date == key {
			return true
		}
	}
	return false
}
