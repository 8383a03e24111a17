package calendar

import "time"

// CurrentStreak counts consecutive completed days ending at the most recent
// completed day, which is not necessarily today: a habit done yesterday but
// not yet today keeps yesterday's streak.
func CurrentStreak(log []CompletionEvent) int {
	keys := completedKeys(log)
	if len(keys) == 0 {
		return 0
	}

	sorted := sortedKeys(keys)
	latest := sorted[len(sorted)-1]

	// Civil-day arithmetic; UTC only anchors the value.
	day, err := ParseDateKey(latest, time.UTC)
	if err != nil {
		return 0
	}

	streak := 0
	for {
		if _, ok := keys[ToLocalDateKey(day)]; !ok {
			break
		}
		streak++
		day = shiftDays(day, -1)
	}
	return streak
}

// LongestStreak is the longest run of consecutive completed days anywhere
// in the log.
func LongestStreak(log []CompletionEvent) int {
	keys := completedKeys(log)
	if len(keys) == 0 {
		return 0
	}

	longest, run := 0, 0
	prev := ""
	for _, key := range sortedKeys(keys) {
		if prev != "" && nextDayKey(prev) == key {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = key
	}
	return longest
}

// LastCompleted returns the most recent completed date key.
func LastCompleted(log []CompletionEvent) (string, bool) {
	keys := completedKeys(log)
	if len(keys) == 0 {
		return "", false
	}
	sorted := sortedKeys(keys)
	return sorted[len(sorted)-1], true
}

func nextDayKey(key string) string {
	day, err := ParseDateKey(key, time.UTC)
	if err != nil {
		return ""
	}
	return ToLocalDateKey(shiftDays(day, 1))
}
