package workers

import (
	"context"
	"log"
	"sync"

	"github.com/comitanigiacomo/kanso-grid/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
)

const defaultQueueSize = 100

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	UpdateCounters(ctx context.Context, id string, c domain.HabitCounters) error
}

type EntryRepository interface {
	ListByHabitID(ctx context.Context, habitID string, from, to string) ([]*domain.HabitEntry, error)
}

type StreakJob struct {
	HabitID string
}

// StreakWorker recomputes the denormalized streak counters of a habit in the
// background after its log changes.
type StreakWorker struct {
	habitRepo HabitRepository
	entryRepo EntryRepository
	jobs      chan StreakJob
	wg        sync.WaitGroup
}

func NewStreakWorker(hRepo HabitRepository, eRepo EntryRepository) *StreakWorker {
	return &StreakWorker{
		habitRepo: hRepo,
		entryRepo: eRepo,
		jobs:      make(chan StreakJob, defaultQueueSize),
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		log.Println("Streak Worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Streak Worker shutting down...")
				return
			}
		}
	}()
}

// Wait blocks until the goroutine started by Start has returned.
func (w *StreakWorker) Wait() {
	w.wg.Wait()
}

func (w *StreakWorker) Enqueue(habitID string) {
	if w == nil {
		return
	}
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		log.Printf("Streak Worker queue full! Dropping job for habit %s", habitID)
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	counters, changed, err := w.Recompute(ctx, job.HabitID)
	if err != nil {
		log.Printf("Worker Error recomputing streak for %s: %v", job.HabitID, err)
		return
	}
	if changed {
		log.Printf("Streak updated for %s: Current=%d, Longest=%d, Completions=%d, Skips=%d",
			job.HabitID, counters.CurrentStreak, counters.LongestStreak, counters.TotalCompletions, counters.TotalSkips)
	}
}

// Recompute reads the full log of a habit and stores its counters when they
// differ from the stored ones.
func (w *StreakWorker) Recompute(ctx context.Context, habitID string) (domain.HabitCounters, bool, error) {
	habit, err := w.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return domain.HabitCounters{}, false, err
	}

	entries, err := w.entryRepo.ListByHabitID(ctx, habitID, "", "")
	if err != nil {
		return domain.HabitCounters{}, false, err
	}

	counters := calculateCounters(entries)
	if counters == habit.Counters() {
		return counters, false, nil
	}

	if err := w.habitRepo.UpdateCounters(ctx, habitID, counters); err != nil {
		return domain.HabitCounters{}, false, err
	}
	return counters, true, nil
}

func calculateStreaks(entries []*domain.HabitEntry) (int, int) {
	events := domain.Events(entries)
	return calendar.CurrentStreak(events), calendar.LongestStreak(events)
}

// calculateTotals counts completed and skipped days. A day counts once, and
// a day with both a completion and a skip counts as completed.
func calculateTotals(entries []*domain.HabitEntry) (completions, skips int) {
	completed := make(map[string]bool)
	skipped := make(map[string]bool)
	for _, e := range entries {
		if e == nil || e.DeletedAt != nil {
			continue
		}
		switch e.Status {
		case calendar.StatusCompleted:
			completed[e.Date] = true
		case calendar.StatusSkipped:
			skipped[e.Date] = true
		}
	}
	for day := range skipped {
		if !completed[day] {
			skips++
		}
	}
	return len(completed), skips
}

func calculateCounters(entries []*domain.HabitEntry) domain.HabitCounters {
	current, longest := calculateStreaks(entries)
	completions, skips := calculateTotals(entries)
	return domain.HabitCounters{
		CurrentStreak:    current,
		LongestStreak:    longest,
		TotalCompletions: completions,
		TotalSkips:       skips,
	}
}
