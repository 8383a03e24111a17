package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
)

const habitColumns = `id, user_id, group_id, title, description, color, icon, sort_order,
	type, frequency_type, weekdays, reminder_time, interval, target_value, unit,
	current_streak, longest_streak, total_completions, total_skips, start_date, end_date, archived_at,
	version, deleted_at, created_at, updated_at`

// weekdaysColumn stores a weekday list as JSONB. An empty list is NULL.
type weekdaysColumn []int

func (w weekdaysColumn) Value() (driver.Value, error) {
	if len(w) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal([]int(w))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (w *weekdaysColumn) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*w = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("weekdays: unsupported column type %T", src)
	}
	return json.Unmarshal(raw, (*[]int)(w))
}

type habitRow struct {
	ID            string         `db:"id"`
	UserID        string         `db:"user_id"`
	GroupID       *string        `db:"group_id"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	Color         string         `db:"color"`
	Icon          string         `db:"icon"`
	SortOrder     int            `db:"sort_order"`
	Type          string         `db:"type"`
	FrequencyType string         `db:"frequency_type"`
	Weekdays      weekdaysColumn `db:"weekdays"`
	ReminderTime  *string        `db:"reminder_time"`
	Interval      int            `db:"interval"`
	TargetValue   int            `db:"target_value"`
	Unit          string         `db:"unit"`
	CurrentStreak int            `db:"current_streak"`
	LongestStreak int            `db:"longest_streak"`
	Completions   int            `db:"total_completions"`
	Skips         int            `db:"total_skips"`
	StartDate     time.Time      `db:"start_date"`
	EndDate       *time.Time     `db:"end_date"`
	ArchivedAt    *time.Time     `db:"archived_at"`
	Version       int            `db:"version"`
	DeletedAt     *time.Time     `db:"deleted_at"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func toHabitRow(h *domain.Habit) habitRow {
	return habitRow{
		ID: h.ID, UserID: h.UserID, GroupID: h.GroupID,
		Title: h.Title, Description: h.Description, Color: h.Color, Icon: h.Icon, SortOrder: h.SortOrder,
		Type: h.Type, FrequencyType: h.FrequencyType, Weekdays: weekdaysColumn(h.Weekdays), ReminderTime: h.ReminderTime,
		Interval: h.Interval, TargetValue: h.TargetValue, Unit: h.Unit,
		CurrentStreak: h.CurrentStreak, LongestStreak: h.LongestStreak,
		Completions: h.TotalCompletions, Skips: h.TotalSkips,
		StartDate: h.StartDate, EndDate: h.EndDate, ArchivedAt: h.ArchivedAt,
		Version: h.Version, DeletedAt: h.DeletedAt, CreatedAt: h.CreatedAt, UpdatedAt: h.UpdatedAt,
	}
}

func (r habitRow) habit() *domain.Habit {
	return &domain.Habit{
		ID: r.ID, UserID: r.UserID, GroupID: r.GroupID,
		Title: r.Title, Description: r.Description, Color: r.Color, Icon: r.Icon, SortOrder: r.SortOrder,
		Type: r.Type, FrequencyType: r.FrequencyType, Weekdays: []int(r.Weekdays), ReminderTime: r.ReminderTime,
		Interval: r.Interval, TargetValue: r.TargetValue, Unit: r.Unit,
		CurrentStreak: r.CurrentStreak, LongestStreak: r.LongestStreak,
		TotalCompletions: r.Completions, TotalSkips: r.Skips,
		StartDate: r.StartDate, EndDate: r.EndDate, ArchivedAt: r.ArchivedAt,
		Version: r.Version, DeletedAt: r.DeletedAt, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func habitsFromRows(rows []habitRow) []*domain.Habit {
	habits := make([]*domain.Habit, 0, len(rows))
	for _, row := range rows {
		habits = append(habits, row.habit())
	}
	return habits
}

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

// Create inserts h at version 1 with zeroed counters.
func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	row := toHabitRow(h)
	row.Version = 1
	row.CurrentStreak, row.LongestStreak = 0, 0
	row.Completions, row.Skips = 0, 0
	row.DeletedAt = nil

	query := `INSERT INTO habits (` + habitColumns + `) VALUES (
		:id, :user_id, :group_id, :title, :description, :color, :icon, :sort_order,
		:type, :frequency_type, :weekdays, :reminder_time, :interval, :target_value, :unit,
		:current_streak, :longest_streak, :total_completions, :total_skips, :start_date, :end_date, :archived_at,
		:version, :deleted_at, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		if pgCode(err) == pgUniqueViolation {
			return domain.ErrHabitConflict
		}
		return fmt.Errorf("repository: insert habit %s: %w", h.ID, err)
	}

	h.Version = 1
	h.CurrentStreak, h.LongestStreak = 0, 0
	h.TotalCompletions, h.TotalSkips = 0, 0
	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	var row habitRow
	err := r.db.GetContext(ctx, &row, `SELECT `+habitColumns+` FROM habits WHERE id = $1 AND deleted_at IS NULL`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrHabitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repository: habit %s: %w", id, err)
	}
	return row.habit(), nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	var rows []habitRow
	query := `SELECT ` + habitColumns + ` FROM habits
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY sort_order ASC, created_at DESC`

	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("repository: habits of %s: %w", userID, err)
	}
	return habitsFromRows(rows), nil
}

// Update writes h when its Version still matches the stored one, then
// advances h.Version. Derived counters are owned by UpdateCounters.
func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	named := `UPDATE habits SET
			group_id = :group_id, title = :title, description = :description, color = :color,
			icon = :icon, sort_order = :sort_order, type = :type, frequency_type = :frequency_type,
			weekdays = :weekdays, reminder_time = :reminder_time, interval = :interval,
			target_value = :target_value, unit = :unit, end_date = :end_date, archived_at = :archived_at,
			updated_at = NOW(), version = version + 1
		WHERE id = :id AND version = :version AND deleted_at IS NULL
		RETURNING version, updated_at, current_streak, longest_streak, total_completions, total_skips`

	query, args, err := sqlx.Named(named, toHabitRow(h))
	if err != nil {
		return fmt.Errorf("repository: bind habit update: %w", err)
	}

	err = r.db.QueryRowxContext(ctx, r.db.Rebind(query), args...).
		Scan(&h.Version, &h.UpdatedAt, &h.CurrentStreak, &h.LongestStreak, &h.TotalCompletions, &h.TotalSkips)
	if errors.Is(err, sql.ErrNoRows) {
		return r.missingOrStale(ctx, h.ID)
	}
	if err != nil {
		return fmt.Errorf("repository: update habit %s: %w", h.ID, err)
	}
	return nil
}

// missingOrStale tells a deleted habit apart from a version mismatch after
// an update matched no row.
func (r *PostgresHabitRepository) missingOrStale(ctx context.Context, id string) error {
	var live bool
	if err := r.db.GetContext(ctx, &live, `SELECT EXISTS (SELECT 1 FROM habits WHERE id = $1 AND deleted_at IS NULL)`, id); err != nil {
		return fmt.Errorf("repository: habit %s existence: %w", id, err)
	}
	if !live {
		return domain.ErrHabitNotFound
	}
	return domain.ErrHabitConflict
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE habits
		SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("repository: delete habit %s: %w", id, err)
	}
	return expectOneRow(res, domain.ErrHabitNotFound)
}

func (r *PostgresHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	var rows []habitRow
	query := `SELECT ` + habitColumns + ` FROM habits
		WHERE user_id = $1 AND updated_at > $2
		ORDER BY updated_at ASC`

	if err := r.db.SelectContext(ctx, &rows, query, userID, since); err != nil {
		return nil, fmt.Errorf("repository: habit changes of %s: %w", userID, err)
	}
	return habitsFromRows(rows), nil
}

// UpdateCounters stores derived counters without touching version or
// updated_at, so a recompute never shows up as a client-visible change.
func (r *PostgresHabitRepository) UpdateCounters(ctx context.Context, id string, c domain.HabitCounters) error {
	res, err := r.db.ExecContext(ctx, `UPDATE habits
		SET current_streak = $1, longest_streak = $2, total_completions = $3, total_skips = $4
		WHERE id = $5 AND deleted_at IS NULL`,
		c.CurrentStreak, c.LongestStreak, c.TotalCompletions, c.TotalSkips, id)
	if err != nil {
		return fmt.Errorf("repository: counters of habit %s: %w", id, err)
	}
	return expectOneRow(res, domain.ErrHabitNotFound)
}

// expectOneRow maps "no row affected" to notFound.
func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
