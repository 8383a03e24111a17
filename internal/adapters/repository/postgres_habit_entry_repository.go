package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
)

// entry_date is a DATE column; reading it back as text keeps it a calendar
// day instead of an instant in the session time zone.
const entryColumns = `
	id, habit_id, user_id,
	to_char(entry_date, 'YYYY-MM-DD') AS entry_date, status, value, notes,
	version, created_at, updated_at, deleted_at`

var ErrEntryReference = errors.New("referenced habit or user does not exist")

type PostgresEntryRepository struct {
	db *sqlx.DB
}

func NewPostgresEntryRepository(db *sqlx.DB) *PostgresEntryRepository {
	return &PostgresEntryRepository{db: db}
}

func (r *PostgresEntryRepository) Create(ctx context.Context, entry *domain.HabitEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Version == 0 {
		entry.Version = 1
	}

	query := `
		INSERT INTO habit_entries (
			id, habit_id, user_id,
			entry_date, status, value, notes,
			version, created_at, updated_at, deleted_at
		) VALUES (
			:id, :habit_id, :user_id,
			CAST(:entry_date AS DATE), :status, :value, :notes,
			:version, :created_at, :updated_at, :deleted_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		switch pgCode(err) {
		case pgForeignKeyViolation:
			return ErrEntryReference
		case pgUniqueViolation:
			return domain.ErrEntryConflict
		}
		return err
	}
	return nil
}

func (r *PostgresEntryRepository) GetByID(ctx context.Context, id string) (*domain.HabitEntry, error) {
	var entry domain.HabitEntry
	query := `SELECT ` + entryColumns + ` FROM habit_entries WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &entry, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// listRange selects live entries matching owner, with optional inclusive date
// bounds. Empty bounds are left out of the query.
func (r *PostgresEntryRepository) listRange(ctx context.Context, ownerColumn, owner, from, to string) ([]*domain.HabitEntry, error) {
	conds := []string{ownerColumn + " = $1", "deleted_at IS NULL"}
	args := []interface{}{owner}

	if from != "" {
		args = append(args, from)
		conds = append(conds, fmt.Sprintf("entry_date >= CAST($%d AS DATE)", len(args)))
	}
	if to != "" {
		args = append(args, to)
		conds = append(conds, fmt.Sprintf("entry_date <= CAST($%d AS DATE)", len(args)))
	}

	query := `SELECT ` + entryColumns + ` FROM habit_entries
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY habit_entries.entry_date ASC, created_at ASC`

	entries := []*domain.HabitEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *PostgresEntryRepository) ListByHabitID(ctx context.Context, habitID string, from, to string) ([]*domain.HabitEntry, error) {
	return r.listRange(ctx, "habit_id", habitID, from, to)
}

func (r *PostgresEntryRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to string) ([]*domain.HabitEntry, error) {
	return r.listRange(ctx, "user_id", userID, from, to)
}

// Update applies optimistic locking on entry.Version and advances it on
// success.
func (r *PostgresEntryRepository) Update(ctx context.Context, entry *domain.HabitEntry) error {
	query := `
		UPDATE habit_entries
		SET status = $1,
		    value = $2,
		    notes = $3,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $4
		  AND version = $5
		  AND deleted_at IS NULL
		RETURNING version, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		entry.Status, entry.Value, entry.Notes, entry.ID, entry.Version,
	).Scan(&entry.Version, &entry.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	exists, checkErr := r.exists(ctx, entry.ID)
	if checkErr != nil {
		return checkErr
	}
	if !exists {
		return domain.ErrEntryNotFound
	}
	return domain.ErrEntryConflict
}

func (r *PostgresEntryRepository) Delete(ctx context.Context, id string, userID string) error {
	now := time.Now().UTC()

	query := `
		UPDATE habit_entries
		SET deleted_at = $1,
		    updated_at = $1,
		    version = version + 1
		WHERE id = $2
		  AND user_id = $3
		  AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, now, id, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

func (r *PostgresEntryRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.HabitEntry, error) {
	entries := []*domain.HabitEntry{}

	query := `
		SELECT ` + entryColumns + ` FROM habit_entries
		WHERE user_id = $1
		  AND updated_at > $2
		ORDER BY updated_at ASC`

	err := r.db.SelectContext(ctx, &entries, query, userID, since)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *PostgresEntryRepository) exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT count(*) FROM habit_entries WHERE id = $1 AND deleted_at IS NULL", id)
	return count > 0, err
}
