package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
)

type PostgresGroupRepository struct {
	db *sqlx.DB
}

func NewPostgresGroupRepository(db *sqlx.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

func (r *PostgresGroupRepository) Create(ctx context.Context, g *domain.Group) error {
	query := `
		INSERT INTO habit_groups (id, user_id, name, color, icon, created_at, updated_at)
		VALUES (:id, :user_id, :name, :color, :icon, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, g); err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

func (r *PostgresGroupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	var g domain.Group
	err := r.db.GetContext(ctx, &g, `SELECT id, user_id, name, color, icon, created_at, updated_at FROM habit_groups WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *PostgresGroupRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Group, error) {
	groups := []*domain.Group{}
	query := `
		SELECT id, user_id, name, color, icon, created_at, updated_at
		FROM habit_groups WHERE user_id = $1 ORDER BY name ASC`

	if err := r.db.SelectContext(ctx, &groups, query, userID); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *PostgresGroupRepository) Update(ctx context.Context, g *domain.Group) error {
	query := `
		UPDATE habit_groups SET name = :name, color = :color, icon = :icon, updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, g)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

// Delete detaches the group's habits, bumping their version so syncing
// clients see the change, then removes the group in the same transaction.
func (r *PostgresGroupRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE habits SET group_id = NULL, updated_at = NOW(), version = version + 1
		WHERE group_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to detach habits: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM habit_groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrGroupNotFound
	}

	return tx.Commit()
}
