package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migrate creates the tables used by the postgres repositories. Every
// statement is idempotent, so it runs on each start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS habit_groups (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS habits (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			group_id TEXT REFERENCES habit_groups(id) ON DELETE SET NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0,
			type TEXT NOT NULL,
			frequency_type TEXT NOT NULL,
			weekdays JSONB,
			reminder_time TEXT,
			interval INTEGER NOT NULL DEFAULT 1 CHECK (interval > 0),
			target_value INTEGER NOT NULL DEFAULT 1,
			unit TEXT NOT NULL DEFAULT '',
			current_streak INTEGER NOT NULL DEFAULT 0,
			longest_streak INTEGER NOT NULL DEFAULT 0,
			total_completions INTEGER NOT NULL DEFAULT 0,
			total_skips INTEGER NOT NULL DEFAULT 0,
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ,
			archived_at TIMESTAMPTZ,
			version INTEGER NOT NULL DEFAULT 1,
			deleted_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS habit_entries (
			id TEXT PRIMARY KEY,
			habit_id TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			entry_date DATE NOT NULL,
			status TEXT NOT NULL DEFAULT 'completed',
			value INTEGER NOT NULL DEFAULT 0 CHECK (value >= 0),
			notes TEXT NOT NULL DEFAULT '',
			version INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`,
		`ALTER TABLE habits ADD COLUMN IF NOT EXISTS total_completions INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE habits ADD COLUMN IF NOT EXISTS total_skips INTEGER NOT NULL DEFAULT 0`,
		`CREATE INDEX IF NOT EXISTS idx_habits_user_updated ON habits(user_id, updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_habit_date ON habit_entries(habit_id, entry_date) WHERE deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_entries_user_date ON habit_entries(user_id, entry_date) WHERE deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_entries_user_updated ON habit_entries(user_id, updated_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
