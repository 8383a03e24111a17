package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	_ "github.com/lib/pq"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// setupTestDB connects through lib/pq, applies the schema and empties every
// table. Tests are skipped when no database is reachable.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "kanso_user"),
		getEnv("DB_PASSWORD", "secret"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "kanso_db"),
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(context.Background(), db))
	db.MustExec("TRUNCATE TABLE habit_entries, habits, habit_groups, users CASCADE")
	return db
}

func insertUser(t *testing.T, db *sqlx.DB, id, email string) {
	t.Helper()
	now := time.Now().UTC()
	db.MustExec(`INSERT INTO users (id, email, password_hash, created_at, updated_at)
        VALUES ($1, $2, 'hash', $3, $3)`, id, email, now)
}

func insertHabit(t *testing.T, db *sqlx.DB, id, userID, title string) {
	t.Helper()
	now := time.Now().UTC()
	db.MustExec(`INSERT INTO habits (id, user_id, title, type, frequency_type, start_date, created_at, updated_at)
        VALUES ($1, $2, $3, 'boolean', 'daily', $4, $4, $4)`, id, userID, title, now)
}
