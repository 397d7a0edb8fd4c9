// Package databasetest connects repository tests to a real PostgreSQL database.
// Tests using it are skipped unless TEST_DATABASE_URL is set.
package databasetest

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hezo-be/webinar-backend/pkg/database"
)

// Open returns a migrated pool for TEST_DATABASE_URL, closed when t ends.
func Open(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	pool, err := database.NewPostgresPool(ctx, dsn, 4, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, database.Migrate(ctx, pool, logger))
	return pool
}

// CreateWebinar inserts a webinar and deletes it, with everything hanging off it, when t ends.
// Tests scope their assertions to their own webinars so packages can share one database.
func CreateWebinar(t *testing.T, pool *pgxpool.Pool, title string, active bool) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := pool.QueryRow(context.Background(),
		`INSERT INTO webinars (title, video_url, is_active) VALUES ($1, 'https://youtu.be/abc', $2) RETURNING id`,
		title, active).Scan(&id)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM webinars WHERE id = $1`, id)
	})
	return id
}

// Count runs a COUNT(*) query and returns the result.
func Count(t *testing.T, pool *pgxpool.Pool, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}
