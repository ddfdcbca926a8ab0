// Package testutil provides shared helpers for tests that need a real SQL backend.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/georgemunganga/storefront-api/internal/infrastructure/config"
	"github.com/georgemunganga/storefront-api/internal/infrastructure/database"
)

// NewSQLiteDB opens a private in-memory SQLite database with the schema applied.
// The database is closed when the test finishes.
func NewSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(context.Background(), config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err, "failed to open sqlite database")
	t.Cleanup(func() { db.Close() })

	m, err := database.NewMigrator(db, config.DriverSQLite, zap.NewNop())
	require.NoError(t, err, "failed to create migrator")
	require.NoError(t, m.Up(), "failed to apply migrations")

	return db
}
