package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB opens a migrated in-memory SQLite database that is closed when
// the test ends.
func NewTestDB(t testing.TB) *DB {
	t.Helper()

	db, err := Open(context.Background(), Config{Driver: DialectSQLite, DSN: ":memory:"})
	require.NoError(t, err, "failed to create test database")

	err = db.Migrate(context.Background())
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
