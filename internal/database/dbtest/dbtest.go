// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"showdown-vote/internal/config"
	"showdown-vote/internal/database"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// Open returns a migrated sqlite database in the test's temp dir, closed on cleanup.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	cfg := &config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "test.db"),
	}
	db, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}
