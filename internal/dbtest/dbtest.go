// Package dbtest provides migrated in-memory SQLite databases for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"wartungsmanager-backend/config"
	"wartungsmanager-backend/internal/db"
)

// Open returns a fresh, migrated database that lives until the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver:   db.DriverSQLite,
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		LogLevel: "silent",
	}
	gormDB, err := db.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return gormDB
}
