// Package repotest opens throwaway databases for tests.
package repotest

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"todo-api/internal/core/database"
	"todo-api/internal/repo"
)

// Open returns a migrated SQLite database living in t.TempDir().
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "test.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
