// Package testutil provides isolated databases for package tests.
package testutil

import (
	"fmt"

	"notes-service/internal/model"
	"notes-service/pkg/config"
	"notes-service/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TB is the subset of testing.TB (and *rapid.T) the helpers need
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
	Cleanup(func())
}

// NewDB opens a fresh migrated in-memory SQLite database. A single pooled
// connection keeps the memory database alive and serializes transactions.
func NewDB(t TB) *gorm.DB {
	t.Helper()

	db, err := database.InitDB(&config.DBConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString()),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		LogLevel:     logger.Silent,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.MigrateModels(db, model.All()...); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}
