package services

import (
	"testing"

	"vampyr-backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory SQLite database with the full schema.
// The pool is pinned to a single connection: in-memory SQLite is per-connection,
// and a single writer makes concurrent-transaction tests deterministic.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Player{},
		&models.Item{},
		&models.Achievement{},
		&models.Character{},
		&models.LinkCode{},
		&models.Conversation{},
		&models.Message{},
		&models.Lead{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
