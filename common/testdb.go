package common

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OpenTestDB returns a private in-memory sqlite database, closed when the
// test ends
func OpenTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := Open("sqlite", dsn)
	if err != nil {
		tb.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("test database handle: %v", err)
	}
	// One connection keeps the in-memory database alive and serializes access
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { sqlDB.Close() })
	return db
}
