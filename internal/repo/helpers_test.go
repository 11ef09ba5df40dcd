package repo

import (
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database and migrates this service's
// tables unless migrate is false.
func newTestDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if migrate {
		if err := AutoMigrate(db); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	return db
}

// countQueries installs a callback that counts SELECT statements issued by db.
func countQueries(t *testing.T, db *gorm.DB) *int {
	t.Helper()
	n := new(int)
	if err := db.Callback().Query().Before("gorm:query").Register("test:count_queries", func(*gorm.DB) {
		*n++
	}); err != nil {
		t.Fatalf("register callback: %v", err)
	}
	return n
}

func ptr[T any](v T) *T { return &v }
