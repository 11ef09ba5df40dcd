package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/diary-emotion-backend/internal/inference"
	"github.com/tbourn/diary-emotion-backend/internal/lock"
	"github.com/tbourn/diary-emotion-backend/internal/repo"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if migrate {
		if err := repo.AutoMigrate(db); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	return db
}

// countStatements counts every query and write issued through db.
func countStatements(t *testing.T, db *gorm.DB) *int {
	t.Helper()
	var (
		mu sync.Mutex
		n  int
	)
	inc := func(*gorm.DB) { mu.Lock(); n++; mu.Unlock() }
	cb := db.Callback()
	must := func(err error) {
		if err != nil {
			t.Fatalf("register callback: %v", err)
		}
	}
	must(cb.Query().Before("gorm:query").Register("test:count_query", inc))
	must(cb.Create().Before("gorm:create").Register("test:count_create", inc))
	must(cb.Update().Before("gorm:update").Register("test:count_update", inc))
	must(cb.Delete().Before("gorm:delete").Register("test:count_delete", inc))
	return &n
}

type fakeAnalyzer struct {
	mu    sync.Mutex
	calls int
	last  inference.Request
	resp  *inference.Response
	err   error
	panic bool
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req inference.Request) (*inference.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = req
	if f.panic {
		panic("model exploded")
	}
	return f.resp, f.err
}

func scored(code int, label *string, probs map[string]float64) *inference.Response {
	return &inference.Response{Emotion: &code, EmotionLabel: label, Probabilities: probs}
}

type busyLocker struct{}

func (busyLocker) Obtain(context.Context, string, time.Duration) (lock.ReleaseFunc, error) {
	return nil, lock.ErrNotObtained
}

type recordingLocker struct {
	keys     []string
	released int
}

func (l *recordingLocker) Obtain(_ context.Context, key string, _ time.Duration) (lock.ReleaseFunc, error) {
	l.keys = append(l.keys, key)
	return func(context.Context) error { l.released++; return nil }, nil
}

// steppingClock returns start, start+step, start+2*step, ...
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var (
		mu sync.Mutex
		n  int
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

func failOn(t *testing.T, db *gorm.DB, kind string) {
	t.Helper()
	boom := func(tx *gorm.DB) { tx.AddError(errors.New("boom")) }
	cb := db.Callback()
	var err error
	switch kind {
	case "query":
		err = cb.Query().Before("gorm:query").Register("test:fail_query", boom)
	case "create":
		err = cb.Create().Before("gorm:create").Register("test:fail_create", boom)
	case "update":
		err = cb.Update().Before("gorm:update").Register("test:fail_update", boom)
	case "delete":
		err = cb.Delete().Before("gorm:delete").Register("test:fail_delete", boom)
	}
	if err != nil {
		t.Fatalf("register failing callback: %v", err)
	}
}

func i64(v int64) *int64 { return &v }
func str(s string) *string { return &s }
