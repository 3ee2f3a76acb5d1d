package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskbot/internal/repository"
)

func newTestDB(t *testing.T) (*gorm.DB, *repository.Store) {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"), "silent")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db, repository.NewStore(db)
}

func at(date string) FixedClock {
	d, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		panic(err)
	}
	return FixedClock{At: d.Add(10 * time.Hour)}
}

// failTable makes the nth write of kind ("create" or "update") into table fail.
func failTable(t *testing.T, db *gorm.DB, kind, table string, nth int) {
	t.Helper()
	seen := 0
	hook := func(tx *gorm.DB) {
		if tx.Statement.Table != table {
			return
		}
		seen++
		if seen == nth {
			_ = tx.AddError(errInjected)
		}
	}
	var err error
	switch kind {
	case "create":
		err = db.Callback().Create().Before("gorm:create").Register("test:fail_"+table, hook)
	case "update":
		err = db.Callback().Update().Before("gorm:update").Register("test:fail_"+table, hook)
	default:
		t.Fatalf("unknown kind %q", kind)
	}
	require.NoError(t, err)
}

type injectedError struct{}

func (injectedError) Error() string { return "injected failure" }

var errInjected error = injectedError{}

func repositoryAll() repository.TaskFilter {
	return repository.TaskFilter{}
}
