package repository

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskbot/internal/model"
)

const defaultDSN = "taskbot.db"

// busyTimeout lets the scheduler and the update loop write concurrently
// without "database is locked" failures.
const busyTimeout = 5 * time.Second

var migrations = []interface{}{
	&model.User{},
	&model.Category{},
	&model.Task{},
	&model.RecurrenceRule{},
}

// NewDB opens the SQLite file at dsn, creating its directory if needed, and
// migrates the schema. logLevel is one of silent, error, warn, info.
func NewDB(dsn, logLevel string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	if err := makeParentDir(dsn); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(withDriverOptions(dsn)), &gorm.Config{
		Logger: logger.New(log.New(os.Stdout, "", log.LstdFlags), logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  parseLogLevel(logLevel),
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(migrations...); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return db, nil
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// withDriverOptions appends the driver options the bot relies on unless dsn
// sets them already. Transactions take the write lock on BEGIN so that a
// read-then-write transaction waits on the busy timeout instead of failing
// with SQLITE_BUSY when another writer holds the lock.
func withDriverOptions(dsn string) string {
	options := []struct{ key, value string }{
		{"_busy_timeout", fmt.Sprint(busyTimeout.Milliseconds())},
		{"_txlock", "immediate"},
	}
	if !isMemoryDSN(dsn) {
		options = append(options, struct{ key, value string }{"_journal_mode", "WAL"})
	}
	for _, opt := range options {
		if strings.Contains(dsn, opt.key+"=") {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + opt.key + "=" + opt.value
	}
	return dsn
}

func makeParentDir(dsn string) error {
	if isMemoryDSN(dsn) {
		return nil
	}
	path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
