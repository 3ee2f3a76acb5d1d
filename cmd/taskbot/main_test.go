package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskbot/internal/model"
	"taskbot/internal/repository"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("DATABASE_URL", dbPath)
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LOG_LEVEL", "silent")
	t.Setenv("TELEGRAM_TOKEN", "")
	return dbPath
}

func seedRule(t *testing.T, dbPath, nextDate string) {
	t.Helper()
	ctx := context.Background()
	db, err := repository.NewDB(dbPath, "silent")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	store := repository.NewStore(db)
	task := model.Task{UserID: 1, Title: "Water plants", Category: "Personal"}
	require.NoError(t, store.Tasks.Create(ctx, &task))
	require.NoError(t, store.Recurrence.Create(ctx, &model.RecurrenceRule{
		TaskID:   task.ID,
		Interval: model.IntervalWeekly,
		NextDate: nextDate,
	}))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTickCommandFiresDueRules(t *testing.T) {
	dbPath := setupEnv(t)
	seedRule(t, dbPath, "2024-05-01")

	out, err := execute(t, "tick", "--date", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, "date=2024-05-01 fired=1 skipped=0\n", out)

	out, err = execute(t, "tick", "--date", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, "date=2024-05-01 fired=0 skipped=0\n", out)

	out, err = execute(t, "tick", "--date", "2024-05-08")
	require.NoError(t, err)
	assert.Equal(t, "date=2024-05-08 fired=1 skipped=0\n", out)
}

func TestTickCommandRejectsBadDate(t *testing.T) {
	setupEnv(t)
	_, err := execute(t, "tick", "--date", "05/01/2024")
	assert.ErrorContains(t, err, "invalid --date")
}

func TestServeRequiresToken(t *testing.T) {
	setupEnv(t)
	_, err := execute(t, "serve")
	assert.ErrorContains(t, err, "TELEGRAM_TOKEN is required")

	_, err = execute(t)
	assert.ErrorContains(t, err, "TELEGRAM_TOKEN is required")
}

func TestUnknownConfigFile(t *testing.T) {
	setupEnv(t)
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "tick")
	assert.ErrorContains(t, err, "read config")
}
