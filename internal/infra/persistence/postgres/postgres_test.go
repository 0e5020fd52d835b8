package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_UsesEmbeddedDir(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir

		return nil
	}

	require.NoError(t, RunMigrations(context.Background(), nil))
	assert.Equal(t, ".", gotDir)
}

func TestRunMigrations_PropagatesError(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	boom := errors.New("boom")
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return boom
	}

	err := RunMigrations(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
}

func TestPoolWaitReport(t *testing.T) {
	prev := sql.DBStats{WaitCount: 4, WaitDuration: 10 * time.Millisecond}

	_, _, ok := poolWaitReport(prev, prev)
	assert.False(t, ok, "no new waits")

	level, attrs, ok := poolWaitReport(prev, sql.DBStats{WaitCount: 6, WaitDuration: 20 * time.Millisecond, InUse: 3})
	require.True(t, ok)
	assert.Equal(t, slog.LevelDebug, level)
	assert.Contains(t, attrs, slog.Duration("avgWait", 5*time.Millisecond))
	assert.Contains(t, attrs, slog.Int("inUse", 3))

	level, _, ok = poolWaitReport(prev, sql.DBStats{WaitCount: 5, WaitDuration: time.Second})
	require.True(t, ok)
	assert.Equal(t, slog.LevelWarn, level)
}
