package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ese-lab/ragcoder/internal/config"
	"github.com/ese-lab/ragcoder/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_SaveAndList(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	started := time.Now().UTC().Truncate(time.Second)
	run := &model.Run{
		Model:       "gemini-1.5-pro",
		Status:      model.RunStatusDegraded,
		Responses:   10,
		Rows:        14,
		Errors:      2,
		ResultsFile: "coded_results.csv",
		StartedAt:   started,
		FinishedAt:  started.Add(time.Minute),
	}
	require.NoError(t, s.SaveRun(ctx, run))
	assert.NotEmpty(t, run.ID, "SaveRun must assign an ID")

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, model.RunStatusDegraded, runs[0].Status)
	assert.Equal(t, 14, runs[0].Rows)
	assert.Equal(t, "coded_results.csv", runs[0].ResultsFile)
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		run := &model.Run{
			Model:      "gemini-1.5-pro",
			Status:     model.RunStatusComplete,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + 30*time.Second),
		}
		require.NoError(t, s.SaveRun(ctx, run))
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
}

func TestNew_OffDriver(t *testing.T) {
	s, err := New(context.Background(), config.StoreConfig{Driver: "off"})
	require.NoError(t, err)
	assert.IsType(t, NoopStore{}, s)
	assert.NoError(t, s.SaveRun(context.Background(), &model.Run{}))
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.StoreConfig{Driver: "mongodb"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}
