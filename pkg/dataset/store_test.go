package dataset

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStore_RecordAndList(t *testing.T) {
	store, err := OpenRunStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	runs := []Run{
		{ID: "run-1", CardPath: "/cards/intake.json", Conversations: 3, Turns: 5, Format: "csv",
			OutputFiles: []string{"a.csv", "b.csv", "c.csv"}, CreatedAt: base},
		{ID: "run-2", CardPath: "/cards/intake.json", Conversations: 1, Turns: 8, Format: "both",
			OutputFiles: []string{"d.csv", "d.json"}, CreatedAt: base.Add(time.Hour)},
	}
	for _, run := range runs {
		require.NoError(t, store.RecordRun(t.Context(), run))
	}

	listed, err := store.ListRuns(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// Newest first.
	assert.Equal(t, "run-2", listed[0].ID)
	assert.Equal(t, "both", listed[0].Format)
	assert.Equal(t, []string{"d.csv", "d.json"}, listed[0].OutputFiles)
	assert.Equal(t, 3, listed[1].Conversations)
}

func TestRunStore_DuplicateID(t *testing.T) {
	store, err := OpenRunStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	run := Run{ID: "run-1", CreatedAt: time.Now()}
	require.NoError(t, store.RecordRun(t.Context(), run))
	assert.Error(t, store.RecordRun(t.Context(), run))
}

func TestRunStore_ListLimit(t *testing.T) {
	store, err := OpenRunStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordRun(t.Context(), Run{
			ID:        string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	listed, err := store.ListRuns(t.Context(), 2)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "e", listed[0].ID)
}
