package history

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveshift/driveshift/internal/handoff"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(":memory:", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestRecordBatch_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batchID := NewBatchID()
	outcomes := []handoff.TransferOutcome{
		{FileID: "F1", FileName: "one.txt", Success: true, Message: "ownership transferred"},
		{FileID: "F2", FileName: "two.txt", Err: handoff.ErrNotFound},
	}

	require.NoError(t, s.RecordBatch(ctx, batchID, "a@x.com", "b@x.com", outcomes))

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first: the second outcome was inserted last.
	assert.Equal(t, "F2", entries[0].FileID)
	assert.False(t, entries[0].Success)
	assert.Contains(t, entries[0].Error, "not found")

	assert.Equal(t, "F1", entries[1].FileID)
	assert.Equal(t, "one.txt", entries[1].FileName)
	assert.True(t, entries[1].Success)
	assert.Empty(t, entries[1].Error)

	for _, e := range entries {
		assert.Equal(t, batchID, e.BatchID)
		assert.Equal(t, "a@x.com", e.SourceEmail)
		assert.Equal(t, "b@x.com", e.TargetEmail)
		assert.False(t, e.CreatedAt.IsZero())
	}
}

func TestRecordBatch_EmptyOutcomes(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.RecordBatch(context.Background(), NewBatchID(), "a@x.com", "b@x.com", nil))

	entries, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecent_Limit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var outcomes []handoff.TransferOutcome
	for i := 0; i < 5; i++ {
		outcomes = append(outcomes, handoff.TransferOutcome{
			FileID: string(rune('A' + i)), Success: true,
		})
	}

	require.NoError(t, s.RecordBatch(ctx, NewBatchID(), "a@x.com", "b@x.com", outcomes))

	entries, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "E", entries[0].FileID)
	assert.Equal(t, "D", entries[1].FileID)

	// Non-positive limit falls back to the default.
	entries, err = s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "history.db")

	s, err := Open(dbPath, slog.Default())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.RecordBatch(context.Background(), NewBatchID(), "", "b@x.com",
		[]handoff.TransferOutcome{{FileID: "F1", Success: true}}))

	entries, err := s.Recent(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(dbPath, slog.Default())
	require.NoError(t, err)

	batchID := NewBatchID()
	require.NoError(t, s.RecordBatch(context.Background(), batchID, "a@x.com", "b@x.com",
		[]handoff.TransferOutcome{{FileID: "F1", FileName: "one.txt", Success: true}}))
	require.NoError(t, s.Close())

	// Reopen runs migrations against an already-migrated database.
	s, err = Open(dbPath, slog.Default())
	require.NoError(t, err)
	defer s.Close()

	entries, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, batchID, entries[0].BatchID)
}

func TestNewBatchID_Unique(t *testing.T) {
	assert.NotEqual(t, NewBatchID(), NewBatchID())
	assert.Len(t, NewBatchID(), 36)
}
