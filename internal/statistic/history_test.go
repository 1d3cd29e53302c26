package statistic

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytstat/internal/models"
	"ytstat/internal/testutil"
)

func report(id string, started time.Time) models.CycleReport {
	return models.CycleReport{CycleID: id, Mode: "light", StartedAt: started, Outcome: models.OutcomeOK}
}

func TestHistoryStore_AppendIsBufferedUntilFlush(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	h := NewHistoryStore(dir, 0, IdentityCompression{}, &testutil.MockLogger{})
	h.now = func() time.Time { return now }

	h.Append(report("a", now.Add(-time.Hour)))

	_, err := os.Stat(filepath.Join(dir, "history.json"))
	assert.True(t, os.IsNotExist(err))
	assert.Len(t, h.Recent(time.Time{}), 1)

	require.NoError(t, h.Flush())
	_, err = os.Stat(filepath.Join(dir, "history.json"))
	assert.NoError(t, err)
}

func TestHistoryStore_RetentionAndRestore(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	comp, err := NewZstdCompressor()
	require.NoError(t, err)

	h := NewHistoryStore(dir, 0, comp, &testutil.MockLogger{})
	h.now = func() time.Time { return now }
	h.Append(report("old", now.Add(-8*24*time.Hour)))
	h.Append(report("b", now.Add(-2*time.Hour)))
	h.Append(report("a", now.Add(-3*time.Hour)))
	require.NoError(t, h.Flush())

	restored := NewHistoryStore(dir, 0, comp, &testutil.MockLogger{})
	require.NoError(t, restored.Restore())

	recent := restored.Recent(time.Time{})
	require.Len(t, recent, 2)
	assert.Equal(t, "a", recent[0].CycleID)
	assert.Equal(t, "b", recent[1].CycleID)
	assert.Len(t, restored.Recent(now.Add(-150*time.Minute)), 1)
}

func TestHistoryStore_RestoreMissingOrCorrupt(t *testing.T) {
	dir := t.TempDir()
	logger := &testutil.MockLogger{}
	h := NewHistoryStore(dir, 0, IdentityCompression{}, logger)
	require.NoError(t, h.Restore())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "history.json"), []byte("nope"), 0644))
	require.NoError(t, h.Restore())
	assert.Empty(t, h.Recent(time.Time{}))
	assert.Equal(t, 1, logger.Count("error"))
}

func TestHistoryStore_FlushFailureKeepsPending(t *testing.T) {
	comp := &testutil.MockCompressor{
		CompressFn: func([]byte) ([]byte, error) { return nil, errors.New("compress error") },
	}
	h := NewHistoryStore(t.TempDir(), time.Hour, comp, &testutil.MockLogger{})
	h.Append(report("a", time.Now()))

	assert.Error(t, h.Flush())
	assert.Len(t, h.Recent(time.Time{}), 1)
}
