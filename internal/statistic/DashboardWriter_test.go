package statistic

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytstat/internal/models"
	"ytstat/internal/structures"
)

func newTestDashboard(t *testing.T) (*DashboardWriter, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "public", "dashboard.json")
	return NewDashboardWriter(&structures.Config{Persistence: structures.Persistence{DashboardPath: path}}), path
}

func TestDashboardWriter_WriteAndRead(t *testing.T) {
	w, path := newTestDashboard(t)
	result := &models.CollectionResult{
		CycleID: "c1",
		Mode:    "light",
		Summary: models.Summary{TotalChannels: 3},
	}

	require.NoError(t, w.Write(result))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "\n  \"cycleId\": \"c1\""), "output is indented")

	back, err := w.Read()
	require.NoError(t, err)
	require.NotNil(t, back)
	assert.Equal(t, "c1", back.CycleID)
	assert.Equal(t, 3, back.Summary.TotalChannels)
}

func TestDashboardWriter_ReadMissing(t *testing.T) {
	w, _ := newTestDashboard(t)

	result, err := w.Read()
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestDashboardWriter_ReadCorrupt(t *testing.T) {
	w, path := newTestDashboard(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err := w.Read()
	assert.Error(t, err)
}

func TestDashboardWriter_WriteNil(t *testing.T) {
	w, _ := newTestDashboard(t)
	assert.Error(t, w.Write(nil))
}
