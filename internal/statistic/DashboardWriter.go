package statistic

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"ytstat/internal/models"
	"ytstat/internal/structures"
)

// DashboardWriter publishes the latest cycle result as a JSON document for
// static consumers.
type DashboardWriter struct {
	path string
}

func NewDashboardWriter(conf *structures.Config) *DashboardWriter {
	return &DashboardWriter{path: conf.Persistence.DashboardPath}
}

func (d *DashboardWriter) Write(result *models.CollectionResult) error {
	if result == nil {
		return fmt.Errorf("nothing to write")
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dashboard: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(d.path), 0755); err != nil {
		return err
	}
	return writeAtomic(d.path, data)
}

// Read returns the last written result, or nil when there is none.
func (d *DashboardWriter) Read() (*models.CollectionResult, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var result models.CollectionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode dashboard %s: %w", d.path, err)
	}
	return &result, nil
}
