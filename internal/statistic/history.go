package statistic

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"ytstat/internal/models"
	"ytstat/internal/providers"
	"ytstat/internal/statistic/interfaces"
	"ytstat/internal/structures"
)

const DefaultHistoryRetention = 7 * 24 * time.Hour

type historyFile struct {
	Reports []models.CycleReport `json:"reports"`
}

// HistoryStore keeps a rolling window of cycle reports. Appends are
// buffered in memory; Flush is the only method that writes to disk.
type HistoryStore struct {
	mu         sync.RWMutex
	path       string
	retention  time.Duration
	reports    []models.CycleReport
	pending    []models.CycleReport
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	now        func() time.Time
}

func NewHistoryStore(dir string, retention time.Duration, compressor interfaces.CompressorInterface, logger providers.Logger) *HistoryStore {
	if retention <= 0 {
		retention = DefaultHistoryRetention
	}
	return &HistoryStore{
		path:       filepath.Join(dir, "history.json"),
		retention:  retention,
		compressor: compressor,
		logger:     logger,
		now:        time.Now,
	}
}

// NewHistoryStoreFromConfig keeps the history next to the baselines.
func NewHistoryStoreFromConfig(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger) *HistoryStore {
	return NewHistoryStore(conf.Persistence.Dir, DefaultHistoryRetention, compressor, logger)
}

func (h *HistoryStore) Append(report models.CycleReport) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = append(h.pending, report)
}

// Recent returns flushed and pending reports started at or after since,
// oldest first.
func (h *HistoryStore) Recent(since time.Time) []models.CycleReport {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]models.CycleReport, 0, len(h.reports)+len(h.pending))
	for _, list := range [][]models.CycleReport{h.reports, h.pending} {
		for _, r := range list {
			if !r.StartedAt.Before(since) {
				out = append(out, r)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

// Flush merges pending reports, drops those older than the retention window
// and rewrites the history file.
func (h *HistoryStore) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	merged := append(append([]models.CycleReport{}, h.reports...), h.pending...)
	cutoff := h.now().Add(-h.retention)
	kept := merged[:0]
	for _, r := range merged {
		if !r.StartedAt.Before(cutoff) {
			kept = append(kept, r)
		}
	}

	data, err := json.Marshal(historyFile{Reports: kept})
	if err != nil {
		return err
	}
	data, err = h.compressor.Compress(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return err
	}
	if err := writeAtomic(h.path, data); err != nil {
		return err
	}

	h.reports = kept
	h.pending = nil
	return nil
}

// Restore loads the history file once at startup. A missing or unreadable
// file leaves the history empty.
func (h *HistoryStore) Restore() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	decompressed, err := h.compressor.Decompress(data)
	if err != nil {
		h.logger.Errorf(providers.TypeStore, "Failed to decompress history %s: %s", h.path, err)
		return nil
	}
	var hf historyFile
	if err := json.Unmarshal(decompressed, &hf); err != nil {
		h.logger.Errorf(providers.TypeStore, "Failed to parse history %s: %s", h.path, err)
		return nil
	}
	h.reports = hf.Reports
	return nil
}
