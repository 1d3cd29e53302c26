package interfaces

import (
	"time"

	"ytstat/internal/models"
)

// BlobStoreInterface keeps one opaque payload per entity kind. Read returns
// nil without error when nothing was stored yet.
type BlobStoreInterface interface {
	Read(kind models.EntityKind) ([]byte, error)
	Write(kind models.EntityKind, data []byte) error
	Close() error
}

// SnapshotStoreInterface persists the baseline maps between cycles.
type SnapshotStoreInterface interface {
	LoadChannels() (map[string]*models.ChannelSnapshot, error)
	LoadVideos() (map[string]*models.VideoSnapshot, error)
	SaveChannels(channels map[string]*models.ChannelSnapshot) error
	SaveVideos(videos map[string]*models.VideoSnapshot) error
}

type DashboardWriterInterface interface {
	Write(result *models.CollectionResult) error
	Read() (*models.CollectionResult, error)
}

type HistoryStoreInterface interface {
	Append(report models.CycleReport)
	Recent(since time.Time) []models.CycleReport
	Flush() error
	Restore() error
}
