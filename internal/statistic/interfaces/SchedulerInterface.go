package interfaces

import (
	"context"

	"ytstat/internal/models"
)

type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
	Collect(ctx context.Context, mode string) (*models.CollectionResult, error)
	Rollover()
}
