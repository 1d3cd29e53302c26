package statistic

import (
	"errors"
	"fmt"
	"sort"
	"time"

	json "github.com/goccy/go-json"

	"ytstat/internal/classifier"
	"ytstat/internal/models"
	"ytstat/internal/providers"
	"ytstat/internal/statistic/interfaces"
	"ytstat/internal/structures"
)

const envelopeVersion = 1

type envelope[T any] struct {
	Version  int               `json:"version"`
	Kind     models.EntityKind `json:"kind"`
	SavedAt  time.Time         `json:"savedAt"`
	Entities []T               `json:"entities"`
}

// SnapshotStore serializes baselines into versioned envelopes on top of a
// blob backend. Unreadable baselines load as empty with a warning.
type SnapshotStore struct {
	blobs      interfaces.BlobStoreInterface
	compressor interfaces.CompressorInterface
	classifier classifier.ClassifierInterface
	metrics    providers.MetricsProviderInterface
	logger     providers.Logger
	now        func() time.Time
}

func NewSnapshotStore(blobs interfaces.BlobStoreInterface, compressor interfaces.CompressorInterface, cls classifier.ClassifierInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) *SnapshotStore {
	if metrics == nil {
		metrics = providers.NoopMetrics()
	}
	return &SnapshotStore{
		blobs:      blobs,
		compressor: compressor,
		classifier: cls,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// NewBlobStore opens the backend named by persistence.backend.
func NewBlobStore(conf *structures.Config) (interfaces.BlobStoreInterface, error) {
	switch conf.Persistence.Backend {
	case "sqlite":
		return OpenSQLiteStore(conf.Persistence.SQLitePath)
	case "file", "":
		return NewFileStore(conf.Persistence.Dir, conf.Persistence.Compress)
	default:
		return nil, fmt.Errorf("unknown persistence backend %q", conf.Persistence.Backend)
	}
}

func (s *SnapshotStore) LoadChannels() (map[string]*models.ChannelSnapshot, error) {
	list, err := load[*models.ChannelSnapshot](s, models.KindChannels)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.ChannelSnapshot, len(list))
	for _, ch := range list {
		if ch != nil && ch.ID != "" {
			out[ch.ID] = ch
		}
	}
	return out, nil
}

// LoadVideos reclassifies every video so IsShort reflects the current
// policy rather than whatever was stored.
func (s *SnapshotStore) LoadVideos() (map[string]*models.VideoSnapshot, error) {
	list, err := load[*models.VideoSnapshot](s, models.KindVideos)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.VideoSnapshot, len(list))
	for _, v := range list {
		if v == nil || v.ID == "" {
			continue
		}
		if s.classifier != nil {
			s.classifier.Apply(v)
		}
		out[v.ID] = v
	}
	return out, nil
}

func (s *SnapshotStore) SaveChannels(channels map[string]*models.ChannelSnapshot) error {
	return save(s, models.KindChannels, channels)
}

func (s *SnapshotStore) SaveVideos(videos map[string]*models.VideoSnapshot) error {
	return save(s, models.KindVideos, videos)
}

func load[T any](s *SnapshotStore, kind models.EntityKind) ([]T, error) {
	start := time.Now()
	defer func() { s.metrics.ObservePersistenceDuration(time.Since(start)) }()

	raw, err := s.blobs.Read(kind)
	if err != nil {
		return nil, fmt.Errorf("load %s baseline: %w", kind, err)
	}
	if len(raw) == 0 {
		s.logger.Infof(providers.TypeStore, "No %s baseline yet, starting empty", kind)
		return nil, nil
	}

	data, err := s.compressor.Decompress(raw)
	if err != nil {
		s.logger.Warnf(providers.TypeStore, "%v: %s baseline does not decompress: %v", models.ErrMalformedBaseline, kind, err)
		return nil, nil
	}

	var env envelope[T]
	if err := json.Unmarshal(data, &env); err == nil && env.Version > 0 {
		if env.Kind != kind {
			s.logger.Warnf(providers.TypeStore, "%v: %s baseline holds %s", models.ErrMalformedBaseline, kind, env.Kind)
			return nil, nil
		}
		return env.Entities, nil
	}

	list, err := decodeLegacy[T](data, string(kind))
	if err != nil {
		s.logger.Warnf(providers.TypeStore, "%v: %s baseline ignored: %v", models.ErrMalformedBaseline, kind, err)
		return nil, nil
	}
	s.logger.Warnf(providers.TypeStore, "Migrated %d %s from legacy baseline format", len(list), kind)
	return list, nil
}

// decodeLegacy reads the dashboard shape {"channels": [...]} or a bare
// array of entities.
func decodeLegacy[T any](data []byte, kind string) ([]T, error) {
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err == nil {
		inner, ok := wrapped[kind]
		if !ok {
			return nil, errors.New("no " + kind + " array")
		}
		var list []T
		if err := json.Unmarshal(inner, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var list []T
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

type identified interface {
	GetID() string
}

func save[T identified](s *SnapshotStore, kind models.EntityKind, items map[string]T) error {
	start := time.Now()
	defer func() { s.metrics.ObservePersistenceDuration(time.Since(start)) }()

	env := envelope[T]{
		Version:  envelopeVersion,
		Kind:     kind,
		SavedAt:  s.now().UTC(),
		Entities: make([]T, 0, len(items)),
	}
	for _, item := range items {
		env.Entities = append(env.Entities, item)
	}
	sort.Slice(env.Entities, func(i, j int) bool {
		return env.Entities[i].GetID() < env.Entities[j].GetID()
	})

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s baseline: %w", kind, err)
	}
	data, err = s.compressor.Compress(data)
	if err != nil {
		return fmt.Errorf("compress %s baseline: %w", kind, err)
	}
	if err := s.blobs.Write(kind, data); err != nil {
		return fmt.Errorf("save %s baseline: %w", kind, err)
	}
	s.logger.Infof(providers.TypeStore, "Saved %d %s", len(env.Entities), kind)
	return nil
}
