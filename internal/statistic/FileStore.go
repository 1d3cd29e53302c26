package statistic

import (
	"fmt"
	"os"
	"path/filepath"

	"ytstat/internal/models"
)

// FileStore keeps one baseline file per entity kind under dir.
type FileStore struct {
	dir    string
	suffix string
}

func NewFileStore(dir string, compressed bool) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	suffix := ".json"
	if compressed {
		suffix = ".json.zst"
	}
	return &FileStore{dir: dir, suffix: suffix}, nil
}

func (f *FileStore) path(kind models.EntityKind) string {
	return filepath.Join(f.dir, string(kind)+f.suffix)
}

func (f *FileStore) Read(kind models.EntityKind) ([]byte, error) {
	data, err := os.ReadFile(f.path(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (f *FileStore) Write(kind models.EntityKind, data []byte) error {
	return writeAtomic(f.path(kind), data)
}

func (f *FileStore) Close() error { return nil }

// writeAtomic replaces fileName only after the new content is synced, so a
// crash leaves either the old or the new file behind.
func writeAtomic(fileName string, data []byte) error {
	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}
