package statistic

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"ytstat/internal/models"
)

// SQLiteStore keeps baselines as rows of the baselines table, one per kind.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create sqlite dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS baselines (
		kind TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		saved_at TIMESTAMP NOT NULL
	);`)
	return err
}

func (s *SQLiteStore) Read(kind models.EntityKind) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM baselines WHERE kind = ?`, string(kind)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read baseline %s: %w", kind, err)
	}
	return payload, nil
}

func (s *SQLiteStore) Write(kind models.EntityKind, data []byte) error {
	_, err := s.db.Exec(`INSERT INTO baselines(kind, payload, saved_at) VALUES(?,?,?)
		ON CONFLICT(kind) DO UPDATE SET payload=excluded.payload, saved_at=excluded.saved_at`,
		string(kind), data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("write baseline %s: %w", kind, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
