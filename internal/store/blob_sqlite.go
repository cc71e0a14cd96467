package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteBlobStore keeps blobs in a single table keyed by path. It backs the
// remote content tier when the deployment mounts a shared database file.
type SQLiteBlobStore struct {
	db *sql.DB
}

func NewSQLiteBlobStore(dataSourceName string) (*SQLiteBlobStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping blob database: %w", err)
	}

	store := &SQLiteBlobStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize blob schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteBlobStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteBlobStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS blobs (
        key TEXT PRIMARY KEY,
        content_type TEXT NOT NULL,
        data BLOB NOT NULL,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM blobs WHERE key = ?", key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBlobMiss
		}
		return nil, fmt.Errorf("failed to query blob %s: %w", key, err)
	}
	return data, nil
}

func (s *SQLiteBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	stmt, err := s.db.PrepareContext(ctx, `
        INSERT INTO blobs (key, content_type, data, updated_at) VALUES (?, ?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET content_type = excluded.content_type, data = excluded.data, updated_at = excluded.updated_at
    `)
	if err != nil {
		return fmt.Errorf("failed to prepare blob upsert: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.ExecContext(ctx, key, contentType, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to execute blob upsert: %w", err)
	}
	return nil
}
