// Package sqlite provides the unified SQLite store for all metadata
// persistence: sources, sync state, and synced documents.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/harbourview/driftsync/internal/core/ports/driven"
)

// Store is the unified SQLite store. Individual store interfaces are
// handed out via the accessor methods.
type Store struct {
	db *sql.DB
}

// NewStore opens (and migrates) the database in dataDir. An empty
// dataDir uses the default location, ~/.driftsync/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".driftsync", "data")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	path := filepath.Join(dataDir, "driftsync.db")

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// modernc/sqlite serialises writes; a single connection avoids
	// SQLITE_BUSY churn under concurrent syncs.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// migrate applies the schema. Statements are idempotent.
func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS sources (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	type       TEXT NOT NULL,
	config     TEXT NOT NULL DEFAULT '{}',
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_state (
	source_id        TEXT PRIMARY KEY REFERENCES sources(id) ON DELETE CASCADE,
	cursor           TEXT NOT NULL DEFAULT '',
	last_sync_at     INTEGER NOT NULL DEFAULT 0,
	last_full_sync_at INTEGER NOT NULL DEFAULT 0,
	last_error       TEXT NOT NULL DEFAULT '',
	document_count   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS documents (
	id             TEXT PRIMARY KEY,
	source_id      TEXT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
	uri            TEXT NOT NULL,
	name           TEXT NOT NULL DEFAULT '',
	path           TEXT NOT NULL DEFAULT '',
	mime_type      TEXT NOT NULL DEFAULT '',
	size           INTEGER NOT NULL DEFAULT 0,
	etag           TEXT NOT NULL DEFAULT '',
	web_url        TEXT NOT NULL DEFAULT '',
	modified_at    INTEGER NOT NULL DEFAULT 0,
	content        BLOB,
	allowed_groups TEXT,
	metadata       TEXT NOT NULL DEFAULT '{}',
	UNIQUE (source_id, uri)
);

CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source_id);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// SourceStore returns the source persistence interface.
func (s *Store) SourceStore() driven.SourceStore {
	return &sourceStore{db: s.db}
}

// SyncStateStore returns the sync state persistence interface.
func (s *Store) SyncStateStore() driven.SyncStateStore {
	return &syncStateStore{db: s.db}
}

// DocumentStore returns the document persistence interface.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{db: s.db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
