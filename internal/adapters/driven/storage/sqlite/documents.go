package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harbourview/driftsync/internal/core/domain"
	"github.com/harbourview/driftsync/internal/core/ports/driven"
)

// Ensure documentStore implements the interface.
var _ driven.DocumentStore = (*documentStore)(nil)

type documentStore struct {
	db *sql.DB
}

func (s *documentStore) Upsert(ctx context.Context, doc *domain.Document) error {
	// A NULL allow-list (permissions unreadable) is distinct from an
	// empty one, so the column is only populated when the slice is
	// non-nil.
	var allowedGroups sql.NullString
	if doc.AllowedGroups != nil {
		data, err := json.Marshal(doc.AllowedGroups)
		if err != nil {
			return fmt.Errorf("marshal allowed groups: %w", err)
		}
		allowedGroups = sql.NullString{String: string(data), Valid: true}
	}

	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (
			id, source_id, uri, name, path, mime_type, size, etag,
			web_url, modified_at, content, allowed_groups, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id, uri) DO UPDATE SET
			name = excluded.name,
			path = excluded.path,
			mime_type = excluded.mime_type,
			size = excluded.size,
			etag = excluded.etag,
			web_url = excluded.web_url,
			modified_at = excluded.modified_at,
			content = excluded.content,
			allowed_groups = excluded.allowed_groups,
			metadata = excluded.metadata`,
		domain.DocumentID(doc.SourceID, doc.URI),
		doc.SourceID, doc.URI, doc.Name, doc.Path, doc.MIMEType,
		doc.Size, doc.ETag, doc.WebURL, doc.ModifiedAt.UnixNano(),
		doc.Content, allowedGroups, string(metadata),
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (s *documentStore) Get(ctx context.Context, sourceID, uri string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT source_id, uri, name, path, mime_type, size, etag,
		       web_url, modified_at, content, allowed_groups, metadata
		FROM documents WHERE source_id = ? AND uri = ?`, sourceID, uri)

	var (
		doc           domain.Document
		modifiedAt    int64
		allowedGroups sql.NullString
		metadata      string
	)
	err := row.Scan(
		&doc.SourceID, &doc.URI, &doc.Name, &doc.Path, &doc.MIMEType,
		&doc.Size, &doc.ETag, &doc.WebURL, &modifiedAt,
		&doc.Content, &allowedGroups, &metadata,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, uri)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	doc.ModifiedAt = time.Unix(0, modifiedAt).UTC()
	if allowedGroups.Valid {
		if err := json.Unmarshal([]byte(allowedGroups.String), &doc.AllowedGroups); err != nil {
			return nil, fmt.Errorf("unmarshal allowed groups: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(metadata), &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return &doc, nil
}

func (s *documentStore) Delete(ctx context.Context, sourceID, uri string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE source_id = ? AND uri = ?`, sourceID, uri); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (s *documentStore) DeleteBySource(ctx context.Context, sourceID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE source_id = ?`, sourceID); err != nil {
		return fmt.Errorf("delete documents for source: %w", err)
	}
	return nil
}

func (s *documentStore) ListURIs(ctx context.Context, sourceID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT uri FROM documents WHERE source_id = ? ORDER BY uri`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("list document URIs: %w", err)
	}
	defer rows.Close()

	var uris []string
	for rows.Next() {
		var uri string
		if err := rows.Scan(&uri); err != nil {
			return nil, fmt.Errorf("scan URI: %w", err)
		}
		uris = append(uris, uri)
	}
	return uris, rows.Err()
}

func (s *documentStore) Count(ctx context.Context, sourceID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE source_id = ?`, sourceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}
