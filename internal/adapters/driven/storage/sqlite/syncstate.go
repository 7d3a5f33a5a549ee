package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harbourview/driftsync/internal/core/domain"
	"github.com/harbourview/driftsync/internal/core/ports/driven"
)

// Ensure syncStateStore implements the interface.
var _ driven.SyncStateStore = (*syncStateStore)(nil)

type syncStateStore struct {
	db *sql.DB
}

func (s *syncStateStore) Get(ctx context.Context, sourceID string) (*domain.SyncState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT source_id, cursor, last_sync_at, last_full_sync_at, last_error, document_count
		FROM sync_state WHERE source_id = ?`, sourceID)

	var (
		state          domain.SyncState
		lastSyncAt     int64
		lastFullSyncAt int64
	)
	err := row.Scan(
		&state.SourceID, &state.Cursor,
		&lastSyncAt, &lastFullSyncAt,
		&state.LastError, &state.DocumentCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: sync state for source %s", domain.ErrNotFound, sourceID)
		}
		return nil, fmt.Errorf("get sync state: %w", err)
	}

	if lastSyncAt > 0 {
		state.LastSyncAt = time.Unix(0, lastSyncAt).UTC()
	}
	if lastFullSyncAt > 0 {
		state.LastFullSyncAt = time.Unix(0, lastFullSyncAt).UTC()
	}
	return &state, nil
}

func (s *syncStateStore) Save(ctx context.Context, state *domain.SyncState) error {
	var lastSyncAt, lastFullSyncAt int64
	if !state.LastSyncAt.IsZero() {
		lastSyncAt = state.LastSyncAt.UnixNano()
	}
	if !state.LastFullSyncAt.IsZero() {
		lastFullSyncAt = state.LastFullSyncAt.UnixNano()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_state (source_id, cursor, last_sync_at, last_full_sync_at, last_error, document_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id) DO UPDATE SET
			cursor = excluded.cursor,
			last_sync_at = excluded.last_sync_at,
			last_full_sync_at = excluded.last_full_sync_at,
			last_error = excluded.last_error,
			document_count = excluded.document_count`,
		state.SourceID, state.Cursor, lastSyncAt, lastFullSyncAt,
		state.LastError, state.DocumentCount,
	)
	if err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}
	return nil
}

func (s *syncStateStore) Delete(ctx context.Context, sourceID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sync_state WHERE source_id = ?`, sourceID); err != nil {
		return fmt.Errorf("delete sync state: %w", err)
	}
	return nil
}
