package driven

import (
	"context"

	"github.com/harbourview/driftsync/internal/core/domain"
)

// SourceStore persists source configuration.
type SourceStore interface {
	Save(ctx context.Context, source *domain.Source) error
	Get(ctx context.Context, id string) (*domain.Source, error)
	List(ctx context.Context) ([]domain.Source, error)
	Delete(ctx context.Context, id string) error
}

// SyncStateStore persists sync cursors and run outcomes.
type SyncStateStore interface {
	// Get returns the state for a source, or domain.ErrNotFound if the
	// source has never synced.
	Get(ctx context.Context, sourceID string) (*domain.SyncState, error)
	Save(ctx context.Context, state *domain.SyncState) error
	Delete(ctx context.Context, sourceID string) error
}

// DocumentStore persists synced documents.
type DocumentStore interface {
	Upsert(ctx context.Context, doc *domain.Document) error
	Get(ctx context.Context, sourceID, uri string) (*domain.Document, error)
	// Delete removes a document; deleting a missing document is not an
	// error.
	Delete(ctx context.Context, sourceID, uri string) error
	DeleteBySource(ctx context.Context, sourceID string) error
	// ListURIs returns every document URI held for a source. Used by the
	// full-sync reconciliation pass to detect deletions.
	ListURIs(ctx context.Context, sourceID string) ([]string, error)
	Count(ctx context.Context, sourceID string) (int64, error)
}
