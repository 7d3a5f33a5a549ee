package driving

import (
	"context"
	"time"

	"github.com/harbourview/driftsync/internal/core/domain"
	"github.com/harbourview/driftsync/internal/core/ports/driven"
)

// SourceService manages configured document sources.
type SourceService interface {
	// Add validates the config against the connector type and persists a
	// new source. Returns domain.ErrUnsupportedType for unknown types and
	// domain.ErrInvalidInput for bad config.
	Add(ctx context.Context, sourceType, name string, config map[string]string) (*domain.Source, error)
	Get(ctx context.Context, id string) (*domain.Source, error)
	List(ctx context.Context) ([]domain.Source, error)
	// Remove deletes the source along with its sync state, documents, and
	// index entries.
	Remove(ctx context.Context, id string) error
}

// SyncMode selects full or incremental sync.
type SyncMode string

const (
	SyncModeFull        SyncMode = "full"
	SyncModeIncremental SyncMode = "incremental"
)

// SyncReport summarises a sync run.
type SyncReport struct {
	SourceID string
	Mode     SyncMode
	Synced   int
	Deleted  int
	Skipped  int
	// Partial holds non-fatal per-item errors from the run.
	Partial  []error
	Duration time.Duration
}

// SyncService runs sync jobs for sources.
type SyncService interface {
	// Sync runs a sync for the source. forceFull bypasses the stored
	// cursor. Incremental runs whose cursor has expired fall back to a
	// full sync within the same call.
	Sync(ctx context.Context, sourceID string, forceFull bool) (*SyncReport, error)
}

// SearchService queries the index with security trimming.
type SearchService interface {
	// Search returns documents visible to the given principals. Public
	// documents are always candidates; an empty principal list returns
	// public documents only.
	Search(ctx context.Context, query string, principals []string, limit int) ([]driven.IndexHit, error)
}
