// Package noop provides a no-op indexer used when no search backend is
// configured. Syncs still run and persist documents; search returns
// nothing.
package noop

import (
	"context"

	"github.com/harbourview/driftsync/internal/core/ports/driven"
)

// Ensure Indexer implements the interface.
var _ driven.Indexer = (*Indexer)(nil)

// Indexer discards all index operations.
type Indexer struct{}

// New creates a no-op indexer.
func New() *Indexer {
	return &Indexer{}
}

func (n *Indexer) Index(ctx context.Context, records []driven.IndexRecord) error {
	return nil
}

func (n *Indexer) Delete(ctx context.Context, ids []string) error {
	return nil
}

func (n *Indexer) Search(ctx context.Context, query string, principals []string, limit int) ([]driven.IndexHit, error) {
	return nil, nil
}

func (n *Indexer) Healthy() bool { return false }

func (n *Indexer) Close() error { return nil }
