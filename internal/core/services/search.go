package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/harbourview/driftsync/internal/core/domain"
	"github.com/harbourview/driftsync/internal/core/ports/driven"
	"github.com/harbourview/driftsync/internal/core/ports/driving"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService queries the index with security trimming.
type SearchService struct {
	indexer driven.Indexer
}

// NewSearchService creates a search service.
func NewSearchService(indexer driven.Indexer) *SearchService {
	return &SearchService{indexer: indexer}
}

// Search returns documents visible to the given principals. Malformed
// principals are rejected rather than dropped so a typo cannot silently
// narrow results to public only.
func (s *SearchService) Search(
	ctx context.Context, query string, principals []string, limit int,
) ([]driven.IndexHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}

	for _, p := range principals {
		if !domain.IsValidPrincipal(p) {
			return nil, fmt.Errorf("%w: invalid principal %q", domain.ErrInvalidInput, p)
		}
	}

	return s.indexer.Search(ctx, query, domain.NormaliseGroups(principals), limit)
}
