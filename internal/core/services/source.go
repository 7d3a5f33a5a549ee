package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harbourview/driftsync/internal/core/domain"
	"github.com/harbourview/driftsync/internal/core/ports/driven"
	"github.com/harbourview/driftsync/internal/core/ports/driving"
)

// Ensure SourceService implements the interface.
var _ driving.SourceService = (*SourceService)(nil)

// SourceService manages configured document sources.
type SourceService struct {
	sources   driven.SourceStore
	states    driven.SyncStateStore
	documents driven.DocumentStore
	factory   driven.ConnectorFactory
	indexer   driven.Indexer
	logger    *zap.Logger
}

// NewSourceService creates a source service.
func NewSourceService(
	sources driven.SourceStore,
	states driven.SyncStateStore,
	documents driven.DocumentStore,
	factory driven.ConnectorFactory,
	indexer driven.Indexer,
	logger *zap.Logger,
) *SourceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SourceService{
		sources:   sources,
		states:    states,
		documents: documents,
		factory:   factory,
		indexer:   indexer,
		logger:    logger,
	}
}

// Add validates the config against the connector type and persists a
// new source.
func (s *SourceService) Add(
	ctx context.Context, sourceType, name string, config map[string]string,
) (*domain.Source, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: source name is required", domain.ErrInvalidInput)
	}
	if config == nil {
		config = make(map[string]string)
	}

	source := &domain.Source{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      sourceType,
		Config:    config,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.factory.ValidateConfig(*source); err != nil {
		return nil, err
	}

	if err := s.sources.Save(ctx, source); err != nil {
		return nil, fmt.Errorf("save source: %w", err)
	}

	s.logger.Info("source added",
		zap.String("source_id", source.ID),
		zap.String("type", sourceType),
		zap.String("name", name))
	return source, nil
}

// Get returns a source by ID.
func (s *SourceService) Get(ctx context.Context, id string) (*domain.Source, error) {
	return s.sources.Get(ctx, id)
}

// List returns all configured sources.
func (s *SourceService) List(ctx context.Context) ([]domain.Source, error) {
	return s.sources.List(ctx)
}

// Remove deletes the source along with its sync state, documents, and
// index entries.
func (s *SourceService) Remove(ctx context.Context, id string) error {
	if _, err := s.sources.Get(ctx, id); err != nil {
		return err
	}

	// Index entries first: once the document rows are gone their IDs
	// cannot be recomputed.
	uris, err := s.documents.ListURIs(ctx, id)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	if len(uris) > 0 {
		ids := make([]string, len(uris))
		for i, uri := range uris {
			ids[i] = domain.DocumentID(id, uri)
		}
		if err := s.indexer.Delete(ctx, ids); err != nil {
			s.logger.Warn("remove index entries", zap.String("source_id", id), zap.Error(err))
		}
	}

	if err := s.documents.DeleteBySource(ctx, id); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	if err := s.states.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete sync state: %w", err)
	}
	if err := s.sources.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}

	s.logger.Info("source removed", zap.String("source_id", id))
	return nil
}
