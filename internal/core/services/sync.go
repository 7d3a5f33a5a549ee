package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/harbourview/driftsync/internal/core/domain"
	"github.com/harbourview/driftsync/internal/core/ports/driven"
	"github.com/harbourview/driftsync/internal/core/ports/driving"
)

// indexBatchSize is how many documents are pushed to the indexer per
// call during a sync.
const indexBatchSize = 100

// Ensure SyncService implements the interface.
var _ driving.SyncService = (*SyncService)(nil)

// SyncService runs sync jobs: it drives a connector, persists the
// resulting documents, pushes them into the search index, and advances
// the stored cursor.
type SyncService struct {
	sources   driven.SourceStore
	states    driven.SyncStateStore
	documents driven.DocumentStore
	factory   driven.ConnectorFactory
	indexer   driven.Indexer
	logger    *zap.Logger
}

// NewSyncService creates a sync service.
func NewSyncService(
	sources driven.SourceStore,
	states driven.SyncStateStore,
	documents driven.DocumentStore,
	factory driven.ConnectorFactory,
	indexer driven.Indexer,
	logger *zap.Logger,
) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		sources:   sources,
		states:    states,
		documents: documents,
		factory:   factory,
		indexer:   indexer,
		logger:    logger,
	}
}

// Sync runs a sync for the source. Incremental is used when a cursor is
// stored and forceFull is false. An incremental run whose cursor has
// expired falls back to a full sync within the same call.
func (s *SyncService) Sync(ctx context.Context, sourceID string, forceFull bool) (*driving.SyncReport, error) {
	source, err := s.sources.Get(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	state, err := s.states.Get(ctx, sourceID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		state = &domain.SyncState{SourceID: sourceID}
	}

	connector, err := s.factory.Create(ctx, *source)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	if err := connector.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate source %s: %w", sourceID, err)
	}

	mode := driving.SyncModeIncremental
	if forceFull || state.Cursor == "" {
		mode = driving.SyncModeFull
	}

	start := time.Now()
	report, runErr := s.runSync(ctx, connector, state, mode)

	if runErr != nil && mode == driving.SyncModeIncremental && errors.Is(runErr, domain.ErrCursorExpired) {
		s.logger.Warn("cursor expired, falling back to full sync",
			zap.String("source_id", sourceID))
		mode = driving.SyncModeFull
		report, runErr = s.runSync(ctx, connector, state, mode)
	}

	now := time.Now().UTC()
	state.LastSyncAt = now
	if runErr != nil {
		state.LastError = runErr.Error()
	} else {
		state.LastError = ""
		if mode == driving.SyncModeFull {
			state.LastFullSyncAt = now
		}
	}
	if count, err := s.documents.Count(ctx, sourceID); err == nil {
		state.DocumentCount = count
	}
	if err := s.states.Save(ctx, state); err != nil {
		s.logger.Error("save sync state", zap.String("source_id", sourceID), zap.Error(err))
	}

	if runErr != nil {
		return nil, runErr
	}

	report.SourceID = sourceID
	report.Mode = mode
	report.Duration = time.Since(start)
	return report, nil
}

// runSync executes one pass in the given mode and updates state.Cursor
// on success.
func (s *SyncService) runSync(
	ctx context.Context,
	connector driven.Connector,
	state *domain.SyncState,
	mode driving.SyncMode,
) (*driving.SyncReport, error) {
	if mode == driving.SyncModeFull {
		return s.runFull(ctx, connector, state)
	}
	return s.runIncremental(ctx, connector, state)
}

// runFull drives a full sync and reconciles deletions: any stored URI
// the connector did not emit this pass is removed.
func (s *SyncService) runFull(
	ctx context.Context, connector driven.Connector, state *domain.SyncState,
) (*driving.SyncReport, error) {
	sourceID := connector.SourceID()
	docsChan, errsChan := connector.FullSync(ctx)

	report := &driving.SyncReport{}
	seen := make(map[string]struct{})
	batch := make([]driven.IndexRecord, 0, indexBatchSize)

	for doc := range docsChan {
		seen[doc.URI] = struct{}{}
		if err := s.documents.Upsert(ctx, &doc); err != nil {
			report.Partial = append(report.Partial, fmt.Errorf("store %s: %w", doc.URI, err))
			continue
		}
		report.Synced++

		batch = append(batch, toIndexRecord(&doc))
		if len(batch) >= indexBatchSize {
			s.flushIndexBatch(ctx, batch, report)
			batch = batch[:0]
		}
	}
	s.flushIndexBatch(ctx, batch, report)

	if err := s.finishRun(<-errsChan, state, report); err != nil {
		return nil, err
	}

	if err := s.reconcile(ctx, sourceID, seen, report); err != nil {
		report.Partial = append(report.Partial, err)
	}
	return report, nil
}

// runIncremental drives an incremental sync, applying creates, updates,
// and deletions as the connector reports them.
func (s *SyncService) runIncremental(
	ctx context.Context, connector driven.Connector, state *domain.SyncState,
) (*driving.SyncReport, error) {
	sourceID := connector.SourceID()
	changesChan, errsChan := connector.IncrementalSync(ctx, *state)

	report := &driving.SyncReport{}
	batch := make([]driven.IndexRecord, 0, indexBatchSize)

	for change := range changesChan {
		switch change.Type {
		case domain.ChangeDeleted:
			if err := s.documents.Delete(ctx, sourceID, change.Document.URI); err != nil {
				report.Partial = append(report.Partial, fmt.Errorf("delete %s: %w", change.Document.URI, err))
				continue
			}
			if err := s.indexer.Delete(ctx, []string{domain.DocumentID(sourceID, change.Document.URI)}); err != nil {
				report.Partial = append(report.Partial, fmt.Errorf("deindex %s: %w", change.Document.URI, err))
			}
			report.Deleted++

		default:
			doc := change.Document
			if err := s.documents.Upsert(ctx, &doc); err != nil {
				report.Partial = append(report.Partial, fmt.Errorf("store %s: %w", doc.URI, err))
				continue
			}
			report.Synced++

			batch = append(batch, toIndexRecord(&doc))
			if len(batch) >= indexBatchSize {
				s.flushIndexBatch(ctx, batch, report)
				batch = batch[:0]
			}
		}
	}
	s.flushIndexBatch(ctx, batch, report)

	if err := s.finishRun(<-errsChan, state, report); err != nil {
		return nil, err
	}
	return report, nil
}

// finishRun interprets the terminal value from the connector's error
// channel. A SyncComplete advances the cursor and folds its counters
// into the report; anything else aborts the run.
func (s *SyncService) finishRun(terminal error, state *domain.SyncState, report *driving.SyncReport) error {
	var complete *driven.SyncComplete
	if !errors.As(terminal, &complete) {
		return terminal
	}

	state.Cursor = complete.NewCursor
	report.Skipped += complete.Skipped
	report.Partial = append(report.Partial, complete.Partial...)
	return nil
}

// reconcile deletes stored documents the full sync did not emit.
func (s *SyncService) reconcile(
	ctx context.Context, sourceID string, seen map[string]struct{}, report *driving.SyncReport,
) error {
	uris, err := s.documents.ListURIs(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("list stored documents: %w", err)
	}

	var staleIDs []string
	for _, uri := range uris {
		if _, ok := seen[uri]; ok {
			continue
		}
		if err := s.documents.Delete(ctx, sourceID, uri); err != nil {
			report.Partial = append(report.Partial, fmt.Errorf("delete %s: %w", uri, err))
			continue
		}
		staleIDs = append(staleIDs, domain.DocumentID(sourceID, uri))
		report.Deleted++
	}

	if len(staleIDs) > 0 {
		if err := s.indexer.Delete(ctx, staleIDs); err != nil {
			report.Partial = append(report.Partial, fmt.Errorf("deindex stale documents: %w", err))
		}
	}
	return nil
}

// flushIndexBatch pushes a batch into the indexer. Index failures are
// partial: the documents are already persisted and a later sync can
// retry.
func (s *SyncService) flushIndexBatch(ctx context.Context, batch []driven.IndexRecord, report *driving.SyncReport) {
	if len(batch) == 0 {
		return
	}
	if err := s.indexer.Index(ctx, batch); err != nil {
		report.Partial = append(report.Partial, fmt.Errorf("index batch: %w", err))
	}
}

// toIndexRecord maps a document to its index shape.
func toIndexRecord(doc *domain.Document) driven.IndexRecord {
	return driven.IndexRecord{
		ID:            domain.DocumentID(doc.SourceID, doc.URI),
		SourceID:      doc.SourceID,
		Title:         doc.Name,
		Path:          doc.Path,
		Content:       string(doc.Content),
		WebURL:        doc.WebURL,
		AllowedGroups: doc.AllowedGroups,
		ModifiedAt:    doc.ModifiedAt.Unix(),
	}
}
