package services

import (
	"context"
	"sort"
	"sync"

	"github.com/harbourview/driftsync/internal/core/domain"
	"github.com/harbourview/driftsync/internal/core/ports/driven"
)

// In-memory fakes for the driven ports, shared across the service tests.

type fakeSourceStore struct {
	mu      sync.Mutex
	sources map[string]domain.Source
}

func newFakeSourceStore() *fakeSourceStore {
	return &fakeSourceStore{sources: make(map[string]domain.Source)}
}

func (s *fakeSourceStore) Save(_ context.Context, source *domain.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[source.ID] = *source
	return nil
}

func (s *fakeSourceStore) Get(_ context.Context, id string) (*domain.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	source, ok := s.sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &source, nil
}

func (s *fakeSourceStore) List(context.Context) ([]domain.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Source, 0, len(s.sources))
	for _, source := range s.sources {
		out = append(out, source)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeSourceStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sources, id)
	return nil
}

type fakeStateStore struct {
	mu     sync.Mutex
	states map[string]domain.SyncState
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{states: make(map[string]domain.SyncState)}
}

func (s *fakeStateStore) Get(_ context.Context, sourceID string) (*domain.SyncState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[sourceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &state, nil
}

func (s *fakeStateStore) Save(_ context.Context, state *domain.SyncState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.SourceID] = *state
	return nil
}

func (s *fakeStateStore) Delete(_ context.Context, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sourceID)
	return nil
}

type fakeDocStore struct {
	mu   sync.Mutex
	docs map[string]map[string]domain.Document // sourceID -> uri -> doc
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{docs: make(map[string]map[string]domain.Document)}
}

func (s *fakeDocStore) Upsert(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs[doc.SourceID] == nil {
		s.docs[doc.SourceID] = make(map[string]domain.Document)
	}
	s.docs[doc.SourceID][doc.URI] = *doc
	return nil
}

func (s *fakeDocStore) Get(_ context.Context, sourceID, uri string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[sourceID][uri]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (s *fakeDocStore) Delete(_ context.Context, sourceID, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs[sourceID], uri)
	return nil
}

func (s *fakeDocStore) DeleteBySource(_ context.Context, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, sourceID)
	return nil
}

func (s *fakeDocStore) ListURIs(_ context.Context, sourceID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uris := make([]string, 0, len(s.docs[sourceID]))
	for uri := range s.docs[sourceID] {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris, nil
}

func (s *fakeDocStore) Count(_ context.Context, sourceID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.docs[sourceID])), nil
}

// fakeConnector emits canned documents/changes and a configurable
// terminal error per mode.
type fakeConnector struct {
	sourceID string

	docs       []domain.Document
	fullErr    error // terminal for FullSync; nil means SyncComplete
	fullCursor string

	changes   []domain.DocumentChange
	incErr    error // terminal for IncrementalSync; nil means SyncComplete
	incCursor string

	skipped int
	partial []error

	valErr    error
	fullCalls int
	incCalls  int
	closed    bool
}

func (c *fakeConnector) Type() string     { return "fake" }
func (c *fakeConnector) SourceID() string { return c.sourceID }

func (c *fakeConnector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{SupportsIncremental: true}
}

func (c *fakeConnector) Validate(context.Context) error { return c.valErr }

func (c *fakeConnector) FullSync(context.Context) (<-chan domain.Document, <-chan error) {
	c.fullCalls++
	docsChan := make(chan domain.Document)
	errsChan := make(chan error, 1)
	go func() {
		defer close(docsChan)
		defer close(errsChan)
		for _, doc := range c.docs {
			docsChan <- doc
		}
		if c.fullErr != nil {
			errsChan <- c.fullErr
			return
		}
		errsChan <- &driven.SyncComplete{
			NewCursor: c.fullCursor,
			Skipped:   c.skipped,
			Partial:   c.partial,
		}
	}()
	return docsChan, errsChan
}

func (c *fakeConnector) IncrementalSync(
	context.Context, domain.SyncState,
) (<-chan domain.DocumentChange, <-chan error) {
	c.incCalls++
	changesChan := make(chan domain.DocumentChange)
	errsChan := make(chan error, 1)
	go func() {
		defer close(changesChan)
		defer close(errsChan)
		if c.incErr != nil {
			errsChan <- c.incErr
			return
		}
		for _, change := range c.changes {
			changesChan <- change
		}
		errsChan <- &driven.SyncComplete{
			NewCursor: c.incCursor,
			Skipped:   c.skipped,
			Partial:   c.partial,
		}
	}()
	return changesChan, errsChan
}

func (c *fakeConnector) Watch(context.Context) (<-chan domain.DocumentChange, error) {
	return nil, domain.ErrNotImplemented
}

func (c *fakeConnector) Close() error {
	c.closed = true
	return nil
}

type fakeFactory struct {
	connector   driven.Connector
	createErr   error
	validateErr error
}

func (f *fakeFactory) Create(context.Context, domain.Source) (driven.Connector, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.connector, nil
}

func (f *fakeFactory) SupportedTypes() []string { return []string{"fake"} }

func (f *fakeFactory) ValidateConfig(domain.Source) error { return f.validateErr }

type fakeIndexer struct {
	mu        sync.Mutex
	indexed   []driven.IndexRecord
	deleted   []string
	indexErr  error
	deleteErr error

	hits           []driven.IndexHit
	lastQuery      string
	lastPrincipals []string
	lastLimit      int
}

func (i *fakeIndexer) Index(_ context.Context, records []driven.IndexRecord) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.indexErr != nil {
		return i.indexErr
	}
	i.indexed = append(i.indexed, records...)
	return nil
}

func (i *fakeIndexer) Delete(_ context.Context, ids []string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.deleteErr != nil {
		return i.deleteErr
	}
	i.deleted = append(i.deleted, ids...)
	return nil
}

func (i *fakeIndexer) Search(
	_ context.Context, query string, principals []string, limit int,
) ([]driven.IndexHit, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.lastQuery = query
	i.lastPrincipals = principals
	i.lastLimit = limit
	return i.hits, nil
}

func (i *fakeIndexer) Healthy() bool { return true }

func (i *fakeIndexer) Close() error { return nil }
