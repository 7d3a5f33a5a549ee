package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harbourview/driftsync/internal/core/domain"
)

type sourceFixture struct {
	sources   *fakeSourceStore
	states    *fakeStateStore
	documents *fakeDocStore
	factory   *fakeFactory
	indexer   *fakeIndexer
	service   *SourceService
}

func newSourceFixture() *sourceFixture {
	f := &sourceFixture{
		sources:   newFakeSourceStore(),
		states:    newFakeStateStore(),
		documents: newFakeDocStore(),
		factory:   &fakeFactory{},
		indexer:   &fakeIndexer{},
	}
	f.service = NewSourceService(f.sources, f.states, f.documents, f.factory, f.indexer, nil)
	return f
}

func TestSourceService_Add(t *testing.T) {
	f := newSourceFixture()

	source, err := f.service.Add(context.Background(), "filesystem", "  my docs  ",
		map[string]string{"path": "/tmp/docs"})

	require.NoError(t, err)
	assert.NotEmpty(t, source.ID)
	assert.Equal(t, "my docs", source.Name)
	assert.Equal(t, "filesystem", source.Type)
	assert.False(t, source.CreatedAt.IsZero())

	stored, err := f.sources.Get(context.Background(), source.ID)
	require.NoError(t, err)
	assert.Equal(t, source.ID, stored.ID)
}

func TestSourceService_Add_RequiresName(t *testing.T) {
	f := newSourceFixture()

	_, err := f.service.Add(context.Background(), "filesystem", "   ", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSourceService_Add_InvalidConfig(t *testing.T) {
	f := newSourceFixture()
	f.factory.validateErr = errors.New("missing site_url")

	_, err := f.service.Add(context.Background(), "sharepoint", "hr", nil)

	require.Error(t, err)
	sources, _ := f.sources.List(context.Background())
	assert.Empty(t, sources, "invalid source is not persisted")
}

func TestSourceService_Remove(t *testing.T) {
	f := newSourceFixture()
	ctx := context.Background()

	require.NoError(t, f.sources.Save(ctx, &domain.Source{ID: "src-1", Name: "docs", Type: "fake"}))
	require.NoError(t, f.states.Save(ctx, &domain.SyncState{SourceID: "src-1", Cursor: "c1"}))
	doc := domain.Document{SourceID: "src-1", URI: "fake://a", Name: "a.md"}
	require.NoError(t, f.documents.Upsert(ctx, &doc))

	require.NoError(t, f.service.Remove(ctx, "src-1"))

	_, err := f.sources.Get(ctx, "src-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.states.Get(ctx, "src-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	uris, _ := f.documents.ListURIs(ctx, "src-1")
	assert.Empty(t, uris)
	assert.Equal(t, []string{domain.DocumentID("src-1", "fake://a")}, f.indexer.deleted)
}

func TestSourceService_Remove_Unknown(t *testing.T) {
	f := newSourceFixture()

	err := f.service.Remove(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSourceService_Remove_IndexFailureIsNotFatal(t *testing.T) {
	f := newSourceFixture()
	ctx := context.Background()

	require.NoError(t, f.sources.Save(ctx, &domain.Source{ID: "src-1", Name: "docs", Type: "fake"}))
	doc := domain.Document{SourceID: "src-1", URI: "fake://a"}
	require.NoError(t, f.documents.Upsert(ctx, &doc))
	f.indexer.deleteErr = errors.New("index unavailable")

	require.NoError(t, f.service.Remove(ctx, "src-1"))

	_, err := f.sources.Get(ctx, "src-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
