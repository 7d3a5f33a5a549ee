package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harbourview/driftsync/internal/core/domain"
	"github.com/harbourview/driftsync/internal/core/ports/driven"
)

func TestSearch(t *testing.T) {
	indexer := &fakeIndexer{hits: []driven.IndexHit{{ID: "doc-1", Title: "a.md"}}}
	service := NewSearchService(indexer)

	hits, err := service.Search(context.Background(), "quarterly report",
		[]string{"user:u1", "group:g1"}, 10)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-1", hits[0].ID)
	assert.Equal(t, "quarterly report", indexer.lastQuery)
	assert.Equal(t, 10, indexer.lastLimit)
}

func TestSearch_EmptyQuery(t *testing.T) {
	service := NewSearchService(&fakeIndexer{})

	_, err := service.Search(context.Background(), "   ", nil, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_InvalidPrincipalRejected(t *testing.T) {
	service := NewSearchService(&fakeIndexer{})

	_, err := service.Search(context.Background(), "report", []string{"user:"}, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.Search(context.Background(), "report", []string{"admin:u1"}, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_PrincipalsNormalised(t *testing.T) {
	indexer := &fakeIndexer{}
	service := NewSearchService(indexer)

	_, err := service.Search(context.Background(), "report",
		[]string{"user:u1", "group:g1", "user:u1"}, 10)

	require.NoError(t, err)
	assert.Equal(t, []string{"group:g1", "user:u1"}, indexer.lastPrincipals)
}
