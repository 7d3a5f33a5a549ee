// Package meili implements the search indexer port on Meilisearch.
// Security trimming is done server-side with a filterable
// allowed_groups attribute.
package meili

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	meili "github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"

	"github.com/harbourview/driftsync/internal/core/domain"
	"github.com/harbourview/driftsync/internal/core/ports/driven"
)

const idxDocuments = "driftsync_documents"

// Ensure Indexer implements the interface.
var _ driven.Indexer = (*Indexer)(nil)

// Indexer pushes documents into Meilisearch and queries them with
// principal filters.
type Indexer struct {
	client  meili.ServiceManager
	logger  *zap.Logger
	healthy atomic.Bool
}

// New creates a Meilisearch indexer and configures the document index.
// An unreachable instance is not fatal; Healthy reports the state and
// operations fail until it recovers.
func New(url, apiKey string, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Indexer{
		client: client,
		logger: logger,
	}

	if _, err := client.Health(); err != nil {
		logger.Warn("meilisearch unavailable", zap.String("url", url), zap.Error(err))
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	return m
}

func (m *Indexer) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        idxDocuments,
		PrimaryKey: "id",
	}); err != nil {
		m.logger.Debug("create index (may already exist)", zap.Error(err))
	}

	index := m.client.Index(idxDocuments)
	filterable := []interface{}{"allowed_groups", "source_id"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		m.logger.Warn("update filterable attributes", zap.Error(err))
	}
	searchable := []string{"title", "path", "content"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		m.logger.Warn("update searchable attributes", zap.Error(err))
	}
}

// Index adds or updates records in the search index. A record with a nil
// allow-list (unreadable ACL) is written with an empty one, which matches
// no principal filter and overwrites any broader entry from an earlier
// sync.
func (m *Indexer) Index(ctx context.Context, records []driven.IndexRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	if _, err := m.client.Index(idxDocuments).AddDocuments(sanitiseRecords(records), nil); err != nil {
		m.healthy.Store(false)
		return fmt.Errorf("index documents: %w", err)
	}
	return nil
}

// sanitiseRecords replaces nil allow-lists with empty ones. Skipping such
// records would leave a previously indexed entry searchable under its old
// allowed_groups; an empty list hides the document from every principal,
// "public" included, until a later sync reads the ACL again.
func sanitiseRecords(records []driven.IndexRecord) []driven.IndexRecord {
	out := make([]driven.IndexRecord, len(records))
	copy(out, records)
	for i := range out {
		if out[i].AllowedGroups == nil {
			out[i].AllowedGroups = []string{}
		}
	}
	return out
}

// Delete removes records by ID.
func (m *Indexer) Delete(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	if _, err := m.client.Index(idxDocuments).DeleteDocuments(ids, nil); err != nil {
		m.healthy.Store(false)
		return fmt.Errorf("delete documents: %w", err)
	}
	return nil
}

// Search queries the index trimmed to the caller's principals. Public
// documents are always candidates.
func (m *Indexer) Search(
	ctx context.Context, query string, principals []string, limit int,
) ([]driven.IndexHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	resp, err := m.client.Index(idxDocuments).SearchWithContext(ctx, query, &meili.SearchRequest{
		Limit:                 int64(limit),
		Filter:                []string{buildPrincipalFilter(principals)},
		AttributesToHighlight: []string{"content"},
		AttributesToCrop:      []string{"content"},
		CropLength:            30,
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]driven.IndexHit, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		hits = append(hits, driven.IndexHit{
			ID:       decodeString(hit, "id"),
			SourceID: decodeString(hit, "source_id"),
			Title:    decodeString(hit, "title"),
			Path:     decodeString(hit, "path"),
			Snippet:  decodeFormattedString(hit, "content"),
			WebURL:   decodeString(hit, "web_url"),
		})
	}
	return hits, nil
}

// buildPrincipalFilter returns the Meilisearch filter expression that
// trims results to the given principals. "public" is always included.
func buildPrincipalFilter(principals []string) string {
	values := []string{quoteFilterValue(domain.PrincipalPublic)}
	for _, p := range principals {
		if p == "" || p == domain.PrincipalPublic {
			continue
		}
		values = append(values, quoteFilterValue(p))
	}
	return fmt.Sprintf("allowed_groups IN [%s]", strings.Join(values, ", "))
}

// quoteFilterValue quotes a filter value, escaping embedded quotes so
// principal strings cannot break out of the expression.
func quoteFilterValue(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}

// Healthy reports whether Meilisearch is reachable.
func (m *Indexer) Healthy() bool {
	return m.healthy.Load()
}

// Close releases resources. The Meilisearch client holds no persistent
// connections.
func (m *Indexer) Close() error {
	return nil
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeFormattedString(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]json.RawMessage
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(formatted[key], &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
