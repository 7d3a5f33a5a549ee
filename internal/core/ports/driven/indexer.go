package driven

import "context"

// IndexRecord is the shape pushed into the search index.
// AllowedGroups is a filterable attribute used for security trimming.
type IndexRecord struct {
	ID            string   `json:"id"`
	SourceID      string   `json:"source_id"`
	Title         string   `json:"title"`
	Path          string   `json:"path"`
	Content       string   `json:"content"`
	WebURL        string   `json:"web_url"`
	AllowedGroups []string `json:"allowed_groups"`
	ModifiedAt    int64    `json:"modified_at"`
}

// IndexHit is a single trimmed search result.
type IndexHit struct {
	ID       string
	SourceID string
	Title    string
	Path     string
	Snippet  string
	WebURL   string
}

// Indexer pushes documents into a search index and queries it with
// principal-based trimming. Results only ever include documents whose
// allow-list intersects the caller's principals (or is public).
type Indexer interface {
	Index(ctx context.Context, records []IndexRecord) error
	Delete(ctx context.Context, ids []string) error
	Search(ctx context.Context, query string, principals []string, limit int) ([]IndexHit, error)
	Healthy() bool
	Close() error
}
