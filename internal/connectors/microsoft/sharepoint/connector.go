// Package sharepoint syncs documents from a SharePoint document library
// via Microsoft Graph delta queries, including per-item permission
// retrieval for downstream security trimming.
package sharepoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harbourview/driftsync/internal/connectors/microsoft"
	"github.com/harbourview/driftsync/internal/core/domain"
	"github.com/harbourview/driftsync/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector fetches documents from a SharePoint document library.
type Connector struct {
	sourceID string
	config   *Config
	client   *microsoft.Client
	logger   *zap.Logger

	// baseURL is overridable in tests.
	baseURL string

	// Resolved once per connector lifetime.
	siteID  string
	driveID string

	mu     sync.Mutex
	closed bool
}

// New creates a new SharePoint connector.
func New(sourceID string, cfg *Config, tokenProvider driven.TokenProvider, logger *zap.Logger) *Connector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Connector{
		sourceID: sourceID,
		config:   cfg,
		client:   microsoft.NewClient(tokenProvider),
		logger:   logger,
		baseURL:  microsoft.GraphBaseURL,
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "sharepoint"
}

// SourceID returns the source identifier.
func (c *Connector) SourceID() string {
	return c.sourceID
}

// Capabilities returns the connector's capabilities.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsIncremental:  true,
		SupportsWatch:        false,
		SupportsPermissions:  true,
		SupportsDeletions:    true,
		RequiresAuth:         true,
		SupportsRateLimiting: true,
		SupportsPagination:   true,
	}
}

// Validate checks connectivity by resolving the configured site and
// library.
func (c *Connector) Validate(ctx context.Context) error {
	if err := c.checkClosed(); err != nil {
		return err
	}

	if _, err := c.resolveDriveID(ctx); err != nil {
		if errors.Is(err, microsoft.ErrUnauthorised) {
			return fmt.Errorf("%w: %w", domain.ErrAuthInvalid, err)
		}
		return err
	}
	return nil
}

// FullSync fetches all documents from the library.
func (c *Connector) FullSync(ctx context.Context) (docs <-chan domain.Document, errs <-chan error) {
	docsChan := make(chan domain.Document)
	errsChan := make(chan error, 1)

	go func() {
		defer close(docsChan)
		defer close(errsChan)
		errsChan <- c.runFullSync(ctx, docsChan)
	}()

	return docsChan, errsChan
}

func (c *Connector) runFullSync(ctx context.Context, docsChan chan<- domain.Document) error {
	if err := c.checkClosed(); err != nil {
		return err
	}

	driveID, err := c.resolveDriveID(ctx)
	if err != nil {
		return err
	}

	deltaURL := fmt.Sprintf("%s/drives/%s/root/delta?$top=%d", c.baseURL, driveID, c.config.PageSize)

	st := &runState{}
	newDeltaLink, err := c.processDeltaPages(ctx, deltaURL, docsChan, nil, st)
	if err != nil {
		return err
	}

	cursor := NewCursor()
	cursor.DeltaLink = newDeltaLink
	return &driven.SyncComplete{NewCursor: cursor.Encode(), Skipped: st.skipped, Partial: st.partial}
}

// IncrementalSync fetches only changes since the last sync using the
// stored delta link. A 410 Gone from Graph surfaces as
// domain.ErrCursorExpired so the caller can fall back to a full sync.
func (c *Connector) IncrementalSync(
	ctx context.Context, state domain.SyncState,
) (changes <-chan domain.DocumentChange, errs <-chan error) {
	changesChan := make(chan domain.DocumentChange)
	errsChan := make(chan error, 1)

	go func() {
		defer close(changesChan)
		defer close(errsChan)
		errsChan <- c.runIncrementalSync(ctx, state, changesChan)
	}()

	return changesChan, errsChan
}

func (c *Connector) runIncrementalSync(
	ctx context.Context, state domain.SyncState, changesChan chan<- domain.DocumentChange,
) error {
	if err := c.checkClosed(); err != nil {
		return err
	}

	cursor, err := DecodeCursor(state.Cursor)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCursorExpired, err)
	}
	if cursor.IsEmpty() {
		return fmt.Errorf("%w: cursor has no delta link", domain.ErrCursorExpired)
	}

	// The stored delta link addresses the drive, but per-item permission
	// and content requests still need the drive ID resolved for this run.
	if _, err := c.resolveDriveID(ctx); err != nil {
		return err
	}

	st := &runState{}
	newDeltaLink, err := c.processDeltaPages(ctx, cursor.DeltaLink, nil, changesChan, st)
	if err != nil {
		return err
	}

	cursor.DeltaLink = newDeltaLink
	return &driven.SyncComplete{NewCursor: cursor.Encode(), Skipped: st.skipped, Partial: st.partial}
}

// runState accumulates per-run counters and non-fatal errors.
type runState struct {
	skipped int
	partial []error
}

// deltaPage holds a single page of delta results.
type deltaPage struct {
	items     []DriveItem
	nextLink  string
	deltaLink string
}

// processDeltaPages walks all pages of a delta query, returning the
// final delta link.
func (c *Connector) processDeltaPages(
	ctx context.Context,
	initialURL string,
	docsChan chan<- domain.Document,
	changesChan chan<- domain.DocumentChange,
	st *runState,
) (string, error) {
	currentURL := initialURL
	var finalDeltaLink string

	for currentURL != "" {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page, err := c.fetchDeltaPage(ctx, currentURL)
		if err != nil {
			return "", err
		}

		if err := c.processPage(ctx, page.items, docsChan, changesChan, st); err != nil {
			return "", err
		}

		currentURL = page.nextLink
		if currentURL == "" {
			finalDeltaLink = page.deltaLink
		}
	}

	return finalDeltaLink, nil
}

// fetchDeltaPage fetches a single page of delta results.
func (c *Connector) fetchDeltaPage(ctx context.Context, url string) (*deltaPage, error) {
	resp, err := c.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("delta request: %w", err)
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if microsoft.IsDeltaTokenExpired(resp.StatusCode) {
		return nil, fmt.Errorf("%w: %w", domain.ErrCursorExpired, microsoft.ErrDeltaTokenExpired)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("delta request failed: status %d: %w",
			resp.StatusCode, microsoft.WrapError(resp.StatusCode))
	}

	var deltaResp struct {
		Value     []DriveItem `json:"value"`
		NextLink  string      `json:"@odata.nextLink"`
		DeltaLink string      `json:"@odata.deltaLink"`
	}
	if err := json.Unmarshal(body, &deltaResp); err != nil {
		return nil, fmt.Errorf("decode delta response: %w", err)
	}

	return &deltaPage{
		items:     deltaResp.Value,
		nextLink:  deltaResp.NextLink,
		deltaLink: deltaResp.DeltaLink,
	}, nil
}

// processPage filters a page of items, fetches their permissions in a
// bounded batch, downloads eligible content, and emits documents.
func (c *Connector) processPage(
	ctx context.Context,
	items []DriveItem,
	docsChan chan<- domain.Document,
	changesChan chan<- domain.DocumentChange,
	st *runState,
) error {
	var syncable []*DriveItem
	for i := range items {
		item := &items[i]

		if item.IsDeleted() {
			if err := c.emitDeletion(ctx, item.ID, changesChan); err != nil {
				return err
			}
			continue
		}
		if item.IsFolder() {
			continue
		}
		if !ShouldSync(item, c.config) {
			st.skipped++
			continue
		}
		syncable = append(syncable, item)
	}

	perms, err := c.fetchPermissionSets(ctx, syncable, st)
	if err != nil {
		return err
	}

	for _, item := range syncable {
		var content []byte
		if shouldDownloadContent(item.GetMIMEType()) && item.Size <= c.config.MaxFileSize {
			content, err = c.downloadContent(ctx, item.ID)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// Metadata-only is better than dropping the item.
				st.partial = append(st.partial, fmt.Errorf("download %s: %w", item.GetPath(), err))
				content = nil
			}
		}

		doc := ToDocument(item, content, perms[item.ID], c.sourceID)
		if err := c.emitDocument(ctx, doc, docsChan, changesChan); err != nil {
			return err
		}
	}

	return nil
}

// fetchPermissionSets retrieves permissions for a page of items in a
// bounded concurrent batch. A 403 on an item yields a nil allow-list and
// a warning; other failures aggregate into the run's partial errors. The
// returned map holds an entry for every requested item.
func (c *Connector) fetchPermissionSets(
	ctx context.Context, items []*DriveItem, st *runState,
) (map[string][]string, error) {
	results := make(map[string][]string, len(items))

	if !c.config.FetchPermissions {
		// Permission trimming explicitly disabled: everything is public.
		for _, item := range items {
			results[item.ID] = []string{domain.PrincipalPublic}
		}
		return results, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.PermissionWorkers)

	for _, item := range items {
		g.Go(func() error {
			groups, err := c.fetchItemPermissions(gctx, item.ID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				return err
			case errors.Is(err, microsoft.ErrForbidden):
				c.logger.Warn("permission fetch forbidden, item hidden from all principals",
					zap.String("source_id", c.sourceID),
					zap.String("path", item.GetPath()))
				results[item.ID] = nil
			case err != nil:
				st.partial = append(st.partial, fmt.Errorf("permissions %s: %w", item.GetPath(), err))
				results[item.ID] = nil
			default:
				results[item.ID] = groups
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// fetchItemPermissions retrieves and maps the permission entries for one
// item.
func (c *Connector) fetchItemPermissions(ctx context.Context, itemID string) ([]string, error) {
	url := fmt.Sprintf("%s/drives/%s/items/%s/permissions", c.baseURL, c.driveID, itemID)

	var resp permissionsResponse
	if err := c.client.GetJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	return MapPermissions(resp.Value), nil
}

// downloadContent downloads the content of a drive item.
func (c *Connector) downloadContent(ctx context.Context, itemID string) ([]byte, error) {
	url := fmt.Sprintf("%s/drives/%s/items/%s/content", c.baseURL, c.driveID, itemID)

	resp, err := c.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: status %d: %w",
			resp.StatusCode, microsoft.WrapError(resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return data, nil
}

// emitDeletion sends a deletion change for a removed item. Full syncs
// have no change channel; deletions there are reconciled by the caller.
func (c *Connector) emitDeletion(
	ctx context.Context, itemID string, changesChan chan<- domain.DocumentChange,
) error {
	if changesChan == nil {
		return nil
	}

	change := domain.DocumentChange{
		Type: domain.ChangeDeleted,
		Document: domain.Document{
			SourceID: c.sourceID,
			URI:      ItemURI(itemID),
		},
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case changesChan <- change:
		return nil
	}
}

// emitDocument sends a document to whichever channel the run uses.
func (c *Connector) emitDocument(
	ctx context.Context,
	doc *domain.Document,
	docsChan chan<- domain.Document,
	changesChan chan<- domain.DocumentChange,
) error {
	if docsChan != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case docsChan <- *doc:
		}
	}

	if changesChan != nil {
		change := domain.DocumentChange{Type: domain.ChangeUpdated, Document: *doc}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case changesChan <- change:
		}
	}

	return nil
}

// checkClosed returns an error if the connector is closed.
func (c *Connector) checkClosed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrConnectorClosed
	}
	return nil
}

// Watch is not supported for SharePoint (no webhook receiver in a CLI).
func (c *Connector) Watch(_ context.Context) (<-chan domain.DocumentChange, error) {
	return nil, domain.ErrNotImplemented
}

// Close releases resources.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
