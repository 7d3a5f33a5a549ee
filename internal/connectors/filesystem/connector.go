// Package filesystem reads documents from a local directory. It exists
// for development and testing: no auth, no ACLs (everything is public),
// and change watching via inotify.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/harbourview/driftsync/internal/core/domain"
	"github.com/harbourview/driftsync/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector reads documents from the local filesystem.
type Connector struct {
	sourceID string
	rootPath string
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	closed   bool
}

// New creates a filesystem connector rooted at rootPath.
func New(sourceID, rootPath string) (*Connector, error) {
	rootPath = strings.TrimSpace(rootPath)
	if rootPath == "" {
		return nil, fmt.Errorf("%w: filesystem source requires a root path", domain.ErrInvalidInput)
	}

	// Expand "~"
	if rootPath == "~" || strings.HasPrefix(rootPath, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		if rootPath == "~" {
			rootPath = home
		} else {
			rootPath = filepath.Join(home, rootPath[2:])
		}
	}

	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid root path %q", domain.ErrInvalidInput, rootPath)
	}

	return &Connector{
		sourceID: sourceID,
		rootPath: filepath.Clean(absPath),
	}, nil
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// SourceID returns the source identifier.
func (c *Connector) SourceID() string {
	return c.sourceID
}

// Capabilities returns the connector's capabilities.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsIncremental: true,
		SupportsWatch:       true,
		SupportsPermissions: false,
		SupportsDeletions:   false,
		RequiresAuth:        false,
	}
}

// Validate verifies the root path exists and is a readable directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := c.checkClosed(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(c.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("root path does not exist: %s", c.rootPath)
		}
		if os.IsPermission(err) {
			return fmt.Errorf("permission denied accessing root path: %s", c.rootPath)
		}
		return fmt.Errorf("access root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path is not a directory: %s", c.rootPath)
	}
	return nil
}

// FullSync walks the directory tree and emits a document per file.
func (c *Connector) FullSync(ctx context.Context) (docs <-chan domain.Document, errs <-chan error) {
	docsChan := make(chan domain.Document)
	errsChan := make(chan error, 1)

	go func() {
		defer close(docsChan)
		defer close(errsChan)
		errsChan <- c.runSync(ctx, time.Time{}, docsChan, nil)
	}()

	return docsChan, errsChan
}

// IncrementalSync emits files modified after the cursor timestamp.
// The cursor is a Unix timestamp in nanoseconds.
func (c *Connector) IncrementalSync(
	ctx context.Context, state domain.SyncState,
) (changes <-chan domain.DocumentChange, errs <-chan error) {
	changesChan := make(chan domain.DocumentChange)
	errsChan := make(chan error, 1)

	go func() {
		defer close(changesChan)
		defer close(errsChan)

		var since time.Time
		if state.Cursor != "" {
			nanos, err := strconv.ParseInt(state.Cursor, 10, 64)
			if err != nil {
				errsChan <- fmt.Errorf("%w: invalid cursor format", domain.ErrCursorExpired)
				return
			}
			since = time.Unix(0, nanos)
		}

		errsChan <- c.runSync(ctx, since, nil, changesChan)
	}()

	return changesChan, errsChan
}

// runSync walks the tree once. A zero since time means a full sync.
func (c *Connector) runSync(
	ctx context.Context,
	since time.Time,
	docsChan chan<- domain.Document,
	changesChan chan<- domain.DocumentChange,
) error {
	if err := c.checkClosed(); err != nil {
		return err
	}
	if err := c.Validate(ctx); err != nil {
		return err
	}

	st := struct{ skipped int }{}
	start := time.Now()

	err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if isHidden(path) {
			st.skipped++
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !since.IsZero() && !info.ModTime().After(since) {
			return nil
		}

		doc, err := c.readFile(path, info)
		if err != nil {
			// Unreadable files are skipped, not fatal.
			st.skipped++
			return nil
		}

		if docsChan != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case docsChan <- *doc:
			}
		}
		if changesChan != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case changesChan <- domain.DocumentChange{Type: domain.ChangeUpdated, Document: *doc}:
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("walk error: %w", err)
	}

	return &driven.SyncComplete{
		NewCursor: strconv.FormatInt(start.UnixNano(), 10),
		Skipped:   st.skipped,
	}
}

// readFile reads a file into a document. Local files have no ACL; they
// are treated as public.
func (c *Connector) readFile(path string, info fs.FileInfo) (*domain.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	rel, err := filepath.Rel(c.rootPath, path)
	if err != nil {
		rel = filepath.Base(path)
	}

	return &domain.Document{
		SourceID:      c.sourceID,
		URI:           "file://" + path,
		Name:          filepath.Base(path),
		Path:          "/" + filepath.ToSlash(rel),
		MIMEType:      detectMIMEType(path),
		Size:          info.Size(),
		ModifiedAt:    info.ModTime(),
		Content:       content,
		AllowedGroups: []string{domain.PrincipalPublic},
		Metadata: map[string]any{
			"extension":     strings.TrimPrefix(filepath.Ext(path), "."),
			"modified_unix": info.ModTime().Unix(),
		},
	}, nil
}

// detectMIMEType returns the MIME type for a file based on its extension.
// Common text extensions come first because system MIME databases often
// map these to incorrect types (e.g. .ts to video/mp2t).
func detectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case "":
		return "text/plain"
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt", ".log":
		return "text/plain"
	case ".yaml", ".yml":
		return "text/yaml"
	case ".go":
		return "text/x-go"
	case ".py":
		return "text/x-python"
	case ".ts":
		return "text/typescript"
	case ".xml":
		return "application/xml"
	}

	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		if idx := strings.Index(mimeType, ";"); idx != -1 {
			mimeType = strings.TrimSpace(mimeType[:idx])
		}
		return mimeType
	}
	return "application/octet-stream"
}

// isHidden returns true if the path contains hidden files/directories.
func isHidden(path string) bool {
	parts := strings.Split(path, string(filepath.Separator))
	for _, part := range parts {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}

// Watch streams filesystem changes via inotify until the context ends.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.DocumentChange, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(c.rootPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.rootPath, err)
	}

	c.mu.Lock()
	c.watcher = watcher
	c.mu.Unlock()

	changes := make(chan domain.DocumentChange)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				change, ok := c.eventToChange(event)
				if !ok {
					continue
				}
				select {
				case <-ctx.Done():
					return
				case changes <- change:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return changes, nil
}

// eventToChange maps an fsnotify event to a document change.
func (c *Connector) eventToChange(event fsnotify.Event) (domain.DocumentChange, bool) {
	if isHidden(event.Name) {
		return domain.DocumentChange{}, false
	}

	switch {
	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		return domain.DocumentChange{
			Type: domain.ChangeDeleted,
			Document: domain.Document{
				SourceID: c.sourceID,
				URI:      "file://" + event.Name,
			},
		}, true
	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return domain.DocumentChange{}, false
		}
		doc, err := c.readFile(event.Name, info)
		if err != nil {
			return domain.DocumentChange{}, false
		}
		return domain.DocumentChange{Type: domain.ChangeUpdated, Document: *doc}, true
	}
	return domain.DocumentChange{}, false
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

// Close releases resources.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.watcher != nil {
		c.watcher.Close()
		c.watcher = nil
	}
	return nil
}
