package datalake

import (
	"fmt"
	"mime"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/harbourview/driftsync/internal/core/domain"
)

// Path represents a single entry from a listPaths response. The DFS
// endpoint serialises numbers and booleans as JSON strings.
type Path struct {
	Name          string `json:"name"`
	IsDirectory   string `json:"isDirectory"`
	ContentLength string `json:"contentLength"`
	LastModified  string `json:"lastModified"`
	ETag          string `json:"etag"`
	Owner         string `json:"owner"`
	Group         string `json:"group"`
	Permissions   string `json:"permissions"`
}

// listPathsResponse is the body of a listPaths page.
type listPathsResponse struct {
	Paths []Path `json:"paths"`
}

// IsDir reports whether the entry is a directory.
func (p *Path) IsDir() bool {
	return p.IsDirectory == "true"
}

// Size returns the content length in bytes, 0 when absent or malformed.
func (p *Path) Size() int64 {
	n, err := strconv.ParseInt(p.ContentLength, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ModifiedTime parses the RFC 1123 lastModified timestamp. Returns the
// zero time when absent or malformed.
func (p *Path) ModifiedTime() time.Time {
	t, err := time.Parse(time.RFC1123, p.LastModified)
	if err != nil {
		return time.Time{}
	}
	return t
}

// PathURI builds the stable document URI for a filesystem path.
func PathURI(filesystem, name string) string {
	return fmt.Sprintf("adls://%s/%s", filesystem, name)
}

// EscapePath percent-encodes each segment of a filesystem path for use
// in a request URL, preserving the segment separators.
func EscapePath(name string) string {
	segments := strings.Split(name, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// ShouldSync checks if a path should be synced based on config.
// Directories are never synced as documents.
func ShouldSync(p *Path, cfg *Config) bool {
	if p == nil || p.IsDir() {
		return false
	}

	if len(cfg.Extensions) > 0 {
		ext := strings.ToLower(path.Ext(p.Name))
		found := false
		for _, allowed := range cfg.Extensions {
			if ext == allowed {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for _, pattern := range cfg.ExcludePaths {
		if matchesPathPattern(p.Name, pattern) {
			return false
		}
	}

	if cfg.MaxFileSize > 0 && p.Size() > cfg.MaxFileSize {
		return false
	}

	return true
}

// matchesPathPattern matches a filesystem-relative path against an
// exclusion pattern. Patterns use path.Match syntax; patterns without a
// slash are also tried against the base name, so "*.tmp" excludes temp
// files at any depth.
func matchesPathPattern(name, pattern string) bool {
	if ok, err := path.Match(pattern, name); err == nil && ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		if ok, err := path.Match(pattern, path.Base(name)); err == nil && ok {
			return true
		}
	}
	return false
}

// mimeFromName guesses a MIME type from the file extension.
func mimeFromName(name string) string {
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt", ".log":
		return "text/plain"
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	case ".yaml", ".yml":
		return "application/x-yaml"
	case ".xml":
		return "application/xml"
	}

	if t := mime.TypeByExtension(ext); t != "" {
		if idx := strings.Index(t, ";"); idx != -1 {
			t = strings.TrimSpace(t[:idx])
		}
		return t
	}
	return "application/octet-stream"
}

// shouldDownloadContent checks if a MIME type is worth downloading for
// indexing.
func shouldDownloadContent(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	switch mimeType {
	case "application/json", "application/xml", "application/x-yaml", "application/pdf":
		return true
	}
	return false
}

// ToDocument converts a listed path to a domain Document.
func ToDocument(p *Path, content []byte, allowedGroups []string, sourceID, filesystem string) *domain.Document {
	return &domain.Document{
		SourceID:      sourceID,
		URI:           PathURI(filesystem, p.Name),
		Name:          path.Base(p.Name),
		Path:          "/" + p.Name,
		MIMEType:      mimeFromName(p.Name),
		Size:          p.Size(),
		ETag:          p.ETag,
		ModifiedAt:    p.ModifiedTime(),
		Content:       content,
		AllowedGroups: domain.NormaliseGroups(allowedGroups),
		Metadata: map[string]any{
			"filesystem":  filesystem,
			"owner":       p.Owner,
			"group":       p.Group,
			"permissions": p.Permissions,
		},
	}
}
