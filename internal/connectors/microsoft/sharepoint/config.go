package sharepoint

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/harbourview/driftsync/internal/core/domain"
)

// DefaultLibraryName is the display name of the default document library.
const DefaultLibraryName = "Documents"

// Config holds SharePoint connector configuration.
type Config struct {
	// SiteHostname is the SharePoint tenant hostname
	// (e.g. "contoso.sharepoint.com").
	SiteHostname string
	// SitePath is the server-relative site path (e.g. "/sites/engineering").
	SitePath string
	// LibraryName is the display name of the document library to sync.
	LibraryName string

	// Extensions limits syncing to specific file extensions (optional).
	// Stored lowercase with a leading dot.
	Extensions []string
	// ExcludePaths holds path patterns to skip (optional).
	ExcludePaths []string
	// IncludeFolders limits syncing to these folder prefixes (optional).
	IncludeFolders []string
	// ExcludeFolders skips these folder prefixes (optional).
	ExcludeFolders []string
	// MaxFileSize is the largest file to sync, in bytes.
	MaxFileSize int64

	// PageSize is the page size for delta requests.
	PageSize int64
	// FetchPermissions controls per-item permission retrieval.
	FetchPermissions bool
	// PermissionWorkers bounds concurrent permission fetches per page.
	PermissionWorkers int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LibraryName:       DefaultLibraryName,
		MaxFileSize:       10 * 1024 * 1024,
		PageSize:          200,
		FetchPermissions:  true,
		PermissionWorkers: 5,
	}
}

// ParseConfig extracts configuration from a Source.
// Requires "site_url"; everything else is optional.
func ParseConfig(source domain.Source) (*Config, error) {
	cfg := DefaultConfig()

	rawURL := strings.TrimSpace(source.Config["site_url"])
	if rawURL == "" {
		return nil, fmt.Errorf("%w: sharepoint source requires 'site_url'", domain.ErrInvalidInput)
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid site_url %q", domain.ErrInvalidInput, rawURL)
	}
	cfg.SiteHostname = u.Host
	cfg.SitePath = strings.TrimSuffix(u.Path, "/")
	if cfg.SitePath == "" {
		cfg.SitePath = "/"
	}

	if val := source.Config["library"]; strings.TrimSpace(val) != "" {
		cfg.LibraryName = strings.TrimSpace(val)
	}

	cfg.Extensions = normaliseExtensions(splitCSV(source.Config["extensions"]))
	cfg.ExcludePaths = splitCSV(source.Config["exclude_paths"])
	cfg.IncludeFolders = normaliseFolders(splitCSV(source.Config["include_folders"]))
	cfg.ExcludeFolders = normaliseFolders(splitCSV(source.Config["exclude_folders"]))

	if val := source.Config["max_file_size"]; val != "" {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: invalid max_file_size %q", domain.ErrInvalidInput, val)
		}
		cfg.MaxFileSize = n
	}

	if val := source.Config["page_size"]; val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}

	if val := source.Config["fetch_permissions"]; val != "" {
		cfg.FetchPermissions = val == "true" || val == "1"
	}

	if val := source.Config["permission_workers"]; val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			cfg.PermissionWorkers = n
		}
	}

	return cfg, nil
}

// splitCSV splits a comma-separated config value, trimming whitespace and
// dropping empties.
func splitCSV(val string) []string {
	if strings.TrimSpace(val) == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// normaliseExtensions lowercases extensions and ensures a leading dot.
func normaliseExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// normaliseFolders ensures folder prefixes start with "/" and carry no
// trailing slash, so prefix checks line up with item paths.
func normaliseFolders(folders []string) []string {
	out := make([]string, 0, len(folders))
	for _, f := range folders {
		if !strings.HasPrefix(f, "/") {
			f = "/" + f
		}
		f = strings.TrimSuffix(f, "/")
		if f != "" {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
