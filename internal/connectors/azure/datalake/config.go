package datalake

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/harbourview/driftsync/internal/core/domain"
)

// Config holds ADLS Gen2 connector configuration.
type Config struct {
	// AccountName is the storage account name.
	AccountName string
	// Filesystem is the Gen2 filesystem (container) to sync.
	Filesystem string
	// Directory limits listing to a directory subtree (optional).
	Directory string

	// Extensions limits syncing to specific file extensions (optional).
	// Stored lowercase with a leading dot.
	Extensions []string
	// ExcludePaths holds path patterns to skip (optional).
	ExcludePaths []string
	// MaxFileSize is the largest file to sync, in bytes.
	MaxFileSize int64

	// PageSize is the maxResults value for list requests.
	PageSize int
	// FetchACLs controls per-path access control retrieval.
	FetchACLs bool
	// ACLWorkers bounds concurrent getAccessControl calls per page.
	ACLWorkers int

	// Endpoint overrides the DFS endpoint (Azurite, tests). Empty means
	// the public endpoint derived from AccountName.
	Endpoint string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxFileSize: 10 * 1024 * 1024,
		PageSize:    1000,
		FetchACLs:   true,
		ACLWorkers:  5,
	}
}

// BaseURL returns the DFS endpoint for the account.
func (c *Config) BaseURL() string {
	if c.Endpoint != "" {
		return strings.TrimSuffix(c.Endpoint, "/")
	}
	return fmt.Sprintf("https://%s.dfs.core.windows.net", c.AccountName)
}

// ParseConfig extracts configuration from a Source.
// Requires "account_name" and "filesystem".
func ParseConfig(source domain.Source) (*Config, error) {
	cfg := DefaultConfig()

	cfg.AccountName = strings.TrimSpace(source.Config["account_name"])
	cfg.Filesystem = strings.TrimSpace(source.Config["filesystem"])
	cfg.Endpoint = strings.TrimSpace(source.Config["endpoint"])
	if cfg.AccountName == "" && cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: adls source requires 'account_name'", domain.ErrInvalidInput)
	}
	if cfg.Filesystem == "" {
		return nil, fmt.Errorf("%w: adls source requires 'filesystem'", domain.ErrInvalidInput)
	}

	cfg.Directory = strings.Trim(strings.TrimSpace(source.Config["directory"]), "/")

	cfg.Extensions = normaliseExtensions(splitCSV(source.Config["extensions"]))
	cfg.ExcludePaths = splitCSV(source.Config["exclude_paths"])

	if val := source.Config["max_file_size"]; val != "" {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: invalid max_file_size %q", domain.ErrInvalidInput, val)
		}
		cfg.MaxFileSize = n
	}

	if val := source.Config["page_size"]; val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}

	if val := source.Config["fetch_acls"]; val != "" {
		cfg.FetchACLs = val == "true" || val == "1"
	}

	if val := source.Config["acl_workers"]; val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			cfg.ACLWorkers = n
		}
	}

	return cfg, nil
}

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
