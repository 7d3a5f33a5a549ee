package sharepoint

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/harbourview/driftsync/internal/core/domain"
)

// DriveItem represents a SharePoint drive item from the Graph API.
type DriveItem struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Size                 int64            `json:"size"`
	ETag                 string           `json:"eTag"`
	WebURL               string           `json:"webUrl"`
	CreatedDateTime      string           `json:"createdDateTime"`
	LastModifiedDateTime string           `json:"lastModifiedDateTime"`
	File                 *FileInfo        `json:"file,omitempty"`
	Folder               *FolderInfo      `json:"folder,omitempty"`
	ParentReference      *ParentReference `json:"parentReference,omitempty"`
	Deleted              *DeletedInfo     `json:"deleted,omitempty"`
}

// FileInfo contains file-specific metadata.
type FileInfo struct {
	MIMEType string `json:"mimeType"`
}

// FolderInfo contains folder-specific metadata.
type FolderInfo struct {
	ChildCount int `json:"childCount"`
}

// ParentReference contains parent folder information.
type ParentReference struct {
	DriveID string `json:"driveId"`
	ID      string `json:"id"`
	Path    string `json:"path"`
}

// DeletedInfo indicates the item was deleted.
type DeletedInfo struct {
	State string `json:"state"`
}

// IsFolder returns true if the item is a folder.
func (d *DriveItem) IsFolder() bool {
	return d.Folder != nil
}

// IsDeleted returns true if the item was deleted.
func (d *DriveItem) IsDeleted() bool {
	return d.Deleted != nil
}

// GetMIMEType returns the file's MIME type.
func (d *DriveItem) GetMIMEType() string {
	if d.File != nil && d.File.MIMEType != "" {
		return d.File.MIMEType
	}
	return "application/octet-stream"
}

// GetPath returns the library-relative path of the item, starting with "/".
// Graph parent paths look like "/drives/{id}/root:/Sub/Folder".
func (d *DriveItem) GetPath() string {
	if d.ParentReference == nil || d.ParentReference.Path == "" {
		return "/" + d.Name
	}

	parent := d.ParentReference.Path
	if idx := strings.Index(parent, "root:"); idx != -1 {
		parent = parent[idx+len("root:"):]
	}
	if parent == "" {
		return "/" + d.Name
	}
	return parent + "/" + d.Name
}

// ItemURI builds the stable document URI for a drive item ID.
func ItemURI(itemID string) string {
	return fmt.Sprintf("sharepoint://items/%s", itemID)
}

// ShouldSync checks if an item should be synced based on config.
// Folders and deleted items are never synced (deletions are handled
// separately by the caller).
func ShouldSync(item *DriveItem, cfg *Config) bool {
	if item == nil || item.IsFolder() || item.IsDeleted() {
		return false
	}

	itemPath := item.GetPath()

	if len(cfg.Extensions) > 0 {
		ext := strings.ToLower(path.Ext(item.Name))
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

	if len(cfg.IncludeFolders) > 0 && !underAnyFolder(itemPath, cfg.IncludeFolders) {
		return false
	}
	if underAnyFolder(itemPath, cfg.ExcludeFolders) {
		return false
	}

	for _, pattern := range cfg.ExcludePaths {
		if matchesPathPattern(itemPath, pattern) {
			return false
		}
	}

	if cfg.MaxFileSize > 0 && item.Size > cfg.MaxFileSize {
		return false
	}

	return true
}

// underAnyFolder reports whether itemPath sits under one of the folder
// prefixes. Prefixes are normalised ("/Folder") by ParseConfig.
func underAnyFolder(itemPath string, folders []string) bool {
	for _, folder := range folders {
		if itemPath == folder || strings.HasPrefix(itemPath, folder+"/") {
			return true
		}
	}
	return false
}

// matchesPathPattern matches a library-relative path against an exclusion
// pattern. Patterns use path.Match syntax; patterns without a slash are
// also tried against the base name, so "*.tmp" excludes temp files at any
// depth.
func matchesPathPattern(itemPath, pattern string) bool {
	if ok, err := path.Match(pattern, itemPath); err == nil && ok {
		return true
	}
	if ok, err := path.Match(pattern, strings.TrimPrefix(itemPath, "/")); err == nil && ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		if ok, err := path.Match(pattern, path.Base(itemPath)); err == nil && ok {
			return true
		}
	}
	return false
}

// shouldDownloadContent checks if a MIME type is worth downloading for
// indexing. Text formats plus a small set of structured types.
func shouldDownloadContent(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}

	downloadTypes := []string{
		"application/json",
		"application/xml",
		"application/javascript",
		"application/x-yaml",
		"application/sql",
		"application/pdf",
	}
	for _, t := range downloadTypes {
		if mimeType == t {
			return true
		}
	}
	return false
}

// ToDocument converts a DriveItem to a domain Document.
func ToDocument(item *DriveItem, content []byte, allowedGroups []string, sourceID string) *domain.Document {
	modified, _ := time.Parse(time.RFC3339, item.LastModifiedDateTime)

	metadata := map[string]any{
		"item_id":      item.ID,
		"created_time": item.CreatedDateTime,
	}
	if item.ParentReference != nil {
		metadata["drive_id"] = item.ParentReference.DriveID
		metadata["parent_id"] = item.ParentReference.ID
	}

	return &domain.Document{
		SourceID:      sourceID,
		URI:           ItemURI(item.ID),
		Name:          item.Name,
		Path:          item.GetPath(),
		MIMEType:      item.GetMIMEType(),
		Size:          item.Size,
		ETag:          item.ETag,
		WebURL:        item.WebURL,
		ModifiedAt:    modified,
		Content:       content,
		AllowedGroups: domain.NormaliseGroups(allowedGroups),
		Metadata:      metadata,
	}
}
