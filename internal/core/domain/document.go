package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Document is a normalised document emitted by a connector.
// URI is unique within a source and stable across syncs.
type Document struct {
	SourceID string
	URI      string
	Name     string
	Path     string
	MIMEType string
	Size     int64
	ETag     string
	WebURL   string

	ModifiedAt time.Time

	// Content is the raw document body, nil when the connector only
	// synced metadata (binary formats, oversized files, download errors).
	Content []byte

	// AllowedGroups is the normalised principal allow-list used for
	// security trimming. Nil means the ACL could not be determined and
	// the document must not be visible to anyone.
	AllowedGroups []string

	Metadata map[string]any
}

// ChangeType describes what happened to a document in an incremental sync.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// DocumentChange is a single change emitted by an incremental sync.
// For deletions only SourceID and URI are populated.
type DocumentChange struct {
	Type     ChangeType
	Document Document
}

// DocumentID derives the stable identifier for a document. It doubles as
// the search index primary key, so it must stay within [a-zA-Z0-9_-].
func DocumentID(sourceID, uri string) string {
	sum := sha256.Sum256([]byte(sourceID + "\x00" + uri))
	return hex.EncodeToString(sum[:16])
}
