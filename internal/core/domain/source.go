package domain

import "time"

// Source is a configured document source.
type Source struct {
	// ID is a UUID assigned when the source is created.
	ID string
	// Name is a human-readable label.
	Name string
	// Type is the connector type ("sharepoint", "adls", "filesystem").
	Type string
	// Config holds connector-specific settings as parsed by the
	// connector's ParseConfig.
	Config map[string]string

	CreatedAt time.Time
}

// SyncState is the persisted sync position for a source.
type SyncState struct {
	SourceID string

	// Cursor is an opaque connector cursor (delta link, watermark).
	// Empty means the next sync must be a full sync.
	Cursor string

	LastSyncAt     time.Time
	LastFullSyncAt time.Time

	// LastError records the terminal error of the previous run, empty on
	// success.
	LastError string

	// DocumentCount is the number of documents held for the source after
	// the last run.
	DocumentCount int64
}
