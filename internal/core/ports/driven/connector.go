package driven

import (
	"context"
	"fmt"

	"github.com/harbourview/driftsync/internal/core/domain"
)

// Connector pulls documents from an external provider.
//
// Sync operations stream results over channels. The error channel
// delivers exactly one terminal value: a *SyncComplete on success
// (carrying the cursor for the next incremental sync) or an error on
// failure. Non-fatal per-item failures are aggregated into
// SyncComplete.Partial rather than aborting the run.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// SourceID returns the source this connector was built for.
	SourceID() string

	// Capabilities describes what the connector supports.
	Capabilities() ConnectorCapabilities

	// Validate checks connectivity and credentials without syncing.
	Validate(ctx context.Context) error

	// FullSync fetches every document in the source.
	FullSync(ctx context.Context) (docs <-chan domain.Document, errs <-chan error)

	// IncrementalSync fetches changes since the cursor in state.
	IncrementalSync(ctx context.Context, state domain.SyncState) (
		changes <-chan domain.DocumentChange, errs <-chan error)

	// Watch streams live changes. Connectors without watch support
	// return domain.ErrNotImplemented.
	Watch(ctx context.Context) (<-chan domain.DocumentChange, error)

	// Close releases resources. Idempotent.
	Close() error
}

// ConnectorCapabilities describes optional connector behaviour.
type ConnectorCapabilities struct {
	SupportsIncremental  bool
	SupportsWatch        bool
	SupportsPermissions  bool
	SupportsDeletions    bool
	RequiresAuth         bool
	SupportsRateLimiting bool
	SupportsPagination   bool
}

// SyncComplete is the terminal value of a successful sync run.
// It implements error so it can travel down the connector error channel.
type SyncComplete struct {
	// NewCursor is the cursor to persist for the next incremental sync.
	NewCursor string

	// Skipped counts items filtered out during iteration.
	Skipped int

	// Partial holds non-fatal per-item errors (failed downloads,
	// permission fetches). The run as a whole still succeeded.
	Partial []error
}

func (s *SyncComplete) Error() string {
	return fmt.Sprintf("sync complete (skipped=%d, partial errors=%d)", s.Skipped, len(s.Partial))
}

// ConnectorBuilder constructs a connector for a source.
type ConnectorBuilder func(source domain.Source, tokenProvider TokenProvider) (Connector, error)

// TokenProvider supplies a bearer token for provider API calls.
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
}

// ConnectorFactory creates connectors from source configuration.
type ConnectorFactory interface {
	Create(ctx context.Context, source domain.Source) (Connector, error)
	SupportedTypes() []string
	ValidateConfig(source domain.Source) error
}
