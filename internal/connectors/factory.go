// Package connectors wires source configuration to concrete connector
// implementations.
package connectors

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/harbourview/driftsync/internal/connectors/azure/datalake"
	"github.com/harbourview/driftsync/internal/connectors/filesystem"
	"github.com/harbourview/driftsync/internal/connectors/microsoft/sharepoint"
	"github.com/harbourview/driftsync/internal/core/domain"
	"github.com/harbourview/driftsync/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.ConnectorFactory = (*Factory)(nil)

// TokenProviderFactory creates TokenProviders for sources.
// This interface is satisfied by auth.Factory.
type TokenProviderFactory interface {
	CreateTokenProvider(ctx context.Context, source *domain.Source) (driven.TokenProvider, error)
}

// Factory creates connectors based on source configuration.
type Factory struct {
	mu                   sync.RWMutex
	builders             map[string]driven.ConnectorBuilder
	tokenProviderFactory TokenProviderFactory
	logger               *zap.Logger
}

// NewFactory creates a connector factory with the built-in builders
// registered. The tokenProviderFactory resolves source credentials to
// TokenProviders.
func NewFactory(tokenProviderFactory TokenProviderFactory, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Factory{
		builders:             make(map[string]driven.ConnectorBuilder),
		tokenProviderFactory: tokenProviderFactory,
		logger:               logger,
	}
	f.registerDefaultBuilders()
	return f
}

// registerDefaultBuilders registers all built-in connector builders.
func (f *Factory) registerDefaultBuilders() {
	f.Register("filesystem", func(source domain.Source, _ driven.TokenProvider) (driven.Connector, error) {
		path, ok := source.Config["path"]
		if !ok {
			return nil, fmt.Errorf("%w: filesystem source requires 'path' config", domain.ErrInvalidInput)
		}
		return filesystem.New(source.ID, path)
	})

	f.Register("sharepoint", func(
		source domain.Source, tokenProvider driven.TokenProvider,
	) (driven.Connector, error) {
		cfg, err := sharepoint.ParseConfig(source)
		if err != nil {
			return nil, fmt.Errorf("sharepoint config: %w", err)
		}
		return sharepoint.New(source.ID, cfg, tokenProvider, f.logger), nil
	})

	f.Register("adls", func(
		source domain.Source, tokenProvider driven.TokenProvider,
	) (driven.Connector, error) {
		cfg, err := datalake.ParseConfig(source)
		if err != nil {
			return nil, fmt.Errorf("adls config: %w", err)
		}
		return datalake.New(source.ID, cfg, tokenProvider, f.logger), nil
	})
}

// Create instantiates a connector for the given source.
// Resolves the TokenProvider from source credentials internally.
func (f *Factory) Create(ctx context.Context, source domain.Source) (driven.Connector, error) {
	f.mu.RLock()
	builder, ok := f.builders[source.Type]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, source.Type)
	}

	tokenProvider, err := f.tokenProviderFactory.CreateTokenProvider(ctx, &source)
	if err != nil {
		return nil, fmt.Errorf("create token provider for source %s: %w", source.ID, err)
	}

	return builder(source, tokenProvider)
}

// ValidateConfig checks that a source's config parses for its type
// without building a live connector.
func (f *Factory) ValidateConfig(source domain.Source) error {
	switch source.Type {
	case "filesystem":
		if source.Config["path"] == "" {
			return fmt.Errorf("%w: filesystem source requires 'path' config", domain.ErrInvalidInput)
		}
		return nil
	case "sharepoint":
		_, err := sharepoint.ParseConfig(source)
		return err
	case "adls":
		_, err := datalake.ParseConfig(source)
		return err
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedType, source.Type)
	}
}

// Register adds a connector builder for the given type.
func (f *Factory) Register(connectorType string, builder driven.ConnectorBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[connectorType] = builder
}

// SupportedTypes returns all registered connector types, sorted.
func (f *Factory) SupportedTypes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	types := make([]string, 0, len(f.builders))
	for t := range f.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
