// Package auth resolves source credentials to token providers. Cloud
// sources use the OAuth2 client credentials grant against Azure AD;
// local sources need no auth.
package auth

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/harbourview/driftsync/internal/core/domain"
	"github.com/harbourview/driftsync/internal/core/ports/driven"
)

// Scopes for the client credentials grant, per resource.
const (
	graphScope   = "https://graph.microsoft.com/.default"
	storageScope = "https://storage.azure.com/.default"
)

// Factory creates token providers for sources. Token sources are cached
// per source so refreshed tokens are shared across syncs.
type Factory struct {
	mu     sync.Mutex
	cache  map[string]oauth2.TokenSource
	logger *zap.Logger
}

// NewFactory creates an auth factory.
func NewFactory(logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{
		cache:  make(map[string]oauth2.TokenSource),
		logger: logger,
	}
}

// CreateTokenProvider returns a token provider for the source. Sources
// that need no auth get a provider that yields empty tokens.
func (f *Factory) CreateTokenProvider(ctx context.Context, source *domain.Source) (driven.TokenProvider, error) {
	switch source.Type {
	case "filesystem":
		return &staticProvider{}, nil
	case "sharepoint":
		return f.clientCredentialsProvider(ctx, source, graphScope)
	case "adls":
		return f.clientCredentialsProvider(ctx, source, storageScope)
	default:
		return nil, fmt.Errorf("%w: no auth mechanism for type %s", domain.ErrUnsupportedType, source.Type)
	}
}

// clientCredentialsProvider builds an app-only provider from the
// source's tenant_id, client_id, and client_secret config keys.
func (f *Factory) clientCredentialsProvider(
	ctx context.Context, source *domain.Source, scope string,
) (driven.TokenProvider, error) {
	tenantID := source.Config["tenant_id"]
	clientID := source.Config["client_id"]
	clientSecret := source.Config["client_secret"]
	if tenantID == "" || clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf(
			"%w: source %s requires tenant_id, client_id and client_secret config",
			domain.ErrAuthRequired, source.ID,
		)
	}

	tokenURL := source.Config["token_url"]
	if tokenURL == "" {
		tokenURL = fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenantID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	cacheKey := source.ID + "|" + scope
	ts, ok := f.cache[cacheKey]
	if !ok {
		cfg := &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{scope},
		}
		// ReuseTokenSource caches the token until expiry.
		ts = oauth2.ReuseTokenSource(nil, cfg.TokenSource(ctx))
		f.cache[cacheKey] = ts
		f.logger.Debug("created token source",
			zap.String("source_id", source.ID),
			zap.String("scope", scope))
	}

	return &oauthProvider{source: ts}, nil
}

// oauthProvider adapts an oauth2.TokenSource to the TokenProvider port.
type oauthProvider struct {
	source oauth2.TokenSource
}

func (p *oauthProvider) GetToken(ctx context.Context) (string, error) {
	token, err := p.source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAuthInvalid, err)
	}
	return token.AccessToken, nil
}
