package connectors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harbourview/driftsync/internal/core/domain"
	"github.com/harbourview/driftsync/internal/core/ports/driven"
)

type stubTokenProvider struct{}

func (stubTokenProvider) GetToken(context.Context) (string, error) {
	return "", nil
}

type stubTokenProviderFactory struct{}

func (stubTokenProviderFactory) CreateTokenProvider(
	context.Context, *domain.Source,
) (driven.TokenProvider, error) {
	return stubTokenProvider{}, nil
}

func newTestFactory() *Factory {
	return NewFactory(stubTokenProviderFactory{}, nil)
}

func TestFactory_SupportedTypes(t *testing.T) {
	f := newTestFactory()
	assert.Equal(t, []string{"adls", "filesystem", "sharepoint"}, f.SupportedTypes())
}

func TestFactory_Create_Filesystem(t *testing.T) {
	f := newTestFactory()
	source := domain.Source{
		ID:     "src-1",
		Type:   "filesystem",
		Config: map[string]string{"path": t.TempDir()},
	}

	c, err := f.Create(context.Background(), source)

	require.NoError(t, err)
	assert.Equal(t, "filesystem", c.Type())
	assert.Equal(t, "src-1", c.SourceID())
	require.NoError(t, c.Close())
}

func TestFactory_Create_Sharepoint(t *testing.T) {
	f := newTestFactory()
	source := domain.Source{
		ID:   "src-1",
		Type: "sharepoint",
		Config: map[string]string{
			"site_url": "https://contoso.sharepoint.com/sites/hr",
		},
	}

	c, err := f.Create(context.Background(), source)

	require.NoError(t, err)
	assert.Equal(t, "sharepoint", c.Type())
	assert.True(t, c.Capabilities().SupportsPermissions)
}

func TestFactory_Create_ADLS(t *testing.T) {
	f := newTestFactory()
	source := domain.Source{
		ID:   "src-1",
		Type: "adls",
		Config: map[string]string{
			"account_name": "contosodata",
			"filesystem":   "raw",
		},
	}

	c, err := f.Create(context.Background(), source)

	require.NoError(t, err)
	assert.Equal(t, "adls", c.Type())
}

func TestFactory_Create_UnsupportedType(t *testing.T) {
	f := newTestFactory()

	_, err := f.Create(context.Background(), domain.Source{Type: "gopher"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestFactory_ValidateConfig(t *testing.T) {
	f := newTestFactory()

	assert.NoError(t, f.ValidateConfig(domain.Source{
		Type:   "filesystem",
		Config: map[string]string{"path": "/tmp"},
	}))
	assert.ErrorIs(t, f.ValidateConfig(domain.Source{
		Type:   "filesystem",
		Config: map[string]string{},
	}), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.ValidateConfig(domain.Source{
		Type:   "sharepoint",
		Config: map[string]string{},
	}), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.ValidateConfig(domain.Source{Type: "gopher"}), domain.ErrUnsupportedType)
}
