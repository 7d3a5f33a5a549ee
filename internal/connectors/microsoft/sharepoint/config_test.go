package sharepoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harbourview/driftsync/internal/core/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultLibraryName, cfg.LibraryName)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, int64(200), cfg.PageSize)
	assert.True(t, cfg.FetchPermissions)
	assert.Equal(t, 5, cfg.PermissionWorkers)
}

func TestParseConfig_RequiresSiteURL(t *testing.T) {
	_, err := ParseConfig(domain.Source{Config: map[string]string{}})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseConfig_SiteURL(t *testing.T) {
	source := domain.Source{Config: map[string]string{
		"site_url": "https://contoso.sharepoint.com/sites/engineering/",
	}}

	cfg, err := ParseConfig(source)

	require.NoError(t, err)
	assert.Equal(t, "contoso.sharepoint.com", cfg.SiteHostname)
	assert.Equal(t, "/sites/engineering", cfg.SitePath)
	assert.Equal(t, DefaultLibraryName, cfg.LibraryName)
}

func TestParseConfig_RootSite(t *testing.T) {
	source := domain.Source{Config: map[string]string{
		"site_url": "https://contoso.sharepoint.com",
	}}

	cfg, err := ParseConfig(source)

	require.NoError(t, err)
	assert.Equal(t, "/", cfg.SitePath)
}

func TestParseConfig_InvalidSiteURL(t *testing.T) {
	source := domain.Source{Config: map[string]string{
		"site_url": "not a url",
	}}

	_, err := ParseConfig(source)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseConfig_Library(t *testing.T) {
	source := domain.Source{Config: map[string]string{
		"site_url": "https://contoso.sharepoint.com/sites/hr",
		"library":  "Policies",
	}}

	cfg, err := ParseConfig(source)

	require.NoError(t, err)
	assert.Equal(t, "Policies", cfg.LibraryName)
}

func TestParseConfig_ExtensionsNormalised(t *testing.T) {
	source := domain.Source{Config: map[string]string{
		"site_url":   "https://contoso.sharepoint.com/sites/hr",
		"extensions": "PDF, .docx, md",
	}}

	cfg, err := ParseConfig(source)

	require.NoError(t, err)
	assert.Equal(t, []string{".pdf", ".docx", ".md"}, cfg.Extensions)
}

func TestParseConfig_FoldersNormalised(t *testing.T) {
	source := domain.Source{Config: map[string]string{
		"site_url":        "https://contoso.sharepoint.com/sites/hr",
		"include_folders": "Reports/, /Archive",
		"exclude_folders": "Drafts",
	}}

	cfg, err := ParseConfig(source)

	require.NoError(t, err)
	assert.Equal(t, []string{"/Reports", "/Archive"}, cfg.IncludeFolders)
	assert.Equal(t, []string{"/Drafts"}, cfg.ExcludeFolders)
}

func TestParseConfig_InvalidMaxFileSize(t *testing.T) {
	source := domain.Source{Config: map[string]string{
		"site_url":      "https://contoso.sharepoint.com/sites/hr",
		"max_file_size": "-5",
	}}

	_, err := ParseConfig(source)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseConfig_FetchPermissionsDisabled(t *testing.T) {
	source := domain.Source{Config: map[string]string{
		"site_url":          "https://contoso.sharepoint.com/sites/hr",
		"fetch_permissions": "false",
	}}

	cfg, err := ParseConfig(source)

	require.NoError(t, err)
	assert.False(t, cfg.FetchPermissions)
}
