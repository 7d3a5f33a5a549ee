package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	cfg, err := store.Load()

	require.NoError(t, err)
	assert.Empty(t, cfg.DataDir)
	assert.Empty(t, cfg.Index.URL)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	store, err := NewStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(&Config{
		DataDir: "/var/lib/driftsync",
		Index: IndexConfig{
			URL:    "http://127.0.0.1:7700",
			APIKey: "masterKey",
		},
	}))

	cfg, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, "/var/lib/driftsync", cfg.DataDir)
	assert.Equal(t, "http://127.0.0.1:7700", cfg.Index.URL)
	assert.Equal(t, "masterKey", cfg.Index.APIKey)
	assert.Equal(t, path, store.Path())
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0o600))

	_, err = store.Load()
	assert.Error(t, err)
}
