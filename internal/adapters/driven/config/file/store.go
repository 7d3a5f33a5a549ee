// Package file persists application configuration as a TOML file under
// the user's home directory.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the application configuration.
type Config struct {
	// DataDir holds the SQLite database. Defaults to ~/.driftsync/data.
	DataDir string `toml:"data_dir"`

	Index IndexConfig `toml:"index"`
}

// IndexConfig configures the search index backend. An empty URL
// disables indexing.
type IndexConfig struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
}

// Store reads and writes the config file.
type Store struct {
	path string
}

// NewStore creates a config store at path. An empty path uses
// ~/.driftsync/config.toml.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".driftsync", "config.toml")
	}
	return &Store{path: path}, nil
}

// Load reads the config file. A missing file yields the zero config.
func (s *Store) Load() (*Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config file, creating the directory if needed.
func (s *Store) Save(cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Path returns the config file location.
func (s *Store) Path() string {
	return s.path
}
