// Package cli implements the driftsync command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/harbourview/driftsync/internal/core/ports/driving"
)

var (
	// Version is set by goreleaser ldflags.
	version = "dev"

	// Services holds injected service implementations for CLI commands.
	sourceService driving.SourceService
	syncService   driving.SyncService
	searchService driving.SearchService
)

// Services holds configuration for CLI commands.
type Services struct {
	Source driving.SourceService
	Sync   driving.SyncService
	Search driving.SearchService
}

// SetServices injects service implementations for CLI commands.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	sourceService = s.Source
	syncService = s.Sync
	searchService = s.Search
}

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "driftsync",
	Short: "Sync documents and permissions from cloud sources into a search index",
	Long: `Driftsync incrementally syncs documents from SharePoint, Azure Data Lake
Gen2, and local directories, maps each item's permissions to a normalised
allow-list, and keeps a security-trimmed search index up to date.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
}
