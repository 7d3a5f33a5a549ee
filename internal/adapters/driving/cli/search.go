package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search synced documents",
	Long: `Search the index with security trimming. Results are limited to
documents visible to the given principals; public documents are always
included.

Examples:
  driftsync search "quarterly report"
  driftsync search "quarterly report" -p user:00000000-0000-0000-0000-000000000001
  driftsync search budget -p group:finance-team-object-id -n 5`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

// Flags for search.
var (
	searchPrincipals []string
	searchLimit      int
)

func init() {
	searchCmd.Flags().StringArrayVarP(
		&searchPrincipals, "principal", "p", nil,
		"Caller principal (user:<id> or group:<id>, can be repeated)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "Maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	hits, err := searchService.Search(context.Background(), args[0], searchPrincipals, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(hits) == 0 {
		cmd.Println("No results.")
		return nil
	}

	for _, hit := range hits {
		cmd.Printf("%s\n", hit.Title)
		cmd.Printf("  %s\n", hit.Path)
		if hit.Snippet != "" {
			cmd.Printf("  %s\n", hit.Snippet)
		}
		if hit.WebURL != "" {
			cmd.Printf("  %s\n", hit.WebURL)
		}
		cmd.Println()
	}
	return nil
}
