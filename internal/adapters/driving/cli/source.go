package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage document sources",
	Long:  `Add, list, or remove document sources (SharePoint sites, ADLS filesystems, local directories).`,
}

var sourceAddCmd = &cobra.Command{
	Use:   "add [source-type]",
	Short: "Add a new document source",
	Long: `Add a new document source of the given type.

Supported types: filesystem, sharepoint, adls.

Examples:
  # Local directory
  driftsync source add filesystem --name docs -c path=/home/me/docs

  # SharePoint document library
  driftsync source add sharepoint --name intranet \
    -c site_url=https://contoso.sharepoint.com/sites/intranet \
    -c tenant_id=... -c client_id=... -c client_secret=...

  # ADLS Gen2 filesystem
  driftsync source add adls --name datalake \
    -c account_name=contosodata -c filesystem=raw \
    -c tenant_id=... -c client_id=... -c client_secret=...`,
	Args: cobra.ExactArgs(1),
	RunE: runSourceAdd,
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sources",
	RunE:  runSourceList,
}

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove [source-id]",
	Short: "Remove a document source and its synced data",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceRemove,
}

// Flags for source add.
var (
	sourceName   string
	sourceConfig []string
)

func init() {
	sourceAddCmd.Flags().StringVar(&sourceName, "name", "", "Name for the source (defaults to the source type)")
	sourceAddCmd.Flags().StringArrayVarP(
		&sourceConfig, "config", "c", nil,
		"Configuration key=value pairs (can be repeated)")
	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
	rootCmd.AddCommand(sourceCmd)
}

func runSourceAdd(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	sourceType := args[0]

	config := make(map[string]string)
	for _, kv := range sourceConfig {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid config format: %s (expected key=value)", kv)
		}
		config[parts[0]] = parts[1]
	}

	name := sourceName
	if name == "" {
		name = sourceType
	}

	source, err := sourceService.Add(context.Background(), sourceType, name, config)
	if err != nil {
		return fmt.Errorf("failed to add source: %w", err)
	}

	cmd.Printf("Added source: %s (%s)\n", source.ID, source.Type)
	return nil
}

func runSourceList(cmd *cobra.Command, _ []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	sources, err := sourceService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No configured sources.")
		return nil
	}

	cmd.Println("Configured sources:")
	cmd.Println()
	for i := range sources {
		cmd.Printf("  %s\n", sources[i].ID)
		cmd.Printf("    Type: %s\n", sources[i].Type)
		cmd.Printf("    Name: %s\n", sources[i].Name)
		cmd.Println()
	}
	return nil
}

func runSourceRemove(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	sourceID := args[0]
	if err := sourceService.Remove(context.Background(), sourceID); err != nil {
		return fmt.Errorf("failed to remove source: %w", err)
	}

	cmd.Printf("Removed source: %s\n", sourceID)
	return nil
}
