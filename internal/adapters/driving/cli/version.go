package cli

import "github.com/spf13/cobra"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the driftsync version",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("driftsync %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
