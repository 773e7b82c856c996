package cmd

import "github.com/spf13/cobra"

// dbCmd groups database-related subcommands.
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database utilities",
}

func init() {
	rootCmd.AddCommand(dbCmd)
}
