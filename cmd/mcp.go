package cmd

import (
	"github.com/spf13/cobra"

	"newsdesk/internal/mcpserver"
)

// mcpCmd serves the database tools over MCP stdio. The recommend command
// spawns this as a subprocess; it can also back any external MCP client.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve database tools over MCP stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		return mcpserver.Serve(mcpserver.New(st, Version))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
