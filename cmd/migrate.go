package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// migrateCmd creates the database schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := st.Ensure(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema ready")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
