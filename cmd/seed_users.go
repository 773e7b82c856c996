package cmd

import (
	"context"
	"fmt"
	"time"

	"newsdesk/internal/pipeline"

	"github.com/spf13/cobra"
)

// seedUsersCmd creates the demo users and the primary user's history.
var seedUsersCmd = &cobra.Command{
	Use:   "seed-users",
	Short: "Create demo users and seed reading history",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		r := &pipeline.Runner{Store: st}
		if err := r.SeedUsers(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "users seeded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedUsersCmd)
}
