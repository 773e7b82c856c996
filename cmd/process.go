package cmd

import (
	"context"
	"fmt"
	"time"

	"newsdesk/internal/pipeline"

	"github.com/spf13/cobra"
)

var processResponseID int64

// processCmd extracts article rows from stored raw responses.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract articles from stored raw responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		r := &pipeline.Runner{Store: st}
		var n int
		if processResponseID > 0 {
			n, err = r.ProcessResponse(ctx, processResponseID)
		} else {
			n, err = r.ProcessAll(ctx)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "inserted %d articles\n", n)
		return nil
	},
}

func init() {
	processCmd.Flags().Int64Var(&processResponseID, "response", 0, "process a single response by id (default: all)")
	rootCmd.AddCommand(processCmd)
}
