package cmd

import (
	"context"
	"fmt"

	"newsdesk/internal/redisclient"

	"github.com/spf13/cobra"
)

var (
	fetchKeywords  []string
	fetchDateStart string
	fetchDateEnd   string
	fetchCount     int
	fetchSortBy    string
)

// fetchCmd pulls one raw response per keyword and date and stores it.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch raw article responses for each keyword and date",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := pipelineParams(fetchKeywords, fetchDateStart, fetchDateEnd, fetchCount, fetchSortBy)
		if err != nil {
			return err
		}

		st, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		rdb := redisclient.New(GetConfig().Redis)
		defer rdb.Close()

		r := newPipelineRunner(st, rdb)
		ids, err := r.Fetch(context.Background(), p)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "fetched %d responses\n", len(ids))
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringSliceVar(&fetchKeywords, "keywords", nil, "keywords to search (default from config)")
	fetchCmd.Flags().StringVar(&fetchDateStart, "date-start", "", "first day to fetch, YYYY-MM-DD")
	fetchCmd.Flags().StringVar(&fetchDateEnd, "date-end", "", "last day to fetch, YYYY-MM-DD")
	fetchCmd.Flags().IntVar(&fetchCount, "count", 0, "articles per request (1-100)")
	fetchCmd.Flags().StringVar(&fetchSortBy, "sort-by", "", "sort order: date, rel, sourceImportance, socialScore")
	rootCmd.AddCommand(fetchCmd)
}
