package cmd

import (
	"context"
	"fmt"

	"newsdesk/internal/redisclient"

	"github.com/spf13/cobra"
)

var (
	pipelineKeywords  []string
	pipelineDateStart string
	pipelineDateEnd   string
	pipelineCount     int
	pipelineSortBy    string
)

// pipelineCmd runs every ingestion stage in order.
var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the full pipeline: migrate, fetch, process, index, seed users",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := pipelineParams(pipelineKeywords, pipelineDateStart, pipelineDateEnd, pipelineCount, pipelineSortBy)
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
		if err := r.Run(context.Background(), p); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "pipeline complete")
		return nil
	},
}

func init() {
	pipelineCmd.Flags().StringSliceVar(&pipelineKeywords, "keywords", nil, "keywords to search (default from config)")
	pipelineCmd.Flags().StringVar(&pipelineDateStart, "date-start", "", "first day to fetch, YYYY-MM-DD")
	pipelineCmd.Flags().StringVar(&pipelineDateEnd, "date-end", "", "last day to fetch, YYYY-MM-DD")
	pipelineCmd.Flags().IntVar(&pipelineCount, "count", 0, "articles per request (1-100)")
	pipelineCmd.Flags().StringVar(&pipelineSortBy, "sort-by", "", "sort order: date, rel, sourceImportance, socialScore")
	rootCmd.AddCommand(pipelineCmd)
}
