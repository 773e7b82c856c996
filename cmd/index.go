package cmd

import (
	"context"
	"fmt"
	"time"

	"newsdesk/internal/pipeline"
	"newsdesk/internal/redisclient"

	"github.com/spf13/cobra"
)

var indexDateFlag string

// indexCmd embeds article bodies and writes per-date vector index files.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed articles and build per-date vector indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		var dates []string
		if indexDateFlag != "" {
			if _, err := time.Parse("2006-01-02", indexDateFlag); err != nil {
				return fmt.Errorf("bad --date %q: %w", indexDateFlag, err)
			}
			dates = []string{indexDateFlag}
		} else {
			var err error
			dates, err = cfg.Pipeline.Dates()
			if err != nil {
				return err
			}
		}

		st, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()

		r := &pipeline.Runner{
			Store:     st,
			Embedder:  newEmbedder(rdb),
			VectorDir: cfg.Vector.Dir,
		}

		total := 0
		for _, date := range dates {
			n, err := r.IndexDate(context.Background(), date)
			if err != nil {
				return err
			}
			total += n
		}
		fmt.Fprintf(cmd.OutOrStdout(), "indexed %d articles across %d dates\n", total, len(dates))
		return nil
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexDateFlag, "date", "", "index a single day, YYYY-MM-DD (default: configured window)")
	rootCmd.AddCommand(indexCmd)
}
