package cmd

import (
	"context"
	"fmt"
	"time"

	"newsdesk/internal/redisclient"

	"github.com/spf13/cobra"
)

// pingCmd checks connectivity to Postgres and Redis.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping Postgres and Redis",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		// pgclient.Open pings before returning.
		_, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()
		fmt.Fprintln(cmd.OutOrStdout(), "postgres: ok")

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		res, err := rdb.Ping(ctx).Result()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "redis: %s\n", res)
		return nil
	},
}

func init() {
	dbCmd.AddCommand(pingCmd)
}
