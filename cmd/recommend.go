package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"newsdesk/internal/agent"
	"newsdesk/internal/mcpclient"
	"newsdesk/internal/pipeline"
	"newsdesk/internal/redisclient"
	"newsdesk/internal/serper"

	"github.com/spf13/cobra"
)

var (
	recommendUser string
	recommendDate string
)

// recommendCmd runs the three-agent workflow and writes the markdown report.
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Run the agent workflow and write a recommendation report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		user := recommendUser
		if user == "" {
			user = pipeline.PrimaryUserEmail
		}
		date := recommendDate
		if date == "" {
			date = cfg.Pipeline.DateStart
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return fmt.Errorf("bad --date %q: %w", date, err)
		}

		defs, err := agent.LoadDefinitions()
		if err != nil {
			return err
		}
		timeout, err := time.ParseDuration(cfg.Agents.Timeout)
		if err != nil {
			return fmt.Errorf("bad agents.timeout %q: %w", cfg.Agents.Timeout, err)
		}

		st, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()

		// The agents reach the database only through the MCP server,
		// served by this binary's own mcp subcommand.
		command := cfg.Agents.MCPCommand
		if command == "" {
			command, err = os.Executable()
			if err != nil {
				return fmt.Errorf("resolve mcp command: %w", err)
			}
		}
		mcpArgs := append([]string{}, cfg.Agents.MCPArgs...)
		if cfgFile != "" {
			mcpArgs = append(mcpArgs, "--config", cfgFile)
		}
		ctx := context.Background()
		session, err := mcpclient.Connect(ctx, Version, command, nil, mcpArgs...)
		if err != nil {
			return err
		}
		defer session.Close()

		var search agent.Searcher
		if cfg.Serper.APIKey != "" {
			search = serper.New(cfg.Serper)
		}

		oa := newOpenAI()
		wf := &agent.Workflow{
			Runner: agent.NewRunner(oa, agent.Config{
				MaxTurns:     cfg.Agents.MaxTurns,
				MaxToolCalls: cfg.Agents.MaxToolCalls,
				Timeout:      timeout,
			}),
			Defs:       defs,
			DB:         session,
			Embedder:   newEmbedder(rdb),
			Articles:   st,
			Search:     search,
			VectorDir:  cfg.Vector.Dir,
			TopK:       cfg.Agents.TopK,
			SearchNum:  cfg.Serper.Results,
			Model:      cfg.OpenAI.Model,
			ReportsDir: cfg.Reports.Dir,
			Title:      cfg.Reports.Title,
		}

		path, err := wf.Recommend(ctx, user, date)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "report written: %s\n", path)
		return nil
	},
}

func init() {
	recommendCmd.Flags().StringVar(&recommendUser, "user", "", "user email to recommend for (default: the primary demo user)")
	recommendCmd.Flags().StringVar(&recommendDate, "date", "", "article date to search, YYYY-MM-DD (default: configured date_start)")
	rootCmd.AddCommand(recommendCmd)
}
