package cmd

import (
	"fmt"

	"newsdesk/internal/report"

	"github.com/spf13/cobra"
)

// reportCmd groups report-related subcommands.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report utilities",
}

// reportInspectCmd parses a written report and prints its metadata.
var reportInspectCmd = &cobra.Command{
	Use:   "inspect <report_path>",
	Short: "Parse a report file and print its frontmatter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := report.ParseFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "title: %s\n", doc.Title)
		fmt.Fprintf(out, "user: %s\n", doc.UserEmail)
		fmt.Fprintf(out, "date: %s\n", doc.Date)
		fmt.Fprintf(out, "model: %s\n", doc.Model)
		fmt.Fprintf(out, "body bytes: %d\n", len(doc.Body))
		return nil
	},
}

func init() {
	reportCmd.AddCommand(reportInspectCmd)
	rootCmd.AddCommand(reportCmd)
}
