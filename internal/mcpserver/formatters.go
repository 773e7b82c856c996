package mcpserver

import (
	"fmt"
	"strings"

	"newsdesk/internal/model"
)

// maxCellLen bounds one table cell so article bodies don't flood the
// conversation.
const maxCellLen = 300

// formatQueryResults renders query output as a markdown table
func formatQueryResults(query string, cols []string, rows [][]string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Query Results (%d rows)\n\n", len(rows)))
	sb.WriteString(fmt.Sprintf("```sql\n%s\n```\n\n", strings.TrimSpace(query)))

	if len(rows) == 0 {
		sb.WriteString("No rows.\n")
		return sb.String()
	}

	sb.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	sep := make([]string, len(cols))
	for i := range sep {
		sep[i] = "---"
	}
	sb.WriteString("| " + strings.Join(sep, " | ") + " |\n")

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = sanitizeCell(c)
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return sb.String()
}

// sanitizeCell keeps cell text on one table row
func sanitizeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	if len(s) > maxCellLen {
		s = s[:maxCellLen] + "..."
	}
	return s
}

// formatSchema wraps the schema description for tool output
func formatSchema(schema string) string {
	var sb strings.Builder
	sb.WriteString("## Database Schema\n\n```\n")
	sb.WriteString(strings.TrimRight(schema, "\n"))
	sb.WriteString("\n```\n")
	return sb.String()
}

// formatArticle formats a single article as markdown
func formatArticle(a model.Article) string {
	var sb strings.Builder
	title := a.Title
	if title == "" {
		title = "(untitled)"
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("**ID:** %d\n", a.ID))
	if a.URL != "" {
		sb.WriteString(fmt.Sprintf("**URL:** %s\n", a.URL))
	}
	if a.SourceURI != "" {
		sb.WriteString(fmt.Sprintf("**Source:** %s\n", a.SourceURI))
	}
	if a.PublishedOn != "" {
		sb.WriteString(fmt.Sprintf("**Published:** %s\n", a.PublishedOn))
	}
	if a.Lang != "" {
		sb.WriteString(fmt.Sprintf("**Language:** %s\n", a.Lang))
	}
	if a.Sentiment != nil {
		sb.WriteString(fmt.Sprintf("**Sentiment:** %.2f\n", *a.Sentiment))
	}

	sb.WriteString("\n## Content\n\n")
	if a.Body == "" {
		sb.WriteString("(no body text)\n")
	} else {
		sb.WriteString(a.Body)
		sb.WriteString("\n")
	}
	return sb.String()
}
