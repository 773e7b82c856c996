package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool failures are reported as text content rather than protocol errors,
// so the calling agent can read them and adjust its next query.

func textResult(s string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(s),
		},
	}
}

// handleQueryDatabase implements the query_database tool
func handleQueryDatabase(q Querier) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("sql")
		if err != nil || query == "" {
			return textResult("Error: sql parameter is required"), nil
		}

		cols, rows, err := q.Select(ctx, query)
		if err != nil {
			slog.Error("mcp: query_database failed", "err", err)
			return textResult(fmt.Sprintf("Query error: %v", err)), nil
		}

		return textResult(formatQueryResults(query, cols, rows)), nil
	}
}

// handleDescribeSchema implements the describe_schema tool
func handleDescribeSchema(q Querier) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		schema, err := q.SchemaDescription(ctx)
		if err != nil {
			slog.Error("mcp: describe_schema failed", "err", err)
			return textResult(fmt.Sprintf("Schema error: %v", err)), nil
		}
		return textResult(formatSchema(schema)), nil
	}
}

// handleGetArticle implements the get_article tool
func handleGetArticle(q Querier) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := request.GetInt("id", 0)
		if id <= 0 {
			return textResult("Error: id parameter must be a positive article ID"), nil
		}

		art, err := q.ArticleByID(ctx, int64(id))
		if err != nil {
			slog.Error("mcp: get_article failed", "id", id, "err", err)
			return textResult(fmt.Sprintf("Article not found: %v", err)), nil
		}
		return textResult(formatArticle(art)), nil
	}
}
