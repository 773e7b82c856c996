package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createQueryDatabaseTool returns the query_database tool definition
func createQueryDatabaseTool() mcp.Tool {
	return mcp.NewTool("query_database",
		mcp.WithDescription("Execute a read-only SQL query against the news database. "+
			"Input must be a single SELECT statement; anything else is rejected. "+
			"Use describe_schema first to see the available tables and columns."),
		mcp.WithString("sql",
			mcp.Required(),
			mcp.Description("A single SQL SELECT statement"),
		),
	)
}

// createDescribeSchemaTool returns the describe_schema tool definition
func createDescribeSchemaTool() mcp.Tool {
	return mcp.NewTool("describe_schema",
		mcp.WithDescription("Describe the news database schema: every table with its columns, types, and nullability"),
	)
}

// createGetArticleTool returns the get_article tool definition
func createGetArticleTool() mcp.Tool {
	return mcp.NewTool("get_article",
		mcp.WithDescription("Retrieve a single article by its numeric ID, including title, URL, source, and body"),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Article ID as stored in the articles table"),
		),
	)
}
