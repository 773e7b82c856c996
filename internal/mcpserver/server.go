// Package mcpserver exposes database access as MCP tools over stdio. The
// agent workflow talks to the database only through this boundary, so the
// read-only guard on query_database is the whole of its SQL surface.
package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"newsdesk/internal/model"
)

// ServerName identifies this MCP server to clients.
const ServerName = "newsdesk"

// Querier is the store surface the tools run against.
type Querier interface {
	Select(ctx context.Context, query string) (cols []string, rows [][]string, err error)
	SchemaDescription(ctx context.Context) (string, error)
	ArticleByID(ctx context.Context, id int64) (model.Article, error)
}

// New builds the MCP server with all tools registered.
func New(q Querier, version string) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(createQueryDatabaseTool(), handleQueryDatabase(q))
	s.AddTool(createDescribeSchemaTool(), handleDescribeSchema(q))
	s.AddTool(createGetArticleTool(), handleGetArticle(q))

	return s
}

// Serve blocks on stdio until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
