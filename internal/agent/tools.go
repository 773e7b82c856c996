package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"newsdesk/internal/ai"
	"newsdesk/internal/model"
	"newsdesk/internal/serper"
	"newsdesk/internal/vectorindex"
)

// Tool is one callable exposed to an agent through the chat API. Parameters
// returns the JSON schema of the arguments object.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Call(ctx context.Context, args json.RawMessage) (string, error)
}

// DBCaller is the MCP session surface the database tools run through.
type DBCaller interface {
	CallText(ctx context.Context, tool string, args map[string]any) (string, error)
}

// ArticleLookup resolves vector search hits to article rows.
type ArticleLookup interface {
	ArticlesByIDs(ctx context.Context, ids []int64) ([]model.Article, error)
}

// Searcher is the web search surface.
type Searcher interface {
	Search(ctx context.Context, query string, num int) ([]serper.Result, error)
}

func stringParam(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// queryDatabaseTool forwards SQL to the MCP server's query_database tool.
type queryDatabaseTool struct {
	mcp DBCaller
}

func NewQueryDatabaseTool(mcp DBCaller) Tool { return &queryDatabaseTool{mcp: mcp} }

func (t *queryDatabaseTool) Name() string { return "query_database" }

func (t *queryDatabaseTool) Description() string {
	return "Execute a read-only SQL query against the news database. " +
		"Input must be a single SELECT statement. " +
		"Use describe_schema first to see the available tables and columns."
}

func (t *queryDatabaseTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"sql": stringParam("A single SQL SELECT statement"),
	}, "sql")
}

func (t *queryDatabaseTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var p struct {
		SQL string `json:"sql"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return "", fmt.Errorf("query_database: bad arguments: %w", err)
	}
	if strings.TrimSpace(p.SQL) == "" {
		return "", fmt.Errorf("query_database: sql argument is required")
	}
	return t.mcp.CallText(ctx, "query_database", map[string]any{"sql": p.SQL})
}

// describeSchemaTool forwards to the MCP server's describe_schema tool.
type describeSchemaTool struct {
	mcp DBCaller
}

func NewDescribeSchemaTool(mcp DBCaller) Tool { return &describeSchemaTool{mcp: mcp} }

func (t *describeSchemaTool) Name() string { return "describe_schema" }

func (t *describeSchemaTool) Description() string {
	return "Describe the news database schema: every table with its columns, types, and nullability."
}

func (t *describeSchemaTool) Parameters() map[string]any {
	return objectSchema(map[string]any{})
}

func (t *describeSchemaTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	return t.mcp.CallText(ctx, "describe_schema", nil)
}

// vectorSearchTool embeds the query and searches one date's index.
type vectorSearchTool struct {
	embedder ai.Embedder
	articles ArticleLookup
	dir      string
	date     string
	topK     int
}

func NewVectorSearchTool(embedder ai.Embedder, articles ArticleLookup, dir, date string, topK int) Tool {
	if topK <= 0 {
		topK = 2
	}
	return &vectorSearchTool{embedder: embedder, articles: articles, dir: dir, date: date, topK: topK}
}

func (t *vectorSearchTool) Name() string { return "vector_search" }

func (t *vectorSearchTool) Description() string {
	return fmt.Sprintf("Search for articles published on %s that are semantically similar to a query. "+
		"Input is a free-text query, for example a cluster description. "+
		"Returns the closest article IDs with distances and titles; lower distance means closer.", t.date)
}

func (t *vectorSearchTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"query": stringParam("Free-text query to search similar articles for"),
	}, "query")
}

func (t *vectorSearchTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var p struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return "", fmt.Errorf("vector_search: bad arguments: %w", err)
	}
	if strings.TrimSpace(p.Query) == "" {
		return "", fmt.Errorf("vector_search: query argument is required")
	}

	idx, err := vectorindex.Load(vectorindex.PathFor(t.dir, t.date))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("No vector index available for %s. Run the index stage for that date first.", t.date), nil
		}
		return "", fmt.Errorf("vector_search: load index: %w", err)
	}

	vecs, err := t.embedder.EmbedTexts(ctx, []string{p.Query})
	if err != nil {
		return "", fmt.Errorf("vector_search: embed query: %w", err)
	}
	matches, err := idx.Search(vecs[0], t.topK)
	if err != nil {
		return "", fmt.Errorf("vector_search: %w", err)
	}
	if len(matches) == 0 {
		return fmt.Sprintf("No similar articles found for query: %s", p.Query), nil
	}

	ids := make([]int64, len(matches))
	for i, m := range matches {
		ids[i] = m.ArticleID
	}
	arts, err := t.articles.ArticlesByIDs(ctx, ids)
	if err != nil {
		return "", fmt.Errorf("vector_search: load articles: %w", err)
	}
	titles := make(map[int64]string, len(arts))
	for _, a := range arts {
		titles[a.ID] = a.Title
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Closest articles for %q on %s:\n", p.Query, t.date)
	for _, m := range matches {
		title := titles[m.ArticleID]
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(&sb, "- article_id=%d distance=%.4f title=%s\n", m.ArticleID, m.Distance, title)
	}
	return sb.String(), nil
}

// webSearchTool runs a web search and renders the organic results.
type webSearchTool struct {
	search Searcher
	num    int
}

func NewWebSearchTool(search Searcher, num int) Tool {
	return &webSearchTool{search: search, num: num}
}

func (t *webSearchTool) Name() string { return "web_search" }

func (t *webSearchTool) Description() string {
	return "Search the web for current context on a topic. Returns the top results with title, link, and snippet."
}

func (t *webSearchTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"query": stringParam("Web search query"),
	}, "query")
}

func (t *webSearchTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var p struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return "", fmt.Errorf("web_search: bad arguments: %w", err)
	}
	if strings.TrimSpace(p.Query) == "" {
		return "", fmt.Errorf("web_search: query argument is required")
	}
	results, err := t.search.Search(ctx, p.Query, t.num)
	if err != nil {
		return "", fmt.Errorf("web_search: %w", err)
	}
	return serper.Render(results), nil
}
