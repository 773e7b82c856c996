// Package serper is a client for the Serper Google search API.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"newsdesk/internal/config"
)

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	results int
}

func New(cfg config.SerperConfig) *Client {
	results := cfg.Results
	if results <= 0 {
		results = 5
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: 15 * time.Second},
		results: results,
	}
}

// Result is one organic search hit.
type Result struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

// Search runs a web search and returns organic results. num <= 0 uses the
// configured default.
func (c *Client) Search(ctx context.Context, query string, num int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("serper: empty query")
	}
	if num <= 0 {
		num = c.results
	}
	body, err := json.Marshal(map[string]any{"q": query, "num": num})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("serper: status %d", resp.StatusCode)
	}
	var out struct {
		Organic []Result `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Organic, nil
}

// Render formats results as compact numbered lines for tool output.
func Render(results []Result) string {
	if len(results) == 0 {
		return "No results."
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n   %s\n", i+1, r.Title, r.Link)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", r.Snippet)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
