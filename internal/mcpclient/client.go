// Package mcpclient drives a stdio MCP server from the agent side. It
// launches the server as a child process, completes the protocol handshake,
// and reduces tool results to plain text for prompt use.
package mcpclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

const clientName = "newsdesk-agent"

// Client wraps one live MCP session.
type Client struct {
	mcp *client.Client
}

// Connect launches command with args, inheriting env pairs, and performs
// the MCP initialize handshake. Close must be called to reap the child.
func Connect(ctx context.Context, version, command string, env []string, args ...string) (*Client, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("mcpclient: start %s: %w", command, err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    clientName,
		Version: version,
	}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		c.Close()
		return nil, fmt.Errorf("mcpclient: initialize: %w", err)
	}
	return &Client{mcp: c}, nil
}

// CallText invokes a tool and returns its concatenated text content. A tool
// that reports an error becomes a Go error carrying the tool's message.
func (c *Client) CallText(ctx context.Context, tool string, args map[string]any) (string, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = args

	res, err := c.mcp.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("mcpclient: call %s: %w", tool, err)
	}

	var sb strings.Builder
	for _, content := range res.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	if res.IsError {
		return "", fmt.Errorf("mcpclient: tool %s failed: %s", tool, sb.String())
	}
	return sb.String(), nil
}

// Tools lists the server's registered tool names.
func (c *Client) Tools(ctx context.Context) ([]string, error) {
	res, err := c.mcp.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("mcpclient: list tools: %w", err)
	}
	names := make([]string, 0, len(res.Tools))
	for _, t := range res.Tools {
		names = append(names, t.Name)
	}
	return names, nil
}

// Close shuts the session down and waits for the server process.
func (c *Client) Close() error {
	return c.mcp.Close()
}
