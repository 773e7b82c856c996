package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

// ChatService issues chat completions.
type ChatService interface {
	ChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config bounds one task's conversation.
type Config struct {
	MaxTurns     int           // assistant turns before giving up
	MaxToolCalls int           // tool calls across the whole conversation
	Timeout      time.Duration // wall clock for the whole conversation
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		MaxTurns:     10,
		MaxToolCalls: 15,
		Timeout:      5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxTurns <= 0 {
		c.MaxTurns = d.MaxTurns
	}
	if c.MaxToolCalls <= 0 {
		c.MaxToolCalls = d.MaxToolCalls
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	return c
}

// TaskResult is one finished task's output, passed as context to later tasks.
type TaskResult struct {
	Task   string
	Output string
}

// Runner executes single agent tasks against the chat API.
type Runner struct {
	chat ChatService
	cfg  Config
}

func NewRunner(chat ChatService, cfg Config) *Runner {
	return &Runner{chat: chat, cfg: cfg.withDefaults()}
}

// RunTask drives one agent through one task: it sends the task description,
// executes requested tool calls, and returns the final answer. When the task
// declares json_keys, the final answer must be a JSON object carrying them.
func (r *Runner) RunTask(ctx context.Context, def AgentDef, taskName, description string, prior []TaskResult, tools []Tool, jsonKeys []string) (TaskResult, error) {
	runID := uuid.New().String()
	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(def, jsonKeys)},
		{Role: openai.ChatMessageRoleUser, Content: userPrompt(description, prior)},
	}

	oaTools := make([]openai.Tool, len(tools))
	byName := make(map[string]Tool, len(tools))
	for i, t := range tools {
		oaTools[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		}
		byName[t.Name()] = t
	}

	slog.Info("agent: task starting", "run", runID, "task", taskName, "role", def.Role, "tools", len(tools))

	toolCalls := 0
	for turn := 1; turn <= r.cfg.MaxTurns; turn++ {
		req := openai.ChatCompletionRequest{Messages: messages}
		if len(oaTools) > 0 {
			req.Tools = oaTools
		}
		if len(jsonKeys) > 0 {
			req.ResponseFormat = &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			}
		}

		resp, err := r.chat.ChatCompletion(ctx, req)
		if err != nil {
			return TaskResult{}, fmt.Errorf("agent: task %s turn %d: %w", taskName, turn, err)
		}
		if len(resp.Choices) == 0 {
			return TaskResult{}, fmt.Errorf("agent: task %s turn %d: no choices in response", taskName, turn)
		}
		msg := resp.Choices[0].Message

		if len(msg.ToolCalls) == 0 {
			out := strings.TrimSpace(msg.Content)
			if len(jsonKeys) > 0 {
				if err := checkJSONKeys(out, jsonKeys); err != nil {
					return TaskResult{}, fmt.Errorf("agent: task %s: %w", taskName, err)
				}
			}
			slog.Info("agent: task complete",
				"run", runID, "task", taskName,
				"turns", turn, "tool_calls", toolCalls,
				"duration", time.Since(started).Round(time.Millisecond))
			return TaskResult{Task: taskName, Output: out}, nil
		}

		messages = append(messages, msg)
		for _, tc := range msg.ToolCalls {
			toolCalls++
			if toolCalls > r.cfg.MaxToolCalls {
				return TaskResult{}, fmt.Errorf("agent: task %s exceeded maximum tool calls (%d)", taskName, r.cfg.MaxToolCalls)
			}
			content := r.callTool(ctx, byName, tc, runID, taskName)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    content,
				ToolCallID: tc.ID,
			})
		}
	}
	return TaskResult{}, fmt.Errorf("agent: task %s did not complete within %d turns", taskName, r.cfg.MaxTurns)
}

// callTool executes one requested tool call. Failures are returned as text
// so the agent can read the error and adjust.
func (r *Runner) callTool(ctx context.Context, byName map[string]Tool, tc openai.ToolCall, runID, taskName string) string {
	tool, ok := byName[tc.Function.Name]
	if !ok {
		slog.Warn("agent: unknown tool requested", "run", runID, "task", taskName, "tool", tc.Function.Name)
		return fmt.Sprintf("Tool error: unknown tool %q", tc.Function.Name)
	}
	slog.Debug("agent: tool call", "run", runID, "task", taskName, "tool", tc.Function.Name)
	out, err := tool.Call(ctx, json.RawMessage(tc.Function.Arguments))
	if err != nil {
		slog.Warn("agent: tool call failed", "run", runID, "task", taskName, "tool", tc.Function.Name, "err", err)
		return fmt.Sprintf("Tool error: %v", err)
	}
	return out
}

func systemPrompt(def AgentDef, jsonKeys []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s.\n\nGoal: %s\n\n%s", def.Role, def.Goal, def.Backstory)
	if len(jsonKeys) > 0 {
		fmt.Fprintf(&sb, "\n\nWhen you have the final answer, respond with a single JSON object with exactly these keys: %s.",
			strings.Join(jsonKeys, ", "))
	}
	return sb.String()
}

func userPrompt(description string, prior []TaskResult) string {
	if len(prior) == 0 {
		return description
	}
	var sb strings.Builder
	sb.WriteString(description)
	for _, p := range prior {
		fmt.Fprintf(&sb, "\n\n--- Output of the %s task ---\n%s", p.Task, p.Output)
	}
	return sb.String()
}

func checkJSONKeys(out string, keys []string) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(out), &obj); err != nil {
		return fmt.Errorf("final answer is not a JSON object: %w", err)
	}
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return fmt.Errorf("final answer missing key %q", k)
		}
	}
	return nil
}
