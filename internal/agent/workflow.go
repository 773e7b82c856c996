package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"newsdesk/internal/ai"
	"newsdesk/internal/report"
)

// Workflow wires the agents to their tools and runs the task chain:
// analysis, then recommendation with the analysis as context, then the
// report with both. The finished report is written to ReportsDir.
type Workflow struct {
	Runner     *Runner
	Defs       Definitions
	DB         DBCaller
	Embedder   ai.Embedder
	Articles   ArticleLookup
	Search     Searcher // optional; web_search is dropped when nil
	VectorDir  string
	TopK       int
	SearchNum  int
	Model      string
	ReportsDir string
	Title      string           // fallback title template, see report.ExpandVars
	Now        func() time.Time // defaults to time.Now
}

// ReportOutput is the report task's structured answer.
type ReportOutput struct {
	ReportTitle    string `json:"report_title"`
	MarkdownReport string `json:"markdown_report"`
}

// Recommend runs the full workflow for one user against one date's article
// index and writes the markdown report. Returns the written report's path.
func (w *Workflow) Recommend(ctx context.Context, userEmail, date string) (string, error) {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}

	// The analyst gets the live schema in its prompt, same as its tools see.
	schema, err := w.DB.CallText(ctx, "describe_schema", nil)
	if err != nil {
		return "", fmt.Errorf("agent: fetch schema: %w", err)
	}

	analysisDesc, err := w.Defs.Tasks[TaskAnalysis].RenderDescription(map[string]string{
		"UserEmail": userEmail,
		"Schema":    schema,
	})
	if err != nil {
		return "", err
	}
	analysis, err := w.runTask(ctx, TaskAnalysis, analysisDesc, nil, date)
	if err != nil {
		return "", err
	}

	recDesc, err := w.Defs.Tasks[TaskRecommendation].RenderDescription(nil)
	if err != nil {
		return "", err
	}
	recommendation, err := w.runTask(ctx, TaskRecommendation, recDesc, []TaskResult{analysis}, date)
	if err != nil {
		return "", err
	}

	reportDesc, err := w.Defs.Tasks[TaskReport].RenderDescription(map[string]string{
		"UserEmail":   userEmail,
		"CurrentDate": date,
	})
	if err != nil {
		return "", err
	}
	reportRes, err := w.runTask(ctx, TaskReport, reportDesc, []TaskResult{analysis, recommendation}, date)
	if err != nil {
		return "", err
	}

	var out ReportOutput
	if err := json.Unmarshal([]byte(reportRes.Output), &out); err != nil {
		return "", fmt.Errorf("agent: parse report output: %w", err)
	}
	if out.MarkdownReport == "" {
		return "", fmt.Errorf("agent: report task returned an empty markdown_report")
	}
	title := out.ReportTitle
	if title == "" {
		title = report.ExpandVars(w.Title, userEmail, now())
	}

	path, err := report.Write(w.ReportsDir, report.Data{
		Title:     title,
		UserEmail: userEmail,
		Date:      date,
		Model:     w.Model,
		Body:      out.MarkdownReport,
	}, now())
	if err != nil {
		return "", fmt.Errorf("agent: write report: %w", err)
	}
	slog.Info("agent: report written", "user", userEmail, "date", date, "path", path)
	return path, nil
}

func (w *Workflow) runTask(ctx context.Context, name, description string, prior []TaskResult, date string) (TaskResult, error) {
	task := w.Defs.Tasks[name]
	def := w.Defs.Agents[task.Agent]
	tools, err := w.toolsFor(def, date)
	if err != nil {
		return TaskResult{}, err
	}
	return w.Runner.RunTask(ctx, def, name, description, prior, tools, task.JSONKeys)
}

// toolsFor builds the tool set an agent's definition names.
func (w *Workflow) toolsFor(def AgentDef, date string) ([]Tool, error) {
	var out []Tool
	for _, name := range def.Tools {
		switch name {
		case "query_database":
			out = append(out, NewQueryDatabaseTool(w.DB))
		case "describe_schema":
			out = append(out, NewDescribeSchemaTool(w.DB))
		case "vector_search":
			out = append(out, NewVectorSearchTool(w.Embedder, w.Articles, w.VectorDir, date, w.TopK))
		case "web_search":
			if w.Search == nil {
				slog.Warn("agent: web search not configured, tool disabled")
				continue
			}
			out = append(out, NewWebSearchTool(w.Search, w.SearchNum))
		default:
			return nil, fmt.Errorf("agent: unknown tool %q in definitions", name)
		}
	}
	return out, nil
}
