package agent

import (
	"strings"
	"testing"
)

func TestLoadDefinitions(t *testing.T) {
	defs, err := LoadDefinitions()
	if err != nil {
		t.Fatalf("LoadDefinitions: %v", err)
	}
	for _, name := range []string{TaskAnalysis, TaskRecommendation, TaskReport} {
		task, ok := defs.Tasks[name]
		if !ok {
			t.Fatalf("missing task %q", name)
		}
		def, ok := defs.Agents[task.Agent]
		if !ok {
			t.Fatalf("task %q references unknown agent %q", name, task.Agent)
		}
		if def.Role == "" || def.Goal == "" || def.Backstory == "" {
			t.Errorf("agent %q incomplete: %+v", task.Agent, def)
		}
		if len(task.JSONKeys) == 0 {
			t.Errorf("task %q has no json_keys", name)
		}
	}

	if got := defs.Agents[defs.Tasks[TaskAnalysis].Agent].Role; got != "Database Analyst" {
		t.Errorf("analysis agent role: %q", got)
	}
	if got := defs.Agents[defs.Tasks[TaskRecommendation].Agent].Role; got != "Article Recommender Specialist" {
		t.Errorf("recommendation agent role: %q", got)
	}
}

func TestRenderDescription(t *testing.T) {
	defs, err := LoadDefinitions()
	if err != nil {
		t.Fatalf("LoadDefinitions: %v", err)
	}

	out, err := defs.Tasks[TaskAnalysis].RenderDescription(map[string]string{
		"UserEmail": "carol@example.com",
		"Schema":    "Table: articles",
	})
	if err != nil {
		t.Fatalf("RenderDescription: %v", err)
	}
	if !strings.Contains(out, "'carol@example.com'") {
		t.Errorf("user not substituted: %q", out)
	}
	if !strings.Contains(out, "Table: articles") {
		t.Errorf("schema not substituted: %q", out)
	}
	if strings.Contains(out, "{{") {
		t.Errorf("unrendered template remains: %q", out)
	}
}

func TestRenderDescriptionMissingVar(t *testing.T) {
	defs, err := LoadDefinitions()
	if err != nil {
		t.Fatalf("LoadDefinitions: %v", err)
	}
	if _, err := defs.Tasks[TaskAnalysis].RenderDescription(map[string]string{"UserEmail": "x@y.z"}); err == nil {
		t.Errorf("missing Schema variable accepted")
	}
}
