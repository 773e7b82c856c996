// Package agent runs the three-stage recommendation workflow: a database
// analyst clusters the user's reading history, a recommender finds matching
// articles through vector search, and a report writer produces the final
// markdown. Agent roles and task prompts are data, embedded as YAML.
package agent

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed defs.yaml
var defsYAML []byte

// Task names in execution order.
const (
	TaskAnalysis       = "analysis"
	TaskRecommendation = "recommendation"
	TaskReport         = "report"
)

// AgentDef describes one agent role.
type AgentDef struct {
	Role      string   `yaml:"role"`
	Goal      string   `yaml:"goal"`
	Backstory string   `yaml:"backstory"`
	Tools     []string `yaml:"tools"`
}

// TaskDef describes one task given to an agent. Description is a
// text/template body; JSONKeys lists the fields the final JSON answer must
// carry.
type TaskDef struct {
	Agent          string   `yaml:"agent"`
	Description    string   `yaml:"description"`
	ExpectedOutput string   `yaml:"expected_output"`
	JSONKeys       []string `yaml:"json_keys"`
}

// Definitions holds all agents and tasks.
type Definitions struct {
	Agents map[string]AgentDef `yaml:"agents"`
	Tasks  map[string]TaskDef  `yaml:"tasks"`
}

// LoadDefinitions parses the embedded definitions and checks that the
// workflow's tasks exist and reference known agents.
func LoadDefinitions() (Definitions, error) {
	var d Definitions
	if err := yaml.Unmarshal(defsYAML, &d); err != nil {
		return Definitions{}, fmt.Errorf("agent: parse definitions: %w", err)
	}
	for _, name := range []string{TaskAnalysis, TaskRecommendation, TaskReport} {
		t, ok := d.Tasks[name]
		if !ok {
			return Definitions{}, fmt.Errorf("agent: missing task %q", name)
		}
		if _, ok := d.Agents[t.Agent]; !ok {
			return Definitions{}, fmt.Errorf("agent: task %q references unknown agent %q", name, t.Agent)
		}
		if t.Description == "" {
			return Definitions{}, fmt.Errorf("agent: task %q has no description", name)
		}
	}
	return d, nil
}

// RenderDescription fills a task description template with the given vars.
func (t TaskDef) RenderDescription(vars map[string]string) (string, error) {
	tpl, err := template.New("task").Option("missingkey=error").Parse(t.Description)
	if err != nil {
		return "", fmt.Errorf("agent: parse task template: %w", err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("agent: render task template: %w", err)
	}
	return buf.String(), nil
}
