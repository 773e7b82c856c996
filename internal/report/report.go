// Package report renders the markdown recommendation reports and parses
// them back for inspection.
package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

// Data fills the report template.
type Data struct {
	Title     string
	UserEmail string
	Date      string // YYYY-MM-DD
	Model     string
	Body      string
}

//go:embed report.tmpl
var reportTpl string

var compiled = template.Must(template.New("report").Parse(reportTpl))

// Render produces the full markdown document, frontmatter included.
func Render(d Data) (string, error) {
	var buf bytes.Buffer
	if err := compiled.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Filename builds the timestamped report name for a user. The email's @ is
// replaced so the name stays filesystem-safe.
func Filename(email string, now time.Time) string {
	stamp := now.Format("20060102_150405")
	return fmt.Sprintf("news_recommendations_%s_%s.md", strings.ReplaceAll(email, "@", "_at_"), stamp)
}

// Write renders the report and writes it under dir, creating the directory
// if needed. Filenames carry a timestamp, so earlier reports for the same
// user stay untouched.
func Write(dir string, d Data, now time.Time) (string, error) {
	content, err := Render(d)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, Filename(d.UserEmail, now))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
