package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Document is a parsed report file: known frontmatter fields lifted out,
// the raw frontmatter map kept for anything else, and the markdown body.
type Document struct {
	Title       string
	UserEmail   string
	Date        string
	Model       string
	Frontmatter map[string]any
	Body        string
}

// ParseFile reads a report and splits YAML frontmatter from the body.
// Frontmatter sits at the top of the file between two lines containing only
// "---"; files without it parse as body-only documents.
func ParseFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()
	return parse(bufio.NewReader(f))
}

func parse(br *bufio.Reader) (Document, error) {
	peek, err := br.Peek(3)
	if err != nil && !errors.Is(err, io.EOF) {
		return Document{}, err
	}
	hasFM := string(peek) == "---"

	var fmBuf, bodyBuf strings.Builder
	if hasFM {
		// Consume the opening '---' line fully.
		if _, err := br.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
			return Document{}, err
		}
		for {
			l, err := br.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return Document{}, err
			}
			if strings.TrimSpace(l) == "---" {
				break
			}
			fmBuf.WriteString(l)
			if errors.Is(err, io.EOF) {
				break
			}
		}
	}
	for {
		l, err := br.ReadString('\n')
		bodyBuf.WriteString(l)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Document{}, err
		}
	}

	d := Document{Frontmatter: map[string]any{}, Body: bodyBuf.String()}
	if hasFM {
		if err := yaml.Unmarshal([]byte(fmBuf.String()), &d.Frontmatter); err != nil {
			return Document{}, fmt.Errorf("report: parse frontmatter: %w", err)
		}
		d.Title = stringField(d.Frontmatter, "title")
		d.UserEmail = stringField(d.Frontmatter, "user")
		d.Date = stringField(d.Frontmatter, "date")
		d.Model = stringField(d.Frontmatter, "model")
	}
	return d, nil
}

// stringField tolerates the YAML resolver turning bare dates into
// time.Time values.
func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", v)
	}
}
