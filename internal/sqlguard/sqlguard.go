// Package sqlguard validates SQL issued by agent tools before it reaches
// Postgres. Agents get read access only.
package sqlguard

import (
	"errors"
	"strings"
)

var (
	ErrEmpty          = errors.New("sqlguard: empty query")
	ErrNotSelect      = errors.New("sqlguard: only SELECT queries are allowed")
	ErrMultiStatement = errors.New("sqlguard: multiple statements are not allowed")
	ErrComment        = errors.New("sqlguard: comments are not allowed")
)

// Validate checks that q is a single SELECT statement and returns it trimmed.
// Comments and statement separators are rejected outright rather than
// stripped, so nothing can ride along with a legitimate query.
func Validate(q string) (string, error) {
	s := strings.TrimSpace(q)
	if s == "" {
		return "", ErrEmpty
	}
	if strings.Contains(s, "--") || strings.Contains(s, "/*") || strings.Contains(s, "*/") {
		return "", ErrComment
	}
	// A single trailing semicolon is tolerated.
	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	if s == "" {
		return "", ErrEmpty
	}
	if strings.Contains(s, ";") {
		return "", ErrMultiStatement
	}
	first := strings.ToLower(firstWord(s))
	if first != "select" {
		return "", ErrNotSelect
	}
	return s, nil
}

func firstWord(s string) string {
	for i, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '(' {
			return s[:i]
		}
	}
	return s
}
