package report

import (
	"strings"
	"time"
)

// ExpandVars performs simple placeholder substitutions for template strings
// used in config-provided text fields (e.g., the report title).
//
// Supported variables:
// - {.CurrentDate} => formatted as YYYY-MM-DD (UTC)
// - {.UserEmail}   => the report's user
func ExpandVars(s, email string, now time.Time) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	out := strings.ReplaceAll(s, "{.CurrentDate}", now.UTC().Format("2006-01-02"))
	out = strings.ReplaceAll(out, "{.UserEmail}", email)
	return out
}
