package sqlguard

import (
	"errors"
	"testing"
)

func TestValidateAllowsSelect(t *testing.T) {
	cases := []string{
		"SELECT * FROM articles",
		"select id, title from articles where published_on = '2025-06-20'",
		"  SELECT count(*) FROM users;  ",
		"SELECT a.title FROM articles a JOIN reading_history rh ON rh.article_id = a.id",
	}
	for _, q := range cases {
		got, err := Validate(q)
		if err != nil {
			t.Errorf("Validate(%q) unexpected error: %v", q, err)
			continue
		}
		if got == "" {
			t.Errorf("Validate(%q) returned empty query", q)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		q    string
		want error
	}{
		{"", ErrEmpty},
		{"   ", ErrEmpty},
		{";", ErrEmpty},
		{"DROP TABLE articles", ErrNotSelect},
		{"DELETE FROM users", ErrNotSelect},
		{"UPDATE articles SET title = 'x'", ErrNotSelect},
		{"INSERT INTO users (email) VALUES ('a@b.c')", ErrNotSelect},
		{"TRUNCATE reading_history", ErrNotSelect},
		{"SELECT 1; DROP TABLE articles", ErrMultiStatement},
		{"SELECT 1 -- comment", ErrComment},
		{"SELECT /* hidden */ 1", ErrComment},
	}
	for _, tc := range cases {
		_, err := Validate(tc.q)
		if !errors.Is(err, tc.want) {
			t.Errorf("Validate(%q): got %v, want %v", tc.q, err, tc.want)
		}
	}
}

func TestValidateTrimsTrailingSemicolon(t *testing.T) {
	got, err := Validate("SELECT id FROM articles;")
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if got != "SELECT id FROM articles" {
		t.Errorf("got %q", got)
	}
}
