package store

import (
	"context"
	"fmt"
	"strings"

	"newsdesk/internal/sqlguard"
)

// SchemaDescription renders the newsdesk tables as plain text suitable for a
// prompt, one block per table with column name, type, and nullability.
func (s *Store) SchemaDescription(ctx context.Context) (string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name, column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public'
		AND table_name IN ('responses', 'articles', 'users', 'reading_history', 'article_embeddings')
		ORDER BY table_name, ordinal_position`)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var b strings.Builder
	current := ""
	for rows.Next() {
		var table, column, dataType, nullable string
		if err := rows.Scan(&table, &column, &dataType, &nullable); err != nil {
			return "", err
		}
		if table != current {
			if current != "" {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "Table: %s\n", table)
			current = table
		}
		null := "NULL"
		if nullable == "NO" {
			null = "NOT NULL"
		}
		fmt.Fprintf(&b, "  %s %s %s\n", column, dataType, null)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("schema description: no tables found, run migrate first")
	}
	return b.String(), nil
}

// Select runs a read-only query on behalf of an agent tool. Anything that is
// not a single SELECT statement is rejected before touching the database.
// Values are stringified; NULL becomes the literal "NULL".
func (s *Store) Select(ctx context.Context, query string) (cols []string, rowsOut [][]string, err error) {
	q, err := sqlguard.Validate(query)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err = rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		rec := make([]string, len(cols))
		for i, v := range vals {
			rec[i] = stringifyValue(v)
		}
		rowsOut = append(rowsOut, rec)
	}
	return cols, rowsOut, rows.Err()
}

func stringifyValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
