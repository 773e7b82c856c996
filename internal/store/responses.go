package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"newsdesk/internal/model"
)

// SaveResponse stores a raw API payload. A (keyword, date range) pair is
// stored at most once; on repeat the existing row id is returned with
// already=true and the stored bytes stay untouched.
func (s *Store) SaveResponse(ctx context.Context, keyword, dateStart, dateEnd string, rawRequest, rawResponse []byte) (id int64, already bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO responses (keyword, date_start, date_end, raw_request, raw_response)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (keyword, date_start, date_end) DO NOTHING
		RETURNING id`,
		keyword, dateStart, dateEnd, rawRequest, rawResponse,
	).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("save response: %w", err)
	}
	err = s.db.QueryRowContext(ctx, `
		SELECT id FROM responses
		WHERE keyword = $1 AND date_start = $2 AND date_end = $3`,
		keyword, dateStart, dateEnd,
	).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("lookup response: %w", err)
	}
	return id, true, nil
}

// ResponseID returns the id of a stored (keyword, date range) pair, with
// ok=false when the pair was never fetched.
func (s *Store) ResponseID(ctx context.Context, keyword, dateStart, dateEnd string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM responses
		WHERE keyword = $1 AND date_start = $2 AND date_end = $3`,
		keyword, dateStart, dateEnd,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// ResponseByID loads one stored response including its raw bytes.
func (s *Store) ResponseByID(ctx context.Context, id int64) (model.Response, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, keyword, date_start, date_end, raw_request, raw_response, fetched_at
		FROM responses WHERE id = $1`, id)
	return scanResponse(row)
}

// Responses lists all stored responses, oldest first, raw bytes included.
func (s *Store) Responses(ctx context.Context) ([]model.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, keyword, date_start, date_end, raw_request, raw_response, fetched_at
		FROM responses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Response
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResponse(row rowScanner) (model.Response, error) {
	var r model.Response
	var ds, de time.Time
	err := row.Scan(&r.ID, &r.Keyword, &ds, &de, &r.RawRequest, &r.Raw, &r.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Response{}, ErrNotFound
	}
	if err != nil {
		return model.Response{}, err
	}
	r.DateStart = ds.Format("2006-01-02")
	r.DateEnd = de.Format("2006-01-02")
	return r, nil
}
