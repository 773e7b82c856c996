package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"newsdesk/internal/model"

	"github.com/lib/pq"
)

// InsertArticles stores extracted articles for a response. Articles are
// deduplicated across all responses by provider URI; the number of newly
// inserted rows is returned.
func (s *Store) InsertArticles(ctx context.Context, responseID int64, arts []model.Article) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO articles (response_id, uri, url, title, body, lang, published_on, data_type, sentiment, source_uri)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::date, $8, $9, $10)
		ON CONFLICT (uri) DO NOTHING`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, a := range arts {
		if a.URI == "" {
			continue
		}
		res, err := stmt.ExecContext(ctx, responseID, a.URI, a.URL, a.Title, a.Body,
			a.Lang, a.PublishedOn, a.DataType, a.Sentiment, a.SourceURI)
		if err != nil {
			return 0, fmt.Errorf("insert article %s: %w", a.URI, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

const articleCols = `id, response_id, uri, COALESCE(url, ''), COALESCE(title, ''), COALESCE(body, ''),
	COALESCE(lang, ''), published_on, COALESCE(data_type, ''), sentiment, COALESCE(source_uri, ''), created_at`

// ArticleByID loads a single article.
func (s *Store) ArticleByID(ctx context.Context, id int64) (model.Article, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+articleCols+` FROM articles WHERE id = $1`, id)
	return scanArticle(row)
}

// ArticlesByIDs loads articles for the given ids, preserving input order.
func (s *Store) ArticlesByIDs(ctx context.Context, ids []int64) ([]model.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+articleCols+` FROM articles WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	byID := make(map[int64]model.Article, len(ids))
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		byID[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]model.Article, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// ArticlesOn lists articles published on a date (YYYY-MM-DD).
func (s *Store) ArticlesOn(ctx context.Context, date string) ([]model.Article, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+articleCols+` FROM articles WHERE published_on = $1::date ORDER BY id`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// RandomArticleIDs picks up to n distinct random article ids.
func (s *Store) RandomArticleIDs(ctx context.Context, n int) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM articles ORDER BY random() LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanArticle(row rowScanner) (model.Article, error) {
	var a model.Article
	var published sql.NullTime
	var sentiment sql.NullFloat64
	err := row.Scan(&a.ID, &a.ResponseID, &a.URI, &a.URL, &a.Title, &a.Body,
		&a.Lang, &published, &a.DataType, &sentiment, &a.SourceURI, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Article{}, ErrNotFound
	}
	if err != nil {
		return model.Article{}, err
	}
	if published.Valid {
		a.PublishedOn = published.Time.Format("2006-01-02")
	}
	if sentiment.Valid {
		v := sentiment.Float64
		a.Sentiment = &v
	}
	return a, nil
}
