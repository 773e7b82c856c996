package store

import (
	"context"
	"fmt"

	"newsdesk/internal/model"
	"newsdesk/internal/vectorindex"
)

// SaveEmbedding persists an article vector. An article is embedded once;
// repeats are ignored so stored vectors never change under an index.
func (s *Store) SaveEmbedding(ctx context.Context, e model.Embedding) error {
	if len(e.Vector) != e.Dims {
		return fmt.Errorf("save embedding: vector has %d dims, want %d", len(e.Vector), e.Dims)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO article_embeddings (article_id, model, dims, vector)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (article_id) DO NOTHING`,
		e.ArticleID, e.Model, e.Dims, vectorindex.EncodeVector(e.Vector))
	return err
}

// EmbeddingsOn loads all embeddings for articles published on a date.
func (s *Store) EmbeddingsOn(ctx context.Context, date string) ([]model.Embedding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.article_id, e.model, e.dims, e.vector
		FROM article_embeddings e
		JOIN articles a ON a.id = e.article_id
		WHERE a.published_on = $1::date
		ORDER BY e.article_id`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Embedding
	for rows.Next() {
		var e model.Embedding
		var blob []byte
		if err := rows.Scan(&e.ArticleID, &e.Model, &e.Dims, &blob); err != nil {
			return nil, err
		}
		vec, err := vectorindex.DecodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("embedding for article %d: %w", e.ArticleID, err)
		}
		if len(vec) != e.Dims {
			return nil, fmt.Errorf("embedding for article %d: stored %d dims, row says %d", e.ArticleID, len(vec), e.Dims)
		}
		e.Vector = vec
		out = append(out, e)
	}
	return out, rows.Err()
}

// MissingEmbeddingsOn lists articles published on a date that have body text
// but no stored embedding yet. Bodyless articles are never embedded.
func (s *Store) MissingEmbeddingsOn(ctx context.Context, date string) ([]model.Article, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+articleCols+` FROM articles
		WHERE published_on = $1::date
		AND COALESCE(body, '') <> ''
		AND NOT EXISTS (SELECT 1 FROM article_embeddings e WHERE e.article_id = articles.id)
		ORDER BY id`, date)
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
