// Package store is the Postgres repository for raw responses, articles,
// users, reading history, and article embeddings.
package store

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Store wraps a Postgres connection.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection for ping-style checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

const schema = `
CREATE TABLE IF NOT EXISTS responses (
	id           BIGSERIAL PRIMARY KEY,
	keyword      TEXT NOT NULL,
	date_start   DATE NOT NULL,
	date_end     DATE NOT NULL,
	raw_request  JSONB NOT NULL,
	raw_response JSONB NOT NULL,
	fetched_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (keyword, date_start, date_end)
);

CREATE TABLE IF NOT EXISTS articles (
	id           BIGSERIAL PRIMARY KEY,
	response_id  BIGINT NOT NULL REFERENCES responses(id) ON DELETE CASCADE,
	uri          TEXT NOT NULL UNIQUE,
	url          TEXT,
	title        TEXT,
	body         TEXT,
	lang         VARCHAR(10),
	published_on DATE,
	data_type    VARCHAR(50),
	sentiment    DOUBLE PRECISION,
	source_uri   VARCHAR(255),
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_articles_published_on ON articles (published_on);
CREATE INDEX IF NOT EXISTS idx_articles_response_id ON articles (response_id);

CREATE TABLE IF NOT EXISTS users (
	id          BIGSERIAL PRIMARY KEY,
	email       VARCHAR(255) NOT NULL UNIQUE,
	preferences TEXT,
	age         INT,
	gender      VARCHAR(6) CHECK (gender IN ('male', 'female', 'other')),
	location    VARCHAR(255),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reading_history (
	id         BIGSERIAL PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	article_id BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
	read_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (user_id, article_id)
);
CREATE INDEX IF NOT EXISTS idx_reading_history_user_id ON reading_history (user_id);

CREATE TABLE IF NOT EXISTS article_embeddings (
	article_id BIGINT PRIMARY KEY REFERENCES articles(id) ON DELETE CASCADE,
	model      TEXT NOT NULL,
	dims       INT NOT NULL,
	vector     BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Ensure creates all tables and indexes if they do not exist.
func (s *Store) Ensure(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}
