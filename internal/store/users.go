package store

import (
	"context"
	"database/sql"
	"errors"

	"newsdesk/internal/model"
)

// CreateUser inserts a user profile. Emails are unique; re-seeding an
// existing email returns the existing row id with already=true.
func (s *Store) CreateUser(ctx context.Context, u model.User) (id int64, already bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, preferences, age, gender, location)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
		RETURNING id`,
		u.Email, u.Preferences, u.Age, u.Gender, u.Location,
	).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE email = $1`, u.Email).Scan(&id)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// UserByEmail loads a user profile.
func (s *Store) UserByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, COALESCE(preferences, ''), COALESCE(age, 0), COALESCE(gender, ''), COALESCE(location, ''), created_at
		FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.Preferences, &u.Age, &u.Gender, &u.Location, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Users lists all user profiles.
func (s *Store) Users(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, COALESCE(preferences, ''), COALESCE(age, 0), COALESCE(gender, ''), COALESCE(location, ''), created_at
		FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Preferences, &u.Age, &u.Gender, &u.Location, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// AddReading records that a user read an article. Repeats are ignored.
func (s *Store) AddReading(ctx context.Context, userID, articleID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reading_history (user_id, article_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, article_id) DO NOTHING`,
		userID, articleID)
	return err
}

// ReadingHistory lists a user's most recent reads joined with article info.
func (s *Store) ReadingHistory(ctx context.Context, userID int64, limit int) ([]model.ReadingRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rh.id, rh.user_id, rh.article_id, rh.read_at,
			COALESCE(a.title, ''), COALESCE(a.url, ''), COALESCE(a.published_on::text, '')
		FROM reading_history rh
		JOIN articles a ON a.id = rh.article_id
		WHERE rh.user_id = $1
		ORDER BY rh.read_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ReadingRecord
	for rows.Next() {
		var r model.ReadingRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.ArticleID, &r.ReadAt, &r.Title, &r.URL, &r.PublishedOn); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
