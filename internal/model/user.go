package model

import "time"

// User is a reader profile used to personalize recommendations.
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Preferences string    `json:"preferences"`
	Age         int       `json:"age"`
	Gender      string    `json:"gender"` // male, female, other
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReadingRecord links a user to an article they have read.
type ReadingRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ArticleID int64     `json:"article_id"`
	ReadAt    time.Time `json:"read_at"`
	// Joined article fields, populated by history queries.
	Title       string `json:"title,omitempty"`
	URL         string `json:"url,omitempty"`
	PublishedOn string `json:"published_on,omitempty"`
}

// Embedding is a stored article vector.
type Embedding struct {
	ArticleID int64     `json:"article_id"`
	Model     string    `json:"model"`
	Dims      int       `json:"dims"`
	Vector    []float32 `json:"vector"`
}
