package model

import "time"

// Response is one stored NewsAPI payload, kept byte-for-byte as received.
// A (keyword, date range) pair is fetched at most once.
type Response struct {
	ID         int64     `json:"id"`
	Keyword    string    `json:"keyword"`
	DateStart  string    `json:"date_start"` // YYYY-MM-DD
	DateEnd    string    `json:"date_end"`   // YYYY-MM-DD
	RawRequest []byte    `json:"raw_request"`
	Raw        []byte    `json:"raw_response"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// Article is a single news article extracted from a stored response.
type Article struct {
	ID          int64     `json:"id"`
	ResponseID  int64     `json:"response_id"`
	URI         string    `json:"uri"` // provider ID, unique across responses
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Lang        string    `json:"lang"`
	PublishedOn string    `json:"published_on"` // YYYY-MM-DD
	DataType    string    `json:"data_type"`
	Sentiment   *float64  `json:"sentiment,omitempty"`
	SourceURI   string    `json:"source_uri"`
	CreatedAt   time.Time `json:"created_at"`
}
