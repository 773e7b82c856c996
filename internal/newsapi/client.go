// Package newsapi is a client for the NewsAPI.ai (Event Registry) article
// search endpoint.
package newsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"newsdesk/internal/config"

	"golang.org/x/time/rate"
)

var (
	ErrInvalidRequest = errors.New("newsapi: invalid request")
	ErrUnauthorized   = errors.New("newsapi: invalid or missing API key")
	ErrRateLimited    = errors.New("newsapi: rate limited")
)

var validSortBy = map[string]bool{
	"date":             true,
	"rel":              true,
	"sourceImportance": true,
	"socialScore":      true,
}

// defaultSourceLocations restricts results to English-language markets.
var defaultSourceLocations = []string{
	"http://en.wikipedia.org/wiki/United_States",
	"http://en.wikipedia.org/wiki/United_Kingdom",
	"http://en.wikipedia.org/wiki/Canada",
}

const ignoreSourceGroup = "paywall/paywalled_sources"

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// New creates a client from configuration. The limiter spreads calls across
// the provider's hourly quota.
func New(cfg config.NewsAPIConfig) *Client {
	timeout := 30 * time.Second
	if d, err := time.ParseDuration(cfg.Timeout); err == nil && d > 0 {
		timeout = d
	}
	rph := cfg.RequestsPerHour
	if rph <= 0 {
		rph = 100
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(time.Hour/time.Duration(rph)), burst),
	}
}

// SearchRequest describes one article search.
type SearchRequest struct {
	Keyword   string
	Page      int
	Count     int
	SortBy    string
	SortByAsc bool
	DateStart string // YYYY-MM-DD, optional
	DateEnd   string // YYYY-MM-DD, optional
}

// Validate applies defaults and checks the request against provider limits.
func (r *SearchRequest) Validate() error {
	if r.Keyword == "" {
		return fmt.Errorf("%w: keyword is required", ErrInvalidRequest)
	}
	if r.Page == 0 {
		r.Page = 1
	}
	if r.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidRequest, r.Page)
	}
	if r.Count == 0 {
		r.Count = 100
	}
	if r.Count < 1 || r.Count > 100 {
		return fmt.Errorf("%w: count must be between 1 and 100, got %d", ErrInvalidRequest, r.Count)
	}
	if r.SortBy == "" {
		r.SortBy = "date"
	}
	if !validSortBy[r.SortBy] {
		return fmt.Errorf("%w: sort_by %q (valid: date, rel, sourceImportance, socialScore)", ErrInvalidRequest, r.SortBy)
	}
	return nil
}

// payload is the provider wire format.
type payload struct {
	Action                 string   `json:"action"`
	Keyword                string   `json:"keyword"`
	SourceLocationURI      []string `json:"sourceLocationUri"`
	IgnoreSourceGroupURI   string   `json:"ignoreSourceGroupUri"`
	ArticlesPage           int      `json:"articlesPage"`
	ArticlesCount          int      `json:"articlesCount"`
	ArticlesSortBy         string   `json:"articlesSortBy"`
	ArticlesSortByAsc      bool     `json:"articlesSortByAsc"`
	DataType               []string `json:"dataType"`
	ForceMaxDataTimeWindow int      `json:"forceMaxDataTimeWindow"`
	ResultType             string   `json:"resultType"`
	DateStart              string   `json:"dateStart,omitempty"`
	DateEnd                string   `json:"dateEnd,omitempty"`
	APIKey                 string   `json:"apiKey,omitempty"`
}

func (r SearchRequest) payload() payload {
	return payload{
		Action:                 "getArticles",
		Keyword:                r.Keyword,
		SourceLocationURI:      defaultSourceLocations,
		IgnoreSourceGroupURI:   ignoreSourceGroup,
		ArticlesPage:           r.Page,
		ArticlesCount:          r.Count,
		ArticlesSortBy:         r.SortBy,
		ArticlesSortByAsc:      r.SortByAsc,
		DataType:               []string{"news", "pr"},
		ForceMaxDataTimeWindow: 31,
		ResultType:             "articles",
		DateStart:              r.DateStart,
		DateEnd:                r.DateEnd,
	}
}

// GetArticles runs one search and returns the raw response bytes exactly as
// received, plus the request payload with the API key stripped so it can be
// stored alongside.
func (c *Client) GetArticles(ctx context.Context, req SearchRequest) (raw, rawRequest []byte, err error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	p := req.payload()
	rawRequest, err = json.Marshal(p)
	if err != nil {
		return nil, nil, err
	}
	p.APIKey = c.apiKey
	body, err := json.Marshal(p)
	if err != nil {
		return nil, nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	endpoint := c.baseURL + "/article/getArticles"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidRequest, trimForError(raw))
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, nil, ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, nil, fmt.Errorf("newsapi: status %d: %s", resp.StatusCode, trimForError(raw))
	}
	// The provider reports some failures inside a 200 body.
	var reply struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &reply); err == nil && reply.Error != "" {
		return nil, nil, fmt.Errorf("newsapi: %s", reply.Error)
	}
	return raw, rawRequest, nil
}

func trimForError(b []byte) string {
	s := string(bytes.TrimSpace(b))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
