package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"newsdesk/internal/config"
)

func testConfig(baseURL string) config.NewsAPIConfig {
	return config.NewsAPIConfig{
		APIKey:          "test-key",
		BaseURL:         baseURL,
		RequestsPerHour: 1000000, // effectively no throttling in tests
		Burst:           100,
		Timeout:         "5s",
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		req     SearchRequest
		wantErr bool
	}{
		{"defaults applied", SearchRequest{Keyword: "Technology"}, false},
		{"missing keyword", SearchRequest{}, true},
		{"count too high", SearchRequest{Keyword: "x", Count: 101}, true},
		{"count negative", SearchRequest{Keyword: "x", Count: -1}, true},
		{"page negative", SearchRequest{Keyword: "x", Page: -2}, true},
		{"bad sort", SearchRequest{Keyword: "x", SortBy: "newest"}, true},
		{"valid sort", SearchRequest{Keyword: "x", SortBy: "socialScore"}, false},
	}
	for _, tc := range cases {
		err := tc.req.Validate()
		if tc.wantErr && err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
	}

	r := SearchRequest{Keyword: "x"}
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if r.Page != 1 || r.Count != 100 || r.SortBy != "date" {
		t.Errorf("defaults: %+v", r)
	}
}

func TestGetArticles(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/article/getArticles" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotPayload); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"articles":{"results":[{"uri":"a-1","url":"https://example.com/1","title":"One","body":"Body one","lang":"eng","date":"2025-06-20","dataType":"news","source":{"uri":"example.com"},"sentiment":0.25}],"totalResults":1}}`)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	raw, rawReq, err := c.GetArticles(context.Background(), SearchRequest{
		Keyword: "Technology", Count: 50, DateStart: "2025-06-20", DateEnd: "2025-06-21",
	})
	if err != nil {
		t.Fatalf("GetArticles: %v", err)
	}

	if gotPayload["action"] != "getArticles" {
		t.Errorf("action: %v", gotPayload["action"])
	}
	if gotPayload["apiKey"] != "test-key" {
		t.Errorf("apiKey missing from wire payload: %v", gotPayload["apiKey"])
	}
	if gotPayload["ignoreSourceGroupUri"] != "paywall/paywalled_sources" {
		t.Errorf("ignoreSourceGroupUri: %v", gotPayload["ignoreSourceGroupUri"])
	}
	if gotPayload["forceMaxDataTimeWindow"] != float64(31) {
		t.Errorf("forceMaxDataTimeWindow: %v", gotPayload["forceMaxDataTimeWindow"])
	}
	if gotPayload["resultType"] != "articles" {
		t.Errorf("resultType: %v", gotPayload["resultType"])
	}

	// The stored request copy must not contain the key.
	var stored map[string]any
	if err := json.Unmarshal(rawReq, &stored); err != nil {
		t.Fatalf("raw request is not JSON: %v", err)
	}
	if _, ok := stored["apiKey"]; ok {
		t.Errorf("apiKey leaked into stored request: %s", rawReq)
	}

	arts, err := ParseArticles(raw)
	if err != nil {
		t.Fatalf("ParseArticles: %v", err)
	}
	if len(arts) != 1 {
		t.Fatalf("got %d articles, want 1", len(arts))
	}
	a := arts[0]
	if a.URI != "a-1" || a.Title != "One" || a.PublishedOn != "2025-06-20" || a.SourceURI != "example.com" {
		t.Errorf("article: %+v", a)
	}
	if a.Sentiment == nil || *a.Sentiment != 0.25 {
		t.Errorf("sentiment: %v", a.Sentiment)
	}
}

func TestGetArticlesStatusErrors(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrInvalidRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			io.WriteString(w, `{"error":"nope"}`)
		}))
		c := New(testConfig(srv.URL))
		_, _, err := c.GetArticles(context.Background(), SearchRequest{Keyword: "x"})
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: got %v, want %v", tc.status, err, tc.want)
		}
		srv.Close()
	}
}

func TestGetArticlesBodyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"error":"daily quota exceeded"}`)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	_, _, err := c.GetArticles(context.Background(), SearchRequest{Keyword: "x"})
	if err == nil {
		t.Fatalf("expected error from 200 body with error field")
	}
}

func TestParseArticlesEmptyResults(t *testing.T) {
	arts, err := ParseArticles([]byte(`{"articles":{"results":[],"totalResults":0}}`))
	if err != nil {
		t.Fatalf("ParseArticles: %v", err)
	}
	if len(arts) != 0 {
		t.Errorf("got %d articles, want 0", len(arts))
	}
}

func TestParseArticlesDropsMissingURI(t *testing.T) {
	raw := []byte(`{"articles":{"results":[{"title":"no uri"},{"uri":"a-2","title":"ok"}]}}`)
	arts, err := ParseArticles(raw)
	if err != nil {
		t.Fatalf("ParseArticles: %v", err)
	}
	if len(arts) != 1 || arts[0].URI != "a-2" {
		t.Errorf("articles: %+v", arts)
	}
}
