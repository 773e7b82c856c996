package newsapi

import (
	"encoding/json"
	"fmt"

	"newsdesk/internal/model"
)

type envelope struct {
	Articles struct {
		Results      []wireArticle `json:"results"`
		TotalResults int           `json:"totalResults"`
		Page         int           `json:"page"`
		Pages        int           `json:"pages"`
	} `json:"articles"`
	Error string `json:"error"`
}

type wireArticle struct {
	URI      string `json:"uri"`
	Lang     string `json:"lang"`
	Date     string `json:"date"`
	DataType string `json:"dataType"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Source   struct {
		URI string `json:"uri"`
	} `json:"source"`
	Sentiment *float64 `json:"sentiment"`
}

// ParseArticles extracts articles from a stored raw response. An empty
// results list is a valid response and yields an empty slice. Entries
// without a provider URI are dropped since nothing downstream can key them.
func ParseArticles(raw []byte) ([]model.Article, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("newsapi: parse response: %w", err)
	}
	if env.Error != "" {
		return nil, fmt.Errorf("newsapi: response carries error: %s", env.Error)
	}
	out := make([]model.Article, 0, len(env.Articles.Results))
	for _, w := range env.Articles.Results {
		if w.URI == "" {
			continue
		}
		out = append(out, model.Article{
			URI:         w.URI,
			URL:         w.URL,
			Title:       w.Title,
			Body:        w.Body,
			Lang:        w.Lang,
			PublishedOn: w.Date,
			DataType:    w.DataType,
			Sentiment:   w.Sentiment,
			SourceURI:   w.Source.URI,
		})
	}
	return out, nil
}
