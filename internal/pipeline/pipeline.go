// Package pipeline runs the ingestion stages in order: fetch raw responses,
// extract articles, embed and index them, seed demo users. Stages run
// strictly sequentially; the first error aborts the run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsdesk/internal/ai"
	"newsdesk/internal/model"
	"newsdesk/internal/newsapi"
	"newsdesk/internal/vectorindex"
)

// Store is the persistence surface the pipeline drives.
type Store interface {
	Ensure(ctx context.Context) error
	SaveResponse(ctx context.Context, keyword, dateStart, dateEnd string, rawRequest, rawResponse []byte) (int64, bool, error)
	ResponseID(ctx context.Context, keyword, dateStart, dateEnd string) (int64, bool, error)
	ResponseByID(ctx context.Context, id int64) (model.Response, error)
	Responses(ctx context.Context) ([]model.Response, error)
	InsertArticles(ctx context.Context, responseID int64, arts []model.Article) (int, error)
	MissingEmbeddingsOn(ctx context.Context, date string) ([]model.Article, error)
	EmbeddingsOn(ctx context.Context, date string) ([]model.Embedding, error)
	SaveEmbedding(ctx context.Context, e model.Embedding) error
	CreateUser(ctx context.Context, u model.User) (int64, bool, error)
	UserByEmail(ctx context.Context, email string) (model.User, error)
	RandomArticleIDs(ctx context.Context, n int) ([]int64, error)
	AddReading(ctx context.Context, userID, articleID int64) error
}

// Marks is the Redis fast path for fetch idempotence.
type Marks interface {
	IsFetched(ctx context.Context, keyword, dateStart, dateEnd string) (int64, bool, error)
	MarkFetched(ctx context.Context, keyword, dateStart, dateEnd string, responseID int64) error
}

// News fetches raw article search responses.
type News interface {
	GetArticles(ctx context.Context, req newsapi.SearchRequest) (raw, rawRequest []byte, err error)
}

// Runner wires the stages together.
type Runner struct {
	Store     Store
	Marks     Marks
	News      News
	Embedder  ai.Embedder
	VectorDir string
}

// Params selects what one run fetches. Each keyword is searched once per
// date, with the date as both start and end of the search window.
type Params struct {
	Keywords []string
	Dates    []string // YYYY-MM-DD
	Count    int
	SortBy   string
}

func (p Params) validate() error {
	if len(p.Keywords) == 0 {
		return fmt.Errorf("pipeline: no keywords")
	}
	if len(p.Dates) == 0 {
		return fmt.Errorf("pipeline: no dates")
	}
	for _, d := range p.Dates {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("pipeline: bad date %q: %w", d, err)
		}
	}
	return nil
}

// Fetch pulls one response per (date, keyword) pair and stores it raw.
// Pairs already stored are skipped, so re-running a window is free. The ids
// of all touched responses, new and existing, are returned in fetch order.
func (r *Runner) Fetch(ctx context.Context, p Params) ([]int64, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	var ids []int64
	for _, date := range p.Dates {
		for _, kw := range p.Keywords {
			id, err := r.fetchOne(ctx, kw, date, p)
			if err != nil {
				return nil, fmt.Errorf("fetch %q on %s: %w", kw, date, err)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *Runner) fetchOne(ctx context.Context, keyword, date string, p Params) (int64, error) {
	if r.Marks != nil {
		if id, ok, err := r.Marks.IsFetched(ctx, keyword, date, date); err != nil {
			slog.Warn("pipeline: fetch mark read failed", "err", err)
		} else if ok {
			slog.Info("pipeline: already fetched (mark)", "keyword", keyword, "date", date, "response", id)
			return id, nil
		}
	}
	if id, ok, err := r.Store.ResponseID(ctx, keyword, date, date); err != nil {
		return 0, err
	} else if ok {
		if r.Marks != nil {
			if err := r.Marks.MarkFetched(ctx, keyword, date, date, id); err != nil {
				slog.Warn("pipeline: fetch mark write failed", "err", err)
			}
		}
		slog.Info("pipeline: already fetched (db)", "keyword", keyword, "date", date, "response", id)
		return id, nil
	}

	raw, rawReq, err := r.News.GetArticles(ctx, newsapi.SearchRequest{
		Keyword:   keyword,
		Count:     p.Count,
		SortBy:    p.SortBy,
		DateStart: date,
		DateEnd:   date,
	})
	if err != nil {
		return 0, err
	}
	id, already, err := r.Store.SaveResponse(ctx, keyword, date, date, rawReq, raw)
	if err != nil {
		return 0, err
	}
	if r.Marks != nil {
		if err := r.Marks.MarkFetched(ctx, keyword, date, date, id); err != nil {
			slog.Warn("pipeline: fetch mark write failed", "err", err)
		}
	}
	slog.Info("pipeline: fetched", "keyword", keyword, "date", date, "response", id, "already", already)
	return id, nil
}

// ProcessResponse extracts articles from one stored response. Articles seen
// before (same provider URI) are skipped; the count of new rows is returned.
func (r *Runner) ProcessResponse(ctx context.Context, id int64) (int, error) {
	resp, err := r.Store.ResponseByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("process response %d: %w", id, err)
	}
	arts, err := newsapi.ParseArticles(resp.Raw)
	if err != nil {
		return 0, fmt.Errorf("process response %d: %w", id, err)
	}
	n, err := r.Store.InsertArticles(ctx, id, arts)
	if err != nil {
		return 0, fmt.Errorf("process response %d: %w", id, err)
	}
	slog.Info("pipeline: processed response", "response", id, "articles", len(arts), "inserted", n)
	return n, nil
}

// ProcessAll extracts articles from every stored response.
func (r *Runner) ProcessAll(ctx context.Context) (int, error) {
	resps, err := r.Store.Responses(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, resp := range resps {
		n, err := r.ProcessResponse(ctx, resp.ID)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// IndexDate embeds articles for one date that still lack vectors, then
// rebuilds the date's index file from all stored embeddings. Returns the
// number of indexed articles; zero with no error means nothing to index.
func (r *Runner) IndexDate(ctx context.Context, date string) (int, error) {
	missing, err := r.Store.MissingEmbeddingsOn(ctx, date)
	if err != nil {
		return 0, err
	}
	if len(missing) > 0 {
		texts := make([]string, len(missing))
		for i, a := range missing {
			texts[i] = a.Body
		}
		vecs, err := r.Embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("index %s: embed: %w", date, err)
		}
		for i, a := range missing {
			err := r.Store.SaveEmbedding(ctx, model.Embedding{
				ArticleID: a.ID,
				Model:     r.Embedder.EmbeddingModel(),
				Dims:      r.Embedder.Dimension(),
				Vector:    vecs[i],
			})
			if err != nil {
				return 0, fmt.Errorf("index %s: save embedding for article %d: %w", date, a.ID, err)
			}
		}
		slog.Info("pipeline: embedded articles", "date", date, "count", len(missing))
	}

	embs, err := r.Store.EmbeddingsOn(ctx, date)
	if err != nil {
		return 0, err
	}
	if len(embs) == 0 {
		slog.Info("pipeline: no articles to index", "date", date)
		return 0, nil
	}
	idx, err := vectorindex.New(r.Embedder.Dimension())
	if err != nil {
		return 0, err
	}
	for _, e := range embs {
		if err := idx.Add(e.ArticleID, e.Vector); err != nil {
			return 0, fmt.Errorf("index %s: article %d: %w", date, e.ArticleID, err)
		}
	}
	path := vectorindex.PathFor(r.VectorDir, date)
	if err := idx.Save(path); err != nil {
		return 0, fmt.Errorf("index %s: save: %w", date, err)
	}
	slog.Info("pipeline: index written", "date", date, "articles", idx.Len(), "path", path)
	return idx.Len(), nil
}

// Run executes the whole pipeline: migrate, fetch, process, index each date,
// seed demo users.
func (r *Runner) Run(ctx context.Context, p Params) error {
	slog.Info("pipeline: starting", "keywords", p.Keywords, "dates", p.Dates, "count", p.Count)

	if err := r.Store.Ensure(ctx); err != nil {
		return fmt.Errorf("pipeline: migrate: %w", err)
	}
	ids, err := r.Fetch(ctx, p)
	if err != nil {
		return err
	}
	slog.Info("pipeline: fetch done", "responses", len(ids))

	total := 0
	for _, id := range ids {
		n, err := r.ProcessResponse(ctx, id)
		if err != nil {
			return err
		}
		total += n
	}
	slog.Info("pipeline: process done", "inserted", total)

	for _, date := range p.Dates {
		if _, err := r.IndexDate(ctx, date); err != nil {
			return err
		}
	}

	if err := r.SeedUsers(ctx); err != nil {
		return err
	}
	slog.Info("pipeline: complete")
	return nil
}
