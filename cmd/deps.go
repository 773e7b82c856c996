package cmd

import (
	"newsdesk/internal/ai"
	"newsdesk/internal/newsapi"
	"newsdesk/internal/pgclient"
	"newsdesk/internal/pipeline"
	"newsdesk/internal/storage"
	"newsdesk/internal/store"

	"github.com/redis/go-redis/v9"
)

// openStore connects to Postgres. The returned cleanup closes the pool.
func openStore() (*store.Store, func(), error) {
	db, err := pgclient.Open(GetConfig().Database)
	if err != nil {
		return nil, nil, err
	}
	return store.New(db), func() { db.Close() }, nil
}

func newOpenAI() *ai.OpenAIClient {
	cfg := GetConfig().OpenAI
	return ai.NewOpenAI(ai.Config{
		APIKey:             cfg.APIKey,
		Model:              cfg.Model,
		BaseURL:            cfg.BaseURL,
		EmbeddingModel:     cfg.EmbeddingModel,
		EmbeddingDimension: cfg.EmbeddingDimension,
	})
}

// newEmbedder wraps the OpenAI embedder with the Redis cache when rdb is
// available.
func newEmbedder(rdb *redis.Client) ai.Embedder {
	oa := newOpenAI()
	if rdb == nil {
		return oa
	}
	return ai.NewCachedEmbedder(oa, storage.NewRedisStore(rdb))
}

// newPipelineRunner wires the ingestion pipeline from config. rdb may be
// nil; the pipeline then runs without the Redis fetch marks and embedding
// cache, with Postgres as the only source of idempotence.
func newPipelineRunner(st *store.Store, rdb *redis.Client) *pipeline.Runner {
	cfg := GetConfig()
	r := &pipeline.Runner{
		Store:     st,
		News:      newsapi.New(cfg.NewsAPI),
		Embedder:  newEmbedder(rdb),
		VectorDir: cfg.Vector.Dir,
	}
	if rdb != nil {
		r.Marks = storage.NewRedisStore(rdb)
	}
	return r
}

// pipelineParams merges config defaults with command-line overrides.
func pipelineParams(keywords []string, dateStart, dateEnd string, count int, sortBy string) (pipeline.Params, error) {
	pc := GetConfig().Pipeline
	if len(keywords) > 0 {
		pc.Keywords = keywords
	}
	if dateStart != "" {
		pc.DateStart = dateStart
	}
	if dateEnd != "" {
		pc.DateEnd = dateEnd
	}
	if count > 0 {
		pc.Count = count
	}
	if sortBy != "" {
		pc.SortBy = sortBy
	}
	dates, err := pc.Dates()
	if err != nil {
		return pipeline.Params{}, err
	}
	return pipeline.Params{
		Keywords: pc.Keywords,
		Dates:    dates,
		Count:    pc.Count,
		SortBy:   pc.SortBy,
	}, nil
}
