package ai

import (
	"context"
	"log/slog"
)

// EmbeddingCache stores vectors keyed by model and text.
type EmbeddingCache interface {
	GetEmbedding(ctx context.Context, model, text string) ([]float32, bool, error)
	SetEmbedding(ctx context.Context, model, text string, vec []float32) error
}

// CachedEmbedder serves vectors from a cache and embeds only the misses.
// Cache failures degrade to plain embedding instead of failing the call.
type CachedEmbedder struct {
	inner Embedder
	cache EmbeddingCache
}

func NewCachedEmbedder(inner Embedder, cache EmbeddingCache) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache}
}

func (c *CachedEmbedder) EmbeddingModel() string { return c.inner.EmbeddingModel() }
func (c *CachedEmbedder) Dimension() int         { return c.inner.Dimension() }

func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	model := c.inner.EmbeddingModel()
	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string
	for i, t := range texts {
		vec, ok, err := c.cache.GetEmbedding(ctx, model, t)
		if err != nil {
			slog.Warn("ai: embedding cache read failed", "err", err)
		}
		if ok {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}
	if len(missTexts) == 0 {
		return out, nil
	}
	vecs, err := c.inner.EmbedTexts(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
		if err := c.cache.SetEmbedding(ctx, model, texts[i], vecs[j]); err != nil {
			slog.Warn("ai: embedding cache write failed", "err", err)
		}
	}
	return out, nil
}
