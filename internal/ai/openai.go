package ai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Embedder turns texts into vectors. Implementations must return one vector
// per input text, in input order, all with Dimension() elements.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbeddingModel() string
	Dimension() int
}

// OpenAIClient wraps chat completions and embeddings behind one client.
type OpenAIClient struct {
	client     *openai.Client
	model      string
	embedModel string
	dims       int
}

type Config struct {
	APIKey             string
	Model              string
	BaseURL            string // optional
	EmbeddingModel     string
	EmbeddingDimension int
}

func NewOpenAI(cfg Config) *OpenAIClient {
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	if cfg.Model == "" {
		panic("OpenAI model must be specified")
	}
	if cfg.EmbeddingModel == "" {
		panic("OpenAI embedding model must be specified")
	}
	dims := cfg.EmbeddingDimension
	if dims <= 0 {
		dims = 1536
	}
	return &OpenAIClient{client: c, model: cfg.Model, embedModel: cfg.EmbeddingModel, dims: dims}
}

func (o *OpenAIClient) Model() string          { return o.model }
func (o *OpenAIClient) EmbeddingModel() string { return o.embedModel }
func (o *OpenAIClient) Dimension() int         { return o.dims }

// embedBatchSize bounds one embeddings request.
const embedBatchSize = 100

// EmbedTexts embeds texts in request-sized batches. Inputs must be non-empty;
// a vector of the wrong width is treated as an error rather than stored.
func (o *OpenAIClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for i, t := range texts {
		if t == "" {
			return nil, fmt.Errorf("ai: empty text at index %d", i)
		}
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := o.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (o *OpenAIClient) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	// Default timeout guard, if caller didn't set one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 120*time.Second)
		defer cancel()
	}
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(o.embedModel),
	})
	if err != nil {
		return nil, fmt.Errorf("ai: create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("ai: got %d embeddings for %d texts", len(resp.Data), len(texts))
	}
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("ai: embedding index %d out of range", d.Index)
		}
		if len(d.Embedding) != o.dims {
			return nil, fmt.Errorf("ai: embedding has %d dims, want %d", len(d.Embedding), o.dims)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// ChatCompletion issues one chat request, filling in the configured model
// when the request leaves it empty.
func (o *OpenAIClient) ChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 300*time.Second)
		defer cancel()
	}
	if req.Model == "" {
		req.Model = o.model
	}
	return o.client.CreateChatCompletion(ctx, req)
}
