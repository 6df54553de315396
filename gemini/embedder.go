// Package gemini implements embedding and token counting on top of the
// Google Gen AI SDK.
package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fwojciec/pagechunk"
	"google.golang.org/genai"
)

const (
	// DefaultEmbeddingModel is the Gemini embedding model.
	DefaultEmbeddingModel = "text-embedding-004"

	// DefaultBatchSize is the largest batch the embedding endpoint accepts.
	DefaultBatchSize = 100

	// TaskRetrievalDocument marks embedded texts as corpus documents.
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

var _ pagechunk.Embedder = (*Embedder)(nil)

// ContentEmbedder is the subset of *genai.Models used by Embedder.
type ContentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Embedder turns chunk texts into vectors with a Gemini embedding model.
type Embedder struct {
	models     ContentEmbedder
	model      string
	batchSize  int
	maxElapsed time.Duration
}

// EmbedderOption configures an Embedder.
type EmbedderOption func(*Embedder)

// WithModel overrides DefaultEmbeddingModel.
func WithModel(model string) EmbedderOption {
	return func(e *Embedder) {
		e.model = model
	}
}

// WithBatchSize overrides DefaultBatchSize.
func WithBatchSize(n int) EmbedderOption {
	return func(e *Embedder) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithMaxElapsed bounds how long a failing batch is retried.
func WithMaxElapsed(d time.Duration) EmbedderOption {
	return func(e *Embedder) {
		e.maxElapsed = d
	}
}

// NewEmbedder returns an Embedder. Pass client.Models from a *genai.Client.
func NewEmbedder(models ContentEmbedder, opts ...EmbedderOption) *Embedder {
	e := &Embedder{
		models:     models,
		model:      DefaultEmbeddingModel,
		batchSize:  DefaultBatchSize,
		maxElapsed: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Embed returns one vector per text, in order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += e.batchSize {
		end := min(i+e.batchSize, len(texts))
		vectors, err := e.embedBatchWithRetry(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", i, end, err)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (e *Embedder) embedBatchWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, "user")
	}
	config := &genai.EmbedContentConfig{TaskType: TaskRetrievalDocument}

	var vectors [][]float32
	operation := func() error {
		resp, err := e.models.EmbedContent(ctx, e.model, contents, config)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		if resp == nil || len(resp.Embeddings) != len(texts) {
			got := 0
			if resp != nil {
				got = len(resp.Embeddings)
			}
			return backoff.Permanent(pagechunk.Errorf(pagechunk.EINTERNAL,
				"gemini returned %d embeddings for %d texts", got, len(texts)))
		}
		vectors = make([][]float32, len(resp.Embeddings))
		for i, emb := range resp.Embeddings {
			vectors[i] = emb.Values
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = e.maxElapsed

	err := backoff.Retry(operation, backoff.WithContext(b, ctx))
	return vectors, err
}
