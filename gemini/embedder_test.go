package gemini_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/pagechunk/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// fakeModels answers embedding calls from a function.
type fakeModels struct {
	fn func(model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

func (f *fakeModels) EmbedContent(_ context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	return f.fn(model, contents, config)
}

// lengthVectors embeds each text as a one-element vector holding its length.
func lengthVectors(contents []*genai.Content) *genai.EmbedContentResponse {
	resp := &genai.EmbedContentResponse{}
	for _, c := range contents {
		resp.Embeddings = append(resp.Embeddings, &genai.ContentEmbedding{
			Values: []float32{float32(len(c.Parts[0].Text))},
		})
	}
	return resp
}

func TestEmbedder_Embed(t *testing.T) {
	t.Parallel()

	t.Run("embeds texts in order with document task type", func(t *testing.T) {
		t.Parallel()

		var gotModel, gotTask string
		models := &fakeModels{fn: func(model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
			gotModel = model
			gotTask = config.TaskType
			return lengthVectors(contents), nil
		}}
		e := gemini.NewEmbedder(models)

		vectors, err := e.Embed(context.Background(), []string{"a", "bb", "ccc"})

		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1}, {2}, {3}}, vectors)
		assert.Equal(t, gemini.DefaultEmbeddingModel, gotModel)
		assert.Equal(t, gemini.TaskRetrievalDocument, gotTask)
	})

	t.Run("splits requests into batches", func(t *testing.T) {
		t.Parallel()

		var sizes []int
		models := &fakeModels{fn: func(_ string, contents []*genai.Content, _ *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
			sizes = append(sizes, len(contents))
			return lengthVectors(contents), nil
		}}
		e := gemini.NewEmbedder(models, gemini.WithBatchSize(2), gemini.WithModel("custom"))

		vectors, err := e.Embed(context.Background(), []string{"a", "b", "c", "d", "e"})

		require.NoError(t, err)
		assert.Len(t, vectors, 5)
		assert.Equal(t, []int{2, 2, 1}, sizes)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		t.Parallel()

		calls := 0
		models := &fakeModels{fn: func(_ string, contents []*genai.Content, _ *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("429 resource exhausted")
			}
			return lengthVectors(contents), nil
		}}
		e := gemini.NewEmbedder(models, gemini.WithMaxElapsed(5*time.Second))

		vectors, err := e.Embed(context.Background(), []string{"a"})

		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1}}, vectors)
		assert.Equal(t, 2, calls)
	})

	t.Run("fails on a mismatched response without retrying", func(t *testing.T) {
		t.Parallel()

		calls := 0
		models := &fakeModels{fn: func(string, []*genai.Content, *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
			calls++
			return &genai.EmbedContentResponse{}, nil
		}}
		e := gemini.NewEmbedder(models)

		_, err := e.Embed(context.Background(), []string{"a", "b"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "0 embeddings for 2 texts")
		assert.Equal(t, 1, calls)
	})

	t.Run("returns no vectors for no texts", func(t *testing.T) {
		t.Parallel()

		e := gemini.NewEmbedder(&fakeModels{})

		vectors, err := e.Embed(context.Background(), nil)

		require.NoError(t, err)
		assert.Empty(t, vectors)
	})
}
