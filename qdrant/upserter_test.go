package qdrant_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/pagechunk"
	"github.com/fwojciec/pagechunk/mock"
	pcqdrant "github.com/fwojciec/pagechunk/qdrant"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore records calls made against Qdrant.
type fakeStore struct {
	exists      bool
	created     []*qdrant.CreateCollection
	upserts     []*qdrant.UpsertPoints
	upsertErrs  []error
	healthErrs  []error
	healthCalls int
}

func (f *fakeStore) HealthCheck(context.Context) (*qdrant.HealthCheckReply, error) {
	f.healthCalls++
	if len(f.healthErrs) > 0 {
		err := f.healthErrs[0]
		f.healthErrs = f.healthErrs[1:]
		return nil, err
	}
	return &qdrant.HealthCheckReply{Title: "qdrant"}, nil
}

func (f *fakeStore) CollectionExists(context.Context, string) (bool, error) {
	return f.exists, nil
}

func (f *fakeStore) CreateCollection(_ context.Context, req *qdrant.CreateCollection) error {
	f.created = append(f.created, req)
	f.exists = true
	return nil
}

func (f *fakeStore) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	if len(f.upsertErrs) > 0 {
		err := f.upsertErrs[0]
		f.upsertErrs = f.upsertErrs[1:]
		return nil, err
	}
	f.upserts = append(f.upserts, req)
	return &qdrant.UpdateResult{}, nil
}

func fixedEmbedder() *mock.Embedder {
	return &mock.Embedder{
		EmbedFn: func(_ context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i := range texts {
				out[i] = []float32{0.1, 0.2, 0.3}
			}
			return out, nil
		},
	}
}

func testChunk(id string) *pagechunk.Chunk {
	return &pagechunk.Chunk{
		Text: "Parking\n\nLot 4 opens at 8am.",
		Meta: pagechunk.ChunkMeta{
			URL:             "https://www.qc.cuny.edu/commencement/directions/",
			PageTitle:       "Directions",
			SectionTitle:    "Parking",
			FetchedAt:       time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
			ChunkIndex:      0,
			ChunkID:         id,
			ContentSHA1:     "abc",
			SectionSHA1:     "def",
			PipelineVersion: "v1",
			SourceType:      pagechunk.SourceTypeWeb,
		},
	}
}

func TestUpserter_Upsert(t *testing.T) {
	t.Parallel()

	t.Run("creates the collection and writes points", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		u := pcqdrant.NewUpserter(store, fixedEmbedder(), pcqdrant.WithCollection("commencement_v2"))

		err := u.Upsert(context.Background(), []*pagechunk.Chunk{testChunk("c1"), testChunk("c2")})

		require.NoError(t, err)
		require.Len(t, store.created, 1)
		assert.Equal(t, "commencement_v2", store.created[0].CollectionName)
		assert.Equal(t, uint64(3), store.created[0].GetVectorsConfig().GetParams().GetSize())

		require.Len(t, store.upserts, 1)
		points := store.upserts[0].Points
		require.Len(t, points, 2)
		assert.Equal(t, pcqdrant.PointID("c1"), points[0].GetId().GetUuid())
		assert.Equal(t, "Parking", points[0].GetPayload()["section_title"].GetStringValue())
		assert.Equal(t, int64(0), points[0].GetPayload()["chunk_index"].GetIntegerValue())
		assert.Equal(t, "2025-05-01T00:00:00Z", points[0].GetPayload()["fetched_at"].GetStringValue())
	})

	t.Run("reuses an existing collection", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{exists: true}
		u := pcqdrant.NewUpserter(store, fixedEmbedder())

		require.NoError(t, u.Upsert(context.Background(), []*pagechunk.Chunk{testChunk("c1")}))
		require.NoError(t, u.Upsert(context.Background(), []*pagechunk.Chunk{testChunk("c2")}))

		assert.Empty(t, store.created)
		assert.Len(t, store.upserts, 2)
		assert.Equal(t, pcqdrant.DefaultCollection, u.Collection())
	})

	t.Run("retries a failed upsert", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{exists: true, upsertErrs: []error{errors.New("unavailable")}}
		u := pcqdrant.NewUpserter(store, fixedEmbedder(), pcqdrant.WithMaxElapsed(5*time.Second))

		err := u.Upsert(context.Background(), []*pagechunk.Chunk{testChunk("c1")})

		require.NoError(t, err)
		assert.Len(t, store.upserts, 1)
	})

	t.Run("returns embedding errors without writing", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		embedder := &mock.Embedder{
			EmbedFn: func(context.Context, []string) ([][]float32, error) {
				return nil, errors.New("quota exceeded")
			},
		}
		u := pcqdrant.NewUpserter(store, embedder)

		err := u.Upsert(context.Background(), []*pagechunk.Chunk{testChunk("c1")})

		require.EqualError(t, err, "quota exceeded")
		assert.Empty(t, store.upserts)
	})

	t.Run("ignores empty input", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		u := pcqdrant.NewUpserter(store, &mock.Embedder{})

		require.NoError(t, u.Upsert(context.Background(), nil))
		assert.Empty(t, store.upserts)
	})
}

func TestUpserter_Health(t *testing.T) {
	t.Parallel()

	store := &fakeStore{healthErrs: []error{errors.New("connection refused")}}
	u := pcqdrant.NewUpserter(store, &mock.Embedder{}, pcqdrant.WithMaxElapsed(5*time.Second))

	require.NoError(t, u.Health(context.Background()))
	assert.Equal(t, 2, store.healthCalls)
}

func TestPointID(t *testing.T) {
	t.Parallel()

	t.Run("is stable for the same chunk id", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, pcqdrant.PointID("abc"), pcqdrant.PointID("abc"))
	})

	t.Run("is a valid UUID distinct per chunk id", func(t *testing.T) {
		t.Parallel()
		id := pcqdrant.PointID("abc")
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.NotEqual(t, id, pcqdrant.PointID("abd"))
	})
}
