// Package qdrant stores embedded chunk records in a Qdrant collection.
package qdrant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fwojciec/pagechunk"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// DefaultCollection is the collection chunk points are written to.
const DefaultCollection = "qc_commencement_v1"

var _ pagechunk.Upserter = (*Upserter)(nil)

// PointStore is the subset of *qdrant.Client used by Upserter.
type PointStore interface {
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
}

// Upserter embeds chunk records and writes them as points. Point IDs are
// derived from chunk IDs, so re-upserting a chunk overwrites its point.
type Upserter struct {
	store      PointStore
	embedder   pagechunk.Embedder
	collection string
	maxElapsed time.Duration

	mu      sync.Mutex
	ensured bool
}

// Option configures an Upserter.
type Option func(*Upserter)

// WithCollection overrides DefaultCollection.
func WithCollection(name string) Option {
	return func(u *Upserter) {
		if name != "" {
			u.collection = name
		}
	}
}

// WithMaxElapsed bounds how long a failing request is retried.
func WithMaxElapsed(d time.Duration) Option {
	return func(u *Upserter) {
		u.maxElapsed = d
	}
}

// NewUpserter returns an Upserter writing through store.
func NewUpserter(store PointStore, embedder pagechunk.Embedder, opts ...Option) *Upserter {
	u := &Upserter{
		store:      store,
		embedder:   embedder,
		collection: DefaultCollection,
		maxElapsed: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Collection returns the target collection name.
func (u *Upserter) Collection() string {
	return u.collection
}

// Open dials Qdrant over gRPC.
func Open(host string, port int, apiKey string) (*qdrant.Client, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
	})
	if err != nil {
		return nil, pagechunk.Errorf(pagechunk.ECONFIG, "qdrant client: %v", err)
	}
	return client, nil
}

// Health waits for Qdrant to answer a health check.
func (u *Upserter) Health(ctx context.Context) error {
	return u.retry(ctx, func() error {
		reply, err := u.store.HealthCheck(ctx)
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		if reply == nil || reply.GetTitle() == "" {
			return fmt.Errorf("health check returned invalid response")
		}
		return nil
	})
}

// EnsureCollection creates the collection for vectors of size dims with
// cosine distance. It is a no-op if the collection exists.
func (u *Upserter) EnsureCollection(ctx context.Context, dims int) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.ensured {
		return nil
	}

	exists, err := u.store.CollectionExists(ctx, u.collection)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", u.collection, err)
	}
	if !exists {
		err = u.store.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: u.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(dims),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("create collection %s: %w", u.collection, err)
		}
	}
	u.ensured = true
	return nil
}

// Upsert embeds chunks and writes them as points.
func (u *Upserter) Upsert(ctx context.Context, chunks []*pagechunk.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := u.embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(chunks) {
		return pagechunk.Errorf(pagechunk.EINTERNAL, "got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	if err := u.EnsureCollection(ctx, len(vectors[0])); err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, c := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(PointID(c.Meta.ChunkID)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(payload(c)),
		}
	}

	return u.retry(ctx, func() error {
		_, err := u.store.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: u.collection,
			Wait:           qdrant.PtrOf(true),
			Points:         points,
		})
		return err
	})
}

// PointID maps a chunk ID onto a stable UUID, which Qdrant requires.
func PointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkID)).String()
}

func payload(c *pagechunk.Chunk) map[string]any {
	return map[string]any{
		"text":             c.Text,
		"url":              c.Meta.URL,
		"page_title":       c.Meta.PageTitle,
		"section_title":    c.Meta.SectionTitle,
		"fetched_at":       c.Meta.FetchedAt.UTC().Format(time.RFC3339),
		"chunk_index":      c.Meta.ChunkIndex,
		"chunk_id":         c.Meta.ChunkID,
		"content_sha1":     c.Meta.ContentSHA1,
		"section_sha1":     c.Meta.SectionSHA1,
		"pipeline_version": c.Meta.PipelineVersion,
		"source_type":      c.Meta.SourceType,
	}
}

func (u *Upserter) retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = u.maxElapsed

	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}
