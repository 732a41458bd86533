package cached

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parrisma/gofr-iq-sub004/internal/domain"
	"github.com/parrisma/gofr-iq-sub004/internal/stores"
)

type stubDocs struct {
	calls int
	docs  map[string]domain.Document
}

func (s *stubDocs) GetDocuments(ctx context.Context, ids []string) ([]domain.Document, error) {
	s.calls++
	var out []domain.Document
	for _, id := range ids {
		if d, ok := s.docs[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func TestDocumentProvider_CacheHit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := &stubDocs{}
	provider := NewDocumentProvider(inner, rdb, time.Minute)

	doc := domain.Document{ID: "doc-1", Title: "cached"}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	mock.ExpectMGet("feediq:doc:doc-1").SetVal([]interface{}{string(raw)})

	docs, err := provider.GetDocuments(context.Background(), []string{"doc-1"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "cached", docs[0].Title)
	assert.Zero(t, inner.calls, "inner provider must not be hit on cache hit")
}

func TestDocumentProvider_CacheMissFetchesAndWrites(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	doc := domain.Document{ID: "doc-2", Title: "fresh"}
	inner := &stubDocs{docs: map[string]domain.Document{"doc-2": doc}}
	provider := NewDocumentProvider(inner, rdb, time.Minute)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	mock.ExpectMGet("feediq:doc:doc-2").SetVal([]interface{}{nil})
	mock.ExpectSet("feediq:doc:doc-2", raw, time.Minute).SetVal("OK")

	docs, err := provider.GetDocuments(context.Background(), []string{"doc-2"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "fresh", docs[0].Title)
	assert.Equal(t, 1, inner.calls)
}

type stubVec struct {
	calls int
	hits  []stores.VectorHit
}

func (s *stubVec) SimilaritySearch(ctx context.Context, embedding []float64, topN int) ([]stores.VectorHit, error) {
	s.calls++
	return s.hits, nil
}

func TestVectorStore_Memoizes(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := &stubVec{hits: []stores.VectorHit{{DocumentID: "doc-1", Similarity: 0.9}}}
	store := NewVectorStore(inner, rdb, 30*time.Second)

	embedding := []float64{0.1, 0.2, 0.3}
	key := vectorKey(embedding, 10)

	raw, err := json.Marshal(inner.hits)
	require.NoError(t, err)

	// First call misses, queries the index, writes back.
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, raw, 30*time.Second).SetVal("OK")
	// Second call is served from the cache.
	mock.ExpectGet(key).SetVal(string(raw))

	hits, err := store.SimilaritySearch(context.Background(), embedding, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	hits, err = store.SimilaritySearch(context.Background(), embedding, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 0.9, hits[0].Similarity, 1e-9)
	assert.Equal(t, 1, inner.calls)
}

func TestVectorKeyDependsOnEmbeddingAndN(t *testing.T) {
	a := vectorKey([]float64{0.1, 0.2}, 10)
	b := vectorKey([]float64{0.1, 0.3}, 10)
	c := vectorKey([]float64{0.1, 0.2}, 20)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}
