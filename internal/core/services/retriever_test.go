package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fixpath-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

func TestCosineSimilarity(t *testing.T) {
	v := []float32{0.3, -1.2, 4.5}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)

	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	zero := CosineSimilarity(v, []float32{0, 0, 0})
	assert.Zero(t, zero)
	assert.False(t, math.IsNaN(zero))

	assert.Zero(t, CosineSimilarity(nil, nil))
	assert.Zero(t, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
}

// seedStore indexes the given texts into a store, one document per text.
func seedStore(t *testing.T, store *memory.ChunkStore, embedder *mockEmbedder, storeID string, texts map[string]string) {
	t.Helper()
	idx := NewIndexer(store, embedder, 10, 0)
	for url, text := range texts {
		chunks := []domain.DocumentChunk{{ID: domain.ChunkID(url, 0), DocumentURL: url, Text: text}}
		_, err := idx.Index(context.Background(), domain.Store{ID: storeID}, chunks)
		require.NoError(t, err)
	}
}

func TestRetriever_RanksByRelevance(t *testing.T) {
	store := memory.NewChunkStore()
	embedder := &mockEmbedder{keywords: []string{"clicking", "turning", "cv joint", "brake", "noise"}}
	seedStore(t, store, embedder, "s", map[string]string{
		"https://example.com/cv":     "A worn CV joint makes a clicking noise when turning.",
		"https://example.com/brakes": "Brake pads squeal when worn.",
		"https://example.com/noise":  "Engine noise at idle.",
	})
	r := NewRetriever(store, embedder, 8, 0.3)

	passages, err := r.Retrieve(context.Background(), "s", "clicking noise turning", 5)

	require.NoError(t, err)
	require.NotEmpty(t, passages)
	assert.Equal(t, "https://example.com/cv", passages[0].URL)
	assert.Equal(t, domain.EmbeddingTaskQuery, embedder.tasks[len(embedder.tasks)-1])
	for i, p := range passages {
		assert.GreaterOrEqual(t, p.Score, 0.3)
		if i > 0 {
			assert.GreaterOrEqual(t, passages[i-1].Score, p.Score)
		}
	}
}

func TestRetriever_RespectsKAndThreshold(t *testing.T) {
	store := memory.NewChunkStore()
	embedder := &mockEmbedder{keywords: []string{"joint"}}
	texts := map[string]string{}
	for _, u := range []string{"a", "b", "c", "d", "e"} {
		texts["https://example.com/"+u] = "joint " + u
	}
	texts["https://example.com/off"] = "unrelated"
	seedStore(t, store, embedder, "s", texts)
	r := NewRetriever(store, embedder, 8, 0.5)

	passages, err := r.Retrieve(context.Background(), "s", "joint", 3)

	require.NoError(t, err)
	assert.Len(t, passages, 3)
	for _, p := range passages {
		assert.GreaterOrEqual(t, p.Score, 0.5)
		assert.NotEqual(t, "https://example.com/off", p.URL)
	}
}

func TestRetriever_DefaultK(t *testing.T) {
	store := memory.NewChunkStore()
	embedder := &mockEmbedder{keywords: []string{"joint"}}
	texts := map[string]string{}
	for _, u := range []string{"a", "b", "c", "d"} {
		texts["https://example.com/"+u] = "joint " + u
	}
	seedStore(t, store, embedder, "s", texts)
	r := NewRetriever(store, embedder, 2, 0)

	passages, err := r.Retrieve(context.Background(), "s", "joint", 0)

	require.NoError(t, err)
	assert.Len(t, passages, 2)
}

func TestRetriever_EmptyStoreIsNotAnError(t *testing.T) {
	embedder := &mockEmbedder{}
	r := NewRetriever(memory.NewChunkStore(), embedder, 8, 0.3)

	passages, err := r.Retrieve(context.Background(), "missing", "anything", 5)

	require.NoError(t, err)
	assert.Empty(t, passages)
	assert.Empty(t, embedder.tasks, "no query embedding without chunks")
}

func TestRetriever_RetrieveAcross(t *testing.T) {
	store := memory.NewChunkStore()
	embedder := &mockEmbedder{keywords: []string{"joint"}}
	seedStore(t, store, embedder, "crawl", map[string]string{"https://example.com/a": "joint from crawl"})
	seedStore(t, store, embedder, "manual", map[string]string{"manual://honda/a": "joint from manual"})
	r := NewRetriever(store, embedder, 8, 0.3)

	passages, err := r.RetrieveAcross(context.Background(), []string{"crawl", "", "manual"}, "joint", 5)

	require.NoError(t, err)
	urls := []string{}
	for _, p := range passages {
		urls = append(urls, p.URL)
	}
	assert.ElementsMatch(t, []string{"https://example.com/a", "manual://honda/a"}, urls)
}

func TestRetriever_EmbedError(t *testing.T) {
	store := memory.NewChunkStore()
	seedStore(t, store, &mockEmbedder{keywords: []string{"x"}}, "s", map[string]string{"u": "x"})
	r := NewRetriever(store, &mockEmbedder{err: assert.AnError}, 8, 0.3)

	_, err := r.Retrieve(context.Background(), "s", "x", 5)

	assert.ErrorIs(t, err, assert.AnError)
}

func TestRetriever_Stores(t *testing.T) {
	store := memory.NewChunkStore()
	seedStore(t, store, &mockEmbedder{keywords: []string{"x"}}, "s", map[string]string{"u": "x"})
	r := NewRetriever(store, nil, 8, 0.3)

	stores, err := r.Stores(context.Background())

	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, 1, stores[0].ChunkCount)
}
