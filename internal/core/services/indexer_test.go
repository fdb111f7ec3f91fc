package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fixpath-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

func makeChunks(url string, n int) []domain.DocumentChunk {
	chunks := make([]domain.DocumentChunk, n)
	for i := range chunks {
		chunks[i] = domain.DocumentChunk{
			ID:          domain.ChunkID(url, i),
			DocumentURL: url,
			Ordinal:     i,
			Text:        fmt.Sprintf("passage %d about the cv joint", i),
		}
	}
	return chunks
}

func TestIndexer_Index_EmbedsInBatches(t *testing.T) {
	store := memory.NewChunkStore()
	embedder := &mockEmbedder{keywords: []string{"cv"}}
	idx := NewIndexer(store, embedder, 4, 0)
	info := domain.Store{ID: "vehicle-honda-accord-2019-abc", Origin: domain.StoreOriginCrawl}

	n, err := idx.Index(context.Background(), info, makeChunks("https://example.com/a", 10))

	require.NoError(t, err)
	assert.Equal(t, 10, n)
	require.Len(t, embedder.batches, 3)
	assert.Len(t, embedder.batches[0], 4)
	assert.Len(t, embedder.batches[2], 2)
	for _, task := range embedder.tasks {
		assert.Equal(t, domain.EmbeddingTaskDocument, task)
	}

	chunks, err := store.Chunks(context.Background(), info.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 10)
	for _, c := range chunks {
		assert.NotEmpty(t, c.Embedding)
	}

	has, err := idx.HasChunks(context.Background(), info.ID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestIndexer_Index_FailedBatchIsSkipped(t *testing.T) {
	store := memory.NewChunkStore()
	embedder := &mockEmbedder{keywords: []string{"cv"}, failOn: 2}
	idx := NewIndexer(store, embedder, 3, 0)

	n, err := idx.Index(context.Background(), domain.Store{ID: "s"}, makeChunks("u", 9))

	require.Error(t, err)
	assert.ErrorIs(t, err, errMockBatch)
	assert.Equal(t, 6, n)

	count, err := idx.ChunkCount(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestIndexer_Index_DelayBetweenBatches(t *testing.T) {
	embedder := &mockEmbedder{keywords: []string{"cv"}}
	idx := NewIndexer(memory.NewChunkStore(), embedder, 1, 20*time.Millisecond)

	start := time.Now()
	_, err := idx.Index(context.Background(), domain.Store{ID: "s"}, makeChunks("u", 3))

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestIndexer_Index_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	idx := NewIndexer(memory.NewChunkStore(), &mockEmbedder{}, 2, time.Second)

	n, err := idx.Index(ctx, domain.Store{ID: "s"}, makeChunks("u", 4))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, n)
}

func TestIndexer_Index_NoEmbedder(t *testing.T) {
	idx := NewIndexer(memory.NewChunkStore(), nil, 2, 0)

	_, err := idx.Index(context.Background(), domain.Store{ID: "s"}, makeChunks("u", 1))

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIndexer_Index_Empty(t *testing.T) {
	embedder := &mockEmbedder{}
	idx := NewIndexer(memory.NewChunkStore(), embedder, 2, 0)

	n, err := idx.Index(context.Background(), domain.Store{ID: "s"}, nil)

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, embedder.batches)
}

func TestIndexer_ChunkCount_UnknownStore(t *testing.T) {
	idx := NewIndexer(memory.NewChunkStore(), &mockEmbedder{}, 0, 0)

	count, err := idx.ChunkCount(context.Background(), "missing")
	require.NoError(t, err)
	assert.Zero(t, count)

	has, err := idx.HasChunks(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestIndexer_Drop(t *testing.T) {
	store := memory.NewChunkStore()
	idx := NewIndexer(store, &mockEmbedder{keywords: []string{"cv"}}, 5, 0)
	_, err := idx.Index(context.Background(), domain.Store{ID: "s"}, makeChunks("u", 2))
	require.NoError(t, err)

	require.NoError(t, idx.Drop(context.Background(), "s"))
	require.NoError(t, idx.Drop(context.Background(), ""))

	_, err = store.Get(context.Background(), "s")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
