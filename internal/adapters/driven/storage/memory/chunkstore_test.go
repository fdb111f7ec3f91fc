package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

func testChunk(url string, ordinal int, text string) domain.DocumentChunk {
	return domain.DocumentChunk{
		ID:          domain.ChunkID(url, ordinal),
		DocumentURL: url,
		Text:        text,
		Ordinal:     ordinal,
		Embedding:   []float32{1, 0, 0},
	}
}

func TestChunkStore_Append_CreatesStore(t *testing.T) {
	store := NewChunkStore()
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	info := domain.Store{ID: "vehicle-honda-civic-abc", EquipmentKey: "vehicle-honda-civic", Origin: domain.StoreOriginCrawl, CreatedAt: created}
	err := store.Append(ctx, info, []domain.DocumentChunk{
		testChunk("https://example.com/a", 0, "first"),
		testChunk("https://example.com/a", 1, "second"),
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ChunkCount)
	assert.Equal(t, domain.StoreOriginCrawl, got.Origin)
	assert.Equal(t, created, got.CreatedAt)

	chunks, err := store.Chunks(ctx, info.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "first", chunks[0].Text)
	assert.Equal(t, "second", chunks[1].Text)
}

func TestChunkStore_Append_AccumulatesAndReplaces(t *testing.T) {
	store := NewChunkStore()
	ctx := context.Background()
	info := domain.Store{ID: "s1"}

	require.NoError(t, store.Append(ctx, info, []domain.DocumentChunk{testChunk("u", 0, "old")}))
	require.NoError(t, store.Append(ctx, info, []domain.DocumentChunk{
		testChunk("u", 0, "new"),
		testChunk("u", 1, "more"),
	}))

	chunks, err := store.Chunks(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "new", chunks[0].Text)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.ChunkCount)
}

func TestChunkStore_Append_RequiresID(t *testing.T) {
	store := NewChunkStore()
	err := store.Append(context.Background(), domain.Store{}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChunkStore_Chunks_UnknownStore(t *testing.T) {
	store := NewChunkStore()
	chunks, err := store.Chunks(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkStore_Chunks_ReturnsCopy(t *testing.T) {
	store := NewChunkStore()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, domain.Store{ID: "s1"}, []domain.DocumentChunk{testChunk("u", 0, "text")}))

	chunks, _ := store.Chunks(ctx, "s1")
	chunks[0].Text = "mutated"

	again, _ := store.Chunks(ctx, "s1")
	assert.Equal(t, "text", again[0].Text)
}

func TestChunkStore_Get_NotFound(t *testing.T) {
	store := NewChunkStore()
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChunkStore_List_NewestFirst(t *testing.T) {
	store := NewChunkStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, domain.Store{ID: "old", CreatedAt: base}, nil))
	require.NoError(t, store.Append(ctx, domain.Store{ID: "new", CreatedAt: base.Add(time.Hour)}, nil))

	stores, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, "new", stores[0].ID)
	assert.Equal(t, "old", stores[1].ID)
}

func TestChunkStore_Delete(t *testing.T) {
	store := NewChunkStore()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, domain.Store{ID: "s1"}, []domain.DocumentChunk{testChunk("u", 0, "x")}))

	require.NoError(t, store.Delete(ctx, "s1"))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, store.Close())
}
