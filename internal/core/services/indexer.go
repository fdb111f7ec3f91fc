package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixpath-cli/internal/logger"
)

// Indexer embeds chunks and appends them to stores.
// It is the only writer of the chunk store.
type Indexer struct {
	store     driven.ChunkStore
	embedder  driven.EmbeddingService
	batchSize int
	delay     time.Duration
	now       func() time.Time
}

// NewIndexer creates an indexer. Embedding runs in sub-batches of batchSize
// with at least delay between the start of consecutive batches.
func NewIndexer(store driven.ChunkStore, embedder driven.EmbeddingService, batchSize int, delay time.Duration) *Indexer {
	if batchSize <= 0 {
		batchSize = domain.DefaultPipelineSettings().EmbedBatchSize
	}
	return &Indexer{
		store:     store,
		embedder:  embedder,
		batchSize: batchSize,
		delay:     delay,
		now:       time.Now,
	}
}

// Index embeds chunks in sequential sub-batches and appends each embedded
// batch to the store described by info, creating it if absent. A failed
// batch is skipped; the number of chunks stored and the joined batch
// errors are returned.
func (i *Indexer) Index(ctx context.Context, info domain.Store, chunks []domain.DocumentChunk) (int, error) {
	if i.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	logger.Debug("Indexing %d chunks into %s (batch size %d)", len(chunks), info.ID, i.batchSize)

	// One token per batch; the first batch starts immediately.
	limit := rate.Inf
	if i.delay > 0 {
		limit = rate.Every(i.delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	var (
		stored int
		errs   []error
	)
	for start := 0; start < len(chunks); start += i.batchSize {
		end := min(start+i.batchSize, len(chunks))
		if err := limiter.Wait(ctx); err != nil {
			return stored, errors.Join(append(errs, err)...)
		}

		batch := make([]domain.DocumentChunk, end-start)
		copy(batch, chunks[start:end])
		texts := make([]string, len(batch))
		for j := range batch {
			texts[j] = batch[j].Text
		}

		vectors, err := i.embedder.EmbedBatch(ctx, texts, domain.EmbeddingTaskDocument)
		if err == nil && len(vectors) != len(batch) {
			err = fmt.Errorf("embedding service returned %d vectors for %d texts", len(vectors), len(batch))
		}
		if err != nil {
			if ctx.Err() != nil {
				return stored, errors.Join(append(errs, ctx.Err())...)
			}
			logger.With("stage", "index", "store", info.ID).Warn("embed batch %d-%d failed: %v", start, end, err)
			errs = append(errs, fmt.Errorf("embed chunks %d-%d: %w", start, end, err))
			continue
		}
		for j := range batch {
			batch[j].Embedding = vectors[j]
		}

		info.UpdatedAt = i.now()
		if info.CreatedAt.IsZero() {
			info.CreatedAt = info.UpdatedAt
		}
		if err := i.store.Append(ctx, info, batch); err != nil {
			errs = append(errs, fmt.Errorf("append chunks %d-%d: %w", start, end, err))
			continue
		}
		stored += len(batch)
	}
	return stored, errors.Join(errs...)
}

// HasChunks reports whether the store holds at least one chunk.
func (i *Indexer) HasChunks(ctx context.Context, storeID string) (bool, error) {
	n, err := i.ChunkCount(ctx, storeID)
	return n > 0, err
}

// ChunkCount returns the number of chunks in a store; unknown stores hold zero.
func (i *Indexer) ChunkCount(ctx context.Context, storeID string) (int, error) {
	info, err := i.store.Get(ctx, storeID)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return info.ChunkCount, nil
}

// Drop removes a store that lost to a better-populated one.
func (i *Indexer) Drop(ctx context.Context, storeID string) error {
	if storeID == "" {
		return nil
	}
	return i.store.Delete(ctx, storeID)
}
