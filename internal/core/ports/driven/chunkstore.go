package driven

import (
	"context"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

// ChunkStore persists embedded chunks grouped into named stores.
// The Indexer is its only writer.
type ChunkStore interface {
	// Append adds chunks to the store, creating it from info if absent.
	// Chunks whose ID already exists in the store replace the old entry.
	Append(ctx context.Context, info domain.Store, chunks []domain.DocumentChunk) error

	// Chunks returns every chunk of a store in insertion order.
	// An unknown store returns an empty slice.
	Chunks(ctx context.Context, storeID string) ([]domain.DocumentChunk, error)

	// Get returns a store's metadata or domain.ErrNotFound.
	Get(ctx context.Context, storeID string) (*domain.Store, error)

	// List returns all stores, newest first.
	List(ctx context.Context) ([]domain.Store, error)

	// Delete removes a store and its chunks.
	Delete(ctx context.Context, storeID string) error

	// Close releases resources.
	Close() error
}
