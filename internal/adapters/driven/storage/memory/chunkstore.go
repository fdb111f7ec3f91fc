package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
// Stores live for the lifetime of the process.
type ChunkStore struct {
	mu     sync.RWMutex
	stores map[string]*storeEntry
}

type storeEntry struct {
	info   domain.Store
	chunks []domain.DocumentChunk
	index  map[string]int
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		stores: make(map[string]*storeEntry),
	}
}

// Append adds chunks to a store, creating it from info if absent.
func (s *ChunkStore) Append(_ context.Context, info domain.Store, chunks []domain.DocumentChunk) error {
	if info.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.stores[info.ID]
	if !ok {
		entry = &storeEntry{info: info, index: make(map[string]int)}
		s.stores[info.ID] = entry
	}
	for i := range chunks {
		c := chunks[i]
		c.Embedding = append([]float32(nil), c.Embedding...)
		if pos, exists := entry.index[c.ID]; exists {
			entry.chunks[pos] = c
			continue
		}
		entry.index[c.ID] = len(entry.chunks)
		entry.chunks = append(entry.chunks, c)
	}
	if !info.UpdatedAt.IsZero() {
		entry.info.UpdatedAt = info.UpdatedAt
	}
	entry.info.ChunkCount = len(entry.chunks)
	return nil
}

// Chunks returns every chunk of a store in insertion order.
func (s *ChunkStore) Chunks(_ context.Context, storeID string) ([]domain.DocumentChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.stores[storeID]
	if !ok {
		return []domain.DocumentChunk{}, nil
	}
	out := make([]domain.DocumentChunk, len(entry.chunks))
	copy(out, entry.chunks)
	return out, nil
}

// Get returns a store's metadata.
func (s *ChunkStore) Get(_ context.Context, storeID string) (*domain.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.stores[storeID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	info := entry.info
	return &info, nil
}

// List returns all stores, newest first.
func (s *ChunkStore) List(_ context.Context) ([]domain.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Store, 0, len(s.stores))
	for _, entry := range s.stores {
		result = append(result, entry.info)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Delete removes a store and its chunks.
func (s *ChunkStore) Delete(_ context.Context, storeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stores, storeID)
	return nil
}

// Close is a no-op for the memory store.
func (s *ChunkStore) Close() error {
	return nil
}
