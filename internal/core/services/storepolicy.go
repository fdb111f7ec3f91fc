package services

import "github.com/custodia-labs/fixpath-cli/internal/core/domain"

// StorePolicy decides whether a candidate ingestion result should replace
// the current one as the request's store.
type StorePolicy func(current, candidate *domain.IngestionResult) bool

// PreferPopulatedStore replaces the current store when the candidate holds
// more chunks, or as many chunks and completed later. A candidate without
// chunks never wins.
func PreferPopulatedStore(current, candidate *domain.IngestionResult) bool {
	if candidate == nil || candidate.ChunksCreated == 0 || candidate.StoreID == "" {
		return false
	}
	if current == nil || current.StoreID == "" {
		return true
	}
	if candidate.ChunksCreated != current.ChunksCreated {
		return candidate.ChunksCreated > current.ChunksCreated
	}
	return candidate.CompletedAt.After(current.CompletedAt)
}
