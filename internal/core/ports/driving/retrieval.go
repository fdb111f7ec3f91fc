package driving

import (
	"context"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

// RetrievalService exposes stores and passage retrieval to external actors.
type RetrievalService interface {
	// Retrieve returns up to k passages from a store ranked by similarity.
	// k <= 0 uses the configured default.
	Retrieve(ctx context.Context, storeID, query string, k int) ([]domain.RetrievedPassage, error)

	// Stores lists the stores held by the session.
	Stores(ctx context.Context) ([]domain.Store, error)
}
