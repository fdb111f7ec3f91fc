package driven

import (
	"context"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

// WebSearch runs a grounded web search for a query.
// An empty result is valid; an error means the call itself failed.
type WebSearch interface {
	Search(ctx context.Context, query string) ([]domain.SearchHit, error)
}
