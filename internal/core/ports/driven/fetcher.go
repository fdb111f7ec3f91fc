package driven

import (
	"context"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

// PageFetcher retrieves third-party pages.
// Implementations validate status, content type and size and return a
// *domain.FetchError for rejected responses.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*domain.FetchedPage, error)
}
