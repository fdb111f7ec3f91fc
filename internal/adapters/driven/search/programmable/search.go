// Package programmable implements web search with the Google Programmable
// Search JSON API. It serves source discovery when the generation provider
// cannot ground its answers.
package programmable

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixpath-cli/internal/logger"
)

// Ensure Search implements the interface.
var _ driven.WebSearch = (*Search)(nil)

// DefaultMaxResults caps the pages requested per query. The API allows at most 10.
const DefaultMaxResults = 8

const maxPageSize = 10

// Config holds configuration for the search adapter.
type Config struct {
	// APIKey is the Google API key (required).
	APIKey string

	// EngineID is the Programmable Search Engine id (required).
	EngineID string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// MaxResults caps the hits per query (default 8, at most 10).
	MaxResults int
}

// Search runs cse.list queries.
type Search struct {
	svc        *customsearch.Service
	engineID   string
	maxResults int
}

// New creates a Programmable Search adapter.
func New(ctx context.Context, cfg Config) (*Search, error) {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		return nil, errors.New("programmable search: API key and engine id are required")
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("programmable search: creating client: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Search{
		svc:        svc,
		engineID:   cfg.EngineID,
		maxResults: min(maxResults, maxPageSize),
	}, nil
}

// Search returns the engine's results for query in rank order. The API
// reports no relevance score, so confidence falls linearly with rank.
func (s *Search) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", domain.ErrInvalidInput)
	}

	resp, err := s.svc.Cse.List().
		Cx(s.engineID).
		Q(query).
		Num(int64(s.maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapError(err)
	}

	hits := make([]domain.SearchHit, 0, len(resp.Items))
	seen := make(map[string]bool)
	for _, item := range resp.Items {
		if item == nil || item.Link == "" || seen[item.Link] {
			continue
		}
		seen[item.Link] = true
		hits = append(hits, domain.SearchHit{
			URL:     item.Link,
			Title:   item.Title,
			Snippet: strings.TrimSpace(item.Snippet),
		})
	}
	for i := range hits {
		hits[i].Confidence = 1 - float64(i)/float64(len(hits))
	}

	logger.With("query", query).Debug("programmable search returned %d hits", len(hits))
	return hits, nil
}

func wrapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return fmt.Errorf("programmable search: %w", domain.ErrRateLimited)
		}
		return fmt.Errorf("programmable search error (status %d): %s", apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("programmable search: %w", err)
}
