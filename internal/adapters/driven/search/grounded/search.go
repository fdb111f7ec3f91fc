// Package grounded implements web search on top of a generation service
// that can ground its answers in live search results.
package grounded

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixpath-cli/internal/logger"
)

// Ensure Search implements the interfaces.
var (
	_ driven.WebSearch        = (*Search)(nil)
	_ driven.PromptStoreAware = (*Search)(nil)
)

// DefaultMaxResults caps the pages requested per query.
const DefaultMaxResults = 8

// DefaultPrompt is the source_search template used when no custom prompt is set.
const DefaultPrompt = `Search the web for repair documentation matching this query:

%s

Prefer service manuals, repair guides, technical forums and video transcripts.
Return ONLY a JSON array (no prose) of up to %d objects with these fields:
  "url": the page address,
  "title": the page title,
  "snippet": one sentence on what the page covers,
  "relevance": a number from 0 to 1.`

// Option configures a Search.
type Option func(*Search)

// WithMaxResults sets how many pages the model is asked for.
func WithMaxResults(n int) Option {
	return func(s *Search) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// Search runs grounded generation calls and turns their output into hits.
type Search struct {
	gen        driven.GenerationService
	prompts    driven.PromptStore
	maxResults int
}

// New creates a grounded web search over gen.
func New(gen driven.GenerationService, opts ...Option) *Search {
	s := &Search{gen: gen, maxResults: DefaultMaxResults}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPromptStore sets the prompt store for the search prompt.
func (s *Search) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// listedPage is one entry of the JSON array the prompt asks for.
type listedPage struct {
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	Snippet   string  `json:"snippet"`
	Relevance float64 `json:"relevance"`
}

// Search asks the model for documentation pages matching query.
//
// Pages the model lists come first, in its order. Grounding sources the
// model did not list follow. A listed page that is also a grounding source
// takes the engine's confidence; otherwise the model's relevance is used.
func (s *Search) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	if s.gen == nil || !s.gen.SupportsGrounding() {
		return nil, domain.ErrGroundingUnsupported
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", domain.ErrInvalidInput)
	}

	prompt := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptSourceSearch, DefaultPrompt), query, s.maxResults)
	resp, err := s.gen.Generate(ctx, driven.GenerateRequest{Prompt: prompt, Grounded: true})
	if err != nil {
		return nil, fmt.Errorf("grounded search: %w", err)
	}

	grounding := make(map[string]domain.SearchHit, len(resp.Sources))
	for _, src := range resp.Sources {
		grounding[src.URL] = src
	}

	seen := make(map[string]bool)
	var hits []domain.SearchHit
	for _, page := range parseListedPages(resp.Text) {
		u := strings.TrimSpace(page.URL)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		hit := domain.SearchHit{
			URL:        u,
			Title:      strings.TrimSpace(page.Title),
			Snippet:    strings.TrimSpace(page.Snippet),
			Confidence: clamp01(page.Relevance),
		}
		if src, ok := grounding[u]; ok && src.Confidence > 0 {
			hit.Confidence = src.Confidence
		}
		hits = append(hits, hit)
	}
	for _, src := range resp.Sources {
		if !seen[src.URL] {
			seen[src.URL] = true
			hits = append(hits, src)
		}
	}

	if len(hits) > s.maxResults {
		hits = hits[:s.maxResults]
	}
	logger.With("query", query).Debug("grounded search returned %d hits (%d grounding sources)", len(hits), len(resp.Sources))
	return hits, nil
}

// parseListedPages reads the JSON array from the model's answer. Models
// sometimes wrap it in prose or a code fence; anything unparseable yields
// no pages.
func parseListedPages(text string) []listedPage {
	text = domain.StripCodeFence(text)
	start, end := strings.Index(text, "["), strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil
	}
	var pages []listedPage
	if err := json.Unmarshal([]byte(text[start:end+1]), &pages); err != nil {
		logger.Debug("grounded search answer was not a JSON array: %v", err)
		return nil
	}
	return pages
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}

// loadPrompt loads a named prompt, falling back when no store is set or the
// prompt cannot be read.
func loadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	p, err := store.Load(name)
	if err != nil || strings.TrimSpace(p) == "" {
		return fallback
	}
	return p
}
