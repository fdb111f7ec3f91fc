// Package grounded finds replacement part sellers with a grounded
// generation call.
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

// Ensure PartsSearch implements the interfaces.
var (
	_ driven.PartsSearch      = (*PartsSearch)(nil)
	_ driven.PromptStoreAware = (*PartsSearch)(nil)
)

// Defaults.
const (
	DefaultLocation   = "United States"
	DefaultMaxSources = 5
)

// DefaultPrompt is the parts_search template used when no custom prompt is set.
const DefaultPrompt = `Find where to buy this replacement part: %s
It is for: %s
The buyer is located in: %s

Search current listings. Return ONLY a JSON array (no prose) of up to 5 objects:
  "name": the seller,
  "url": the listing page,
  "price": the listed price with currency, or "" if unknown,
  "availability": "in stock", "backorder" or "".`

// PartsSearch asks a grounded model for part listings.
type PartsSearch struct {
	gen        driven.GenerationService
	prompts    driven.PromptStore
	maxSources int
}

// New creates a parts search over gen.
func New(gen driven.GenerationService) *PartsSearch {
	return &PartsSearch{gen: gen, maxSources: DefaultMaxSources}
}

// SetPromptStore sets the prompt store for the parts prompt.
func (p *PartsSearch) SetPromptStore(store driven.PromptStore) {
	p.prompts = store
}

// FindSources returns live sellers for part. An empty result is valid;
// callers fall back to default sources.
func (p *PartsSearch) FindSources(
	ctx context.Context, part domain.GuidePart, equipment domain.EquipmentQuery, location string,
) ([]domain.PartSource, error) {
	if p.gen == nil || !p.gen.SupportsGrounding() {
		return nil, domain.ErrGroundingUnsupported
	}
	query := strings.TrimSpace(part.Query())
	if query == "" {
		return nil, fmt.Errorf("%w: part has no name", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(location) == "" {
		location = DefaultLocation
	}

	template := DefaultPrompt
	if p.prompts != nil {
		if custom, err := p.prompts.Load(driven.PromptPartsSearch); err == nil && strings.TrimSpace(custom) != "" {
			template = custom
		}
	}
	prompt := fmt.Sprintf(template, query, equipment.String(), location)

	resp, err := p.gen.Generate(ctx, driven.GenerateRequest{Prompt: prompt, Grounded: true})
	if err != nil {
		return nil, fmt.Errorf("parts search: %w", err)
	}

	sources := parseSources(resp.Text)
	if len(sources) == 0 {
		// The answer held no listing; the pages it was grounded on still
		// point at sellers.
		for _, src := range resp.Sources {
			sources = append(sources, domain.PartSource{Name: sourceName(src), URL: src.URL})
		}
	}
	if len(sources) > p.maxSources {
		sources = sources[:p.maxSources]
	}
	logger.With("part", query).Debug("parts search returned %d sources", len(sources))
	return sources, nil
}

func parseSources(text string) []domain.PartSource {
	text = domain.StripCodeFence(text)
	start, end := strings.Index(text, "["), strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil
	}
	var listed []domain.PartSource
	if err := json.Unmarshal([]byte(text[start:end+1]), &listed); err != nil {
		logger.Debug("parts answer was not a JSON array: %v", err)
		return nil
	}

	var sources []domain.PartSource
	seen := make(map[string]bool)
	for _, s := range listed {
		s.Name = strings.TrimSpace(s.Name)
		s.URL = strings.TrimSpace(s.URL)
		if s.Name == "" {
			continue
		}
		if !domain.ValidWebURL(s.URL) {
			s.URL = ""
		}
		key := strings.ToLower(s.Name) + "|" + s.URL
		if seen[key] {
			continue
		}
		seen[key] = true
		s.Price = strings.TrimSpace(s.Price)
		s.Availability = strings.TrimSpace(s.Availability)
		s.Default = false
		sources = append(sources, s)
	}
	return sources
}

func sourceName(hit domain.SearchHit) string {
	if t := strings.TrimSpace(hit.Title); t != "" {
		return t
	}
	return domain.HostOf(hit.URL)
}
