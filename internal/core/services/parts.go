package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixpath-cli/internal/logger"
)

// PartsLookup attaches purchase sources to the parts of a guide.
type PartsLookup struct {
	search  driven.PartsSearch
	maxLive int
}

// NewPartsLookup creates a parts lookup. The first maxLive parts get a live
// search; the rest get the category's default sources.
// The search parameter is optional.
func NewPartsLookup(search driven.PartsSearch, maxLive int) *PartsLookup {
	return &PartsLookup{search: search, maxLive: maxLive}
}

// Annotate fills Sources on every part of the guide. It never fails:
// a failed or empty live lookup degrades to default sources for that part.
func (p *PartsLookup) Annotate(ctx context.Context, guide *domain.RepairGuide, eq domain.EquipmentQuery, location string) {
	if guide == nil || len(guide.Parts) == 0 {
		return
	}

	var wg sync.WaitGroup
	for i := range guide.Parts {
		if p.search == nil || i >= p.maxLive {
			guide.Parts[i].Sources = domain.DefaultPartSources(eq.Category)
			continue
		}
		wg.Add(1)
		go func(part *domain.GuidePart) {
			defer wg.Done()
			sources, err := p.search.FindSources(ctx, *part, eq, location)
			if err != nil || len(sources) == 0 {
				if err != nil {
					logger.With("stage", "parts", "part", part.Name).Warn("lookup failed: %v", err)
				}
				part.Sources = domain.DefaultPartSources(eq.Category)
				return
			}
			part.Sources = sources
		}(&guide.Parts[i])
	}
	wg.Wait()
}
