package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixpath-cli/internal/logger"
)

// SourceDiscovery turns search queries into ranked crawl targets.
type SourceDiscovery struct {
	search driven.WebSearch
	cfg    domain.PipelineSettings
}

// NewSourceDiscovery creates a source discovery stage.
// The search parameter is optional; without it no candidates are found.
func NewSourceDiscovery(search driven.WebSearch, cfg domain.PipelineSettings) *SourceDiscovery {
	return &SourceDiscovery{search: search, cfg: cfg}
}

// Discover runs every query against the web search with bounded concurrency,
// deduplicates candidates by URL (first occurrence wins, in query order),
// rescores them against the trusted-source table for category and returns
// the top candidates. Per-query failures are returned alongside the targets
// and never abort the batch.
func (d *SourceDiscovery) Discover(
	ctx context.Context, queries []string, category string,
) ([]domain.CrawlTarget, []error) {
	logger.Section("Source Discovery")
	if d.search == nil {
		logger.Warn("No web search configured, skipping discovery")
		return nil, nil
	}
	if len(queries) == 0 {
		return nil, nil
	}

	hits := make([][]domain.SearchHit, len(queries))
	errs := make([]error, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, d.cfg.DiscoveryConcurrency))
	for i, q := range queries {
		g.Go(func() error {
			if gctx.Err() != nil {
				errs[i] = gctx.Err()
				return nil
			}
			res, err := d.search.Search(gctx, q)
			if err != nil {
				logger.With("stage", "discovery", "query", q).Warn("search failed: %v", err)
				errs[i] = fmt.Errorf("search %q: %w", q, err)
				return nil
			}
			logger.Debug("Query %q returned %d hits", q, len(res))
			hits[i] = res
			return nil
		})
	}
	// Workers log their own failures and always return nil.
	_ = g.Wait()

	targets := d.rank(hits, category)
	logger.Info("Discovered %d crawl targets from %d queries", len(targets), len(queries))
	return targets, compactErrors(errs)
}

// rank flattens hits in query order, drops malformed and duplicate URLs,
// scores the survivors and truncates to the configured cap.
func (d *SourceDiscovery) rank(hits [][]domain.SearchHit, category string) []domain.CrawlTarget {
	seen := make(map[string]struct{})
	var targets []domain.CrawlTarget
	for _, perQuery := range hits {
		for _, hit := range perQuery {
			u := strings.TrimSpace(hit.URL)
			if !domain.ValidWebURL(u) {
				logger.Debug("Dropping malformed URL %q", hit.URL)
				continue
			}
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}

			target := domain.CrawlTarget{
				URL:     u,
				Title:   hit.Title,
				Snippet: hit.Snippet,
				Domain:  domain.HostOf(u),
			}
			target.Score, target.Trusted = d.score(target.Domain, category, hit.Confidence)
			targets = append(targets, target)
		}
	}

	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].Score > targets[j].Score
	})
	if limit := d.cfg.MaxCrawlTargets; limit > 0 && len(targets) > limit {
		targets = targets[:limit]
	}
	return targets
}

// score blends the engine signal with the trusted-source weight.
// Trusted domains score weight*signal + bonus; others signal*discount.
func (d *SourceDiscovery) score(host, category string, signal float64) (float64, bool) {
	if signal <= 0 {
		signal = d.cfg.DefaultSignal
	}
	if src, ok := domain.LookupTrustedSource(host, category); ok {
		return src.Weight*signal + d.cfg.TrustedBonus, true
	}
	return signal * d.cfg.UntrustedDiscount, false
}

func compactErrors(errs []error) []error {
	out := errs[:0:0]
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}
