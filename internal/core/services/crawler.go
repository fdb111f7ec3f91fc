package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixpath-cli/internal/logger"
)

// NotRelevantSentinel is the marker the distillation prompt asks the model
// to return for pages without repair content.
const NotRelevantSentinel = "NOT_RELEVANT"

const defaultDistillPrompt = `You are extracting repair documentation for: %s.
From the web page text below, keep only content useful for diagnosing or repairing this equipment:
procedures, specifications (torque values, part numbers, clearances), symptoms, causes and safety notes.
Drop navigation, ads, comments unrelated to the repair and boilerplate.
Write plain prose and numbered steps, no markdown headings.
If the page contains nothing relevant to repairing this equipment, reply with exactly %s.

PAGE TEXT:
%s`

// Crawler fetches, cleans and distills crawl targets into documents.
// It is stateless apart from the session's crawl cache.
type Crawler struct {
	fetcher     driven.PageFetcher
	normalisers driven.NormaliserRegistry
	generator   driven.GenerationService
	cache       driven.CrawlCache
	prompts     driven.PromptStore
	cfg         domain.PipelineSettings
	now         func() time.Time
}

// NewCrawler creates a crawler.
// The generator parameter is optional; without it no distillation happens.
func NewCrawler(
	fetcher driven.PageFetcher,
	normalisers driven.NormaliserRegistry,
	generator driven.GenerationService,
	cache driven.CrawlCache,
	cfg domain.PipelineSettings,
) *Crawler {
	return &Crawler{
		fetcher:     fetcher,
		normalisers: normalisers,
		generator:   generator,
		cache:       cache,
		cfg:         cfg,
		now:         time.Now,
	}
}

// SetPromptStore sets the prompt store for the distillation prompt.
func (c *Crawler) SetPromptStore(store driven.PromptStore) {
	c.prompts = store
}

// CrawlAll crawls targets in parallel up to the configured cap. Failed
// targets are dropped and their errors returned; documents keep target order.
func (c *Crawler) CrawlAll(
	ctx context.Context, targets []domain.CrawlTarget, eq domain.EquipmentQuery,
) ([]*domain.CrawledDocument, []error) {
	logger.Section("Crawl")

	docs := make([]*domain.CrawledDocument, len(targets))
	errs := make([]error, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, c.cfg.FetchConcurrency))
	for i, target := range targets {
		g.Go(func() error {
			doc, err := c.Crawl(gctx, target, eq)
			if err != nil {
				logger.With("stage", "crawl", "url", target.URL).Warn("crawl failed: %v", err)
				errs[i] = err
				return nil
			}
			docs[i] = doc
			return nil
		})
	}
	// Workers record failures in errs and always return nil.
	_ = g.Wait()

	out := make([]*domain.CrawledDocument, 0, len(docs))
	for _, doc := range docs {
		if doc != nil {
			out = append(out, doc)
		}
	}
	logger.Info("Crawled %d of %d targets", len(out), len(targets))
	return out, compactErrors(errs)
}

// Crawl fetches one target. A cache hit skips the network entirely.
// Hard failures (fetch rejected, timeout, text too short) return an error;
// a failed or negative distillation falls back to the extracted text.
func (c *Crawler) Crawl(
	ctx context.Context, target domain.CrawlTarget, eq domain.EquipmentQuery,
) (*domain.CrawledDocument, error) {
	if c.cache != nil {
		if doc, ok := c.cache.Get(target.URL); ok {
			logger.Debug("Cache hit for %s", target.URL)
			return doc, nil
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	page, err := c.fetcher.Fetch(fetchCtx, target.URL)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if len(page.Body) < c.cfg.MinRawBytes {
		return nil, &domain.FetchError{
			URL:    target.URL,
			Reason: fmt.Sprintf("body too small (%d bytes)", len(page.Body)),
		}
	}

	mediaType, _, _ := mime.ParseMediaType(page.ContentType)
	result, err := c.normalisers.Normalise(ctx, &domain.RawContent{
		URI:       target.URL,
		MIMEType:  mediaType,
		Content:   page.Body,
		TitleHint: target.Title,
	})
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	text := strings.TrimSpace(result.Text)
	if len(text) < c.cfg.MinContentLength {
		return nil, fmt.Errorf("%w: %d chars", domain.ErrContentTooShort, len(text))
	}

	content, distilled := c.distill(ctx, text, eq)

	title := result.Title
	if title == "" {
		title = target.Title
	}
	doc := &domain.CrawledDocument{
		URL:         target.URL,
		Title:       title,
		Content:     content,
		ContentType: classifyContent(target.URL, text),
		Metadata:    extractionMetadata(text, result.HasImages),
		Distilled:   distilled,
		FetchedAt:   c.now(),
	}
	if c.cache != nil {
		c.cache.Put(doc)
	}
	return doc, nil
}

// distill asks the generator for repair-relevant content. Any failure, a
// NOT_RELEVANT reply or a reply below the minimum length yields the raw
// text truncated instead.
func (c *Crawler) distill(ctx context.Context, text string, eq domain.EquipmentQuery) (string, bool) {
	fallback := truncateRunes(text, c.cfg.MaxFallbackContent)
	if c.generator == nil {
		return fallback, false
	}

	prompt := fmt.Sprintf(loadPrompt(c.prompts, driven.PromptDistill, defaultDistillPrompt),
		eq.String(), NotRelevantSentinel, truncateRunes(text, c.cfg.MaxDistillInput))
	resp, err := c.generator.Generate(ctx, driven.GenerateRequest{Prompt: prompt})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Debug("Distillation failed, using raw text: %v", err)
		}
		return fallback, false
	}

	out := strings.TrimSpace(resp.Text)
	if strings.Contains(out, NotRelevantSentinel) {
		logger.Debug("Distillation reported page not relevant, using raw text")
		return fallback, false
	}
	if len(out) < c.cfg.MinContentLength {
		return fallback, false
	}
	return out, true
}

// truncateRunes cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncateRunes(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
