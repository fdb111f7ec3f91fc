package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fixpath-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
)

const cvJointText = `The constant velocity joint transfers torque to the front wheels while allowing them to steer.
A worn outer CV joint produces a clicking noise when turning, most noticeable in tight right or left turns.
Inspect the CV boot for tears and grease spray. Replace the axle assembly if the joint clicks under load.
Torque the axle nut to 181 ft-lbs after installation.`

func testEquipment() domain.EquipmentQuery {
	return domain.EquipmentQuery{Category: "vehicle", Make: "Honda", Model: "Accord", Year: "2019"}
}

func newTestCrawler(fetcher driven.PageFetcher, gen driven.GenerationService, cache driven.CrawlCache) *Crawler {
	return NewCrawler(fetcher, textNormaliser{}, gen, cache, domain.DefaultPipelineSettings())
}

func TestCrawler_Crawl_Distills(t *testing.T) {
	url := "https://www.2carpros.com/cv-joint"
	fetcher := &mockFetcher{pages: map[string]*domain.FetchedPage{url: htmlPage(url, "# CV Joint Guide\n"+cvJointText)}}
	distilled := "Outer CV joints click when turning. " + strings.Repeat("Replace the axle if the boot is torn. ", 6)
	gen := &mockGenerator{respond: func(req driven.GenerateRequest) (*driven.GenerateResponse, error) {
		return &driven.GenerateResponse{Text: distilled}, nil
	}}
	c := newTestCrawler(fetcher, gen, nil)

	doc, err := c.Crawl(context.Background(), domain.CrawlTarget{URL: url, Title: "search title"}, testEquipment())

	require.NoError(t, err)
	assert.Equal(t, url, doc.URL)
	assert.Equal(t, "CV Joint Guide", doc.Title)
	assert.True(t, doc.Distilled)
	assert.Equal(t, strings.TrimSpace(distilled), doc.Content)
	assert.True(t, doc.Metadata.HasTorqueSpecs)
	assert.Equal(t, domain.ContentTypeArticle, doc.ContentType)
	assert.False(t, doc.FetchedAt.IsZero())

	require.Len(t, gen.calls, 1)
	assert.Contains(t, gen.calls[0].Prompt, "2019 Honda Accord")
	assert.Contains(t, gen.calls[0].Prompt, NotRelevantSentinel)
	assert.Contains(t, gen.calls[0].Prompt, "constant velocity joint")
}

func TestCrawler_Crawl_NotRelevantFallsBackToRawText(t *testing.T) {
	url := "https://example.com/page"
	fetcher := &mockFetcher{pages: map[string]*domain.FetchedPage{url: htmlPage(url, cvJointText)}}
	gen := &mockGenerator{respond: func(driven.GenerateRequest) (*driven.GenerateResponse, error) {
		return &driven.GenerateResponse{Text: NotRelevantSentinel}, nil
	}}
	c := newTestCrawler(fetcher, gen, nil)

	doc, err := c.Crawl(context.Background(), domain.CrawlTarget{URL: url, Title: "Fallback title"}, testEquipment())

	require.NoError(t, err)
	assert.False(t, doc.Distilled)
	assert.Equal(t, "Fallback title", doc.Title)
	assert.Contains(t, doc.Content, "constant velocity joint")
}

func TestCrawler_Crawl_DistillErrorFallsBack(t *testing.T) {
	url := "https://example.com/page"
	fetcher := &mockFetcher{pages: map[string]*domain.FetchedPage{url: htmlPage(url, cvJointText)}}
	gen := &mockGenerator{respond: func(driven.GenerateRequest) (*driven.GenerateResponse, error) {
		return nil, domain.ErrRateLimited
	}}
	c := newTestCrawler(fetcher, gen, nil)

	doc, err := c.Crawl(context.Background(), domain.CrawlTarget{URL: url}, testEquipment())

	require.NoError(t, err)
	assert.False(t, doc.Distilled)
	assert.Contains(t, doc.Content, "CV boot")
}

func TestCrawler_Crawl_FallbackTruncated(t *testing.T) {
	url := "https://example.com/long"
	long := strings.Repeat("Inspect the joint. ", 1000)
	fetcher := &mockFetcher{pages: map[string]*domain.FetchedPage{url: htmlPage(url, long)}}
	cfg := domain.DefaultPipelineSettings()
	cfg.MaxFallbackContent = 100
	c := NewCrawler(fetcher, textNormaliser{}, nil, nil, cfg)

	doc, err := c.Crawl(context.Background(), domain.CrawlTarget{URL: url}, testEquipment())

	require.NoError(t, err)
	assert.LessOrEqual(t, len(doc.Content), 100)
}

func TestCrawler_Crawl_TextTooShort(t *testing.T) {
	url := "https://example.com/short"
	fetcher := &mockFetcher{pages: map[string]*domain.FetchedPage{url: htmlPage(url, "Too short to use.")}}
	cache := memory.NewCrawlCache()
	c := newTestCrawler(fetcher, nil, cache)

	doc, err := c.Crawl(context.Background(), domain.CrawlTarget{URL: url}, testEquipment())

	require.ErrorIs(t, err, domain.ErrContentTooShort)
	assert.Nil(t, doc)
	assert.Equal(t, 0, cache.Len(), "rejected pages are never cached")
}

func TestCrawler_Crawl_RawBodyTooSmall(t *testing.T) {
	url := "https://example.com/tiny"
	page := &domain.FetchedPage{URL: url, StatusCode: 200, ContentType: "text/html", Body: []byte("<p>tiny</p>")}
	fetcher := &mockFetcher{pages: map[string]*domain.FetchedPage{url: page}}
	c := newTestCrawler(fetcher, nil, nil)

	_, err := c.Crawl(context.Background(), domain.CrawlTarget{URL: url}, testEquipment())

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, domain.ErrFetchRejected)
}

func TestCrawler_Crawl_FetchError(t *testing.T) {
	c := newTestCrawler(&mockFetcher{}, nil, nil)

	_, err := c.Crawl(context.Background(), domain.CrawlTarget{URL: "https://example.com/missing"}, testEquipment())

	assert.ErrorIs(t, err, domain.ErrFetchRejected)
}

func TestCrawler_Crawl_CacheHitSkipsNetwork(t *testing.T) {
	url := "https://example.com/page"
	fetcher := &mockFetcher{pages: map[string]*domain.FetchedPage{url: htmlPage(url, cvJointText)}}
	cache := memory.NewCrawlCache()
	c := newTestCrawler(fetcher, nil, cache)
	target := domain.CrawlTarget{URL: url}

	first, err := c.Crawl(context.Background(), target, testEquipment())
	require.NoError(t, err)
	second, err := c.Crawl(context.Background(), target, testEquipment())
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.callCount(url))
	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, 1, cache.Len())
}

func TestCrawler_Crawl_PromptStoreOverride(t *testing.T) {
	url := "https://example.com/page"
	fetcher := &mockFetcher{pages: map[string]*domain.FetchedPage{url: htmlPage(url, cvJointText)}}
	gen := &mockGenerator{}
	c := newTestCrawler(fetcher, gen, nil)
	c.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptDistill: "CUSTOM %s %s %s",
	}})

	_, err := c.Crawl(context.Background(), domain.CrawlTarget{URL: url}, testEquipment())

	require.NoError(t, err)
	require.Len(t, gen.calls, 1)
	assert.True(t, strings.HasPrefix(gen.calls[0].Prompt, "CUSTOM 2019 Honda Accord NOT_RELEVANT"))
}

func TestCrawler_CrawlAll_DropsFailures(t *testing.T) {
	good1 := "https://example.com/1"
	good2 := "https://example.com/2"
	fetcher := &mockFetcher{pages: map[string]*domain.FetchedPage{
		good1: htmlPage(good1, cvJointText),
		good2: htmlPage(good2, cvJointText),
	}}
	c := newTestCrawler(fetcher, nil, nil)
	targets := []domain.CrawlTarget{{URL: good1}, {URL: "https://example.com/404"}, {URL: good2}}

	docs, errs := c.CrawlAll(context.Background(), targets, testEquipment())

	require.Len(t, docs, 2)
	assert.Equal(t, good1, docs[0].URL)
	assert.Equal(t, good2, docs[1].URL)
	assert.Len(t, errs, 1)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 10))
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.Equal(t, "abc", truncateRunes("abc", 0))
	// "é" is two bytes; cutting inside it backs off to the rune start.
	assert.Equal(t, "a", truncateRunes("aé", 2))
}
