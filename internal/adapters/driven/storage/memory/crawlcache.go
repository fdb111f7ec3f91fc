package memory

import (
	"sync"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
)

// Ensure CrawlCache implements the interface.
var _ driven.CrawlCache = (*CrawlCache)(nil)

// CrawlCache is an unbounded map of crawled documents keyed by URL.
type CrawlCache struct {
	mu   sync.RWMutex
	docs map[string]domain.CrawledDocument
}

// NewCrawlCache creates an empty crawl cache.
func NewCrawlCache() *CrawlCache {
	return &CrawlCache{docs: make(map[string]domain.CrawledDocument)}
}

// Get returns a copy of the cached document for url.
func (c *CrawlCache) Get(url string) (*domain.CrawledDocument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[url]
	if !ok {
		return nil, false
	}
	return &doc, true
}

// Put caches doc under its URL, replacing any earlier entry.
func (c *CrawlCache) Put(doc *domain.CrawledDocument) {
	if doc == nil || doc.URL == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[doc.URL] = *doc
}

// Len returns the number of cached documents.
func (c *CrawlCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}
