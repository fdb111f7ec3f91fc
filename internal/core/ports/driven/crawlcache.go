package driven

import "github.com/custodia-labs/fixpath-cli/internal/core/domain"

// CrawlCache holds crawled documents by URL for the lifetime of a session.
type CrawlCache interface {
	Get(url string) (*domain.CrawledDocument, bool)
	Put(doc *domain.CrawledDocument)
	Len() int
}
