package driven

import "github.com/custodia-labs/fixpath-cli/internal/core/domain"

// Chunker splits a crawled document into passages.
// Implementations must be deterministic.
type Chunker interface {
	// Name returns the chunker name for logging and configuration.
	Name() string

	// Chunk returns the document's passages, without embeddings.
	Chunk(doc *domain.CrawledDocument) []domain.DocumentChunk
}
