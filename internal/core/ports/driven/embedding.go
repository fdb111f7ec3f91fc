package driven

import (
	"context"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

// EmbeddingService generates vector embeddings from text.
// Implementations may use local models (Ollama) or cloud APIs (Gemini, OpenAI).
// This is an OPTIONAL interface - without it, retrieval is disabled.
type EmbeddingService interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string, task domain.EmbeddingTask) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// The result is order-preserving: result[i] belongs to texts[i].
	EmbedBatch(ctx context.Context, texts []string, task domain.EmbeddingTask) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates that the service is reachable and configured correctly.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
