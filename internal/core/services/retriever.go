package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driving"
	"github.com/custodia-labs/fixpath-cli/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// Retriever ranks stored chunks against a query by cosine similarity.
type Retriever struct {
	store    driven.ChunkStore
	embedder driven.EmbeddingService
	defaultK int
	minScore float64
}

// NewRetriever creates a retriever returning at most defaultK passages
// scoring at least minScore.
func NewRetriever(store driven.ChunkStore, embedder driven.EmbeddingService, defaultK int, minScore float64) *Retriever {
	if defaultK <= 0 {
		defaultK = domain.DefaultPipelineSettings().RetrievalTopK
	}
	return &Retriever{
		store:    store,
		embedder: embedder,
		defaultK: defaultK,
		minScore: minScore,
	}
}

// Retrieve returns the top-k passages of one store.
// An empty store or no passage above the threshold yields an empty result.
func (r *Retriever) Retrieve(ctx context.Context, storeID, query string, k int) ([]domain.RetrievedPassage, error) {
	return r.RetrieveAcross(ctx, []string{storeID}, query, k)
}

// RetrieveAcross scores every chunk of the given stores against one query
// embedding and returns the overall top-k. Unknown store IDs are skipped.
func (r *Retriever) RetrieveAcross(
	ctx context.Context, storeIDs []string, query string, k int,
) ([]domain.RetrievedPassage, error) {
	if k <= 0 {
		k = r.defaultK
	}
	query = strings.TrimSpace(query)
	if query == "" || len(storeIDs) == 0 {
		return nil, nil
	}

	var chunks []domain.DocumentChunk
	for _, id := range storeIDs {
		if id == "" {
			continue
		}
		cs, err := r.store.Chunks(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load chunks for %s: %w", id, err)
		}
		chunks = append(chunks, cs...)
	}
	if len(chunks) == 0 {
		logger.Debug("No chunks to retrieve from %v", storeIDs)
		return nil, nil
	}

	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	qvec, err := r.embedder.Embed(ctx, query, domain.EmbeddingTaskQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	passages := make([]domain.RetrievedPassage, 0, len(chunks))
	for _, ch := range chunks {
		score := CosineSimilarity(qvec, ch.Embedding)
		if score < r.minScore {
			continue
		}
		passages = append(passages, domain.RetrievedPassage{
			Chunk: ch,
			URL:   ch.DocumentURL,
			Score: score,
		})
	}
	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})
	if len(passages) > k {
		passages = passages[:k]
	}
	logger.Debug("Retrieved %d of %d chunks (k=%d, min=%.2f)", len(passages), len(chunks), k, r.minScore)
	return passages, nil
}

// Stores lists the stores in the chunk store.
func (r *Retriever) Stores(ctx context.Context) ([]domain.Store, error) {
	return r.store.List(ctx)
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Vectors of different length or with zero norm score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(sim) {
		return 0
	}
	return sim
}
