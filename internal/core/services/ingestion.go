package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixpath-cli/internal/logger"
)

// Ingestor runs one ingestion pass: queries, discovery, crawl, chunk, index.
type Ingestor struct {
	planner   *QuerySynthesizer
	discovery *SourceDiscovery
	crawler   *Crawler
	chunker   driven.Chunker
	indexer   *Indexer

	newSuffix func() string
	now       func() time.Time
}

// NewIngestor creates an ingestor from its stages.
func NewIngestor(
	planner *QuerySynthesizer,
	discovery *SourceDiscovery,
	crawler *Crawler,
	chunker driven.Chunker,
	indexer *Indexer,
) *Ingestor {
	return &Ingestor{
		planner:   planner,
		discovery: discovery,
		crawler:   crawler,
		chunker:   chunker,
		indexer:   indexer,
		newSuffix: newStoreSuffix,
		now:       time.Now,
	}
}

// Ingest populates a new store for eq. It never returns an error: failures
// are recorded in the result, and Success is true only when at least one
// chunk was indexed.
func (in *Ingestor) Ingest(ctx context.Context, eq domain.EquipmentQuery, origin domain.StoreOrigin) *domain.IngestionResult {
	start := in.now()
	logger.Section(fmt.Sprintf("Ingestion (%s)", origin))

	var errs []error
	result := func(docsFound, docsCrawled, chunks int, storeID string) *domain.IngestionResult {
		msgs := make([]string, 0, len(errs))
		for _, err := range errs {
			msgs = append(msgs, err.Error())
		}
		end := in.now()
		return &domain.IngestionResult{
			Success:          chunks > 0,
			DocumentsFound:   docsFound,
			DocumentsCrawled: docsCrawled,
			ChunksCreated:    chunks,
			StoreID:          storeID,
			Errors:           msgs,
			Elapsed:          end.Sub(start),
			CompletedAt:      end,
		}
	}

	queries := in.planner.Queries(eq)
	if len(queries) == 0 {
		errs = append(errs, errors.New("no search queries for equipment"))
		return result(0, 0, 0, "")
	}
	logger.Debug("Synthesized %d queries", len(queries))

	targets, discoverErrs := in.discovery.Discover(ctx, queries, eq.Category)
	errs = append(errs, discoverErrs...)
	if len(targets) == 0 {
		errs = append(errs, errors.New("no candidate sources found"))
		return result(0, 0, 0, "")
	}

	docs, crawlErrs := in.crawler.CrawlAll(ctx, targets, eq)
	errs = append(errs, crawlErrs...)
	if len(docs) == 0 {
		return result(len(targets), 0, 0, "")
	}

	var chunks []domain.DocumentChunk
	for _, doc := range docs {
		chunks = append(chunks, in.chunker.Chunk(doc)...)
	}
	if len(chunks) == 0 {
		return result(len(targets), len(docs), 0, "")
	}

	info := domain.Store{
		ID:           domain.NewStoreID(eq, in.newSuffix()),
		EquipmentKey: eq.Key(),
		Origin:       origin,
	}
	stored, err := in.indexer.Index(ctx, info, chunks)
	if err != nil {
		errs = append(errs, fmt.Errorf("index: %w", err))
	}
	if stored == 0 {
		return result(len(targets), len(docs), 0, "")
	}

	res := result(len(targets), len(docs), stored, info.ID)
	logger.Info("Ingestion %s: %d targets, %d documents, %d chunks in %s",
		origin, res.DocumentsFound, res.DocumentsCrawled, res.ChunksCreated, res.Elapsed)
	return res
}
