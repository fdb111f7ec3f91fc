package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/custodia-labs/fixpath-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/fixpath-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/fixpath-cli/internal/adapters/driven/fetch/httpfetch"
	partsearch "github.com/custodia-labs/fixpath-cli/internal/adapters/driven/parts/grounded"
	websearch "github.com/custodia-labs/fixpath-cli/internal/adapters/driven/search/grounded"
	"github.com/custodia-labs/fixpath-cli/internal/adapters/driven/search/programmable"
	"github.com/custodia-labs/fixpath-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/fixpath-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/fixpath-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixpath-cli/internal/core/services"
	"github.com/custodia-labs/fixpath-cli/internal/logger"
	"github.com/custodia-labs/fixpath-cli/internal/normalisers"
	"github.com/custodia-labs/fixpath-cli/internal/postprocessors/chunker"
)

// build wires the adapters and services for one command invocation.
// Settings commands get only the settings service and query planner; the
// pipeline is assembled when opts.Pipeline is set.
func build(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	planner := services.NewQuerySynthesizer(settings.Pipeline.MinQueryLength)

	svc := &cli.Services{
		Planner:  planner,
		Settings: settingsService,
	}
	if !opts.Pipeline {
		return svc, nil
	}

	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	aiServices := ai.Initialise(settings)
	closers = append(closers, aiServices.Close)

	store, closeStore, err := openChunkStore(settings.Store, opts.ConfigDir)
	if err != nil {
		closeAll()
		return nil, err
	}
	if closeStore != nil {
		closers = append(closers, closeStore)
	}

	prompts, err := openPromptStore(settings.PromptsDir, opts.ConfigDir)
	if err != nil {
		closeAll()
		return nil, err
	}

	cfg := settings.Pipeline
	gen := aiServices.GenerationService
	embedder := aiServices.EmbeddingService
	registry := normalisers.NewDefaultRegistry()
	chunks := chunker.New(
		chunker.WithChunkSize(cfg.ChunkSize),
		chunker.WithOverlapWords(cfg.OverlapWords),
		chunker.WithMinLength(cfg.MinChunkLength),
	)

	fetcher := httpfetch.New(
		httpfetch.WithClient(&http.Client{Timeout: cfg.FetchTimeout}),
		httpfetch.WithUserAgent(cfg.UserAgent),
		httpfetch.WithMaxBytes(cfg.MaxRawBytes),
		httpfetch.WithRateLimit(cfg.PerHostRate, cfg.PerHostBurst),
	)

	search, err := newWebSearch(ctx, gen, settings.Search, prompts)
	if err != nil {
		closeAll()
		return nil, err
	}
	partsSearch := partsearch.New(gen)
	partsSearch.SetPromptStore(prompts)

	session := services.NewSession(store, memory.NewCrawlCache())
	indexer := services.NewIndexer(store, embedder, cfg.EmbedBatchSize, cfg.EmbedBatchDelay)
	retriever := services.NewRetriever(store, embedder, cfg.RetrievalTopK, cfg.MinRetrievalScore)

	crawler := services.NewCrawler(fetcher, registry, gen, session.Cache(), cfg)
	crawler.SetPromptStore(prompts)
	ingestor := services.NewIngestor(planner, services.NewSourceDiscovery(search, cfg), crawler, chunks, indexer)

	diagnoser := services.NewDiagnoser(gen)
	diagnoser.SetPromptStore(prompts)
	synthesizer := services.NewGuideSynthesizer(gen)
	synthesizer.SetPromptStore(prompts)

	orchestrator := services.NewRepairOrchestrator(services.OrchestratorDeps{
		Session:     session,
		Diagnoser:   diagnoser,
		Ingestor:    ingestor,
		Indexer:     indexer,
		Retriever:   retriever,
		Synthesizer: synthesizer,
		Parts:       services.NewPartsLookup(partsSearch, cfg.MaxLivePartLookups),
		Generator:   gen,
	}, cfg)
	orchestrator.SetPromptStore(prompts)

	if n, err := session.RestoreManuals(ctx); err != nil {
		logger.Warn("restoring registered manuals: %v", err)
	} else if n > 0 {
		logger.Info("restored %d registered manuals", n)
	}

	svc.Repair = orchestrator
	svc.Manual = services.NewManualService(session, registry, chunks, indexer, cfg.MinContentLength)
	svc.Retrieval = retriever
	svc.Prompts = prompts
	svc.Warnings = aiServices.Warnings
	svc.Close = closeAll
	return svc, nil
}

// openChunkStore returns the configured chunk store and its close func.
func openChunkStore(cfg domain.StoreSettings, configDir string) (driven.ChunkStore, func(), error) {
	if cfg.Backend != domain.StoreBackendSQLite {
		return memory.NewChunkStore(), nil, nil
	}
	dataDir := cfg.Path
	if dataDir == "" {
		dataDir = filepath.Join(configDir, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening chunk store: %w", err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing chunk store: %v", err)
		}
	}, nil
}

// openPromptStore reads prompt overrides from dir, defaulting to
// <configDir>/prompts, with the built-in templates as fallbacks.
func openPromptStore(dir, configDir string) (*file.PromptStore, error) {
	if dir == "" {
		dir = filepath.Join(configDir, "prompts")
	}
	defaults := services.DefaultPrompts()
	defaults[driven.PromptSourceSearch] = websearch.DefaultPrompt
	defaults[driven.PromptPartsSearch] = partsearch.DefaultPrompt

	prompts, err := file.NewPromptStore(dir, defaults)
	if err != nil {
		return nil, fmt.Errorf("opening prompt store: %w", err)
	}
	return prompts, nil
}

// newWebSearch grounds discovery in the generation provider when it can, and
// falls back to Programmable Search when that is configured.
func newWebSearch(ctx context.Context, gen driven.GenerationService, cfg domain.SearchSettings, prompts driven.PromptStore) (driven.WebSearch, error) {
	if (gen == nil || !gen.SupportsGrounding()) && cfg.IsConfigured() {
		search, err := programmable.New(ctx, programmable.Config{APIKey: cfg.APIKey, EngineID: cfg.EngineID})
		if err != nil {
			return nil, err
		}
		logger.Info("source discovery uses Programmable Search")
		return search, nil
	}
	search := websearch.New(gen)
	search.SetPromptStore(prompts)
	return search, nil
}
