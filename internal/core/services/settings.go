package services

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyGenProvider     = "generation.provider"
	keyGenModel        = "generation.model"
	keyGenBaseURL      = "generation.base_url"
	keyGenAPIKey       = "generation.api_key"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDims       = "embedding.dimensions"
	keyEmbedBatchSize  = "embedding.batch_size"
	keyEmbedBatchDelay = "embedding.batch_delay"
	keyStoreBackend    = "store.backend"
	keyStorePath       = "store.path"
	keyPromptsDir      = "prompts.dir"
	keySearchAPIKey    = "search.api_key"
	keySearchEngineID  = "search.engine_id"
)

// Environment variables consulted when Programmable Search is not configured.
const (
	envSearchAPIKey   = "GOOGLE_SEARCH_API_KEY"
	envSearchEngineID = "GOOGLE_SEARCH_ENGINE_ID"
)

// Environment variables consulted when no API key is configured.
var apiKeyEnv = map[domain.AIProvider][]string{
	domain.AIProviderGemini: {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	domain.AIProviderOpenAI: {"OPENAI_API_KEY"},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// API keys fall back to the provider's environment variables.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Generation: domain.GenerationSettings{
			Provider: s.getProvider(keyGenProvider, defaults.Generation.Provider),
			BaseURL:  s.configStore.GetString(keyGenBaseURL),
			APIKey:   s.configStore.GetString(keyGenAPIKey),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.getInt(keyEmbedDims, defaults.Embedding.Dimensions),
		},
		Pipeline: s.getPipeline(defaults.Pipeline),
		Store: domain.StoreSettings{
			Backend: s.getBackend(defaults.Store.Backend),
			Path:    s.configStore.GetString(keyStorePath),
		},
		Search: domain.SearchSettings{
			APIKey:   s.configStore.GetString(keySearchAPIKey),
			EngineID: s.configStore.GetString(keySearchEngineID),
		},
		PromptsDir: s.configStore.GetString(keyPromptsDir),
	}
	settings.Generation.Model = s.getString(keyGenModel, domain.DefaultGenerationModels()[settings.Generation.Provider])
	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])

	if settings.Generation.APIKey == "" {
		settings.Generation.APIKey = s.envAPIKey(settings.Generation.Provider)
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.envAPIKey(settings.Embedding.Provider)
	}
	if settings.Search.APIKey == "" {
		settings.Search.APIKey = s.getenv(envSearchAPIKey)
	}
	if settings.Search.EngineID == "" {
		settings.Search.EngineID = s.getenv(envSearchEngineID)
	}

	return settings, nil
}

// Save persists application settings.
// Pipeline thresholds are not written back; they are edited in the config file.
func (s *SettingsService) Save(settings *domain.Settings) error {
	// Save generation settings
	if err := s.configStore.Set(keyGenProvider, settings.Generation.Provider.String()); err != nil {
		return fmt.Errorf("save generation provider: %w", err)
	}
	if err := s.configStore.Set(keyGenModel, settings.Generation.Model); err != nil {
		return fmt.Errorf("save generation model: %w", err)
	}
	if err := s.configStore.Set(keyGenBaseURL, settings.Generation.BaseURL); err != nil {
		return fmt.Errorf("save generation base_url: %w", err)
	}
	if settings.Generation.APIKey != "" {
		if err := s.configStore.Set(keyGenAPIKey, settings.Generation.APIKey); err != nil {
			return fmt.Errorf("save generation api_key: %w", err)
		}
	}

	// Save embedding settings
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if err := s.configStore.Set(keyEmbedDims, settings.Embedding.Dimensions); err != nil {
		return fmt.Errorf("save embedding dimensions: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	// Save store settings
	if err := s.configStore.Set(keyStoreBackend, string(settings.Store.Backend)); err != nil {
		return fmt.Errorf("save store backend: %w", err)
	}
	if settings.Store.Path != "" {
		if err := s.configStore.Set(keyStorePath, settings.Store.Path); err != nil {
			return fmt.Errorf("save store path: %w", err)
		}
	}

	// Save search settings
	if settings.Search.APIKey != "" {
		if err := s.configStore.Set(keySearchAPIKey, settings.Search.APIKey); err != nil {
			return fmt.Errorf("save search api_key: %w", err)
		}
	}
	if settings.Search.EngineID != "" {
		if err := s.configStore.Set(keySearchEngineID, settings.Search.EngineID); err != nil {
			return fmt.Errorf("save search engine_id: %w", err)
		}
	}

	return nil
}

// SetGenerationProvider configures the generation provider.
func (s *SettingsService) SetGenerationProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllGenerationProviders(), provider) {
		return fmt.Errorf("provider %s does not support generation", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Generation.Provider = provider
	if model == "" {
		model = domain.DefaultGenerationModels()[provider]
	}
	settings.Generation.Model = model
	settings.Generation.BaseURL = ""
	settings.Generation.APIKey = apiKey

	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.Model = model

	// Local providers need a base URL
	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey

	// Providers that cannot truncate vectors keep their native size
	if d, ok := domain.EmbeddingDimensions()[model]; ok && (provider.IsLocal() || d < settings.Embedding.Dimensions) {
		settings.Embedding.Dimensions = d
	}

	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// ValidateGenerationConfig validates the current generation configuration by pinging the provider.
func (s *SettingsService) ValidateGenerationConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateGeneration(&settings.Generation)
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// getPipeline overlays configured thresholds on the defaults.
func (s *SettingsService) getPipeline(p domain.PipelineSettings) domain.PipelineSettings {
	p.MinQueryLength = s.getInt("pipeline.min_query_length", p.MinQueryLength)
	p.DiscoveryConcurrency = s.getInt("pipeline.discovery_concurrency", p.DiscoveryConcurrency)
	p.MaxCrawlTargets = s.getInt("pipeline.max_crawl_targets", p.MaxCrawlTargets)
	p.TrustedBonus = s.getFloat("pipeline.trusted_bonus", p.TrustedBonus)
	p.UntrustedDiscount = s.getFloat("pipeline.untrusted_discount", p.UntrustedDiscount)
	p.DefaultSignal = s.getFloat("pipeline.default_signal", p.DefaultSignal)
	p.MinChunksThreshold = s.getInt("pipeline.min_chunks", p.MinChunksThreshold)
	p.MinContextChars = s.getInt("pipeline.min_context_chars", p.MinContextChars)
	p.MaxLivePartLookups = s.getInt("pipeline.max_live_part_lookups", p.MaxLivePartLookups)
	p.PipelineTimeout = s.getDuration("pipeline.timeout", p.PipelineTimeout)

	p.FetchTimeout = s.getDuration("crawler.fetch_timeout", p.FetchTimeout)
	p.FetchConcurrency = s.getInt("crawler.fetch_concurrency", p.FetchConcurrency)
	p.PerHostRate = s.getFloat("crawler.per_host_rate", p.PerHostRate)
	p.PerHostBurst = s.getInt("crawler.per_host_burst", p.PerHostBurst)
	p.MinRawBytes = s.getInt("crawler.min_raw_bytes", p.MinRawBytes)
	p.MaxRawBytes = int64(s.getInt("crawler.max_raw_bytes", int(p.MaxRawBytes)))
	p.MinContentLength = s.getInt("crawler.min_content_length", p.MinContentLength)
	p.MaxDistillInput = s.getInt("crawler.max_distill_input", p.MaxDistillInput)
	p.MaxFallbackContent = s.getInt("crawler.max_fallback_content", p.MaxFallbackContent)
	p.UserAgent = s.getString("crawler.user_agent", p.UserAgent)

	p.ChunkSize = s.getInt("chunker.chunk_size", p.ChunkSize)
	p.OverlapWords = s.getInt("chunker.overlap_words", p.OverlapWords)
	p.MinChunkLength = s.getInt("chunker.min_length", p.MinChunkLength)

	p.EmbedBatchSize = s.getInt(keyEmbedBatchSize, p.EmbedBatchSize)
	p.EmbedBatchDelay = s.getDuration(keyEmbedBatchDelay, p.EmbedBatchDelay)

	p.RetrievalTopK = s.getInt("retrieval.top_k", p.RetrievalTopK)
	p.MinRetrievalScore = s.getFloat("retrieval.min_score", p.MinRetrievalScore)
	return p
}

func (s *SettingsService) envAPIKey(provider domain.AIProvider) string {
	for _, name := range apiKeyEnv[provider] {
		if v := s.getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	val := domain.StoreBackend(s.configStore.GetString(keyStoreBackend))
	if !val.IsValid() {
		return defaultVal
	}
	return val
}
