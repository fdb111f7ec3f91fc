package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for generation or embeddings.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOpenAI, AIProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini || p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// SupportsGrounding returns true if the provider can run web-grounded generation.
func (p AIProvider) SupportsGrounding() bool {
	return p == AIProviderGemini
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// GenerationSettings holds generation provider configuration.
type GenerationSettings struct {
	// Provider is the generation service provider.
	Provider AIProvider

	// Model is the generation model name.
	Model string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// APIKey is the API key (for Gemini/OpenAI).
	APIKey string
}

// IsConfigured returns true if the generation provider is set up.
func (g GenerationSettings) IsConfigured() bool {
	if !g.Provider.IsValid() || g.Provider == AIProviderOllama {
		return false
	}
	if g.Provider.RequiresAPIKey() && g.APIKey == "" {
		return false
	}
	return true
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for Gemini/OpenAI).
	APIKey string

	// Dimensions is the requested output dimensionality.
	// Providers that cannot truncate vectors ignore it.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// StoreBackend selects the chunk store implementation.
type StoreBackend string

// Available store backends.
const (
	StoreBackendMemory StoreBackend = "memory"
	StoreBackendSQLite StoreBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	return b == StoreBackendMemory || b == StoreBackendSQLite
}

// StoreSettings holds chunk store configuration.
type StoreSettings struct {
	Backend StoreBackend

	// Path is the data directory holding the sqlite database.
	Path string
}

// SearchSettings configures Google Programmable Search, used for source
// discovery when the generation provider cannot ground.
type SearchSettings struct {
	APIKey string

	// EngineID is the Programmable Search Engine id (the "cx" parameter).
	EngineID string
}

// IsConfigured returns true if both the key and the engine id are set.
func (s SearchSettings) IsConfigured() bool {
	return s.APIKey != "" && s.EngineID != ""
}

// PipelineSettings holds every tunable threshold of the pipeline.
type PipelineSettings struct {
	// Query synthesis.
	MinQueryLength int

	// Source discovery.
	DiscoveryConcurrency int
	MaxCrawlTargets      int
	TrustedBonus         float64
	UntrustedDiscount    float64
	DefaultSignal        float64

	// Crawling.
	FetchTimeout       time.Duration
	FetchConcurrency   int
	PerHostRate        float64
	PerHostBurst       int
	MinRawBytes        int
	MaxRawBytes        int64
	MinContentLength   int
	MaxDistillInput    int
	MaxFallbackContent int
	UserAgent          string

	// Chunking.
	ChunkSize      int
	OverlapWords   int
	MinChunkLength int

	// Indexing.
	EmbedBatchSize  int
	EmbedBatchDelay time.Duration

	// Retrieval.
	RetrievalTopK     int
	MinRetrievalScore float64

	// Orchestration.
	MinChunksThreshold int
	MinContextChars    int
	MaxLivePartLookups int
	PipelineTimeout    time.Duration
}

// DefaultUserAgent identifies the crawler to third-party sites.
const DefaultUserAgent = "fixpath/1.0 (+https://github.com/custodia-labs/fixpath-cli; repair documentation crawler)"

// DefaultPipelineSettings returns the pipeline defaults.
func DefaultPipelineSettings() PipelineSettings {
	return PipelineSettings{
		MinQueryLength: 10,

		DiscoveryConcurrency: 3,
		MaxCrawlTargets:      15,
		TrustedBonus:         0.15,
		UntrustedDiscount:    0.5,
		DefaultSignal:        0.5,

		FetchTimeout:       10 * time.Second,
		FetchConcurrency:   10,
		PerHostRate:        2,
		PerHostBurst:       2,
		MinRawBytes:        500,
		MaxRawBytes:        5 << 20,
		MinContentLength:   200,
		MaxDistillInput:    30000,
		MaxFallbackContent: 8000,
		UserAgent:          DefaultUserAgent,

		ChunkSize:      1000,
		OverlapWords:   40,
		MinChunkLength: 50,

		EmbedBatchSize:  20,
		EmbedBatchDelay: 250 * time.Millisecond,

		RetrievalTopK:     8,
		MinRetrievalScore: 0.3,

		MinChunksThreshold: 5,
		MinContextChars:    500,
		MaxLivePartLookups: 5,
		PipelineTimeout:    120 * time.Second,
	}
}

// Settings holds all application settings.
type Settings struct {
	Generation GenerationSettings
	Embedding  EmbeddingSettings
	Pipeline   PipelineSettings
	Store      StoreSettings
	Search     SearchSettings

	// PromptsDir overrides the directory prompt templates are read from.
	PromptsDir string
}

// DefaultSettings returns settings with sensible defaults.
// Providers default to Gemini but stay unconfigured until an API key is set.
func DefaultSettings() Settings {
	return Settings{
		Generation: GenerationSettings{
			Provider: AIProviderGemini,
			Model:    DefaultGenerationModels()[AIProviderGemini],
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderGemini,
			Model:      DefaultEmbeddingModels()[AIProviderGemini],
			Dimensions: 768,
		},
		Pipeline: DefaultPipelineSettings(),
		Store: StoreSettings{
			Backend: StoreBackendMemory,
		},
	}
}

// AllGenerationProviders returns providers that support generation.
func AllGenerationProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOpenAI,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOpenAI,
		AIProviderOllama,
	}
}

// DefaultGenerationModels returns default models for each generation provider.
func DefaultGenerationModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "gemini-2.5-flash",
		AIProviderOpenAI: "gpt-4o-mini",
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "text-embedding-004",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderOllama: "nomic-embed-text",
	}
}

// EmbeddingDimensions returns the native vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Gemini models
		"text-embedding-004":   768,
		"gemini-embedding-001": 3072,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
	}
}

// EmbeddingTask selects the embedding mode. Documents and queries are
// embedded differently by providers that support task-specific vectors.
type EmbeddingTask string

// Embedding tasks.
const (
	EmbeddingTaskDocument EmbeddingTask = "document"
	EmbeddingTaskQuery    EmbeddingTask = "query"
)
