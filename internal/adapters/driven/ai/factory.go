// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"

	geminiembed "github.com/custodia-labs/fixpath-cli/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/fixpath-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/fixpath-cli/internal/adapters/driven/embedding/openai"
	geminillm "github.com/custodia-labs/fixpath-cli/internal/adapters/driven/llm/gemini"
	openaillm "github.com/custodia-labs/fixpath-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixpath-cli/internal/logger"
)

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	GenerationService driven.GenerationService
	EmbeddingService  driven.EmbeddingService
	Warnings          []string // Non-fatal issues; the affected service is nil.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.GenerationService != nil {
		r.GenerationService.Close()
	}
}

// Initialise creates and validates both AI services. A service that fails
// is left nil and its failure recorded as a warning, so commands that do
// not need it still run.
func Initialise(settings *domain.Settings) *InitResult {
	result := &InitResult{}
	if settings == nil {
		return result
	}

	gen, err := CreateAndValidateGenerationService(&settings.Generation)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
		logger.With("provider", settings.Generation.Provider).Warn("generation service unavailable: %v", err)
	}
	result.GenerationService = gen

	embed, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
		logger.With("provider", settings.Embedding.Provider).Warn("embedding service unavailable: %v", err)
	}
	result.EmbeddingService = embed

	return result
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'fixpath settings' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	if err := ping(svc, pingTimeout); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'fixpath settings' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// CreateAndValidateGenerationService creates a generation service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateGenerationService(settings *domain.GenerationSettings) (driven.GenerationService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateGenerationService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'fixpath settings' to fix",
			domain.ErrGenerationUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	if err := ping(svc, pingTimeout); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'fixpath settings' to fix",
			domain.ErrGenerationUnavailable, err)
	}

	return svc, nil
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderGemini:
		return geminiembed.NewEmbeddingService(context.Background(), geminiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateGenerationService creates the appropriate generation service based on settings.
// Returns nil if the provider is not configured.
func CreateGenerationService(settings *domain.GenerationSettings) (driven.GenerationService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGemini:
		return geminillm.NewGenerationService(context.Background(), geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOpenAI:
		return openaillm.NewGenerationService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
// Ollama models have fixed output sizes, so the requested dimensions are ignored.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}
