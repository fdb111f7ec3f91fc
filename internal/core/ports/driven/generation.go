package driven

import (
	"context"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

// GenerationService provides multimodal generation capabilities.
// Implementations may use cloud APIs (Gemini, OpenAI).
// This is an OPTIONAL interface for the ingestion path (distillation falls
// back to raw text) but REQUIRED for diagnosis and guide synthesis.
type GenerationService interface {
	// Generate runs a single generation call.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// SupportsGrounding reports whether Grounded requests are honoured.
	SupportsGrounding() bool

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates that the service is reachable and configured correctly.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateRequest is the input of a generation call.
type GenerateRequest struct {
	// System is the system instruction.
	System string

	// Prompt is the user text.
	Prompt string

	// Media are inline parts (images, audio, video) sent with the prompt.
	Media []domain.MediaPart

	// Schema requests structured JSON output conforming to it.
	// Nil means free text.
	Schema *ResponseSchema

	// Grounded enables live web search grounding.
	// Providers that cannot ground return domain.ErrGroundingUnsupported.
	Grounded bool

	// MaxTokens limits the response length (0 = provider default).
	MaxTokens int

	// Temperature controls randomness (0 = provider default).
	Temperature float64
}

// ResponseSchema describes the JSON object a structured call must return.
type ResponseSchema struct {
	// Name identifies the schema to providers that require one.
	Name string

	// Definition is a JSON Schema object.
	Definition map[string]any
}

// GenerateResponse is the output of a generation call.
type GenerateResponse struct {
	// Text is the generated text, or the JSON document for structured calls.
	Text string

	// Sources are the web pages a grounded response was based on.
	Sources []domain.SearchHit
}
