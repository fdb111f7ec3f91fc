// Package gemini provides a generation service adapter using the Google
// Gemini API. It is the only provider that can ground responses in live
// Google Search results.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
)

// Ensure GenerationService implements the interface.
var _ driven.GenerationService = (*GenerationService)(nil)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// Config holds configuration for the Gemini generation service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model is the generation model (default: gemini-2.5-flash).
	Model string
}

// GenerationService runs generateContent calls against the Gemini API.
type GenerationService struct {
	client *genai.Client
	model  string
}

// NewGenerationService creates a new Gemini generation service.
func NewGenerationService(ctx context.Context, cfg Config) (*GenerationService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := newClient(ctx, cfg.APIKey, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	return &GenerationService{client: client, model: strings.TrimPrefix(cfg.Model, "models/")}, nil
}

// newClient builds a Gemini Developer API client. An empty baseURL uses the
// public endpoint.
func newClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions.BaseURL = strings.TrimRight(baseURL, "/") + "/"
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	return client, nil
}

// Generate runs a single generateContent call.
//
// Structured calls request a JSON mime type and carry the schema in the
// prompt. Grounded calls enable the Google Search tool; the API does not
// allow a JSON mime type alongside it, so only the prompt constrains them.
func (s *GenerationService) Generate(ctx context.Context, req driven.GenerateRequest) (*driven.GenerateResponse, error) {
	prompt := req.Prompt
	if req.Schema != nil {
		schemaJSON, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("gemini: encoding schema: %w", err)
		}
		prompt += "\n\nRespond with a single JSON object conforming to this JSON Schema:\n" + string(schemaJSON)
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for _, media := range req.Media {
		parts = append(parts, genai.NewPartFromBytes(media.Data, media.MimeType))
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(req.System)}}
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Grounded {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	} else if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return nil, errors.New("gemini: no candidates in response")
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && !part.Thought {
			text.WriteString(part.Text)
		}
	}

	return &driven.GenerateResponse{
		Text:    strings.TrimSpace(text.String()),
		Sources: groundingSources(candidate.GroundingMetadata),
	}, nil
}

// groundingSources lists the web pages behind a grounded answer. Each page's
// confidence is the highest score any supported segment gave it.
func groundingSources(meta *genai.GroundingMetadata) []domain.SearchHit {
	if meta == nil {
		return nil
	}

	confidence := make(map[int]float64)
	for _, support := range meta.GroundingSupports {
		if support == nil {
			continue
		}
		for i, idx := range support.GroundingChunkIndices {
			if i >= len(support.ConfidenceScores) {
				break
			}
			if score := float64(support.ConfidenceScores[i]); score > confidence[int(idx)] {
				confidence[int(idx)] = score
			}
		}
	}

	var hits []domain.SearchHit
	seen := make(map[string]bool)
	for i, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		hits = append(hits, domain.SearchHit{
			URL:        chunk.Web.URI,
			Title:      chunk.Web.Title,
			Confidence: confidence[i],
		})
	}
	return hits
}

// SupportsGrounding reports true; Gemini can use Google Search as a tool.
func (s *GenerationService) SupportsGrounding() bool {
	return true
}

// ModelName returns the name of the model being used.
func (s *GenerationService) ModelName() string {
	return s.model
}

// Ping validates the API key by retrieving the model's metadata.
func (s *GenerationService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.Get(ctx, s.model, nil); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", wrapError(err))
	}
	return nil
}

// Close releases resources.
func (s *GenerationService) Close() error {
	return nil
}

// wrapError maps API errors to domain errors where one applies.
func wrapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return fmt.Errorf("gemini: %w", domain.ErrRateLimited)
		}
		return fmt.Errorf("gemini error (status %d): %s", apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("gemini: %w", err)
}
