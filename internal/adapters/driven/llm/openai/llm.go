// Package openai provides a generation service adapter using the OpenAI API.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixpath-cli/internal/logger"
)

// Ensure GenerationService implements the interface.
var _ driven.GenerationService = (*GenerationService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI generation service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the chat model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// DisableRetries turns off the SDK's automatic retries.
	DisableRetries bool
}

// GenerationService runs chat completions against the OpenAI API.
// It cannot ground responses in live web search.
type GenerationService struct {
	client openai.Client
	model  string
}

// NewGenerationService creates a new OpenAI generation service.
func NewGenerationService(cfg Config) (*GenerationService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/") + "/"),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.DisableRetries {
		opts = append(opts, option.WithMaxRetries(0))
	}

	return &GenerationService{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

// Generate runs a single chat completion.
func (s *GenerationService) Generate(ctx context.Context, req driven.GenerateRequest) (*driven.GenerateResponse, error) {
	if req.Grounded {
		return nil, fmt.Errorf("openai: %w", domain.ErrGroundingUnsupported)
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(userParts(req)))

	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    openai.ChatModel(s.model),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.Schema.Name,
					Schema: req.Schema.Definition,
				},
			},
		}
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: no choices in response")
	}

	return &driven.GenerateResponse{
		Text: strings.TrimSpace(resp.Choices[0].Message.Content),
	}, nil
}

// userParts builds the user message content: the prompt text followed by
// any media the model accepts inline.
func userParts(req driven.GenerateRequest) []openai.ChatCompletionContentPartUnionParam {
	parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(req.Prompt)}
	for _, media := range req.Media {
		encoded := base64.StdEncoding.EncodeToString(media.Data)
		switch {
		case strings.HasPrefix(media.MimeType, "image/"):
			parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: "data:" + media.MimeType + ";base64," + encoded,
			}))
		case media.MimeType == "audio/wav" || media.MimeType == "audio/x-wav":
			parts = append(parts, openai.InputAudioContentPart(openai.ChatCompletionContentPartInputAudioInputAudioParam{
				Data:   encoded,
				Format: "wav",
			}))
		case media.MimeType == "audio/mpeg" || media.MimeType == "audio/mp3":
			parts = append(parts, openai.InputAudioContentPart(openai.ChatCompletionContentPartInputAudioInputAudioParam{
				Data:   encoded,
				Format: "mp3",
			}))
		default:
			logger.With("media", media.Name, "mime", media.MimeType).Warn("openai: skipping unsupported media part")
		}
	}
	return parts
}

// SupportsGrounding reports false; OpenAI chat completions have no web grounding.
func (s *GenerationService) SupportsGrounding() bool {
	return false
}

// ModelName returns the name of the model being used.
func (s *GenerationService) ModelName() string {
	return s.model
}

// Ping validates the API key by retrieving the configured model.
func (s *GenerationService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.Get(ctx, s.model); err != nil {
		return fmt.Errorf("openai: ping failed: %w", wrapError(err))
	}
	return nil
}

// Close releases resources.
func (s *GenerationService) Close() error {
	return nil
}

func wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("openai: %w", domain.ErrRateLimited)
		}
		return fmt.Errorf("openai error (status %d): %w", apiErr.StatusCode, err)
	}
	return fmt.Errorf("openai: %w", err)
}
